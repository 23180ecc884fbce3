// Package gpu defines the graphics-device contract consumed by the chime
// renderer.
//
// A Device creates buffers, textures and programs, binds them, and submits
// draws. Implementations wrap a native API; chime never talks to one directly.
// Devices are not safe for concurrent use: a single goroutine issues every
// command, and submitting from several goroutines requires an external
// synchronization layer.
package gpu

import "errors"

// ErrNoDevice means that no initialized device was supplied.
var ErrNoDevice = errors.New("gpu: no device")

// ErrUnsupportedFormat means that pixel data cannot be uploaded in the
// requested format.
var ErrUnsupportedFormat = errors.New("gpu: unsupported format")

// ErrUnsupportedTopology means that a primitive topology cannot be drawn.
var ErrUnsupportedTopology = errors.New("gpu: unsupported topology")

// ErrMapped means that a buffer was mapped twice without an intervening Unmap.
var ErrMapped = errors.New("gpu: buffer already mapped")

// Usage describes how often a resource's contents change.
type Usage int

// Resource usages.
const (
	// UsageDefault resources are written by the device.
	UsageDefault Usage = iota
	// UsageImmutable resources are initialized once at creation.
	UsageImmutable
	// UsageDynamic resources are rewritten by the CPU every frame through
	// Map with discard semantics.
	UsageDynamic
)

// BindFlags is a mask of the pipeline slots a resource may be bound to.
type BindFlags int

// Bind flags.
const (
	BindVertexBuffer BindFlags = 1 << iota
	BindIndexBuffer
	BindConstantBuffer
	BindShaderResource
	BindRenderTarget
	BindDepthStencil
)

// Format is a texel format.
type Format int

// Texel formats.
const (
	FormatRGBA8 Format = iota
	FormatRGBA16F
	FormatDepth32F
)

// BytesPerPixel returns the size of one texel.
func (f Format) BytesPerPixel() int {
	switch f {
	case FormatRGBA16F:
		return 8
	default:
		return 4
	}
}

func (f Format) String() string {
	switch f {
	case FormatRGBA8:
		return "RGBA8"
	case FormatRGBA16F:
		return "RGBA16F"
	case FormatDepth32F:
		return "Depth32F"
	default:
		return "Unknown"
	}
}

// Topology is a primitive topology.
type Topology int

// Primitive topologies.
const (
	TopologyTriangleList Topology = iota
	TopologyLineList
)

// ProgramKind selects one of the fixed programs a device provides.
type ProgramKind int

// Program kinds.
const (
	// ProgramGBuffer writes diffuse/roughness and normal/metallic.
	ProgramGBuffer ProgramKind = iota
	// ProgramPointLight accumulates one point light over a full-screen triangle.
	ProgramPointLight
	// ProgramTonemap maps light accumulation into the backbuffer.
	ProgramTonemap
	// ProgramSolidColor draws unlit vertex-colored geometry.
	ProgramSolidColor
)

func (k ProgramKind) String() string {
	switch k {
	case ProgramGBuffer:
		return "GBuffer"
	case ProgramPointLight:
		return "PointLight"
	case ProgramTonemap:
		return "Tonemap"
	case ProgramSolidColor:
		return "SolidColor"
	default:
		return "Unknown"
	}
}

// MatrixLayout is the constant-buffer matrix convention a device expects.
type MatrixLayout int

// Matrix layouts.
const (
	// ColumnMajor uploads matrices as stored by mgl32.
	ColumnMajor MatrixLayout = iota
	// RowMajor uploads transposed matrices.
	RowMajor
)

// BlendMode selects how fragments combine with the bound targets.
type BlendMode int

// Blend modes.
const (
	BlendOpaque BlendMode = iota
	BlendAlpha
	BlendAdditive
)

// RasterState is the depth and blend configuration for subsequent draws.
type RasterState struct {
	DepthTest  bool
	DepthWrite bool
	Blend      BlendMode
}

// Caps reports device capabilities.
type Caps struct {
	MatrixLayout MatrixLayout
	// MaxVertices is the largest vertex count a single draw accepts.
	// Zero means unlimited.
	MaxVertices int
}

// BufferDesc describes a buffer.
type BufferDesc struct {
	Size  int
	Usage Usage
	Bind  BindFlags
}

// TextureDesc describes a 2D texture.
type TextureDesc struct {
	Width  int
	Height int
	Format Format
	Usage  Usage
	Bind   BindFlags
}

// Buffer is device memory holding vertices, indices or constants.
type Buffer interface {
	Desc() BufferDesc
	Release()
}

// Texture is a 2D image usable as a shader input, render target or depth
// buffer, depending on its bind flags.
type Texture interface {
	Desc() TextureDesc
	Release()
}

// Program is a compiled shader program.
type Program interface {
	Kind() ProgramKind
	Release()
}

// Device is the interface to a graphics device.
type Device interface {
	// Caps returns the device capabilities.
	Caps() Caps

	// NewBuffer creates a buffer. If data is not nil it is copied into the
	// new buffer; immutable buffers require it.
	NewBuffer(desc BufferDesc, data []byte) (Buffer, error)

	// NewTexture creates a texture. Pixels, if not nil, must hold
	// Width*Height*BytesPerPixel bytes of tightly packed rows. Color
	// pixels have premultiplied alpha.
	NewTexture(desc TextureDesc, pixels []byte) (Texture, error)

	// NewProgram returns the program of the given kind.
	NewProgram(kind ProgramKind) (Program, error)

	// Map returns CPU-writable memory for a dynamic buffer. Previous
	// contents are discarded. The slice is valid until Unmap.
	Map(b Buffer) ([]byte, error)

	// Unmap makes the mapped contents visible to the device.
	Unmap(b Buffer)

	// UpdateBuffer replaces the leading bytes of a constant buffer.
	UpdateBuffer(b Buffer, data []byte) error

	// ClearColor fills a color target.
	ClearColor(t Texture, rgba [4]float32)

	// ClearDepth fills a depth target.
	ClearDepth(t Texture, depth float32)

	// SetRenderTargets binds the outputs of subsequent draws. Depth may be nil.
	SetRenderTargets(depth Texture, colors ...Texture)

	// SetShaderResources binds textures as shader inputs, slot 0 first.
	SetShaderResources(textures ...Texture)

	// SetConstants binds constant buffers, slot 0 first.
	SetConstants(buffers ...Buffer)

	// SetRasterState sets depth and blend state.
	SetRasterState(s RasterState)

	// SetProgram binds a program.
	SetProgram(p Program)

	// SetVertexBuffer binds a vertex buffer with the given stride in bytes.
	SetVertexBuffer(b Buffer, stride int)

	// SetIndexBuffer binds a buffer of little-endian uint32 indices.
	SetIndexBuffer(b Buffer)

	// Draw submits count vertices starting at first.
	Draw(topology Topology, count, first int)

	// DrawIndexed submits count indices starting at first.
	DrawIndexed(topology Topology, count, first int)
}
