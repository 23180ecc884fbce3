package gpu

import (
	"encoding/binary"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// --- Vertex layouts ---

// StaticVertexSize is the stride of a StaticVertex in bytes.
const StaticVertexSize = 32

// LineVertexSize is the stride of a LineVertex in bytes.
const LineVertexSize = 28

// StaticVertex is the vertex layout of lit, textured geometry.
type StaticVertex struct {
	Position mgl32.Vec3
	Normal   mgl32.Vec3
	UV       mgl32.Vec2
}

// LineVertex is the vertex layout of unlit, vertex-colored geometry.
type LineVertex struct {
	Position mgl32.Vec3
	Color    mgl32.Vec4
}

// PutStaticVertex writes v at the start of dst, which must hold
// StaticVertexSize bytes.
func PutStaticVertex(dst []byte, v StaticVertex) {
	_ = dst[StaticVertexSize-1]
	putFloats(dst, v.Position[:])
	putFloats(dst[12:], v.Normal[:])
	putFloats(dst[24:], v.UV[:])
}

// ReadStaticVertex decodes a StaticVertex from the start of src.
func ReadStaticVertex(src []byte) StaticVertex {
	_ = src[StaticVertexSize-1]
	var v StaticVertex
	readFloats(src, v.Position[:])
	readFloats(src[12:], v.Normal[:])
	readFloats(src[24:], v.UV[:])
	return v
}

// PutLineVertex writes v at the start of dst, which must hold
// LineVertexSize bytes.
func PutLineVertex(dst []byte, v LineVertex) {
	_ = dst[LineVertexSize-1]
	putFloats(dst, v.Position[:])
	putFloats(dst[12:], v.Color[:])
}

// ReadLineVertex decodes a LineVertex from the start of src.
func ReadLineVertex(src []byte) LineVertex {
	_ = src[LineVertexSize-1]
	var v LineVertex
	readFloats(src, v.Position[:])
	readFloats(src[12:], v.Color[:])
	return v
}

// EncodeIndices returns idx as little-endian uint32 bytes.
func EncodeIndices(idx []uint32) []byte {
	b := make([]byte, 4*len(idx))
	for i, v := range idx {
		binary.LittleEndian.PutUint32(b[4*i:], v)
	}
	return b
}

// ReadIndex returns the i-th uint32 index from src.
func ReadIndex(src []byte, i int) uint32 {
	return binary.LittleEndian.Uint32(src[4*i:])
}

// --- Constant blocks ---

// ObjectConstantsSize is the encoded size of ObjectConstants.
const ObjectConstantsSize = 5 * 64

// LightConstantsSize is the encoded size of LightConstants.
const LightConstantsSize = 3 * 16

// ObjectConstants is refreshed before every geometry or line draw.
type ObjectConstants struct {
	Model         mgl32.Mat4
	View          mgl32.Mat4
	Projection    mgl32.Mat4
	InvView       mgl32.Mat4
	InvProjection mgl32.Mat4
}

// LightConstants is refreshed before every light draw. Near and far are
// forwarded so the lighting program can linearize depth.
type LightConstants struct {
	Color   mgl32.Vec3
	ViewPos mgl32.Vec3
	Near    float32
	Far     float32
}

// Encode writes c into dst, transposing matrices for RowMajor devices.
// dst must hold ObjectConstantsSize bytes.
func (c *ObjectConstants) Encode(dst []byte, layout MatrixLayout) {
	_ = dst[ObjectConstantsSize-1]
	putMat(dst, c.Model, layout)
	putMat(dst[64:], c.View, layout)
	putMat(dst[128:], c.Projection, layout)
	putMat(dst[192:], c.InvView, layout)
	putMat(dst[256:], c.InvProjection, layout)
}

// DecodeObjectConstants is the inverse of ObjectConstants.Encode.
func DecodeObjectConstants(src []byte, layout MatrixLayout) ObjectConstants {
	_ = src[ObjectConstantsSize-1]
	return ObjectConstants{
		Model:         readMat(src, layout),
		View:          readMat(src[64:], layout),
		Projection:    readMat(src[128:], layout),
		InvView:       readMat(src[192:], layout),
		InvProjection: readMat(src[256:], layout),
	}
}

// Encode writes c into dst as three 16-byte rows: color, view position and
// (near, far). dst must hold LightConstantsSize bytes.
func (c *LightConstants) Encode(dst []byte) {
	_ = dst[LightConstantsSize-1]
	clear(dst[:LightConstantsSize])
	putFloats(dst, c.Color[:])
	putFloats(dst[16:], c.ViewPos[:])
	putFloats(dst[32:], []float32{c.Near, c.Far})
}

// DecodeLightConstants is the inverse of LightConstants.Encode.
func DecodeLightConstants(src []byte) LightConstants {
	_ = src[LightConstantsSize-1]
	var c LightConstants
	readFloats(src, c.Color[:])
	readFloats(src[16:], c.ViewPos[:])
	var nf [2]float32
	readFloats(src[32:], nf[:])
	c.Near, c.Far = nf[0], nf[1]
	return c
}

// --- Helpers ---

func putMat(dst []byte, m mgl32.Mat4, layout MatrixLayout) {
	if layout == RowMajor {
		m = m.Transpose()
	}
	putFloats(dst, m[:])
}

func readMat(src []byte, layout MatrixLayout) mgl32.Mat4 {
	var m mgl32.Mat4
	readFloats(src, m[:])
	if layout == RowMajor {
		m = m.Transpose()
	}
	return m
}

func putFloats(dst []byte, f []float32) {
	for i, v := range f {
		binary.LittleEndian.PutUint32(dst[4*i:], math.Float32bits(v))
	}
}

func readFloats(src []byte, f []float32) {
	for i := range f {
		f[i] = math.Float32frombits(binary.LittleEndian.Uint32(src[4*i:]))
	}
}
