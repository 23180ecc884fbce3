// Package ebitengpu implements gpu.Device on top of Ebitengine.
//
// Geometry is transformed on the CPU and submitted with DrawTriangles32;
// lighting and tonemapping run as Kage shaders over full-screen rectangles.
// Ebitengine has no depth buffer, so triangles are sorted back to front
// within each draw and depth is kept only as a lighting input. All targets
// are 8 bits per channel whatever their declared format.
//
// A Device must be used from the goroutine running the Ebitengine game loop.
package ebitengpu

import (
	"fmt"
	"image/color"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/phanxgames/chime/gpu"
	"github.com/phanxgames/chime/internal/logx"
)

// LineWidth is the width of line primitives in pixels.
const LineWidth = 1.5

type buffer struct {
	desc   gpu.BufferDesc
	data   []byte
	mapped bool
}

func (b *buffer) Desc() gpu.BufferDesc { return b.desc }
func (b *buffer) Release()             { b.data = nil }

type texture struct {
	desc gpu.TextureDesc
	img  *ebiten.Image
}

func (t *texture) Desc() gpu.TextureDesc { return t.desc }
func (t *texture) Release()              { t.img.Deallocate() }

// Image returns the image backing t, or nil if t was not created by this
// package.
func Image(t gpu.Texture) *ebiten.Image {
	if tt, ok := t.(*texture); ok {
		return tt.img
	}
	return nil
}

// Device is a gpu.Device drawing into Ebitengine images.
type Device struct {
	white *ebiten.Image

	colors    []*texture
	depth     *texture
	resources []*texture
	constants []*buffer
	state     gpu.RasterState
	prog      *program
	vb        *buffer
	stride    int
	ib        *buffer

	clip    []clipVertex
	tris    []triangle
	idx     []uint32
	out     []uint32
	verts   []ebiten.Vertex
	normals []ebiten.Vertex
	depths  []ebiten.Vertex

	triOp    ebiten.DrawTrianglesOptions
	shaderOp ebiten.DrawTrianglesShaderOptions
	rectOp   ebiten.DrawRectShaderOptions
	uniforms map[string]any

	err error
}

var _ gpu.Device = (*Device)(nil)

// New creates a device.
func New() *Device {
	white := ebiten.NewImage(1, 1)
	white.Fill(color.White)
	return &Device{white: white, uniforms: make(map[string]any, 5)}
}

// Err returns the first draw error, if any. Draw calls cannot return
// errors, so misconfigured draws are skipped and recorded here.
func (d *Device) Err() error { return d.err }

func (d *Device) fail(err error) {
	if d.err == nil {
		d.err = err
		logx.Get().Warn("ebitengpu: draw skipped", "err", err)
	}
}

// Caps implements gpu.Device.
func (d *Device) Caps() gpu.Caps {
	return gpu.Caps{MatrixLayout: gpu.ColumnMajor}
}

// --- Resources ---

// NewBuffer implements gpu.Device.
func (d *Device) NewBuffer(desc gpu.BufferDesc, data []byte) (gpu.Buffer, error) {
	if desc.Size <= 0 {
		return nil, fmt.Errorf("ebitengpu: invalid buffer size %d", desc.Size)
	}
	if desc.Usage == gpu.UsageImmutable && data == nil {
		return nil, fmt.Errorf("ebitengpu: immutable buffer without data")
	}
	b := &buffer{desc: desc, data: make([]byte, desc.Size)}
	copy(b.data, data)
	return b, nil
}

// NewTexture implements gpu.Device. Only RGBA8 textures accept pixels,
// which are premultiplied.
func (d *Device) NewTexture(desc gpu.TextureDesc, pixels []byte) (gpu.Texture, error) {
	if desc.Width <= 0 || desc.Height <= 0 {
		return nil, fmt.Errorf("ebitengpu: invalid texture size %dx%d", desc.Width, desc.Height)
	}
	t := &texture{desc: desc, img: ebiten.NewImage(desc.Width, desc.Height)}
	if pixels != nil {
		if desc.Format != gpu.FormatRGBA8 {
			t.img.Deallocate()
			return nil, fmt.Errorf("ebitengpu: upload %s: %w", desc.Format, gpu.ErrUnsupportedFormat)
		}
		if len(pixels) != desc.Width*desc.Height*4 {
			t.img.Deallocate()
			return nil, fmt.Errorf("ebitengpu: texture data is %d bytes, want %d", len(pixels), desc.Width*desc.Height*4)
		}
		t.img.WritePixels(pixels)
	}
	return t, nil
}

// NewProgram implements gpu.Device.
func (d *Device) NewProgram(kind gpu.ProgramKind) (gpu.Program, error) {
	return compile(kind)
}

// Map implements gpu.Device.
func (d *Device) Map(b gpu.Buffer) ([]byte, error) {
	bb := b.(*buffer)
	if bb.desc.Usage != gpu.UsageDynamic {
		return nil, fmt.Errorf("ebitengpu: map of non-dynamic buffer")
	}
	if bb.mapped {
		return nil, gpu.ErrMapped
	}
	bb.mapped = true
	return bb.data, nil
}

// Unmap implements gpu.Device.
func (d *Device) Unmap(b gpu.Buffer) { b.(*buffer).mapped = false }

// UpdateBuffer implements gpu.Device.
func (d *Device) UpdateBuffer(b gpu.Buffer, data []byte) error {
	bb := b.(*buffer)
	if len(data) > len(bb.data) {
		return fmt.Errorf("ebitengpu: update of %d bytes into %d byte buffer", len(data), len(bb.data))
	}
	copy(bb.data, data)
	return nil
}

// --- State ---

// ClearColor implements gpu.Device.
func (d *Device) ClearColor(t gpu.Texture, rgba [4]float32) {
	t.(*texture).img.Fill(color.NRGBA{
		R: unorm(rgba[0]), G: unorm(rgba[1]), B: unorm(rgba[2]), A: unorm(rgba[3]),
	})
}

// ClearDepth implements gpu.Device.
func (d *Device) ClearDepth(t gpu.Texture, depth float32) {
	hi, lo := splitDepth(depth)
	t.(*texture).img.Fill(color.NRGBA{R: hi, G: lo, A: 255})
}

// splitDepth encodes depth in [0, 1] the way the depth shader does.
func splitDepth(depth float32) (hi, lo uint8) {
	v := float64(max(0, min(1, depth))) * 255
	h := math.Floor(v)
	return uint8(h), uint8(math.Round((v - h) * 255))
}

func unorm(f float32) uint8 {
	return uint8(math.Round(float64(max(0, min(1, f))) * 255))
}

// SetRenderTargets implements gpu.Device.
func (d *Device) SetRenderTargets(depth gpu.Texture, colors ...gpu.Texture) {
	d.depth, _ = depth.(*texture)
	d.colors = d.colors[:0]
	for _, c := range colors {
		cc, _ := c.(*texture)
		d.colors = append(d.colors, cc)
	}
}

// SetShaderResources implements gpu.Device.
func (d *Device) SetShaderResources(textures ...gpu.Texture) {
	d.resources = d.resources[:0]
	for _, t := range textures {
		tt, _ := t.(*texture)
		d.resources = append(d.resources, tt)
	}
}

// SetConstants implements gpu.Device.
func (d *Device) SetConstants(buffers ...gpu.Buffer) {
	d.constants = d.constants[:0]
	for _, b := range buffers {
		bb, _ := b.(*buffer)
		d.constants = append(d.constants, bb)
	}
}

// SetRasterState implements gpu.Device.
func (d *Device) SetRasterState(s gpu.RasterState) { d.state = s }

// SetProgram implements gpu.Device.
func (d *Device) SetProgram(p gpu.Program) { d.prog, _ = p.(*program) }

// SetVertexBuffer implements gpu.Device.
func (d *Device) SetVertexBuffer(b gpu.Buffer, stride int) {
	d.vb, _ = b.(*buffer)
	d.stride = stride
}

// SetIndexBuffer implements gpu.Device.
func (d *Device) SetIndexBuffer(b gpu.Buffer) { d.ib, _ = b.(*buffer) }

func (d *Device) blend() ebiten.Blend {
	switch d.state.Blend {
	case gpu.BlendAdditive:
		return ebiten.BlendLighter
	case gpu.BlendOpaque:
		return ebiten.BlendCopy
	default:
		return ebiten.BlendSourceOver
	}
}

// --- Draws ---

// Draw implements gpu.Device.
func (d *Device) Draw(topology gpu.Topology, count, first int) {
	if d.prog == nil {
		d.fail(fmt.Errorf("ebitengpu: draw without program"))
		return
	}
	switch d.prog.kind {
	case gpu.ProgramPointLight:
		d.drawPointLight()
	case gpu.ProgramTonemap:
		d.drawTonemap()
	default:
		d.idx = d.idx[:0]
		for i := first; i < first+count; i++ {
			d.idx = append(d.idx, uint32(i))
		}
		d.drawGeometry(topology, d.idx)
	}
}

// DrawIndexed implements gpu.Device.
func (d *Device) DrawIndexed(topology gpu.Topology, count, first int) {
	if d.prog == nil || d.ib == nil {
		d.fail(fmt.Errorf("ebitengpu: indexed draw without program or index buffer"))
		return
	}
	if (first+count)*4 > len(d.ib.data) {
		d.fail(fmt.Errorf("ebitengpu: index range %d+%d out of bounds", first, count))
		return
	}
	d.idx = d.idx[:0]
	for i := first; i < first+count; i++ {
		d.idx = append(d.idx, gpu.ReadIndex(d.ib.data, i))
	}
	d.drawGeometry(topology, d.idx)
}

func (d *Device) objectConstants() (gpu.ObjectConstants, bool) {
	if len(d.constants) == 0 || d.constants[0] == nil || len(d.constants[0].data) < gpu.ObjectConstantsSize {
		d.fail(fmt.Errorf("ebitengpu: object constants not bound"))
		return gpu.ObjectConstants{}, false
	}
	return gpu.DecodeObjectConstants(d.constants[0].data, gpu.ColumnMajor), true
}

// transform fills d.clip with every vertex of the bound vertex buffer.
func (d *Device) transform(obj gpu.ObjectConstants) bool {
	if d.vb == nil || d.stride <= 0 {
		d.fail(fmt.Errorf("ebitengpu: vertex buffer not bound"))
		return false
	}
	mv := obj.View.Mul4(obj.Model)
	mvp := obj.Projection.Mul4(mv)
	nm := mv.Mat3()
	n := len(d.vb.data) / d.stride
	d.clip = d.clip[:0]
	for i := 0; i < n; i++ {
		src := d.vb.data[i*d.stride:]
		var cv clipVertex
		var pos mgl32.Vec3
		switch d.stride {
		case gpu.StaticVertexSize:
			v := gpu.ReadStaticVertex(src)
			pos, cv.uv = v.Position, v.UV
			nv := nm.Mul3x1(v.Normal)
			if nv.Len() > 0 {
				nv = nv.Normalize()
			}
			cv.color = encodeNormal(nv)
		case gpu.LineVertexSize:
			v := gpu.ReadLineVertex(src)
			pos, cv.color = v.Position, v.Color
		default:
			d.fail(fmt.Errorf("ebitengpu: unknown vertex stride %d", d.stride))
			return false
		}
		p := pos.Vec4(1)
		cv.clip = mvp.Mul4x1(p)
		cv.view = mv.Mul4x1(p).Vec3()
		d.clip = append(d.clip, cv)
	}
	return true
}

func (d *Device) drawGeometry(topology gpu.Topology, idx []uint32) {
	if len(d.colors) == 0 || d.colors[0] == nil {
		d.fail(fmt.Errorf("ebitengpu: no render target"))
		return
	}
	obj, ok := d.objectConstants()
	if !ok || !d.transform(obj) {
		return
	}
	for _, i := range idx {
		if int(i) >= len(d.clip) {
			d.fail(fmt.Errorf("ebitengpu: index %d out of range", i))
			return
		}
	}
	target := d.colors[0]
	w, h := target.desc.Width, target.desc.Height

	if topology == gpu.TopologyLineList {
		d.verts, d.out = d.verts[:0], d.out[:0]
		for i := 0; i+1 < len(idx); i += 2 {
			a, b, ok := clipLine(d.clip[idx[i]], d.clip[idx[i+1]])
			if ok {
				d.verts, d.out = lineQuad(d.verts, d.out, a, b, w, h, LineWidth)
			}
		}
		d.triOp = ebiten.DrawTrianglesOptions{Blend: d.blend()}
		target.img.DrawTriangles32(d.verts, d.out, d.white, &d.triOp)
		return
	}

	d.tris = visibleTriangles(d.tris, d.clip, idx)
	d.out = d.out[:0]
	for _, t := range d.tris {
		d.out = append(d.out, t.i[0], t.i[1], t.i[2])
	}
	if d.prog.kind == gpu.ProgramSolidColor {
		d.verts = d.verts[:0]
		for _, cv := range d.clip {
			x, y := toScreen(cv.clip, w, h)
			d.verts = append(d.verts, colorVertex(x, y, cv.color))
		}
		d.triOp = ebiten.DrawTrianglesOptions{Blend: d.blend()}
		target.img.DrawTriangles32(d.verts, d.out, d.white, &d.triOp)
		return
	}
	d.drawGBuffer(obj, w, h)
}

// drawGBuffer writes diffuse, normals and depth of d.tris.
func (d *Device) drawGBuffer(obj gpu.ObjectConstants, w, h int) {
	src := d.white
	if len(d.resources) > 0 && d.resources[0] != nil {
		src = d.resources[0].img
	}
	sw, sh := float32(src.Bounds().Dx()), float32(src.Bounds().Dy())
	far := farPlane(obj.Projection)

	d.verts, d.normals, d.depths = d.verts[:0], d.normals[:0], d.depths[:0]
	for _, cv := range d.clip {
		x, y := toScreen(cv.clip, w, h)
		d.verts = append(d.verts, ebiten.Vertex{
			DstX: x, DstY: y,
			SrcX: cv.uv[0] * sw, SrcY: cv.uv[1] * sh,
			ColorR: 1, ColorG: 1, ColorB: 1, ColorA: 1,
		})
		d.normals = append(d.normals, colorVertex(x, y, cv.color))
		z := linearDepth(cv.view, far)
		d.depths = append(d.depths, ebiten.Vertex{DstX: x, DstY: y, ColorR: z, ColorA: 1})
	}

	d.triOp = ebiten.DrawTrianglesOptions{Blend: ebiten.BlendSourceOver, Address: ebiten.AddressRepeat, Filter: ebiten.FilterLinear}
	d.colors[0].img.DrawTriangles32(d.verts, d.out, src, &d.triOp)
	if len(d.colors) > 1 && d.colors[1] != nil {
		d.triOp = ebiten.DrawTrianglesOptions{Blend: ebiten.BlendSourceOver}
		d.colors[1].img.DrawTriangles32(d.normals, d.out, d.white, &d.triOp)
	}
	if d.depth != nil && d.prog.shader != nil {
		d.shaderOp = ebiten.DrawTrianglesShaderOptions{Blend: ebiten.BlendCopy}
		d.depth.img.DrawTrianglesShader32(d.depths, d.out, d.prog.shader, &d.shaderOp)
	}
}

func (d *Device) drawPointLight() {
	if len(d.resources) < 3 || len(d.constants) < 2 || len(d.colors) == 0 {
		d.fail(fmt.Errorf("ebitengpu: point light inputs not bound"))
		return
	}
	obj, ok := d.objectConstants()
	if !ok || d.constants[1] == nil || len(d.constants[1].data) < gpu.LightConstantsSize {
		d.fail(fmt.Errorf("ebitengpu: light constants not bound"))
		return
	}
	lc := gpu.DecodeLightConstants(d.constants[1].data)
	p := obj.Projection
	clear(d.uniforms)
	d.uniforms["Color"] = lc.Color[:]
	d.uniforms["Position"] = lc.ViewPos[:]
	d.uniforms["Proj"] = []float32{p[0], p[5], p[8], p[9]}
	d.uniforms["Far"] = lc.Far
	d.uniforms["Scale"] = float32(lightScale)

	target := d.colors[0]
	d.rectOp = ebiten.DrawRectShaderOptions{Uniforms: d.uniforms, Blend: d.blend()}
	for i := 0; i < 3; i++ {
		d.rectOp.Images[i] = d.resources[i].img
	}
	target.img.DrawRectShader(target.desc.Width, target.desc.Height, d.prog.shader, &d.rectOp)
}

func (d *Device) drawTonemap() {
	if len(d.resources) == 0 || d.resources[0] == nil || len(d.colors) == 0 {
		d.fail(fmt.Errorf("ebitengpu: tonemap inputs not bound"))
		return
	}
	src := d.resources[0]
	clear(d.uniforms)
	d.uniforms["Scale"] = float32(1 / lightScale)
	d.rectOp = ebiten.DrawRectShaderOptions{Uniforms: d.uniforms, Blend: ebiten.BlendCopy}
	d.rectOp.Images[0] = src.img
	d.colors[0].img.DrawRectShader(src.desc.Width, src.desc.Height, d.prog.shader, &d.rectOp)
}
