// Package gputest provides a gpu.Device that records every call instead of
// rendering, for use in tests.
package gputest

import (
	"fmt"

	"github.com/phanxgames/chime/gpu"
)

// Op identifies a recorded device call.
type Op int

// Recorded operations.
const (
	OpNewBuffer Op = iota
	OpNewTexture
	OpNewProgram
	OpMap
	OpUnmap
	OpUpdateBuffer
	OpClearColor
	OpClearDepth
	OpSetRenderTargets
	OpSetShaderResources
	OpSetConstants
	OpSetRasterState
	OpSetProgram
	OpSetVertexBuffer
	OpSetIndexBuffer
	OpDraw
	OpDrawIndexed
)

var opNames = [...]string{
	"NewBuffer", "NewTexture", "NewProgram", "Map", "Unmap", "UpdateBuffer",
	"ClearColor", "ClearDepth", "SetRenderTargets", "SetShaderResources",
	"SetConstants", "SetRasterState", "SetProgram", "SetVertexBuffer",
	"SetIndexBuffer", "Draw", "DrawIndexed",
}

func (o Op) String() string {
	if int(o) < len(opNames) {
		return opNames[o]
	}
	return fmt.Sprintf("Op(%d)", int(o))
}

// Call is one recorded device call. Only the fields relevant to Op are set.
type Call struct {
	Op       Op
	Buffer   *Buffer
	Textures []*Texture
	Depth    *Texture
	Program  *Program
	Raster   gpu.RasterState
	Topology gpu.Topology
	Count    int
	First    int
	// Data is a copy of the bytes uploaded by UpdateBuffer.
	Data []byte
	// Program bound when a draw was issued.
	Bound *Program
}

// Buffer is a CPU-backed buffer.
type Buffer struct {
	desc     gpu.BufferDesc
	Data     []byte
	Mapped   bool
	Released bool
	// Unmaps counts how many times the buffer has been unmapped.
	Unmaps int
}

// Desc implements gpu.Buffer.
func (b *Buffer) Desc() gpu.BufferDesc { return b.desc }

// Release implements gpu.Buffer.
func (b *Buffer) Release() { b.Released = true }

// Texture is a CPU-backed texture.
type Texture struct {
	desc     gpu.TextureDesc
	Pixels   []byte
	Released bool
}

// Desc implements gpu.Texture.
func (t *Texture) Desc() gpu.TextureDesc { return t.desc }

// Release implements gpu.Texture.
func (t *Texture) Release() { t.Released = true }

// Program is a placeholder program.
type Program struct {
	kind     gpu.ProgramKind
	Released bool
}

// Kind implements gpu.Program.
func (p *Program) Kind() gpu.ProgramKind { return p.kind }

// Release implements gpu.Program.
func (p *Program) Release() { p.Released = true }

// Device records calls. The zero value is ready to use and reports a
// column-major matrix layout.
type Device struct {
	DeviceCaps gpu.Caps
	Calls      []Call

	// FailProgram, when set, makes NewProgram fail for that kind.
	FailProgram *gpu.ProgramKind
	// FailMaps makes the next FailMaps calls to Map fail.
	FailMaps int

	program *Program
}

// New returns an empty recording device.
func New() *Device {
	return &Device{}
}

// Reset discards the recorded calls.
func (d *Device) Reset() {
	d.Calls = d.Calls[:0]
}

// Ops returns the recorded operations in order.
func (d *Device) Ops() []Op {
	ops := make([]Op, len(d.Calls))
	for i := range d.Calls {
		ops[i] = d.Calls[i].Op
	}
	return ops
}

// Count returns how many calls of op were recorded.
func (d *Device) Count(op Op) int {
	n := 0
	for i := range d.Calls {
		if d.Calls[i].Op == op {
			n++
		}
	}
	return n
}

// Draws returns every Draw and DrawIndexed call.
func (d *Device) Draws() []Call {
	var out []Call
	for _, c := range d.Calls {
		if c.Op == OpDraw || c.Op == OpDrawIndexed {
			out = append(out, c)
		}
	}
	return out
}

// LastUpload returns the data of the most recent UpdateBuffer call targeting
// b before the call at index before, or nil.
func (d *Device) LastUpload(b *Buffer, before int) []byte {
	if before > len(d.Calls) {
		before = len(d.Calls)
	}
	for i := before - 1; i >= 0; i-- {
		c := d.Calls[i]
		if c.Op == OpUpdateBuffer && c.Buffer == b {
			return c.Data
		}
	}
	return nil
}

func (d *Device) record(c Call) {
	d.Calls = append(d.Calls, c)
}

// Caps implements gpu.Device.
func (d *Device) Caps() gpu.Caps { return d.DeviceCaps }

// NewBuffer implements gpu.Device.
func (d *Device) NewBuffer(desc gpu.BufferDesc, data []byte) (gpu.Buffer, error) {
	if desc.Size <= 0 {
		return nil, fmt.Errorf("gputest: invalid buffer size %d", desc.Size)
	}
	if desc.Usage == gpu.UsageImmutable && data == nil {
		return nil, fmt.Errorf("gputest: immutable buffer without data")
	}
	b := &Buffer{desc: desc, Data: make([]byte, desc.Size)}
	copy(b.Data, data)
	d.record(Call{Op: OpNewBuffer, Buffer: b})
	return b, nil
}

// NewTexture implements gpu.Device.
func (d *Device) NewTexture(desc gpu.TextureDesc, pixels []byte) (gpu.Texture, error) {
	if desc.Width <= 0 || desc.Height <= 0 {
		return nil, fmt.Errorf("gputest: invalid texture size %dx%d", desc.Width, desc.Height)
	}
	size := desc.Width * desc.Height * desc.Format.BytesPerPixel()
	if pixels != nil && len(pixels) != size {
		return nil, fmt.Errorf("gputest: texture data is %d bytes, want %d", len(pixels), size)
	}
	t := &Texture{desc: desc, Pixels: make([]byte, size)}
	copy(t.Pixels, pixels)
	d.record(Call{Op: OpNewTexture, Textures: []*Texture{t}})
	return t, nil
}

// NewProgram implements gpu.Device.
func (d *Device) NewProgram(kind gpu.ProgramKind) (gpu.Program, error) {
	if d.FailProgram != nil && *d.FailProgram == kind {
		return nil, fmt.Errorf("gputest: compile %s: forced failure", kind)
	}
	p := &Program{kind: kind}
	d.record(Call{Op: OpNewProgram, Program: p})
	return p, nil
}

// Map implements gpu.Device.
func (d *Device) Map(b gpu.Buffer) ([]byte, error) {
	buf := b.(*Buffer)
	if buf.Mapped {
		return nil, gpu.ErrMapped
	}
	if d.FailMaps > 0 {
		d.FailMaps--
		return nil, fmt.Errorf("gputest: map: forced failure")
	}
	buf.Mapped = true
	clear(buf.Data)
	d.record(Call{Op: OpMap, Buffer: buf})
	return buf.Data, nil
}

// Unmap implements gpu.Device.
func (d *Device) Unmap(b gpu.Buffer) {
	buf := b.(*Buffer)
	buf.Mapped = false
	buf.Unmaps++
	d.record(Call{Op: OpUnmap, Buffer: buf})
}

// UpdateBuffer implements gpu.Device.
func (d *Device) UpdateBuffer(b gpu.Buffer, data []byte) error {
	buf := b.(*Buffer)
	if len(data) > len(buf.Data) {
		return fmt.Errorf("gputest: update of %d bytes exceeds buffer size %d", len(data), len(buf.Data))
	}
	copy(buf.Data, data)
	d.record(Call{Op: OpUpdateBuffer, Buffer: buf, Data: append([]byte(nil), data...)})
	return nil
}

// ClearColor implements gpu.Device.
func (d *Device) ClearColor(t gpu.Texture, _ [4]float32) {
	d.record(Call{Op: OpClearColor, Textures: []*Texture{t.(*Texture)}})
}

// ClearDepth implements gpu.Device.
func (d *Device) ClearDepth(t gpu.Texture, _ float32) {
	d.record(Call{Op: OpClearDepth, Depth: t.(*Texture)})
}

// SetRenderTargets implements gpu.Device.
func (d *Device) SetRenderTargets(depth gpu.Texture, colors ...gpu.Texture) {
	c := Call{Op: OpSetRenderTargets, Textures: textures(colors)}
	if depth != nil {
		c.Depth = depth.(*Texture)
	}
	d.record(c)
}

// SetShaderResources implements gpu.Device.
func (d *Device) SetShaderResources(ts ...gpu.Texture) {
	d.record(Call{Op: OpSetShaderResources, Textures: textures(ts)})
}

// SetConstants implements gpu.Device.
func (d *Device) SetConstants(buffers ...gpu.Buffer) {
	for _, b := range buffers {
		d.record(Call{Op: OpSetConstants, Buffer: b.(*Buffer)})
	}
}

// SetRasterState implements gpu.Device.
func (d *Device) SetRasterState(s gpu.RasterState) {
	d.record(Call{Op: OpSetRasterState, Raster: s})
}

// SetProgram implements gpu.Device.
func (d *Device) SetProgram(p gpu.Program) {
	d.program = p.(*Program)
	d.record(Call{Op: OpSetProgram, Program: d.program})
}

// SetVertexBuffer implements gpu.Device.
func (d *Device) SetVertexBuffer(b gpu.Buffer, stride int) {
	d.record(Call{Op: OpSetVertexBuffer, Buffer: b.(*Buffer), Count: stride})
}

// SetIndexBuffer implements gpu.Device.
func (d *Device) SetIndexBuffer(b gpu.Buffer) {
	d.record(Call{Op: OpSetIndexBuffer, Buffer: b.(*Buffer)})
}

// Draw implements gpu.Device.
func (d *Device) Draw(topology gpu.Topology, count, first int) {
	d.record(Call{Op: OpDraw, Topology: topology, Count: count, First: first, Bound: d.program})
}

// DrawIndexed implements gpu.Device.
func (d *Device) DrawIndexed(topology gpu.Topology, count, first int) {
	d.record(Call{Op: OpDrawIndexed, Topology: topology, Count: count, First: first, Bound: d.program})
}

func textures(ts []gpu.Texture) []*Texture {
	out := make([]*Texture, len(ts))
	for i, t := range ts {
		out[i] = t.(*Texture)
	}
	return out
}
