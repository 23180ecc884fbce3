package chime

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/phanxgames/chime/gpu"
	"github.com/phanxgames/chime/internal/logx"
	"github.com/phanxgames/chime/physics"
)

// DefaultLineCapacity is the number of lines a debug line buffer holds.
const DefaultLineCapacity = 256

const verticesPerLine = 2

// lineBuffer is one dynamic vertex buffer of line pairs. It stays mapped
// while lines are appended and is unmapped by commit.
type lineBuffer struct {
	dev      gpu.Device
	vertices gpu.Buffer
	capacity int
	count    int
	data     []byte
}

func newLineBuffer(dev gpu.Device, capacity int) (*lineBuffer, error) {
	vb, err := dev.NewBuffer(gpu.BufferDesc{
		Size:  capacity * verticesPerLine * gpu.LineVertexSize,
		Usage: gpu.UsageDynamic,
		Bind:  gpu.BindVertexBuffer,
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("chime: create line buffer: %w", err)
	}
	b := &lineBuffer{dev: dev, vertices: vb, capacity: capacity}
	if err := b.reset(); err != nil {
		vb.Release()
		return nil, err
	}
	return b, nil
}

// appendLines writes as many lines as fit and returns how many were taken.
// An unmapped buffer takes none.
func (b *lineBuffer) appendLines(lines []DebugLine) int {
	if b.data == nil {
		return 0
	}
	n := min(b.capacity-b.count, len(lines))
	const stride = verticesPerLine * gpu.LineVertexSize
	for i, l := range lines[:n] {
		off := (b.count + i) * stride
		gpu.PutLineVertex(b.data[off:], gpu.LineVertex{Position: l.Start, Color: l.Color})
		gpu.PutLineVertex(b.data[off+gpu.LineVertexSize:], gpu.LineVertex{Position: l.End, Color: l.Color})
	}
	b.count += n
	return n
}

func (b *lineBuffer) commit() {
	if b.data != nil {
		b.dev.Unmap(b.vertices)
		b.data = nil
	}
}

func (b *lineBuffer) reset() error {
	b.count = 0
	if b.data != nil {
		return nil
	}
	data, err := b.dev.Map(b.vertices)
	if err != nil {
		return fmt.Errorf("chime: map line buffer: %w", err)
	}
	b.data = data
	return nil
}

func (b *lineBuffer) release() {
	b.commit()
	b.vertices.Release()
}

// DebugDraw accumulates colored world-space lines for one frame and draws
// them in the Overlays pass.
//
// Lines are written into a chain of fixed-capacity buffers. Buffers are
// created the first time a frame needs them and reused by later frames, so
// the chain grows to the largest per-frame line count and never shrinks.
//
// The frame cycle is: DrawLines/DrawLine, Commit, Draw, Flush. DebugDraw
// also serves as the physics world's debug drawer.
//
// DebugDraw is not safe for concurrent use.
type DebugDraw struct {
	dev       gpu.Device
	capacity  int
	buffers   []*lineBuffer
	current   int
	committed bool
	err       error
}

var _ physics.DebugDrawer = (*DebugDraw)(nil)

// NewDebugDraw creates an accumulator with buffers of capacity lines. A
// capacity of zero or less selects DefaultLineCapacity.
func NewDebugDraw(dev gpu.Device, capacity int) (*DebugDraw, error) {
	if dev == nil {
		return nil, ErrNoDevice
	}
	if capacity <= 0 {
		capacity = DefaultLineCapacity
	}
	first, err := newLineBuffer(dev, capacity)
	if err != nil {
		return nil, err
	}
	return &DebugDraw{dev: dev, capacity: capacity, buffers: []*lineBuffer{first}}, nil
}

// Capacity returns the number of lines per buffer.
func (d *DebugDraw) Capacity() int { return d.capacity }

// BuffersInUse returns how many buffers hold lines this frame.
func (d *DebugDraw) BuffersInUse() int {
	if d.buffers[d.current].count == 0 {
		return d.current
	}
	return d.current + 1
}

// BufferCount returns how many buffers have been created.
func (d *DebugDraw) BufferCount() int { return len(d.buffers) }

// Len returns the number of lines appended this frame.
func (d *DebugDraw) Len() int {
	n := 0
	for _, b := range d.buffers[:d.current+1] {
		n += b.count
	}
	return n
}

// Committed reports whether Commit has run since the last Flush.
func (d *DebugDraw) Committed() bool { return d.committed }

// Err returns the buffer allocation or mapping failure of the current frame,
// if any. Lines appended after a failure are dropped until Flush succeeds in
// preparing the next frame.
func (d *DebugDraw) Err() error { return d.err }

// AppendLines writes as many of lines as fit into the current buffer and
// returns the number taken.
func (d *DebugDraw) AppendLines(lines []DebugLine) int {
	if d.committed {
		panic("chime: DebugDraw append after Commit without Flush")
	}
	return d.buffers[d.current].appendLines(lines)
}

// DrawLines appends lines, moving on to further buffers as each fills.
func (d *DebugDraw) DrawLines(lines []DebugLine) {
	for len(lines) > 0 && d.err == nil {
		n := d.AppendLines(lines)
		lines = lines[n:]
		if len(lines) > 0 {
			d.err = d.advance()
		}
	}
}

// DrawLine appends one line. It implements physics.DebugDrawer.
func (d *DebugDraw) DrawLine(start, end mgl32.Vec3, color mgl32.Vec4) {
	line := [1]DebugLine{{Start: start, End: end, Color: color}}
	d.DrawLines(line[:])
}

func (d *DebugDraw) advance() error {
	d.current++
	if d.current == len(d.buffers) {
		b, err := newLineBuffer(d.dev, d.capacity)
		if err != nil {
			d.current--
			logx.Get().Error("chime: debug lines dropped", "err", err)
			return err
		}
		d.buffers = append(d.buffers, b)
		logx.Get().Debug("chime: debug line buffer added", "buffers", len(d.buffers))
		return nil
	}
	return d.buffers[d.current].reset()
}

// Commit makes this frame's lines visible to the device. Calling it again
// before Flush has no effect.
func (d *DebugDraw) Commit() {
	if d.committed {
		return
	}
	for _, b := range d.buffers[:d.current+1] {
		b.commit()
	}
	d.committed = true
}

// Draw issues one line-list draw per non-empty buffer. It panics if lines
// have been appended but not committed.
func (d *DebugDraw) Draw(p *DeferredPipeline) error {
	if !d.committed {
		if d.Len() == 0 {
			return nil
		}
		panic("chime: DebugDraw must be committed before drawing")
	}
	for _, b := range d.buffers[:d.current+1] {
		if b.count == 0 {
			continue
		}
		if err := p.DrawDebugLines(b.vertices, b.count); err != nil {
			return err
		}
	}
	return nil
}

// Flush rewinds to the first buffer for the next frame and clears Err. It
// has no effect unless Commit has run.
func (d *DebugDraw) Flush() {
	if !d.committed {
		return
	}
	d.current = 0
	d.committed = false
	if err := d.buffers[0].reset(); err != nil {
		logx.Get().Error("chime: debug lines dropped", "err", err)
		d.err = err
		return
	}
	d.err = nil
}

// Release frees every buffer.
func (d *DebugDraw) Release() {
	for _, b := range d.buffers {
		b.release()
	}
	d.buffers = nil
}

// --- physics.DebugDrawer ---

// Draw3DText implements physics.DebugDrawer. Text is not drawn.
func (d *DebugDraw) Draw3DText(mgl32.Vec3, string) {}

// ReportWarning implements physics.DebugDrawer.
func (d *DebugDraw) ReportWarning(msg string) {
	logx.Get().Warn("chime: physics warning", "msg", msg)
}
