package chime

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phanxgames/chime/gpu"
	"github.com/phanxgames/chime/gpu/gputest"
)

func testLines(n int) []DebugLine {
	lines := make([]DebugLine, n)
	for i := range lines {
		x := float32(i)
		lines[i] = DebugLine{Start: mgl32.Vec3{x, 0, 0}, End: mgl32.Vec3{x, 1, 0}, Color: ColorWhite}
	}
	return lines
}

func newTestDebugDraw(t *testing.T, capacity int) (*DebugDraw, *gputest.Device) {
	t.Helper()
	dev := gputest.New()
	d, err := NewDebugDraw(dev, capacity)
	require.NoError(t, err)
	return d, dev
}

func overlayPipeline(t *testing.T, dev *gputest.Device) *DeferredPipeline {
	t.Helper()
	p := newTestPipeline(t, dev, 8, 8)
	beginTestFrame(t, p)
	require.NoError(t, p.BeginLighting())
	require.NoError(t, p.BeginEffects())
	require.NoError(t, p.PostProcess())
	require.NoError(t, p.BeginOverlays())
	return p
}

func TestNewDebugDraw(t *testing.T) {
	_, err := NewDebugDraw(nil, 4)
	assert.ErrorIs(t, err, ErrNoDevice)

	d, dev := newTestDebugDraw(t, 0)
	assert.Equal(t, DefaultLineCapacity, d.Capacity())
	assert.Equal(t, 1, d.BufferCount())
	assert.Equal(t, 0, d.BuffersInUse())
	assert.Equal(t, 1, dev.Count(gputest.OpMap), "first buffer is mapped up front")
	desc := d.buffers[0].vertices.Desc()
	assert.Equal(t, DefaultLineCapacity*2*gpu.LineVertexSize, desc.Size)
	assert.Equal(t, gpu.UsageDynamic, desc.Usage)
}

func TestDebugDrawBufferCount(t *testing.T) {
	for _, tc := range []struct {
		lines, buffers int
	}{
		{0, 0}, {1, 1}, {4, 1}, {5, 2}, {8, 2}, {9, 3}, {17, 5},
	} {
		d, _ := newTestDebugDraw(t, 4)
		d.DrawLines(testLines(tc.lines))
		assert.Equal(t, tc.buffers, d.BuffersInUse(), "%d lines", tc.lines)
		assert.Equal(t, tc.lines, d.Len())
	}
}

func TestDebugDrawAppendLinesStopsWhenFull(t *testing.T) {
	d, _ := newTestDebugDraw(t, 4)
	assert.Equal(t, 3, d.AppendLines(testLines(3)))
	assert.Equal(t, 1, d.AppendLines(testLines(3)))
	assert.Equal(t, 0, d.AppendLines(testLines(1)))
	assert.Equal(t, 1, d.BufferCount())
}

func TestDebugDrawWritesVertices(t *testing.T) {
	d, _ := newTestDebugDraw(t, 4)
	d.DrawLine(mgl32.Vec3{1, 2, 3}, mgl32.Vec3{4, 5, 6}, ColorRed)
	d.Commit()

	data := d.buffers[0].vertices.(*gputest.Buffer).Data
	a := gpu.ReadLineVertex(data)
	b := gpu.ReadLineVertex(data[gpu.LineVertexSize:])
	assert.Equal(t, gpu.LineVertex{Position: mgl32.Vec3{1, 2, 3}, Color: ColorRed}, a)
	assert.Equal(t, gpu.LineVertex{Position: mgl32.Vec3{4, 5, 6}, Color: ColorRed}, b)
}

func TestDebugDrawCommitIsIdempotent(t *testing.T) {
	d, _ := newTestDebugDraw(t, 4)
	d.DrawLines(testLines(6))

	d.Commit()
	d.Commit()

	assert.True(t, d.Committed())
	for _, b := range d.buffers {
		vb := b.vertices.(*gputest.Buffer)
		assert.False(t, vb.Mapped)
		assert.Equal(t, 1, vb.Unmaps)
	}
}

func TestDebugDrawAppendAfterCommitPanics(t *testing.T) {
	d, _ := newTestDebugDraw(t, 4)
	d.Commit()
	assert.PanicsWithValue(t, "chime: DebugDraw append after Commit without Flush", func() {
		d.DrawLine(mgl32.Vec3{}, mgl32.Vec3{1, 0, 0}, ColorWhite)
	})
}

func TestDebugDrawFlushReusesBuffers(t *testing.T) {
	d, dev := newTestDebugDraw(t, 4)
	d.DrawLines(testLines(10))
	d.Commit()
	d.Flush()

	assert.False(t, d.Committed())
	assert.Equal(t, 0, d.Len())
	assert.Equal(t, 3, d.BufferCount())
	newBuffers := dev.Count(gputest.OpNewBuffer)

	d.DrawLines(testLines(10))
	d.Commit()
	d.Flush()
	d.DrawLines(testLines(2))

	assert.Equal(t, newBuffers, dev.Count(gputest.OpNewBuffer), "no buffers created after the first frame")
	assert.Equal(t, 3, d.BufferCount())
	assert.Equal(t, 1, d.BuffersInUse())
}

func TestDebugDrawFlushWithoutCommitIsNoop(t *testing.T) {
	d, _ := newTestDebugDraw(t, 4)
	d.DrawLines(testLines(2))
	d.Flush()
	assert.Equal(t, 2, d.Len())
}

func TestDebugDrawRecoversFromGrowFailure(t *testing.T) {
	d, dev := newTestDebugDraw(t, 1)
	dev.FailMaps = 1

	d.DrawLines(testLines(2))
	require.Error(t, d.Err())
	assert.Equal(t, 1, d.Len(), "lines past the failure are dropped")
	assert.Equal(t, 1, d.BufferCount())
	d.DrawLine(mgl32.Vec3{}, mgl32.Vec3{1, 0, 0}, ColorWhite)
	assert.Equal(t, 1, d.Len())

	d.Commit()
	d.Flush()
	assert.NoError(t, d.Err())

	d.DrawLines(testLines(2))
	assert.Equal(t, 2, d.Len())
	assert.Equal(t, 2, d.BufferCount())
}

func TestDebugDrawRecoversFromFlushFailure(t *testing.T) {
	d, dev := newTestDebugDraw(t, 4)
	d.DrawLines(testLines(1))
	d.Commit()
	dev.FailMaps = 1

	d.Flush()
	require.Error(t, d.Err())
	d.DrawLines(testLines(1))
	assert.Equal(t, 0, d.Len())

	d.Commit()
	d.Flush()
	assert.NoError(t, d.Err())
	d.DrawLines(testLines(1))
	assert.Equal(t, 1, d.Len())
}

func TestDebugDrawDrawIssuesOneDrawPerBuffer(t *testing.T) {
	d, dev := newTestDebugDraw(t, 4)
	p := overlayPipeline(t, dev)
	d.DrawLines(testLines(9))
	d.Commit()
	dev.Reset()

	require.NoError(t, d.Draw(p))

	draws := dev.Draws()
	require.Len(t, draws, 3)
	assert.Equal(t, []int{8, 8, 2}, []int{draws[0].Count, draws[1].Count, draws[2].Count})
	for _, c := range draws {
		assert.Equal(t, gpu.TopologyLineList, c.Topology)
	}
	assert.Equal(t, 3, p.Stats().LineDraws)
}

func TestDebugDrawBeforeCommitPanics(t *testing.T) {
	d, dev := newTestDebugDraw(t, 4)
	p := overlayPipeline(t, dev)
	d.DrawLines(testLines(1))
	assert.PanicsWithValue(t, "chime: DebugDraw must be committed before drawing", func() {
		_ = d.Draw(p)
	})
}

func TestDebugDrawEmptyUncommittedDrawsNothing(t *testing.T) {
	d, dev := newTestDebugDraw(t, 4)
	p := overlayPipeline(t, dev)
	dev.Reset()
	assert.NoError(t, d.Draw(p))
	assert.Empty(t, dev.Draws())
}

func TestDebugDrawOutsideOverlays(t *testing.T) {
	d, dev := newTestDebugDraw(t, 4)
	p := newTestPipeline(t, dev, 8, 8)
	d.DrawLines(testLines(1))
	d.Commit()
	assert.ErrorIs(t, d.Draw(p), ErrStageOrder)
}

func TestDebugDrawLineDoesNotAllocate(t *testing.T) {
	d, _ := newTestDebugDraw(t, 1024)
	a, b := mgl32.Vec3{}, mgl32.Vec3{1, 1, 1}
	allocs := testing.AllocsPerRun(100, func() {
		d.DrawLine(a, b, ColorWhite)
	})
	assert.Zero(t, allocs)
}

func TestDebugDrawRelease(t *testing.T) {
	d, _ := newTestDebugDraw(t, 4)
	d.DrawLines(testLines(5))
	first := d.buffers[0].vertices.(*gputest.Buffer)
	second := d.buffers[1].vertices.(*gputest.Buffer)

	d.Release()

	assert.True(t, first.Released)
	assert.True(t, second.Released)
	assert.False(t, second.Mapped)
}
