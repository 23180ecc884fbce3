package chime

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phanxgames/chime/gpu"
	"github.com/phanxgames/chime/gpu/gputest"
)

// faceNormal returns the counter-clockwise normal of triangle i.
func faceNormal(d SectionData, i int) mgl32.Vec3 {
	a := d.Vertices[d.Indices[3*i]].Position
	b := d.Vertices[d.Indices[3*i+1]].Position
	c := d.Vertices[d.Indices[3*i+2]].Position
	return b.Sub(a).Cross(c.Sub(a)).Normalize()
}

func TestCubeData(t *testing.T) {
	d := CubeData(2)
	require.Len(t, d.Vertices, 24)
	require.Len(t, d.Indices, 36)
	assert.Equal(t, gpu.TopologyTriangleList, d.Topology)

	for i := 0; i < 12; i++ {
		n := d.Vertices[d.Indices[3*i]].Normal
		assertVec3(t, n, faceNormal(d, i), "triangle %d winds outward", i)
	}
	for _, v := range d.Vertices {
		for k := 0; k < 3; k++ {
			assert.InDelta(t, 1, abs32(v.Position[k]), eps)
		}
		assert.True(t, v.UV[0] >= 0 && v.UV[0] <= 1 && v.UV[1] >= 0 && v.UV[1] <= 1)
	}
}

func TestPlaneData(t *testing.T) {
	d := PlaneData(4, 2)
	require.Len(t, d.Vertices, 4)
	require.Len(t, d.Indices, 6)
	assertVec3(t, mgl32.Vec3{0, 1, 0}, faceNormal(d, 0))
	assertVec3(t, mgl32.Vec3{0, 1, 0}, faceNormal(d, 1))
	assertVec3(t, mgl32.Vec3{2, 0, -1}, d.Vertices[2].Position)
}

func TestSphereData(t *testing.T) {
	d := SphereData(2, 8, 16)
	assert.Len(t, d.Vertices, 9*17)
	assert.Len(t, d.Indices, 8*16*6)
	for _, v := range d.Vertices {
		assert.InDelta(t, 2, v.Position.Len(), 1e-3)
		assert.InDelta(t, 1, v.Normal.Len(), 1e-3)
	}
	for _, idx := range d.Indices {
		assert.Less(t, int(idx), len(d.Vertices))
	}

	small := SphereData(1, 1, 0)
	assert.Len(t, small.Vertices, 4*4, "rings and segments clamp to 3")
}

func TestGridLines(t *testing.T) {
	verts, idx := GridLines(false)
	require.Len(t, verts, 6)
	assert.Equal(t, []uint32{0, 1, 2, 3, 4, 5}, idx)
	assert.Equal(t, ColorRed, verts[1].Color)
	assertVec3(t, mgl32.Vec3{0, 1, 0}, verts[3].Position)
	assert.Equal(t, ColorBlue, verts[5].Color)

	verts, idx = GridLines(true)
	assert.Len(t, verts, 6+21*2*2)
	assert.Len(t, idx, len(verts))
	assert.Equal(t, GridLineColor, verts[6].Color)
	assertVec3(t, mgl32.Vec3{-10, 0, 10}, verts[6].Position)
	for _, v := range verts[6:] {
		assert.Zero(t, v.Position[1], "floor lies in the XZ plane")
	}
}

func TestBoxLines(t *testing.T) {
	lines := BoxLines(mgl32.Vec3{-1, -2, -3}, mgl32.Vec3{1, 2, 3}, ColorGreen)

	var total float32
	for _, l := range lines {
		total += l.End.Sub(l.Start).Len()
		assert.Equal(t, ColorGreen, l.Color)
	}
	assert.InDelta(t, 4*(2+4+6), total, eps)
	assertVec3(t, mgl32.Vec3{-1, -2, -3}, lines[0].Start)
	assertVec3(t, mgl32.Vec3{1, 2, 3}, lines[10].End)
}

func TestGridDrawsInOverlays(t *testing.T) {
	dev := gputest.New()
	g, err := NewGrid(dev, "grid", true)
	require.NoError(t, err)
	assert.Equal(t, 90, g.Mesh().IndexCount)

	p := overlayPipeline(t, dev)
	dev.Reset()
	require.NoError(t, g.DrawOverlays(&DrawContext{Pipeline: p}))

	draws := dev.Draws()
	require.Len(t, draws, 1)
	assert.Equal(t, gputest.OpDrawIndexed, draws[0].Op)
	assert.Equal(t, gpu.TopologyLineList, draws[0].Topology)
	assert.Equal(t, 90, draws[0].Count)

	g.Dispose()
	assert.True(t, g.Mesh().Vertices.(*gputest.Buffer).Released)
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
