package ebitengpu

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToScreenCorners(t *testing.T) {
	x, y := toScreen(mgl32.Vec4{-1, 1, 0, 1}, 640, 480)
	assert.InDelta(t, 0, x, 1e-4)
	assert.InDelta(t, 0, y, 1e-4)

	x, y = toScreen(mgl32.Vec4{2, -2, 0, 2}, 640, 480)
	assert.InDelta(t, 640, x, 1e-4)
	assert.InDelta(t, 480, y, 1e-4)
}

func TestFarPlaneRecoversPerspective(t *testing.T) {
	p := mgl32.Perspective(1, 1.5, 0.1, 250)
	assert.InDelta(t, 250, farPlane(p), 1e-2)
}

func TestLinearDepthClamps(t *testing.T) {
	assert.InDelta(t, 0.5, linearDepth(mgl32.Vec3{0, 0, -50}, 100), 1e-6)
	assert.Equal(t, float32(0), linearDepth(mgl32.Vec3{0, 0, 5}, 100))
	assert.Equal(t, float32(1), linearDepth(mgl32.Vec3{0, 0, -500}, 100))
	assert.Equal(t, float32(1), linearDepth(mgl32.Vec3{0, 0, -1}, 0))
}

func TestSplitDepth(t *testing.T) {
	hi, lo := splitDepth(1)
	assert.Equal(t, uint8(255), hi)
	assert.Equal(t, uint8(0), lo)

	hi, lo = splitDepth(0.5)
	assert.Equal(t, uint8(127), hi)
	assert.Equal(t, uint8(128), lo)
}

func TestClipLine(t *testing.T) {
	front := clipVertex{clip: mgl32.Vec4{0, 0, 0, 1}, color: mgl32.Vec4{1, 0, 0, 1}}
	behind := clipVertex{clip: mgl32.Vec4{0, 0, 0, -1}, color: mgl32.Vec4{0, 0, 1, 1}}

	_, _, ok := clipLine(behind, behind)
	assert.False(t, ok)

	a, b, ok := clipLine(front, behind)
	require.True(t, ok)
	assert.Equal(t, front, a)
	assert.InDelta(t, minW, b.clip[3], 1e-6)

	a, b, ok = clipLine(behind, front)
	require.True(t, ok)
	assert.InDelta(t, minW, a.clip[3], 1e-6)
	assert.Equal(t, front, b)
}

func TestLineQuad(t *testing.T) {
	a := clipVertex{clip: mgl32.Vec4{-1, 0, 0, 1}, color: mgl32.Vec4{1, 1, 1, 1}}
	b := clipVertex{clip: mgl32.Vec4{1, 0, 0, 1}, color: mgl32.Vec4{1, 1, 1, 1}}
	vs, is := lineQuad(nil, nil, a, b, 100, 100, 2)
	require.Len(t, vs, 4)
	assert.Equal(t, []uint32{0, 1, 2, 1, 3, 2}, is)
	// Horizontal line: the quad spans one pixel above and below y = 50.
	assert.InDelta(t, 51, vs[0].DstY, 1e-4)
	assert.InDelta(t, 49, vs[1].DstY, 1e-4)

	vs, is = lineQuad(vs, is, a, a, 100, 100, 2)
	assert.Len(t, vs, 4, "degenerate segments add nothing")
	assert.Len(t, is, 6)
}

func TestVisibleTrianglesSortsBackToFront(t *testing.T) {
	v := func(z, w float32) clipVertex {
		return clipVertex{clip: mgl32.Vec4{0, 0, 0, w}, view: mgl32.Vec3{0, 0, z}}
	}
	cv := []clipVertex{
		v(-1, 1), v(-1, 1), v(-1, 1), // near
		v(-9, 9), v(-9, 9), v(-9, 9), // far
		v(1, -1), v(-1, 1), v(-1, 1), // crosses the eye
	}
	tris := visibleTriangles(nil, cv, []uint32{0, 1, 2, 3, 4, 5, 6, 7, 8})
	require.Len(t, tris, 2)
	assert.Equal(t, [3]uint32{3, 4, 5}, tris[0].i)
	assert.Equal(t, [3]uint32{0, 1, 2}, tris[1].i)
}
