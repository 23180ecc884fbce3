package ebitengpu

import (
	"cmp"
	"slices"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/hajimehoshi/ebiten/v2"
)

// minW is the smallest clip-space w kept in front of the eye.
const minW = 1e-4

// clipVertex is a vertex after the model-view-projection transform.
type clipVertex struct {
	clip  mgl32.Vec4
	view  mgl32.Vec3
	uv    mgl32.Vec2
	color mgl32.Vec4
}

// toScreen maps a clip-space position to pixel coordinates of a w x h
// target, origin top left.
func toScreen(c mgl32.Vec4, w, h int) (x, y float32) {
	nx, ny := c[0]/c[3], c[1]/c[3]
	return (nx + 1) * 0.5 * float32(w), (1 - ny) * 0.5 * float32(h)
}

// linearDepth maps a view-space position to [0, 1] between the eye and far.
func linearDepth(view mgl32.Vec3, far float32) float32 {
	if far <= 0 {
		return 1
	}
	return max(0, min(1, -view[2]/far))
}

// encodeNormal packs a unit normal into a color.
func encodeNormal(n mgl32.Vec3) mgl32.Vec4 {
	return mgl32.Vec4{n[0]*0.5 + 0.5, n[1]*0.5 + 0.5, n[2]*0.5 + 0.5, 1}
}

// farPlane recovers the far clip distance of a perspective projection.
func farPlane(proj mgl32.Mat4) float32 {
	// proj[10] = (f+n)/(n-f), proj[14] = 2fn/(n-f).
	a, b := proj[10], proj[14]
	if a+1 == 0 {
		return 0
	}
	return b / (a + 1)
}

// clipLine clips the segment a-b against w = minW. It reports false when
// the whole segment is behind the eye.
func clipLine(a, b clipVertex) (clipVertex, clipVertex, bool) {
	aw, bw := a.clip[3], b.clip[3]
	switch {
	case aw < minW && bw < minW:
		return a, b, false
	case aw < minW:
		a = lerpVertex(b, a, (bw-minW)/(bw-aw))
	case bw < minW:
		b = lerpVertex(a, b, (aw-minW)/(aw-bw))
	}
	return a, b, true
}

func lerpVertex(a, b clipVertex, t float32) clipVertex {
	return clipVertex{
		clip:  a.clip.Add(b.clip.Sub(a.clip).Mul(t)),
		view:  a.view.Add(b.view.Sub(a.view).Mul(t)),
		uv:    a.uv.Add(b.uv.Sub(a.uv).Mul(t)),
		color: a.color.Add(b.color.Sub(a.color).Mul(t)),
	}
}

// lineQuad appends a screen-space quad of the given width for the segment
// a-b, colored per endpoint.
func lineQuad(vs []ebiten.Vertex, is []uint32, a, b clipVertex, w, h int, width float32) ([]ebiten.Vertex, []uint32) {
	ax, ay := toScreen(a.clip, w, h)
	bx, by := toScreen(b.clip, w, h)
	d := mgl32.Vec2{bx - ax, by - ay}
	if d.Len() == 0 {
		return vs, is
	}
	n := mgl32.Vec2{-d[1], d[0]}.Normalize().Mul(width / 2)
	base := uint32(len(vs))
	vs = append(vs,
		colorVertex(ax+n[0], ay+n[1], a.color),
		colorVertex(ax-n[0], ay-n[1], a.color),
		colorVertex(bx+n[0], by+n[1], b.color),
		colorVertex(bx-n[0], by-n[1], b.color),
	)
	is = append(is, base, base+1, base+2, base+1, base+3, base+2)
	return vs, is
}

func colorVertex(x, y float32, c mgl32.Vec4) ebiten.Vertex {
	return ebiten.Vertex{
		DstX: x, DstY: y,
		SrcX: 0.5, SrcY: 0.5,
		ColorR: c[0] * c[3], ColorG: c[1] * c[3], ColorB: c[2] * c[3], ColorA: c[3],
	}
}

// triangle indexes three clip vertices; depth orders drawing.
type triangle struct {
	i     [3]uint32
	depth float32
}

// visibleTriangles returns the triangles of idx with every vertex in front
// of the eye, sorted back to front.
func visibleTriangles(dst []triangle, cv []clipVertex, idx []uint32) []triangle {
	dst = dst[:0]
	for t := 0; t+2 < len(idx); t += 3 {
		a, b, c := idx[t], idx[t+1], idx[t+2]
		if cv[a].clip[3] < minW || cv[b].clip[3] < minW || cv[c].clip[3] < minW {
			continue
		}
		z := cv[a].view[2] + cv[b].view[2] + cv[c].view[2]
		dst = append(dst, triangle{i: [3]uint32{a, b, c}, depth: z})
	}
	// View space looks down -Z: the most negative sum is the farthest.
	slices.SortStableFunc(dst, func(x, y triangle) int { return cmp.Compare(x.depth, y.depth) })
	return dst
}
