package chime

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/phanxgames/chime/gpu"
)

// --- Cube ---

// CubeData returns a cube of the given edge length centered on the origin,
// with per-face normals.
func CubeData(size float32) SectionData {
	h := size / 2
	faces := [6]struct {
		normal, u, v mgl32.Vec3
	}{
		{mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, -1}, mgl32.Vec3{0, 1, 0}},
		{mgl32.Vec3{-1, 0, 0}, mgl32.Vec3{0, 0, 1}, mgl32.Vec3{0, 1, 0}},
		{mgl32.Vec3{0, 1, 0}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, -1}},
		{mgl32.Vec3{0, -1, 0}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, 1}},
		{mgl32.Vec3{0, 0, 1}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 1, 0}},
		{mgl32.Vec3{0, 0, -1}, mgl32.Vec3{-1, 0, 0}, mgl32.Vec3{0, 1, 0}},
	}
	d := SectionData{
		Topology: gpu.TopologyTriangleList,
		Vertices: make([]gpu.StaticVertex, 0, 24),
		Indices:  make([]uint32, 0, 36),
	}
	corners := [4]mgl32.Vec2{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}}
	for _, f := range faces {
		base := uint32(len(d.Vertices))
		for _, c := range corners {
			p := f.normal.Add(f.u.Mul(c[0])).Add(f.v.Mul(c[1])).Mul(h)
			d.Vertices = append(d.Vertices, gpu.StaticVertex{
				Position: p,
				Normal:   f.normal,
				UV:       mgl32.Vec2{(c[0] + 1) / 2, (1 - c[1]) / 2},
			})
		}
		d.Indices = append(d.Indices, base, base+1, base+2, base, base+2, base+3)
	}
	return d
}

// --- Plane ---

// PlaneData returns a plane in the XZ plane facing +Y, centered on the
// origin.
func PlaneData(width, depth float32) SectionData {
	w, dd := width/2, depth/2
	up := mgl32.Vec3{0, 1, 0}
	return SectionData{
		Topology: gpu.TopologyTriangleList,
		Vertices: []gpu.StaticVertex{
			{Position: mgl32.Vec3{-w, 0, dd}, Normal: up, UV: mgl32.Vec2{0, 1}},
			{Position: mgl32.Vec3{w, 0, dd}, Normal: up, UV: mgl32.Vec2{1, 1}},
			{Position: mgl32.Vec3{w, 0, -dd}, Normal: up, UV: mgl32.Vec2{1, 0}},
			{Position: mgl32.Vec3{-w, 0, -dd}, Normal: up, UV: mgl32.Vec2{0, 0}},
		},
		Indices: []uint32{0, 1, 2, 0, 2, 3},
	}
}

// --- Sphere ---

// SphereData returns a UV sphere. rings and segments are clamped to at least
// 3.
func SphereData(radius float32, rings, segments int) SectionData {
	rings = max(rings, 3)
	segments = max(segments, 3)
	d := SectionData{
		Topology: gpu.TopologyTriangleList,
		Vertices: make([]gpu.StaticVertex, 0, (rings+1)*(segments+1)),
		Indices:  make([]uint32, 0, rings*segments*6),
	}
	for r := 0; r <= rings; r++ {
		v := float32(r) / float32(rings)
		phi := v * math32.Pi
		sinPhi, cosPhi := math32.Sincos(phi)
		for s := 0; s <= segments; s++ {
			u := float32(s) / float32(segments)
			theta := u * 2 * math32.Pi
			sinTheta, cosTheta := math32.Sincos(theta)
			n := mgl32.Vec3{cosTheta * sinPhi, cosPhi, sinTheta * sinPhi}
			d.Vertices = append(d.Vertices, gpu.StaticVertex{
				Position: n.Mul(radius),
				Normal:   n,
				UV:       mgl32.Vec2{u, v},
			})
		}
	}
	cols := uint32(segments + 1)
	for r := uint32(0); r < uint32(rings); r++ {
		for s := uint32(0); s < uint32(segments); s++ {
			a := r*cols + s
			b := a + cols
			d.Indices = append(d.Indices, a, a+1, b, a+1, b+1, b)
		}
	}
	return d
}

// --- Lines ---

// GridLineColor is the color of the floor lines drawn by GridLines.
var GridLineColor = mgl32.Vec4{0.3, 0.3, 0.3, 0.8}

// GridLines returns unit axis lines (X red, Y green, Z blue) and, when floor
// is set, a 21x21 line floor grid spanning -10..10 in the XZ plane.
func GridLines(floor bool) ([]gpu.LineVertex, []uint32) {
	verts := []gpu.LineVertex{
		{Position: mgl32.Vec3{}, Color: ColorRed},
		{Position: mgl32.Vec3{1, 0, 0}, Color: ColorRed},
		{Position: mgl32.Vec3{}, Color: ColorGreen},
		{Position: mgl32.Vec3{0, 1, 0}, Color: ColorGreen},
		{Position: mgl32.Vec3{}, Color: ColorBlue},
		{Position: mgl32.Vec3{0, 0, 1}, Color: ColorBlue},
	}
	idx := []uint32{0, 1, 2, 3, 4, 5}
	if !floor {
		return verts, idx
	}
	line := func(a, b mgl32.Vec3) {
		idx = append(idx, uint32(len(verts)), uint32(len(verts)+1))
		verts = append(verts,
			gpu.LineVertex{Position: a, Color: GridLineColor},
			gpu.LineVertex{Position: b, Color: GridLineColor})
	}
	for x := -10; x <= 10; x++ {
		line(mgl32.Vec3{float32(x), 0, 10}, mgl32.Vec3{float32(x), 0, -10})
	}
	for z := -10; z <= 10; z++ {
		line(mgl32.Vec3{10, 0, float32(z)}, mgl32.Vec3{-10, 0, float32(z)})
	}
	return verts, idx
}

// BoxLines returns the 12 edges of an axis-aligned box.
func BoxLines(lo, hi mgl32.Vec3, color mgl32.Vec4) [12]DebugLine {
	c := [8]mgl32.Vec3{
		{lo[0], lo[1], lo[2]}, {hi[0], lo[1], lo[2]}, {hi[0], hi[1], lo[2]}, {lo[0], hi[1], lo[2]},
		{lo[0], lo[1], hi[2]}, {hi[0], lo[1], hi[2]}, {hi[0], hi[1], hi[2]}, {lo[0], hi[1], hi[2]},
	}
	edges := [12][2]int{
		{0, 1}, {1, 2}, {2, 3}, {3, 0},
		{4, 5}, {5, 6}, {6, 7}, {7, 4},
		{0, 4}, {1, 5}, {2, 6}, {3, 7},
	}
	var out [12]DebugLine
	for i, e := range edges {
		out[i] = DebugLine{Start: c[e[0]], End: c[e[1]], Color: color}
	}
	return out
}
