package physics

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Shape is a convex collision shape centered on its body's origin.
type Shape interface {
	// Bounds returns the world-space AABB of the shape under the rigid
	// transform m.
	Bounds(m mgl32.Mat4) (min, max mgl32.Vec3)
	// rayLocal intersects a ray given in shape space. It returns the ray
	// parameter and the shape-space normal of the first hit.
	rayLocal(origin, dir mgl32.Vec3) (t float32, normal mgl32.Vec3, ok bool)
}

// Sphere is a sphere shape.
type Sphere struct {
	Radius float32
}

// Bounds implements Shape.
func (s Sphere) Bounds(m mgl32.Mat4) (min, max mgl32.Vec3) {
	c := m.Col(3).Vec3()
	r := mgl32.Vec3{s.Radius, s.Radius, s.Radius}
	return c.Sub(r), c.Add(r)
}

func (s Sphere) rayLocal(o, d mgl32.Vec3) (float32, mgl32.Vec3, bool) {
	a := d.Dot(d)
	if a == 0 {
		return 0, mgl32.Vec3{}, false
	}
	b := o.Dot(d)
	c := o.Dot(o) - s.Radius*s.Radius
	disc := b*b - a*c
	if disc < 0 {
		return 0, mgl32.Vec3{}, false
	}
	sq := math32.Sqrt(disc)
	t := (-b - sq) / a
	if t < 0 {
		t = (-b + sq) / a
		if t < 0 {
			return 0, mgl32.Vec3{}, false
		}
	}
	p := o.Add(d.Mul(t))
	return t, p.Normalize(), true
}

// Box is an axis-aligned box in body space.
type Box struct {
	HalfExtents mgl32.Vec3
}

// Bounds implements Shape.
func (b Box) Bounds(m mgl32.Mat4) (min, max mgl32.Vec3) {
	c := m.Col(3).Vec3()
	var e mgl32.Vec3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			e[i] += math32.Abs(m.At(i, j)) * b.HalfExtents[j]
		}
	}
	return c.Sub(e), c.Add(e)
}

func (b Box) rayLocal(o, d mgl32.Vec3) (float32, mgl32.Vec3, bool) {
	tmin, tmax := float32(0), float32(math32.MaxFloat32)
	axis, sign := -1, float32(0)
	for i := 0; i < 3; i++ {
		if math32.Abs(d[i]) < 1e-12 {
			if o[i] < -b.HalfExtents[i] || o[i] > b.HalfExtents[i] {
				return 0, mgl32.Vec3{}, false
			}
			continue
		}
		inv := 1 / d[i]
		t0 := (-b.HalfExtents[i] - o[i]) * inv
		t1 := (b.HalfExtents[i] - o[i]) * inv
		s := float32(-1)
		if t0 > t1 {
			t0, t1 = t1, t0
			s = 1
		}
		if t0 > tmin {
			tmin, axis, sign = t0, i, s
		}
		if t1 < tmax {
			tmax = t1
		}
		if tmin > tmax {
			return 0, mgl32.Vec3{}, false
		}
	}
	var n mgl32.Vec3
	if axis >= 0 {
		n[axis] = sign
	}
	return tmin, n, true
}
