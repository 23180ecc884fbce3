package physics

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/phanxgames/chime/internal/logx"
)

// WorldConfig configures a DynamicsWorld.
type WorldConfig struct {
	Gravity mgl32.Vec3
	// Ground enables an infinite static plane at y = GroundHeight.
	Ground       bool
	GroundHeight float32
	// GroundRestitution is multiplied with each body's restitution on contact.
	GroundRestitution float32
}

// DefaultWorldConfig returns earth gravity with a ground plane at y = 0.
func DefaultWorldConfig() WorldConfig {
	return WorldConfig{
		Gravity:           mgl32.Vec3{0, -9.81, 0},
		Ground:            true,
		GroundRestitution: 1,
	}
}

// DynamicsWorld is a minimal rigid-body world: gravity integration, a
// ground plane and ray casts against body shapes. Bodies do not collide with
// each other.
//
// DynamicsWorld is not safe for concurrent use.
type DynamicsWorld struct {
	cfg    WorldConfig
	bodies []*Body
	debug  DebugDrawer
}

var _ World = (*DynamicsWorld)(nil)

// NewDynamicsWorld creates an empty world.
func NewDynamicsWorld(cfg WorldConfig) *DynamicsWorld {
	return &DynamicsWorld{cfg: cfg}
}

// Config returns the world configuration.
func (w *DynamicsWorld) Config() WorldConfig { return w.cfg }

// Bodies returns the registered bodies. The returned slice MUST NOT be mutated.
func (w *DynamicsWorld) Bodies() []*Body { return w.bodies }

// NumBodies returns the number of registered bodies.
func (w *DynamicsWorld) NumBodies() int { return len(w.bodies) }

// Contains reports whether b is registered with w.
func (w *DynamicsWorld) Contains(b *Body) bool { return b.world == w }

// AddBody implements World. The body's transform is initialized from its
// motion state.
func (w *DynamicsWorld) AddBody(b *Body) {
	if b.world == w {
		w.warn(fmt.Sprintf("body %p added twice", b))
		return
	}
	if b.world != nil {
		w.warn(fmt.Sprintf("body %p already belongs to another world", b))
		return
	}
	if b.motion != nil {
		b.transform = b.motion.WorldTransform()
	}
	b.world = w
	w.bodies = append(w.bodies, b)
}

// RemoveBody implements World.
func (w *DynamicsWorld) RemoveBody(b *Body) {
	if b.world != w {
		return
	}
	for i, c := range w.bodies {
		if c == b {
			copy(w.bodies[i:], w.bodies[i+1:])
			w.bodies[len(w.bodies)-1] = nil
			w.bodies = w.bodies[:len(w.bodies)-1]
			break
		}
	}
	b.world = nil
}

// Step implements World. Kinematic bodies pull their transform from the
// motion state; dynamic bodies are integrated and pushed back to it.
func (w *DynamicsWorld) Step(dt float32) {
	if dt <= 0 {
		return
	}
	for _, b := range w.bodies {
		if b.IsKinematic() {
			if b.motion != nil {
				b.transform = b.motion.WorldTransform()
			}
			continue
		}
		b.linVel = b.linVel.Add(w.cfg.Gravity.Mul(dt))
		b.integrate(dt)
		if w.cfg.Ground {
			w.resolveGround(b)
		}
		if b.motion != nil {
			b.motion.SetWorldTransform(b.transform)
		}
	}
}

// resolveGround pushes b out of the ground plane and reflects its vertical
// velocity.
func (w *DynamicsWorld) resolveGround(b *Body) {
	lo, _ := b.Bounds()
	depth := w.cfg.GroundHeight - lo[1]
	if depth <= 0 {
		return
	}
	b.transform[13] += depth
	if b.linVel[1] < 0 {
		e := b.restitution * w.cfg.GroundRestitution
		b.linVel[1] = -b.linVel[1] * e
		if math32.Abs(b.linVel[1]) < 1e-3 {
			b.linVel[1] = 0
		}
	}
}

// RayTest implements World.
func (w *DynamicsWorld) RayTest(from, to mgl32.Vec3) (RayResult, bool) {
	dir := to.Sub(from)
	best := RayResult{Fraction: 2}
	for _, b := range w.bodies {
		if b.shape == nil {
			continue
		}
		inv := b.transform.Inv()
		o := mgl32.TransformCoordinate(from, inv)
		d := mgl32.TransformNormal(dir, inv)
		t, n, ok := b.shape.rayLocal(o, d)
		if !ok || t > 1 || t >= best.Fraction {
			continue
		}
		best = RayResult{
			Body:     b,
			Fraction: t,
			Point:    from.Add(dir.Mul(t)),
			Normal:   mgl32.TransformNormal(n, b.transform),
		}
	}
	if best.Body == nil {
		return RayResult{}, false
	}
	return best, true
}

// SetDebugDrawer implements World.
func (w *DynamicsWorld) SetDebugDrawer(d DebugDrawer) {
	w.debug = d
}

// DebugDrawWorld implements World. Each body is drawn as its AABB, dynamic
// bodies in green and kinematic ones in blue.
func (w *DynamicsWorld) DebugDrawWorld() {
	if w.debug == nil {
		return
	}
	for _, b := range w.bodies {
		color := mgl32.Vec4{0, 1, 0, 1}
		if b.IsKinematic() {
			color = mgl32.Vec4{0, 0, 1, 1}
		}
		lo, hi := b.Bounds()
		drawBox(w.debug, lo, hi, color)
	}
}

func (w *DynamicsWorld) warn(msg string) {
	logx.Get().Warn("physics: " + msg)
	if w.debug != nil {
		w.debug.ReportWarning(msg)
	}
}

// drawBox emits the 12 edges of the box [lo, hi].
func drawBox(d DebugDrawer, lo, hi mgl32.Vec3, color mgl32.Vec4) {
	var c [8]mgl32.Vec3
	for i := range c {
		c[i] = lo
		if i&1 != 0 {
			c[i][0] = hi[0]
		}
		if i&2 != 0 {
			c[i][1] = hi[1]
		}
		if i&4 != 0 {
			c[i][2] = hi[2]
		}
	}
	for i := range c {
		for bit := 1; bit < 8; bit <<= 1 {
			if i&bit == 0 {
				d.DrawLine(c[i], c[i|bit], color)
			}
		}
	}
}
