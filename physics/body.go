package physics

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// BodyConfig describes a rigid body.
type BodyConfig struct {
	// Mass in kilograms. Zero makes the body kinematic.
	Mass        float32
	Shape       Shape
	Restitution float32
	// MotionState links the body to its owner. May be nil, in which case the
	// body keeps its own transform.
	MotionState MotionState
}

// Body is a rigid body.
type Body struct {
	shape       Shape
	mass        float32
	invMass     float32
	restitution float32
	motion      MotionState

	transform mgl32.Mat4
	linVel    mgl32.Vec3
	angVel    mgl32.Vec3

	world World

	// UserData is returned unchanged in ray results.
	UserData any
}

// NewBody creates a body from cfg.
func NewBody(cfg BodyConfig) *Body {
	b := &Body{
		shape:       cfg.Shape,
		mass:        cfg.Mass,
		restitution: cfg.Restitution,
		motion:      cfg.MotionState,
		transform:   mgl32.Ident4(),
	}
	if cfg.Mass > 0 {
		b.invMass = 1 / cfg.Mass
	}
	if b.motion != nil {
		b.transform = b.motion.WorldTransform()
	}
	return b
}

// Shape returns the collision shape.
func (b *Body) Shape() Shape { return b.shape }

// Mass returns the mass. Kinematic bodies report zero.
func (b *Body) Mass() float32 { return b.mass }

// InvMass returns the inverse mass. Kinematic bodies report zero.
func (b *Body) InvMass() float32 { return b.invMass }

// IsKinematic reports whether the body is driven by its owner rather than
// by the world.
func (b *Body) IsKinematic() bool { return b.invMass == 0 }

// Restitution returns the bounciness coefficient.
func (b *Body) Restitution() float32 { return b.restitution }

// SetRestitution sets the bounciness coefficient.
func (b *Body) SetRestitution(r float32) { b.restitution = r }

// MotionState returns the owner link, or nil.
func (b *Body) MotionState() MotionState { return b.motion }

// World returns the world the body is registered with, or nil.
func (b *Body) World() World { return b.world }

// WorldTransform returns the body's rigid world transform.
func (b *Body) WorldTransform() mgl32.Mat4 { return b.transform }

// SetWorldTransform teleports the body. The motion state is not notified.
func (b *Body) SetWorldTransform(m mgl32.Mat4) { b.transform = m }

// LinearVelocity returns the linear velocity.
func (b *Body) LinearVelocity() mgl32.Vec3 { return b.linVel }

// SetLinearVelocity sets the linear velocity. Ignored for kinematic bodies.
func (b *Body) SetLinearVelocity(v mgl32.Vec3) {
	if b.IsKinematic() {
		return
	}
	b.linVel = v
}

// AngularVelocity returns the angular velocity in radians per second.
func (b *Body) AngularVelocity() mgl32.Vec3 { return b.angVel }

// SetAngularVelocity sets the angular velocity. Ignored for kinematic bodies.
func (b *Body) SetAngularVelocity(v mgl32.Vec3) {
	if b.IsKinematic() {
		return
	}
	b.angVel = v
}

// ApplyImpulse changes the linear velocity by impulse/mass.
func (b *Body) ApplyImpulse(impulse mgl32.Vec3) {
	b.linVel = b.linVel.Add(impulse.Mul(b.invMass))
}

// Bounds returns the world-space AABB.
func (b *Body) Bounds() (min, max mgl32.Vec3) {
	if b.shape == nil {
		p := b.transform.Col(3).Vec3()
		return p, p
	}
	return b.shape.Bounds(b.transform)
}

// maxAngularStep limits rotation per step to a quarter turn.
const maxAngularStep = math32.Pi / 4

// integrate advances position and rotation by the current velocities.
func (b *Body) integrate(dt float32) {
	pos := b.transform.Col(3).Vec3().Add(b.linVel.Mul(dt))
	rot := mgl32.Mat4ToQuat(b.transform)

	ang := b.angVel.Len()
	if ang*dt > maxAngularStep {
		ang = maxAngularStep / dt
	}
	if ang > 1e-6 {
		dq := mgl32.QuatRotate(ang*dt, b.angVel.Normalize())
		rot = dq.Mul(rot).Normalize()
	}
	b.transform = mgl32.Translate3D(pos[0], pos[1], pos[2]).Mul4(rot.Mat4())
}
