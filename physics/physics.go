// Package physics defines the rigid-body contract chime synchronizes scene
// nodes with, and a small reference dynamics world implementing it.
//
// Bodies exchange transforms with their owners through a MotionState: the
// world asks for the current transform when a body is added (and every step
// for kinematic bodies), and hands back the integrated transform of dynamic
// bodies after each step. Transforms are rigid: rotation and translation only.
package physics

import (
	"errors"

	"github.com/go-gl/mathgl/mgl32"
)

// ErrRegistered is returned by Register for a body that belongs to another
// world.
var ErrRegistered = errors.New("physics: body is registered with another world")

// MotionState is the callback contract between a body and its owner.
type MotionState interface {
	// WorldTransform returns the owner's current rigid world transform.
	WorldTransform() mgl32.Mat4
	// SetWorldTransform receives the transform integrated by the world.
	SetWorldTransform(m mgl32.Mat4)
}

// DebugDrawer receives the world's debug visualization.
type DebugDrawer interface {
	DrawLine(from, to mgl32.Vec3, color mgl32.Vec4)
	Draw3DText(pos mgl32.Vec3, text string)
	ReportWarning(msg string)
}

// RayResult describes the closest hit of a ray cast.
type RayResult struct {
	Body *Body
	// Fraction is the hit distance along the ray in [0, 1].
	Fraction float32
	Point    mgl32.Vec3
	Normal   mgl32.Vec3
}

// World is a stepped dynamics world.
type World interface {
	// AddBody registers b. Adding a body twice reports a warning and has no
	// further effect.
	AddBody(b *Body)
	// RemoveBody deregisters b. Removing an unknown body is a no-op.
	RemoveBody(b *Body)
	// Step advances the simulation by dt seconds.
	Step(dt float32)
	// RayTest returns the closest body hit between from and to.
	RayTest(from, to mgl32.Vec3) (RayResult, bool)
	// SetDebugDrawer sets the visitor used by DebugDrawWorld. Nil disables it.
	SetDebugDrawer(d DebugDrawer)
	// DebugDrawWorld emits debug lines for every body.
	DebugDrawWorld()
}

// Register adds b to w and records w as the body's world, so that
// Body.World reports it whatever the World implementation. It fails with
// ErrRegistered, without adding, if b belongs to another world.
func Register(w World, b *Body) error {
	if b.world != nil && b.world != w {
		return ErrRegistered
	}
	w.AddBody(b)
	b.world = w
	return nil
}

// Deregister removes b from w and clears the body's world.
func Deregister(w World, b *Body) {
	w.RemoveBody(b)
	if b.world == w {
		b.world = nil
	}
}
