package chime

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/tanema/gween/ease"

	"github.com/phanxgames/chime/vr"
)

// Camera is a node that can render a scene. Its view is the inverse of its
// absolute transform; it looks down its local -Z axis.
type Camera interface {
	Node
	Projection() mgl32.Mat4
	ClipPlanes() (near, far float32)
}

// AspectSetter is implemented by cameras whose projection follows the
// target aspect ratio. Scene.Render sets it before drawing.
type AspectSetter interface {
	SetAspectRatio(aspect float32)
}

// --- PerspectiveCamera ---

// PerspectiveCamera is a symmetric perspective camera.
type PerspectiveCamera struct {
	NodeBase

	// FOV is the vertical field of view in radians.
	FOV    float32
	Aspect float32
	Near   float32
	Far    float32

	followTarget Node
	followOffset mgl32.Vec3
	followLerp   float32

	moveTween *TweenGroup
}

var (
	_ Camera       = (*PerspectiveCamera)(nil)
	_ AspectSetter = (*PerspectiveCamera)(nil)
)

// NewPerspectiveCamera creates a camera with the given vertical field of
// view in radians.
func NewPerspectiveCamera(name string, fov, aspect, near, far float32) *PerspectiveCamera {
	c := &PerspectiveCamera{FOV: fov, Aspect: aspect, Near: near, Far: far}
	c.Init(c, name, "PerspectiveCamera")
	return c
}

// Projection implements Camera.
func (c *PerspectiveCamera) Projection() mgl32.Mat4 {
	return mgl32.Perspective(c.FOV, c.Aspect, c.Near, c.Far)
}

// ClipPlanes implements Camera.
func (c *PerspectiveCamera) ClipPlanes() (near, far float32) { return c.Near, c.Far }

// SetAspectRatio implements AspectSetter.
func (c *PerspectiveCamera) SetAspectRatio(aspect float32) { c.Aspect = aspect }

// Follow makes the camera track target at offset (in the target's parent
// space) each Simulate, looking at it. lerp in (0, 1] controls how quickly
// the camera catches up; 1 snaps.
func (c *PerspectiveCamera) Follow(target Node, offset mgl32.Vec3, lerp float32) {
	c.followTarget = target
	c.followOffset = offset
	c.followLerp = lerp
}

// Unfollow stops tracking.
func (c *PerspectiveCamera) Unfollow() {
	c.followTarget = nil
}

// MoveTo animates the camera position to pos. Tracking is stopped.
func (c *PerspectiveCamera) MoveTo(pos mgl32.Vec3, duration float32, fn ease.TweenFunc) {
	c.followTarget = nil
	c.moveTween = TweenPosition(c, pos, duration, fn)
}

// Simulate advances an active move or follow, then its children.
func (c *PerspectiveCamera) Simulate(dt float32) {
	if c.moveTween != nil {
		c.moveTween.Update(dt)
		if c.moveTween.Done {
			c.moveTween = nil
		}
	}
	if t := c.followTarget; t != nil {
		if t.Base().IsDisposed() {
			c.followTarget = nil
		} else {
			c.follow(t)
		}
	}
	c.NodeBase.Simulate(dt)
}

func (c *PerspectiveCamera) follow(t Node) {
	// Work in the camera's parent space.
	inv := c.ParentTransform().Inv()
	target := inv.Mul4x1(t.Base().AbsolutePosition().Vec4(1)).Vec3()
	goal := target.Add(c.followOffset)
	pos := c.Position()
	lerp := c.followLerp
	if lerp <= 0 || lerp > 1 {
		lerp = 1
	}
	c.SetPosition(pos.Add(goal.Sub(pos).Mul(lerp)))
	c.LookAt(target, mgl32.Vec3{0, 1, 0})
}

// --- EyeCamera ---

// EyeSource provides per-eye projections and offsets. *vr.Headset
// implements it.
type EyeSource interface {
	EyeProjection(eye vr.Eye, near, far float32) mgl32.Mat4
	EyeToHead(eye vr.Eye) mgl32.Mat4
}

// EyeCamera renders one eye of a headset. It is placed under the headset
// node and keeps its local transform at the eye-to-head offset.
type EyeCamera struct {
	NodeBase

	Eye  vr.Eye
	Near float32
	Far  float32

	source     EyeSource
	projection mgl32.Mat4
}

var _ Camera = (*EyeCamera)(nil)

// NewEyeCamera creates a camera for eye and reads its projection and
// offset from source.
func NewEyeCamera(name string, source EyeSource, eye vr.Eye, near, far float32) *EyeCamera {
	c := &EyeCamera{Eye: eye, Near: near, Far: far, source: source}
	c.Init(c, name, "EyeCamera")
	c.refresh()
	return c
}

// Projection implements Camera.
func (c *EyeCamera) Projection() mgl32.Mat4 { return c.projection }

// ClipPlanes implements Camera.
func (c *EyeCamera) ClipPlanes() (near, far float32) { return c.Near, c.Far }

// Simulate re-reads the eye offset, which changes with the IPD setting.
func (c *EyeCamera) Simulate(dt float32) {
	c.refresh()
	c.NodeBase.Simulate(dt)
}

func (c *EyeCamera) refresh() {
	c.projection = c.source.EyeProjection(c.Eye, c.Near, c.Far)
	t, r, _, err := Decompose(c.source.EyeToHead(c.Eye))
	if err != nil {
		return
	}
	c.position, c.rotation = t, r
}
