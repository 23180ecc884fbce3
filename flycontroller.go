package chime

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/phanxgames/chime/input"
)

// FlyBindings names the input elements that drive a FlyController. Nil
// elements are ignored.
type FlyBindings struct {
	Forward, Back, Left, Right, Up, Down *input.Element[bool]
	// Look enables mouse look while held. Nil means always on.
	Look         *input.Element[bool]
	LookX, LookY *input.Element[float32]
	Fast         *input.Element[bool]
}

// FlyKeys are the keys KeyboardFlyBindings looks up on its device.
var FlyKeys = []ebiten.Key{
	ebiten.KeyW, ebiten.KeyS, ebiten.KeyA, ebiten.KeyD,
	ebiten.KeyE, ebiten.KeyQ, ebiten.KeyShift,
}

// KeyboardFlyBindings binds WASD, E/Q for up/down, shift for speed and the
// right mouse button for look.
func KeyboardFlyBindings(km *input.KeyboardMouse) FlyBindings {
	return FlyBindings{
		Forward: km.Key(ebiten.KeyW),
		Back:    km.Key(ebiten.KeyS),
		Left:    km.Key(ebiten.KeyA),
		Right:   km.Key(ebiten.KeyD),
		Up:      km.Key(ebiten.KeyE),
		Down:    km.Key(ebiten.KeyQ),
		Fast:    km.Key(ebiten.KeyShift),
		Look:    km.Button(ebiten.MouseButtonRight),
		LookX:   km.Axis(input.AxisMouseDX),
		LookY:   km.Axis(input.AxisMouseDY),
	}
}

// FlyController moves itself, and so its children, like a free-flying
// camera rig. Put a camera under it.
type FlyController struct {
	NodeBase

	// Speed in units per second; Fast multiplies it by FastFactor.
	Speed      float32
	FastFactor float32
	// LookSpeed in radians per mouse unit.
	LookSpeed float32

	Bindings FlyBindings

	yaw, pitch float32
}

// NewFlyController creates a rig driven by b.
func NewFlyController(name string, b FlyBindings) *FlyController {
	c := &FlyController{Speed: 4, FastFactor: 4, LookSpeed: 0.005, Bindings: b}
	c.Init(c, name, "FlyController")
	return c
}

// SetYawPitch sets the heading, in radians. Pitch is clamped short of
// straight up and down.
func (c *FlyController) SetYawPitch(yaw, pitch float32) {
	const limit = math32.Pi/2 - 0.01
	c.yaw = yaw
	c.pitch = max(-limit, min(limit, pitch))
	c.SetRotation(mgl32.QuatRotate(c.yaw, mgl32.Vec3{0, 1, 0}).
		Mul(mgl32.QuatRotate(c.pitch, mgl32.Vec3{1, 0, 0})))
}

// LookToward turns the rig to face dir, in parent space.
func (c *FlyController) LookToward(dir mgl32.Vec3) {
	if dir.Len() == 0 {
		return
	}
	d := dir.Normalize()
	c.SetYawPitch(math32.Atan2(-d[0], -d[2]), math32.Asin(d[1]))
}

// YawPitch returns the heading in radians.
func (c *FlyController) YawPitch() (yaw, pitch float32) { return c.yaw, c.pitch }

// Simulate applies look and movement, then simulates the children.
func (c *FlyController) Simulate(dt float32) {
	b := &c.Bindings
	if b.Look == nil || b.Look.Value() {
		dx, dy := axis(b.LookX), axis(b.LookY)
		if dx != 0 || dy != 0 {
			c.SetYawPitch(c.yaw-dx*c.LookSpeed, c.pitch-dy*c.LookSpeed)
		}
	}

	var move mgl32.Vec3
	move[2] -= held(b.Forward)
	move[2] += held(b.Back)
	move[0] -= held(b.Left)
	move[0] += held(b.Right)
	if move.Len() > 0 {
		speed := c.Speed
		if held(b.Fast) > 0 {
			speed *= c.FastFactor
		}
		c.Translate(c.Rotation().Rotate(move.Normalize()).Mul(speed * dt))
	}
	if up := held(b.Up) - held(b.Down); up != 0 {
		c.Translate(mgl32.Vec3{0, up * c.Speed * dt, 0})
	}
	c.NodeBase.Simulate(dt)
}

func held(e *input.Element[bool]) float32 {
	if e != nil && e.Value() {
		return 1
	}
	return 0
}

func axis(e *input.Element[float32]) float32 {
	if e == nil {
		return 0
	}
	return e.Value()
}
