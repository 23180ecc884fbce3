package chime

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// TweenGroup animates up to 4 float32 values of a node simultaneously.
// Create one via the convenience constructors (TweenPosition, TweenScale,
// TweenRotation, TweenLightColor) and call Update(dt) each frame, or add it
// to a Scene with AddTween. The group applies values through the node's
// setters. If the target node is disposed, the group stops immediately.
type TweenGroup struct {
	tweens [4]*gween.Tween
	count  int
	values [4]float32
	apply  func(v [4]float32)
	target Node
	Done   bool
}

// Update advances all tweens by dt seconds and applies the values. If the
// target node has been disposed, Done is set and nothing is written.
func (g *TweenGroup) Update(dt float32) {
	if g.Done {
		return
	}
	if g.target != nil && g.target.Base().IsDisposed() {
		g.Done = true
		return
	}

	allDone := true
	for i := 0; i < g.count; i++ {
		val, finished := g.tweens[i].Update(dt)
		g.values[i] = val
		if !finished {
			allDone = false
		}
	}
	g.Done = allDone
	g.apply(g.values)
}

func newVec3Tween(node Node, from, to mgl32.Vec3, duration float32, fn ease.TweenFunc, set func(mgl32.Vec3)) *TweenGroup {
	g := &TweenGroup{count: 3, target: node}
	for i := 0; i < 3; i++ {
		g.tweens[i] = gween.New(from[i], to[i], duration, fn)
	}
	g.apply = func(v [4]float32) { set(mgl32.Vec3{v[0], v[1], v[2]}) }
	return g
}

// TweenPosition animates the local position of node to to.
func TweenPosition(node Node, to mgl32.Vec3, duration float32, fn ease.TweenFunc) *TweenGroup {
	b := node.Base()
	return newVec3Tween(node, b.Position(), to, duration, fn, b.SetPosition)
}

// TweenScale animates the local scale of node to to.
func TweenScale(node Node, to mgl32.Vec3, duration float32, fn ease.TweenFunc) *TweenGroup {
	b := node.Base()
	return newVec3Tween(node, b.Scale(), to, duration, fn, b.SetScale)
}

// TweenRotation animates the local rotation of node to to by spherical
// interpolation.
func TweenRotation(node Node, to mgl32.Quat, duration float32, fn ease.TweenFunc) *TweenGroup {
	b := node.Base()
	from := b.Rotation()
	g := &TweenGroup{count: 1, target: node}
	g.tweens[0] = gween.New(0, 1, duration, fn)
	g.apply = func(v [4]float32) { b.SetRotation(mgl32.QuatSlerp(from, to, v[0])) }
	return g
}

// TweenLightColor animates the color of a point light.
func TweenLightColor(light *PointLight, to mgl32.Vec3, duration float32, fn ease.TweenFunc) *TweenGroup {
	return newVec3Tween(light, light.Color, to, duration, fn, func(c mgl32.Vec3) { light.Color = c })
}
