package chime

import "github.com/go-gl/mathgl/mgl32"

// PointLight is an omnidirectional light drawn in the Lighting pass at its
// absolute position.
type PointLight struct {
	NodeBase

	// Color is the light intensity per channel. Values above 1 are expected;
	// the result is tonemapped.
	Color mgl32.Vec3
}

var _ LightingDrawer = (*PointLight)(nil)

// NewPointLight creates a point light.
func NewPointLight(name string, color mgl32.Vec3) *PointLight {
	l := &PointLight{Color: color}
	l.Init(l, name, "PointLight")
	return l
}

// DrawLighting implements LightingDrawer.
func (l *PointLight) DrawLighting(ctx *DrawContext) error {
	return ctx.Pipeline.DrawPointLight(l.Color, l.AbsolutePosition())
}
