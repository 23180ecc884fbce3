package chime

import "github.com/phanxgames/chime/physics"

// PropRestitution is the bounciness given to every Prop body.
const PropRestitution = 0.5

// Prop is a physics-backed static model.
type Prop struct {
	PhysicsNode

	Model *StaticModel
}

var _ GBufferDrawer = (*Prop)(nil)

// NewProp creates a prop drawing model with a body of the given shape and
// mass. A mass of zero makes the prop kinematic.
func NewProp(name string, model *StaticModel, shape physics.Shape, mass float32) *Prop {
	p := &Prop{Model: model}
	p.InitPhysics(p, name, "Prop", PhysicsConfig{
		Mass:        mass,
		Shape:       shape,
		Restitution: PropRestitution,
	})
	return p
}

// DrawGBuffer implements GBufferDrawer.
func (p *Prop) DrawGBuffer(ctx *DrawContext) error {
	return ctx.Pipeline.DrawStaticModel(p.Model, p.AbsoluteTransform())
}
