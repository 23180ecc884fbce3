package chime

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/phanxgames/chime/internal/logx"
	"github.com/phanxgames/chime/physics"
)

// PhysicsConfig describes the rigid body of a PhysicsNode.
type PhysicsConfig struct {
	// Mass in kilograms. Zero makes the body kinematic.
	Mass        float32
	Shape       physics.Shape
	Restitution float32
}

// PhysicsNode is a node backed by a rigid body.
//
// The body is registered with the physics world of the Scene at the root of
// the node's tree, and deregistered when the node leaves it. Dynamic bodies
// drive the node: after each step the world writes the node's absolute
// transform. Kinematic bodies (zero mass) are driven by the node: setting
// its transform, or moving an ancestor, pushes the absolute transform to the
// body. Scale stays with the node and never reaches the body.
type PhysicsNode struct {
	NodeBase

	body    *physics.Body
	scene   *Scene
	syncing bool
}

var (
	_ physics.MotionState = (*PhysicsNode)(nil)
	_ AncestorObserver    = (*PhysicsNode)(nil)
	_ TransformObserver   = (*PhysicsNode)(nil)
	_ Disposer            = (*PhysicsNode)(nil)
)

// NewPhysicsNode creates a physics-backed node at the origin.
func NewPhysicsNode(name string, cfg PhysicsConfig) *PhysicsNode {
	n := &PhysicsNode{}
	n.InitPhysics(n, name, "PhysicsNode", cfg)
	return n
}

// InitPhysics prepares n as the base of self and creates its body. Types
// embedding PhysicsNode call it instead of Init.
func (n *PhysicsNode) InitPhysics(self Node, name, typeName string, cfg PhysicsConfig) {
	n.Init(self, name, typeName)
	n.body = physics.NewBody(physics.BodyConfig{
		Mass:        cfg.Mass,
		Shape:       cfg.Shape,
		Restitution: cfg.Restitution,
		MotionState: n,
	})
	n.body.UserData = self
}

// Body returns the rigid body.
func (n *PhysicsNode) Body() *physics.Body { return n.body }

// IsKinematic reports whether the body has zero mass.
func (n *PhysicsNode) IsKinematic() bool { return n.body.IsKinematic() }

// Velocity returns the linear velocity of the body.
func (n *PhysicsNode) Velocity() mgl32.Vec3 { return n.body.LinearVelocity() }

// SetVelocity sets the linear velocity of the body. Kinematic bodies
// ignore it.
func (n *PhysicsNode) SetVelocity(v mgl32.Vec3) { n.body.SetLinearVelocity(v) }

// RegisteredScene returns the scene whose world holds the body, or nil.
func (n *PhysicsNode) RegisteredScene() *Scene { return n.scene }

// --- physics.MotionState ---

// WorldTransform implements physics.MotionState. It returns the absolute
// transform without scale.
func (n *PhysicsNode) WorldTransform() mgl32.Mat4 {
	abs := n.AbsoluteTransform()
	m, err := RigidTransform(abs)
	if err != nil {
		p := abs.Col(3)
		return mgl32.Translate3D(p[0], p[1], p[2])
	}
	return m
}

// SetWorldTransform implements physics.MotionState. The node keeps its
// absolute scale.
func (n *PhysicsNode) SetWorldTransform(m mgl32.Mat4) {
	_, _, s, err := Decompose(n.AbsoluteTransform())
	if err != nil {
		s = mgl32.Vec3{1, 1, 1}
	}
	n.syncing = true
	err = n.SetAbsoluteTransform(m.Mul4(mgl32.Scale3D(s[0], s[1], s[2])))
	n.syncing = false
	if err != nil {
		logx.Get().Warn("chime: physics transform not applied", "node", n.Name(), "err", err)
	}
}

// --- hooks ---

// TransformChanged pushes a transform set by the application to the body.
// Transforms written by the world are not pushed back.
func (n *PhysicsNode) TransformChanged() {
	if n.syncing {
		return
	}
	n.body.SetWorldTransform(n.WorldTransform())
}

// AncestorChanged registers the body with the physics world of the scene
// the node now belongs to, and deregisters it from the previous one. It
// panics if the body is already registered with another world.
func (n *PhysicsNode) AncestorChanged(_, _, _ Node) {
	scene := n.Scene()
	if scene == n.scene {
		return
	}
	if n.scene != nil {
		physics.Deregister(n.scene.World(), n.body)
		logx.Get().Debug("chime: body deregistered", "node", n.Name(), "scene", n.scene.Name())
		n.scene = nil
	}
	if scene == nil {
		return
	}
	n.body.SetWorldTransform(n.WorldTransform())
	if err := physics.Register(scene.World(), n.body); err != nil {
		panic("chime: physics body of " + n.Name() + " is already registered with another world")
	}
	n.scene = scene
	logx.Get().Debug("chime: body registered", "node", n.Name(), "scene", scene.Name())
}

// Simulate re-pushes the transform of a kinematic body so that it follows
// moving ancestors, then simulates the children.
func (n *PhysicsNode) Simulate(dt float32) {
	if n.body.IsKinematic() && n.scene != nil {
		n.body.SetWorldTransform(n.WorldTransform())
	}
	n.NodeBase.Simulate(dt)
}

// OnDispose implements Disposer.
func (n *PhysicsNode) OnDispose() {
	if n.scene != nil {
		physics.Deregister(n.scene.World(), n.body)
		n.scene = nil
	}
}
