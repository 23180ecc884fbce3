package chime

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// singularEpsilon is the determinant magnitude below which a matrix is
// treated as non-invertible.
const singularEpsilon = 1e-12

// --- Local transform ---

// Position returns the local translation.
func (n *NodeBase) Position() mgl32.Vec3 { return n.position }

// SetPosition sets the local translation.
func (n *NodeBase) SetPosition(p mgl32.Vec3) {
	n.position = p
	n.transformChanged()
}

// Translate moves the node by d in its parent's space.
func (n *NodeBase) Translate(d mgl32.Vec3) {
	n.SetPosition(n.position.Add(d))
}

// Rotation returns the local rotation.
func (n *NodeBase) Rotation() mgl32.Quat { return n.rotation }

// SetRotation sets the local rotation. q is normalized.
func (n *NodeBase) SetRotation(q mgl32.Quat) {
	n.rotation = q.Normalize()
	n.transformChanged()
}

// Rotate applies q after the current local rotation.
func (n *NodeBase) Rotate(q mgl32.Quat) {
	n.SetRotation(q.Mul(n.rotation))
}

// Scale returns the local scale.
func (n *NodeBase) Scale() mgl32.Vec3 { return n.scale }

// SetScale sets the local scale.
func (n *NodeBase) SetScale(s mgl32.Vec3) {
	n.scale = s
	n.transformChanged()
}

// SetUniformScale sets all three scale components to s.
func (n *NodeBase) SetUniformScale(s float32) {
	n.SetScale(mgl32.Vec3{s, s, s})
}

// LookAt orients the node so its -Z axis points at target, both expressed in
// the parent's space.
func (n *NodeBase) LookAt(target, up mgl32.Vec3) {
	if target.Sub(n.position).Len() == 0 {
		return
	}
	world := mgl32.LookAtV(n.position, target, up).Inv()
	n.SetRotation(mgl32.Mat4ToQuat(world))
}

// RelativeTransform returns the local transform: scale, then rotation, then
// translation.
func (n *NodeBase) RelativeTransform() mgl32.Mat4 {
	return composeTransform(n.position, n.rotation, n.scale)
}

// SetRelativeTransform decomposes m into the local translation, rotation and
// scale. Shear is discarded.
func (n *NodeBase) SetRelativeTransform(m mgl32.Mat4) error {
	t, r, s, err := Decompose(m)
	if err != nil {
		return err
	}
	n.position, n.rotation, n.scale = t, r, s
	n.transformChanged()
	return nil
}

// --- Absolute transform ---

// AbsoluteTransform composes the relative transforms of every ancestor,
// root first, with this node's. It is recomputed on every call.
func (n *NodeBase) AbsoluteTransform() mgl32.Mat4 {
	m := n.RelativeTransform()
	for p := n.parent; p != nil; p = p.Base().parent {
		m = p.Base().RelativeTransform().Mul4(m)
	}
	return m
}

// ParentTransform returns the absolute transform of the parent, or the
// identity for an unattached node.
func (n *NodeBase) ParentTransform() mgl32.Mat4 {
	if n.parent == nil {
		return mgl32.Ident4()
	}
	return n.parent.Base().AbsoluteTransform()
}

// SetAbsoluteTransform sets the local transform so that AbsoluteTransform
// returns m. It returns ErrSingularTransform if the parent chain cannot be
// inverted or m has a zero scale axis.
func (n *NodeBase) SetAbsoluteTransform(m mgl32.Mat4) error {
	parent := n.ParentTransform()
	if math32.Abs(parent.Det()) < singularEpsilon {
		return ErrSingularTransform
	}
	return n.SetRelativeTransform(parent.Inv().Mul4(m))
}

// AbsolutePosition returns the translation of the absolute transform.
func (n *NodeBase) AbsolutePosition() mgl32.Vec3 {
	return n.AbsoluteTransform().Col(3).Vec3()
}

func (n *NodeBase) transformChanged() {
	if o, ok := n.self.(TransformObserver); ok {
		o.TransformChanged()
	}
}

// --- Matrix helpers ---

func composeTransform(t mgl32.Vec3, r mgl32.Quat, s mgl32.Vec3) mgl32.Mat4 {
	return mgl32.Translate3D(t[0], t[1], t[2]).
		Mul4(r.Mat4()).
		Mul4(mgl32.Scale3D(s[0], s[1], s[2]))
}

// Decompose splits an affine transform into translation, rotation and scale.
// A mirrored basis is reported as a negative X scale. It returns
// ErrSingularTransform if any axis has zero length.
func Decompose(m mgl32.Mat4) (t mgl32.Vec3, r mgl32.Quat, s mgl32.Vec3, err error) {
	t = m.Col(3).Vec3()
	x := m.Col(0).Vec3()
	y := m.Col(1).Vec3()
	z := m.Col(2).Vec3()
	s = mgl32.Vec3{x.Len(), y.Len(), z.Len()}
	if s[0] < 1e-6 || s[1] < 1e-6 || s[2] < 1e-6 {
		return t, mgl32.QuatIdent(), s, ErrSingularTransform
	}
	if m.Mat3().Det() < 0 {
		s[0] = -s[0]
	}
	rot := mgl32.Mat4FromCols(
		x.Mul(1/s[0]).Vec4(0),
		y.Mul(1/s[1]).Vec4(0),
		z.Mul(1/s[2]).Vec4(0),
		mgl32.Vec4{0, 0, 0, 1},
	)
	r = mgl32.Mat4ToQuat(rot).Normalize()
	return t, r, s, nil
}

// RigidTransform returns m with its scale removed.
func RigidTransform(m mgl32.Mat4) (mgl32.Mat4, error) {
	t, r, _, err := Decompose(m)
	if err != nil {
		return mgl32.Ident4(), err
	}
	return composeTransform(t, r, mgl32.Vec3{1, 1, 1}), nil
}

// InverseView returns the view matrix of a camera placed at m, or
// ErrSingularTransform.
func InverseView(m mgl32.Mat4) (mgl32.Mat4, error) {
	if math32.Abs(m.Det()) < singularEpsilon {
		return mgl32.Ident4(), ErrSingularTransform
	}
	return m.Inv(), nil
}
