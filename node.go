package chime

import (
	"slices"

	"github.com/go-gl/mathgl/mgl32"
)

// Node is a scene graph element. Every node type embeds NodeBase, which
// provides the tree, the transform and the default recursive Simulate and
// Draw. Types override Simulate for per-frame work and implement the pass
// interfaces (GBufferDrawer, LightingDrawer, EffectsDrawer, OverlayDrawer)
// to draw.
type Node interface {
	Base() *NodeBase
	Simulate(dt float32)
	Draw(ctx *DrawContext)
}

// --- Optional hooks ---

// ChildObserver is notified after its child list changes.
type ChildObserver interface {
	ChildAdded(child Node)
	ChildRemoved(child Node)
}

// AncestorObserver is notified when it, or one of its ancestors, is attached
// to or detached from a parent. moved is the node whose parent changed.
type AncestorObserver interface {
	AncestorChanged(moved, oldParent, newParent Node)
}

// TransformObserver is notified after its own local transform is set.
type TransformObserver interface {
	TransformChanged()
}

// Disposer releases resources when its node is disposed.
type Disposer interface {
	OnDispose()
}

// --- NodeBase ---

// NodeBase holds the state shared by every node.
//
// Tree operations are single-threaded. Mutating the tree from Simulate or
// Draw is allowed: traversals iterate the child list as it was when the
// traversal reached the parent, so children added during a pass are first
// visited next frame and children removed during a pass are still visited
// unless they were disposed.
type NodeBase struct {
	self Node
	name string

	parent    Node
	children  []Node
	iterating int

	position mgl32.Vec3
	rotation mgl32.Quat
	scale    mgl32.Vec3

	disposed bool

	// UserData is free for application use.
	UserData any
}

// Init prepares n for use as the base of self. Node constructors call it
// before anything else. An empty name defaults to typeName.
func (n *NodeBase) Init(self Node, name, typeName string) {
	if name == "" {
		name = typeName
	}
	n.self = self
	n.name = name
	n.rotation = mgl32.QuatIdent()
	n.scale = mgl32.Vec3{1, 1, 1}
}

// Base implements Node.
func (n *NodeBase) Base() *NodeBase { return n }

// Self returns the node that embeds n.
func (n *NodeBase) Self() Node { return n.self }

// Name returns the node name.
func (n *NodeBase) Name() string { return n.name }

// SetName sets the node name.
func (n *NodeBase) SetName(name string) { n.name = name }

// Parent returns the parent node, or nil.
func (n *NodeBase) Parent() Node { return n.parent }

// Children returns the child list. The returned slice MUST NOT be mutated by
// the caller.
func (n *NodeBase) Children() []Node { return n.children }

// NumChildren returns the number of children.
func (n *NodeBase) NumChildren() int { return len(n.children) }

// ChildAt returns the child at the given index.
func (n *NodeBase) ChildAt(index int) Node { return n.children[index] }

// Root returns the topmost ancestor, or the node itself.
func (n *NodeBase) Root() Node {
	root := n.self
	for p := n.parent; p != nil; p = p.Base().parent {
		root = p
	}
	return root
}

// Scene returns the Scene at the root of the tree, or nil.
func (n *NodeBase) Scene() *Scene {
	s, _ := n.Root().(*Scene)
	return s
}

// --- Tree manipulation ---

// AddChild appends child to this node's children.
// If child already has a parent, it is removed from that parent first.
// Panics if child is nil or child is this node or one of its ancestors.
func (n *NodeBase) AddChild(child Node) {
	if child == nil {
		panic("chime: cannot add nil child")
	}
	cb := child.Base()
	if globalDebug {
		debugCheckDisposed(n, "AddChild (parent)")
		debugCheckDisposed(cb, "AddChild (child)")
	}
	if isAncestor(child, n.self) {
		panic("chime: adding child would create a cycle")
	}
	old := cb.parent
	if old != nil {
		old.Base().RemoveChild(child)
	}
	cb.parent = n.self
	n.children = append(n.children, child)
	if o, ok := n.self.(ChildObserver); ok {
		o.ChildAdded(child)
	}
	notifyAncestorChanged(child, child, old, n.self)
	if globalDebug {
		debugCheckTreeDepth(cb)
		debugCheckChildCount(n)
	}
}

// RemoveChild detaches child from this node.
// Panics if child.Parent() is not this node.
func (n *NodeBase) RemoveChild(child Node) {
	cb := child.Base()
	if globalDebug {
		debugCheckDisposed(n, "RemoveChild (parent)")
	}
	if cb.parent != n.self {
		panic("chime: child's parent is not this node")
	}
	n.removeChildByPtr(child)
	cb.parent = nil
	if o, ok := n.self.(ChildObserver); ok {
		o.ChildRemoved(child)
	}
	notifyAncestorChanged(child, child, n.self, nil)
}

// RemoveFromParent detaches this node from its parent.
// No-op if this node has no parent.
func (n *NodeBase) RemoveFromParent() {
	if n.parent == nil {
		return
	}
	n.parent.Base().RemoveChild(n.self)
}

// --- Traversal ---

// Simulate advances every child by dt, in insertion order.
func (n *NodeBase) Simulate(dt float32) {
	kids := n.children
	n.iterating++
	for _, c := range kids {
		if !c.Base().disposed {
			c.Simulate(dt)
		}
	}
	n.iterating--
}

// Draw issues this node's draws for ctx.Pass, if it takes part in that pass,
// then draws every child. Filtering never prunes the subtree.
func (n *NodeBase) Draw(ctx *DrawContext) {
	if ctx.err == nil {
		if err := drawPass(n.self, ctx); err != nil {
			ctx.fail(err)
		}
	}
	kids := n.children
	n.iterating++
	for _, c := range kids {
		if !c.Base().disposed {
			c.Draw(ctx)
		}
	}
	n.iterating--
}

// --- Disposal ---

// Dispose removes this node from its parent and disposes it and all its
// descendants, children first. Disposing twice is a no-op.
func (n *NodeBase) Dispose() {
	if n.disposed {
		return
	}
	n.RemoveFromParent()
	n.dispose()
}

func (n *NodeBase) dispose() {
	n.disposed = true
	for _, c := range n.children {
		cb := c.Base()
		cb.parent = nil
		cb.dispose()
	}
	n.children = nil
	if d, ok := n.self.(Disposer); ok {
		d.OnDispose()
	}
	n.parent = nil
	n.UserData = nil
}

// IsDisposed reports whether this node has been disposed.
func (n *NodeBase) IsDisposed() bool {
	return n.disposed
}

// --- Helpers ---

// isAncestor reports whether candidate is node or an ancestor of node.
func isAncestor(candidate, node Node) bool {
	for p := node; p != nil; p = p.Base().parent {
		if p == candidate {
			return true
		}
	}
	return false
}

// removeChildByPtr removes child from n.children without clearing its
// parent. While a traversal holds the current list, a new list is built so
// the traversal keeps its view.
func (n *NodeBase) removeChildByPtr(child Node) {
	i := slices.Index(n.children, child)
	if i < 0 {
		return
	}
	if n.iterating > 0 {
		n.children = slices.Delete(slices.Clone(n.children), i, i+1)
		return
	}
	copy(n.children[i:], n.children[i+1:])
	n.children[len(n.children)-1] = nil
	n.children = n.children[:len(n.children)-1]
}

// notifyAncestorChanged tells node and all its descendants that moved was
// reparented.
func notifyAncestorChanged(node, moved, oldParent, newParent Node) {
	if o, ok := node.(AncestorObserver); ok {
		o.AncestorChanged(moved, oldParent, newParent)
	}
	for _, c := range node.Base().children {
		notifyAncestorChanged(c, moved, oldParent, newParent)
	}
}

// --- Group ---

// Group is a plain container node.
type Group struct {
	NodeBase
}

// NewGroup creates an empty container node.
func NewGroup(name string) *Group {
	g := &Group{}
	g.Init(g, name, "Group")
	return g
}
