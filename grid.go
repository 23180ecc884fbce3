package chime

import "github.com/phanxgames/chime/gpu"

// Grid draws unit axes and an optional floor grid in the Overlays pass.
type Grid struct {
	NodeBase

	mesh *Mesh
}

var (
	_ OverlayDrawer = (*Grid)(nil)
	_ Disposer      = (*Grid)(nil)
)

// NewGrid uploads the axis lines, plus the 21x21 floor grid when floor is
// set.
func NewGrid(dev gpu.Device, name string, floor bool) (*Grid, error) {
	verts, idx := GridLines(floor)
	mesh, err := NewLineMesh(dev, verts, idx)
	if err != nil {
		return nil, err
	}
	g := &Grid{mesh: mesh}
	g.Init(g, name, "Grid")
	return g, nil
}

// Mesh returns the line mesh.
func (g *Grid) Mesh() *Mesh { return g.mesh }

// DrawOverlays implements OverlayDrawer.
func (g *Grid) DrawOverlays(ctx *DrawContext) error {
	return ctx.Pipeline.DrawLineMesh(g.mesh, g.AbsoluteTransform())
}

// OnDispose implements Disposer.
func (g *Grid) OnDispose() {
	g.mesh.Release()
}
