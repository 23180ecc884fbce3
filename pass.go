package chime

// DrawContext is passed unchanged to every node during one pass traversal.
type DrawContext struct {
	Pipeline *DeferredPipeline
	Camera   Camera
	Pass     RenderPass

	err error
}

// Err returns the first draw error recorded during the traversal.
func (c *DrawContext) Err() error { return c.err }

func (c *DrawContext) fail(err error) {
	if c.err == nil {
		c.err = err
	}
}

// --- Pass capabilities ---
//
// A node takes part in a pass by implementing its drawer interface. Nodes
// that implement none of them only recurse into their children.

// GBufferDrawer draws opaque geometry.
type GBufferDrawer interface {
	DrawGBuffer(ctx *DrawContext) error
}

// LightingDrawer draws light contributions.
type LightingDrawer interface {
	DrawLighting(ctx *DrawContext) error
}

// EffectsDrawer draws transparent and effect geometry.
type EffectsDrawer interface {
	DrawEffects(ctx *DrawContext) error
}

// OverlayDrawer draws unlit geometry over the final image.
type OverlayDrawer interface {
	DrawOverlays(ctx *DrawContext) error
}

// drawPass calls the drawer of n matching ctx.Pass, if any.
func drawPass(n Node, ctx *DrawContext) error {
	switch ctx.Pass {
	case PassGBuffer:
		if d, ok := n.(GBufferDrawer); ok {
			return d.DrawGBuffer(ctx)
		}
	case PassLighting:
		if d, ok := n.(LightingDrawer); ok {
			return d.DrawLighting(ctx)
		}
	case PassEffects:
		if d, ok := n.(EffectsDrawer); ok {
			return d.DrawEffects(ctx)
		}
	case PassOverlays:
		if d, ok := n.(OverlayDrawer); ok {
			return d.DrawOverlays(ctx)
		}
	}
	return nil
}

// PassesOf returns the passes n draws in, in traversal order.
func PassesOf(n Node) []RenderPass {
	var out []RenderPass
	if _, ok := n.(GBufferDrawer); ok {
		out = append(out, PassGBuffer)
	}
	if _, ok := n.(LightingDrawer); ok {
		out = append(out, PassLighting)
	}
	if _, ok := n.(EffectsDrawer); ok {
		out = append(out, PassEffects)
	}
	if _, ok := n.(OverlayDrawer); ok {
		out = append(out, PassOverlays)
	}
	return out
}
