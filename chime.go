package chime

import (
	"errors"

	"github.com/go-gl/mathgl/mgl32"
)

// ErrSingularTransform means that a transform could not be inverted or
// decomposed, usually because of a zero scale in a parent chain.
var ErrSingularTransform = errors.New("chime: singular transform")

// ErrSingularProjection means that a camera projection could not be inverted.
var ErrSingularProjection = errors.New("chime: singular projection")

// ErrStageOrder means that a pipeline stage was begun out of order.
var ErrStageOrder = errors.New("chime: pipeline stage out of order")

// ErrNoDevice means that a pipeline was constructed without a graphics device.
var ErrNoDevice = errors.New("chime: no graphics device")

// RenderPass tags the scene traversal a node is being drawn in.
type RenderPass uint8

const (
	PassUnknown  RenderPass = iota
	PassGBuffer             // opaque geometry into the GBuffer
	PassLighting            // light volumes into light accumulation
	PassEffects             // transparent and VFX draws
	PassOverlays            // unlit lines and debug geometry
)

// Passes lists the traversals Scene.Render issues, in order.
var Passes = [...]RenderPass{PassGBuffer, PassLighting, PassEffects, PassOverlays}

func (p RenderPass) String() string {
	switch p {
	case PassGBuffer:
		return "GBuffer"
	case PassLighting:
		return "Lighting"
	case PassEffects:
		return "Effects"
	case PassOverlays:
		return "Overlays"
	default:
		return "Unknown"
	}
}

// DebugLine is a colored line segment in world space.
type DebugLine struct {
	Start mgl32.Vec3
	End   mgl32.Vec3
	Color mgl32.Vec4
}

// Common colors.
var (
	ColorWhite = mgl32.Vec4{1, 1, 1, 1}
	ColorRed   = mgl32.Vec4{1, 0, 0, 1}
	ColorGreen = mgl32.Vec4{0, 1, 0, 1}
	ColorBlue  = mgl32.Vec4{0, 0, 1, 1}
)
