package chime

import (
	"fmt"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/phanxgames/chime/gpu"
	"github.com/phanxgames/chime/physics"
)

// SceneOptions configures NewScene.
type SceneOptions struct {
	// World is the physics world. Nil selects a DynamicsWorld with
	// physics.DefaultWorldConfig.
	World physics.World
	// LineCapacity is the number of debug lines per buffer. Zero selects
	// DefaultLineCapacity.
	LineCapacity int
	// DrawPhysics draws the physics world into the debug lines after each
	// step.
	DrawPhysics bool
}

// Scene is the root of a node tree. It owns the physics world and the debug
// line accumulator of the tree.
type Scene struct {
	NodeBase

	world       physics.World
	lines       *DebugDraw
	drawPhysics bool
	tweens      []*TweenGroup

	debug bool
	stats debugStats
}

// NewScene creates an empty scene.
func NewScene(dev gpu.Device, name string, opts SceneOptions) (*Scene, error) {
	lines, err := NewDebugDraw(dev, opts.LineCapacity)
	if err != nil {
		return nil, fmt.Errorf("chime: create scene: %w", err)
	}
	world := opts.World
	if world == nil {
		world = physics.NewDynamicsWorld(physics.DefaultWorldConfig())
	}
	world.SetDebugDrawer(lines)
	s := &Scene{world: world, lines: lines, drawPhysics: opts.DrawPhysics}
	s.Init(s, name, "Scene")
	return s, nil
}

// World returns the physics world.
func (s *Scene) World() physics.World { return s.world }

// DebugDraw returns the debug line accumulator.
func (s *Scene) DebugDraw() *DebugDraw { return s.lines }

// SetDrawPhysics enables or disables drawing the physics world.
func (s *Scene) SetDrawPhysics(enabled bool) { s.drawPhysics = enabled }

// AddTween runs g from the next Simulate until it is done.
func (s *Scene) AddTween(g *TweenGroup) {
	s.tweens = append(s.tweens, g)
}

// SetDebugMode enables or disables debug mode. When enabled, tree operations
// on disposed nodes panic, deep trees and wide nodes are reported and frame
// timings are logged at debug level.
//
// The node checks read a package-wide flag, so with several scenes the last
// call to SetDebugMode decides them for every scene. Frame timing stays per
// scene.
func (s *Scene) SetDebugMode(enabled bool) {
	s.debug = enabled
	globalDebug = enabled
}

// Simulate advances the tree, running tweens, then steps the physics world.
func (s *Scene) Simulate(dt float32) {
	var t0 time.Time
	if s.debug {
		t0 = time.Now()
	}
	s.NodeBase.Simulate(dt)
	s.updateTweens(dt)
	if s.debug {
		s.stats.simulateTime = time.Since(t0)
		t0 = time.Now()
	}
	s.world.Step(dt)
	if s.drawPhysics {
		s.world.DebugDrawWorld()
	}
	if s.debug {
		s.stats.physicsTime = time.Since(t0)
	}
}

func (s *Scene) updateTweens(dt float32) {
	live := s.tweens[:0]
	for _, g := range s.tweens {
		g.Update(dt)
		if !g.Done {
			live = append(live, g)
		}
	}
	clear(s.tweens[len(live):])
	s.tweens = live
}

// Render draws the scene from cam through every pipeline stage, then draws
// the committed debug lines in the Overlays stage. It stops at the first
// error and aborts the pipeline cycle.
func (s *Scene) Render(p *DeferredPipeline, cam Camera) (err error) {
	defer func() {
		if err != nil && p.Stage() != StageIdle {
			p.Abort()
		}
	}()
	var t0 time.Time
	if s.debug {
		t0 = time.Now()
	}
	if a, ok := cam.(AspectSetter); ok && p.Height() > 0 {
		a.SetAspectRatio(float32(p.Width()) / float32(p.Height()))
	}
	view, err := InverseView(cam.Base().AbsoluteTransform())
	if err != nil {
		return fmt.Errorf("chime: camera %q: %w", cam.Base().Name(), err)
	}
	near, far := cam.ClipPlanes()
	if err := p.BeginGBuffer(view, cam.Projection(), near, far); err != nil {
		return err
	}
	ctx := DrawContext{Pipeline: p, Camera: cam}
	if err := s.renderPass(&ctx, PassGBuffer); err != nil {
		return err
	}
	if err := p.BeginLighting(); err != nil {
		return err
	}
	if err := s.renderPass(&ctx, PassLighting); err != nil {
		return err
	}
	if err := p.BeginEffects(); err != nil {
		return err
	}
	if err := s.renderPass(&ctx, PassEffects); err != nil {
		return err
	}
	if err := p.PostProcess(); err != nil {
		return err
	}
	if err := p.BeginOverlays(); err != nil {
		return err
	}
	if err := s.renderPass(&ctx, PassOverlays); err != nil {
		return err
	}
	if err := s.lines.Draw(p); err != nil {
		return err
	}
	if s.debug {
		s.stats.renderTime = time.Since(t0)
		s.stats.frame = p.Stats()
		s.debugLog(s.stats)
	}
	return nil
}

func (s *Scene) renderPass(ctx *DrawContext, pass RenderPass) error {
	ctx.Pass = pass
	ctx.err = nil
	s.Draw(ctx)
	return ctx.err
}

// RayTest returns the node whose body is hit first between from and to.
func (s *Scene) RayTest(from, to mgl32.Vec3) (Node, physics.RayResult, bool) {
	res, ok := s.world.RayTest(from, to)
	if !ok {
		return nil, res, false
	}
	n, _ := res.Body.UserData.(Node)
	return n, res, true
}

// OnDispose releases the debug line buffers.
func (s *Scene) OnDispose() {
	s.world.SetDebugDrawer(nil)
	s.lines.Release()
}
