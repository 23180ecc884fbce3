package chime

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/phanxgames/chime/gpu"
	"github.com/phanxgames/chime/input"
	"github.com/phanxgames/chime/internal/logx"
	"github.com/phanxgames/chime/physics"
	"github.com/phanxgames/chime/vr"
)

// ErrExit is returned by Screen.Update once Exit has been called. The game
// loop stops between frames when it sees it.
var ErrExit = errors.New("chime: exit requested")

// Default scene light.
var (
	DefaultLightPosition = mgl32.Vec3{0, 20, 0}
	DefaultLightColor    = mgl32.Vec3{2000, 2000, 2000}
)

// ScreenOptions configures NewScreen.
type ScreenOptions struct {
	Config Config
	// Runtime is the VR runtime. Nil, or a runtime without a headset, runs
	// desktop only.
	Runtime vr.Runtime
	// Keyboard, when set, drives the desktop camera rig.
	Keyboard *input.KeyboardMouse
}

// Screen owns a scene and everything that presents it: the desktop camera
// and pipeline and, when a headset is attached, the VR player with one
// pipeline per eye.
//
// Each frame runs Update then Render. Screen is not safe for concurrent use.
type Screen struct {
	dev gpu.Device
	cfg Config

	Scene  *Scene
	Rig    *FlyController
	Camera *PerspectiveCamera
	Light  *PointLight
	Grid   *Grid

	Headset *vr.Headset
	Player  *VRPlayer

	window    *DeferredPipeline
	eyes      [2]*DeferredPipeline
	eyeTarget [2]gpu.Texture

	keyboard *input.KeyboardMouse
	devices  []*input.Device
	clock    time.Duration
	exit     bool

	// ticked is set by Update and cleared by Render.
	ticked bool
}

// NewScreen builds the default scene around backbuffer: a fly rig carrying
// the desktop camera, one point light, the grid and, when opts.Runtime has a
// headset, a VR player.
func NewScreen(dev gpu.Device, backbuffer gpu.Texture, opts ScreenOptions) (_ *Screen, err error) {
	cfg := opts.Config
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := &Screen{dev: dev, cfg: cfg, keyboard: opts.Keyboard, ticked: true}
	defer func() {
		if err != nil {
			s.Release()
		}
	}()

	if s.window, err = NewDeferredPipeline(dev, backbuffer); err != nil {
		return nil, err
	}
	s.Scene, err = NewScene(dev, "Scene", SceneOptions{
		World:        physics.NewDynamicsWorld(cfg.WorldConfig()),
		LineCapacity: cfg.Render.LineCapacity,
		DrawPhysics:  cfg.Physics.DebugDraw,
	})
	if err != nil {
		return nil, err
	}
	s.Scene.SetDebugMode(cfg.Debug)

	var bindings FlyBindings
	if s.keyboard != nil {
		bindings = KeyboardFlyBindings(s.keyboard)
		s.devices = append(s.devices, s.keyboard.Device)
	}
	s.Rig = NewFlyController("Desktop Rig", bindings)
	pos := mgl32.Vec3(cfg.Camera.Position)
	s.Rig.SetPosition(pos)
	s.Rig.LookToward(pos.Mul(-1))
	s.Scene.AddChild(s.Rig)
	s.Camera = NewPerspectiveCamera("Desktop Camera", cfg.Camera.FOV, aspect(s.window), cfg.Camera.Near, cfg.Camera.Far)
	s.Rig.AddChild(s.Camera)

	s.Light = NewPointLight("Light", DefaultLightColor)
	s.Light.SetPosition(DefaultLightPosition)
	s.Scene.AddChild(s.Light)

	if cfg.Render.Grid {
		if s.Grid, err = NewGrid(dev, "Grid", cfg.Render.GridFloor); err != nil {
			return nil, err
		}
		s.Scene.AddChild(s.Grid)
	}

	if cfg.VR.Enabled {
		if err := s.initVR(opts.Runtime); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func aspect(p *DeferredPipeline) float32 {
	if p.Height() == 0 {
		return 1
	}
	return float32(p.Width()) / float32(p.Height())
}

func (s *Screen) initVR(rt vr.Runtime) error {
	s.Headset = vr.NewHeadset(rt)
	if s.Headset == nil {
		return nil
	}
	w, h := s.Headset.RecommendedTargetSize()
	for i := range s.eyes {
		t, err := s.dev.NewTexture(gpu.TextureDesc{
			Width:  w,
			Height: h,
			Format: gpu.FormatRGBA8,
			Bind:   gpu.BindRenderTarget | gpu.BindShaderResource,
		}, nil)
		if err != nil {
			return fmt.Errorf("chime: create eye target: %w", err)
		}
		s.eyeTarget[i] = t
		if s.eyes[i], err = NewDeferredPipeline(s.dev, t); err != nil {
			return err
		}
	}
	player, err := NewVRPlayer(s.dev, s.Headset, "VR Player")
	if err != nil {
		return err
	}
	player.LeftEye.Near, player.LeftEye.Far = s.cfg.VR.Near, s.cfg.VR.Far
	player.RightEye.Near, player.RightEye.Far = s.cfg.VR.Near, s.cfg.VR.Far
	s.Player = player
	s.Scene.AddChild(player)
	return nil
}

// Config returns the settings the screen was built with.
func (s *Screen) Config() Config { return s.cfg }

// Device returns the graphics device.
func (s *Screen) Device() gpu.Device { return s.dev }

// Window returns the desktop pipeline.
func (s *Screen) Window() *DeferredPipeline { return s.window }

// Eye returns the pipeline of an eye, or nil without a headset.
func (s *Screen) Eye(eye vr.Eye) *DeferredPipeline { return s.eyes[eye] }

// AddDevice makes Update apply the pending events of d every frame.
func (s *Screen) AddDevice(d *input.Device) {
	s.devices = append(s.devices, d)
}

// Exit asks the loop to stop after the current frame.
func (s *Screen) Exit() { s.exit = true }

// Update polls input, applies pending events and simulates the scene by dt
// seconds. Debug lines left by a previous Update that was never rendered
// are discarded first. It returns ErrExit once Exit has been called.
func (s *Screen) Update(dt float32) error {
	if s.exit {
		return ErrExit
	}
	if lines := s.Scene.DebugDraw(); lines.Len() > 0 {
		lines.Commit()
		lines.Flush()
	}
	s.ticked = true
	s.clock += time.Duration(float64(dt) * float64(time.Second))
	if s.keyboard != nil {
		s.keyboard.Poll(s.clock)
	}
	if s.Headset != nil {
		if err := s.Headset.Update(s.clock); err != nil {
			return err
		}
		s.Headset.ProcessEvents()
	}
	for _, d := range s.devices {
		d.ProcessEvents()
	}
	s.Scene.Simulate(dt)
	return nil
}

// Render commits the debug lines, renders the desktop camera, then each eye
// followed by its submission to the headset, and finally flushes the debug
// lines. It renders once per Update: called again before the next Update it
// does nothing and the backbuffer keeps the previous frame.
func (s *Screen) Render() error {
	if !s.ticked {
		return nil
	}
	s.ticked = false
	lines := s.Scene.DebugDraw()
	lines.Commit()
	defer lines.Flush()

	if err := s.Scene.Render(s.window, s.Camera); err != nil {
		return fmt.Errorf("chime: render desktop: %w", err)
	}
	if s.Player == nil {
		return nil
	}
	cams := [2]*EyeCamera{s.Player.LeftEye, s.Player.RightEye}
	for i, cam := range cams {
		eye := vr.Eye(i)
		if err := s.Scene.Render(s.eyes[i], cam); err != nil {
			return fmt.Errorf("chime: render eye %d: %w", i, err)
		}
		if err := s.Headset.Submit(eye, s.eyeTarget[i]); err != nil {
			logx.Get().Warn("chime: eye submit failed", "eye", i, "err", err)
		}
	}
	return nil
}

// Release disposes the scene and frees the pipelines and eye targets.
func (s *Screen) Release() {
	if s.Scene != nil {
		s.Scene.Dispose()
	}
	if s.window != nil {
		s.window.Release()
	}
	for i := range s.eyes {
		if s.eyes[i] != nil {
			s.eyes[i].Release()
		}
		if s.eyeTarget[i] != nil {
			s.eyeTarget[i].Release()
		}
	}
	if s.Headset != nil {
		s.Headset.Shutdown()
	}
}
