package chime

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/phanxgames/chime/gpu"
	"github.com/phanxgames/chime/input"
	"github.com/phanxgames/chime/internal/logx"
	"github.com/phanxgames/chime/vr"
)

// Eye camera clip planes.
const (
	EyeNear float32 = 0.1
	EyeFar  float32 = 1000
)

// --- render model cache ---

// renderModels loads runtime render models once per name. A nil entry
// records a model the runtime does not have.
type renderModels struct {
	dev    gpu.Device
	rt     vr.Runtime
	models map[string]*StaticModel
}

func (c *renderModels) get(name string) (*StaticModel, error) {
	if name == "" {
		return nil, nil
	}
	if m, ok := c.models[name]; ok {
		return m, nil
	}
	rm, err := c.rt.LoadRenderModel(name)
	if err != nil {
		return nil, fmt.Errorf("chime: load render model %q: %w", name, err)
	}
	if rm == nil {
		c.models[name] = nil
		return nil, nil
	}
	var mat Material
	if rm.Diffuse != nil {
		if mat.Diffuse, err = NewTextureFromImage(c.dev, rm.Diffuse); err != nil {
			return nil, fmt.Errorf("chime: render model %q: %w", name, err)
		}
	}
	m, err := LoadStaticModel(c.dev, []SectionData{{
		Topology: gpu.TopologyTriangleList,
		Vertices: rm.Vertices,
		Indices:  rm.Indices,
		Material: mat,
	}})
	if err != nil {
		return nil, fmt.Errorf("chime: render model %q: %w", name, err)
	}
	c.models[name] = m
	return m, nil
}

func (c *renderModels) release() {
	for _, m := range c.models {
		if m == nil {
			continue
		}
		for _, s := range m.Sections {
			if s.Material.Diffuse != nil {
				s.Material.Diffuse.Release()
			}
		}
		m.Release()
	}
	clear(c.models)
}

// --- VRPlayer ---

// VRPlayer is the rig of a VR user: a headset node carrying both eye
// cameras, and one VRController per connected motion controller. Placing the
// player moves the tracking space.
type VRPlayer struct {
	NodeBase

	headset *vr.Headset
	models  *renderModels
	dev     gpu.Device

	// Head follows the tracked headset pose.
	Head     *Group
	LeftEye  *EyeCamera
	RightEye *EyeCamera

	controllers []*VRController

	// HandModels, when set, are drawn at each controller of that hand.
	HandModels map[vr.Hand]*StaticModel
}

var _ Disposer = (*VRPlayer)(nil)

// NewVRPlayer creates the rig for headset, with controller nodes for the
// motion controllers connected now and, later, as they are activated.
func NewVRPlayer(dev gpu.Device, headset *vr.Headset, name string) (*VRPlayer, error) {
	p := &VRPlayer{
		headset:    headset,
		dev:        dev,
		models:     &renderModels{dev: dev, rt: headset.Runtime(), models: map[string]*StaticModel{}},
		HandModels: map[vr.Hand]*StaticModel{},
	}
	p.Init(p, name, "VRPlayer")
	p.Head = NewGroup("VR Headset")
	p.AddChild(p.Head)
	p.LeftEye = NewEyeCamera("LeftEye", headset, vr.EyeLeft, EyeNear, EyeFar)
	p.Head.AddChild(p.LeftEye)
	p.RightEye = NewEyeCamera("RightEye", headset, vr.EyeRight, EyeNear, EyeFar)
	p.Head.AddChild(p.RightEye)

	for _, mc := range headset.Controllers() {
		if err := p.addController(mc); err != nil {
			p.models.release()
			return nil, err
		}
	}
	headset.OnDeviceAdded(func(d *vr.TrackedDevice) {
		if p.IsDisposed() {
			return
		}
		mc := headset.Controller(d.Index())
		if mc == nil {
			return
		}
		if err := p.addController(mc); err != nil {
			logx.Get().Warn("chime: controller not added", "device", d.Name(), "err", err)
		}
	})
	return p, nil
}

func (p *VRPlayer) addController(mc *vr.MotionController) error {
	c, err := newVRController(p, mc)
	if err != nil {
		return err
	}
	grid, err := NewGrid(p.dev, "", false)
	if err != nil {
		return err
	}
	grid.SetUniformScale(0.1)
	c.AddChild(grid)
	p.controllers = append(p.controllers, c)
	p.AddChild(c)
	mc.OnRemoved(func(*input.Device) { c.Dispose() })
	return nil
}

// Headset returns the headset the rig follows.
func (p *VRPlayer) Headset() *vr.Headset { return p.headset }

// Controllers returns the controller nodes that are still attached.
func (p *VRPlayer) Controllers() []*VRController {
	live := p.controllers[:0]
	for _, c := range p.controllers {
		if !c.IsDisposed() {
			live = append(live, c)
		}
	}
	clear(p.controllers[len(live):])
	p.controllers = live
	return p.controllers
}

// Controller returns the first attached controller of hand, or nil.
func (p *VRPlayer) Controller(hand vr.Hand) *VRController {
	for _, c := range p.Controllers() {
		if c.Hand() == hand {
			return c
		}
	}
	return nil
}

// Simulate moves the head to the tracked headset pose, then simulates the
// children.
func (p *VRPlayer) Simulate(dt float32) {
	if hmd := p.headset.HMD(); hmd != nil {
		applyTracked(&p.Head.NodeBase, hmd.TrackedTransform().Value())
	}
	p.NodeBase.Simulate(dt)
}

// OnDispose implements Disposer.
func (p *VRPlayer) OnDispose() {
	p.models.release()
}

// applyTracked sets the local translation and rotation of n from a tracked
// pose. Scale is left alone.
func applyTracked(n *NodeBase, pose mgl32.Mat4) {
	t, r, _, err := Decompose(pose)
	if err != nil {
		return
	}
	n.SetPosition(t)
	n.SetRotation(r)
}

// --- VRController ---

// VRController follows a motion controller and draws its render model.
type VRController struct {
	NodeBase

	player     *VRPlayer
	controller *vr.MotionController
	model      *StaticModel
	parts      []vr.Component
}

var _ GBufferDrawer = (*VRController)(nil)

func newVRController(p *VRPlayer, mc *vr.MotionController) (*VRController, error) {
	rt := p.headset.Runtime()
	model, err := p.models.get(rt.RenderModelName(mc.Index()))
	if err != nil {
		return nil, err
	}
	c := &VRController{player: p, controller: mc, model: model}
	c.Init(c, fmt.Sprintf("%s Motion Controller", mc.Hand()), "VRController")
	c.parts = rt.Components(mc.Index())
	for _, part := range c.parts {
		if _, err := p.models.get(part.ModelName); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Controller returns the input device.
func (c *VRController) Controller() *vr.MotionController { return c.controller }

// Hand returns the hand of the controller.
func (c *VRController) Hand() vr.Hand { return c.controller.Hand() }

// Model returns the runtime render model, or nil.
func (c *VRController) Model() *StaticModel { return c.model }

// Simulate follows the tracked pose and refreshes the component transforms.
func (c *VRController) Simulate(dt float32) {
	applyTracked(&c.NodeBase, c.controller.TrackedTransform().Value())
	c.parts = c.player.headset.Runtime().Components(c.controller.Index())
	c.NodeBase.Simulate(dt)
}

// DrawGBuffer implements GBufferDrawer. The base render model is drawn when
// the runtime reports no components; otherwise each visible component is
// drawn at its own transform. The hand model, if any, is drawn last.
func (c *VRController) DrawGBuffer(ctx *DrawContext) error {
	abs := c.AbsoluteTransform()
	if c.model != nil {
		if len(c.parts) == 0 {
			if err := ctx.Pipeline.DrawStaticModel(c.model, abs); err != nil {
				return err
			}
		}
		for _, part := range c.parts {
			if !part.Visible {
				continue
			}
			m, err := c.player.models.get(part.ModelName)
			if err != nil {
				logx.Get().Warn("chime: controller component skipped", "component", part.Name, "err", err)
				continue
			}
			if m == nil {
				continue
			}
			if err := ctx.Pipeline.DrawStaticModel(m, abs.Mul4(part.Transform)); err != nil {
				return err
			}
		}
	}
	if hand := c.player.HandModels[c.Hand()]; hand != nil {
		return ctx.Pipeline.DrawStaticModel(hand, abs)
	}
	return nil
}
