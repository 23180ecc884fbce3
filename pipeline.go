package chime

import (
	"fmt"
	"slices"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/phanxgames/chime/gpu"
	"github.com/phanxgames/chime/internal/logx"
)

// Stage is the state of a DeferredPipeline.
type Stage uint8

const (
	StageIdle Stage = iota
	StageGBuffer
	StageLighting
	StageEffects
	StagePostProcess
	StageOverlays
)

func (s Stage) String() string {
	switch s {
	case StageIdle:
		return "Idle"
	case StageGBuffer:
		return "GBuffer"
	case StageLighting:
		return "Lighting"
	case StageEffects:
		return "Effects"
	case StagePostProcess:
		return "PostProcess"
	case StageOverlays:
		return "Overlays"
	default:
		return fmt.Sprintf("Stage(%d)", uint8(s))
	}
}

// FrameStats counts the work of the current camera render. It is reset by
// BeginGBuffer.
type FrameStats struct {
	// Stages lists the stages entered, in order.
	Stages        []Stage
	GeometryDraws int
	LightDraws    int
	LineDraws     int
}

// DeferredPipeline renders one camera view per cycle through the fixed
// stage sequence
//
//	BeginGBuffer -> BeginLighting -> BeginEffects -> PostProcess -> BeginOverlays
//
// Calls out of order fail with ErrStageOrder and leave the pipeline
// untouched. A new cycle starts with BeginGBuffer once Overlays has begun.
//
// DeferredPipeline is not safe for concurrent use.
type DeferredPipeline struct {
	dev    gpu.Device
	layout gpu.MatrixLayout

	width, height int
	backbuffer    gpu.Texture

	depth   gpu.Texture
	diffuse gpu.Texture // diffuse rgb, roughness a
	normal  gpu.Texture // normal rgb, metallic a
	light   gpu.Texture // light accumulation

	defaultDiffuse   gpu.Texture
	defaultNormal    gpu.Texture
	defaultRoughness gpu.Texture

	programs [4]gpu.Program

	objectCB gpu.Buffer
	lightCB  gpu.Buffer

	objectScratch [gpu.ObjectConstantsSize]byte
	lightScratch  [gpu.LightConstantsSize]byte

	stage     Stage
	object    gpu.ObjectConstants
	near, far float32
	stats     FrameStats
}

// NewDeferredPipeline creates the intermediate targets, programs and
// constant buffers for rendering into backbuffer. It returns ErrNoDevice if
// dev is nil.
func NewDeferredPipeline(dev gpu.Device, backbuffer gpu.Texture) (*DeferredPipeline, error) {
	if dev == nil {
		return nil, ErrNoDevice
	}
	if backbuffer == nil {
		return nil, fmt.Errorf("chime: pipeline without backbuffer")
	}
	desc := backbuffer.Desc()
	p := &DeferredPipeline{
		dev:        dev,
		layout:     dev.Caps().MatrixLayout,
		width:      desc.Width,
		height:     desc.Height,
		backbuffer: backbuffer,
	}
	if err := p.init(); err != nil {
		p.Release()
		return nil, err
	}
	logx.Get().Info("chime: pipeline created", "width", p.width, "height", p.height)
	return p, nil
}

func (p *DeferredPipeline) init() error {
	var err error
	target := func(f gpu.Format, bind gpu.BindFlags) gpu.Texture {
		if err != nil {
			return nil
		}
		var t gpu.Texture
		t, err = p.dev.NewTexture(gpu.TextureDesc{
			Width:  p.width,
			Height: p.height,
			Format: f,
			Bind:   bind | gpu.BindShaderResource,
		}, nil)
		return t
	}
	p.depth = target(gpu.FormatDepth32F, gpu.BindDepthStencil)
	p.diffuse = target(gpu.FormatRGBA8, gpu.BindRenderTarget)
	p.normal = target(gpu.FormatRGBA16F, gpu.BindRenderTarget)
	p.light = target(gpu.FormatRGBA16F, gpu.BindRenderTarget)
	if err != nil {
		return fmt.Errorf("chime: create pipeline targets: %w", err)
	}

	pixel := func(rgba [4]byte) gpu.Texture {
		if err != nil {
			return nil
		}
		var t gpu.Texture
		t, err = p.dev.NewTexture(gpu.TextureDesc{
			Width:  1,
			Height: 1,
			Format: gpu.FormatRGBA8,
			Usage:  gpu.UsageImmutable,
			Bind:   gpu.BindShaderResource,
		}, rgba[:])
		return t
	}
	p.defaultDiffuse = pixel([4]byte{255, 255, 255, 255})
	p.defaultNormal = pixel([4]byte{128, 128, 255, 255})
	p.defaultRoughness = pixel([4]byte{0, 255, 0, 255})
	if err != nil {
		return fmt.Errorf("chime: create default textures: %w", err)
	}

	for i := range p.programs {
		kind := gpu.ProgramKind(i)
		if p.programs[i], err = p.dev.NewProgram(kind); err != nil {
			return fmt.Errorf("chime: create %s program: %w", kind, err)
		}
	}

	constants := func(size int) gpu.Buffer {
		if err != nil {
			return nil
		}
		var b gpu.Buffer
		b, err = p.dev.NewBuffer(gpu.BufferDesc{Size: size, Bind: gpu.BindConstantBuffer}, nil)
		return b
	}
	p.objectCB = constants(gpu.ObjectConstantsSize)
	p.lightCB = constants(gpu.LightConstantsSize)
	if err != nil {
		return fmt.Errorf("chime: create constant buffers: %w", err)
	}
	return nil
}

// Release frees every resource the pipeline created. The backbuffer is owned
// by the caller.
func (p *DeferredPipeline) Release() {
	for _, t := range []gpu.Texture{p.depth, p.diffuse, p.normal, p.light,
		p.defaultDiffuse, p.defaultNormal, p.defaultRoughness} {
		if t != nil {
			t.Release()
		}
	}
	for _, pr := range p.programs {
		if pr != nil {
			pr.Release()
		}
	}
	for _, b := range []gpu.Buffer{p.objectCB, p.lightCB} {
		if b != nil {
			b.Release()
		}
	}
	*p = DeferredPipeline{dev: p.dev, backbuffer: p.backbuffer, width: p.width, height: p.height}
}

// Width returns the width of the render targets.
func (p *DeferredPipeline) Width() int { return p.width }

// Height returns the height of the render targets.
func (p *DeferredPipeline) Height() int { return p.height }

// Backbuffer returns the final color target.
func (p *DeferredPipeline) Backbuffer() gpu.Texture { return p.backbuffer }

// Device returns the graphics device.
func (p *DeferredPipeline) Device() gpu.Device { return p.dev }

// Stage returns the current stage.
func (p *DeferredPipeline) Stage() Stage { return p.stage }

// Stats returns the counters of the current or last camera render.
func (p *DeferredPipeline) Stats() FrameStats {
	s := p.stats
	s.Stages = slices.Clone(s.Stages)
	return s
}

// Abort returns the pipeline to StageIdle after a failed camera render so
// the next BeginGBuffer is accepted.
func (p *DeferredPipeline) Abort() {
	p.stage = StageIdle
}

func (p *DeferredPipeline) expect(op string, allowed ...Stage) error {
	if slices.Contains(allowed, p.stage) {
		return nil
	}
	return fmt.Errorf("%w: %s during %s", ErrStageOrder, op, p.stage)
}

func (p *DeferredPipeline) enter(s Stage) {
	p.stage = s
	p.stats.Stages = append(p.stats.Stages, s)
}

func (p *DeferredPipeline) uploadObject(model mgl32.Mat4) error {
	p.object.Model = model
	p.object.Encode(p.objectScratch[:], p.layout)
	return p.dev.UpdateBuffer(p.objectCB, p.objectScratch[:])
}

// --- GBuffer ---

// BeginGBuffer starts a camera render: it clears depth and the GBuffer
// targets, binds them as outputs and stores the view and projection for
// every following draw. It fails with ErrSingularProjection if projection
// cannot be inverted.
func (p *DeferredPipeline) BeginGBuffer(view, projection mgl32.Mat4, near, far float32) error {
	if err := p.expect("BeginGBuffer", StageIdle, StageOverlays); err != nil {
		return err
	}
	if math32.Abs(projection.Det()) < singularEpsilon {
		return ErrSingularProjection
	}
	invView, err := InverseView(view)
	if err != nil {
		return fmt.Errorf("chime: view matrix: %w", err)
	}
	p.object = gpu.ObjectConstants{
		Model:         mgl32.Ident4(),
		View:          view,
		Projection:    projection,
		InvView:       invView,
		InvProjection: projection.Inv(),
	}
	p.near, p.far = near, far
	p.stats = FrameStats{Stages: p.stats.Stages[:0]}

	p.dev.ClearDepth(p.depth, 1)
	p.dev.ClearColor(p.diffuse, [4]float32{})
	p.dev.ClearColor(p.normal, [4]float32{})
	p.dev.SetRenderTargets(p.depth, p.diffuse, p.normal)
	p.dev.SetRasterState(gpu.RasterState{DepthTest: true, DepthWrite: true, Blend: gpu.BlendOpaque})
	p.dev.SetProgram(p.programs[gpu.ProgramGBuffer])
	p.dev.SetConstants(p.objectCB)
	p.enter(StageGBuffer)
	return nil
}

// DrawStaticModel draws every section of model with the given world
// transform. Sections without textures sample the default 1x1 textures.
func (p *DeferredPipeline) DrawStaticModel(model *StaticModel, world mgl32.Mat4) error {
	if err := p.expect("DrawStaticModel", StageGBuffer); err != nil {
		return err
	}
	for i := range model.Sections {
		s := &model.Sections[i]
		if err := p.uploadObject(world); err != nil {
			return fmt.Errorf("chime: upload object constants: %w", err)
		}
		p.dev.SetShaderResources(
			orDefault(s.Material.Diffuse, p.defaultDiffuse),
			orDefault(s.Material.Normal, p.defaultNormal),
			orDefault(s.Material.MetallicRoughness, p.defaultRoughness),
		)
		p.dev.SetVertexBuffer(s.Mesh.Vertices, s.Mesh.Stride)
		p.dev.SetIndexBuffer(s.Mesh.Indices)
		p.dev.DrawIndexed(gpu.TopologyTriangleList, s.Mesh.IndexCount, 0)
		p.stats.GeometryDraws++
	}
	return nil
}

func orDefault(t, def gpu.Texture) gpu.Texture {
	if t == nil {
		return def
	}
	return t
}

// --- Lighting ---

// BeginLighting binds the GBuffer as input and the cleared light
// accumulation target as output with additive blending.
func (p *DeferredPipeline) BeginLighting() error {
	if err := p.expect("BeginLighting", StageGBuffer); err != nil {
		return err
	}
	if err := p.uploadObject(mgl32.Ident4()); err != nil {
		return fmt.Errorf("chime: upload object constants: %w", err)
	}
	p.dev.SetRasterState(gpu.RasterState{Blend: gpu.BlendAdditive})
	p.dev.ClearColor(p.light, [4]float32{})
	p.dev.SetRenderTargets(nil, p.light)
	p.dev.SetShaderResources(p.depth, p.diffuse, p.normal)
	p.dev.SetProgram(p.programs[gpu.ProgramPointLight])
	p.dev.SetConstants(p.objectCB, p.lightCB)
	p.enter(StageLighting)
	return nil
}

// DrawPointLight accumulates one point light with a full-screen triangle.
// The position is transformed into view space; the camera clip planes are
// uploaded with it.
func (p *DeferredPipeline) DrawPointLight(color, worldPos mgl32.Vec3) error {
	if err := p.expect("DrawPointLight", StageLighting); err != nil {
		return err
	}
	lc := gpu.LightConstants{
		Color:   color,
		ViewPos: p.object.View.Mul4x1(worldPos.Vec4(1)).Vec3(),
		Near:    p.near,
		Far:     p.far,
	}
	lc.Encode(p.lightScratch[:])
	if err := p.dev.UpdateBuffer(p.lightCB, p.lightScratch[:]); err != nil {
		return fmt.Errorf("chime: upload light constants: %w", err)
	}
	p.dev.Draw(gpu.TopologyTriangleList, 3, 0)
	p.stats.LightDraws++
	return nil
}

// --- Effects ---

// BeginEffects ends additive light accumulation. Effect draws blend over the
// light accumulation target with depth testing against the GBuffer depth.
func (p *DeferredPipeline) BeginEffects() error {
	if err := p.expect("BeginEffects", StageLighting); err != nil {
		return err
	}
	p.dev.SetShaderResources()
	p.dev.SetRenderTargets(p.depth, p.light)
	p.dev.SetRasterState(gpu.RasterState{DepthTest: true, Blend: gpu.BlendAlpha})
	p.enter(StageEffects)
	return nil
}

// --- Post processing ---

// PostProcess tonemaps the light accumulation target into the backbuffer.
func (p *DeferredPipeline) PostProcess() error {
	if err := p.expect("PostProcess", StageEffects); err != nil {
		return err
	}
	p.dev.SetRasterState(gpu.RasterState{Blend: gpu.BlendOpaque})
	p.dev.SetRenderTargets(nil, p.backbuffer)
	p.dev.SetShaderResources(p.light)
	p.dev.SetProgram(p.programs[gpu.ProgramTonemap])
	p.dev.Draw(gpu.TopologyTriangleList, 3, 0)
	p.enter(StagePostProcess)
	return nil
}

// --- Overlays ---

// BeginOverlays binds the depth buffer and the backbuffer for unlit line
// drawing.
func (p *DeferredPipeline) BeginOverlays() error {
	if err := p.expect("BeginOverlays", StagePostProcess); err != nil {
		return err
	}
	p.dev.SetShaderResources()
	p.dev.SetRenderTargets(p.depth, p.backbuffer)
	p.dev.SetRasterState(gpu.RasterState{DepthTest: true, DepthWrite: true, Blend: gpu.BlendAlpha})
	p.dev.SetProgram(p.programs[gpu.ProgramSolidColor])
	p.dev.SetConstants(p.objectCB)
	p.enter(StageOverlays)
	return nil
}

// DrawLineMesh draws an indexed line mesh with the given world transform.
func (p *DeferredPipeline) DrawLineMesh(mesh *Mesh, world mgl32.Mat4) error {
	if err := p.expect("DrawLineMesh", StageOverlays); err != nil {
		return err
	}
	if err := p.uploadObject(world); err != nil {
		return fmt.Errorf("chime: upload object constants: %w", err)
	}
	p.dev.SetVertexBuffer(mesh.Vertices, mesh.Stride)
	p.dev.SetIndexBuffer(mesh.Indices)
	p.dev.DrawIndexed(gpu.TopologyLineList, mesh.IndexCount, 0)
	p.stats.LineDraws++
	return nil
}

// DrawDebugLines draws lineCount world-space lines from a buffer of
// gpu.LineVertex pairs.
func (p *DeferredPipeline) DrawDebugLines(buf gpu.Buffer, lineCount int) error {
	if err := p.expect("DrawDebugLines", StageOverlays); err != nil {
		return err
	}
	if err := p.uploadObject(mgl32.Ident4()); err != nil {
		return fmt.Errorf("chime: upload object constants: %w", err)
	}
	p.dev.SetVertexBuffer(buf, gpu.LineVertexSize)
	p.dev.Draw(gpu.TopologyLineList, lineCount*2, 0)
	p.stats.LineDraws++
	return nil
}
