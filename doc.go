// Package chime is a real-time 3D renderer core with optional VR output,
// built on [Ebitengine].
//
// Chime provides the scene graph, transform hierarchy, a deferred rendering
// pipeline, batched debug lines, a bridge between nodes and rigid bodies, a
// generic input model and headset tracking, which a small 3D or VR
// application needs.
//
// # Quick start
//
// The simplest way to get started is [Run], which opens a window, builds a
// [Screen] (desktop camera, light, grid and, with a headset, a VR player)
// and drives the frame loop:
//
//	cfg, _ := chime.LoadConfig("chime.toml")
//	chime.Run(chime.RunOptions{
//		Config: cfg,
//		Setup: func(s *chime.Screen) error {
//			model, err := chime.LoadStaticModel(s.Device(), []chime.SectionData{chime.CubeData(1)})
//			if err != nil {
//				return err
//			}
//			s.Scene.AddChild(chime.NewProp("crate", model, physics.Box{HalfExtents: mgl32.Vec3{0.5, 0.5, 0.5}}, 1))
//			return nil
//		},
//	})
//
// For full control, create a [Scene] and a [DeferredPipeline] on any
// [gpu.Device] and call [Scene.Simulate] and [Scene.Render] yourself.
//
// # Scene graph
//
// Every object is a [Node]. Nodes form a tree rooted at a [Scene]. A node's
// local transform is translation * rotation * scale; its absolute transform
// is the product of its ancestors' local transforms and is never cached, so
// it always reflects the live hierarchy.
//
// Nodes opt into behavior by implementing small interfaces: [GBufferDrawer],
// [LightingDrawer], [EffectsDrawer] and [OverlayDrawer] for the render
// passes, [TransformObserver], [AncestorObserver] and [ChildObserver] for
// tree changes, and [Disposer] for cleanup.
//
// # Rendering
//
// [DeferredPipeline] enforces the stage order GBuffer, Lighting, Effects,
// PostProcess, Overlays. Draw calls outside their stage fail with
// [ErrStageOrder]. [DebugDraw] accumulates world-space lines during a frame
// and draws them in the Overlays stage.
//
// # Physics and VR
//
// [PhysicsNode] keeps a rigid body registered with the scene's world while
// the node is attached: kinematic bodies follow the node, dynamic bodies
// drive it. [VRPlayer] maps the tracked headset and controllers onto nodes
// and renders one [EyeCamera] per eye.
//
// Tweens use [gween]; the ECS adapter in chime/ecs forwards input events to
// a [Donburi] world.
//
// [Ebitengine]: https://ebitengine.org
// [gween]: https://github.com/tanema/gween
// [Donburi]: https://github.com/yohamta/donburi
package chime
