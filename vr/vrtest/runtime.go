// Package vrtest provides a scripted vr.Runtime for tests and desktop runs
// without a headset.
package vrtest

import (
	"errors"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/phanxgames/chime/gpu"
	"github.com/phanxgames/chime/vr"
)

// Submission records one Submit call.
type Submission struct {
	Eye     vr.Eye
	Texture gpu.Texture
}

// Runtime is a fake runtime whose state tests set directly. The zero value
// reports no headset; use New for a headset with two controllers.
type Runtime struct {
	Present bool
	InitErr error
	PoseErr error

	Width, Height int
	IPD           float32

	Classes [vr.MaxDevices]vr.DeviceClass
	Hands   [vr.MaxDevices]vr.Hand
	Poses   [vr.MaxDevices]vr.Pose
	States  [vr.MaxDevices]vr.ControllerState

	Events []vr.Event

	ModelNames [vr.MaxDevices]string
	Models     map[string]*vr.RenderModel
	ModelErr   error
	Parts      [vr.MaxDevices][]vr.Component

	Submitted []Submission
	Frames    int
	Running   bool
}

var _ vr.Runtime = (*Runtime)(nil)

// New returns a present headset in slot 0 with left and right controllers in
// slots 1 and 2, all at identity poses.
func New() *Runtime {
	r := &Runtime{
		Present: true,
		Width:   1512,
		Height:  1680,
		IPD:     0.064,
		Models:  map[string]*vr.RenderModel{},
	}
	r.Classes[0] = vr.ClassHMD
	r.Classes[1] = vr.ClassController
	r.Hands[1] = vr.HandLeft
	r.Classes[2] = vr.ClassController
	r.Hands[2] = vr.HandRight
	for i := 0; i < 3; i++ {
		r.Poses[i] = vr.Pose{Valid: true, Connected: true, Transform: mgl32.Ident4()}
	}
	return r
}

// HMDPresent implements vr.Runtime.
func (r *Runtime) HMDPresent() bool { return r.Present }

// Init implements vr.Runtime.
func (r *Runtime) Init() error {
	if r.InitErr != nil {
		return r.InitErr
	}
	r.Running = true
	return nil
}

// Shutdown implements vr.Runtime.
func (r *Runtime) Shutdown() { r.Running = false }

// RecommendedTargetSize implements vr.Runtime.
func (r *Runtime) RecommendedTargetSize() (int, int) { return r.Width, r.Height }

// DeviceClass implements vr.Runtime.
func (r *Runtime) DeviceClass(i int) vr.DeviceClass { return r.Classes[i] }

// ControllerHand implements vr.Runtime.
func (r *Runtime) ControllerHand(i int) vr.Hand { return r.Hands[i] }

// ControllerState implements vr.Runtime.
func (r *Runtime) ControllerState(i int) (vr.ControllerState, bool) {
	return r.States[i], r.Classes[i] == vr.ClassController
}

// WaitGetPoses implements vr.Runtime. Render and game poses are identical.
func (r *Runtime) WaitGetPoses(render, game []vr.Pose) error {
	if r.PoseErr != nil {
		return r.PoseErr
	}
	r.Frames++
	copy(render, r.Poses[:])
	copy(game, r.Poses[:])
	return nil
}

// EyeProjection implements vr.Runtime with a symmetric 100 degree frustum.
func (r *Runtime) EyeProjection(_ vr.Eye, near, far float32) mgl32.Mat4 {
	aspect := float32(1)
	if r.Height > 0 {
		aspect = float32(r.Width) / float32(r.Height)
	}
	return mgl32.Perspective(mgl32.DegToRad(100), aspect, near, far)
}

// EyeToHead implements vr.Runtime: each eye is offset by half the IPD.
func (r *Runtime) EyeToHead(eye vr.Eye) mgl32.Mat4 {
	x := r.IPD / 2
	if eye == vr.EyeLeft {
		x = -x
	}
	return mgl32.Translate3D(x, 0, 0)
}

// PollEvent implements vr.Runtime.
func (r *Runtime) PollEvent() (vr.Event, bool) {
	if len(r.Events) == 0 {
		return vr.Event{}, false
	}
	ev := r.Events[0]
	r.Events = r.Events[1:]
	return ev, true
}

// RenderModelName implements vr.Runtime.
func (r *Runtime) RenderModelName(i int) string { return r.ModelNames[i] }

// LoadRenderModel implements vr.Runtime.
func (r *Runtime) LoadRenderModel(name string) (*vr.RenderModel, error) {
	if r.ModelErr != nil {
		return nil, r.ModelErr
	}
	return r.Models[name], nil
}

// Components implements vr.Runtime.
func (r *Runtime) Components(i int) []vr.Component { return r.Parts[i] }

// Submit implements vr.Runtime.
func (r *Runtime) Submit(eye vr.Eye, tex gpu.Texture) error {
	if !r.Running {
		return errors.New("vrtest: submit without session")
	}
	r.Submitted = append(r.Submitted, Submission{Eye: eye, Texture: tex})
	return nil
}
