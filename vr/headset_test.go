package vr_test

import (
	"errors"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phanxgames/chime/gpu"
	"github.com/phanxgames/chime/gpu/gputest"
	"github.com/phanxgames/chime/input"
	"github.com/phanxgames/chime/vr"
	"github.com/phanxgames/chime/vr/vrtest"
)

func TestNewHeadsetAbsent(t *testing.T) {
	assert.Nil(t, vr.NewHeadset(nil))
	assert.Nil(t, vr.NewHeadset(&vrtest.Runtime{}))

	rt := vrtest.New()
	rt.InitErr = errors.New("compositor unavailable")
	assert.Nil(t, vr.NewHeadset(rt))
}

func TestNewHeadsetDevices(t *testing.T) {
	rt := vrtest.New()
	h := vr.NewHeadset(rt)
	require.NotNil(t, h)

	w, hh := h.RecommendedTargetSize()
	assert.Equal(t, 1512, w)
	assert.Equal(t, 1680, hh)

	require.NotNil(t, h.HMD())
	assert.Equal(t, vr.ClassHMD, h.HMD().Class())
	require.Len(t, h.Controllers(), 2)
	assert.Equal(t, vr.HandLeft, h.Controllers()[0].Hand())
	assert.Equal(t, vr.HandRight, h.Controllers()[1].Hand())
	assert.Same(t, h.Controllers()[1], h.Controller(2))
	assert.Nil(t, h.Controller(0))
	assert.Nil(t, h.Device(5))
}

func TestUpdateQueuesPoses(t *testing.T) {
	rt := vrtest.New()
	h := vr.NewHeadset(rt)
	require.NotNil(t, h)
	pose := mgl32.Translate3D(0, 1.7, 0)
	rt.Poses[0].Transform = pose

	require.NoError(t, h.Update(time.Second))
	hmd := h.HMD()
	assert.Equal(t, mgl32.Ident4(), hmd.TrackedTransform().Value(), "not applied before ProcessEvents")
	assert.Equal(t, 1, rt.Frames)

	h.ProcessEvents()
	assert.Equal(t, pose, hmd.TrackedTransform().Value())
	assert.Equal(t, pose, h.RenderPose(0).Transform)
	assert.Equal(t, pose, h.GamePose(0).Transform)
}

func TestUpdateSkipsInvalidPoses(t *testing.T) {
	rt := vrtest.New()
	h := vr.NewHeadset(rt)
	rt.Poses[1] = vr.Pose{Valid: false, Transform: mgl32.Translate3D(9, 9, 9)}

	require.NoError(t, h.Update(0))
	h.ProcessEvents()
	assert.Equal(t, mgl32.Ident4(), h.Controller(1).TrackedTransform().Value())
}

func TestUpdatePoseError(t *testing.T) {
	rt := vrtest.New()
	h := vr.NewHeadset(rt)
	rt.PoseErr = errors.New("lost tracking")
	assert.ErrorIs(t, h.Update(0), rt.PoseErr)
}

func TestButtonEvents(t *testing.T) {
	rt := vrtest.New()
	h := vr.NewHeadset(rt)
	left := h.Controller(1)

	var at time.Duration
	left.Trigger.OnChange(func(c input.Change[bool]) { at = c.Time })

	rt.Events = []vr.Event{
		{Type: vr.EventButtonPress, DeviceIndex: 1, Button: vr.ButtonTrigger, Age: 10 * time.Millisecond},
		{Type: vr.EventButtonTouch, DeviceIndex: 1, Button: vr.ButtonTouchpad},
		{Type: vr.EventButtonPress, DeviceIndex: 1, Button: vr.ButtonGrip},
		{Type: vr.EventButtonUnpress, DeviceIndex: 1, Button: vr.ButtonGrip},
	}
	require.NoError(t, h.Update(time.Second))
	h.ProcessEvents()

	assert.True(t, left.Trigger.Value())
	assert.Equal(t, time.Second-10*time.Millisecond, at)
	assert.True(t, left.TouchpadTouch.Value())
	assert.False(t, left.TouchpadPress.Value())
	assert.False(t, left.Grip.Value())
}

func TestUnroutedEventsAreIgnored(t *testing.T) {
	rt := vrtest.New()
	h := vr.NewHeadset(rt)
	rt.Events = []vr.Event{
		{Type: vr.EventButtonPress, DeviceIndex: 0, Button: vr.ButtonTrigger},
		{Type: vr.EventButtonPress, DeviceIndex: 9, Button: vr.ButtonTrigger},
		{Type: vr.EventButtonPress, DeviceIndex: 99},
	}
	assert.NoError(t, h.Update(0))
	h.ProcessEvents()
	assert.Len(t, h.Controllers(), 2)
}

func TestAnalogState(t *testing.T) {
	rt := vrtest.New()
	h := vr.NewHeadset(rt)
	rt.States[2] = vr.ControllerState{Trigger: 0.75, Touchpad: mgl32.Vec2{-0.5, 0.25}}

	require.NoError(t, h.Update(0))
	h.ProcessEvents()
	right := h.Controller(2)
	assert.Equal(t, float32(0.75), right.TriggerValue.Value())
	assert.Equal(t, float32(-0.5), right.TouchpadX.Value())
	assert.Equal(t, float32(0.25), right.TouchpadY.Value())

	pending := right.Pending()
	require.NoError(t, h.Update(0))
	assert.Equal(t, pending+1, right.Pending(), "only the pose is queued when analog state is unchanged")
}

func TestDeviceActivationLifecycle(t *testing.T) {
	rt := vrtest.New()
	h := vr.NewHeadset(rt)

	var added []*vr.TrackedDevice
	h.OnDeviceAdded(func(d *vr.TrackedDevice) { added = append(added, d) })

	rt.Classes[3] = vr.ClassTracker
	rt.Events = []vr.Event{{Type: vr.EventDeviceActivated, DeviceIndex: 3}}
	require.NoError(t, h.Update(0))
	require.Len(t, added, 1)
	assert.Equal(t, vr.ClassTracker, added[0].Class())
	assert.Equal(t, 3, added[0].Index())

	left := h.Controller(1)
	removed := false
	left.OnRemoved(func(*input.Device) { removed = true })
	rt.Events = []vr.Event{{Type: vr.EventDeviceDeactivated, DeviceIndex: 1}}
	require.NoError(t, h.Update(0))
	assert.True(t, removed)
	assert.Nil(t, h.Controller(1))
	assert.Len(t, h.Controllers(), 1)
}

func TestEyesAndSubmit(t *testing.T) {
	rt := vrtest.New()
	h := vr.NewHeadset(rt)

	l := h.EyeToHead(vr.EyeLeft)
	r := h.EyeToHead(vr.EyeRight)
	assert.InDelta(t, 0.064, r[12]-l[12], 1e-6)
	assert.NotEqual(t, mgl32.Mat4{}, h.EyeProjection(vr.EyeLeft, 0.1, 1000))

	dev := gputest.New()
	tex, err := dev.NewTexture(gpuDesc(), nil)
	require.NoError(t, err)
	require.NoError(t, h.Submit(vr.EyeLeft, tex))
	require.NoError(t, h.Submit(vr.EyeRight, tex))
	assert.Len(t, rt.Submitted, 2)

	h.Shutdown()
	assert.False(t, rt.Running)
	assert.Nil(t, h.HMD())
	assert.Error(t, h.Submit(vr.EyeLeft, tex))
}

func gpuDesc() gpu.TextureDesc {
	return gpu.TextureDesc{Width: 4, Height: 4, Format: gpu.FormatRGBA8, Bind: gpu.BindRenderTarget | gpu.BindShaderResource}
}
