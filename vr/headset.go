package vr

import (
	"fmt"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/phanxgames/chime/gpu"
	"github.com/phanxgames/chime/internal/logx"
)

// Headset owns the runtime session and the devices it reports.
//
// Headset is not safe for concurrent use.
type Headset struct {
	rt Runtime

	width, height int

	slots       [MaxDevices]trackedSlot
	renderPoses [MaxDevices]Pose
	gamePoses   [MaxDevices]Pose

	controllers []*MotionController

	addedHandlers []deviceHandler
	nextID        uint32
}

type deviceHandler struct {
	id uint32
	fn func(*TrackedDevice)
}

// NewHeadset starts a session on rt. It returns nil, after logging a
// warning, when rt is nil, no headset is attached or the runtime fails to
// start; callers treat a nil Headset as "desktop only".
func NewHeadset(rt Runtime) *Headset {
	log := logx.Get()
	if rt == nil {
		log.Warn("vr: no runtime available")
		return nil
	}
	if !rt.HMDPresent() {
		log.Warn("vr: no headset detected")
		return nil
	}
	if err := rt.Init(); err != nil {
		log.Warn("vr: runtime initialization failed", "err", err)
		return nil
	}
	h := &Headset{rt: rt}
	h.width, h.height = rt.RecommendedTargetSize()
	log.Info("vr: headset initialized", "width", h.width, "height", h.height)

	for i := 0; i < MaxDevices; i++ {
		h.activate(i)
	}
	return h
}

// Runtime returns the underlying runtime.
func (h *Headset) Runtime() Runtime { return h.rt }

// RecommendedTargetSize returns the per-eye render target size.
func (h *Headset) RecommendedTargetSize() (width, height int) {
	return h.width, h.height
}

// HMD returns the head-mounted display device, or nil.
func (h *Headset) HMD() *TrackedDevice {
	if s := h.slots[HMDIndex]; s != nil {
		return s.tracked()
	}
	return nil
}

// Device returns the device in a slot, or nil.
func (h *Headset) Device(index int) *TrackedDevice {
	if index < 0 || index >= MaxDevices || h.slots[index] == nil {
		return nil
	}
	return h.slots[index].tracked()
}

// Controller returns the motion controller in a slot, or nil.
func (h *Headset) Controller(index int) *MotionController {
	if index < 0 || index >= MaxDevices {
		return nil
	}
	c, _ := h.slots[index].(*MotionController)
	return c
}

// Controllers returns the connected motion controllers in activation order.
// The returned slice MUST NOT be mutated.
func (h *Headset) Controllers() []*MotionController {
	return h.controllers
}

// OnDeviceAdded registers fn to run when a device is activated after
// startup. Devices present at startup are available from Device and
// Controllers as soon as NewHeadset returns.
func (h *Headset) OnDeviceAdded(fn func(*TrackedDevice)) {
	h.nextID++
	h.addedHandlers = append(h.addedHandlers, deviceHandler{id: h.nextID, fn: fn})
}

// EyeProjection returns the projection of an eye.
func (h *Headset) EyeProjection(eye Eye, near, far float32) mgl32.Mat4 {
	return h.rt.EyeProjection(eye, near, far)
}

// EyeToHead returns the eye-to-head transform of an eye.
func (h *Headset) EyeToHead(eye Eye) mgl32.Mat4 {
	return h.rt.EyeToHead(eye)
}

// Update waits for the next poses, routes pending runtime events and queues
// pose and analog changes on every device. Call ProcessEvents afterwards to
// apply them.
func (h *Headset) Update(now time.Duration) error {
	if err := h.rt.WaitGetPoses(h.renderPoses[:], h.gamePoses[:]); err != nil {
		return fmt.Errorf("vr: wait poses: %w", err)
	}
	for {
		ev, ok := h.rt.PollEvent()
		if !ok {
			break
		}
		h.dispatch(ev, now)
	}
	for i, s := range h.slots {
		if s == nil {
			continue
		}
		if p := h.renderPoses[i]; p.Valid {
			s.tracked().UpdateTransform(p.Transform, now)
		}
		s.pollState(h.rt, now)
	}
	return nil
}

// ProcessEvents applies queued changes on every device.
func (h *Headset) ProcessEvents() {
	for _, s := range h.slots {
		if s != nil {
			s.tracked().ProcessEvents()
		}
	}
}

// RenderPose returns the latest render pose of a slot.
func (h *Headset) RenderPose(index int) Pose { return h.renderPoses[index] }

// GamePose returns the latest game pose of a slot.
func (h *Headset) GamePose(index int) Pose { return h.gamePoses[index] }

// Submit hands an eye image to the compositor.
func (h *Headset) Submit(eye Eye, tex gpu.Texture) error {
	if err := h.rt.Submit(eye, tex); err != nil {
		return fmt.Errorf("vr: submit eye %d: %w", eye, err)
	}
	return nil
}

// Shutdown removes every device and stops the runtime.
func (h *Headset) Shutdown() {
	for i := range h.slots {
		h.deactivate(i)
	}
	h.rt.Shutdown()
}

func (h *Headset) dispatch(ev Event, now time.Duration) {
	if ev.DeviceIndex < 0 || ev.DeviceIndex >= MaxDevices {
		logx.Get().Warn("vr: event for out-of-range device", "index", ev.DeviceIndex, "type", ev.Type)
		return
	}
	switch ev.Type {
	case EventDeviceActivated:
		h.activate(ev.DeviceIndex)
		return
	case EventDeviceDeactivated:
		h.deactivate(ev.DeviceIndex)
		return
	}
	s := h.slots[ev.DeviceIndex]
	if s == nil || !s.handleEvent(ev, now) {
		logx.Get().Warn("vr: unhandled event", "index", ev.DeviceIndex, "type", ev.Type)
	}
}

func (h *Headset) activate(index int) {
	if h.slots[index] != nil {
		return
	}
	class := h.rt.DeviceClass(index)
	var s trackedSlot
	switch class {
	case ClassInvalid:
		return
	case ClassHMD:
		s = newTrackedDevice("Headset", index, class)
	case ClassController:
		c := newMotionController(index, h.rt.ControllerHand(index))
		h.controllers = append(h.controllers, c)
		s = c
	default:
		s = newTrackedDevice(fmt.Sprintf("%s %d", class, index), index, class)
	}
	h.slots[index] = s
	logx.Get().Debug("vr: device activated", "index", index, "class", class)
	for _, hd := range h.addedHandlers {
		hd.fn(s.tracked())
	}
}

func (h *Headset) deactivate(index int) {
	s := h.slots[index]
	if s == nil {
		return
	}
	h.slots[index] = nil
	if c, ok := s.(*MotionController); ok {
		for i, cc := range h.controllers {
			if cc == c {
				h.controllers = append(h.controllers[:i], h.controllers[i+1:]...)
				break
			}
		}
	}
	logx.Get().Debug("vr: device deactivated", "index", index)
	s.tracked().Remove()
}
