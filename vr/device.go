package vr

import (
	"fmt"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/phanxgames/chime/input"
)

// TrackedDevice is an input device backed by one runtime slot. Its pose is
// exposed as the "TrackedTransform" transform element.
type TrackedDevice struct {
	*input.Device

	index int
	class DeviceClass
	pose  *input.Element[mgl32.Mat4]
}

func newTrackedDevice(name string, index int, class DeviceClass) *TrackedDevice {
	d := &TrackedDevice{
		Device: input.NewDevice(name),
		index:  index,
		class:  class,
	}
	d.pose = d.AddTransform("TrackedTransform")
	return d
}

// Index returns the runtime slot.
func (d *TrackedDevice) Index() int { return d.index }

// Class returns the device class.
func (d *TrackedDevice) Class() DeviceClass { return d.class }

// TrackedTransform returns the pose element.
func (d *TrackedDevice) TrackedTransform() *input.Element[mgl32.Mat4] { return d.pose }

// UpdateTransform queues a new pose.
func (d *TrackedDevice) UpdateTransform(m mgl32.Mat4, now time.Duration) {
	d.QueueTransform(d.pose, m, now)
}

func (d *TrackedDevice) tracked() *TrackedDevice { return d }

// handleEvent routes a runtime event. Plain tracked devices have no buttons.
func (d *TrackedDevice) handleEvent(Event, time.Duration) bool { return false }

func (d *TrackedDevice) pollState(Runtime, time.Duration) {}

// MotionController is a tracked hand controller.
type MotionController struct {
	*TrackedDevice

	hand Hand

	Trigger       *input.Element[bool]
	Grip          *input.Element[bool]
	Menu          *input.Element[bool]
	System        *input.Element[bool]
	TouchpadPress *input.Element[bool]
	TouchpadTouch *input.Element[bool]

	TriggerValue *input.Element[float32]
	TouchpadX    *input.Element[float32]
	TouchpadY    *input.Element[float32]
}

func newMotionController(index int, hand Hand) *MotionController {
	c := &MotionController{
		TrackedDevice: newTrackedDevice(fmt.Sprintf("%s Controller", hand), index, ClassController),
		hand:          hand,
	}
	c.Trigger = c.AddAction("Trigger")
	c.Grip = c.AddAction("Grip")
	c.Menu = c.AddAction("Menu")
	c.System = c.AddAction("System")
	c.TouchpadPress = c.AddAction("TouchpadPress")
	c.TouchpadTouch = c.AddAction("TouchpadTouch")
	c.TriggerValue = c.AddAxis("TriggerValue")
	c.TouchpadX = c.AddAxis("TouchpadX")
	c.TouchpadY = c.AddAxis("TouchpadY")
	return c
}

// Hand returns the assigned hand.
func (c *MotionController) Hand() Hand { return c.hand }

func (c *MotionController) handleEvent(ev Event, now time.Duration) bool {
	var pressed bool
	switch ev.Type {
	case EventButtonPress, EventButtonTouch:
		pressed = true
	case EventButtonUnpress, EventButtonUntouch:
	default:
		return false
	}
	touch := ev.Type == EventButtonTouch || ev.Type == EventButtonUntouch
	t := now - ev.Age

	var e *input.Element[bool]
	switch ev.Button {
	case ButtonTrigger:
		e = c.Trigger
	case ButtonGrip:
		e = c.Grip
	case ButtonMenu:
		e = c.Menu
	case ButtonSystem:
		e = c.System
	case ButtonTouchpad:
		e = c.TouchpadPress
		if touch {
			e = c.TouchpadTouch
		}
	default:
		return false
	}
	if touch && ev.Button != ButtonTouchpad {
		// Only the touchpad reports touch separately from press.
		return true
	}
	c.QueueAction(e, pressed, t)
	return true
}

func (c *MotionController) pollState(rt Runtime, now time.Duration) {
	st, ok := rt.ControllerState(c.index)
	if !ok {
		return
	}
	if st.Trigger != c.TriggerValue.Value() {
		c.QueueAxis(c.TriggerValue, st.Trigger, now)
	}
	if st.Touchpad[0] != c.TouchpadX.Value() {
		c.QueueAxis(c.TouchpadX, st.Touchpad[0], now)
	}
	if st.Touchpad[1] != c.TouchpadY.Value() {
		c.QueueAxis(c.TouchpadY, st.Touchpad[1], now)
	}
}

// trackedSlot is implemented by every device a Headset manages.
type trackedSlot interface {
	tracked() *TrackedDevice
	handleEvent(ev Event, now time.Duration) bool
	pollState(rt Runtime, now time.Duration)
}

var (
	_ trackedSlot = (*TrackedDevice)(nil)
	_ trackedSlot = (*MotionController)(nil)
)
