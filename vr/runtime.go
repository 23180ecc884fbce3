// Package vr maps a VR runtime's tracked devices onto the input model.
//
// The Runtime interface is the collaborator contract: device classes,
// per-frame pose arrays, eye projections, an event queue, controller render
// models and eye submission. A Headset polls it once per frame, queues pose
// and button changes on TrackedDevice and MotionController input devices, and
// lets ProcessEvents apply them in one batch like any other input.Device.
package vr

import (
	"errors"
	"image"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/phanxgames/chime/gpu"
)

// MaxDevices is the number of tracked device slots a runtime reports.
const MaxDevices = 16

// HMDIndex is the slot of the head-mounted display.
const HMDIndex = 0

// ErrNotPresent means that no headset is attached.
var ErrNotPresent = errors.New("vr: no headset present")

// DeviceClass is the kind of a tracked device slot.
type DeviceClass int

// Device classes.
const (
	ClassInvalid DeviceClass = iota
	ClassHMD
	ClassController
	ClassTracker
	ClassReference
)

func (c DeviceClass) String() string {
	switch c {
	case ClassHMD:
		return "HMD"
	case ClassController:
		return "Controller"
	case ClassTracker:
		return "Tracker"
	case ClassReference:
		return "Reference"
	default:
		return "Invalid"
	}
}

// Hand is the hand a controller is assigned to.
type Hand int

// Hands.
const (
	HandUnknown Hand = iota
	HandLeft
	HandRight
)

func (h Hand) String() string {
	switch h {
	case HandLeft:
		return "Left"
	case HandRight:
		return "Right"
	default:
		return "Unknown"
	}
}

// Eye selects one of the two eye views.
type Eye int

// Eyes.
const (
	EyeLeft Eye = iota
	EyeRight
)

// Pose is the tracked state of one device slot.
type Pose struct {
	Valid     bool
	Connected bool
	// Transform is the device-to-tracking-space transform.
	Transform mgl32.Mat4
}

// EventType identifies a runtime event.
type EventType int

// Event types.
const (
	EventNone EventType = iota
	EventDeviceActivated
	EventDeviceDeactivated
	EventButtonPress
	EventButtonUnpress
	EventButtonTouch
	EventButtonUntouch
)

// Button identifies a controller button.
type Button int

// Controller buttons.
const (
	ButtonSystem Button = iota
	ButtonMenu
	ButtonGrip
	ButtonTrigger
	ButtonTouchpad
)

// Event is one entry of the runtime event queue.
type Event struct {
	Type        EventType
	DeviceIndex int
	Button      Button
	// Age is how long ago the event happened.
	Age time.Duration
}

// ControllerState is the analog state of a controller.
type ControllerState struct {
	Trigger  float32
	Touchpad mgl32.Vec2
}

// RenderModel is a decoded controller model.
type RenderModel struct {
	Name     string
	Vertices []gpu.StaticVertex
	Indices  []uint32
	Diffuse  *image.RGBA
}

// Component is one articulated part of a controller render model.
type Component struct {
	Name string
	// ModelName is the render model to draw, empty for non-visual parts.
	ModelName string
	// Transform is relative to the controller.
	Transform mgl32.Mat4
	Visible   bool
}

// Runtime is the VR runtime collaborator.
type Runtime interface {
	// HMDPresent reports whether a headset is attached, without initializing.
	HMDPresent() bool
	// Init starts the runtime.
	Init() error
	// Shutdown stops the runtime.
	Shutdown()

	// RecommendedTargetSize is the per-eye render target size.
	RecommendedTargetSize() (width, height int)
	// DeviceClass returns the class of a slot.
	DeviceClass(index int) DeviceClass
	// ControllerHand returns the hand of a controller slot.
	ControllerHand(index int) Hand
	// ControllerState returns the analog state of a controller slot.
	ControllerState(index int) (ControllerState, bool)

	// WaitGetPoses blocks until the runtime is ready for a new frame and
	// fills the predicted poses for rendering and for game logic.
	WaitGetPoses(render, game []Pose) error
	// EyeProjection returns an eye's projection for the clip planes.
	EyeProjection(eye Eye, near, far float32) mgl32.Mat4
	// EyeToHead returns the eye-to-head transform.
	EyeToHead(eye Eye) mgl32.Mat4
	// PollEvent dequeues the next event.
	PollEvent() (Event, bool)

	// RenderModelName names the render model of a slot.
	RenderModelName(index int) string
	// LoadRenderModel loads a render model. A missing model returns nil, nil.
	LoadRenderModel(name string) (*RenderModel, error)
	// Components returns the articulated parts of a slot's render model.
	Components(index int) []Component

	// Submit hands an eye image to the compositor.
	Submit(eye Eye, tex gpu.Texture) error
}
