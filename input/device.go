// Package input models input devices as collections of typed elements.
//
// A Device holds action (bool), axis (float32) and transform (mgl32.Mat4)
// elements. Producers queue timestamped value changes as raw events arrive;
// ProcessEvents applies every pending change in arrival order, once per
// frame, so the rest of the program observes input at a single point.
//
// Devices are not safe for concurrent use.
package input

import (
	"time"

	"github.com/go-gl/mathgl/mgl32"
)

// Event is the flat form of an applied change, forwarded to a Sink.
type Event struct {
	Device    string
	Element   string
	Kind      Kind
	Action    bool
	Axis      float32
	Transform mgl32.Mat4
	Time      time.Duration
}

// Sink receives every applied change of the devices it is attached to.
type Sink interface {
	InputChanged(e Event)
}

// pendingEvent is one queued change. Events live by value in a slice that is
// reused every frame.
type pendingEvent struct {
	kind      Kind
	index     int
	action    bool
	axis      float32
	transform mgl32.Mat4
	time      time.Duration
}

// Device is a generic input device.
type Device struct {
	name      string
	connected bool

	actions    []*Element[bool]
	axes       []*Element[float32]
	transforms []*Element[mgl32.Mat4]

	pending []pendingEvent
	sink    Sink

	removedHandlers []removedHandler
	nextID          uint32
	removed         bool
}

type removedHandler struct {
	id uint32
	fn func(*Device)
}

const defaultPendingCap = 16

// NewDevice creates a connected device with no elements.
func NewDevice(name string) *Device {
	return &Device{
		name:      name,
		connected: true,
		pending:   make([]pendingEvent, 0, defaultPendingCap),
	}
}

// Name returns the display name.
func (d *Device) Name() string { return d.name }

// Connected reports whether the device is attached.
func (d *Device) Connected() bool { return d.connected }

// SetConnected updates the connection state.
func (d *Device) SetConnected(c bool) { d.connected = c }

// SetSink forwards every applied change to s. Nil detaches.
func (d *Device) SetSink(s Sink) { d.sink = s }

// --- Elements ---

// AddAction appends an action element.
func (d *Device) AddAction(name string) *Element[bool] {
	e := &Element[bool]{name: name, kind: KindAction, index: len(d.actions), device: d}
	d.actions = append(d.actions, e)
	return e
}

// AddAxis appends an axis element.
func (d *Device) AddAxis(name string) *Element[float32] {
	e := &Element[float32]{name: name, kind: KindAxis, index: len(d.axes), device: d}
	d.axes = append(d.axes, e)
	return e
}

// AddTransform appends a transform element initialized to identity.
func (d *Device) AddTransform(name string) *Element[mgl32.Mat4] {
	e := &Element[mgl32.Mat4]{name: name, kind: KindTransform, index: len(d.transforms), device: d, value: mgl32.Ident4()}
	d.transforms = append(d.transforms, e)
	return e
}

// Actions returns the action elements. The returned slice MUST NOT be mutated.
func (d *Device) Actions() []*Element[bool] { return d.actions }

// Axes returns the axis elements. The returned slice MUST NOT be mutated.
func (d *Device) Axes() []*Element[float32] { return d.axes }

// Transforms returns the transform elements. The returned slice MUST NOT be
// mutated.
func (d *Device) Transforms() []*Element[mgl32.Mat4] { return d.transforms }

// Action returns the action element with the given name, or nil.
func (d *Device) Action(name string) *Element[bool] { return find(d.actions, name) }

// Axis returns the axis element with the given name, or nil.
func (d *Device) Axis(name string) *Element[float32] { return find(d.axes, name) }

// Transform returns the transform element with the given name, or nil.
func (d *Device) Transform(name string) *Element[mgl32.Mat4] { return find(d.transforms, name) }

func find[T Value](elems []*Element[T], name string) *Element[T] {
	for _, e := range elems {
		if e.name == name {
			return e
		}
	}
	return nil
}

// --- Queueing ---

// QueueAction queues a new value for an action element of this device.
func (d *Device) QueueAction(e *Element[bool], v bool, t time.Duration) {
	d.checkOwner(e.device)
	d.pending = append(d.pending, pendingEvent{kind: KindAction, index: e.index, action: v, time: t})
}

// QueueAxis queues a new value for an axis element of this device.
func (d *Device) QueueAxis(e *Element[float32], v float32, t time.Duration) {
	d.checkOwner(e.device)
	d.pending = append(d.pending, pendingEvent{kind: KindAxis, index: e.index, axis: v, time: t})
}

// QueueTransform queues a new value for a transform element of this device.
func (d *Device) QueueTransform(e *Element[mgl32.Mat4], v mgl32.Mat4, t time.Duration) {
	d.checkOwner(e.device)
	d.pending = append(d.pending, pendingEvent{kind: KindTransform, index: e.index, transform: v, time: t})
}

func (d *Device) checkOwner(owner *Device) {
	if owner != d {
		panic("input: element belongs to another device")
	}
}

// Pending returns the number of queued events.
func (d *Device) Pending() int { return len(d.pending) }

// ProcessEvents applies all queued events in arrival order and returns how
// many were applied. Events queued by change handlers while processing are
// applied in the same call.
func (d *Device) ProcessEvents() int {
	n := 0
	for i := 0; i < len(d.pending); i++ {
		d.applyEvent(d.pending[i])
		n++
	}
	d.pending = d.pending[:0]
	return n
}

func (d *Device) applyEvent(ev pendingEvent) {
	var name string
	switch ev.kind {
	case KindAction:
		e := d.actions[ev.index]
		e.apply(ev.action, ev.time)
		name = e.name
	case KindAxis:
		e := d.axes[ev.index]
		e.apply(ev.axis, ev.time)
		name = e.name
	case KindTransform:
		e := d.transforms[ev.index]
		e.apply(ev.transform, ev.time)
		name = e.name
	}
	if d.sink != nil {
		d.sink.InputChanged(Event{
			Device:    d.name,
			Element:   name,
			Kind:      ev.kind,
			Action:    ev.action,
			Axis:      ev.axis,
			Transform: ev.transform,
			Time:      ev.time,
		})
	}
}

// --- Removal ---

// OnRemoved registers fn to run when the device is removed.
func (d *Device) OnRemoved(fn func(*Device)) CallbackHandle {
	d.nextID++
	d.removedHandlers = append(d.removedHandlers, removedHandler{id: d.nextID, fn: fn})
	return CallbackHandle{id: d.nextID, reg: d}
}

func (d *Device) remove(id uint32) {
	for i, h := range d.removedHandlers {
		if h.id == id {
			d.removedHandlers = append(d.removedHandlers[:i], d.removedHandlers[i+1:]...)
			return
		}
	}
}

// Remove marks the device disconnected, drops pending events and notifies
// OnRemoved handlers. Removing twice is a no-op.
func (d *Device) Remove() {
	if d.removed {
		return
	}
	d.removed = true
	d.connected = false
	d.pending = d.pending[:0]
	for _, h := range d.removedHandlers {
		h.fn(d)
	}
}

// Removed reports whether Remove has been called.
func (d *Device) Removed() bool { return d.removed }
