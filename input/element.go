package input

import (
	"time"

	"github.com/go-gl/mathgl/mgl32"
)

// Value is the set of element value types.
type Value interface {
	bool | float32 | mgl32.Mat4
}

// Kind identifies an element collection.
type Kind uint8

// Element kinds.
const (
	KindAction Kind = iota
	KindAxis
	KindTransform
)

func (k Kind) String() string {
	switch k {
	case KindAction:
		return "action"
	case KindAxis:
		return "axis"
	case KindTransform:
		return "transform"
	default:
		return "unknown"
	}
}

// Change describes one applied value change.
type Change[T Value] struct {
	Element  *Element[T]
	Value    T
	Previous T
	// Time is when the raw event was produced, not when it was applied.
	Time time.Duration
}

// Element is a single observable input value.
type Element[T Value] struct {
	name   string
	kind   Kind
	index  int
	device *Device
	value  T

	handlers []elementHandler[T]
	nextID   uint32
}

type elementHandler[T Value] struct {
	id uint32
	fn func(Change[T])
}

// Name returns the display name.
func (e *Element[T]) Name() string { return e.name }

// Kind returns the collection the element belongs to.
func (e *Element[T]) Kind() Kind { return e.kind }

// Index returns the position within its device collection.
func (e *Element[T]) Index() int { return e.index }

// Device returns the owning device.
func (e *Element[T]) Device() *Device { return e.device }

// Value returns the last applied value.
func (e *Element[T]) Value() T { return e.value }

// OnChange registers fn to run every time an event for this element is
// applied, including events that leave the value unchanged.
func (e *Element[T]) OnChange(fn func(Change[T])) CallbackHandle {
	e.nextID++
	e.handlers = append(e.handlers, elementHandler[T]{id: e.nextID, fn: fn})
	return CallbackHandle{id: e.nextID, reg: e}
}

func (e *Element[T]) remove(id uint32) {
	for i, h := range e.handlers {
		if h.id == id {
			e.handlers = append(e.handlers[:i], e.handlers[i+1:]...)
			return
		}
	}
}

// apply stores v and notifies handlers.
func (e *Element[T]) apply(v T, t time.Duration) {
	prev := e.value
	e.value = v
	if len(e.handlers) == 0 {
		return
	}
	c := Change[T]{Element: e, Value: v, Previous: prev, Time: t}
	for _, h := range e.handlers {
		h.fn(c)
	}
}

// --- Callback handles ---

type remover interface {
	remove(id uint32)
}

// CallbackHandle allows removing a registered callback.
type CallbackHandle struct {
	id  uint32
	reg remover
}

// Remove unregisters the callback. Removing twice is a no-op.
func (h CallbackHandle) Remove() {
	if h.reg != nil {
		h.reg.remove(h.id)
	}
}
