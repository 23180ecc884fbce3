package input

import (
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// Axis names of a KeyboardMouse device.
const (
	AxisMouseX  = "MouseX"
	AxisMouseY  = "MouseY"
	AxisMouseDX = "MouseDX"
	AxisMouseDY = "MouseDY"
	AxisWheel   = "Wheel"
)

// KeyboardMouse maps ebiten keyboard and mouse state onto a Device.
type KeyboardMouse struct {
	*Device

	keys    []ebiten.Key
	keyElem []*Element[bool]
	buttons []ebiten.MouseButton
	btnElem []*Element[bool]

	mouseX, mouseY   *Element[float32]
	mouseDX, mouseDY *Element[float32]
	wheel            *Element[float32]

	lastX, lastY int
	primed       bool
}

// NewKeyboardMouse creates a device with one action per key and mouse
// button (named by ebiten's String form) plus the mouse axes.
func NewKeyboardMouse(keys []ebiten.Key, buttons []ebiten.MouseButton) *KeyboardMouse {
	km := &KeyboardMouse{Device: NewDevice("Keyboard/Mouse")}
	for _, k := range keys {
		km.keys = append(km.keys, k)
		km.keyElem = append(km.keyElem, km.AddAction(k.String()))
	}
	for _, b := range buttons {
		km.buttons = append(km.buttons, b)
		km.btnElem = append(km.btnElem, km.AddAction(mouseButtonName(b)))
	}
	km.mouseX = km.AddAxis(AxisMouseX)
	km.mouseY = km.AddAxis(AxisMouseY)
	km.mouseDX = km.AddAxis(AxisMouseDX)
	km.mouseDY = km.AddAxis(AxisMouseDY)
	km.wheel = km.AddAxis(AxisWheel)
	return km
}

// Key returns the action element bound to k, or nil.
func (km *KeyboardMouse) Key(k ebiten.Key) *Element[bool] {
	for i, kk := range km.keys {
		if kk == k {
			return km.keyElem[i]
		}
	}
	return nil
}

// Button returns the action element bound to b, or nil.
func (km *KeyboardMouse) Button(b ebiten.MouseButton) *Element[bool] {
	for i, bb := range km.buttons {
		if bb == b {
			return km.btnElem[i]
		}
	}
	return nil
}

// Poll queues events for every state change since the previous poll. Call
// it once per tick from ebiten's Update, before ProcessEvents.
func (km *KeyboardMouse) Poll(now time.Duration) {
	for i, k := range km.keys {
		if inpututil.IsKeyJustPressed(k) {
			km.QueueAction(km.keyElem[i], true, now)
		} else if inpututil.IsKeyJustReleased(k) {
			km.QueueAction(km.keyElem[i], false, now)
		}
	}
	for i, b := range km.buttons {
		if inpututil.IsMouseButtonJustPressed(b) {
			km.QueueAction(km.btnElem[i], true, now)
		} else if inpututil.IsMouseButtonJustReleased(b) {
			km.QueueAction(km.btnElem[i], false, now)
		}
	}

	x, y := ebiten.CursorPosition()
	if !km.primed {
		km.lastX, km.lastY = x, y
		km.primed = true
	}
	dx, dy := x-km.lastX, y-km.lastY
	km.lastX, km.lastY = x, y
	if dx != 0 || dy != 0 {
		km.QueueAxis(km.mouseX, float32(x), now)
		km.QueueAxis(km.mouseY, float32(y), now)
	}
	if float32(dx) != km.mouseDX.Value() {
		km.QueueAxis(km.mouseDX, float32(dx), now)
	}
	if float32(dy) != km.mouseDY.Value() {
		km.QueueAxis(km.mouseDY, float32(dy), now)
	}
	_, wy := ebiten.Wheel()
	if float32(wy) != km.wheel.Value() {
		km.QueueAxis(km.wheel, float32(wy), now)
	}
}

func mouseButtonName(b ebiten.MouseButton) string {
	switch b {
	case ebiten.MouseButtonLeft:
		return "MouseLeft"
	case ebiten.MouseButtonRight:
		return "MouseRight"
	case ebiten.MouseButtonMiddle:
		return "MouseMiddle"
	default:
		return "MouseButton"
	}
}
