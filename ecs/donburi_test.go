package ecs

import (
	"testing"
	"time"

	"github.com/phanxgames/chime/input"

	"github.com/yohamta/donburi"
)

func TestNewDonburiSink(t *testing.T) {
	world := donburi.NewWorld()
	sink := NewDonburiSink(world)
	if sink == nil {
		t.Fatal("NewDonburiSink returned nil")
	}
}

func TestDonburiSink_PublishesAppliedChanges(t *testing.T) {
	world := donburi.NewWorld()

	var received []input.Event
	InputEventType.Subscribe(world, func(w donburi.World, e input.Event) {
		received = append(received, e)
	})

	d := input.NewDevice("pad")
	trigger := d.AddAction("Trigger")
	stick := d.AddAxis("StickX")
	d.SetSink(NewDonburiSink(world))

	d.QueueAction(trigger, true, time.Second)
	d.QueueAxis(stick, -0.5, 2*time.Second)

	// Nothing is published until the device applies its queue.
	InputEventType.ProcessEvents(world)
	if len(received) != 0 {
		t.Fatalf("expected no events before ProcessEvents, got %d", len(received))
	}

	d.ProcessEvents()
	InputEventType.ProcessEvents(world)

	if len(received) != 2 {
		t.Fatalf("expected 2 events, got %d", len(received))
	}

	e0 := received[0]
	if e0.Device != "pad" || e0.Element != "Trigger" || e0.Kind != input.KindAction || !e0.Action {
		t.Errorf("event 0 mismatch: %+v", e0)
	}
	if e0.Time != time.Second {
		t.Errorf("event 0 time = %v, want 1s", e0.Time)
	}

	e1 := received[1]
	if e1.Element != "StickX" || e1.Kind != input.KindAxis || e1.Axis != -0.5 {
		t.Errorf("event 1 mismatch: %+v", e1)
	}
}
