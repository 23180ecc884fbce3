package ecs

import (
	"github.com/phanxgames/chime/input"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

// InputEventType carries every input.Event applied by a device wired to a
// sink from NewDonburiSink. Events are queued on the world and delivered to
// subscribers by InputEventType.ProcessEvents.
var InputEventType = events.NewEventType[input.Event]()

// worldSink publishes into one world.
type worldSink struct {
	world donburi.World
}

// NewDonburiSink returns a sink for input.Device.SetSink. A device only
// reaches the sink from its ProcessEvents, so events arrive in the order
// the device applied them, after the element values have changed.
func NewDonburiSink(world donburi.World) input.Sink {
	return worldSink{world: world}
}

func (s worldSink) InputChanged(e input.Event) {
	InputEventType.Publish(s.world, e)
}
