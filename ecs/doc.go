// Package ecs provides ECS adapters for chime's input devices.
//
// The primary adapter is [NewDonburiSink], which forwards every applied
// input change (actions, axes, tracked transforms) into a [Donburi] world
// as typed events. Subscribe to [InputEventType] in your ECS systems to
// receive them.
//
// Usage:
//
//	sink := ecs.NewDonburiSink(world)
//	device.SetSink(sink)
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
