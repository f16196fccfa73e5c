// Package control converts a target speed and waypoint into low-level
// vehicle actuation: a longitudinal PID for throttle/brake and a geometric
// steering law, combined into one command per control tick.
package control

// Command is the actuation output of one control tick. A fresh value is
// produced every tick; nothing is shared between ticks.
type Command struct {
	Steer     float64 // [-1, 1]
	Throttle  float64 // [0, configured throttle max]
	Brake     float64 // [0, 1]
	HandBrake bool
	Reverse   bool
}

// NeutralCommand is the command emitted before any plan has been received
// or when no usable vehicle state is available: everything zero, flags off.
func NeutralCommand() Command {
	return Command{}
}
