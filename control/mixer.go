package control

import (
	"sync"

	"github.com/edaniels/golog"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"github.com/autodrome/avcore/spatialmath"
)

// Plan is the most recent target from the planning component: one waypoint
// and the speed to hold toward it.
type Plan struct {
	TargetSpeed float64
	Waypoint    r3.Vector
}

// Mixer combines the longitudinal and steering controllers into one command
// per control tick. It retains the latest plan; plans may arrive slower
// than ticks, in which case the stale plan keeps being used.
type Mixer struct {
	mu           sync.Mutex
	longitudinal *Longitudinal
	steering     *Steering
	plan         *Plan
	logger       golog.Logger
}

// NewMixer wires the two controllers together.
func NewMixer(longitudinal *Longitudinal, steering *Steering, logger golog.Logger) (*Mixer, error) {
	if longitudinal == nil || steering == nil {
		return nil, errors.New("mixer needs both a longitudinal and a steering controller")
	}
	return &Mixer{longitudinal: longitudinal, steering: steering, logger: logger}, nil
}

// SetPlan replaces the retained plan.
func (m *Mixer) SetPlan(plan Plan) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.plan = &plan
}

// Tick produces one command from the latest vehicle pose and forward speed.
// Before any plan has been received the command is neutral; that is an
// expected startup state, not an error. A degenerate steering input returns
// the neutral command together with the error, without advancing PID state.
func (m *Mixer) Tick(vehicle *spatialmath.Transform, forwardSpeed float64) (Command, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.plan == nil {
		if m.logger != nil {
			m.logger.Debug("no plan yet, emitting neutral command")
		}
		return NeutralCommand(), nil
	}
	if vehicle == nil {
		return NeutralCommand(), errors.New("no vehicle pose")
	}

	steer, err := m.steering.Angle(vehicle, m.plan.Waypoint)
	if err != nil {
		return NeutralCommand(), err
	}
	throttle, brake := m.longitudinal.ThrottleBrake(m.plan.TargetSpeed, forwardSpeed)
	return Command{
		Steer:     steer,
		Throttle:  throttle,
		Brake:     brake,
		HandBrake: false,
		Reverse:   false,
	}, nil
}
