package control

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
)

// PID is a discrete proportional-integral-derivative controller. Gains are
// fixed at construction; the target is reassigned each tick via SetTarget.
// The accumulators persist across target changes and are cleared only by an
// explicit Reset.
//
// The controller is stateful across ticks and must not be reconstructed per
// tick. A single caller owns it; the mutex covers hosts that drive ticks
// from more than one goroutine.
type PID struct {
	mu sync.Mutex

	kP float64
	kI float64
	kD float64

	clock     clock.Clock
	target    float64
	integral  float64
	lastError float64
	lastTick  time.Time
	primed    bool
}

// NewPID validates the gains and returns a controller. The proportional
// gain must be positive; integral and derivative gains may be zero but not
// negative. A nil clock defaults to wall time.
func NewPID(kP, kI, kD float64, clk clock.Clock) (*PID, error) {
	if kP <= 0 {
		return nil, errors.Errorf("proportional gain must be positive, got %v", kP)
	}
	if kI < 0 || kD < 0 {
		return nil, errors.Errorf("integral and derivative gains must be non-negative, got (%v, %v)", kI, kD)
	}
	if clk == nil {
		clk = clock.New()
	}
	return &PID{kP: kP, kI: kI, kD: kD, clock: clk}, nil
}

// SetTarget reassigns the setpoint. Accumulated error is deliberately kept:
// the target is rewritten every control tick and clearing the integral with
// it would disable the I term entirely.
func (p *PID) SetTarget(target float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.target = target
}

// Reset clears the integral and derivative state.
func (p *PID) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.integral = 0
	p.lastError = 0
	p.primed = false
}

// Update advances the controller with a new measurement, integrating over
// the time elapsed since the previous call. The first call after
// construction or Reset contributes no integral or derivative term.
//
// The output is positive when the measurement exceeds the target, which is
// the sign convention the throttle/brake mapping expects.
func (p *PID) Update(measured float64) float64 {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.clock.Now()
	err := measured - p.target

	var dt float64
	if p.primed {
		dt = now.Sub(p.lastTick).Seconds()
	}
	p.lastTick = now
	p.primed = true

	p.integral += err * dt
	var derivative float64
	if dt > 0 {
		derivative = (err - p.lastError) / dt
	}
	p.lastError = err

	return p.kP*err + p.kI*p.integral + p.kD*derivative
}
