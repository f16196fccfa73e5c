package control

import (
	"math"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"

	"github.com/autodrome/avcore/utils"
)

const (
	// Slope mapping PID gain onto throttle reduction.
	throttleGainScale = 1.3
	// Slope mapping PID gain onto brake pressure.
	brakeGainScale = 0.35
	// The brake engages only above this gain.
	brakeGainThreshold = 0.5
)

// LongitudinalConfig tunes the speed controller.
type LongitudinalConfig struct {
	KP float64 `json:"k_p"`
	KI float64 `json:"k_i"`
	KD float64 `json:"k_d"`

	// DefaultThrottle is the throttle applied when the PID reports zero
	// error.
	DefaultThrottle float64 `json:"default_throttle"`
	// ThrottleMax caps the throttle output.
	ThrottleMax float64 `json:"throttle_max"`
	// BrakeStrength scales brake pressure, in (0, 1].
	BrakeStrength float64 `json:"brake_strength"`
}

// Validate rejects configurations that cannot produce sane commands. PID
// gain validation happens in NewPID.
func (cfg LongitudinalConfig) Validate() error {
	if cfg.ThrottleMax <= 0 || cfg.ThrottleMax > 1 {
		return errors.Errorf("throttle max must be in (0, 1], got %v", cfg.ThrottleMax)
	}
	if cfg.DefaultThrottle < 0 || cfg.DefaultThrottle > cfg.ThrottleMax {
		return errors.Errorf("default throttle must be in [0, %v], got %v", cfg.ThrottleMax, cfg.DefaultThrottle)
	}
	if cfg.BrakeStrength <= 0 || cfg.BrakeStrength > 1 {
		return errors.Errorf("brake strength must be in (0, 1], got %v", cfg.BrakeStrength)
	}
	return nil
}

// DefaultLongitudinalConfig is the tuning the pipeline ships with.
func DefaultLongitudinalConfig() LongitudinalConfig {
	return LongitudinalConfig{
		KP:              0.25,
		KI:              0.20,
		KD:              0.0,
		DefaultThrottle: 0.2,
		ThrottleMax:     0.75,
		BrakeStrength:   1.0,
	}
}

// Longitudinal computes throttle and brake from target vs. current speed.
// It owns its PID state; one instance per vehicle, never shared.
type Longitudinal struct {
	cfg LongitudinalConfig
	pid *PID
}

// NewLongitudinal validates the config and builds the controller. A nil
// clock defaults to wall time.
func NewLongitudinal(cfg LongitudinalConfig, clk clock.Clock) (*Longitudinal, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	pid, err := NewPID(cfg.KP, cfg.KI, cfg.KD, clk)
	if err != nil {
		return nil, err
	}
	return &Longitudinal{cfg: cfg, pid: pid}, nil
}

// ThrottleBrake runs one PID step toward targetSpeed and maps the gain onto
// the pedals. The gain thresholds keep throttle and brake mutually
// exclusive in normal tunings; on top of that, any engaged brake forces
// throttle to zero so a misconfigured strength can never drive both.
func (l *Longitudinal) ThrottleBrake(targetSpeed, currentSpeed float64) (throttle, brake float64) {
	l.pid.SetTarget(targetSpeed)
	gain := l.pid.Update(currentSpeed)

	throttle = utils.Clamp(l.cfg.DefaultThrottle-throttleGainScale*gain, 0, l.cfg.ThrottleMax)
	if gain > brakeGainThreshold {
		brake = math.Min(brakeGainScale*gain*l.cfg.BrakeStrength, 1)
	}
	if brake > 0 {
		throttle = 0
	}
	return throttle, brake
}

// Reset clears the PID accumulators, e.g. after a teleport or gear change.
func (l *Longitudinal) Reset() {
	l.pid.Reset()
}
