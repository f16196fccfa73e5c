package control

import (
	"testing"

	"github.com/benbjohnson/clock"
	"go.viam.com/test"
)

func TestLongitudinalConfigValidate(t *testing.T) {
	for _, c := range []struct {
		name string
		cfg  LongitudinalConfig
		ok   bool
	}{
		{"defaults", DefaultLongitudinalConfig(), true},
		{"zero throttle max", LongitudinalConfig{KP: 0.25, ThrottleMax: 0, BrakeStrength: 1}, false},
		{"throttle max above one", LongitudinalConfig{KP: 0.25, ThrottleMax: 1.5, BrakeStrength: 1}, false},
		{"negative default throttle", LongitudinalConfig{KP: 0.25, DefaultThrottle: -0.1, ThrottleMax: 0.75, BrakeStrength: 1}, false},
		{"default throttle above max", LongitudinalConfig{KP: 0.25, DefaultThrottle: 0.8, ThrottleMax: 0.75, BrakeStrength: 1}, false},
		{"zero brake strength", LongitudinalConfig{KP: 0.25, ThrottleMax: 0.75, BrakeStrength: 0}, false},
	} {
		t.Run(c.name, func(t *testing.T) {
			err := c.cfg.Validate()
			if c.ok {
				test.That(t, err, test.ShouldBeNil)
			} else {
				test.That(t, err, test.ShouldNotBeNil)
			}
		})
	}

	// Gain validation happens at construction.
	_, err := NewLongitudinal(LongitudinalConfig{KP: 0, ThrottleMax: 0.75, BrakeStrength: 1}, nil)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestThrottleBrakeOverspeed(t *testing.T) {
	long, err := NewLongitudinal(DefaultLongitudinalConfig(), clock.NewMock())
	test.That(t, err, test.ShouldBeNil)

	// Going 20 with a target of 0: hard on the brake, off the throttle.
	throttle, brake := long.ThrottleBrake(0, 20)
	test.That(t, throttle, test.ShouldEqual, 0.0)
	test.That(t, brake, test.ShouldBeGreaterThan, 0.0)
	test.That(t, brake, test.ShouldBeLessThanOrEqualTo, 1.0)
}

func TestThrottleBrakeAtSpeed(t *testing.T) {
	cfg := DefaultLongitudinalConfig()
	long, err := NewLongitudinal(cfg, clock.NewMock())
	test.That(t, err, test.ShouldBeNil)

	// At target with no accumulated error: the default throttle holds.
	throttle, brake := long.ThrottleBrake(10, 10)
	test.That(t, throttle, test.ShouldAlmostEqual, cfg.DefaultThrottle, 1e-9)
	test.That(t, brake, test.ShouldEqual, 0.0)
}

func TestThrottleBrakeUnderspeed(t *testing.T) {
	cfg := DefaultLongitudinalConfig()
	long, err := NewLongitudinal(cfg, clock.NewMock())
	test.That(t, err, test.ShouldBeNil)

	throttle, brake := long.ThrottleBrake(10, 0)
	test.That(t, throttle, test.ShouldEqual, cfg.ThrottleMax)
	test.That(t, brake, test.ShouldEqual, 0.0)
}

func TestThrottleBrakeNeverBoth(t *testing.T) {
	// A high default throttle with a gain just over the brake threshold
	// would leave both pedals engaged without the explicit guard.
	cfg := LongitudinalConfig{
		KP:              0.25,
		DefaultThrottle: 0.75,
		ThrottleMax:     0.75,
		BrakeStrength:   1.0,
	}
	long, err := NewLongitudinal(cfg, clock.NewMock())
	test.That(t, err, test.ShouldBeNil)

	// gain = 0.25 * 2.08 = 0.52, just over the 0.5 brake threshold.
	throttle, brake := long.ThrottleBrake(0, 2.08)
	test.That(t, brake, test.ShouldBeGreaterThan, 0.0)
	test.That(t, throttle, test.ShouldEqual, 0.0)
}
