package control

import (
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"go.viam.com/test"
)

func TestNewPIDGainValidation(t *testing.T) {
	for _, c := range []struct {
		name       string
		kP, kI, kD float64
		ok         bool
	}{
		{"all positive", 0.25, 0.2, 0.1, true},
		{"zero integral and derivative", 0.25, 0, 0, true},
		{"zero proportional", 0, 0.2, 0.1, false},
		{"negative proportional", -0.25, 0.2, 0.1, false},
		{"negative integral", 0.25, -0.2, 0.1, false},
		{"negative derivative", 0.25, 0.2, -0.1, false},
	} {
		t.Run(c.name, func(t *testing.T) {
			_, err := NewPID(c.kP, c.kI, c.kD, nil)
			if c.ok {
				test.That(t, err, test.ShouldBeNil)
			} else {
				test.That(t, err, test.ShouldNotBeNil)
			}
		})
	}
}

func TestPIDUpdate(t *testing.T) {
	mock := clock.NewMock()
	pid, err := NewPID(1, 0.5, 0.1, mock)
	test.That(t, err, test.ShouldBeNil)
	pid.SetTarget(10)

	// First call has no time delta: proportional term only.
	out := pid.Update(5)
	test.That(t, out, test.ShouldAlmostEqual, -5, 1e-9)

	// One second later the integral has accumulated one second of error;
	// the error itself is unchanged, so the derivative stays zero.
	mock.Add(time.Second)
	out = pid.Update(5)
	test.That(t, out, test.ShouldAlmostEqual, -5+0.5*(-5), 1e-9)

	// Error shrinks from -5 to -2 over one second.
	mock.Add(time.Second)
	out = pid.Update(8)
	test.That(t, out, test.ShouldAlmostEqual, -2+0.5*(-7)+0.1*3, 1e-9)
}

func TestPIDReset(t *testing.T) {
	mock := clock.NewMock()
	pid, err := NewPID(1, 0.5, 0.1, mock)
	test.That(t, err, test.ShouldBeNil)
	pid.SetTarget(10)

	pid.Update(5)
	mock.Add(time.Second)
	pid.Update(5)

	pid.Reset()
	out := pid.Update(5)
	test.That(t, out, test.ShouldAlmostEqual, -5, 1e-9)
}

func TestPIDSetTargetKeepsAccumulators(t *testing.T) {
	mock := clock.NewMock()
	pid, err := NewPID(1, 1, 0, mock)
	test.That(t, err, test.ShouldBeNil)
	pid.SetTarget(10)

	pid.Update(5)
	mock.Add(time.Second)
	pid.Update(5) // integral is now -5

	// Reassigning the target must not clear the integral: the target is
	// rewritten every control tick.
	pid.SetTarget(10)
	mock.Add(time.Second)
	out := pid.Update(5)
	test.That(t, out, test.ShouldAlmostEqual, -5+(-10), 1e-9)
}
