package control

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"

	"github.com/autodrome/avcore/spatialmath"
)

func TestNewSteering(t *testing.T) {
	_, err := NewSteering(0.7)
	test.That(t, err, test.ShouldBeNil)
	_, err = NewSteering(0)
	test.That(t, err, test.ShouldNotBeNil)
	_, err = NewSteering(-1)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestSteeringAngle(t *testing.T) {
	atOrigin := spatialmath.NewTransform(r3.Vector{}, spatialmath.Rotation{})
	yawed := spatialmath.NewTransform(r3.Vector{}, spatialmath.Rotation{Yaw: 90})

	for _, c := range []struct {
		name     string
		gain     float64
		vehicle  *spatialmath.Transform
		waypoint r3.Vector
		expected float64
	}{
		{"directly ahead", 1, atOrigin, r3.Vector{X: 10}, 0},
		{"ahead for a yawed vehicle", 1, yawed, r3.Vector{Y: 10}, 0},
		{"90 degrees left saturates", 1, atOrigin, r3.Vector{Y: 10}, 1},
		{"90 degrees right saturates", 1, atOrigin, r3.Vector{Y: -10}, -1},
		{"45 degrees under gain", 0.5, atOrigin, r3.Vector{X: 10, Y: 10}, 0.5 * math.Pi / 4},
		{"altitude is ignored", 1, atOrigin, r3.Vector{X: 10, Z: 50}, 0},
	} {
		t.Run(c.name, func(t *testing.T) {
			steering, err := NewSteering(c.gain)
			test.That(t, err, test.ShouldBeNil)
			angle, err := steering.Angle(c.vehicle, c.waypoint)
			test.That(t, err, test.ShouldBeNil)
			test.That(t, angle, test.ShouldAlmostEqual, c.expected, 1e-9)
		})
	}
}

func TestSteeringDegenerateWaypoint(t *testing.T) {
	steering, err := NewSteering(1)
	test.That(t, err, test.ShouldBeNil)

	vehicle := spatialmath.NewTransform(r3.Vector{X: 3, Y: 4}, spatialmath.Rotation{})
	_, err = steering.Angle(vehicle, r3.Vector{X: 3, Y: 4, Z: 7})
	test.That(t, err, test.ShouldNotBeNil)
}

func TestSteeringNaNInput(t *testing.T) {
	steering, err := NewSteering(1)
	test.That(t, err, test.ShouldBeNil)

	vehicle := spatialmath.NewTransform(r3.Vector{}, spatialmath.Rotation{})
	_, err = steering.Angle(vehicle, r3.Vector{X: math.NaN(), Y: 1})
	test.That(t, err, test.ShouldNotBeNil)
}
