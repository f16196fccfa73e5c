package control

import (
	"math"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"github.com/autodrome/avcore/spatialmath"
	"github.com/autodrome/avcore/utils"
)

// Steering computes the steering command that turns the vehicle toward a
// target waypoint. Stateless; safe for concurrent use.
type Steering struct {
	gain float64
}

// NewSteering validates the gain and returns the controller.
func NewSteering(gain float64) (*Steering, error) {
	if gain <= 0 {
		return nil, errors.Errorf("steer gain must be positive, got %v", gain)
	}
	return &Steering{gain: gain}, nil
}

// Angle returns the steering command in [-1, 1] for the given vehicle pose
// and waypoint. Both the heading and the waypoint vector are projected onto
// the ground plane. A waypoint coinciding with the vehicle position is a
// caller error: a silent zero here would be a wrong answer for vehicle
// control, so it fails instead.
func (s *Steering) Angle(vehicle *spatialmath.Transform, waypoint r3.Vector) (float64, error) {
	loc := vehicle.Location()
	wpVector := r3.Vector{X: waypoint.X - loc.X, Y: waypoint.Y - loc.Y}
	if wpVector.Norm() == 0 {
		return 0, errors.New("waypoint coincides with the vehicle position")
	}
	wpVector = wpVector.Normalize()
	heading := vehicle.ForwardVector().Normalize()

	// acos is only defined on [-1, 1]; unit-vector dot products can
	// drift just past it.
	angle := math.Acos(utils.Clamp(heading.Dot(wpVector), -1, 1))
	if heading.Cross(wpVector).Z < 0 {
		angle = -angle
	}
	if math.IsNaN(angle) {
		return 0, errors.New("steering angle is NaN; malformed pose or waypoint")
	}

	steering := s.gain * angle
	if steering > 0 {
		return math.Min(steering, 1), nil
	}
	return math.Max(steering, -1), nil
}
