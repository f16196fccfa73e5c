// Package spatialmath defines the pose and bounding-box primitives shared by
// the projection and control packages.
package spatialmath

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"

	"github.com/autodrome/avcore/utils"
)

// Rotation is an orientation expressed as pitch, yaw and roll in degrees.
type Rotation struct {
	Pitch float64
	Yaw   float64
	Roll  float64
}

// Scale is an optional non-uniform scale applied to a transform's rotation
// columns. The zero value is not valid; use IdentityScale.
type Scale struct {
	X float64
	Y float64
	Z float64
}

// IdentityScale returns the unit scale.
func IdentityScale() Scale {
	return Scale{1, 1, 1}
}

// Transform is a pose in homogeneous coordinates. It owns a location, a
// rotation and a derived 4x4 matrix that stays consistent with them unless
// the transform was built directly from a matrix (the result of composition
// or inversion).
type Transform struct {
	location r3.Vector
	rotation Rotation
	scale    Scale
	matrix   mgl64.Mat4
}

// NewTransform returns a transform for the given location and rotation with
// unit scale.
func NewTransform(location r3.Vector, rotation Rotation) *Transform {
	return NewScaledTransform(location, rotation, IdentityScale())
}

// NewScaledTransform returns a transform whose rotation columns are scaled
// component-wise. The matrix layout is the fixed yaw/pitch/roll expression
// used to produce the existing ground-truth datasets; keep it verbatim.
func NewScaledTransform(location r3.Vector, rotation Rotation, scale Scale) *Transform {
	cy := math.Cos(utils.DegToRad(rotation.Yaw))
	sy := math.Sin(utils.DegToRad(rotation.Yaw))
	cr := math.Cos(utils.DegToRad(rotation.Roll))
	sr := math.Sin(utils.DegToRad(rotation.Roll))
	cp := math.Cos(utils.DegToRad(rotation.Pitch))
	sp := math.Sin(utils.DegToRad(rotation.Pitch))

	m := mgl64.Ident4()
	m.Set(0, 3, location.X)
	m.Set(1, 3, location.Y)
	m.Set(2, 3, location.Z)
	m.Set(0, 0, scale.X*(cp*cy))
	m.Set(0, 1, scale.Y*(cy*sp*sr-sy*cr))
	m.Set(0, 2, -scale.Z*(cy*sp*cr+sy*sr))
	m.Set(1, 0, scale.X*(sy*cp))
	m.Set(1, 1, scale.Y*(sy*sp*sr+cy*cr))
	m.Set(1, 2, scale.Z*(cy*sr-sy*sp*cr))
	m.Set(2, 0, scale.X*sp)
	m.Set(2, 1, -scale.Y*(cp*sr))
	m.Set(2, 2, scale.Z*(cp*cr))

	return &Transform{
		location: location,
		rotation: rotation,
		scale:    scale,
		matrix:   m,
	}
}

// NewTransformFromMatrix wraps an already-computed homogeneous matrix,
// typically the result of composition. The stored rotation is zero; the
// location is read back from the translation column.
func NewTransformFromMatrix(m mgl64.Mat4) *Transform {
	return &Transform{
		location: r3.Vector{X: m.At(0, 3), Y: m.At(1, 3), Z: m.At(2, 3)},
		scale:    IdentityScale(),
		matrix:   m,
	}
}

// Location returns the translation component.
func (t *Transform) Location() r3.Vector {
	return t.location
}

// Rotation returns the rotation the transform was built with. Composed
// transforms report a zero rotation; only the matrix is authoritative there.
func (t *Transform) Rotation() Rotation {
	return t.rotation
}

// Matrix returns the homogeneous matrix.
func (t *Transform) Matrix() mgl64.Mat4 {
	return t.matrix
}

// Compose returns the transform whose matrix is t.matrix * other.matrix.
// Composition is associative but not commutative.
func (t *Transform) Compose(other *Transform) *Transform {
	return NewTransformFromMatrix(t.matrix.Mul4(other.matrix))
}

// Inverse returns the transform carrying the inverted matrix. A singular
// matrix inverts to the zero matrix, which propagates into any point it is
// applied to; inputs are never sanitized.
func (t *Transform) Inverse() *Transform {
	return NewTransformFromMatrix(t.matrix.Inv())
}

// TransformPoint maps a single point through the matrix in homogeneous
// coordinates, dropping the homogeneous row.
func (t *Transform) TransformPoint(p r3.Vector) r3.Vector {
	v := t.matrix.Mul4x1(mgl64.Vec4{p.X, p.Y, p.Z, 1})
	return r3.Vector{X: v.X(), Y: v.Y(), Z: v.Z()}
}

// TransformPoints maps each of the given points through the matrix.
func (t *Transform) TransformPoints(points []r3.Vector) []r3.Vector {
	out := make([]r3.Vector, len(points))
	for i, p := range points {
		out[i] = t.TransformPoint(p)
	}
	return out
}

// ForwardVector returns the unit heading of the transform projected onto the
// ground plane, derived from yaw only.
func (t *Transform) ForwardVector() r3.Vector {
	yaw := utils.DegToRad(t.rotation.Yaw)
	return r3.Vector{X: math.Cos(yaw), Y: math.Sin(yaw)}
}

func (t *Transform) String() string {
	return fmt.Sprintf("location: (%.2f, %.2f, %.2f), rotation: (%.2f, %.2f, %.2f)",
		t.location.X, t.location.Y, t.location.Z,
		t.rotation.Pitch, t.rotation.Yaw, t.rotation.Roll)
}
