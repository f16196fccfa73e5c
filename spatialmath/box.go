package spatialmath

import (
	"fmt"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
)

// Sign pattern generating the 8 box corners from an extent. The order is
// fixed; downstream corner pairing relies on it staying stable.
var cornerSigns = [8]r3.Vector{
	{X: 1, Y: 1, Z: 1},
	{X: 1, Y: -1, Z: 1},
	{X: 1, Y: 1, Z: -1},
	{X: 1, Y: -1, Z: -1},
	{X: -1, Y: 1, Z: 1},
	{X: -1, Y: -1, Z: 1},
	{X: -1, Y: 1, Z: -1},
	{X: -1, Y: -1, Z: -1},
}

// Extent holds the half-widths of an oriented bounding box.
type Extent struct {
	X float64
	Y float64
	Z float64
}

// NewExtent validates that all half-widths are non-negative.
func NewExtent(x, y, z float64) (Extent, error) {
	if x < 0 || y < 0 || z < 0 {
		return Extent{}, errors.Errorf("extent half-widths must be non-negative, got (%v, %v, %v)", x, y, z)
	}
	return Extent{X: x, Y: y, Z: z}, nil
}

// BoundingBox is an oriented 3-D box: an extent plus the box pose relative
// to its parent object's frame.
type BoundingBox struct {
	Extent    Extent
	Transform *Transform
}

// NewBoundingBox returns a box with the given half-widths posed by transform.
func NewBoundingBox(extent Extent, transform *Transform) BoundingBox {
	return BoundingBox{Extent: extent, Transform: transform}
}

// Corners derives the 8 corners in the box's own frame. They are computed on
// demand and never stored.
func (b BoundingBox) Corners() []r3.Vector {
	corners := make([]r3.Vector, len(cornerSigns))
	for i, s := range cornerSigns {
		corners[i] = r3.Vector{
			X: s.X * b.Extent.X,
			Y: s.Y * b.Extent.Y,
			Z: s.Z * b.Extent.Z,
		}
	}
	return corners
}

// WorldCorners maps the 8 corners through the box pose and then the owning
// object's world transform.
func (b BoundingBox) WorldCorners(objTransform *Transform) []r3.Vector {
	corners := b.Transform.TransformPoints(b.Corners())
	return objTransform.TransformPoints(corners)
}

func (b BoundingBox) String() string {
	return fmt.Sprintf("transform: %v, extent: (%.2f, %.2f, %.2f)",
		b.Transform, b.Extent.X, b.Extent.Y, b.Extent.Z)
}
