package spatialmath

import (
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"
)

func TestNewExtent(t *testing.T) {
	_, err := NewExtent(1, 2, 3)
	test.That(t, err, test.ShouldBeNil)

	_, err = NewExtent(-1, 2, 3)
	test.That(t, err, test.ShouldNotBeNil)
	_, err = NewExtent(1, -0.1, 3)
	test.That(t, err, test.ShouldNotBeNil)
	_, err = NewExtent(1, 2, -3)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestCorners(t *testing.T) {
	extent, err := NewExtent(1, 2, 3)
	test.That(t, err, test.ShouldBeNil)
	box := NewBoundingBox(extent, NewTransform(r3.Vector{}, Rotation{}))

	corners := box.Corners()
	test.That(t, corners, test.ShouldResemble, []r3.Vector{
		{X: 1, Y: 2, Z: 3},
		{X: 1, Y: -2, Z: 3},
		{X: 1, Y: 2, Z: -3},
		{X: 1, Y: -2, Z: -3},
		{X: -1, Y: 2, Z: 3},
		{X: -1, Y: -2, Z: 3},
		{X: -1, Y: 2, Z: -3},
		{X: -1, Y: -2, Z: -3},
	})
}

func TestWorldCorners(t *testing.T) {
	extent, err := NewExtent(1, 1, 1)
	test.That(t, err, test.ShouldBeNil)
	// The box sits one unit above the object origin.
	box := NewBoundingBox(extent, NewTransform(r3.Vector{Z: 1}, Rotation{}))
	obj := NewTransform(r3.Vector{X: 5}, Rotation{})

	corners := box.WorldCorners(obj)
	test.That(t, corners, test.ShouldHaveLength, 8)
	test.That(t, corners[0].X, test.ShouldAlmostEqual, 6, 1e-12)
	test.That(t, corners[0].Y, test.ShouldAlmostEqual, 1, 1e-12)
	test.That(t, corners[0].Z, test.ShouldAlmostEqual, 2, 1e-12)
	test.That(t, corners[7].X, test.ShouldAlmostEqual, 4, 1e-12)
	test.That(t, corners[7].Y, test.ShouldAlmostEqual, -1, 1e-12)
	test.That(t, corners[7].Z, test.ShouldAlmostEqual, 0, 1e-12)
}
