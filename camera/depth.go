package camera

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"github.com/autodrome/avcore/spatialmath"
)

const (
	// FarPlane is the distance the normalized depth buffer is scaled
	// against: a buffer value of 1.0 is FarPlane units from the camera.
	FarPlane = 1000.0

	// DefaultMaxDepth is the normalized-depth cutoff beyond which pixels
	// are dropped from reconstructed point clouds.
	DefaultMaxDepth = 0.9
)

// DepthMap is a row-major buffer of normalized depths in [0, 1], one value
// per pixel.
type DepthMap struct {
	width  int
	height int
	data   []float64
}

// NewDepthMap wraps an existing buffer. The buffer length must match the
// given dimensions.
func NewDepthMap(width, height int, data []float64) (*DepthMap, error) {
	if width <= 0 || height <= 0 {
		return nil, errors.Errorf("invalid depth map size (%d, %d)", width, height)
	}
	if len(data) != width*height {
		return nil, errors.Errorf("depth buffer length %d does not match %dx%d", len(data), width, height)
	}
	return &DepthMap{width: width, height: height, data: data}, nil
}

// NewEmptyDepthMap allocates a zeroed depth map.
func NewEmptyDepthMap(width, height int) *DepthMap {
	return &DepthMap{width: width, height: height, data: make([]float64, width*height)}
}

// Width returns the number of columns.
func (dm *DepthMap) Width() int {
	return dm.width
}

// Height returns the number of rows.
func (dm *DepthMap) Height() int {
	return dm.height
}

// GetDepth returns the normalized depth at pixel (x, y).
func (dm *DepthMap) GetDepth(x, y int) float64 {
	return dm.data[y*dm.width+x]
}

// Set writes the normalized depth at pixel (x, y).
func (dm *DepthMap) Set(x, y int, d float64) {
	dm.data[y*dm.width+x] = d
}

// contains reports whether the pixel is within the buffer bounds.
func (dm *DepthMap) contains(x, y int) bool {
	return x >= 0 && y >= 0 && x < dm.width && y < dm.height
}

// unprojectPixel maps one pixel through the inverse intrinsic matrix and
// scales by the metric depth. The pixel grid is deliberately flipped
// (u = width-1-x, v = height-1-y) to match the source sensor's convention.
func unprojectPixel(invK mgl64.Mat3, width, height, x, y int, normalizedDepth float64) r3.Vector {
	u := float64(width - 1 - x)
	v := float64(height - 1 - y)
	p := invK.Mul3x1(mgl64.Vec3{u, v, 1})
	d := normalizedDepth * FarPlane
	return r3.Vector{X: p.X() * d, Y: p.Y() * d, Z: p.Z() * d}
}

// PointCloud reconstructs the camera-frame 3-D point cloud from the depth
// buffer. Pixels whose normalized depth exceeds maxDepth are dropped.
func (dm *DepthMap) PointCloud(intrinsics *Intrinsics, maxDepth float64) ([]r3.Vector, error) {
	if intrinsics.Width != dm.width || intrinsics.Height != dm.height {
		return nil, errors.Errorf("depth map size (%d, %d) does not match intrinsics (%d, %d)",
			dm.width, dm.height, intrinsics.Width, intrinsics.Height)
	}
	invK := intrinsics.InverseMatrix()
	points := make([]r3.Vector, 0, len(dm.data))
	for y := 0; y < dm.height; y++ {
		for x := 0; x < dm.width; x++ {
			d := dm.GetDepth(x, y)
			if d > maxDepth {
				continue
			}
			points = append(points, unprojectPixel(invK, dm.width, dm.height, x, y, d))
		}
	}
	return points, nil
}

// WorldPositionAt unprojects a single pixel and maps it through
// vehicle ∘ cameraPose into the world frame. Unlike PointCloud, no depth
// cutoff applies; every in-bounds pixel resolves to a location.
func (dm *DepthMap) WorldPositionAt(
	x, y int,
	intrinsics *Intrinsics,
	vehicle, cameraPose *spatialmath.Transform,
) (r3.Vector, error) {
	if intrinsics.Width != dm.width || intrinsics.Height != dm.height {
		return r3.Vector{}, errors.Errorf("depth map size (%d, %d) does not match intrinsics (%d, %d)",
			dm.width, dm.height, intrinsics.Width, intrinsics.Height)
	}
	if !dm.contains(x, y) {
		return r3.Vector{}, errors.Errorf("pixel (%d, %d) outside %dx%d depth map", x, y, dm.width, dm.height)
	}
	local := unprojectPixel(intrinsics.InverseMatrix(), dm.width, dm.height, x, y, dm.GetDepth(x, y))
	return vehicle.Compose(cameraPose).TransformPoint(local), nil
}
