// Package camera implements pinhole camera geometry: intrinsics, depth-buffer
// reconstruction and projection of 3-D ground-truth boxes into pixel space.
package camera

import (
	"encoding/json"
	"io"
	"math"
	"os"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	goutils "go.viam.com/utils"

	"github.com/autodrome/avcore/spatialmath"
)

// Intrinsics holds the parameters needed to project camera-frame 3-D points
// onto the image plane. The matrix is fixed for the camera's lifetime.
type Intrinsics struct {
	Width  int
	Height int
	Fov    float64

	matrix  mgl64.Mat3
	inverse mgl64.Mat3
}

// NewIntrinsics derives the 3x3 intrinsic matrix from the image size and the
// horizontal field of view in degrees. The focal length is
// width / (2 * tan(fov * pi / 360)) and the principal point is the image
// center.
func NewIntrinsics(width, height int, fov float64) (*Intrinsics, error) {
	if width <= 0 || height <= 0 {
		return nil, errors.Errorf("invalid image size (%d, %d)", width, height)
	}
	if fov <= 0 || fov >= 180 {
		return nil, errors.Errorf("field of view must be within (0, 180) degrees, got %v", fov)
	}
	focal := float64(width) / (2.0 * math.Tan(fov*math.Pi/360.0))
	m := mgl64.Ident3()
	m.Set(0, 0, focal)
	m.Set(1, 1, focal)
	m.Set(0, 2, float64(width)/2.0)
	m.Set(1, 2, float64(height)/2.0)
	return &Intrinsics{
		Width:   width,
		Height:  height,
		Fov:     fov,
		matrix:  m,
		inverse: m.Inv(),
	}, nil
}

// intrinsicsConfig is the JSON shape for on-disk intrinsics.
type intrinsicsConfig struct {
	Width  int     `json:"width_px"`
	Height int     `json:"height_px"`
	Fov    float64 `json:"fov_degs"`
}

// NewIntrinsicsFromJSONFile reads intrinsics from a JSON file and validates
// them like NewIntrinsics.
func NewIntrinsicsFromJSONFile(jsonPath string) (*Intrinsics, error) {
	//nolint:gosec
	jsonFile, err := os.Open(jsonPath)
	if err != nil {
		return nil, errors.Wrap(err, "error opening JSON file")
	}
	defer goutils.UncheckedErrorFunc(jsonFile.Close)
	byteValue, err := io.ReadAll(jsonFile)
	if err != nil {
		return nil, errors.Wrap(err, "error reading JSON data")
	}
	cfg := &intrinsicsConfig{}
	if err := json.Unmarshal(byteValue, cfg); err != nil {
		return nil, errors.Wrap(err, "error parsing JSON string")
	}
	return NewIntrinsics(cfg.Width, cfg.Height, cfg.Fov)
}

// Matrix returns the intrinsic matrix.
func (i *Intrinsics) Matrix() mgl64.Mat3 {
	return i.matrix
}

// InverseMatrix returns the inverse intrinsic matrix used for unprojection.
func (i *Intrinsics) InverseMatrix() mgl64.Mat3 {
	return i.inverse
}

// NewCameraPose returns the camera pose relative to the vehicle, composed
// with the fixed sensor axis correction (yaw -90, roll -90) that maps the
// source renderer's camera frame into the vehicle frame.
func NewCameraPose(position r3.Vector, rotation spatialmath.Rotation) *spatialmath.Transform {
	base := spatialmath.NewTransform(position, rotation)
	correction := spatialmath.NewTransform(r3.Vector{}, spatialmath.Rotation{Yaw: -90, Roll: -90})
	return base.Compose(correction)
}
