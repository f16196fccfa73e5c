package camera

import (
	"math"

	"github.com/edaniels/golog"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"github.com/autodrome/avcore/spatialmath"
	"github.com/autodrome/avcore/utils"
)

const (
	// Corner pairs whose x or y separation is at or below this many pixels
	// may be lying on the same axis and are excluded from pairing.
	cornerPairMinSeparation = 0.8

	// Fraction of in-image sampling points that must match the depth
	// buffer for a box whose midpoint failed the direct depth check.
	sampleAcceptFraction = 0.4

	// Minimum projected box size, as fractions of the image dimensions.
	// Boxes below these are too far away to be usable annotations.
	minWidthFraction  = 0.01
	minHeightFraction = 0.02
	minAreaFraction   = 0.0004
)

// ImagePoint is a projected point in pixel coordinates together with its
// depth along the camera axis.
type ImagePoint struct {
	X float64
	Y float64
	Z float64
}

// Box2D is an axis-aligned pixel-space bounding box.
type Box2D struct {
	XMin int
	XMax int
	YMin int
	YMax int
}

// Width returns the box width in pixels.
func (b Box2D) Width() int {
	return b.XMax - b.XMin
}

// Height returns the box height in pixels.
func (b Box2D) Height() int {
	return b.YMax - b.YMin
}

// Projector turns 3-D ground-truth bounding boxes into 2-D image boxes,
// gated by a depth buffer. It is stateless after construction and safe for
// concurrent use across objects and frames.
type Projector struct {
	intrinsics           *Intrinsics
	middleDepthThreshold float64
	neighborThreshold    float64
	logger               golog.Logger
}

// NewProjector validates the depth-consistency thresholds and returns a
// projector for the given camera.
func NewProjector(
	intrinsics *Intrinsics,
	middleDepthThreshold, neighborThreshold float64,
	logger golog.Logger,
) (*Projector, error) {
	if intrinsics == nil {
		return nil, errors.New("projector needs camera intrinsics")
	}
	if middleDepthThreshold <= 0 || neighborThreshold <= 0 {
		return nil, errors.Errorf("depth thresholds must be positive, got (%v, %v)",
			middleDepthThreshold, neighborThreshold)
	}
	return &Projector{
		intrinsics:           intrinsics,
		middleDepthThreshold: middleDepthThreshold,
		neighborThreshold:    neighborThreshold,
		logger:               logger,
	}, nil
}

// BoundingBox2D projects an object's 3-D bounding box into pixel space and
// returns the 2-D box, or nil if the object is not usably visible this
// frame. A nil box is an expected, frequent outcome (occluded, too far,
// behind the camera), never an error.
func (p *Projector) BoundingBox2D(
	depth *DepthMap,
	vehicle, objTransform *spatialmath.Transform,
	box spatialmath.BoundingBox,
	cameraPose *spatialmath.Transform,
) (*Box2D, error) {
	if depth == nil {
		return nil, errors.New("no depth frame")
	}
	if depth.Width() != p.intrinsics.Width || depth.Height() != p.intrinsics.Height {
		return nil, errors.Errorf("depth map size (%d, %d) does not match intrinsics (%d, %d)",
			depth.Width(), depth.Height(), p.intrinsics.Width, p.intrinsics.Height)
	}

	corners := p.projectCorners(vehicle, objTransform, box, cameraPose)
	if len(corners) != 8 {
		return nil, nil
	}
	first, second, ok := bestCornerPair(corners)
	if !ok {
		return nil, nil
	}
	middle, samples := samplingPoints(first, second)

	accepted := false
	if p.insideImage(middle.X, middle.Y) && p.sameDepth(middle, depth, p.middleDepthThreshold) {
		accepted = true
	} else {
		// The midpoint can legitimately miss the object (e.g. between a
		// pedestrian's legs), so fall back to a vote over the
		// neighboring sampling points that land inside the image.
		matches, total := 0, 0
		for _, s := range samples {
			if !p.insideImage(s.X, s.Y) {
				continue
			}
			total++
			if p.sameDepth(s, depth, p.neighborThreshold) {
				matches++
			}
		}
		accepted = total > 0 && float64(matches) >= sampleAcceptFraction*float64(total)
	}
	if !accepted {
		return nil, nil
	}
	return p.boxFromPair(first, second), nil
}

// ProjectPoint projects a single world location onto the image plane. It
// returns nil unless the point is in front of the camera and strictly
// inside the image.
func (p *Projector) ProjectPoint(
	location r3.Vector,
	vehicle, cameraPose *spatialmath.Transform,
) *ImagePoint {
	inv := vehicle.Compose(cameraPose).Inverse()
	pt := p.toImagePoint(inv.TransformPoint(location))
	if pt.Z > 0 && p.insideImage(pt.X, pt.Y) {
		return &pt
	}
	return nil
}

// toImagePoint multiplies a camera-frame point by the intrinsic matrix and
// normalizes by depth. The x/y flip against the image dimensions matches
// the source renderer's pixel convention.
func (p *Projector) toImagePoint(camPt r3.Vector) ImagePoint {
	proj := p.intrinsics.Matrix().Mul3x1(mgl64.Vec3{camPt.X, camPt.Y, camPt.Z})
	return ImagePoint{
		X: float64(p.intrinsics.Width) - proj.X()/proj.Z(),
		Y: float64(p.intrinsics.Height) - proj.Y()/proj.Z(),
		Z: proj.Z(),
	}
}

// projectCorners maps the object's 8 box corners into image coordinates,
// keeping only corners in front of the camera whose projection passes the
// permissive partial-visibility test.
func (p *Projector) projectCorners(
	vehicle, objTransform *spatialmath.Transform,
	box spatialmath.BoundingBox,
	cameraPose *spatialmath.Transform,
) []ImagePoint {
	worldCorners := box.WorldCorners(objTransform)
	inv := vehicle.Compose(cameraPose).Inverse()

	w := float64(p.intrinsics.Width)
	h := float64(p.intrinsics.Height)
	kept := make([]ImagePoint, 0, len(worldCorners))
	for _, corner := range worldCorners {
		pt := p.toImagePoint(inv.TransformPoint(corner))
		if pt.Z <= 0 {
			continue
		}
		// Inclusive-OR on purpose: corners partially off-image are
		// retained so clipped objects still produce boxes.
		if (pt.X >= 0 || pt.Y >= 0) && (pt.X < w || pt.Y < h) {
			kept = append(kept, pt)
		}
	}
	return kept
}

// bestCornerPair scans all unordered corner pairs for the two farthest-apart
// corners. Pairs separated by at most cornerPairMinSeparation on either axis
// are skipped before any distance comparison. The returned pair is oriented
// so the first corner has the smaller x and y when both orderings agree.
func bestCornerPair(corners []ImagePoint) (ImagePoint, ImagePoint, bool) {
	var first, second ImagePoint
	found := false
	maxDistance := 0.0
	for i := 0; i < len(corners); i++ {
		for j := i + 1; j < len(corners); j++ {
			a, b := corners[i], corners[j]
			if math.Abs(a.X-b.X) <= cornerPairMinSeparation ||
				math.Abs(a.Y-b.Y) <= cornerPairMinSeparation {
				continue
			}
			distance := (b.X-a.X)*(b.X-a.X) + (b.Y-a.Y)*(b.Y-a.Y)
			if distance > maxDistance {
				maxDistance = distance
				if a.X < b.X && a.Y < b.Y {
					first, second = a, b
				} else {
					first, second = b, a
				}
				found = true
			}
		}
	}
	return first, second, found
}

// samplingPoints returns the midpoint of the corner pair (carrying the
// second corner's depth) and the candidate list checked against the depth
// buffer: the midpoint itself plus six fixed offsets around it.
func samplingPoints(a, b ImagePoint) (ImagePoint, []ImagePoint) {
	middle := ImagePoint{X: (a.X + b.X) / 2, Y: (a.Y + b.Y) / 2, Z: b.Z}
	samples := []ImagePoint{
		middle,
		{X: middle.X + 2, Y: middle.Y, Z: middle.Z},
		{X: middle.X + 1, Y: middle.Y + 1, Z: middle.Z},
		{X: middle.X + 1, Y: middle.Y - 1, Z: middle.Z},
		{X: middle.X - 2, Y: middle.Y, Z: middle.Z},
		{X: middle.X - 1, Y: middle.Y + 1, Z: middle.Z},
		{X: middle.X - 1, Y: middle.Y - 1, Z: middle.Z},
	}
	return middle, samples
}

func (p *Projector) insideImage(x, y float64) bool {
	return x >= 0 && y >= 0 && x < float64(p.intrinsics.Width) && y < float64(p.intrinsics.Height)
}

// sameDepth compares a point's projected depth against the depth buffer at
// its pixel. The buffer is normalized against the far plane, hence the
// rescale.
func (p *Projector) sameDepth(pt ImagePoint, depth *DepthMap, threshold float64) bool {
	x, y := int(pt.X), int(pt.Y)
	return math.Abs(depth.GetDepth(x, y)*FarPlane-pt.Z) < threshold
}

// boxFromPair builds the pixel box from the selected opposite corners only,
// not a min/max over all 8 projections; kept that way for parity with the
// datasets this was tuned on. Undersized boxes are dropped.
func (p *Projector) boxFromPair(a, b ImagePoint) *Box2D {
	xMin := utils.MinInt(int(a.X), int(b.X))
	xMax := utils.MaxInt(int(a.X), int(b.X))
	yMin := utils.MinInt(int(a.Y), int(b.Y))
	yMax := utils.MaxInt(int(a.Y), int(b.Y))
	width := float64(xMax - xMin)
	height := float64(yMax - yMin)
	imgWidth := float64(p.intrinsics.Width)
	imgHeight := float64(p.intrinsics.Height)
	if width <= imgWidth*minWidthFraction ||
		height <= imgHeight*minHeightFraction ||
		width*height <= imgWidth*imgHeight*minAreaFraction {
		if p.logger != nil {
			p.logger.Debugw("dropping undersized box", "width", width, "height", height)
		}
		return nil
	}
	return &Box2D{XMin: xMin, XMax: xMax, YMin: yMin, YMax: yMax}
}
