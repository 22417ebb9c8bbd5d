package transform

import (
	"math"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"go.viam.com/synthlabel/spatialmath"
)

// CameraType is the projection model of a Camera.
type CameraType string

// The supported projection models.
const (
	Perspective  CameraType = "perspective"
	Orthographic CameraType = "orthographic"
)

// SensorFit selects which image axis the field of view (or ortho scale) spans.
type SensorFit string

// The sensor fit modes. SensorFitAuto fits the larger of the two render dimensions.
const (
	SensorFitAuto       SensorFit = "auto"
	SensorFitHorizontal SensorFit = "horizontal"
	SensorFitVertical   SensorFit = "vertical"
)

// ErrInvalidCamera is returned when a Camera cannot be used for projection.
var ErrInvalidCamera = errors.New("invalid camera")

// referenceDepth is the distance of the view frame from the camera origin.
const referenceDepth = 1.0

// Camera is a scene camera as seen by the projector. The camera looks down its local -z axis
// with +y up and +x to the right. Pose maps camera-local coordinates into world space and may
// carry scale, which is ignored.
type Camera struct {
	Type                 CameraType
	FOV                  float64 // radians, across the sensor-fit axis
	OrthoScale           float64
	SensorFit            SensorFit
	ShiftX               float64
	ShiftY               float64
	ResolutionX          int
	ResolutionY          int
	ResolutionPercentage float64 // 0 is treated as 100
	Pose                 *spatialmath.Transform
}

// CheckValid returns an error wrapping ErrInvalidCamera when the camera is unusable.
func (c *Camera) CheckValid() error {
	if c == nil {
		return errors.Wrap(ErrInvalidCamera, "camera is nil")
	}
	switch c.Type {
	case Perspective:
		if !(c.FOV > 0 && c.FOV < math.Pi) {
			return errors.Wrapf(ErrInvalidCamera, "field of view must be in (0, pi) radians, got %v", c.FOV)
		}
	case Orthographic:
		if !(c.OrthoScale > 0) {
			return errors.Wrapf(ErrInvalidCamera, "ortho scale must be positive, got %v", c.OrthoScale)
		}
	default:
		return errors.Wrapf(ErrInvalidCamera, "unknown camera type %q", c.Type)
	}
	switch c.SensorFit {
	case "", SensorFitAuto, SensorFitHorizontal, SensorFitVertical:
	default:
		return errors.Wrapf(ErrInvalidCamera, "unknown sensor fit %q", c.SensorFit)
	}
	if c.ResolutionX <= 0 || c.ResolutionY <= 0 {
		return errors.Wrapf(ErrInvalidCamera, "invalid resolution (%d, %d)", c.ResolutionX, c.ResolutionY)
	}
	if c.ResolutionPercentage < 0 {
		return errors.Wrapf(ErrInvalidCamera, "invalid resolution percentage %v", c.ResolutionPercentage)
	}
	return nil
}

// RenderSize returns the size in pixels of the rendered image, after the resolution percentage.
func (c *Camera) RenderSize() (float64, float64) {
	pct := c.ResolutionPercentage
	if pct == 0 {
		pct = 100
	}
	return float64(c.ResolutionX) * pct / 100, float64(c.ResolutionY) * pct / 100
}

// frameExtents returns the left, right, bottom and top edges of the view frame at the reference
// depth, lens shift included.
func (c *Camera) frameExtents() (left, right, bottom, top float64) {
	var size float64
	if c.Type == Orthographic {
		size = c.OrthoScale / 2
	} else {
		size = math.Tan(c.FOV/2) * referenceDepth
	}

	aspX, aspY := float64(c.ResolutionX), float64(c.ResolutionY)
	fit := c.SensorFit
	if fit == "" || fit == SensorFitAuto {
		fit = SensorFitHorizontal
		if aspY > aspX {
			fit = SensorFitVertical
		}
	}
	halfW, halfH := size, size
	if fit == SensorFitHorizontal {
		halfH = size * aspY / aspX
	} else {
		halfW = size * aspX / aspY
	}

	// shift is measured in units of the fitted axis span
	shiftX := c.ShiftX * 2 * size
	shiftY := c.ShiftY * 2 * size
	return shiftX - halfW, shiftX + halfW, shiftY - halfH, shiftY + halfH
}

// ViewFrame returns the four corners of the visible rectangle in camera-local space at the
// reference depth, ordered top-right, bottom-right, bottom-left, top-left.
func (c *Camera) ViewFrame() [4]r3.Vector {
	left, right, bottom, top := c.frameExtents()
	z := -referenceDepth
	return [4]r3.Vector{
		{X: right, Y: top, Z: z},
		{X: right, Y: bottom, Z: z},
		{X: left, Y: bottom, Z: z},
		{X: left, Y: top, Z: z},
	}
}

// WorldToCamera returns the transform taking world coordinates into camera-local space.
func (c *Camera) WorldToCamera() (*spatialmath.Transform, error) {
	if c.Pose == nil {
		return spatialmath.NewIdentityTransform(), nil
	}
	inv, err := c.Pose.Normalized().Inverse()
	if err != nil {
		return nil, errors.Wrap(ErrInvalidCamera, err.Error())
	}
	return inv, nil
}

// Intrinsics returns the pinhole parameters matching a perspective camera at its render size.
// The returned parameters use the raster convention: +y points down the image and +z along the
// optical axis.
func (c *Camera) Intrinsics() (*PinholeCameraIntrinsics, error) {
	if err := c.CheckValid(); err != nil {
		return nil, err
	}
	if c.Type != Perspective {
		return nil, NewNoIntrinsicsError("orthographic cameras have no pinhole intrinsics")
	}
	dimX, dimY := c.RenderSize()
	left, right, bottom, top := c.frameExtents()
	fx := dimX * referenceDepth / (right - left)
	fy := dimY * referenceDepth / (top - bottom)
	return &PinholeCameraIntrinsics{
		Width:  int(math.Round(dimX)),
		Height: int(math.Round(dimY)),
		Fx:     fx,
		Fy:     fy,
		Ppx:    -left / referenceDepth * fx,
		Ppy:    top / referenceDepth * fy,
	}, nil
}
