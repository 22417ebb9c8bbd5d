package transform

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.viam.com/test"

	"go.viam.com/synthlabel/spatialmath"
)

// wideCamera has a 90 degree horizontal field of view, so the view frame spans x in [-1, 1] and
// y in [-0.5, 0.5] at unit depth.
func wideCamera() *Camera {
	return &Camera{
		Type:        Perspective,
		FOV:         math.Pi / 2,
		SensorFit:   SensorFitAuto,
		ResolutionX: 200,
		ResolutionY: 100,
	}
}

func TestCameraCheckValid(t *testing.T) {
	test.That(t, wideCamera().CheckValid(), test.ShouldBeNil)

	var nilCam *Camera
	for name, cam := range map[string]*Camera{
		"nil":            nilCam,
		"unknown type":   {Type: "fisheye", FOV: 1, ResolutionX: 1, ResolutionY: 1},
		"zero fov":       {Type: Perspective, ResolutionX: 1, ResolutionY: 1},
		"zero ortho":     {Type: Orthographic, ResolutionX: 1, ResolutionY: 1},
		"bad sensor fit": {Type: Perspective, FOV: 1, SensorFit: "diagonal", ResolutionX: 1, ResolutionY: 1},
		"no resolution":  {Type: Perspective, FOV: 1},
		"negative pct":   {Type: Perspective, FOV: 1, ResolutionX: 1, ResolutionY: 1, ResolutionPercentage: -5},
	} {
		t.Run(name, func(t *testing.T) {
			err := cam.CheckValid()
			test.That(t, err, test.ShouldNotBeNil)
			test.That(t, errors.Is(err, ErrInvalidCamera), test.ShouldBeTrue)
		})
	}
}

func TestViewFrame(t *testing.T) {
	t.Run("horizontal fit", func(t *testing.T) {
		frame := wideCamera().ViewFrame()
		expected := [4]r3.Vector{
			{X: 1, Y: 0.5, Z: -1},
			{X: 1, Y: -0.5, Z: -1},
			{X: -1, Y: -0.5, Z: -1},
			{X: -1, Y: 0.5, Z: -1},
		}
		for i := range expected {
			test.That(t, frame[i].X, test.ShouldAlmostEqual, expected[i].X)
			test.That(t, frame[i].Y, test.ShouldAlmostEqual, expected[i].Y)
			test.That(t, frame[i].Z, test.ShouldAlmostEqual, expected[i].Z)
		}
	})

	t.Run("vertical fit on a tall image", func(t *testing.T) {
		cam := wideCamera()
		cam.ResolutionX, cam.ResolutionY = 100, 200
		frame := cam.ViewFrame()
		test.That(t, frame[0].X, test.ShouldAlmostEqual, 0.5)
		test.That(t, frame[0].Y, test.ShouldAlmostEqual, 1)
	})

	t.Run("forced vertical fit on a wide image", func(t *testing.T) {
		cam := wideCamera()
		cam.SensorFit = SensorFitVertical
		frame := cam.ViewFrame()
		test.That(t, frame[0].X, test.ShouldAlmostEqual, 2)
		test.That(t, frame[0].Y, test.ShouldAlmostEqual, 1)
	})

	t.Run("lens shift", func(t *testing.T) {
		cam := wideCamera()
		cam.ShiftX = 0.25
		frame := cam.ViewFrame()
		test.That(t, frame[2].X, test.ShouldAlmostEqual, -0.5)
		test.That(t, frame[1].X, test.ShouldAlmostEqual, 1.5)
	})

	t.Run("orthographic", func(t *testing.T) {
		cam := &Camera{Type: Orthographic, OrthoScale: 4, ResolutionX: 200, ResolutionY: 100}
		frame := cam.ViewFrame()
		test.That(t, frame[0].X, test.ShouldAlmostEqual, 2)
		test.That(t, frame[0].Y, test.ShouldAlmostEqual, 1)
	})
}

func TestRenderSize(t *testing.T) {
	cam := wideCamera()
	w, h := cam.RenderSize()
	test.That(t, w, test.ShouldEqual, 200.)
	test.That(t, h, test.ShouldEqual, 100.)

	cam.ResolutionPercentage = 50
	w, h = cam.RenderSize()
	test.That(t, w, test.ShouldEqual, 100.)
	test.That(t, h, test.ShouldEqual, 50.)
}

func TestWorldToCamera(t *testing.T) {
	cam := wideCamera()
	tf, err := cam.WorldToCamera()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, tf.Apply(r3.Vector{X: 1, Y: 2, Z: 3}), test.ShouldResemble, r3.Vector{X: 1, Y: 2, Z: 3})

	// scale on the camera pose is ignored
	cam.Pose = spatialmath.NewTransform(r3.Vector{Z: 10}, nil, r3.Vector{X: 3, Y: 3, Z: 3})
	tf, err = cam.WorldToCamera()
	test.That(t, err, test.ShouldBeNil)
	pt := tf.Apply(r3.Vector{X: 1, Y: 2, Z: 0})
	test.That(t, pt.X, test.ShouldAlmostEqual, 1)
	test.That(t, pt.Y, test.ShouldAlmostEqual, 2)
	test.That(t, pt.Z, test.ShouldAlmostEqual, -10)

	singular, err := spatialmath.NewTransformFromMatrix([]float64{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 0, 0,
		0, 0, 0, 0,
	})
	test.That(t, err, test.ShouldBeNil)
	cam.Pose = singular
	_, err = cam.WorldToCamera()
	test.That(t, errors.Is(err, ErrInvalidCamera), test.ShouldBeTrue)
}

func TestCameraIntrinsics(t *testing.T) {
	t.Run("perspective", func(t *testing.T) {
		intrinsics, err := wideCamera().Intrinsics()
		test.That(t, err, test.ShouldBeNil)
		test.That(t, intrinsics.CheckValid(), test.ShouldBeNil)
		test.That(t, intrinsics.Width, test.ShouldEqual, 200)
		test.That(t, intrinsics.Height, test.ShouldEqual, 100)
		test.That(t, intrinsics.Fx, test.ShouldAlmostEqual, 100)
		test.That(t, intrinsics.Fy, test.ShouldAlmostEqual, 100)
		test.That(t, intrinsics.Ppx, test.ShouldAlmostEqual, 100)
		test.That(t, intrinsics.Ppy, test.ShouldAlmostEqual, 50)
	})

	t.Run("orthographic", func(t *testing.T) {
		cam := &Camera{Type: Orthographic, OrthoScale: 4, ResolutionX: 200, ResolutionY: 100}
		_, err := cam.Intrinsics()
		test.That(t, errors.Is(err, ErrNoIntrinsics), test.ShouldBeTrue)
	})
}
