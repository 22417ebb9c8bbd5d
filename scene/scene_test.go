package scene

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.viam.com/test"

	"go.viam.com/synthlabel/config"
	"go.viam.com/synthlabel/dataset"
	"go.viam.com/synthlabel/logging"
	"go.viam.com/synthlabel/rimage/transform"
)

const cubeOBJ = `# unit cube
v -1 -1 -1
v 1 -1 -1
v 1 1 -1
v -1 1 -1
v -1 -1 1
v 1 -1 1
v 1 1 1
v -1 1 1
f 1 2 3 4
f 5 6 7 8
`

const sceneJSON = `{
  "camera": {"fov_degrees": 90, "resolution_x": 200, "resolution_y": 100},
  "objects": [
    {"name": "obj_house", "collection": "Google 3D Tiles", "mesh_file": "house.obj", "transform": {"translation": [0, 0, -10]}},
    {"name": "obj_shed", "collection": "Other", "vertices": [[0, 0, 0], [1, 1, 1]]},
    {"name": "tree", "collection": "Google 3D Tiles", "vertices": [[0, 0, 0]]}
  ],
  "frames": [
    {"index": 0},
    {"index": 1, "camera": {"translation": [0, 0, 5]}, "objects": {"obj_house": {"translation": [1, 0, -10]}}}
  ],
  "path_length": 42
}`

func writeScene(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	test.That(t, os.WriteFile(filepath.Join(dir, "house.obj"), []byte(cubeOBJ), 0o600), test.ShouldBeNil)
	path := filepath.Join(dir, "scene.json")
	test.That(t, os.WriteFile(path, []byte(contents), 0o600), test.ShouldBeNil)
	return path
}

func TestFromFile(t *testing.T) {
	ctx := context.Background()
	logger := logging.NewTestLogger(t)
	path := writeScene(t, sceneJSON)

	s, err := FromFile(path, OptionsFromConfig(config.Default()), logger)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, s.Objects(), test.ShouldResemble, []string{"obj_house", "obj_shed", "tree"})
	test.That(t, s.LabeledObjects(), test.ShouldResemble, []string{"obj_house"})
	test.That(t, s.PathLength(), test.ShouldEqual, 42.)

	t.Run("first frame", func(t *testing.T) {
		fs, err := s.Frame(ctx, 0)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, fs.Index, test.ShouldEqual, 0)
		test.That(t, fs.Camera.Type, test.ShouldEqual, transform.Perspective)
		test.That(t, fs.Camera.SensorFit, test.ShouldEqual, transform.SensorFitAuto)
		test.That(t, fs.Camera.ResolutionX, test.ShouldEqual, 200)
		test.That(t, fs.Meshes, test.ShouldHaveLength, 3)
		house := fs.Meshes["obj_house"]
		test.That(t, house.Vertices(), test.ShouldHaveLength, 8)
		test.That(t, house.Transform().Translation(), test.ShouldResemble, r3.Vector{Z: -10})
	})

	t.Run("overrides", func(t *testing.T) {
		fs, err := s.Frame(ctx, 1)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, fs.Camera.Pose.Translation(), test.ShouldResemble, r3.Vector{Z: 5})
		test.That(t, fs.Meshes["obj_house"].Transform().Translation(), test.ShouldResemble, r3.Vector{X: 1, Z: -10})
		test.That(t, fs.Meshes["obj_shed"].Transform().Translation(), test.ShouldResemble, r3.Vector{})

		// earlier frames are unaffected
		fs, err = s.Frame(ctx, 0)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, fs.Camera.Pose.Translation(), test.ShouldResemble, r3.Vector{})
	})

	t.Run("missing frame", func(t *testing.T) {
		_, err := s.Frame(ctx, 2)
		test.That(t, errors.Is(err, dataset.ErrMissingFrame), test.ShouldBeTrue)
	})

	t.Run("selection", func(t *testing.T) {
		s, err := FromFile(path, Options{LabelPrefix: "obj"}, logger)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, s.LabeledObjects(), test.ShouldResemble, []string{"obj_house", "obj_shed"})

		s, err = FromFile(path, Options{LabeledObjects: []string{"tree", "obj_house"}}, logger)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, s.LabeledObjects(), test.ShouldResemble, []string{"tree", "obj_house"})
	})
}

func TestStaticScene(t *testing.T) {
	s, err := New(&File{
		Camera:  CameraConfig{Type: "orthographic", OrthoScale: 10, ResolutionX: 64, ResolutionY: 64},
		Objects: []ObjectConfig{{Name: "obj_a", Vertices: [][3]float64{{0, 0, -1}}}},
	}, "", Options{LabelPrefix: "obj"})
	test.That(t, err, test.ShouldBeNil)
	for _, index := range []int{0, 7, 250} {
		fs, err := s.Frame(context.Background(), index)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, fs.Index, test.ShouldEqual, index)
		test.That(t, fs.Camera.Type, test.ShouldEqual, transform.Orthographic)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = s.Frame(ctx, 0)
	test.That(t, errors.Is(err, context.Canceled), test.ShouldBeTrue)
}

func TestSceneErrors(t *testing.T) {
	camera := CameraConfig{FOVDegrees: 60, ResolutionX: 10, ResolutionY: 10}
	verts := [][3]float64{{0, 0, 0}}
	for _, tc := range []struct {
		name     string
		file     File
		expected string
	}{
		{
			"bad camera",
			File{Camera: CameraConfig{FOVDegrees: 60}},
			"invalid resolution",
		},
		{
			"unnamed object",
			File{Camera: camera, Objects: []ObjectConfig{{Vertices: verts}}},
			"has no name",
		},
		{
			"duplicate object",
			File{Camera: camera, Objects: []ObjectConfig{{Name: "a", Vertices: verts}, {Name: "a", Vertices: verts}}},
			"duplicate object",
		},
		{
			"no geometry",
			File{Camera: camera, Objects: []ObjectConfig{{Name: "a"}}},
			"no geometry",
		},
		{
			"two geometries",
			File{Camera: camera, Objects: []ObjectConfig{{Name: "a", MeshFile: "a.obj", Vertices: verts}}},
			"both mesh_file and vertices",
		},
		{
			"missing mesh file",
			File{Camera: camera, Objects: []ObjectConfig{{Name: "a", MeshFile: "missing.obj"}}},
			"error opening OBJ file",
		},
		{
			"mesh outside scene directory",
			File{Camera: camera, Objects: []ObjectConfig{{Name: "a", MeshFile: "../a.obj"}}},
			"unsafe path join",
		},
		{
			"matrix and translation",
			File{Camera: camera, Objects: []ObjectConfig{{
				Name: "a", Vertices: verts,
				Transform: &TransformConfig{Matrix: make([]float64, 16), Translation: &[3]float64{}},
			}}},
			"both matrix",
		},
		{
			"short matrix",
			File{Camera: camera, Objects: []ObjectConfig{{
				Name: "a", Vertices: verts, Transform: &TransformConfig{Matrix: []float64{1}},
			}}},
			"16 values",
		},
		{
			"unknown override",
			File{
				Camera:  camera,
				Objects: []ObjectConfig{{Name: "a", Vertices: verts}},
				Frames:  []FrameConfig{{Index: 0, Objects: map[string]*TransformConfig{"b": nil}}},
			},
			"unknown object",
		},
		{
			"duplicate frame",
			File{Camera: camera, Frames: []FrameConfig{{Index: 3}, {Index: 3}}},
			"duplicate frame",
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(&tc.file, t.TempDir(), Options{})
			test.That(t, err, test.ShouldNotBeNil)
			test.That(t, err.Error(), test.ShouldContainSubstring, tc.expected)
		})
	}

	_, err := FromFile(filepath.Join(t.TempDir(), "missing.json"), Options{}, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldNotBeNil)
	_, err = FromFile(writeScene(t, "{"), Options{}, logging.NewTestLogger(t))
	test.That(t, err.Error(), test.ShouldContainSubstring, "error parsing scene file")
}

func TestTransformConfig(t *testing.T) {
	var nilConfig *TransformConfig
	tf, err := nilConfig.Build()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, tf.Apply(r3.Vector{X: 1}), test.ShouldResemble, r3.Vector{X: 1})

	tf, err = (&TransformConfig{
		Translation:          &[3]float64{1, 2, 3},
		RotationEulerDegrees: &[3]float64{0, 0, 90},
		Scale:                &[3]float64{2, 2, 2},
	}).Build()
	test.That(t, err, test.ShouldBeNil)
	pt := tf.Apply(r3.Vector{X: 1})
	test.That(t, pt.X, test.ShouldAlmostEqual, 1)
	test.That(t, pt.Y, test.ShouldAlmostEqual, 4)
	test.That(t, pt.Z, test.ShouldAlmostEqual, 3)

	tf, err = (&TransformConfig{Matrix: []float64{
		1, 0, 0, 4,
		0, 1, 0, 5,
		0, 0, 1, 6,
		0, 0, 0, 1,
	}}).Build()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, tf.Translation(), test.ShouldResemble, r3.Vector{X: 4, Y: 5, Z: 6})
}

func TestSceneLabeling(t *testing.T) {
	ctx := context.Background()
	logger := logging.NewTestLogger(t)
	cfg := config.Default()
	cfg.ProjectDir = t.TempDir()
	cfg.ScenePath = writeScene(t, sceneJSON)
	cfg.FrameEnd = 1
	cfg.FOV = 0

	s, err := FromFile(cfg.ScenePath, OptionsFromConfig(cfg), logger)
	test.That(t, err, test.ShouldBeNil)
	g, err := dataset.NewGenerator(s, cfg, logger)
	test.That(t, err, test.ShouldBeNil)
	md, err := g.Run(ctx)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, md.ObjectsCount, test.ShouldEqual, 1)
	test.That(t, md.PathLength, test.ShouldEqual, 42.)

	labels, err := dataset.ReadLabels(cfg.ProjectDir, 0)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, labels, test.ShouldHaveLength, 1)
	test.That(t, labels[0].XCenter, test.ShouldAlmostEqual, 0.5)
	test.That(t, labels[0].YCenter, test.ShouldAlmostEqual, 0.5)

	// the camera moved back and the house right in frame 1
	labels, err = dataset.ReadLabels(cfg.ProjectDir, 1)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, labels, test.ShouldHaveLength, 1)
	test.That(t, labels[0].XCenter, test.ShouldBeGreaterThan, 0.5)
}
