// Package scene loads scene descriptions exported from a 3D engine.
package scene

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"github.com/samber/lo"

	"go.viam.com/synthlabel/config"
	"go.viam.com/synthlabel/dataset"
	"go.viam.com/synthlabel/logging"
	"go.viam.com/synthlabel/rimage/transform"
	"go.viam.com/synthlabel/spatialmath"
	"go.viam.com/synthlabel/utils"
)

// Options select which objects of a scene are labeled.
type Options struct {
	// LabeledObjects, when set, is the exact list of objects to label.
	LabeledObjects []string
	// Otherwise objects in Collection (any collection when empty) whose names start with
	// LabelPrefix are labeled.
	Collection  string
	LabelPrefix string
}

// OptionsFromConfig returns the object selection of a run config.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		LabeledObjects: cfg.LabeledObjects,
		Collection:     cfg.Collection,
		LabelPrefix:    cfg.LabelPrefix,
	}
}

type frame struct {
	camera  *spatialmath.Transform
	objects map[string]*spatialmath.Transform
}

// FileScene is a scene read from a file. It is safe for concurrent use.
type FileScene struct {
	camera     transform.Camera
	meshes     map[string]*spatialmath.Mesh
	order      []string
	frames     map[int]frame
	labeled    []string
	pathLength float64
}

// FromFile reads the scene at path.
func FromFile(path string, opts Options, logger logging.Logger) (*FileScene, error) {
	//nolint:gosec
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "error reading scene file")
	}
	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, errors.Wrapf(err, "error parsing scene file %q", path)
	}
	s, err := New(&f, filepath.Dir(path), opts)
	if err != nil {
		return nil, errors.Wrapf(err, "scene %q", path)
	}
	logger.Infow("loaded scene",
		"path", path,
		"objects", len(s.order),
		"labeled", len(s.labeled),
		"frames", len(s.frames))
	return s, nil
}

// New builds a scene from its description. Mesh files are resolved relative to baseDir.
func New(f *File, baseDir string, opts Options) (*FileScene, error) {
	cam, err := buildCamera(&f.Camera)
	if err != nil {
		return nil, err
	}
	s := &FileScene{
		camera:     *cam,
		meshes:     make(map[string]*spatialmath.Mesh, len(f.Objects)),
		frames:     make(map[int]frame, len(f.Frames)),
		pathLength: f.PathLength,
	}

	for i, obj := range f.Objects {
		if obj.Name == "" {
			return nil, errors.Errorf("object %d has no name", i)
		}
		if _, ok := s.meshes[obj.Name]; ok {
			return nil, errors.Errorf("duplicate object %q", obj.Name)
		}
		mesh, err := loadMesh(&obj, baseDir)
		if err != nil {
			return nil, err
		}
		s.meshes[obj.Name] = mesh
		s.order = append(s.order, obj.Name)
	}

	for _, fc := range f.Frames {
		if _, ok := s.frames[fc.Index]; ok {
			return nil, errors.Errorf("duplicate frame %d", fc.Index)
		}
		fr := frame{camera: cam.Pose, objects: map[string]*spatialmath.Transform{}}
		if fc.Camera != nil {
			if fr.camera, err = fc.Camera.Build(); err != nil {
				return nil, errors.Wrapf(err, "frame %d camera", fc.Index)
			}
		}
		for name, tc := range fc.Objects {
			if _, ok := s.meshes[name]; !ok {
				return nil, errors.Errorf("frame %d places unknown object %q", fc.Index, name)
			}
			if fr.objects[name], err = tc.Build(); err != nil {
				return nil, errors.Wrapf(err, "frame %d object %q", fc.Index, name)
			}
		}
		s.frames[fc.Index] = fr
	}

	if len(opts.LabeledObjects) > 0 {
		s.labeled = append([]string{}, opts.LabeledObjects...)
	} else {
		selected := lo.Filter(f.Objects, func(obj ObjectConfig, _ int) bool {
			return (opts.Collection == "" || obj.Collection == opts.Collection) &&
				strings.HasPrefix(obj.Name, opts.LabelPrefix)
		})
		s.labeled = lo.Map(selected, func(obj ObjectConfig, _ int) string { return obj.Name })
	}
	return s, nil
}

func buildCamera(cc *CameraConfig) (*transform.Camera, error) {
	pose, err := cc.Transform.Build()
	if err != nil {
		return nil, errors.Wrap(err, "camera transform")
	}
	cam := &transform.Camera{
		Type:                 transform.CameraType(cc.Type),
		FOV:                  utils.DegToRad(cc.FOVDegrees),
		OrthoScale:           cc.OrthoScale,
		SensorFit:            transform.SensorFit(cc.SensorFit),
		ShiftX:               cc.ShiftX,
		ShiftY:               cc.ShiftY,
		ResolutionX:          cc.ResolutionX,
		ResolutionY:          cc.ResolutionY,
		ResolutionPercentage: cc.ResolutionPercentage,
		Pose:                 pose,
	}
	if cam.Type == "" {
		cam.Type = transform.Perspective
	}
	if cam.SensorFit == "" {
		cam.SensorFit = transform.SensorFitAuto
	}
	if cam.Type == transform.Perspective && cam.FOV == 0 {
		cam.FOV = utils.DegToRad(config.DefaultFOV)
	}
	if err := cam.CheckValid(); err != nil {
		return nil, err
	}
	return cam, nil
}

func loadMesh(obj *ObjectConfig, baseDir string) (*spatialmath.Mesh, error) {
	tf, err := obj.Transform.Build()
	if err != nil {
		return nil, errors.Wrapf(err, "object %q transform", obj.Name)
	}
	switch {
	case obj.MeshFile != "" && len(obj.Vertices) > 0:
		return nil, errors.Errorf("object %q cannot have both mesh_file and vertices", obj.Name)
	case obj.MeshFile != "":
		meshPath := obj.MeshFile
		if !filepath.IsAbs(meshPath) && baseDir != "" {
			// relative mesh paths may not leave the scene directory
			if meshPath, err = utils.SafeJoinDir(baseDir, meshPath); err != nil {
				return nil, errors.Wrapf(err, "object %q", obj.Name)
			}
		}
		readMesh := spatialmath.ReadOBJFile
		if strings.EqualFold(filepath.Ext(meshPath), ".ply") {
			readMesh = spatialmath.ReadPLYFile
		}
		mesh, err := readMesh(meshPath, obj.Name)
		if err != nil {
			return nil, errors.Wrapf(err, "object %q", obj.Name)
		}
		return mesh.WithTransform(tf), nil
	case len(obj.Vertices) > 0:
		return spatialmath.NewMesh(tf, lo.Map(obj.Vertices, func(v [3]float64, _ int) r3.Vector { return vec(v) }), obj.Name), nil
	default:
		return nil, errors.Errorf("object %q has no geometry", obj.Name)
	}
}

// Frame returns the scene at the given frame. A scene without frames is static and valid at every
// index; otherwise only listed frames exist.
func (s *FileScene) Frame(ctx context.Context, index int) (*dataset.FrameState, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	fr := frame{camera: s.camera.Pose}
	if len(s.frames) > 0 {
		var ok bool
		if fr, ok = s.frames[index]; !ok {
			return nil, dataset.NewMissingFrameError(index)
		}
	}

	cam := s.camera
	cam.Pose = fr.camera
	meshes := make(map[string]*spatialmath.Mesh, len(s.meshes))
	for name, mesh := range s.meshes {
		if tf, ok := fr.objects[name]; ok {
			mesh = mesh.WithTransform(tf)
		}
		meshes[name] = mesh
	}
	return &dataset.FrameState{Index: index, Camera: &cam, Meshes: meshes}, nil
}

// Objects returns the names of every object in the scene, in file order.
func (s *FileScene) Objects() []string {
	return s.order
}

// LabeledObjects returns the names of the objects to label.
func (s *FileScene) LabeledObjects() []string {
	return s.labeled
}

// PathLength returns the length of the camera path.
func (s *FileScene) PathLength() float64 {
	return s.pathLength
}
