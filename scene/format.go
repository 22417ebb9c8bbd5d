package scene

import (
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"go.viam.com/synthlabel/spatialmath"
)

// TransformConfig places something in its parent frame. Either Matrix (16 row-major values) or any
// of Translation, RotationEulerDegrees (XYZ order) and Scale may be set.
type TransformConfig struct {
	Matrix               []float64   `json:"matrix,omitempty"`
	Translation          *[3]float64 `json:"translation,omitempty"`
	RotationEulerDegrees *[3]float64 `json:"rotation_euler_degrees,omitempty"`
	Scale                *[3]float64 `json:"scale,omitempty"`
}

// Build returns the transform. A nil config is the identity.
func (tc *TransformConfig) Build() (*spatialmath.Transform, error) {
	if tc == nil {
		return spatialmath.NewIdentityTransform(), nil
	}
	if tc.Matrix != nil {
		if tc.Translation != nil || tc.RotationEulerDegrees != nil || tc.Scale != nil {
			return nil, errors.New("transform cannot set both matrix and translation/rotation/scale")
		}
		return spatialmath.NewTransformFromMatrix(tc.Matrix)
	}
	var translation r3.Vector
	if tc.Translation != nil {
		translation = vec(*tc.Translation)
	}
	rotation := spatialmath.NewIdentityRotation()
	if tc.RotationEulerDegrees != nil {
		r := *tc.RotationEulerDegrees
		rotation = spatialmath.NewEulerAnglesDegrees(r[0], r[1], r[2]).RotationMatrix()
	}
	scale := r3.Vector{X: 1, Y: 1, Z: 1}
	if tc.Scale != nil {
		scale = vec(*tc.Scale)
	}
	return spatialmath.NewTransform(translation, rotation, scale), nil
}

func vec(v [3]float64) r3.Vector {
	return r3.Vector{X: v[0], Y: v[1], Z: v[2]}
}

// CameraConfig describes the scene camera.
type CameraConfig struct {
	Type                 string           `json:"type,omitempty"`
	FOVDegrees           float64          `json:"fov_degrees,omitempty"`
	OrthoScale           float64          `json:"ortho_scale,omitempty"`
	SensorFit            string           `json:"sensor_fit,omitempty"`
	ShiftX               float64          `json:"shift_x,omitempty"`
	ShiftY               float64          `json:"shift_y,omitempty"`
	ResolutionX          int              `json:"resolution_x"`
	ResolutionY          int              `json:"resolution_y"`
	ResolutionPercentage float64          `json:"resolution_percentage,omitempty"`
	Transform            *TransformConfig `json:"transform,omitempty"`
}

// ObjectConfig describes one mesh object. Its geometry comes from MeshFile, a Wavefront OBJ or PLY
// path relative to the scene file, or from inline Vertices.
type ObjectConfig struct {
	Name       string           `json:"name"`
	Collection string           `json:"collection,omitempty"`
	MeshFile   string           `json:"mesh_file,omitempty"`
	Vertices   [][3]float64     `json:"vertices,omitempty"`
	Transform  *TransformConfig `json:"transform,omitempty"`
}

// FrameConfig overrides the camera and object placement at one frame.
type FrameConfig struct {
	Index   int                         `json:"index"`
	Camera  *TransformConfig            `json:"camera,omitempty"`
	Objects map[string]*TransformConfig `json:"objects,omitempty"`
}

// File is the on-disk scene description.
type File struct {
	Camera     CameraConfig   `json:"camera"`
	Objects    []ObjectConfig `json:"objects"`
	Frames     []FrameConfig  `json:"frames,omitempty"`
	PathLength float64        `json:"path_length"`
}
