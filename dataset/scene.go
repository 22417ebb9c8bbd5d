// Package dataset turns a scene flown through by a camera into a labeled detection dataset.
package dataset

import (
	"context"

	"github.com/pkg/errors"

	"go.viam.com/synthlabel/rimage/transform"
	"go.viam.com/synthlabel/spatialmath"
)

var (
	// ErrMissingObject is returned when a labeled object is not present in a frame.
	ErrMissingObject = errors.New("labeled object not found in scene")
	// ErrMissingFrame is returned when a scene cannot produce the requested frame.
	ErrMissingFrame = errors.New("frame not found in scene")
)

// NewMissingObjectError returns an error wrapping ErrMissingObject.
func NewMissingObjectError(name string, frame int) error {
	return errors.Wrapf(ErrMissingObject, "object %q in frame %d", name, frame)
}

// NewMissingFrameError returns an error wrapping ErrMissingFrame.
func NewMissingFrameError(frame int) error {
	return errors.Wrapf(ErrMissingFrame, "frame %d", frame)
}

// FrameState is the geometry of a scene at one frame. Meshes are keyed by object name.
type FrameState struct {
	Index  int
	Camera *transform.Camera
	Meshes map[string]*spatialmath.Mesh
}

// Scene is the 3D engine as seen by the generator. Every call names its frame explicitly.
type Scene interface {
	// Frame evaluates the scene at the given frame index.
	Frame(ctx context.Context, index int) (*FrameState, error)
	// LabeledObjects returns the names of the objects to label, in output order.
	LabeledObjects() []string
	// PathLength returns the length of the path the camera follows.
	PathLength() float64
}

// CheckObjects returns an error for the first labeled object missing from the frame.
func CheckObjects(frame *FrameState, names []string) error {
	for _, name := range names {
		if _, ok := frame.Meshes[name]; !ok {
			return NewMissingObjectError(name, frame.Index)
		}
	}
	return nil
}
