package dataset

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"go.viam.com/synthlabel/rimage/transform"
	"go.viam.com/synthlabel/utils"
)

// Metadata describes a finished run. It is stored as meta.json in the project directory.
type Metadata struct {
	Altitude     float64 `json:"altitude"`
	TiltAngle    float64 `json:"tilt_angle"`
	ObjectsCount int     `json:"objects_count"`
	PathLength   float64 `json:"path_length"`
	FrameStart   int     `json:"frame_start"`
	FrameEnd     int     `json:"frame_end"`

	RunID          string                             `json:"run_id"`
	FOV            float64                            `json:"fov"`
	ImageWidth     int                                `json:"image_width"`
	ImageHeight    int                                `json:"image_height"`
	ClassID        int                                `json:"class_id"`
	LabeledObjects []string                           `json:"labeled_objects"`
	Intrinsics     *transform.PinholeCameraIntrinsics `json:"intrinsics,omitempty"`
}

// WriteMetadata stores md in the project directory, replacing any previous file atomically.
func WriteMetadata(projectDir string, md *Metadata) error {
	data, err := json.MarshalIndent(md, "", "  ")
	if err != nil {
		return err
	}
	if err := utils.WriteFileAtomic(filepath.Join(projectDir, MetadataFile), append(data, '\n'), 0o640); err != nil {
		return errors.Wrap(err, "could not write metadata")
	}
	return nil
}

// ReadMetadata loads the metadata of a finished run.
func ReadMetadata(projectDir string) (*Metadata, error) {
	data, err := os.ReadFile(filepath.Join(projectDir, MetadataFile)) //nolint:gosec
	if err != nil {
		return nil, errors.Wrap(err, "could not read metadata")
	}
	var md Metadata
	if err := json.Unmarshal(data, &md); err != nil {
		return nil, errors.Wrap(err, "could not parse metadata")
	}
	return &md, nil
}
