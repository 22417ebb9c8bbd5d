// Package config defines the structures to configure a labeling run.
package config

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/a8m/envsubst"
	"github.com/invopop/jsonschema"
	"github.com/pkg/errors"
	"go.viam.com/utils"

	"go.viam.com/synthlabel/logging"
)

// Defaults for a labeling run.
const (
	DefaultFrameStart  = 0
	DefaultFrameEnd    = 15
	DefaultTiltAngle   = 30.0
	DefaultAltitude    = 200.0
	DefaultFOV         = 60.0
	DefaultCollection  = "Google 3D Tiles"
	DefaultLabelPrefix = "obj"
)

// Config describes a labeling run over a rendered scene.
type Config struct {
	ProjectDir string `json:"project_dir"`
	ScenePath  string `json:"scene_path"`
	FrameStart int    `json:"frame_start"`
	FrameEnd   int    `json:"frame_end"`

	// TiltAngle and Altitude describe the camera path and are recorded in the run metadata.
	TiltAngle float64 `json:"tilt_angle"`
	Altitude  float64 `json:"altitude"`
	// FOV is in degrees. Zero keeps the scene camera's own field of view.
	FOV float64 `json:"fov"`

	ClassID        int      `json:"class_id"`
	Collection     string   `json:"collection"`
	LabelPrefix    string   `json:"label_prefix"`
	LabeledObjects []string `json:"labeled_objects,omitempty"`

	MinBoxAreaPx  int     `json:"min_box_area_px,omitempty"`
	MinVisibility float64 `json:"min_visibility,omitempty"`

	Resume   bool   `json:"resume,omitempty"`
	Preview  bool   `json:"preview,omitempty"`
	LogLevel string `json:"log_level,omitempty"`
}

// Default returns a config with every optional field at its default.
func Default() *Config {
	return &Config{
		FrameStart:  DefaultFrameStart,
		FrameEnd:    DefaultFrameEnd,
		TiltAngle:   DefaultTiltAngle,
		Altitude:    DefaultAltitude,
		FOV:         DefaultFOV,
		Collection:  DefaultCollection,
		LabelPrefix: DefaultLabelPrefix,
	}
}

// Read reads a config from the given JSON file. Environment variables referenced as ${VAR} are
// expanded first. Fields missing from the file keep their defaults.
func Read(filePath string) (*Config, error) {
	buf, err := envsubst.ReadFile(filePath)
	if err != nil {
		return nil, errors.Wrap(err, "error reading config file")
	}

	cfg := Default()
	if err := json.NewDecoder(bytes.NewReader(buf)).Decode(cfg); err != nil {
		return nil, errors.Wrapf(err, "failed to decode Config from json")
	}
	return cfg, nil
}

// Validate ensures all parts of the config are valid.
func (c *Config) Validate(path string) error {
	if c.ProjectDir == "" {
		return utils.NewConfigValidationFieldRequiredError(path, "project_dir")
	}
	if c.ScenePath == "" {
		return utils.NewConfigValidationFieldRequiredError(path, "scene_path")
	}
	if c.FrameStart < 0 {
		return utils.NewConfigValidationError(path, errors.Errorf("frame_start must be non-negative, got %d", c.FrameStart))
	}
	if c.FrameEnd < c.FrameStart {
		return utils.NewConfigValidationError(path,
			errors.Errorf("frame_end (%d) must not be before frame_start (%d)", c.FrameEnd, c.FrameStart))
	}
	if c.FOV < 0 || c.FOV >= 180 {
		return utils.NewConfigValidationError(path, errors.Errorf("fov must be in [0, 180) degrees, got %v", c.FOV))
	}
	if c.ClassID < 0 {
		return utils.NewConfigValidationError(path, errors.Errorf("class_id must be non-negative, got %d", c.ClassID))
	}
	if c.MinBoxAreaPx < 0 {
		return utils.NewConfigValidationError(path, errors.Errorf("min_box_area_px must be non-negative, got %d", c.MinBoxAreaPx))
	}
	if c.MinVisibility < 0 || c.MinVisibility > 1 {
		return utils.NewConfigValidationError(path, errors.Errorf("min_visibility must be in [0, 1], got %v", c.MinVisibility))
	}
	for i, name := range c.LabeledObjects {
		if name == "" {
			return utils.NewConfigValidationFieldRequiredError(path, fmt.Sprintf("labeled_objects.%d", i))
		}
	}
	if c.LogLevel != "" {
		if _, err := logging.LevelFromString(c.LogLevel); err != nil {
			return utils.NewConfigValidationError(path, err)
		}
	}
	return nil
}

// Level returns the configured log level, INFO when unset.
func (c *Config) Level() logging.Level {
	if c.LogLevel == "" {
		return logging.INFO
	}
	level, err := logging.LevelFromString(c.LogLevel)
	if err != nil {
		return logging.INFO
	}
	return level
}

// Schema returns the JSON schema of Config.
func Schema() *jsonschema.Schema {
	return jsonschema.Reflect(&Config{})
}
