package cli

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"

	"go.viam.com/synthlabel/config"
	"go.viam.com/synthlabel/dataset"
	"go.viam.com/synthlabel/logging"
	"go.viam.com/synthlabel/scene"
)

// log file rotation
const (
	logMaxSizeMB  = 10
	logMaxBackups = 3
)

// LabelAction labels every configured frame of a scene.
func LabelAction(c *cli.Context) (err error) {
	cfg, err := labelConfigFromFlags(c)
	if err != nil {
		return err
	}
	if err := cfg.Validate("config"); err != nil {
		return err
	}
	if err := os.MkdirAll(cfg.ProjectDir, 0o750); err != nil {
		return errors.Wrap(err, "could not create project directory")
	}

	logger := newLogger(c, cfg.Level())
	fileAppender := logging.NewFileAppender(filepath.Join(cfg.ProjectDir, dataset.LogFile), logMaxSizeMB, logMaxBackups)
	logger.AddAppender(fileAppender)
	defer func() {
		err = multierr.Combine(err, logger.Sync(), fileAppender.Close())
	}()

	s, err := scene.FromFile(cfg.ScenePath, scene.OptionsFromConfig(cfg), logger)
	if err != nil {
		return err
	}
	if len(s.LabeledObjects()) == 0 {
		warningf(c.App.ErrWriter, "no objects in %q match collection %q and prefix %q",
			cfg.ScenePath, cfg.Collection, cfg.LabelPrefix)
	}
	g, err := dataset.NewGenerator(s, cfg, logger)
	if err != nil {
		return err
	}
	md, err := g.Run(c.Context)
	if err != nil {
		logger.Errorw("labeling failed", "error", err)
		return err
	}
	printf(c.App.Writer, "labeled frames %d to %d for %d objects into %s (run %s)",
		md.FrameStart, md.FrameEnd, md.ObjectsCount, cfg.ProjectDir, md.RunID)
	return nil
}

// newLogger returns a logger writing to the app's error stream.
func newLogger(c *cli.Context, level logging.Level) logging.Logger {
	logger := logging.NewBlankLogger("synthlabel")
	logger.AddAppender(logging.NewWriterAppender(c.App.ErrWriter))
	if c.Bool(flagDebug) {
		level = logging.DEBUG
	}
	logger.SetLevel(level)
	return logger
}

// labelConfigFromFlags reads the --config file, if any, and applies every flag set on the command
// line on top of it.
func labelConfigFromFlags(c *cli.Context) (*config.Config, error) {
	cfg := config.Default()
	if path := c.String(labelFlagConfig); path != "" {
		var err error
		if cfg, err = config.Read(path); err != nil {
			return nil, err
		}
	}

	attrs := config.AttributeMap{}
	for flag, key := range map[string]string{
		labelFlagProjectDir:  "project_dir",
		labelFlagScene:       "scene_path",
		labelFlagCollection:  "collection",
		labelFlagLabelPrefix: "label_prefix",
		labelFlagLogLevel:    "log_level",
	} {
		if c.IsSet(flag) {
			attrs[key] = c.String(flag)
		}
	}
	for flag, key := range map[string]string{
		labelFlagFrameStart: "frame_start",
		labelFlagFrameEnd:   "frame_end",
		labelFlagClassID:    "class_id",
		labelFlagMinBoxArea: "min_box_area_px",
	} {
		if c.IsSet(flag) {
			attrs[key] = c.Int(flag)
		}
	}
	for flag, key := range map[string]string{
		labelFlagTiltAngle:     "tilt_angle",
		labelFlagAltitude:      "altitude",
		labelFlagFOV:           "fov",
		labelFlagMinVisibility: "min_visibility",
	} {
		if c.IsSet(flag) {
			attrs[key] = c.Float64(flag)
		}
	}
	for flag, key := range map[string]string{
		labelFlagResume:  "resume",
		labelFlagPreview: "preview",
	} {
		if c.IsSet(flag) {
			attrs[key] = c.Bool(flag)
		}
	}
	if c.IsSet(labelFlagObjects) {
		attrs["labeled_objects"] = c.StringSlice(labelFlagObjects)
	}

	if err := cfg.Merge(attrs); err != nil {
		return nil, err
	}
	return cfg, nil
}
