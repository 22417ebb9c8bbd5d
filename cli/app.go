// Package cli contains the synthlabel command line interface.
package cli

import (
	"io"

	"github.com/urfave/cli/v2"
)

// Flags.
const (
	flagDebug = "debug"

	labelFlagConfig        = "config"
	labelFlagProjectDir    = "project-dir"
	labelFlagScene         = "scene"
	labelFlagFrameStart    = "frame-start"
	labelFlagFrameEnd      = "frame-end"
	labelFlagTiltAngle     = "tilt-angle"
	labelFlagAltitude      = "altitude"
	labelFlagFOV           = "fov"
	labelFlagClassID       = "class-id"
	labelFlagCollection    = "collection"
	labelFlagLabelPrefix   = "label-prefix"
	labelFlagObjects       = "objects"
	labelFlagMinBoxArea    = "min-box-area"
	labelFlagMinVisibility = "min-visibility"
	labelFlagResume        = "resume"
	labelFlagPreview       = "preview"
	labelFlagLogLevel      = "log-level"

	exportFlagOutput     = "output"
	exportFlagClassNames = "class-names"
)

func projectDirFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     labelFlagProjectDir,
		Aliases:  []string{"p"},
		Usage:    "project `DIR` holding images/ and labels/",
		Required: true,
	}
}

// NewApp returns the synthlabel CLI app writing to the given streams.
func NewApp(out, errOut io.Writer) *cli.App {
	return &cli.App{
		Name:            "synthlabel",
		Usage:           "generate bounding box labels for rendered synthetic scenes",
		HideHelpCommand: true,
		Writer:          out,
		ErrWriter:       errOut,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    flagDebug,
				Aliases: []string{"vvv"},
				Usage:   "enable debug logging",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "label",
				Usage:     "project labeled scene objects into per-frame label files",
				UsageText: "synthlabel label --project-dir <dir> --scene <scene.json> [other options]",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    labelFlagConfig,
						Aliases: []string{"c"},
						Usage:   "load run configuration from `FILE`; flags override it",
					},
					&cli.StringFlag{
						Name:    labelFlagProjectDir,
						Aliases: []string{"p"},
						Usage:   "project `DIR` holding images/ and labels/",
					},
					&cli.StringFlag{
						Name:  labelFlagScene,
						Usage: "scene description `FILE`",
					},
					&cli.IntFlag{
						Name:  labelFlagFrameStart,
						Usage: "first frame to label",
					},
					&cli.IntFlag{
						Name:  labelFlagFrameEnd,
						Usage: "last frame to label, inclusive",
					},
					&cli.Float64Flag{
						Name:  labelFlagTiltAngle,
						Usage: "camera tilt angle in degrees, recorded in the metadata",
					},
					&cli.Float64Flag{
						Name:  labelFlagAltitude,
						Usage: "camera altitude, recorded in the metadata",
					},
					&cli.Float64Flag{
						Name:  labelFlagFOV,
						Usage: "camera field of view in degrees; 0 keeps the scene's",
					},
					&cli.IntFlag{
						Name:  labelFlagClassID,
						Usage: "class id written on every label",
					},
					&cli.StringFlag{
						Name:  labelFlagCollection,
						Usage: "collection holding the labeled objects",
					},
					&cli.StringFlag{
						Name:  labelFlagLabelPrefix,
						Usage: "name prefix of the labeled objects",
					},
					&cli.StringSliceFlag{
						Name:  labelFlagObjects,
						Usage: "exact names of the objects to label, overriding collection and prefix",
					},
					&cli.IntFlag{
						Name:  labelFlagMinBoxArea,
						Usage: "drop boxes smaller than this many pixels",
					},
					&cli.Float64Flag{
						Name:  labelFlagMinVisibility,
						Usage: "drop boxes with less than this fraction inside the frame",
					},
					&cli.BoolFlag{
						Name:  labelFlagResume,
						Usage: "skip frames completed by a previous run",
					},
					&cli.BoolFlag{
						Name:  labelFlagPreview,
						Usage: "draw labels over rendered images into previews/",
					},
					&cli.StringFlag{
						Name:  labelFlagLogLevel,
						Usage: "log level: debug, info, warn or error",
					},
				},
				Action: LabelAction,
			},
			{
				Name:  "preview",
				Usage: "draw existing labels over the rendered images",
				Flags: []cli.Flag{
					projectDirFlag(),
					&cli.IntFlag{
						Name:  labelFlagFrameStart,
						Usage: "first frame to draw",
						Value: -1,
					},
					&cli.IntFlag{
						Name:  labelFlagFrameEnd,
						Usage: "last frame to draw, inclusive",
						Value: -1,
					},
				},
				Action: PreviewAction,
			},
			{
				Name:  "export",
				Usage: "export labels as bounding box annotations in jsonlines",
				Flags: []cli.Flag{
					projectDirFlag(),
					&cli.StringFlag{
						Name:    exportFlagOutput,
						Aliases: []string{"o"},
						Usage:   "output `FILE`, defaults to dataset.jsonl in the project directory",
					},
					&cli.StringSliceFlag{
						Name:  exportFlagClassNames,
						Usage: "annotation label for each class id, in order",
					},
				},
				Action: ExportAction,
			},
			{
				Name:   "schema",
				Usage:  "print the JSON schema of the run configuration",
				Action: SchemaAction,
			},
		},
	}
}
