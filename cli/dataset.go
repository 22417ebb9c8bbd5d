package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"

	"github.com/samber/lo"
	"github.com/urfave/cli/v2"

	"go.viam.com/synthlabel/config"
	"go.viam.com/synthlabel/dataset"
	"go.viam.com/synthlabel/logging"
	"go.viam.com/synthlabel/utils"
)

// PreviewAction draws the labels of a project over its rendered images.
func PreviewAction(c *cli.Context) error {
	projectDir := c.String(labelFlagProjectDir)
	start, end := c.Int(labelFlagFrameStart), c.Int(labelFlagFrameEnd)

	frames, err := dataset.LabeledFrames(projectDir)
	if err != nil {
		return err
	}
	frames = lo.Filter(frames, func(index, _ int) bool {
		return (start < 0 || index >= start) && (end < 0 || index <= end)
	})

	n, err := dataset.RenderPreviews(c.Context, projectDir, frames, newLogger(c, logging.INFO))
	if err != nil {
		return err
	}
	printf(c.App.Writer, "wrote %d previews to %s", n, filepath.Join(projectDir, dataset.PreviewsDir))
	return nil
}

// ExportAction writes a project's labels as jsonlines bounding box annotations.
func ExportAction(c *cli.Context) error {
	projectDir := c.String(labelFlagProjectDir)
	output := c.String(exportFlagOutput)
	if output == "" {
		output = filepath.Join(projectDir, dataset.ExportFile)
	}

	var buf bytes.Buffer
	n, err := dataset.ExportJSONLines(projectDir, &buf, c.StringSlice(exportFlagClassNames))
	if err != nil {
		return err
	}
	if err := utils.WriteFileAtomic(output, buf.Bytes(), 0o640); err != nil {
		return err
	}
	printf(c.App.Writer, "exported %d frames to %s", n, output)
	return nil
}

// SchemaAction prints the JSON schema of the run configuration.
func SchemaAction(c *cli.Context) error {
	data, err := json.MarshalIndent(config.Schema(), "", "  ")
	if err != nil {
		return err
	}
	printf(c.App.Writer, "%s", data)
	return nil
}
