package dataset

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	goutils "go.viam.com/utils"

	"go.viam.com/synthlabel/utils"
	"go.viam.com/synthlabel/vision/objectdetection"
)

// prepareDirs creates the images and labels directories. Unless resuming, the labels directory
// is emptied first; images are always kept.
func prepareDirs(projectDir string, resume bool) error {
	if err := os.MkdirAll(filepath.Join(projectDir, ImagesDir), 0o750); err != nil {
		return errors.Wrap(err, "could not create images directory")
	}
	labels := filepath.Join(projectDir, LabelsDir)
	if !resume {
		if err := os.RemoveAll(labels); err != nil {
			return errors.Wrap(err, "could not clear labels directory")
		}
	}
	if err := os.MkdirAll(labels, 0o750); err != nil {
		return errors.Wrap(err, "could not create labels directory")
	}
	return nil
}

// WriteLabels writes a frame's label file. The file is replaced atomically.
func WriteLabels(projectDir string, index int, labels objectdetection.LabelSet) error {
	var buf bytes.Buffer
	if _, err := labels.WriteTo(&buf); err != nil {
		return err
	}
	path := LabelPath(projectDir, index)
	if err := utils.WriteFileAtomic(path, buf.Bytes(), 0o640); err != nil {
		return errors.Wrapf(err, "could not write labels for frame %d", index)
	}
	return nil
}

// ReadLabels reads a frame's label file.
func ReadLabels(projectDir string, index int) (objectdetection.LabelSet, error) {
	//nolint:gosec
	f, err := os.Open(LabelPath(projectDir, index))
	if err != nil {
		return nil, err
	}
	defer goutils.UncheckedErrorFunc(f.Close)
	labels, err := objectdetection.ParseLabelSet(f)
	if err != nil {
		return nil, errors.Wrapf(err, "frame %d", index)
	}
	return labels, nil
}
