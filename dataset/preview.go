package dataset

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"sync/atomic"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"go.viam.com/synthlabel/logging"
	"go.viam.com/synthlabel/rimage"
)

// RenderPreviews draws each frame's labels over its rendered image and saves the result under
// previews/. Frames without an image or a label file are skipped. Frames are drawn concurrently;
// the first error cancels the rest. It returns the number of previews written.
func RenderPreviews(ctx context.Context, projectDir string, frames []int, logger logging.Logger) (int, error) {
	if err := os.MkdirAll(filepath.Join(projectDir, PreviewsDir), 0o750); err != nil {
		return 0, errors.Wrap(err, "could not create previews directory")
	}
	var written atomic.Int64
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for _, index := range frames {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			ok, err := renderPreview(projectDir, index, logger)
			if ok {
				written.Add(1)
			}
			return err
		})
	}
	err := g.Wait()
	logger.Infow("rendered previews", "count", written.Load())
	return int(written.Load()), err
}

func renderPreview(projectDir string, index int, logger logging.Logger) (bool, error) {
	imagePath := ImagePath(projectDir, index)
	if _, err := os.Stat(imagePath); err != nil {
		logger.Debugw("no rendered image for frame", "frame", index, "path", imagePath)
		return false, nil
	}
	labels, err := ReadLabels(projectDir, index)
	if err != nil {
		if os.IsNotExist(errors.Cause(err)) {
			logger.Debugw("no labels for frame", "frame", index)
			return false, nil
		}
		return false, err
	}
	img, err := rimage.ReadImageFromFile(imagePath)
	if err != nil {
		return false, err
	}

	width, height := float64(img.Bounds().Dx()), float64(img.Bounds().Dy())
	annotations := make([]rimage.Annotation, 0, len(labels))
	for _, l := range labels {
		rect := l.Denormalize(width, height).Rect().Add(img.Bounds().Min)
		annotations = append(annotations, rimage.Annotation{Rect: rect, Caption: strconv.Itoa(l.ClassID)})
	}
	if err := rimage.WriteImageToFile(PreviewPath(projectDir, index), rimage.DrawAnnotations(img, annotations, rimage.Red)); err != nil {
		return false, err
	}
	return true, nil
}
