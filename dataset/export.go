package dataset

import (
	"encoding/json"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ImageMetadata defines the format of the data in jsonlines for custom training.
type ImageMetadata struct {
	ImagePath       string           `json:"image_path"`
	BBoxAnnotations []BBoxAnnotation `json:"bounding_box_annotations"`
}

// BBoxAnnotation holds the information associated with each bounding box.
type BBoxAnnotation struct {
	AnnotationLabel string  `json:"annotation_label"`
	XMinNormalized  float64 `json:"x_min_normalized"`
	XMaxNormalized  float64 `json:"x_max_normalized"`
	YMinNormalized  float64 `json:"y_min_normalized"`
	YMaxNormalized  float64 `json:"y_max_normalized"`
}

// LabeledFrames returns the indices of every frame with a label file, in increasing order.
func LabeledFrames(projectDir string) ([]int, error) {
	entries, err := os.ReadDir(filepath.Join(projectDir, LabelsDir))
	if err != nil {
		return nil, errors.Wrap(err, "could not list labels")
	}
	var frames []int
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, "frame_") || !strings.HasSuffix(name, ".txt") {
			continue
		}
		index, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(name, "frame_"), ".txt"))
		if err != nil {
			continue
		}
		frames = append(frames, index)
	}
	sort.Ints(frames)
	return frames, nil
}

// ExportJSONLines writes one ImageMetadata record per labeled frame to w and returns how many
// records were written. Class ids are named through classNames when it covers them.
func ExportJSONLines(projectDir string, w io.Writer, classNames []string) (int, error) {
	frames, err := LabeledFrames(projectDir)
	if err != nil {
		return 0, err
	}
	enc := json.NewEncoder(w)
	for i, index := range frames {
		labels, err := ReadLabels(projectDir, index)
		if err != nil {
			return i, err
		}
		record := ImageMetadata{
			ImagePath:       path.Join(ImagesDir, FrameName(index)+".png"),
			BBoxAnnotations: make([]BBoxAnnotation, 0, len(labels)),
		}
		for _, l := range labels {
			xMin, yMin, xMax, yMax := l.Corners()
			record.BBoxAnnotations = append(record.BBoxAnnotations, BBoxAnnotation{
				AnnotationLabel: className(l.ClassID, classNames),
				XMinNormalized:  xMin,
				XMaxNormalized:  xMax,
				YMinNormalized:  yMin,
				YMaxNormalized:  yMax,
			})
		}
		if err := enc.Encode(record); err != nil {
			return i, errors.Wrap(err, "error writing to file")
		}
	}
	return len(frames), nil
}

func className(classID int, classNames []string) string {
	if classID >= 0 && classID < len(classNames) && classNames[classID] != "" {
		return classNames[classID]
	}
	return strconv.Itoa(classID)
}
