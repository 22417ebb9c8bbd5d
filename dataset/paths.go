package dataset

import (
	"fmt"
	"path/filepath"
)

// Directory and file names inside a project directory.
const (
	ImagesDir    = "images"
	LabelsDir    = "labels"
	PreviewsDir  = "previews"
	MetadataFile = "meta.json"
	LedgerFile   = "progress.db"
	ExportFile   = "dataset.jsonl"
	LogFile      = "message.log"
)

// FrameName returns the base name shared by a frame's image, label and preview files.
func FrameName(index int) string {
	return fmt.Sprintf("frame_%04d", index)
}

// LabelPath returns the label file of a frame.
func LabelPath(projectDir string, index int) string {
	return filepath.Join(projectDir, LabelsDir, FrameName(index)+".txt")
}

// ImagePath returns the rendered image of a frame.
func ImagePath(projectDir string, index int) string {
	return filepath.Join(projectDir, ImagesDir, FrameName(index)+".png")
}

// PreviewPath returns the preview image of a frame.
func PreviewPath(projectDir string, index int) string {
	return filepath.Join(projectDir, PreviewsDir, FrameName(index)+".png")
}
