package objectdetection

import (
	"fmt"
	"image"
)

// Detection is a labeled box found in a frame.
type Detection interface {
	BoundingBox() *image.Rectangle
	PixelBox() PixelBox
	Score() float64
	Label() string
}

type detection2D struct {
	box   PixelBox
	rect  image.Rectangle
	score float64
	label string
}

// NewDetection creates a Detection for the named object. Score is in [0, 1].
func NewDetection(box PixelBox, score float64, label string) Detection {
	return &detection2D{box: box, rect: box.Rect(), score: score, label: label}
}

// BoundingBox returns the integer rectangle enclosing the detection.
func (d *detection2D) BoundingBox() *image.Rectangle {
	return &d.rect
}

// PixelBox returns the exact box in pixels.
func (d *detection2D) PixelBox() PixelBox {
	return d.box
}

// Score returns the confidence of the detection.
func (d *detection2D) Score() float64 {
	return d.score
}

// Label returns the name of the detected object.
func (d *detection2D) Label() string {
	return d.label
}

// String turns the detection into a string.
func (d *detection2D) String() string {
	return fmt.Sprintf("Label: %s, Score: %.2f, Box: %v", d.label, d.score, d.rect)
}
