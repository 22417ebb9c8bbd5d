package objectdetection

import (
	"fmt"
	"image"
	"math"
)

// Box is an axis-aligned region in normalized camera-plane space together with the render size
// used to convert it to pixels. v grows upward; pixel y grows downward. A Box whose four bounds
// are all zero means "no box".
type Box struct {
	MinU float64
	MinV float64
	MaxU float64
	MaxV float64
	DimX float64
	DimY float64
}

// PixelBox is a box in raster pixel space, (X, Y) being its top-left corner. The zero value means
// no detection.
type PixelBox struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// X is the left edge in pixels.
func (b Box) X() float64 {
	return b.MinU * b.DimX
}

// Y is the top edge in pixels.
func (b Box) Y() float64 {
	return b.DimY - b.MaxV*b.DimY
}

// Width in pixels.
func (b Box) Width() float64 {
	return (b.MaxU - b.MinU) * b.DimX
}

// Height in pixels.
func (b Box) Height() float64 {
	return (b.MaxV - b.MinV) * b.DimY
}

// IsEmpty reports whether the box was suppressed or never saw a point.
func (b Box) IsEmpty() bool {
	return b.MinU == 0 && b.MinV == 0 && b.MaxU == 0 && b.MaxV == 0
}

// Tuple returns the box in pixel space, or the zero PixelBox when it has no area.
func (b Box) Tuple() PixelBox {
	w, h := b.Width(), b.Height()
	if w == 0 || h == 0 {
		return PixelBox{}
	}
	return PixelBox{X: b.X(), Y: b.Y(), Width: w, Height: h}
}

func (b Box) String() string {
	return fmt.Sprintf("<Box, (%v, %v), (%v, %v)>", b.MinU, b.MinV, b.MaxU, b.MaxV)
}

// IsZero reports whether p is the "no detection" sentinel.
func (p PixelBox) IsZero() bool {
	return p == PixelBox{}
}

// Area in square pixels.
func (p PixelBox) Area() float64 {
	return p.Width * p.Height
}

// Rect returns the smallest integer rectangle containing p.
func (p PixelBox) Rect() image.Rectangle {
	return image.Rect(
		int(math.Floor(p.X)),
		int(math.Floor(p.Y)),
		int(math.Ceil(p.X+p.Width)),
		int(math.Ceil(p.Y+p.Height)),
	)
}
