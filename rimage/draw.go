package rimage

import (
	"image"
	"image/color"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font/gofont/goregular"
)

// Colors used for overlays.
var (
	Red   = color.NRGBA{R: 255, A: 255}
	Green = color.NRGBA{G: 255, A: 255}
	White = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
)

var font *truetype.Font

// init sets up the fonts we want to use.
func init() {
	var err error
	font, err = truetype.Parse(goregular.TTF)
	if err != nil {
		panic(err)
	}
}

// Font returns the font we use for drawing.
func Font() *truetype.Font {
	return font
}

// DrawString writes a string to the given context at a particular point.
func DrawString(dc *gg.Context, text string, p image.Point, c color.Color, size float64) {
	dc.SetFontFace(truetype.NewFace(Font(), &truetype.Options{Size: size}))
	dc.SetColor(c)
	dc.DrawStringWrapped(text, float64(p.X), float64(p.Y), 0, 0, float64(dc.Width()), 1, 0)
}

// DrawRectangleEmpty draws the outline of the given rectangle into the context.
func DrawRectangleEmpty(dc *gg.Context, r image.Rectangle, c color.Color, width float64) {
	dc.SetColor(c)
	dc.SetLineWidth(width)
	dc.DrawRectangle(float64(r.Min.X), float64(r.Min.Y), float64(r.Dx()), float64(r.Dy()))
	dc.Stroke()
}

// Annotation is a captioned rectangle to draw over an image.
type Annotation struct {
	Rect    image.Rectangle
	Caption string
}

// DrawAnnotations returns a copy of img with every annotation outlined and captioned above its
// top-left corner. The source image is not modified.
func DrawAnnotations(img image.Image, annotations []Annotation, c color.Color) image.Image {
	dc := gg.NewContextForImage(img)
	for _, a := range annotations {
		DrawRectangleEmpty(dc, a.Rect, c, 2)
		if a.Caption == "" {
			continue
		}
		p := a.Rect.Min
		p.Y -= 14
		if p.Y < 0 {
			p.Y = a.Rect.Min.Y + 2
		}
		DrawString(dc, a.Caption, p, c, 12)
	}
	return dc.Image()
}
