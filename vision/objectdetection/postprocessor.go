package objectdetection

// Postprocessor defines a function that filters/modifies on an incoming array of Detections.
type Postprocessor func([]Detection) []Detection

// NewAreaFilter returns a function that filters out detections below a certain area.
func NewAreaFilter(area int) Postprocessor {
	return func(in []Detection) []Detection {
		out := make([]Detection, 0, len(in))
		for _, d := range in {
			if d.BoundingBox().Dx()*d.BoundingBox().Dy() >= area {
				out = append(out, d)
			}
		}
		return out
	}
}

// NewScoreFilter returns a function that filters out detections below a certain confidence.
func NewScoreFilter(conf float64) Postprocessor {
	return func(in []Detection) []Detection {
		out := make([]Detection, 0, len(in))
		for _, d := range in {
			if d.Score() >= conf {
				out = append(out, d)
			}
		}
		return out
	}
}

// NewMinSizeFilter returns a function that filters out detections narrower or shorter than the
// given pixel sizes.
func NewMinSizeFilter(minWidth, minHeight float64) Postprocessor {
	return func(in []Detection) []Detection {
		out := make([]Detection, 0, len(in))
		for _, d := range in {
			box := d.PixelBox()
			if box.Width >= minWidth && box.Height >= minHeight {
				out = append(out, d)
			}
		}
		return out
	}
}

// Compose chains postprocessors, applying them left to right. Nil entries are skipped.
func Compose(ps ...Postprocessor) Postprocessor {
	return func(in []Detection) []Detection {
		out := in
		for _, p := range ps {
			if p != nil {
				out = p(out)
			}
		}
		return out
	}
}
