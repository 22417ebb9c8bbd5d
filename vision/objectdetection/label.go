package objectdetection

import (
	"bufio"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Label is one object in detector label format: a class id and a center-based box whose
// coordinates are fractions of the frame size.
type Label struct {
	ClassID int
	XCenter float64
	YCenter float64
	Width   float64
	Height  float64
}

// Normalize converts a pixel box into a Label for a frame of the given size. No clamping is
// done; zero-area boxes are expected to have been filtered out beforehand.
func Normalize(box PixelBox, frameWidth, frameHeight float64, classID int) Label {
	return Label{
		ClassID: classID,
		XCenter: (box.X + box.Width/2) / frameWidth,
		YCenter: (box.Y + box.Height/2) / frameHeight,
		Width:   box.Width / frameWidth,
		Height:  box.Height / frameHeight,
	}
}

// Denormalize converts the label back into a pixel box for a frame of the given size.
func (l Label) Denormalize(frameWidth, frameHeight float64) PixelBox {
	w := l.Width * frameWidth
	h := l.Height * frameHeight
	return PixelBox{
		X:      l.XCenter*frameWidth - w/2,
		Y:      l.YCenter*frameHeight - h/2,
		Width:  w,
		Height: h,
	}
}

// Corners returns the label's box as min and max fractions of the frame.
func (l Label) Corners() (xMin, yMin, xMax, yMax float64) {
	return l.XCenter - l.Width/2, l.YCenter - l.Height/2, l.XCenter + l.Width/2, l.YCenter + l.Height/2
}

// String returns the label line without its trailing newline.
func (l Label) String() string {
	var sb strings.Builder
	sb.WriteString(strconv.Itoa(l.ClassID))
	for _, v := range [...]float64{l.XCenter, l.YCenter, l.Width, l.Height} {
		sb.WriteByte(' ')
		sb.WriteString(formatFloat(v))
	}
	return sb.String()
}

// formatFloat writes the shortest representation that parses back to v. Integral values keep a
// ".0" and very small or large magnitudes use exponent form.
func formatFloat(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
	abs := math.Abs(v)
	if abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// LabelSet holds the labels of a single frame, in output order.
type LabelSet []Label

// WriteTo writes one line per label.
func (s LabelSet) WriteTo(w io.Writer) (int64, error) {
	var total int64
	for _, l := range s {
		n, err := io.WriteString(w, l.String()+"\n")
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

func (s LabelSet) String() string {
	var sb strings.Builder
	//nolint:errcheck
	s.WriteTo(&sb)
	return sb.String()
}

// ParseLabelSet reads a label file. Blank lines are ignored.
func ParseLabelSet(r io.Reader) (LabelSet, error) {
	var out LabelSet
	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if len(fields) != 5 {
			return nil, errors.Errorf("line %d: expected 5 fields, got %d", lineNum, len(fields))
		}
		classID, err := strconv.Atoi(fields[0])
		if err != nil {
			return nil, errors.Wrapf(err, "line %d: invalid class id", lineNum)
		}
		var vals [4]float64
		for i := range vals {
			vals[i], err = strconv.ParseFloat(fields[i+1], 64)
			if err != nil {
				return nil, errors.Wrapf(err, "line %d: invalid value", lineNum)
			}
		}
		out = append(out, Label{ClassID: classID, XCenter: vals[0], YCenter: vals[1], Width: vals[2], Height: vals[3]})
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "error reading labels")
	}
	return out, nil
}
