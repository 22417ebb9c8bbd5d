package objectdetection

import (
	"math"

	"go.viam.com/synthlabel/rimage/transform"
	"go.viam.com/synthlabel/utils"
)

// Clamp limits x to the unit interval.
func Clamp(x float64) float64 {
	return utils.Clamp(x, 0, 1)
}

// BoundsAccumulator tracks the running extent of projected points. The zero value is ready to use.
type BoundsAccumulator struct {
	count      int
	minU, minV float64
	maxU, maxV float64
}

// Add extends the extent by one point.
func (acc *BoundsAccumulator) Add(u, v float64) {
	if acc.count == 0 {
		acc.minU, acc.maxU = u, u
		acc.minV, acc.maxV = v, v
	} else {
		acc.minU = math.Min(acc.minU, u)
		acc.maxU = math.Max(acc.maxU, u)
		acc.minV = math.Min(acc.minV, v)
		acc.maxV = math.Max(acc.maxV, v)
	}
	acc.count++
}

// AddPoints extends the extent by every point in pts.
func (acc *BoundsAccumulator) AddPoints(pts []transform.ProjectedPoint) {
	for _, pt := range pts {
		acc.Add(pt.U, pt.V)
	}
}

// Count returns the number of points seen.
func (acc *BoundsAccumulator) Count() int {
	return acc.count
}

// Suppressed reports whether the accumulated extent is judged not usably visible: its clamped
// center sits on a frame corner, or it spans the whole frame horizontally or vertically.
func (acc *BoundsAccumulator) Suppressed() bool {
	if acc.count == 0 {
		return true
	}
	centerU := Clamp((acc.maxU + acc.minU) / 2)
	centerV := Clamp((acc.maxV + acc.minV) / 2)
	if onEdge(centerU) && onEdge(centerV) {
		return true
	}
	if acc.minU <= 0 && acc.maxU >= 1 {
		return true
	}
	return acc.minV <= 0 && acc.maxV >= 1
}

func onEdge(x float64) bool {
	return x == 0 || x == 1
}

// Box returns the accumulated extent clamped to the frame, or an empty box when suppressed.
func (acc *BoundsAccumulator) Box(dimX, dimY float64) Box {
	if acc.Suppressed() {
		return Box{DimX: dimX, DimY: dimY}
	}
	return Box{
		MinU: Clamp(acc.minU),
		MinV: Clamp(acc.minV),
		MaxU: Clamp(acc.maxU),
		MaxV: Clamp(acc.maxV),
		DimX: dimX,
		DimY: dimY,
	}
}

// Visibility returns the fraction of the accumulated extent that lies inside the frame, in [0, 1].
// A zero-area extent counts as fully visible when it is inside the frame.
func (acc *BoundsAccumulator) Visibility() float64 {
	if acc.count == 0 {
		return 0
	}
	rawArea := (acc.maxU - acc.minU) * (acc.maxV - acc.minV)
	clampedW := Clamp(acc.maxU) - Clamp(acc.minU)
	clampedH := Clamp(acc.maxV) - Clamp(acc.minV)
	if rawArea == 0 {
		if acc.minU >= 0 && acc.maxU <= 1 && acc.minV >= 0 && acc.maxV <= 1 {
			return 1
		}
		return 0
	}
	return clampedW * clampedH / rawArea
}

// ExtractBounds accumulates every projected point and returns the resulting Box.
func ExtractBounds(pts []transform.ProjectedPoint, dimX, dimY float64) Box {
	var acc BoundsAccumulator
	acc.AddPoints(pts)
	return acc.Box(dimX, dimY)
}
