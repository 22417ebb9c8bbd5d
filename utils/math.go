package utils

import (
	"math"
)

// DegToRad converts degrees to radians.
func DegToRad(degrees float64) float64 {
	return degrees * math.Pi / 180
}

// RadToDeg converts radians to degrees.
func RadToDeg(radians float64) float64 {
	return radians * 180 / math.Pi
}

// Clamp limits x to the closed range [minimum, maximum].
func Clamp(x, minimum, maximum float64) float64 {
	return math.Max(minimum, math.Min(x, maximum))
}
