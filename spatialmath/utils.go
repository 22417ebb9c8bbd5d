package spatialmath

import (
	"math"
	"strconv"
	"strings"
)

// spaceDelimitedStringToSlice splits space-delimited numeric fields, such as OBJ vertex records.
// Unparseable fields become NaN.
func spaceDelimitedStringToSlice(s string) []float64 {
	var converted []float64
	slice := strings.Fields(s)
	for _, value := range slice {
		value, err := strconv.ParseFloat(value, 64)
		if err != nil {
			value = math.NaN()
		}
		converted = append(converted, value)
	}
	return converted
}
