package spatialmath

import (
	"math"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
)

// RotationMatrix is a 3x3 rotation stored in row-major order.
type RotationMatrix struct {
	mat [9]float64
}

// NewIdentityRotation returns the rotation matrix for no rotation.
func NewIdentityRotation() *RotationMatrix {
	return &RotationMatrix{mat: [9]float64{1, 0, 0, 0, 1, 0, 0, 0, 1}}
}

// NewRotationMatrix creates a rotation matrix from 9 row-major values.
func NewRotationMatrix(m []float64) (*RotationMatrix, error) {
	if len(m) != 9 {
		return nil, errors.New("input slice for creating a rotation matrix must be of length 9")
	}
	var mat [9]float64
	copy(mat[:], m)
	return &RotationMatrix{mat: mat}, nil
}

// At returns the element at row, col.
func (rm *RotationMatrix) At(row, col int) float64 {
	return rm.mat[row*3+col]
}

// Row returns a row of the matrix as a vector.
func (rm *RotationMatrix) Row(row int) r3.Vector {
	return r3.Vector{X: rm.mat[row*3], Y: rm.mat[row*3+1], Z: rm.mat[row*3+2]}
}

// Col returns a column of the matrix as a vector.
func (rm *RotationMatrix) Col(col int) r3.Vector {
	return r3.Vector{X: rm.mat[col], Y: rm.mat[col+3], Z: rm.mat[col+6]}
}

// Mul returns rm * other.
func (rm *RotationMatrix) Mul(other *RotationMatrix) *RotationMatrix {
	var out [9]float64
	for row := 0; row < 3; row++ {
		for col := 0; col < 3; col++ {
			out[row*3+col] = rm.Row(row).Dot(other.Col(col))
		}
	}
	return &RotationMatrix{mat: out}
}

// EulerAngles are three successive rotations (in radians) about the fixed X, Y and Z axes, in
// that order. This is the XYZ convention used by most modelling tools.
type EulerAngles struct {
	Roll  float64 `json:"roll"`
	Pitch float64 `json:"pitch"`
	Yaw   float64 `json:"yaw"`
}

// NewEulerAnglesDegrees creates EulerAngles from values in degrees.
func NewEulerAnglesDegrees(roll, pitch, yaw float64) *EulerAngles {
	return &EulerAngles{
		Roll:  roll * math.Pi / 180,
		Pitch: pitch * math.Pi / 180,
		Yaw:   yaw * math.Pi / 180,
	}
}

// RotationMatrix returns Rz(yaw) * Ry(pitch) * Rx(roll).
func (ea *EulerAngles) RotationMatrix() *RotationMatrix {
	sr, cr := math.Sincos(ea.Roll)
	sp, cp := math.Sincos(ea.Pitch)
	sy, cy := math.Sincos(ea.Yaw)

	rx := &RotationMatrix{mat: [9]float64{1, 0, 0, 0, cr, -sr, 0, sr, cr}}
	ry := &RotationMatrix{mat: [9]float64{cp, 0, sp, 0, 1, 0, -sp, 0, cp}}
	rz := &RotationMatrix{mat: [9]float64{cy, -sy, 0, sy, cy, 0, 0, 0, 1}}
	return rz.Mul(ry).Mul(rx)
}
