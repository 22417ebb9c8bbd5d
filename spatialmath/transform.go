package spatialmath

import (
	"fmt"
	"math"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Transform is a 4x4 affine transformation matrix acting on column vectors. It may carry scale
// and shear in addition to a rotation and translation, like an object's world matrix in a 3D
// scene.
type Transform struct {
	m *mat.Dense
}

// NewIdentityTransform returns the transform that leaves every point unchanged.
func NewIdentityTransform() *Transform {
	m := mat.NewDense(4, 4, nil)
	for i := 0; i < 4; i++ {
		m.Set(i, i, 1)
	}
	return &Transform{m}
}

// NewTransform composes a translation, rotation and per-axis scale as T * R * S.
// A nil rotation means no rotation.
func NewTransform(translation r3.Vector, rotation *RotationMatrix, scale r3.Vector) *Transform {
	if rotation == nil {
		rotation = NewIdentityRotation()
	}
	m := mat.NewDense(4, 4, nil)
	s := [3]float64{scale.X, scale.Y, scale.Z}
	for row := 0; row < 3; row++ {
		for col := 0; col < 3; col++ {
			m.Set(row, col, rotation.At(row, col)*s[col])
		}
	}
	m.Set(0, 3, translation.X)
	m.Set(1, 3, translation.Y)
	m.Set(2, 3, translation.Z)
	m.Set(3, 3, 1)
	return &Transform{m}
}

// NewTranslation returns a pure translation.
func NewTranslation(translation r3.Vector) *Transform {
	return NewTransform(translation, nil, r3.Vector{X: 1, Y: 1, Z: 1})
}

// NewTransformFromMatrix builds a transform from 16 row-major values.
func NewTransformFromMatrix(values []float64) (*Transform, error) {
	if len(values) != 16 {
		return nil, errors.Errorf("transform matrix needs 16 values, got %d", len(values))
	}
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, errors.Errorf("transform matrix value %d is not finite: %v", i, v)
		}
	}
	data := make([]float64, 16)
	copy(data, values)
	return &Transform{mat.NewDense(4, 4, data)}, nil
}

// At returns the matrix element at row i, column j.
func (t *Transform) At(i, j int) float64 {
	return t.m.At(i, j)
}

// Matrix returns a copy of the underlying 4x4 matrix.
func (t *Transform) Matrix() *mat.Dense {
	return mat.DenseCopyOf(t.m)
}

// Translation returns the translation column.
func (t *Transform) Translation() r3.Vector {
	return r3.Vector{X: t.m.At(0, 3), Y: t.m.At(1, 3), Z: t.m.At(2, 3)}
}

// Apply transforms a point. The homogeneous coordinate is divided out when the transform is
// projective.
func (t *Transform) Apply(pt r3.Vector) r3.Vector {
	m := t.m
	x := m.At(0, 0)*pt.X + m.At(0, 1)*pt.Y + m.At(0, 2)*pt.Z + m.At(0, 3)
	y := m.At(1, 0)*pt.X + m.At(1, 1)*pt.Y + m.At(1, 2)*pt.Z + m.At(1, 3)
	z := m.At(2, 0)*pt.X + m.At(2, 1)*pt.Y + m.At(2, 2)*pt.Z + m.At(2, 3)
	w := m.At(3, 0)*pt.X + m.At(3, 1)*pt.Y + m.At(3, 2)*pt.Z + m.At(3, 3)
	if w != 1 && w != 0 {
		return r3.Vector{X: x / w, Y: y / w, Z: z / w}
	}
	return r3.Vector{X: x, Y: y, Z: z}
}

// ApplyAll transforms every point, preserving order.
func (t *Transform) ApplyAll(pts []r3.Vector) []r3.Vector {
	out := make([]r3.Vector, len(pts))
	for i, pt := range pts {
		out[i] = t.Apply(pt)
	}
	return out
}

// Compose returns a * b, i.e. the transform that applies b first and then a.
func Compose(a, b *Transform) *Transform {
	var m mat.Dense
	m.Mul(a.m, b.m)
	return &Transform{&m}
}

// Inverse returns the inverse transform, or an error when the matrix is singular.
func (t *Transform) Inverse() (*Transform, error) {
	var inv mat.Dense
	if err := inv.Inverse(t.m); err != nil {
		return nil, errors.Wrap(err, "transform is not invertible")
	}
	return &Transform{&inv}, nil
}

// Normalized returns a copy whose three axis columns have unit length, removing any scale while
// keeping rotation and translation.
func (t *Transform) Normalized() *Transform {
	out := mat.DenseCopyOf(t.m)
	for col := 0; col < 3; col++ {
		axis := r3.Vector{X: out.At(0, col), Y: out.At(1, col), Z: out.At(2, col)}
		norm := axis.Norm()
		if norm == 0 {
			continue
		}
		for row := 0; row < 3; row++ {
			out.Set(row, col, out.At(row, col)/norm)
		}
	}
	return &Transform{out}
}

func (t *Transform) String() string {
	return fmt.Sprintf("%v", mat.Formatted(t.m, mat.Squeeze()))
}

// TransformAlmostEqual returns whether every element of the two transforms differs by at most epsilon.
func TransformAlmostEqual(a, b *Transform, epsilon float64) bool {
	return mat.EqualApprox(a.m, b.m, epsilon)
}
