package spatialmath

import (
	"io"
	"os"
	"reflect"

	"github.com/chenzhekl/goply"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.viam.com/utils"
)

// ReadPLY reads the vertex and face elements of a PLY stream into a mesh placed at the world
// origin. Faces with more than three corners are fan-triangulated.
func ReadPLY(r io.Reader, label string) (*Mesh, error) {
	ply, err := goply.New(r)
	if err != nil {
		return nil, errors.Wrap(err, "error reading PLY data")
	}

	plyVertices := ply.Elements("vertex")
	if len(plyVertices) == 0 {
		return nil, errors.New("PLY data contains no vertices")
	}
	vertices := make([]r3.Vector, 0, len(plyVertices))
	for i, v := range plyVertices {
		var coords [3]float64
		for j, name := range []string{"x", "y", "z"} {
			c, ok := plyNumber(v[name])
			if !ok {
				return nil, errors.Errorf("vertex %d: missing or invalid %q", i, name)
			}
			coords[j] = c
		}
		vertices = append(vertices, r3.Vector{X: coords[0], Y: coords[1], Z: coords[2]})
	}

	var triangles []*Triangle
	for i, face := range ply.Elements("face") {
		indices, ok := plyIndexList(face["vertex_indices"])
		if !ok {
			return nil, errors.Errorf("face %d: missing or invalid vertex_indices", i)
		}
		if len(indices) < 3 {
			return nil, errors.Errorf("face %d: needs at least 3 vertices, got %d", i, len(indices))
		}
		for _, idx := range indices {
			if idx < 0 || idx >= len(vertices) {
				return nil, errors.Errorf("face %d: vertex index %d out of range for %d vertices", i, idx, len(vertices))
			}
		}
		for k := 1; k+1 < len(indices); k++ {
			triangles = append(triangles, NewTriangle(vertices[indices[0]], vertices[indices[k]], vertices[indices[k+1]]))
		}
	}

	m := NewMesh(nil, vertices, label)
	m.triangles = triangles
	return m, nil
}

// ReadPLYFile reads a PLY file from disk.
func ReadPLYFile(path, label string) (*Mesh, error) {
	//nolint:gosec
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "error opening PLY file")
	}
	defer utils.UncheckedErrorFunc(f.Close)
	return ReadPLY(f, label)
}

// plyNumber converts any numeric PLY property to a float64.
func plyNumber(value interface{}) (float64, bool) {
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	default:
		return 0, false
	}
}

// plyIndexList converts a PLY list property of any integer type to indices.
func plyIndexList(value interface{}) ([]int, bool) {
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice {
		return nil, false
	}
	indices := make([]int, 0, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		n, ok := plyNumber(rv.Index(i).Interface())
		if !ok {
			return nil, false
		}
		indices = append(indices, int(n))
	}
	return indices, true
}
