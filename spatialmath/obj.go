package spatialmath

import (
	"bufio"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.viam.com/utils"
)

// ReadOBJ reads the vertices and faces of a Wavefront OBJ stream into a mesh placed at the world
// origin. Polygons with more than three corners are fan-triangulated. Materials, normals and
// texture coordinates are ignored.
func ReadOBJ(r io.Reader, label string) (*Mesh, error) {
	var vertices []r3.Vector
	var triangles []*Triangle

	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		tokens := strings.Fields(line)
		keyword, rest := tokens[0], strings.Join(tokens[1:], " ")
		switch keyword {
		case "v":
			coords := spaceDelimitedStringToSlice(rest)
			if len(coords) < 3 {
				return nil, errors.Errorf("line %d: vertex needs 3 coordinates, got %d", lineNum, len(coords))
			}
			for _, c := range coords[:3] {
				if math.IsNaN(c) {
					return nil, errors.Errorf("line %d: invalid vertex %q", lineNum, rest)
				}
			}
			vertices = append(vertices, r3.Vector{X: coords[0], Y: coords[1], Z: coords[2]})
		case "f":
			fields := strings.Fields(rest)
			if len(fields) < 3 {
				return nil, errors.Errorf("line %d: face needs at least 3 vertices, got %d", lineNum, len(fields))
			}
			corners := make([]r3.Vector, 0, len(fields))
			for _, field := range fields {
				idx, err := objVertexIndex(field, len(vertices))
				if err != nil {
					return nil, errors.Wrapf(err, "line %d", lineNum)
				}
				corners = append(corners, vertices[idx])
			}
			for i := 1; i+1 < len(corners); i++ {
				triangles = append(triangles, NewTriangle(corners[0], corners[i], corners[i+1]))
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "error reading OBJ data")
	}
	if len(vertices) == 0 {
		return nil, errors.New("OBJ data contains no vertices")
	}

	m := NewMesh(nil, vertices, label)
	m.triangles = triangles
	return m, nil
}

// ReadOBJFile reads a Wavefront OBJ file from disk.
func ReadOBJFile(path, label string) (*Mesh, error) {
	//nolint:gosec
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "error opening OBJ file")
	}
	defer utils.UncheckedErrorFunc(f.Close)
	return ReadOBJ(f, label)
}

// objVertexIndex resolves the vertex part of an OBJ face reference ("7", "7/1", "7//3", "-1")
// to a zero-based index.
func objVertexIndex(ref string, numVertices int) (int, error) {
	vertexRef, _, _ := strings.Cut(ref, "/")
	idx, err := strconv.Atoi(vertexRef)
	if err != nil {
		return 0, errors.Errorf("invalid face reference %q", ref)
	}
	switch {
	case idx > 0:
		idx--
	case idx < 0:
		idx += numVertices
	default:
		return 0, errors.Errorf("face reference %q is zero", ref)
	}
	if idx < 0 || idx >= numVertices {
		return 0, errors.Errorf("face reference %q out of range for %d vertices", ref, numVertices)
	}
	return idx, nil
}
