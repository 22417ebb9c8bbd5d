package spatialmath

import (
	"github.com/golang/geo/r3"
)

// Mesh is an ordered set of vertices in the mesh's local frame, optional triangle faces over
// those vertices, and the transform placing the mesh in the world.
type Mesh struct {
	label     string
	transform *Transform
	vertices  []r3.Vector
	triangles []*Triangle
}

// NewMesh creates a mesh from local vertices. A nil transform places the mesh at the world origin.
func NewMesh(transform *Transform, vertices []r3.Vector, label string) *Mesh {
	if transform == nil {
		transform = NewIdentityTransform()
	}
	return &Mesh{
		label:     label,
		transform: transform,
		vertices:  vertices,
	}
}

// NewMeshFromTriangles creates a mesh from faces. Vertices are the distinct triangle corners in
// first-seen order.
func NewMeshFromTriangles(transform *Transform, triangles []*Triangle, label string) *Mesh {
	seen := make(map[r3.Vector]struct{}, len(triangles)*3)
	vertices := make([]r3.Vector, 0, len(triangles)*3)
	for _, tri := range triangles {
		for _, pt := range tri.Points() {
			if _, ok := seen[pt]; ok {
				continue
			}
			seen[pt] = struct{}{}
			vertices = append(vertices, pt)
		}
	}
	m := NewMesh(transform, vertices, label)
	m.triangles = triangles
	return m
}

// Label returns the name of the mesh.
func (m *Mesh) Label() string {
	return m.label
}

// Transform returns the local-to-world transform of the mesh.
func (m *Mesh) Transform() *Transform {
	return m.transform
}

// Vertices returns the local vertices. Callers must not modify the returned slice.
func (m *Mesh) Vertices() []r3.Vector {
	return m.vertices
}

// Triangles returns the faces of the mesh, if any were loaded.
func (m *Mesh) Triangles() []*Triangle {
	return m.triangles
}

// WithTransform returns a mesh sharing this mesh's geometry but placed by transform.
func (m *Mesh) WithTransform(transform *Transform) *Mesh {
	return &Mesh{
		label:     m.label,
		transform: transform,
		vertices:  m.vertices,
		triangles: m.triangles,
	}
}

// Transformed returns the mesh moved by toPremultiply. Vertices stay in the mesh frame, so only
// the transform changes.
func (m *Mesh) Transformed(toPremultiply *Transform) *Mesh {
	return m.WithTransform(Compose(toPremultiply, m.transform))
}

// WorldVertices returns every vertex in world coordinates, in order.
func (m *Mesh) WorldVertices() []r3.Vector {
	return m.transform.ApplyAll(m.vertices)
}
