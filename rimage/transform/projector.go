package transform

import (
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"go.viam.com/synthlabel/spatialmath"
)

// ProjectedPoint is a vertex in normalized camera-plane coordinates. (0, 0) and (1, 1) are the
// bottom-left and top-right corners of the view frame at the vertex's own depth. Depth is
// measured along the viewing direction; negative depth is behind the camera.
type ProjectedPoint struct {
	U     float64
	V     float64
	Depth float64
}

// projector holds the per-camera state needed to project a single vertex.
type projector struct {
	perspective bool
	left        float64
	width       float64
	bottom      float64
	height      float64
}

func newProjector(cam *Camera) projector {
	// The view frame sits at depth -referenceDepth; only its depth is negated so it faces forward.
	frame := cam.ViewFrame()
	left, right := frame[2].X, frame[1].X
	bottom, top := frame[1].Y, frame[0].Y
	return projector{
		perspective: cam.Type != Orthographic,
		left:        left,
		width:       right - left,
		bottom:      bottom,
		height:      top - bottom,
	}
}

func (p projector) project(pt r3.Vector) ProjectedPoint {
	depth := -pt.Z
	if !p.perspective {
		return ProjectedPoint{U: (pt.X - p.left) / p.width, V: (pt.Y - p.bottom) / p.height, Depth: depth}
	}
	if depth == 0 {
		return ProjectedPoint{U: 0.5, V: 0.5, Depth: depth}
	}
	// frame corners scaled to this vertex's depth; a negative scale mirrors the frame
	scale := depth / referenceDepth
	return ProjectedPoint{
		U:     (pt.X - p.left*scale) / (p.width * scale),
		V:     (pt.Y - p.bottom*scale) / (p.height * scale),
		Depth: depth,
	}
}

// Project maps camera-local vertices into normalized camera-plane coordinates. It returns exactly
// one point per vertex, in input order.
func Project(cam *Camera, pts []r3.Vector) []ProjectedPoint {
	p := newProjector(cam)
	out := make([]ProjectedPoint, len(pts))
	for i, pt := range pts {
		out[i] = p.project(pt)
	}
	return out
}

// ProjectMesh moves the mesh's local vertices into camera space through the mesh transform and
// the inverse camera pose, then projects them. The mesh is not modified.
func ProjectMesh(cam *Camera, mesh *spatialmath.Mesh) ([]ProjectedPoint, error) {
	if err := cam.CheckValid(); err != nil {
		return nil, err
	}
	if mesh == nil {
		return nil, errors.New("cannot project a nil mesh")
	}
	worldToCamera, err := cam.WorldToCamera()
	if err != nil {
		return nil, err
	}
	localToCamera := spatialmath.Compose(worldToCamera, mesh.Transform())

	p := newProjector(cam)
	verts := mesh.Vertices()
	out := make([]ProjectedPoint, len(verts))
	for i, v := range verts {
		out[i] = p.project(localToCamera.Apply(v))
	}
	return out, nil
}
