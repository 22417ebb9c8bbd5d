package dataset

import (
	"context"
	"math"
	"sync"
	"testing"

	"github.com/golang/geo/r3"

	"go.viam.com/synthlabel/config"
	"go.viam.com/synthlabel/rimage/transform"
	"go.viam.com/synthlabel/spatialmath"
)

// fakeScene is a static scene seen by a camera at the origin looking down -z with a 90 degree
// field of view. At depth 10 the view spans x in [-10, 10] and y in [-5, 5].
type fakeScene struct {
	mu        sync.Mutex
	labeled   []string
	lastFrame int
	calls     map[int]int
}

func newFakeScene(lastFrame int, labeled ...string) *fakeScene {
	if len(labeled) == 0 {
		labeled = []string{"obj_a", "obj_b", "obj_c"}
	}
	return &fakeScene{labeled: labeled, lastFrame: lastFrame, calls: map[int]int{}}
}

func (s *fakeScene) Frame(ctx context.Context, index int) (*FrameState, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.calls[index]++
	s.mu.Unlock()
	if index < 0 || index > s.lastFrame {
		return nil, NewMissingFrameError(index)
	}
	meshes := map[string]*spatialmath.Mesh{
		// fully visible, centered
		"obj_a": spatialmath.NewMesh(nil, []r3.Vector{{X: -5, Y: -2.5, Z: -10}, {X: 5, Y: 2.5, Z: -10}}, "obj_a"),
		// wider than the view
		"obj_b": spatialmath.NewMesh(nil, []r3.Vector{{X: -20, Y: 0, Z: -10}, {X: 20, Y: 1, Z: -10}}, "obj_b"),
		// half outside the right edge
		"obj_c": spatialmath.NewMesh(nil, []r3.Vector{{X: 8, Y: 0, Z: -10}, {X: 12, Y: 1, Z: -10}}, "obj_c"),
		"tree": spatialmath.NewMesh(nil, []r3.Vector{{X: 0, Y: 0, Z: -3}}, "tree"),
	}
	return &FrameState{
		Index: index,
		Camera: &transform.Camera{
			Type:        transform.Perspective,
			FOV:         math.Pi / 2,
			SensorFit:   transform.SensorFitAuto,
			ResolutionX: 200,
			ResolutionY: 100,
		},
		Meshes: meshes,
	}, nil
}

func (s *fakeScene) LabeledObjects() []string {
	return s.labeled
}

func (s *fakeScene) PathLength() float64 {
	return 1234.5
}

func (s *fakeScene) callsFor(index int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[index]
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.ProjectDir = t.TempDir()
	cfg.ScenePath = "scene.json"
	cfg.FrameEnd = 2
	cfg.FOV = 0
	return cfg
}
