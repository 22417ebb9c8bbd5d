package dataset

import (
	"context"
	"math"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"go.uber.org/multierr"

	"go.viam.com/synthlabel/config"
	"go.viam.com/synthlabel/logging"
	"go.viam.com/synthlabel/rimage/transform"
	"go.viam.com/synthlabel/utils"
	"go.viam.com/synthlabel/vision/objectdetection"
)

// Generator labels the frames of a scene and writes them into a project directory.
type Generator struct {
	scene       Scene
	cfg         *config.Config
	logger      logging.Logger
	postprocess objectdetection.Postprocessor
	runID       string
}

// NewGenerator returns a generator for the scene. The config must be valid.
func NewGenerator(scene Scene, cfg *config.Config, logger logging.Logger) (*Generator, error) {
	if scene == nil {
		return nil, errors.New("generator needs a scene")
	}
	if cfg == nil {
		return nil, errors.New("generator needs a config")
	}
	if err := cfg.Validate("config"); err != nil {
		return nil, err
	}

	var filters []objectdetection.Postprocessor
	if cfg.MinBoxAreaPx > 0 {
		filters = append(filters, objectdetection.NewAreaFilter(cfg.MinBoxAreaPx))
	}
	if cfg.MinVisibility > 0 {
		filters = append(filters, objectdetection.NewScoreFilter(cfg.MinVisibility))
	}

	return &Generator{
		scene:       scene,
		cfg:         cfg,
		logger:      logger,
		postprocess: objectdetection.Compose(filters...),
		runID:       uuid.New().String(),
	}, nil
}

// RunID identifies this generator's run in the metadata and the progress ledger.
func (g *Generator) RunID() string {
	return g.runID
}

// camera returns the frame's camera with the configured field of view applied.
func (g *Generator) camera(frame *FrameState) (*transform.Camera, error) {
	if frame.Camera == nil {
		return nil, errors.Wrapf(transform.ErrInvalidCamera, "frame %d has no camera", frame.Index)
	}
	cam := *frame.Camera
	if g.cfg.FOV > 0 && cam.Type == transform.Perspective {
		cam.FOV = utils.DegToRad(g.cfg.FOV)
	}
	if err := cam.CheckValid(); err != nil {
		return nil, errors.Wrapf(err, "frame %d", frame.Index)
	}
	return &cam, nil
}

// LabelFrame computes the labels of one frame, ordered as the scene's labeled objects. Objects
// without a usable box are left out.
func (g *Generator) LabelFrame(ctx context.Context, frame *FrameState) (objectdetection.LabelSet, error) {
	if frame == nil {
		return nil, errors.New("cannot label a nil frame")
	}
	cam, err := g.camera(frame)
	if err != nil {
		return nil, err
	}
	names := g.scene.LabeledObjects()
	if err := CheckObjects(frame, names); err != nil {
		return nil, err
	}
	dimX, dimY := cam.RenderSize()

	detections := make([]objectdetection.Detection, len(names))
	fs := make([]utils.SimpleFunc, 0, len(names))
	for i, name := range names {
		mesh := frame.Meshes[name]
		fs = append(fs, func(ctx context.Context) error {
			pts, err := transform.ProjectMesh(cam, mesh)
			if err != nil {
				return errors.Wrapf(err, "object %q", name)
			}
			var acc objectdetection.BoundsAccumulator
			acc.AddPoints(pts)
			box := acc.Box(dimX, dimY).Tuple()
			if box.IsZero() {
				g.logger.Debugw("no box", "frame", frame.Index, "object", name)
				return nil
			}
			detections[i] = objectdetection.NewDetection(box, acc.Visibility(), name)
			return nil
		})
	}
	elapsed, err := utils.RunInParallel(ctx, fs)
	if err != nil {
		return nil, errors.Wrapf(err, "frame %d", frame.Index)
	}

	found := lo.Filter(detections, func(d objectdetection.Detection, _ int) bool { return d != nil })
	kept := g.postprocess(found)
	if dropped := len(found) - len(kept); dropped > 0 {
		g.logger.Debugw("filtered detections", "frame", frame.Index, "dropped", dropped)
	}

	labels := make(objectdetection.LabelSet, 0, len(kept))
	for _, d := range kept {
		labels = append(labels, objectdetection.Normalize(d.PixelBox(), dimX, dimY, g.cfg.ClassID))
	}
	g.logger.Debugw("frame labeled", "frame", frame.Index, "labels", len(labels), "elapsed", elapsed)
	return labels, nil
}

// Run labels every frame from frame_start to frame_end inclusive, in order, and writes the run
// metadata. Every labeled object must exist in the first frame before anything is written.
func (g *Generator) Run(ctx context.Context) (md *Metadata, err error) {
	names := g.scene.LabeledObjects()
	if len(names) == 0 {
		g.logger.Warn("no labeled objects in scene; label files will be empty")
	}

	first, err := g.scene.Frame(ctx, g.cfg.FrameStart)
	if err != nil {
		return nil, err
	}
	if err := CheckObjects(first, names); err != nil {
		return nil, err
	}
	cam, err := g.camera(first)
	if err != nil {
		return nil, err
	}

	projectDir := g.cfg.ProjectDir
	if err := prepareDirs(projectDir, g.cfg.Resume); err != nil {
		return nil, err
	}
	ledger, err := OpenLedger(ctx, filepath.Join(projectDir, LedgerFile))
	if err != nil {
		return nil, err
	}
	defer func() {
		err = multierr.Combine(err, ledger.Close())
	}()
	if !g.cfg.Resume {
		if err := ledger.Reset(ctx); err != nil {
			return nil, err
		}
	}

	g.logger.Infow("labeling frames",
		"run_id", g.runID,
		"frame_start", g.cfg.FrameStart,
		"frame_end", g.cfg.FrameEnd,
		"objects", len(names))

	for index := g.cfg.FrameStart; index <= g.cfg.FrameEnd; index++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if g.cfg.Resume {
			done, err := ledger.IsDone(ctx, index)
			if err != nil {
				return nil, err
			}
			if done {
				g.logger.Debugw("skipping completed frame", "frame", index)
				continue
			}
		}

		frame := first
		if index != g.cfg.FrameStart {
			if frame, err = g.scene.Frame(ctx, index); err != nil {
				return nil, err
			}
		}
		labels, err := g.LabelFrame(ctx, frame)
		if err != nil {
			return nil, err
		}
		if err := WriteLabels(projectDir, index, labels); err != nil {
			return nil, err
		}
		if err := ledger.MarkDone(ctx, index, g.runID, len(labels)); err != nil {
			return nil, err
		}
		g.logger.Infow("wrote labels", "frame", index, "labels", len(labels))
	}

	md = g.metadata(cam, names)
	if err := WriteMetadata(projectDir, md); err != nil {
		return nil, err
	}

	if g.cfg.Preview {
		frames := make([]int, 0, g.cfg.FrameEnd-g.cfg.FrameStart+1)
		for index := g.cfg.FrameStart; index <= g.cfg.FrameEnd; index++ {
			frames = append(frames, index)
		}
		if _, err := RenderPreviews(ctx, projectDir, frames, g.logger); err != nil {
			return nil, err
		}
	}
	return md, nil
}

func (g *Generator) metadata(cam *transform.Camera, names []string) *Metadata {
	dimX, dimY := cam.RenderSize()
	md := &Metadata{
		Altitude:       g.cfg.Altitude,
		TiltAngle:      g.cfg.TiltAngle,
		ObjectsCount:   len(names),
		PathLength:     g.scene.PathLength(),
		FrameStart:     g.cfg.FrameStart,
		FrameEnd:       g.cfg.FrameEnd,
		RunID:          g.runID,
		ImageWidth:     int(math.Round(dimX)),
		ImageHeight:    int(math.Round(dimY)),
		ClassID:        g.cfg.ClassID,
		LabeledObjects: append([]string{}, names...),
	}
	if cam.Type == transform.Perspective {
		md.FOV = utils.RadToDeg(cam.FOV)
	}
	if intrinsics, err := cam.Intrinsics(); err == nil {
		md.Intrinsics = intrinsics
	}
	return md
}
