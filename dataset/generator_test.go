package dataset

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"go.viam.com/test"

	"go.viam.com/synthlabel/logging"
	"go.viam.com/synthlabel/rimage/transform"
)

func TestNewGenerator(t *testing.T) {
	logger := logging.NewTestLogger(t)
	_, err := NewGenerator(nil, testConfig(t), logger)
	test.That(t, err, test.ShouldNotBeNil)
	_, err = NewGenerator(newFakeScene(2), nil, logger)
	test.That(t, err, test.ShouldNotBeNil)

	cfg := testConfig(t)
	cfg.ProjectDir = ""
	_, err = NewGenerator(newFakeScene(2), cfg, logger)
	test.That(t, err.Error(), test.ShouldContainSubstring, "project_dir")

	g1, err := NewGenerator(newFakeScene(2), testConfig(t), logger)
	test.That(t, err, test.ShouldBeNil)
	g2, err := NewGenerator(newFakeScene(2), testConfig(t), logger)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, g1.RunID(), test.ShouldNotBeEmpty)
	test.That(t, g1.RunID(), test.ShouldNotEqual, g2.RunID())
}

func TestLabelFrame(t *testing.T) {
	ctx := context.Background()
	logger := logging.NewTestLogger(t)
	scene := newFakeScene(2)
	frame, err := scene.Frame(ctx, 0)
	test.That(t, err, test.ShouldBeNil)

	t.Run("visible objects in order", func(t *testing.T) {
		g, err := NewGenerator(scene, testConfig(t), logger)
		test.That(t, err, test.ShouldBeNil)
		labels, err := g.LabelFrame(ctx, frame)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, labels, test.ShouldHaveLength, 2)

		test.That(t, labels[0].ClassID, test.ShouldEqual, 0)
		test.That(t, labels[0].XCenter, test.ShouldAlmostEqual, 0.5)
		test.That(t, labels[0].YCenter, test.ShouldAlmostEqual, 0.5)
		test.That(t, labels[0].Width, test.ShouldAlmostEqual, 0.5)
		test.That(t, labels[0].Height, test.ShouldAlmostEqual, 0.5)

		test.That(t, labels[1].XCenter, test.ShouldAlmostEqual, 0.95)
		test.That(t, labels[1].YCenter, test.ShouldAlmostEqual, 0.45)
		test.That(t, labels[1].Width, test.ShouldAlmostEqual, 0.1)
		test.That(t, labels[1].Height, test.ShouldAlmostEqual, 0.1)
	})

	t.Run("class id", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.ClassID = 4
		g, err := NewGenerator(scene, cfg, logger)
		test.That(t, err, test.ShouldBeNil)
		labels, err := g.LabelFrame(ctx, frame)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, labels[0].ClassID, test.ShouldEqual, 4)
	})

	t.Run("visibility filter", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.MinVisibility = 0.75
		g, err := NewGenerator(scene, cfg, logger)
		test.That(t, err, test.ShouldBeNil)
		labels, err := g.LabelFrame(ctx, frame)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, labels, test.ShouldHaveLength, 1)
		test.That(t, labels[0].XCenter, test.ShouldAlmostEqual, 0.5)
	})

	t.Run("area filter", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.MinBoxAreaPx = 600
		g, err := NewGenerator(scene, cfg, logger)
		test.That(t, err, test.ShouldBeNil)
		labels, err := g.LabelFrame(ctx, frame)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, labels, test.ShouldHaveLength, 1)
	})

	t.Run("narrower field of view", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.FOV = 60
		g, err := NewGenerator(scene, cfg, logger)
		test.That(t, err, test.ShouldBeNil)
		labels, err := g.LabelFrame(ctx, frame)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, labels, test.ShouldHaveLength, 1)
		test.That(t, labels[0].Width, test.ShouldBeGreaterThan, 0.5)
	})

	t.Run("missing object", func(t *testing.T) {
		g, err := NewGenerator(newFakeScene(2, "obj_a", "obj_missing"), testConfig(t), logger)
		test.That(t, err, test.ShouldBeNil)
		_, err = g.LabelFrame(ctx, frame)
		test.That(t, errors.Is(err, ErrMissingObject), test.ShouldBeTrue)
		test.That(t, err.Error(), test.ShouldContainSubstring, "obj_missing")
	})

	t.Run("invalid camera", func(t *testing.T) {
		g, err := NewGenerator(scene, testConfig(t), logger)
		test.That(t, err, test.ShouldBeNil)
		_, err = g.LabelFrame(ctx, &FrameState{Index: 3, Meshes: frame.Meshes})
		test.That(t, errors.Is(err, transform.ErrInvalidCamera), test.ShouldBeTrue)
		_, err = g.LabelFrame(ctx, nil)
		test.That(t, err, test.ShouldNotBeNil)
	})
}

func TestRun(t *testing.T) {
	ctx := context.Background()

	t.Run("writes labels and metadata", func(t *testing.T) {
		logger, logs := logging.NewObservedTestLogger(t)
		cfg := testConfig(t)
		test.That(t, os.MkdirAll(filepath.Join(cfg.ProjectDir, LabelsDir), 0o750), test.ShouldBeNil)
		test.That(t, os.MkdirAll(filepath.Join(cfg.ProjectDir, ImagesDir), 0o750), test.ShouldBeNil)
		stale := LabelPath(cfg.ProjectDir, 99)
		test.That(t, os.WriteFile(stale, []byte("0 0.5 0.5 0.1 0.1\n"), 0o600), test.ShouldBeNil)
		kept := filepath.Join(cfg.ProjectDir, ImagesDir, "keep.png")
		test.That(t, os.WriteFile(kept, []byte("x"), 0o600), test.ShouldBeNil)

		g, err := NewGenerator(newFakeScene(5), cfg, logger)
		test.That(t, err, test.ShouldBeNil)
		md, err := g.Run(ctx)
		test.That(t, err, test.ShouldBeNil)

		frames, err := LabeledFrames(cfg.ProjectDir)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, frames, test.ShouldResemble, []int{0, 1, 2})
		_, err = os.Stat(stale)
		test.That(t, os.IsNotExist(err), test.ShouldBeTrue)
		_, err = os.Stat(kept)
		test.That(t, err, test.ShouldBeNil)

		labels, err := ReadLabels(cfg.ProjectDir, 2)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, labels, test.ShouldHaveLength, 2)

		read, err := ReadMetadata(cfg.ProjectDir)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, read, test.ShouldResemble, md)
		test.That(t, md.Altitude, test.ShouldEqual, 200.)
		test.That(t, md.TiltAngle, test.ShouldEqual, 30.)
		test.That(t, md.ObjectsCount, test.ShouldEqual, 3)
		test.That(t, md.PathLength, test.ShouldEqual, 1234.5)
		test.That(t, md.FrameStart, test.ShouldEqual, 0)
		test.That(t, md.FrameEnd, test.ShouldEqual, 2)
		test.That(t, md.RunID, test.ShouldEqual, g.RunID())
		test.That(t, md.FOV, test.ShouldAlmostEqual, 90)
		test.That(t, md.ImageWidth, test.ShouldEqual, 200)
		test.That(t, md.ImageHeight, test.ShouldEqual, 100)
		test.That(t, md.LabeledObjects, test.ShouldResemble, []string{"obj_a", "obj_b", "obj_c"})
		test.That(t, md.Intrinsics, test.ShouldNotBeNil)

		ledger, err := OpenLedger(ctx, filepath.Join(cfg.ProjectDir, LedgerFile))
		test.That(t, err, test.ShouldBeNil)
		defer ledger.Close()
		done, err := ledger.Completed(ctx)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, done, test.ShouldResemble, []int{0, 1, 2})

		test.That(t, logs.FilterMessage("wrote labels").Len(), test.ShouldEqual, 3)
	})

	t.Run("missing object fails before writing", func(t *testing.T) {
		cfg := testConfig(t)
		g, err := NewGenerator(newFakeScene(2, "obj_a", "obj_missing"), cfg, logging.NewTestLogger(t))
		test.That(t, err, test.ShouldBeNil)
		_, err = g.Run(ctx)
		test.That(t, errors.Is(err, ErrMissingObject), test.ShouldBeTrue)
		_, err = os.Stat(filepath.Join(cfg.ProjectDir, LabelsDir))
		test.That(t, os.IsNotExist(err), test.ShouldBeTrue)
	})

	t.Run("missing frame", func(t *testing.T) {
		cfg := testConfig(t)
		g, err := NewGenerator(newFakeScene(1), cfg, logging.NewTestLogger(t))
		test.That(t, err, test.ShouldBeNil)
		_, err = g.Run(ctx)
		test.That(t, errors.Is(err, ErrMissingFrame), test.ShouldBeTrue)
		_, err = os.Stat(filepath.Join(cfg.ProjectDir, MetadataFile))
		test.That(t, os.IsNotExist(err), test.ShouldBeTrue)
	})

	t.Run("cancelled", func(t *testing.T) {
		cancelCtx, cancel := context.WithCancel(ctx)
		cancel()
		g, err := NewGenerator(newFakeScene(2), testConfig(t), logging.NewTestLogger(t))
		test.That(t, err, test.ShouldBeNil)
		_, err = g.Run(cancelCtx)
		test.That(t, errors.Is(err, context.Canceled), test.ShouldBeTrue)
	})

	t.Run("resume skips completed frames", func(t *testing.T) {
		logger := logging.NewTestLogger(t)
		cfg := testConfig(t)
		cfg.FrameEnd = 1
		g, err := NewGenerator(newFakeScene(5), cfg, logger)
		test.That(t, err, test.ShouldBeNil)
		_, err = g.Run(ctx)
		test.That(t, err, test.ShouldBeNil)

		cfg.FrameEnd = 3
		cfg.Resume = true
		scene := newFakeScene(5)
		g, err = NewGenerator(scene, cfg, logger)
		test.That(t, err, test.ShouldBeNil)
		md, err := g.Run(ctx)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, md.FrameEnd, test.ShouldEqual, 3)

		test.That(t, scene.callsFor(1), test.ShouldEqual, 0)
		test.That(t, scene.callsFor(2), test.ShouldEqual, 1)
		test.That(t, scene.callsFor(3), test.ShouldEqual, 1)

		frames, err := LabeledFrames(cfg.ProjectDir)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, frames, test.ShouldResemble, []int{0, 1, 2, 3})
	})
}
