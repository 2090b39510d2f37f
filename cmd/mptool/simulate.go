package main

import (
	"context"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"

	"github.com/aib/MPv2/internal/assets"
	"github.com/aib/MPv2/internal/balls"
	"github.com/aib/MPv2/internal/config"
	"github.com/aib/MPv2/internal/physics"
	"github.com/aib/MPv2/internal/scene"
	"github.com/aib/MPv2/pkg/mesh"
)

// Summary reports the outcome of a simulation run.
type Summary struct {
	Shape      string
	Ticks      int
	Simulated  time.Duration
	Elapsed    time.Duration
	Collisions int
	PerFace    map[int]int
	Recycled   int
	Balls      []physics.Ball
}

// Print writes the summary in the same layout as the other commands.
func (s *Summary) Print(w io.Writer) {
	fmt.Fprintf(w, "Shape:      %s\n", s.Shape)
	fmt.Fprintf(w, "Ticks:      %d (%v simulated in %v)\n", s.Ticks, s.Simulated, s.Elapsed.Round(time.Millisecond))
	fmt.Fprintf(w, "Collisions: %d\n", s.Collisions)
	fmt.Fprintf(w, "Recycled:   %d\n", s.Recycled)

	if len(s.PerFace) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Collisions by face:")
		faces := make([]int, 0, len(s.PerFace))
		for f := range s.PerFace {
			faces = append(faces, f)
		}
		sort.Ints(faces)
		for _, f := range faces {
			fmt.Fprintf(w, "  %3d  %d\n", f, s.PerFace[f])
		}
	}

	if len(s.Balls) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Balls:")
		for i, b := range s.Balls {
			fmt.Fprintf(w, "  %2d  at %s  heading %s\n", i, formatVec(b.Position), formatVec(b.Direction))
		}
	}
}

// simulate runs cfg's tick loop headless and collects a summary.
func simulate(ctx context.Context, cfg *config.Config, log *zap.Logger) (*Summary, error) {
	mgr := assets.NewManager()
	for _, dir := range cfg.Assets.ShapeDirs {
		if err := mgr.AddDir(dir); err != nil {
			return nil, err
		}
	}

	mode, err := cfg.BounceMode()
	if err != nil {
		return nil, err
	}

	sum := &Summary{
		Shape:   cfg.Simulation.Shape,
		PerFace: make(map[int]int),
	}
	count := physics.HandlerFunc(func(_ *physics.Ball, face *mesh.Face, _ mgl64.Vec3) {
		sum.PerFace[face.Index]++
	})

	sc, err := scene.Load(mgr, []string{cfg.Simulation.Shape}, cfg.Simulation.ShapeScale,
		scene.WithLogger(log),
		scene.WithHandler(count),
		scene.WithResolverOptions(
			physics.WithBounceMode(mode),
			physics.WithTouchingHits(cfg.Simulation.TouchingHits),
			physics.WithWorkers(cfg.Simulation.Workers),
		),
		scene.WithBallOptions(balls.WithSeed(cfg.Balls.Seed)),
	)
	if err != nil {
		return nil, err
	}

	pool := sc.Balls()
	pool.SetSpeed(cfg.Balls.Speed)
	pool.SetRadius(cfg.Balls.Radius)
	if err := pool.SetCount(cfg.Balls.Count); err != nil {
		return nil, err
	}

	m := sc.Active().Mesh
	log.Info("simulation starting",
		zap.String("shape", sum.Shape),
		zap.Int("faces", len(m.Faces())),
		zap.Int("triangles", m.TriangleCount()),
		zap.Int("balls", pool.Count()),
		zap.Stringer("bounce", mode),
		zap.Bool("touching_hits", cfg.Simulation.TouchingHits),
		zap.Duration("duration", cfg.Simulation.Duration),
	)

	dt := cfg.TickInterval().Seconds()
	ticks := cfg.Ticks()
	start := time.Now()
	for sum.Ticks < ticks {
		if err := sc.Update(ctx, dt); err != nil {
			return nil, fmt.Errorf("tick %d: %w", sum.Ticks, err)
		}
		sum.Ticks++
	}
	sum.Elapsed = time.Since(start)
	sum.Simulated = time.Duration(sum.Ticks) * cfg.TickInterval()
	sum.Collisions = sc.Collisions()
	sum.Recycled = pool.Recycled()
	for _, b := range pool.Enabled() {
		sum.Balls = append(sum.Balls, *b)
	}

	log.Info("simulation finished",
		zap.Int("ticks", sum.Ticks),
		zap.Int("collisions", sum.Collisions),
		zap.Int("recycled", sum.Recycled),
		zap.Duration("elapsed", sum.Elapsed),
	)
	return sum, nil
}
