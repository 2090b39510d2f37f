// mptool runs and inspects ball simulations inside polyhedral shells.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"

	"github.com/aib/MPv2/internal/assets"
	"github.com/aib/MPv2/internal/config"
	"github.com/aib/MPv2/internal/logger"
	"github.com/aib/MPv2/internal/picking"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "shapes", "ls":
		cmdShapes(args)
	case "info":
		cmdInfo(args)
	case "simulate", "run":
		cmdSimulate(args)
	case "pick":
		cmdPick(args)
	case "config":
		cmdConfig(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`mptool - bouncing balls in polyhedral shells

Usage:
  mptool <command> [options]

Commands:
  shapes [dir]                         List built-in shapes and shapes in dir
  info [-scale S] <shape>              Show mesh statistics
  simulate [flags]                     Run a headless simulation
  pick [-scale S] [-radius R] <shape> <ox oy oz> <dx dy dz>
                                       Find the nearest triangle hit by a sweep
  config [flags] [path]                Print or write the effective config

Examples:
  mptool info icosahedron
  mptool simulate -balls 8 -speed 2 -duration 30s -debug
  mptool pick -radius 0.1 hexahedron 0 0 0 1 0.2 0
  mptool config -balls 4 ./mpv2.yaml`)
}

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

func cmdShapes(args []string) {
	mgr := assets.NewManager()
	if len(args) > 0 {
		if err := mgr.AddDir(args[0]); err != nil {
			fail("Error: %v", err)
		}
	}
	names, err := mgr.ShapeNames()
	if err != nil {
		fail("Error: %v", err)
	}
	for _, name := range names {
		fmt.Println(name)
	}
}

func cmdInfo(args []string) {
	fs := flag.NewFlagSet("info", flag.ExitOnError)
	scale := fs.Float64("scale", 1, "Vertex scale")
	dir := fs.String("shape-dir", "", "Extra directory of .obj shapes")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fail("Usage: mptool info [-scale S] <shape>")
	}

	mgr, err := newAssets(*dir)
	if err != nil {
		fail("Error: %v", err)
	}
	m, err := mgr.LoadShape(fs.Arg(0), *scale)
	if err != nil {
		fail("Error: %v", err)
	}

	b := m.Bounds()
	fmt.Printf("Shape:     %s\n", fs.Arg(0))
	fmt.Printf("Faces:     %d\n", len(m.Faces()))
	fmt.Printf("Triangles: %d\n", m.TriangleCount())
	fmt.Printf("Radius:    %.4f\n", m.Radius())
	fmt.Printf("Feature:   %.4f\n", m.MinFeatureSize())
	fmt.Printf("Bounds:    %s - %s\n", formatVec(b.Min), formatVec(b.Max))
	fmt.Println()
	fmt.Println("Faces:")
	for i := range m.Faces() {
		f := m.Face(i)
		fmt.Printf("  %3d  %d verts  normal %s\n", f.Index, len(f.Vertices), formatVec(f.Normal))
	}
}

func cmdSimulate(args []string) {
	if err := config.ParseFlags(args); err != nil {
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fail("Config error: %v", err)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fail("Logger error: %v", err)
	}
	defer logger.Sync()

	logger.Info("=== MPv2 simulation ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sum, err := simulate(ctx, cfg, logger.Log)
	if err != nil {
		logger.Error("simulation failed", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
	sum.Print(os.Stdout)
}

func cmdPick(args []string) {
	fs := flag.NewFlagSet("pick", flag.ExitOnError)
	scale := fs.Float64("scale", 1, "Vertex scale")
	radius := fs.Float64("radius", 0, "Sweep radius (0 = ray)")
	maxTime := fs.Float64("max-time", -1, "Largest accepted hit time (negative = unbounded)")
	dir := fs.String("shape-dir", "", "Extra directory of .obj shapes")
	fs.Parse(args)

	if fs.NArg() < 7 {
		fail("Usage: mptool pick [-scale S] [-radius R] <shape> <ox oy oz> <dx dy dz>")
	}

	origin, err := parseVec(fs.Args()[1:4])
	if err != nil {
		fail("Error: origin: %v", err)
	}
	direction, err := parseVec(fs.Args()[4:7])
	if err != nil {
		fail("Error: direction: %v", err)
	}

	mgr, err := newAssets(*dir)
	if err != nil {
		fail("Error: %v", err)
	}
	m, err := mgr.LoadShape(fs.Arg(0), *scale)
	if err != nil {
		fail("Error: %v", err)
	}

	res, ok := picking.PickNearest(m, picking.Query{
		Origin:     origin,
		Direction:  direction,
		Radius:     *radius,
		MaxTime:    *maxTime,
		HasMaxTime: *maxTime >= 0,
	})
	if !ok {
		fmt.Println("No hit")
		return
	}
	fmt.Printf("Face:     %d\n", res.Face)
	fmt.Printf("Triangle: %d\n", res.Triangle)
	fmt.Printf("Time:     %.6f\n", res.Time)
	fmt.Printf("Point:    %s\n", formatVec(res.Point))
}

func cmdConfig(args []string) {
	if err := config.ParseFlags(args); err != nil {
		os.Exit(1)
	}
	cfg, err := config.Load()
	if err != nil {
		fail("Config error: %v", err)
	}

	// The effective config goes to stdout unless a path is given.
	if rest := config.Args(); len(rest) > 0 {
		err = cfg.SaveTo(rest[0])
	} else {
		err = cfg.Write(os.Stdout)
	}
	if err != nil {
		fail("Error: %v", err)
	}
}

func newAssets(dir string) (*assets.Manager, error) {
	mgr := assets.NewManager()
	if dir != "" {
		if err := mgr.AddDir(dir); err != nil {
			return nil, err
		}
	}
	return mgr, nil
}

func parseVec(args []string) (mgl64.Vec3, error) {
	var v mgl64.Vec3
	if len(args) != 3 {
		return v, fmt.Errorf("expected 3 components, got %d", len(args))
	}
	for i, s := range args {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return v, err
		}
		v[i] = f
	}
	return v, nil
}

func formatVec(v mgl64.Vec3) string {
	return fmt.Sprintf("(%.4f, %.4f, %.4f)", v[0], v[1], v[2])
}
