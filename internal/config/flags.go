package config

import "flag"

var (
	flagConfig   = flag.String("config", "", "Path to config file")
	flagDebug    = flag.Bool("debug", false, "Enable debug logging")
	flagShape    = flag.String("shape", "", "Shape to simulate")
	flagShapeDir = flag.String("shape-dir", "", "Extra directory of .obj shapes")
	flagBalls    = flag.Int("balls", -1, "Number of balls")
	flagSpeed    = flag.Float64("speed", 0, "Ball speed")
	flagRadius   = flag.Float64("radius", 0, "Ball radius")
	flagSeed     = flag.Uint64("seed", 0, "Random seed for launch directions")
	flagWorkers  = flag.Int("workers", 0, "Balls resolved in parallel")
	flagDuration = flag.Duration("duration", 0, "Simulated time")
	flagBounce   = flag.String("bounce", "", "Bounce mode: mirror or contact")
	flagLogFile  = flag.String("log-file", "", "Log file path")
)

// ParseFlags parses command-line flags from args (without the program or
// subcommand name).
func ParseFlags(args []string) error {
	return flag.CommandLine.Parse(args)
}

// Args returns the positional arguments left after ParseFlags.
func Args() []string {
	return flag.Args()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagShape != "" {
		cfg.Simulation.Shape = *flagShape
	}
	if *flagShapeDir != "" {
		cfg.Assets.ShapeDirs = append(cfg.Assets.ShapeDirs, *flagShapeDir)
	}
	if *flagBalls >= 0 {
		cfg.Balls.Count = *flagBalls
	}
	if *flagSpeed > 0 {
		cfg.Balls.Speed = *flagSpeed
	}
	if *flagRadius > 0 {
		cfg.Balls.Radius = *flagRadius
	}
	if *flagSeed != 0 {
		cfg.Balls.Seed = *flagSeed
	}
	if *flagWorkers > 0 {
		cfg.Simulation.Workers = *flagWorkers
	}
	if *flagDuration > 0 {
		cfg.Simulation.Duration = *flagDuration
	}
	if *flagBounce != "" {
		cfg.Simulation.Bounce = *flagBounce
	}
	if *flagLogFile != "" {
		cfg.Logging.LogFile = *flagLogFile
	}
}
