// Package config handles simulation configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/aib/MPv2/internal/balls"
	"github.com/aib/MPv2/internal/logger"
	"github.com/aib/MPv2/internal/physics"
)

// ErrInvalid is returned by Validate for out-of-range settings.
var ErrInvalid = errors.New("invalid config")

// Ball setting ranges.
const (
	MinSpeed  = 0.1
	MaxSpeed  = 10.0
	MinRadius = 0.01
	MaxRadius = 1.0
)

// Config holds all simulation settings.
type Config struct {
	Simulation SimulationConfig `yaml:"simulation"`
	Balls      BallsConfig      `yaml:"balls"`
	Assets     AssetsConfig     `yaml:"assets"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// SimulationConfig holds the shape and the tick loop settings.
type SimulationConfig struct {
	Shape      string        `yaml:"shape"`
	ShapeScale float64       `yaml:"shape_scale"`
	TickRate   int           `yaml:"tick_rate"` // Ticks per second
	Duration   time.Duration `yaml:"duration"`
	Workers    int           `yaml:"workers"` // Balls resolved in parallel
	Bounce     string        `yaml:"bounce"`  // "mirror" or "contact"

	// TouchingHits counts balls already touching a face while moving into
	// it as striking it at time zero.
	TouchingHits bool `yaml:"touching_hits"`
}

// BallsConfig holds the ball pool settings.
type BallsConfig struct {
	Count  int     `yaml:"count"`
	Speed  float64 `yaml:"speed"`
	Radius float64 `yaml:"radius"`
	Seed   uint64  `yaml:"seed"` // 0 picks a random seed
}

// AssetsConfig holds shape search paths.
type AssetsConfig struct {
	ShapeDirs []string `yaml:"shape_dirs"` // Searched before the built-in shapes
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Simulation: SimulationConfig{
			Shape:      "icosahedron",
			ShapeScale: 3.0,
			TickRate:   60,
			Duration:   10 * time.Second,
			Workers:    1,
			Bounce:     physics.BounceMirror.String(),
		},
		Balls: BallsConfig{
			Count:  1,
			Speed:  balls.DefaultSpeed,
			Radius: balls.DefaultRadius,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// TickInterval returns the simulated time per tick.
func (c *Config) TickInterval() time.Duration {
	return time.Second / time.Duration(c.Simulation.TickRate)
}

// Ticks returns the number of ticks in the configured duration.
func (c *Config) Ticks() int {
	return int(c.Simulation.Duration / c.TickInterval())
}

// BounceMode returns the parsed bounce mode.
func (c *Config) BounceMode() (physics.BounceMode, error) {
	return physics.ParseBounceMode(c.Simulation.Bounce)
}

// Validate reports the first setting that is out of range.
func (c *Config) Validate() error {
	s, b := c.Simulation, c.Balls
	switch {
	case s.Shape == "":
		return fmt.Errorf("%w: simulation.shape is empty", ErrInvalid)
	case s.ShapeScale <= 0:
		return fmt.Errorf("%w: simulation.shape_scale %v must be positive", ErrInvalid, s.ShapeScale)
	case s.TickRate <= 0:
		return fmt.Errorf("%w: simulation.tick_rate %d must be positive", ErrInvalid, s.TickRate)
	case s.Duration < 0:
		return fmt.Errorf("%w: simulation.duration %v is negative", ErrInvalid, s.Duration)
	case s.Workers < 1:
		return fmt.Errorf("%w: simulation.workers %d must be at least 1", ErrInvalid, s.Workers)
	case b.Count < 0 || b.Count > balls.MaxBalls:
		return fmt.Errorf("%w: balls.count %d outside [0, %d]", ErrInvalid, b.Count, balls.MaxBalls)
	case b.Speed < MinSpeed || b.Speed > MaxSpeed:
		return fmt.Errorf("%w: balls.speed %v outside [%v, %v]", ErrInvalid, b.Speed, MinSpeed, MaxSpeed)
	case b.Radius < MinRadius || b.Radius > MaxRadius:
		return fmt.Errorf("%w: balls.radius %v outside [%v, %v]", ErrInvalid, b.Radius, MinRadius, MaxRadius)
	}
	if _, err := c.BounceMode(); err != nil {
		return fmt.Errorf("%w: simulation.bounce: %v", ErrInvalid, err)
	}
	if _, err := logger.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("%w: logging.level: %v", ErrInvalid, err)
	}
	return nil
}
