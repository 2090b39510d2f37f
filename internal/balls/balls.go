// Package balls manages the pool of balls bouncing inside the active shape.
package balls

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"

	"github.com/aib/MPv2/internal/physics"
)

// MaxBalls is the size of the pool.
const MaxBalls = 16

// Defaults for newly reset balls.
const (
	DefaultSpeed  = 1.0
	DefaultRadius = 0.1
)

// ErrBallCount is returned for counts outside [0, MaxBalls].
var ErrBallCount = errors.New("ball count out of range")

// Manager owns a fixed pool of balls. Balls below the current count are
// enabled; the rest are kept but skipped.
type Manager struct {
	balls    [MaxBalls]physics.Ball
	resolver *physics.Resolver
	rng      *rand.Rand
	log      *zap.Logger

	speed  float64
	radius float64

	recycled int
}

// Option configures a Manager.
type Option func(*Manager)

// WithRand sets the random source used for launch directions.
func WithRand(r *rand.Rand) Option {
	return func(m *Manager) { m.rng = r }
}

// WithSeed seeds the random source. Zero keeps the default random seeding.
func WithSeed(seed uint64) Option {
	return func(m *Manager) {
		if seed != 0 {
			m.rng = rand.New(rand.NewPCG(seed, seed))
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.log = l
		}
	}
}

// NewManager creates an empty pool that advances balls with resolver.
func NewManager(resolver *physics.Resolver, opts ...Option) *Manager {
	m := &Manager{
		resolver: resolver,
		log:      zap.NewNop(),
		speed:    DefaultSpeed,
		radius:   DefaultRadius,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.rng == nil {
		m.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return m
}

// Resolver returns the resolver the balls are advanced with.
func (m *Manager) Resolver() *physics.Resolver {
	return m.resolver
}

// SetCount enables the first n balls and disables the rest.
// Balls that become enabled are reset.
func (m *Manager) SetCount(n int) error {
	if n < 0 || n > MaxBalls {
		return fmt.Errorf("%w: %d (max %d)", ErrBallCount, n, MaxBalls)
	}
	for i := range m.balls {
		b := &m.balls[i]
		switch {
		case i >= n:
			b.Enabled = false
		case !b.Enabled:
			m.reset(b)
			b.Enabled = true
		}
	}
	return nil
}

// Count returns the number of enabled balls.
func (m *Manager) Count() int {
	n := 0
	for i := range m.balls {
		if m.balls[i].Enabled {
			n++
		}
	}
	return n
}

// SetSpeed changes the speed of enabled balls and of balls reset later.
func (m *Manager) SetSpeed(speed float64) {
	m.speed = speed
	for _, b := range m.Enabled() {
		b.Speed = speed
	}
}

// Speed returns the current ball speed.
func (m *Manager) Speed() float64 {
	return m.speed
}

// SetRadius changes the radius of enabled balls and of balls reset later.
func (m *Manager) SetRadius(radius float64) {
	m.radius = radius
	for _, b := range m.Enabled() {
		b.Radius = radius
	}
}

// Radius returns the current ball radius.
func (m *Manager) Radius() float64 {
	return m.radius
}

// Reset relaunches every enabled ball from the origin.
func (m *Manager) Reset() {
	for _, b := range m.Enabled() {
		m.reset(b)
	}
}

// Enabled returns the enabled balls in pool order.
func (m *Manager) Enabled() []*physics.Ball {
	enabled := make([]*physics.Ball, 0, MaxBalls)
	for i := range m.balls {
		if m.balls[i].Enabled {
			enabled = append(enabled, &m.balls[i])
		}
	}
	return enabled
}

// Ball returns the ball in pool slot i, or nil if out of range.
func (m *Manager) Ball(i int) *physics.Ball {
	if i < 0 || i >= MaxBalls {
		return nil
	}
	return &m.balls[i]
}

// Recycled returns how many balls were relaunched after leaving the shape.
func (m *Manager) Recycled() int {
	return m.recycled
}

// Update advances every enabled ball by dt, then relaunches any ball that
// ended up outside the shape's bounding sphere.
func (m *Manager) Update(ctx context.Context, dt float64) error {
	enabled := m.Enabled()
	err := m.resolver.AdvanceAll(ctx, enabled, dt)

	limit := m.resolver.Mesh().Radius()
	for _, b := range enabled {
		if d := b.DistanceTo(mgl64.Vec3{}); d > limit {
			m.log.Debug("ball left the shape",
				zap.Float64("distance", d),
				zap.Float64("limit", limit),
			)
			m.reset(b)
			m.recycled++
		}
	}
	return err
}

// reset places b at the origin with a random direction and the current
// speed and radius.
func (m *Manager) reset(b *physics.Ball) {
	b.Init(mgl64.Vec3{}, m.randomDirection(), m.speed, m.radius)
}

// randomDirection returns a nonzero vector whose direction is uniform
// over the sphere.
func (m *Manager) randomDirection() mgl64.Vec3 {
	for {
		v := mgl64.Vec3{m.rng.NormFloat64(), m.rng.NormFloat64(), m.rng.NormFloat64()}
		if v.Len() > 0 {
			return v
		}
	}
}
