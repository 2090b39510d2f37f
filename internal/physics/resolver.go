package physics

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"github.com/aib/MPv2/pkg/geom"
	"github.com/aib/MPv2/pkg/mesh"
)

// ErrRunawayIteration is returned when a tick needs more bounces than the
// iteration cap allows. It points at a broken mesh or a radius too large
// for the mesh features.
var ErrRunawayIteration = errors.New("runaway collision iteration")

// BounceMode selects where a ball restarts after an impact.
type BounceMode uint8

const (
	// BounceMirror reflects first and then moves along the reflected
	// direction for the impact time, so the ball turns back before
	// touching the face.
	BounceMirror BounceMode = iota
	// BounceAtContact moves the ball to the contact point, then reflects.
	BounceAtContact
)

// String returns the mode name used in configuration.
func (m BounceMode) String() string {
	switch m {
	case BounceMirror:
		return "mirror"
	case BounceAtContact:
		return "contact"
	default:
		return fmt.Sprintf("Unknown(%d)", m)
	}
}

// ParseBounceMode converts a configuration name to a BounceMode.
func ParseBounceMode(s string) (BounceMode, error) {
	switch s {
	case "", "mirror":
		return BounceMirror, nil
	case "contact":
		return BounceAtContact, nil
	default:
		return 0, fmt.Errorf("unknown bounce mode %q", s)
	}
}

// Step summarises one Advance call.
type Step struct {
	Events []CollisionEvent

	// Iterations counts passes over the triangle list, including the
	// final pass that found no impact.
	Iterations int

	// Remaining is the tick time left unresolved. Zero unless an error
	// stopped the resolution.
	Remaining float64
}

// Resolver moves balls through a mesh for a time budget, bouncing them off
// the faces they strike. The mesh is only read, so one Resolver may resolve
// several balls concurrently.
type Resolver struct {
	mesh          *mesh.Mesh
	handler       CollisionHandler
	log           *zap.Logger
	mode          BounceMode
	touching      bool
	maxIterations int
	workers       int
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithHandler sets the collision handler.
func WithHandler(h CollisionHandler) Option {
	return func(r *Resolver) { r.handler = h }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(r *Resolver) {
		if l != nil {
			r.log = l
		}
	}
}

// WithBounceMode sets the bounce mode.
func WithBounceMode(m BounceMode) Option {
	return func(r *Resolver) { r.mode = m }
}

// WithTouchingHits makes a ball that already touches a plane, or has
// rounded past it, while still moving into it strike that plane at time
// zero. Off by default, where only strictly positive impact times count.
func WithTouchingHits(on bool) Option {
	return func(r *Resolver) { r.touching = on }
}

// WithMaxIterations overrides the per-tick iteration cap.
// Zero or less uses triangle count + 1.
func WithMaxIterations(n int) Option {
	return func(r *Resolver) { r.maxIterations = n }
}

// WithWorkers sets how many balls AdvanceAll resolves at once.
func WithWorkers(n int) Option {
	return func(r *Resolver) { r.workers = n }
}

// NewResolver creates a resolver for m.
func NewResolver(m *mesh.Mesh, opts ...Option) *Resolver {
	r := &Resolver{
		mesh:    m,
		log:     zap.NewNop(),
		workers: 1,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Mesh returns the mesh balls are resolved against.
func (r *Resolver) Mesh() *mesh.Mesh {
	return r.mesh
}

// SetMesh replaces the mesh. It must not be called while a tick is running.
func (r *Resolver) SetMesh(m *mesh.Mesh) {
	r.mesh = m
}

// SetHandler replaces the collision handler.
func (r *Resolver) SetHandler(h CollisionHandler) {
	r.handler = h
}

func (r *Resolver) iterationLimit() int {
	if r.maxIterations > 0 {
		return r.maxIterations
	}
	return r.mesh.TriangleCount() + 1
}

// Advance moves ball for dt, resolving every impact on the way. The handler
// is called for each impact before the ball bounces.
func (r *Resolver) Advance(ball *Ball, dt float64) (Step, error) {
	return r.resolve(ball, dt, r.notify)
}

func (r *Resolver) notify(ball *Ball, ev CollisionEvent) {
	if r.handler == nil {
		return
	}
	r.handler.BallCollision(ball, r.mesh.Face(ev.Face), ev.Point)
}

func (r *Resolver) resolve(ball *Ball, dt float64, emit func(*Ball, CollisionEvent)) (Step, error) {
	var step Step
	if !ball.Enabled || dt <= 0 {
		return step, nil
	}

	tris := r.mesh.Triangles()
	limit := r.iterationLimit()
	// Triangles already struck this tick, by arena index.
	struck := make([]bool, len(tris))
	remaining := dt

	for remaining > 0 {
		if step.Iterations >= limit {
			step.Remaining = remaining
			r.log.Error("collision iteration cap reached",
				zap.Int("iterations", step.Iterations),
				zap.Int("events", len(step.Events)),
				zap.Float64("remaining", remaining),
				zap.Float64("radius", ball.Radius),
			)
			return step, fmt.Errorf("%w: %d iterations with %.6g of %.6g left", ErrRunawayIteration, step.Iterations, remaining, dt)
		}
		step.Iterations++

		vel := ball.Velocity()
		best := -1
		var bestHit geom.Hit
		for i := range tris {
			if struck[i] {
				continue
			}
			hit, ok := r.impact(tris[i].Triangle, ball.Position, vel, ball.Radius, remaining)
			if !ok {
				continue
			}
			if best < 0 || hit.Time < bestHit.Time {
				best, bestHit = i, hit
			}
		}
		if best < 0 {
			break
		}

		tri := &tris[best]
		remaining -= bestHit.Time
		ev := CollisionEvent{
			Triangle: best,
			Face:     tri.Face,
			Time:     dt - remaining,
			Point:    bestHit.Point,
		}
		step.Events = append(step.Events, ev)
		if ce := r.log.Check(zapcore.DebugLevel, "ball collision"); ce != nil {
			ce.Write(zap.Int("face", ev.Face), zap.Int("triangle", ev.Triangle), zap.Float64("time", ev.Time))
		}
		if emit != nil {
			emit(ball, ev)
		}

		struck[best] = true
		switch r.mode {
		case BounceAtContact:
			ball.Position = ball.Position.Add(vel.Mul(bestHit.Time))
			ball.Direction = geom.Reflect(tri.Normal.Mul(-1), ball.Direction)
		default:
			ball.Direction = geom.Reflect(tri.Normal.Mul(-1), ball.Direction)
			ball.Position = ball.Position.Add(ball.Velocity().Mul(bestHit.Time))
		}
	}

	if remaining > 0 {
		ball.Position = ball.Position.Add(ball.Velocity().Mul(remaining))
	}
	return step, nil
}

// impact sweeps a ball against tri and reports a hit in (0, limit] whose
// contact point lies on the triangle. With touching hits enabled, a ball
// already on or past the plane and moving into it is struck at time zero;
// exact corner bounces leave balls in that state against the second face.
func (r *Resolver) impact(tri geom.Triangle, center, vel mgl64.Vec3, radius, limit float64) (geom.Hit, bool) {
	hit := geom.IntersectPlaneSphere(tri, center, vel, radius)
	switch {
	case hit.Ahead(limit):
	case r.touching && hit.Kind != geom.HitNone && hit.Time <= 0 && tri.Normal.Dot(vel) > 0:
		hit.Time = 0
	default:
		return hit, false
	}
	return hit, geom.TriangleContainsPoint(tri, hit.Point)
}

// AdvanceAll advances every enabled ball by dt.
//
// With more than one worker, balls are resolved concurrently and their
// events are delivered to the handler afterwards, in ball order, on the
// calling goroutine. The handler then sees each ball's end-of-tick state.
// Resolution stops at the first error.
func (r *Resolver) AdvanceAll(ctx context.Context, balls []*Ball, dt float64) error {
	if r.workers <= 1 {
		for _, b := range balls {
			if err := ctx.Err(); err != nil {
				return err
			}
			if _, err := r.Advance(b, dt); err != nil {
				return err
			}
		}
		return nil
	}

	steps := make([]Step, len(balls))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for i, b := range balls {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			step, err := r.resolve(b, dt, nil)
			steps[i] = step
			return err
		})
	}
	err := g.Wait()

	for i, step := range steps {
		for _, ev := range step.Events {
			r.notify(balls[i], ev)
		}
	}
	return err
}
