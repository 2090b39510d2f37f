// Package scene ties the shapes, the ball pool and picking together.
//
// Shape switching, ticks and picks are mutually exclusive. A caller that
// overlaps them gets ErrBusy instead of blocking. Work that must change the
// scene from inside a tick, such as a collision handler switching shapes,
// goes through Defer and runs at the start of the next Update.
package scene

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/aib/MPv2/internal/assets"
	"github.com/aib/MPv2/internal/balls"
	"github.com/aib/MPv2/internal/camera"
	"github.com/aib/MPv2/internal/physics"
	"github.com/aib/MPv2/internal/picking"
	"github.com/aib/MPv2/pkg/mesh"
)

// Scene errors.
var (
	ErrBusy       = errors.New("scene busy")
	ErrShapeIndex = errors.New("shape index out of range")
	ErrNoShapes   = errors.New("scene has no shapes")
)

// Shape is a named mesh the balls can bounce in.
type Shape struct {
	Name string
	Mesh *mesh.Mesh

	batch *picking.Batch
}

// NewShape wraps a mesh for use in a scene.
func NewShape(name string, m *mesh.Mesh) *Shape {
	return &Shape{Name: name, Mesh: m, batch: picking.NewBatch(m)}
}

// Scene holds the shapes, the active shape and the balls inside it.
type Scene struct {
	guard sync.Mutex // Held by SetShape, Update and Pick; never waited on

	shapes   []*Shape
	active   int
	resolver *physics.Resolver
	balls    *balls.Manager
	camera   *camera.OrbitCamera

	handler physics.CollisionHandler
	log     *zap.Logger

	resolverOpts []physics.Option
	ballOpts     []balls.Option

	deferMu  sync.Mutex
	deferred []func(*Scene)

	collisions int
}

// Option configures a Scene.
type Option func(*Scene)

// WithHandler sets the handler that receives every collision.
func WithHandler(h physics.CollisionHandler) Option {
	return func(s *Scene) { s.handler = h }
}

// WithLogger sets the logger. The resolver and ball pool log through
// named children of it.
func WithLogger(l *zap.Logger) Option {
	return func(s *Scene) {
		if l != nil {
			s.log = l
		}
	}
}

// WithResolverOptions passes options to the collision resolver.
func WithResolverOptions(opts ...physics.Option) Option {
	return func(s *Scene) { s.resolverOpts = append(s.resolverOpts, opts...) }
}

// WithBallOptions passes options to the ball pool.
func WithBallOptions(opts ...balls.Option) Option {
	return func(s *Scene) { s.ballOpts = append(s.ballOpts, opts...) }
}

// New creates a scene with the first shape active and no balls.
func New(shapes []*Shape, opts ...Option) (*Scene, error) {
	if len(shapes) == 0 {
		return nil, ErrNoShapes
	}

	s := &Scene{
		shapes: shapes,
		camera: camera.NewOrbitCamera(),
		log:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	ropts := append([]physics.Option{
		physics.WithLogger(s.log.Named("physics")),
	}, s.resolverOpts...)
	// The scene forwards collisions to the external handler.
	ropts = append(ropts, physics.WithHandler(s))
	s.resolver = physics.NewResolver(shapes[0].Mesh, ropts...)

	bopts := append([]balls.Option{balls.WithLogger(s.log.Named("balls"))}, s.ballOpts...)
	s.balls = balls.NewManager(s.resolver, bopts...)

	s.camera.FitToRadius(shapes[0].Mesh.Radius())
	return s, nil
}

// Load builds a scene from named shapes resolved by an asset manager.
func Load(shapes *assets.Manager, names []string, scale float64, opts ...Option) (*Scene, error) {
	list := make([]*Shape, 0, len(names))
	for _, name := range names {
		m, err := shapes.LoadShape(name, scale)
		if err != nil {
			return nil, err
		}
		list = append(list, NewShape(name, m))
	}
	return New(list, opts...)
}

// Shapes returns the scene's shapes in index order.
func (s *Scene) Shapes() []*Shape {
	return s.shapes
}

// Active returns the active shape.
func (s *Scene) Active() *Shape {
	return s.shapes[s.active]
}

// ActiveIndex returns the index of the active shape.
func (s *Scene) ActiveIndex() int {
	return s.active
}

// ShapeIndex returns the index of the named shape, or -1.
func (s *Scene) ShapeIndex(name string) int {
	for i, sh := range s.shapes {
		if sh.Name == name {
			return i
		}
	}
	return -1
}

// Balls returns the ball pool.
func (s *Scene) Balls() *balls.Manager {
	return s.balls
}

// Camera returns the camera used for screen picking.
func (s *Scene) Camera() *camera.OrbitCamera {
	return s.camera
}

// Collisions returns the number of collisions seen so far.
func (s *Scene) Collisions() int {
	return s.collisions
}

// SetShape makes shape i active and relaunches the balls inside it.
func (s *Scene) SetShape(i int) error {
	if !s.guard.TryLock() {
		return ErrBusy
	}
	defer s.guard.Unlock()

	if i < 0 || i >= len(s.shapes) {
		return fmt.Errorf("%w: %d (have %d)", ErrShapeIndex, i, len(s.shapes))
	}

	sh := s.shapes[i]
	s.active = i
	s.resolver.SetMesh(sh.Mesh)
	s.balls.Reset()
	s.camera.FitToRadius(sh.Mesh.Radius())

	s.log.Debug("changed shape",
		zap.String("shape", sh.Name),
		zap.Int("index", i),
		zap.Int("faces", len(sh.Mesh.Faces())),
	)
	return nil
}

// Defer queues f to run at the start of the next Update, outside the tick.
// It is safe to call from a collision handler.
func (s *Scene) Defer(f func(*Scene)) {
	s.deferMu.Lock()
	s.deferred = append(s.deferred, f)
	s.deferMu.Unlock()
}

func (s *Scene) runDeferred() {
	s.deferMu.Lock()
	calls := s.deferred
	s.deferred = nil
	s.deferMu.Unlock()

	for _, f := range calls {
		f(s)
	}
}

// Update runs deferred calls, then advances every ball by dt.
func (s *Scene) Update(ctx context.Context, dt float64) error {
	s.runDeferred()

	if !s.guard.TryLock() {
		return ErrBusy
	}
	defer s.guard.Unlock()

	return s.balls.Update(ctx, dt)
}

// BallCollision logs a collision and forwards it to the handler.
func (s *Scene) BallCollision(ball *physics.Ball, face *mesh.Face, point mgl64.Vec3) {
	s.collisions++
	if ce := s.log.Check(zapcore.DebugLevel, "ball hit face"); ce != nil {
		ce.Write(
			zap.Int("face", face.Index),
			zap.Float64s("point", point[:]),
		)
	}
	if s.handler != nil {
		s.handler.BallCollision(ball, face, point)
	}
}

// Pick returns the nearest triangle of the active shape hit by q.
func (s *Scene) Pick(q picking.Query) (picking.Result, bool, error) {
	if !s.guard.TryLock() {
		return picking.Result{}, false, ErrBusy
	}
	defer s.guard.Unlock()

	res, ok := s.Active().batch.PickNearest(q)
	if ok {
		s.log.Debug("picked face", zap.Int("face", res.Face), zap.Float64("time", res.Time))
	}
	return res, ok, nil
}

// PickScreen picks through the camera at pixel (x, y) of a width x height
// viewport.
func (s *Scene) PickScreen(x, y, width, height float64) (picking.Result, bool, error) {
	if height <= 0 {
		return picking.Result{}, false, nil
	}
	view := s.camera.ViewMatrix()
	proj := s.camera.ProjectionMatrix(width / height)
	ray, ok := picking.ScreenToRay(x, y, width, height, view, proj)
	if !ok {
		return picking.Result{}, false, nil
	}
	return s.Pick(ray.Query())
}
