// Package physics advances balls inside a mesh shell and bounces them off its faces.
package physics

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/aib/MPv2/pkg/geom"
	"github.com/aib/MPv2/pkg/mesh"
)

// Ball is a moving sphere. Velocity is always Direction * Speed.
type Ball struct {
	Position  mgl64.Vec3
	Direction mgl64.Vec3 // Unit length
	Speed     float64
	Radius    float64
	Enabled   bool
}

// Init places the ball and normalises dir.
func (b *Ball) Init(pos, dir mgl64.Vec3, speed, radius float64) {
	b.Position = pos
	b.Direction = geom.Normalize(dir)
	b.Speed = speed
	b.Radius = radius
}

// Velocity returns Direction * Speed.
func (b *Ball) Velocity() mgl64.Vec3 {
	return b.Direction.Mul(b.Speed)
}

// DistanceTo returns the distance from the ball's center to p.
func (b *Ball) DistanceTo(p mgl64.Vec3) float64 {
	return b.Position.Sub(p).Len()
}

// CollisionEvent describes one impact resolved during a tick.
type CollisionEvent struct {
	Triangle int // Arena index of the struck triangle
	Face     int // Index of the struck face

	// Time is measured from the start of the tick, in (0, dt]. Touching
	// hits, when enabled, report 0.
	Time float64

	// Point is the sphere's leading point at impact.
	Point mgl64.Vec3
}

// CollisionHandler reacts to a ball striking a face.
// It runs on the goroutine that called the resolver and must not re-enter
// the resolver for the same ball.
type CollisionHandler interface {
	BallCollision(ball *Ball, face *mesh.Face, point mgl64.Vec3)
}

// HandlerFunc adapts a function to CollisionHandler.
type HandlerFunc func(ball *Ball, face *mesh.Face, point mgl64.Vec3)

// BallCollision calls f.
func (f HandlerFunc) BallCollision(ball *Ball, face *mesh.Face, point mgl64.Vec3) {
	f(ball, face, point)
}
