// Package camera provides an orbit camera for viewing and picking shapes.
package camera

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/aib/MPv2/pkg/geom"
)

// Default view parameters.
const (
	DefaultFovY = math.Pi / 4
	DefaultNear = 0.1
	DefaultFar  = 100.0
)

// OrbitCamera orbits around a target point on a sphere.
type OrbitCamera struct {
	Target mgl64.Vec3
	Up     mgl64.Vec3

	// Spherical coordinates
	Azimuth  float64 // From +X toward +Z, radians
	Polar    float64 // From +Y, radians
	Distance float64 // Distance from target

	// Projection
	FovY float64
	Near float64
	Far  float64

	// Constraints
	MinDistance float64
	MaxDistance float64
	MinPolar    float64
	MaxPolar    float64

	// Sensitivity
	DragSensitivity float64
	ZoomSensitivity float64
}

// NewOrbitCamera creates a camera looking at the origin from slightly above.
func NewOrbitCamera() *OrbitCamera {
	return &OrbitCamera{
		Up:              mgl64.Vec3{0, 1, 0},
		Azimuth:         mgl64.DegToRad(41),
		Polar:           mgl64.DegToRad(75),
		Distance:        10,
		FovY:            DefaultFovY,
		Near:            DefaultNear,
		Far:             DefaultFar,
		MinDistance:     1,
		MaxDistance:     DefaultFar / 2,
		MinPolar:        0.05,
		MaxPolar:        math.Pi - 0.05,
		DragSensitivity: 0.005,
		ZoomSensitivity: 0.1,
	}
}

// Position returns the camera position in world space.
func (c *OrbitCamera) Position() mgl64.Vec3 {
	return c.Target.Add(geom.SphericalToCartesian(c.Azimuth, c.Polar, c.Distance))
}

// ViewMatrix returns the view matrix for this camera.
func (c *OrbitCamera) ViewMatrix() mgl64.Mat4 {
	return geom.LookAt(c.Position(), c.Target, c.Up)
}

// ProjectionMatrix returns the perspective projection for a viewport aspect ratio.
func (c *OrbitCamera) ProjectionMatrix(aspect float64) mgl64.Mat4 {
	return geom.Perspective(c.FovY, aspect, c.Near, c.Far)
}

// HandleDrag updates the orbit angles from a pointer drag delta.
func (c *OrbitCamera) HandleDrag(deltaX, deltaY float64) {
	c.Azimuth += deltaX * c.DragSensitivity
	c.Polar = mgl64.Clamp(c.Polar-deltaY*c.DragSensitivity, c.MinPolar, c.MaxPolar)
}

// HandleZoom updates distance based on scroll wheel delta.
func (c *OrbitCamera) HandleZoom(delta float64) {
	c.Distance = mgl64.Clamp(c.Distance-delta*c.Distance*c.ZoomSensitivity, c.MinDistance, c.MaxDistance)
}

// Move shifts the spherical coordinates directly, as keyboard controls do.
func (c *OrbitCamera) Move(dAzimuth, dPolar, dDistance float64) {
	c.Azimuth += dAzimuth
	c.Polar = mgl64.Clamp(c.Polar+dPolar, c.MinPolar, c.MaxPolar)
	c.Distance = mgl64.Clamp(c.Distance+dDistance, c.MinDistance, c.MaxDistance)
}

// FitToRadius moves the camera back far enough for a sphere of the given
// radius around the target to fill the vertical field of view.
func (c *OrbitCamera) FitToRadius(radius float64) {
	d := radius / math.Sin(c.FovY/2)
	c.Distance = mgl64.Clamp(d*1.1, c.MinDistance, c.MaxDistance)
}
