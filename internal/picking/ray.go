// Package picking provides ray casting and sphere-sweep picking against meshes.
package picking

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/aib/MPv2/pkg/geom"
	"github.com/aib/MPv2/pkg/mesh"
)

// Ray represents a ray in 3D space with origin and direction.
type Ray struct {
	Origin    mgl64.Vec3
	Direction mgl64.Vec3 // Normalized direction
}

// AABB represents an axis-aligned bounding box.
type AABB struct {
	Min mgl64.Vec3
	Max mgl64.Vec3
}

// ScreenToRay converts screen coordinates to a world-space ray.
// screenX, screenY are pixel coordinates, viewportW/H are viewport dimensions.
// ok is false when the view-projection matrix cannot be inverted.
func ScreenToRay(screenX, screenY, viewportW, viewportH float64, view, projection mgl64.Mat4) (Ray, bool) {
	if viewportW <= 0 || viewportH <= 0 {
		return Ray{}, false
	}
	near, far, ok := geom.Unproject(screenX/viewportW, screenY/viewportH, view, projection)
	if !ok {
		return Ray{}, false
	}

	dir := geom.Normalize(far.Sub(near))
	if dir == (mgl64.Vec3{}) {
		return Ray{}, false
	}
	return Ray{Origin: near, Direction: dir}, true
}

// At returns the point at distance t along the ray.
func (r Ray) At(t float64) mgl64.Vec3 {
	return r.Origin.Add(r.Direction.Mul(t))
}

// Query returns a zero-radius pick query along the ray.
func (r Ray) Query() Query {
	return Query{Origin: r.Origin, Direction: r.Direction}
}

// IntersectAABB tests ray intersection with an axis-aligned bounding box.
// Returns the distance to intersection (t) and whether intersection occurred.
// If the ray starts inside the box, returns the exit distance.
// Direction need not be normalized; t is then in units of its length.
func (r Ray) IntersectAABB(box AABB) (t float64, hit bool) {
	tmin := math.Inf(-1)
	tmax := math.Inf(1)

	for axis := 0; axis < 3; axis++ {
		o, d := r.Origin[axis], r.Direction[axis]
		if d == 0 {
			if o < box.Min[axis] || o > box.Max[axis] {
				return 0, false
			}
			continue
		}
		t1 := (box.Min[axis] - o) / d
		t2 := (box.Max[axis] - o) / d
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = math.Max(tmin, t1)
		tmax = math.Min(tmax, t2)
	}

	if tmax < tmin || tmax < 0 {
		return 0, false
	}

	// Return entry point, or exit point if starting inside
	if tmin < 0 {
		return tmax, true
	}
	return tmin, true
}

// NewAABB creates an AABB from two opposite corners in any order.
func NewAABB(a, b mgl64.Vec3) AABB {
	box := AABB{Min: a, Max: b}
	for i := 0; i < 3; i++ {
		if box.Min[i] > box.Max[i] {
			box.Min[i], box.Max[i] = box.Max[i], box.Min[i]
		}
	}
	return box
}

// BoundsAABB converts mesh bounds to an AABB.
func BoundsAABB(b mesh.Bounds) AABB {
	return NewAABB(b.Min, b.Max)
}

// Expand grows the box by d on every side.
func (b AABB) Expand(d float64) AABB {
	off := mgl64.Vec3{d, d, d}
	return AABB{Min: b.Min.Sub(off), Max: b.Max.Add(off)}
}
