// Package geom provides the vector and triangle math used by collision and picking.
//
// All functions are pure. Vectors and matrices are mgl64 values.
package geom

import (
	"github.com/go-gl/mathgl/mgl64"
)

// Triangle is a triangle with a cached unit normal.
// The normal is (V1-V0) x (V2-V0), so vertices wind counter-clockwise
// when viewed from the side the normal points to.
type Triangle struct {
	V0, V1, V2 mgl64.Vec3
	Normal     mgl64.Vec3
}

// NewTriangle creates a triangle and computes its normal.
func NewTriangle(v0, v1, v2 mgl64.Vec3) Triangle {
	return Triangle{
		V0:     v0,
		V1:     v1,
		V2:     v2,
		Normal: TriangleNormal(v0, v1, v2),
	}
}

// Area returns the triangle's area.
func (t Triangle) Area() float64 {
	return t.V1.Sub(t.V0).Cross(t.V2.Sub(t.V0)).Len() / 2
}

// TriangleNormal returns the unit normal of the triangle v0, v1, v2.
// Zero-area triangles yield the zero vector.
func TriangleNormal(v0, v1, v2 mgl64.Vec3) mgl64.Vec3 {
	return Normalize(v1.Sub(v0).Cross(v2.Sub(v0)))
}

// Normalize returns a unit vector, or the zero vector when v has no length.
func Normalize(v mgl64.Vec3) mgl64.Vec3 {
	l := v.Len()
	if l == 0 {
		return mgl64.Vec3{}
	}
	return mgl64.Vec3{v[0] / l, v[1] / l, v[2] / l}
}

// Project returns the scalar projection of source onto the direction of target.
func Project(target, source mgl64.Vec3) float64 {
	return source.Dot(Normalize(target))
}

// Reflect mirrors incident about the plane with the given unit normal.
func Reflect(normal, incident mgl64.Vec3) mgl64.Vec3 {
	return incident.Sub(normal.Mul(2 * incident.Dot(normal)))
}
