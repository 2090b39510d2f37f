package geom

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// HitKind tags the outcome of a plane sweep.
type HitKind uint8

// Sweep outcomes.
const (
	// HitNone means the motion is parallel to the plane.
	HitNone HitKind = iota
	// HitOnPlane means the sphere's leading point already lies on the offset plane.
	HitOnPlane
	// HitPlane means the offset plane is crossed at a finite signed time.
	HitPlane
)

// String returns the outcome name.
func (k HitKind) String() string {
	switch k {
	case HitNone:
		return "None"
	case HitOnPlane:
		return "OnPlane"
	case HitPlane:
		return "Plane"
	default:
		return fmt.Sprintf("Unknown(%d)", k)
	}
}

// Hit is the result of sweeping a sphere against a triangle's plane.
type Hit struct {
	Kind HitKind

	// Time is the signed time at which the offset plane is crossed.
	// Negative when the plane lies behind the motion. Zero unless Kind is HitPlane.
	Time float64

	// Point is the crossing point on the offset plane (HitPlane) or the
	// sphere's leading point (HitOnPlane).
	Point mgl64.Vec3

	// Side is set for HitNone: +1 when the leading point is on the normal's
	// side of the plane, -1 when it is behind.
	Side int
}

// Ahead reports whether the hit happens strictly after the start of the
// motion and no later than limit.
func (h Hit) Ahead(limit float64) bool {
	return h.Kind == HitPlane && h.Time > 0 && h.Time <= limit
}

// IntersectPlaneSphere sweeps a sphere moving with the given velocity against
// the plane of tri. The plane is offset by radius toward the side the sphere
// approaches from, so the sphere's leading point is what gets tested.
func IntersectPlaneSphere(tri Triangle, center, velocity mgl64.Vec3, radius float64) Hit {
	n := tri.Normal
	nv := n.Dot(velocity)

	// Leading point: the sphere surface point facing the plane along the motion.
	var lead mgl64.Vec3
	if nv > 0 {
		lead = center.Add(n.Mul(radius))
	} else {
		lead = center.Sub(n.Mul(radius))
	}

	dist := n.Dot(lead.Sub(tri.V0))
	if dist == 0 {
		return Hit{Kind: HitOnPlane, Point: lead}
	}

	if nv == 0 {
		side := 1
		if dist < 0 {
			side = -1
		}
		return Hit{Kind: HitNone, Side: side}
	}

	t := dist / -nv
	return Hit{
		Kind:  HitPlane,
		Time:  t,
		Point: lead.Add(velocity.Mul(t)),
	}
}

// TriangleContainsPoint reports whether p lies inside the prism spanned by
// tri along its normal. Points on an edge count as inside.
func TriangleContainsPoint(tri Triangle, p mgl64.Vec3) bool {
	n := tri.Normal
	if p.Sub(tri.V0).Dot(tri.V1.Sub(tri.V0).Cross(n)) > 0 {
		return false
	}
	if p.Sub(tri.V1).Dot(tri.V2.Sub(tri.V1).Cross(n)) > 0 {
		return false
	}
	if p.Sub(tri.V2).Dot(tri.V0.Sub(tri.V2).Cross(n)) > 0 {
		return false
	}
	return true
}
