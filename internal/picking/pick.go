package picking

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/aib/MPv2/pkg/geom"
	"github.com/aib/MPv2/pkg/mesh"
)

// boundsSlack pads the early-out box so hits on the bounding faces survive rounding.
const boundsSlack = 1e-9

// Query is a sphere swept along a direction. A zero Radius makes it a ray.
type Query struct {
	Origin    mgl64.Vec3
	Direction mgl64.Vec3 // Times are in units of its length
	Radius    float64

	// MaxTime bounds the accepted hit time when HasMaxTime is set.
	MaxTime    float64
	HasMaxTime bool

	// Blacklist holds triangle arena indices to skip.
	Blacklist map[int]struct{}
}

// Result is the nearest triangle struck by a query.
type Result struct {
	Triangle int
	Face     int
	Time     float64
	Point    mgl64.Vec3
}

func (q Query) skips(tri int) bool {
	_, ok := q.Blacklist[tri]
	return ok
}

// accepts reports whether a sweep result is a forward hit within MaxTime.
func (q Query) accepts(hit geom.Hit) bool {
	if hit.Kind != geom.HitPlane || hit.Time < 0 {
		return false
	}
	return !q.HasMaxTime || hit.Time <= q.MaxTime
}

// missesBounds reports whether the swept sphere cannot reach box.
func (q Query) missesBounds(box AABB) bool {
	_, hit := Ray{Origin: q.Origin, Direction: q.Direction}.IntersectAABB(box.Expand(q.Radius + boundsSlack))
	return !hit
}

// PickNearest returns the first triangle of m the query strikes.
// Equal times keep the lower triangle index.
func PickNearest(m *mesh.Mesh, q Query) (Result, bool) {
	if q.missesBounds(BoundsAABB(m.Bounds())) {
		return Result{}, false
	}

	var best Result
	found := false
	for i, tri := range m.Triangles() {
		if q.skips(i) {
			continue
		}
		hit := geom.IntersectPlaneSphere(tri.Triangle, q.Origin, q.Direction, q.Radius)
		if !q.accepts(hit) {
			continue
		}
		if found && hit.Time >= best.Time {
			continue
		}
		if !geom.TriangleContainsPoint(tri.Triangle, hit.Point) {
			continue
		}
		best = Result{Triangle: i, Face: tri.Face, Time: hit.Time, Point: hit.Point}
		found = true
	}
	return best, found
}
