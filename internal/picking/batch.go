package picking

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/aib/MPv2/pkg/mesh"
)

// Batch holds a mesh's triangles as parallel arrays with the containment
// edge perpendiculars precomputed, for repeated picking against one mesh.
// It selects exactly what PickNearest selects.
type Batch struct {
	mesh   *mesh.Mesh
	bounds AABB

	normals []mgl64.Vec3
	faces   []int

	// Per edge i: start vertex Vi and cross(Vi+1 - Vi, normal).
	verts [3][]mgl64.Vec3
	perps [3][]mgl64.Vec3
}

// NewBatch precomputes the arrays for m.
func NewBatch(m *mesh.Mesh) *Batch {
	tris := m.Triangles()
	n := len(tris)
	b := &Batch{
		mesh:    m,
		bounds:  BoundsAABB(m.Bounds()),
		normals: make([]mgl64.Vec3, n),
		faces:   make([]int, n),
	}
	for e := 0; e < 3; e++ {
		b.verts[e] = make([]mgl64.Vec3, n)
		b.perps[e] = make([]mgl64.Vec3, n)
	}

	for i, t := range tris {
		b.normals[i] = t.Normal
		b.faces[i] = t.Face
		v := [3]mgl64.Vec3{t.V0, t.V1, t.V2}
		for e := 0; e < 3; e++ {
			b.verts[e][i] = v[e]
			b.perps[e][i] = v[(e+1)%3].Sub(v[e]).Cross(t.Normal)
		}
	}
	return b
}

// Mesh returns the mesh the batch was built from.
func (b *Batch) Mesh() *mesh.Mesh {
	return b.mesh
}

// Len returns the number of triangles.
func (b *Batch) Len() int {
	return len(b.normals)
}

// PickNearest returns the first triangle the query strikes.
func (b *Batch) PickNearest(q Query) (Result, bool) {
	if q.missesBounds(b.bounds) {
		return Result{}, false
	}

	var best Result
	found := false
	for i, n := range b.normals {
		if q.skips(i) {
			continue
		}

		nv := n.Dot(q.Direction)
		var lead mgl64.Vec3
		if nv > 0 {
			lead = q.Origin.Add(n.Mul(q.Radius))
		} else {
			lead = q.Origin.Sub(n.Mul(q.Radius))
		}
		dist := n.Dot(lead.Sub(b.verts[0][i]))
		if dist == 0 || nv == 0 {
			continue
		}

		t := dist / -nv
		if t < 0 || (q.HasMaxTime && t > q.MaxTime) {
			continue
		}
		if found && t >= best.Time {
			continue
		}

		p := lead.Add(q.Direction.Mul(t))
		if !b.contains(i, p) {
			continue
		}
		best = Result{Triangle: i, Face: b.faces[i], Time: t, Point: p}
		found = true
	}
	return best, found
}

func (b *Batch) contains(i int, p mgl64.Vec3) bool {
	for e := 0; e < 3; e++ {
		if p.Sub(b.verts[e][i]).Dot(b.perps[e][i]) > 0 {
			return false
		}
	}
	return true
}
