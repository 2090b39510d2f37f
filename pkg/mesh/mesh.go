// Package mesh builds immutable triangle meshes from polygon lists.
//
// A Mesh is built once per shape. Faces keep their input order as a stable
// index, and triangles live in a flat arena addressed by integer index.
package mesh

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/aib/MPv2/pkg/geom"
)

// Mesh build errors.
var (
	ErrNoFaces            = errors.New("mesh has no faces")
	ErrEmptyPolygon       = errors.New("polygon needs at least 3 vertices")
	ErrDegenerateTriangle = errors.New("degenerate triangle")
	ErrNonPlanarFace      = errors.New("non-planar face")
	ErrInvalidScale       = errors.New("invalid scale")
)

const (
	// minTriangleArea is the smallest area accepted for a fan triangle.
	minTriangleArea = 1e-12

	// planarTolerance bounds 1 - dot(n, n0) between triangles of one face.
	planarTolerance = 1e-6
)

// Polygon is one input face. TexCoords and Normals are optional and are
// carried through to the Face unchanged.
type Polygon struct {
	Vertices  []mgl64.Vec3
	TexCoords []mgl64.Vec2
	Normals   []mgl64.Vec3
}

// Triangle is a fan triangle of a face.
type Triangle struct {
	geom.Triangle

	// Index is the triangle's position in the mesh arena.
	Index int
	// Face is the index of the owning face.
	Face int
}

// Face is a planar polygon split into a triangle fan from vertex 0.
type Face struct {
	Index     int
	Vertices  []mgl64.Vec3
	TexCoords []mgl64.Vec2
	Normals   []mgl64.Vec3

	// Triangles holds arena indices of the face's fan triangles.
	Triangles []int

	Midpoint mgl64.Vec3
	Normal   mgl64.Vec3
}

// DistanceTo returns the distance from p to the face midpoint.
func (f *Face) DistanceTo(p mgl64.Vec3) float64 {
	return f.Midpoint.Sub(p).Len()
}

// FacesPoint reports whether the face's front side is turned toward p.
// A point on the face plane does not count.
func (f *Face) FacesPoint(p mgl64.Vec3) bool {
	return f.Normal.Dot(f.Midpoint.Sub(p)) < 0
}

// Bounds is an axis-aligned bounding box.
type Bounds struct {
	Min mgl64.Vec3
	Max mgl64.Vec3
}

// Mesh is an immutable set of faces and their triangles.
// Slices and pointers returned by its methods must be treated as read-only.
type Mesh struct {
	faces     []Face
	triangles []Triangle
	bounds    Bounds
	radius    float64
}

// Build triangulates polygons and scales their vertices by scale.
func Build(polygons []Polygon, scale float64) (*Mesh, error) {
	if scale <= 0 || math.IsNaN(scale) || math.IsInf(scale, 0) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidScale, scale)
	}
	if len(polygons) == 0 {
		return nil, ErrNoFaces
	}

	m := &Mesh{
		faces: make([]Face, 0, len(polygons)),
		bounds: Bounds{
			Min: mgl64.Vec3{math.MaxFloat64, math.MaxFloat64, math.MaxFloat64},
			Max: mgl64.Vec3{-math.MaxFloat64, -math.MaxFloat64, -math.MaxFloat64},
		},
	}

	for i, p := range polygons {
		if err := m.addFace(i, p, scale); err != nil {
			return nil, fmt.Errorf("face %d: %w", i, err)
		}
	}

	return m, nil
}

func (m *Mesh) addFace(index int, p Polygon, scale float64) error {
	n := len(p.Vertices)
	if n < 3 {
		return fmt.Errorf("%w: got %d", ErrEmptyPolygon, n)
	}

	face := Face{
		Index:     index,
		Vertices:  make([]mgl64.Vec3, n),
		TexCoords: append([]mgl64.Vec2(nil), p.TexCoords...),
		Normals:   append([]mgl64.Vec3(nil), p.Normals...),
		Triangles: make([]int, 0, n-2),
	}

	var sum mgl64.Vec3
	for i, v := range p.Vertices {
		sv := v.Mul(scale)
		face.Vertices[i] = sv
		sum = sum.Add(sv)
		m.extend(sv)
	}
	face.Midpoint = sum.Mul(1 / float64(n))

	for i := 1; i < n-1; i++ {
		tri := geom.NewTriangle(face.Vertices[0], face.Vertices[i], face.Vertices[i+1])
		if tri.Area() <= minTriangleArea {
			return fmt.Errorf("%w: fan triangle %d", ErrDegenerateTriangle, i-1)
		}
		if i == 1 {
			face.Normal = tri.Normal
		} else if tri.Normal.Dot(face.Normal) < 1-planarTolerance {
			return fmt.Errorf("%w: fan triangle %d normal %v differs from %v", ErrNonPlanarFace, i-1, tri.Normal, face.Normal)
		}

		face.Triangles = append(face.Triangles, len(m.triangles))
		m.triangles = append(m.triangles, Triangle{
			Triangle: tri,
			Index:    len(m.triangles),
			Face:     index,
		})
	}

	m.faces = append(m.faces, face)
	return nil
}

// extend grows bounds and radius to include v.
func (m *Mesh) extend(v mgl64.Vec3) {
	for i := 0; i < 3; i++ {
		m.bounds.Min[i] = math.Min(m.bounds.Min[i], v[i])
		m.bounds.Max[i] = math.Max(m.bounds.Max[i], v[i])
	}
	m.radius = math.Max(m.radius, v.Len())
}

// Faces returns all faces in input order.
func (m *Mesh) Faces() []Face {
	return m.faces
}

// Face returns the face with the given index, or nil if out of range.
func (m *Mesh) Face(i int) *Face {
	if i < 0 || i >= len(m.faces) {
		return nil
	}
	return &m.faces[i]
}

// Triangles returns the triangle arena.
func (m *Mesh) Triangles() []Triangle {
	return m.triangles
}

// Triangle returns the triangle with the given arena index, or nil if out of range.
func (m *Mesh) Triangle(i int) *Triangle {
	if i < 0 || i >= len(m.triangles) {
		return nil
	}
	return &m.triangles[i]
}

// FaceOf returns the face owning tri.
func (m *Mesh) FaceOf(tri *Triangle) *Face {
	return m.Face(tri.Face)
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.triangles)
}

// Bounds returns the axis-aligned bounding box of all vertices.
func (m *Mesh) Bounds() Bounds {
	return m.bounds
}

// Radius returns the largest vertex distance from the origin.
func (m *Mesh) Radius() float64 {
	return m.radius
}

// MinFeatureSize returns the shortest triangle edge length.
func (m *Mesh) MinFeatureSize() float64 {
	size := math.MaxFloat64
	for _, t := range m.triangles {
		size = math.Min(size, t.V1.Sub(t.V0).Len())
		size = math.Min(size, t.V2.Sub(t.V1).Len())
		size = math.Min(size, t.V0.Sub(t.V2).Len())
	}
	return size
}
