package mesh

import (
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

// cubePolygons returns an axis-aligned cube with half-size h and outward
// counter-clockwise winding.
func cubePolygons(h float64) []Polygon {
	v := []mgl64.Vec3{
		{-h, -h, -h}, {h, -h, -h}, {h, h, -h}, {-h, h, -h},
		{-h, -h, h}, {h, -h, h}, {h, h, h}, {-h, h, h},
	}
	quads := [][4]int{
		{4, 5, 6, 7}, // +Z
		{0, 3, 2, 1}, // -Z
		{1, 2, 6, 5}, // +X
		{0, 4, 7, 3}, // -X
		{3, 7, 6, 2}, // +Y
		{0, 1, 5, 4}, // -Y
	}
	polys := make([]Polygon, len(quads))
	for i, q := range quads {
		polys[i] = Polygon{Vertices: []mgl64.Vec3{v[q[0]], v[q[1]], v[q[2]], v[q[3]]}}
	}
	return polys
}

func TestBuild_Cube(t *testing.T) {
	m, err := Build(cubePolygons(1), 1)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if len(m.Faces()) != 6 {
		t.Errorf("expected 6 faces, got %d", len(m.Faces()))
	}
	if m.TriangleCount() != 12 {
		t.Errorf("expected 12 triangles, got %d", m.TriangleCount())
	}

	wantNormals := []mgl64.Vec3{
		{0, 0, 1}, {0, 0, -1}, {1, 0, 0}, {-1, 0, 0}, {0, 1, 0}, {0, -1, 0},
	}
	for i, f := range m.Faces() {
		if f.Index != i {
			t.Errorf("face %d: Index = %d", i, f.Index)
		}
		if !f.Normal.ApproxEqualThreshold(wantNormals[i], 1e-12) {
			t.Errorf("face %d: Normal = %v, want %v", i, f.Normal, wantNormals[i])
		}
		if !f.Midpoint.ApproxEqualThreshold(wantNormals[i], 1e-12) {
			t.Errorf("face %d: Midpoint = %v, want %v", i, f.Midpoint, wantNormals[i])
		}
		if len(f.Triangles) != 2 {
			t.Errorf("face %d: expected 2 triangles, got %d", i, len(f.Triangles))
		}
		for _, ti := range f.Triangles {
			tri := m.Triangle(ti)
			if tri.Face != i {
				t.Errorf("triangle %d: Face = %d, want %d", ti, tri.Face, i)
			}
			if tri.Index != ti {
				t.Errorf("triangle %d: Index = %d", ti, tri.Index)
			}
			if m.FaceOf(tri) != m.Face(i) {
				t.Errorf("triangle %d: FaceOf mismatch", ti)
			}
			if !tri.Normal.ApproxEqualThreshold(f.Normal, 1e-12) {
				t.Errorf("triangle %d: Normal = %v, want %v", ti, tri.Normal, f.Normal)
			}
		}
	}
}

func TestBuild_FanTriangulation(t *testing.T) {
	hexagon := make([]mgl64.Vec3, 6)
	for i := range hexagon {
		a := float64(i) * math.Pi / 3
		hexagon[i] = mgl64.Vec3{math.Cos(a), math.Sin(a), 0}
	}
	m, err := Build([]Polygon{{Vertices: hexagon}}, 1)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if m.TriangleCount() != 4 {
		t.Fatalf("expected 4 triangles, got %d", m.TriangleCount())
	}
	for i, tri := range m.Triangles() {
		if tri.V0 != hexagon[0] || tri.V1 != hexagon[i+1] || tri.V2 != hexagon[i+2] {
			t.Errorf("triangle %d is not (v0, v%d, v%d)", i, i+1, i+2)
		}
	}
}

func TestBuild_Scale(t *testing.T) {
	m, err := Build(cubePolygons(1), 3)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	b := m.Bounds()
	if b.Min != (mgl64.Vec3{-3, -3, -3}) || b.Max != (mgl64.Vec3{3, 3, 3}) {
		t.Errorf("Bounds = %+v, want [-3, 3]^3", b)
	}
	if want := 3 * math.Sqrt(3); math.Abs(m.Radius()-want) > 1e-12 {
		t.Errorf("Radius = %v, want %v", m.Radius(), want)
	}
	if got := m.MinFeatureSize(); math.Abs(got-6) > 1e-12 {
		t.Errorf("MinFeatureSize = %v, want 6", got)
	}
}

func TestBuild_CarriesAttributes(t *testing.T) {
	p := Polygon{
		Vertices:  []mgl64.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
		TexCoords: []mgl64.Vec2{{0, 0}, {1, 0}, {0, 1}},
		Normals:   []mgl64.Vec3{{0, 0, 1}, {0, 0, 1}, {0, 0, 1}},
	}
	m, err := Build([]Polygon{p}, 1)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	f := m.Face(0)
	if len(f.TexCoords) != 3 || len(f.Normals) != 3 {
		t.Errorf("attributes not carried: %d texcoords, %d normals", len(f.TexCoords), len(f.Normals))
	}
}

func TestBuild_Errors(t *testing.T) {
	tri := []mgl64.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}

	tests := []struct {
		name  string
		polys []Polygon
		scale float64
		want  error
	}{
		{"no faces", nil, 1, ErrNoFaces},
		{"zero scale", []Polygon{{Vertices: tri}}, 0, ErrInvalidScale},
		{"negative scale", []Polygon{{Vertices: tri}}, -1, ErrInvalidScale},
		{"NaN scale", []Polygon{{Vertices: tri}}, math.NaN(), ErrInvalidScale},
		{"two vertices", []Polygon{{Vertices: tri[:2]}}, 1, ErrEmptyPolygon},
		{"empty polygon", []Polygon{{}}, 1, ErrEmptyPolygon},
		{
			"collinear",
			[]Polygon{{Vertices: []mgl64.Vec3{{0, 0, 0}, {1, 0, 0}, {2, 0, 0}}}},
			1, ErrDegenerateTriangle,
		},
		{
			"repeated vertex",
			[]Polygon{{Vertices: []mgl64.Vec3{{0, 0, 0}, {1, 0, 0}, {1, 0, 0}, {0, 1, 0}}}},
			1, ErrDegenerateTriangle,
		},
		{
			"non-planar quad",
			[]Polygon{{Vertices: []mgl64.Vec3{{0, 0, 0}, {1, 0, 0}, {1, 1, 0.5}, {0, 1, 0}}}},
			1, ErrNonPlanarFace,
		},
		{
			"non-convex fan",
			[]Polygon{{Vertices: []mgl64.Vec3{{0, 0, 0}, {2, 0, 0}, {1, 1, 0}, {3, 2, 0}}}},
			1, ErrNonPlanarFace,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := Build(tt.polys, tt.scale)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if m != nil {
				t.Error("expected nil mesh on error")
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestMesh_OutOfRange(t *testing.T) {
	m, err := Build(cubePolygons(1), 1)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if m.Face(-1) != nil || m.Face(6) != nil {
		t.Error("expected nil for out-of-range face")
	}
	if m.Triangle(-1) != nil || m.Triangle(12) != nil {
		t.Error("expected nil for out-of-range triangle")
	}
}

func TestFace_Viewing(t *testing.T) {
	m, err := Build(cubePolygons(1), 1)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	eye := mgl64.Vec3{0, 0, 10}

	front, back := m.Face(0), m.Face(1)
	if !front.FacesPoint(eye) {
		t.Error("expected +Z face to face an eye on +Z")
	}
	if back.FacesPoint(eye) {
		t.Error("expected -Z face to face away from an eye on +Z")
	}
	if front.FacesPoint(mgl64.Vec3{5, 0, 1}) {
		t.Error("a point on the face plane should not count as in front")
	}

	if d := front.DistanceTo(eye); math.Abs(d-9) > 1e-12 {
		t.Errorf("DistanceTo = %v, want 9", d)
	}
	if d := back.DistanceTo(eye); math.Abs(d-11) > 1e-12 {
		t.Errorf("DistanceTo = %v, want 11", d)
	}
}
