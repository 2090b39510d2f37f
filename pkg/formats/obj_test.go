package formats

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/aib/MPv2/pkg/mesh"
)

const squareOBJ = `
# unit square in the z=0 plane
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
vt 0 0
vt 1 0
vt 1 1
vt 0 1
vn 0 0 1
usemtl ignored
s off
f 1/1/1 2/2/1 3/3/1 4/4/1
`

func TestParseOBJ_Square(t *testing.T) {
	obj, err := ParseOBJ([]byte(squareOBJ))
	if err != nil {
		t.Fatalf("ParseOBJ failed: %v", err)
	}

	if len(obj.Positions) != 4 {
		t.Errorf("expected 4 positions, got %d", len(obj.Positions))
	}
	if len(obj.TexCoords) != 4 {
		t.Errorf("expected 4 texcoords, got %d", len(obj.TexCoords))
	}
	if len(obj.Normals) != 1 {
		t.Errorf("expected 1 normal, got %d", len(obj.Normals))
	}
	if len(obj.Faces) != 1 {
		t.Fatalf("expected 1 face, got %d", len(obj.Faces))
	}

	want := []OBJVertexRef{
		{Position: 0, TexCoord: 0, Normal: 0},
		{Position: 1, TexCoord: 1, Normal: 0},
		{Position: 2, TexCoord: 2, Normal: 0},
		{Position: 3, TexCoord: 3, Normal: 0},
	}
	for i, ref := range obj.Faces[0].Refs {
		if ref != want[i] {
			t.Errorf("ref %d: got %+v, want %+v", i, ref, want[i])
		}
	}
}

func TestParseOBJ_RefForms(t *testing.T) {
	data := `
v 0 0 0
v 1 0 0
v 0 1 0 1.0
vt 0.5
vn 0 0 1
f 1 2 3
f 1/1 2/1 3/1
f 1//1 2//1 3//1
f -3 -2 -1
`
	obj, err := ParseOBJ([]byte(data))
	if err != nil {
		t.Fatalf("ParseOBJ failed: %v", err)
	}
	if len(obj.Faces) != 4 {
		t.Fatalf("expected 4 faces, got %d", len(obj.Faces))
	}

	if obj.TexCoords[0] != (mgl64.Vec2{0.5, 0}) {
		t.Errorf("single component vt: got %v, want (0.5, 0)", obj.TexCoords[0])
	}

	tests := []struct {
		face int
		want OBJVertexRef
	}{
		{0, OBJVertexRef{Position: 0, TexCoord: -1, Normal: -1}},
		{1, OBJVertexRef{Position: 0, TexCoord: 0, Normal: -1}},
		{2, OBJVertexRef{Position: 0, TexCoord: -1, Normal: 0}},
		{3, OBJVertexRef{Position: 0, TexCoord: -1, Normal: -1}},
	}
	for _, tt := range tests {
		if got := obj.Faces[tt.face].Refs[0]; got != tt.want {
			t.Errorf("face %d ref 0: got %+v, want %+v", tt.face, got, tt.want)
		}
	}
	if got := obj.Faces[3].Refs[2].Position; got != 2 {
		t.Errorf("relative index -1: got %d, want 2", got)
	}
}

func TestParseOBJ_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
		want error
	}{
		{"short vertex", "v 1 2\n", ErrInvalidOBJVertex},
		{"bad float", "v 1 x 2\n", ErrInvalidOBJVertex},
		{"bad normal", "vn 0 1\n", ErrInvalidOBJVertex},
		{"short face", "v 0 0 0\nv 1 0 0\nf 1 2\n", ErrInvalidOBJFace},
		{"bad index", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 a 3\n", ErrInvalidOBJFace},
		{"index zero", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 0 1 2\n", ErrOBJIndexOutOfRange},
		{"forward index", "v 0 0 0\nv 1 0 0\nf 1 2 3\nv 0 1 0\n", ErrOBJIndexOutOfRange},
		{"relative too far", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf -4 -2 -1\n", ErrOBJIndexOutOfRange},
		{"missing texcoord", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1/1 2/1 3/1\n", ErrOBJIndexOutOfRange},
		{"missing position", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf /1 2 3\n", ErrInvalidOBJFace},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseOBJ([]byte(tt.data))
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestOBJ_Polygons(t *testing.T) {
	obj, err := ParseOBJ([]byte(squareOBJ))
	if err != nil {
		t.Fatalf("ParseOBJ failed: %v", err)
	}

	polys := obj.Polygons()
	if len(polys) != 1 {
		t.Fatalf("expected 1 polygon, got %d", len(polys))
	}
	p := polys[0]
	if len(p.Vertices) != 4 || len(p.TexCoords) != 4 || len(p.Normals) != 4 {
		t.Fatalf("expected 4 of each attribute, got %d/%d/%d", len(p.Vertices), len(p.TexCoords), len(p.Normals))
	}
	if p.Vertices[2] != (mgl64.Vec3{1, 1, 0}) {
		t.Errorf("vertex 2: got %v, want (1, 1, 0)", p.Vertices[2])
	}
	if p.TexCoords[3] != (mgl64.Vec2{0, 1}) {
		t.Errorf("texcoord 3: got %v, want (0, 1)", p.TexCoords[3])
	}
}

func TestOBJ_PolygonsPartialAttributes(t *testing.T) {
	data := "v 0 0 0\nv 1 0 0\nv 0 1 0\nvt 0 0\nf 1/1 2 3\n"
	obj, err := ParseOBJ([]byte(data))
	if err != nil {
		t.Fatalf("ParseOBJ failed: %v", err)
	}
	p := obj.Polygons()[0]
	if p.TexCoords != nil {
		t.Errorf("expected no texcoords when some vertices lack them, got %v", p.TexCoords)
	}
}

func TestOBJ_Mesh(t *testing.T) {
	obj, err := ParseOBJ([]byte(squareOBJ))
	if err != nil {
		t.Fatalf("ParseOBJ failed: %v", err)
	}

	m, err := obj.Mesh(2)
	if err != nil {
		t.Fatalf("Mesh failed: %v", err)
	}
	if m.TriangleCount() != 2 {
		t.Errorf("expected 2 triangles, got %d", m.TriangleCount())
	}
	if got := m.Bounds().Max; got != (mgl64.Vec3{2, 2, 0}) {
		t.Errorf("scaled bounds max: got %v, want (2, 2, 0)", got)
	}

	if _, err := obj.Mesh(0); !errors.Is(err, mesh.ErrInvalidScale) {
		t.Errorf("expected ErrInvalidScale, got %v", err)
	}
}

func TestParseOBJFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "square.obj")
	if err := os.WriteFile(path, []byte(squareOBJ), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	obj, err := ParseOBJFile(path)
	if err != nil {
		t.Fatalf("ParseOBJFile failed: %v", err)
	}
	if len(obj.Faces) != 1 {
		t.Errorf("expected 1 face, got %d", len(obj.Faces))
	}

	if _, err := ParseOBJFile(filepath.Join(t.TempDir(), "missing.obj")); err == nil {
		t.Error("expected error for missing file, got nil")
	}
}
