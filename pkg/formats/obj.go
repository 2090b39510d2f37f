// Package formats provides parsers for shape source files.
package formats

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/aib/MPv2/pkg/mesh"
)

// OBJ format errors.
var (
	ErrInvalidOBJVertex   = errors.New("invalid OBJ vertex")
	ErrInvalidOBJFace     = errors.New("invalid OBJ face")
	ErrOBJIndexOutOfRange = errors.New("OBJ index out of range")
)

// OBJVertexRef points into the OBJ attribute lists. Indices are 0-based;
// -1 means the attribute is absent.
type OBJVertexRef struct {
	Position int
	TexCoord int
	Normal   int
}

// OBJFace is a single polygon statement.
type OBJFace struct {
	Refs []OBJVertexRef
}

// OBJ represents a parsed Wavefront OBJ file.
// Only geometry statements are kept; materials, groups and smoothing are ignored.
type OBJ struct {
	Positions []mgl64.Vec3
	TexCoords []mgl64.Vec2
	Normals   []mgl64.Vec3
	Faces     []OBJFace
}

// ParseOBJ parses an OBJ file from raw bytes.
func ParseOBJ(data []byte) (*OBJ, error) {
	obj := &OBJ{}
	sc := bufio.NewScanner(bytes.NewReader(data))

	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := sc.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		var err error
		switch fields[0] {
		case "v":
			err = obj.parsePosition(fields[1:])
		case "vt":
			err = obj.parseTexCoord(fields[1:])
		case "vn":
			err = obj.parseNormal(fields[1:])
		case "f":
			err = obj.parseFace(fields[1:])
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading OBJ: %w", err)
	}

	return obj, nil
}

// ParseOBJFile parses an OBJ file from disk.
func ParseOBJFile(path string) (*OBJ, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading OBJ file: %w", err)
	}
	return ParseOBJ(data)
}

func (o *OBJ) parsePosition(args []string) error {
	// A fourth (w) component is allowed and ignored.
	if len(args) < 3 || len(args) > 4 {
		return fmt.Errorf("%w: v needs 3 components, got %d", ErrInvalidOBJVertex, len(args))
	}
	v, err := parseFloats(args[:3])
	if err != nil {
		return err
	}
	o.Positions = append(o.Positions, mgl64.Vec3{v[0], v[1], v[2]})
	return nil
}

func (o *OBJ) parseTexCoord(args []string) error {
	if len(args) < 1 || len(args) > 3 {
		return fmt.Errorf("%w: vt needs 1 to 3 components, got %d", ErrInvalidOBJVertex, len(args))
	}
	v, err := parseFloats(args)
	if err != nil {
		return err
	}
	uv := mgl64.Vec2{v[0], 0}
	if len(v) > 1 {
		uv[1] = v[1]
	}
	o.TexCoords = append(o.TexCoords, uv)
	return nil
}

func (o *OBJ) parseNormal(args []string) error {
	if len(args) != 3 {
		return fmt.Errorf("%w: vn needs 3 components, got %d", ErrInvalidOBJVertex, len(args))
	}
	v, err := parseFloats(args)
	if err != nil {
		return err
	}
	o.Normals = append(o.Normals, mgl64.Vec3{v[0], v[1], v[2]})
	return nil
}

func (o *OBJ) parseFace(args []string) error {
	if len(args) < 3 {
		return fmt.Errorf("%w: f needs at least 3 vertices, got %d", ErrInvalidOBJFace, len(args))
	}

	face := OBJFace{Refs: make([]OBJVertexRef, len(args))}
	for i, arg := range args {
		ref, err := o.parseRef(arg)
		if err != nil {
			return fmt.Errorf("vertex %d %q: %w", i, arg, err)
		}
		face.Refs[i] = ref
	}
	o.Faces = append(o.Faces, face)
	return nil
}

// parseRef parses v, v/vt, v//vn or v/vt/vn.
func (o *OBJ) parseRef(s string) (OBJVertexRef, error) {
	parts := strings.Split(s, "/")
	if len(parts) > 3 {
		return OBJVertexRef{}, ErrInvalidOBJFace
	}

	ref := OBJVertexRef{Position: -1, TexCoord: -1, Normal: -1}
	var err error

	if ref.Position, err = resolveIndex(parts[0], len(o.Positions)); err != nil {
		return OBJVertexRef{}, err
	}
	if ref.Position < 0 {
		return OBJVertexRef{}, fmt.Errorf("%w: missing position index", ErrInvalidOBJFace)
	}
	if len(parts) > 1 {
		if ref.TexCoord, err = resolveIndex(parts[1], len(o.TexCoords)); err != nil {
			return OBJVertexRef{}, err
		}
	}
	if len(parts) > 2 {
		if ref.Normal, err = resolveIndex(parts[2], len(o.Normals)); err != nil {
			return OBJVertexRef{}, err
		}
	}
	return ref, nil
}

// resolveIndex converts a 1-based or negative (relative) OBJ index into a
// 0-based one. An empty string yields -1.
func resolveIndex(s string, count int) (int, error) {
	if s == "" {
		return -1, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidOBJFace, err)
	}

	var idx int
	switch {
	case n > 0:
		idx = n - 1
	case n < 0:
		idx = count + n
	default:
		return 0, fmt.Errorf("%w: index 0", ErrOBJIndexOutOfRange)
	}
	if idx < 0 || idx >= count {
		return 0, fmt.Errorf("%w: %d (have %d)", ErrOBJIndexOutOfRange, n, count)
	}
	return idx, nil
}

func parseFloats(args []string) ([]float64, error) {
	out := make([]float64, len(args))
	for i, a := range args {
		f, err := strconv.ParseFloat(a, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidOBJVertex, err)
		}
		out[i] = f
	}
	return out, nil
}

// Polygons resolves face references into mesh input polygons.
// Texture coordinates and normals are included only when every vertex of
// the face references one.
func (o *OBJ) Polygons() []mesh.Polygon {
	polys := make([]mesh.Polygon, len(o.Faces))
	for i, f := range o.Faces {
		p := mesh.Polygon{Vertices: make([]mgl64.Vec3, len(f.Refs))}

		hasUV, hasNormal := true, true
		for j, ref := range f.Refs {
			p.Vertices[j] = o.Positions[ref.Position]
			hasUV = hasUV && ref.TexCoord >= 0
			hasNormal = hasNormal && ref.Normal >= 0
		}

		if hasUV {
			p.TexCoords = make([]mgl64.Vec2, len(f.Refs))
			for j, ref := range f.Refs {
				p.TexCoords[j] = o.TexCoords[ref.TexCoord]
			}
		}
		if hasNormal {
			p.Normals = make([]mgl64.Vec3, len(f.Refs))
			for j, ref := range f.Refs {
				p.Normals[j] = o.Normals[ref.Normal]
			}
		}

		polys[i] = p
	}
	return polys
}

// Mesh builds a mesh from the OBJ faces with vertices scaled by scale.
func (o *OBJ) Mesh(scale float64) (*mesh.Mesh, error) {
	return mesh.Build(o.Polygons(), scale)
}
