// Package assets loads shape sources from the built-in set and extra directories.
package assets

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/aib/MPv2/pkg/formats"
	"github.com/aib/MPv2/pkg/mesh"
)

//go:embed shapes/*.obj
var builtin embed.FS

// ErrShapeNotFound is returned when no source provides a shape.
var ErrShapeNotFound = errors.New("shape not found")

const shapeExt = ".obj"

// BuiltinShapes returns the names of the embedded shapes, sorted.
func BuiltinShapes() []string {
	matches, _ := fs.Glob(builtin, "shapes/*"+shapeExt)
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, strings.TrimSuffix(path.Base(m), shapeExt))
	}
	sort.Strings(names)
	return names
}

// Manager resolves shape names to OBJ sources.
type Manager struct {
	dirs  []string
	cache *Cache
	mu    sync.RWMutex
}

// NewManager creates a manager that serves the built-in shapes.
func NewManager() *Manager {
	return &Manager{
		cache: NewCache(),
	}
}

// AddDir adds a directory of .obj files.
// Directories are searched in reverse order (last added = highest priority),
// and all of them before the built-in set.
func (m *Manager) AddDir(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("adding shape dir %s: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("adding shape dir %s: not a directory", dir)
	}

	m.mu.Lock()
	m.dirs = append(m.dirs, dir)
	m.mu.Unlock()

	m.cache.Clear()
	return nil
}

// fileName maps a shape name to its file name. name may omit the extension.
func fileName(name string) (string, error) {
	file := name
	if !strings.HasSuffix(file, shapeExt) {
		file += shapeExt
	}
	if file == shapeExt || file != filepath.Base(file) {
		return "", fmt.Errorf("%w: %q is not a bare shape name", ErrShapeNotFound, name)
	}
	return file, nil
}

// Load returns the raw OBJ source for a shape.
func (m *Manager) Load(name string) ([]byte, error) {
	file, err := fileName(name)
	if err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	for i := len(m.dirs) - 1; i >= 0; i-- {
		data, err := os.ReadFile(filepath.Join(m.dirs[i], file))
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("reading shape %s: %w", name, err)
		}
	}

	data, err := builtin.ReadFile("shapes/" + file)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrShapeNotFound, name)
	}
	return data, nil
}

// LoadOBJ returns the parsed source for a shape, parsing it at most once.
func (m *Manager) LoadOBJ(name string) (*formats.OBJ, error) {
	file, err := fileName(name)
	if err != nil {
		return nil, err
	}
	if obj, ok := m.cache.Get(file); ok {
		return obj, nil
	}

	data, err := m.Load(name)
	if err != nil {
		return nil, err
	}
	obj, err := formats.ParseOBJ(data)
	if err != nil {
		return nil, fmt.Errorf("parsing shape %s: %w", name, err)
	}
	m.cache.Put(file, obj)
	return obj, nil
}

// LoadShape builds the mesh of a shape with vertices scaled by scale.
func (m *Manager) LoadShape(name string, scale float64) (*mesh.Mesh, error) {
	obj, err := m.LoadOBJ(name)
	if err != nil {
		return nil, err
	}
	msh, err := obj.Mesh(scale)
	if err != nil {
		return nil, fmt.Errorf("building shape %s: %w", name, err)
	}
	return msh, nil
}

// ShapeNames returns every shape name the manager can resolve, sorted.
func (m *Manager) ShapeNames() ([]string, error) {
	seen := make(map[string]struct{})
	for _, name := range BuiltinShapes() {
		seen[name] = struct{}{}
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, dir := range m.dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil, fmt.Errorf("listing shape dir %s: %w", dir, err)
		}
		for _, e := range entries {
			if e.IsDir() || !strings.HasSuffix(e.Name(), shapeExt) {
				continue
			}
			seen[strings.TrimSuffix(e.Name(), shapeExt)] = struct{}{}
		}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Cache returns the parsed source cache.
func (m *Manager) Cache() *Cache {
	return m.cache
}
