package assets

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/milk9111/twobd/obj"
	"github.com/milk9111/twobd/render"
	"go.uber.org/zap"
)

// Library caches shared render resources. Shaders and textures are keyed
// by name and sources, so a redeclared source yields a new handle. It keeps one reference
// on every mesh it hands out and gives each caller a reference of its own;
// Close drops the library's references.
type Library struct {
	log      *zap.Logger
	diskRoot string
	embedded fs.FS

	meshes   map[string]*render.Mesh
	shaders  map[string]*render.Shader
	textures map[string]*render.Texture
}

// NewLibrary looks for files under diskRoot first and falls back to the
// embedded assets. An empty diskRoot disables the disk lookup.
func NewLibrary(log *zap.Logger, diskRoot string) *Library {
	if log == nil {
		log = zap.NewNop()
	}
	return &Library{
		log:      log,
		diskRoot: diskRoot,
		embedded: Files(),
		meshes:   make(map[string]*render.Mesh),
		shaders:  make(map[string]*render.Shader),
		textures: make(map[string]*render.Texture),
	}
}

// Model imports an OBJ file once and returns a retained mesh.
func (l *Library) Model(path string, opts obj.Options) (*render.Mesh, error) {
	key := "obj:" + cleanAssetPath(path)
	if m, ok := l.meshes[key]; ok {
		return m.Retain(), nil
	}

	data, err := l.importModel(path, opts)
	if err != nil {
		return nil, err
	}
	m := render.NewMesh(key, data)
	l.meshes[key] = m
	l.log.Debug("loaded model",
		zap.String("path", path),
		zap.Int("vertices", len(data.Vertices)),
		zap.Int("triangles", data.TriangleCount()))
	return m.Retain(), nil
}

func (l *Library) importModel(path string, opts obj.Options) (render.MeshData, error) {
	if l.diskRoot != "" {
		data, err := obj.ImportWith(filepath.Join(l.diskRoot, filepath.FromSlash(cleanAssetPath(path))), opts)
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, obj.ErrFileNotFound) {
			return render.MeshData{}, fmt.Errorf("assets: model %s: %w", path, err)
		}
	}
	data, err := obj.ImportFS(l.embedded, cleanAssetPath(path), opts)
	if err != nil {
		return render.MeshData{}, fmt.Errorf("assets: model %s: %w", path, err)
	}
	return data, nil
}

// Primitive caches generated geometry under key and returns a retained mesh.
func (l *Library) Primitive(key string, build func() render.MeshData) *render.Mesh {
	key = "prim:" + key
	if m, ok := l.meshes[key]; ok {
		return m.Retain()
	}
	m := render.NewMesh(key, build())
	l.meshes[key] = m
	return m.Retain()
}

func resourceKey(name string, parts ...string) string {
	return name + "\x00" + strings.Join(parts, "\x00")
}

// Shader returns the shader for name and sources, creating it on first use.
func (l *Library) Shader(name, vertex, fragment string) *render.Shader {
	key := resourceKey(name, vertex, fragment)
	if s, ok := l.shaders[key]; ok {
		return s
	}
	s := render.NewShader(name, vertex, fragment)
	l.shaders[key] = s
	l.log.Debug("registered shader",
		zap.String("name", name),
		zap.String("vertex", vertex),
		zap.String("fragment", fragment))
	return s
}

// Texture returns the texture for name, kind and sources, creating it on
// first use.
func (l *Library) Texture(name string, kind render.TextureKind, sources ...string) *render.Texture {
	key := resourceKey(name, append([]string{kind.String()}, sources...)...)
	if t, ok := l.textures[key]; ok {
		return t
	}
	t := &render.Texture{Name: name, Kind: kind, Sources: sources}
	l.textures[key] = t
	return t
}

// Evict drops the library's reference to a cached model so the next Model
// call re-imports it. Meshes still held by entities stay valid.
func (l *Library) Evict(path string) {
	key := "obj:" + cleanAssetPath(path)
	if m, ok := l.meshes[key]; ok {
		delete(l.meshes, key)
		m.Release()
	}
}

// Meshes reports how many meshes the library holds.
func (l *Library) Meshes() int {
	return len(l.meshes)
}

// Close releases every mesh reference the library owns.
func (l *Library) Close() {
	for key, m := range l.meshes {
		m.Release()
		delete(l.meshes, key)
	}
}
