package assets

import (
	"embed"
	"io/fs"
	"path/filepath"
	"strings"
)

//go:embed models/*.obj shaders/*.glsl
var assetsFS embed.FS

// Files returns the embedded asset tree rooted at the assets directory.
func Files() fs.FS {
	return assetsFS
}

// LoadFile loads an embedded asset by assets-relative path.
func LoadFile(path string) ([]byte, error) {
	return assetsFS.ReadFile(cleanAssetPath(path))
}

func cleanAssetPath(path string) string {
	if path == "" {
		return ""
	}
	if filepath.IsAbs(path) {
		s := filepath.ToSlash(path)
		if idx := strings.LastIndex(s, "/assets/"); idx >= 0 {
			return s[idx+len("/assets/"):]
		}
		return filepath.Base(path)
	}
	s := filepath.ToSlash(path)
	if after, ok := strings.CutPrefix(s, "assets/"); ok {
		return after
	}
	return s
}
