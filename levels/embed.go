package levels

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed *.yaml
var LevelsFS embed.FS

// Load reads name from dir when dir is set and the file exists there, and
// from the embedded levels otherwise.
func Load(dir, name string) (*Level, error) {
	file := levelFile(name)

	var (
		data []byte
		err  error
	)
	if dir != "" {
		data, err = os.ReadFile(filepath.Join(dir, file))
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("levels: read %s: %w", file, err)
		}
	}
	if data == nil {
		data, err = fs.ReadFile(LevelsFS, file)
		if err != nil {
			return nil, fmt.Errorf("levels: read %s: %w", file, err)
		}
	}

	lvl, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("levels: %s: %w", file, err)
	}
	if lvl.Name == "" {
		lvl.Name = strings.TrimSuffix(file, path.Ext(file))
	}
	return lvl, nil
}

// Parse decodes and validates one level document.
func Parse(data []byte) (*Level, error) {
	var lvl Level
	if err := yaml.Unmarshal(data, &lvl); err != nil {
		return nil, fmt.Errorf("unmarshal level: %w", err)
	}
	if err := lvl.Validate(); err != nil {
		return nil, err
	}
	return &lvl, nil
}

// List returns the level names available from the embedded set and dir,
// sorted, without duplicates.
func List(dir string) ([]string, error) {
	var names []string
	embedded, err := fs.Glob(LevelsFS, "*.yaml")
	if err != nil {
		return nil, err
	}
	names = append(names, embedded...)

	if dir != "" {
		onDisk, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
		if err != nil {
			return nil, err
		}
		for _, p := range onDisk {
			names = append(names, filepath.Base(p))
		}
	}

	for i, n := range names {
		names[i] = strings.TrimSuffix(n, ".yaml")
	}
	slices.Sort(names)
	return slices.Compact(names), nil
}

// NameOf maps a watched file path back to a level name.
func NameOf(file string) string {
	base := filepath.Base(file)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func levelFile(name string) string {
	name = filepath.ToSlash(name)
	name = strings.TrimPrefix(name, "levels/")
	if path.Ext(name) == "" {
		name += ".yaml"
	}
	return name
}
