package prefabs

import (
	"maps"

	"gopkg.in/yaml.v3"
)

type EntityBuildSpec struct {
	Name       string         `yaml:"name"`
	Components map[string]any `yaml:"components"`
}

func LoadEntityBuildSpec(filename string) (EntityBuildSpec, error) {
	return LoadSpec[EntityBuildSpec](filename)
}

// Merge returns the prefab's components with overrides applied. When both
// sides of a component are maps their fields are merged, otherwise the
// override replaces the entry.
func (s EntityBuildSpec) Merge(overrides map[string]any) map[string]any {
	out := make(map[string]any, len(s.Components)+len(overrides))
	maps.Copy(out, s.Components)
	for name, raw := range overrides {
		base, baseOK := out[name].(map[string]any)
		over, overOK := raw.(map[string]any)
		if !baseOK || !overOK {
			out[name] = raw
			continue
		}
		merged := maps.Clone(base)
		maps.Copy(merged, over)
		out[name] = merged
	}
	return out
}

func DecodeComponentSpec[T any](raw any) (T, error) {
	var zero T
	if raw == nil {
		return zero, nil
	}
	b, err := yaml.Marshal(raw)
	if err != nil {
		return zero, err
	}
	var out T
	if err := yaml.Unmarshal(b, &out); err != nil {
		return zero, err
	}
	return out, nil
}
