package preset

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
)

type file struct {
	Presets []map[string]any `yaml:"presets"`
}

// LoadFile reads presets from a YAML file on top of the built-ins.
func LoadFile(path string) (Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return s, nil
}

// Parse decodes a presets document. An entry with a base only lists the
// fields it changes; everything else comes from the base preset.
func Parse(data []byte) (Set, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	s := Builtin()
	for i, raw := range f.Presets {
		name, _ := raw["name"].(string)
		if name == "" {
			return nil, fmt.Errorf("preset %d has no name", i)
		}
		fields := raw
		if base, _ := raw["base"].(string); base != "" {
			b, err := s.Lookup(base)
			if err != nil {
				return nil, fmt.Errorf("preset %q: %w", name, err)
			}
			baseFields, err := toMap(b)
			if err != nil {
				return nil, err
			}
			fields = merge(baseFields, raw)
		}
		p, err := fromMap(fields)
		if err != nil {
			return nil, fmt.Errorf("preset %q: %w", name, err)
		}
		s[name] = p
	}
	return s, nil
}

func toMap(p Preset) (map[string]any, error) {
	data, err := yaml.Marshal(p)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return m, nil
}

func fromMap(m map[string]any) (Preset, error) {
	data, err := yaml.Marshal(m)
	if err != nil {
		return Preset{}, err
	}
	var p Preset
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Preset{}, err
	}
	return p, nil
}

// merge overlays src onto dst, descending into nested maps.
func merge(dst, src map[string]any) map[string]any {
	for k, v := range src {
		sub, ok := v.(map[string]any)
		if cur, isMap := dst[k].(map[string]any); ok && isMap {
			dst[k] = merge(cur, sub)
			continue
		}
		dst[k] = v
	}
	return dst
}
