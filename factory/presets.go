package factory

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/warp/incentive-engine/incentive"
)

// presetFile is the top-level shape of a preset document.
//
//	settings:
//	  baseMonths: 3
//	  capPct: 120
//	departments:
//	  office:
//	    fin: {name: Financial, weight: 0.3, enabled: true, goals: [...]}
type presetFile struct {
	Settings    map[string]any `yaml:"settings"`
	Departments map[string]any `yaml:"departments"`
}

// LoadDefaults reads a YAML preset file. An empty path returns the
// standard defaults.
func LoadDefaults(path string) (*incentive.Defaults, error) {
	if path == "" {
		return incentive.StandardDefaults(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "failed to read presets %s", path)
	}
	d, err := ParseDefaults(data)
	if err != nil {
		return nil, eris.Wrapf(err, "invalid presets %s", path)
	}
	return d, nil
}

// ParseDefaults decodes a YAML preset. Anything the preset leaves out or
// gets wrong is filled from the standard defaults, using the same rules
// the state sanitizer applies.
func ParseDefaults(data []byte) (*incentive.Defaults, error) {
	var pf presetFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return nil, eris.Wrap(err, "failed to parse presets YAML")
	}

	s := incentive.Sanitize(map[string]any{
		"settings":    normalizeYAML(pf.Settings),
		"departments": normalizeYAML(pf.Departments),
	})
	return &incentive.Defaults{
		Settings:    s.Settings,
		Departments: s.Departments,
	}, nil
}

// normalizeYAML rewrites yaml.v3 output into the shapes encoding/json
// produces, which is what the sanitizer walks.
func normalizeYAML(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = normalizeYAML(val)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			if key, ok := k.(string); ok {
				out[key] = normalizeYAML(val)
			}
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = normalizeYAML(val)
		}
		return out
	case int:
		return float64(t)
	default:
		return v
	}
}
