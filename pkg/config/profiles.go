package config

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/panbanda/oometrics/pkg/metric"
	"github.com/panbanda/oometrics/pkg/profile"
)

// ProfileConfig adds a metric profile or edits a built-in one of the same
// name. Metrics, when set, replace the built-in bounds.
type ProfileConfig struct {
	Enabled     *bool                  `koanf:"enabled"`
	Level       string                 `koanf:"level"` // class (default) or package
	Description string                 `koanf:"description"`
	Metrics     map[string]BoundConfig `koanf:"metrics"`
}

// BoundConfig is the [min, max) range of one profile metric. Min defaults
// to 0 and a missing max leaves the range open.
type BoundConfig struct {
	Min *float64 `koanf:"min"`
	Max *float64 `koanf:"max"`
}

// MetricProfiles returns the built-in profiles with the config's additions
// and edits applied, sorted by name.
func (c *Config) MetricProfiles() ([]profile.Profile, error) {
	byName := make(map[string]profile.Profile)
	for _, p := range profile.Defaults() {
		byName[p.Name] = p
	}

	names := make([]string, 0, len(c.Profiles))
	for name := range c.Profiles {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		pc := c.Profiles[name]
		if pc.Enabled != nil && !*pc.Enabled {
			delete(byName, name)
			continue
		}
		p, builtin := byName[name]
		if !builtin {
			p = profile.Profile{Name: name, Level: metric.LevelClass}
		}
		if pc.Level != "" {
			level, ok := metric.ParseLevel(strings.ToLower(pc.Level))
			if !ok {
				return nil, fmt.Errorf("%w: profile %s: unknown level %q", profile.ErrInvalidProfile, name, pc.Level)
			}
			p.Level = level
		}
		if pc.Description != "" {
			p.Description = pc.Description
		}
		if len(pc.Metrics) > 0 {
			bounds, err := profileBounds(name, pc.Metrics)
			if err != nil {
				return nil, err
			}
			p.Bounds = bounds
		}
		byName[name] = p
	}

	out := make([]profile.Profile, 0, len(byName))
	for _, p := range byName {
		if err := p.Validate(); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func profileBounds(name string, metrics map[string]BoundConfig) ([]profile.Bound, error) {
	keys := make([]string, 0, len(metrics))
	for k := range metrics {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	bounds := make([]profile.Bound, 0, len(keys))
	for _, k := range keys {
		mt, ok := lookupType(k)
		if !ok {
			return nil, fmt.Errorf("%w: profile %s: unknown metric %q", profile.ErrInvalidProfile, name, k)
		}
		bc := metrics[k]
		b := profile.Bound{Metric: mt, Max: math.Inf(1)}
		if bc.Min != nil {
			b.Min = *bc.Min
		}
		if bc.Max != nil {
			b.Max = *bc.Max
		}
		bounds = append(bounds, b)
	}
	return bounds, nil
}

func encodeProfiles(profiles map[string]ProfileConfig) map[string]any {
	out := make(map[string]any, len(profiles))
	for name, pc := range profiles {
		entry := map[string]any{}
		if pc.Enabled != nil {
			entry["enabled"] = *pc.Enabled
		}
		if pc.Level != "" {
			entry["level"] = pc.Level
		}
		if pc.Description != "" {
			entry["description"] = pc.Description
		}
		if len(pc.Metrics) > 0 {
			metrics := make(map[string]any, len(pc.Metrics))
			for mt, bc := range pc.Metrics {
				bound := map[string]any{}
				if bc.Min != nil {
					bound["min"] = *bc.Min
				}
				if bc.Max != nil {
					bound["max"] = *bc.Max
				}
				metrics[mt] = bound
			}
			entry["metrics"] = metrics
		}
		out[name] = entry
	}
	return out
}
