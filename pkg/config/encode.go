package config

import (
	"fmt"
	"sort"

	"github.com/pelletier/go-toml"
)

// EncodeTOML renders c as a TOML document that Load reads back.
func (c *Config) EncodeTOML() ([]byte, error) {
	thresholds := make(map[string]any, len(c.Thresholds))
	names := make([]string, 0, len(c.Thresholds))
	for name := range c.Thresholds {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		th := c.Thresholds[name]
		entry := map[string]any{}
		put := func(key string, v *float64) {
			if v != nil {
				entry[key] = *v
			}
		}
		put("regular", th.Regular)
		put("high", th.High)
		put("very_high", th.VeryHigh)
		put("from", th.From)
		put("to", th.To)
		if len(entry) > 0 {
			thresholds[name] = entry
		}
	}

	engine := map[string]any{
		"workers":            int64(c.Engine.Workers),
		"derivative_outside": c.Engine.DerivativeOutside,
	}
	if len(c.Engine.IteratingCalls) > 0 {
		engine["iterating_calls"] = anySlice(c.Engine.IteratingCalls)
	}
	exclude := map[string]any{"gitignore": c.Exclude.Gitignore}
	if len(c.Exclude.Patterns) > 0 {
		exclude["patterns"] = anySlice(c.Exclude.Patterns)
	}
	if len(c.Exclude.Dirs) > 0 {
		exclude["dirs"] = anySlice(c.Exclude.Dirs)
	}

	doc := map[string]any{
		"engine":  engine,
		"exclude": exclude,
		"output": map[string]any{
			"format":          c.Output.Format,
			"level":           c.Output.Level,
			"color":           c.Output.Color,
			"only_violations": c.Output.OnlyViolations,
		},
	}
	if len(thresholds) > 0 {
		doc["thresholds"] = thresholds
	}
	if len(c.Profiles) > 0 {
		doc["profiles"] = encodeProfiles(c.Profiles)
	}

	tree, err := toml.TreeFromMap(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to build TOML tree: %w", err)
	}
	return tree.Marshal()
}

func anySlice(in []string) []any {
	out := make([]any, len(in))
	for i, s := range in {
		out[i] = s
	}
	return out
}
