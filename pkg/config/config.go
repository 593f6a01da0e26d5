package config

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	kjson "github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/panbanda/oometrics/pkg/analyzer/method"
	"github.com/panbanda/oometrics/pkg/metric"
	"github.com/panbanda/oometrics/pkg/severity"
)

// ErrInvalidConfig is returned when a config file does not match the schema.
var ErrInvalidConfig = errors.New("invalid config")

//go:embed schema.json
var schemaJSON []byte

// Config holds all configuration options for oometrics.
type Config struct {
	// Engine settings
	Engine EngineConfig `koanf:"engine"`

	// File exclusion patterns
	Exclude ExcludeConfig `koanf:"exclude"`

	// Output settings
	Output OutputConfig `koanf:"output"`

	// Threshold overrides keyed by metric name
	Thresholds map[string]Threshold `koanf:"thresholds"`

	// Metric profile additions and edits keyed by profile name
	Profiles map[string]ProfileConfig `koanf:"profiles"`
}

// EngineConfig controls metric computation.
type EngineConfig struct {
	Workers           int      `koanf:"workers"` // 0 selects 2x NumCPU
	IteratingCalls    []string `koanf:"iterating_calls"`
	DerivativeOutside string   `koanf:"derivative_outside"` // high or extreme
}

// ExcludeConfig defines file exclusion patterns.
type ExcludeConfig struct {
	Patterns  []string `koanf:"patterns"`
	Dirs      []string `koanf:"dirs"`
	Gitignore bool     `koanf:"gitignore"`
}

// OutputConfig controls report rendering.
type OutputConfig struct {
	Format         string `koanf:"format"` // text, markdown, json, toon, yaml
	Level          string `koanf:"level"`
	Color          bool   `koanf:"color"`
	OnlyViolations bool   `koanf:"only_violations"`
}

// Threshold overrides a metric's range. Setting any of Regular, High and
// VeryHigh edits a basic range; From and To set a derivative range.
type Threshold struct {
	Regular  *float64 `koanf:"regular"`
	High     *float64 `koanf:"high"`
	VeryHigh *float64 `koanf:"very_high"`
	From     *float64 `koanf:"from"`
	To       *float64 `koanf:"to"`
}

// IsDerivative reports whether the threshold sets a derivative range.
func (t Threshold) IsDerivative() bool { return t.From != nil || t.To != nil }

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Engine: EngineConfig{
			IteratingCalls:    append([]string(nil), method.DefaultIteratingCalls...),
			DerivativeOutside: "extreme",
		},
		Exclude: ExcludeConfig{
			Patterns: []string{
				"package-info.java",
				"module-info.java",
			},
			Dirs: []string{
				".git",
				".oometrics",
				"build",
				"target",
				"out",
				"node_modules",
			},
			Gitignore: true,
		},
		Output: OutputConfig{
			Format: "text",
			Level:  "class",
			Color:  true,
		},
		Thresholds: map[string]Threshold{},
		Profiles:   map[string]ProfileConfig{},
	}
}

// Load loads configuration from a file, validating it against the schema
// before it is merged over the defaults.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := DefaultConfig()

	var parser koanf.Parser
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".toml":
		parser = toml.Parser()
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = kjson.Parser()
	default:
		parser = toml.Parser()
	}

	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	if err := Validate(k.Raw()); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}
	if err := cfg.Apply(severity.Defaults()); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if _, err := cfg.MetricProfiles(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// configNames are searched in order within each search directory.
var configNames = []string{
	"oometrics.toml",
	"oometrics.yaml",
	"oometrics.yml",
	"oometrics.json",
	".oometrics.toml",
	".oometrics.yaml",
	".oometrics.yml",
	".oometrics.json",
}

// Find returns the first config file under root or root/.oometrics.
func Find(root string) (string, bool) {
	for _, dir := range []string{root, filepath.Join(root, ".oometrics")} {
		for _, name := range configNames {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				return path, true
			}
		}
	}
	return "", false
}

// LoadOrDefault loads the config found under root, or the defaults when
// there is none. It returns the path it loaded, empty for the defaults.
func LoadOrDefault(root string) (*Config, string, error) {
	path, ok := Find(root)
	if !ok {
		return DefaultConfig(), "", nil
	}
	cfg, err := Load(path)
	if err != nil {
		return nil, path, err
	}
	return cfg, path, nil
}

// Validate checks a raw config document against the embedded schema.
func Validate(raw map[string]any) error {
	sch, err := compiledSchema()
	if err != nil {
		return err
	}
	// Round trip through JSON so numbers from every parser validate alike.
	data, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := sch.Validate(inst); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

func compiledSchema() (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaJSON))
	if err != nil {
		return nil, fmt.Errorf("parse schema: %w", err)
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource("oometrics.schema.json", doc); err != nil {
		return nil, fmt.Errorf("load schema: %w", err)
	}
	return c.Compile("oometrics.schema.json")
}

// Apply writes the threshold overrides and outside policy into t. Partial
// basic overrides keep the bounds they do not set.
func (c *Config) Apply(t *severity.Table) error {
	switch strings.ToLower(c.Engine.DerivativeOutside) {
	case "", "extreme":
		if err := t.SetOutside(severity.Extreme); err != nil {
			return err
		}
	case "high":
		if err := t.SetOutside(severity.High); err != nil {
			return err
		}
	default:
		return fmt.Errorf("%w: derivative_outside %q", ErrInvalidConfig, c.Engine.DerivativeOutside)
	}

	names := make([]string, 0, len(c.Thresholds))
	for name := range c.Thresholds {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		th := c.Thresholds[name]
		mt, ok := lookupType(name)
		if !ok {
			return fmt.Errorf("%w: %s", severity.ErrUnknownMetric, name)
		}
		if th.IsDerivative() {
			if th.From == nil || th.To == nil {
				return fmt.Errorf("%s: %w: from and to must both be set", mt, severity.ErrInvalidThreshold)
			}
			if err := t.SetDerivative(mt, severity.Derivative{From: *th.From, To: *th.To}); err != nil {
				return err
			}
			continue
		}
		var b severity.Basic
		if cur, ok := t.Range(mt); ok {
			if basic, ok := cur.(severity.Basic); ok {
				b = basic
			}
		}
		if th.Regular != nil {
			b.Regular = *th.Regular
		}
		if th.High != nil {
			b.High = *th.High
		}
		if th.VeryHigh != nil {
			b.VeryHigh = *th.VeryHigh
		}
		if err := t.SetBasic(mt, b); err != nil {
			return err
		}
	}
	return nil
}

// Table returns the built-in ranges with the config applied.
func (c *Config) Table() (*severity.Table, error) {
	t := severity.Defaults()
	if err := c.Apply(t); err != nil {
		return nil, err
	}
	return t, nil
}

// WithDefaultThresholds returns a copy of c whose threshold map lists every
// built-in range, overridden by the entries already in c.
func (c *Config) WithDefaultThresholds() *Config {
	out := *c
	out.Thresholds = make(map[string]Threshold)
	t := severity.Defaults()
	for _, mt := range t.Types() {
		r, _ := t.Range(mt)
		switch v := r.(type) {
		case severity.Basic:
			out.Thresholds[string(mt)] = Threshold{Regular: ptr(v.Regular), High: ptr(v.High), VeryHigh: ptr(v.VeryHigh)}
		case severity.Derivative:
			out.Thresholds[string(mt)] = Threshold{From: ptr(v.From), To: ptr(v.To)}
		}
	}
	for name, th := range c.Thresholds {
		if mt, ok := lookupType(name); ok {
			name = string(mt)
		}
		out.Thresholds[name] = th
	}
	return &out
}

// lookupType finds a catalog metric by name, ignoring case.
func lookupType(name string) (metric.Type, bool) {
	if _, ok := metric.Lookup(metric.Type(name)); ok {
		return metric.Type(name), true
	}
	for _, info := range metric.Catalog() {
		if strings.EqualFold(string(info.Type), name) {
			return info.Type, true
		}
	}
	return "", false
}

func ptr(f float64) *float64 { return &f }

// ShouldExclude checks if a path should be excluded from analysis.
func (c *Config) ShouldExclude(path string) bool {
	for _, dir := range c.Exclude.Dirs {
		if strings.Contains(path, string(filepath.Separator)+dir+string(filepath.Separator)) ||
			strings.HasPrefix(path, dir+string(filepath.Separator)) {
			return true
		}
	}

	base := filepath.Base(path)
	for _, pattern := range c.Exclude.Patterns {
		if matched, _ := filepath.Match(pattern, base); matched {
			return true
		}
	}

	return false
}
