package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panbanda/oometrics/pkg/metric"
	"github.com/panbanda/oometrics/pkg/severity"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NotNil(t, cfg)

	assert.Zero(t, cfg.Engine.Workers)
	assert.Contains(t, cfg.Engine.IteratingCalls, "forEach")
	assert.Equal(t, "extreme", cfg.Engine.DerivativeOutside)
	assert.True(t, cfg.Exclude.Gitignore)
	assert.NotEmpty(t, cfg.Exclude.Dirs)
	assert.Equal(t, "text", cfg.Output.Format)
	assert.Equal(t, "class", cfg.Output.Level)
	assert.Empty(t, cfg.Thresholds)
}

func TestLoadTOML(t *testing.T) {
	path := writeConfig(t, "oometrics.toml", `
[engine]
workers = 4
iterating_calls = ["forEach", "each"]
derivative_outside = "high"

[exclude]
dirs = ["generated"]
patterns = ["*Test.java"]

[output]
format = "json"

[thresholds.WMC]
regular = 10
high = 20
very_high = 30

[thresholds.LAA]
from = 0.5
to = 1.0
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 4, cfg.Engine.Workers)
	assert.Equal(t, []string{"forEach", "each"}, cfg.Engine.IteratingCalls)
	assert.Equal(t, []string{"generated"}, cfg.Exclude.Dirs)
	assert.Equal(t, "json", cfg.Output.Format)
	assert.True(t, cfg.Exclude.Gitignore, "unset keys keep their default")

	require.Contains(t, cfg.Thresholds, "WMC")
	assert.InDelta(t, 20.0, *cfg.Thresholds["WMC"].High, 1e-9)
	assert.True(t, cfg.Thresholds["LAA"].IsDerivative())
}

func TestLoadYAML(t *testing.T) {
	path := writeConfig(t, "oometrics.yaml", `
engine:
  workers: 2
thresholds:
  CC:
    regular: 4
    high: 6
    very_high: 8
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Engine.Workers)
	assert.InDelta(t, 8.0, *cfg.Thresholds["CC"].VeryHigh, 1e-9)
}

func TestLoadJSON(t *testing.T) {
	path := writeConfig(t, "oometrics.json", `{"output": {"format": "toon", "only_violations": true}}`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "toon", cfg.Output.Format)
	assert.True(t, cfg.Output.OnlyViolations)
}

func TestLoadRejectsSchemaViolations(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unknown section", "[bogus]\nx = 1\n"},
		{"negative workers", "[engine]\nworkers = -1\n"},
		{"bad format", "[output]\nformat = \"html\"\n"},
		{"bad outside policy", "[engine]\nderivative_outside = \"very_high\"\n"},
		{"from without to", "[thresholds.LAA]\nfrom = 0.3\n"},
		{"mixed range kinds", "[thresholds.WMC]\nregular = 1\nfrom = 0.0\nto = 1.0\n"},
		{"unknown threshold key", "[thresholds.WMC]\nlow = 1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, "oometrics.toml", tt.content))
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestLoadRejectsInvalidThresholds(t *testing.T) {
	_, err := Load(writeConfig(t, "oometrics.toml", "[thresholds.WMC]\nregular = 30\nhigh = 20\nvery_high = 40\n"))
	assert.ErrorIs(t, err, severity.ErrInvalidThreshold)

	_, err = Load(writeConfig(t, "oometrics.toml", "[thresholds.NOPE]\nregular = 1\n"))
	assert.ErrorIs(t, err, severity.ErrUnknownMetric)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestApply(t *testing.T) {
	high := 20.0
	from, to := 0.1, 0.9
	cfg := DefaultConfig()
	cfg.Engine.DerivativeOutside = "high"
	cfg.Thresholds = map[string]Threshold{
		"wmc": {High: &high},
		"Ce":  {High: &high},
		"TCC": {From: &from, To: &to},
	}

	table := severity.Defaults()
	require.NoError(t, cfg.Apply(table))

	r, ok := table.Range(metric.WMC)
	require.True(t, ok)
	assert.Equal(t, severity.Basic{Regular: 12, High: 20, VeryHigh: 45}, r, "partial override keeps other bounds")

	r, ok = table.Range(metric.TCC)
	require.True(t, ok)
	assert.Equal(t, severity.Derivative{From: 0.1, To: 0.9}, r)

	assert.Equal(t, severity.High, table.Outside())
	assert.Equal(t, severity.High, table.Classify(metric.TCC, metric.Ratio(0.95)))
	assert.Equal(t, severity.VeryHigh, table.Classify(metric.Ce, metric.Count(25)))
}

func TestApplyUnknownOutside(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Engine.DerivativeOutside = "sometimes"
	assert.ErrorIs(t, cfg.Apply(severity.Defaults()), ErrInvalidConfig)
}

func TestFindAndLoadOrDefault(t *testing.T) {
	root := t.TempDir()

	cfg, path, err := LoadOrDefault(root)
	require.NoError(t, err)
	assert.Empty(t, path)
	assert.Equal(t, DefaultConfig(), cfg)

	dir := filepath.Join(root, ".oometrics")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "oometrics.toml"), []byte("[engine]\nworkers = 3\n"), 0o644))

	found, ok := Find(root)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(dir, "oometrics.toml"), found)

	cfg, path, err = LoadOrDefault(root)
	require.NoError(t, err)
	assert.Equal(t, found, path)
	assert.Equal(t, 3, cfg.Engine.Workers)
}

func TestEncodeTOMLRoundTrip(t *testing.T) {
	cfg := DefaultConfig().WithDefaultThresholds()
	data, err := cfg.EncodeTOML()
	require.NoError(t, err)

	path := writeConfig(t, "oometrics.toml", string(data))
	loaded, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, cfg.Engine, loaded.Engine)
	assert.Equal(t, cfg.Exclude, loaded.Exclude)
	assert.Equal(t, cfg.Output, loaded.Output)
	require.Contains(t, loaded.Thresholds, "WMC")
	assert.InDelta(t, 35.0, *loaded.Thresholds["WMC"].High, 1e-9)
	require.Contains(t, loaded.Thresholds, "Ce")
	assert.True(t, loaded.Thresholds["LAA"].IsDerivative())
}

func TestShouldExclude(t *testing.T) {
	cfg := DefaultConfig()
	tests := []struct {
		path string
		want bool
	}{
		{"src/main/java/App.java", false},
		{"build/generated/App.java", true},
		{"src" + string(filepath.Separator) + "target" + string(filepath.Separator) + "X.java", true},
		{"src/com/example/package-info.java", true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, cfg.ShouldExclude(tt.path), tt.path)
	}
}
