package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/urfave/cli/v2"

	"github.com/panbanda/oometrics/internal/mcpserver"
	"github.com/panbanda/oometrics/internal/report"
	"github.com/panbanda/oometrics/pkg/config"
	"github.com/panbanda/oometrics/pkg/severity"
)

const ledgerJava = `package bank;

public class Ledger {
    private long balance;

    public void post(long amount) {
        if (amount > 0) {
            balance += amount;
        }
    }

    public long balance() {
        return balance;
    }
}
`

func javaTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	dir := filepath.Join(root, "bank")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "Ledger.java"), []byte(ledgerJava), 0o644); err != nil {
		t.Fatal(err)
	}
	return root
}

// runApp runs the CLI with args and returns what it wrote to stdout.
func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ErrWriter = io.Discard
	err := app.Run(append([]string{"oometrics"}, args...))
	return out.String(), err
}

// TestGetPaths verifies path handling from CLI arguments.
func TestGetPaths(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected []string
	}{
		{
			name:     "no args defaults to current dir",
			args:     []string{},
			expected: []string{"."},
		},
		{
			name:     "single path",
			args:     []string{"/foo/bar"},
			expected: []string{"/foo/bar"},
		},
		{
			name:     "multiple paths",
			args:     []string{"/foo", "/bar"},
			expected: []string{"/foo", "/bar"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := &cli.App{
				Action: func(c *cli.Context) error {
					result := getPaths(c)
					if len(result) != len(tt.expected) {
						t.Errorf("getPaths() = %v, want %v", result, tt.expected)
						return nil
					}
					for i := range result {
						if result[i] != tt.expected[i] {
							t.Errorf("getPaths()[%d] = %q, want %q", i, result[i], tt.expected[i])
						}
					}
					return nil
				},
			}
			args := append([]string{"test"}, tt.args...)
			_ = app.Run(args)
		})
	}
}

func TestAnalyzeCommand(t *testing.T) {
	root := javaTree(t)

	out, err := runApp(t, "analyze", "-f", "json", "--no-progress", "--level", "method", root)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}

	var rep struct {
		Metadata struct {
			Classes int    `json:"classes"`
			Level   string `json:"level"`
		} `json:"metadata"`
		Entries []struct {
			Name string `json:"name"`
		} `json:"entries"`
	}
	if err := json.Unmarshal([]byte(out), &rep); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	if rep.Metadata.Classes != 1 {
		t.Errorf("classes = %d, want 1", rep.Metadata.Classes)
	}
	if rep.Metadata.Level != "method" {
		t.Errorf("level = %q, want method", rep.Metadata.Level)
	}
	names := map[string]bool{}
	for _, e := range rep.Entries {
		names[e.Name] = true
	}
	for _, want := range []string{"bank.Ledger#post/1", "bank.Ledger#balance/0"} {
		if !names[want] {
			t.Errorf("missing entry %q in %v", want, names)
		}
	}
}

func TestAnalyzeCommandText(t *testing.T) {
	root := javaTree(t)

	out, err := runApp(t, "analyze", "--no-progress", "--no-color", root)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	for _, want := range []string{"Classes", "bank.Ledger", "WMC", "Summary"} {
		if !strings.Contains(out, want) {
			t.Errorf("text output missing %q:\n%s", want, out)
		}
	}
}

func TestAnalyzeCommandOutputFile(t *testing.T) {
	root := javaTree(t)
	path := filepath.Join(t.TempDir(), "metrics.yaml")

	out, err := runApp(t, "analyze", "-f", "yaml", "-o", path, "--no-progress", root)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if out != "" {
		t.Errorf("stdout should be empty when writing to a file, got %q", out)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "bank.Ledger") {
		t.Errorf("yaml output missing class:\n%s", data)
	}
}

func TestAnalyzeCommandConfigDiscovery(t *testing.T) {
	root := javaTree(t)
	cfg := "[output]\nformat = \"json\"\nlevel = \"package\"\n"
	if err := os.WriteFile(filepath.Join(root, "oometrics.toml"), []byte(cfg), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := runApp(t, "analyze", "--no-progress", root)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	var rep struct {
		Metadata struct {
			Level string `json:"level"`
		} `json:"metadata"`
	}
	if err := json.Unmarshal([]byte(out), &rep); err != nil {
		t.Fatalf("config format not applied: %v\n%s", err, out)
	}
	if rep.Metadata.Level != "package" {
		t.Errorf("level = %q, want package", rep.Metadata.Level)
	}
}

func TestAnalyzeCommandFailOn(t *testing.T) {
	root := javaTree(t)
	cfgPath := filepath.Join(t.TempDir(), "strict.toml")
	cfg := "[thresholds.CC]\nregular = 1.0\nhigh = 2.0\nvery_high = 3.0\n"
	if err := os.WriteFile(cfgPath, []byte(cfg), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := runApp(t, "--config", cfgPath, "analyze", "-f", "json", "--no-progress", "--fail-on", "very_high", root)
	var ve *violationsError
	if !errors.As(err, &ve) {
		t.Fatalf("err = %v, want violationsError", err)
	}
	if ve.count < 1 || ve.threshold != severity.VeryHigh {
		t.Errorf("violationsError = %+v", ve)
	}
}

func TestAnalyzeCommandErrors(t *testing.T) {
	root := javaTree(t)

	tests := []struct {
		name string
		args []string
	}{
		{"unknown level", []string{"analyze", "--no-progress", "--level", "module", root}},
		{"unknown format", []string{"analyze", "--no-progress", "-f", "xml", root}},
		{"bad fail-on", []string{"analyze", "--no-progress", "--fail-on", "regular", root}},
		{"no java files", []string{"analyze", "--no-progress", t.TempDir()}},
		{"missing config", []string{"--config", filepath.Join(root, "nope.toml"), "analyze", "--no-progress", root}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := runApp(t, tt.args...); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestParseFailOn(t *testing.T) {
	tests := []struct {
		in      string
		want    severity.Severity
		wantErr bool
	}{
		{"high", severity.High, false},
		{"very_high", severity.VeryHigh, false},
		{"very-high", severity.VeryHigh, false},
		{"EXTREME", severity.Extreme, false},
		{"regular", "", true},
		{"bogus", "", true},
	}
	for _, tt := range tests {
		got, err := parseFailOn(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseFailOn(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("parseFailOn(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCountAtLeast(t *testing.T) {
	rep := &report.Report{Violations: []report.Violation{
		{Severity: string(severity.High)},
		{Severity: string(severity.VeryHigh)},
		{Severity: string(severity.Extreme)},
	}}
	if got := countAtLeast(rep, severity.High); got != 3 {
		t.Errorf("HIGH = %d, want 3", got)
	}
	if got := countAtLeast(rep, severity.Extreme); got != 1 {
		t.Errorf("EXTREME = %d, want 1", got)
	}
}

func TestCatalogCommand(t *testing.T) {
	out, err := runApp(t, "catalog", "-f", "json", "--set", "mood")
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	var decoded struct {
		Metrics []catalogRow `json:"metrics"`
	}
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	if len(decoded.Metrics) == 0 {
		t.Fatal("no MOOD metrics listed")
	}
	for _, m := range decoded.Metrics {
		if m.Set != "MOOD" || m.Level != "project" {
			t.Errorf("unexpected metric %+v", m)
		}
	}

	if _, err := runApp(t, "catalog", "--level", "module"); err == nil {
		t.Error("expected error for unknown level")
	}
	if _, err := runApp(t, "catalog", "--set", "nope"); err == nil {
		t.Error("expected error for empty selection")
	}
}

func TestRangesCommand(t *testing.T) {
	out, err := runApp(t, "ranges", "-f", "markdown")
	if err != nil {
		t.Fatalf("ranges: %v", err)
	}
	for _, want := range []string{"Severity Ranges", "WMC", "TCC", "outside: EXTREME"} {
		if !strings.Contains(out, want) {
			t.Errorf("ranges output missing %q", want)
		}
	}
	if strings.Contains(out, "| HVL |") {
		t.Error("metrics without a range should not be listed")
	}
}

func TestProfilesCommand(t *testing.T) {
	out, err := runApp(t, "profiles", "-f", "json", "--level", "package")
	if err != nil {
		t.Fatalf("profiles: %v", err)
	}
	var decoded struct {
		Profiles []profileRow `json:"profiles"`
	}
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	if len(decoded.Profiles) == 0 {
		t.Fatal("no package profiles listed")
	}
	for _, p := range decoded.Profiles {
		if p.Level != "package" || len(p.Conditions) == 0 {
			t.Errorf("unexpected profile %+v", p)
		}
	}

	if _, err := runApp(t, "profiles", "--level", "method"); err == nil {
		t.Error("expected error for method level")
	}
}

func TestProfilesCommandConfig(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "profiles.toml")
	cfg := "[profiles.\"Long Method\"]\nenabled = false\n\n[profiles.Tiny.metrics.LOC]\nmax = 3\n"
	if err := os.WriteFile(cfgPath, []byte(cfg), 0o644); err != nil {
		t.Fatal(err)
	}
	out, err := runApp(t, "--config", cfgPath, "profiles", "-f", "markdown", "--level", "class")
	if err != nil {
		t.Fatalf("profiles: %v", err)
	}
	if strings.Contains(out, "Long Method") {
		t.Error("disabled profile should not be listed")
	}
	if !strings.Contains(out, "| Tiny | class | LOC in [0, 3) |") {
		t.Errorf("custom profile missing:\n%s", out)
	}
}

func TestAnalyzeCommandProfiles(t *testing.T) {
	root := javaTree(t)
	cfg := "[profiles.Accessor.metrics.LOC]\nmax = 4\n"
	if err := os.WriteFile(filepath.Join(root, "oometrics.toml"), []byte(cfg), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := runApp(t, "analyze", "-f", "json", "--no-progress", root)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	var rep struct {
		Profiles []struct {
			Name    string `json:"name"`
			Matches []struct {
				Name    string   `json:"name"`
				Methods []string `json:"methods"`
			} `json:"matches"`
		} `json:"profiles"`
	}
	if err := json.Unmarshal([]byte(out), &rep); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	for _, p := range rep.Profiles {
		if p.Name != "Accessor" {
			continue
		}
		if len(p.Matches) != 1 || p.Matches[0].Name != "bank.Ledger" {
			t.Fatalf("Accessor matches = %+v", p.Matches)
		}
		if got := p.Matches[0].Methods; len(got) != 1 || got[0] != "balance/0" {
			t.Errorf("methods = %v, want [balance/0]", got)
		}
		return
	}
	t.Fatalf("Accessor profile missing from %+v", rep.Profiles)
}

func TestInitCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".oometrics", "oometrics.toml")

	if _, err := runApp(t, "init", "-o", path); err != nil {
		t.Fatalf("init: %v", err)
	}
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("generated config does not load: %v", err)
	}
	if _, ok := cfg.Thresholds["WMC"]; !ok {
		t.Error("generated config should list the WMC range")
	}
	if _, err := cfg.Table(); err != nil {
		t.Errorf("generated thresholds invalid: %v", err)
	}

	if _, err := runApp(t, "init", "-o", path); err == nil {
		t.Error("expected error when the file exists")
	}
	if _, err := runApp(t, "init", "-o", path, "--force"); err != nil {
		t.Errorf("init --force: %v", err)
	}
}

func TestMCPManifestCommand(t *testing.T) {
	out, err := runApp(t, "mcp", "manifest")
	if err != nil {
		t.Fatalf("mcp manifest: %v", err)
	}
	var m struct {
		Name    string                            `json:"name"`
		Version string                            `json:"version"`
		Meta    map[string]mcpserver.Capabilities `json:"_meta"`
	}
	if err := json.Unmarshal([]byte(out), &m); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if m.Name != "io.github.panbanda/oometrics" {
		t.Errorf("name = %q", m.Name)
	}
	if m.Version != version {
		t.Errorf("version = %q, want %q", m.Version, version)
	}
	caps := m.Meta["io.modelcontextprotocol.registry/publisher-provided"]
	var tools []string
	for _, tool := range caps.Tools {
		tools = append(tools, tool.Name)
	}
	if !slices.Contains(tools, "metric_profiles") {
		t.Errorf("manifest tools = %v, want metric_profiles", tools)
	}
}
