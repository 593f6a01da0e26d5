package mcpserver

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/panbanda/oometrics/internal/output"
	"github.com/panbanda/oometrics/internal/report"
	"github.com/panbanda/oometrics/internal/service/analysis"
	"github.com/panbanda/oometrics/pkg/metric"
	"github.com/panbanda/oometrics/pkg/severity"
)

// AnalyzeInput configures analyze_metrics.
type AnalyzeInput struct {
	Paths          []string `json:"paths,omitempty" jsonschema:"Java source files or directories to analyze. Defaults to the current directory."`
	Format         string   `json:"format,omitempty" jsonschema:"Output format: toon (default), json, yaml or markdown."`
	Level          string   `json:"level,omitempty" jsonschema:"Construct level to list: method, class (default), package or project."`
	OnlyViolations bool     `json:"only_violations,omitempty" jsonschema:"List only constructs with at least one value above its regular range."`
	MaxTokens      int      `json:"max_tokens,omitempty" jsonschema:"Approximate token budget for the result. Entries with the mildest severities are dropped to fit."`
}

// CatalogInput filters metric_catalog.
type CatalogInput struct {
	Level string `json:"level,omitempty" jsonschema:"Only metrics of this level: method, class, package or project."`
	Set   string `json:"set,omitempty" jsonschema:"Only metrics of this suite, e.g. Chidamber-Kemerer or MOOD. Case-insensitive."`
}

// ClassifyInput is a single value to classify.
type ClassifyInput struct {
	Metric string  `json:"metric" jsonschema:"Metric name, e.g. WMC or TCC. Case-insensitive."`
	Value  float64 `json:"value" jsonschema:"The measured value."`
}

// ProfilesInput filters metric_profiles.
type ProfilesInput struct {
	Level string `json:"level,omitempty" jsonschema:"Only profiles of this level: class or package."`
	Name  string `json:"name,omitempty" jsonschema:"Only profiles whose name contains this text. Case-insensitive."`
}

// CatalogEntry describes one metric and its configured range.
type CatalogEntry struct {
	Name        string `json:"name" toon:"name"`
	Description string `json:"description" toon:"description"`
	Level       string `json:"level" toon:"level"`
	Domain      string `json:"domain" toon:"domain"`
	Set         string `json:"set,omitempty" toon:"set,omitempty"`
	Range       string `json:"range,omitempty" toon:"range,omitempty"`
}

// ProfileEntry describes one metric profile.
type ProfileEntry struct {
	Name        string   `json:"name" toon:"name"`
	Level       string   `json:"level" toon:"level"`
	Description string   `json:"description,omitempty" toon:"description,omitempty"`
	Conditions  []string `json:"conditions" toon:"conditions"`
}

// Classification is the result of classify_metric.
type Classification struct {
	Metric      string  `json:"metric" toon:"metric"`
	Description string  `json:"description" toon:"description"`
	Level       string  `json:"level" toon:"level"`
	Value       float64 `json:"value" toon:"value"`
	Severity    string  `json:"severity" toon:"severity"`
	Range       string  `json:"range,omitempty" toon:"range,omitempty"`
	Violation   bool    `json:"violation" toon:"violation"`
}

func getPaths(input AnalyzeInput) []string {
	if len(input.Paths) == 0 {
		return []string{"."}
	}
	return input.Paths
}

func getFormat(name string) output.Format {
	f, err := output.ParseFormat(name)
	if err != nil || name == "" || f == output.FormatText {
		return output.FormatTOON
	}
	return f
}

func getLevel(name string) (metric.Level, error) {
	if name == "" {
		return metric.LevelClass, nil
	}
	l, ok := metric.ParseLevel(strings.ToLower(name))
	if !ok {
		return 0, fmt.Errorf("unknown level %q: want method, class, package or project", name)
	}
	return l, nil
}

// formatOutput renders data for a tool result. Markdown wraps the TOON
// encoding in a fence unless data renders itself.
func formatOutput(data any, format output.Format) (string, error) {
	if format == output.FormatMarkdown {
		if r, ok := data.(output.Renderable); ok {
			var sb strings.Builder
			if err := r.RenderMarkdown(&sb); err != nil {
				return "", err
			}
			return sb.String(), nil
		}
		out, err := output.Encode(output.FormatTOON, data)
		if err != nil {
			return "", err
		}
		return "```\n" + string(out) + "```", nil
	}
	if r, ok := data.(output.Renderable); ok {
		data = r.RenderData()
	}
	out, err := output.Encode(format, data)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func toolResult(data any, format output.Format) (*mcp.CallToolResult, any, error) {
	text, err := formatOutput(data, format)
	if err != nil {
		return nil, nil, err
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}, nil, nil
}

func toolError(msg string) (*mcp.CallToolResult, any, error) {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: "Error: " + msg},
		},
		IsError: true,
	}, nil, nil
}

func (s *Server) handleAnalyzeMetrics(ctx context.Context, req *mcp.CallToolRequest, input AnalyzeInput) (*mcp.CallToolResult, any, error) {
	level, err := getLevel(input.Level)
	if err != nil {
		return toolError(err.Error())
	}
	format := getFormat(input.Format)

	res, err := s.svc.Analyze(ctx, getPaths(input), analysis.Options{
		Level:          level,
		OnlyViolations: input.OnlyViolations,
	})
	if err != nil {
		return toolError(err.Error())
	}
	if res.Errors != nil {
		for _, e := range res.Errors.Errors {
			s.logger.Warn("skipped file", zap.String("path", e.Path), zap.Error(e.Err))
		}
	}

	rep := res.Report
	if input.MaxTokens <= 0 {
		return toolResult(rep, format)
	}
	return fitBudget(rep, format, input.MaxTokens)
}

// fitBudget halves the listed entries until the encoded report fits the
// token budget.
func fitBudget(rep *report.Report, format output.Format, budget int) (*mcp.CallToolResult, any, error) {
	for {
		text, err := formatOutput(rep, format)
		if err != nil {
			return nil, nil, err
		}
		n := len(rep.Entries)
		if len(rep.Violations) > n {
			n = len(rep.Violations)
		}
		if output.CheckBudget(text, budget).Fits() || n == 0 {
			return &mcp.CallToolResult{Content: []mcp.Content{&mcp.TextContent{Text: text}}}, nil, nil
		}
		rep.Truncate(n / 2)
	}
}

func (s *Server) handleMetricCatalog(ctx context.Context, req *mcp.CallToolRequest, input CatalogInput) (*mcp.CallToolResult, any, error) {
	var level *metric.Level
	if input.Level != "" {
		l, err := getLevel(input.Level)
		if err != nil {
			return toolError(err.Error())
		}
		level = &l
	}

	entries := []CatalogEntry{}
	for _, info := range metric.Catalog() {
		if level != nil && info.Level != *level {
			continue
		}
		if input.Set != "" && !strings.EqualFold(string(info.Set), input.Set) {
			continue
		}
		e := CatalogEntry{
			Name:        string(info.Type),
			Description: info.Description,
			Level:       info.Level.String(),
			Domain:      info.Domain.String(),
			Set:         string(info.Set),
		}
		if r, ok := s.table.Range(info.Type); ok {
			e.Range = r.String()
		}
		entries = append(entries, e)
	}
	if len(entries) == 0 {
		return toolError("no metrics match the filter")
	}

	out := struct {
		Metrics []CatalogEntry `json:"metrics" toon:"metrics"`
	}{entries}
	return toolResult(out, output.FormatTOON)
}

func (s *Server) handleClassifyMetric(ctx context.Context, req *mcp.CallToolRequest, input ClassifyInput) (*mcp.CallToolResult, any, error) {
	info, ok := lookupMetric(input.Metric)
	if !ok {
		return toolError(fmt.Sprintf("unknown metric %q", input.Metric))
	}

	v := metric.Ratio(input.Value)
	if info.Domain == metric.DomainCount && input.Value == float64(int64(input.Value)) {
		v = metric.Int(int64(input.Value))
	}
	sev := s.table.Classify(info.Type, v)

	out := Classification{
		Metric:      string(info.Type),
		Description: info.Description,
		Level:       info.Level.String(),
		Value:       input.Value,
		Severity:    string(sev),
		Violation:   sev.IsViolation(),
	}
	if r, ok := s.table.Range(info.Type); ok {
		out.Range = r.String()
	}
	if sev == severity.Undefined && out.Range == "" {
		out.Range = "none"
	}
	return toolResult(out, output.FormatTOON)
}

func lookupMetric(name string) (metric.Info, bool) {
	if info, ok := metric.Lookup(metric.Type(name)); ok {
		return info, true
	}
	for _, info := range metric.Catalog() {
		if strings.EqualFold(string(info.Type), name) {
			return info, true
		}
	}
	return metric.Info{}, false
}

func (s *Server) handleMetricProfiles(ctx context.Context, req *mcp.CallToolRequest, input ProfilesInput) (*mcp.CallToolResult, any, error) {
	var level *metric.Level
	if input.Level != "" {
		l, err := getLevel(input.Level)
		if err != nil {
			return toolError(err.Error())
		}
		if l != metric.LevelClass && l != metric.LevelPackage {
			return toolError(fmt.Sprintf("profiles are class or package level, got %s", l))
		}
		level = &l
	}
	needle := strings.ToLower(input.Name)

	entries := []ProfileEntry{}
	for _, p := range s.profiles {
		if level != nil && p.Level != *level {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(p.Name), needle) {
			continue
		}
		entries = append(entries, ProfileEntry{
			Name:        p.Name,
			Level:       p.Level.String(),
			Description: p.Description,
			Conditions:  p.Conditions(),
		})
	}
	if len(entries) == 0 {
		return toolError("no profiles match the filter")
	}

	out := struct {
		Profiles []ProfileEntry `json:"profiles" toon:"profiles"`
	}{entries}
	return toolResult(out, output.FormatTOON)
}
