package mcpserver

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panbanda/oometrics/internal/output"
	"github.com/panbanda/oometrics/internal/testutil"
	"github.com/panbanda/oometrics/pkg/config"
	"github.com/panbanda/oometrics/pkg/metric"
)

const orderJava = `package shop;

import java.util.List;

public class Order {
    private List<String> lines;
    private double total;

    public void add(String line, double price) {
        if (line != null && price > 0) {
            lines.add(line);
            total += price;
        }
    }

    public double total() {
        return total;
    }
}
`

func newServer(t *testing.T) *Server {
	t.Helper()
	s, err := NewServer("1.0.0-test")
	require.NoError(t, err)
	return s
}

func javaProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	testutil.CreateFileTree(t, root, map[string]string{
		"shop/Order.java": orderJava,
		"shop/Empty.java": "package shop;\n\npublic class Empty {}\n",
	})
	return root
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, res)
	require.NotEmpty(t, res.Content)
	tc, ok := res.Content[0].(*mcp.TextContent)
	require.True(t, ok, "content is %T", res.Content[0])
	return tc.Text
}

func TestNewServer(t *testing.T) {
	s := newServer(t)
	assert.NotNil(t, s.server)
	assert.NotNil(t, s.svc)

	s, err := NewServer("")
	require.NoError(t, err)
	assert.NotNil(t, s)
}

func TestNewServerInvalidThresholds(t *testing.T) {
	cfg := config.DefaultConfig()
	from := 0.5
	cfg.Thresholds = map[string]config.Threshold{"TCC": {From: &from}}

	_, err := NewServer("dev", WithConfig(cfg))
	assert.Error(t, err)
}

func TestNewServerInvalidProfiles(t *testing.T) {
	cfg := config.DefaultConfig()
	upper := 1.0
	cfg.Profiles = map[string]config.ProfileConfig{
		"Broken": {Level: "class", Metrics: map[string]config.BoundConfig{"Ce": {Max: &upper}}},
	}

	_, err := NewServer("dev", WithConfig(cfg))
	assert.Error(t, err, "a package metric in a class profile is rejected")
}

func TestToolDefinitions(t *testing.T) {
	defs := toolDefinitions()
	for name, tool := range defs {
		assert.Equal(t, name, tool.Name)
		assert.NotEmpty(t, tool.Description, name)
	}
	assert.Equal(t, []string{"analyze_metrics", "classify_metric", "metric_catalog", "metric_profiles"}, toolNames())
}

func TestToolDescriptions(t *testing.T) {
	descriptions := map[string]func() string{
		"analyze_metrics": describeAnalyzeMetrics,
		"metric_catalog":  describeMetricCatalog,
		"classify_metric": describeClassifyMetric,
		"metric_profiles": describeMetricProfiles,
	}
	for name, fn := range descriptions {
		t.Run(name, func(t *testing.T) {
			desc := fn()
			for _, section := range []string{"USE WHEN:", "INTERPRETING RESULTS:", "METRICS RETURNED:"} {
				assert.Contains(t, desc, section)
			}
		})
	}
}

func TestGetPaths(t *testing.T) {
	assert.Equal(t, []string{"."}, getPaths(AnalyzeInput{}))
	assert.Equal(t, []string{"a", "b"}, getPaths(AnalyzeInput{Paths: []string{"a", "b"}}))
}

func TestGetFormat(t *testing.T) {
	tests := []struct {
		in   string
		want output.Format
	}{
		{"", output.FormatTOON},
		{"text", output.FormatTOON},
		{"bogus", output.FormatTOON},
		{"json", output.FormatJSON},
		{"yaml", output.FormatYAML},
		{"md", output.FormatMarkdown},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, getFormat(tt.in), tt.in)
	}
}

func TestGetLevel(t *testing.T) {
	l, err := getLevel("")
	require.NoError(t, err)
	assert.Equal(t, metric.LevelClass, l)

	l, err = getLevel("Method")
	require.NoError(t, err)
	assert.Equal(t, metric.LevelMethod, l)

	_, err = getLevel("module")
	assert.Error(t, err)
}

func TestHandleAnalyzeMetrics(t *testing.T) {
	s := newServer(t)
	res, _, err := s.handleAnalyzeMetrics(context.Background(), nil, AnalyzeInput{
		Paths:  []string{javaProject(t)},
		Format: "json",
		Level:  "method",
	})
	require.NoError(t, err)
	require.False(t, res.IsError, resultText(t, res))

	var decoded struct {
		Metadata struct {
			Classes int    `json:"classes"`
			Level   string `json:"level"`
		} `json:"metadata"`
		Entries []struct {
			Name string `json:"name"`
		} `json:"entries"`
	}
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &decoded))
	assert.Equal(t, 2, decoded.Metadata.Classes)
	assert.Equal(t, "method", decoded.Metadata.Level)

	var names []string
	for _, e := range decoded.Entries {
		names = append(names, e.Name)
	}
	assert.ElementsMatch(t, []string{"shop.Order#add/2", "shop.Order#total/0"}, names)
}

func TestHandleAnalyzeMetricsFormats(t *testing.T) {
	s := newServer(t)
	root := javaProject(t)

	res, _, err := s.handleAnalyzeMetrics(context.Background(), nil, AnalyzeInput{Paths: []string{root}})
	require.NoError(t, err)
	assert.Contains(t, resultText(t, res), "shop.Order")

	res, _, err = s.handleAnalyzeMetrics(context.Background(), nil, AnalyzeInput{Paths: []string{root}, Format: "markdown"})
	require.NoError(t, err)
	assert.Contains(t, resultText(t, res), "| Name | Metric | Value | Severity |")
}

func TestHandleAnalyzeMetricsBudget(t *testing.T) {
	s := newServer(t)
	res, _, err := s.handleAnalyzeMetrics(context.Background(), nil, AnalyzeInput{
		Paths:     []string{javaProject(t)},
		Format:    "json",
		Level:     "method",
		MaxTokens: 50,
	})
	require.NoError(t, err)

	var decoded struct {
		Metadata struct {
			Truncated int `json:"truncated"`
		} `json:"metadata"`
		Entries []json.RawMessage `json:"entries"`
	}
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &decoded))
	assert.Positive(t, decoded.Metadata.Truncated)
	assert.Empty(t, decoded.Entries)
}

func TestHandleAnalyzeMetricsErrors(t *testing.T) {
	s := newServer(t)

	res, _, err := s.handleAnalyzeMetrics(context.Background(), nil, AnalyzeInput{Paths: []string{t.TempDir()}})
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(t, res), "no Java source files")

	res, _, err = s.handleAnalyzeMetrics(context.Background(), nil, AnalyzeInput{Level: "module"})
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestHandleMetricCatalog(t *testing.T) {
	s := newServer(t)

	res, _, err := s.handleMetricCatalog(context.Background(), nil, CatalogInput{Level: "class", Set: "chidamber-kemerer"})
	require.NoError(t, err)
	text := resultText(t, res)
	assert.Contains(t, text, "WMC")
	assert.Contains(t, text, "LCOM")
	assert.NotContains(t, text, "NOPM")

	res, _, err = s.handleMetricCatalog(context.Background(), nil, CatalogInput{Set: "nope"})
	require.NoError(t, err)
	assert.True(t, res.IsError)

	res, _, err = s.handleMetricCatalog(context.Background(), nil, CatalogInput{Level: "file"})
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestHandleMetricProfiles(t *testing.T) {
	s := newServer(t)

	res, _, err := s.handleMetricProfiles(context.Background(), nil, ProfilesInput{})
	require.NoError(t, err)
	text := resultText(t, res)
	assert.Contains(t, text, "God Class (type 1)")
	assert.Contains(t, text, "Change Resistance")
	assert.Contains(t, text, "WMC >= 47")

	res, _, err = s.handleMetricProfiles(context.Background(), nil, ProfilesInput{Level: "package"})
	require.NoError(t, err)
	text = resultText(t, res)
	assert.Contains(t, text, "Change Resistance")
	assert.NotContains(t, text, "God Class")

	res, _, err = s.handleMetricProfiles(context.Background(), nil, ProfilesInput{Name: "god class"})
	require.NoError(t, err)
	text = resultText(t, res)
	assert.Contains(t, text, "God Class (type 4)")
	assert.NotContains(t, text, "Data Class")

	for _, in := range []ProfilesInput{{Level: "method"}, {Level: "module"}, {Name: "nothing like this"}} {
		res, _, err = s.handleMetricProfiles(context.Background(), nil, in)
		require.NoError(t, err)
		assert.True(t, res.IsError, "%+v", in)
	}
}

func TestHandleMetricProfilesConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	lower, disabled := 3.0, false
	cfg.Profiles = map[string]config.ProfileConfig{
		"Wide Class": {Level: "class", Description: "many fields", Metrics: map[string]config.BoundConfig{"NOA": {Min: &lower}}},
		"Data Class": {Enabled: &disabled},
	}
	s, err := NewServer("dev", WithConfig(cfg))
	require.NoError(t, err)

	res, _, err := s.handleMetricProfiles(context.Background(), nil, ProfilesInput{Level: "class"})
	require.NoError(t, err)
	text := resultText(t, res)
	assert.Contains(t, text, "Wide Class")
	assert.Contains(t, text, "NOA >= 3")
	assert.NotContains(t, text, "Data Class")
}

func TestHandleClassifyMetric(t *testing.T) {
	s := newServer(t)

	tests := []struct {
		metric string
		value  float64
		want   string
	}{
		{"WMC", 5, "REGULAR"},
		{"wmc", 50, "EXTREME"},
		{"TCC", 0.2, "EXTREME"},
		{"CC", 4, "HIGH"},
		{"HVL", 10, "UNDEFINED"},
	}
	for _, tt := range tests {
		t.Run(tt.metric, func(t *testing.T) {
			res, _, err := s.handleClassifyMetric(context.Background(), nil, ClassifyInput{Metric: tt.metric, Value: tt.value})
			require.NoError(t, err)
			require.False(t, res.IsError)
			assert.Contains(t, resultText(t, res), tt.want)
		})
	}

	res, _, err := s.handleClassifyMetric(context.Background(), nil, ClassifyInput{Metric: "XYZ", Value: 1})
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestParseFrontmatter(t *testing.T) {
	fm, body := parseFrontmatter([]byte("---\ndescription: d\narguments:\n  - name: level\n    default: class\n---\nBody {{level}}\n"))
	assert.Equal(t, "d", fm.Description)
	require.Len(t, fm.Arguments, 1)
	assert.Equal(t, "class", fm.Arguments[0].Default)
	assert.Equal(t, "Body {{level}}\n", body)

	fm, body = parseFrontmatter([]byte("no frontmatter"))
	assert.Empty(t, fm.Description)
	assert.Equal(t, "no frontmatter", body)
}

func TestReviewMetricsPrompt(t *testing.T) {
	content, err := promptFiles.ReadFile("prompts/review-metrics.md")
	require.NoError(t, err)
	fm, body := parseFrontmatter(content)
	require.NotEmpty(t, fm.Description)

	handler := makePromptHandler(fm, body)
	res, err := handler(context.Background(), &mcp.GetPromptRequest{
		Params: &mcp.GetPromptParams{
			Name:      "review-metrics",
			Arguments: map[string]string{"paths": "src/main/java"},
		},
	})
	require.NoError(t, err)
	require.Len(t, res.Messages, 1)

	text := res.Messages[0].Content.(*mcp.TextContent).Text
	assert.Contains(t, text, "src/main/java")
	assert.Contains(t, text, `level: "class"`, "missing arguments use their default")
	assert.NotContains(t, text, "{{")
}

func TestGenerateManifest(t *testing.T) {
	data, err := GenerateManifest("")
	require.NoError(t, err)

	var m Manifest
	require.NoError(t, json.Unmarshal(data, &m))
	assert.Equal(t, "0.0.0", m.Version)
	assert.Equal(t, "io.github.panbanda/oometrics", m.Name)
	assert.LessOrEqual(t, len(m.Description), 100, "registry limit")
	require.Len(t, m.Packages, 1)
	assert.True(t, strings.HasSuffix(m.Packages[0].Identifier, ":0.0.0"))

	var meta struct {
		Capabilities Capabilities `json:"io.modelcontextprotocol.registry/publisher-provided"`
	}
	raw, err := json.Marshal(m.Meta)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &meta))
	assert.Equal(t, DescribeCapabilities(), meta.Capabilities)
}

func TestDescribeCapabilities(t *testing.T) {
	c := DescribeCapabilities()

	var names []string
	for _, tool := range c.Tools {
		names = append(names, tool.Name)
		assert.NotEmpty(t, tool.Summary, tool.Name)
		assert.NotContains(t, tool.Summary, "\n")
	}
	assert.Equal(t, toolNames(), names)
	assert.Equal(t, "Classifies a single metric value against the configured threshold range.", c.Tools[1].Summary)
	assert.Equal(t, []string{"review-metrics"}, c.Prompts)

	total := 0
	for _, n := range c.Metrics {
		total += n
	}
	assert.Equal(t, len(metric.Catalog()), total)
	assert.Positive(t, c.Metrics["method"])
	assert.Equal(t, 17, c.Profiles["class"])
	assert.Equal(t, 4, c.Profiles["package"])
}

func TestInMemoryTransport(t *testing.T) {
	s := newServer(t)
	clientTransport, serverTransport := mcp.NewInMemoryTransports()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	serverDone := make(chan error, 1)
	go func() {
		serverDone <- s.RunTransport(ctx, serverTransport)
	}()

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "1.0.0"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)

	tools, err := session.ListTools(ctx, nil)
	require.NoError(t, err)
	var names []string
	for _, tool := range tools.Tools {
		names = append(names, tool.Name)
		assert.NotNil(t, tool.InputSchema, tool.Name)
	}
	assert.ElementsMatch(t, toolNames(), names)

	prompts, err := session.ListPrompts(ctx, nil)
	require.NoError(t, err)
	require.Len(t, prompts.Prompts, 1)
	assert.Equal(t, "review-metrics", prompts.Prompts[0].Name)

	res, err := session.CallTool(ctx, &mcp.CallToolParams{
		Name:      "classify_metric",
		Arguments: map[string]any{"metric": "DIT", "value": 8},
	})
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Contains(t, resultText(t, res), "EXTREME")

	require.NoError(t, session.Close())
	cancel()
	<-serverDone
}
