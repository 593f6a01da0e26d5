package mcpserver

import (
	"context"
	"sort"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/panbanda/oometrics/internal/service/analysis"
	"github.com/panbanda/oometrics/pkg/config"
	"github.com/panbanda/oometrics/pkg/profile"
	"github.com/panbanda/oometrics/pkg/severity"
)

const (
	toolAnalyzeMetrics = "analyze_metrics"
	toolMetricCatalog  = "metric_catalog"
	toolClassifyMetric = "classify_metric"
	toolMetricProfiles = "metric_profiles"
)

// Server wraps the MCP server and registers the metrics tools.
type Server struct {
	server *mcp.Server
	svc      *analysis.Service
	table    *severity.Table
	profiles []profile.Profile
	logger   *zap.Logger
}

// Option configures a Server.
type Option func(*serverOptions)

type serverOptions struct {
	config *config.Config
	logger *zap.Logger
}

// WithConfig sets the configuration analysis runs use.
func WithConfig(cfg *config.Config) Option {
	return func(o *serverOptions) { o.config = cfg }
}

// WithLogger sets the server logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *serverOptions) { o.logger = l }
}

// NewServer creates a new MCP server with all tools and prompts registered.
// The threshold and profile overrides in the config must be valid.
func NewServer(version string, opts ...Option) (*Server, error) {
	if version == "" {
		version = "dev"
	}
	o := serverOptions{config: config.DefaultConfig(), logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	table, err := o.config.Table()
	if err != nil {
		return nil, err
	}
	profiles, err := o.config.MetricProfiles()
	if err != nil {
		return nil, err
	}

	server := mcp.NewServer(
		&mcp.Implementation{
			Name:    "oometrics",
			Version: version,
		},
		nil,
	)

	s := &Server{
		server: server,
		svc: analysis.New(
			analysis.WithConfig(o.config),
			analysis.WithLogger(o.logger),
			analysis.WithVersion(version),
		),
		table:    table,
		profiles: profiles,
		logger:   o.logger,
	}
	s.registerTools()
	s.registerPrompts()
	return s, nil
}

// Run starts the MCP server over stdio transport.
func (s *Server) Run(ctx context.Context) error {
	return s.RunTransport(ctx, &mcp.StdioTransport{})
}

// RunTransport serves over t until the client disconnects or ctx ends.
func (s *Server) RunTransport(ctx context.Context, t mcp.Transport) error {
	s.logger.Info("mcp server starting")
	return s.server.Run(ctx, t)
}

// toolDefinitions holds the name and description of every tool the server
// registers, keyed by name.
func toolDefinitions() map[string]*mcp.Tool {
	return map[string]*mcp.Tool{
		toolAnalyzeMetrics: {Name: toolAnalyzeMetrics, Description: describeAnalyzeMetrics()},
		toolMetricCatalog:  {Name: toolMetricCatalog, Description: describeMetricCatalog()},
		toolClassifyMetric: {Name: toolClassifyMetric, Description: describeClassifyMetric()},
		toolMetricProfiles: {Name: toolMetricProfiles, Description: describeMetricProfiles()},
	}
}

// toolNames lists the registered tools in name order.
func toolNames() []string {
	defs := toolDefinitions()
	names := make([]string, 0, len(defs))
	for name := range defs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s *Server) registerTools() {
	defs := toolDefinitions()
	mcp.AddTool(s.server, defs[toolAnalyzeMetrics], s.handleAnalyzeMetrics)
	mcp.AddTool(s.server, defs[toolMetricCatalog], s.handleMetricCatalog)
	mcp.AddTool(s.server, defs[toolClassifyMetric], s.handleClassifyMetric)
	mcp.AddTool(s.server, defs[toolMetricProfiles], s.handleMetricProfiles)
}
