// Package analysis runs the full metrics pipeline shared by the CLI and the
// MCP server: scan, parse, build the construct tree, compute and report.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/panbanda/oometrics/internal/fileproc"
	"github.com/panbanda/oometrics/internal/report"
	"github.com/panbanda/oometrics/internal/scanner"
	"github.com/panbanda/oometrics/pkg/config"
	"github.com/panbanda/oometrics/pkg/engine"
	"github.com/panbanda/oometrics/pkg/metric"
	"github.com/panbanda/oometrics/pkg/model"
	"github.com/panbanda/oometrics/pkg/syntax"
	"github.com/panbanda/oometrics/pkg/syntax/java"
)

// ErrNoSourceFiles is returned when the scanned paths hold no Java files.
var ErrNoSourceFiles = errors.New("no Java source files found")

// Service orchestrates metric analysis runs.
type Service struct {
	config  *config.Config
	logger  *zap.Logger
	parser  *java.Parser
	version string
}

// Option configures a Service.
type Option func(*Service)

// WithConfig sets the configuration.
func WithConfig(cfg *config.Config) Option {
	return func(s *Service) {
		s.config = cfg
	}
}

// WithLogger sets the logger handed to the parser and engine.
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithParser shares a parser, and with it its parse cache, across runs.
func WithParser(p *java.Parser) Option {
	return func(s *Service) {
		s.parser = p
	}
}

// WithVersion sets the version recorded in report metadata.
func WithVersion(v string) Option {
	return func(s *Service) {
		s.version = v
	}
}

// New creates a new analysis service.
func New(opts ...Option) *Service {
	s := &Service{
		config: config.DefaultConfig(),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.parser == nil {
		s.parser = java.New(java.WithLogger(s.logger), java.WithWorkers(s.config.Engine.Workers))
	}
	return s
}

// Config returns the configuration runs use.
func (s *Service) Config() *config.Config { return s.config }

// Parser returns the parser runs use.
func (s *Service) Parser() *java.Parser { return s.parser }

// Options configures a single run.
type Options struct {
	Level          metric.Level
	OnlyViolations bool
	// Workers overrides the configured engine pool size when positive.
	Workers int

	OnScan    func(files int)
	OnParse   fileproc.ProgressFunc
	OnCompute engine.ProgressFunc
}

// Result is the outcome of a run. Errors lists files that were skipped.
type Result struct {
	Report  *report.Report
	Project *model.Project
	Files   []string
	Errors  *fileproc.ProcessingErrors
}

// Scan returns the Java files under paths, "." when paths is empty.
func (s *Service) Scan(paths []string) ([]string, error) {
	if len(paths) == 0 {
		paths = []string{"."}
	}
	files, err := scanner.NewScanner(s.config).ScanPaths(paths)
	if err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}
	if len(files) == 0 {
		return nil, ErrNoSourceFiles
	}
	return files, nil
}

// Analyze runs the pipeline over paths.
func (s *Service) Analyze(ctx context.Context, paths []string, opts Options) (*Result, error) {
	if len(paths) == 0 {
		paths = []string{"."}
	}
	table, err := s.config.Table()
	if err != nil {
		return nil, err
	}
	profiles, err := s.config.MetricProfiles()
	if err != nil {
		return nil, err
	}

	files, err := s.Scan(paths)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("scanned", zap.Strings("paths", paths), zap.Int("files", len(files)))
	if opts.OnScan != nil {
		opts.OnScan(len(files))
	}

	parsed, perrs := s.parser.ParseFiles(ctx, files, opts.OnParse)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	skipped := 0
	if perrs != nil {
		skipped = perrs.Len()
	}
	if len(parsed) == 0 {
		return nil, fmt.Errorf("%w: %d files failed to parse", ErrNoSourceFiles, skipped)
	}

	proj := model.Build(&syntax.Project{Name: projectName(paths), Files: parsed})

	workers := s.config.Engine.Workers
	if opts.Workers > 0 {
		workers = opts.Workers
	}
	eng := engine.New(
		engine.WithWorkers(workers),
		engine.WithLogger(s.logger),
		engine.WithProgress(opts.OnCompute),
		engine.WithIteratingCalls(s.config.Engine.IteratingCalls),
	)
	if err := eng.Run(ctx, proj); err != nil {
		return nil, err
	}

	rep := report.Build(proj, report.Options{
		Level:          opts.Level,
		OnlyViolations: opts.OnlyViolations,
		Table:          table,
		Version:        s.version,
		Paths:          paths,
		Files:          len(parsed),
		Skipped:        skipped,
		Profiles:       profiles,
	})
	s.logger.Info("analysis complete",
		zap.String("project", proj.Name()),
		zap.Int("files", len(parsed)),
		zap.Int("skipped", skipped),
		zap.Int("classes", len(proj.Classes())),
		zap.Int("violations", len(rep.Violations)),
		zap.Int("profile_matches", rep.Matched()),
	)

	return &Result{Report: rep, Project: proj, Files: files, Errors: perrs}, nil
}

// projectName names the project after the first analyzed path.
func projectName(paths []string) string {
	abs, err := filepath.Abs(paths[0])
	if err != nil {
		return filepath.Base(paths[0])
	}
	if filepath.Ext(abs) != "" {
		abs = filepath.Dir(abs)
	}
	return filepath.Base(abs)
}
