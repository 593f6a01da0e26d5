// Package engine runs the metric calculators over a construct tree, one
// level at a time: methods, then classes, then packages, then the project.
//
// Each level fans out over a bounded worker pool and waits for every
// construct to finish before the next level starts, so a level only reads
// stores that are complete.
package engine

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync/atomic"

	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"

	"github.com/panbanda/oometrics/pkg/analyzer/class"
	"github.com/panbanda/oometrics/pkg/analyzer/martin"
	"github.com/panbanda/oometrics/pkg/analyzer/method"
	"github.com/panbanda/oometrics/pkg/analyzer/mood"
	"github.com/panbanda/oometrics/pkg/metric"
	"github.com/panbanda/oometrics/pkg/model"
)

// DefaultWorkerMultiplier is applied to NumCPU when no worker count is set.
const DefaultWorkerMultiplier = 2

// ProgressFunc is called after each construct of a level is computed.
type ProgressFunc func(level metric.Level, done, total int)

// Engine computes every metric of a project.
type Engine struct {
	workers   int
	logger    *zap.Logger
	progress  ProgressFunc
	iterating []string
	resolver  method.Resolver
}

// Option is a functional option for configuring Engine.
type Option func(*Engine)

// WithWorkers bounds the number of constructs computed concurrently.
// Values <= 0 select 2x NumCPU.
func WithWorkers(n int) Option {
	return func(e *Engine) {
		e.workers = n
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithProgress sets a callback invoked as constructs finish.
func WithProgress(fn ProgressFunc) Option {
	return func(e *Engine) {
		e.progress = fn
	}
}

// WithIteratingCalls replaces the method names NOL counts as loops.
func WithIteratingCalls(names []string) Option {
	return func(e *Engine) {
		e.iterating = names
	}
}

// WithResolver sets how receivers of qualified accesses are identified.
func WithResolver(r method.Resolver) Option {
	return func(e *Engine) {
		e.resolver = r
	}
}

// New creates an engine.
func New(opts ...Option) *Engine {
	e := &Engine{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(e)
	}
	if e.workers <= 0 {
		e.workers = runtime.NumCPU() * DefaultWorkerMultiplier
	}
	return e
}

// Workers returns the pool size.
func (e *Engine) Workers() int { return e.workers }

// Run computes every level of proj. A cancelled run returns ctx.Err() and
// keeps the stores already written. Running twice over the same tree fails
// with metric.ErrAlreadyRecorded.
func (e *Engine) Run(ctx context.Context, proj *model.Project) error {
	methodOpts := []method.Option{method.WithResolver(e.resolver)}
	if e.iterating != nil {
		methodOpts = append(methodOpts, method.WithIteratingCalls(e.iterating))
	}
	ma := method.New(methodOpts...)
	ca := class.New(class.WithResolver(e.resolver))
	ix := proj.Index()

	e.logger.Debug("computing metrics",
		zap.String("project", proj.Name()),
		zap.Int("packages", len(proj.Packages())),
		zap.Int("workers", e.workers))
	for _, cycle := range proj.Index().InheritanceCycles() {
		names := make([]string, len(cycle))
		for i, c := range cycle {
			names[i] = c.QualifiedName()
		}
		e.logger.Warn("inheritance cycle", zap.Strings("classes", names))
	}

	if err := runLevel(ctx, e, metric.LevelMethod, proj.Methods(), ma.Calculate); err != nil {
		return err
	}
	if err := runLevel(ctx, e, metric.LevelClass, proj.Classes(), func(c *model.Class) error {
		return ca.Calculate(c, ix)
	}); err != nil {
		return err
	}
	if err := runLevel(ctx, e, metric.LevelPackage, proj.Packages(), func(p *model.Package) error {
		return martin.Calculate(p, ix)
	}); err != nil {
		return err
	}
	return runLevel(ctx, e, metric.LevelProject, []*model.Project{proj}, mood.Calculate)
}

// runLevel applies fn to every construct on the pool and waits for all of
// them. Construct errors are joined; cancellation wins over them.
func runLevel[T model.Construct](ctx context.Context, e *Engine, level metric.Level, items []T, fn func(T) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	total := len(items)
	var done atomic.Int64

	p := pool.New().WithMaxGoroutines(e.workers).WithErrors()
	for _, item := range items {
		p.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			err := fn(item)
			n := done.Add(1)
			if e.progress != nil {
				e.progress(level, int(n), total)
			}
			if err != nil {
				return fmt.Errorf("%s %s: %w", level, item.Name(), err)
			}
			return nil
		})
	}
	err := p.Wait()

	if ctxErr := ctx.Err(); ctxErr != nil {
		e.logger.Debug("run cancelled", zap.Stringer("level", level), zap.Int64("done", done.Load()))
		return ctxErr
	}
	if err != nil {
		e.logger.Warn("level failed", zap.Stringer("level", level), zap.Error(err))
		return err
	}
	e.logger.Debug("level complete", zap.Stringer("level", level), zap.Int("constructs", total))
	return nil
}

// IsRecomputation reports whether err came from computing a tree twice.
func IsRecomputation(err error) bool {
	return errors.Is(err, metric.ErrAlreadyRecorded)
}
