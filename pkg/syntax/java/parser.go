// Package java lowers Java source files into syntax declarations using
// tree-sitter.
package java

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	tsjava "github.com/smacker/go-tree-sitter/java"
	"go.uber.org/zap"

	"github.com/panbanda/oometrics/internal/cache"
	"github.com/panbanda/oometrics/internal/fileproc"
	"github.com/panbanda/oometrics/pkg/syntax"
)

// ErrSyntax is returned for source that tree-sitter cannot parse cleanly.
var ErrSyntax = errors.New("syntax error")

// Parser parses Java files. It is safe for concurrent use; tree-sitter
// parsers are pooled and results are memoized per file.
type Parser struct {
	pool    sync.Pool
	cache   *cache.Cache[*syntax.File]
	logger  *zap.Logger
	workers int
}

var _ syntax.Parser = (*Parser)(nil)

// Option configures a Parser.
type Option func(*Parser)

// WithLogger sets the logger for parse warnings.
func WithLogger(l *zap.Logger) Option {
	return func(p *Parser) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithCache shares a parse cache between parsers. A nil cache disables
// memoization.
func WithCache(c *cache.Cache[*syntax.File]) Option {
	return func(p *Parser) { p.cache = c }
}

// WithWorkers bounds the goroutines ParseFiles uses.
func WithWorkers(n int) Option {
	return func(p *Parser) { p.workers = n }
}

// New creates a Java parser.
func New(opts ...Option) *Parser {
	p := &Parser{
		cache:   cache.New[*syntax.File](),
		logger:  zap.NewNop(),
		workers: runtime.NumCPU() * fileproc.DefaultWorkerMultiplier,
	}
	p.pool.New = func() any {
		sp := sitter.NewParser()
		sp.SetLanguage(tsjava.GetLanguage())
		return sp
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse lowers src, memoized by path and content digest.
func (p *Parser) Parse(ctx context.Context, path string, src []byte) (*syntax.File, error) {
	stamp := cache.HashBytes(src)
	if p.cache != nil {
		if f, ok := p.cache.Get(path, stamp); ok {
			return f, nil
		}
	}
	f, err := p.parse(ctx, path, src)
	if err != nil {
		return nil, err
	}
	if p.cache != nil {
		p.cache.Set(path, stamp, f)
	}
	return f, nil
}

// ParseFile reads and lowers a file, memoized by path and modification
// stamp so an unchanged file is not read again.
func (p *Parser) ParseFile(ctx context.Context, path string) (*syntax.File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	stamp := cache.StatStamp(info)
	if p.cache != nil {
		if f, ok := p.cache.Get(path, stamp); ok {
			return f, nil
		}
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	f, err := p.parse(ctx, path, src)
	if err != nil {
		return nil, err
	}
	if p.cache != nil {
		p.cache.Set(path, stamp, f)
	}
	return f, nil
}

// ParseFiles parses paths in parallel and returns the files that parsed,
// in input order. Failures are collected, logged and skipped.
func (p *Parser) ParseFiles(ctx context.Context, paths []string, onProgress fileproc.ProgressFunc) ([]*syntax.File, *fileproc.ProcessingErrors) {
	results, errs := fileproc.MapFilesN(ctx, paths, p.workers, p.ParseFile, onProgress)
	files := make([]*syntax.File, 0, len(results))
	for _, f := range results {
		if f != nil {
			files = append(files, f)
		}
	}
	if errs != nil {
		for _, e := range errs.Errors {
			p.logger.Warn("skipping file", zap.String("path", e.Path), zap.Error(e.Err))
		}
	}
	p.logger.Debug("parsed files", zap.Int("parsed", len(files)), zap.Int("requested", len(paths)))
	return files, errs
}

// CacheStats reports parse cache usage.
func (p *Parser) CacheStats() cache.Stats {
	if p.cache == nil {
		return cache.Stats{}
	}
	return p.cache.GetStats()
}

func (p *Parser) parse(ctx context.Context, path string, src []byte) (*syntax.File, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	sp := p.pool.Get().(*sitter.Parser)
	defer p.pool.Put(sp)

	tree, err := sp.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		return nil, fmt.Errorf("%s:%d: %w", path, firstErrorLine(root), ErrSyntax)
	}
	l := &lowerer{src: src}
	return l.file(path, root), nil
}

// firstErrorLine finds the line of the first error or missing node.
func firstErrorLine(n *sitter.Node) int {
	if n.Type() == "ERROR" || n.IsMissing() {
		return line(n)
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		if c != nil && c.HasError() {
			return firstErrorLine(c)
		}
	}
	return line(n)
}
