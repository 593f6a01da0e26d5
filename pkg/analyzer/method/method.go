// Package method computes method-level metrics: complexity, nesting,
// Halstead, coupling and size.
package method

import (
	"github.com/panbanda/oometrics/pkg/metric"
	"github.com/panbanda/oometrics/pkg/model"
)

// Analyzer fills the metric store of a method.
type Analyzer struct {
	iterating map[string]bool
	resolver  Resolver
}

// Option is a functional option for configuring Analyzer.
type Option func(*Analyzer)

// WithIteratingCalls replaces the callee names NOL counts as loops.
func WithIteratingCalls(names []string) Option {
	return func(a *Analyzer) {
		a.iterating = toSet(names)
	}
}

// WithResolver sets how receivers of qualified accesses are identified.
func WithResolver(r Resolver) Option {
	return func(a *Analyzer) {
		if r != nil {
			a.resolver = r
		}
	}
}

// New creates a method analyzer.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{
		iterating: toSet(DefaultIteratingCalls),
		resolver:  TextResolver{},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func toSet(names []string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return set
}

// Types lists the metrics Calculate records.
var Types = []metric.Type{
	metric.CC, metric.CCM, metric.MND, metric.CND, metric.LND, metric.NOL,
	metric.LOC, metric.NOPM, metric.LAA, metric.FDP, metric.NOAV,
	metric.CINT, metric.CDISP,
	metric.HVL, metric.HD, metric.HL, metric.HEF, metric.HVC, metric.HER,
}

// Calculate records every method metric for m. A method without a body
// scores 0 everywhere.
func (a *Analyzer) Calculate(m *model.Method) error {
	rec := metric.NewRecorder(m.Metrics())
	decl := m.Decl()
	rec.Set(metric.NOPM, metric.Count(len(decl.Params)))

	if !decl.HasBody() {
		for _, t := range Types {
			if t == metric.NOPM {
				continue
			}
			if t.Domain() == metric.DomainRatio {
				rec.Set(t, metric.Ratio(0))
			} else {
				rec.Set(t, metric.Count(0))
			}
		}
		return rec.Err()
	}

	body := decl.Body
	rec.Set(metric.CC, metric.Count(Cyclomatic(body)))
	rec.Set(metric.CCM, metric.Count(Cognitive(body, decl.Name, len(decl.Params))))
	rec.Set(metric.MND, metric.Count(MaxNesting(body)))
	rec.Set(metric.CND, metric.Count(ConditionNesting(body)))
	rec.Set(metric.LND, metric.Count(LoopNesting(body)))
	rec.Set(metric.NOL, metric.Count(Loops(body, a.iterating)))
	rec.Set(metric.LOC, metric.Count(LinesOfCode(decl.Source)))

	scope := NewScope(decl, m.HasField)
	coupling := NewCoupling(body, a.resolver)
	rec.Set(metric.LAA, metric.Ratio(NewAccesses(body, scope, a.resolver).Locality()))
	rec.Set(metric.FDP, metric.Count(coupling.ForeignProviders()))
	rec.Set(metric.NOAV, metric.Count(AccessedVariables(body, scope)))
	rec.Set(metric.CINT, metric.Count(coupling.Intensity()))
	rec.Set(metric.CDISP, metric.Ratio(coupling.Dispersion()))

	h := NewHalstead(body)
	rec.Set(metric.HVL, metric.Ratio(h.Volume()))
	rec.Set(metric.HD, metric.Ratio(h.Difficulty()))
	rec.Set(metric.HL, metric.Count(h.Length()))
	rec.Set(metric.HEF, metric.Ratio(h.Effort()))
	rec.Set(metric.HVC, metric.Count(h.Vocabulary()))
	rec.Set(metric.HER, metric.Ratio(h.Errors()))
	return rec.Err()
}
