// Package class computes class-level metrics: the Chidamber-Kemerer,
// Lorenz-Kidd, Li-Henry and Lanza-Marinescu sets plus class Halstead.
//
// Calculate expects the method level to have run: WMC sums the recorded
// CC of each method and falls back to computing it when absent.
package class

import (
	"github.com/RoaringBitmap/roaring/v2"

	"github.com/panbanda/oometrics/pkg/analyzer/method"
	"github.com/panbanda/oometrics/pkg/metric"
	"github.com/panbanda/oometrics/pkg/model"
	"github.com/panbanda/oometrics/pkg/syntax"
)

// Analyzer fills the metric store of a class.
type Analyzer struct {
	resolver method.Resolver
}

// Option is a functional option for configuring Analyzer.
type Option func(*Analyzer)

// WithResolver sets how receivers of qualified accesses are identified.
func WithResolver(r method.Resolver) Option {
	return func(a *Analyzer) {
		if r != nil {
			a.resolver = r
		}
	}
}

// New creates a class analyzer.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{resolver: method.TextResolver{}}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Types lists the metrics Calculate records.
var Types = []metric.Type{
	metric.WMC, metric.DIT, metric.CBO, metric.RFC, metric.LCOM, metric.NOC,
	metric.NOA, metric.NOO, metric.NOOM, metric.NOAM, metric.SIZE2, metric.NOM,
	metric.MPC, metric.DAC, metric.ATFD, metric.NOPA, metric.NOAC, metric.WOC,
	metric.TCC, metric.NCSS,
	metric.CHVL, metric.CHD, metric.CHL, metric.CHEF, metric.CHVC, metric.CHER,
}

// Calculate records every class metric for c. ix resolves inheritance and
// dependencies across the project.
func (a *Analyzer) Calculate(c *model.Class, ix *model.Index) error {
	rec := metric.NewRecorder(c.Metrics())
	decl := c.Decl()

	profiles := make([]*profile, len(c.Methods()))
	for i, m := range c.Methods() {
		profiles[i] = newProfile(c, m, a.resolver)
	}

	rec.Set(metric.WMC, metric.Count(weightedMethods(c)))
	rec.Set(metric.DIT, metric.Count(ix.DIT(c)))
	rec.Set(metric.CBO, metric.Count(coupledClasses(c, ix)))
	rec.Set(metric.RFC, metric.Count(response(c, profiles)))
	rec.Set(metric.LCOM, metric.Count(lackOfCohesion(len(decl.Fields), profiles)))
	rec.Set(metric.NOC, metric.Count(ix.NOC(c)))
	rec.Set(metric.NOA, metric.Count(len(decl.Fields)))

	inh := newInheritance(c, ix)
	rec.Set(metric.NOO, metric.Count(inh.operations()))
	rec.Set(metric.NOOM, metric.Count(inh.overridden()))
	rec.Set(metric.NOAM, metric.Count(inh.added()))
	if decl.IsAbstract() {
		rec.Set(metric.SIZE2, metric.Undefined)
	} else {
		rec.Set(metric.SIZE2, metric.Count(inh.size()))
	}
	rec.Set(metric.NOM, metric.Count(len(decl.Methods)))

	var sites int
	foreign := make(map[string]bool)
	var h method.Halstead
	for _, p := range profiles {
		sites += p.sites
		for k := range p.foreign {
			foreign[k] = true
		}
		h.Merge(p.halstead)
	}
	rec.Set(metric.MPC, metric.Count(sites))
	rec.Set(metric.DAC, metric.Count(dataAbstraction(decl)))
	rec.Set(metric.ATFD, metric.Count(len(foreign)))
	rec.Set(metric.NOPA, metric.Count(publicAttributes(decl)))
	rec.Set(metric.NOAC, metric.Count(accessorMethods(decl)))
	rec.Set(metric.WOC, metric.Ratio(weightOfClass(decl)))
	rec.Set(metric.TCC, metric.Ratio(tightCohesion(profiles)))
	rec.Set(metric.NCSS, metric.Count(Statements(decl)))

	rec.Set(metric.CHVL, metric.Ratio(h.Volume()))
	rec.Set(metric.CHD, metric.Ratio(h.Difficulty()))
	rec.Set(metric.CHL, metric.Count(h.Length()))
	rec.Set(metric.CHEF, metric.Ratio(h.Effort()))
	rec.Set(metric.CHVC, metric.Count(h.Vocabulary()))
	rec.Set(metric.CHER, metric.Ratio(h.Errors()))
	return rec.Err()
}

func weightedMethods(c *model.Class) int {
	total := 0
	for _, m := range c.Methods() {
		if v, ok := m.Metrics().Get(metric.CC); ok {
			total += int(v.Int64())
			continue
		}
		total += method.Cyclomatic(m.Decl().Body)
	}
	return total
}

// coupledClasses is CBO: project classes c references or is referenced by.
func coupledClasses(c *model.Class, ix *model.Index) int {
	return int(roaring.Or(ix.Dependencies(c), ix.Dependents(c)).GetCardinality())
}

// response is RFC: declared methods plus the distinct methods they invoke.
func response(c *model.Class, profiles []*profile) int {
	set := make(map[string]bool)
	for _, m := range c.Methods() {
		set[m.Signature()] = true
	}
	for _, p := range profiles {
		for sig := range p.invoked {
			set[sig] = true
		}
	}
	return len(set)
}

// dataAbstraction is DAC: distinct non-primitive types among field types
// and their type arguments, ignoring the class's own type parameters.
func dataAbstraction(decl *syntax.Class) int {
	params := make(map[string]bool, len(decl.TypeParams))
	for _, tp := range decl.TypeParams {
		params[tp] = true
	}
	seen := make(map[string]bool)
	var add func(t syntax.TypeRef)
	add = func(t syntax.TypeRef) {
		if t.Name != "" && !params[t.Name] && !(syntax.TypeRef{Name: t.Name}).IsPrimitive() {
			seen[t.Name] = true
		}
		for _, arg := range t.Args {
			add(arg)
		}
	}
	for _, f := range decl.Fields {
		add(f.Type)
	}
	return len(seen)
}

// publicAttributes is NOPA: public fields that are neither static nor final.
func publicAttributes(decl *syntax.Class) int {
	n := 0
	for _, f := range decl.Fields {
		if f.Modifiers.Visibility() == syntax.VisibilityPublic &&
			!f.Modifiers.Has(syntax.Static) && !f.Modifiers.Has(syntax.Final) {
			n++
		}
	}
	return n
}

// accessorMethods is NOAC.
func accessorMethods(decl *syntax.Class) int {
	n := 0
	for _, m := range decl.Methods {
		if isAccessor(m) {
			n++
		}
	}
	return n
}

// Statements is NCSS: one for the declaration, one per field and method,
// plus the statements of every body.
func Statements(decl *syntax.Class) int {
	n := 1 + len(decl.Fields) + len(decl.Methods)
	for _, m := range decl.Methods {
		n += bodyStatements(m.Body)
	}
	return n
}

func bodyStatements(body *syntax.Node) int {
	n := 0
	syntax.Inspect(body, func(x *syntax.Node) bool {
		switch x.Kind {
		case syntax.KindBlock, syntax.KindCase:
			for _, s := range x.Children {
				if s.Kind != syntax.KindBlock {
					n++
				}
			}
		case syntax.KindCatch, syntax.KindFinally:
			n++
		case syntax.KindIf:
			if x.Else() != nil {
				n++
			}
		}
		return true
	})
	return n
}
