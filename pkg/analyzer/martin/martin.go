// Package martin computes Robert C. Martin's package metrics and package
// statistics.
package martin

import (
	"math"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/panbanda/oometrics/pkg/analyzer/class"
	"github.com/panbanda/oometrics/pkg/analyzer/method"
	"github.com/panbanda/oometrics/pkg/metric"
	"github.com/panbanda/oometrics/pkg/model"
	"github.com/panbanda/oometrics/pkg/syntax"
)

// Types lists the metrics Calculate records.
var Types = []metric.Type{
	metric.Ce, metric.Ca, metric.I, metric.A, metric.D,
	metric.PNOCC, metric.PNOAC, metric.PNOSC, metric.PNOI, metric.PNCSS, metric.PLOC,
}

// Calculate records the package metrics of pkg.
func Calculate(pkg *model.Package, ix *model.Index) error {
	rec := metric.NewRecorder(pkg.Metrics())

	ce, ca := couplings(pkg, ix)
	rec.Set(metric.Ce, metric.Count(ce))
	rec.Set(metric.Ca, metric.Count(ca))

	instability := Instability(ce, ca)
	abstractness := Abstractness(pkg)
	rec.Set(metric.I, metric.Ratio(instability))
	rec.Set(metric.A, metric.Ratio(abstractness))
	rec.Set(metric.D, metric.Ratio(Distance(abstractness, instability)))

	var concrete, abstract, static, ifaces, ncss, loc int
	for _, c := range pkg.Classes() {
		decl := c.Decl()
		switch {
		case decl.IsInterface():
			ifaces++
		case decl.IsAbstract():
			abstract++
		default:
			concrete++
		}
		if c.Outer() != nil && decl.Modifiers.Has(syntax.Static) {
			static++
		}
		ncss += recorded(c.Metrics(), metric.NCSS, func() int { return class.Statements(decl) })
		for _, m := range c.Methods() {
			loc += recorded(m.Metrics(), metric.LOC, func() int { return method.LinesOfCode(m.Decl().Source) })
		}
	}
	rec.Set(metric.PNOCC, metric.Count(concrete))
	rec.Set(metric.PNOAC, metric.Count(abstract))
	rec.Set(metric.PNOSC, metric.Count(static))
	rec.Set(metric.PNOI, metric.Count(ifaces))
	rec.Set(metric.PNCSS, metric.Count(ncss))
	rec.Set(metric.PLOC, metric.Count(loc))
	return rec.Err()
}

// recorded reads an integer metric from s, computing it when the lower
// level has not run.
func recorded(s *metric.Store, t metric.Type, compute func() int) int {
	if v, ok := s.Get(t); ok && !v.IsUndefined() {
		return int(v.Int64())
	}
	return compute()
}

// couplings returns efferent and afferent coupling: the distinct classes
// outside pkg that its classes depend on, and that depend on its classes.
func couplings(pkg *model.Package, ix *model.Index) (int, int) {
	inside := roaring.New()
	out := roaring.New()
	in := roaring.New()
	for _, c := range pkg.Classes() {
		inside.Add(c.ID())
		out.Or(ix.Dependencies(c))
		in.Or(ix.Dependents(c))
	}
	out.AndNot(inside)
	in.AndNot(inside)
	return int(out.GetCardinality()), int(in.GetCardinality())
}

// Instability is Ce / (Ce + Ca), 0 for a package with no couplings.
func Instability(ce, ca int) float64 {
	if ce+ca == 0 {
		return 0
	}
	return float64(ce) / float64(ce+ca)
}

// Abstractness is the share of abstract classes and interfaces.
func Abstractness(pkg *model.Package) float64 {
	total := len(pkg.Classes())
	if total == 0 {
		return 0
	}
	abstract := 0
	for _, c := range pkg.Classes() {
		if c.Decl().IsAbstract() {
			abstract++
		}
	}
	return float64(abstract) / float64(total)
}

// Distance is the normalized distance from the main sequence, |A + I - 1|.
func Distance(abstractness, instability float64) float64 {
	return math.Abs(abstractness + instability - 1)
}
