// Package mood computes the project-wide MOOD metrics (hiding, inheritance,
// coupling and polymorphism factors) and project statistics.
package mood

import (
	"github.com/panbanda/oometrics/pkg/analyzer/method"
	"github.com/panbanda/oometrics/pkg/metric"
	"github.com/panbanda/oometrics/pkg/model"
	"github.com/panbanda/oometrics/pkg/syntax"
)

// Types lists the metrics Calculate records.
var Types = []metric.Type{
	metric.MHF, metric.AHF, metric.MIF, metric.AIF, metric.CF, metric.PF,
	metric.TNOP, metric.TNOC, metric.TNOM, metric.TLOC,
}

// Calculate records the MOOD factors and project statistics of proj.
func Calculate(proj *model.Project) error {
	rec := metric.NewRecorder(proj.Metrics())
	s := newSurvey(proj)

	rec.Set(metric.MHF, s.methodHiding())
	rec.Set(metric.AHF, s.attributeHiding())
	rec.Set(metric.MIF, metric.Div(float64(s.inheritedMethods), float64(s.availableMethods)))
	rec.Set(metric.AIF, metric.Div(float64(s.inheritedFields), float64(s.availableFields)))
	rec.Set(metric.CF, s.couplingFactor())
	rec.Set(metric.PF, s.polymorphismFactor())

	rec.Set(metric.TNOP, metric.Count(len(proj.Packages())))
	rec.Set(metric.TNOC, metric.Count(len(s.classes)))
	rec.Set(metric.TNOM, metric.Count(s.methods))
	rec.Set(metric.TLOC, metric.Count(s.loc))
	return rec.Err()
}

// visibility tallies how many other classes see a set of members.
type visibility struct {
	members    int
	public     int
	perPackage map[string]int // package-private members by package
	protected  float64        // sum of subclass counts of protected members
}

func newVisibility() visibility { return visibility{perPackage: make(map[string]int)} }

// survey walks every class once, collecting the counts the factors need.
type survey struct {
	ix       *model.Index
	classes  []*model.Class
	perPkg   map[string]int
	methods  int
	loc      int
	subclass map[uint32]int

	methodVis, fieldVis visibility

	availableMethods, inheritedMethods int
	availableFields, inheritedFields   int
	overriding, potential              int
}

func newSurvey(proj *model.Project) *survey {
	s := &survey{
		ix:        proj.Index(),
		classes:   proj.Classes(),
		perPkg:    make(map[string]int),
		subclass:  make(map[uint32]int),
		methodVis: newVisibility(),
		fieldVis:  newVisibility(),
	}
	for _, c := range s.classes {
		pkg := c.File().Package
		s.perPkg[pkg]++
		decl := c.Decl()
		for _, f := range decl.Fields {
			s.fieldVis.add(s, c, f.Modifiers)
		}
		for _, m := range c.Methods() {
			s.methods++
			s.methodVis.add(s, c, m.Decl().Modifiers)
			if v, ok := m.Metrics().Get(metric.LOC); ok {
				s.loc += int(v.Int64())
			} else {
				s.loc += method.LinesOfCode(m.Decl().Source)
			}
		}
		s.inheritance(c)
		s.polymorphism(c)
	}
	return s
}

func (v *visibility) add(s *survey, c *model.Class, mods syntax.Modifiers) {
	v.members++
	decl := c.Decl()
	switch {
	case mods.Has(syntax.Private) || decl.Modifiers.Has(syntax.Private):
	case mods.Has(syntax.Protected) || decl.Modifiers.Has(syntax.Protected):
		v.protected += float64(s.subclasses(c))
	case (mods.Has(syntax.Public) || decl.IsInterface()) && decl.Modifiers.Has(syntax.Public):
		v.public++
	default:
		v.perPackage[c.File().Package]++
	}
}

// subclasses counts the concrete and abstract classes inheriting from c.
func (s *survey) subclasses(c *model.Class) int {
	if n, ok := s.subclass[c.ID()]; ok {
		return n
	}
	n := 0
	for _, d := range s.ix.Descendants(c) {
		if !d.Decl().IsInterface() {
			n++
		}
	}
	s.subclass[c.ID()] = n
	return n
}

// hiding is (M(TC-1) - visible) / (M(TC-1)), 0 without members or with a
// single class.
func (s *survey) hiding(v visibility) metric.Value {
	others := float64(len(s.classes) - 1)
	denominator := float64(v.members) * others
	visible := float64(v.public)*others + v.protected
	for pkg, n := range v.perPackage {
		visible += float64(n) * float64(s.perPkg[pkg]-1)
	}
	return metric.Div(denominator-visible, denominator)
}

func (s *survey) methodHiding() metric.Value    { return s.hiding(s.methodVis) }
func (s *survey) attributeHiding() metric.Value { return s.hiding(s.fieldVis) }

// inheritance counts own and inherited members available in c. Inherited
// methods redeclared closer to c are not counted again.
func (s *survey) inheritance(c *model.Class) {
	seen := make(map[string]bool)
	for _, m := range c.Methods() {
		seen[m.Signature()] = true
		s.availableMethods++
	}
	s.availableFields += len(c.Decl().Fields)
	for _, sup := range s.ix.Ancestors(c) {
		for _, m := range sup.Methods() {
			d := m.Decl()
			if d.Kind == syntax.MethodConstructor || d.Modifiers.Has(syntax.Private) || seen[m.Signature()] {
				continue
			}
			seen[m.Signature()] = true
			s.availableMethods++
			s.inheritedMethods++
		}
		for _, f := range sup.Decl().Fields {
			if f.Modifiers.Has(syntax.Private) {
				continue
			}
			s.availableFields++
			s.inheritedFields++
		}
	}
}

// polymorphism counts methods of c overriding a supertype method, and the
// override potential of the methods c introduces.
func (s *survey) polymorphism(c *model.Class) {
	inherited := make(map[string]bool)
	for _, sup := range s.supertypes(c) {
		for _, m := range sup.Methods() {
			if overridable(m.Decl()) {
				inherited[m.Signature()] = true
			}
		}
	}
	fresh := 0
	for _, m := range c.Methods() {
		if !overridable(m.Decl()) {
			continue
		}
		if inherited[m.Signature()] {
			s.overriding++
		} else {
			fresh++
		}
	}
	s.potential += fresh * s.subclasses(c)
}

func overridable(m *syntax.Method) bool {
	return m.Kind != syntax.MethodConstructor && !m.Modifiers.Has(syntax.Private) && !m.Modifiers.Has(syntax.Static)
}

// supertypes returns every resolved transitive supertype of c.
func (s *survey) supertypes(c *model.Class) []*model.Class {
	var out []*model.Class
	seen := map[uint32]bool{c.ID(): true}
	stack := append([]*model.Class(nil), s.ix.Supertypes(c)...)
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[n.ID()] {
			continue
		}
		seen[n.ID()] = true
		out = append(out, n)
		stack = append(stack, s.ix.Supertypes(n)...)
	}
	return out
}

// couplingFactor is CF: client-supplier relations not due to inheritance
// over the n(n-1) possible ones.
func (s *survey) couplingFactor() metric.Value {
	var relations uint64
	for _, c := range s.classes {
		deps := s.ix.Dependencies(c)
		deps.AndNot(s.ix.AncestorSet(c))
		relations += deps.GetCardinality()
	}
	n := float64(len(s.classes))
	return metric.Div(float64(relations), n*(n-1))
}

// polymorphismFactor is PF: overrides over override potential, 1 when no
// class could be overridden.
func (s *survey) polymorphismFactor() metric.Value {
	if s.potential == 0 {
		return metric.Ratio(1)
	}
	return metric.Div(float64(s.overriding), float64(s.potential))
}
