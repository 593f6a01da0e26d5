package class

import (
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/panbanda/oometrics/pkg/analyzer/method"
	"github.com/panbanda/oometrics/pkg/syntax"
)

// boilerplate methods never take part in cohesion.
var boilerplate = map[string]bool{
	"toString": true, "equals": true, "hashCode": true, "finalize": true,
	"clone": true, "readObject": true, "writeObject": true,
}

// lackOfCohesion is LCOM: the number of connected components among the
// instance methods that use a field, where two methods connect when they
// share a field or one calls the other.
func lackOfCohesion(fieldCount int, profiles []*profile) int {
	if fieldCount == 0 || len(profiles) == 0 {
		return 0
	}
	var members []*profile
	for _, p := range profiles {
		if p.isStatic() || boilerplate[p.decl.Name] || len(p.fields) == 0 {
			continue
		}
		members = append(members, p)
	}
	if len(members) == 0 {
		return 0
	}

	g := simple.NewUndirectedGraph()
	for i := range members {
		g.AddNode(simple.Node(i))
	}
	for i := 0; i < len(members); i++ {
		for j := i + 1; j < len(members); j++ {
			a, b := members[i], members[j]
			if a.sharesField(b) || a.calls(b) || b.calls(a) {
				g.SetEdge(simple.Edge{F: simple.Node(i), T: simple.Node(j)})
			}
		}
	}
	return len(topo.ConnectedComponents(g))
}

// tightCohesion is TCC: the share of pairs of visible instance methods
// that access at least one common field.
func tightCohesion(profiles []*profile) float64 {
	var visible []*profile
	for _, p := range profiles {
		if p.isStatic() || p.isConstructor() || !p.decl.HasBody() {
			continue
		}
		if p.decl.Modifiers.Visibility() == syntax.VisibilityPrivate {
			continue
		}
		visible = append(visible, p)
	}
	n := len(visible)
	if n < 2 {
		return 0
	}
	connected := 0
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if visible[i].sharesField(visible[j]) {
				connected++
			}
		}
	}
	return float64(connected) / float64(n*(n-1)/2)
}

// isAccessor reports whether a method is a getter or setter.
func isAccessor(m *syntax.Method) bool {
	if m.Kind == syntax.MethodConstructor || m.Modifiers.Has(syntax.Static) {
		return false
	}
	_, ok := method.AccessorField(m.Name, len(m.Params))
	return ok
}

// weightOfClass is WOC: public functional methods over public members.
func weightOfClass(decl *syntax.Class) float64 {
	var functional, members int
	for _, f := range decl.Fields {
		if f.Modifiers.Visibility() == syntax.VisibilityPublic {
			members++
		}
	}
	for _, m := range decl.Methods {
		if m.Kind == syntax.MethodConstructor || !isPublic(decl, m.Modifiers) {
			continue
		}
		members++
		if !isAccessor(m) {
			functional++
		}
	}
	if members == 0 {
		return 0
	}
	return float64(functional) / float64(members)
}

// isPublic treats interface members as public.
func isPublic(decl *syntax.Class, mods syntax.Modifiers) bool {
	if decl.IsInterface() && !mods.Has(syntax.Private) {
		return true
	}
	return mods.Visibility() == syntax.VisibilityPublic
}
