package class

import (
	"github.com/panbanda/oometrics/pkg/model"
	"github.com/panbanda/oometrics/pkg/syntax"
)

// inheritance relates a class's members to those of its resolved
// superclass chain.
type inheritance struct {
	c         *model.Class
	ancestors []*model.Class
	inherited map[string]bool // signatures of non-private ancestor methods
}

func newInheritance(c *model.Class, ix *model.Index) *inheritance {
	inh := &inheritance{c: c, ancestors: ix.Ancestors(c), inherited: make(map[string]bool)}
	for _, sup := range inh.ancestors {
		for _, m := range sup.Methods() {
			if inheritable(m.Decl()) {
				inh.inherited[m.Signature()] = true
			}
		}
	}
	return inh
}

func inheritable(m *syntax.Method) bool {
	return m.Kind != syntax.MethodConstructor &&
		!m.Modifiers.Has(syntax.Static) &&
		m.Modifiers.Visibility() != syntax.VisibilityPrivate
}

// overridden is NOOM: declared methods replacing an inherited one.
func (inh *inheritance) overridden() int {
	n := 0
	for _, m := range inh.c.Methods() {
		if inheritable(m.Decl()) && inh.inherited[m.Signature()] {
			n++
		}
	}
	return n
}

// added is NOAM: declared methods that override nothing.
func (inh *inheritance) added() int {
	n := 0
	for _, m := range inh.c.Methods() {
		if m.Decl().Kind == syntax.MethodConstructor {
			continue
		}
		if !inh.inherited[m.Signature()] {
			n++
		}
	}
	return n
}

// operations is NOO: declared methods plus inherited ones not redeclared.
func (inh *inheritance) operations() int {
	declared := make(map[string]bool, len(inh.c.Methods()))
	for _, m := range inh.c.Methods() {
		declared[m.Signature()] = true
	}
	n := len(inh.c.Methods())
	for sig := range inh.inherited {
		if !declared[sig] {
			n++
		}
	}
	return n
}

// size is SIZE2: instance fields and methods, own and inherited.
func (inh *inheritance) size() int {
	n := instanceMembers(inh.c.Decl(), true)
	for _, sup := range inh.ancestors {
		n += instanceMembers(sup.Decl(), false)
	}
	return n
}

func instanceMembers(decl *syntax.Class, constructors bool) int {
	n := 0
	for _, f := range decl.Fields {
		if !f.Modifiers.Has(syntax.Static) {
			n++
		}
	}
	for _, m := range decl.Methods {
		if m.Modifiers.Has(syntax.Static) {
			continue
		}
		if m.Kind == syntax.MethodConstructor && !constructors {
			continue
		}
		n++
	}
	return n
}
