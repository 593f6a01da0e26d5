package class

import (
	"github.com/panbanda/oometrics/pkg/analyzer/method"
	"github.com/panbanda/oometrics/pkg/model"
	"github.com/panbanda/oometrics/pkg/syntax"
)

// profile is what one method body contributes to its class.
type profile struct {
	m        *model.Method
	decl     *syntax.Method
	fields   map[string]bool // own fields of the class the body touches
	foreign  map[string]bool
	ownCalls map[string]bool // signatures of methods invoked on this
	invoked  map[string]bool
	sites    int
	halstead *method.Halstead
}

func newProfile(c *model.Class, m *model.Method, r method.Resolver) *profile {
	decl := m.Decl()
	p := &profile{
		m:        m,
		decl:     decl,
		fields:   make(map[string]bool),
		foreign:  make(map[string]bool),
		ownCalls: make(map[string]bool),
		invoked:  make(map[string]bool),
		halstead: method.NewHalstead(decl.Body),
	}
	if !decl.HasBody() {
		return p
	}

	scope := method.NewScope(decl, c.HasField)
	acc := method.NewAccesses(decl.Body, scope, r)
	for name := range acc.Own {
		if c.HasField(name) {
			p.fields[name] = true
		}
	}
	p.foreign = acc.Foreign
	p.sites = method.NewCoupling(decl.Body, r).CallSites

	syntax.Inspect(decl.Body, func(n *syntax.Node) bool {
		switch n.Kind {
		case syntax.KindCall:
			sig := model.Signature(n.Callee(), len(n.Args()))
			recv := syntax.Unparen(n.Recv)
			if recv == nil || recv.Kind == syntax.KindThis {
				p.ownCalls[sig] = true
				p.invoked[sig] = true
			} else {
				p.invoked[syntax.Key(recv)+"#"+sig] = true
			}
		case syntax.KindNew:
			p.invoked["new "+model.Signature(n.Token, len(n.Args()))] = true
		}
		return true
	})
	return p
}

func (p *profile) isStatic() bool      { return p.decl.Modifiers.Has(syntax.Static) }
func (p *profile) isConstructor() bool { return p.decl.Kind == syntax.MethodConstructor }

func (p *profile) sharesField(o *profile) bool {
	for f := range p.fields {
		if o.fields[f] {
			return true
		}
	}
	return false
}

func (p *profile) calls(o *profile) bool {
	return p.ownCalls[o.m.Signature()]
}
