package model

import (
	"unicode"

	"github.com/panbanda/oometrics/pkg/syntax"
)

// referencedTypes lists every type name a class mentions: supertypes,
// member signatures, and inside bodies constructor calls, local variable
// and catch types, and capitalized receivers of static calls.
func referencedTypes(c *Class) []string {
	d := c.decl
	var out []string
	out = append(out, d.Supertypes()...)
	for _, f := range d.Fields {
		out = appendTypeNames(out, f.Type)
	}
	for _, m := range d.Methods {
		out = appendTypeNames(out, m.Result)
		for _, p := range m.Params {
			out = appendTypeNames(out, p.Type)
		}
		out = appendBodyTypes(out, c, m)
	}
	return out
}

func appendTypeNames(out []string, t syntax.TypeRef) []string {
	if t.Name != "" && !t.IsPrimitive() {
		out = append(out, t.Name)
	}
	for _, a := range t.Args {
		out = appendTypeNames(out, a)
	}
	return out
}

func appendBodyTypes(out []string, c *Class, m *syntax.Method) []string {
	if m.Body == nil {
		return out
	}
	locals := make(map[string]bool, len(m.Params))
	for _, p := range m.Params {
		locals[p.Name] = true
	}
	syntax.Inspect(m.Body, func(n *syntax.Node) bool {
		switch n.Kind {
		case syntax.KindNew:
			out = append(out, n.Token)
		case syntax.KindVar:
			locals[n.Token] = true
			if n.Label != "" {
				out = append(out, n.Label)
			}
		case syntax.KindCatch:
			locals[n.Token] = true
			if n.Label != "" {
				out = append(out, n.Label)
			}
		case syntax.KindCall, syntax.KindSelect, syntax.KindMethodRef:
			if r := n.Recv; r != nil && r.Kind == syntax.KindIdent && IsTypeLike(r.Token) &&
				!locals[r.Token] && !c.HasField(r.Token) {
				out = append(out, r.Token)
			}
		}
		return true
	})
	return out
}

// IsTypeLike reports whether an identifier looks like a type name
// (capitalized and not all upper case constant style).
func IsTypeLike(name string) bool {
	if name == "" {
		return false
	}
	runes := []rune(name)
	if !unicode.IsUpper(runes[0]) {
		return false
	}
	for _, r := range runes[1:] {
		if unicode.IsLower(r) {
			return true
		}
	}
	return len(runes) == 1
}
