package method

import (
	"unicode"
	"unicode/utf8"

	"github.com/panbanda/oometrics/pkg/syntax"
)

// Resolver decides which object a qualified access talks to.
type Resolver interface {
	// Provider returns the key identifying the receiver of a qualified
	// access, and false when the receiver is the enclosing instance.
	Provider(recv *syntax.Node) (string, bool)
}

// TextResolver keys receivers by their normalized source text. Two
// different expressions naming the same object count as two providers, and
// any receiver other than this or super counts as foreign.
type TextResolver struct{}

func (TextResolver) Provider(recv *syntax.Node) (string, bool) {
	r := syntax.Unparen(recv)
	if r == nil || r.Kind == syntax.KindThis || r.Kind == syntax.KindSuper {
		return "", false
	}
	key := syntax.Key(r)
	return key, key != ""
}

// operatorMembers are members every receiver answers; calling them does not
// couple a method to the receiver's class.
var operatorMembers = map[string]bool{
	"equals": true, "hashCode": true, "toString": true, "getClass": true,
	"compareTo": true, "length": true, "size": true, "get": true, "set": true,
	"[]": true,
}

// Coupling summarizes the foreign interactions of one method body.
type Coupling struct {
	// Providers are the distinct receiver keys of every foreign access.
	Providers map[string]bool
	// Calls are the distinct receiver#member pairs of foreign calls,
	// operator members excluded.
	Calls map[string]bool
	// CallSites counts foreign call sites without deduplication.
	CallSites int
}

// NewCoupling scans body for accesses and calls on foreign receivers.
func NewCoupling(body *syntax.Node, r Resolver) *Coupling {
	c := &Coupling{Providers: make(map[string]bool), Calls: make(map[string]bool)}
	if r == nil {
		r = TextResolver{}
	}
	syntax.Inspect(body, func(n *syntax.Node) bool {
		var member string
		switch n.Kind {
		case syntax.KindCall, syntax.KindSelect, syntax.KindSafeCall:
			member = n.Token
		case syntax.KindIndex:
			member = "[]"
		default:
			return true
		}
		if n.Recv == nil {
			return true
		}
		key, foreign := r.Provider(n.Recv)
		if !foreign {
			return true
		}
		c.Providers[key] = true
		if n.Kind == syntax.KindSelect {
			return true
		}
		if n.Kind == syntax.KindCall {
			c.CallSites++
		}
		if !operatorMembers[member] {
			c.Calls[key+"#"+member] = true
		}
		return true
	})
	return c
}

// Intensity is CINT, the number of distinct foreign operations called.
func (c *Coupling) Intensity() int { return len(c.Calls) }

// ForeignProviders is FDP, the number of distinct foreign receivers.
func (c *Coupling) ForeignProviders() int { return len(c.Providers) }

// Dispersion is CDISP: the receivers behind the counted calls over the
// number of counted calls. It is 0 without calls.
func (c *Coupling) Dispersion() float64 {
	if len(c.Calls) == 0 {
		return 0
	}
	receivers := make(map[string]bool, len(c.Calls))
	for pair := range c.Calls {
		receivers[receiverOf(pair)] = true
	}
	return float64(len(receivers)) / float64(len(c.Calls))
}

func receiverOf(pair string) string {
	for i := len(pair) - 1; i >= 0; i-- {
		if pair[i] == '#' {
			return pair[:i]
		}
	}
	return pair
}

// Scope names the variables visible inside a method body.
type Scope struct {
	locals map[string]bool
	field  func(string) bool
}

// NewScope collects the parameters and locals of m. field reports whether
// a name is a field of the enclosing class; it may be nil.
func NewScope(m *syntax.Method, field func(string) bool) *Scope {
	s := &Scope{locals: make(map[string]bool), field: field}
	if s.field == nil {
		s.field = func(string) bool { return false }
	}
	for _, p := range m.Params {
		s.locals[p.Name] = true
	}
	syntax.Inspect(m.Body, func(n *syntax.Node) bool {
		switch n.Kind {
		case syntax.KindVar, syntax.KindCatch, syntax.KindForEach:
			if n.Token != "" {
				s.locals[n.Token] = true
			}
		}
		return true
	})
	return s
}

// IsLocal reports whether name is a parameter or local variable.
func (s *Scope) IsLocal(name string) bool { return s.locals[name] }

// IsField reports whether a bare name refers to a field of the enclosing
// class, i.e. a field not shadowed by a local.
func (s *Scope) IsField(name string) bool { return !s.locals[name] && s.field(name) }

// Accesses are the distinct attributes a method body reads or writes.
type Accesses struct {
	// Own holds field names of the enclosing instance.
	Own map[string]bool
	// Foreign holds receiver#attribute keys of other objects.
	Foreign map[string]bool
}

// NewAccesses collects direct field accesses and accessor calls.
func NewAccesses(body *syntax.Node, s *Scope, r Resolver) *Accesses {
	a := &Accesses{Own: make(map[string]bool), Foreign: make(map[string]bool)}
	if r == nil {
		r = TextResolver{}
	}
	syntax.Inspect(body, func(n *syntax.Node) bool {
		switch n.Kind {
		case syntax.KindIdent:
			if s.IsField(n.Token) {
				a.Own[n.Token] = true
			}
		case syntax.KindSelect, syntax.KindSafeCall:
			if key, foreign := r.Provider(n.Recv); foreign {
				a.Foreign[key+"#"+n.Token] = true
			} else {
				a.Own[n.Token] = true
			}
		case syntax.KindCall:
			attr, ok := AccessorField(n.Callee(), len(n.Args()))
			if !ok {
				return true
			}
			if n.Recv == nil {
				if s.IsField(attr) {
					a.Own[attr] = true
				}
				return true
			}
			if key, foreign := r.Provider(n.Recv); foreign {
				a.Foreign[key+"#"+attr] = true
			} else if s.field(attr) {
				a.Own[attr] = true
			}
		}
		return true
	})
	return a
}

// Locality is LAA: own accesses over all accesses, 0 without accesses.
func (a *Accesses) Locality() float64 {
	total := len(a.Own) + len(a.Foreign)
	if total == 0 {
		return 0
	}
	return float64(len(a.Own)) / float64(total)
}

// AccessorField returns the attribute a getter or setter call exposes:
// getX() and isX() with no arguments, setX(v) with one.
func AccessorField(name string, args int) (string, bool) {
	for _, prefix := range []string{"get", "is", "set"} {
		if len(name) <= len(prefix) || name[:len(prefix)] != prefix {
			continue
		}
		rest := name[len(prefix):]
		r, size := utf8.DecodeRuneInString(rest)
		if !unicode.IsUpper(r) {
			continue
		}
		want := 0
		if prefix == "set" {
			want = 1
		}
		if args != want {
			return "", false
		}
		return string(unicode.ToLower(r)) + rest[size:], true
	}
	return "", false
}

// AccessedVariables is NOAV: the distinct parameters, locals and fields a
// body references outside callee position.
func AccessedVariables(body *syntax.Node, s *Scope) int {
	seen := make(map[string]bool)
	syntax.Inspect(body, func(n *syntax.Node) bool {
		switch n.Kind {
		case syntax.KindIdent:
			if s.IsLocal(n.Token) || s.field(n.Token) {
				seen[n.Token] = true
			}
		case syntax.KindSelect:
			if r := syntax.Unparen(n.Recv); r != nil && r.Kind == syntax.KindThis && s.field(n.Token) {
				seen[n.Token] = true
			}
		}
		return true
	})
	return len(seen)
}
