package model

import (
	"strings"

	"github.com/RoaringBitmap/roaring/v2"
)

// Index holds project-wide relationships resolved after every declaration
// has been collected: the inheritance graph in both directions and the
// class-to-class dependency sets.
type Index struct {
	classes     []*Class
	byQualified map[string]*Class
	bySimple    map[string][]*Class

	// superclass maps class id to its resolved superclass, nil when external
	superclass []*Class
	// supertypes maps class id to every resolved direct supertype
	supertypes [][]*Class
	// children maps class id to the classes naming it as a direct supertype
	children [][]*Class

	// deps maps class id to the ids of the project classes it references
	deps []*roaring.Bitmap
	// users maps class id to the ids of the project classes referencing it
	users []*roaring.Bitmap

	cycles [][]*Class
	// cycleLen maps the id of a class on a superclass cycle to its length
	cycleLen map[uint32]int
}

func newIndex(classes []*Class) *Index {
	ix := &Index{
		classes:     classes,
		byQualified: make(map[string]*Class, len(classes)),
		bySimple:    make(map[string][]*Class, len(classes)),
		superclass:  make([]*Class, len(classes)),
		supertypes:  make([][]*Class, len(classes)),
		children:    make([][]*Class, len(classes)),
		deps:        make([]*roaring.Bitmap, len(classes)),
		users:       make([]*roaring.Bitmap, len(classes)),
	}
	for _, c := range classes {
		ix.byQualified[c.qualified] = c
		ix.bySimple[c.decl.Name] = append(ix.bySimple[c.decl.Name], c)
		if c.outer != nil {
			ix.bySimple[c.name] = append(ix.bySimple[c.name], c)
		}
		ix.deps[c.id] = roaring.New()
		ix.users[c.id] = roaring.New()
	}
	return ix
}

func (ix *Index) resolve() {
	for _, c := range ix.classes {
		if c.decl.Super != "" {
			if sup := ix.Resolve(c.decl.Super, c); sup != nil && sup != c {
				ix.superclass[c.id] = sup
				ix.supertypes[c.id] = append(ix.supertypes[c.id], sup)
			}
		}
		for _, name := range c.decl.Interfaces {
			if iface := ix.Resolve(name, c); iface != nil && iface != c {
				ix.supertypes[c.id] = append(ix.supertypes[c.id], iface)
			}
		}
		for _, parent := range ix.supertypes[c.id] {
			ix.children[parent.id] = append(ix.children[parent.id], c)
		}
	}

	ix.cycles = superclassCycles(ix.classes, ix.superclass)
	ix.cycleLen = make(map[uint32]int)
	for _, cycle := range ix.cycles {
		for _, c := range cycle {
			ix.cycleLen[c.id] = len(cycle)
		}
	}

	for _, c := range ix.classes {
		for _, name := range referencedTypes(c) {
			target := ix.Resolve(name, c)
			if target == nil || target == c {
				continue
			}
			ix.deps[c.id].Add(target.id)
			ix.users[target.id].Add(c.id)
		}
	}
}

// Classes returns every class, indexed by ID.
func (ix *Index) Classes() []*Class { return ix.classes }

// Class returns the class with the given ID.
func (ix *Index) Class(id uint32) *Class {
	if int(id) >= len(ix.classes) {
		return nil
	}
	return ix.classes[id]
}

// Lookup finds a class by qualified name.
func (ix *Index) Lookup(qualified string) *Class { return ix.byQualified[qualified] }

// Resolve maps a type name as written inside from to a project class.
// Resolution is textual: same package first, then imports, then a unique
// simple-name match. It returns nil for external or ambiguous names.
func (ix *Index) Resolve(name string, from *Class) *Class {
	name = baseTypeName(name)
	if name == "" {
		return nil
	}
	if c := ix.byQualified[name]; c != nil {
		return c
	}

	simple := name
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		// Outer.Inner or pkg.Type written partially qualified.
		if cands := ix.bySimple[name]; len(cands) == 1 {
			return cands[0]
		}
		simple = name[i+1:]
	}
	cands := ix.bySimple[simple]
	if len(cands) == 0 {
		return nil
	}
	if len(cands) == 1 && simple == name {
		return cands[0]
	}

	if from != nil {
		pkg := from.file.Package
		for outer := from; outer != nil; outer = outer.outer {
			for _, cand := range cands {
				if cand.outer == outer {
					return cand
				}
			}
		}
		for _, cand := range cands {
			if cand.file.Package == pkg && cand.outer == nil && cand.decl.Name == simple {
				return cand
			}
		}
		for _, imp := range from.file.Imports {
			for _, cand := range cands {
				if imp == cand.qualified || (strings.HasSuffix(imp, ".*") && strings.TrimSuffix(imp, ".*") == cand.file.Package) {
					return cand
				}
			}
		}
	}
	if len(cands) == 1 {
		return cands[0]
	}
	return nil
}

// baseTypeName strips generic arguments, array brackets and varargs.
func baseTypeName(name string) string {
	if i := strings.IndexByte(name, '<'); i >= 0 {
		name = name[:i]
	}
	name = strings.TrimSuffix(name, "...")
	for strings.HasSuffix(name, "[]") {
		name = strings.TrimSuffix(name, "[]")
	}
	return strings.TrimSpace(name)
}

// Superclass returns the resolved superclass of c, or nil.
func (ix *Index) Superclass(c *Class) *Class { return ix.superclass[c.id] }

// Supertypes returns the resolved direct supertypes of c.
func (ix *Index) Supertypes(c *Class) []*Class { return ix.supertypes[c.id] }

// Children returns the classes that name c as a direct supertype.
func (ix *Index) Children(c *Class) []*Class { return ix.children[c.id] }

// NOC is the number of direct subtypes of c.
func (ix *Index) NOC(c *Class) int { return len(ix.children[c.id]) }

// DIT is 1 plus the length of the superclass chain of c. An unresolved
// external superclass counts as one link. A chain that enters a cycle
// counts each class of the cycle once.
func (ix *Index) DIT(c *Class) int {
	depth := 1
	for {
		if n, ok := ix.cycleLen[c.id]; ok {
			return depth + n - 1
		}
		if c.decl.IsInterface() || c.decl.Super == "" {
			return depth
		}
		sup := ix.superclass[c.id]
		if sup == nil {
			return depth + 1
		}
		depth++
		c = sup
	}
}

// InheritanceCycles returns the superclass cycles found while resolving.
// Valid Java has none; they appear when sources do not compile.
func (ix *Index) InheritanceCycles() [][]*Class { return ix.cycles }

// Ancestors returns the resolved superclass chain of c, nearest first.
func (ix *Index) Ancestors(c *Class) []*Class {
	var out []*Class
	visited := map[uint32]bool{c.id: true}
	for sup := ix.superclass[c.id]; sup != nil && !visited[sup.id]; sup = ix.superclass[sup.id] {
		visited[sup.id] = true
		out = append(out, sup)
	}
	return out
}

// Descendants returns every class that transitively inherits from c.
func (ix *Index) Descendants(c *Class) []*Class {
	var out []*Class
	seen := roaring.New()
	seen.Add(c.id)
	queue := append([]*Class(nil), ix.children[c.id]...)
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		if !seen.CheckedAdd(next.id) {
			continue
		}
		out = append(out, next)
		queue = append(queue, ix.children[next.id]...)
	}
	return out
}

// IsAncestor reports whether a is a transitive supertype of b.
func (ix *Index) IsAncestor(a, b *Class) bool { return ix.AncestorSet(b).Contains(a.id) }

// AncestorSet returns the ids of every transitive supertype of c,
// superclasses and interfaces alike.
func (ix *Index) AncestorSet(c *Class) *roaring.Bitmap {
	seen := roaring.New()
	stack := append([]*Class(nil), ix.supertypes[c.id]...)
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !seen.CheckedAdd(n.id) {
			continue
		}
		stack = append(stack, ix.supertypes[n.id]...)
	}
	return seen
}

// Dependencies returns the ids of project classes c references.
// The bitmap is a copy.
func (ix *Index) Dependencies(c *Class) *roaring.Bitmap { return ix.deps[c.id].Clone() }

// Dependents returns the ids of project classes referencing c.
// The bitmap is a copy.
func (ix *Index) Dependents(c *Class) *roaring.Bitmap { return ix.users[c.id].Clone() }

// DependsOn reports whether c references target.
func (ix *Index) DependsOn(c, target *Class) bool { return ix.deps[c.id].Contains(target.id) }
