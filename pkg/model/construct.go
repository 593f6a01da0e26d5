// Package model builds the construct tree (project, packages, classes,
// methods) the calculators fill with metrics.
package model

import (
	"strconv"
	"weak"

	"github.com/panbanda/oometrics/pkg/metric"
	"github.com/panbanda/oometrics/pkg/syntax"
)

// Construct is a named, leveled unit of analysis owning a metric store.
// Parent is nil at the top of the tree or once the parent is unreachable.
type Construct interface {
	Name() string
	Level() metric.Level
	Metrics() *metric.Store
	Parent() Construct
	Children() []Construct
}

// DefaultPackage names the package of files without a package clause.
const DefaultPackage = "(default)"

// Project is the root construct.
type Project struct {
	name     string
	store    *metric.Store
	packages []*Package
	index    *Index
}

func (p *Project) Name() string           { return p.name }
func (p *Project) Level() metric.Level    { return metric.LevelProject }
func (p *Project) Metrics() *metric.Store { return p.store }
func (p *Project) Parent() Construct      { return nil }

func (p *Project) Children() []Construct {
	out := make([]Construct, len(p.packages))
	for i, pkg := range p.packages {
		out[i] = pkg
	}
	return out
}

// Packages returns the project's packages sorted by name.
func (p *Project) Packages() []*Package { return p.packages }

// Index returns the resolved inheritance and dependency index.
func (p *Project) Index() *Index { return p.index }

// Classes returns every class in the project, package by package.
func (p *Project) Classes() []*Class {
	var out []*Class
	for _, pkg := range p.packages {
		out = append(out, pkg.classes...)
	}
	return out
}

// Methods returns every method in the project.
func (p *Project) Methods() []*Method {
	var out []*Method
	for _, c := range p.Classes() {
		out = append(out, c.methods...)
	}
	return out
}

// Package groups the classes declared under one package name.
type Package struct {
	name    string
	store   *metric.Store
	parent  weak.Pointer[Project]
	classes []*Class
}

func (p *Package) Name() string           { return p.name }
func (p *Package) Level() metric.Level    { return metric.LevelPackage }
func (p *Package) Metrics() *metric.Store { return p.store }

func (p *Package) Parent() Construct {
	if proj := p.parent.Value(); proj != nil {
		return proj
	}
	return nil
}

func (p *Package) Children() []Construct {
	out := make([]Construct, len(p.classes))
	for i, c := range p.classes {
		out[i] = c
	}
	return out
}

// Project returns the owning project, or nil.
func (p *Package) Project() *Project { return p.parent.Value() }

// Classes returns the package's classes in declaration order.
func (p *Package) Classes() []*Class { return p.classes }

// Class is a declared type. Named nested types are classes of their own,
// named Outer.Inner.
type Class struct {
	id        uint32
	name      string
	qualified string
	decl      *syntax.Class
	file      *syntax.File
	store     *metric.Store
	parent    weak.Pointer[Package]
	outer     *Class
	methods   []*Method
	fields    map[string]*syntax.Field
}

func (c *Class) Name() string           { return c.name }
func (c *Class) Level() metric.Level    { return metric.LevelClass }
func (c *Class) Metrics() *metric.Store { return c.store }

func (c *Class) Parent() Construct {
	if pkg := c.parent.Value(); pkg != nil {
		return pkg
	}
	return nil
}

func (c *Class) Children() []Construct {
	out := make([]Construct, len(c.methods))
	for i, m := range c.methods {
		out[i] = m
	}
	return out
}

// ID is the dense index of the class within its project.
func (c *Class) ID() uint32 { return c.id }

// QualifiedName is the package-qualified name.
func (c *Class) QualifiedName() string { return c.qualified }

// Decl returns the class declaration.
func (c *Class) Decl() *syntax.Class { return c.decl }

// File returns the compilation unit declaring the class.
func (c *Class) File() *syntax.File { return c.file }

// Package returns the owning package, or nil.
func (c *Class) Package() *Package { return c.parent.Value() }

// Outer returns the enclosing class of a nested class.
func (c *Class) Outer() *Class { return c.outer }

// Methods returns the declared methods and constructors.
func (c *Class) Methods() []*Method { return c.methods }

// Field returns the declared field called name, or nil.
func (c *Class) Field(name string) *syntax.Field { return c.fields[name] }

// HasField reports whether the class declares a field called name.
func (c *Class) HasField(name string) bool { return c.fields[name] != nil }

// Method is a declared method or constructor. The facts calculators need
// about the declaring class are copied in at build time, so they stay
// available after the class itself is unreachable.
type Method struct {
	decl   *syntax.Method
	store  *metric.Store
	parent weak.Pointer[Class]
	owner  string
	file   *syntax.File
	fields map[string]*syntax.Field
}

func (m *Method) Name() string           { return m.decl.Name }
func (m *Method) Level() metric.Level    { return metric.LevelMethod }
func (m *Method) Metrics() *metric.Store { return m.store }
func (m *Method) Children() []Construct  { return nil }

func (m *Method) Parent() Construct {
	if c := m.parent.Value(); c != nil {
		return c
	}
	return nil
}

// Class returns the declaring class, or nil.
func (m *Method) Class() *Class { return m.parent.Value() }

// Decl returns the method declaration.
func (m *Method) Decl() *syntax.Method { return m.decl }

// ClassName is the qualified name of the declaring class.
func (m *Method) ClassName() string { return m.owner }

// File returns the compilation unit declaring the method.
func (m *Method) File() *syntax.File { return m.file }

// HasField reports whether the declaring class declares a field called name.
func (m *Method) HasField(name string) bool { return m.fields[name] != nil }

// Arity is the number of declared parameters.
func (m *Method) Arity() int { return len(m.decl.Params) }

// Signature identifies a method by name and arity, e.g. "add/2".
func (m *Method) Signature() string { return Signature(m.decl.Name, len(m.decl.Params)) }

// Signature formats a name/arity key.
func Signature(name string, arity int) string {
	return name + "/" + strconv.Itoa(arity)
}
