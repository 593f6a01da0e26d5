package syntax

import (
	"context"
	"strings"
)

// Modifiers is a bit set of declaration modifiers.
type Modifiers uint16

const (
	Public Modifiers = 1 << iota
	Protected
	Private
	Static
	Abstract
	Final
	Default
)

// Has reports whether all bits of x are set.
func (m Modifiers) Has(x Modifiers) bool { return m&x == x }

// Visibility is the effective access level of a member.
type Visibility uint8

const (
	VisibilityPackage Visibility = iota
	VisibilityPublic
	VisibilityProtected
	VisibilityPrivate
)

// Visibility derives the access level; no access modifier means package-private.
func (m Modifiers) Visibility() Visibility {
	switch {
	case m.Has(Public):
		return VisibilityPublic
	case m.Has(Protected):
		return VisibilityProtected
	case m.Has(Private):
		return VisibilityPrivate
	}
	return VisibilityPackage
}

// TypeRef is a textual type reference as written in source.
type TypeRef struct {
	Name string    `json:"name"`
	Args []TypeRef `json:"args,omitempty"`
	Dims int       `json:"dims,omitempty"`
}

var primitiveTypes = map[string]bool{
	"boolean": true, "byte": true, "char": true, "short": true,
	"int": true, "long": true, "float": true, "double": true, "void": true,
}

// IsPrimitive reports whether the reference is a primitive value type.
// Arrays of primitives are not primitive.
func (t TypeRef) IsPrimitive() bool {
	return t.Dims == 0 && primitiveTypes[t.Name]
}

// Simple returns the unqualified name without package prefix.
func (t TypeRef) Simple() string {
	if i := strings.LastIndexByte(t.Name, '.'); i >= 0 {
		return t.Name[i+1:]
	}
	return t.Name
}

func (t TypeRef) String() string {
	var b strings.Builder
	b.WriteString(t.Name)
	if len(t.Args) > 0 {
		b.WriteByte('<')
		for i, a := range t.Args {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(a.String())
		}
		b.WriteByte('>')
	}
	for i := 0; i < t.Dims; i++ {
		b.WriteString("[]")
	}
	return b.String()
}

// Param is a method parameter.
type Param struct {
	Name string
	Type TypeRef
}

// Field is a declared attribute.
type Field struct {
	Name      string
	Type      TypeRef
	Modifiers Modifiers
	Line      int
}

// MethodKind distinguishes methods from constructors.
type MethodKind uint8

const (
	MethodRegular MethodKind = iota
	MethodConstructor
)

// Method is a declared method or constructor. Body is nil for abstract and
// interface methods.
type Method struct {
	Name      string
	Kind      MethodKind
	Modifiers Modifiers
	Params    []Param
	Result    TypeRef
	Body      *Node
	Source    string
	StartLine int
	EndLine   int
}

// HasBody reports whether the method carries a body.
func (m *Method) HasBody() bool { return m.Body != nil }

// ClassKind is the declaration keyword of a type.
type ClassKind uint8

const (
	ClassRegular ClassKind = iota
	ClassInterface
	ClassEnum
	ClassRecord
	ClassAnnotation
)

func (k ClassKind) String() string {
	switch k {
	case ClassInterface:
		return "interface"
	case ClassEnum:
		return "enum"
	case ClassRecord:
		return "record"
	case ClassAnnotation:
		return "annotation"
	}
	return "class"
}

// Class is a declared type. Nested holds named member types; anonymous
// classes are never represented.
type Class struct {
	Name       string
	Kind       ClassKind
	Modifiers  Modifiers
	Super      string
	Interfaces []string
	TypeParams []string
	Fields     []*Field
	Methods    []*Method
	Nested     []*Class
	StartLine  int
	EndLine    int
}

// IsInterface reports whether the type is an interface or annotation.
func (c *Class) IsInterface() bool {
	return c.Kind == ClassInterface || c.Kind == ClassAnnotation
}

// IsAbstract reports whether the type cannot be instantiated directly.
func (c *Class) IsAbstract() bool {
	return c.IsInterface() || c.Modifiers.Has(Abstract)
}

// Supertypes returns the superclass followed by implemented interfaces.
func (c *Class) Supertypes() []string {
	out := make([]string, 0, len(c.Interfaces)+1)
	if c.Super != "" {
		out = append(out, c.Super)
	}
	return append(out, c.Interfaces...)
}

// File is one parsed compilation unit.
type File struct {
	Path    string
	Package string
	Imports []string
	Classes []*Class
}

// Project is the full set of files handed to the model builder.
type Project struct {
	Name  string
	Files []*File
}

// Parser turns source text into a File. Implementations are the only
// blocking boundary the engine depends on.
type Parser interface {
	Parse(ctx context.Context, path string, src []byte) (*File, error)
}
