package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/panbanda/oometrics/pkg/syntax"
)

// WriteFile writes content to a file in the real filesystem.
func WriteFile(t *testing.T, path, content string) {
	t.Helper()
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("MkdirAll(%s) error: %v", dir, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile(%s) error: %v", path, err)
	}
}

// CreateFileTree creates multiple files from a map of path -> content.
func CreateFileTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		WriteFile(t, filepath.Join(root, name), content)
	}
}

// Type parses a type written as "Name", "Name[]" or "Name<Arg, Arg>".
func Type(s string) syntax.TypeRef {
	s = strings.TrimSpace(s)
	var ref syntax.TypeRef
	for strings.HasSuffix(s, "[]") {
		ref.Dims++
		s = strings.TrimSpace(strings.TrimSuffix(s, "[]"))
	}
	if i := strings.IndexByte(s, '<'); i >= 0 && strings.HasSuffix(s, ">") {
		for _, arg := range splitArgs(s[i+1 : len(s)-1]) {
			ref.Args = append(ref.Args, Type(arg))
		}
		s = s[:i]
	}
	ref.Name = s
	return ref
}

func splitArgs(s string) []string {
	var out []string
	depth, start := 0, 0
	for i, r := range s {
		switch r {
		case '<':
			depth++
		case '>':
			depth--
		case ',':
			if depth == 0 {
				out = append(out, s[start:i])
				start = i + 1
			}
		}
	}
	return append(out, s[start:])
}

// Field declares a field from "Type name".
func Field(decl string, mods ...syntax.Modifiers) *syntax.Field {
	typ, name := splitDecl(decl)
	return &syntax.Field{Name: name, Type: Type(typ), Modifiers: combine(mods)}
}

// Method declares a method with the given body; params are "Type name".
// A nil body declares an abstract method.
func Method(name string, body *syntax.Node, params ...string) *syntax.Method {
	m := &syntax.Method{Name: name, Body: body, Modifiers: syntax.Public, Result: syntax.TypeRef{Name: "void"}}
	for _, p := range params {
		typ, pname := splitDecl(p)
		m.Params = append(m.Params, syntax.Param{Name: pname, Type: Type(typ)})
	}
	if body != nil {
		m.Source = body.Text
	}
	return m
}

// Class declares a class with the given members.
func Class(name string, members ...any) *syntax.Class {
	c := &syntax.Class{Name: name, Modifiers: syntax.Public}
	for _, m := range members {
		switch v := m.(type) {
		case *syntax.Field:
			c.Fields = append(c.Fields, v)
		case *syntax.Method:
			c.Methods = append(c.Methods, v)
		case *syntax.Class:
			c.Nested = append(c.Nested, v)
		}
	}
	return c
}

// Extends sets the superclass and returns c.
func Extends(c *syntax.Class, super string, interfaces ...string) *syntax.Class {
	c.Super = super
	c.Interfaces = append(c.Interfaces, interfaces...)
	return c
}

// Interface declares an interface with abstract methods.
func Interface(name string, methods ...*syntax.Method) *syntax.Class {
	c := &syntax.Class{Name: name, Kind: syntax.ClassInterface, Modifiers: syntax.Public, Methods: methods}
	for _, m := range methods {
		m.Modifiers |= syntax.Abstract
	}
	return c
}

// File wraps classes in a compilation unit of package pkg.
func File(pkg string, classes ...*syntax.Class) *syntax.File {
	path := strings.ReplaceAll(pkg, ".", "/") + "/" + classes[0].Name + ".java"
	return &syntax.File{Path: path, Package: pkg, Classes: classes}
}

// Project groups files into a project.
func Project(files ...*syntax.File) *syntax.Project {
	return &syntax.Project{Name: "test", Files: files}
}

func splitDecl(decl string) (string, string) {
	decl = strings.TrimSpace(decl)
	i := strings.LastIndexByte(decl, ' ')
	if i < 0 {
		return "", decl
	}
	return strings.TrimSpace(decl[:i]), decl[i+1:]
}

func combine(mods []syntax.Modifiers) syntax.Modifiers {
	var out syntax.Modifiers
	for _, m := range mods {
		out |= m
	}
	return out
}
