package java

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/panbanda/oometrics/pkg/syntax"
)

// lowerer converts one tree-sitter Java tree into syntax declarations.
type lowerer struct {
	src []byte
}

func (l *lowerer) text(n *sitter.Node) string {
	if n == nil {
		return ""
	}
	return n.Content(l.src)
}

func line(n *sitter.Node) int { return int(n.StartPoint().Row) + 1 }

func endLine(n *sitter.Node) int { return int(n.EndPoint().Row) + 1 }

func isComment(n *sitter.Node) bool {
	switch n.Type() {
	case "line_comment", "block_comment", "comment":
		return true
	}
	return false
}

// named returns the named children of n without comments.
func named(n *sitter.Node) []*sitter.Node {
	if n == nil {
		return nil
	}
	count := int(n.NamedChildCount())
	out := make([]*sitter.Node, 0, count)
	for i := 0; i < count; i++ {
		c := n.NamedChild(i)
		if c == nil || isComment(c) {
			continue
		}
		out = append(out, c)
	}
	return out
}

func firstNamed(n *sitter.Node) *sitter.Node {
	if kids := named(n); len(kids) > 0 {
		return kids[0]
	}
	return nil
}

// childOfType returns the first direct child of the given type.
func childOfType(n *sitter.Node, typ string) *sitter.Node {
	if n == nil {
		return nil
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		if c := n.Child(i); c != nil && c.Type() == typ {
			return c
		}
	}
	return nil
}

func (l *lowerer) file(path string, root *sitter.Node) *syntax.File {
	f := &syntax.File{Path: path}
	for _, n := range named(root) {
		switch n.Type() {
		case "package_declaration":
			for _, c := range named(n) {
				if c.Type() == "identifier" || c.Type() == "scoped_identifier" {
					f.Package = compact(l.text(c))
				}
			}
		case "import_declaration":
			if imp, ok := l.importName(n); ok {
				f.Imports = append(f.Imports, imp)
			}
		default:
			if isTypeDecl(n.Type()) {
				f.Classes = append(f.Classes, l.class(n, nil))
			}
		}
	}
	return f
}

// importName returns the imported type or package; static imports name
// members and are dropped.
func (l *lowerer) importName(n *sitter.Node) (string, bool) {
	if childOfType(n, "static") != nil {
		return "", false
	}
	var name string
	for _, c := range named(n) {
		switch c.Type() {
		case "identifier", "scoped_identifier":
			name = compact(l.text(c))
		case "asterisk":
			name += ".*"
		}
	}
	return name, name != ""
}

func isTypeDecl(t string) bool {
	switch t {
	case "class_declaration", "interface_declaration", "enum_declaration",
		"record_declaration", "annotation_type_declaration":
		return true
	}
	return false
}

func (l *lowerer) class(n *sitter.Node, outer *syntax.Class) *syntax.Class {
	c := &syntax.Class{
		Name:      l.text(n.ChildByFieldName("name")),
		Modifiers: l.modifiers(n),
		StartLine: line(n),
		EndLine:   endLine(n),
	}
	switch n.Type() {
	case "interface_declaration":
		c.Kind = syntax.ClassInterface
	case "enum_declaration":
		c.Kind = syntax.ClassEnum
	case "record_declaration":
		c.Kind = syntax.ClassRecord
	case "annotation_type_declaration":
		c.Kind = syntax.ClassAnnotation
	}
	if outer != nil && outer.IsInterface() {
		c.Modifiers |= syntax.Static
		if !c.Modifiers.Has(syntax.Private) && !c.Modifiers.Has(syntax.Protected) {
			c.Modifiers |= syntax.Public
		}
	}

	for _, child := range named(n) {
		switch child.Type() {
		case "superclass":
			if t := firstNamed(child); t != nil {
				c.Super = l.typeRef(t).Name
			}
		case "super_interfaces", "extends_interfaces":
			for _, t := range named(firstNamed(child)) {
				c.Interfaces = append(c.Interfaces, l.typeRef(t).Name)
			}
		case "type_parameters":
			c.TypeParams = l.typeParams(child)
		}
	}

	if c.Kind == syntax.ClassRecord {
		for _, p := range l.params(n.ChildByFieldName("parameters")) {
			c.Fields = append(c.Fields, &syntax.Field{
				Name:      p.Name,
				Type:      p.Type,
				Modifiers: syntax.Private | syntax.Final,
				Line:      line(n),
			})
		}
	}

	l.members(c, n.ChildByFieldName("body"))
	return c
}

func (l *lowerer) members(c *syntax.Class, body *sitter.Node) {
	for _, m := range named(body) {
		switch t := m.Type(); {
		case t == "field_declaration" || t == "constant_declaration":
			c.Fields = append(c.Fields, l.fields(m, c)...)
		case t == "enum_constant":
			c.Fields = append(c.Fields, &syntax.Field{
				Name:      l.text(m.ChildByFieldName("name")),
				Type:      syntax.TypeRef{Name: c.Name},
				Modifiers: syntax.Public | syntax.Static | syntax.Final,
				Line:      line(m),
			})
		case t == "method_declaration" || t == "annotation_type_element_declaration":
			c.Methods = append(c.Methods, l.method(m, c, syntax.MethodRegular))
		case t == "constructor_declaration" || t == "compact_constructor_declaration":
			c.Methods = append(c.Methods, l.method(m, c, syntax.MethodConstructor))
		case t == "enum_body_declarations":
			l.members(c, m)
		case isTypeDecl(t):
			c.Nested = append(c.Nested, l.class(m, c))
		}
	}
}

func (l *lowerer) fields(n *sitter.Node, c *syntax.Class) []*syntax.Field {
	mods := l.modifiers(n)
	if c.IsInterface() {
		mods |= syntax.Public | syntax.Static | syntax.Final
	}
	base := l.typeRef(n.ChildByFieldName("type"))
	var out []*syntax.Field
	for _, d := range named(n) {
		if d.Type() != "variable_declarator" {
			continue
		}
		typ := base
		typ.Dims += dims(l.text(d.ChildByFieldName("dimensions")))
		out = append(out, &syntax.Field{
			Name:      l.text(d.ChildByFieldName("name")),
			Type:      typ,
			Modifiers: mods,
			Line:      line(d),
		})
	}
	return out
}

func (l *lowerer) method(n *sitter.Node, c *syntax.Class, kind syntax.MethodKind) *syntax.Method {
	m := &syntax.Method{
		Name:      l.text(n.ChildByFieldName("name")),
		Kind:      kind,
		Modifiers: l.modifiers(n),
		Params:    l.params(n.ChildByFieldName("parameters")),
		Source:    l.text(n),
		StartLine: line(n),
		EndLine:   endLine(n),
	}
	if t := n.ChildByFieldName("type"); t != nil {
		m.Result = l.typeRef(t)
		m.Result.Dims += dims(l.text(n.ChildByFieldName("dimensions")))
	}
	if body := n.ChildByFieldName("body"); body != nil {
		m.Body = l.block(body)
	}
	if c.IsInterface() {
		if !m.Modifiers.Has(syntax.Private) {
			m.Modifiers |= syntax.Public
		}
		if m.Body == nil && !m.Modifiers.Has(syntax.Static) {
			m.Modifiers |= syntax.Abstract
		}
	}
	return m
}

func (l *lowerer) params(n *sitter.Node) []syntax.Param {
	var out []syntax.Param
	for _, p := range named(n) {
		switch p.Type() {
		case "formal_parameter":
			typ := l.typeRef(p.ChildByFieldName("type"))
			typ.Dims += dims(l.text(p.ChildByFieldName("dimensions")))
			out = append(out, syntax.Param{Name: l.text(p.ChildByFieldName("name")), Type: typ})
		case "spread_parameter":
			var param syntax.Param
			for _, c := range named(p) {
				switch c.Type() {
				case "modifiers":
				case "variable_declarator":
					param.Name = l.text(c.ChildByFieldName("name"))
				default:
					param.Type = l.typeRef(c)
				}
			}
			param.Type.Dims++
			out = append(out, param)
		}
	}
	return out
}

func (l *lowerer) typeParams(n *sitter.Node) []string {
	var out []string
	for _, p := range named(n) {
		for _, c := range named(p) {
			if c.Type() == "type_identifier" || c.Type() == "identifier" {
				out = append(out, l.text(c))
				break
			}
		}
	}
	return out
}

var modifierBits = map[string]syntax.Modifiers{
	"public":    syntax.Public,
	"protected": syntax.Protected,
	"private":   syntax.Private,
	"static":    syntax.Static,
	"abstract":  syntax.Abstract,
	"final":     syntax.Final,
	"default":   syntax.Default,
}

func (l *lowerer) modifiers(n *sitter.Node) syntax.Modifiers {
	var m syntax.Modifiers
	mods := childOfType(n, "modifiers")
	if mods == nil {
		return m
	}
	for i := 0; i < int(mods.ChildCount()); i++ {
		if c := mods.Child(i); c != nil {
			m |= modifierBits[c.Type()]
		}
	}
	return m
}

// typeRef lowers a type node. Annotations are dropped and a bare wildcard
// lowers to the empty reference.
func (l *lowerer) typeRef(n *sitter.Node) syntax.TypeRef {
	if n == nil {
		return syntax.TypeRef{}
	}
	switch n.Type() {
	case "generic_type":
		var ref syntax.TypeRef
		for _, c := range named(n) {
			if c.Type() == "type_arguments" {
				for _, a := range named(c) {
					ref.Args = append(ref.Args, l.typeRef(a))
				}
				continue
			}
			ref.Name = l.typeRef(c).Name
		}
		return ref
	case "array_type":
		ref := l.typeRef(n.ChildByFieldName("element"))
		ref.Dims += dims(l.text(n.ChildByFieldName("dimensions")))
		return ref
	case "annotated_type":
		kids := named(n)
		if len(kids) == 0 {
			return syntax.TypeRef{}
		}
		return l.typeRef(kids[len(kids)-1])
	case "wildcard":
		var ref syntax.TypeRef
		for _, c := range named(n) {
			if c.Type() != "annotation" && c.Type() != "marker_annotation" {
				ref = l.typeRef(c)
			}
		}
		return ref
	case "scoped_type_identifier", "scoped_identifier":
		return syntax.TypeRef{Name: stripTypeArgs(compact(l.text(n)))}
	}
	return syntax.TypeRef{Name: compact(l.text(n))}
}

func dims(text string) int { return strings.Count(text, "[") }

// compact removes whitespace from a qualified name.
func compact(s string) string {
	return strings.Join(strings.Fields(s), "")
}

// stripTypeArgs removes generic arguments from a qualified type name, so
// Outer<T>.Inner becomes Outer.Inner.
func stripTypeArgs(s string) string {
	if !strings.ContainsRune(s, '<') {
		return s
	}
	var b strings.Builder
	depth := 0
	for _, r := range s {
		switch {
		case r == '<':
			depth++
		case r == '>':
			depth--
		case depth == 0:
			b.WriteRune(r)
		}
	}
	return b.String()
}
