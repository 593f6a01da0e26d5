package java

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/panbanda/oometrics/pkg/syntax"
)

func (l *lowerer) node(kind syntax.Kind, n *sitter.Node) *syntax.Node {
	return &syntax.Node{Kind: kind, Text: l.text(n), Line: line(n)}
}

func nonNil(nodes ...*syntax.Node) []*syntax.Node {
	out := make([]*syntax.Node, 0, len(nodes))
	for _, n := range nodes {
		if n != nil {
			out = append(out, n)
		}
	}
	return out
}

// block lowers a block or constructor body.
func (l *lowerer) block(n *sitter.Node) *syntax.Node {
	b := l.node(syntax.KindBlock, n)
	for _, s := range named(n) {
		b.Children = l.appendStmt(b.Children, s)
	}
	return b
}

// body lowers a statement in a position that must not be empty, such as
// the branches of an if.
func (l *lowerer) body(n *sitter.Node, parent *sitter.Node) *syntax.Node {
	if s := l.stmt(n); s != nil {
		return s
	}
	return &syntax.Node{Kind: syntax.KindBlock, Line: line(parent)}
}

// stmt lowers one statement; several declarators share a block.
func (l *lowerer) stmt(n *sitter.Node) *syntax.Node {
	out := l.appendStmt(nil, n)
	switch len(out) {
	case 0:
		return nil
	case 1:
		return out[0]
	}
	b := l.node(syntax.KindBlock, n)
	b.Children = out
	return b
}

func (l *lowerer) appendStmt(out []*syntax.Node, n *sitter.Node) []*syntax.Node {
	if n == nil || isComment(n) {
		return out
	}
	switch t := n.Type(); {
	case t == "block" || t == "constructor_body":
		return append(out, l.block(n))
	case t == "local_variable_declaration":
		return append(out, l.locals(n)...)
	case t == "expression_statement":
		if e := firstNamed(n); e != nil {
			return append(out, l.expr(e))
		}
		return out
	case t == "labeled_statement":
		kids := named(n)
		if len(kids) > 1 {
			return l.appendStmt(out, kids[len(kids)-1])
		}
		return out
	case t == "empty_statement" || t == ";" || isTypeDecl(t) || t == "local_class_declaration":
		return out
	}
	return append(out, l.statement(n))
}

func (l *lowerer) statement(n *sitter.Node) *syntax.Node {
	switch n.Type() {
	case "if_statement":
		s := l.node(syntax.KindIf, n)
		s.Cond = l.cond(n.ChildByFieldName("condition"))
		s.Children = []*syntax.Node{l.body(n.ChildByFieldName("consequence"), n)}
		if alt := n.ChildByFieldName("alternative"); alt != nil {
			s.Children = append(s.Children, l.body(alt, n))
		}
		return s
	case "while_statement", "do_statement":
		kind := syntax.KindWhile
		if n.Type() == "do_statement" {
			kind = syntax.KindDoWhile
		}
		s := l.node(kind, n)
		s.Cond = l.cond(n.ChildByFieldName("condition"))
		s.Children = []*syntax.Node{l.body(n.ChildByFieldName("body"), n)}
		return s
	case "for_statement":
		return l.forLoop(n)
	case "enhanced_for_statement":
		s := l.node(syntax.KindForEach, n)
		s.Token = l.text(n.ChildByFieldName("name"))
		s.Cond = l.expr(n.ChildByFieldName("value"))
		s.Children = []*syntax.Node{l.body(n.ChildByFieldName("body"), n)}
		return s
	case "switch_expression", "switch_statement":
		return l.switchNode(n)
	case "try_statement", "try_with_resources_statement":
		return l.try(n)
	case "return_statement", "throw_statement", "yield_statement":
		kind := syntax.KindReturn
		if n.Type() == "throw_statement" {
			kind = syntax.KindThrow
		}
		s := l.node(kind, n)
		if e := firstNamed(n); e != nil {
			s.Children = []*syntax.Node{l.expr(e)}
		}
		return s
	case "break_statement", "continue_statement":
		kind := syntax.KindBreak
		if n.Type() == "continue_statement" {
			kind = syntax.KindContinue
		}
		s := l.node(kind, n)
		if id := firstNamed(n); id != nil {
			s.Label = l.text(id)
		}
		return s
	case "explicit_constructor_invocation":
		s := l.node(syntax.KindCall, n)
		s.Token = l.text(n.ChildByFieldName("constructor"))
		if obj := n.ChildByFieldName("object"); obj != nil {
			s.Recv = l.expr(obj)
		}
		s.Children = l.args(n.ChildByFieldName("arguments"))
		return s
	}
	return l.generic(n)
}

func (l *lowerer) cond(n *sitter.Node) *syntax.Node {
	if n == nil {
		return nil
	}
	if n.Type() == "parenthesized_expression" {
		if inner := firstNamed(n); inner != nil {
			return l.expr(inner)
		}
	}
	return l.expr(n)
}

// forLoop splits the header by its separators: init parts before the first
// semicolon, the condition before the second, then updates.
func (l *lowerer) forLoop(n *sitter.Node) *syntax.Node {
	s := l.node(syntax.KindFor, n)
	var init, update []*syntax.Node
	section := 0
	bodyNode := n.ChildByFieldName("body")
	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		if c == nil || isComment(c) {
			continue
		}
		switch {
		case c.Type() == ";":
			section++
		case c.Type() == ")":
			section = 3
		case !c.IsNamed():
		case section == 0 && c.Type() == "local_variable_declaration":
			init = append(init, l.locals(c)...)
			section = 1
		case section == 0:
			init = append(init, l.expr(c))
		case section == 1:
			s.Cond = l.expr(c)
		case section == 2:
			update = append(update, l.expr(c))
		}
	}
	s.Children = nonNil(l.group(init, n), l.group(update, n), l.body(bodyNode, n))
	return s
}

func (l *lowerer) group(nodes []*syntax.Node, parent *sitter.Node) *syntax.Node {
	switch len(nodes) {
	case 0:
		return nil
	case 1:
		return nodes[0]
	}
	texts := make([]string, len(nodes))
	for i, n := range nodes {
		texts[i] = n.Text
	}
	return &syntax.Node{Kind: syntax.KindBlock, Text: strings.Join(texts, ", "), Line: line(parent), Children: nodes}
}

// switchNode lowers a switch to one KindCase arm per case value. The
// statements of a group go to its last arm; a default-only group lowers to
// a block so it adds no arm.
func (l *lowerer) switchNode(n *sitter.Node) *syntax.Node {
	s := l.node(syntax.KindSwitch, n)
	s.Cond = l.cond(n.ChildByFieldName("condition"))
	for _, g := range named(n.ChildByFieldName("body")) {
		if g.Type() != "switch_block_statement_group" && g.Type() != "switch_rule" {
			continue
		}
		var (
			values int
			stmts  []*syntax.Node
		)
		for _, c := range named(g) {
			if c.Type() == "switch_label" {
				values += caseValues(c)
				continue
			}
			stmts = l.appendStmt(stmts, c)
		}
		if values == 0 {
			b := l.node(syntax.KindBlock, g)
			b.Children = stmts
			s.Children = append(s.Children, b)
			continue
		}
		for i := 0; i < values; i++ {
			arm := l.node(syntax.KindCase, g)
			if i == values-1 {
				arm.Children = stmts
			}
			s.Children = append(s.Children, arm)
		}
	}
	return s
}

// caseValues counts the values of a case label; default has none.
func caseValues(label *sitter.Node) int {
	n := 0
	for _, c := range named(label) {
		if c.Type() != "guard" {
			n++
		}
	}
	if n == 0 && label.ChildCount() > 0 && label.Child(0).Type() == "case" {
		return 1
	}
	return n
}

func (l *lowerer) try(n *sitter.Node) *syntax.Node {
	s := l.node(syntax.KindTry, n)
	block := l.block(n.ChildByFieldName("body"))
	if res := n.ChildByFieldName("resources"); res != nil {
		var vars []*syntax.Node
		for _, r := range named(res) {
			vars = append(vars, l.resource(r))
		}
		block.Children = append(vars, block.Children...)
	}
	s.Children = []*syntax.Node{block}
	for _, c := range named(n) {
		switch c.Type() {
		case "catch_clause":
			s.Children = append(s.Children, l.catch(c))
		case "finally_clause":
			f := l.node(syntax.KindFinally, c)
			if b := firstNamed(c); b != nil {
				f.Children = []*syntax.Node{l.block(b)}
			}
			s.Children = append(s.Children, f)
		}
	}
	return s
}

func (l *lowerer) resource(n *sitter.Node) *syntax.Node {
	name := n.ChildByFieldName("name")
	if name == nil {
		if inner := firstNamed(n); inner != nil && n.NamedChildCount() == 1 {
			return l.expr(inner)
		}
		return l.generic(n)
	}
	v := l.node(syntax.KindVar, n)
	v.Token = l.text(name)
	v.Label = localLabel(l.typeRef(n.ChildByFieldName("type")))
	if val := n.ChildByFieldName("value"); val != nil {
		v.Children = []*syntax.Node{l.expr(val)}
	}
	return v
}

func (l *lowerer) catch(n *sitter.Node) *syntax.Node {
	c := l.node(syntax.KindCatch, n)
	for _, child := range named(n) {
		switch child.Type() {
		case "catch_formal_parameter":
			c.Token = l.text(child.ChildByFieldName("name"))
			if types := childOfType(child, "catch_type"); types != nil {
				c.Label = l.typeRef(firstNamed(types)).Name
			}
		case "block":
			c.Children = []*syntax.Node{l.block(child)}
		}
	}
	return c
}

func (l *lowerer) locals(n *sitter.Node) []*syntax.Node {
	label := localLabel(l.typeRef(n.ChildByFieldName("type")))
	var out []*syntax.Node
	for _, d := range named(n) {
		if d.Type() != "variable_declarator" {
			continue
		}
		v := l.node(syntax.KindVar, d)
		v.Token = l.text(d.ChildByFieldName("name"))
		v.Label = label
		if val := d.ChildByFieldName("value"); val != nil {
			v.Children = []*syntax.Node{l.expr(val)}
		}
		out = append(out, v)
	}
	return out
}

// localLabel is the declared type name of a local; inferred locals have none.
func localLabel(t syntax.TypeRef) string {
	if t.Name == "var" {
		return ""
	}
	return t.Name
}

var literalTypes = map[string]bool{
	"decimal_integer_literal":        true,
	"hex_integer_literal":            true,
	"octal_integer_literal":          true,
	"binary_integer_literal":         true,
	"decimal_floating_point_literal": true,
	"hex_floating_point_literal":     true,
	"true":                           true,
	"false":                          true,
	"null_literal":                   true,
	"character_literal":              true,
	"string_literal":                 true,
	"text_block":                     true,
	"class_literal":                  true,
}

func (l *lowerer) expr(n *sitter.Node) *syntax.Node {
	if n == nil {
		return nil
	}
	t := n.Type()
	if literalTypes[t] {
		lit := l.node(syntax.KindLiteral, n)
		lit.Token = lit.Text
		return lit
	}
	switch t {
	case "identifier":
		id := l.node(syntax.KindIdent, n)
		id.Token = id.Text
		return id
	case "this":
		e := l.node(syntax.KindThis, n)
		e.Token = "this"
		return e
	case "super":
		e := l.node(syntax.KindSuper, n)
		e.Token = "super"
		return e
	case "parenthesized_expression":
		p := l.node(syntax.KindParen, n)
		p.Children = nonNil(l.expr(firstNamed(n)))
		return p
	case "binary_expression", "assignment_expression":
		kind := syntax.KindBinary
		if t == "assignment_expression" {
			kind = syntax.KindAssign
		}
		e := l.node(kind, n)
		e.Token = l.text(n.ChildByFieldName("operator"))
		e.Children = nonNil(l.expr(n.ChildByFieldName("left")), l.expr(n.ChildByFieldName("right")))
		return e
	case "unary_expression":
		e := l.node(syntax.KindUnary, n)
		e.Token = l.text(n.ChildByFieldName("operator"))
		e.Children = nonNil(l.expr(n.ChildByFieldName("operand")))
		return e
	case "update_expression":
		return l.update(n)
	case "ternary_expression":
		e := l.node(syntax.KindTernary, n)
		e.Cond = l.expr(n.ChildByFieldName("condition"))
		e.Children = nonNil(l.expr(n.ChildByFieldName("consequence")), l.expr(n.ChildByFieldName("alternative")))
		return e
	case "method_invocation":
		e := l.node(syntax.KindCall, n)
		e.Token = l.text(n.ChildByFieldName("name"))
		if obj := n.ChildByFieldName("object"); obj != nil {
			e.Recv = l.expr(obj)
		}
		e.Children = l.args(n.ChildByFieldName("arguments"))
		return e
	case "object_creation_expression":
		// Anonymous class bodies are not lowered.
		e := l.node(syntax.KindNew, n)
		e.Token = l.typeRef(n.ChildByFieldName("type")).Name
		e.Children = l.args(n.ChildByFieldName("arguments"))
		return e
	case "array_creation_expression":
		return l.arrayCreation(n)
	case "field_access":
		e := l.node(syntax.KindSelect, n)
		e.Token = l.text(n.ChildByFieldName("field"))
		e.Recv = l.expr(n.ChildByFieldName("object"))
		return e
	case "array_access":
		e := l.node(syntax.KindIndex, n)
		e.Recv = l.expr(n.ChildByFieldName("array"))
		e.Children = nonNil(l.expr(n.ChildByFieldName("index")))
		return e
	case "lambda_expression":
		e := l.node(syntax.KindLambda, n)
		if b := n.ChildByFieldName("body"); b != nil {
			if b.Type() == "block" {
				e.Children = []*syntax.Node{l.block(b)}
			} else {
				e.Children = nonNil(l.expr(b))
			}
		}
		return e
	case "method_reference":
		return l.methodRef(n)
	case "cast_expression":
		e := l.node(syntax.KindOther, n)
		e.Children = nonNil(l.expr(n.ChildByFieldName("value")))
		return e
	case "instanceof_expression":
		e := l.node(syntax.KindBinary, n)
		e.Token = "instanceof"
		e.Children = nonNil(l.expr(n.ChildByFieldName("left")))
		return e
	case "switch_expression", "switch_statement":
		return l.switchNode(n)
	case "block":
		return l.block(n)
	}
	return l.generic(n)
}

func (l *lowerer) args(n *sitter.Node) []*syntax.Node {
	var out []*syntax.Node
	for _, a := range named(n) {
		if e := l.expr(a); e != nil {
			out = append(out, e)
		}
	}
	return out
}

func (l *lowerer) update(n *sitter.Node) *syntax.Node {
	if n.ChildCount() < 2 {
		return l.generic(n)
	}
	first, last := n.Child(0), n.Child(int(n.ChildCount())-1)
	if !first.IsNamed() {
		e := l.node(syntax.KindUnary, n)
		e.Token = first.Type()
		e.Children = nonNil(l.expr(last))
		return e
	}
	e := l.node(syntax.KindPostfix, n)
	e.Token = last.Type()
	e.Children = nonNil(l.expr(first))
	return e
}

// arrayCreation lowers new T[n] as a constructor call of T for reference
// element types; primitive arrays only keep their sizes and initializer.
func (l *lowerer) arrayCreation(n *sitter.Node) *syntax.Node {
	ref := l.typeRef(n.ChildByFieldName("type"))
	kind := syntax.KindOther
	if ref.Name != "" && !ref.IsPrimitive() {
		kind = syntax.KindNew
	}
	e := l.node(kind, n)
	if kind == syntax.KindNew {
		e.Token = ref.Name
	}
	for _, c := range named(n) {
		switch c.Type() {
		case "dimensions_expr":
			e.Children = append(e.Children, nonNil(l.expr(firstNamed(c)))...)
		case "array_initializer":
			e.Children = append(e.Children, l.expr(c))
		}
	}
	return e
}

func (l *lowerer) methodRef(n *sitter.Node) *syntax.Node {
	e := l.node(syntax.KindMethodRef, n)
	count := int(n.ChildCount())
	if count == 0 {
		return e
	}
	e.Token = l.text(n.Child(count - 1))
	q := n.Child(0)
	switch q.Type() {
	case "type_identifier", "scoped_type_identifier", "generic_type", "array_type":
		id := l.node(syntax.KindIdent, q)
		id.Token = l.typeRef(q).Name
		e.Recv = id
	default:
		e.Recv = l.expr(q)
	}
	return e
}

// generic lowers an unrecognized construct as KindOther over its named
// children, so nested calls and conditions are still visited.
func (l *lowerer) generic(n *sitter.Node) *syntax.Node {
	e := l.node(syntax.KindOther, n)
	for _, c := range named(n) {
		if isStatement(c.Type()) {
			e.Children = l.appendStmt(e.Children, c)
			continue
		}
		if c.Type() == "class_body" || isTypeDecl(c.Type()) {
			continue
		}
		if x := l.expr(c); x != nil {
			e.Children = append(e.Children, x)
		}
	}
	return e
}

func isStatement(t string) bool {
	return strings.HasSuffix(t, "_statement") || t == "local_variable_declaration" || t == "block"
}
