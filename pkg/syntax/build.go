package syntax

import "strings"

// The constructors below build nodes with a canonical Text, so hand-built
// trees key receivers the same way lowered source does.

func nonNil(nodes []*Node) []*Node {
	out := make([]*Node, 0, len(nodes))
	for _, n := range nodes {
		if n != nil {
			out = append(out, n)
		}
	}
	return out
}

func text(n *Node) string {
	if n == nil {
		return ""
	}
	return n.Text
}

func joinText(nodes []*Node, sep string) string {
	parts := make([]string, len(nodes))
	for i, n := range nodes {
		parts[i] = text(n)
	}
	return strings.Join(parts, sep)
}

func Ident(name string) *Node {
	return &Node{Kind: KindIdent, Token: name, Text: name}
}

func Lit(value string) *Node {
	return &Node{Kind: KindLiteral, Token: value, Text: value}
}

func This() *Node  { return &Node{Kind: KindThis, Token: "this", Text: "this"} }
func Super() *Node { return &Node{Kind: KindSuper, Token: "super", Text: "super"} }

func Paren(x *Node) *Node {
	return &Node{Kind: KindParen, Text: "(" + text(x) + ")", Children: nonNil([]*Node{x})}
}

func Binary(op string, left, right *Node) *Node {
	return &Node{
		Kind:     KindBinary,
		Token:    op,
		Text:     text(left) + " " + op + " " + text(right),
		Children: nonNil([]*Node{left, right}),
	}
}

func Unary(op string, x *Node) *Node {
	return &Node{Kind: KindUnary, Token: op, Text: op + text(x), Children: nonNil([]*Node{x})}
}

func Postfix(op string, x *Node) *Node {
	return &Node{Kind: KindPostfix, Token: op, Text: text(x) + op, Children: nonNil([]*Node{x})}
}

func Assign(op string, target, value *Node) *Node {
	return &Node{
		Kind:     KindAssign,
		Token:    op,
		Text:     text(target) + " " + op + " " + text(value),
		Children: nonNil([]*Node{target, value}),
	}
}

// Call builds a method call. recv is nil for an unqualified call.
func Call(recv *Node, name string, args ...*Node) *Node {
	t := name + "(" + joinText(args, ", ") + ")"
	if recv != nil {
		t = recv.Text + "." + t
	}
	return &Node{Kind: KindCall, Token: name, Text: t, Recv: recv, Children: nonNil(args)}
}

func New(typeName string, args ...*Node) *Node {
	return &Node{
		Kind:     KindNew,
		Token:    typeName,
		Text:     "new " + typeName + "(" + joinText(args, ", ") + ")",
		Children: nonNil(args),
	}
}

func Select(recv *Node, name string) *Node {
	return &Node{Kind: KindSelect, Token: name, Text: text(recv) + "." + name, Recv: recv}
}

func SafeCall(recv *Node, name string) *Node {
	return &Node{Kind: KindSafeCall, Token: name, Text: text(recv) + "?." + name, Recv: recv}
}

func Elvis(left, right *Node) *Node {
	return &Node{Kind: KindElvis, Token: "?:", Text: text(left) + " ?: " + text(right), Children: nonNil([]*Node{left, right})}
}

func Index(array, index *Node) *Node {
	return &Node{
		Kind:     KindIndex,
		Text:     text(array) + "[" + text(index) + "]",
		Recv:     array,
		Children: nonNil([]*Node{index}),
	}
}

func Template(parts ...*Node) *Node {
	return &Node{Kind: KindTemplate, Text: "\"" + joinText(parts, "") + "\"", Children: nonNil(parts)}
}

func Lambda(body *Node) *Node {
	return &Node{Kind: KindLambda, Text: "() -> " + text(body), Children: nonNil([]*Node{body})}
}

func MethodRef(recv *Node, name string) *Node {
	return &Node{Kind: KindMethodRef, Token: name, Text: text(recv) + "::" + name, Recv: recv}
}

func Ternary(cond, then, els *Node) *Node {
	return &Node{
		Kind:     KindTernary,
		Text:     text(cond) + " ? " + text(then) + " : " + text(els),
		Cond:     cond,
		Children: nonNil([]*Node{then, els}),
	}
}

func Block(stmts ...*Node) *Node {
	return &Node{Kind: KindBlock, Text: "{ " + joinText(nonNil(stmts), "; ") + " }", Children: nonNil(stmts)}
}

// If builds a conditional. An optional else branch follows then.
func If(cond, then *Node, els ...*Node) *Node {
	children := []*Node{then}
	t := "if (" + text(cond) + ") " + text(then)
	if len(els) > 0 && els[0] != nil {
		children = append(children, els[0])
		t += " else " + text(els[0])
	}
	return &Node{Kind: KindIf, Text: t, Cond: cond, Children: nonNil(children)}
}

func While(cond, body *Node) *Node {
	return &Node{Kind: KindWhile, Text: "while (" + text(cond) + ") " + text(body), Cond: cond, Children: nonNil([]*Node{body})}
}

func DoWhile(body, cond *Node) *Node {
	return &Node{Kind: KindDoWhile, Text: "do " + text(body) + " while (" + text(cond) + ")", Cond: cond, Children: nonNil([]*Node{body})}
}

// For builds a classic three-part loop.
func For(init, cond, update, body *Node) *Node {
	return &Node{
		Kind:     KindFor,
		Text:     "for (" + text(init) + "; " + text(cond) + "; " + text(update) + ") " + text(body),
		Cond:     cond,
		Children: nonNil([]*Node{init, update, body}),
	}
}

func ForEach(variable string, iterable, body *Node) *Node {
	return &Node{
		Kind:     KindForEach,
		Token:    variable,
		Text:     "for (" + variable + " : " + text(iterable) + ") " + text(body),
		Cond:     iterable,
		Children: nonNil([]*Node{body}),
	}
}

func Switch(selector *Node, arms ...*Node) *Node {
	return &Node{Kind: KindSwitch, Text: "switch (" + text(selector) + ")", Cond: selector, Children: nonNil(arms)}
}

func Case(stmts ...*Node) *Node {
	return &Node{Kind: KindCase, Text: "case: " + joinText(nonNil(stmts), "; "), Children: nonNil(stmts)}
}

// Try builds a try statement; clauses are Catch and Finally nodes.
func Try(block *Node, clauses ...*Node) *Node {
	return &Node{Kind: KindTry, Text: "try " + text(block), Children: nonNil(append([]*Node{block}, clauses...))}
}

// Catch builds a catch clause; typ is the caught exception type.
func Catch(typ, param string, body *Node) *Node {
	return &Node{
		Kind:     KindCatch,
		Token:    param,
		Label:    typ,
		Text:     "catch (" + strings.TrimSpace(typ+" "+param) + ") " + text(body),
		Children: nonNil([]*Node{body}),
	}
}

func Finally(body *Node) *Node {
	return &Node{Kind: KindFinally, Text: "finally " + text(body), Children: nonNil([]*Node{body})}
}

// Var declares a local variable of type typ, which may be empty.
func Var(typ, name string, init *Node) *Node {
	t := strings.TrimSpace(typ + " " + name)
	if init != nil {
		t += " = " + init.Text
	}
	return &Node{Kind: KindVar, Token: name, Label: typ, Text: t, Children: nonNil([]*Node{init})}
}

func Return(value *Node) *Node {
	return &Node{Kind: KindReturn, Text: strings.TrimSpace("return " + text(value)), Children: nonNil([]*Node{value})}
}

func Throw(value *Node) *Node {
	return &Node{Kind: KindThrow, Text: "throw " + text(value), Children: nonNil([]*Node{value})}
}

func Break(label string) *Node {
	return &Node{Kind: KindBreak, Label: label, Text: strings.TrimSpace("break " + label)}
}

func Continue(label string) *Node {
	return &Node{Kind: KindContinue, Label: label, Text: strings.TrimSpace("continue " + label)}
}
