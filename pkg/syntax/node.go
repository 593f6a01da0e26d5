// Package syntax defines the language-neutral tree the metric calculators walk.
//
// A Node is a tagged union over Kind. Calculators dispatch with a switch on
// n.Kind and read the slots documented for that kind; no per-kind types or
// visitor interfaces are involved.
package syntax

import "strings"

// Kind tags a Node.
type Kind uint8

const (
	KindOther Kind = iota
	KindBlock
	KindIf       // Cond; Children: then [, else]
	KindSwitch   // Cond: selector; Children: KindCase arms, a default-only arm as KindBlock
	KindCase     // Children: statements (labels are dropped)
	KindFor      // Cond (may be nil); Children: init, update, body
	KindForEach  // Cond: iterable; Children: body
	KindWhile    // Cond; Children: body
	KindDoWhile  // Cond; Children: body
	KindTry      // Children: block, KindCatch..., [KindFinally]
	KindCatch    // Token: parameter name; Label: caught type; Children: body
	KindFinally  // Children: body
	KindTernary  // Cond; Children: consequence, alternative
	KindBinary   // Token: operator; Children: left, right
	KindUnary    // Token: operator; Children: operand
	KindPostfix  // Token: operator; Children: operand
	KindAssign   // Token: operator; Children: target, value
	KindCall     // Token: callee; Recv: receiver or nil; Children: arguments
	KindNew      // Token: type name; Children: arguments
	KindSelect   // Token: selector; Recv: qualifier
	KindIndex    // Recv: array; Children: index
	KindIdent    // Token: name
	KindLiteral  // Token: literal text
	KindTemplate // Children: embedded expressions
	KindThis
	KindSuper
	KindLambda    // Children: body
	KindMethodRef // Token: method name; Recv: qualifier
	KindElvis     // Children: left, right
	KindSafeCall  // Token: selector; Recv: qualifier
	KindVar       // Token: name; Label: declared type; Children: [initializer]
	KindReturn    // Children: [value]
	KindThrow     // Children: value
	KindBreak     // Label: target label or empty
	KindContinue  // Label: target label or empty
	KindParen     // Children: inner
)

var kindNames = [...]string{
	KindOther:     "other",
	KindBlock:     "block",
	KindIf:        "if",
	KindSwitch:    "switch",
	KindCase:      "case",
	KindFor:       "for",
	KindForEach:   "foreach",
	KindWhile:     "while",
	KindDoWhile:   "do",
	KindTry:       "try",
	KindCatch:     "catch",
	KindFinally:   "finally",
	KindTernary:   "ternary",
	KindBinary:    "binary",
	KindUnary:     "unary",
	KindPostfix:   "postfix",
	KindAssign:    "assign",
	KindCall:      "call",
	KindNew:       "new",
	KindSelect:    "select",
	KindIndex:     "index",
	KindIdent:     "ident",
	KindLiteral:   "literal",
	KindTemplate:  "template",
	KindThis:      "this",
	KindSuper:     "super",
	KindLambda:    "lambda",
	KindMethodRef: "methodref",
	KindElvis:     "elvis",
	KindSafeCall:  "safecall",
	KindVar:       "var",
	KindReturn:    "return",
	KindThrow:     "throw",
	KindBreak:     "break",
	KindContinue:  "continue",
	KindParen:     "paren",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// IsLoop reports whether k is one of the loop statements.
func (k Kind) IsLoop() bool {
	switch k {
	case KindFor, KindForEach, KindWhile, KindDoWhile:
		return true
	}
	return false
}

// Node is one element of a body tree.
type Node struct {
	Kind     Kind
	Token    string
	Text     string
	Line     int
	Label    string
	Cond     *Node
	Recv     *Node
	Children []*Node
}

// Condition returns the condition or selector of a conditional, loop or switch.
func (n *Node) Condition() *Node { return n.Cond }

// Op returns the operator token of an operator node.
func (n *Node) Op() string { return n.Token }

// Callee returns the invoked name of a call or method reference.
func (n *Node) Callee() string { return n.Token }

// Receiver returns the qualifier of a call, select or index node.
func (n *Node) Receiver() *Node { return n.Recv }

// Args returns the arguments of a call or constructor invocation.
func (n *Node) Args() []*Node {
	if n.Kind == KindCall || n.Kind == KindNew {
		return n.Children
	}
	return nil
}

// Arms returns the case arms of a switch.
func (n *Node) Arms() []*Node {
	if n.Kind != KindSwitch {
		return nil
	}
	arms := make([]*Node, 0, len(n.Children))
	for _, c := range n.Children {
		if c != nil && c.Kind == KindCase {
			arms = append(arms, c)
		}
	}
	return arms
}

// Catches returns the catch clauses of a try.
func (n *Node) Catches() []*Node {
	if n.Kind != KindTry {
		return nil
	}
	var out []*Node
	for _, c := range n.Children {
		if c != nil && c.Kind == KindCatch {
			out = append(out, c)
		}
	}
	return out
}

// Else returns the else branch of an if, or nil.
func (n *Node) Else() *Node {
	if n.Kind == KindIf && len(n.Children) > 1 {
		return n.Children[1]
	}
	return nil
}

// Unparen strips enclosing parenthesis nodes.
func Unparen(n *Node) *Node {
	for n != nil && n.Kind == KindParen && len(n.Children) == 1 {
		n = n.Children[0]
	}
	return n
}

// Key returns the normalized textual form of an expression: trimmed, with
// enclosing parentheses removed.
func Key(n *Node) string {
	n = Unparen(n)
	if n == nil {
		return ""
	}
	text := strings.TrimSpace(n.Text)
	for len(text) >= 2 && text[0] == '(' && text[len(text)-1] == ')' && balanced(text[1:len(text)-1]) {
		text = strings.TrimSpace(text[1 : len(text)-1])
	}
	return text
}

func balanced(s string) bool {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth < 0 {
				return false
			}
		}
	}
	return depth == 0
}
