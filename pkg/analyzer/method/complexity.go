package method

import (
	"github.com/panbanda/oometrics/pkg/syntax"
)

// DefaultIteratingCalls are callee names counted as loops by NOL when they
// receive a lambda or method reference argument.
var DefaultIteratingCalls = []string{
	"forEach", "forEachOrdered", "forEachRemaining", "forEachIndexed",
	"repeat", "map", "flatMap", "filter", "reduce", "collect",
	"anyMatch", "allMatch", "noneMatch", "removeIf", "replaceAll",
	"computeIfAbsent", "iterate", "generate",
}

// Cyclomatic returns McCabe's cyclomatic complexity of a body: one plus the
// number of branches, loops, catch clauses and short-circuit operators.
func Cyclomatic(body *syntax.Node) int {
	if body == nil {
		return 0
	}
	cc := 1
	syntax.Inspect(body, func(n *syntax.Node) bool {
		switch n.Kind {
		case syntax.KindIf, syntax.KindTernary, syntax.KindCatch,
			syntax.KindElvis, syntax.KindSafeCall:
			cc++
		case syntax.KindFor, syntax.KindForEach, syntax.KindWhile, syntax.KindDoWhile:
			cc++
		case syntax.KindSwitch:
			cc += max(1, len(n.Arms()))
		case syntax.KindBinary:
			if isShortCircuit(n.Op()) {
				cc++
			}
		}
		return true
	})
	return cc
}

func isShortCircuit(op string) bool { return op == "&&" || op == "||" }

// cognitive accumulates cognitive complexity. Nesting is the number of
// enclosing decision structures and lambdas.
type cognitive struct {
	name    string
	arity   int
	nesting int
	total   int
	elseIf  map[*syntax.Node]bool
}

// Cognitive returns the cognitive complexity of a method body. name and
// arity identify direct recursion.
func Cognitive(body *syntax.Node, name string, arity int) int {
	if body == nil {
		return 0
	}
	c := &cognitive{name: name, arity: arity, elseIf: make(map[*syntax.Node]bool)}
	syntax.Walk(c, body)
	return c.total
}

func (c *cognitive) Enter(n *syntax.Node) bool {
	switch n.Kind {
	case syntax.KindIf:
		if c.elseIf[n] {
			c.total++
		} else {
			c.total += 1 + c.nesting
			c.nesting++
		}
		if els := n.Else(); els != nil {
			if els.Kind == syntax.KindIf {
				c.elseIf[els] = true
			} else {
				c.total++
			}
		}
	case syntax.KindSwitch, syntax.KindFor, syntax.KindForEach, syntax.KindWhile,
		syntax.KindDoWhile, syntax.KindCatch, syntax.KindTernary:
		c.total += 1 + c.nesting
		c.nesting++
	case syntax.KindLambda:
		c.nesting++
	case syntax.KindBinary:
		if isShortCircuit(n.Op()) {
			c.total++
		}
	case syntax.KindBreak, syntax.KindContinue:
		if n.Label != "" {
			c.total++
		}
	case syntax.KindCall:
		if c.isRecursion(n) {
			c.total++
		}
	}
	return true
}

func (c *cognitive) Leave(n *syntax.Node) {
	switch n.Kind {
	case syntax.KindIf:
		if !c.elseIf[n] {
			c.nesting--
		}
	case syntax.KindSwitch, syntax.KindFor, syntax.KindForEach, syntax.KindWhile,
		syntax.KindDoWhile, syntax.KindCatch, syntax.KindTernary, syntax.KindLambda:
		c.nesting--
	}
}

func (c *cognitive) isRecursion(call *syntax.Node) bool {
	if call.Callee() != c.name || len(call.Args()) != c.arity {
		return false
	}
	recv := syntax.Unparen(call.Receiver())
	return recv == nil || recv.Kind == syntax.KindThis
}

// depth tracks the maximum nesting over the kinds selected by in. An if in
// the else branch of an if continues the chain at the same depth.
type depth struct {
	in      func(syntax.Kind) bool
	elseIf  map[*syntax.Node]bool
	current int
	max     int
}

func (d *depth) Enter(n *syntax.Node) bool {
	if !d.in(n.Kind) {
		return true
	}
	if n.Kind == syntax.KindIf {
		if els := n.Else(); els != nil && els.Kind == syntax.KindIf {
			d.elseIf[els] = true
		}
		if d.elseIf[n] {
			return true
		}
	}
	d.current++
	d.max = max(d.max, d.current)
	return true
}

func (d *depth) Leave(n *syntax.Node) {
	if d.in(n.Kind) && !d.elseIf[n] {
		d.current--
	}
}

func maxDepth(body *syntax.Node, in func(syntax.Kind) bool) int {
	if body == nil {
		return 0
	}
	d := &depth{in: in, elseIf: make(map[*syntax.Node]bool)}
	syntax.Walk(d, body)
	return d.max
}

// MaxNesting is the deepest nesting of decision structures: conditionals,
// switches, loops and catch clauses (MND).
func MaxNesting(body *syntax.Node) int {
	return maxDepth(body, func(k syntax.Kind) bool {
		switch k {
		case syntax.KindIf, syntax.KindSwitch, syntax.KindTernary, syntax.KindCatch:
			return true
		}
		return k.IsLoop()
	})
}

// ConditionNesting is the deepest nesting of conditionals (CND).
func ConditionNesting(body *syntax.Node) int {
	return maxDepth(body, func(k syntax.Kind) bool {
		return k == syntax.KindIf || k == syntax.KindSwitch || k == syntax.KindTernary
	})
}

// LoopNesting is the deepest nesting of loops (LND).
func LoopNesting(body *syntax.Node) int {
	return maxDepth(body, syntax.Kind.IsLoop)
}

// Loops counts loop statements plus iterating calls that take a lambda or
// method reference argument (NOL).
func Loops(body *syntax.Node, iterating map[string]bool) int {
	return syntax.Count(body, func(n *syntax.Node) bool {
		if n.Kind.IsLoop() {
			return true
		}
		if n.Kind != syntax.KindCall || !iterating[n.Callee()] {
			return false
		}
		for _, arg := range n.Args() {
			if a := syntax.Unparen(arg); a.Kind == syntax.KindLambda || a.Kind == syntax.KindMethodRef {
				return true
			}
		}
		return false
	})
}
