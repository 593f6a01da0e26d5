package syntax

// Visitor receives Enter before a node's subtree and Leave after it.
// Returning false from Enter skips the subtree and the matching Leave.
type Visitor interface {
	Enter(n *Node) bool
	Leave(n *Node)
}

// Walk traverses n depth-first in source order: receiver, condition, children.
func Walk(v Visitor, n *Node) {
	if n == nil {
		return
	}
	if !v.Enter(n) {
		return
	}
	Walk(v, n.Recv)
	Walk(v, n.Cond)
	for _, c := range n.Children {
		Walk(v, c)
	}
	v.Leave(n)
}

type inspector func(*Node) bool

func (f inspector) Enter(n *Node) bool { return f(n) }
func (f inspector) Leave(*Node)        {}

// Inspect calls f for every node in pre-order. If f returns false the
// node's subtree is skipped.
func Inspect(n *Node, f func(*Node) bool) {
	Walk(inspector(f), n)
}

// Count returns the number of nodes in n matching pred.
func Count(n *Node, pred func(*Node) bool) int {
	total := 0
	Inspect(n, func(x *Node) bool {
		if pred(x) {
			total++
		}
		return true
	})
	return total
}
