package method

import (
	"math"

	"github.com/panbanda/oometrics/pkg/syntax"
)

// Halstead holds operator and operand occurrence counts for one or more
// bodies. The zero value is empty and ready to use.
type Halstead struct {
	operators map[string]int
	operands  map[string]int
}

// NewHalstead counts the operators and operands of body.
func NewHalstead(body *syntax.Node) *Halstead {
	h := &Halstead{}
	h.Add(body)
	return h
}

// Add counts the operators and operands of body into h.
func (h *Halstead) Add(body *syntax.Node) {
	if body == nil {
		return
	}
	if h.operators == nil {
		h.operators = make(map[string]int)
		h.operands = make(map[string]int)
	}
	syntax.Inspect(body, func(n *syntax.Node) bool {
		switch n.Kind {
		case syntax.KindBinary, syntax.KindUnary, syntax.KindPostfix, syntax.KindAssign:
			h.operators[n.Op()]++
		case syntax.KindCall:
			h.operators[n.Callee()]++
		case syntax.KindNew:
			h.operators["new "+n.Token]++
		case syntax.KindIdent, syntax.KindLiteral:
			h.operands[n.Token]++
		case syntax.KindTemplate:
			h.operands[n.Text]++
		case syntax.KindThis, syntax.KindSuper:
			h.operands[n.Token]++
		case syntax.KindSelect, syntax.KindSafeCall:
			h.operands[n.Token]++
		}
		return true
	})
}

// Merge adds the counts of o into h.
func (h *Halstead) Merge(o *Halstead) {
	if o == nil || len(o.operators)+len(o.operands) == 0 {
		return
	}
	if h.operators == nil {
		h.operators = make(map[string]int)
		h.operands = make(map[string]int)
	}
	for k, v := range o.operators {
		h.operators[k] += v
	}
	for k, v := range o.operands {
		h.operands[k] += v
	}
}

// DistinctOperators is n1.
func (h *Halstead) DistinctOperators() int { return len(h.operators) }

// DistinctOperands is n2.
func (h *Halstead) DistinctOperands() int { return len(h.operands) }

// TotalOperators is N1.
func (h *Halstead) TotalOperators() int { return sum(h.operators) }

// TotalOperands is N2.
func (h *Halstead) TotalOperands() int { return sum(h.operands) }

func sum(m map[string]int) int {
	total := 0
	for _, v := range m {
		total += v
	}
	return total
}

// Length is N1 + N2.
func (h *Halstead) Length() int { return h.TotalOperators() + h.TotalOperands() }

// Vocabulary is n1 + n2.
func (h *Halstead) Vocabulary() int { return h.DistinctOperators() + h.DistinctOperands() }

// Volume is Length * log2(Vocabulary), 0 for a vocabulary of at most one.
func (h *Halstead) Volume() float64 {
	n := h.Vocabulary()
	if n <= 1 {
		return 0
	}
	return float64(h.Length()) * math.Log2(float64(n))
}

// Difficulty is (n1/2) * (N2/n2), 0 without operands.
func (h *Halstead) Difficulty() float64 {
	n2 := h.DistinctOperands()
	if n2 == 0 {
		return 0
	}
	return float64(h.DistinctOperators()) / 2 * float64(h.TotalOperands()) / float64(n2)
}

// Effort is Difficulty * Volume.
func (h *Halstead) Effort() float64 { return h.Difficulty() * h.Volume() }

// Errors estimates delivered bugs as Effort^(2/3) / 3000.
func (h *Halstead) Errors() float64 { return math.Pow(h.Effort(), 2.0/3.0) / 3000 }
