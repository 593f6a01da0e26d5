package metric

import (
	"encoding/json"
	"math"
	"strconv"
)

type valueKind uint8

const (
	kindUndefined valueKind = iota
	kindInt
	kindRatio
)

// Value is a computed metric value: an integer count, a ratio, or undefined.
// The zero Value is Undefined.
type Value struct {
	kind valueKind
	i    int64
	f    float64
}

// Undefined is the value of metrics that do not apply to a construct.
var Undefined = Value{}

// Int returns a count value.
func Int(v int64) Value { return Value{kind: kindInt, i: v} }

// Count returns a count value from an int.
func Count(v int) Value { return Int(int64(v)) }

// Ratio returns a real value. NaN and infinities are undefined.
func Ratio(v float64) Value {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Undefined
	}
	return Value{kind: kindRatio, f: v}
}

// Div returns num/den as a ratio, or 0 when den is zero.
func Div(num, den float64) Value {
	if den == 0 {
		return Ratio(0)
	}
	return Ratio(num / den)
}

// IsUndefined reports whether the value is Undefined.
func (v Value) IsUndefined() bool { return v.kind == kindUndefined }

// IsInt reports whether the value is an integer count.
func (v Value) IsInt() bool { return v.kind == kindInt }

// Float returns the numeric value; Undefined yields NaN.
func (v Value) Float() float64 {
	switch v.kind {
	case kindInt:
		return float64(v.i)
	case kindRatio:
		return v.f
	}
	return math.NaN()
}

// Int64 returns the value truncated to an integer; Undefined yields 0.
func (v Value) Int64() int64 {
	switch v.kind {
	case kindInt:
		return v.i
	case kindRatio:
		return int64(v.f)
	}
	return 0
}

// Equal compares kind and number.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case kindInt:
		return v.i == o.i
	case kindRatio:
		return v.f == o.f
	}
	return true
}

// Add sums two values; Undefined is absorbing.
func (v Value) Add(o Value) Value {
	if v.IsUndefined() || o.IsUndefined() {
		return Undefined
	}
	if v.kind == kindInt && o.kind == kindInt {
		return Int(v.i + o.i)
	}
	return Ratio(v.Float() + o.Float())
}

func (v Value) String() string {
	switch v.kind {
	case kindInt:
		return strconv.FormatInt(v.i, 10)
	case kindRatio:
		return strconv.FormatFloat(v.f, 'f', 2, 64)
	}
	return "N/A"
}

// MarshalJSON encodes counts as integers, ratios as numbers and Undefined as null.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case kindInt:
		return json.Marshal(v.i)
	case kindRatio:
		return json.Marshal(math.Round(v.f*10000) / 10000)
	}
	return []byte("null"), nil
}

// Metric pairs a metric type with its value.
type Metric struct {
	Type  Type  `json:"name"`
	Value Value `json:"value"`
}
