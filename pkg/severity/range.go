// Package severity classifies metric values into severity bands using
// per-metric threshold ranges.
package severity

import (
	"errors"
	"fmt"

	"github.com/panbanda/oometrics/pkg/metric"
)

// Severity is the band a metric value falls in.
type Severity string

const (
	Regular   Severity = "REGULAR"
	High      Severity = "HIGH"
	VeryHigh  Severity = "VERY_HIGH"
	Extreme   Severity = "EXTREME"
	Undefined Severity = "UNDEFINED"
)

// Rank orders severities for comparison; Undefined ranks lowest.
func (s Severity) Rank() int {
	switch s {
	case Regular:
		return 1
	case High:
		return 2
	case VeryHigh:
		return 3
	case Extreme:
		return 4
	}
	return 0
}

// IsViolation reports whether the severity is above Regular.
func (s Severity) IsViolation() bool { return s.Rank() > 1 }

// ErrInvalidThreshold is returned for ranges that violate their ordering.
var ErrInvalidThreshold = errors.New("invalid threshold")

// Range maps a value to a severity.
type Range interface {
	Classify(v metric.Value) Severity
	Validate() error
	String() string
}

// Basic has four half-open bands split at Regular, High and VeryHigh.
type Basic struct {
	Regular  float64 `json:"regular" koanf:"regular" toml:"regular"`
	High     float64 `json:"high" koanf:"high" toml:"high"`
	VeryHigh float64 `json:"very_high" koanf:"very_high" toml:"very_high"`
}

// Validate checks regular <= high <= veryHigh.
func (b Basic) Validate() error {
	if b.Regular > b.High || b.High > b.VeryHigh {
		return fmt.Errorf("%w: want regular <= high <= very high, got %g/%g/%g",
			ErrInvalidThreshold, b.Regular, b.High, b.VeryHigh)
	}
	return nil
}

// Classify returns Extreme at or above VeryHigh, VeryHigh in [High, VeryHigh),
// High in [Regular, High) and Regular below Regular. Negative and undefined
// values are Undefined.
func (b Basic) Classify(v metric.Value) Severity {
	if v.IsUndefined() {
		return Undefined
	}
	x := v.Float()
	switch {
	case x >= b.VeryHigh:
		return Extreme
	case x >= b.High:
		return VeryHigh
	case x >= b.Regular:
		return High
	case x >= 0:
		return Regular
	}
	return Undefined
}

func (b Basic) String() string {
	return fmt.Sprintf("[0..%g) [%g..%g) [%g..%g) [%g..)", b.Regular, b.Regular, b.High, b.High, b.VeryHigh, b.VeryHigh)
}

// Derivative has a single regular interval [From, To). Values outside it
// classify as Outside.
type Derivative struct {
	From    float64  `json:"from" koanf:"from" toml:"from"`
	To      float64  `json:"to" koanf:"to" toml:"to"`
	Outside Severity `json:"-" koanf:"-" toml:"-"`
}

// Validate checks from <= to.
func (d Derivative) Validate() error {
	if d.From > d.To {
		return fmt.Errorf("%w: want from <= to, got %g/%g", ErrInvalidThreshold, d.From, d.To)
	}
	return nil
}

// Classify returns Regular inside [From, To) and the outside policy
// elsewhere, Extreme when no policy is set.
func (d Derivative) Classify(v metric.Value) Severity {
	if v.IsUndefined() {
		return Undefined
	}
	x := v.Float()
	if x >= d.From && x < d.To {
		return Regular
	}
	if d.Outside == "" {
		return Extreme
	}
	return d.Outside
}

func (d Derivative) String() string {
	return fmt.Sprintf("[%.3f..%.3f)", d.From, d.To)
}
