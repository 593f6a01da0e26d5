package severity

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/panbanda/oometrics/pkg/metric"
)

// ErrUnknownMetric is returned when editing a range for a type the catalog
// does not know.
var ErrUnknownMetric = errors.New("unknown metric")

type snapshot struct {
	ranges  map[metric.Type]Range
	outside Severity
}

// Table holds the threshold range of every metric. Readers see an immutable
// snapshot; edits are validated and swap in a new one.
type Table struct {
	mu   sync.Mutex
	snap atomic.Pointer[snapshot]
}

// NewTable returns a table with no ranges.
func NewTable() *Table {
	t := &Table{}
	t.snap.Store(&snapshot{ranges: map[metric.Type]Range{}, outside: Extreme})
	return t
}

// Defaults returns a table loaded with the built-in ranges.
func Defaults() *Table {
	t := NewTable()
	t.snap.Store(&snapshot{ranges: defaultRanges(), outside: Extreme})
	return t
}

var (
	processOnce  sync.Once
	processTable *Table
)

// Process returns the process-wide table, initialized with the defaults.
func Process() *Table {
	processOnce.Do(func() { processTable = Defaults() })
	return processTable
}

// Classify returns the severity of v for t. Metrics without a range are
// Undefined.
func (t *Table) Classify(mt metric.Type, v metric.Value) Severity {
	s := t.snap.Load()
	r, ok := s.ranges[mt]
	if !ok {
		return Undefined
	}
	if d, ok := r.(Derivative); ok {
		d.Outside = s.outside
		return d.Classify(v)
	}
	return r.Classify(v)
}

// Range returns the configured range for mt.
func (t *Table) Range(mt metric.Type) (Range, bool) {
	r, ok := t.snap.Load().ranges[mt]
	return r, ok
}

// Types returns the metrics that have a range, sorted by name.
func (t *Table) Types() []metric.Type {
	s := t.snap.Load()
	out := make([]metric.Type, 0, len(s.ranges))
	for mt := range s.ranges {
		out = append(out, mt)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Outside returns the severity assigned to values outside a derivative range.
func (t *Table) Outside() Severity { return t.snap.Load().outside }

// SetBasic validates and installs a basic range.
func (t *Table) SetBasic(mt metric.Type, b Basic) error {
	if err := b.Validate(); err != nil {
		return fmt.Errorf("%s: %w", mt, err)
	}
	return t.set(mt, b)
}

// SetDerivative validates and installs a derivative range.
func (t *Table) SetDerivative(mt metric.Type, d Derivative) error {
	if err := d.Validate(); err != nil {
		return fmt.Errorf("%s: %w", mt, err)
	}
	d.Outside = ""
	return t.set(mt, d)
}

// SetOutside sets the severity for values outside derivative ranges. Only
// High and Extreme are accepted.
func (t *Table) SetOutside(s Severity) error {
	if s != High && s != Extreme {
		return fmt.Errorf("%w: outside severity must be HIGH or EXTREME, got %q", ErrInvalidThreshold, s)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	cur := t.snap.Load()
	t.snap.Store(&snapshot{ranges: cur.ranges, outside: s})
	return nil
}

// Reset restores the built-in range of mt, or removes it if there is none.
func (t *Table) Reset(mt metric.Type) {
	t.mu.Lock()
	defer t.mu.Unlock()
	next := t.clone()
	if r, ok := defaultRanges()[mt]; ok {
		next.ranges[mt] = r
	} else {
		delete(next.ranges, mt)
	}
	t.snap.Store(next)
}

// Remove drops the range of mt.
func (t *Table) Remove(mt metric.Type) {
	t.mu.Lock()
	defer t.mu.Unlock()
	next := t.clone()
	delete(next.ranges, mt)
	t.snap.Store(next)
}

func (t *Table) set(mt metric.Type, r Range) error {
	if _, ok := metric.Lookup(mt); !ok {
		return fmt.Errorf("%w: %s", ErrUnknownMetric, mt)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	next := t.clone()
	next.ranges[mt] = r
	t.snap.Store(next)
	return nil
}

func (t *Table) clone() *snapshot {
	cur := t.snap.Load()
	ranges := make(map[metric.Type]Range, len(cur.ranges)+1)
	for k, v := range cur.ranges {
		ranges[k] = v
	}
	return &snapshot{ranges: ranges, outside: cur.outside}
}
