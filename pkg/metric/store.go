package metric

import (
	"errors"
	"fmt"
	"sync"
)

// ErrAlreadyRecorded is returned when a metric is written twice to one store.
var ErrAlreadyRecorded = errors.New("metric already recorded")

// Store is a construct's write-once map from metric type to value.
// Reads preserve insertion order.
type Store struct {
	mu     sync.RWMutex
	order  []Type
	values map[Type]Value
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{values: make(map[Type]Value)}
}

// Record stores v for t. A second write for the same type fails and leaves
// the first value in place.
func (s *Store) Record(t Type, v Value) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.values[t]; ok {
		return fmt.Errorf("%s: %w", t, ErrAlreadyRecorded)
	}
	s.values[t] = v
	s.order = append(s.order, t)
	return nil
}

// Get returns the value for t and whether it was recorded.
func (s *Store) Get(t Type) (Value, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[t]
	return v, ok
}

// Value returns the recorded value for t or Undefined.
func (s *Store) Value(t Type) Value {
	v, _ := s.Get(t)
	return v
}

// Len returns the number of recorded metrics.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// Metrics returns the recorded metrics in insertion order.
func (s *Store) Metrics() []Metric {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Metric, len(s.order))
	for i, t := range s.order {
		out[i] = Metric{Type: t, Value: s.values[t]}
	}
	return out
}

// Recorder collects the first write error while recording many metrics.
type Recorder struct {
	store *Store
	err   error
}

// NewRecorder wraps s.
func NewRecorder(s *Store) *Recorder { return &Recorder{store: s} }

// Set records v for t, keeping the first failure.
func (r *Recorder) Set(t Type, v Value) {
	if err := r.store.Record(t, v); err != nil && r.err == nil {
		r.err = err
	}
}

// Err returns the first write failure.
func (r *Recorder) Err() error { return r.err }
