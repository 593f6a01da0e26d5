// Package profile matches classes and packages against metric profiles:
// named conjunctions of metric ranges that describe a design problem such
// as a God Class or an unstable package.
package profile

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/panbanda/oometrics/pkg/metric"
	"github.com/panbanda/oometrics/pkg/model"
)

var (
	// ErrInvalidProfile is returned for a profile that cannot be evaluated.
	ErrInvalidProfile = errors.New("invalid profile")
)

// Bound is the half-open range [Min, Max) a metric value must fall in.
// Max is +Inf for an open upper end.
type Bound struct {
	Metric metric.Type
	Min    float64
	Max    float64
}

// AtLeast is a bound with no upper end.
func AtLeast(t metric.Type, min float64) Bound {
	return Bound{Metric: t, Min: min, Max: math.Inf(1)}
}

// Between is a bound over [min, max).
func Between(t metric.Type, min, max float64) Bound {
	return Bound{Metric: t, Min: min, Max: max}
}

// Contains reports whether v is a defined value inside the bound.
func (b Bound) Contains(v metric.Value) bool {
	if v.IsUndefined() {
		return false
	}
	f := v.Float()
	return f >= b.Min && f < b.Max
}

func (b Bound) String() string {
	format := func(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }
	if math.IsInf(b.Max, 1) {
		return fmt.Sprintf("%s >= %s", b.Metric, format(b.Min))
	}
	return fmt.Sprintf("%s in [%s, %s)", b.Metric, format(b.Min), format(b.Max))
}

// Profile is a named conjunction of bounds evaluated at one level.
// Class profiles may mix class and method metrics: a method bound holds
// when any method of the class satisfies it.
type Profile struct {
	Name        string
	Description string
	Level       metric.Level
	Bounds      []Bound
}

// Validate checks that every bound names a metric the profile's level can
// read and that each range is non-empty.
func (p Profile) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidProfile)
	}
	if p.Level != metric.LevelClass && p.Level != metric.LevelPackage {
		return fmt.Errorf("%w: %s: level must be class or package, got %s", ErrInvalidProfile, p.Name, p.Level)
	}
	if len(p.Bounds) == 0 {
		return fmt.Errorf("%w: %s: no metrics", ErrInvalidProfile, p.Name)
	}
	for _, b := range p.Bounds {
		info, ok := metric.Lookup(b.Metric)
		if !ok {
			return fmt.Errorf("%w: %s: unknown metric %q", ErrInvalidProfile, p.Name, b.Metric)
		}
		switch {
		case p.Level == metric.LevelPackage && info.Level != metric.LevelPackage,
			p.Level == metric.LevelClass && info.Level != metric.LevelClass && info.Level != metric.LevelMethod:
			return fmt.Errorf("%w: %s: %s is a %s metric", ErrInvalidProfile, p.Name, b.Metric, info.Level)
		}
		if math.IsNaN(b.Min) || math.IsNaN(b.Max) || b.Min >= b.Max {
			return fmt.Errorf("%w: %s: empty range for %s", ErrInvalidProfile, p.Name, b.Metric)
		}
	}
	return nil
}

// Conditions lists the bounds as text, in declaration order.
func (p Profile) Conditions() []string {
	out := make([]string, len(p.Bounds))
	for i, b := range p.Bounds {
		out[i] = b.String()
	}
	return out
}

func (p Profile) split() (own, methods []Bound) {
	for _, b := range p.Bounds {
		if b.Metric.Level() == metric.LevelMethod {
			methods = append(methods, b)
		} else {
			own = append(own, b)
		}
	}
	return own, methods
}

// MatchClass reports whether c fits a class profile. The returned methods
// satisfy every method bound at once and are empty when the profile has no
// method bounds.
func (p Profile) MatchClass(c *model.Class) (bool, []*model.Method) {
	own, methodBounds := p.split()
	for _, b := range own {
		if !b.Contains(c.Metrics().Value(b.Metric)) {
			return false, nil
		}
	}
	for _, b := range methodBounds {
		if !anyMethod(c.Methods(), b) {
			return false, nil
		}
	}
	if len(methodBounds) == 0 {
		return true, nil
	}

	var witnesses []*model.Method
	for _, m := range c.Methods() {
		if satisfies(m.Metrics(), methodBounds) {
			witnesses = append(witnesses, m)
		}
	}
	return true, witnesses
}

// MatchPackage reports whether pkg fits a package profile. Packages without
// classes never match.
func (p Profile) MatchPackage(pkg *model.Package) bool {
	if len(pkg.Classes()) == 0 {
		return false
	}
	return satisfies(pkg.Metrics(), p.Bounds)
}

func anyMethod(methods []*model.Method, b Bound) bool {
	for _, m := range methods {
		if b.Contains(m.Metrics().Value(b.Metric)) {
			return true
		}
	}
	return false
}

func satisfies(store *metric.Store, bounds []Bound) bool {
	for _, b := range bounds {
		if !b.Contains(store.Value(b.Metric)) {
			return false
		}
	}
	return true
}

// Hit is one construct matching a profile.
type Hit struct {
	Class   *model.Class
	Package *model.Package
	Methods []*model.Method
}

// Result lists the constructs matching one profile.
type Result struct {
	Profile Profile
	Hits    []Hit
}

// Evaluate matches every profile against proj, whose stores must already
// hold computed metrics. Results follow the profile name order.
func Evaluate(proj *model.Project, profiles []Profile) []Result {
	sorted := append([]Profile(nil), profiles...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	results := make([]Result, 0, len(sorted))
	for _, p := range sorted {
		res := Result{Profile: p}
		switch p.Level {
		case metric.LevelClass:
			for _, c := range proj.Classes() {
				if ok, methods := p.MatchClass(c); ok {
					res.Hits = append(res.Hits, Hit{Class: c, Methods: methods})
				}
			}
		case metric.LevelPackage:
			for _, pkg := range proj.Packages() {
				if p.MatchPackage(pkg) {
					res.Hits = append(res.Hits, Hit{Package: pkg})
				}
			}
		}
		results = append(results, res)
	}
	return results
}
