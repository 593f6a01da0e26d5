// Package report turns an analyzed construct tree into a classified metrics
// report: per-construct readings with severities, per-metric statistics and
// the list of values outside their regular band.
package report

import (
	"math"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/panbanda/oometrics/pkg/metric"
	"github.com/panbanda/oometrics/pkg/model"
	"github.com/panbanda/oometrics/pkg/profile"
	"github.com/panbanda/oometrics/pkg/severity"
)

// Report is the rendered result of one analysis run.
type Report struct {
	Metadata   Metadata    `json:"metadata" yaml:"metadata" toon:"metadata"`
	Project    []Reading   `json:"project" yaml:"project" toon:"project"`
	Entries    []Entry     `json:"entries" yaml:"entries" toon:"entries"`
	Summary    []Stat      `json:"summary" yaml:"summary" toon:"summary"`
	Violations []Violation `json:"violations" yaml:"violations" toon:"violations"`
	Profiles   []Profile   `json:"profiles,omitempty" yaml:"profiles,omitempty" toon:"profiles,omitempty"`
}

// Metadata describes the run a report came from.
type Metadata struct {
	Project     string    `json:"project" yaml:"project" toon:"project"`
	GeneratedAt time.Time `json:"generated_at" yaml:"generated_at" toon:"generated_at"`
	Version     string    `json:"version,omitempty" yaml:"version,omitempty" toon:"version,omitempty"`
	Paths       []string  `json:"paths,omitempty" yaml:"paths,omitempty" toon:"paths,omitempty"`
	Level       string    `json:"level" yaml:"level" toon:"level"`
	Files       int       `json:"files" yaml:"files" toon:"files"`
	Skipped     int       `json:"skipped" yaml:"skipped" toon:"skipped"`
	Packages    int       `json:"packages" yaml:"packages" toon:"packages"`
	Classes     int       `json:"classes" yaml:"classes" toon:"classes"`
	Methods     int       `json:"methods" yaml:"methods" toon:"methods"`
	Truncated   int       `json:"truncated,omitempty" yaml:"truncated,omitempty" toon:"truncated,omitempty"`
}

// Reading is one classified metric value. Undefined values carry 0 and the
// UNDEFINED severity.
type Reading struct {
	Metric   string  `json:"metric" yaml:"metric" toon:"metric"`
	Value    float64 `json:"value" yaml:"value" toon:"value"`
	Severity string  `json:"severity" yaml:"severity" toon:"severity"`
}

// Display formats the value the way the metric domain expects.
func (r Reading) Display() string {
	if r.Severity == string(severity.Undefined) {
		return "-"
	}
	return formatValue(metric.Type(r.Metric), r.Value)
}

// Entry is one construct at the reported level.
type Entry struct {
	Name    string    `json:"name" yaml:"name" toon:"name"`
	File    string    `json:"file,omitempty" yaml:"file,omitempty" toon:"file,omitempty"`
	Line    int       `json:"line,omitempty" yaml:"line,omitempty" toon:"line,omitempty"`
	Worst   string    `json:"worst" yaml:"worst" toon:"worst"`
	Metrics []Reading `json:"metrics" yaml:"metrics" toon:"metrics"`
}

// Stat summarizes one metric over the entries of the reported level.
type Stat struct {
	Metric     string  `json:"metric" yaml:"metric" toon:"metric"`
	Count      int     `json:"count" yaml:"count" toon:"count"`
	Mean       float64 `json:"mean" yaml:"mean" toon:"mean"`
	Median     float64 `json:"median" yaml:"median" toon:"median"`
	P90        float64 `json:"p90" yaml:"p90" toon:"p90"`
	Max        float64 `json:"max" yaml:"max" toon:"max"`
	MaxAt      string  `json:"max_at,omitempty" yaml:"max_at,omitempty" toon:"max_at,omitempty"`
	Violations int     `json:"violations" yaml:"violations" toon:"violations"`
}

// Violation is a value above the regular band at any level.
type Violation struct {
	Level    string  `json:"level" yaml:"level" toon:"level"`
	Name     string  `json:"name" yaml:"name" toon:"name"`
	File     string  `json:"file,omitempty" yaml:"file,omitempty" toon:"file,omitempty"`
	Line     int     `json:"line,omitempty" yaml:"line,omitempty" toon:"line,omitempty"`
	Metric   string  `json:"metric" yaml:"metric" toon:"metric"`
	Value    float64 `json:"value" yaml:"value" toon:"value"`
	Severity string  `json:"severity" yaml:"severity" toon:"severity"`
	Range    string  `json:"range,omitempty" yaml:"range,omitempty" toon:"range,omitempty"`
}

// Profile lists the constructs fitting one metric profile.
type Profile struct {
	Name        string       `json:"name" yaml:"name" toon:"name"`
	Level       string       `json:"level" yaml:"level" toon:"level"`
	Description string       `json:"description,omitempty" yaml:"description,omitempty" toon:"description,omitempty"`
	Conditions  []string     `json:"conditions" yaml:"conditions" toon:"conditions"`
	Matches     []ProfileHit `json:"matches" yaml:"matches" toon:"matches"`
}

// ProfileHit is a class or package fitting a profile. Methods names the
// methods that meet every method condition of a class profile.
type ProfileHit struct {
	Name    string   `json:"name" yaml:"name" toon:"name"`
	File    string   `json:"file,omitempty" yaml:"file,omitempty" toon:"file,omitempty"`
	Line    int      `json:"line,omitempty" yaml:"line,omitempty" toon:"line,omitempty"`
	Methods []string `json:"methods,omitempty" yaml:"methods,omitempty" toon:"methods,omitempty"`
}

// Options controls what Build includes.
type Options struct {
	Level          metric.Level
	OnlyViolations bool
	Table          *severity.Table
	Version        string
	Paths          []string
	Files          int
	Skipped        int
	Now            func() time.Time
	// Profiles are matched after classification; nil skips the section.
	Profiles []profile.Profile
}

// Build classifies every metric stored in proj against opts.Table and
// assembles the report for opts.Level.
func Build(proj *model.Project, opts Options) *Report {
	table := opts.Table
	if table == nil {
		table = severity.Process()
	}
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}

	r := &Report{
		Metadata: Metadata{
			Project:     proj.Name(),
			GeneratedAt: now().UTC(),
			Version:     opts.Version,
			Paths:       opts.Paths,
			Level:       opts.Level.String(),
			Files:       opts.Files,
			Skipped:     opts.Skipped,
			Packages:    len(proj.Packages()),
			Classes:     len(proj.Classes()),
			Methods:     len(proj.Methods()),
		},
		Project:    readings(proj.Metrics(), table),
		Entries:    []Entry{},
		Violations: []Violation{},
	}

	for _, l := range []metric.Level{metric.LevelMethod, metric.LevelClass, metric.LevelPackage, metric.LevelProject} {
		for _, c := range constructs(proj, l) {
			e := entry(c, table)
			if l == opts.Level && (!opts.OnlyViolations || severity.Severity(e.Worst).IsViolation()) {
				r.Entries = append(r.Entries, e)
			}
			r.Violations = append(r.Violations, violations(l, e, table)...)
		}
	}

	sortViolations(r.Violations)
	r.Summary = summarize(r.Entries)
	if opts.Profiles != nil {
		r.Profiles = profiles(proj, opts.Profiles)
	}
	return r
}

// Matched counts the constructs fitting any profile.
func (r *Report) Matched() int {
	n := 0
	for _, p := range r.Profiles {
		n += len(p.Matches)
	}
	return n
}

func profiles(proj *model.Project, defs []profile.Profile) []Profile {
	results := profile.Evaluate(proj, defs)
	out := make([]Profile, 0, len(results))
	for _, res := range results {
		p := Profile{
			Name:        res.Profile.Name,
			Level:       res.Profile.Level.String(),
			Description: res.Profile.Description,
			Conditions:  res.Profile.Conditions(),
			Matches:     []ProfileHit{},
		}
		for _, hit := range res.Hits {
			var h ProfileHit
			switch {
			case hit.Class != nil:
				h.Name = DisplayName(hit.Class)
				h.File, h.Line = location(hit.Class)
				for _, m := range hit.Methods {
					h.Methods = append(h.Methods, m.Signature())
				}
			case hit.Package != nil:
				h.Name = DisplayName(hit.Package)
			}
			p.Matches = append(p.Matches, h)
		}
		out = append(out, p)
	}
	return out
}

// HasViolations reports whether any value fell outside its regular band.
func (r *Report) HasViolations() bool { return len(r.Violations) > 0 }

// Worst returns the highest severity among the violations.
func (r *Report) Worst() severity.Severity {
	worst := severity.Regular
	for _, v := range r.Violations {
		if s := severity.Severity(v.Severity); s.Rank() > worst.Rank() {
			worst = s
		}
	}
	return worst
}

// Truncate keeps the n entries and n violations with the worst severities.
// Metadata.Truncated counts what was dropped.
func (r *Report) Truncate(n int) {
	if n < 0 {
		n = 0
	}
	if len(r.Entries) > n {
		sort.SliceStable(r.Entries, func(i, j int) bool {
			return severity.Severity(r.Entries[i].Worst).Rank() > severity.Severity(r.Entries[j].Worst).Rank()
		})
		r.Metadata.Truncated += len(r.Entries) - n
		r.Entries = r.Entries[:n]
	}
	if len(r.Violations) > n {
		r.Metadata.Truncated += len(r.Violations) - n
		r.Violations = r.Violations[:n]
	}
}

func constructs(proj *model.Project, l metric.Level) []model.Construct {
	var out []model.Construct
	switch l {
	case metric.LevelMethod:
		for _, m := range proj.Methods() {
			out = append(out, m)
		}
	case metric.LevelClass:
		for _, c := range proj.Classes() {
			out = append(out, c)
		}
	case metric.LevelPackage:
		for _, p := range proj.Packages() {
			out = append(out, p)
		}
	case metric.LevelProject:
		out = append(out, proj)
	}
	return out
}

// DisplayName is the report name of a construct: qualified class names,
// methods as Class#name/arity and the unnamed package as "(default)".
func DisplayName(c model.Construct) string {
	switch v := c.(type) {
	case *model.Method:
		return v.ClassName() + "#" + v.Signature()
	case *model.Class:
		return v.QualifiedName()
	case *model.Package:
		if v.Name() == "" {
			return "(default)"
		}
	}
	return c.Name()
}

func location(c model.Construct) (string, int) {
	switch v := c.(type) {
	case *model.Method:
		return filepath.ToSlash(v.File().Path), v.Decl().StartLine
	case *model.Class:
		return filepath.ToSlash(v.File().Path), v.Decl().StartLine
	}
	return "", 0
}

func entry(c model.Construct, table *severity.Table) Entry {
	file, line := location(c)
	e := Entry{
		Name:    DisplayName(c),
		File:    file,
		Line:    line,
		Worst:   string(severity.Regular),
		Metrics: readings(c.Metrics(), table),
	}
	for _, rd := range e.Metrics {
		if s := severity.Severity(rd.Severity); s.Rank() > severity.Severity(e.Worst).Rank() {
			e.Worst = rd.Severity
		}
	}
	return e
}

func readings(store *metric.Store, table *severity.Table) []Reading {
	ms := store.Metrics()
	out := make([]Reading, 0, len(ms))
	for _, m := range ms {
		s := table.Classify(m.Type, m.Value)
		v := 0.0
		if !m.Value.IsUndefined() {
			v = m.Value.Float()
		}
		out = append(out, Reading{Metric: string(m.Type), Value: v, Severity: string(s)})
	}
	return out
}

func violations(l metric.Level, e Entry, table *severity.Table) []Violation {
	var out []Violation
	for _, rd := range e.Metrics {
		if !severity.Severity(rd.Severity).IsViolation() {
			continue
		}
		v := Violation{
			Level:    l.String(),
			Name:     e.Name,
			File:     e.File,
			Line:     e.Line,
			Metric:   rd.Metric,
			Value:    rd.Value,
			Severity: rd.Severity,
		}
		if rng, ok := table.Range(metric.Type(rd.Metric)); ok {
			v.Range = rng.String()
		}
		out = append(out, v)
	}
	return out
}

func sortViolations(vs []Violation) {
	sort.SliceStable(vs, func(i, j int) bool {
		a, b := vs[i], vs[j]
		if ra, rb := severity.Severity(a.Severity).Rank(), severity.Severity(b.Severity).Rank(); ra != rb {
			return ra > rb
		}
		if a.Level != b.Level {
			return levelRank(a.Level) < levelRank(b.Level)
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.Metric < b.Metric
	})
}

func levelRank(name string) int {
	l, _ := metric.ParseLevel(name)
	return int(l)
}

// summarize computes the distribution of each metric over defined readings,
// in catalog order.
func summarize(entries []Entry) []Stat {
	stats := make(map[string]*Stat)
	values := make(map[string][]float64)
	var order []string
	for _, e := range entries {
		for _, rd := range e.Metrics {
			if rd.Severity == string(severity.Undefined) {
				continue
			}
			st, ok := stats[rd.Metric]
			if !ok {
				st = &Stat{Metric: rd.Metric, Max: math.Inf(-1)}
				stats[rd.Metric] = st
				order = append(order, rd.Metric)
			}
			st.Count++
			values[rd.Metric] = append(values[rd.Metric], rd.Value)
			if rd.Value > st.Max {
				st.Max = rd.Value
				st.MaxAt = e.Name
			}
			if severity.Severity(rd.Severity).IsViolation() {
				st.Violations++
			}
		}
	}

	rank := make(map[string]int)
	for i, info := range metric.Catalog() {
		rank[string(info.Type)] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		ri, iok := rank[order[i]]
		rj, jok := rank[order[j]]
		if iok != jok {
			return iok
		}
		if ri != rj {
			return ri < rj
		}
		return order[i] < order[j]
	})

	out := make([]Stat, 0, len(order))
	for _, name := range order {
		st := stats[name]
		xs := values[name]
		sort.Float64s(xs)
		st.Mean = stat.Mean(xs, nil)
		st.Median = stat.Quantile(0.5, stat.Empirical, xs, nil)
		st.P90 = stat.Quantile(0.9, stat.Empirical, xs, nil)
		out = append(out, *st)
	}
	return out
}

func formatValue(mt metric.Type, v float64) string {
	if info, ok := metric.Lookup(mt); ok && info.Domain == metric.DomainCount && v == math.Trunc(v) {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// FormatValue formats v for display as a value of mt.
func FormatValue(mt metric.Type, v float64) string { return formatValue(mt, v) }
