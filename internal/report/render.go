package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/panbanda/oometrics/internal/output"
	"github.com/panbanda/oometrics/pkg/metric"
	"github.com/panbanda/oometrics/pkg/severity"
)

var _ output.Renderable = (*Report)(nil)

// RenderData returns the report itself for structured encodings.
func (r *Report) RenderData() any { return r }

// RenderText writes the report as aligned tables.
func (r *Report) RenderText(w io.Writer, colored bool) error {
	return r.document(colored).RenderText(w, colored)
}

// RenderMarkdown writes the report as markdown tables.
func (r *Report) RenderMarkdown(w io.Writer) error {
	return r.document(false).RenderMarkdown(w)
}

func (r *Report) document(colored bool) *output.Document {
	paint := func(s string, text string) string {
		if !colored {
			return text
		}
		return output.SeverityColor(severity.Severity(s), text)
	}

	doc := &output.Document{Title: "OO Metrics: " + r.Metadata.Project}
	doc.Sections = append(doc.Sections, &output.Section{Content: r.overview()})

	if len(r.Project) > 0 && r.Metadata.Level != metric.LevelProject.String() {
		rows := make([][]string, 0, len(r.Project))
		for _, rd := range r.Project {
			rows = append(rows, []string{rd.Metric, paint(rd.Severity, rd.Display()), paint(rd.Severity, rd.Severity)})
		}
		doc.Sections = append(doc.Sections, output.NewTable("Project", []string{"Metric", "Value", "Severity"}, rows, nil, nil))
	}

	var rows [][]string
	for _, e := range r.Entries {
		for i, rd := range e.Metrics {
			name := ""
			if i == 0 {
				name = e.Name
			}
			rows = append(rows, []string{name, rd.Metric, paint(rd.Severity, rd.Display()), paint(rd.Severity, rd.Severity)})
		}
	}
	title := levelTitle(r.Metadata.Level)
	if len(rows) == 0 {
		doc.Sections = append(doc.Sections, &output.Section{Title: title, Content: "No constructs to report."})
	} else {
		doc.Sections = append(doc.Sections, output.NewTable(title, []string{"Name", "Metric", "Value", "Severity"}, rows, nil, nil))
	}

	if len(r.Summary) > 0 {
		rows = make([][]string, 0, len(r.Summary))
		for _, st := range r.Summary {
			mt := metric.Type(st.Metric)
			rows = append(rows, []string{
				st.Metric,
				strconv.Itoa(st.Count),
				strconv.FormatFloat(st.Mean, 'f', 2, 64),
				FormatValue(mt, st.Median),
				FormatValue(mt, st.P90),
				FormatValue(mt, st.Max),
				st.MaxAt,
				strconv.Itoa(st.Violations),
			})
		}
		doc.Sections = append(doc.Sections, output.NewTable("Summary", []string{"Metric", "Count", "Mean", "Median", "P90", "Max", "Max At", "Violations"}, rows, nil, nil))
	}

	if r.Profiles != nil {
		doc.Sections = append(doc.Sections, r.profileSection())
	}

	if len(r.Violations) == 0 {
		doc.Sections = append(doc.Sections, &output.Section{Title: "Violations", Content: "All values are within their regular range."})
		return doc
	}
	rows = make([][]string, 0, len(r.Violations))
	for _, v := range r.Violations {
		loc := v.File
		if loc != "" && v.Line > 0 {
			loc = fmt.Sprintf("%s:%d", v.File, v.Line)
		}
		rows = append(rows, []string{
			paint(v.Severity, v.Severity),
			v.Level,
			v.Name,
			v.Metric,
			FormatValue(metric.Type(v.Metric), v.Value),
			v.Range,
			loc,
		})
	}
	footer := []string{"", "", "", "", "", "Total", strconv.Itoa(len(r.Violations))}
	doc.Sections = append(doc.Sections, output.NewTable("Violations",
		[]string{"Severity", "Level", "Name", "Metric", "Value", "Range", "Location"}, rows, footer, nil))
	return doc
}

func (r *Report) profileSection() output.Renderable {
	var rows [][]string
	for _, p := range r.Profiles {
		for i, h := range p.Matches {
			name := ""
			if i == 0 {
				name = p.Name
			}
			loc := h.File
			if loc != "" && h.Line > 0 {
				loc = fmt.Sprintf("%s:%d", h.File, h.Line)
			}
			rows = append(rows, []string{name, h.Name, strings.Join(h.Methods, ", "), loc})
		}
	}
	if len(rows) == 0 {
		return &output.Section{Title: "Metric Profiles", Content: "No construct fits a metric profile."}
	}
	footer := []string{"", "", "Total", strconv.Itoa(r.Matched())}
	return output.NewTable("Metric Profiles", []string{"Profile", "Name", "Methods", "Location"}, rows, footer, nil)
}

func (r *Report) overview() string {
	m := r.Metadata
	s := fmt.Sprintf("Files: %d", m.Files)
	if m.Skipped > 0 {
		s += fmt.Sprintf(" (%d skipped)", m.Skipped)
	}
	s += fmt.Sprintf("  Packages: %d  Classes: %d  Methods: %d  Level: %s", m.Packages, m.Classes, m.Methods, m.Level)
	return s
}

func levelTitle(level string) string {
	switch level {
	case "method":
		return "Methods"
	case "class":
		return "Classes"
	case "package":
		return "Packages"
	}
	return "Project"
}
