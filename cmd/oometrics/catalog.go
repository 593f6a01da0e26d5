package main

import (
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/panbanda/oometrics/internal/output"
	"github.com/panbanda/oometrics/pkg/metric"
	"github.com/panbanda/oometrics/pkg/severity"
)

// catalogRow is one metric in catalog and ranges output.
type catalogRow struct {
	Name        string `json:"name" yaml:"name" toon:"name"`
	Description string `json:"description" yaml:"description" toon:"description"`
	Level       string `json:"level" yaml:"level" toon:"level"`
	Domain      string `json:"domain" yaml:"domain" toon:"domain"`
	Set         string `json:"set,omitempty" yaml:"set,omitempty" toon:"set,omitempty"`
	Range       string `json:"range,omitempty" yaml:"range,omitempty" toon:"range,omitempty"`
}

func outputFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "format",
			Aliases: []string{"f"},
			Value:   "text",
			Usage:   "Output format: text, markdown, json, toon, yaml",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Write output to file",
		},
	}
}

func catalogCmd() *cli.Command {
	return &cli.Command{
		Name:  "catalog",
		Usage: "List the metrics oometrics computes",
		Flags: append(outputFlags(),
			&cli.StringFlag{
				Name:    "level",
				Aliases: []string{"l"},
				Usage:   "Only metrics of this level: method, class, package, project",
			},
			&cli.StringFlag{
				Name:  "set",
				Usage: "Only metrics of this suite, e.g. Chidamber-Kemerer or MOOD",
			},
		),
		Action: runCatalogCmd,
	}
}

func rangesCmd() *cli.Command {
	return &cli.Command{
		Name:  "ranges",
		Usage: "Show the severity ranges in effect after applying the config",
		Flags: outputFlags(),
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c, nil)
			if err != nil {
				return err
			}
			table, err := cfg.Table()
			if err != nil {
				return err
			}
			return writeCatalog(c, "Severity Ranges", rangeRows(table), table.Outside())
		},
	}
}

func runCatalogCmd(c *cli.Context) error {
	var level *metric.Level
	if name := c.String("level"); name != "" {
		l, ok := metric.ParseLevel(strings.ToLower(name))
		if !ok {
			return fmt.Errorf("unknown level %q: want method, class, package or project", name)
		}
		level = &l
	}

	cfg, err := loadConfig(c, nil)
	if err != nil {
		return err
	}
	table, err := cfg.Table()
	if err != nil {
		return err
	}

	rows := catalogRows(table, level, c.String("set"))
	if len(rows) == 0 {
		return fmt.Errorf("no metrics match the filter")
	}
	return writeCatalog(c, "Metrics", rows, "")
}

func catalogRows(table *severity.Table, level *metric.Level, set string) []catalogRow {
	var rows []catalogRow
	for _, info := range metric.Catalog() {
		if level != nil && info.Level != *level {
			continue
		}
		if set != "" && !strings.EqualFold(string(info.Set), set) {
			continue
		}
		rows = append(rows, newCatalogRow(info, table))
	}
	return rows
}

// rangeRows lists the metrics that have a range, in catalog order.
func rangeRows(table *severity.Table) []catalogRow {
	var rows []catalogRow
	for _, info := range metric.Catalog() {
		if _, ok := table.Range(info.Type); ok {
			rows = append(rows, newCatalogRow(info, table))
		}
	}
	return rows
}

func newCatalogRow(info metric.Info, table *severity.Table) catalogRow {
	row := catalogRow{
		Name:        string(info.Type),
		Description: info.Description,
		Level:       info.Level.String(),
		Domain:      info.Domain.String(),
		Set:         string(info.Set),
	}
	if r, ok := table.Range(info.Type); ok {
		row.Range = r.String()
	}
	return row
}

func writeCatalog(c *cli.Context, title string, rows []catalogRow, outside severity.Severity) error {
	format, err := output.ParseFormat(c.String("format"))
	if err != nil {
		return err
	}
	formatter, err := newFormatter(c, format, false)
	if err != nil {
		return err
	}
	defer formatter.Close()

	cells := make([][]string, 0, len(rows))
	for _, r := range rows {
		rng := r.Range
		if rng == "" {
			rng = "-"
		}
		cells = append(cells, []string{r.Name, r.Level, r.Set, r.Domain, rng, r.Description})
	}
	var footer []string
	if outside != "" {
		footer = []string{"", "", "", "", "outside: " + string(outside), fmt.Sprintf("%d ranges", len(rows))}
	}
	table := output.NewTable(title,
		[]string{"Metric", "Level", "Set", "Domain", "Range", "Description"},
		cells, footer, struct {
			Metrics []catalogRow `json:"metrics" yaml:"metrics" toon:"metrics"`
		}{rows})
	return formatter.Output(table)
}
