package main

import (
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/panbanda/oometrics/internal/output"
	"github.com/panbanda/oometrics/pkg/metric"
	"github.com/panbanda/oometrics/pkg/profile"
)

// profileRow is one metric profile in profiles output.
type profileRow struct {
	Name        string   `json:"name" yaml:"name" toon:"name"`
	Level       string   `json:"level" yaml:"level" toon:"level"`
	Conditions  []string `json:"conditions" yaml:"conditions" toon:"conditions"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty" toon:"description,omitempty"`
}

func profilesCmd() *cli.Command {
	return &cli.Command{
		Name:  "profiles",
		Usage: "List the metric profiles analyze matches classes and packages against",
		Description: `Each profile is a set of metric ranges that must all hold. Class profiles
may name method metrics, which hold when any method of the class is in range.
Profiles are added, edited or disabled in the [profiles] section of the config.`,
		Flags: append(outputFlags(),
			&cli.StringFlag{
				Name:    "level",
				Aliases: []string{"l"},
				Usage:   "Only profiles of this level: class, package",
			},
		),
		Action: runProfilesCmd,
	}
}

func runProfilesCmd(c *cli.Context) error {
	var level *metric.Level
	if name := c.String("level"); name != "" {
		l, ok := metric.ParseLevel(strings.ToLower(name))
		if !ok || (l != metric.LevelClass && l != metric.LevelPackage) {
			return fmt.Errorf("unknown profile level %q: want class or package", name)
		}
		level = &l
	}

	cfg, err := loadConfig(c, nil)
	if err != nil {
		return err
	}
	profiles, err := cfg.MetricProfiles()
	if err != nil {
		return err
	}

	format, err := output.ParseFormat(c.String("format"))
	if err != nil {
		return err
	}
	formatter, err := newFormatter(c, format, false)
	if err != nil {
		return err
	}
	defer formatter.Close()

	rows := profileRows(profiles, level)
	cells := make([][]string, 0, len(rows))
	for _, r := range rows {
		cells = append(cells, []string{r.Name, r.Level, strings.Join(r.Conditions, ", "), r.Description})
	}
	table := output.NewTable("Metric Profiles",
		[]string{"Profile", "Level", "Conditions", "Description"},
		cells, nil, struct {
			Profiles []profileRow `json:"profiles" yaml:"profiles" toon:"profiles"`
		}{rows})
	return formatter.Output(table)
}

func profileRows(profiles []profile.Profile, level *metric.Level) []profileRow {
	rows := []profileRow{}
	for _, p := range profiles {
		if level != nil && p.Level != *level {
			continue
		}
		rows = append(rows, profileRow{
			Name:        p.Name,
			Level:       p.Level.String(),
			Conditions:  p.Conditions(),
			Description: p.Description,
		})
	}
	return rows
}
