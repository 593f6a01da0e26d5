package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/panbanda/oometrics/internal/logging"
	"github.com/panbanda/oometrics/internal/output"
	"github.com/panbanda/oometrics/internal/progress"
	"github.com/panbanda/oometrics/internal/report"
	"github.com/panbanda/oometrics/internal/service/analysis"
	"github.com/panbanda/oometrics/pkg/config"
	"github.com/panbanda/oometrics/pkg/metric"
	"github.com/panbanda/oometrics/pkg/severity"
)

// violationsError reports that the run found values at or above the
// --fail-on severity.
type violationsError struct {
	count     int
	threshold severity.Severity
}

func (e *violationsError) Error() string {
	return fmt.Sprintf("%d metric values at or above %s", e.count, e.threshold)
}

func analyzeCmd() *cli.Command {
	return &cli.Command{
		Name:      "analyze",
		Aliases:   []string{"a"},
		Usage:     "Compute and classify OO metrics for Java sources",
		ArgsUsage: "[path...]",
		Description: `Scans the given files and directories for .java sources, computes every
metric at the method, class, package and project level, and lists the
constructs of one level with each value classified as REGULAR, HIGH,
VERY_HIGH or EXTREME. Values outside their regular range are listed
separately across all levels, followed by the classes and packages that
fit a metric profile (see "oometrics profiles").

Examples:
  oometrics analyze src/main/java
  oometrics analyze --level method --only-violations .
  oometrics analyze -f json -o metrics.json .
  oometrics analyze --fail-on very_high .`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: text, markdown, json, toon, yaml",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write output to file",
			},
			&cli.StringFlag{
				Name:    "level",
				Aliases: []string{"l"},
				Usage:   "Constructs to list: method, class, package, project",
			},
			&cli.BoolFlag{
				Name:  "only-violations",
				Usage: "List only constructs with a value above its regular range",
			},
			&cli.IntFlag{
				Name:  "workers",
				Usage: "Engine worker count (0 uses the config or 2x NumCPU)",
			},
			&cli.BoolFlag{
				Name:  "no-color",
				Usage: "Disable colored output",
			},
			&cli.BoolFlag{
				Name:  "no-progress",
				Usage: "Hide progress bars",
			},
			&cli.StringFlag{
				Name:  "fail-on",
				Usage: "Exit with status 2 when any value reaches this severity: high, very_high, extreme",
			},
		},
		Action: runAnalyzeCmd,
	}
}

// analyzeSettings are the command flags merged over the config's output
// section.
type analyzeSettings struct {
	format         output.Format
	level          metric.Level
	onlyViolations bool
	colored        bool
	failOn         severity.Severity
}

func resolveAnalyzeSettings(c *cli.Context, cfg *config.Config) (analyzeSettings, error) {
	var s analyzeSettings

	formatName := cfg.Output.Format
	if c.IsSet("format") {
		formatName = c.String("format")
	}
	format, err := output.ParseFormat(formatName)
	if err != nil {
		return s, err
	}
	s.format = format

	levelName := cfg.Output.Level
	if c.IsSet("level") {
		levelName = c.String("level")
	}
	if levelName == "" {
		levelName = metric.LevelClass.String()
	}
	level, ok := metric.ParseLevel(strings.ToLower(levelName))
	if !ok {
		return s, fmt.Errorf("unknown level %q: want method, class, package or project", levelName)
	}
	s.level = level

	s.onlyViolations = cfg.Output.OnlyViolations
	if c.IsSet("only-violations") {
		s.onlyViolations = c.Bool("only-violations")
	}
	s.colored = cfg.Output.Color && !c.Bool("no-color") && !color.NoColor

	if name := c.String("fail-on"); name != "" {
		sev, err := parseFailOn(name)
		if err != nil {
			return s, err
		}
		s.failOn = sev
	}
	return s, nil
}

func parseFailOn(name string) (severity.Severity, error) {
	sev := severity.Severity(strings.ToUpper(strings.ReplaceAll(name, "-", "_")))
	if !sev.IsViolation() {
		return "", fmt.Errorf("invalid --fail-on %q: want high, very_high or extreme", name)
	}
	return sev, nil
}

// countAtLeast returns how many violations reach sev.
func countAtLeast(rep *report.Report, sev severity.Severity) int {
	n := 0
	for _, v := range rep.Violations {
		if severity.Severity(v.Severity).Rank() >= sev.Rank() {
			n++
		}
	}
	return n
}

func runAnalyzeCmd(c *cli.Context) error {
	paths := getPaths(c)

	cfg, err := loadConfig(c, paths)
	if err != nil {
		return err
	}
	settings, err := resolveAnalyzeSettings(c, cfg)
	if err != nil {
		return err
	}

	logger, err := logging.New(c.Bool("verbose"))
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	svc := analysis.New(
		analysis.WithConfig(cfg),
		analysis.WithLogger(logger),
		analysis.WithVersion(version),
	)

	opts := analysis.Options{
		Level:          settings.level,
		OnlyViolations: settings.onlyViolations,
		Workers:        c.Int("workers"),
	}

	var tracker *progress.Tracker
	var levels *progress.Levels
	if !c.Bool("no-progress") {
		levels = progress.NewLevels(c.App.ErrWriter)
		opts.OnScan = func(files int) {
			tracker = progress.NewTrackerTo(c.App.ErrWriter, "Parsing Java files...", files)
		}
		opts.OnParse = func() {
			if tracker != nil {
				tracker.Tick()
			}
		}
		opts.OnCompute = levels.Report
	}

	res, err := svc.Analyze(c.Context, paths, opts)
	if tracker != nil {
		tracker.FinishSuccess()
	}
	if levels != nil {
		levels.Finish()
	}
	if err != nil {
		return err
	}

	if res.Errors != nil && res.Errors.HasErrors() {
		for _, e := range res.Errors.Errors {
			logger.Debug("skipped file", zap.String("path", e.Path), zap.Error(e.Err))
		}
		color.New(color.FgYellow).Fprintf(c.App.ErrWriter, "Skipped %d files that failed to parse\n", res.Errors.Len())
	}

	formatter, err := newFormatter(c, settings.format, settings.colored)
	if err != nil {
		return err
	}
	defer formatter.Close()

	if err := formatter.Output(res.Report); err != nil {
		return err
	}

	if settings.failOn != "" {
		if n := countAtLeast(res.Report, settings.failOn); n > 0 {
			return &violationsError{count: n, threshold: settings.failOn}
		}
	}
	return nil
}

// newFormatter writes to --output when set, otherwise to the app's writer.
func newFormatter(c *cli.Context, format output.Format, colored bool) (*output.Formatter, error) {
	if path := c.String("output"); path != "" {
		return output.NewFormatter(format, path, colored)
	}
	return output.NewWriterFormatter(format, c.App.Writer, colored), nil
}
