package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/panbanda/oometrics/pkg/config"
)

func initCmd() *cli.Command {
	return &cli.Command{
		Name:  "init",
		Usage: "Write a default oometrics.toml",
		Description: `Creates an oometrics.toml in the current directory holding the default
engine, exclusion and output settings and every built-in severity range,
ready to be edited.

Examples:
  oometrics init                             # Creates oometrics.toml
  oometrics init -o .oometrics/oometrics.toml
  oometrics init --force                     # Overwrite an existing file`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Value:   "oometrics.toml",
				Usage:   "Output file path",
			},
			&cli.BoolFlag{
				Name:  "force",
				Usage: "Overwrite existing config file",
			},
		},
		Action: runInitCmd,
	}
}

func runInitCmd(c *cli.Context) error {
	outputPath := c.String("output")

	if _, err := os.Stat(outputPath); err == nil && !c.Bool("force") {
		return fmt.Errorf("config file %q already exists (use --force to overwrite)", outputPath)
	}

	dir := filepath.Dir(outputPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %q: %w", dir, err)
		}
	}

	content, err := generateDefaultConfig()
	if err != nil {
		return err
	}
	if err := os.WriteFile(outputPath, content, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	color.New(color.FgGreen).Fprintf(c.App.Writer, "Created %s\n", outputPath)
	fmt.Fprintln(c.App.Writer, "Edit this file to customize thresholds and analysis settings.")
	return nil
}

func generateDefaultConfig() ([]byte, error) {
	body, err := config.DefaultConfig().WithDefaultThresholds().EncodeTOML()
	if err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	header := []byte("# oometrics configuration\n# Documentation: https://github.com/panbanda/oometrics\n\n")
	return append(header, body...), nil
}
