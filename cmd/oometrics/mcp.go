package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/panbanda/oometrics/internal/logging"
	"github.com/panbanda/oometrics/internal/mcpserver"
)

func mcpCmd() *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "Start MCP (Model Context Protocol) server for LLM tool integration",
		Description: `Starts an MCP server over stdio transport that exposes the metrics engine
as tools that LLMs can invoke.

To use with Claude Desktop, add to your config:
  {
    "mcpServers": {
      "oometrics": {
        "command": "oometrics",
        "args": ["mcp"]
      }
    }
  }

Available tools:
  - analyze_metrics    Compute and classify metrics for Java sources
  - metric_catalog     List metrics with their ranges
  - classify_metric    Classify a single value
  - metric_profiles    List the metric profiles and their conditions

Available prompts:
  - review-metrics     Design review driven by the worst metric values`,
		Action: runMCPCmd,
		Subcommands: []*cli.Command{
			{
				Name:  "manifest",
				Usage: "Print the MCP registry server.json manifest with the server's capabilities",
				Action: func(c *cli.Context) error {
					data, err := mcpserver.GenerateManifest(version)
					if err != nil {
						return err
					}
					_, err = fmt.Fprintln(c.App.Writer, string(data))
					return err
				},
			},
		},
	}
}

func runMCPCmd(c *cli.Context) error {
	cfg, err := loadConfig(c, nil)
	if err != nil {
		return err
	}
	server, err := mcpserver.NewServer(version,
		mcpserver.WithConfig(cfg),
		mcpserver.WithLogger(logging.Quiet()),
	)
	if err != nil {
		return err
	}
	return server.Run(c.Context)
}
