package mcpserver

import (
	"encoding/json"
	"strings"

	"github.com/panbanda/oometrics/pkg/metric"
	"github.com/panbanda/oometrics/pkg/profile"
)

const (
	manifestSchema = "https://static.modelcontextprotocol.io/schemas/2025-10-17/server.schema.json"
	manifestName   = "io.github.panbanda/oometrics"
	repositoryURL  = "https://github.com/panbanda/oometrics"
	imageName      = "ghcr.io/panbanda/oometrics"
	serverSummary  = "Object-oriented metrics for Java with threshold classification and metric profiles"

	// publisherMetaKey is the registry's namespace for publisher metadata.
	publisherMetaKey = "io.modelcontextprotocol.registry/publisher-provided"
)

// Manifest is the registry server.json document.
type Manifest struct {
	Schema      string         `json:"$schema"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Version     string         `json:"version"`
	Repository  *Repository    `json:"repository,omitempty"`
	Packages    []Package      `json:"packages,omitempty"`
	Meta        map[string]any `json:"_meta,omitempty"`
}

// Repository contains source repository information.
type Repository struct {
	URL    string `json:"url"`
	Source string `json:"source"`
}

// Package describes how to install and run the server.
type Package struct {
	RegistryType     string     `json:"registryType"`
	Identifier       string     `json:"identifier"`
	PackageArguments []Argument `json:"packageArguments,omitempty"`
	Transport        Transport  `json:"transport"`
}

// Argument represents a command-line argument.
type Argument struct {
	Type  string `json:"type"`
	Value string `json:"value,omitempty"`
}

// Transport describes the communication method.
type Transport struct {
	Type string `json:"type"`
}

// Capabilities summarizes what the server exposes. It is published under
// the manifest's publisher metadata.
type Capabilities struct {
	Tools    []ToolSummary  `json:"tools"`
	Prompts  []string       `json:"prompts"`
	Metrics  map[string]int `json:"metrics"`
	Profiles map[string]int `json:"profiles"`
}

// ToolSummary is a tool name with the first line of its description.
type ToolSummary struct {
	Name    string `json:"name"`
	Summary string `json:"summary"`
}

// DescribeCapabilities lists the registered tools and prompts, the metric
// catalog per level and the built-in profiles per level.
func DescribeCapabilities() Capabilities {
	defs := toolDefinitions()
	c := Capabilities{
		Prompts:  promptNames(),
		Metrics:  map[string]int{},
		Profiles: map[string]int{},
	}
	for _, name := range toolNames() {
		summary, _, _ := strings.Cut(defs[name].Description, "\n")
		c.Tools = append(c.Tools, ToolSummary{Name: name, Summary: summary})
	}
	for _, info := range metric.Catalog() {
		c.Metrics[info.Level.String()]++
	}
	for _, p := range profile.Defaults() {
		c.Profiles[p.Level.String()]++
	}
	return c
}

// GenerateManifest creates the MCP server manifest JSON for version.
func GenerateManifest(version string) ([]byte, error) {
	if version == "" {
		version = "0.0.0"
	}

	manifest := Manifest{
		Schema:      manifestSchema,
		Name:        manifestName,
		Description: serverSummary,
		Version:     version,
		Repository:  &Repository{URL: repositoryURL, Source: "github"},
		Packages: []Package{
			{
				RegistryType:     "oci",
				Identifier:       imageName + ":" + version,
				PackageArguments: []Argument{{Type: "positional", Value: "mcp"}},
				Transport:        Transport{Type: "stdio"},
			},
		},
		Meta: map[string]any{publisherMetaKey: DescribeCapabilities()},
	}

	return json.MarshalIndent(manifest, "", "  ")
}
