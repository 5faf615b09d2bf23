package cmd

import (
	"io"
	"strings"

	"aionr2/format"
	"aionr2/mcp"
)

// ToolsCmd prints the tool catalog.
type ToolsCmd struct {
	Format string `name:"format" default:"table" help:"Output format (table|json|yaml)"`
}

type toolSummary struct {
	Name        string   `json:"name" yaml:"name"`
	Title       string   `json:"title,omitempty" yaml:"title,omitempty"`
	Description string   `json:"description" yaml:"description"`
	Required    []string `json:"required" yaml:"required"`
}

// Run implements the tools command execution
func (t *ToolsCmd) Run(cli *CLI) error {
	outFormat, err := format.Parse(t.Format)
	if err != nil {
		return err
	}
	registry, err := mcp.NewDefaultRegistry()
	if err != nil {
		return err
	}

	var summaries []toolSummary
	for _, def := range registry.Definitions() {
		s := toolSummary{Name: def.Name, Title: def.Title, Description: def.Description, Required: []string{}}
		if def.InputSchema != nil {
			s.Required = append(s.Required, def.InputSchema.Required...)
		}
		summaries = append(summaries, s)
	}

	return format.Render(cli.stdout, outFormat, func(w io.Writer) error {
		if err := format.Row(w, "Name", "Required", "Description"); err != nil {
			return err
		}
		if err := format.Row(w, "----", "--------", "-----------"); err != nil {
			return err
		}
		for _, s := range summaries {
			if err := format.Row(w, s.Name, strings.Join(s.Required, ","), s.Description); err != nil {
				return err
			}
		}
		return nil
	}, summaries)
}
