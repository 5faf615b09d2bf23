package cmd

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"aionr2/audit"
	"aionr2/format"
)

// AuditCmd prints recent entries of the tool invocation journal.
type AuditCmd struct {
	Limit    int    `name:"limit" default:"20" help:"Number of entries to show (newest first)."`
	Database string `name:"db" type:"path" help:"Journal path (default: audit.database_path from config)"`
	Format   string `name:"format" default:"table" help:"Output format (table|json|yaml)"`
}

// Run implements the audit command execution.
func (a *AuditCmd) Run(cli *CLI) error {
	if a.Limit <= 0 {
		return fmt.Errorf("--limit must be a positive integer")
	}
	outFormat, err := format.Parse(a.Format)
	if err != nil {
		return err
	}

	path := a.Database
	if path == "" {
		cfg, err := cli.LoadConfig()
		if err != nil {
			return err
		}
		path = cfg.Audit.DatabasePath
	}
	if path == "" {
		return fmt.Errorf("audit journal is disabled: set audit.database_path, AIONR2_AUDIT_DB or --db")
	}

	journal, err := audit.Open(path)
	if err != nil {
		return err
	}
	defer journal.Close()

	entries, err := journal.Recent(context.Background(), a.Limit)
	if err != nil {
		return err
	}
	if entries == nil {
		entries = []audit.Entry{}
	}

	return format.Render(cli.stdout, outFormat, func(w io.Writer) error {
		if len(entries) == 0 {
			_, err := fmt.Fprintln(w, "No tool invocations recorded.")
			return err
		}
		if err := format.Row(w, "Started", "Tool", "Request", "Code", "Duration", "Message"); err != nil {
			return err
		}
		if err := format.Row(w, "-------", "----", "-------", "----", "--------", "-------"); err != nil {
			return err
		}
		for _, e := range entries {
			if err := format.Row(w,
				e.StartedAt.Local().Format(time.RFC3339),
				e.Tool,
				e.RequestID,
				strconv.Itoa(e.Code),
				e.Duration.String(),
				e.Message,
			); err != nil {
				return err
			}
		}
		return nil
	}, entries)
}
