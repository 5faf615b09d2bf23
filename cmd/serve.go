package cmd

import (
	"context"
	"fmt"

	"aionr2/audit"
	"aionr2/backend"
	"aionr2/mcp"
)

// ServeCmd runs the MCP server on stdin/stdout until stdin is closed.
type ServeCmd struct {
	APIURL string `name:"api-url" help:"Override the AION-R API base URL"`
	APIKey string `name:"api-key" help:"Override the AION-R API key"`
}

// Run implements the serve command execution
func (s *ServeCmd) Run(cli *CLI) error {
	cfg, err := cli.LoadConfig()
	if err != nil {
		return err
	}
	if s.APIURL != "" {
		cfg.API.URL = s.APIURL
	}
	if s.APIKey != "" {
		cfg.API.Key = s.APIKey
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger, err := cli.Logger(cfg)
	if err != nil {
		return err
	}

	client, err := backend.NewClient(cfg.API, userAgent(), logger)
	if err != nil {
		return fmt.Errorf("backend client initialization error: %w", err)
	}
	registry, err := mcp.NewDefaultRegistry()
	if err != nil {
		return err
	}

	opts := mcp.Options{
		Version:         appVersion,
		Logger:          logger,
		MaxMessageBytes: cfg.MCP.MaxMessageBytes,
	}
	if cfg.Audit.DatabasePath != "" {
		journal, err := audit.Open(cfg.Audit.DatabasePath)
		if err != nil {
			return fmt.Errorf("audit journal initialization error: %w", err)
		}
		defer journal.Close()
		opts.Recorder = journal
	}

	logger.Info("starting MCP server",
		"version", appVersion,
		"protocol_version", mcp.ProtocolVersion,
		"api_url", cfg.API.URL,
		"auth", cfg.API.Key != "",
		"audit", cfg.Audit.DatabasePath != "",
	)
	return mcp.NewServer(registry, client, opts).Serve(context.Background(), cli.stdin, cli.stdout)
}
