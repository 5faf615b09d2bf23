package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"aionr2/config"
	"aionr2/logging"

	"github.com/alecthomas/kong"
)

var (
	// Version information - set by version.go
	appVersion = "dev"
	appCommit  = "none"
	appDate    = "unknown"
)

// SetVersionInfo sets the version information
func SetVersionInfo(version, commit, date string) {
	appVersion = version
	appCommit = commit
	appDate = date
}

// CLI represents the command line interface structure using Kong
type CLI struct {
	ConfigPath string `name:"config" short:"c" type:"path" help:"Path to a YAML or TOML config file (default ~/.config/aionr2/config.yaml)"`
	Debug      bool   `help:"Force debug logging on stderr"`

	Serve   ServeCmd   `cmd:"" default:"withargs" help:"Serve MCP over stdin/stdout (default)"`
	Tools   ToolsCmd   `cmd:"" help:"List the tools exposed to MCP clients"`
	Audit   AuditCmd   `cmd:"" help:"Show recent tool invocations from the audit journal"`
	Config  ConfigCmd  `cmd:"" help:"Show the effective configuration with secrets masked"`
	Version VersionCmd `cmd:"" help:"Show version information"`

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	cfg    *config.Config
}

// VersionCmd represents the version command structure
type VersionCmd struct{}

// Execute is the main entry point for all commands
func Execute() error {
	return run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	cli := &CLI{stdin: stdin, stdout: stdout, stderr: stderr}

	parser, err := kong.New(cli,
		kong.Name(config.AppName),
		kong.Description("MCP stdio server for the AION-R inference and analysis API"),
		kong.Vars{
			"version": fmt.Sprintf("%s (%s, built %s)", appVersion, appCommit, appDate),
		},
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Writers(stdout, stderr),
	)
	if err != nil {
		return err
	}

	ctx, err := parser.Parse(args)
	if err != nil {
		return err
	}
	return ctx.Run(cli)
}

// LoadConfig loads and caches the configuration named by --config.
func (c *CLI) LoadConfig() (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}
	cfg, err := config.Load(c.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}
	c.cfg = cfg
	return cfg, nil
}

// Logger builds the stderr logger for cfg, honoring --debug.
func (c *CLI) Logger(cfg *config.Config) (*slog.Logger, error) {
	level := cfg.Log.Level
	if c.Debug {
		level = "debug"
	}
	return logging.New(c.stderr, level, cfg.Log.Format)
}

func userAgent() string {
	return fmt.Sprintf("%s/%s", config.AppName, appVersion)
}

// Run implements the version command execution
func (v *VersionCmd) Run(cli *CLI) error {
	fmt.Fprintf(cli.stdout, "%s version %s\n", config.AppName, appVersion)
	fmt.Fprintf(cli.stdout, "commit: %s\n", appCommit)
	fmt.Fprintf(cli.stdout, "built at: %s\n", appDate)
	return nil
}
