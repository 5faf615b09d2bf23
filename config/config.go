package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"aionr2/validate"
)

const (
	AppName = "aionr2"

	DefaultAPIURL          = "http://localhost:8001"
	DefaultAPITimeout      = 60 * time.Second
	DefaultLogLevel        = "info"
	DefaultLogFormat       = "json"
	DefaultMaxMessageBytes = 16 << 20
)

// Config holds the application configuration
type Config struct {
	API   API   `yaml:"api" toml:"api"`
	Log   Log   `yaml:"log" toml:"log"`
	Audit Audit `yaml:"audit" toml:"audit"`
	MCP   MCP   `yaml:"mcp" toml:"mcp"`
}

// API holds the AION-R backend connection settings
type API struct {
	URL     string        `yaml:"url" toml:"url"`
	Key     string        `yaml:"key" toml:"key"`
	Timeout time.Duration `yaml:"timeout" toml:"timeout"`
}

// Log holds logging settings
type Log struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"`
}

// Audit holds the tool invocation journal settings. An empty path disables it.
type Audit struct {
	DatabasePath string `yaml:"database_path" toml:"database_path"`
}

// MCP holds stdio transport settings
type MCP struct {
	MaxMessageBytes int `yaml:"max_message_bytes" toml:"max_message_bytes"`
}

// Default returns a configuration with every default applied.
func Default() *Config {
	return &Config{
		API: API{URL: DefaultAPIURL, Timeout: DefaultAPITimeout},
		Log: Log{Level: DefaultLogLevel, Format: DefaultLogFormat},
		MCP: MCP{MaxMessageBytes: DefaultMaxMessageBytes},
	}
}

// Load reads configuration from file and environment variables.
// A missing config file is not an error.
func Load(customPath string) (*Config, error) {
	cfg := Default()

	// 1. Load from YAML or TOML file
	configPath, err := ResolveConfigPath(customPath)
	if err != nil {
		return nil, err
	}

	if configPath != "" {
		file, err := os.ReadFile(configPath)
		if err == nil {
			expanded := os.ExpandEnv(string(file))
			if err := decode(configPath, []byte(expanded), cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file %s: %w", configPath, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
		}
	}

	// 2. Override with environment variables
	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	// 3. Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func decode(path string, data []byte, cfg *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		_, err := toml.Decode(string(data), cfg)
		return err
	default:
		return yaml.Unmarshal(data, cfg)
	}
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("AION_R_API_URL"); v != "" {
		cfg.API.URL = v
	}
	if v := os.Getenv("AION_R_API_KEY"); v != "" {
		cfg.API.Key = v
	}
	if v := os.Getenv("AIONR2_API_TIMEOUT"); v != "" {
		d, err := parseTimeout(v)
		if err != nil {
			return fmt.Errorf("invalid AIONR2_API_TIMEOUT: %w", err)
		}
		cfg.API.Timeout = d
	}
	if v := os.Getenv("AIONR2_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("AIONR2_LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("AIONR2_AUDIT_DB"); v != "" {
		cfg.Audit.DatabasePath = v
	}
	return nil
}

// parseTimeout accepts Go durations ("90s") or a bare number of seconds.
func parseTimeout(v string) (time.Duration, error) {
	v = strings.TrimSpace(v)
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	return time.ParseDuration(v)
}

// Validate checks every setting and normalizes case in the log settings.
func (c *Config) Validate() error {
	c.API.URL = strings.TrimSpace(c.API.URL)
	if err := validate.ValidateBaseURL(c.API.URL); err != nil {
		return err
	}
	if err := validate.ValidateTimeout(c.API.Timeout); err != nil {
		return fmt.Errorf("api.timeout: %w", err)
	}
	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
	if err := validate.ValidateLogLevel(c.Log.Level); err != nil {
		return err
	}
	c.Log.Format = strings.ToLower(strings.TrimSpace(c.Log.Format))
	if err := validate.ValidateLogFormat(c.Log.Format); err != nil {
		return err
	}
	if err := validate.ValidateMessageLimit(c.MCP.MaxMessageBytes); err != nil {
		return fmt.Errorf("mcp.max_message_bytes: %w", err)
	}
	return nil
}

// ResolveConfigPath returns customPath or ~/.config/aionr2/config.yaml.
func ResolveConfigPath(customPath string) (string, error) {
	if customPath != "" {
		return customPath, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not get user home directory: %w", err)
	}
	return filepath.Join(home, ".config", AppName, "config.yaml"), nil
}
