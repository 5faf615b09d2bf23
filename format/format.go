package format

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// OutputFormat represents the supported rendering format for CLI listings.
type OutputFormat string

const (
	// Table renders output as tab-separated text rows (default).
	Table OutputFormat = "table"
	// JSON renders output as indented JSON.
	JSON OutputFormat = "json"
	// YAML renders output as YAML.
	YAML OutputFormat = "yaml"
)

// Parse converts a raw string into an OutputFormat, defaulting to table.
func Parse(raw string) (OutputFormat, error) {
	trimmed := strings.TrimSpace(strings.ToLower(raw))
	if trimmed == "" {
		return Table, nil
	}
	switch trimmed {
	case string(Table):
		return Table, nil
	case string(JSON):
		return JSON, nil
	case string(YAML):
		return YAML, nil
	default:
		return "", fmt.Errorf("unsupported format: %s", raw)
	}
}

// Render writes payload to w. Table output is delegated to tableFn.
func Render(w io.Writer, format OutputFormat, tableFn func(io.Writer) error, payload any) error {
	switch format {
	case "", Table:
		if tableFn == nil {
			return nil
		}
		return tableFn(w)
	case JSON:
		return WriteJSON(w, payload)
	case YAML:
		return WriteYAML(w, payload)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

// WriteJSON writes payload as indented JSON followed by a newline.
func WriteJSON(w io.Writer, payload any) error {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// WriteYAML writes payload as YAML.
func WriteYAML(w io.Writer, payload any) error {
	data, err := yaml.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal YAML: %w", err)
	}
	_, err = w.Write(data)
	return err
}

// Row writes one tab-separated table row.
func Row(w io.Writer, cols ...string) error {
	_, err := fmt.Fprintln(w, strings.Join(cols, "\t"))
	return err
}
