package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// formatOf maps a file extension to a format name, "" when unknown.
func formatOf(path string) string {
	switch filepath.Ext(path) {
	case ".toml":
		return "toml"
	case ".json":
		return "json"
	case ".yaml", ".yml":
		return "yaml"
	}
	return ""
}

// Encode renders c as toml, json or yaml.
func (c *Config) Encode(format string) ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	switch format {
	case "toml":
		var buf bytes.Buffer
		fmt.Fprintf(&buf, "# ximd configuration, version %d\n\n", c.Version)
		if err := toml.NewEncoder(&buf).Encode(c); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case "json":
		data, err := json.MarshalIndent(c, "", "  ")
		return append(data, '\n'), err
	case "yaml":
		return yaml.Marshal(c)
	}
	return nil, fmt.Errorf("unknown format %q", format)
}

// SaveConfig writes cfg to path in the format its extension names, TOML
// when it names none. The file is private to the user.
func SaveConfig(cfg *Config, path string) error {
	format := formatOf(path)
	if format == "" {
		format = "toml"
	}
	data, err := cfg.Encode(format)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
