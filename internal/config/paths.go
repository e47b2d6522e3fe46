package config

import (
	"os"
	"path/filepath"
)

// PlatformConfigDir is $XDG_CONFIG_HOME/ximd, falling back to
// ~/.config/ximd.
func PlatformConfigDir() string {
	return xdgDir("XDG_CONFIG_HOME", ".config")
}

// PlatformLogDir is $XDG_STATE_HOME/ximd, falling back to
// ~/.local/state/ximd. Logs and crash reports live here.
func PlatformLogDir() string {
	return xdgDir("XDG_STATE_HOME", filepath.Join(".local", "state"))
}

func xdgDir(env, fallback string) string {
	if dir := os.Getenv(env); dir != "" {
		return filepath.Join(dir, "ximd")
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		home = os.TempDir()
	}
	return filepath.Join(home, fallback, "ximd")
}

// ConfigPath returns the first of config.toml, config.json, config.yaml
// and config.yml that exists in PlatformConfigDir, or config.toml when
// none does.
func ConfigPath() string {
	dir := PlatformConfigDir()
	for _, name := range []string{"config.toml", "config.json", "config.yaml", "config.yml"} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return filepath.Join(dir, "config.toml")
}
