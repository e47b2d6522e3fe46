package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jezek/xgb/xproto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ximd/internal/keymap"
	"ximd/internal/xim"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NotNil(t, cfg)

	assert.Equal(t, Version, cfg.Version)
	assert.Equal(t, "ximd", cfg.Server.Name)
	assert.Equal(t, []string{"COMPOUND_TEXT"}, cfg.Server.Encodings)
	assert.NoError(t, cfg.Validate())
}

func TestConfigPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	assert.Equal(t, "/tmp/xdg/ximd/config.toml", ConfigPath())

	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	require.NoError(t, SaveConfig(DefaultConfig(), filepath.Join(xdg, "ximd", "config.yaml")))
	assert.Equal(t, filepath.Join(xdg, "ximd", "config.yaml"), ConfigPath())
}

func TestEncodeUnknownFormat(t *testing.T) {
	_, err := DefaultConfig().Encode("ini")
	assert.Error(t, err)
}

func TestLoadNonexistent(t *testing.T) {
	// Load from nonexistent path should return default config
	cfg, err := Load("/nonexistent/path/config.toml")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Server, cfg.Server)
}

func TestLoadFormats(t *testing.T) {
	files := map[string]string{
		"config.toml": `
version = 1
[server]
name = "tomlim"
styles = ["over_the_spot"]
strict = true
[triggers]
on = ["shift+space"]
`,
		"config.json": `{"version": 1, "server": {"name": "jsonim", "styles": ["root"], "strict": true}, "triggers": {"on": ["shift+space"]}}`,
		"config.yaml": `
version: 1
server:
  name: yamlim
  styles: [on_the_spot]
  strict: true
triggers:
  on: ["shift+space"]
`,
	}

	for name, content := range files {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			require.NoError(t, os.WriteFile(path, []byte(content), 0600))

			cfg, err := Load(path)
			require.NoError(t, err)
			assert.True(t, strings.HasSuffix(cfg.Server.Name, "im"))
			assert.True(t, cfg.Server.Strict)
			assert.Len(t, cfg.Server.Styles, 1)
			assert.Equal(t, []string{"shift+space"}, cfg.Triggers.On)
			// Untouched sections keep their defaults.
			assert.Equal(t, "info", cfg.Logging.Level)
		})
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[server]\nnmae = \"typo\"\n"), 0600))

	_, err := Load(path)
	require.Error(t, err)

	var verrs ValidationErrors
	require.True(t, errors.As(err, &verrs))
	assert.Contains(t, verrs.Error(), "server")
}

func TestLoadRejectsWrongType(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"logging": {"level": "loud"}}`), 0600))

	_, err := Load(path)
	var verrs ValidationErrors
	require.True(t, errors.As(err, &verrs))
	assert.Equal(t, "logging.level", verrs[0].Field)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("XIMD_SERVER_NAME", "envim")
	t.Setenv("XIMD_SCREEN", "1")
	t.Setenv("XIMD_STRICT", "true")
	t.Setenv("XIMD_REAP_ON_DISCONNECT", "yes-please")
	t.Setenv("XIMD_LOG_LEVEL", "debug")
	t.Setenv("XIMD_METRICS_LISTEN", "127.0.0.1:9999")
	t.Setenv("XIMD_STYLES", "root, over_the_spot")

	cfg := DefaultConfig()
	cfg.ApplyEnvOverrides()

	assert.Equal(t, "envim", cfg.Server.Name)
	assert.Equal(t, 1, cfg.Server.Screen)
	assert.True(t, cfg.Server.Strict)
	assert.False(t, cfg.Server.ReapOnDisconnect)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, "127.0.0.1:9999", cfg.Metrics.Listen)
	assert.Equal(t, []string{"root", "over_the_spot"}, cfg.Server.Styles)
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"empty name", func(c *Config) { c.Server.Name = "" }, "server.name"},
		{"name with at sign", func(c *Config) { c.Server.Name = "a@b" }, "server.name"},
		{"bad style", func(c *Config) { c.Server.Styles = []string{"sideways"} }, "server.styles[0]"},
		{"no styles", func(c *Config) { c.Server.Styles = nil }, "server.styles"},
		{"no encodings", func(c *Config) { c.Server.Encodings = nil }, "server.encodings"},
		{"bad screen", func(c *Config) { c.Server.Screen = -2 }, "server.screen"},
		{"bad trigger", func(c *Config) { c.Triggers.Off = []string{"hyper+space"} }, "triggers.off[0]"},
		{"bad level", func(c *Config) { c.Logging.Level = "loud" }, "logging.level"},
		{"file without path", func(c *Config) { c.Logging.Output = "file"; c.Logging.FilePath = "" }, "logging.file_path"},
		{"bad bus", func(c *Config) { c.Control.Bus = "tram" }, "control.bus"},
		{"bad listen", func(c *Config) { c.Metrics.Enabled = true; c.Metrics.Listen = "nope" }, "metrics.listen"},
		{"reserved metrics path", func(c *Config) { c.Metrics.Enabled = true; c.Metrics.Path = "/readyz" }, "metrics.path"},
		{"bad version", func(c *Config) { c.Version = 99 }, "version"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidConfig)

			var verrs ValidationErrors
			require.True(t, errors.As(err, &verrs))
			fields := make([]string, 0, len(verrs))
			for _, v := range verrs {
				fields = append(fields, v.Field)
			}
			assert.Contains(t, fields, tt.field)
		})
	}
}

func TestParseTrigger(t *testing.T) {
	key, err := ParseTrigger("ctrl+space")
	require.NoError(t, err)
	assert.Equal(t, xim.TriggerKey{
		Keysym:       keymap.XKSpace,
		Modifier:     xproto.ModMaskControl,
		ModifierMask: xproto.ModMaskControl,
	}, key)

	key, err = ParseTrigger("Shift+Alt+F1")
	require.NoError(t, err)
	assert.Equal(t, keymap.XKF1, key.Keysym)
	assert.Equal(t, uint32(xproto.ModMaskShift|xproto.ModMask1), key.Modifier)

	key, err = ParseTrigger("zenkaku_hankaku")
	require.NoError(t, err)
	assert.Zero(t, key.Modifier)

	for _, bad := range []string{"", "ctrl+", "hyper+a", "ctrl+nosuchkey"} {
		_, err := ParseTrigger(bad)
		assert.Error(t, err, bad)
	}
}

func TestServerOptions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Server.Strict = true
	cfg.Server.ReapOnDisconnect = true

	opts, err := cfg.ServerOptions()
	require.NoError(t, err)

	assert.Equal(t, xim.Strict, opts.Strictness)
	assert.True(t, opts.ReapOnDisconnect)
	assert.True(t, opts.CloseOnDestroy)
	assert.Equal(t, xim.AllLocales, opts.Params.Locale)
	assert.Equal(t, "ximd", opts.Params.ServerName)
	require.Len(t, opts.Params.InputStyles, 5)
	assert.Equal(t, xim.PreeditPosition|xim.StatusArea, opts.Params.InputStyles[0])
	assert.Equal(t, xim.StyleRoot, opts.Params.InputStyles[3])
	require.Len(t, opts.Params.OnKeys, 1)
	assert.Equal(t, keymap.XKSpace, opts.Params.OnKeys[0].Keysym)

	cfg.Server.Locale = "ja_JP,en_US"
	params, err := cfg.ToParams()
	require.NoError(t, err)
	assert.Equal(t, "ja_JP,en_US", params.Locale)
}

func TestSaveAndReload(t *testing.T) {
	for _, ext := range []string{".toml", ".json", ".yaml"} {
		t.Run(ext, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "sub", "config"+ext)
			cfg := DefaultConfig()
			cfg.Server.Name = "saved"
			cfg.Triggers.On = []string{"ctrl+shift+space"}

			require.NoError(t, SaveConfig(cfg, path))

			info, err := os.Stat(path)
			require.NoError(t, err)
			assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

			loaded, err := Load(path)
			require.NoError(t, err)
			assert.Equal(t, "saved", loaded.Server.Name)
			assert.Equal(t, cfg.Triggers.On, loaded.Triggers.On)
		})
	}
}

func TestLoadOrCreate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg, created, err := LoadOrCreate(path)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "ximd", cfg.Server.Name)

	_, created, err = LoadOrCreate(path)
	require.NoError(t, err)
	assert.False(t, created)
}

func TestCloneIsDeep(t *testing.T) {
	cfg := DefaultConfig()
	clone := cfg.Clone()
	clone.Server.Styles[0] = "root"
	clone.Triggers.On[0] = "f1"

	assert.Equal(t, "preedit_position|status_area", cfg.Server.Styles[0])
	assert.Equal(t, "ctrl+space", cfg.Triggers.On[0])
}

func TestMerge(t *testing.T) {
	dst := DefaultConfig()
	src := &Config{}
	src.Server.Name = "merged"
	src.Logging.Level = "debug"

	out := Merge(dst, src)
	assert.Equal(t, "merged", out.Server.Name)
	assert.Equal(t, "debug", out.Logging.Level)
	assert.Equal(t, dst.Server.Styles, out.Server.Styles)
	assert.Equal(t, "ximd", dst.Server.Name)
}

func TestLoaderWatch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[logging]\nlevel = \"info\"\n"), 0600))

	loader := NewLoader(path)
	loader.debounce = 10 * time.Millisecond
	t.Cleanup(func() { loader.Close() })

	_, err := loader.Load()
	require.NoError(t, err)

	changed := make(chan *Config, 1)
	loader.OnChange(func(old, new *Config) {
		if old != nil {
			changed <- new
		}
	})
	require.NoError(t, loader.Watch())

	require.NoError(t, os.WriteFile(path, []byte("[logging]\nlevel = \"debug\"\n"), 0600))

	select {
	case cfg := <-changed:
		assert.Equal(t, "debug", cfg.Logging.Level)
		assert.Same(t, cfg, loader.Config())
	case <-time.After(5 * time.Second):
		t.Fatal("config change not observed")
	}
}

func TestReloadNotifiesListenersInOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[logging]\nlevel = \"info\"\n"), 0600))

	loader := NewLoader(path)
	t.Cleanup(func() { loader.Close() })
	first, err := loader.Load()
	require.NoError(t, err)

	var calls []string
	loader.OnChange(func(old, new *Config) {
		assert.Same(t, first, old)
		calls = append(calls, "a:"+new.Logging.Level)
	})
	loader.OnChange(func(_, new *Config) {
		calls = append(calls, "b:"+new.Logging.Level)
	})

	require.NoError(t, os.WriteFile(path, []byte("[logging]\nlevel = \"warn\"\n"), 0600))
	loader.reload()

	assert.Equal(t, []string{"a:warn", "b:warn"}, calls)
	assert.Equal(t, "warn", loader.Config().Logging.Level)
}

func TestLoaderKeepsConfigOnBadReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[logging]\nlevel = \"info\"\n"), 0600))

	loader := NewLoader(path)
	t.Cleanup(func() { loader.Close() })
	cfg, err := loader.Load()
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("[logging]\nlevel = \"loud\"\n"), 0600))
	loader.reload()

	assert.Same(t, cfg, loader.Config())
	select {
	case err := <-loader.Errors():
		assert.Error(t, err)
	default:
		t.Fatal("expected reload error")
	}
}

func TestPointerToField(t *testing.T) {
	assert.Equal(t, "server.styles[0]", pointerToField("/server/styles/0"))
	assert.Equal(t, "(root)", pointerToField(""))
	assert.Equal(t, "logging", pointerToField("/logging"))
}
