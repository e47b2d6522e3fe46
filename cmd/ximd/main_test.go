package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ximd/internal/config"
)

func TestConfigCommandPrintsDefaults(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "none.toml")

	var out bytes.Buffer
	require.NoError(t, cmdConfig([]string{"-config", missing, "-format", "json"}, &out))

	var got map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	server, ok := got["server"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, config.DefaultConfig().Server.Name, server["name"])
}

func TestConfigCommandWritesFile(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "out.toml")

	var out bytes.Buffer
	require.NoError(t, cmdConfig([]string{"-config", filepath.Join(dir, "none.toml"), "-o", target}, &out))
	assert.Zero(t, out.Len())

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Contains(t, string(data), "[server]")

	cfg, err := config.Load(target)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultConfig().Server.Name, cfg.Server.Name)
}

func TestConfigCommandBadFlag(t *testing.T) {
	var out bytes.Buffer
	assert.Error(t, cmdConfig([]string{"-nope"}, &out))
}

func TestConfigCommandInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ximd", "config.toml")

	var out bytes.Buffer
	require.NoError(t, cmdConfig([]string{"-config", path, "-init"}, &out))
	assert.Equal(t, "wrote "+path+"\n", out.String())
	assert.FileExists(t, path)

	out.Reset()
	require.NoError(t, cmdConfig([]string{"-config", path, "-init"}, &out))
	assert.Contains(t, out.String(), "already exists")
}
