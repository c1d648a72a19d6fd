package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	c := command{global: &GlobalFlags{}}
	fc, err := c.loadConfig(ServiceFlags{})
	require.NoError(t, err)
	require.Equal(t, "ollama serve", fc.Service.Command)
	require.Equal(t, "ollama", fc.Service.ProcessName)
	require.Equal(t, 11434, fc.Service.Port)
}

func TestLoadConfigFlagOverrides(t *testing.T) {
	c := command{global: &GlobalFlags{}}
	fc, err := c.loadConfig(ServiceFlags{
		Command:  "llamafile --server",
		Port:     8081,
		Timeout:  10 * time.Second,
		Interval: 2 * time.Second,
	})
	require.NoError(t, err)
	require.Equal(t, "llamafile --server", fc.Service.Command)
	// Process name is re-derived from the overridden command.
	require.Equal(t, "llamafile", fc.Service.ProcessName)
	require.Equal(t, 8081, fc.Service.Port)
	require.Equal(t, 10*time.Second, fc.Service.HealthCheck.Timeout)
}

func TestLoadConfigFileWithOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ollamactl.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[service]
command = "ollama serve"
port = 11500
`), 0o644))

	c := command{global: &GlobalFlags{ConfigPath: path}}
	fc, err := c.loadConfig(ServiceFlags{Port: 11600})
	require.NoError(t, err)
	require.Equal(t, 11600, fc.Service.Port)

	fc, err = c.loadConfig(ServiceFlags{})
	require.NoError(t, err)
	require.Equal(t, 11500, fc.Service.Port)
}

func TestLoadConfigMissingFile(t *testing.T) {
	c := command{global: &GlobalFlags{ConfigPath: filepath.Join(t.TempDir(), "nope.toml")}}
	_, err := c.loadConfig(ServiceFlags{})
	require.Error(t, err)
}

func TestBuildManagerWithSQLiteStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ollamactl.toml")
	dbPath := filepath.Join(t.TempDir(), "state.db")
	require.NoError(t, os.WriteFile(path, []byte(`
[service]
command = "ollama serve"

[store]
dsn = "`+dbPath+`"
`), 0o644))

	c := command{global: &GlobalFlags{ConfigPath: path, LogLevel: "error"}}
	fc, err := c.loadConfig(ServiceFlags{})
	require.NoError(t, err)

	mgr, st, err := c.buildManager(fc)
	require.NoError(t, err)
	require.NotNil(t, mgr)
	require.NotNil(t, st)
	require.NoError(t, st.Close())
}
