package main

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildRootSubcommands(t *testing.T) {
	root := buildRoot()
	want := map[string]bool{
		"start": false, "stop": false, "status": false,
		"wait": false, "serve": false, "chat": false,
	}
	for _, cmd := range root.Commands() {
		if _, ok := want[cmd.Name()]; ok {
			want[cmd.Name()] = true
		}
	}
	for name, found := range want {
		require.True(t, found, "missing subcommand %s", name)
	}
}

func TestRootPersistentFlags(t *testing.T) {
	root := buildRoot()
	for _, name := range []string{
		"config", "log-level", "log-file",
		"service-command", "process-name", "port",
		"health-timeout", "health-interval", "health-attempts",
	} {
		require.NotNil(t, root.PersistentFlags().Lookup(name), "missing flag %s", name)
	}
}

func TestRootParsesServiceOverrides(t *testing.T) {
	root := buildRoot()
	root.SetArgs([]string{"status", "--port", "12000", "--health-timeout", "5s"})
	require.NoError(t, root.PersistentFlags().Parse([]string{"--port", "12000", "--health-timeout", "5s"}))
	port, err := root.PersistentFlags().GetInt("port")
	require.NoError(t, err)
	require.Equal(t, 12000, port)
}
