package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommandHasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range GetRootCmd().Commands() {
		names[c.Name()] = true
	}

	for _, want := range []string{
		"start", "stop", "status", "nodes", "logs",
		"init", "migrate", "config", "version", "completion",
	} {
		assert.True(t, names[want], "missing subcommand %q", want)
	}
}

func TestRootCommandConfigFlag(t *testing.T) {
	flag := GetRootCmd().PersistentFlags().Lookup("config")
	require.NotNil(t, flag)
	assert.Equal(t, "", flag.DefValue)
}

func TestDefaultPaths(t *testing.T) {
	t.Setenv("XDG_STATE_HOME", "/var/state")

	assert.Equal(t, "/var/state/driftfs", GetDefaultStateDir())
	assert.Equal(t, "/var/state/driftfs/driftfs.pid", GetDefaultPidFile())
	assert.Equal(t, "/var/state/driftfs/driftfs.log", GetDefaultLogFile())
}
