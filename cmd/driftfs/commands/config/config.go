// Package config implements the config subcommand tree: inspecting,
// editing and validating driftfs configuration files.
package config

import (
	"github.com/spf13/cobra"
)

// Cmd groups the configuration subcommands under "driftfs config".
var Cmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management",
	Long: `Inspect and maintain driftfs configuration files.

A new configuration file is created with 'driftfs init'. Once it
exists, use 'config show' to inspect the effective settings, 'config
edit' to change them and 'config validate' to check a file without
starting the server. 'config schema' emits a JSON schema for editor
completion.`,
}

func init() {
	Cmd.AddCommand(showCmd, editCmd, validateCmd, schemaCmd)
}
