// Package commands wires up the driftfs command line: server lifecycle
// (start, stop, status), cluster inspection (nodes, logs) and
// configuration management.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/driftfs/driftfs/cmd/driftfs/commands/config"
)

// Build metadata, overridden through -ldflags.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "driftfs",
	Short: "DriftFS - Replicated file store name server",
	Long: `DriftFS is the name server of a small replicated file store. It keeps
the directory tree and file placement in a metadata store, health-probes the
storage nodes, and fans file operations out to them over FTP. Clients talk to
it through a plain HTTP command API.

Use "driftfs [command] --help" for more information about a command.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $XDG_CONFIG_HOME/driftfs/config.yaml)")

	rootCmd.AddCommand(
		versionCmd,
		startCmd,
		stopCmd,
		statusCmd,
		nodesCmd,
		logsCmd,
		initCmd,
		migrateCmd,
		config.Cmd,
		completionCmd,
	)

	// The completion command above replaces cobra's builtin one.
	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// Execute runs the root command. Called once from main.
func Execute() error {
	return rootCmd.Execute()
}

// GetRootCmd exposes the root command for tests.
func GetRootCmd() *cobra.Command {
	return rootCmd
}

// GetConfigFile returns the value of the global --config flag.
func GetConfigFile() string {
	return cfgFile
}
