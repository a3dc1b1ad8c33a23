package config

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/driftfs/driftfs/internal/cli/output"
	"github.com/driftfs/driftfs/pkg/config"
)

var (
	showOutput   string
	showDefaults bool
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Display effective configuration",
	Long: `Print the configuration the server would run with: file values
merged with defaults and DRIFTFS_* environment overrides.

Examples:
  # Effective config as YAML
  driftfs config show

  # As JSON
  driftfs config show -o json

  # From a specific file
  driftfs config show --config /etc/driftfs/config.yaml

  # Built-in defaults only, e.g. to seed a new config file
  driftfs config show --defaults > config.yaml`,
	RunE: runConfigShow,
}

func init() {
	showCmd.Flags().StringVarP(&showOutput, "output", "o", "yaml", "Output format: yaml or json")
	showCmd.Flags().BoolVar(&showDefaults, "defaults", false, "Ignore config file and environment, print built-in defaults")
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	format, err := output.ParseFormat(showOutput)
	if err != nil {
		return err
	}

	cfg := config.GetDefaultConfig()
	if !showDefaults {
		// The config flag is persistent on the root command.
		configPath, _ := cmd.Flags().GetString("config")
		if cfg, err = config.MustLoad(configPath); err != nil {
			return err
		}
	}

	if format == output.FormatJSON {
		return output.PrintJSON(os.Stdout, cfg)
	}
	return output.PrintYAML(os.Stdout, cfg)
}
