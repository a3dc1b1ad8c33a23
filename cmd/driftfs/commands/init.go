package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/driftfs/driftfs/pkg/config"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a starter configuration file",
	Long: `Write a commented starter configuration file.

Without --config the file is created at
$XDG_CONFIG_HOME/driftfs/config.yaml.

Examples:
  # Create the default config
  driftfs init

  # Create at a custom path
  driftfs init --config /etc/driftfs/config.yaml

  # Overwrite an existing file
  driftfs init --force`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Replace the file if it already exists")
}

func runInit(cmd *cobra.Command, args []string) error {
	configPath, err := writeStarterConfig(GetConfigFile())
	if err != nil {
		return fmt.Errorf("failed to write starter config: %w", err)
	}

	fmt.Printf("Wrote %s\n", configPath)
	fmt.Println()
	fmt.Println("Next steps:")
	fmt.Println("  1. Adjust the settings: driftfs config edit")
	fmt.Println("  2. Check the result:    driftfs config validate")
	fmt.Println("  3. Start the server:    driftfs start")
	return nil
}

// writeStarterConfig creates the sample config at the requested path,
// or at the default location when path is empty.
func writeStarterConfig(path string) (string, error) {
	if path == "" {
		return config.InitConfig(initForce)
	}
	return path, config.InitConfigToPath(path, initForce)
}
