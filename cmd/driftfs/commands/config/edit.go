package config

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/spf13/cobra"

	"github.com/driftfs/driftfs/pkg/config"
)

var editCmd = &cobra.Command{
	Use:   "edit",
	Short: "Open configuration in an editor",
	Long: `Open the configuration file in $EDITOR (falling back to $VISUAL,
then vi) and validate the result.

Examples:
  # Edit the default config
  driftfs config edit

  # Edit a specific file
  driftfs config edit --config /etc/driftfs/config.yaml`,
	RunE: runConfigEdit,
}

func runConfigEdit(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	if configPath == "" {
		configPath = config.GetDefaultConfigPath()
	}
	if _, err := os.Stat(configPath); err != nil {
		return fmt.Errorf("configuration file not found: %s\nCreate it first with 'driftfs init'", configPath)
	}

	editor := resolveEditor()
	run := exec.Command(editor, configPath)
	run.Stdin = os.Stdin
	run.Stdout = os.Stdout
	run.Stderr = os.Stderr
	if err := run.Run(); err != nil {
		return fmt.Errorf("failed to run %s: %w", editor, err)
	}

	// Catch syntax or validation mistakes right away instead of at the
	// next server start.
	if _, err := config.Load(configPath); err != nil {
		fmt.Printf("Warning: edited configuration does not validate:\n  %v\n", err)
		return nil
	}
	fmt.Println("Configuration saved and valid.")
	return nil
}

func resolveEditor() string {
	for _, env := range []string{"EDITOR", "VISUAL"} {
		if editor := os.Getenv(env); editor != "" {
			return editor
		}
	}
	return "vi"
}
