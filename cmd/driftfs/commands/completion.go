package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion script",
	Long: `Write a completion script for the given shell to stdout.

Install examples:

  # bash (Linux)
  driftfs completion bash > /etc/bash_completion.d/driftfs

  # zsh
  driftfs completion zsh > "${fpath[1]}/_driftfs"

  # fish
  driftfs completion fish > ~/.config/fish/completions/driftfs.fish

  # PowerShell
  driftfs completion powershell | Out-String | Invoke-Expression

Restart the shell afterwards to pick the completions up. For zsh,
compinit must run in your ~/.zshrc.`,
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE:                  runCompletion,
}

func runCompletion(cmd *cobra.Command, args []string) error {
	root := cmd.Root()
	switch args[0] {
	case "bash":
		return root.GenBashCompletion(os.Stdout)
	case "zsh":
		return root.GenZshCompletion(os.Stdout)
	case "fish":
		return root.GenFishCompletion(os.Stdout, true)
	case "powershell":
		return root.GenPowerShellCompletionWithDesc(os.Stdout)
	default:
		return fmt.Errorf("unsupported shell %q", args[0])
	}
}
