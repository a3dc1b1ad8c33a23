package commands

import (
	"errors"
	"fmt"
	"os"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

var (
	stopPidFile string
	stopForce   bool
	stopWait    time.Duration
)

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the driftfs server",
	Long: `Stop a running driftfs server.

By default, sends SIGTERM for graceful shutdown. Use --force for
immediate termination with SIGKILL, and --wait to block until the
process has actually exited.

Examples:
  # Graceful stop via the default PID file
  driftfs stop

  # Stop and wait up to 30s for the process to exit
  driftfs stop --wait 30s

  # Kill outright
  driftfs stop --force`,
	RunE: runStop,
}

func init() {
	stopCmd.Flags().StringVar(&stopPidFile, "pid-file", "", "Path to PID file (default: $XDG_STATE_HOME/driftfs/driftfs.pid)")
	stopCmd.Flags().BoolVarP(&stopForce, "force", "f", false, "Send SIGKILL instead of SIGTERM")
	stopCmd.Flags().DurationVar(&stopWait, "wait", 0, "Wait up to this long for the process to exit (0 = do not wait)")
}

func runStop(cmd *cobra.Command, args []string) error {
	pidPath := stopPidFile
	if pidPath == "" {
		pidPath = GetDefaultPidFile()
	}

	pid, err := readPidFile(pidPath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("no PID file at %s (is the server running?)", pidPath)
		}
		return err
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("failed to look up process %d: %w", pid, err)
	}

	sigName, sig := "SIGTERM", syscall.SIGTERM
	if stopForce {
		sigName, sig = "SIGKILL", syscall.SIGKILL
	}
	fmt.Printf("Sending %s to process %d...\n", sigName, pid)

	err = process.Signal(sig)
	switch {
	case errors.Is(err, os.ErrProcessDone):
		fmt.Println("Process already gone, removing stale PID file")
		_ = os.Remove(pidPath)
		return nil
	case err != nil:
		return fmt.Errorf("failed to signal process %d: %w", pid, err)
	}

	if stopWait > 0 {
		if err := waitForExit(process, stopWait); err != nil {
			return err
		}
		_ = os.Remove(pidPath)
		fmt.Println("Server stopped")
		return nil
	}

	if stopForce {
		fmt.Println("Server killed")
	} else {
		fmt.Println("Shutdown signal delivered; the server drains connections and exits on its own. Use --wait to block until it is gone.")
	}
	return nil
}

// waitForExit polls the process with signal 0 until it is gone or the
// timeout elapses.
func waitForExit(process *os.Process, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if err := process.Signal(syscall.Signal(0)); err != nil {
			return nil
		}
		time.Sleep(200 * time.Millisecond)
	}
	return fmt.Errorf("server did not exit within %s, try --force", timeout)
}
