package commands

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/driftfs/driftfs/pkg/config"
)

var (
	logsFollow bool
	logsLines  int
)

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Tail server logs",
	Long: `Print the most recent entries of the server log file, optionally
following new output as it is written.

Only works when 'logging.output' points at a file. Log rotation is
handled while following: when the file is moved away, the command
reopens the replacement and continues.

Examples:
  # Last 100 lines (the default)
  driftfs logs

  # Last 50 lines
  driftfs logs -n 50

  # Keep printing as the server writes
  driftfs logs -f`,
	RunE: runLogs,
}

func init() {
	logsCmd.Flags().BoolVarP(&logsFollow, "follow", "f", false, "Keep the file open and print new entries")
	logsCmd.Flags().IntVarP(&logsLines, "lines", "n", 100, "How many trailing lines to print")
}

func runLogs(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(GetConfigFile())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logPath := cfg.Logging.Output
	if logPath == "stdout" || logPath == "stderr" {
		return fmt.Errorf("server logs to %s; point 'logging.output' at a file to use this command", logPath)
	}
	if _, err := os.Stat(logPath); os.IsNotExist(err) {
		return fmt.Errorf("no log file at %s (has the server started?)", logPath)
	}

	if err := showLastLines(logPath, logsLines); err != nil {
		return err
	}
	if logsFollow {
		return followLogs(logPath)
	}
	return nil
}

// showLastLines prints the last n lines of the log file.
func showLastLines(logFile string, n int) error {
	file, err := os.Open(logFile)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", logFile, err)
	}
	defer func() { _ = file.Close() }()

	// A ring of the last n lines; log files stay small enough that one
	// sequential scan is fine.
	ring := make([]string, 0, n)
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		if len(ring) == n {
			ring = append(ring[1:], scanner.Text())
		} else {
			ring = append(ring, scanner.Text())
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read %s: %w", logFile, err)
	}

	for _, line := range ring {
		fmt.Println(line)
	}
	return nil
}

// followLogs watches the log file and prints lines as they are
// appended. Rotation (rename or remove) makes it reopen the path and
// continue with the replacement file.
func followLogs(logFile string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to start the log watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(logFile); err != nil {
		return fmt.Errorf("failed to watch %s: %w", logFile, err)
	}

	file, err := os.Open(logFile)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", logFile, err)
	}
	defer func() { _ = file.Close() }()

	// Only new content from here on; the backlog was already printed.
	if _, err := file.Seek(0, io.SeekEnd); err != nil {
		return fmt.Errorf("failed to seek %s: %w", logFile, err)
	}
	reader := bufio.NewReader(file)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	fmt.Fprintf(os.Stderr, "==> %s <== (Ctrl+C stops)\n", logFile)

	for {
		select {
		case <-sigCh:
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			switch {
			case event.Has(fsnotify.Write):
				printNewLines(reader)

			case event.Has(fsnotify.Rename) || event.Has(fsnotify.Remove):
				// Rotation. Pick up the replacement from its start.
				_ = file.Close()
				_ = watcher.Remove(logFile)

				file, err = awaitLogFile(logFile)
				if err != nil {
					return err
				}
				if err := watcher.Add(logFile); err != nil {
					return fmt.Errorf("failed to rewatch log file: %w", err)
				}
				reader = bufio.NewReader(file)
				printNewLines(reader)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("log watcher: %w", err)
		}
	}
}

// printNewLines drains complete lines appended since the last call.
// A trailing partial line stays buffered until its newline arrives.
func printNewLines(r *bufio.Reader) {
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return
		}
		fmt.Print(line)
	}
}

// awaitLogFile polls for a rotated log file to reappear.
func awaitLogFile(path string) (*os.File, error) {
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if f, err := os.Open(path); err == nil {
			return f, nil
		}
		time.Sleep(100 * time.Millisecond)
	}
	return nil, fmt.Errorf("log file %s did not reappear after rotation", path)
}
