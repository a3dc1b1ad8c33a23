package commands

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/driftfs/driftfs/internal/logger"
	"github.com/driftfs/driftfs/internal/telemetry"
	"github.com/driftfs/driftfs/pkg/api"
	"github.com/driftfs/driftfs/pkg/config"
	"github.com/driftfs/driftfs/pkg/coordinator"
	"github.com/driftfs/driftfs/pkg/metadata"
	"github.com/driftfs/driftfs/pkg/metrics"
	"github.com/driftfs/driftfs/pkg/metrics/prometheus"
	"github.com/driftfs/driftfs/pkg/registry"
	"github.com/driftfs/driftfs/pkg/storagenode"
)

var (
	foreground bool
	pidFile    string
	logFile    string
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the driftfs name server",
	Long: `Start the driftfs name server.

The server daemonizes by default; --foreground keeps it attached to
the terminal, which is what you want for debugging or under a process
supervisor. Configuration comes from --config or from
$XDG_CONFIG_HOME/driftfs/config.yaml.

Examples:
  # Background daemon (the default)
  driftfs start

  # Attached to the terminal
  driftfs start --foreground

  # With an explicit config file
  driftfs start --config /etc/driftfs/config.yaml

  # Override settings through the environment
  DRIFTFS_LOGGING_LEVEL=DEBUG driftfs start --foreground`,
	RunE: runStart,
}

func init() {
	startCmd.Flags().BoolVarP(&foreground, "foreground", "f", false, "Stay attached to the terminal instead of daemonizing")
	startCmd.Flags().StringVar(&pidFile, "pid-file", "", "Path to PID file (default: $XDG_STATE_HOME/driftfs/driftfs.pid)")
	startCmd.Flags().StringVar(&logFile, "log-file", "", "Path to log file for daemon mode (default: $XDG_STATE_HOME/driftfs/driftfs.log)")
}

// ftpDialer adapts the storage node dialer to the coordinator's
// NodeDialer interface.
type ftpDialer struct {
	dialer *storagenode.Dialer
}

func (d ftpDialer) Dial(ctx context.Context, host string) (coordinator.NodeClient, error) {
	return d.dialer.Dial(ctx, host)
}

func runStart(cmd *cobra.Command, args []string) error {
	if !foreground {
		return startDaemon()
	}

	cfg, err := config.MustLoad(GetConfigFile())
	if err != nil {
		return err
	}
	if err := InitLogger(cfg); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stopObservability, err := setupObservability(ctx, cfg)
	if err != nil {
		return err
	}
	defer stopObservability()

	fmt.Println("DriftFS - Replicated file store name server")
	logger.Info("Configuration loaded",
		"source", describeConfigSource(GetConfigFile()),
		"log_level", cfg.Logging.Level,
		"log_format", cfg.Logging.Format)

	apiMetrics, coordMetrics, stopMetrics := setupMetrics(cfg)
	defer stopMetrics()

	store, err := config.NewMetadataStore(ctx, cfg.Metadata)
	if err != nil {
		return fmt.Errorf("failed to open metadata store: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("Metadata store close error", "error", err)
		}
	}()
	logger.Info("Metadata store ready", "type", cfg.Metadata.Type)

	tree, err := metadata.NewDirectoryTree(ctx, store)
	if err != nil {
		return fmt.Errorf("failed to initialize directory tree: %w", err)
	}

	reg := registry.NewRegistry(registry.NewHTTPProber(cfg.Health))
	logger.Info("Node prober configured", "port", cfg.Health.Port, "timeout", cfg.Health.RequestTimeout)

	coord := coordinator.New(tree, reg, ftpDialer{config.NewNodeDialer(cfg)}, coordMetrics)
	logger.Info("Storage fleet configured",
		"ftp_user", cfg.FTP.Username,
		"ftp_tls", cfg.FTP.TLS,
		"node_port", cfg.StorageNode.Port)

	apiServer := api.NewServer(cfg.API, coord, store, apiMetrics)
	logger.Info("API server configured", "port", apiServer.Port())

	if pidFile != "" {
		if err := os.WriteFile(pidFile, []byte(strconv.Itoa(os.Getpid())), 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", pidFile, err)
		}
		defer func() { _ = os.Remove(pidFile) }()
	}

	serverDone := make(chan error, 1)
	go func() {
		serverDone <- apiServer.Start(ctx)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("Name server running (Ctrl+C to stop)")

	select {
	case <-sigChan:
		signal.Stop(sigChan)
		logger.Info("Shutdown signal received, draining requests")
		cancel()

		// Bounded drain; a hung handler must not block shutdown forever.
		select {
		case err := <-serverDone:
			if err != nil {
				logger.Error("Drain failed", "error", err)
				return err
			}
			logger.Info("Name server stopped cleanly")
		case <-time.After(cfg.ShutdownTimeout):
			return fmt.Errorf("shutdown timed out after %s", cfg.ShutdownTimeout)
		}

	case err := <-serverDone:
		signal.Stop(sigChan)
		if err != nil {
			logger.Error("API server failed", "error", err)
			return err
		}
		logger.Info("API server exited")
	}

	return nil
}

// setupObservability wires the OTLP trace exporter and the Pyroscope
// profiler when the configuration enables them. The returned function
// flushes and stops both.
func setupObservability(ctx context.Context, cfg *config.Config) (func(), error) {
	stopTracing, err := telemetry.Init(ctx, telemetry.Config{
		Enabled:        cfg.Telemetry.Enabled,
		ServiceName:    "driftfs",
		ServiceVersion: Version,
		Endpoint:       cfg.Telemetry.Endpoint,
		Insecure:       cfg.Telemetry.Insecure,
		SampleRate:     cfg.Telemetry.SampleRate,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}

	stopProfiling, err := telemetry.InitProfiling(telemetry.ProfilingConfig{
		Enabled:        cfg.Telemetry.Profiling.Enabled,
		ServiceName:    "driftfs",
		ServiceVersion: Version,
		Endpoint:       cfg.Telemetry.Profiling.Endpoint,
		ProfileTypes:   cfg.Telemetry.Profiling.ProfileTypes,
	})
	if err != nil {
		if terr := stopTracing(ctx); terr != nil {
			logger.Error("Telemetry shutdown error", "error", terr)
		}
		return nil, fmt.Errorf("failed to initialize profiling: %w", err)
	}

	if telemetry.IsEnabled() {
		logger.Info("Tracing enabled", "endpoint", cfg.Telemetry.Endpoint, "sample_rate", cfg.Telemetry.SampleRate)
	} else {
		logger.Info("Tracing disabled")
	}
	if telemetry.IsProfilingEnabled() {
		logger.Info("Profiling enabled", "endpoint", cfg.Telemetry.Profiling.Endpoint, "types", cfg.Telemetry.Profiling.ProfileTypes)
	} else {
		logger.Info("Profiling disabled")
	}

	return func() {
		if err := stopProfiling(); err != nil {
			logger.Error("Profiling shutdown error", "error", err)
		}
		// The run context is already cancelled by now; flush on a
		// fresh one so spans still make it out.
		if err := stopTracing(context.Background()); err != nil {
			logger.Error("Telemetry shutdown error", "error", err)
		}
	}, nil
}

// setupMetrics starts the Prometheus endpoint when enabled and returns
// the metric sinks handed to the API server and coordinator; both are
// nil when metrics are off.
func setupMetrics(cfg *config.Config) (metrics.APIMetrics, metrics.CoordinatorMetrics, func()) {
	if !cfg.Metrics.Enabled {
		logger.Info("Metrics disabled")
		return nil, nil, func() {}
	}

	metrics.InitRegistry()
	server := metrics.NewServer(cfg.Metrics)
	go func() {
		if err := server.Start(); err != nil {
			logger.Error("Metrics server error", "error", err)
		}
	}()
	logger.Info("Metrics enabled", "port", cfg.Metrics.Port, "path", cfg.Metrics.Path)

	stop := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Stop(ctx); err != nil {
			logger.Error("Metrics server shutdown error", "error", err)
		}
	}
	return prometheus.NewAPIMetrics(), prometheus.NewCoordinatorMetrics(), stop
}

// describeConfigSource names where configuration came from for the
// startup log line.
func describeConfigSource(configFile string) string {
	switch {
	case configFile != "":
		return configFile
	case config.DefaultConfigExists():
		return config.GetDefaultConfigPath()
	default:
		return "built-in defaults"
	}
}

// startDaemon re-executes the binary with --foreground detached from
// the terminal, logging to a file.
func startDaemon() error {
	stateDir := GetDefaultStateDir()
	if err := os.MkdirAll(stateDir, 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", stateDir, err)
	}

	pidPath := pidFile
	if pidPath == "" {
		pidPath = filepath.Join(stateDir, "driftfs.pid")
	}
	if pid, alive := readServerPID(pidPath); alive {
		return fmt.Errorf("driftfs is already running (PID %d)\nStop it first with 'driftfs stop'", pid)
	}
	_ = os.Remove(pidPath) // stale PID file

	logPath := logFile
	if logPath == "" {
		logPath = filepath.Join(stateDir, "driftfs.log")
	}

	executable, err := os.Executable()
	if err != nil {
		return fmt.Errorf("failed to resolve executable path: %w", err)
	}
	daemonArgs := []string{"start", "--foreground", "--pid-file", pidPath}
	if GetConfigFile() != "" {
		daemonArgs = append(daemonArgs, "--config", GetConfigFile())
	}

	out, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", logPath, err)
	}
	defer func() { _ = out.Close() }()

	daemon := exec.Command(executable, daemonArgs...)
	daemon.Stdout = out
	daemon.Stderr = out
	// New session so the daemon survives the terminal.
	daemon.SysProcAttr = &syscall.SysProcAttr{Setsid: true}

	if err := daemon.Start(); err != nil {
		return fmt.Errorf("failed to launch the daemon: %w", err)
	}

	fmt.Printf("DriftFS started in background (PID %d)\n", daemon.Process.Pid)
	fmt.Printf("  PID:  %s\n", pidPath)
	fmt.Printf("  Logs: %s\n", logPath)
	fmt.Println("\nUse 'driftfs status' to check it and 'driftfs stop' to stop it.")
	return nil
}
