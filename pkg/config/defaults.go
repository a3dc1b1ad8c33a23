package config

import (
	"slices"
	"strings"
	"time"

	"github.com/driftfs/driftfs/pkg/api"
	"github.com/driftfs/driftfs/pkg/storagenode"
)

// Fallbacks for fields the config file and environment leave unset.
const (
	defaultLogLevel        = "INFO"
	defaultLogFormat       = "text"
	defaultLogOutput       = "stdout"
	defaultShutdownTimeout = 30 * time.Second
	defaultOTLPEndpoint    = "localhost:4317"
	defaultPyroscopeURL    = "http://localhost:4040"
	defaultFTPUsername     = "driftfs"
)

// defaultProfileTypes is what the Pyroscope agent collects when the config
// names no profile types. Mutex and block profiles stay out because they
// need runtime sampling switched on.
var defaultProfileTypes = []string{
	"cpu",
	"alloc_objects",
	"alloc_space",
	"inuse_objects",
	"inuse_space",
	"goroutines",
}

// ApplyDefaults fills unset fields after the file and DRIFTFS_*
// environment values are merged. Only zero values are touched; anything
// set explicitly wins.
func ApplyDefaults(cfg *Config) {
	applyLoggingDefaults(&cfg.Logging)
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}
	applyAPIDefaults(&cfg.API)
	if cfg.Metadata.Type == "" {
		cfg.Metadata.Type = "memory"
	}
	applyFTPDefaults(&cfg.FTP)
	if cfg.StorageNode.Port == 0 {
		cfg.StorageNode.Port = storagenode.DefaultPort
	}
	cfg.Health.ApplyDefaults()
	// Metrics stay opt-in; port and path only get filled once enabled.
	if cfg.Metrics.Enabled {
		cfg.Metrics.ApplyDefaults()
	}
	applyTelemetryDefaults(&cfg.Telemetry)
}

// applyLoggingDefaults also uppercases the level so the rest of the code
// can compare it without normalizing again.
func applyLoggingDefaults(cfg *LoggingConfig) {
	if cfg.Level == "" {
		cfg.Level = defaultLogLevel
	}
	cfg.Level = strings.ToUpper(cfg.Level)

	if cfg.Format == "" {
		cfg.Format = defaultLogFormat
	}
	if cfg.Output == "" {
		cfg.Output = defaultLogOutput
	}
}

// applyAPIDefaults sets API server defaults. Read and write timeouts are
// left at zero on purpose; the command surface streams file bodies and
// must not cut them off.
func applyAPIDefaults(cfg *api.Config) {
	if cfg.Port == 0 {
		cfg.Port = api.DefaultPort
	}
	if cfg.IdleTimeout == 0 {
		cfg.IdleTimeout = 60 * time.Second
	}
}

// applyFTPDefaults mirrors the storage node session defaults so a saved
// config spells them out.
func applyFTPDefaults(cfg *FTPConfig) {
	if cfg.Username == "" {
		cfg.Username = defaultFTPUsername
	}
	if cfg.StorageRoot == "" {
		cfg.StorageRoot = "/"
	}
	if cfg.DialTimeout == 0 {
		cfg.DialTimeout = storagenode.DefaultDialTimeout
	}
}

// applyTelemetryDefaults points tracing and profiling at the standard
// local collector ports. Both stay opt-in through their Enabled flags.
func applyTelemetryDefaults(cfg *TelemetryConfig) {
	if cfg.Endpoint == "" {
		cfg.Endpoint = defaultOTLPEndpoint
	}
	if cfg.SampleRate == 0 {
		cfg.SampleRate = 1.0
	}

	if cfg.Profiling.Endpoint == "" {
		cfg.Profiling.Endpoint = defaultPyroscopeURL
	}
	if len(cfg.Profiling.ProfileTypes) == 0 {
		// Cloned so callers can append without sharing the package slice.
		cfg.Profiling.ProfileTypes = slices.Clone(defaultProfileTypes)
	}
}

// GetDefaultConfig returns a configuration that runs without any external
// services: memory metadata store, tracing and profiling off. It backs
// `driftfs start` when no config file exists, the generated starter file
// and most tests.
func GetDefaultConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}
