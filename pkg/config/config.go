package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/driftfs/driftfs/pkg/api"
	"github.com/driftfs/driftfs/pkg/metadata/store/badger"
	"github.com/driftfs/driftfs/pkg/metadata/store/postgres"
	"github.com/driftfs/driftfs/pkg/metrics"
	"github.com/driftfs/driftfs/pkg/registry"
)

// Config is everything the name server reads at startup: logging, the
// HTTP command surface, the metadata store backend, the FTP credentials
// shared by the storage node fleet, node health probing, and the
// observability stack. DRIFTFS_* environment variables override file
// values, which override the built-in defaults.
type Config struct {
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`

	// ShutdownTimeout bounds the graceful-stop drain before the process
	// gives up and exits
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"required,gt=0" yaml:"shutdown_timeout"`

	// API configures the HTTP server carrying the command surface
	API api.Config `mapstructure:"api" yaml:"api"`

	// Metadata selects and configures the directory tree's backing store
	Metadata MetadataConfig `mapstructure:"metadata" yaml:"metadata"`

	// FTP holds the credentials and transfer settings shared by every
	// storage node session
	FTP FTPConfig `mapstructure:"ftp" yaml:"ftp"`

	// StorageNode describes how the fleet is addressed
	StorageNode StorageNodeConfig `mapstructure:"storage_node" yaml:"storage_node"`

	// Health configures liveness and free-space probing of storage nodes
	Health registry.ProberConfig `mapstructure:"health" yaml:"health"`

	// Metrics configures the Prometheus scrape endpoint
	Metrics metrics.Config `mapstructure:"metrics" yaml:"metrics"`

	// Telemetry covers OpenTelemetry tracing and Pyroscope profiling
	Telemetry TelemetryConfig `mapstructure:"telemetry" yaml:"telemetry"`
}

// LoggingConfig configures the process-wide structured logger.
type LoggingConfig struct {
	// Level takes DEBUG, INFO, WARN or ERROR in either case; it is
	// normalized to uppercase on load
	Level string `mapstructure:"level" validate:"required,oneof=DEBUG INFO WARN ERROR debug info warn error" yaml:"level"`

	// Format picks between human-readable "text" and machine "json"
	Format string `mapstructure:"format" validate:"required,oneof=text json" yaml:"format"`

	// Output takes "stdout", "stderr" or a file path; a file is what lets
	// `driftfs logs` follow the daemon
	Output string `mapstructure:"output" validate:"required" yaml:"output"`
}

// MetadataConfig selects the backing store for the directory tree.
//
// The backend sections are not validated here; each store validates its
// own section when it is actually opened, so a memory-store deployment
// never has to fill in postgres connection details.
type MetadataConfig struct {
	// Type is the store backend
	// Valid values: memory, badger, postgres
	Type string `mapstructure:"type" validate:"required,oneof=memory badger postgres" yaml:"type"`

	// Badger configures the embedded BadgerDB store (type: badger)
	Badger badger.Config `mapstructure:"badger" validate:"-" yaml:"badger"`

	// Postgres configures the PostgreSQL store (type: postgres)
	Postgres postgres.Config `mapstructure:"postgres" validate:"-" yaml:"postgres,omitempty"`
}

// FTPConfig holds the FTP settings shared by every storage node session.
// All nodes in a deployment run the same credentials.
type FTPConfig struct {
	// Username and Password authenticate every session
	Username string `mapstructure:"username" validate:"required" yaml:"username"`
	Password string `mapstructure:"password" yaml:"password,omitempty"`

	// TLS upgrades control and data connections with AUTH TLS;
	// TLSInsecure additionally skips certificate verification
	TLS         bool `mapstructure:"tls" yaml:"tls"`
	TLSInsecure bool `mapstructure:"tls_insecure" yaml:"tls_insecure"`

	// StorageRoot is the remote directory all payloads live under
	StorageRoot string `mapstructure:"storage_root" yaml:"storage_root"`

	// DialTimeout bounds connection establishment per session
	DialTimeout time.Duration `mapstructure:"dial_timeout" yaml:"dial_timeout"`
}

// StorageNodeConfig describes how the storage node fleet is addressed.
type StorageNodeConfig struct {
	// Port is the FTP control port every node listens on
	Port int `mapstructure:"port" validate:"omitempty,min=1,max=65535" yaml:"port"`
}

// TelemetryConfig turns on OTLP trace export. Off by default; any OTLP
// receiver works as the collector.
type TelemetryConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Endpoint is the collector's gRPC address, host:port
	Endpoint string `mapstructure:"endpoint" validate:"required_if=Enabled true" yaml:"endpoint"`

	// Insecure skips TLS towards the collector, as local setups usually do
	Insecure bool `mapstructure:"insecure" yaml:"insecure"`

	// SampleRate is the fraction of traces kept, 0 through 1
	SampleRate float64 `mapstructure:"sample_rate" validate:"omitempty,gte=0,lte=1" yaml:"sample_rate"`

	Profiling ProfilingConfig `mapstructure:"profiling" yaml:"profiling"`
}

// ProfilingConfig turns on continuous profiling towards a Pyroscope
// server. The accepted profile type names are listed in the telemetry
// package.
type ProfilingConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Endpoint is the Pyroscope ingest URL
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint"`

	// ProfileTypes names what to collect, "cpu" and the heap and
	// goroutine profiles by default
	ProfileTypes []string `mapstructure:"profile_types" yaml:"profile_types"`
}

// Load reads the configuration at configPath, or from the default
// location when the path is empty. Environment variables beat file
// values and defaults fill the rest; a missing file yields the default
// configuration rather than an error.
func Load(configPath string) (*Config, error) {
	v := newViper(configPath)

	found, err := readConfig(v)
	if err != nil {
		return nil, err
	}
	if !found {
		return GetDefaultConfig(), nil
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(decodeHooks())); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	ApplyDefaults(&cfg)
	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

// MustLoad resolves the config path and fails with actionable guidance
// when the file is missing, then defers to Load.
func MustLoad(configPath string) (*Config, error) {
	switch {
	case configPath == "" && !DefaultConfigExists():
		return nil, fmt.Errorf("no configuration file found at default location: %s\n\n"+
			"Initialize one first:\n"+
			"  driftfs init\n\n"+
			"Or point at an existing file:\n"+
			"  driftfs <command> --config /path/to/config.yaml",
			GetDefaultConfigPath())
	case configPath == "":
		configPath = GetDefaultConfigPath()
	default:
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("configuration file not found: %s\n\n"+
				"Create it with:\n"+
				"  driftfs init --config %s",
				configPath, configPath)
		}
	}

	cfg, err := Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

// SaveConfig writes cfg to path as YAML, creating parent directories as
// needed. The file can carry FTP credentials, so it is written owner-only.
func SaveConfig(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// newViper builds a viper instance bound to the DRIFTFS_* environment
// (DRIFTFS_LOGGING_LEVEL=DEBUG overrides logging.level) and the given
// config file, or the default search path when the path is empty.
func newViper(configPath string) *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("DRIFTFS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		return v
	}
	v.AddConfigPath(getConfigDir())
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	return v
}

// readConfig reads the config file, distinguishing "no file" (false,
// nil) from real read errors. An explicitly named file that does not
// exist surfaces as os.PathError, not ConfigFileNotFoundError.
func readConfig(v *viper.Viper) (bool, error) {
	err := v.ReadInConfig()
	switch {
	case err == nil:
		return true, nil
	case errors.As(err, &viper.ConfigFileNotFoundError{}):
		return false, nil
	case os.IsNotExist(err):
		return false, nil
	default:
		return false, fmt.Errorf("failed to read config file: %w", err)
	}
}

// decodeHooks converts configuration strings into richer types:
// durations like "30s" and, via encoding.TextUnmarshaler, byte sizes
// like "256Mi".
func decodeHooks() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.TextUnmarshallerHookFunc(),
	)
}

// getConfigDir resolves the configuration directory: XDG_CONFIG_HOME
// when set, then ~/.config, with the working directory as a last
// resort when no home is known.
func getConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "driftfs")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "driftfs")
}

// GetDefaultConfigPath is where init writes and Load looks first:
// config.yaml inside the driftfs config directory.
func GetDefaultConfigPath() string {
	return filepath.Join(getConfigDir(), "config.yaml")
}

// DefaultConfigExists reports whether a config file sits at the default
// location.
func DefaultConfigExists() bool {
	_, err := os.Stat(GetDefaultConfigPath())
	return err == nil
}

// GetConfigDir returns the configuration directory path (exposed for the
// init command).
func GetConfigDir() string {
	return getConfigDir()
}
