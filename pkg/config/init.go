package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// configTemplate is the starter file written by `driftfs init`. It must
// stay loadable by Load; a test guards that.
const configTemplate = `# DriftFS Configuration File
#
# This file configures the DriftFS name server: the HTTP command
# surface, the metadata store, and how the storage node fleet is
# reached. Every value can be overridden with a DRIFTFS_* environment
# variable, e.g. DRIFTFS_LOGGING_LEVEL=DEBUG.

logging:
  # DEBUG, INFO, WARN or ERROR
  level: "INFO"
  # text or json
  format: "text"
  # stdout, stderr, or a file path
  output: "stdout"

# Maximum time to wait for in-flight commands on shutdown.
shutdown_timeout: "30s"

api:
  # Port for the command surface and health endpoints.
  port: 8000

metadata:
  # memory, badger or postgres.
  # memory needs no setup but forgets the namespace on restart.
  type: "memory"

  # badger:
  #   path: "/var/lib/driftfs/metadata"
  #   sync_writes: true
  #   cache_size: "256Mi"

  # postgres:
  #   host: "localhost"
  #   port: 5432
  #   database: "driftfs"
  #   user: "driftfs"
  #   password: ""

# FTP credentials shared by every storage node.
ftp:
  username: "driftfs"
  password: ""
  storage_root: "/"
  dial_timeout: "5s"

storage_node:
  # FTP control port the nodes listen on.
  port: 21

health:
  # Port serving /ping and /info/space on each node.
  port: 80
  request_timeout: "2s"

metrics:
  enabled: false
  # port: 9090
  # path: "/metrics"

telemetry:
  enabled: false
  # endpoint: "localhost:4317"
  # insecure: true
  # sample_rate: 1.0
  profiling:
    enabled: false
    # endpoint: "http://localhost:4040"
`

// InitConfig writes a starter configuration file at the default
// location and returns its path. It refuses to overwrite an existing
// file unless force is set.
func InitConfig(force bool) (string, error) {
	path := GetDefaultConfigPath()
	if err := InitConfigToPath(path, force); err != nil {
		return "", err
	}
	return path, nil
}

// InitConfigToPath writes a starter configuration file at path,
// creating parent directories as needed.
func InitConfigToPath(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", path)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Credentials may end up in this file, so owner-only.
	if err := os.WriteFile(path, []byte(configTemplate), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
