package config

import (
	"context"
	"fmt"

	"github.com/driftfs/driftfs/pkg/metadata"
	"github.com/driftfs/driftfs/pkg/metadata/store/badger"
	"github.com/driftfs/driftfs/pkg/metadata/store/memory"
	"github.com/driftfs/driftfs/pkg/metadata/store/postgres"
	"github.com/driftfs/driftfs/pkg/storagenode"
)

// NewMetadataStore opens the metadata store selected by the
// configuration. The caller owns the store and must Close it on
// shutdown.
func NewMetadataStore(ctx context.Context, cfg MetadataConfig) (metadata.Store, error) {
	switch cfg.Type {
	case "memory":
		return memory.NewStore(), nil

	case "badger":
		store, err := badger.NewStore(ctx, cfg.Badger)
		if err != nil {
			return nil, fmt.Errorf("failed to open badger store: %w", err)
		}
		return store, nil

	case "postgres":
		// NewStore applies defaults in place; work on a copy so the
		// loaded configuration is left untouched.
		pgCfg := cfg.Postgres
		store, err := postgres.NewStore(ctx, &pgCfg)
		if err != nil {
			return nil, fmt.Errorf("failed to open postgres store: %w", err)
		}
		return store, nil

	default:
		return nil, fmt.Errorf("unknown metadata store type: %q", cfg.Type)
	}
}

// NewNodeDialer builds the FTP dialer for storage node sessions from the
// ftp and storage_node sections.
func NewNodeDialer(cfg *Config) *storagenode.Dialer {
	return storagenode.NewDialer(storagenode.Config{
		Username:    cfg.FTP.Username,
		Password:    cfg.FTP.Password,
		Port:        cfg.StorageNode.Port,
		TLS:         cfg.FTP.TLS,
		TLSInsecure: cfg.FTP.TLSInsecure,
		StorageRoot: cfg.FTP.StorageRoot,
		DialTimeout: cfg.FTP.DialTimeout,
	})
}
