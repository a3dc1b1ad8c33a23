package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/driftfs/driftfs/internal/cli/prompt"
	"github.com/driftfs/driftfs/pkg/config"
	"github.com/driftfs/driftfs/pkg/metadata/store/postgres"
)

var migrateYes bool

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations",
	Long: `Apply pending schema migrations to the postgres metadata store.

The memory and badger stores need no migrations; this command refuses to
run unless 'metadata.type' is postgres. It is required after upgrading
DriftFS when schema changes have been made, unless 'auto_migrate' is set.

Examples:
  # Migrate the store named in the default config
  driftfs migrate

  # Explicit config, no confirmation prompt
  driftfs migrate --config /etc/driftfs/config.yaml --yes`,
	RunE: runMigrate,
}

func init() {
	migrateCmd.Flags().BoolVarP(&migrateYes, "yes", "y", false, "Skip confirmation prompt")
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := config.MustLoad(GetConfigFile())
	if err != nil {
		return err
	}

	// The migration runner logs through the process logger.
	if err := InitLogger(cfg); err != nil {
		return err
	}

	if cfg.Metadata.Type != "postgres" {
		return fmt.Errorf("migrations only apply to the postgres metadata store (configured type: %q)", cfg.Metadata.Type)
	}

	confirmed, err := prompt.ConfirmWithForce(
		fmt.Sprintf("Apply pending migrations to %s/%s", cfg.Metadata.Postgres.Host, cfg.Metadata.Postgres.Database),
		migrateYes,
	)
	if err != nil {
		if prompt.IsAborted(err) {
			fmt.Println("Aborted.")
			return nil
		}
		return err
	}
	if !confirmed {
		fmt.Println("Aborted.")
		return nil
	}

	// RunMigrations applies defaults in place; work on a copy so the
	// loaded configuration is left untouched.
	pgCfg := cfg.Metadata.Postgres
	if err := postgres.RunMigrations(context.Background(), &pgCfg); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	fmt.Printf("Migrations completed successfully (database: %s)\n", pgCfg.Database)
	return nil
}
