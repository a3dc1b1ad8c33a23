// Package postgres implements metadata.Store on PostgreSQL via pgx. It is
// the backend for deployments where several name server replicas share one
// metadata database. Schema management goes through golang-migrate with
// the migration files embedded in the binary.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/driftfs/driftfs/internal/logger"
	"github.com/driftfs/driftfs/pkg/metadata"
)

// pgUniqueViolation is the PostgreSQL error code for unique constraint
// violations, used to translate duplicate (parent, name) inserts.
const pgUniqueViolation = "23505"

// Store implements metadata.Store on a pgx connection pool.
//
// The root row uses the zero UUID as its parent so no column is ever
// NULL; a partial unique index keeps the root unique, and a unique index
// on (parent_id, name) enforces sibling names.
type Store struct {
	pool   *pgxpool.Pool
	config *Config
}

// NewStore connects to PostgreSQL and optionally applies migrations.
func NewStore(ctx context.Context, cfg *Config) (*Store, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid postgres configuration: %w", err)
	}

	pool, err := createConnectionPool(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if cfg.AutoMigrate {
		logger.Info("auto_migrate enabled, applying migrations", logger.Store("postgres"))
		if err := runMigrations(ctx, cfg.ConnectionString()); err != nil {
			pool.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
	} else {
		logger.Debug("auto_migrate disabled; run 'driftfs migrate' to manage the schema")
	}

	return &Store{pool: pool, config: cfg}, nil
}

// createConnectionPool builds a pgxpool with the configured sizing and a
// server-side statement timeout.
func createConnectionPool(ctx context.Context, cfg *Config) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}

	poolConfig.MaxConns = cfg.MaxConns
	poolConfig.MinConns = cfg.MinConns
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime
	poolConfig.HealthCheckPeriod = cfg.HealthCheckPeriod

	if cfg.QueryTimeout > 0 {
		poolConfig.ConnConfig.RuntimeParams["statement_timeout"] = fmt.Sprintf("%dms", cfg.QueryTimeout.Milliseconds())
	}

	logger.Info("creating postgres connection pool",
		logger.Store("postgres"),
		"host", cfg.Host,
		"port", cfg.Port,
		"database", cfg.Database,
		"user", cfg.User,
		"ssl_mode", cfg.SSLMode,
	)

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	return pool, nil
}

// EnsureRoot returns the root ID, inserting the root row on first call.
// Concurrent first calls race through ON CONFLICT DO NOTHING and converge
// on the surviving row.
func (s *Store) EnsureRoot(ctx context.Context) (uuid.UUID, error) {
	var root uuid.UUID
	err := s.pool.QueryRow(ctx,
		`SELECT id FROM nodes WHERE node_type = 'root'`,
	).Scan(&root)
	if err == nil {
		return root, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return uuid.Nil, metadata.NewIOError("ensure root", err)
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO nodes (id, node_type, name, parent_id, servers)
		 VALUES ($1, 'root', '', $2, '{}')
		 ON CONFLICT DO NOTHING`,
		uuid.New(), uuid.Nil,
	)
	if err != nil {
		return uuid.Nil, metadata.NewIOError("ensure root", err)
	}

	err = s.pool.QueryRow(ctx,
		`SELECT id FROM nodes WHERE node_type = 'root'`,
	).Scan(&root)
	if err != nil {
		return uuid.Nil, metadata.NewIOError("ensure root", err)
	}
	return root, nil
}

// Insert stores a new node; the unique index on (parent_id, name) turns
// duplicate siblings into AlreadyExists errors.
func (s *Store) Insert(ctx context.Context, node *metadata.Node) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO nodes (id, node_type, name, parent_id, servers)
		 VALUES ($1, $2, $3, $4, $5)`,
		node.ID, string(node.Type), node.Name, node.Parent, node.Servers,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return metadata.NewAlreadyExistsError(node.Name)
		}
		return metadata.NewIOError("insert node", err)
	}
	return nil
}

// Get returns the node with the given ID.
func (s *Store) Get(ctx context.Context, id uuid.UUID) (*metadata.Node, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, node_type, name, parent_id, servers FROM nodes WHERE id = $1`,
		id,
	)
	return scanNode(row)
}

// Lookup returns the child of parent with the given name.
func (s *Store) Lookup(ctx context.Context, parent uuid.UUID, name string) (*metadata.Node, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, node_type, name, parent_id, servers
		 FROM nodes WHERE parent_id = $1 AND name = $2 AND node_type <> 'root'`,
		parent, name,
	)
	return scanNode(row)
}

// Children returns all children of the given parent.
func (s *Store) Children(ctx context.Context, parent uuid.UUID) ([]*metadata.Node, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, node_type, name, parent_id, servers
		 FROM nodes WHERE parent_id = $1 AND node_type <> 'root'
		 ORDER BY name`,
		parent,
	)
	if err != nil {
		return nil, metadata.NewIOError("list children", err)
	}
	defer rows.Close()

	var nodes []*metadata.Node
	for rows.Next() {
		node, err := scanNode(rows)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, node)
	}
	if err := rows.Err(); err != nil {
		return nil, metadata.NewIOError("list children", err)
	}
	return nodes, nil
}

// Delete removes a single node.
func (s *Store) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM nodes WHERE id = $1`, id)
	if err != nil {
		return metadata.NewIOError("delete node", err)
	}
	if tag.RowsAffected() == 0 {
		return metadata.NewNotFoundError("node")
	}
	return nil
}

// Clear removes every row except the root.
func (s *Store) Clear(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM nodes WHERE node_type <> 'root'`)
	if err != nil {
		return metadata.NewIOError("clear store", err)
	}
	return nil
}

// Healthcheck pings the database.
func (s *Store) Healthcheck(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return metadata.NewIOError("healthcheck", err)
	}
	return nil
}

// Close releases the connection pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// rowScanner covers pgx.Row and pgx.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanNode reads one node row, translating pgx.ErrNoRows to NotFound.
func scanNode(row rowScanner) (*metadata.Node, error) {
	var (
		node     metadata.Node
		nodeType string
	)
	err := row.Scan(&node.ID, &nodeType, &node.Name, &node.Parent, &node.Servers)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, metadata.NewNotFoundError("node")
	}
	if err != nil {
		return nil, metadata.NewIOError("scan node", err)
	}
	node.Type = metadata.NodeType(nodeType)
	return &node, nil
}
