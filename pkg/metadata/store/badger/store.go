// Package badger implements metadata.Store on an embedded BadgerDB. It is
// the default persistent backend: a single directory on local disk, no
// external service to run.
package badger

import (
	"context"
	"fmt"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"github.com/driftfs/driftfs/internal/bytesize"
	"github.com/driftfs/driftfs/internal/logger"
	"github.com/driftfs/driftfs/pkg/metadata"
)

// Config holds the options of the embedded store.
type Config struct {
	// Path is the directory holding the Badger value log and LSM tree.
	// Ignored when InMemory is set.
	Path string `mapstructure:"path" yaml:"path"`

	// InMemory keeps the whole database in RAM. Useful for tests that
	// want real transaction semantics without disk.
	InMemory bool `mapstructure:"in_memory" yaml:"in_memory"`

	// SyncWrites forces fsync on every commit. Slower, safest.
	SyncWrites bool `mapstructure:"sync_writes" yaml:"sync_writes"`

	// CacheSize bounds Badger's block cache. Zero keeps the Badger
	// default. Accepts human-readable sizes such as "256Mi".
	CacheSize bytesize.ByteSize `mapstructure:"cache_size" yaml:"cache_size,omitempty"`
}

// Store implements metadata.Store on BadgerDB.
type Store struct {
	db *badger.DB
}

// NewStore opens (or creates) the database described by cfg.
func NewStore(ctx context.Context, cfg Config) (*Store, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !cfg.InMemory && cfg.Path == "" {
		return nil, fmt.Errorf("badger store requires a path")
	}

	opts := badger.DefaultOptions(cfg.Path).
		WithInMemory(cfg.InMemory).
		WithSyncWrites(cfg.SyncWrites).
		WithLogger(badgerLogger{})
	if cfg.CacheSize > 0 {
		opts = opts.WithBlockCacheSize(int64(cfg.CacheSize))
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger database at %q: %w", cfg.Path, err)
	}

	logger.Info("badger metadata store opened", logger.Store("badger"), "path", cfg.Path)
	return &Store{db: db}, nil
}

// EnsureRoot returns the root ID, creating the root record on first call.
func (s *Store) EnsureRoot(ctx context.Context) (uuid.UUID, error) {
	if err := ctx.Err(); err != nil {
		return uuid.Nil, err
	}

	var root uuid.UUID
	err := s.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyRoot))
		if err == nil {
			return item.Value(func(val []byte) error {
				var decodeErr error
				root, decodeErr = decodeUUID(val)
				return decodeErr
			})
		}
		if err != badger.ErrKeyNotFound {
			return err
		}

		node := &metadata.Node{ID: uuid.New(), Type: metadata.NodeTypeRoot}
		data, err := encodeNode(node)
		if err != nil {
			return err
		}
		if err := txn.Set(keyNode(node.ID), data); err != nil {
			return err
		}
		if err := txn.Set([]byte(keyRoot), encodeUUID(node.ID)); err != nil {
			return err
		}
		root = node.ID
		return nil
	})
	if err != nil {
		return uuid.Nil, metadata.NewIOError("ensure root", err)
	}
	return root, nil
}

// Insert stores a new node. The child index key is checked and written in
// the same transaction, which is what makes sibling names unique.
func (s *Store) Insert(ctx context.Context, node *metadata.Node) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		childKey := keyChild(node.Parent, node.Name)
		_, err := txn.Get(childKey)
		if err == nil {
			return metadata.NewAlreadyExistsError(node.Name)
		}
		if err != badger.ErrKeyNotFound {
			return err
		}

		data, err := encodeNode(node)
		if err != nil {
			return err
		}
		if err := txn.Set(keyNode(node.ID), data); err != nil {
			return err
		}
		return txn.Set(childKey, encodeUUID(node.ID))
	})
	if metadata.IsAlreadyExistsError(err) {
		return err
	}
	if err != nil {
		return metadata.NewIOError("insert node", err)
	}
	return nil
}

// Get returns the node with the given ID.
func (s *Store) Get(ctx context.Context, id uuid.UUID) (*metadata.Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var node *metadata.Node
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		node, err = getNode(txn, id)
		return err
	})
	if err != nil {
		if metadata.IsNotFoundError(err) {
			return nil, err
		}
		return nil, metadata.NewIOError("get node", err)
	}
	return node, nil
}

// Lookup returns the child of parent with the given name.
func (s *Store) Lookup(ctx context.Context, parent uuid.UUID, name string) (*metadata.Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var node *metadata.Node
	err := s.db.View(func(txn *badger.Txn) error {
		id, err := getChildID(txn, parent, name)
		if err != nil {
			return err
		}
		node, err = getNode(txn, id)
		return err
	})
	if err != nil {
		if metadata.IsNotFoundError(err) {
			return nil, err
		}
		return nil, metadata.NewIOError("lookup child", err)
	}
	return node, nil
}

// Children returns all children of the given parent via a prefix scan of
// the child index.
func (s *Store) Children(ctx context.Context, parent uuid.UUID) ([]*metadata.Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var nodes []*metadata.Node
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = keyChildPrefix(parent)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var id uuid.UUID
			err := it.Item().Value(func(val []byte) error {
				var decodeErr error
				id, decodeErr = decodeUUID(val)
				return decodeErr
			})
			if err != nil {
				return err
			}
			node, err := getNode(txn, id)
			if err != nil {
				return err
			}
			nodes = append(nodes, node)
		}
		return nil
	})
	if err != nil {
		return nil, metadata.NewIOError("list children", err)
	}
	return nodes, nil
}

// Delete removes a single node and its child index entry.
func (s *Store) Delete(ctx context.Context, id uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		node, err := getNode(txn, id)
		if err != nil {
			return err
		}
		if err := txn.Delete(keyNode(id)); err != nil {
			return err
		}
		return txn.Delete(keyChild(node.Parent, node.Name))
	})
	if metadata.IsNotFoundError(err) {
		return err
	}
	if err != nil {
		return metadata.NewIOError("delete node", err)
	}
	return nil
}

// Clear drops every record except the root marker and the root node.
func (s *Store) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		rootItem, err := txn.Get([]byte(keyRoot))
		if err != nil {
			return err
		}
		var root uuid.UUID
		err = rootItem.Value(func(val []byte) error {
			var decodeErr error
			root, decodeErr = decodeUUID(val)
			return decodeErr
		})
		if err != nil {
			return err
		}
		rootNodeKey := string(keyNode(root))

		// Collect first, delete after: Badger iterators must not see
		// writes made during the scan.
		var doomed [][]byte
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		for it.Rewind(); it.Valid(); it.Next() {
			key := it.Item().KeyCopy(nil)
			if string(key) == keyRoot || string(key) == rootNodeKey {
				continue
			}
			doomed = append(doomed, key)
		}
		it.Close()

		for _, key := range doomed {
			if err := txn.Delete(key); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return metadata.NewIOError("clear store", err)
	}
	return nil
}

// Healthcheck verifies the database is open and readable.
func (s *Store) Healthcheck(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.db.IsClosed() {
		return metadata.NewIOError("healthcheck", fmt.Errorf("database is closed"))
	}
	return nil
}

// Close flushes and closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// getNode fetches and decodes a node record inside a transaction.
func getNode(txn *badger.Txn, id uuid.UUID) (*metadata.Node, error) {
	item, err := txn.Get(keyNode(id))
	if err == badger.ErrKeyNotFound {
		return nil, metadata.NewNotFoundError("node")
	}
	if err != nil {
		return nil, err
	}
	var node *metadata.Node
	err = item.Value(func(val []byte) error {
		var decodeErr error
		node, decodeErr = decodeNode(val)
		return decodeErr
	})
	if err != nil {
		return nil, err
	}
	return node, nil
}

// getChildID resolves a (parent, name) pair to a node ID inside a
// transaction.
func getChildID(txn *badger.Txn, parent uuid.UUID, name string) (uuid.UUID, error) {
	item, err := txn.Get(keyChild(parent, name))
	if err == badger.ErrKeyNotFound {
		return uuid.Nil, metadata.NewNotFoundError("node")
	}
	if err != nil {
		return uuid.Nil, err
	}
	var id uuid.UUID
	err = item.Value(func(val []byte) error {
		var decodeErr error
		id, decodeErr = decodeUUID(val)
		return decodeErr
	})
	if err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

// badgerLogger adapts Badger's printf logger to the structured logger.
// Badger is chatty at INFO during compaction, so its INFO goes to DEBUG.
type badgerLogger struct{}

func (badgerLogger) Errorf(format string, args ...interface{}) {
	logger.Error(fmt.Sprintf("badger: "+format, args...))
}

func (badgerLogger) Warningf(format string, args ...interface{}) {
	logger.Warn(fmt.Sprintf("badger: "+format, args...))
}

func (badgerLogger) Infof(format string, args ...interface{}) {
	logger.Debug(fmt.Sprintf("badger: "+format, args...))
}

func (badgerLogger) Debugf(format string, args ...interface{}) {
	logger.Debug(fmt.Sprintf("badger: "+format, args...))
}
