package metadata

import (
	"context"

	"github.com/google/uuid"
)

// Store persists directory tree nodes. Implementations must make each
// method atomic on its own; multi-node operations (recursive deletes,
// copy+delete moves) are sequenced by DirectoryTree and are not
// transactional across records.
//
// Three implementations exist: memory (tests and dev), badger (embedded
// persistent) and postgres (shared persistent).
type Store interface {
	// EnsureRoot returns the ID of the root node, creating the root
	// record the first time it is called on an empty store.
	EnsureRoot(ctx context.Context) (uuid.UUID, error)

	// Insert persists a new node. The node's ID must be set by the
	// caller. Inserting a second node with the same (Parent, Name) pair
	// fails with an AlreadyExists error; the check and the write are
	// atomic.
	Insert(ctx context.Context, node *Node) error

	// Get returns the node with the given ID, or a NotFound error.
	Get(ctx context.Context, id uuid.UUID) (*Node, error)

	// Lookup returns the child of parent with the given name, or a
	// NotFound error.
	Lookup(ctx context.Context, parent uuid.UUID, name string) (*Node, error)

	// Children returns all children of the given parent. Order is
	// implementation-defined but stable within one call.
	Children(ctx context.Context, parent uuid.UUID) ([]*Node, error)

	// Delete removes a single node. Deleting a missing node is a
	// NotFound error. Callers drive subtree recursion.
	Delete(ctx context.Context, id uuid.UUID) error

	// Clear removes every node whose type is not root. The root record
	// survives so the tree stays usable without re-initialization.
	Clear(ctx context.Context) error

	// Healthcheck verifies the backing store is reachable.
	Healthcheck(ctx context.Context) error

	// Close releases the store's resources.
	Close() error
}
