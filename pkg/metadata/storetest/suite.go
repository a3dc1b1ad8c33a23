package storetest

import (
	"testing"

	"github.com/google/uuid"

	"github.com/driftfs/driftfs/pkg/metadata"
)

// StoreFactory creates a fresh Store instance for each test. The factory
// receives *testing.T so it can use t.TempDir() for stores that need
// filesystem paths and t.Cleanup() for teardown.
type StoreFactory func(t *testing.T) metadata.Store

// RunConformanceSuite runs the full conformance test suite against the
// provided store factory. Each test gets a fresh store instance to ensure
// isolation.
//
// The suite covers two categories:
//   - Nodes: insert, lookup, duplicate rejection, delete, mutation isolation
//   - Hierarchy: root bootstrap, child listing, clear
func RunConformanceSuite(t *testing.T, factory StoreFactory) {
	t.Helper()

	t.Run("Nodes", func(t *testing.T) {
		runNodeOpsTests(t, factory)
	})

	t.Run("Hierarchy", func(t *testing.T) {
		runHierarchyTests(t, factory)
	})
}

// mustRoot bootstraps the root record and returns its ID.
func mustRoot(t *testing.T, store metadata.Store) uuid.UUID {
	t.Helper()

	root, err := store.EnsureRoot(t.Context())
	if err != nil {
		t.Fatalf("EnsureRoot() failed: %v", err)
	}
	return root
}

// insertFile inserts a file node under parent and returns it.
func insertFile(t *testing.T, store metadata.Store, parent uuid.UUID, name string, servers ...string) *metadata.Node {
	t.Helper()

	node := &metadata.Node{
		ID:      uuid.New(),
		Type:    metadata.NodeTypeFile,
		Name:    name,
		Parent:  parent,
		Servers: servers,
	}
	if err := store.Insert(t.Context(), node); err != nil {
		t.Fatalf("Insert(%q) failed: %v", name, err)
	}
	return node
}

// insertDir inserts a directory node under parent and returns it.
func insertDir(t *testing.T, store metadata.Store, parent uuid.UUID, name string) *metadata.Node {
	t.Helper()

	node := &metadata.Node{
		ID:     uuid.New(),
		Type:   metadata.NodeTypeDir,
		Name:   name,
		Parent: parent,
	}
	if err := store.Insert(t.Context(), node); err != nil {
		t.Fatalf("Insert(%q) failed: %v", name, err)
	}
	return node
}
