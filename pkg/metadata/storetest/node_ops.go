package storetest

import (
	"testing"

	"github.com/google/uuid"

	"github.com/driftfs/driftfs/pkg/metadata"
)

// runNodeOpsTests runs all single-node conformance tests.
func runNodeOpsTests(t *testing.T, factory StoreFactory) {
	t.Run("InsertAndGet", func(t *testing.T) { testInsertAndGet(t, factory) })
	t.Run("GetMissing", func(t *testing.T) { testGetMissing(t, factory) })
	t.Run("Lookup", func(t *testing.T) { testLookup(t, factory) })
	t.Run("DuplicateSibling", func(t *testing.T) { testDuplicateSibling(t, factory) })
	t.Run("SameNameDifferentParent", func(t *testing.T) { testSameNameDifferentParent(t, factory) })
	t.Run("Delete", func(t *testing.T) { testDelete(t, factory) })
	t.Run("MutationIsolation", func(t *testing.T) { testMutationIsolation(t, factory) })
}

// testInsertAndGet verifies that a stored node round-trips with all fields.
func testInsertAndGet(t *testing.T, factory StoreFactory) {
	store := factory(t)
	root := mustRoot(t, store)
	ctx := t.Context()

	inserted := insertFile(t, store, root, "a.txt", "10.0.0.7", "10.0.0.8")

	node, err := store.Get(ctx, inserted.ID)
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}

	if node.ID != inserted.ID {
		t.Errorf("ID = %v, want %v", node.ID, inserted.ID)
	}
	if node.Type != metadata.NodeTypeFile {
		t.Errorf("Type = %v, want NodeTypeFile", node.Type)
	}
	if node.Name != "a.txt" {
		t.Errorf("Name = %q, want %q", node.Name, "a.txt")
	}
	if node.Parent != root {
		t.Errorf("Parent = %v, want %v", node.Parent, root)
	}
	if len(node.Servers) != 2 || node.Servers[0] != "10.0.0.7" || node.Servers[1] != "10.0.0.8" {
		t.Errorf("Servers = %v, want [10.0.0.7 10.0.0.8]", node.Servers)
	}
}

// testGetMissing verifies that looking up an unknown ID reports NotFound.
func testGetMissing(t *testing.T, factory StoreFactory) {
	store := factory(t)
	mustRoot(t, store)

	_, err := store.Get(t.Context(), uuid.New())
	if !metadata.IsNotFoundError(err) {
		t.Fatalf("Get() error = %v, want NotFound", err)
	}
}

// testLookup verifies name resolution under a parent.
func testLookup(t *testing.T, factory StoreFactory) {
	store := factory(t)
	root := mustRoot(t, store)
	ctx := t.Context()

	inserted := insertDir(t, store, root, "docs")

	node, err := store.Lookup(ctx, root, "docs")
	if err != nil {
		t.Fatalf("Lookup() failed: %v", err)
	}
	if node.ID != inserted.ID {
		t.Errorf("Lookup() ID = %v, want %v", node.ID, inserted.ID)
	}

	_, err = store.Lookup(ctx, root, "missing")
	if !metadata.IsNotFoundError(err) {
		t.Errorf("Lookup(missing) error = %v, want NotFound", err)
	}
}

// testDuplicateSibling verifies that a second insert with the same
// (parent, name) pair is rejected.
func testDuplicateSibling(t *testing.T, factory StoreFactory) {
	store := factory(t)
	root := mustRoot(t, store)
	ctx := t.Context()

	insertFile(t, store, root, "a.txt")

	dup := &metadata.Node{
		ID:     uuid.New(),
		Type:   metadata.NodeTypeFile,
		Name:   "a.txt",
		Parent: root,
	}
	err := store.Insert(ctx, dup)
	if !metadata.IsAlreadyExistsError(err) {
		t.Fatalf("Insert(duplicate) error = %v, want AlreadyExists", err)
	}

	// A directory with the same name collides too; siblings share one
	// namespace regardless of type.
	dupDir := &metadata.Node{
		ID:     uuid.New(),
		Type:   metadata.NodeTypeDir,
		Name:   "a.txt",
		Parent: root,
	}
	err = store.Insert(ctx, dupDir)
	if !metadata.IsAlreadyExistsError(err) {
		t.Fatalf("Insert(duplicate dir) error = %v, want AlreadyExists", err)
	}
}

// testSameNameDifferentParent verifies that equal names under different
// parents do not collide.
func testSameNameDifferentParent(t *testing.T, factory StoreFactory) {
	store := factory(t)
	root := mustRoot(t, store)

	dir := insertDir(t, store, root, "docs")
	insertFile(t, store, root, "a.txt")
	insertFile(t, store, dir.ID, "a.txt")

	node, err := store.Lookup(t.Context(), dir.ID, "a.txt")
	if err != nil {
		t.Fatalf("Lookup() failed: %v", err)
	}
	if node.Parent != dir.ID {
		t.Errorf("Parent = %v, want %v", node.Parent, dir.ID)
	}
}

// testDelete verifies removal and that deleting twice reports NotFound.
func testDelete(t *testing.T, factory StoreFactory) {
	store := factory(t)
	root := mustRoot(t, store)
	ctx := t.Context()

	node := insertFile(t, store, root, "a.txt")

	if err := store.Delete(ctx, node.ID); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}

	if _, err := store.Get(ctx, node.ID); !metadata.IsNotFoundError(err) {
		t.Errorf("Get() after delete error = %v, want NotFound", err)
	}
	if _, err := store.Lookup(ctx, root, "a.txt"); !metadata.IsNotFoundError(err) {
		t.Errorf("Lookup() after delete error = %v, want NotFound", err)
	}

	// The name is free again.
	insertFile(t, store, root, "a.txt")

	if err := store.Delete(ctx, uuid.New()); !metadata.IsNotFoundError(err) {
		t.Errorf("Delete(unknown) error = %v, want NotFound", err)
	}
}

// testMutationIsolation verifies that mutating a returned node does not
// leak into the store.
func testMutationIsolation(t *testing.T, factory StoreFactory) {
	store := factory(t)
	root := mustRoot(t, store)
	ctx := t.Context()

	inserted := insertFile(t, store, root, "a.txt", "10.0.0.7")

	first, err := store.Get(ctx, inserted.ID)
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	first.Name = "mutated"
	first.Servers[0] = "10.9.9.9"

	second, err := store.Get(ctx, inserted.ID)
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if second.Name != "a.txt" {
		t.Errorf("Name = %q after caller mutation, want %q", second.Name, "a.txt")
	}
	if second.Servers[0] != "10.0.0.7" {
		t.Errorf("Servers[0] = %q after caller mutation, want %q", second.Servers[0], "10.0.0.7")
	}
}
