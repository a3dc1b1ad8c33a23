package storetest

import (
	"sort"
	"testing"

	"github.com/driftfs/driftfs/pkg/metadata"
)

// runHierarchyTests runs all tree-shape conformance tests.
func runHierarchyTests(t *testing.T, factory StoreFactory) {
	t.Run("RootIdempotent", func(t *testing.T) { testRootIdempotent(t, factory) })
	t.Run("Children", func(t *testing.T) { testChildren(t, factory) })
	t.Run("ChildrenOfEmptyDir", func(t *testing.T) { testChildrenOfEmptyDir(t, factory) })
	t.Run("ClearPreservesRoot", func(t *testing.T) { testClearPreservesRoot(t, factory) })
	t.Run("Healthcheck", func(t *testing.T) { testHealthcheck(t, factory) })
}

// testRootIdempotent verifies that bootstrapping twice yields one root.
func testRootIdempotent(t *testing.T, factory StoreFactory) {
	store := factory(t)
	ctx := t.Context()

	first := mustRoot(t, store)
	second := mustRoot(t, store)
	if first != second {
		t.Fatalf("EnsureRoot() returned %v then %v, want a stable ID", first, second)
	}

	node, err := store.Get(ctx, first)
	if err != nil {
		t.Fatalf("Get(root) failed: %v", err)
	}
	if node.Type != metadata.NodeTypeRoot {
		t.Errorf("root Type = %v, want NodeTypeRoot", node.Type)
	}
}

// testChildren verifies that listing returns every direct child and only
// direct children.
func testChildren(t *testing.T, factory StoreFactory) {
	store := factory(t)
	root := mustRoot(t, store)
	ctx := t.Context()

	insertFile(t, store, root, "beta.txt")
	insertFile(t, store, root, "alpha.txt")
	sub := insertDir(t, store, root, "gamma")
	insertFile(t, store, sub.ID, "nested.txt")

	children, err := store.Children(ctx, root)
	if err != nil {
		t.Fatalf("Children() failed: %v", err)
	}
	if len(children) != 3 {
		t.Fatalf("Children() returned %d entries, want 3", len(children))
	}

	names := make([]string, len(children))
	for i, child := range children {
		names[i] = child.Name
	}
	sort.Strings(names)

	expected := []string{"alpha.txt", "beta.txt", "gamma"}
	for i, want := range expected {
		if names[i] != want {
			t.Errorf("names[%d] = %q, want %q", i, names[i], want)
		}
	}
}

// testChildrenOfEmptyDir verifies that an empty directory lists no
// children and does not error.
func testChildrenOfEmptyDir(t *testing.T, factory StoreFactory) {
	store := factory(t)
	root := mustRoot(t, store)

	dir := insertDir(t, store, root, "empty")

	children, err := store.Children(t.Context(), dir.ID)
	if err != nil {
		t.Fatalf("Children() failed: %v", err)
	}
	if len(children) != 0 {
		t.Errorf("Children() returned %d entries, want 0", len(children))
	}
}

// testClearPreservesRoot verifies that Clear empties the tree but keeps
// the root record and its ID.
func testClearPreservesRoot(t *testing.T, factory StoreFactory) {
	store := factory(t)
	root := mustRoot(t, store)
	ctx := t.Context()

	dir := insertDir(t, store, root, "docs")
	insertFile(t, store, dir.ID, "a.txt")
	insertFile(t, store, root, "b.txt")

	if err := store.Clear(ctx); err != nil {
		t.Fatalf("Clear() failed: %v", err)
	}

	if _, err := store.Get(ctx, root); err != nil {
		t.Fatalf("Get(root) after Clear failed: %v", err)
	}
	if again := mustRoot(t, store); again != root {
		t.Errorf("EnsureRoot() after Clear = %v, want %v", again, root)
	}

	children, err := store.Children(ctx, root)
	if err != nil {
		t.Fatalf("Children() failed: %v", err)
	}
	if len(children) != 0 {
		t.Errorf("Children() after Clear returned %d entries, want 0", len(children))
	}

	if _, err := store.Get(ctx, dir.ID); !metadata.IsNotFoundError(err) {
		t.Errorf("Get(dir) after Clear error = %v, want NotFound", err)
	}

	// Names freed by Clear are usable again.
	insertDir(t, store, root, "docs")
}

// testHealthcheck verifies that an open store reports healthy.
func testHealthcheck(t *testing.T, factory StoreFactory) {
	store := factory(t)
	mustRoot(t, store)

	if err := store.Healthcheck(t.Context()); err != nil {
		t.Fatalf("Healthcheck() failed: %v", err)
	}
}
