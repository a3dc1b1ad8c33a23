package metadata

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/driftfs/driftfs/internal/fspath"
)

// DirectoryTree provides the namespace operations of the name server on
// top of a Store. It resolves slash-separated paths to node IDs and keeps
// the tree invariants: a single root, every non-root node under an
// existing directory, and unique names among siblings.
//
// Usage:
//
//	tree, err := metadata.NewDirectoryTree(ctx, store)
//	err = tree.MakeDir(ctx, "/", "docs")
//	err = tree.CreateFile(ctx, "/docs", "a.txt", []string{"10.0.0.7"})
//
// The coordinator is the only intended caller; protocol handlers go
// through it rather than touching the tree directly.
type DirectoryTree struct {
	store Store
	root  uuid.UUID
}

// NewDirectoryTree opens the tree over the given store, creating the root
// record on first use.
func NewDirectoryTree(ctx context.Context, store Store) (*DirectoryTree, error) {
	root, err := store.EnsureRoot(ctx)
	if err != nil {
		return nil, err
	}
	return &DirectoryTree{store: store, root: root}, nil
}

// Store exposes the backing store, primarily for health checks.
func (t *DirectoryTree) Store() Store {
	return t.store
}

// resolveDir walks path segment by segment from the root. Every segment
// must name a child directory of the node reached so far; a miss at any
// depth reports the full original path.
func (t *DirectoryTree) resolveDir(ctx context.Context, path string) (uuid.UUID, error) {
	current := t.root
	for _, segment := range fspath.Segments(path) {
		node, err := t.store.Lookup(ctx, current, segment)
		if err != nil {
			if IsNotFoundError(err) {
				return uuid.Nil, NewNoSuchDirectoryError(path)
			}
			return uuid.Nil, err
		}
		if node.Type != NodeTypeDir {
			return uuid.Nil, NewNoSuchDirectoryError(path)
		}
		current = node.ID
	}
	return current, nil
}

// validateName rejects names that would corrupt path resolution.
func validateName(path, name string) error {
	if name == "" {
		return NewInvalidPathError(path, "empty name")
	}
	if strings.Contains(name, "/") {
		return NewInvalidPathError(fspath.Join(path, name), "name contains a slash")
	}
	return nil
}

// lookupFile resolves path and returns its child file named filename.
func (t *DirectoryTree) lookupFile(ctx context.Context, path, filename string) (*Node, error) {
	dir, err := t.resolveDir(ctx, path)
	if err != nil {
		return nil, err
	}
	node, err := t.store.Lookup(ctx, dir, filename)
	if err != nil {
		if IsNotFoundError(err) {
			return nil, NewNoSuchFileError(fspath.Join(path, filename))
		}
		return nil, err
	}
	if node.Type != NodeTypeFile {
		return nil, NewNoSuchFileError(fspath.Join(path, filename))
	}
	return node, nil
}

// Clear removes every node except the root.
func (t *DirectoryTree) Clear(ctx context.Context) error {
	return t.store.Clear(ctx)
}

// CreateFile records a file under the given directory path with its
// replica hosts. A sibling with the same name fails the call with an
// InvalidPath error.
func (t *DirectoryTree) CreateFile(ctx context.Context, path, filename string, servers []string) error {
	if err := validateName(path, filename); err != nil {
		return err
	}
	dir, err := t.resolveDir(ctx, path)
	if err != nil {
		return err
	}
	node := &Node{
		ID:      uuid.New(),
		Type:    NodeTypeFile,
		Name:    filename,
		Parent:  dir,
		Servers: append([]string(nil), servers...),
	}
	if err := t.store.Insert(ctx, node); err != nil {
		if IsAlreadyExistsError(err) {
			return NewInvalidPathError(fspath.Join(path, filename), "name already taken in directory")
		}
		return err
	}
	return nil
}

// GetFileServers returns the replica hosts of the file, in the order they
// were recorded at placement time.
func (t *DirectoryTree) GetFileServers(ctx context.Context, path, filename string) ([]string, error) {
	node, err := t.lookupFile(ctx, path, filename)
	if err != nil {
		return nil, err
	}
	return append([]string(nil), node.Servers...), nil
}

// DeleteFile removes the file entry from the tree.
func (t *DirectoryTree) DeleteFile(ctx context.Context, path, filename string) error {
	node, err := t.lookupFile(ctx, path, filename)
	if err != nil {
		return err
	}
	return t.store.Delete(ctx, node.ID)
}

// CopyFile records a second entry for the file under newPath, sharing the
// source's replica set. An empty newFilename keeps the source name.
func (t *DirectoryTree) CopyFile(ctx context.Context, path, filename, newPath, newFilename string) error {
	servers, err := t.GetFileServers(ctx, path, filename)
	if err != nil {
		return err
	}
	if newFilename == "" {
		newFilename = filename
	}
	return t.CreateFile(ctx, newPath, newFilename, servers)
}

// MoveFile copies the entry to its new location, then deletes the source.
// The two steps are not atomic; a crash in between leaves both entries.
func (t *DirectoryTree) MoveFile(ctx context.Context, path, filename, newPath, newFilename string) error {
	if err := t.CopyFile(ctx, path, filename, newPath, newFilename); err != nil {
		return err
	}
	return t.DeleteFile(ctx, path, filename)
}

// MakeDir records a new directory under path.
func (t *DirectoryTree) MakeDir(ctx context.Context, path, dirname string) error {
	if err := validateName(path, dirname); err != nil {
		return err
	}
	dir, err := t.resolveDir(ctx, path)
	if err != nil {
		return err
	}
	node := &Node{
		ID:     uuid.New(),
		Type:   NodeTypeDir,
		Name:   dirname,
		Parent: dir,
	}
	if err := t.store.Insert(ctx, node); err != nil {
		if IsAlreadyExistsError(err) {
			return NewInvalidPathError(fspath.Join(path, dirname), "name already taken in directory")
		}
		return err
	}
	return nil
}

// ReadDir lists the directory's children, files and subdirectories both,
// sorted by name.
func (t *DirectoryTree) ReadDir(ctx context.Context, path string) ([]Entry, error) {
	dir, err := t.resolveDir(ctx, path)
	if err != nil {
		return nil, err
	}
	children, err := t.store.Children(ctx, dir)
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(children))
	for _, child := range children {
		entries = append(entries, Entry{Type: child.Type, Name: child.Name})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

// DeleteDir removes the named directory and everything under it,
// children before parents.
func (t *DirectoryTree) DeleteDir(ctx context.Context, path, dirname string) error {
	parent, err := t.resolveDir(ctx, path)
	if err != nil {
		return err
	}
	node, err := t.store.Lookup(ctx, parent, dirname)
	if err != nil {
		if IsNotFoundError(err) {
			return NewNoSuchDirectoryError(fspath.Join(path, dirname))
		}
		return err
	}
	if node.Type != NodeTypeDir {
		return NewNoSuchDirectoryError(fspath.Join(path, dirname))
	}
	return t.deleteSubtree(ctx, node.ID)
}

// deleteSubtree removes a directory node and its descendants post-order.
func (t *DirectoryTree) deleteSubtree(ctx context.Context, id uuid.UUID) error {
	children, err := t.store.Children(ctx, id)
	if err != nil {
		return err
	}
	for _, child := range children {
		if child.Type == NodeTypeDir {
			if err := t.deleteSubtree(ctx, child.ID); err != nil {
				return err
			}
			continue
		}
		if err := t.store.Delete(ctx, child.ID); err != nil {
			return err
		}
	}
	return t.store.Delete(ctx, id)
}

// AsList returns every directory of the tree as (parent path, dirname)
// pairs in pre-order, so parents always precede their children. Replaying
// the list as MakeDir calls recreates the skeleton on an empty node.
func (t *DirectoryTree) AsList(ctx context.Context) ([]DirEntry, error) {
	var list []DirEntry
	if err := t.walkDirs(ctx, t.root, "/", &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (t *DirectoryTree) walkDirs(ctx context.Context, id uuid.UUID, path string, out *[]DirEntry) error {
	children, err := t.store.Children(ctx, id)
	if err != nil {
		return err
	}
	sort.Slice(children, func(i, j int) bool { return children[i].Name < children[j].Name })
	for _, child := range children {
		if child.Type != NodeTypeDir {
			continue
		}
		*out = append(*out, DirEntry{Path: path, Dirname: child.Name})
		if err := t.walkDirs(ctx, child.ID, fspath.Join(path, child.Name), out); err != nil {
			return err
		}
	}
	return nil
}
