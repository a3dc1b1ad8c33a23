// Package memory implements metadata.Store with plain maps. It is the
// backend for tests and single-process development runs; nothing survives
// a restart.
package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/driftfs/driftfs/pkg/metadata"
)

// Store keeps the directory tree in two maps: nodes by ID and a child
// index per parent. All operations are protected by a read-write mutex,
// making the store safe for concurrent access from multiple goroutines.
type Store struct {
	mu sync.RWMutex

	// nodes maps node ID to the stored record
	nodes map[uuid.UUID]*metadata.Node

	// children maps parent ID to a name -> child ID index
	children map[uuid.UUID]map[string]uuid.UUID

	root uuid.UUID
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		nodes:    make(map[uuid.UUID]*metadata.Node),
		children: make(map[uuid.UUID]map[string]uuid.UUID),
	}
}

// EnsureRoot returns the root ID, creating the root record on first call.
func (s *Store) EnsureRoot(ctx context.Context) (uuid.UUID, error) {
	if err := ctx.Err(); err != nil {
		return uuid.Nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.root != uuid.Nil {
		return s.root, nil
	}

	root := &metadata.Node{
		ID:   uuid.New(),
		Type: metadata.NodeTypeRoot,
	}
	s.nodes[root.ID] = root
	s.root = root.ID
	return root.ID, nil
}

// Insert stores a new node, enforcing sibling name uniqueness.
func (s *Store) Insert(ctx context.Context, node *metadata.Node) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	index, ok := s.children[node.Parent]
	if !ok {
		index = make(map[string]uuid.UUID)
		s.children[node.Parent] = index
	}
	if _, taken := index[node.Name]; taken {
		return metadata.NewAlreadyExistsError(node.Name)
	}

	s.nodes[node.ID] = node.Clone()
	index[node.Name] = node.ID
	return nil
}

// Get returns a copy of the node with the given ID.
func (s *Store) Get(ctx context.Context, id uuid.UUID) (*metadata.Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	node, ok := s.nodes[id]
	if !ok {
		return nil, metadata.NewNotFoundError("node")
	}
	return node.Clone(), nil
}

// Lookup returns the child of parent with the given name.
func (s *Store) Lookup(ctx context.Context, parent uuid.UUID, name string) (*metadata.Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.children[parent][name]
	if !ok {
		return nil, metadata.NewNotFoundError("node")
	}
	return s.nodes[id].Clone(), nil
}

// Children returns copies of all children of the given parent.
func (s *Store) Children(ctx context.Context, parent uuid.UUID) ([]*metadata.Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	index := s.children[parent]
	nodes := make([]*metadata.Node, 0, len(index))
	for _, id := range index {
		nodes = append(nodes, s.nodes[id].Clone())
	}
	return nodes, nil
}

// Delete removes a single node and its child-index entry.
func (s *Store) Delete(ctx context.Context, id uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	node, ok := s.nodes[id]
	if !ok {
		return metadata.NewNotFoundError("node")
	}

	delete(s.nodes, id)
	delete(s.children, id)
	if index, ok := s.children[node.Parent]; ok {
		delete(index, node.Name)
	}
	return nil
}

// Clear drops every node except the root.
func (s *Store) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	root := s.nodes[s.root]
	s.nodes = make(map[uuid.UUID]*metadata.Node)
	s.children = make(map[uuid.UUID]map[string]uuid.UUID)
	if root != nil {
		s.nodes[s.root] = root
	}
	return nil
}

// Healthcheck always succeeds for the in-memory store.
func (s *Store) Healthcheck(ctx context.Context) error {
	return ctx.Err()
}

// Close is a no-op for the in-memory store.
func (s *Store) Close() error {
	return nil
}
