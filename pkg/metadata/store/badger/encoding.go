package badger

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/driftfs/driftfs/pkg/metadata"
)

// ============================================================================
// Database Key Namespace Design
// ============================================================================
//
// BadgerDB is a key-value store, so prefixed keys organize the record
// types into logical namespaces:
//
//   r:                    -> root node UUID (16 raw bytes)
//   n:<uuid>              -> node record (JSON)
//   c:<parent-uuid>:<name> -> child node UUID (16 raw bytes)
//
// The c: namespace doubles as the sibling-uniqueness constraint: inserting
// a node writes its child key inside the same transaction that checks the
// key is absent, so two nodes can never share a (parent, name) pair. It
// also gives cheap directory listings as a single prefix scan.
//
// Node IDs are UUID v4, rendered in canonical string form inside keys so
// the database stays inspectable with badger's CLI tooling.

const (
	keyRoot     = "r:"
	prefixNode  = "n:"
	prefixChild = "c:"
)

// keyNode builds the key of a node record.
func keyNode(id uuid.UUID) []byte {
	return []byte(prefixNode + id.String())
}

// keyChild builds the key of a (parent, name) child index entry.
func keyChild(parent uuid.UUID, name string) []byte {
	return []byte(prefixChild + parent.String() + ":" + name)
}

// keyChildPrefix builds the scan prefix covering all children of parent.
func keyChildPrefix(parent uuid.UUID) []byte {
	return []byte(prefixChild + parent.String() + ":")
}

// encodeNode serializes a node record to JSON.
func encodeNode(node *metadata.Node) ([]byte, error) {
	data, err := json.Marshal(node)
	if err != nil {
		return nil, fmt.Errorf("failed to encode node %s: %w", node.ID, err)
	}
	return data, nil
}

// decodeNode deserializes a node record from JSON.
func decodeNode(data []byte) (*metadata.Node, error) {
	var node metadata.Node
	if err := json.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("failed to decode node: %w", err)
	}
	return &node, nil
}

// encodeUUID renders a UUID as its 16 raw bytes for value storage.
func encodeUUID(id uuid.UUID) []byte {
	b := make([]byte, 16)
	copy(b, id[:])
	return b
}

// decodeUUID parses a 16-byte value back into a UUID.
func decodeUUID(data []byte) (uuid.UUID, error) {
	id, err := uuid.FromBytes(data)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to decode uuid value: %w", err)
	}
	return id, nil
}
