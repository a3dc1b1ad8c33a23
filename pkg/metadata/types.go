package metadata

import "github.com/google/uuid"

// NodeType distinguishes the three kinds of records in the directory tree.
type NodeType string

const (
	// NodeTypeRoot marks the single root record. It carries no name and no
	// parent and survives Clear.
	NodeTypeRoot NodeType = "root"

	// NodeTypeDir is an interior directory node.
	NodeTypeDir NodeType = "dir"

	// NodeTypeFile is a leaf carrying the replica set of a stored file.
	NodeTypeFile NodeType = "file"
)

// Node is one record of the persistent directory tree. Files and
// directories hang off their parent by ID; only file nodes carry Servers.
type Node struct {
	ID      uuid.UUID `json:"id"`
	Type    NodeType  `json:"type"`
	Name    string    `json:"name,omitempty"`
	Parent  uuid.UUID `json:"parent,omitempty"`
	Servers []string  `json:"servers,omitempty"`
}

// Clone returns a deep copy of the node.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	clone := *n
	if n.Servers != nil {
		clone.Servers = append([]string(nil), n.Servers...)
	}
	return &clone
}

// Entry is one row of a directory listing.
type Entry struct {
	Type NodeType `json:"type"`
	Name string   `json:"name"`
}

// DirEntry names one directory of the tree skeleton as a (parent path,
// dirname) pair. Replaying MakeDir(Path, Dirname) over an AsList result in
// order recreates the skeleton, parents first.
type DirEntry struct {
	Path    string `json:"path"`
	Dirname string `json:"dirname"`
}
