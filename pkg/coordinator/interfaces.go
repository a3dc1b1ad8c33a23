package coordinator

import (
	"context"
	"io"
)

// NodeClient is one connected session on a storage node. Paths are logical
// tree paths; the client maps them under its storage root. Implementations
// are not safe for concurrent use, which is fine here because the
// coordinator never shares a session between operations.
//
// storagenode.Client implements this set over FTP; tests substitute
// in-memory fakes.
type NodeClient interface {
	CreateFile(dir, name string) error
	WriteFile(dir, name string, src io.Reader) error
	ReadFile(dir, name string, sink io.Writer) error
	DeleteFile(dir, name string) error
	FileSize(dir, name string) (int64, error)
	CopyFile(dir, name, newDir, newName string) error
	MoveFile(dir, name, newDir, newName string) error
	MakeDir(dir, name string) error
	DeleteDir(dir, name string) error
	Clear() error
	Close() error
}

// NodeDialer opens a session on the storage node at host.
type NodeDialer interface {
	Dial(ctx context.Context, host string) (NodeClient, error)
}
