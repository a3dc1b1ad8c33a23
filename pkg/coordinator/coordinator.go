// Package coordinator keeps the storage nodes following the metadata tree.
//
// Every mutating command updates the directory tree first and then fans the
// change out to storage nodes, best effort: a node that misses an update is
// logged and skipped, and converges again the next time it registers. Reads
// fall back through a file's replicas in order, so a stale or dead node
// costs a retry instead of an error.
package coordinator

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/driftfs/driftfs/internal/logger"
	"github.com/driftfs/driftfs/internal/telemetry"
	"github.com/driftfs/driftfs/pkg/metadata"
	"github.com/driftfs/driftfs/pkg/metrics"
	"github.com/driftfs/driftfs/pkg/payload"
	"github.com/driftfs/driftfs/pkg/registry"
)

// ReplicaCount is how many storage nodes receive a new file when more are
// available. With fewer live nodes the file lands on all of them.
const ReplicaCount = 2

// ErrNoServersAvailable is returned by operations that need at least one
// live storage node when none answers the liveness probe.
var ErrNoServersAvailable = errors.New("no storage servers available")

// Coordinator orchestrates the directory tree and the storage nodes.
//
// One instance is created at startup and shared by the whole API; all
// methods are safe for concurrent use as long as the tree's store is.
type Coordinator struct {
	tree     *metadata.DirectoryTree
	registry *registry.Registry
	dialer   NodeDialer
	metrics  metrics.CoordinatorMetrics

	mu  sync.Mutex
	rng *rand.Rand
}

// New creates a Coordinator on top of the given tree and node registry.
//
// metrics may be nil to disable instrumentation.
func New(tree *metadata.DirectoryTree, reg *registry.Registry, dialer NodeDialer, m metrics.CoordinatorMetrics) *Coordinator {
	return &Coordinator{
		tree:     tree,
		registry: reg,
		dialer:   dialer,
		metrics:  m,
		rng:      rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
}

// chooseServers picks the replica set for a new file: every live node when
// at most ReplicaCount are up, otherwise a uniform sample of exactly
// ReplicaCount distinct hosts.
func (c *Coordinator) chooseServers(ctx context.Context) ([]string, error) {
	live := c.registry.Live(ctx)
	if c.metrics != nil {
		c.metrics.SetLiveNodes(len(live))
	}

	if len(live) == 0 {
		return nil, ErrNoServersAvailable
	}
	if len(live) <= ReplicaCount {
		return live, nil
	}

	c.mu.Lock()
	perm := c.rng.Perm(len(live))
	c.mu.Unlock()

	chosen := make([]string, 0, ReplicaCount)
	for _, i := range perm[:ReplicaCount] {
		chosen = append(chosen, live[i])
	}
	return chosen, nil
}

// withNode dials host, runs fn on a fresh session and closes it. Every
// visit is traced and counted under op.
func (c *Coordinator) withNode(ctx context.Context, op, host string, fn func(NodeClient) error) error {
	ctx, span := telemetry.StartNodeSpan(ctx, op, host)
	defer span.End()

	err := func() error {
		client, err := c.dialer.Dial(ctx, host)
		if err != nil {
			return err
		}
		defer func() {
			if err := client.Close(); err != nil {
				logger.DebugCtx(ctx, "Failed to close node session", "host", host, "error", err)
			}
		}()
		return fn(client)
	}()

	if c.metrics != nil {
		c.metrics.RecordNodeOperation(op, host, err == nil)
	}
	if err != nil {
		telemetry.RecordError(ctx, err)
	}
	return err
}

// broadcast runs fn on every registered host, live or not, logging failures.
func (c *Coordinator) broadcast(ctx context.Context, op string, fn func(NodeClient) error) {
	for _, host := range c.registry.Hosts() {
		if err := c.withNode(ctx, op, host, fn); err != nil {
			logger.WarnCtx(ctx, "Storage node missed broadcast", "op", op, "host", host, "error", err)
		}
	}
}

// Init wipes the namespace and clears every registered storage node. Node
// failures are logged and skipped: a node that misses the wipe is cleared
// again when it re-registers.
func (c *Coordinator) Init(ctx context.Context) error {
	if err := c.tree.Clear(ctx); err != nil {
		return err
	}

	c.broadcast(ctx, "clear", func(client NodeClient) error {
		return client.Clear()
	})
	return nil
}

// CreateFile registers an empty file in the tree and creates its payload on
// each chosen replica. Per-node failures are logged, never rolled back; the
// replica shows up again as a read fallback at worst.
func (c *Coordinator) CreateFile(ctx context.Context, path, name string) error {
	servers, err := c.chooseServers(ctx)
	if err != nil {
		return err
	}
	if err := c.tree.CreateFile(ctx, path, name, servers); err != nil {
		return err
	}

	for _, host := range servers {
		err := c.withNode(ctx, "create", host, func(client NodeClient) error {
			return client.CreateFile(path, name)
		})
		if err != nil {
			logger.WarnCtx(ctx, "Failed to create file on storage node", "host", host, "path", path, "name", name, "error", err)
		}
	}
	return nil
}

// WriteFile registers the file and uploads src to each chosen replica. The
// source is rewound after every attempt so each replica receives the stream
// from the start regardless of how far the previous transfer got.
func (c *Coordinator) WriteFile(ctx context.Context, path, name string, src payload.Source) error {
	servers, err := c.chooseServers(ctx)
	if err != nil {
		return err
	}
	if err := c.tree.CreateFile(ctx, path, name, servers); err != nil {
		return err
	}

	for _, host := range servers {
		err := c.withNode(ctx, "write", host, func(client NodeClient) error {
			return client.WriteFile(path, name, src)
		})
		if err != nil {
			logger.WarnCtx(ctx, "Failed to write file to storage node", "host", host, "path", path, "name", name, "error", err)
		}
		if err := src.Rewind(); err != nil {
			return fmt.Errorf("rewind payload: %w", err)
		}
	}
	return nil
}

// ReadFile streams the file payload into sink from the first replica able
// to serve it, trying replicas in metadata order. On success the sink is
// rewound so the caller can stream it straight back out. When every replica
// fails the last error is returned and the sink may hold a partial
// transfer.
func (c *Coordinator) ReadFile(ctx context.Context, path, name string, sink payload.Sink) error {
	servers, err := c.tree.GetFileServers(ctx, path, name)
	if err != nil {
		return err
	}
	if len(servers) == 0 {
		return ErrNoServersAvailable
	}

	var lastErr error
	for _, host := range servers {
		err := c.withNode(ctx, "read", host, func(client NodeClient) error {
			return client.ReadFile(path, name, sink)
		})
		if err == nil {
			return sink.Rewind()
		}
		logger.WarnCtx(ctx, "Failed to read file from storage node", "host", host, "path", path, "name", name, "error", err)
		lastErr = err
	}
	return lastErr
}

// DeleteFile removes the file from the tree and best-effort from each
// replica. An orphaned payload on an unreachable node is reclaimed by the
// clear step of its next registration.
func (c *Coordinator) DeleteFile(ctx context.Context, path, name string) error {
	servers, err := c.tree.GetFileServers(ctx, path, name)
	if err != nil {
		return err
	}
	if err := c.tree.DeleteFile(ctx, path, name); err != nil {
		return err
	}

	for _, host := range servers {
		err := c.withNode(ctx, "delete", host, func(client NodeClient) error {
			return client.DeleteFile(path, name)
		})
		if err != nil {
			logger.WarnCtx(ctx, "Failed to delete file on storage node", "host", host, "path", path, "name", name, "error", err)
		}
	}
	return nil
}

// FileSize reports the size of the file in bytes, asking replicas in order
// and returning the first answer. When no replica answers, the size is
// unknown and -1 is reported with a nil error.
func (c *Coordinator) FileSize(ctx context.Context, path, name string) (int64, error) {
	servers, err := c.tree.GetFileServers(ctx, path, name)
	if err != nil {
		return 0, err
	}

	for _, host := range servers {
		var size int64
		err := c.withNode(ctx, "size", host, func(client NodeClient) error {
			var err error
			size, err = client.FileSize(path, name)
			return err
		})
		if err == nil {
			return size, nil
		}
		logger.WarnCtx(ctx, "Failed to stat file on storage node", "host", host, "path", path, "name", name, "error", err)
	}
	return -1, nil
}

// CopyFile duplicates the file under a new path. Each source replica copies
// its own bytes server side, so the copy inherits the source's placement.
// An empty newName keeps the original name.
func (c *Coordinator) CopyFile(ctx context.Context, path, name, newPath, newName string) error {
	servers, err := c.tree.GetFileServers(ctx, path, name)
	if err != nil {
		return err
	}
	if err := c.tree.CopyFile(ctx, path, name, newPath, newName); err != nil {
		return err
	}

	for _, host := range servers {
		err := c.withNode(ctx, "copy", host, func(client NodeClient) error {
			return client.CopyFile(path, name, newPath, newName)
		})
		if err != nil {
			logger.WarnCtx(ctx, "Failed to copy file on storage node", "host", host, "path", path, "name", name, "error", err)
		}
	}
	return nil
}

// MoveFile renames the file across directories. The metadata move is
// atomic per store operation; node-side moves follow best effort.
func (c *Coordinator) MoveFile(ctx context.Context, path, name, newPath, newName string) error {
	servers, err := c.tree.GetFileServers(ctx, path, name)
	if err != nil {
		return err
	}
	if err := c.tree.MoveFile(ctx, path, name, newPath, newName); err != nil {
		return err
	}

	for _, host := range servers {
		err := c.withNode(ctx, "move", host, func(client NodeClient) error {
			return client.MoveFile(path, name, newPath, newName)
		})
		if err != nil {
			logger.WarnCtx(ctx, "Failed to move file on storage node", "host", host, "path", path, "name", name, "error", err)
		}
	}
	return nil
}

// ReadDir lists the directory from metadata alone; storage nodes are never
// consulted.
func (c *Coordinator) ReadDir(ctx context.Context, path string) ([]metadata.Entry, error) {
	return c.tree.ReadDir(ctx, path)
}

// MakeDir creates the directory in the tree and broadcasts it to every
// registered node so the directory skeleton stays aligned everywhere.
func (c *Coordinator) MakeDir(ctx context.Context, path, name string) error {
	if err := c.tree.MakeDir(ctx, path, name); err != nil {
		return err
	}

	c.broadcast(ctx, "makedir", func(client NodeClient) error {
		return client.MakeDir(path, name)
	})
	return nil
}

// DeleteDir removes the directory subtree from the tree and broadcasts the
// removal to every registered node.
func (c *Coordinator) DeleteDir(ctx context.Context, path, name string) error {
	if err := c.tree.DeleteDir(ctx, path, name); err != nil {
		return err
	}

	c.broadcast(ctx, "deletedir", func(client NodeClient) error {
		return client.DeleteDir(path, name)
	})
	return nil
}

// AddStorageServer registers host and bootstraps it: the node is cleared
// and the directory skeleton replayed onto it, parents first, so every
// tree path resolves on the node afterwards. Re-registration repeats the
// bootstrap, which makes node restarts self-healing.
func (c *Coordinator) AddStorageServer(ctx context.Context, host string) error {
	c.registry.Add(host)
	if c.metrics != nil {
		c.metrics.SetRegisteredNodes(c.registry.Count())
	}

	dirs, err := c.tree.AsList(ctx)
	if err != nil {
		return err
	}

	err = c.withNode(ctx, "bootstrap", host, func(client NodeClient) error {
		if err := client.Clear(); err != nil {
			return err
		}
		for _, dir := range dirs {
			if err := client.MakeDir(dir.Path, dir.Dirname); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		logger.WarnCtx(ctx, "Failed to bootstrap storage node", "host", host, "error", err)
		return err
	}

	logger.InfoCtx(ctx, "Storage node registered", "host", host, "dirs", len(dirs))
	return nil
}

// NodeStatus describes one registered storage node for health reporting.
type NodeStatus struct {
	Host  string `json:"host"`
	Live  bool   `json:"live"`
	Space uint64 `json:"space"`
}

// NodesStatus probes every registered node and reports liveness and free
// space, in registration order. Space is only queried on live nodes.
func (c *Coordinator) NodesStatus(ctx context.Context) []NodeStatus {
	live := make(map[string]bool)
	for _, host := range c.registry.Live(ctx) {
		live[host] = true
	}

	hosts := c.registry.Hosts()
	statuses := make([]NodeStatus, 0, len(hosts))
	for _, host := range hosts {
		status := NodeStatus{Host: host, Live: live[host]}
		if status.Live {
			status.Space = c.registry.SpaceAvailable(ctx, host)
		}
		statuses = append(statuses, status)
	}
	return statuses
}

// AvailableSpace reports usable cluster capacity in bytes: the free space
// summed over live nodes, halved because every file is stored twice.
func (c *Coordinator) AvailableSpace(ctx context.Context) uint64 {
	live := c.registry.Live(ctx)
	if c.metrics != nil {
		c.metrics.SetLiveNodes(len(live))
	}

	var total uint64
	for _, host := range live {
		total += c.registry.SpaceAvailable(ctx, host)
	}

	usable := total / ReplicaCount
	if c.metrics != nil {
		c.metrics.SetClusterFreeSpace(usable)
	}
	return usable
}
