package coordinator_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/driftfs/driftfs/pkg/coordinator"
	"github.com/driftfs/driftfs/pkg/metadata"
	"github.com/driftfs/driftfs/pkg/metadata/store/memory"
	"github.com/driftfs/driftfs/pkg/payload"
	"github.com/driftfs/driftfs/pkg/registry"
)

// fakeProber marks a fixed set of hosts as live.
type fakeProber struct {
	live  map[string]bool
	space map[string]uint64
}

func (p *fakeProber) Ping(_ context.Context, host string) bool {
	return p.live[host]
}

func (p *fakeProber) SpaceAvailable(_ context.Context, host string) uint64 {
	return p.space[host]
}

// fakeNode is an in-memory storage node that records every call it serves.
type fakeNode struct {
	mu     sync.Mutex
	files  map[string][]byte
	dirs   []string
	calls  []string
	fail   map[string]error
	closed int
}

func newFakeNode() *fakeNode {
	return &fakeNode{
		files: make(map[string][]byte),
		fail:  make(map[string]error),
	}
}

func nodeKey(dir, name string) string {
	return dir + "|" + name
}

func (n *fakeNode) record(op, dir, name string) error {
	n.calls = append(n.calls, fmt.Sprintf("%s %s", op, nodeKey(dir, name)))
	return n.fail[op]
}

func (n *fakeNode) CreateFile(dir, name string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if err := n.record("create", dir, name); err != nil {
		return err
	}
	n.files[nodeKey(dir, name)] = []byte{}
	return nil
}

func (n *fakeNode) WriteFile(dir, name string, src io.Reader) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	// Consume the stream before failing, like a transfer that dies at the
	// far end after the bytes left.
	data, err := io.ReadAll(src)
	if err != nil {
		return err
	}
	if err := n.record("write", dir, name); err != nil {
		return err
	}
	n.files[nodeKey(dir, name)] = data
	return nil
}

func (n *fakeNode) ReadFile(dir, name string, sink io.Writer) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if err := n.record("read", dir, name); err != nil {
		return err
	}
	data, ok := n.files[nodeKey(dir, name)]
	if !ok {
		return errors.New("no such file")
	}
	_, err := sink.Write(data)
	return err
}

func (n *fakeNode) DeleteFile(dir, name string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if err := n.record("delete", dir, name); err != nil {
		return err
	}
	delete(n.files, nodeKey(dir, name))
	return nil
}

func (n *fakeNode) FileSize(dir, name string) (int64, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if err := n.record("size", dir, name); err != nil {
		return 0, err
	}
	data, ok := n.files[nodeKey(dir, name)]
	if !ok {
		return 0, errors.New("no such file")
	}
	return int64(len(data)), nil
}

func (n *fakeNode) CopyFile(dir, name, newDir, newName string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if err := n.record("copy", dir, name); err != nil {
		return err
	}
	if newName == "" {
		newName = name
	}
	data, ok := n.files[nodeKey(dir, name)]
	if !ok {
		return errors.New("no such file")
	}
	n.files[nodeKey(newDir, newName)] = append([]byte(nil), data...)
	return nil
}

func (n *fakeNode) MoveFile(dir, name, newDir, newName string) error {
	if err := n.CopyFile(dir, name, newDir, newName); err != nil {
		return err
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	delete(n.files, nodeKey(dir, name))
	return nil
}

func (n *fakeNode) MakeDir(dir, name string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if err := n.record("makedir", dir, name); err != nil {
		return err
	}
	n.dirs = append(n.dirs, nodeKey(dir, name))
	return nil
}

func (n *fakeNode) DeleteDir(dir, name string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.record("deletedir", dir, name)
}

func (n *fakeNode) Clear() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, "clear")
	if err := n.fail["clear"]; err != nil {
		return err
	}
	n.files = make(map[string][]byte)
	n.dirs = nil
	return nil
}

func (n *fakeNode) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.closed++
	return nil
}

func (n *fakeNode) content(dir, name string) ([]byte, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	data, ok := n.files[nodeKey(dir, name)]
	return data, ok
}

func (n *fakeNode) callLog() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.calls...)
}

// fakeCluster dials fakeNodes by host, creating them on first contact.
type fakeCluster struct {
	mu      sync.Mutex
	nodes   map[string]*fakeNode
	dialErr map[string]error
	dials   map[string]int
}

func newFakeCluster(hosts ...string) *fakeCluster {
	c := &fakeCluster{
		nodes:   make(map[string]*fakeNode),
		dialErr: make(map[string]error),
		dials:   make(map[string]int),
	}
	for _, host := range hosts {
		c.nodes[host] = newFakeNode()
	}
	return c
}

func (f *fakeCluster) Dial(_ context.Context, host string) (coordinator.NodeClient, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.dialErr[host]; err != nil {
		return nil, err
	}
	node, ok := f.nodes[host]
	if !ok {
		node = newFakeNode()
		f.nodes[host] = node
	}
	f.dials[host]++
	return node, nil
}

func (f *fakeCluster) node(host string) *fakeNode {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.nodes[host]
}

type fixture struct {
	tree    *metadata.DirectoryTree
	cluster *fakeCluster
	prober  *fakeProber
	reg     *registry.Registry
	coord   *coordinator.Coordinator
}

// newFixture builds a coordinator over a memory tree and the given hosts,
// all registered and live.
func newFixture(t *testing.T, hosts ...string) *fixture {
	t.Helper()

	tree, err := metadata.NewDirectoryTree(t.Context(), memory.NewStore())
	require.NoError(t, err)

	prober := &fakeProber{live: make(map[string]bool), space: make(map[string]uint64)}
	reg := registry.NewRegistry(prober)
	cluster := newFakeCluster(hosts...)
	for _, host := range hosts {
		reg.Add(host)
		prober.live[host] = true
	}

	return &fixture{
		tree:    tree,
		cluster: cluster,
		prober:  prober,
		reg:     reg,
		coord:   coordinator.New(tree, reg, cluster, nil),
	}
}

func (f *fixture) servers(t *testing.T, path, name string) []string {
	t.Helper()
	servers, err := f.tree.GetFileServers(t.Context(), path, name)
	require.NoError(t, err)
	return servers
}

func TestCreateFilePlacement(t *testing.T) {
	t.Run("NoLiveServers", func(t *testing.T) {
		f := newFixture(t, "10.0.0.1")
		f.prober.live["10.0.0.1"] = false

		err := f.coord.CreateFile(t.Context(), "/", "a.txt")
		require.ErrorIs(t, err, coordinator.ErrNoServersAvailable)

		entries, err := f.tree.ReadDir(t.Context(), "/")
		require.NoError(t, err)
		assert.Empty(t, entries, "metadata must stay untouched without placement")
	})

	t.Run("AllNodesWhenTwoOrFewer", func(t *testing.T) {
		f := newFixture(t, "10.0.0.1", "10.0.0.2")

		require.NoError(t, f.coord.CreateFile(t.Context(), "/", "a.txt"))

		assert.ElementsMatch(t, []string{"10.0.0.1", "10.0.0.2"}, f.servers(t, "/", "a.txt"))
		for _, host := range []string{"10.0.0.1", "10.0.0.2"} {
			data, ok := f.cluster.node(host).content("/", "a.txt")
			require.True(t, ok, "node %s missing the file", host)
			assert.Empty(t, data)
		}
	})

	t.Run("SamplesTwoWhenMore", func(t *testing.T) {
		hosts := []string{"10.0.0.1", "10.0.0.2", "10.0.0.3", "10.0.0.4", "10.0.0.5"}
		f := newFixture(t, hosts...)

		seen := make(map[string]bool)
		for i := range 40 {
			name := fmt.Sprintf("f%d.txt", i)
			require.NoError(t, f.coord.CreateFile(t.Context(), "/", name))

			servers := f.servers(t, "/", name)
			require.Len(t, servers, 2)
			require.NotEqual(t, servers[0], servers[1])
			for _, host := range servers {
				assert.Contains(t, hosts, host)
				seen[host] = true
			}
		}
		assert.GreaterOrEqual(t, len(seen), 3, "sampling should spread across the cluster")
	})

	t.Run("DuplicateNameSkipsFanOut", func(t *testing.T) {
		f := newFixture(t, "10.0.0.1")

		require.NoError(t, f.coord.CreateFile(t.Context(), "/", "a.txt"))
		err := f.coord.CreateFile(t.Context(), "/", "a.txt")
		require.Error(t, err)
		assert.True(t, metadata.IsInvalidPathError(err))

		node := f.cluster.node("10.0.0.1")
		assert.Equal(t, []string{"create /|a.txt"}, node.callLog())
	})

	t.Run("SessionsAreClosed", func(t *testing.T) {
		f := newFixture(t, "10.0.0.1")

		require.NoError(t, f.coord.CreateFile(t.Context(), "/", "a.txt"))

		assert.Equal(t, f.cluster.dials["10.0.0.1"], f.cluster.node("10.0.0.1").closed)
	})
}

func TestWriteFile(t *testing.T) {
	content := []byte("drift drift drift")

	t.Run("ReplicatesContent", func(t *testing.T) {
		f := newFixture(t, "10.0.0.1", "10.0.0.2")

		err := f.coord.WriteFile(t.Context(), "/", "a.txt", payload.NewBytes(content))
		require.NoError(t, err)

		for _, host := range []string{"10.0.0.1", "10.0.0.2"} {
			data, ok := f.cluster.node(host).content("/", "a.txt")
			require.True(t, ok, "node %s missing the file", host)
			assert.Equal(t, content, data, "node %s got different bytes", host)
		}
	})

	t.Run("RewindsAfterFailedUpload", func(t *testing.T) {
		f := newFixture(t, "10.0.0.1", "10.0.0.2")
		f.cluster.node("10.0.0.1").fail["write"] = errors.New("disk full")

		err := f.coord.WriteFile(t.Context(), "/", "a.txt", payload.NewBytes(content))
		require.NoError(t, err, "a single failed replica is tolerated")

		data, ok := f.cluster.node("10.0.0.2").content("/", "a.txt")
		require.True(t, ok)
		assert.Equal(t, content, data, "second replica must see the stream from the start")
	})

	t.Run("NoLiveServers", func(t *testing.T) {
		f := newFixture(t)

		err := f.coord.WriteFile(t.Context(), "/", "a.txt", payload.NewBytes(content))
		require.ErrorIs(t, err, coordinator.ErrNoServersAvailable)
	})
}

func TestReadFile(t *testing.T) {
	content := []byte("some payload bytes")

	write := func(t *testing.T, f *fixture) {
		t.Helper()
		require.NoError(t, f.coord.WriteFile(t.Context(), "/", "a.txt", payload.NewBytes(content)))
	}

	readInto := func(t *testing.T, f *fixture) ([]byte, error) {
		t.Helper()
		sink, err := payload.NewSpool(t.TempDir())
		require.NoError(t, err)
		t.Cleanup(func() { _ = sink.Close() })

		if err := f.coord.ReadFile(t.Context(), "/", "a.txt", sink); err != nil {
			return nil, err
		}
		data, err := io.ReadAll(sink)
		require.NoError(t, err)
		return data, nil
	}

	t.Run("ServesFromPrimary", func(t *testing.T) {
		f := newFixture(t, "10.0.0.1", "10.0.0.2")
		write(t, f)

		data, err := readInto(t, f)
		require.NoError(t, err)
		assert.Equal(t, content, data, "sink must be rewound and hold the payload")
	})

	t.Run("FallsThroughDeadReplica", func(t *testing.T) {
		f := newFixture(t, "10.0.0.1", "10.0.0.2")
		write(t, f)
		f.cluster.dialErr["10.0.0.1"] = errors.New("connection refused")

		data, err := readInto(t, f)
		require.NoError(t, err)
		assert.Equal(t, content, data)
	})

	t.Run("AllReplicasDead", func(t *testing.T) {
		f := newFixture(t, "10.0.0.1", "10.0.0.2")
		write(t, f)
		f.cluster.dialErr["10.0.0.1"] = errors.New("connection refused")
		f.cluster.dialErr["10.0.0.2"] = errors.New("connection reset")

		_, err := readInto(t, f)
		require.Error(t, err)
		assert.ErrorContains(t, err, "connection reset", "the last replica's error wins")
	})

	t.Run("UnknownFile", func(t *testing.T) {
		f := newFixture(t, "10.0.0.1")

		_, err := readInto(t, f)
		require.Error(t, err)
		assert.True(t, metadata.IsNotFoundError(err))
	})
}

func TestFileSize(t *testing.T) {
	content := []byte("123456789")

	t.Run("FirstReplicaAnswers", func(t *testing.T) {
		f := newFixture(t, "10.0.0.1", "10.0.0.2")
		require.NoError(t, f.coord.WriteFile(t.Context(), "/", "a.txt", payload.NewBytes(content)))

		size, err := f.coord.FileSize(t.Context(), "/", "a.txt")
		require.NoError(t, err)
		assert.Equal(t, int64(len(content)), size)
	})

	t.Run("FallsThrough", func(t *testing.T) {
		f := newFixture(t, "10.0.0.1", "10.0.0.2")
		require.NoError(t, f.coord.WriteFile(t.Context(), "/", "a.txt", payload.NewBytes(content)))
		f.cluster.dialErr["10.0.0.1"] = errors.New("connection refused")

		size, err := f.coord.FileSize(t.Context(), "/", "a.txt")
		require.NoError(t, err)
		assert.Equal(t, int64(len(content)), size)
	})

	t.Run("AllReplicasFailMeansUnknown", func(t *testing.T) {
		f := newFixture(t, "10.0.0.1", "10.0.0.2")
		require.NoError(t, f.coord.WriteFile(t.Context(), "/", "a.txt", payload.NewBytes(content)))
		f.cluster.dialErr["10.0.0.1"] = errors.New("connection refused")
		f.cluster.dialErr["10.0.0.2"] = errors.New("connection refused")

		size, err := f.coord.FileSize(t.Context(), "/", "a.txt")
		require.NoError(t, err)
		assert.Equal(t, int64(-1), size)
	})

	t.Run("UnknownFile", func(t *testing.T) {
		f := newFixture(t, "10.0.0.1")

		_, err := f.coord.FileSize(t.Context(), "/", "missing.txt")
		require.Error(t, err)
		assert.True(t, metadata.IsNotFoundError(err))
	})
}

func TestDeleteFile(t *testing.T) {
	content := []byte("to be deleted")

	t.Run("RemovesMetadataAndReplicas", func(t *testing.T) {
		f := newFixture(t, "10.0.0.1", "10.0.0.2")
		require.NoError(t, f.coord.WriteFile(t.Context(), "/", "a.txt", payload.NewBytes(content)))

		require.NoError(t, f.coord.DeleteFile(t.Context(), "/", "a.txt"))

		_, err := f.tree.GetFileServers(t.Context(), "/", "a.txt")
		assert.True(t, metadata.IsNotFoundError(err))
		for _, host := range []string{"10.0.0.1", "10.0.0.2"} {
			_, ok := f.cluster.node(host).content("/", "a.txt")
			assert.False(t, ok, "node %s still holds the payload", host)
		}
	})

	t.Run("DeadReplicaDoesNotBlock", func(t *testing.T) {
		f := newFixture(t, "10.0.0.1", "10.0.0.2")
		require.NoError(t, f.coord.WriteFile(t.Context(), "/", "a.txt", payload.NewBytes(content)))
		f.cluster.dialErr["10.0.0.1"] = errors.New("connection refused")

		require.NoError(t, f.coord.DeleteFile(t.Context(), "/", "a.txt"))

		_, err := f.tree.GetFileServers(t.Context(), "/", "a.txt")
		assert.True(t, metadata.IsNotFoundError(err), "metadata wins even when a node is down")
		_, ok := f.cluster.node("10.0.0.2").content("/", "a.txt")
		assert.False(t, ok)
	})
}

func TestCopyFile(t *testing.T) {
	content := []byte("copy me")

	f := newFixture(t, "10.0.0.1", "10.0.0.2")
	require.NoError(t, f.coord.MakeDir(t.Context(), "/", "backup"))
	require.NoError(t, f.coord.WriteFile(t.Context(), "/", "a.txt", payload.NewBytes(content)))

	require.NoError(t, f.coord.CopyFile(t.Context(), "/", "a.txt", "/backup", ""))

	assert.ElementsMatch(t, f.servers(t, "/", "a.txt"), f.servers(t, "/backup", "a.txt"),
		"the copy inherits the source placement")
	for _, host := range []string{"10.0.0.1", "10.0.0.2"} {
		data, ok := f.cluster.node(host).content("/backup", "a.txt")
		require.True(t, ok, "node %s missing the copy", host)
		assert.Equal(t, content, data)
	}
	_, ok := f.cluster.node("10.0.0.1").content("/", "a.txt")
	assert.True(t, ok, "the source must survive a copy")
}

func TestMoveFile(t *testing.T) {
	content := []byte("move me")

	f := newFixture(t, "10.0.0.1", "10.0.0.2")
	require.NoError(t, f.coord.MakeDir(t.Context(), "/", "archive"))
	require.NoError(t, f.coord.WriteFile(t.Context(), "/", "a.txt", payload.NewBytes(content)))

	require.NoError(t, f.coord.MoveFile(t.Context(), "/", "a.txt", "/archive", "b.txt"))

	_, err := f.tree.GetFileServers(t.Context(), "/", "a.txt")
	assert.True(t, metadata.IsNotFoundError(err), "the source entry must be gone")
	for _, host := range []string{"10.0.0.1", "10.0.0.2"} {
		data, ok := f.cluster.node(host).content("/archive", "b.txt")
		require.True(t, ok, "node %s missing the moved file", host)
		assert.Equal(t, content, data)
		_, ok = f.cluster.node(host).content("/", "a.txt")
		assert.False(t, ok, "node %s still holds the source", host)
	}
}

func TestReadDirStaysOffTheNodes(t *testing.T) {
	f := newFixture(t, "10.0.0.1")
	require.NoError(t, f.coord.CreateFile(t.Context(), "/", "a.txt"))
	before := len(f.cluster.node("10.0.0.1").callLog())

	entries, err := f.coord.ReadDir(t.Context(), "/")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "a.txt", entries[0].Name)

	assert.Len(t, f.cluster.node("10.0.0.1").callLog(), before, "listing must not touch storage nodes")
}

func TestMakeDirBroadcasts(t *testing.T) {
	hosts := []string{"10.0.0.1", "10.0.0.2", "10.0.0.3"}
	f := newFixture(t, hosts...)
	// Liveness gates placement, not broadcasts.
	f.prober.live["10.0.0.3"] = false

	require.NoError(t, f.coord.MakeDir(t.Context(), "/", "docs"))

	for _, host := range hosts {
		assert.Contains(t, f.cluster.node(host).callLog(), "makedir /|docs", "host %s missed the broadcast", host)
	}

	t.Run("MetadataFailureSkipsBroadcast", func(t *testing.T) {
		err := f.coord.MakeDir(t.Context(), "/", "docs")
		require.Error(t, err)
		for _, host := range hosts {
			assert.Equal(t, 1, countCalls(f.cluster.node(host).callLog(), "makedir /|docs"), "host %s", host)
		}
	})
}

func TestDeleteDirBroadcasts(t *testing.T) {
	hosts := []string{"10.0.0.1", "10.0.0.2"}
	f := newFixture(t, hosts...)
	require.NoError(t, f.coord.MakeDir(t.Context(), "/", "docs"))

	require.NoError(t, f.coord.DeleteDir(t.Context(), "/", "docs"))

	entries, err := f.coord.ReadDir(t.Context(), "/")
	require.NoError(t, err)
	assert.Empty(t, entries)
	for _, host := range hosts {
		assert.Contains(t, f.cluster.node(host).callLog(), "deletedir /|docs", "host %s missed the broadcast", host)
	}
}

func TestInit(t *testing.T) {
	f := newFixture(t, "10.0.0.1", "10.0.0.2")
	require.NoError(t, f.coord.MakeDir(t.Context(), "/", "docs"))
	require.NoError(t, f.coord.WriteFile(t.Context(), "/docs", "a.txt", payload.NewBytes([]byte("x"))))

	require.NoError(t, f.coord.Init(t.Context()))

	entries, err := f.coord.ReadDir(t.Context(), "/")
	require.NoError(t, err)
	assert.Empty(t, entries, "init must empty the namespace")
	for _, host := range []string{"10.0.0.1", "10.0.0.2"} {
		node := f.cluster.node(host)
		assert.Contains(t, node.callLog(), "clear", "host %s was not cleared", host)
		_, ok := node.content("/docs", "a.txt")
		assert.False(t, ok)
	}
}

func TestAddStorageServer(t *testing.T) {
	skeleton := func(t *testing.T, f *fixture) {
		t.Helper()
		require.NoError(t, f.coord.MakeDir(t.Context(), "/", "a"))
		require.NoError(t, f.coord.MakeDir(t.Context(), "/a", "b"))
		require.NoError(t, f.coord.MakeDir(t.Context(), "/", "c"))
	}

	t.Run("BootstrapReplaysSkeleton", func(t *testing.T) {
		f := newFixture(t)
		skeleton(t, f)

		require.NoError(t, f.coord.AddStorageServer(t.Context(), "10.0.0.9"))

		assert.Equal(t, 1, f.reg.Count())
		node := f.cluster.node("10.0.0.9")
		require.NotNil(t, node)
		assert.Equal(t, []string{"clear", "makedir /|a", "makedir /a|b", "makedir /|c"}, node.callLog(),
			"bootstrap clears first, then replays parents before children")
	})

	t.Run("ReRegistrationRepeatsBootstrap", func(t *testing.T) {
		f := newFixture(t)
		skeleton(t, f)

		require.NoError(t, f.coord.AddStorageServer(t.Context(), "10.0.0.9"))
		require.NoError(t, f.coord.AddStorageServer(t.Context(), "10.0.0.9"))

		assert.Equal(t, 1, f.reg.Count(), "re-registration must not duplicate the host")
		assert.Equal(t, 2, countCalls(f.cluster.node("10.0.0.9").callLog(), "clear"))
	})

	t.Run("BootstrapFailureStillRegisters", func(t *testing.T) {
		f := newFixture(t)
		f.cluster.dialErr["10.0.0.9"] = errors.New("connection refused")

		err := f.coord.AddStorageServer(t.Context(), "10.0.0.9")
		require.Error(t, err)
		assert.Equal(t, 1, f.reg.Count(), "the host stays registered for the next replay")
	})
}

func TestNodesStatus(t *testing.T) {
	f := newFixture(t, "10.0.0.1", "10.0.0.2")
	f.prober.space["10.0.0.1"] = 42
	f.prober.space["10.0.0.2"] = 7
	f.prober.live["10.0.0.2"] = false

	statuses := f.coord.NodesStatus(t.Context())

	require.Len(t, statuses, 2)
	assert.Equal(t, coordinator.NodeStatus{Host: "10.0.0.1", Live: true, Space: 42}, statuses[0])
	assert.Equal(t, coordinator.NodeStatus{Host: "10.0.0.2", Live: false, Space: 0}, statuses[1],
		"dead nodes report no space")
}

func TestAvailableSpace(t *testing.T) {
	f := newFixture(t, "10.0.0.1", "10.0.0.2", "10.0.0.3")
	f.prober.space["10.0.0.1"] = 10
	f.prober.space["10.0.0.2"] = 7
	f.prober.space["10.0.0.3"] = 100
	f.prober.live["10.0.0.3"] = false

	assert.Equal(t, uint64(8), f.coord.AvailableSpace(t.Context()),
		"space is summed over live nodes and halved")

	t.Run("NoLiveNodes", func(t *testing.T) {
		f := newFixture(t)
		assert.Zero(t, f.coord.AvailableSpace(t.Context()))
	})
}

func countCalls(calls []string, want string) int {
	n := 0
	for _, call := range calls {
		if call == want {
			n++
		}
	}
	return n
}
