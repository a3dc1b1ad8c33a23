package badger

import (
	"bytes"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/driftfs/driftfs/pkg/metadata"
)

func TestKeyLayout(t *testing.T) {
	parent := uuid.MustParse("11111111-2222-3333-4444-555555555555")
	id := uuid.MustParse("aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee")

	assert.Equal(t, "n:aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee", string(keyNode(id)))
	assert.Equal(t, "c:11111111-2222-3333-4444-555555555555:a.txt", string(keyChild(parent, "a.txt")))

	// Every child key of a parent must fall under its scan prefix.
	assert.True(t, bytes.HasPrefix(keyChild(parent, "a.txt"), keyChildPrefix(parent)))
	assert.False(t, bytes.HasPrefix(keyChild(id, "a.txt"), keyChildPrefix(parent)))
}

func TestNodeRoundTrip(t *testing.T) {
	node := &metadata.Node{
		ID:      uuid.New(),
		Type:    metadata.NodeTypeFile,
		Name:    "report.pdf",
		Parent:  uuid.New(),
		Servers: []string{"10.0.0.7", "10.0.0.8"},
	}

	data, err := encodeNode(node)
	require.NoError(t, err)

	decoded, err := decodeNode(data)
	require.NoError(t, err)
	assert.Equal(t, node, decoded)
}

func TestUUIDRoundTrip(t *testing.T) {
	id := uuid.New()

	decoded, err := decodeUUID(encodeUUID(id))
	require.NoError(t, err)
	assert.Equal(t, id, decoded)

	_, err = decodeUUID([]byte("short"))
	assert.Error(t, err)
}
