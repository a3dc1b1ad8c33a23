package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrintYAML(t *testing.T) {
	type node struct {
		Host string `yaml:"host"`
		Live bool   `yaml:"live"`
	}

	var buf bytes.Buffer
	require.NoError(t, PrintYAML(&buf, node{Host: "192.168.1.10", Live: true}))

	assert.Equal(t, "host: 192.168.1.10\nlive: true\n", buf.String())
}

func TestPrintYAMLList(t *testing.T) {
	type node struct {
		Host string `yaml:"host"`
	}

	var buf bytes.Buffer
	require.NoError(t, PrintYAML(&buf, []node{{Host: "node-a"}, {Host: "node-b"}}))

	assert.Equal(t, "- host: node-a\n- host: node-b\n", buf.String())
}

func TestPrintYAMLIndentsNested(t *testing.T) {
	// Two-space indentation matters for `config show`, whose output users
	// paste back into config files.
	data := map[string]map[string]int{"metadata": {"port": 5432}}

	var buf bytes.Buffer
	require.NoError(t, PrintYAML(&buf, data))

	assert.Equal(t, "metadata:\n  port: 5432\n", buf.String())
}
