package output

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nodeRow struct {
	Host  string `json:"host"`
	Space uint64 `json:"space"`
}

func TestPrintJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PrintJSON(&buf, nodeRow{Host: "10.0.0.7", Space: 1 << 30}))

	assert.Contains(t, buf.String(), `"host": "10.0.0.7"`)
	assert.Contains(t, buf.String(), `"space": 1073741824`)
	assert.True(t, bytes.HasSuffix(buf.Bytes(), []byte("\n")), "encoder should end with a newline")
}

func TestPrintJSONRoundTrips(t *testing.T) {
	rows := []nodeRow{{Host: "node-a", Space: 512}, {Host: "node-b"}}

	var buf bytes.Buffer
	require.NoError(t, PrintJSON(&buf, rows))

	var got []nodeRow
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, rows, got)
}
