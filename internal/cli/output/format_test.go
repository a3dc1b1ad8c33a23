package output

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFormat(t *testing.T) {
	accepted := map[string]Format{
		"table":    FormatTable,
		"":         FormatTable,
		"json":     FormatJSON,
		"JSON":     FormatJSON,
		" json ":   FormatJSON,
		"yaml":     FormatYAML,
		"yml":      FormatYAML,
		"  YAML  ": FormatYAML,
	}
	for in, want := range accepted {
		got, err := ParseFormat(in)
		require.NoError(t, err, "input %q", in)
		assert.Equal(t, want, got, "input %q", in)
	}
}

func TestParseFormatRejectsUnknown(t *testing.T) {
	for _, in := range []string{"xml", "csv", "tables"} {
		_, err := ParseFormat(in)
		assert.Error(t, err, "input %q", in)
	}
}

func TestFormatString(t *testing.T) {
	assert.Equal(t, "json", FormatJSON.String())
	assert.Equal(t, "table", FormatTable.String())
	assert.Equal(t, "yaml", FormatYAML.String())
}
