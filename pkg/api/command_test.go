package api

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeArgs(t *testing.T) {
	t.Run("RebuildsPositionalOrder", func(t *testing.T) {
		args, err := decodeArgs(url.Values{
			"2": {"a.txt"},
			"0": {"create"},
			"1": {"/docs"},
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"create", "/docs", "a.txt"}, args)
	})

	t.Run("SingleArgument", func(t *testing.T) {
		args, err := decodeArgs(url.Values{"0": {"init"}})
		require.NoError(t, err)
		assert.Equal(t, []string{"init"}, args)
	})

	t.Run("EmptyValueIsStillAnArgument", func(t *testing.T) {
		args, err := decodeArgs(url.Values{"0": {"readdir"}, "1": {""}})
		require.NoError(t, err)
		assert.Equal(t, []string{"readdir", ""}, args)
	})

	rejects := map[string]url.Values{
		"NoArguments":   {},
		"GapInIndices":  {"0": {"create"}, "2": {"a.txt"}},
		"MissingZero":   {"1": {"/docs"}, "2": {"a.txt"}},
		"NegativeIndex": {"-1": {"init"}, "0": {"init"}},
		"NonNumericKey": {"0": {"create"}, "path": {"/docs"}},
		"RepeatedValue": {"0": {"create", "delete"}},
		// "0" and "00" are distinct query keys naming the same slot.
		"CollidingKeys": {"0": {"create"}, "00": {"delete"}},
	}
	for name, values := range rejects {
		t.Run("Rejects"+name, func(t *testing.T) {
			_, err := decodeArgs(values)
			assert.Error(t, err)
		})
	}
}
