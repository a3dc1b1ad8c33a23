package api

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
)

// Legacy bodies of the command surface. Existing clients match these
// strings byte for byte, so they are frozen.
const (
	commandOKBody     = "OK"
	commandFailedBody = "The query can not be executed!"
)

// decodeArgs rebuilds the positional argument array from query parameters
// keyed by decimal indices: ?0=create&1=/docs&2=a.txt becomes
// ["create", "/docs", "a.txt"]. The set must be dense: indices start at 0
// with no gaps and no repeats, each carrying exactly one value.
func decodeArgs(values url.Values) ([]string, error) {
	if len(values) == 0 {
		return nil, errors.New("empty command")
	}

	args := make([]string, len(values))
	seen := make([]bool, len(values))
	for key, vals := range values {
		idx, err := strconv.Atoi(key)
		if err != nil {
			return nil, fmt.Errorf("argument key %q is not an index", key)
		}
		if idx < 0 || idx >= len(args) {
			return nil, fmt.Errorf("argument index %d out of range", idx)
		}
		// Distinct keys can collapse to one index ("1" and "01").
		if seen[idx] {
			return nil, fmt.Errorf("argument %d repeated", idx)
		}
		if len(vals) != 1 {
			return nil, fmt.Errorf("argument %d given %d times", idx, len(vals))
		}
		args[idx] = vals[0]
		seen[idx] = true
	}

	for i, ok := range seen {
		if !ok {
			return nil, fmt.Errorf("argument %d missing", i)
		}
	}
	return args, nil
}
