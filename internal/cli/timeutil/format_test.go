package timeutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatUptime(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"15s", "15s"},
		{"3m15s", "3m 15s"},
		{"2h0m5s", "2h 0m 5s"},
		{"72h30m15s", "3d 0h 30m 15s"},
		{"not-a-duration", "not-a-duration"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatUptime(tt.input), "input %q", tt.input)
	}
}

func TestFormatTimePassthrough(t *testing.T) {
	assert.Equal(t, "garbage", FormatTime("garbage"))
}

func TestFormatTimeParses(t *testing.T) {
	got := FormatTime("2026-01-15T10:30:00Z")
	assert.NotEqual(t, "2026-01-15T10:30:00Z", got)
	assert.Contains(t, got, "2026")
}
