package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// captureOutput points the logger at a buffer, colors off. The cleanup
// restores stdout.
func captureOutput() (*bytes.Buffer, func()) {
	buf := new(bytes.Buffer)
	InitWithWriter(buf, "", "", false)
	return buf, func() {
		InitWithWriter(os.Stdout, "INFO", "text", false)
	}
}

func TestLevelFiltering(t *testing.T) {
	t.Run("DebugLevelShowsAllMessages", func(t *testing.T) {
		buf, cleanup := captureOutput()
		defer cleanup()

		SetLevel("DEBUG")

		Debug("debug message")
		Info("info message")
		Warn("warn message")
		Error("error message")

		output := buf.String()
		assert.Contains(t, output, "debug message")
		assert.Contains(t, output, "info message")
		assert.Contains(t, output, "warn message")
		assert.Contains(t, output, "error message")
	})

	t.Run("InfoLevelFiltersDebug", func(t *testing.T) {
		buf, cleanup := captureOutput()
		defer cleanup()

		SetLevel("INFO")

		Debug("debug message")
		Info("info message")

		output := buf.String()
		assert.NotContains(t, output, "debug message")
		assert.Contains(t, output, "info message")
	})

	t.Run("ErrorLevelShowsOnlyErrors", func(t *testing.T) {
		buf, cleanup := captureOutput()
		defer cleanup()

		SetLevel("ERROR")

		Debug("debug message")
		Info("info message")
		Warn("warn message")
		Error("error message")

		output := buf.String()
		assert.NotContains(t, output, "debug message")
		assert.NotContains(t, output, "info message")
		assert.NotContains(t, output, "warn message")
		assert.Contains(t, output, "error message")
	})

	t.Run("InvalidLevelIsIgnored", func(t *testing.T) {
		buf, cleanup := captureOutput()
		defer cleanup()

		SetLevel("INFO")
		SetLevel("VERBOSE") // no such level

		Info("still works")
		assert.Contains(t, buf.String(), "still works")
	})
}

func TestStructuredFields(t *testing.T) {
	t.Run("TextFormatRendersKeyValuePairs", func(t *testing.T) {
		buf, cleanup := captureOutput()
		defer cleanup()

		SetLevel("INFO")
		SetFormat("text")

		Info("file created", KeyPath, "/docs", KeyFilename, "report.txt")

		output := buf.String()
		assert.Contains(t, output, "file created")
		assert.Contains(t, output, "path=/docs")
		assert.Contains(t, output, "filename=report.txt")
	})

	t.Run("JSONFormatProducesValidJSON", func(t *testing.T) {
		buf, cleanup := captureOutput()
		defer cleanup()

		SetLevel("INFO")
		SetFormat("json")
		defer SetFormat("text")

		Info("node registered", KeyNode, "10.0.0.7")

		line := strings.TrimSpace(buf.String())
		var record map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &record))
		assert.Equal(t, "node registered", record["msg"])
		assert.Equal(t, "10.0.0.7", record["node"])
	})

	t.Run("FieldConstructors", func(t *testing.T) {
		buf, cleanup := captureOutput()
		defer cleanup()

		SetLevel("INFO")
		SetFormat("text")

		Info("fanout failed",
			Node("10.0.0.9"),
			Command("create"),
			Err(errors.New("connection refused")),
		)

		output := buf.String()
		assert.Contains(t, output, "node=10.0.0.9")
		assert.Contains(t, output, "command=create")
		assert.Contains(t, output, "error=connection refused")
	})

	t.Run("NilErrAttrIsDropped", func(t *testing.T) {
		buf, cleanup := captureOutput()
		defer cleanup()

		SetLevel("INFO")
		SetFormat("text")

		Info("all good", Err(nil))
		assert.NotContains(t, buf.String(), "error=")
	})
}

func TestWith(t *testing.T) {
	buf, cleanup := captureOutput()
	defer cleanup()

	SetLevel("INFO")
	SetFormat("text")

	log := With(KeyStore, "badger")
	log.Info("store opened")

	output := buf.String()
	assert.Contains(t, output, "store opened")
	assert.Contains(t, output, "store=badger")
}

func TestContextLogging(t *testing.T) {
	t.Run("ContextFieldsArePrepended", func(t *testing.T) {
		buf, cleanup := captureOutput()
		defer cleanup()

		SetLevel("INFO")
		SetFormat("text")

		lc := NewLogContext("192.168.1.50").WithCommand("readdir").WithRequestID("req-1")
		ctx := WithContext(context.Background(), lc)

		InfoCtx(ctx, "command served")

		output := buf.String()
		assert.Contains(t, output, "command served")
		assert.Contains(t, output, "client_ip=192.168.1.50")
		assert.Contains(t, output, "command=readdir")
		assert.Contains(t, output, "request_id=req-1")
	})

	t.Run("BareContextLogsWithoutFields", func(t *testing.T) {
		buf, cleanup := captureOutput()
		defer cleanup()

		SetLevel("INFO")
		InfoCtx(context.Background(), "no context fields")

		assert.Contains(t, buf.String(), "no context fields")
	})

	t.Run("CloneIsIndependent", func(t *testing.T) {
		lc := NewLogContext("10.0.0.1")
		clone := lc.WithCommand("write")

		assert.Equal(t, "", lc.Command)
		assert.Equal(t, "write", clone.Command)
		assert.Equal(t, lc.ClientIP, clone.ClientIP)
	})
}

func TestDuration(t *testing.T) {
	start := time.Now().Add(-50 * time.Millisecond)
	ms := Duration(start)
	assert.GreaterOrEqual(t, ms, 50.0)
	assert.Less(t, ms, 5000.0)
}

func TestInitWithWriter(t *testing.T) {
	buf := new(bytes.Buffer)
	InitWithWriter(buf, "DEBUG", "text", false)
	defer func() {
		InitWithWriter(new(bytes.Buffer), "INFO", "text", false)
	}()

	Debug("writer redirected")
	assert.Contains(t, buf.String(), "writer redirected")
}
