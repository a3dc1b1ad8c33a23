package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/driftfs/driftfs/internal/logger"
)

func TestDefaultConfig(t *testing.T) {
	want := Config{
		Enabled:        false,
		ServiceName:    "driftfs",
		ServiceVersion: "dev",
		Endpoint:       "localhost:4317",
		Insecure:       true,
		SampleRate:     1.0,
	}
	assert.Equal(t, want, DefaultConfig())
}

func TestInitDisabled(t *testing.T) {
	ctx := context.Background()

	shutdown, err := Init(ctx, DefaultConfig())
	require.NoError(t, err)
	require.NotNil(t, shutdown)

	assert.NoError(t, shutdown(ctx))
	assert.False(t, IsEnabled())
}

// The command handlers call the tracing entry points unconditionally, so
// all of them must hold up before Init ever runs.
func TestUninitializedTracingIsNoOp(t *testing.T) {
	tracer = nil
	enabled = false
	ctx := context.Background()

	require.NotNil(t, Tracer())

	spanCtx, span := StartSpan(ctx, "test.operation")
	require.NotNil(t, spanCtx)
	require.NotNil(t, span)
	span.End()

	require.NotNil(t, SpanFromContext(ctx))
	assert.Empty(t, TraceID(ctx))
	assert.Empty(t, SpanID(ctx))
}

func TestSpanHelpersTolerateMissingSpan(t *testing.T) {
	ctx := context.Background()

	require.NotPanics(t, func() { RecordError(ctx, nil) })
	require.NotPanics(t, func() { RecordError(ctx, errors.New("boom")) })
	require.NotPanics(t, func() { SetStatus(ctx, codes.Ok, "done") })
	require.NotPanics(t, func() { SetStatus(ctx, codes.Error, "failed") })
	require.NotPanics(t, func() { SetAttributes(ctx, ClientIP("192.168.1.1")) })
}

func TestInjectTraceContext(t *testing.T) {
	// Without an active trace there is nothing to inject.
	ctx := context.Background()
	assert.Equal(t, ctx, InjectTraceContext(ctx))
	assert.Nil(t, logger.FromContext(InjectTraceContext(ctx)))

	// An existing log context is left alone.
	lc := logger.NewLogContext("10.0.0.1")
	ctx = logger.WithContext(context.Background(), lc)
	got := logger.FromContext(InjectTraceContext(ctx))
	require.NotNil(t, got)
	assert.Equal(t, "10.0.0.1", got.ClientIP)
}

func TestAttributeHelpers(t *testing.T) {
	stringAttrs := []struct {
		attr attribute.KeyValue
		key  string
		want string
	}{
		{ClientIP("192.168.1.100"), AttrClientIP, "192.168.1.100"},
		{ClientAddr("192.168.1.100:12345"), AttrClientAddr, "192.168.1.100:12345"},
		{Command("readdir"), AttrCommand, "readdir"},
		{Path("/docs/reports"), AttrPath, "/docs/reports"},
		{Filename("a.txt"), AttrFilename, "a.txt"},
		{NodeHost("10.0.0.5"), AttrNodeHost, "10.0.0.5"},
		{StoreType("badger"), AttrStoreType, "badger"},
	}
	for _, c := range stringAttrs {
		assert.Equal(t, c.key, string(c.attr.Key))
		assert.Equal(t, c.want, c.attr.Value.AsString(), "attribute %s", c.key)
	}

	intAttrs := []struct {
		attr attribute.KeyValue
		key  string
		want int64
	}{
		{Arity(3), AttrArity, 3},
		{Size(1048576), AttrSize, 1048576},
		{BytesRead(4096), AttrBytesRead, 4096},
		{BytesWritten(8192), AttrBytesWritten, 8192},
		{NodeCount(3), AttrNodeCount, 3},
		{Replicas(2), AttrReplicas, 2},
	}
	for _, c := range intAttrs {
		assert.Equal(t, c.key, string(c.attr.Key))
		assert.Equal(t, c.want, c.attr.Value.AsInt64(), "attribute %s", c.key)
	}
}

func TestDomainSpans(t *testing.T) {
	ctx := context.Background()

	starters := []func() (context.Context, trace.Span){
		func() (context.Context, trace.Span) { return StartCommandSpan(ctx, "create") },
		func() (context.Context, trace.Span) {
			return StartCommandSpan(ctx, "write", Path("/docs"), Filename("a.txt"))
		},
		func() (context.Context, trace.Span) { return StartNodeSpan(ctx, "write", "10.0.0.5") },
		func() (context.Context, trace.Span) {
			return StartNodeSpan(ctx, "bootstrap", "10.0.0.6", NodeCount(4))
		},
		func() (context.Context, trace.Span) { return StartMetadataSpan(ctx, "lookup", Path("/docs")) },
	}
	for i, start := range starters {
		spanCtx, span := start()
		require.NotNil(t, spanCtx, "span %d", i)
		require.NotNil(t, span, "span %d", i)
		span.End()
	}
}

func TestInitProfilingDisabled(t *testing.T) {
	shutdown, err := InitProfiling(ProfilingConfig{Enabled: false})
	require.NoError(t, err)
	require.NotNil(t, shutdown)

	assert.NoError(t, shutdown())
	assert.False(t, IsProfilingEnabled())
}

func TestInitProfilingUnknownType(t *testing.T) {
	_, err := InitProfiling(ProfilingConfig{
		Enabled:      true,
		ServiceName:  "driftfs",
		Endpoint:     "http://localhost:4040",
		ProfileTypes: []string{"flops"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown profile type")
}
