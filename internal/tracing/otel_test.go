package tracing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitOpenTelemetry(t *testing.T) {
	require.NoError(t, InitOpenTelemetry("literelay-test"))

	// Repeat init is a no-op
	require.NoError(t, InitOpenTelemetry("literelay-test"))

	t.Cleanup(func() {
		_ = ShutdownOpenTelemetry(context.Background())
	})
}

func TestShutdownOpenTelemetryWithoutInit(t *testing.T) {
	// Shutdown twice: the second call sees no provider
	require.NoError(t, InitOpenTelemetry("literelay-test"))
	require.NoError(t, ShutdownOpenTelemetry(context.Background()))
	assert.NoError(t, ShutdownOpenTelemetry(context.Background()))
}

func TestStartSpan(t *testing.T) {
	require.NoError(t, InitOpenTelemetry("literelay-test"))
	t.Cleanup(func() {
		_ = ShutdownOpenTelemetry(context.Background())
	})

	t.Run("stamps a trace ID into the context", func(t *testing.T) {
		ctx, span := StartSpan(context.Background(), "literelay.test", "test.op")
		defer span.End()

		assert.NotEmpty(t, GetTraceID(ctx))
	})

	t.Run("keeps an existing trace ID", func(t *testing.T) {
		ctx := WithTraceID(context.Background(), "trace-existing")

		ctx, span := StartSpan(ctx, "literelay.test", "test.op")
		defer span.End()

		assert.Equal(t, "trace-existing", GetTraceID(ctx))
	})

	t.Run("session key becomes a span attribute", func(t *testing.T) {
		ctx := WithSessionKey(context.Background(), "session-1")

		ctx, span := StartSpan(ctx, "literelay.test", "test.op")
		defer span.End()

		assert.Equal(t, "session-1", GetSessionKey(ctx))
	})
}
