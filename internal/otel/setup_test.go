package otel

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupDisabled(t *testing.T) {
	shutdown, err := Setup("veil-test", "0.0.0", false)
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(context.Background()))
}

func TestTracerReturnsUsableTracer(t *testing.T) {
	tr := Tracer("github.com/veildata/veil/internal/otel")
	require.NotNil(t, tr)

	_, span := tr.Start(context.Background(), "test.span")
	span.End()
}

func TestTraceContextFromEmptyContext(t *testing.T) {
	traceID, spanID := TraceContextFrom(context.Background())
	assert.Empty(t, traceID)
	assert.Empty(t, spanID)
}
