package tracing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestStartSpan(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	require.NoError(t, InitWithExporter("procsim", "0.0.1", exporter))

	ctx, parent := StartSpan(context.Background(), "runtime.drain", "INTERNAL")
	_, ok := SpanFromContext(ctx)
	assert.True(t, ok)

	_, child := StartSpan(ctx, "engine.step", "INTERNAL")
	child.WithInt("tick", 3).WithBool("completed", true).WithAttributes(map[string]string{"process": "P1"})
	child.AddEvent("dispatched", map[string]string{"id": "1"})
	EndSpan(child, errors.New("cpu busy"))
	EndSpan(parent, nil)

	spans := exporter.GetSpans()
	require.Len(t, spans, 2)
	step := spans[0]
	assert.Equal(t, "engine.step", step.Name)
	assert.Equal(t, codes.Error, step.Status.Code)
	assert.Contains(t, step.Attributes, attribute.Int("tick", 3))
	assert.Contains(t, step.Attributes, attribute.Bool("completed", true))
	assert.Len(t, step.Events, 2)
	assert.Equal(t, spans[1].SpanContext.SpanID(), step.Parent.SpanID())
	assert.Equal(t, codes.Ok, spans[1].Status.Code)
}

func TestSpan_Nil(t *testing.T) {
	var span *Span
	assert.Nil(t, span.WithInt("k", 1))
	span.SetStatus(nil)
	span.SetStatusFromHTTPCode(200)
	EndSpan(span, nil)
	_, ok := SpanFromContext(context.Background())
	assert.False(t, ok)
}
