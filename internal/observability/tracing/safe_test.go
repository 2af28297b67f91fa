package tracing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestSafeAttributesDropsUnknownKeys(t *testing.T) {
	attrs := SafeAttributes(
		attribute.String("resource.id", "1"),
		attribute.String("raw_text", "help, we need water"),
		attribute.Int("dispatch.quantity", 2),
	)
	require.Len(t, attrs, 2)
	assert.Equal(t, attribute.Key("resource.id"), attrs[0].Key)
	assert.Equal(t, attribute.Key("dispatch.quantity"), attrs[1].Key)
}

func TestStartAndEndSpanRecordsError(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	_, span := StartSpan(context.Background(), "dispatch.commit",
		attribute.String("resource.id", "9"),
		attribute.String("note", "secret"),
	)
	EndSpan(span, errors.New("insufficient_quantity"))

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "dispatch.commit", spans[0].Name())
	assert.Len(t, spans[0].Attributes(), 1)
	assert.Len(t, spans[0].Events(), 1)
}
