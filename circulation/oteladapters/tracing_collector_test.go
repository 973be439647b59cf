package oteladapters_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/AntonStoeckl/library-circulation-go/circulation/oteladapters"
)

func givenTracing() (*oteladapters.TracingCollector, *tracetest.InMemoryExporter) {
	exporter := tracetest.NewInMemoryExporter()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))

	return oteladapters.NewTracingCollector(provider.Tracer("test")), exporter
}

func attributeValue(span tracetest.SpanStub, key string) (string, bool) {
	for _, attr := range span.Attributes {
		if attr.Key == attribute.Key(key) {
			return attr.Value.AsString(), true
		}
	}

	return "", false
}

func Test_TracingCollector_StartAndFinishSpan(t *testing.T) {
	// arrange
	collector, exporter := givenTracing()

	// act
	_, span := collector.StartSpan(context.Background(), "circulation.store.find_book", map[string]string{"operation": "find_book"})
	span.AddAttribute("consistency", "strong")
	collector.FinishSpan(span, "success", map[string]string{"duration_ms": "1.5"})

	// assert
	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "circulation.store.find_book", spans[0].Name)
	assert.Equal(t, codes.Ok, spans[0].Status.Code)

	for key, want := range map[string]string{"operation": "find_book", "consistency": "strong", "duration_ms": "1.5"} {
		got, ok := attributeValue(spans[0], key)
		assert.True(t, ok, key)
		assert.Equal(t, want, got, key)
	}
}

func Test_TracingCollector_ChildSpansShareTheTrace(t *testing.T) {
	// arrange
	collector, exporter := givenTracing()

	// act
	ctx, parent := collector.StartSpan(context.Background(), "commandhandler.ProcessTransaction", nil)
	_, child := collector.StartSpan(ctx, "circulation.store.transaction", nil)
	collector.FinishSpan(child, "success", nil)
	collector.FinishSpan(parent, "success", nil)

	// assert
	spans := exporter.GetSpans()
	require.Len(t, spans, 2)
	assert.Equal(t, spans[1].SpanContext.TraceID(), spans[0].SpanContext.TraceID())
	assert.Equal(t, spans[1].SpanContext.SpanID(), spans[0].Parent.SpanID())
}

func Test_TracingCollector_StatusMapping(t *testing.T) {
	testCases := []struct {
		status      string
		wantCode    codes.Code
		wantOutcome string
	}{
		{status: "success", wantCode: codes.Ok},
		{status: "rejected", wantCode: codes.Unset, wantOutcome: "rejected"},
		{status: "not_found", wantCode: codes.Unset, wantOutcome: "not_found"},
		{status: "canceled", wantCode: codes.Error},
		{status: "timeout", wantCode: codes.Error},
		{status: "concurrency_conflict", wantCode: codes.Error},
		{status: "error", wantCode: codes.Error},
		{status: "something_else", wantCode: codes.Unset, wantOutcome: "something_else"},
	}

	for _, tc := range testCases {
		t.Run(tc.status, func(t *testing.T) {
			// arrange
			collector, exporter := givenTracing()

			// act
			_, span := collector.StartSpan(context.Background(), "op", nil)
			collector.FinishSpan(span, tc.status, nil)

			// assert
			spans := exporter.GetSpans()
			require.Len(t, spans, 1)
			assert.Equal(t, tc.wantCode, spans[0].Status.Code)

			outcome, ok := attributeValue(spans[0], "outcome")
			assert.Equal(t, tc.wantOutcome != "", ok)
			assert.Equal(t, tc.wantOutcome, outcome)
		})
	}
}

type foreignSpan struct{}

func (foreignSpan) SetStatus(string)            {}
func (foreignSpan) AddAttribute(string, string) {}

func Test_TracingCollector_FinishSpan_IgnoresForeignSpans(t *testing.T) {
	// arrange
	collector, exporter := givenTracing()

	// act
	collector.FinishSpan(foreignSpan{}, "success", nil)

	// assert
	assert.Empty(t, exporter.GetSpans())
}
