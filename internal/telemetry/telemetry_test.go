package telemetry

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/chainlink-tracker/chainlink/internal/storage"
	"github.com/chainlink-tracker/chainlink/internal/storage/sqlite"
	"github.com/chainlink-tracker/chainlink/internal/types"
)

func newStore(t *testing.T) *sqlite.SQLiteStorage {
	t.Helper()
	s, err := sqlite.New(context.Background(), filepath.Join(t.TempDir(), "telemetry.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// installTestProviders routes the global providers to in-memory collectors.
func installTestProviders(t *testing.T) (*tracetest.SpanRecorder, *sdkmetric.ManualReader) {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	reader := sdkmetric.NewManualReader()

	prevTP, prevMP := otel.GetTracerProvider(), otel.GetMeterProvider()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder)))
	otel.SetMeterProvider(sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)))
	t.Cleanup(func() {
		otel.SetTracerProvider(prevTP)
		otel.SetMeterProvider(prevMP)
	})
	return recorder, reader
}

func TestWrapStorageDisabledReturnsInner(t *testing.T) {
	t.Setenv("CHAINLINK_OTEL_ENABLED", "")
	s := newStore(t)
	assert.Same(t, storage.Storage(s), WrapStorage(s))
}

func TestWrapStorageEnabledDecorates(t *testing.T) {
	t.Setenv("CHAINLINK_OTEL_ENABLED", "true")
	installTestProviders(t)
	s := newStore(t)

	wrapped := WrapStorage(s)
	_, ok := wrapped.(*InstrumentedStorage)
	assert.True(t, ok)
	assert.Equal(t, s.Path(), wrapped.Path())
}

func TestInstrumentedStorageRecordsSpansAndMetrics(t *testing.T) {
	recorder, reader := installTestProviders(t)
	ctx := context.Background()
	inst := newInstrumentedStorage(newStore(t))

	id, err := inst.CreateIssue(ctx, "traced", nil, types.PriorityHigh)
	require.NoError(t, err)
	ready, err := inst.GetReadyIssues(ctx)
	require.NoError(t, err)
	require.Len(t, ready, 1)

	_, err = inst.AddDependency(ctx, id, id)
	require.True(t, errors.Is(err, storage.ErrInvalidArgument))

	spans := recorder.Ended()
	require.Len(t, spans, 3)
	assert.Equal(t, "storage.CreateIssue", spans[0].Name())
	assert.Equal(t, "storage.GetReadyIssues", spans[1].Name())
	assert.Equal(t, "storage.AddDependency", spans[2].Name())
	assert.Equal(t, codes.Error, spans[2].Status().Code)
	assert.Equal(t, codes.Unset, spans[0].Status().Code)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))

	names := map[string]bool{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			names[m.Name] = true
		}
	}
	for _, want := range []string{
		"chainlink.storage.operations",
		"chainlink.storage.operation.duration",
		"chainlink.storage.errors",
		"chainlink.issue.ready",
	} {
		assert.True(t, names[want], "missing metric %s", want)
	}
}

func TestInitDisabledInstallsNoop(t *testing.T) {
	t.Setenv("CHAINLINK_OTEL_ENABLED", "")
	require.NoError(t, Init(context.Background(), "chainlink", "test"))
	Shutdown(context.Background())
}

func TestInitStdoutExporter(t *testing.T) {
	t.Setenv("CHAINLINK_OTEL_ENABLED", "true")
	t.Setenv("CHAINLINK_OTEL_STDOUT", "true")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	t.Setenv("OTEL_EXPORTER_OTLP_METRICS_ENDPOINT", "")

	var buf bytes.Buffer
	prev := stdout
	stdout = &buf
	prevTP, prevMP := otel.GetTracerProvider(), otel.GetMeterProvider()
	t.Cleanup(func() {
		stdout = prev
		otel.SetTracerProvider(prevTP)
		otel.SetMeterProvider(prevMP)
	})

	ctx := context.Background()
	require.NoError(t, Init(ctx, "chainlink", "test"))

	_, span := Tracer("").Start(ctx, "unit")
	span.End()
	Shutdown(ctx)

	assert.Contains(t, buf.String(), `"Name": "unit"`)
}

func TestFirstNonEmpty(t *testing.T) {
	assert.Equal(t, "b", firstNonEmpty("", "b", "c"))
	assert.Equal(t, "", firstNonEmpty("", ""))
}
