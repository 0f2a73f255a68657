package observe_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/voxbridge-app/voxbridge/internal/observe"
)

func newTestMetrics(t *testing.T) (*observe.Metrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	m, err := observe.NewMetrics(mp)
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}
	return m, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("collect: %v", err)
	}
	return rm
}

func metricNames(rm metricdata.ResourceMetrics) map[string]bool {
	names := map[string]bool{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			names[m.Name] = true
		}
	}
	return names
}

func TestMetricsRecordInstruments(t *testing.T) {
	t.Parallel()

	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordProviderRequest(ctx, "whisper", "transcription", "ok")
	m.RecordProviderError(ctx, "openai", "translation")
	m.RecordUtterance(ctx, "userA", "complete")
	m.ActiveSessions.Add(ctx, 1)
	m.PipelineDuration.Record(ctx, 0.42)

	names := metricNames(collect(t, reader))
	for _, want := range []string{
		"voxbridge.provider.requests",
		"voxbridge.provider.errors",
		"voxbridge.utterances",
		"voxbridge.active_sessions",
		"voxbridge.pipeline.duration",
	} {
		if !names[want] {
			t.Errorf("metric %q not recorded", want)
		}
	}
}

func TestMiddlewareSetsCorrelationHeader(t *testing.T) {
	t.Parallel()

	m, _ := newTestMetrics(t)
	var gotStatus int
	handler := observe.Middleware(m)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		gotStatus = http.StatusTeapot
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/v1/session", nil))

	if gotStatus != http.StatusTeapot || rec.Code != http.StatusTeapot {
		t.Errorf("status = %d, want 418 passed through", rec.Code)
	}
}

func TestMiddlewareRecordsDuration(t *testing.T) {
	t.Parallel()

	m, reader := newTestMetrics(t)
	handler := observe.Middleware(m)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/healthz", nil))

	if !metricNames(collect(t, reader))["voxbridge.http.request.duration"] {
		t.Error("http request duration not recorded")
	}
}

func TestMiddlewareLabelsByRoutePattern(t *testing.T) {
	t.Parallel()

	m, reader := newTestMetrics(t)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/session/utterances/{id}/speech", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := observe.Middleware(m)(mux)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/v1/session/utterances/abc-123/speech", nil))

	// The duration metric must carry the mux pattern, not the raw path, so
	// per-utterance IDs do not fan out into distinct label values.
	var got []string
	rm := collect(t, reader)
	for _, sm := range rm.ScopeMetrics {
		for _, mt := range sm.Metrics {
			if mt.Name != "voxbridge.http.request.duration" {
				continue
			}
			hist, ok := mt.Data.(metricdata.Histogram[float64])
			if !ok {
				t.Fatalf("unexpected data type %T", mt.Data)
			}
			for _, dp := range hist.DataPoints {
				if v, ok := dp.Attributes.Value("path"); ok {
					got = append(got, v.AsString())
				}
			}
		}
	}

	want := "GET /v1/session/utterances/{id}/speech"
	if len(got) != 1 || got[0] != want {
		t.Errorf("path label = %v, want [%q]", got, want)
	}
}
