package app_test

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"testing"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/voxbridge-app/voxbridge/internal/app"
	"github.com/voxbridge-app/voxbridge/internal/config"
	"github.com/voxbridge-app/voxbridge/internal/observe"
	devicemock "github.com/voxbridge-app/voxbridge/pkg/devicelink/mock"
	"github.com/voxbridge-app/voxbridge/pkg/provider/transcribe"
	stmock "github.com/voxbridge-app/voxbridge/pkg/provider/transcribe/mock"
	"github.com/voxbridge-app/voxbridge/pkg/provider/translate"
	trmock "github.com/voxbridge-app/voxbridge/pkg/provider/translate/mock"
)

type stateBody struct {
	Active        bool   `json:"active"`
	ActiveSpeaker string `json:"active_speaker"`
	Processing    bool   `json:"processing"`
	Utterances    []struct {
		ID             string `json:"id"`
		Speaker        string `json:"speaker"`
		OriginalText   string `json:"original_text"`
		TranslatedText string `json:"translated_text"`
		Status         string `json:"status"`
	} `json:"utterances"`
}

// newTestApp builds an App backed by mock providers and a simulated device
// link, with metrics isolated from the global meter provider.
func newTestApp(t *testing.T) *app.App {
	t.Helper()

	metrics, err := observe.NewMetrics(sdkmetric.NewMeterProvider())
	if err != nil {
		t.Fatalf("metrics: %v", err)
	}

	cfg := &config.Config{
		Participants: config.ParticipantsConfig{
			UserA: config.ParticipantConfig{Speaks: "en", Hears: "en"},
			UserB: config.ParticipantConfig{Speaks: "ar", Hears: "ar"},
		},
	}
	providers := &app.Providers{
		Transcribe: &stmock.Provider{Result: &transcribe.Result{Text: "Hello", Confidence: 0.9}},
		Translate:  &trmock.Provider{Result: &translate.Result{Text: "مرحبا"}},
	}

	link := devicemock.New(
		devicemock.WithLatency(0, 0, 0),
		devicemock.WithRand(rand.New(rand.NewSource(1))),
	)

	a, err := app.New(cfg, providers, app.WithDeviceLink(link), app.WithMetrics(metrics))
	if err != nil {
		t.Fatalf("app.New: %v", err)
	}
	return a
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeState(t *testing.T, rec *httptest.ResponseRecorder) stateBody {
	t.Helper()
	var s stateBody
	if err := json.NewDecoder(rec.Body).Decode(&s); err != nil {
		t.Fatalf("decode state: %v", err)
	}
	return s
}

func submitBody(speaker string) map[string]any {
	return map[string]any{
		"speaker":   speaker,
		"audio":     base64.StdEncoding.EncodeToString([]byte("fake-pcm")),
		"mime_type": "audio/wav",
	}
}

func TestSessionLifecycleOverHTTP(t *testing.T) {
	t.Parallel()

	a := newTestApp(t)
	h := a.Handler()

	// Initial state: inactive.
	if s := decodeState(t, doJSON(t, h, "GET", "/v1/session", nil)); s.Active {
		t.Error("session active before start")
	}

	rec := doJSON(t, h, "POST", "/v1/session/start", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("start status = %d, want 200", rec.Code)
	}
	s := decodeState(t, rec)
	if !s.Active || s.ActiveSpeaker != "userA" {
		t.Fatalf("state after start = %+v, want active with userA's turn", s)
	}

	rec = doJSON(t, h, "POST", "/v1/session/stop", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("stop status = %d, want 200", rec.Code)
	}
	s = decodeState(t, rec)
	if s.Active {
		t.Error("session still active after stop")
	}
	if s.ActiveSpeaker != "" {
		t.Errorf("active speaker = %q after stop, want empty", s.ActiveSpeaker)
	}
}

func TestSubmitUtteranceOverHTTP(t *testing.T) {
	t.Parallel()

	a := newTestApp(t)
	h := a.Handler()

	doJSON(t, h, "POST", "/v1/session/start", nil)

	rec := doJSON(t, h, "POST", "/v1/session/utterances", submitBody("userA"))
	if rec.Code != http.StatusAccepted {
		t.Fatalf("submit status = %d, want 202: %s", rec.Code, rec.Body)
	}

	a.Session().Wait()

	s := decodeState(t, doJSON(t, h, "GET", "/v1/session", nil))
	if len(s.Utterances) != 1 {
		t.Fatalf("utterances = %d, want 1", len(s.Utterances))
	}
	u := s.Utterances[0]
	if u.Status != "complete" || u.OriginalText != "Hello" || u.TranslatedText != "مرحبا" {
		t.Errorf("utterance = %+v, want completed Hello/مرحبا", u)
	}
	if s.ActiveSpeaker != "userB" {
		t.Errorf("active speaker = %q, want userB after completed turn", s.ActiveSpeaker)
	}
}

func TestSubmitErrorsMapToStatusCodes(t *testing.T) {
	t.Parallel()

	a := newTestApp(t)
	h := a.Handler()

	// Inactive session.
	if rec := doJSON(t, h, "POST", "/v1/session/utterances", submitBody("userA")); rec.Code != http.StatusConflict {
		t.Errorf("inactive submit status = %d, want 409", rec.Code)
	}

	doJSON(t, h, "POST", "/v1/session/start", nil)

	// Wrong speaker.
	if rec := doJSON(t, h, "POST", "/v1/session/utterances", submitBody("userB")); rec.Code != http.StatusConflict {
		t.Errorf("wrong-speaker submit status = %d, want 409", rec.Code)
	}

	// Bad base64.
	rec := doJSON(t, h, "POST", "/v1/session/utterances", map[string]any{
		"speaker": "userA", "audio": "not base64!!", "mime_type": "audio/wav",
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad-audio submit status = %d, want 400", rec.Code)
	}
}

func TestSetLanguageOverHTTP(t *testing.T) {
	t.Parallel()

	a := newTestApp(t)
	h := a.Handler()

	rec := doJSON(t, h, "PUT", "/v1/participants/userB/language", map[string]any{
		"speaks": "ur",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("set-language status = %d, want 200: %s", rec.Code, rec.Body)
	}

	rec = doJSON(t, h, "PUT", "/v1/participants/userB/language", map[string]any{
		"speaks": "xx",
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("unknown-language status = %d, want 400", rec.Code)
	}
}

func TestLanguagesEndpoint(t *testing.T) {
	t.Parallel()

	a := newTestApp(t)
	rec := doJSON(t, a.Handler(), "GET", "/v1/languages", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var langs []struct {
		Code string `json:"code"`
		Name string `json:"name"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&langs); err != nil {
		t.Fatalf("decode: %v", err)
	}
	codes := map[string]bool{}
	for _, l := range langs {
		codes[l.Code] = true
	}
	for _, want := range []string{"en", "ar", "ur"} {
		if !codes[want] {
			t.Errorf("catalogue missing %q", want)
		}
	}
}

func TestSpeechEndpointNotFound(t *testing.T) {
	t.Parallel()

	a := newTestApp(t)
	rec := doJSON(t, a.Handler(), "GET", "/v1/session/utterances/no-such-id/speech", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestDeviceEndpoints(t *testing.T) {
	t.Parallel()

	a := newTestApp(t)
	h := a.Handler()

	rec := doJSON(t, h, "POST", "/v1/device/scan", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("scan status = %d, want 200", rec.Code)
	}

	var dev struct {
		Ready      bool `json:"ready"`
		Candidates []struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"candidates"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&dev); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if dev.Ready {
		t.Error("ready = true before connect")
	}
	if len(dev.Candidates) == 0 {
		t.Fatal("scan returned no candidates")
	}

	target := dev.Candidates[0]
	rec = doJSON(t, h, "POST", "/v1/device/connect", map[string]any{"id": target.ID, "name": target.Name})
	if rec.Code != http.StatusOK {
		t.Fatalf("connect status = %d, want 200: %s", rec.Code, rec.Body)
	}
	if err := json.NewDecoder(rec.Body).Decode(&dev); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !dev.Ready {
		t.Error("ready = false after connect")
	}

	rec = doJSON(t, h, "POST", "/v1/device/disconnect", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("disconnect status = %d, want 200", rec.Code)
	}
	if err := json.NewDecoder(rec.Body).Decode(&dev); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if dev.Ready {
		t.Error("ready = true after disconnect")
	}
}

func TestDeviceEndpointsWithoutLink(t *testing.T) {
	t.Parallel()

	metrics, err := observe.NewMetrics(sdkmetric.NewMeterProvider())
	if err != nil {
		t.Fatalf("metrics: %v", err)
	}
	cfg := &config.Config{
		Participants: config.ParticipantsConfig{
			UserA: config.ParticipantConfig{Speaks: "en"},
			UserB: config.ParticipantConfig{Speaks: "ar"},
		},
	}
	a, err := app.New(cfg, &app.Providers{
		Transcribe: &stmock.Provider{},
		Translate:  &trmock.Provider{},
	}, app.WithMetrics(metrics))
	if err != nil {
		t.Fatalf("app.New: %v", err)
	}

	if rec := doJSON(t, a.Handler(), "GET", "/v1/device", nil); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}

func TestHealthEndpoints(t *testing.T) {
	t.Parallel()

	a := newTestApp(t)
	h := a.Handler()

	if rec := doJSON(t, h, "GET", "/healthz", nil); rec.Code != http.StatusOK {
		t.Errorf("healthz status = %d, want 200", rec.Code)
	}
	if rec := doJSON(t, h, "GET", "/readyz", nil); rec.Code != http.StatusOK {
		t.Errorf("readyz status = %d, want 200", rec.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	t.Parallel()

	a := newTestApp(t)
	if rec := doJSON(t, a.Handler(), "GET", "/metrics", nil); rec.Code != http.StatusOK {
		t.Errorf("metrics status = %d, want 200", rec.Code)
	}
}

func TestNewRequiresProviders(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{
		Participants: config.ParticipantsConfig{
			UserA: config.ParticipantConfig{Speaks: "en"},
			UserB: config.ParticipantConfig{Speaks: "ar"},
		},
	}
	if _, err := app.New(cfg, &app.Providers{}); err == nil {
		t.Error("expected error when providers are missing")
	}
}
