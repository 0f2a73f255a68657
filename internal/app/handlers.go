package app

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/voxbridge-app/voxbridge/internal/session"
	"github.com/voxbridge-app/voxbridge/pkg/devicelink"
	"github.com/voxbridge-app/voxbridge/pkg/langcat"
	"github.com/voxbridge-app/voxbridge/pkg/types"
)

// routes builds the HTTP mux for the control surface.
func (a *App) routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /v1/session/start", a.handleStart)
	mux.HandleFunc("POST /v1/session/stop", a.handleStop)
	mux.HandleFunc("GET /v1/session", a.handleState)
	mux.HandleFunc("POST /v1/session/utterances", a.handleSubmit)
	mux.HandleFunc("GET /v1/session/utterances/{id}/speech", a.handleSpeech)
	mux.HandleFunc("PUT /v1/participants/{participant}/language", a.handleSetLanguage)
	mux.HandleFunc("GET /v1/languages", a.handleLanguages)

	mux.HandleFunc("POST /v1/device/scan", a.handleDeviceScan)
	mux.HandleFunc("GET /v1/device", a.handleDeviceState)
	mux.HandleFunc("POST /v1/device/connect", a.handleDeviceConnect)
	mux.HandleFunc("POST /v1/device/disconnect", a.handleDeviceDisconnect)

	mux.Handle("GET /metrics", promhttp.Handler())
	a.healthH.Register(mux)

	return mux
}

// ─── Wire types ──────────────────────────────────────────────────────────────

type utteranceJSON struct {
	ID               string    `json:"id"`
	Speaker          string    `json:"speaker"`
	OriginalLanguage string    `json:"original_language"`
	TargetLanguage   string    `json:"target_language"`
	OriginalText     string    `json:"original_text,omitempty"`
	TranslatedText   string    `json:"translated_text,omitempty"`
	Confidence       float64   `json:"confidence,omitempty"`
	Status           string    `json:"status"`
	FailReason       string    `json:"fail_reason,omitempty"`
	HasSpeech        bool      `json:"has_speech"`
	CreatedAt        time.Time `json:"created_at"`
}

func toUtteranceJSON(u types.Utterance) utteranceJSON {
	return utteranceJSON{
		ID:               u.ID,
		Speaker:          string(u.Speaker),
		OriginalLanguage: u.OriginalLanguage,
		TargetLanguage:   u.TargetLanguage,
		OriginalText:     u.OriginalText,
		TranslatedText:   u.TranslatedText,
		Confidence:       u.Confidence,
		Status:           string(u.Status),
		FailReason:       string(u.FailReason),
		HasSpeech:        u.Speech != nil,
		CreatedAt:        u.CreatedAt,
	}
}

type stateJSON struct {
	Active        bool                       `json:"active"`
	ActiveSpeaker string                     `json:"active_speaker"`
	Processing    bool                       `json:"processing"`
	Profiles      map[string]profileJSON     `json:"profiles"`
	Utterances    []utteranceJSON            `json:"utterances"`
}

type profileJSON struct {
	Speaks  string `json:"speaks"`
	Hears   string `json:"hears"`
	VoiceID string `json:"voice_id,omitempty"`
}

type submitRequest struct {
	Speaker    string `json:"speaker"`
	Audio      string `json:"audio"` // base64
	MIMEType   string `json:"mime_type"`
	SampleRate int    `json:"sample_rate,omitempty"`
	DurationMS int64  `json:"duration_ms,omitempty"`
}

type languageRequest struct {
	Speaks  string `json:"speaks"`
	Hears   string `json:"hears"`
	VoiceID string `json:"voice_id,omitempty"`
}

type errorJSON struct {
	Error string `json:"error"`
}

// ─── Session handlers ────────────────────────────────────────────────────────

func (a *App) handleStart(w http.ResponseWriter, r *http.Request) {
	if err := a.session.Start(r.Context()); err != nil {
		writeError(w, http.StatusConflict, err)
		return
	}
	a.writeState(w)
}

func (a *App) handleStop(w http.ResponseWriter, r *http.Request) {
	if err := a.session.Stop(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	a.writeState(w)
}

func (a *App) handleState(w http.ResponseWriter, _ *http.Request) {
	a.writeState(w)
}

func (a *App) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	audio, err := base64.StdEncoding.DecodeString(req.Audio)
	if err != nil {
		writeError(w, http.StatusBadRequest, errors.New("audio must be base64-encoded"))
		return
	}

	clip := types.AudioClip{
		Data:       audio,
		MIMEType:   req.MIMEType,
		SampleRate: req.SampleRate,
		Duration:   time.Duration(req.DurationMS) * time.Millisecond,
	}
	utt, err := a.session.Submit(r.Context(), types.Participant(req.Speaker), clip)
	if err != nil {
		writeError(w, submitStatus(err), err)
		return
	}
	writeJSON(w, http.StatusAccepted, toUtteranceJSON(*utt))
}

func (a *App) handleSpeech(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	for _, u := range a.session.Snapshot().Utterances {
		if u.ID != id {
			continue
		}
		if u.Speech == nil {
			writeError(w, http.StatusNotFound, errors.New("no speech available for utterance"))
			return
		}
		w.Header().Set("Content-Type", u.Speech.MIMEType)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(u.Speech.Audio)
		return
	}
	writeError(w, http.StatusNotFound, errors.New("unknown utterance"))
}

func (a *App) handleSetLanguage(w http.ResponseWriter, r *http.Request) {
	participant := types.Participant(r.PathValue("participant"))

	var req languageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	hears := req.Hears
	if hears == "" {
		hears = req.Speaks
	}

	err := a.session.SetLanguage(participant, types.LanguageProfile{
		Speaks:  req.Speaks,
		Hears:   hears,
		VoiceID: req.VoiceID,
	})
	switch {
	case err == nil:
		a.writeState(w)
	case errors.Is(err, session.ErrSessionBusy):
		writeError(w, http.StatusConflict, err)
	default:
		writeError(w, http.StatusBadRequest, err)
	}
}

func (a *App) handleLanguages(w http.ResponseWriter, _ *http.Request) {
	type languageJSON struct {
		Code       string `json:"code"`
		Name       string `json:"name"`
		NativeName string `json:"native_name"`
	}
	langs := langcat.All()
	out := make([]languageJSON, len(langs))
	for i, l := range langs {
		out[i] = languageJSON{Code: l.Code, Name: l.Name, NativeName: l.NativeName}
	}
	writeJSON(w, http.StatusOK, out)
}

// ─── Device handlers ─────────────────────────────────────────────────────────

type deviceJSON struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (a *App) handleDeviceScan(w http.ResponseWriter, r *http.Request) {
	if a.link == nil {
		writeError(w, http.StatusServiceUnavailable, errors.New("no device link configured"))
		return
	}
	if err := a.link.Scan(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	a.writeDeviceState(w)
}

func (a *App) handleDeviceState(w http.ResponseWriter, _ *http.Request) {
	if a.link == nil {
		writeError(w, http.StatusServiceUnavailable, errors.New("no device link configured"))
		return
	}
	a.writeDeviceState(w)
}

func (a *App) handleDeviceConnect(w http.ResponseWriter, r *http.Request) {
	if a.link == nil {
		writeError(w, http.StatusServiceUnavailable, errors.New("no device link configured"))
		return
	}
	var req deviceJSON
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := a.link.Connect(r.Context(), devicelink.Device{ID: req.ID, Name: req.Name}); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	a.writeDeviceState(w)
}

func (a *App) handleDeviceDisconnect(w http.ResponseWriter, r *http.Request) {
	if a.link == nil {
		writeError(w, http.StatusServiceUnavailable, errors.New("no device link configured"))
		return
	}
	if err := a.link.Disconnect(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	a.writeDeviceState(w)
}

func (a *App) writeDeviceState(w http.ResponseWriter) {
	candidates := a.link.Candidates()
	out := struct {
		Ready      bool         `json:"ready"`
		Candidates []deviceJSON `json:"candidates"`
	}{
		Ready:      a.link.IsReady(),
		Candidates: make([]deviceJSON, len(candidates)),
	}
	for i, d := range candidates {
		out.Candidates[i] = deviceJSON{ID: d.ID, Name: d.Name}
	}
	writeJSON(w, http.StatusOK, out)
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

func (a *App) writeState(w http.ResponseWriter) {
	snap := a.session.Snapshot()
	out := stateJSON{
		Active:        snap.Active,
		ActiveSpeaker: string(snap.ActiveSpeaker),
		Processing:    snap.Processing,
		Profiles:      make(map[string]profileJSON, len(snap.Profiles)),
		Utterances:    make([]utteranceJSON, len(snap.Utterances)),
	}
	for p, prof := range snap.Profiles {
		out.Profiles[string(p)] = profileJSON{Speaks: prof.Speaks, Hears: prof.Hears, VoiceID: prof.VoiceID}
	}
	for i, u := range snap.Utterances {
		out.Utterances[i] = toUtteranceJSON(u)
	}
	writeJSON(w, http.StatusOK, out)
}

// submitStatus maps Submit errors to HTTP status codes.
func submitStatus(err error) int {
	switch {
	case errors.Is(err, session.ErrBusy):
		return http.StatusTooManyRequests
	case errors.Is(err, session.ErrNotActive), errors.Is(err, session.ErrNotYourTurn):
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorJSON{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error":"encode failure"}`, http.StatusInternalServerError)
	}
}
