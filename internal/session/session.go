// Package session implements the two-party conversation session that drives
// the transcribe → translate → synthesize pipeline.
//
// A session mediates a face-to-face conversation between two people who do
// not share a language. One utterance is processed at a time: the active
// speaker's recorded clip is transcribed in their language, translated into
// the listener's language, and (best effort) rendered as speech. When an
// utterance completes, the turn flips to the other participant; a failed
// utterance leaves the turn with the current speaker so they can retry.
//
// Session is safe for concurrent use. Exactly one utterance may be in flight
// at a time; a second Submit while processing returns [ErrBusy].
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/voxbridge-app/voxbridge/internal/observe"
	"github.com/voxbridge-app/voxbridge/pkg/langcat"
	"github.com/voxbridge-app/voxbridge/pkg/provider/synthesize"
	"github.com/voxbridge-app/voxbridge/pkg/provider/transcribe"
	"github.com/voxbridge-app/voxbridge/pkg/provider/translate"
	"github.com/voxbridge-app/voxbridge/pkg/types"
)

const (
	// defaultHistoryLimit caps the retained utterance history. The oldest
	// utterances are pruned beyond this.
	defaultHistoryLimit = 200

	// defaultStageTimeout bounds each pipeline stage individually.
	defaultStageTimeout = 30 * time.Second

	// defaultEventBuf is the default buffer depth of the events channel.
	defaultEventBuf = 32
)

// State is an immutable snapshot of session state for the presentation layer.
type State struct {
	// Active reports whether the session is running.
	Active bool

	// ActiveSpeaker is the participant whose turn it is. Empty while the
	// session is inactive.
	ActiveSpeaker types.Participant

	// Processing reports whether an utterance is currently in flight.
	Processing bool

	// Profiles holds both participants' language profiles.
	Profiles map[types.Participant]types.LanguageProfile

	// Utterances is the conversation history, newest first. Entries are
	// copies; mutating them has no effect on session state.
	Utterances []types.Utterance
}

// Session orchestrates the utterance pipeline for one two-party conversation.
type Session struct {
	transcriber transcribe.Provider
	translator  translate.Provider
	synthesizer synthesize.Provider // nil = captions only

	historyLimit int
	stageTimeout time.Duration
	eventBuf     int
	metrics      *observe.Metrics

	mu            sync.Mutex
	active        bool
	activeSpeaker types.Participant
	profiles      map[types.Participant]types.LanguageProfile
	utterances    []*types.Utterance // newest first
	inFlight      bool
	runCtx        context.Context
	runCancel     context.CancelFunc
	events        chan Event
	closed        bool

	// wg tracks the pipeline goroutine spawned by Submit so callers (and
	// tests) can synchronise with the end of processing.
	wg sync.WaitGroup
}

// Option is a functional option for configuring a Session during construction.
type Option func(*Session)

// WithSynthesizer enables best-effort speech output for completed
// translations. Without it the session produces captions only.
func WithSynthesizer(p synthesize.Provider) Option {
	return func(s *Session) { s.synthesizer = p }
}

// WithHistoryLimit caps the retained utterance history. Default is 200.
func WithHistoryLimit(n int) Option {
	return func(s *Session) {
		if n > 0 {
			s.historyLimit = n
		}
	}
}

// WithStageTimeout bounds each pipeline stage. Default is 30 seconds.
func WithStageTimeout(d time.Duration) Option {
	return func(s *Session) {
		if d > 0 {
			s.stageTimeout = d
		}
	}
}

// WithEventBuffer sets the buffer capacity of the channel returned by
// [Session.Events]. Default is 32.
func WithEventBuffer(n int) Option {
	return func(s *Session) {
		if n > 0 {
			s.eventBuf = n
		}
	}
}

// WithMetrics wires OTel instruments into the pipeline.
func WithMetrics(m *observe.Metrics) Option {
	return func(s *Session) { s.metrics = m }
}

// New constructs a Session for two participants with the given language
// profiles. transcriber and translator are required; speech output is opt-in
// via [WithSynthesizer].
func New(transcriber transcribe.Provider, translator translate.Provider, profileA, profileB types.LanguageProfile, opts ...Option) (*Session, error) {
	if transcriber == nil {
		return nil, errors.New("session: transcriber must not be nil")
	}
	if translator == nil {
		return nil, errors.New("session: translator must not be nil")
	}
	for _, p := range []types.LanguageProfile{profileA, profileB} {
		if _, ok := langcat.Find(p.Speaks); !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownLanguage, p.Speaks)
		}
		if _, ok := langcat.Find(p.Hears); !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownLanguage, p.Hears)
		}
	}

	s := &Session{
		transcriber:  transcriber,
		translator:   translator,
		historyLimit: defaultHistoryLimit,
		stageTimeout: defaultStageTimeout,
		eventBuf:     defaultEventBuf,
		profiles: map[types.Participant]types.LanguageProfile{
			types.UserA: profileA,
			types.UserB: profileB,
		},
	}
	for _, o := range opts {
		o(s)
	}
	// Create the events channel after options so WithEventBuffer takes effect.
	s.events = make(chan Event, s.eventBuf)
	return s, nil
}

// ─── Lifecycle ────────────────────────────────────────────────────────────────

// Start activates the session and gives the first turn to [types.UserA].
// Starting an already-active session is a no-op.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return errors.New("session: closed")
	}
	if s.active {
		s.mu.Unlock()
		return nil
	}
	s.active = true
	s.activeSpeaker = types.UserA
	s.runCtx, s.runCancel = context.WithCancel(context.WithoutCancel(ctx))
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.ActiveSessions.Add(ctx, 1)
	}
	observe.Logger(ctx).Info("session started", "active_speaker", types.UserA)
	s.publish(Event{Type: EventStarted})
	return nil
}

// Stop deactivates the session. An in-flight utterance is cancelled and ends
// as failed with [types.FailCancelled]. Stopping an inactive session is a
// no-op.
func (s *Session) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return nil
	}
	s.active = false
	s.activeSpeaker = ""
	cancel := s.runCancel
	s.runCancel = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if s.metrics != nil {
		s.metrics.ActiveSessions.Add(ctx, -1)
	}
	observe.Logger(ctx).Info("session stopped")
	s.publish(Event{Type: EventStopped})
	return nil
}

// Close stops the session, waits for any in-flight utterance to finish, and
// closes the Events channel. Safe to call multiple times.
func (s *Session) Close() error {
	_ = s.Stop(context.Background())
	s.wg.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	close(s.events)
	return nil
}

// Wait blocks until the in-flight pipeline goroutine (if any) has finished.
// This is primarily useful in tests to synchronise before inspecting state.
func (s *Session) Wait() {
	s.wg.Wait()
}

// ─── Submission ───────────────────────────────────────────────────────────────

// Submit hands a recorded clip from speaker to the pipeline. It returns the
// newly created utterance (in [types.StatusPending]) immediately; processing
// continues in the background and progress is reported via [Session.Events].
//
// Submit fails with [ErrNotActive] when the session is stopped, with
// [ErrNotYourTurn] when speaker does not hold the turn, and with [ErrBusy]
// while a previous utterance is still processing.
func (s *Session) Submit(ctx context.Context, speaker types.Participant, clip types.AudioClip) (*types.Utterance, error) {
	if !speaker.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidParticipant, speaker)
	}
	if len(clip.Data) == 0 {
		return nil, ErrEmptyClip
	}

	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return nil, ErrNotActive
	}
	if speaker != s.activeSpeaker {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: turn belongs to %s", ErrNotYourTurn, s.activeSpeaker)
	}
	if s.inFlight {
		s.mu.Unlock()
		return nil, ErrBusy
	}

	// TargetLanguage is fixed now; later profile edits must not retroactively
	// change this utterance.
	speakerProfile := s.profiles[speaker]
	listenerProfile := s.profiles[speaker.Other()]
	utt := &types.Utterance{
		ID:               uuid.NewString(),
		Speaker:          speaker,
		OriginalLanguage: speakerProfile.Speaks,
		TargetLanguage:   listenerProfile.Hears,
		Status:           types.StatusPending,
		CreatedAt:        time.Now(),
	}
	s.utterances = append([]*types.Utterance{utt}, s.utterances...)
	if len(s.utterances) > s.historyLimit {
		s.utterances = s.utterances[:s.historyLimit]
	}
	s.inFlight = true
	runCtx := s.runCtx
	voiceID := listenerProfile.VoiceID
	s.mu.Unlock()

	s.publish(Event{Type: EventUtterance, Utterance: snapshotUtterance(utt)})

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.process(runCtx, utt, clip, voiceID)
	}()

	return snapshotUtterance(utt), nil
}

// ─── Pipeline ─────────────────────────────────────────────────────────────────

// process runs one utterance through transcription, translation, and
// best-effort synthesis. It always clears the in-flight flag and leaves the
// utterance in a terminal status.
func (s *Session) process(ctx context.Context, utt *types.Utterance, clip types.AudioClip, voiceID string) {
	ctx, span := observe.StartSpan(ctx, "session.process")
	defer span.End()

	log := observe.Logger(ctx).With("utterance_id", utt.ID, "speaker", utt.Speaker)
	start := time.Now()

	defer func() {
		s.mu.Lock()
		s.inFlight = false
		status := utt.Status
		s.mu.Unlock()

		if s.metrics != nil {
			s.metrics.PipelineDuration.Record(ctx, time.Since(start).Seconds())
			s.metrics.RecordUtterance(ctx, string(utt.Speaker), string(status))
		}
	}()

	// ── Stage 1: transcription ───────────────────────────────────────────────

	s.setStatus(utt, types.StatusTranscribing)

	tStart := time.Now()
	var tres *transcribe.Result
	err := s.stage(ctx, func(stageCtx context.Context) error {
		var serr error
		tres, serr = s.transcriber.Transcribe(stageCtx, clip, utt.OriginalLanguage)
		return serr
	})
	if s.metrics != nil {
		s.metrics.TranscriptionDuration.Record(ctx, time.Since(tStart).Seconds())
	}
	if err != nil {
		log.Warn("transcription failed", "err", err)
		s.fail(utt, classifyFailure(ctx, err, types.FailTranscription))
		return
	}

	s.mu.Lock()
	utt.OriginalText = tres.Text
	utt.Confidence = tres.Confidence
	s.mu.Unlock()

	// ── Stage 2: translation ─────────────────────────────────────────────────

	s.setStatus(utt, types.StatusTranslating)

	trStart := time.Now()
	var trres *translate.Result
	err = s.stage(ctx, func(stageCtx context.Context) error {
		var serr error
		trres, serr = s.translator.Translate(stageCtx, translate.Request{
			Text: tres.Text,
			From: utt.OriginalLanguage,
			To:   utt.TargetLanguage,
		})
		return serr
	})
	if s.metrics != nil {
		s.metrics.TranslationDuration.Record(ctx, time.Since(trStart).Seconds())
	}
	if err != nil {
		// OriginalText stays on the utterance so the speaker sees what was
		// heard even though the translation is missing.
		log.Warn("translation failed", "err", err)
		s.fail(utt, classifyFailure(ctx, err, types.FailTranslation))
		return
	}

	s.mu.Lock()
	utt.TranslatedText = trres.Text
	s.mu.Unlock()

	// ── Stage 3: best-effort synthesis ───────────────────────────────────────

	// Synthesis never changes the outcome. Captions are authoritative; a
	// missing voice rendition is a degraded experience, not a failure.
	if s.synthesizer != nil {
		syStart := time.Now()
		var speech *types.Speech
		serr := s.stage(ctx, func(stageCtx context.Context) error {
			var err error
			speech, err = s.synthesizer.Synthesize(stageCtx, synthesize.Request{
				Text:     trres.Text,
				Language: utt.TargetLanguage,
				VoiceID:  voiceID,
			})
			return err
		})
		if s.metrics != nil {
			s.metrics.SynthesisDuration.Record(ctx, time.Since(syStart).Seconds())
		}
		if serr != nil {
			log.Warn("synthesis failed, captions only", "err", serr)
		} else {
			s.mu.Lock()
			utt.Speech = speech
			s.mu.Unlock()
		}
	}

	// ── Completion: flip the turn ────────────────────────────────────────────

	s.mu.Lock()
	utt.Status = types.StatusComplete
	var turnChanged bool
	var next types.Participant
	if s.active {
		s.activeSpeaker = utt.Speaker.Other()
		next = s.activeSpeaker
		turnChanged = true
	}
	snap := snapshotUtterance(utt)
	s.mu.Unlock()

	log.Info("utterance complete",
		"original_language", utt.OriginalLanguage,
		"target_language", utt.TargetLanguage,
		"duration", time.Since(start),
	)
	s.publish(Event{Type: EventUtterance, Utterance: snap})
	if turnChanged {
		s.publish(Event{Type: EventTurnChanged, Speaker: next})
	}
}

// stage runs fn under the per-stage timeout.
func (s *Session) stage(ctx context.Context, fn func(context.Context) error) error {
	stageCtx, cancel := context.WithTimeout(ctx, s.stageTimeout)
	defer cancel()
	return fn(stageCtx)
}

// classifyFailure maps a stage error to a [types.FailReason]. Session stop
// wins over everything; a stage deadline maps to timeout; anything else is the
// stage's own reason.
func classifyFailure(ctx context.Context, err error, stageReason types.FailReason) types.FailReason {
	if ctx.Err() != nil {
		return types.FailCancelled
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return types.FailTimeout
	}
	return stageReason
}

// setStatus advances utt to a non-terminal status and publishes the change.
func (s *Session) setStatus(utt *types.Utterance, status types.UtteranceStatus) {
	s.mu.Lock()
	utt.Status = status
	snap := snapshotUtterance(utt)
	s.mu.Unlock()
	s.publish(Event{Type: EventUtterance, Utterance: snap})
}

// fail marks utt as failed with reason. The turn does not flip: the speaker
// keeps their turn to retry.
func (s *Session) fail(utt *types.Utterance, reason types.FailReason) {
	s.mu.Lock()
	utt.Status = types.StatusFailed
	utt.FailReason = reason
	snap := snapshotUtterance(utt)
	s.mu.Unlock()
	s.publish(Event{Type: EventUtterance, Utterance: snap})
}

// ─── Queries and configuration ────────────────────────────────────────────────

// Snapshot returns a copy of the current session state.
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := State{
		Active:        s.active,
		ActiveSpeaker: s.activeSpeaker,
		Processing:    s.inFlight,
		Profiles:      make(map[types.Participant]types.LanguageProfile, len(s.profiles)),
		Utterances:    make([]types.Utterance, len(s.utterances)),
	}
	for p, prof := range s.profiles {
		st.Profiles[p] = prof
	}
	for i, u := range s.utterances {
		st.Utterances[i] = *u
	}
	return st
}

// Profile returns participant's current language profile.
func (s *Session) Profile(participant types.Participant) (types.LanguageProfile, error) {
	if !participant.IsValid() {
		return types.LanguageProfile{}, fmt.Errorf("%w: %q", ErrInvalidParticipant, participant)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profiles[participant], nil
}

// SetLanguage replaces participant's language profile. It fails with
// [ErrSessionBusy] while an utterance is in flight and with
// [ErrUnknownLanguage] for codes outside the supported catalogue. Already
// created utterances keep the languages they were submitted with.
func (s *Session) SetLanguage(participant types.Participant, profile types.LanguageProfile) error {
	if !participant.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidParticipant, participant)
	}
	if _, ok := langcat.Find(profile.Speaks); !ok {
		return fmt.Errorf("%w: %q", ErrUnknownLanguage, profile.Speaks)
	}
	if _, ok := langcat.Find(profile.Hears); !ok {
		return fmt.Errorf("%w: %q", ErrUnknownLanguage, profile.Hears)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight {
		return ErrSessionBusy
	}
	s.profiles[participant] = profile
	return nil
}

// ActiveSpeaker returns the participant who currently holds the turn.
func (s *Session) ActiveSpeaker() types.Participant {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeSpeaker
}

// Events returns a read-only channel of session notifications. The channel is
// closed by [Session.Close]. Events are dropped when the buffer is full so a
// slow consumer cannot stall the pipeline.
func (s *Session) Events() <-chan Event {
	return s.events
}

// publish sends ev without blocking.
func (s *Session) publish(ev Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case s.events <- ev:
	default:
	}
}

// snapshotUtterance returns a deep-enough copy of u for delivery outside the
// lock. Speech payloads are shared; they are written once and never mutated.
func snapshotUtterance(u *types.Utterance) *types.Utterance {
	cp := *u
	return &cp
}
