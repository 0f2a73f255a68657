// Package app wires all voxbridge subsystems into a running server.
//
// The App struct owns the full lifecycle: New creates the conversation
// session from configured providers, Run serves the HTTP control surface
// until the context is cancelled, and Shutdown tears everything down in
// order.
//
// For testing, inject mock providers directly via the [Providers] struct and
// a simulated device link via [WithDeviceLink].
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/voxbridge-app/voxbridge/internal/config"
	"github.com/voxbridge-app/voxbridge/internal/health"
	"github.com/voxbridge-app/voxbridge/internal/observe"
	"github.com/voxbridge-app/voxbridge/internal/session"
	"github.com/voxbridge-app/voxbridge/pkg/devicelink"
	"github.com/voxbridge-app/voxbridge/pkg/provider/synthesize"
	"github.com/voxbridge-app/voxbridge/pkg/provider/transcribe"
	"github.com/voxbridge-app/voxbridge/pkg/provider/translate"
	"github.com/voxbridge-app/voxbridge/pkg/types"
)

// shutdownGrace bounds the HTTP server drain during Run teardown.
const shutdownGrace = 10 * time.Second

// Providers holds one interface value per provider slot. Transcribe and
// Translate are required; Synthesize may be nil when speech output is
// disabled. Populated by main.go via the config registry.
type Providers struct {
	Transcribe transcribe.Provider
	Translate  translate.Provider
	Synthesize synthesize.Provider
}

// App owns the conversation session and the HTTP control surface.
type App struct {
	cfg       *config.Config
	providers *Providers

	session *session.Session
	link    devicelink.Link
	metrics *observe.Metrics
	healthH *health.Handler
	server  *http.Server

	// closers are called in order during Shutdown.
	closers []func() error

	// stopOnce guards the Shutdown path.
	stopOnce sync.Once
}

// Option is a functional option for New. Use these to inject test doubles.
type Option func(*App)

// WithDeviceLink injects the paired-audio-device backend. When absent the
// device endpoints report no link.
func WithDeviceLink(l devicelink.Link) Option {
	return func(a *App) { a.link = l }
}

// WithMetrics injects a metrics instance instead of the package default.
func WithMetrics(m *observe.Metrics) Option {
	return func(a *App) { a.metrics = m }
}

// New creates an App by wiring the session and HTTP surface together. The
// providers struct comes from main.go (populated via the config registry).
func New(cfg *config.Config, providers *Providers, opts ...Option) (*App, error) {
	if providers == nil || providers.Transcribe == nil || providers.Translate == nil {
		return nil, errors.New("app: transcription and translation providers are required")
	}

	a := &App{
		cfg:       cfg,
		providers: providers,
	}
	for _, o := range opts {
		o(a)
	}
	if a.metrics == nil {
		a.metrics = observe.DefaultMetrics()
	}

	sess, err := a.buildSession()
	if err != nil {
		return nil, fmt.Errorf("app: build session: %w", err)
	}
	a.session = sess
	a.closers = append(a.closers, sess.Close)

	if a.link != nil {
		a.closers = append(a.closers, a.link.Close)
	}

	a.healthH = health.New(
		health.Checker{Name: "session", Check: a.checkSession},
	)

	addr := cfg.Server.ListenAddr
	if addr == "" {
		addr = ":8080"
	}
	a.server = &http.Server{
		Addr:    addr,
		Handler: observe.Middleware(a.metrics)(a.routes()),
	}

	return a, nil
}

// buildSession constructs the conversation session from config.
func (a *App) buildSession() (*session.Session, error) {
	profileA := profileFromConfig(a.cfg.Participants.UserA)
	profileB := profileFromConfig(a.cfg.Participants.UserB)

	opts := []session.Option{
		session.WithMetrics(a.metrics),
	}
	if a.cfg.Session.HistoryLimit > 0 {
		opts = append(opts, session.WithHistoryLimit(a.cfg.Session.HistoryLimit))
	}
	if a.cfg.Session.StageTimeout > 0 {
		opts = append(opts, session.WithStageTimeout(a.cfg.Session.StageTimeout.Std()))
	}
	if a.cfg.Session.SynthesisEnabled && a.providers.Synthesize != nil {
		opts = append(opts, session.WithSynthesizer(a.providers.Synthesize))
	}

	return session.New(a.providers.Transcribe, a.providers.Translate, profileA, profileB, opts...)
}

// checkSession is the readiness probe for the conversation session.
func (a *App) checkSession(_ context.Context) error {
	if a.session == nil {
		return errors.New("session not initialised")
	}
	return nil
}

// Session exposes the conversation session, mainly for tests.
func (a *App) Session() *session.Session {
	return a.session
}

// Handler exposes the full HTTP handler including middleware, mainly for
// tests using httptest.
func (a *App) Handler() http.Handler {
	return a.server.Handler
}

// ─── Run ─────────────────────────────────────────────────────────────────────

// Run serves the HTTP control surface and blocks until ctx is cancelled or
// the server fails. On cancellation the server is drained gracefully.
func (a *App) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("http server listening", "addr", a.server.Addr)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("app: http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		drainCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := a.server.Shutdown(drainCtx); err != nil {
			slog.Warn("http server drain error", "err", err)
		}
		return ctx.Err()
	})

	return g.Wait()
}

// ─── Shutdown ────────────────────────────────────────────────────────────────

// Shutdown tears down all subsystems in order. It respects the context
// deadline: if ctx expires before all closers finish, remaining closers are
// skipped and the context error is returned.
func (a *App) Shutdown(ctx context.Context) error {
	var shutdownErr error
	a.stopOnce.Do(func() {
		slog.Info("shutting down", "closers", len(a.closers))

		for i, closer := range a.closers {
			select {
			case <-ctx.Done():
				slog.Warn("shutdown deadline exceeded", "remaining", len(a.closers)-i)
				shutdownErr = ctx.Err()
				return
			default:
			}
			if err := closer(); err != nil {
				slog.Warn("closer error", "index", i, "err", err)
			}
		}

		slog.Info("shutdown complete")
	})
	return shutdownErr
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

// profileFromConfig converts a config participant block to a language profile.
// An empty hears code defaults to the speaks code.
func profileFromConfig(pc config.ParticipantConfig) types.LanguageProfile {
	hears := pc.Hears
	if hears == "" {
		hears = pc.Speaks
	}
	return types.LanguageProfile{
		Speaks:  pc.Speaks,
		Hears:   hears,
		VoiceID: pc.VoiceID,
	}
}
