// Command voxbridge is the main entry point for the voxbridge conversation
// translation server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	anyllmlib "github.com/mozilla-ai/any-llm-go"

	"github.com/voxbridge-app/voxbridge/internal/app"
	"github.com/voxbridge-app/voxbridge/internal/config"
	"github.com/voxbridge-app/voxbridge/internal/observe"
	"github.com/voxbridge-app/voxbridge/internal/resilience"
	devicemock "github.com/voxbridge-app/voxbridge/pkg/devicelink/mock"
	"github.com/voxbridge-app/voxbridge/pkg/provider/synthesize"
	synthelevenlabs "github.com/voxbridge-app/voxbridge/pkg/provider/synthesize/elevenlabs"
	synthmock "github.com/voxbridge-app/voxbridge/pkg/provider/synthesize/mock"
	synthopenai "github.com/voxbridge-app/voxbridge/pkg/provider/synthesize/openai"
	"github.com/voxbridge-app/voxbridge/pkg/provider/transcribe"
	stmock "github.com/voxbridge-app/voxbridge/pkg/provider/transcribe/mock"
	"github.com/voxbridge-app/voxbridge/pkg/provider/transcribe/whisper"
	"github.com/voxbridge-app/voxbridge/pkg/provider/transcribe/whisperlocal"
	"github.com/voxbridge-app/voxbridge/pkg/provider/translate"
	"github.com/voxbridge-app/voxbridge/pkg/provider/translate/anyllm"
	"github.com/voxbridge-app/voxbridge/pkg/provider/translate/googleweb"
	trmock "github.com/voxbridge-app/voxbridge/pkg/provider/translate/mock"
	tropenai "github.com/voxbridge-app/voxbridge/pkg/provider/translate/openai"
)

func main() {
	os.Exit(run())
}

func run() int {
	// ── CLI flags ──────────────────────────────────────────────────────────────
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	flag.Parse()

	// ── Load configuration ────────────────────────────────────────────────────
	cfg, err := config.Load(*configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "voxbridge: config file %q not found; copy configs/example.yaml to get started\n", *configPath)
		} else {
			fmt.Fprintf(os.Stderr, "voxbridge: %v\n", err)
		}
		return 1
	}

	// ── Logger ────────────────────────────────────────────────────────────────
	logger := newLogger(cfg.Server.LogLevel)
	slog.SetDefault(logger)

	slog.Info("voxbridge starting",
		"config", *configPath,
		"listen_addr", cfg.Server.ListenAddr,
		"log_level", cfg.Server.LogLevel,
	)

	// ── Signal context ────────────────────────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── Telemetry ─────────────────────────────────────────────────────────────
	otelShutdown, err := observe.InitProvider(ctx, observe.ProviderConfig{
		ServiceName: "voxbridge",
	})
	if err != nil {
		slog.Error("failed to initialise telemetry", "err", err)
		return 1
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := otelShutdown(flushCtx); err != nil {
			slog.Warn("telemetry shutdown error", "err", err)
		}
	}()

	// ── Provider registry ─────────────────────────────────────────────────────
	reg := config.NewRegistry()
	registerBuiltinProviders(reg)

	// ── Instantiate providers ─────────────────────────────────────────────────
	providers, err := buildProviders(cfg, reg)
	if err != nil {
		slog.Error("failed to build providers", "err", err)
		return 1
	}

	// ── Startup summary ───────────────────────────────────────────────────────
	printStartupSummary(cfg)

	application, err := app.New(cfg, providers,
		app.WithDeviceLink(devicemock.New()),
	)
	if err != nil {
		slog.Error("failed to initialise application", "err", err)
		return 1
	}

	slog.Info("server ready, press Ctrl+C to shut down")

	if err := application.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("run error", "err", err)
		return 1
	}

	// ── Graceful shutdown ─────────────────────────────────────────────────────
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	slog.Info("shutdown signal received, stopping…")

	if err := application.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "err", err)
		return 1
	}
	slog.Info("goodbye")
	return 0
}

// ── Provider wiring ───────────────────────────────────────────────────────────

// registerBuiltinProviders wires all built-in provider factories into reg.
// Each factory receives a config.ProviderEntry and constructs the appropriate
// provider from the real implementation packages.
func registerBuiltinProviders(reg *config.Registry) {
	// ── Transcription ─────────────────────────────────────────────────────────

	reg.RegisterTranscribe("whisper", func(entry config.ProviderEntry) (transcribe.Provider, error) {
		var opts []whisper.Option
		if entry.BaseURL != "" {
			opts = append(opts, whisper.WithBaseURL(entry.BaseURL))
		}
		if entry.Model != "" {
			opts = append(opts, whisper.WithModel(entry.Model))
		}
		return whisper.New(entry.APIKey, opts...)
	})

	// whisper-local is a self-hosted whisper server; BaseURL is the server
	// address, no API key involved.
	reg.RegisterTranscribe("whisper-local", func(entry config.ProviderEntry) (transcribe.Provider, error) {
		var opts []whisperlocal.Option
		if entry.Model != "" {
			opts = append(opts, whisperlocal.WithModel(entry.Model))
		}
		return whisperlocal.New(entry.BaseURL, opts...)
	})

	reg.RegisterTranscribe("mock", func(entry config.ProviderEntry) (transcribe.Provider, error) {
		return &stmock.Provider{}, nil
	})

	// ── Translation ───────────────────────────────────────────────────────────

	reg.RegisterTranslate("openai", func(entry config.ProviderEntry) (translate.Provider, error) {
		var opts []tropenai.Option
		if entry.BaseURL != "" {
			opts = append(opts, tropenai.WithBaseURL(entry.BaseURL))
		}
		if entry.Model != "" {
			opts = append(opts, tropenai.WithModel(entry.Model))
		}
		return tropenai.New(entry.APIKey, opts...)
	})

	// any-llm routes to whichever backend the "provider" option names.
	reg.RegisterTranslate("any-llm", func(entry config.ProviderEntry) (translate.Provider, error) {
		backend := optString(entry.Options, "provider")
		if backend == "" {
			backend = "openai"
		}
		var opts []anyllmlib.Option
		if entry.APIKey != "" {
			opts = append(opts, anyllmlib.WithAPIKey(entry.APIKey))
		}
		if entry.BaseURL != "" {
			opts = append(opts, anyllmlib.WithBaseURL(entry.BaseURL))
		}
		return anyllm.New(backend, entry.Model, opts...)
	})

	reg.RegisterTranslate("google-web", func(entry config.ProviderEntry) (translate.Provider, error) {
		var opts []googleweb.Option
		if entry.BaseURL != "" {
			opts = append(opts, googleweb.WithBaseURL(entry.BaseURL))
		}
		return googleweb.New(opts...), nil
	})

	reg.RegisterTranslate("mock", func(entry config.ProviderEntry) (translate.Provider, error) {
		return &trmock.Provider{}, nil
	})

	// ── Synthesis ─────────────────────────────────────────────────────────────

	reg.RegisterSynthesize("elevenlabs", func(entry config.ProviderEntry) (synthesize.Provider, error) {
		var opts []synthelevenlabs.Option
		if entry.Model != "" {
			opts = append(opts, synthelevenlabs.WithModel(entry.Model))
		}
		if voiceID := optString(entry.Options, "voice_id"); voiceID != "" {
			opts = append(opts, synthelevenlabs.WithDefaultVoice(voiceID))
		}
		return synthelevenlabs.New(entry.APIKey, opts...)
	})

	reg.RegisterSynthesize("openai", func(entry config.ProviderEntry) (synthesize.Provider, error) {
		var opts []synthopenai.Option
		if entry.BaseURL != "" {
			opts = append(opts, synthopenai.WithBaseURL(entry.BaseURL))
		}
		if entry.Model != "" {
			opts = append(opts, synthopenai.WithModel(entry.Model))
		}
		return synthopenai.New(entry.APIKey, opts...)
	})

	reg.RegisterSynthesize("mock", func(entry config.ProviderEntry) (synthesize.Provider, error) {
		return &synthmock.Provider{}, nil
	})
}

// buildProviders instantiates all providers named in cfg using the registry
// and returns them in an [app.Providers] struct for the application to
// consume. Configured fallbacks are folded into resilience failover groups so
// the session sees one provider per stage.
func buildProviders(cfg *config.Config, reg *config.Registry) (*app.Providers, error) {
	ps := &app.Providers{}

	primarySTT, err := reg.CreateTranscribe(cfg.Providers.Transcription)
	if err != nil {
		return nil, fmt.Errorf("create transcription provider %q: %w", cfg.Providers.Transcription.Name, err)
	}
	slog.Info("provider created", "kind", "transcription", "name", cfg.Providers.Transcription.Name)

	if len(cfg.Providers.TranscriptionFallbacks) == 0 {
		ps.Transcribe = primarySTT
	} else {
		group := resilience.NewTranscriber(primarySTT, cfg.Providers.Transcription.Name, resilience.FallbackConfig{})
		for _, fb := range cfg.Providers.TranscriptionFallbacks {
			fp, err := reg.CreateTranscribe(fb)
			if err != nil {
				return nil, fmt.Errorf("create transcription fallback %q: %w", fb.Name, err)
			}
			group.AddFallback(fb.Name, fp)
			slog.Info("provider created", "kind", "transcription-fallback", "name", fb.Name)
		}
		ps.Transcribe = group
	}

	primaryMT, err := reg.CreateTranslate(cfg.Providers.Translation)
	if err != nil {
		return nil, fmt.Errorf("create translation provider %q: %w", cfg.Providers.Translation.Name, err)
	}
	slog.Info("provider created", "kind", "translation", "name", cfg.Providers.Translation.Name)

	if len(cfg.Providers.TranslationFallbacks) == 0 {
		ps.Translate = primaryMT
	} else {
		group := resilience.NewTranslator(primaryMT, cfg.Providers.Translation.Name, resilience.FallbackConfig{})
		for _, fb := range cfg.Providers.TranslationFallbacks {
			fp, err := reg.CreateTranslate(fb)
			if err != nil {
				return nil, fmt.Errorf("create translation fallback %q: %w", fb.Name, err)
			}
			group.AddFallback(fb.Name, fp)
			slog.Info("provider created", "kind", "translation-fallback", "name", fb.Name)
		}
		ps.Translate = group
	}

	if name := cfg.Providers.Synthesis.Name; name != "" {
		primaryTTS, err := reg.CreateSynthesize(cfg.Providers.Synthesis)
		if err != nil {
			return nil, fmt.Errorf("create synthesis provider %q: %w", name, err)
		}
		slog.Info("provider created", "kind", "synthesis", "name", name)

		if len(cfg.Providers.SynthesisFallbacks) == 0 {
			ps.Synthesize = primaryTTS
		} else {
			group := resilience.NewSynthesizer(primaryTTS, name, resilience.FallbackConfig{})
			for _, fb := range cfg.Providers.SynthesisFallbacks {
				fp, err := reg.CreateSynthesize(fb)
				if err != nil {
					return nil, fmt.Errorf("create synthesis fallback %q: %w", fb.Name, err)
				}
				group.AddFallback(fb.Name, fp)
				slog.Info("provider created", "kind", "synthesis-fallback", "name", fb.Name)
			}
			ps.Synthesize = group
		}
	}

	return ps, nil
}

// ── Startup summary ───────────────────────────────────────────────────────────

func printStartupSummary(cfg *config.Config) {
	fmt.Println("╔═══════════════════════════════════════╗")
	fmt.Println("║        voxbridge - startup summary    ║")
	fmt.Println("╠═══════════════════════════════════════╣")
	printProvider("Transcription", cfg.Providers.Transcription.Name, cfg.Providers.Transcription.Model)
	printProvider("Translation", cfg.Providers.Translation.Name, cfg.Providers.Translation.Model)
	printProvider("Synthesis", cfg.Providers.Synthesis.Name, cfg.Providers.Synthesis.Model)
	fallbacks := len(cfg.Providers.TranscriptionFallbacks) +
		len(cfg.Providers.TranslationFallbacks) +
		len(cfg.Providers.SynthesisFallbacks)
	fmt.Printf("║  Fallbacks       : %-19d ║\n", fallbacks)
	fmt.Printf("║  A speaks/hears  : %-19s ║\n", cfg.Participants.UserA.Speaks+"/"+hearsOrSpeaks(cfg.Participants.UserA))
	fmt.Printf("║  B speaks/hears  : %-19s ║\n", cfg.Participants.UserB.Speaks+"/"+hearsOrSpeaks(cfg.Participants.UserB))
	if cfg.Server.ListenAddr != "" {
		fmt.Printf("║  Listen addr     : %-19s ║\n", cfg.Server.ListenAddr)
	}
	fmt.Println("╚═══════════════════════════════════════╝")
}

func printProvider(kind, name, model string) {
	value := name
	if value == "" {
		value = "(not configured)"
	} else if model != "" {
		value = name + " / " + model
	}
	if len(value) > 19 {
		value = value[:16] + "…"
	}
	fmt.Printf("║  %-14s  : %-19s ║\n", kind, value)
}

func hearsOrSpeaks(p config.ParticipantConfig) string {
	if p.Hears != "" {
		return p.Hears
	}
	return p.Speaks
}

// ── Logger ─────────────────────────────────────────────────────────────────────

func newLogger(level config.LogLevel) *slog.Logger {
	var lvl slog.Level
	switch level {
	case config.LogDebug:
		lvl = slog.LevelDebug
	case config.LogWarn:
		lvl = slog.LevelWarn
	case config.LogError:
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

// ── Helpers ───────────────────────────────────────────────────────────────────

// optString extracts a string value from a provider Options map[string]any.
// Returns "" if the map is nil, the key is absent, or the value is not a string.
func optString(opts map[string]any, key string) string {
	if opts == nil {
		return ""
	}
	v, ok := opts[key]
	if !ok {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return s
}
