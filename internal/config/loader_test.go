package config_test

import (
	"strings"
	"testing"
	"time"

	"github.com/voxbridge-app/voxbridge/internal/config"
)

const validYAML = `
server:
  listen_addr: ":8080"
  log_level: info
providers:
  transcription:
    name: whisper
    api_key: sk-test
    model: whisper-1
  translation:
    name: openai
    api_key: sk-test
    model: gpt-4o-mini
  translation_fallbacks:
    - name: google-web
  synthesis:
    name: elevenlabs
    api_key: el-test
session:
  history_limit: 50
  stage_timeout: 15s
  synthesis_enabled: true
participants:
  user_a:
    speaks: en
  user_b:
    speaks: ar
    hears: ar
    voice_id: pNInz6obpgDQGcFmaJgB
`

func TestLoadFromReaderValid(t *testing.T) {
	t.Parallel()

	cfg, err := config.LoadFromReader(strings.NewReader(validYAML))
	if err != nil {
		t.Fatalf("LoadFromReader: %v", err)
	}

	if cfg.Server.ListenAddr != ":8080" {
		t.Errorf("listen_addr = %q, want :8080", cfg.Server.ListenAddr)
	}
	if cfg.Providers.Transcription.Name != "whisper" {
		t.Errorf("transcription provider = %q, want whisper", cfg.Providers.Transcription.Name)
	}
	if len(cfg.Providers.TranslationFallbacks) != 1 || cfg.Providers.TranslationFallbacks[0].Name != "google-web" {
		t.Errorf("fallbacks = %+v, want [google-web]", cfg.Providers.TranslationFallbacks)
	}
	if cfg.Session.StageTimeout.Std() != 15*time.Second {
		t.Errorf("stage_timeout = %s, want 15s", cfg.Session.StageTimeout.Std())
	}
	if !cfg.Session.SynthesisEnabled {
		t.Error("synthesis_enabled should be true")
	}
	if cfg.Participants.UserB.VoiceID != "pNInz6obpgDQGcFmaJgB" {
		t.Errorf("user_b voice_id = %q", cfg.Participants.UserB.VoiceID)
	}
}

func TestLoadFromReaderRejectsUnknownFields(t *testing.T) {
	t.Parallel()

	yaml := strings.Replace(validYAML, "listen_addr:", "listen_address:", 1)
	if _, err := config.LoadFromReader(strings.NewReader(yaml)); err == nil {
		t.Fatal("expected error for unknown field, got nil")
	}
}

func TestLoadFromReaderRejectsBadDuration(t *testing.T) {
	t.Parallel()

	yaml := strings.Replace(validYAML, "stage_timeout: 15s", "stage_timeout: soonish", 1)
	if _, err := config.LoadFromReader(strings.NewReader(yaml)); err == nil {
		t.Fatal("expected error for invalid duration, got nil")
	}
}

func TestValidateCollectsAllErrors(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{
		Server: config.ServerConfig{LogLevel: "verbose"},
		Session: config.SessionConfig{
			SynthesisEnabled: true,
			HistoryLimit:     -1,
		},
		Participants: config.ParticipantsConfig{
			UserA: config.ParticipantConfig{Speaks: "en"},
			UserB: config.ParticipantConfig{Speaks: "xx"},
		},
	}

	err := config.Validate(cfg)
	if err == nil {
		t.Fatal("expected validation errors, got nil")
	}
	msg := err.Error()
	for _, want := range []string{
		"log_level",
		"transcription.name is required",
		"translation.name is required",
		"synthesis_enabled",
		"history_limit",
		`"xx" is not a supported language`,
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("error %q missing %q", msg, want)
		}
	}
}

func TestValidateAcceptsMinimal(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{
		Providers: config.ProvidersConfig{
			Transcription: config.ProviderEntry{Name: "mock"},
			Translation:   config.ProviderEntry{Name: "mock"},
		},
		Participants: config.ParticipantsConfig{
			UserA: config.ParticipantConfig{Speaks: "en"},
			UserB: config.ParticipantConfig{Speaks: "ur"},
		},
	}
	if err := config.Validate(cfg); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestRegistryCreateUnknownProvider(t *testing.T) {
	t.Parallel()

	reg := config.NewRegistry()
	_, err := reg.CreateTranslate(config.ProviderEntry{Name: "nope"})
	if err == nil {
		t.Fatal("expected error for unregistered provider")
	}
}
