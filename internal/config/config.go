// Package config provides the configuration schema, loader, and provider
// registry for the voxbridge conversation server.
package config

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps [time.Duration] so YAML values like "30s" decode cleanly.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler using [time.ParseDuration].
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("config: invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns d as a [time.Duration].
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// LogLevel controls log verbosity for the voxbridge server.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// Config is the root configuration structure for voxbridge.
// It is typically loaded from a YAML file using [Load] or [LoadFromReader].
type Config struct {
	Server       ServerConfig       `yaml:"server"`
	Providers    ProvidersConfig    `yaml:"providers"`
	Session      SessionConfig      `yaml:"session"`
	Participants ParticipantsConfig `yaml:"participants"`
}

// ServerConfig holds network and logging settings for the voxbridge server.
type ServerConfig struct {
	// ListenAddr is the TCP address the server listens on (e.g., ":8080").
	ListenAddr string `yaml:"listen_addr"`

	// LogLevel controls verbosity.
	LogLevel LogLevel `yaml:"log_level"`
}

// ProvidersConfig declares which provider implementation to use for each
// pipeline stage. Each field selects a named provider registered in the
// [Registry].
type ProvidersConfig struct {
	Transcription ProviderEntry `yaml:"transcription"`
	Translation   ProviderEntry `yaml:"translation"`
	Synthesis     ProviderEntry `yaml:"synthesis"`

	// TranscriptionFallbacks lists additional transcription providers tried
	// in order when the primary provider fails.
	TranscriptionFallbacks []ProviderEntry `yaml:"transcription_fallbacks"`

	// TranslationFallbacks lists additional translation providers tried in
	// order when the primary provider fails.
	TranslationFallbacks []ProviderEntry `yaml:"translation_fallbacks"`

	// SynthesisFallbacks lists additional synthesis providers tried in order
	// when the primary provider fails.
	SynthesisFallbacks []ProviderEntry `yaml:"synthesis_fallbacks"`
}

// ProviderEntry is the common configuration block shared by all provider
// types. The Name field is used to look up the constructor in the [Registry].
type ProviderEntry struct {
	// Name selects the registered provider implementation (e.g., "whisper",
	// "google-web", "elevenlabs").
	Name string `yaml:"name"`

	// APIKey is the authentication key for the provider's API if any.
	APIKey string `yaml:"api_key"`

	// BaseURL overrides the provider's default API endpoint.
	// Leave empty to use the provider's built-in default.
	BaseURL string `yaml:"base_url"`

	// Model selects a specific model within the provider (e.g., "whisper-1",
	// "gpt-4o-mini", "eleven_multilingual_v2").
	Model string `yaml:"model"`

	// Options holds provider-specific configuration values not covered by the
	// standard fields above. Values may be strings, numbers, booleans, or
	// nested maps.
	Options map[string]any `yaml:"options"`
}

// SessionConfig tunes the conversation session.
type SessionConfig struct {
	// HistoryLimit caps the retained utterance history. Zero means the
	// built-in default.
	HistoryLimit int `yaml:"history_limit"`

	// StageTimeout bounds each pipeline stage (e.g., "30s"). Zero means the
	// built-in default.
	StageTimeout Duration `yaml:"stage_timeout"`

	// SynthesisEnabled toggles best-effort speech output. Captions are always
	// produced regardless.
	SynthesisEnabled bool `yaml:"synthesis_enabled"`
}

// ParticipantsConfig holds the initial language profiles for both people
// sharing the device.
type ParticipantsConfig struct {
	UserA ParticipantConfig `yaml:"user_a"`
	UserB ParticipantConfig `yaml:"user_b"`
}

// ParticipantConfig is one participant's initial language profile.
type ParticipantConfig struct {
	// Speaks is the language code the participant talks in (e.g., "en").
	Speaks string `yaml:"speaks"`

	// Hears is the language code translations for this participant are
	// rendered in. Empty defaults to Speaks.
	Hears string `yaml:"hears"`

	// VoiceID optionally selects a synthesis voice for translations spoken to
	// this participant.
	VoiceID string `yaml:"voice_id"`
}
