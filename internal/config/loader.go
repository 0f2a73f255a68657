package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/voxbridge-app/voxbridge/pkg/langcat"
)

// ValidProviderNames lists known provider names per provider kind.
// Used by [Validate] to warn about unrecognised provider names.
var ValidProviderNames = map[string][]string{
	"transcription": {"whisper", "whisper-local", "mock"},
	"translation":   {"openai", "any-llm", "google-web", "mock"},
	"synthesis":     {"elevenlabs", "openai", "mock"},
}

// Load reads the YAML configuration file at path and returns a validated
// [Config]. It is a convenience wrapper around [LoadFromReader] and
// [Validate].
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r and validates the result.
// Useful in tests where configs are constructed from string literals.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	// Server
	if cfg.Server.LogLevel != "" && !cfg.Server.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("server.log_level %q is invalid; valid values: debug, info, warn, error", cfg.Server.LogLevel))
	}

	// Provider name validation: warn for unknown provider names.
	validateProviderName("transcription", cfg.Providers.Transcription.Name)
	validateProviderName("translation", cfg.Providers.Translation.Name)
	validateProviderName("synthesis", cfg.Providers.Synthesis.Name)
	for _, fb := range cfg.Providers.TranscriptionFallbacks {
		validateProviderName("transcription", fb.Name)
	}
	for _, fb := range cfg.Providers.TranslationFallbacks {
		validateProviderName("translation", fb.Name)
	}
	for _, fb := range cfg.Providers.SynthesisFallbacks {
		validateProviderName("synthesis", fb.Name)
	}

	// The pipeline cannot run without transcription and translation.
	if cfg.Providers.Transcription.Name == "" {
		errs = append(errs, errors.New("providers.transcription.name is required"))
	}
	if cfg.Providers.Translation.Name == "" {
		errs = append(errs, errors.New("providers.translation.name is required"))
	}

	// Synthesis ↔ provider cross-validation
	if cfg.Session.SynthesisEnabled && cfg.Providers.Synthesis.Name == "" {
		errs = append(errs, errors.New("session.synthesis_enabled is true but providers.synthesis is not configured"))
	}
	if !cfg.Session.SynthesisEnabled && cfg.Providers.Synthesis.Name != "" {
		slog.Warn("providers.synthesis is configured but session.synthesis_enabled is false; speech output stays off")
	}

	if cfg.Session.HistoryLimit < 0 {
		errs = append(errs, fmt.Errorf("session.history_limit %d must not be negative", cfg.Session.HistoryLimit))
	}
	if cfg.Session.StageTimeout < 0 {
		errs = append(errs, fmt.Errorf("session.stage_timeout %s must not be negative", cfg.Session.StageTimeout.Std()))
	}

	// Participants
	errs = append(errs, validateParticipant("participants.user_a", cfg.Participants.UserA)...)
	errs = append(errs, validateParticipant("participants.user_b", cfg.Participants.UserB)...)

	return errors.Join(errs...)
}

// validateParticipant checks one participant's language codes against the
// supported catalogue.
func validateParticipant(prefix string, p ParticipantConfig) []error {
	var errs []error
	if p.Speaks == "" {
		errs = append(errs, fmt.Errorf("%s.speaks is required", prefix))
	} else if !langcat.Supported(p.Speaks) {
		errs = append(errs, fmt.Errorf("%s.speaks %q is not a supported language; supported: %v", prefix, p.Speaks, supportedCodes()))
	}
	if p.Hears != "" && !langcat.Supported(p.Hears) {
		errs = append(errs, fmt.Errorf("%s.hears %q is not a supported language; supported: %v", prefix, p.Hears, supportedCodes()))
	}
	return errs
}

// supportedCodes lists the catalogue's language codes for error messages.
func supportedCodes() []string {
	langs := langcat.All()
	codes := make([]string, len(langs))
	for i, l := range langs {
		codes[i] = l.Code
	}
	return codes
}

// validateProviderName logs a warning if name is non-empty and not found in
// the [ValidProviderNames] list for the given kind.
func validateProviderName(kind, name string) {
	if name == "" {
		return
	}
	known, ok := ValidProviderNames[kind]
	if !ok {
		return
	}
	if slices.Contains(known, name) {
		return
	}
	slog.Warn("unknown provider name; may be a typo or third-party provider",
		"kind", kind,
		"name", name,
		"known", known,
	)
}
