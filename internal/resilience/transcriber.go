package resilience

import (
	"context"

	"github.com/voxbridge-app/voxbridge/pkg/provider/transcribe"
	"github.com/voxbridge-app/voxbridge/pkg/types"
)

// Compile-time assertion that Transcriber implements transcribe.Provider.
var _ transcribe.Provider = (*Transcriber)(nil)

// Transcriber exposes a [FallbackGroup] of speech-to-text providers as a
// plain transcribe.Provider, so a local whisper-server can back up the hosted
// API (or vice versa) without the session knowing.
type Transcriber struct {
	group *FallbackGroup[transcribe.Provider]
}

// NewTranscriber wraps primary (registered under primaryName for logging) in
// a failover group. Fallbacks are added via [Transcriber.AddFallback].
func NewTranscriber(primary transcribe.Provider, primaryName string, cfg FallbackConfig) *Transcriber {
	return &Transcriber{
		group: NewFallbackGroup[transcribe.Provider](primary, primaryName, cfg),
	}
}

// AddFallback appends a fallback transcription provider tried after the
// primary.
func (t *Transcriber) AddFallback(name string, p transcribe.Provider) {
	t.group.AddFallback(name, p)
}

// Transcribe implements transcribe.Provider by delegating to the first
// healthy provider in the group.
func (t *Transcriber) Transcribe(ctx context.Context, clip types.AudioClip, languageHint string) (*transcribe.Result, error) {
	return ExecuteWithResult(t.group, func(p transcribe.Provider) (*transcribe.Result, error) {
		return p.Transcribe(ctx, clip, languageHint)
	})
}
