// Package synthesize defines the Provider interface for text-to-speech
// backends.
//
// A synthesizer renders translated text as playable audio in the listener's
// language. Within the conversation pipeline synthesis is a best-effort side
// channel: the session logs and counts failures but never fails an utterance
// because its spoken rendition could not be produced.
//
// Implementations must be safe for concurrent use.
package synthesize

import (
	"context"

	"github.com/voxbridge-app/voxbridge/pkg/types"
)

// Request carries one synthesis call.
type Request struct {
	// Text is the text to speak.
	Text string

	// Language is the language code of Text. Some providers use it to pick a
	// voice or model; others infer it from the text.
	Language string

	// VoiceID optionally selects a provider-specific voice. Empty means the
	// provider default.
	VoiceID string
}

// Voice describes one synthesis voice offered by a provider.
type Voice struct {
	// ID is the provider-specific voice identifier.
	ID string

	// Name is the human-readable voice name.
	Name string

	// Languages lists language codes this voice is suited for. May be empty
	// when the provider does not categorise voices by language.
	Languages []string
}

// Provider is the abstraction over any text-to-speech backend.
//
// Implementations must be safe for concurrent use and must respect ctx
// cancellation: when ctx is done the call returns promptly with ctx.Err().
type Provider interface {
	// Synthesize renders req.Text as audio. A non-nil Speech is returned only
	// alongside a nil error.
	Synthesize(ctx context.Context, req Request) (*types.Speech, error)

	// ListVoices returns the voices currently offered by this provider. The
	// list may change between calls if the underlying service adds or removes
	// voices.
	ListVoices(ctx context.Context) ([]Voice, error)
}
