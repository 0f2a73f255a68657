// Package transcribe defines the Provider interface for speech-to-text
// backends.
//
// A transcriber wraps a speech recognition service (e.g., the OpenAI Whisper
// API or a local whisper-server instance) and exposes a uniform clip-based
// interface: one recorded utterance in, one transcription result out. The
// conversation session depends only on this interface; no provider-specific
// request shape leaks into the pipeline.
//
// Implementations must be safe for concurrent use.
package transcribe

import (
	"context"

	"github.com/voxbridge-app/voxbridge/pkg/types"
)

// Result is a completed transcription of a single audio clip.
type Result struct {
	// Text is the transcribed speech content.
	Text string

	// Language is the language the provider detected (or was told to expect)
	// as a BCP-47 primary subtag.
	Language string

	// Confidence is the overall confidence score (0.0–1.0). May be zero if
	// the provider does not report confidence.
	Confidence float64
}

// Provider is the abstraction over any speech-to-text backend.
//
// Implementations must be safe for concurrent use and must respect ctx
// cancellation: when ctx is done the call returns promptly with ctx.Err().
type Provider interface {
	// Transcribe converts a recorded clip into text. languageHint is the
	// language the speaker is expected to use; an empty hint asks the
	// provider to auto-detect, if supported.
	//
	// A non-nil Result is returned only alongside a nil error.
	Transcribe(ctx context.Context, clip types.AudioClip, languageHint string) (*Result, error)
}
