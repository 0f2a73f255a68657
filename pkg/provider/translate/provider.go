// Package translate defines the Provider interface for text translation
// backends.
//
// A translator turns text in one language into text in another. The
// conversation session owns the language pair for each utterance; providers
// never hardcode pair-specific behaviour.
//
// Implementations must be safe for concurrent use.
package translate

import "context"

// Request carries one translation call.
type Request struct {
	// Text is the source text to translate.
	Text string

	// From is the source language code. An empty value asks the provider to
	// detect the source language, if supported.
	From string

	// To is the target language code. Required.
	To string
}

// Result is a completed translation.
type Result struct {
	// Text is the translated text.
	Text string

	// DetectedLanguage is the source language the provider detected, when it
	// reports one. Empty otherwise.
	DetectedLanguage string

	// Confidence is the provider's confidence score (0.0–1.0). May be zero.
	Confidence float64
}

// Provider is the abstraction over any translation backend.
//
// Implementations must be safe for concurrent use and must respect ctx
// cancellation: when ctx is done the call returns promptly with ctx.Err().
type Provider interface {
	// Translate performs a single translation. A non-nil Result is returned
	// only alongside a nil error.
	Translate(ctx context.Context, req Request) (*Result, error)
}
