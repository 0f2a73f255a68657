// Package mock provides a test double for the transcribe.Provider interface.
//
// Use Provider to return controlled transcription results and to verify the
// clip and language hint passed by the pipeline.
//
// Example:
//
//	p := &mock.Provider{
//	    Result: &transcribe.Result{Text: "Hello", Language: "en", Confidence: 0.95},
//	}
//	res, err := p.Transcribe(ctx, clip, "en")
package mock

import (
	"context"
	"sync"

	"github.com/voxbridge-app/voxbridge/pkg/provider/transcribe"
	"github.com/voxbridge-app/voxbridge/pkg/types"
)

// TranscribeCall records a single invocation of Transcribe.
type TranscribeCall struct {
	// Ctx is the context passed to Transcribe.
	Ctx context.Context
	// Clip is the audio clip passed to Transcribe.
	Clip types.AudioClip
	// LanguageHint is the hint passed to Transcribe.
	LanguageHint string
}

// Provider is a mock implementation of transcribe.Provider.
type Provider struct {
	mu sync.Mutex

	// --- Configurable responses ---

	// Result is returned by Transcribe when Err and Fn are nil.
	Result *transcribe.Result

	// Err, if non-nil, is returned by Transcribe instead of Result.
	Err error

	// Fn, if non-nil, is invoked instead of returning Result/Err. Useful for
	// per-call behaviour such as blocking until a context is cancelled.
	Fn func(ctx context.Context, clip types.AudioClip, hint string) (*transcribe.Result, error)

	// --- Call records ---

	// Calls records every invocation of Transcribe in order.
	Calls []TranscribeCall
}

var _ transcribe.Provider = (*Provider)(nil)

// Transcribe records the call and returns the configured response.
func (p *Provider) Transcribe(ctx context.Context, clip types.AudioClip, hint string) (*transcribe.Result, error) {
	p.mu.Lock()
	p.Calls = append(p.Calls, TranscribeCall{Ctx: ctx, Clip: clip, LanguageHint: hint})
	fn, res, err := p.Fn, p.Result, p.Err
	p.mu.Unlock()

	if fn != nil {
		return fn(ctx, clip, hint)
	}
	if err != nil {
		return nil, err
	}
	if res == nil {
		return &transcribe.Result{}, nil
	}
	cp := *res
	return &cp, nil
}

// CallCount returns the number of recorded Transcribe calls.
func (p *Provider) CallCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.Calls)
}
