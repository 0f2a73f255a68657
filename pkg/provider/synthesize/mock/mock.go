// Package mock provides a test double for the synthesize.Provider interface.
//
// Use Provider to feed controlled audio to consumers and to verify the text,
// language, and voice passed to the synthesis backend.
package mock

import (
	"context"
	"sync"

	"github.com/voxbridge-app/voxbridge/pkg/provider/synthesize"
	"github.com/voxbridge-app/voxbridge/pkg/types"
)

// SynthesizeCall records a single invocation of Synthesize.
type SynthesizeCall struct {
	// Ctx is the context passed to Synthesize.
	Ctx context.Context
	// Req is the request passed to Synthesize.
	Req synthesize.Request
}

// ListVoicesCall records a single invocation of ListVoices.
type ListVoicesCall struct {
	// Ctx is the context passed to ListVoices.
	Ctx context.Context
}

// Provider is a mock implementation of synthesize.Provider.
type Provider struct {
	mu sync.Mutex

	// --- Configurable responses ---

	// Speech is returned by Synthesize when Err is nil.
	Speech *types.Speech

	// Err, if non-nil, is returned by Synthesize instead of Speech.
	Err error

	// Voices is returned by ListVoices.
	Voices []synthesize.Voice

	// VoicesErr, if non-nil, is returned as the error from ListVoices.
	VoicesErr error

	// --- Call records ---

	// SynthesizeCalls records every invocation of Synthesize in order.
	SynthesizeCalls []SynthesizeCall

	// ListVoicesCalls records every invocation of ListVoices in order.
	ListVoicesCalls []ListVoicesCall
}

var _ synthesize.Provider = (*Provider)(nil)

// Synthesize records the call and returns the configured response.
func (p *Provider) Synthesize(ctx context.Context, req synthesize.Request) (*types.Speech, error) {
	p.mu.Lock()
	p.SynthesizeCalls = append(p.SynthesizeCalls, SynthesizeCall{Ctx: ctx, Req: req})
	speech, err := p.Speech, p.Err
	p.mu.Unlock()

	if err != nil {
		return nil, err
	}
	if speech == nil {
		return &types.Speech{}, nil
	}
	cp := *speech
	return &cp, nil
}

// ListVoices records the call and returns the configured voice list.
func (p *Provider) ListVoices(ctx context.Context) ([]synthesize.Voice, error) {
	p.mu.Lock()
	p.ListVoicesCalls = append(p.ListVoicesCalls, ListVoicesCall{Ctx: ctx})
	voices, err := p.Voices, p.VoicesErr
	p.mu.Unlock()

	if err != nil {
		return nil, err
	}
	out := make([]synthesize.Voice, len(voices))
	copy(out, voices)
	return out, nil
}

// SynthesizeCount returns the number of recorded Synthesize calls.
func (p *Provider) SynthesizeCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.SynthesizeCalls)
}
