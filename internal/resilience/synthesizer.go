package resilience

import (
	"context"

	"github.com/voxbridge-app/voxbridge/pkg/provider/synthesize"
	"github.com/voxbridge-app/voxbridge/pkg/types"
)

// Compile-time assertion that Synthesizer implements synthesize.Provider.
var _ synthesize.Provider = (*Synthesizer)(nil)

// Synthesizer exposes a [FallbackGroup] of text-to-speech providers as a
// plain synthesize.Provider. Synthesis is already best-effort inside the
// pipeline; the failover group just raises the odds that a spoken rendition
// gets produced at all.
type Synthesizer struct {
	group *FallbackGroup[synthesize.Provider]
}

// NewSynthesizer wraps primary (registered under primaryName for logging) in
// a failover group. Fallbacks are added via [Synthesizer.AddFallback].
func NewSynthesizer(primary synthesize.Provider, primaryName string, cfg FallbackConfig) *Synthesizer {
	return &Synthesizer{
		group: NewFallbackGroup[synthesize.Provider](primary, primaryName, cfg),
	}
}

// AddFallback appends a fallback synthesis provider tried after the primary.
func (s *Synthesizer) AddFallback(name string, p synthesize.Provider) {
	s.group.AddFallback(name, p)
}

// Synthesize implements synthesize.Provider by delegating to the first
// healthy provider in the group.
func (s *Synthesizer) Synthesize(ctx context.Context, req synthesize.Request) (*types.Speech, error) {
	return ExecuteWithResult(s.group, func(p synthesize.Provider) (*types.Speech, error) {
		return p.Synthesize(ctx, req)
	})
}

// ListVoices implements synthesize.Provider. Voices come from the first
// healthy provider; a fallback's catalogue is only consulted when providers
// ahead of it are unavailable.
func (s *Synthesizer) ListVoices(ctx context.Context) ([]synthesize.Voice, error) {
	return ExecuteWithResult(s.group, func(p synthesize.Provider) ([]synthesize.Voice, error) {
		return p.ListVoices(ctx)
	})
}
