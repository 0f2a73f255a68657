package resilience

import (
	"context"

	"github.com/voxbridge-app/voxbridge/pkg/provider/translate"
)

// Compile-time assertion that Translator implements translate.Provider.
var _ translate.Provider = (*Translator)(nil)

// Translator exposes a [FallbackGroup] of translation providers as a plain
// translate.Provider. The session stays unaware of the failover machinery:
// the primary is tried first, then each fallback in order, with per-provider
// circuit breakers deciding who is healthy enough to receive traffic.
type Translator struct {
	group *FallbackGroup[translate.Provider]
}

// NewTranslator wraps primary (registered under primaryName for logging) in a
// failover group. Fallbacks are added via [Translator.AddFallback].
func NewTranslator(primary translate.Provider, primaryName string, cfg FallbackConfig) *Translator {
	return &Translator{
		group: NewFallbackGroup[translate.Provider](primary, primaryName, cfg),
	}
}

// AddFallback appends a fallback translation provider tried after the primary.
func (t *Translator) AddFallback(name string, p translate.Provider) {
	t.group.AddFallback(name, p)
}

// Translate implements translate.Provider by delegating to the first healthy
// provider in the group.
func (t *Translator) Translate(ctx context.Context, req translate.Request) (*translate.Result, error) {
	return ExecuteWithResult(t.group, func(p translate.Provider) (*translate.Result, error) {
		return p.Translate(ctx, req)
	})
}
