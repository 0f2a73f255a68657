// Package mock provides a test double for the translate.Provider interface.
//
// Use Provider to return controlled translation results and to verify the
// text and language pair passed by the pipeline.
package mock

import (
	"context"
	"sync"

	"github.com/voxbridge-app/voxbridge/pkg/provider/translate"
)

// TranslateCall records a single invocation of Translate.
type TranslateCall struct {
	// Ctx is the context passed to Translate.
	Ctx context.Context
	// Req is the request passed to Translate.
	Req translate.Request
}

// Provider is a mock implementation of translate.Provider.
type Provider struct {
	mu sync.Mutex

	// --- Configurable responses ---

	// Result is returned by Translate when Err and Fn are nil.
	Result *translate.Result

	// Err, if non-nil, is returned by Translate instead of Result.
	Err error

	// Fn, if non-nil, is invoked instead of returning Result/Err.
	Fn func(ctx context.Context, req translate.Request) (*translate.Result, error)

	// --- Call records ---

	// Calls records every invocation of Translate in order.
	Calls []TranslateCall
}

var _ translate.Provider = (*Provider)(nil)

// Translate records the call and returns the configured response.
func (p *Provider) Translate(ctx context.Context, req translate.Request) (*translate.Result, error) {
	p.mu.Lock()
	p.Calls = append(p.Calls, TranslateCall{Ctx: ctx, Req: req})
	fn, res, err := p.Fn, p.Result, p.Err
	p.mu.Unlock()

	if fn != nil {
		return fn(ctx, req)
	}
	if err != nil {
		return nil, err
	}
	if res == nil {
		return &translate.Result{}, nil
	}
	cp := *res
	return &cp, nil
}

// CallCount returns the number of recorded Translate calls.
func (p *Provider) CallCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.Calls)
}
