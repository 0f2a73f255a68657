// Package googleweb provides a translate.Provider backed by the public Google
// Translate web endpoint (translate.googleapis.com, client=gtx).
//
// This is the unauthenticated endpoint the translate widget uses. It needs no
// API key, which makes it the default for development, but it is rate-limited
// and carries no SLA; production deployments should prefer one of the LLM
// translators or the official Cloud Translation API behind the same interface.
package googleweb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/voxbridge-app/voxbridge/pkg/provider/translate"
)

const (
	defaultBaseURL = "https://translate.googleapis.com"
	defaultTimeout = 15 * time.Second
)

// Compile-time assertion that Provider implements translate.Provider.
var _ translate.Provider = (*Provider)(nil)

// Option is a functional option for configuring a Provider.
type Option func(*Provider)

// WithBaseURL overrides the endpoint base URL. Used by tests to point at a
// local stub server.
func WithBaseURL(u string) Option {
	return func(p *Provider) { p.baseURL = strings.TrimRight(u, "/") }
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(p *Provider) { p.httpClient = c }
}

// Provider implements translate.Provider against the Google Translate web
// endpoint.
type Provider struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a Provider with default endpoint and timeout.
func New(opts ...Option) *Provider {
	p := &Provider{
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Translate implements translate.Provider.
//
// The endpoint responds with a nested JSON array; index [0] holds the
// translated segments and index [2] the detected source language.
func (p *Provider) Translate(ctx context.Context, req translate.Request) (*translate.Result, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, errors.New("googleweb: text must not be empty")
	}
	if req.To == "" {
		return nil, errors.New("googleweb: target language must not be empty")
	}

	from := req.From
	if from == "" {
		from = "auto"
	}

	q := url.Values{}
	q.Set("client", "gtx")
	q.Set("sl", from)
	q.Set("tl", req.To)
	q.Set("dt", "t")
	q.Set("q", req.Text)
	endpoint := p.baseURL + "/translate_a/single?" + q.Encode()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("googleweb: create request: %w", err)
	}

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("googleweb: http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("googleweb: server returned HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("googleweb: read response body: %w", err)
	}

	return parseResponse(body)
}

// parseResponse decodes the endpoint's nested-array payload.
func parseResponse(body []byte) (*translate.Result, error) {
	var payload []any
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("googleweb: parse response: %w", err)
	}
	if len(payload) == 0 {
		return nil, errors.New("googleweb: empty response payload")
	}

	segments, ok := payload[0].([]any)
	if !ok {
		return nil, errors.New("googleweb: unexpected payload shape")
	}

	// Long inputs come back as several translated segments; concatenate them.
	var sb strings.Builder
	for _, seg := range segments {
		parts, ok := seg.([]any)
		if !ok || len(parts) == 0 {
			continue
		}
		if text, ok := parts[0].(string); ok {
			sb.WriteString(text)
		}
	}
	if sb.Len() == 0 {
		return nil, errors.New("googleweb: no translated text in response")
	}

	result := &translate.Result{Text: sb.String()}
	if len(payload) > 2 {
		if detected, ok := payload[2].(string); ok {
			result.DetectedLanguage = detected
		}
	}
	return result, nil
}
