// Package openai provides a synthesize.Provider backed by the OpenAI speech
// API (POST /v1/audio/speech).
package openai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/voxbridge-app/voxbridge/pkg/provider/synthesize"
	"github.com/voxbridge-app/voxbridge/pkg/types"
)

const (
	defaultModel = "tts-1"
	defaultVoice = "alloy"
)

// voices is the fixed voice set the speech API offers. The API has no listing
// endpoint, so ListVoices returns this table.
var voices = []synthesize.Voice{
	{ID: "alloy", Name: "Alloy"},
	{ID: "echo", Name: "Echo"},
	{ID: "fable", Name: "Fable"},
	{ID: "onyx", Name: "Onyx"},
	{ID: "nova", Name: "Nova"},
	{ID: "shimmer", Name: "Shimmer"},
}

// Compile-time assertion that Provider implements synthesize.Provider.
var _ synthesize.Provider = (*Provider)(nil)

// Option is a functional option for configuring the Provider.
type Option func(*config)

// config holds optional configuration for the provider.
type config struct {
	baseURL string
	model   string
	timeout time.Duration
}

// WithBaseURL overrides the default OpenAI API base URL.
func WithBaseURL(url string) Option {
	return func(c *config) { c.baseURL = url }
}

// WithModel sets the speech model. Defaults to "tts-1".
func WithModel(model string) Option {
	return func(c *config) { c.model = model }
}

// WithTimeout sets a per-request HTTP timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *config) { c.timeout = d }
}

// Provider implements synthesize.Provider using the OpenAI speech API.
type Provider struct {
	client oai.Client
	model  string
}

// New constructs an OpenAI speech Provider. apiKey must be non-empty.
func New(apiKey string, opts ...Option) (*Provider, error) {
	if apiKey == "" {
		return nil, errors.New("openai: apiKey must not be empty")
	}

	cfg := &config{model: defaultModel}
	for _, o := range opts {
		o(cfg)
	}

	reqOpts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if cfg.baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(cfg.baseURL))
	}
	if cfg.timeout > 0 {
		reqOpts = append(reqOpts, option.WithHTTPClient(&http.Client{Timeout: cfg.timeout}))
	}

	return &Provider{client: oai.NewClient(reqOpts...), model: cfg.model}, nil
}

// Synthesize implements synthesize.Provider. The language field is unused;
// the speech API infers pronunciation from the text itself.
func (p *Provider) Synthesize(ctx context.Context, req synthesize.Request) (*types.Speech, error) {
	if req.Text == "" {
		return nil, errors.New("openai: text must not be empty")
	}
	voice := req.VoiceID
	if voice == "" {
		voice = defaultVoice
	}

	resp, err := p.client.Audio.Speech.New(ctx, oai.AudioSpeechNewParams{
		Model: oai.SpeechModel(p.model),
		Voice: oai.AudioSpeechNewParamsVoice(voice),
		Input: req.Text,
	})
	if err != nil {
		return nil, fmt.Errorf("openai: speech request: %w", err)
	}
	defer resp.Body.Close()

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("openai: read speech response: %w", err)
	}
	if len(audio) == 0 {
		return nil, errors.New("openai: speech response contained no audio")
	}

	return &types.Speech{
		Audio:    audio,
		MIMEType: "audio/mpeg",
	}, nil
}

// ListVoices implements synthesize.Provider.
func (p *Provider) ListVoices(_ context.Context) ([]synthesize.Voice, error) {
	out := make([]synthesize.Voice, len(voices))
	copy(out, voices)
	return out, nil
}
