// Package whisper provides a transcribe.Provider backed by the OpenAI Whisper
// API (POST /v1/audio/transcriptions).
//
// The API is batch-oriented: one encoded clip in, one transcription out, which
// matches the conversation pipeline's clip-based contract directly. The Whisper
// endpoint does not report a confidence score, so results carry a fixed
// nominal confidence.
package whisper

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"

	"github.com/voxbridge-app/voxbridge/pkg/provider/transcribe"
	"github.com/voxbridge-app/voxbridge/pkg/types"
)

const (
	defaultModel = "whisper-1"

	// nominalConfidence is reported for every result because the Whisper API
	// does not expose per-request confidence.
	nominalConfidence = 0.95
)

// Compile-time assertion that Provider implements transcribe.Provider.
var _ transcribe.Provider = (*Provider)(nil)

// Option is a functional option for configuring the Provider.
type Option func(*config)

// config holds optional configuration for the provider.
type config struct {
	baseURL string
	model   string
	timeout time.Duration
}

// WithBaseURL overrides the default OpenAI API base URL. Useful for proxies
// and for pointing tests at a local stub server.
func WithBaseURL(url string) Option {
	return func(c *config) { c.baseURL = url }
}

// WithModel sets the transcription model. Defaults to "whisper-1".
func WithModel(model string) Option {
	return func(c *config) { c.model = model }
}

// WithTimeout sets a per-request HTTP timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *config) { c.timeout = d }
}

// Provider implements transcribe.Provider using the OpenAI Whisper API.
type Provider struct {
	client oai.Client
	model  string
}

// New constructs a Whisper API Provider. apiKey must be non-empty.
func New(apiKey string, opts ...Option) (*Provider, error) {
	if apiKey == "" {
		return nil, errors.New("whisper: apiKey must not be empty")
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

// Transcribe implements transcribe.Provider.
//
// languageHint is forwarded to the API when non-empty; an empty hint lets
// Whisper auto-detect the spoken language. The detected language is echoed
// back as the hint when one was given, since the JSON response format does not
// include a language field.
func (p *Provider) Transcribe(ctx context.Context, clip types.AudioClip, languageHint string) (*transcribe.Result, error) {
	if len(clip.Data) == 0 {
		return nil, errors.New("whisper: clip contains no audio data")
	}

	params := oai.AudioTranscriptionNewParams{
		File:  oai.File(bytes.NewReader(clip.Data), fileName(clip), clip.MIMEType),
		Model: oai.AudioModel(p.model),
	}
	if languageHint != "" {
		params.Language = param.NewOpt(languageHint)
	}

	resp, err := p.client.Audio.Transcriptions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("whisper: transcription request: %w", err)
	}

	return &transcribe.Result{
		Text:       resp.Text,
		Language:   languageHint,
		Confidence: nominalConfidence,
	}, nil
}

// fileName derives an upload filename from the clip's MIME type. The Whisper
// API infers the container format from the file extension.
func fileName(clip types.AudioClip) string {
	switch clip.MIMEType {
	case "audio/mp4", "audio/m4a", "audio/x-m4a":
		return "audio.m4a"
	case "audio/mpeg", "audio/mp3":
		return "audio.mp3"
	case "audio/ogg":
		return "audio.ogg"
	case "audio/webm":
		return "audio.webm"
	default:
		return "audio.wav"
	}
}
