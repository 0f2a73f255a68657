// Package openai provides a translate.Provider backed by the OpenAI chat
// completions API.
//
// Translation is phrased as a single system-prompted completion: the model is
// instructed to return only the translated text, with temperature 0 for
// deterministic output. LLM translation handles conversational register and
// dialect better than fixed phrase tables, at higher latency and cost than a
// dedicated MT service.
package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"github.com/voxbridge-app/voxbridge/pkg/provider/translate"
)

const defaultModel = "gpt-4o-mini"

// systemPromptFmt is the instruction template. The model must emit only the
// translation; any commentary would end up verbatim in the caption log.
const systemPromptFmt = "You are a translation engine. Translate the user's message from %s to %s. " +
	"Reply with only the translated text, no explanations, no quotation marks."

// autoSourceSystemPromptFmt is used when the source language is unknown.
const autoSourceSystemPromptFmt = "You are a translation engine. Detect the language of the user's message and translate it to %s. " +
	"Reply with only the translated text, no explanations, no quotation marks."

// Compile-time assertion that Provider implements translate.Provider.
var _ translate.Provider = (*Provider)(nil)

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

// WithModel sets the chat model used for translation. Defaults to "gpt-4o-mini".
func WithModel(model string) Option {
	return func(c *config) { c.model = model }
}

// WithTimeout sets a per-request HTTP timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *config) { c.timeout = d }
}

// Provider implements translate.Provider using the OpenAI chat API.
type Provider struct {
	client oai.Client
	model  string
}

// New constructs an OpenAI translation Provider. apiKey must be non-empty.
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

// Translate implements translate.Provider.
func (p *Provider) Translate(ctx context.Context, req translate.Request) (*translate.Result, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, errors.New("openai: text must not be empty")
	}
	if req.To == "" {
		return nil, errors.New("openai: target language must not be empty")
	}

	system := fmt.Sprintf(autoSourceSystemPromptFmt, req.To)
	if req.From != "" {
		system = fmt.Sprintf(systemPromptFmt, req.From, req.To)
	}

	resp, err := p.client.Chat.Completions.New(ctx, oai.ChatCompletionNewParams{
		Model: shared.ChatModel(p.model),
		Messages: []oai.ChatCompletionMessageParamUnion{
			oai.SystemMessage(system),
			oai.UserMessage(req.Text),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("openai: chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("openai: empty choices in response")
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return nil, errors.New("openai: model returned an empty translation")
	}

	return &translate.Result{
		Text:             text,
		DetectedLanguage: req.From,
	}, nil
}
