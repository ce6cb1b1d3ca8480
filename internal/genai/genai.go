// Package genai provides the free-form question responder.
//
// Guided flow answers come from the dialogue engine; this package only covers
// the distinguished freeform step. The live implementation talks to OpenAI or
// any OpenAI-compatible endpoint (e.g. a local Ollama server); when no backend
// is configured a static responder gives a polite redirect instead.
package genai

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// FreeformResponder answers a free-form visitor question. Callers must treat
// a returned error as "use the fallback text", never as something to surface
// to the visitor.
type FreeformResponder interface {
	Answer(ctx context.Context, userText string) (string, error)
}

// FallbackAnswer is returned whenever no AI backend is reachable.
const FallbackAnswer = "That's a great question! 😊 Our admissions team can give you the best answer. Would you like us to call you, or feel free to reach us at our school directly!"

// schoolSystemPrompt keeps the model on-script: warm tone, no invented fees,
// always steer toward a visit.
const schoolSystemPrompt = `You are a friendly admissions assistant for Learning Curve Preschool in Viman Nagar, Pune.

ABOUT THE SCHOOL:
- Location: Viman Nagar, Pune 411014
- Programs: Playgroup (1.5-2.5yrs), Nursery (2.5-3.5yrs), Junior KG (3.5-4.5yrs), Senior KG (4.5-6yrs), Daycare (1.5-6yrs)
- Timings: 9AM-12PM / 12:30-3:30PM
- Daycare: 8AM-6PM
- Days: Monday to Saturday

YOUR PERSONALITY:
- Warm, caring, patient
- Speak like a friendly teacher
- Use simple language
- Occasional emojis (not too many)
- Short responses (2-3 lines max)

YOUR GOALS:
- Answer questions confidently
- Always try to encourage a school visit
- Never make up fee information
- If unsure, say the team will call them

NEVER:
- Make up specific fee amounts
- Promise things you're not sure about
- Give long robotic responses`

// Generation limits for free-form answers.
const (
	defaultTemperature = 0.7
	maxAnswerTokens    = 150
)

// Opts holds configuration options for the GenAI client.
type Opts struct {
	APIKey  string
	BaseURL string
	Model   string
}

// Option defines a configuration option for the GenAI client.
type Option func(*Opts)

// WithAPIKey sets the API key.
func WithAPIKey(key string) Option {
	return func(o *Opts) { o.APIKey = key }
}

// WithBaseURL points the client at an OpenAI-compatible endpoint, e.g. an
// Ollama server's /v1 API.
func WithBaseURL(url string) Option {
	return func(o *Opts) { o.BaseURL = url }
}

// WithModel overrides the chat model.
func WithModel(model string) Option {
	return func(o *Opts) { o.Model = model }
}

// Client answers free-form questions through a chat-completion API.
type Client struct {
	chat  openai.Client
	model openai.ChatModel
}

// NewClient initializes a live responder. At least one of an API key or a
// base URL must be configured; otherwise the caller should fall back to the
// static responder.
func NewClient(opts ...Option) (*Client, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	slog.Debug("GenAI client config loaded", "APIKey_set", cfg.APIKey != "", "BaseURL_set", cfg.BaseURL != "", "model", cfg.Model)

	if cfg.APIKey == "" && cfg.BaseURL == "" {
		return nil, fmt.Errorf("no API key or base URL configured")
	}

	var reqOpts []option.RequestOption
	if cfg.APIKey != "" {
		reqOpts = append(reqOpts, option.WithAPIKey(cfg.APIKey))
	}
	if cfg.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(cfg.BaseURL))
	}
	model := openai.ChatModelGPT4oMini
	if cfg.Model != "" {
		model = openai.ChatModel(cfg.Model)
	}
	return &Client{chat: openai.NewClient(reqOpts...), model: model}, nil
}

// Answer generates a response for a free-form visitor question.
func (c *Client) Answer(ctx context.Context, userText string) (string, error) {
	resp, err := c.chat.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(schoolSystemPrompt),
			openai.UserMessage(userText),
		},
		Temperature:         openai.Float(defaultTemperature),
		MaxCompletionTokens: openai.Int(maxAnswerTokens),
	})
	if err != nil {
		slog.Error("GenAI Answer failed", "error", err)
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices returned")
	}
	slog.Debug("GenAI Answer succeeded")
	return resp.Choices[0].Message.Content, nil
}

// StaticResponder is the no-backend fallback: every question gets the same
// polite redirect toward the admissions team.
type StaticResponder struct{}

// Answer returns the fixed fallback text.
func (StaticResponder) Answer(ctx context.Context, userText string) (string, error) {
	return FallbackAnswer, nil
}
