package nlu

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const (
	GroqBaseURL       = "https://api.groq.com/openai/v1"
	OpenRouterBaseURL = "https://openrouter.ai/api/v1"

	DefaultGroqModel       = "llama-3.1-8b-instant"
	DefaultOpenRouterModel = "mistralai/Mistral-7B-Instruct-v0.1"

	DefaultTemperature = 0.3
	DefaultMaxTokens   = 500
)

var (
	ErrMissingKey = errors.New("api key is not configured")
	ErrEmptyReply = errors.New("empty reply")
	ErrNoChoices  = errors.New("no choices in response")
)

// Backend is one chat-completion provider.
type Backend interface {
	Name() string
	Complete(ctx context.Context, system, user string) (string, error)
}

type BackendConfig struct {
	Name        string
	BaseURL     string
	APIKey      string
	Model       string
	Headers     map[string]string
	HTTPClient  *http.Client
	Temperature float64
	MaxTokens   int64
}

// OpenAIBackend talks to any OpenAI-compatible chat endpoint.
type OpenAIBackend struct {
	cfg    BackendConfig
	client openai.Client
}

func NewOpenAIBackend(cfg BackendConfig) *OpenAIBackend {
	if cfg.Temperature == 0 {
		cfg.Temperature = DefaultTemperature
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	}
	for k, v := range cfg.Headers {
		opts = append(opts, option.WithHeader(k, v))
	}

	return &OpenAIBackend{cfg: cfg, client: openai.NewClient(opts...)}
}

// NewGroq and NewOpenRouter preset the two providers the assistant ships
// with. An empty model selects the default.
func NewGroq(apiKey, model string, hc *http.Client) *OpenAIBackend {
	if model == "" {
		model = DefaultGroqModel
	}
	return NewOpenAIBackend(BackendConfig{
		Name:       "groq",
		BaseURL:    GroqBaseURL,
		APIKey:     apiKey,
		Model:      model,
		HTTPClient: hc,
	})
}

func NewOpenRouter(apiKey, model string, hc *http.Client) *OpenAIBackend {
	if model == "" {
		model = DefaultOpenRouterModel
	}
	return NewOpenAIBackend(BackendConfig{
		Name:       "openrouter",
		BaseURL:    OpenRouterBaseURL,
		APIKey:     apiKey,
		Model:      model,
		Headers:    map[string]string{"HTTP-Referer": "jarvis-assistant"},
		HTTPClient: hc,
	})
}

func (b *OpenAIBackend) Name() string { return b.cfg.Name }

func (b *OpenAIBackend) Model() string { return b.cfg.Model }

func (b *OpenAIBackend) Configured() bool { return b.cfg.APIKey != "" }

func (b *OpenAIBackend) Complete(ctx context.Context, system, user string) (string, error) {
	if b.cfg.APIKey == "" {
		return "", fmt.Errorf("%s: %w", b.cfg.Name, ErrMissingKey)
	}

	resp, err := b.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
		Model:       openai.ChatModel(b.cfg.Model),
		Temperature: openai.Float(b.cfg.Temperature),
		MaxTokens:   openai.Int(b.cfg.MaxTokens),
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrNoChoices
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", ErrEmptyReply
	}
	return content, nil
}
