// Package completion sends single-turn prompts to an OpenAI-compatible
// chat completions endpoint such as Groq.
package completion

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"labrag/internal/domain"
	"labrag/internal/logging"
)

const (
	DefaultBaseURL = "https://api.groq.com/openai/v1"
	DefaultModel   = "llama-3.1-8b-instant"
)

// Config holds configuration for the completion client.
type Config struct {
	APIKey     string
	BaseURL    string
	Model      string
	Timeout    time.Duration // HTTP timeout; zero leaves the SDK default
	HTTPClient *http.Client  // Optional (tests)
}

// Client implements domain.Completer using the official OpenAI SDK.
type Client struct {
	model  string
	client openai.Client
	logger *log.Logger
}

// NewClient creates a completion client. Requests are never retried.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(cfg.BaseURL),
		option.WithMaxRetries(0),
	}
	switch {
	case cfg.HTTPClient != nil:
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	case cfg.Timeout > 0:
		opts = append(opts, option.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}))
	}
	return &Client{
		model:  cfg.Model,
		client: openai.NewClient(opts...),
		logger: logging.Logger(logging.SourceLLM),
	}
}

// Model returns the model identifier sent with each request.
func (c *Client) Model() string { return c.model }

// Complete sends prompt as a single user message and returns the first
// choice's content verbatim.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Model: openai.ChatModel(c.model),
	})
	if err != nil {
		c.logger.Error("completion failed", "model", c.model, "err", err)
		return "", fmt.Errorf("%w: completion request: %v", domain.ErrService, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices in response", domain.ErrService)
	}
	c.logger.Info("completion done",
		"model", resp.Model,
		"prompt_tokens", resp.Usage.PromptTokens,
		"completion_tokens", resp.Usage.CompletionTokens,
		"elapsed", time.Since(start),
	)
	return resp.Choices[0].Message.Content, nil
}
