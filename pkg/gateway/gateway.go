// Package gateway issues single-shot prompt completions against an
// OpenAI-compatible completions endpoint.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/papercomputeco/rubberduck/pkg/credentials"
	"github.com/papercomputeco/rubberduck/pkg/llm"
	"github.com/papercomputeco/rubberduck/pkg/logger"
)

const (
	defaultModel     = "gpt-3.5-turbo-instruct"
	defaultMaxTokens = 1024
	defaultTimeout   = 120 * time.Second
)

// KeySource resolves the API key for a provider. It is consulted on every
// call so a key stored mid-session is picked up without a restart.
type KeySource interface {
	ResolveKey(provider string) (string, error)
}

// Config is the gateway configuration.
type Config struct {
	Model     string
	BaseURL   string
	MaxTokens int
	Timeout   time.Duration

	Keys KeySource

	// HTTPClient overrides the client built from Timeout.
	HTTPClient *http.Client

	Logger *slog.Logger
}

// Client is a stateless completion gateway, safe for concurrent use by every
// conversation.
type Client struct {
	openai    openai.Client
	model     string
	maxTokens int
	keys      KeySource
	logger    *slog.Logger
}

// New builds a Client. Retries are disabled: a failed call surfaces to the
// caller right away.
func New(cfg Config) (*Client, error) {
	if cfg.Keys == nil {
		return nil, errors.New("gateway: key source is required")
	}

	model := cfg.Model
	if model == "" {
		model = defaultModel
	}

	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	opts := []option.RequestOption{
		option.WithMaxRetries(0),
		option.WithHTTPClient(httpClient),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	log := cfg.Logger
	if log == nil {
		log = logger.Nop()
	}

	return &Client{
		openai:    openai.NewClient(opts...),
		model:     model,
		maxTokens: maxTokens,
		keys:      cfg.Keys,
		logger:    log.With("component", "gateway"),
	}, nil
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.model
}

// Complete sends prompt with the configured model and returns the text of
// the first choice.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := c.CompleteRequest(ctx, llm.NewCompletionRequest(c.model, prompt, c.maxTokens))
	if err != nil {
		return "", err
	}
	return resp.Text, nil
}

// CompleteRequest sends req as is. Errors are always one of *AuthError,
// *TransportError or *BackendError.
func (c *Client) CompleteRequest(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	key, err := c.keys.ResolveKey(credentials.ProviderOpenAI)
	if err != nil {
		return nil, &AuthError{Message: fmt.Sprintf("could not read the stored OpenAI API key: %v", err)}
	}
	if strings.TrimSpace(key) == "" {
		return nil, &AuthError{
			Message: fmt.Sprintf("no OpenAI API key configured: run `rubberduck auth openai` or set %s",
				credentials.EnvVarForProvider(credentials.ProviderOpenAI)),
		}
	}

	params := openai.CompletionNewParams{
		Model: openai.CompletionNewParamsModel(req.Model),
		Prompt: openai.CompletionNewParamsPromptUnion{
			OfString: openai.String(req.Prompt),
		},
		MaxTokens:        openai.Int(int64(req.MaxTokens)),
		Temperature:      openai.Float(req.Temperature),
		BestOf:           openai.Int(int64(req.BestOf)),
		FrequencyPenalty: openai.Float(req.FrequencyPenalty),
		PresencePenalty:  openai.Float(req.PresencePenalty),
	}

	start := time.Now()
	resp, err := c.openai.Completions.New(ctx, params, option.WithAPIKey(key))
	if err != nil {
		classified := classify(err)
		c.logger.DebugContext(ctx, "completion failed",
			"model", req.Model,
			"duration_ms", time.Since(start).Milliseconds(),
			"error", classified,
		)
		return nil, classified
	}

	if len(resp.Choices) == 0 {
		return nil, &BackendError{Message: "no completion choices returned"}
	}

	choice := resp.Choices[0]
	c.logger.DebugContext(ctx, "completion finished",
		"model", resp.Model,
		"duration_ms", time.Since(start).Milliseconds(),
		"prompt_tokens", resp.Usage.PromptTokens,
		"completion_tokens", resp.Usage.CompletionTokens,
		"finish_reason", choice.FinishReason,
	)

	return &llm.CompletionResponse{
		Model:        resp.Model,
		Text:         choice.Text,
		FinishReason: string(choice.FinishReason),
		Usage: &llm.Usage{
			PromptTokens:     int(resp.Usage.PromptTokens),
			CompletionTokens: int(resp.Usage.CompletionTokens),
			TotalTokens:      int(resp.Usage.TotalTokens),
		},
	}, nil
}

func classify(err error) error {
	var apiErr *openai.Error
	if !errors.As(err, &apiErr) {
		return &TransportError{Err: err}
	}

	msg := apiErr.Message
	if msg == "" {
		msg = http.StatusText(apiErr.StatusCode)
	}

	switch apiErr.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return &AuthError{
			StatusCode: apiErr.StatusCode,
			Message:    "the OpenAI API key is invalid or lacks access: " + msg,
		}
	default:
		return &BackendError{StatusCode: apiErr.StatusCode, Message: msg}
	}
}
