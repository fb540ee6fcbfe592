// Package brain is a chat client that remembers the whole conversation.
package brain

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/sashabaranov/go-openai"
)

const (
	DefaultRequestTimeout = 15 * time.Second

	DefaultModel        = "gpt-4o-mini"
	DefaultSystemPrompt = "You are archangel Raphael's brain. Answer concisely and helpfully."
)

var (
	ErrNoAPIKey   = errors.New("brain: API key required")
	ErrEmptyReply = errors.New("brain: model returned no choices")
)

// Completer is the subset of the OpenAI client the brain needs.
type Completer interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

type Config struct {
	APIKey         string
	BaseURL        string
	Model          string
	SystemPrompt   string
	Temperature    float32
	MaxTokens      int
	RequestTimeout time.Duration
}

type Brain struct {
	client Completer
	config Config

	mu      sync.Mutex
	history []openai.ChatCompletionMessage
}

// New builds a brain backed by the OpenAI API.
func New(cfg Config) (*Brain, error) {
	if cfg.APIKey == "" {
		return nil, ErrNoAPIKey
	}

	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = DefaultRequestTimeout
	}

	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = cfg.BaseURL
	}
	oc.HTTPClient = &http.Client{Timeout: cfg.RequestTimeout}

	return NewWithClient(openai.NewClientWithConfig(oc), cfg), nil
}

// NewWithClient builds a brain on an existing completer.
func NewWithClient(client Completer, cfg Config) *Brain {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.SystemPrompt == "" {
		cfg.SystemPrompt = DefaultSystemPrompt
	}

	return &Brain{
		client: client,
		config: cfg,
		history: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: cfg.SystemPrompt},
		},
	}
}

// Ask appends prompt to the conversation and returns the model's answer, which
// is appended too. History is append-only; a failed call leaves the prompt in
// place without an answer.
func (b *Brain) Ask(ctx context.Context, prompt string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.history = append(b.history, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: prompt,
	})

	resp, err := b.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       b.config.Model,
		Messages:    append([]openai.ChatCompletionMessage(nil), b.history...),
		Temperature: b.config.Temperature,
		MaxTokens:   b.config.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("brain: chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyReply
	}

	answer := strings.TrimSpace(resp.Choices[0].Message.Content)
	b.history = append(b.history, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleAssistant,
		Content: answer,
	})

	return answer, nil
}

// History returns a copy of the conversation so far, system prompt first.
func (b *Brain) History() []openai.ChatCompletionMessage {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]openai.ChatCompletionMessage(nil), b.history...)
}
