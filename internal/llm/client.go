package llm

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"
)

// Roles for chat messages sent to the model.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one chat turn in a completion request.
type Message struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// Request is the normalized completion request sent to the model.
type Request struct {
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

// Response is the final model completion.
type Response struct {
	Text  string `json:"text"`
	Model string `json:"model,omitempty"`
}

// Client bridges the coach with a remote completion model.
type Client interface {
	Complete(ctx context.Context, req Request) (Response, error)
}

// Config controls client construction.
type Config struct {
	Mode    string
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// New builds a client for the configured mode. Auto prefers the real
// endpoint when a key is present and otherwise degrades to the mock so the
// coach stays usable offline.
func New(cfg Config) (Client, error) {
	mode := strings.ToLower(strings.TrimSpace(cfg.Mode))
	if mode == "" {
		mode = "auto"
	}

	switch mode {
	case "auto":
		if strings.TrimSpace(cfg.APIKey) != "" {
			return NewOpenAI(cfg)
		}
		log.Printf("llm: no API key configured, using mock client")
		return NewMock(), nil
	case "openai":
		if strings.TrimSpace(cfg.APIKey) == "" {
			return nil, errors.New("llm: API key is required for openai mode")
		}
		return NewOpenAI(cfg)
	case "mock":
		return NewMock(), nil
	default:
		return nil, fmt.Errorf("unsupported llm mode %q", cfg.Mode)
	}
}
