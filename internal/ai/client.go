// Package ai calls an OpenAI-compatible chat completions endpoint to
// propose an entity name when the rule pipeline comes up empty or weak.
// Groq and OpenAI are both served by the same wire protocol.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/jonesrussell/shogo/internal/extract"
	"github.com/jonesrussell/shogo/internal/logger"
)

// Providers supported out of the box.
const (
	ProviderGroq   = "groq"
	ProviderOpenAI = "openai"
)

const (
	// DefaultTimeout bounds one completion call.
	DefaultTimeout = 60 * time.Second
	// DefaultMaxContentLength caps the page content sent to the model,
	// in runes.
	DefaultMaxContentLength = 8000

	maxResponseTokens = 512
	completionsPath   = "/chat/completions"
)

var (
	ErrMissingAPIKey  = errors.New("ai: api key is required")
	ErrMissingBaseURL = errors.New("ai: base url is required")
	ErrMissingModel   = errors.New("ai: model is required")
	ErrEmptyResponse  = errors.New("ai: empty completion response")
	ErrNoSuggestion   = errors.New("ai: no usable suggestion in response")
)

// Config carries fully-resolved client settings. Provider defaults are
// applied by the configuration layer, not here.
type Config struct {
	Provider         string
	APIKey           string
	Model            string
	BaseURL          string
	Timeout          time.Duration
	MaxContentLength int
}

// Client talks to one chat completions endpoint. Safe for concurrent use.
type Client struct {
	httpClient *http.Client
	cfg        Config
	log        logger.Interface
}

// New validates the configuration and creates a Client.
func New(cfg Config, log logger.Interface) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	if cfg.BaseURL == "" {
		return nil, ErrMissingBaseURL
	}
	if cfg.Model == "" {
		return nil, ErrMissingModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxContentLength <= 0 {
		cfg.MaxContentLength = DefaultMaxContentLength
	}
	if log == nil {
		log = logger.NewNoOp()
	}
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		cfg:        cfg,
		log:        log,
	}, nil
}

// Extract asks the model for the field value in the given page content.
// The content is reduced to its readable core and capped before sending.
func (c *Client) Extract(ctx context.Context, pageContent string, field extract.FieldSpec) (*extract.AISuggestion, error) {
	focused := FocusContent(pageContent, c.cfg.MaxContentLength)
	if focused == "" {
		return nil, ErrNoSuggestion
	}

	content, err := c.complete(ctx, buildMessages(focused, field))
	if err != nil {
		return nil, err
	}

	suggestion, err := parseSuggestion(content)
	if err != nil {
		return nil, err
	}

	c.log.Debug("ai suggestion",
		"model", c.cfg.Model,
		"value", suggestion.Value,
		"confidence", suggestion.Confidence,
	)
	return suggestion, nil
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	Temperature    float64         `json:"temperature"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *apiError `json:"error"`
}

type apiError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// complete performs one chat completions call and returns the raw message
// content of the first choice.
func (c *Client) complete(ctx context.Context, messages []chatMessage) (string, error) {
	payload, err := json.Marshal(chatRequest{
		Model:          c.cfg.Model,
		Messages:       messages,
		Temperature:    0,
		MaxTokens:      maxResponseTokens,
		ResponseFormat: &responseFormat{Type: "json_object"},
	})
	if err != nil {
		return "", fmt.Errorf("ai: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+completionsPath, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("ai: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("ai: completion call: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("ai: read response: %w", err)
	}

	var parsed chatResponse
	if unmarshalErr := json.Unmarshal(body, &parsed); unmarshalErr != nil {
		return "", fmt.Errorf("ai: decode response (status %d): %w", resp.StatusCode, unmarshalErr)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("ai: provider error (status %d): %s", resp.StatusCode, parsed.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ai: unexpected status %d", resp.StatusCode)
	}
	if len(parsed.Choices) == 0 || parsed.Choices[0].Message.Content == "" {
		return "", ErrEmptyResponse
	}
	return parsed.Choices[0].Message.Content, nil
}
