// Package gemini answers portal FAQ questions with the Gemini
// generateContent REST API.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/nextedu/portal/internal/domain/chatbot"
	"github.com/nextedu/portal/internal/domain/shared"
	"github.com/nextedu/portal/pkg/circuitbreaker"
)

// ══════════════════════════════════════════════════════════════════════════════
// CONFIGURATION
// ══════════════════════════════════════════════════════════════════════════════

// Config contains configuration for the Gemini client.
type Config struct {
	BaseURL string
	APIKey  string
	Model   string

	// SystemPrompt is sent as the system instruction on every call.
	SystemPrompt string

	Timeout         time.Duration
	Temperature     float64
	MaxOutputTokens int

	Logger *slog.Logger
}

// DefaultConfig returns defaults for the public endpoint.
func DefaultConfig(apiKey string) Config {
	return Config{
		BaseURL:         "https://generativelanguage.googleapis.com",
		APIKey:          apiKey,
		Model:           "gemini-2.0-flash",
		Timeout:         20 * time.Second,
		Temperature:     0.4,
		MaxOutputTokens: 512,
	}
}

// maxResponseBytes caps how much of a response body is read.
const maxResponseBytes = 1 << 20

// ══════════════════════════════════════════════════════════════════════════════
// CLIENT
// ══════════════════════════════════════════════════════════════════════════════

// Client implements chatbot.Assistant.
type Client struct {
	config     Config
	httpClient *http.Client
	breaker    *circuitbreaker.CircuitBreaker
	logger     *slog.Logger
}

// Option configures Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithBreaker replaces the circuit breaker.
func WithBreaker(cb *circuitbreaker.CircuitBreaker) Option {
	return func(c *Client) { c.breaker = cb }
}

// NewClient creates a new Gemini client.
func NewClient(cfg Config, opts ...Option) *Client {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	logger := cfg.Logger.With("component", "gemini")

	c := &Client{
		config:     cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}
	c.breaker = circuitbreaker.ChatbotBreaker(func(name string, from, to circuitbreaker.State) {
		logger.Warn("circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
	})
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var _ chatbot.Assistant = (*Client)(nil)

// Answer sends the conversation and returns the first candidate's text.
// Errors are shared chatbot errors; the caller decides what the user sees.
func (c *Client) Answer(ctx context.Context, req chatbot.Request) (chatbot.Response, error) {
	req = req.Normalize()
	if req.CurrentQuestion == "" {
		return chatbot.Response{}, shared.WrapError("chatbot", "Answer", shared.ErrEmptyValue, "question is empty", nil)
	}

	var resp chatbot.Response
	err := c.breaker.Execute(ctx, func(ctx context.Context) error {
		answer, err := c.generate(ctx, c.buildRequest(req))
		if err != nil {
			return err
		}
		resp.Answer = answer
		return nil
	})
	if circuitbreaker.IsRejection(err) {
		return chatbot.Response{}, shared.WrapError("chatbot", "Answer", shared.ErrChatbotUnavailable, "circuit open", err)
	}
	if err != nil {
		return chatbot.Response{}, err
	}
	return resp, nil
}

func (c *Client) buildRequest(req chatbot.Request) generateRequest {
	body := generateRequest{
		Contents: make([]content, 0, len(req.PriorMessages)+1),
	}
	if c.config.SystemPrompt != "" {
		body.SystemInstruction = &content{Parts: []part{{Text: c.config.SystemPrompt}}}
	}
	if c.config.Temperature > 0 || c.config.MaxOutputTokens > 0 {
		body.GenerationConfig = &generationConfig{
			Temperature:     c.config.Temperature,
			MaxOutputTokens: c.config.MaxOutputTokens,
		}
	}

	// The API requires the first turn to come from the user.
	started := false
	for _, m := range req.PriorMessages {
		if !started && m.Role != chatbot.RoleUser {
			continue
		}
		started = true
		body.Contents = append(body.Contents, content{Role: string(m.Role), Parts: []part{{Text: m.Content}}})
	}
	body.Contents = append(body.Contents, content{Role: string(chatbot.RoleUser), Parts: []part{{Text: req.CurrentQuestion}}})
	return body
}

func (c *Client) endpoint() string {
	base := strings.TrimRight(c.config.BaseURL, "/")
	return fmt.Sprintf("%s/v1beta/models/%s:generateContent", base, url.PathEscape(c.config.Model))
}

func (c *Client) generate(ctx context.Context, body generateRequest) (string, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshal body: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(), bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("x-goog-api-key", c.config.APIKey)

	start := time.Now()
	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", c.transportError(ctx, err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseBytes))
	if err != nil {
		return "", shared.WrapError("chatbot", "Answer", shared.ErrChatbotUnavailable, "read response", err)
	}

	c.logger.Debug("gemini request finished",
		"status", httpResp.StatusCode,
		"latency", time.Since(start),
		"turns", len(body.Contents),
	)

	if httpResp.StatusCode != http.StatusOK {
		return "", statusError(httpResp.StatusCode, respBody)
	}

	var out generateResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return "", shared.WrapError("chatbot", "Parse", shared.ErrChatbotInvalidResponse, "decode response", err)
	}
	return extractText(out)
}

func (c *Client) transportError(ctx context.Context, err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return shared.WrapError("chatbot", "Answer", shared.ErrChatbotTimeout, "request timed out", err)
	}
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) && netErr.Timeout() {
		return shared.WrapError("chatbot", "Answer", shared.ErrChatbotTimeout, "request timed out", err)
	}
	return shared.WrapError("chatbot", "Answer", shared.ErrChatbotUnavailable, "request failed", err)
}

func statusError(status int, body []byte) error {
	var apiErr apiError
	msg := http.StatusText(status)
	if json.Unmarshal(body, &apiErr) == nil && apiErr.Error.Message != "" {
		msg = apiErr.Error.Message
	}
	cause := fmt.Errorf("status %d: %s", status, msg)

	switch {
	case status == http.StatusTooManyRequests:
		return shared.WrapError("chatbot", "Answer", shared.ErrChatbotRateLimited, "rate limited", cause)
	case status == http.StatusRequestTimeout || status == http.StatusGatewayTimeout:
		return shared.WrapError("chatbot", "Answer", shared.ErrChatbotTimeout, "upstream timeout", cause)
	case status >= 500:
		return shared.WrapError("chatbot", "Answer", shared.ErrChatbotUnavailable, "upstream error", cause)
	default:
		return shared.WrapError("chatbot", "Answer", shared.ErrExternalService, "request rejected", cause)
	}
}

func extractText(out generateResponse) (string, error) {
	if out.PromptFeedback != nil && out.PromptFeedback.BlockReason != "" {
		return "", shared.WrapError("chatbot", "Parse", shared.ErrChatbotInvalidResponse, "prompt blocked: "+out.PromptFeedback.BlockReason, nil)
	}
	for _, cand := range out.Candidates {
		var sb strings.Builder
		for _, p := range cand.Content.Parts {
			sb.WriteString(p.Text)
		}
		if text := strings.TrimSpace(sb.String()); text != "" {
			return text, nil
		}
	}
	return "", shared.ErrChatbotInvalidResponse
}
