// Package relay is the caller-side half of the chat bridge: it forwards a chat
// turn to the proxy endpoint and folds every outcome into a domain.ChatResult.
package relay

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

	"github.com/tidwall/gjson"

	"khata-advisor/internal/domain"
)

const (
	msgServiceError    = "AI service error"
	msgNoResponse      = "No response from AI service"
	msgInvalidResponse = "Invalid response from AI service"
)

type chatRequest struct {
	UserMessage         string               `json:"userMessage"`
	ConversationHistory []domain.ChatMessage `json:"conversationHistory"`
	Transactions        []domain.Transaction `json:"transactions"`
}

// Client posts chat turns to the proxy endpoint.
type Client struct {
	endpoint   string
	httpClient *http.Client
	logger     *slog.Logger
}

type Option func(*Client)

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// New returns a Client for the proxy at endpoint, e.g.
// "https://app.example.com/api/ai/chat".
func New(endpoint string, opts ...Option) (*Client, error) {
	endpoint = strings.TrimSpace(endpoint)
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("relay: parse endpoint: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, errors.New("relay: endpoint must be an http or https URL")
	}
	c := &Client{
		endpoint:   endpoint,
		httpClient: &http.Client{},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// GetChatResponse sends one chat turn and waits for the full reply. It never
// returns an error; failures are reported in the result and logged.
func (c *Client) GetChatResponse(ctx context.Context, userMessage string, history []domain.ChatMessage, transactions []domain.Transaction) domain.ChatResult {
	if history == nil {
		history = []domain.ChatMessage{}
	}
	if transactions == nil {
		transactions = []domain.Transaction{}
	}
	body, err := json.Marshal(chatRequest{
		UserMessage:         userMessage,
		ConversationHistory: history,
		Transactions:        transactions,
	})
	if err != nil {
		return c.fail(ctx, fmt.Sprintf("encode request: %v", err), "err", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return c.fail(ctx, err.Error(), "err", err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return c.fail(ctx, err.Error(), "err", err)
	}
	defer func() { _ = res.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return c.fail(ctx, err.Error(), "err", err, "status", res.StatusCode)
	}

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		msg := msgServiceError
		if e := gjson.GetBytes(raw, "error"); e.Type == gjson.String && e.String() != "" {
			msg = e.String()
		}
		return c.fail(ctx, msg, "status", res.StatusCode)
	}
	if !gjson.ValidBytes(raw) {
		return c.fail(ctx, msgInvalidResponse, "status", res.StatusCode)
	}
	reply := gjson.GetBytes(raw, "message")
	if reply.Type != gjson.String || reply.String() == "" {
		return c.fail(ctx, msgNoResponse, "status", res.StatusCode)
	}
	return domain.Succeeded(reply.String())
}

func (c *Client) fail(ctx context.Context, msg string, attrs ...any) domain.ChatResult {
	c.logger.ErrorContext(ctx, "AI service error", append([]any{"error_message", msg, "endpoint", c.endpoint}, attrs...)...)
	return domain.Failed(msg)
}
