package groq

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/tidwall/gjson"

	"khata-advisor/internal/domain"
)

const (
	DefaultBaseURL = "https://api.groq.com/openai/v1"
	DefaultModel   = "llama-3.1-8b-instant"

	defaultTemperature = 0.7
	defaultMaxTokens   = 500
	defaultTopP        = 0.9

	maxResponseBody = 1 << 20
	maxErrorSnippet = 4096
)

var (
	// ErrMissingAPIKey is returned when no API key is configured.
	ErrMissingAPIKey = errors.New("groq: API key is not configured")
	// ErrNoChoices is returned for a 2xx response without reply content.
	ErrNoChoices = errors.New("groq: no reply content in response")
)

// chatRequest is the request shape for the OpenAI-compatible Chat Completions endpoint.
type chatRequest struct {
	Model       string               `json:"model"`
	Messages    []domain.ChatMessage `json:"messages"`
	Temperature float64              `json:"temperature"`
	MaxTokens   int                  `json:"max_tokens"`
	TopP        float64              `json:"top_p"`
}

// chatResponse is the minimal response shape returned by the Chat Completions endpoint.
type chatResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Index   int                `json:"index"`
		Message domain.ChatMessage `json:"message"`
	} `json:"choices"`
}

// HTTPStatusError captures non-2xx upstream responses. Message is the
// provider's error message when the body carried one.
type HTTPStatusError struct {
	StatusCode int
	URL        string
	Message    string
	Body       string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("groq: unexpected status %d from %s: %s", e.StatusCode, e.URL, e.Body)
}

func (e *HTTPStatusError) HTTPStatusCode() int {
	return e.StatusCode
}

// Sampling holds the generation parameters sent with every request.
type Sampling struct {
	Temperature float64
	MaxTokens   int
	TopP        float64
}

// Client is a focused client for Groq's OpenAI-compatible chat completions.
type Client struct {
	baseURL    string
	endpoint   string
	model      string
	sampling   Sampling
	httpClient *http.Client
	keys       KeySource
}

type Option func(*Client)

func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimSpace(baseURL)
	}
}

func WithModel(model string) Option {
	return func(c *Client) {
		if m := strings.TrimSpace(model); m != "" {
			c.model = m
		}
	}
}

func WithSampling(s Sampling) Option {
	return func(c *Client) {
		c.sampling = s
	}
}

// WithHTTPClient replaces the transport; nil keeps the default.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// NewClient creates a Client that resolves its bearer token from keys on
// each request. Cancellation and deadlines come from the request context.
func NewClient(keys KeySource, opts ...Option) (*Client, error) {
	if keys == nil {
		return nil, errors.New("groq: key source must not be nil")
	}
	c := &Client{
		baseURL: DefaultBaseURL,
		model:   DefaultModel,
		sampling: Sampling{
			Temperature: defaultTemperature,
			MaxTokens:   defaultMaxTokens,
			TopP:        defaultTopP,
		},
		httpClient: &http.Client{},
		keys:       keys,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.endpoint = completionsURL(c.baseURL)
	return c, nil
}

// Model reports the model identifier sent upstream.
func (c *Client) Model() string {
	return c.model
}

// completionsURL appends the versioned completions path; a base without a
// trailing /v1 segment gets one.
func completionsURL(baseURL string) string {
	base := strings.TrimSuffix(strings.TrimSpace(baseURL), "/")
	if base == "" {
		base = DefaultBaseURL
	}
	if path.Base(base) != "v1" {
		base += "/v1"
	}
	return base + "/chat/completions"
}

// Chat sends messages and returns the first choice's content.
func (c *Client) Chat(ctx context.Context, messages []domain.ChatMessage) (string, error) {
	apiKey, err := c.keys.APIKey(ctx)
	if err != nil {
		return "", err
	}

	body, err := json.Marshal(chatRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: c.sampling.Temperature,
		MaxTokens:   c.sampling.MaxTokens,
		TopP:        c.sampling.TopP,
	})
	if err != nil {
		return "", fmt.Errorf("groq: marshal request: %w", err)
	}

	status, raw, err := c.post(ctx, apiKey, body)
	if err != nil {
		return "", fmt.Errorf("groq: request failed: %w", err)
	}
	if status < 200 || status > 299 {
		return "", &HTTPStatusError{
			StatusCode: status,
			URL:        c.endpoint,
			Message:    errorMessage(raw),
			Body:       snippet(raw),
		}
	}

	var payload chatResponse
	if err := json.Unmarshal(raw, &payload); err != nil {
		return "", fmt.Errorf("groq: decode response: %w", err)
	}
	if len(payload.Choices) == 0 || payload.Choices[0].Message.Content == "" {
		return "", ErrNoChoices
	}
	return payload.Choices[0].Message.Content, nil
}

// post performs one completion call and hands back the status and body
// whatever the status.
func (c *Client) post(ctx context.Context, apiKey string, body []byte) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)

	res, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer func() { _ = res.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(res.Body, maxResponseBody))
	if err != nil {
		return res.StatusCode, nil, fmt.Errorf("read response body: %w", err)
	}
	return res.StatusCode, raw, nil
}

func snippet(body []byte) string {
	if len(body) > maxErrorSnippet {
		body = body[:maxErrorSnippet]
	}
	return string(body)
}

// errorMessage pulls the provider message out of an error body. Groq sends
// {"error":{"message":...}}; some proxies flatten it to {"error":"..."}.
func errorMessage(body []byte) string {
	if !gjson.ValidBytes(body) {
		return ""
	}
	if m := gjson.GetBytes(body, "error.message"); m.Type == gjson.String {
		return m.String()
	}
	if m := gjson.GetBytes(body, "error"); m.Type == gjson.String {
		return m.String()
	}
	return ""
}
