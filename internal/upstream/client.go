package upstream

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/eternisai/fxinsight/internal/insights"
	"github.com/eternisai/fxinsight/internal/logger"
	openai "github.com/sashabaranov/go-openai"
)

const (
	// DefaultBaseURL is the OpenAI-compatible API root used when none is configured.
	DefaultBaseURL = "https://api.openai.com/v1"
	// DefaultModel is used when neither the caller nor the configuration names a model.
	DefaultModel = "gpt-4o-mini"

	defaultTemperature = 0.6
	schemaName         = "insight_points"
	maxErrorBodyBytes  = 64 << 10
)

// ResponseFormat selects how the model is asked to produce structured output.
type ResponseFormat string

const (
	// FormatJSONObject asks for any valid JSON object.
	FormatJSONObject ResponseFormat = "json_object"
	// FormatJSONSchema asks for output that strictly matches insights.ResponseSchema.
	FormatJSONSchema ResponseFormat = "json_schema"
)

// StatusError is returned when the upstream answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream returned %d: %s", e.StatusCode, e.Body)
}

// Options configures a Client.
type Options struct {
	BaseURL        string
	DefaultModel   string
	Temperature    float32
	ResponseFormat ResponseFormat
	HTTPClient     *http.Client
}

// Call is a single chat completion.
type Call struct {
	APIKey string
	// Model overrides the client's default model when set.
	Model  string
	Prompt insights.Prompt
}

// Client issues chat completions against an OpenAI-compatible API.
// The API key is supplied per call so that the credential can change between calls.
type Client struct {
	baseURL        string
	defaultModel   string
	temperature    float32
	responseFormat ResponseFormat
	httpClient     *http.Client
	logger         *logger.Logger
}

// NewClient creates a new upstream client.
func NewClient(opts Options, logger *logger.Logger) *Client {
	c := &Client{
		baseURL:        opts.BaseURL,
		defaultModel:   opts.DefaultModel,
		temperature:    opts.Temperature,
		responseFormat: opts.ResponseFormat,
		httpClient:     opts.HTTPClient,
		logger:         logger.WithComponent("upstream"),
	}

	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	if c.defaultModel == "" {
		c.defaultModel = DefaultModel
	}
	if c.temperature == 0 {
		c.temperature = defaultTemperature
	}
	if c.responseFormat == "" {
		c.responseFormat = FormatJSONObject
	}
	if c.httpClient == nil {
		// No client timeout: the caller's context bounds the call.
		c.httpClient = &http.Client{}
	}

	return c
}

// Model resolves the model used for a call.
func (c *Client) Model(requested string) string {
	if requested != "" {
		return requested
	}
	return c.defaultModel
}

// Complete sends the prompt and returns the content of the first choice.
// A cancelled context is returned as ctx.Err(); non-2xx answers as *StatusError.
func (c *Client) Complete(ctx context.Context, call Call) (string, error) {
	capture := newErrorBodyCapture(c.httpClient.Transport)
	httpClient := *c.httpClient
	httpClient.Transport = capture

	cfg := openai.DefaultConfig(call.APIKey)
	cfg.BaseURL = c.baseURL
	cfg.HTTPClient = &httpClient
	client := openai.NewClientWithConfig(cfg)

	model := c.Model(call.Model)
	req := openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: call.Prompt.System},
			{Role: openai.ChatMessageRoleUser, Content: call.Prompt.User},
		},
		Temperature:    c.temperature,
		ResponseFormat: c.format(),
	}

	start := time.Now()
	resp, err := client.CreateChatCompletion(ctx, req)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return "", ctxErr
	}
	if err != nil {
		c.logger.WithContext(ctx).Warn("chat completion failed",
			slog.String("model", model),
			slog.Duration("duration", time.Since(start)),
			slog.String("error", err.Error()))
		return "", translateError(err, capture.Body())
	}

	c.logger.WithContext(ctx).Debug("chat completion finished",
		slog.String("model", model),
		slog.Duration("duration", time.Since(start)),
		slog.Int("choices", len(resp.Choices)),
		slog.Int("total_tokens", resp.Usage.TotalTokens))

	if len(resp.Choices) == 0 {
		return "", nil
	}

	return resp.Choices[0].Message.Content, nil
}

func (c *Client) format() *openai.ChatCompletionResponseFormat {
	if c.responseFormat == FormatJSONSchema {
		return &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   schemaName,
				Schema: insights.ResponseSchema(),
				Strict: true,
			},
		}
	}

	return &openai.ChatCompletionResponseFormat{
		Type: openai.ChatCompletionResponseFormatTypeJSONObject,
	}
}

// translateError maps SDK errors carrying an HTTP status to *StatusError.
// The raw response body wins over whatever the SDK managed to decode from it.
func translateError(err error, rawBody []byte) error {
	status := 0
	var body string

	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr) && apiErr.HTTPStatusCode != 0:
		status, body = apiErr.HTTPStatusCode, apiErr.Message
	case errors.As(err, &reqErr) && reqErr.HTTPStatusCode != 0:
		status, body = reqErr.HTTPStatusCode, string(reqErr.Body)
	default:
		return fmt.Errorf("chat completion: %w", err)
	}

	if rawBody != nil {
		body = string(rawBody)
	}

	return &StatusError{StatusCode: status, Body: body}
}

// errorBodyCapture keeps a copy of the body of a non-2xx response and hands the
// SDK an identical reader.
type errorBodyCapture struct {
	base http.RoundTripper

	mu   sync.Mutex
	body []byte
}

func newErrorBodyCapture(base http.RoundTripper) *errorBodyCapture {
	if base == nil {
		base = http.DefaultTransport
	}
	return &errorBodyCapture{base: base}
}

func (t *errorBodyCapture) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.base.RoundTrip(req)
	if err != nil || resp.StatusCode < http.StatusBadRequest {
		return resp, err
	}

	body, readErr := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
	resp.Body.Close()
	if readErr != nil {
		return nil, fmt.Errorf("read error response: %w", readErr)
	}

	t.mu.Lock()
	t.body = body
	t.mu.Unlock()

	resp.Body = io.NopCloser(bytes.NewReader(body))
	return resp, nil
}

// Body returns the captured error body, or nil when no error response was seen.
func (t *errorBodyCapture) Body() []byte {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.body
}
