package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/harun/literelay/internal/observability"
	"github.com/harun/literelay/internal/tracing"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// maxErrorBodyBytes caps how much of an upstream error body ends up in error messages.
const maxErrorBodyBytes = 512

// Client implements Generator against a liteLLM-style HTTP endpoint
type Client struct {
	endpoint   string
	httpClient *http.Client
}

// generateRequest is the upstream wire request
type generateRequest struct {
	Prompt      string  `json:"prompt"`
	Model       string  `json:"model"`
	MaxTokens   int     `json:"max_tokens"`
	Temperature float64 `json:"temperature"`
}

// generateResponse is the upstream wire response
type generateResponse struct {
	Text string `json:"text"`
}

// NewClient creates a new upstream HTTP client
func NewClient(endpoint string, timeout time.Duration) *Client {
	return &Client{
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Name returns the generator name
func (c *Client) Name() string {
	return "litellm"
}

// Generate makes a generation call to the upstream endpoint
func (c *Client) Generate(ctx context.Context, request GenerateRequest) (*GenerateResponse, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, span := tracing.StartSpan(
		ctx,
		"literelay.llm",
		"llm.generate",
		attribute.String("model", request.Model),
		attribute.Int("prompt_chars", len(request.Prompt)),
	)
	defer span.End()
	logger := tracing.LoggerFromContext(ctx, log.Logger)

	start := time.Now()

	body, err := json.Marshal(generateRequest{
		Prompt:      request.Prompt,
		Model:       request.Model,
		MaxTokens:   request.MaxTokens,
		Temperature: request.Temperature,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to marshal upstream request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to build upstream request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		observability.RecordUpstreamCall("error", time.Since(start))
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("upstream request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet := readErrorSnippet(resp.Body)
		err := fmt.Errorf("unexpected upstream status %d: %s", resp.StatusCode, snippet)
		observability.RecordUpstreamCall("error", time.Since(start))
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		observability.RecordUpstreamCall("error", time.Since(start))
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to decode upstream response: %w", err)
	}

	observability.RecordUpstreamCall("ok", time.Since(start))

	logger.Debug().
		Str("model", request.Model).
		Int("reply_chars", len(out.Text)).
		Dur("duration", time.Since(start)).
		Msg("Upstream generation completed")

	return &GenerateResponse{Text: out.Text}, nil
}

func readErrorSnippet(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, maxErrorBodyBytes))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}
