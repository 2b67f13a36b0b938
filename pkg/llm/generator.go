package llm

import (
	"context"
	"time"

	"github.com/harun/literelay/internal/config"
)

// Generator is an interface for text generation backends
type Generator interface {
	// Generate makes a generation call
	Generate(ctx context.Context, request GenerateRequest) (*GenerateResponse, error)

	// Name returns the generator name
	Name() string
}

// GenerateRequest contains the request parameters for a generation call
type GenerateRequest struct {
	Prompt      string
	Model       string
	MaxTokens   int
	Temperature float64
}

// GenerateResponse contains the response from the generation endpoint
type GenerateResponse struct {
	Text string
}

// NewGenerator creates a generator from upstream configuration
func NewGenerator(cfg config.UpstreamConfig) Generator {
	if cfg.Mock {
		return NewMock()
	}
	return NewClient(cfg.Endpoint, time.Duration(cfg.Timeout)*time.Second)
}
