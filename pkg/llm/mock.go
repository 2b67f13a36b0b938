package llm

import (
	"context"
	"strings"
)

// Mock is a canned generator for development and tests
type Mock struct{}

// NewMock creates a new mock generator
func NewMock() *Mock {
	return &Mock{}
}

// Name returns the generator name
func (m *Mock) Name() string {
	return "mock"
}

// Generate produces a deterministic reply echoing the latest user turn
func (m *Mock) Generate(ctx context.Context, request GenerateRequest) (*GenerateResponse, error) {
	last := lastUserLine(request.Prompt)
	if last == "" {
		return &GenerateResponse{Text: "Hello! How can I help?"}, nil
	}
	return &GenerateResponse{Text: "You said: " + last}, nil
}

func lastUserLine(prompt string) string {
	lines := strings.Split(prompt, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if strings.HasPrefix(lines[i], "User: ") {
			return strings.TrimPrefix(lines[i], "User: ")
		}
	}
	return ""
}
