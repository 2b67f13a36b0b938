package relay

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/harun/literelay/internal/observability"
	"github.com/harun/literelay/internal/tracing"
	"github.com/harun/literelay/pkg/llm"
	"github.com/harun/literelay/pkg/session"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Service mediates between the session store and the upstream generator
type Service struct {
	store        *session.Store
	generator    llm.Generator
	defaultModel string
	supported    []string
	maxTokens    int
	temperature  float64
	logger       zerolog.Logger
}

// Config holds service configuration
type Config struct {
	Store           *session.Store
	Generator       llm.Generator
	DefaultModel    string
	SupportedModels []string
	MaxTokens       int
	Temperature     float64
	Logger          zerolog.Logger
}

// ChatParams holds the inputs for a single chat turn
type ChatParams struct {
	SessionID string
	Message   string
	Model     string
}

// NewService creates a new relay service
func NewService(cfg Config) (*Service, error) {
	observability.EnsureRegistered()

	if cfg.Store == nil {
		return nil, fmt.Errorf("session store is required")
	}
	if cfg.Generator == nil {
		return nil, fmt.Errorf("generator is required")
	}
	if cfg.DefaultModel == "" {
		return nil, fmt.Errorf("default model is required")
	}
	if len(cfg.SupportedModels) == 0 {
		return nil, fmt.Errorf("at least one supported model is required")
	}

	return &Service{
		store:        cfg.Store,
		generator:    cfg.Generator,
		defaultModel: cfg.DefaultModel,
		supported:    cfg.SupportedModels,
		maxTokens:    cfg.MaxTokens,
		temperature:  cfg.Temperature,
		logger:       cfg.Logger,
	}, nil
}

// Chat executes a single chat turn
func (s *Service) Chat(params ChatParams) (string, error) {
	return s.ChatWithContext(context.Background(), params)
}

// ChatWithContext executes a single chat turn with a caller-provided context.
// The user turn is appended to the session transcript, the full transcript
// is sent upstream, and the trimmed reply is appended and saved. A failed
// generation call leaves the stored transcript untouched.
func (s *Service) ChatWithContext(ctx context.Context, params ChatParams) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if tracing.GetTraceID(ctx) == "" {
		ctx = tracing.NewRequestContext(ctx)
	}
	ctx = tracing.WithSessionKey(ctx, params.SessionID)
	ctx, span := tracing.StartSpan(
		ctx,
		"literelay.relay",
		"relay.chat",
		attribute.String("session_id", params.SessionID),
	)
	defer span.End()
	logger := tracing.LoggerFromContext(ctx, s.logger).With().Str("session_id", params.SessionID).Logger()

	start := time.Now()

	if params.SessionID == "" {
		err := NewValidationError("session_id is required")
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		observability.RecordChat("validation_error", time.Since(start))
		observability.RecordChatAudit(ctx, params.SessionID, "validation_error", nil)
		return "", err
	}

	model, err := s.resolveModel(params.Model)
	if err != nil {
		logger.Warn().Str("model", params.Model).Msg("Rejected unsupported model")
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		observability.RecordChat("validation_error", time.Since(start))
		observability.RecordChatAudit(ctx, params.SessionID, "validation_error", map[string]interface{}{
			"model": params.Model,
		})
		return "", err
	}
	span.SetAttributes(attribute.String("model", model))

	// Work on a detached copy; nothing is visible to other requests
	// until the save below.
	sess := s.store.GetOrCreateWithContext(ctx, params.SessionID)
	sess.AppendUser(params.Message)
	prompt := sess.Prompt()

	response, err := s.generator.Generate(ctx, llm.GenerateRequest{
		Prompt:      prompt,
		Model:       model,
		MaxTokens:   s.maxTokens,
		Temperature: s.temperature,
	})
	if err != nil {
		logger.Error().Err(err).Str("model", model).Msg("Upstream generation failed")
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		observability.RecordChat("upstream_error", time.Since(start))
		observability.RecordChatAudit(ctx, params.SessionID, "upstream_error", map[string]interface{}{
			"model": model,
		})
		return "", NewUpstreamError("upstream generation failed", err)
	}

	reply := strings.TrimSpace(response.Text)
	if reply == "" {
		err := NewUpstreamError("upstream returned an empty reply", nil)
		logger.Error().Str("model", model).Msg("Upstream returned an empty reply")
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		observability.RecordChat("upstream_error", time.Since(start))
		observability.RecordChatAudit(ctx, params.SessionID, "upstream_error", map[string]interface{}{
			"model": model,
		})
		return "", err
	}

	sess.AppendAssistant(reply)
	s.store.SaveWithContext(ctx, sess)

	observability.RecordChat("ok", time.Since(start))
	observability.RecordChatAudit(ctx, params.SessionID, "ok", map[string]interface{}{
		"model": model,
		"turns": sess.Turns(),
	})

	logger.Info().
		Str("model", model).
		Int("turns", sess.Turns()).
		Dur("duration", time.Since(start)).
		Msg("Chat turn completed")

	return reply, nil
}

// Reset destroys the transcript for a session
func (s *Service) Reset(sessionID string) error {
	return s.ResetWithContext(context.Background(), sessionID)
}

// ResetWithContext destroys the transcript for a session with a
// caller-provided context. Resetting an unknown session succeeds.
func (s *Service) ResetWithContext(ctx context.Context, sessionID string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if tracing.GetTraceID(ctx) == "" {
		ctx = tracing.NewRequestContext(ctx)
	}
	ctx = tracing.WithSessionKey(ctx, sessionID)
	ctx, span := tracing.StartSpan(
		ctx,
		"literelay.relay",
		"relay.reset",
		attribute.String("session_id", sessionID),
	)
	defer span.End()
	logger := tracing.LoggerFromContext(ctx, s.logger).With().Str("session_id", sessionID).Logger()

	if sessionID == "" {
		err := NewValidationError("session_id is required")
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		observability.RecordSessionReset("validation_error")
		observability.RecordResetAudit(ctx, sessionID, "validation_error")
		return err
	}

	s.store.DeleteWithContext(ctx, sessionID)

	observability.RecordSessionReset("ok")
	observability.RecordResetAudit(ctx, sessionID, "ok")

	logger.Info().Msg("Session reset")
	return nil
}

// SessionCount returns the number of active sessions
func (s *Service) SessionCount() int {
	return s.store.Len()
}

// resolveModel applies the default and enforces the allow-list
func (s *Service) resolveModel(model string) (string, error) {
	if model == "" {
		return s.defaultModel, nil
	}
	for _, supported := range s.supported {
		if supported == model {
			return model, nil
		}
	}
	return "", NewValidationError(fmt.Sprintf("unsupported model: %s", model))
}
