package config

import (
	"fmt"
	"net/url"
	"strings"
)

// Validator validates configuration values
type Validator struct{}

// NewValidator creates a new validator
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateEndpoint validates a generation endpoint URL
func (v *Validator) ValidateEndpoint(endpoint string) error {
	if endpoint == "" {
		return fmt.Errorf("upstream endpoint cannot be empty")
	}

	u, err := url.Parse(endpoint)
	if err != nil {
		return fmt.Errorf("invalid upstream endpoint: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("upstream endpoint scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("upstream endpoint is missing a host")
	}

	return nil
}

// ValidateModel validates a model name against the supported list
func (v *Validator) ValidateModel(model string, supported []string) error {
	if model == "" {
		return fmt.Errorf("model name cannot be empty")
	}

	for _, s := range supported {
		if model == s {
			return nil
		}
	}

	return fmt.Errorf("unsupported model: %s (must be one of: %s)", model, strings.Join(supported, ", "))
}

// ValidatePort validates a TCP listen port
func (v *Validator) ValidatePort(port int) error {
	if port < 1 || port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", port)
	}
	return nil
}

// ValidateTemperature validates temperature value
func (v *Validator) ValidateTemperature(temp float64) error {
	if temp < 0 || temp > 1 {
		return fmt.Errorf("temperature must be between 0 and 1, got %f", temp)
	}
	return nil
}

// ValidateMaxTokens validates max tokens value
func (v *Validator) ValidateMaxTokens(tokens int) error {
	if tokens <= 0 {
		return fmt.Errorf("max tokens must be positive, got %d", tokens)
	}
	if tokens > 200000 {
		return fmt.Errorf("max tokens too large (max 200000), got %d", tokens)
	}
	return nil
}

// ValidateTimeout validates a timeout in seconds
func (v *Validator) ValidateTimeout(seconds int) error {
	if seconds <= 0 {
		return fmt.Errorf("timeout must be positive, got %d", seconds)
	}
	return nil
}

// ValidateLogLevel validates log level
func (v *Validator) ValidateLogLevel(level string) error {
	validLevels := []string{"debug", "info", "warn", "error"}
	for _, valid := range validLevels {
		if level == valid {
			return nil
		}
	}
	return fmt.Errorf("invalid log level: %s (must be one of: %s)", level, strings.Join(validLevels, ", "))
}

// ValidateConfig performs comprehensive validation
func (v *Validator) ValidateConfig(cfg *Config) []error {
	var errors []error

	// Validate server
	if err := v.ValidatePort(cfg.Server.Port); err != nil {
		errors = append(errors, fmt.Errorf("server: %w", err))
	}
	if err := v.ValidateTimeout(cfg.Server.ShutdownTimeout); err != nil {
		errors = append(errors, fmt.Errorf("server shutdown: %w", err))
	}

	// Validate upstream
	if !cfg.Upstream.Mock {
		if err := v.ValidateEndpoint(cfg.Upstream.Endpoint); err != nil {
			errors = append(errors, err)
		}
	}
	if err := v.ValidateTimeout(cfg.Upstream.Timeout); err != nil {
		errors = append(errors, fmt.Errorf("upstream: %w", err))
	}
	if err := v.ValidateMaxTokens(cfg.Upstream.MaxTokens); err != nil {
		errors = append(errors, err)
	}
	if err := v.ValidateTemperature(cfg.Upstream.Temperature); err != nil {
		errors = append(errors, err)
	}

	// Validate models
	if err := v.ValidateModel(cfg.Models.Default, cfg.Models.Supported); err != nil {
		errors = append(errors, fmt.Errorf("default model: %w", err))
	}

	// Validate logging
	if err := v.ValidateLogLevel(cfg.Logging.Level); err != nil {
		errors = append(errors, err)
	}

	return errors
}
