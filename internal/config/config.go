package config

import (
	"encoding/json"
	"fmt"
	"net/url"
)

// Config represents the main literelay configuration
type Config struct {
	// Server
	Server ServerConfig `json:"server" mapstructure:"server"`

	// Upstream
	Upstream UpstreamConfig `json:"upstream" mapstructure:"upstream"`

	// Models
	Models ModelsConfig `json:"models" mapstructure:"models"`

	// Logging
	Logging LoggingConfig `json:"logging" mapstructure:"logging"`
}

// ServerConfig holds relay HTTP server configuration
type ServerConfig struct {
	Host            string `json:"host" mapstructure:"host"`
	Port            int    `json:"port" mapstructure:"port"`
	ShutdownTimeout int    `json:"shutdown_timeout" mapstructure:"shutdown_timeout"` // seconds
}

// UpstreamConfig holds the generation endpoint configuration
type UpstreamConfig struct {
	Endpoint    string  `json:"endpoint" mapstructure:"endpoint"`
	Timeout     int     `json:"timeout" mapstructure:"timeout"` // seconds
	MaxTokens   int     `json:"max_tokens" mapstructure:"max_tokens"`
	Temperature float64 `json:"temperature" mapstructure:"temperature"`
	Mock        bool    `json:"mock" mapstructure:"mock"`
}

// ModelsConfig holds model configuration
type ModelsConfig struct {
	Default   string   `json:"default" mapstructure:"default"`
	Supported []string `json:"supported" mapstructure:"supported"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level     string `json:"level" mapstructure:"level"`
	File      string `json:"file" mapstructure:"file"`
	AuditFile string `json:"audit_file" mapstructure:"audit_file"`
	Pretty    bool   `json:"pretty" mapstructure:"pretty"`
	MaxSize   int    `json:"max_size" mapstructure:"max_size"` // MB
	MaxAge    int    `json:"max_age" mapstructure:"max_age"`   // days
	Compress  bool   `json:"compress" mapstructure:"compress"`
	Redaction bool   `json:"redaction" mapstructure:"redaction"`
}

// DefaultConfig returns a config with default values
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ShutdownTimeout: 15,
		},
		Upstream: UpstreamConfig{
			Endpoint:    "https://api.liteLLM.com/generate",
			Timeout:     10,
			MaxTokens:   150,
			Temperature: 0.7,
			Mock:        false,
		},
		Models: ModelsConfig{
			Default:   "liteLLM",
			Supported: []string{"liteLLM"},
		},
		Logging: LoggingConfig{
			Level:     "info",
			Pretty:    false,
			MaxSize:   100,
			MaxAge:    7,
			Compress:  true,
			Redaction: true,
		},
	}
}

// String returns a JSON representation of the config
func (c *Config) String() string {
	data, _ := json.MarshalIndent(c, "", "  ")
	return string(data)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	// Validate server
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("server shutdown_timeout must be positive, got %d", c.Server.ShutdownTimeout)
	}

	// Validate upstream
	if !c.Upstream.Mock {
		if c.Upstream.Endpoint == "" {
			return fmt.Errorf("upstream endpoint is required")
		}
		u, err := url.Parse(c.Upstream.Endpoint)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("invalid upstream endpoint: %s", c.Upstream.Endpoint)
		}
	}
	if c.Upstream.Timeout <= 0 {
		return fmt.Errorf("upstream timeout must be positive, got %d", c.Upstream.Timeout)
	}
	if c.Upstream.MaxTokens <= 0 {
		return fmt.Errorf("upstream max_tokens must be positive, got %d", c.Upstream.MaxTokens)
	}
	if c.Upstream.Temperature < 0 || c.Upstream.Temperature > 1 {
		return fmt.Errorf("upstream temperature must be between 0 and 1, got %f", c.Upstream.Temperature)
	}

	// Validate models
	if len(c.Models.Supported) == 0 {
		return fmt.Errorf("at least one supported model must be configured")
	}
	if c.Models.Default == "" {
		return fmt.Errorf("default model is required")
	}
	valid := false
	for _, m := range c.Models.Supported {
		if m == c.Models.Default {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("default model %s is not in the supported list", c.Models.Default)
	}

	return nil
}

// IsSupportedModel reports whether model is in the supported list.
func (c *Config) IsSupportedModel(model string) bool {
	for _, m := range c.Models.Supported {
		if m == model {
			return true
		}
	}
	return false
}
