package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Wizard provides an interactive configuration wizard
type Wizard struct {
	reader *bufio.Reader
}

// NewWizard creates a new configuration wizard
func NewWizard() *Wizard {
	return &Wizard{
		reader: bufio.NewReader(os.Stdin),
	}
}

// Run runs the interactive configuration wizard
func (w *Wizard) Run() (*Config, error) {
	fmt.Println("=== literelay Configuration Wizard ===")
	fmt.Println()

	cfg := DefaultConfig()
	validator := NewValidator()

	// Upstream endpoint
	fmt.Println("Upstream generation endpoint:")
	fmt.Println()

	for {
		fmt.Printf("Endpoint URL [%s]: ", cfg.Upstream.Endpoint)
		endpoint, err := w.readLine()
		if err != nil {
			return nil, err
		}

		if endpoint == "" {
			break
		}

		if err := validator.ValidateEndpoint(endpoint); err != nil {
			fmt.Printf("Error: %v\n", err)
			continue
		}

		cfg.Upstream.Endpoint = endpoint
		break
	}

	fmt.Print("Use the built-in mock generator instead of a real endpoint? (y/n) [n]: ")
	mock, err := w.readLine()
	if err != nil {
		return nil, err
	}
	if strings.ToLower(mock) == "y" {
		cfg.Upstream.Mock = true
	}

	fmt.Println()

	// Default Model
	fmt.Println("Default Model:")
	fmt.Printf("Model name [%s]: ", cfg.Models.Default)
	model, err := w.readLine()
	if err != nil {
		return nil, err
	}

	if model != "" {
		cfg.Models.Default = model
		if err := validator.ValidateModel(model, cfg.Models.Supported); err != nil {
			// Unknown names become part of the supported list
			cfg.Models.Supported = append(cfg.Models.Supported, model)
		}
	}

	fmt.Println()

	// Server
	fmt.Println("Server:")
	fmt.Printf("Listen port [%d]: ", cfg.Server.Port)
	portStr, err := w.readLine()
	if err != nil {
		return nil, err
	}

	if portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			fmt.Printf("Warning: invalid port %q, using default (%d)\n", portStr, cfg.Server.Port)
		} else if err := validator.ValidatePort(port); err != nil {
			fmt.Printf("Warning: %v, using default (%d)\n", err, cfg.Server.Port)
		} else {
			cfg.Server.Port = port
		}
	}

	fmt.Println()

	// Log Level
	fmt.Println("Logging:")
	fmt.Print("Log level (debug/info/warn/error) [info]: ")
	level, err := w.readLine()
	if err != nil {
		return nil, err
	}

	if level != "" {
		if err := validator.ValidateLogLevel(level); err != nil {
			fmt.Printf("Warning: %v, using default (info)\n", err)
		} else {
			cfg.Logging.Level = level
		}
	}

	fmt.Println()
	fmt.Println("Configuration complete!")

	return cfg, nil
}

func (w *Wizard) readLine() (string, error) {
	line, err := w.reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
