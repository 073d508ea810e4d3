package config

import (
	"fmt"
	"os"

	"github.com/wavesim/wavesim/pkg/logger"
	"github.com/wavesim/wavesim/pkg/models"
)

// LoadConfig loads and parses a configuration file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	cfg, err := ParseConfigYAML(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return cfg, nil
}

// LoadConfigOrDefault loads path, or returns Default() when path is empty
func LoadConfigOrDefault(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	return LoadConfig(path)
}

// LoadInput loads a raw parameter file
func LoadInput(path string) (models.RawInput, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return models.RawInput{}, fmt.Errorf("failed to read input file %s: %w", path, err)
	}
	raw, err := ParseInputYAML(data)
	if err != nil {
		return models.RawInput{}, fmt.Errorf("failed to parse input file %s: %w", path, err)
	}
	return raw, nil
}

// Validate checks a configuration that was modified after loading,
// e.g. by command-line overrides.
func (c *Config) Validate() error {
	return validateConfig(c)
}

// validateConfig performs validation on the configuration
func validateConfig(cfg *Config) error {
	if !logger.ValidLevel(cfg.LogLevel) {
		return fmt.Errorf("invalid log_level: %s (must be debug, info, warn, or error)", cfg.LogLevel)
	}

	if err := validateServer(&cfg.Server); err != nil {
		return fmt.Errorf("server validation failed: %w", err)
	}

	if cfg.Export.AudioSampleRate <= 0 {
		return fmt.Errorf("export audio_sample_rate must be positive, got %d", cfg.Export.AudioSampleRate)
	}
	if cfg.Export.StreamChunk <= 0 {
		return fmt.Errorf("export stream_chunk must be positive, got %d", cfg.Export.StreamChunk)
	}

	names := make(map[string]bool)
	for i, p := range cfg.Presets {
		if p.Name == "" {
			return fmt.Errorf("preset %d: name cannot be empty", i)
		}
		if names[p.Name] {
			return fmt.Errorf("duplicate preset name: %s", p.Name)
		}
		names[p.Name] = true
		if _, err := p.RawInput(); err != nil {
			return fmt.Errorf("preset %s: %w", p.Name, err)
		}
	}

	return nil
}

// validateServer validates listener settings
func validateServer(s *Server) error {
	if s.HTTPAddr == "" {
		return fmt.Errorf("http_addr cannot be empty")
	}
	if s.GRPCAddr == "" {
		return fmt.Errorf("grpc_addr cannot be empty")
	}
	if d, err := s.GetShutdownTimeout(); err != nil {
		return fmt.Errorf("invalid shutdown_timeout %s: %w", s.ShutdownTimeout, err)
	} else if d <= 0 {
		return fmt.Errorf("shutdown_timeout must be positive, got %s", s.ShutdownTimeout)
	}
	if s.MaxPoints < 1 {
		return fmt.Errorf("max_points must be positive, got %d", s.MaxPoints)
	}
	return nil
}
