package config

import (
	"time"

	"github.com/wavesim/wavesim/pkg/models"
)

// Config represents the wavesim configuration file
type Config struct {
	LogLevel    string            `yaml:"log_level"`
	Server      Server            `yaml:"server"`
	RunDefaults models.RunOptions `yaml:"run_defaults"`
	Export      Export            `yaml:"export"`
	Presets     []Preset          `yaml:"presets,omitempty"`
}

// Server holds daemon listener settings
type Server struct {
	HTTPAddr        string `yaml:"http_addr"`
	GRPCAddr        string `yaml:"grpc_addr"`
	ShutdownTimeout string `yaml:"shutdown_timeout"` // e.g., "10s"
	MaxPoints       int    `yaml:"max_points"`       // upper bound accepted over the network
}

// Export holds rendering settings
type Export struct {
	AudioSampleRate int `yaml:"audio_sample_rate"`
	StreamChunk     int `yaml:"stream_chunk"` // rows per WebSocket message
}

// Preset is a named raw input, e.g. the dashboard's slider defaults
type Preset struct {
	Name  string         `yaml:"name"`
	Input map[string]any `yaml:"input"`
}

// Default returns the configuration used when no file is given
func Default() *Config {
	return &Config{
		LogLevel: "info",
		Server: Server{
			HTTPAddr:        ":8080",
			GRPCAddr:        ":50051",
			ShutdownTimeout: "10s",
			MaxPoints:       1_000_000,
		},
		RunDefaults: models.RunOptions{Validate: true, Optimize: false},
		Export: Export{
			AudioSampleRate: 8000,
			StreamChunk:     250,
		},
	}
}

// GetShutdownTimeout parses the shutdown timeout string to time.Duration
func (s *Server) GetShutdownTimeout() (time.Duration, error) {
	return time.ParseDuration(s.ShutdownTimeout)
}

// RawInput converts the preset's mapping into a RawInput
func (p *Preset) RawInput() (models.RawInput, error) {
	return models.ParseRawInput(p.Input)
}

// Preset looks up a preset by name
func (c *Config) Preset(name string) (*Preset, bool) {
	for i := range c.Presets {
		if c.Presets[i].Name == name {
			return &c.Presets[i], true
		}
	}
	return nil, false
}
