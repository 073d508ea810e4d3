package config

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/wavesim/wavesim/pkg/models"
)

// ParseConfigYAML parses a Config from YAML bytes on top of Default() and
// validates it.
func ParseConfigYAML(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config yaml: %w", err)
	}

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// ParseConfigYAMLString parses a Config from a YAML string and validates it.
func ParseConfigYAMLString(yamlText string) (*Config, error) {
	return ParseConfigYAML([]byte(yamlText))
}

// ParseInputYAML parses a raw parameter mapping such as
//
//	amplitude: 5.0
//	points: 1000
//
// Missing keys stay absent; non-numeric values wrap models.ErrInvalidParameter.
func ParseInputYAML(data []byte) (models.RawInput, error) {
	var m map[string]any
	if err := yaml.Unmarshal(data, &m); err != nil {
		return models.RawInput{}, fmt.Errorf("failed to parse input yaml: %w", err)
	}
	return models.ParseRawInput(m)
}
