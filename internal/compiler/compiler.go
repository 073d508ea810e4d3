// Package compiler turns raw user input into canonical simulation parameters.
package compiler

import (
	"log/slog"
	"sync"

	"github.com/wavesim/wavesim/pkg/logger"
	"github.com/wavesim/wavesim/pkg/models"
	"github.com/wavesim/wavesim/pkg/utils"
)

// MinPoints is the smallest point count Validate accepts.
const MinPoints = 100

// optimizeStep is the multiple Optimize rounds the point count to.
const optimizeStep = 100

// Validation reasons, reported in the order they are checked.
const (
	ReasonValid     = "Valid"
	ReasonAmplitude = "Amplitude must be positive"
	ReasonFrequency = "Frequency must be positive"
	ReasonPoints    = "Points must be at least 100"
)

// Compiler compiles, validates and optimizes simulation parameters.
// All operations are pure; the last compiled record is kept only for
// introspection.
type Compiler struct {
	log *slog.Logger

	mu   sync.RWMutex
	last *models.Parameters
}

// New creates a Compiler logging through the default logger.
func New() *Compiler {
	return &Compiler{log: logger.Component("compiler")}
}

// WithLogger replaces the compiler's logger.
func (c *Compiler) WithLogger(l *slog.Logger) *Compiler {
	c.log = l
	return c
}

// Compile fills missing keys with defaults. It never fails.
func (c *Compiler) Compile(raw models.RawInput) models.Parameters {
	c.log.Debug("compiling config", "input", raw.Map())

	params := models.Parameters{
		Amplitude: models.DefaultAmplitude,
		Frequency: models.DefaultFrequency,
		Phase:     models.DefaultPhase,
		Points:    models.DefaultPoints,
	}
	if raw.Amplitude != nil {
		params.Amplitude = *raw.Amplitude
	}
	if raw.Frequency != nil {
		params.Frequency = *raw.Frequency
	}
	if raw.Phase != nil {
		params.Phase = *raw.Phase
	}
	if raw.Points != nil {
		params.Points = *raw.Points
	}

	c.mu.Lock()
	cp := params
	c.last = &cp
	c.mu.Unlock()

	c.log.Debug("compiled successfully", "params", params)
	return params
}

// LastCompiled returns the most recent Compile result, if any.
func (c *Compiler) LastCompiled() (models.Parameters, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.last == nil {
		return models.Parameters{}, false
	}
	return *c.last, true
}

// Validate checks amplitude, frequency and points in that order and reports
// the first failure.
func (c *Compiler) Validate(params models.Parameters) models.ValidationResult {
	c.log.Debug("validating params", "params", params)

	switch {
	case !(params.Amplitude > 0):
		return invalid(c.log, ReasonAmplitude)
	case !(params.Frequency > 0):
		return invalid(c.log, ReasonFrequency)
	case params.Points < MinPoints:
		return invalid(c.log, ReasonPoints)
	}

	c.log.Debug("validation passed")
	return models.ValidationResult{Valid: true, Reason: ReasonValid}
}

func invalid(l *slog.Logger, reason string) models.ValidationResult {
	l.Debug("validation failed", "reason", reason)
	return models.ValidationResult{Valid: false, Reason: reason}
}

// Optimize returns a copy of params with points rounded to the nearest
// hundred, ties to even. Bounds are not re-checked.
func (c *Compiler) Optimize(params models.Parameters) models.Parameters {
	optimized := params
	optimized.Points = utils.RoundToMultiple(params.Points, optimizeStep)

	c.log.Debug("optimized params", "points_before", params.Points, "points_after", optimized.Points)
	return optimized
}
