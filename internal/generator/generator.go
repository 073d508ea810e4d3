package generator

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/wavesim/wavesim/pkg/logger"
	"github.com/wavesim/wavesim/pkg/models"
	"github.com/wavesim/wavesim/pkg/utils"
)

// Version is the signal generator version
const Version = "1.0.0"

// Interval is the fixed time span sampled by every run: [0, 4π].
const Interval = 4 * math.Pi

var tracer = otel.Tracer("wavesim/generator")

// Generator produces sine-wave time series from canonical parameters
type Generator struct {
	logger *slog.Logger
}

// NewGenerator creates a new signal generator
func NewGenerator() *Generator {
	return &Generator{logger: logger.Default}
}

// SetLogger sets the generator's logger
func (g *Generator) SetLogger(l *slog.Logger) {
	g.logger = l
}

// Version returns the generator version
func (g *Generator) Version() string {
	return Version
}

// Run samples amplitude*sin(frequency*t + phase) at params.Points evenly
// spaced instants over [0, 4π], both ends included. Points below 1 and
// non-finite parameters are rejected with models.ErrInvalidParameter.
func (g *Generator) Run(ctx context.Context, params models.Parameters) (*models.SimulationResult, error) {
	_, span := tracer.Start(ctx, "Generator.Run")
	defer span.End()
	span.SetAttributes(attribute.Int("points", params.Points))

	if err := checkParameters(params); err != nil {
		span.RecordError(err)
		return nil, err
	}

	g.logger.Debug("running simulation",
		"amplitude", params.Amplitude,
		"frequency", params.Frequency,
		"phase", params.Phase,
		"points", params.Points)

	t := utils.Linspace(0, Interval, params.Points)
	values := make([]float64, len(t))
	for i, ti := range t {
		values[i] = params.Amplitude * math.Sin(params.Frequency*ti+params.Phase)
	}

	result := &models.SimulationResult{
		Time:       t,
		Values:     values,
		Statistics: Summarize(values),
	}

	span.AddEvent("sampled", trace.WithAttributes(
		attribute.Float64("min", result.Statistics.Min),
		attribute.Float64("max", result.Statistics.Max),
	))
	g.logger.Debug("simulation completed", "points", len(values))
	return result, nil
}

// Summarize computes mean, population standard deviation, min and max.
func Summarize(values []float64) models.Statistics {
	min, max := utils.MinMax(values)
	return models.Statistics{
		Mean: utils.Mean(values),
		Std:  utils.StdDev(values),
		Min:  min,
		Max:  max,
	}
}

func checkParameters(params models.Parameters) error {
	if params.Points < 1 {
		return fmt.Errorf("%w: points must be at least 1, got %d", models.ErrInvalidParameter, params.Points)
	}
	for _, f := range []struct {
		name  string
		value float64
	}{
		{models.KeyAmplitude, params.Amplitude},
		{models.KeyFrequency, params.Frequency},
		{models.KeyPhase, params.Phase},
	} {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			return fmt.Errorf("%w: %s must be a finite number, got %v", models.ErrInvalidParameter, f.name, f.value)
		}
	}
	return nil
}
