// Package pipeline runs the compile, validate, optimize and generate stages
// in the order every front-end uses them.
package pipeline

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/wavesim/wavesim/internal/compiler"
	"github.com/wavesim/wavesim/internal/generator"
	"github.com/wavesim/wavesim/internal/metrics"
	"github.com/wavesim/wavesim/pkg/logger"
	"github.com/wavesim/wavesim/pkg/models"
)

var tracer = otel.Tracer("wavesim/pipeline")

// Outcome is everything a front-end may want to render about one execution.
type Outcome struct {
	Compiled   models.Parameters
	Validation *models.ValidationResult
	Parameters models.Parameters
	Result     *models.SimulationResult
	Elapsed    time.Duration
}

// Pipeline wires a Compiler to a Generator.
type Pipeline struct {
	compiler  *compiler.Compiler
	generator *generator.Generator
	recorder  *metrics.Recorder
	logger    *slog.Logger
}

// New creates a pipeline. recorder may be nil.
func New(c *compiler.Compiler, g *generator.Generator, recorder *metrics.Recorder) *Pipeline {
	return &Pipeline{
		compiler:  c,
		generator: g,
		recorder:  recorder,
		logger:    logger.Component("pipeline"),
	}
}

// Compiler returns the pipeline's compiler
func (p *Pipeline) Compiler() *compiler.Compiler {
	return p.compiler
}

// Generator returns the pipeline's generator
func (p *Pipeline) Generator() *generator.Generator {
	return p.generator
}

// Execute compiles raw, optionally validates and optimizes the result, and
// runs the generator. A failed validation returns a *models.ValidationError
// together with a partial Outcome; generator failures wrap
// models.ErrInvalidParameter.
func (p *Pipeline) Execute(ctx context.Context, raw models.RawInput, opts models.RunOptions) (*Outcome, error) {
	ctx, span := tracer.Start(ctx, "Pipeline.Execute")
	defer span.End()
	span.SetAttributes(
		attribute.Bool("validate", opts.Validate),
		attribute.Bool("optimize", opts.Optimize),
	)

	start := time.Now()
	out := &Outcome{}

	out.Compiled = p.compiler.Compile(raw)
	out.Parameters = out.Compiled

	if opts.Validate {
		result := p.compiler.Validate(out.Compiled)
		out.Validation = &result
		p.recorder.ObserveValidation(result.Reason)
		if !result.Valid {
			out.Elapsed = time.Since(start)
			p.recorder.ObserveRun(metrics.OutcomeDeclined, 0, out.Elapsed)
			span.SetStatus(codes.Error, result.Reason)
			p.logger.Info("run declined", "reason", result.Reason)
			return out, &models.ValidationError{Reason: result.Reason}
		}
	}

	if opts.Optimize {
		out.Parameters = p.compiler.Optimize(out.Compiled)
	}

	result, err := p.generator.Run(ctx, out.Parameters)
	out.Elapsed = time.Since(start)
	if err != nil {
		p.recorder.ObserveRun(metrics.OutcomeFailed, 0, out.Elapsed)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		p.logger.Warn("run failed", "error", err)
		return out, err
	}
	out.Result = result

	p.recorder.ObserveRun(metrics.OutcomeCompleted, result.Len(), out.Elapsed)
	p.logger.Debug("run completed", "points", result.Len(), "elapsed", out.Elapsed)
	return out, nil
}
