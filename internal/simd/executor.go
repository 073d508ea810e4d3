package simd

import (
	"context"
	"errors"
	"fmt"

	"github.com/wavesim/wavesim/internal/pipeline"
	"github.com/wavesim/wavesim/pkg/logger"
	"github.com/wavesim/wavesim/pkg/models"
)

var ErrTooManyPoints = errors.New("points exceed server limit")

// RunExecutor executes stored runs through the pipeline and records their outcome.
type RunExecutor struct {
	store     *RunStore
	pipeline  *pipeline.Pipeline
	notifier  *Notifier
	maxPoints int
}

func NewRunExecutor(store *RunStore, p *pipeline.Pipeline) *RunExecutor {
	return &RunExecutor{
		store:    store,
		pipeline: p,
	}
}

// SetMaxPoints caps the number of samples a single run may request. Zero disables the cap.
func (e *RunExecutor) SetMaxPoints(n int) {
	e.maxPoints = n
}

// SetNotifier enables completion callbacks for runs created with a callback URL.
func (e *RunExecutor) SetNotifier(n *Notifier) {
	e.notifier = n
}

func (e *RunExecutor) Pipeline() *pipeline.Pipeline {
	return e.pipeline
}

// Submit creates a run and executes it. The returned error is the pipeline
// error (validation or invalid parameter), if any; the run is stored either way.
func (e *RunExecutor) Submit(ctx context.Context, runID string, input models.RawInput, opts models.RunOptions, cb *Callback) (*models.Run, error) {
	if err := e.checkLimits(input, opts); err != nil {
		return nil, err
	}

	run, err := e.store.Create(runID, input, opts)
	if err != nil {
		return nil, err
	}
	logger.Info("run created", "run_id", run.ID)

	return e.execute(ctx, run.ID, cb)
}

// Execute runs the pipeline for a pending run.
func (e *RunExecutor) Execute(ctx context.Context, runID string) (*models.Run, error) {
	return e.execute(ctx, runID, nil)
}

func (e *RunExecutor) execute(ctx context.Context, runID string, cb *Callback) (*models.Run, error) {
	if runID == "" {
		return nil, ErrRunIDMissing
	}

	rec, ok := e.store.Get(runID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if rec.Status.IsTerminal() {
		return nil, fmt.Errorf("%w: %s", ErrRunTerminal, runID)
	}

	out, runErr := e.pipeline.Execute(ctx, rec.Input, rec.Options)

	var (
		updated *models.Run
		err     error
	)
	switch {
	case runErr == nil:
		updated, err = e.store.Complete(runID, out.Compiled, out.Parameters, out.Validation, out.Result, out.Elapsed)
		if err == nil {
			logger.Info("run completed", "run_id", runID, "points", out.Result.Len(), "duration", out.Elapsed)
		}
	case isValidation(runErr):
		updated, err = e.store.Decline(runID, out.Compiled, out.Validation, out.Elapsed)
		if err == nil {
			logger.Info("run declined", "run_id", runID, "reason", updated.Error)
		}
	default:
		updated, err = e.store.Fail(runID, out.Compiled, out.Parameters, out.Validation, runErr, out.Elapsed)
		if err == nil {
			logger.Warn("run failed", "run_id", runID, "error", runErr)
		}
	}
	if err != nil {
		logger.Error("failed to record run outcome", "run_id", runID, "error", err)
		return nil, err
	}

	if cb != nil && e.notifier != nil {
		e.notifier.Notify(cb.URL, cb.Secret, updated)
	}
	return updated, runErr
}

// checkLimits compares the point count the run would generate, after
// defaults and optional rounding, against the server cap.
func (e *RunExecutor) checkLimits(input models.RawInput, opts models.RunOptions) error {
	if e.maxPoints <= 0 {
		return nil
	}
	params := models.Parameters{Points: models.DefaultPoints}
	if input.Points != nil {
		params.Points = *input.Points
	}
	if opts.Optimize {
		params = e.pipeline.Compiler().Optimize(params)
	}
	if params.Points > e.maxPoints {
		return fmt.Errorf("%w: %d > %d", ErrTooManyPoints, params.Points, e.maxPoints)
	}
	return nil
}

func isValidation(err error) bool {
	_, ok := models.IsValidationError(err)
	return ok
}
