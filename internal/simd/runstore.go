package simd

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/wavesim/wavesim/pkg/models"
	"github.com/wavesim/wavesim/pkg/utils"
)

var (
	ErrRunNotFound  = errors.New("run not found")
	ErrRunExists    = errors.New("run already exists")
	ErrRunTerminal  = errors.New("run is terminal")
	ErrRunIDInvalid = errors.New("run_id cannot contain '/' or whitespace")
	ErrRunIDMissing = errors.New("run_id is required")
)

// RunStore keeps runs in memory for the lifetime of the process.
// Callers receive copies; a run's Result is never modified after it is set.
type RunStore struct {
	mu    sync.RWMutex
	runs  map[string]*models.Run
	order []string // creation order
}

func NewRunStore() *RunStore {
	return &RunStore{
		runs: make(map[string]*models.Run),
	}
}

func (s *RunStore) Create(runID string, input models.RawInput, opts models.RunOptions) (*models.Run, error) {
	if strings.ContainsAny(runID, "/ \t\r\n") {
		return nil, fmt.Errorf("%w: %q", ErrRunIDInvalid, runID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if runID == "" {
		runID = utils.GenerateRunID()
	}
	if _, exists := s.runs[runID]; exists {
		return nil, fmt.Errorf("%w: %s", ErrRunExists, runID)
	}

	run := &models.Run{
		ID:        runID,
		Status:    models.RunStatusPending,
		Input:     input,
		Options:   opts,
		CreatedAt: time.Now().UTC(),
	}
	s.runs[runID] = run
	s.order = append(s.order, runID)
	return snapshot(run), nil
}

func (s *RunStore) Get(runID string) (*models.Run, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	run, ok := s.runs[runID]
	if !ok {
		return nil, false
	}
	return snapshot(run), true
}

// ListFiltered returns runs newest first. An empty status matches every run.
func (s *RunStore) ListFiltered(limit, offset int, status models.RunStatus) []*models.Run {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	out := make([]*models.Run, 0, min(limit, len(s.order)))
	skipped := 0
	for i := len(s.order) - 1; i >= 0 && len(out) < limit; i-- {
		run := s.runs[s.order[i]]
		if status != "" && run.Status != status {
			continue
		}
		if skipped < offset {
			skipped++
			continue
		}
		out = append(out, snapshot(run))
	}
	return out
}

// Count returns the number of stored runs
func (s *RunStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.runs)
}

// Finish moves a pending run to a terminal status, applying mutate to it first.
func (s *RunStore) Finish(runID string, status models.RunStatus, mutate func(run *models.Run)) (*models.Run, error) {
	if !status.IsTerminal() {
		return nil, fmt.Errorf("cannot finish run %s with non-terminal status %s", runID, status)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	run, ok := s.runs[runID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if run.Status.IsTerminal() {
		return nil, fmt.Errorf("%w: %s", ErrRunTerminal, runID)
	}

	if mutate != nil {
		mutate(run)
	}
	run.Status = status
	run.EndedAt = time.Now().UTC()
	return snapshot(run), nil
}

// Complete records a successful execution.
func (s *RunStore) Complete(runID string, compiled, params models.Parameters, validation *models.ValidationResult, result *models.SimulationResult, elapsed time.Duration) (*models.Run, error) {
	return s.Finish(runID, models.RunStatusCompleted, func(run *models.Run) {
		run.Compiled = &compiled
		run.Parameters = &params
		run.Validation = validation
		run.Result = result
		run.Duration = elapsed
	})
}

// Decline records a run whose parameters failed validation.
func (s *RunStore) Decline(runID string, compiled models.Parameters, validation *models.ValidationResult, elapsed time.Duration) (*models.Run, error) {
	return s.Finish(runID, models.RunStatusDeclined, func(run *models.Run) {
		run.Compiled = &compiled
		run.Validation = validation
		run.Duration = elapsed
		if validation != nil {
			run.Error = validation.Reason
		}
	})
}

// Fail records a run the generator rejected.
func (s *RunStore) Fail(runID string, compiled, params models.Parameters, validation *models.ValidationResult, cause error, elapsed time.Duration) (*models.Run, error) {
	return s.Finish(runID, models.RunStatusFailed, func(run *models.Run) {
		run.Compiled = &compiled
		run.Parameters = &params
		run.Validation = validation
		run.Duration = elapsed
		if cause != nil {
			run.Error = cause.Error()
		}
	})
}

func snapshot(run *models.Run) *models.Run {
	cp := *run
	return &cp
}
