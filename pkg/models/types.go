package models

import "time"

// Default values substituted for keys missing from a RawInput.
const (
	DefaultAmplitude = 1.0
	DefaultFrequency = 1.0
	DefaultPhase     = 0.0
	DefaultPoints    = 1000
)

// RunStatus represents the status of a simulation run
type RunStatus string

const (
	RunStatusPending   RunStatus = "pending"
	RunStatusCompleted RunStatus = "completed"
	RunStatusDeclined  RunStatus = "declined"
	RunStatusFailed    RunStatus = "failed"
)

// IsTerminal reports whether no further transitions are possible
func (s RunStatus) IsTerminal() bool {
	switch s {
	case RunStatusCompleted, RunStatusDeclined, RunStatusFailed:
		return true
	}
	return false
}

// RawInput is unvalidated user input. Nil fields are absent keys.
type RawInput struct {
	Amplitude *float64 `json:"amplitude,omitempty" yaml:"amplitude,omitempty"`
	Frequency *float64 `json:"frequency,omitempty" yaml:"frequency,omitempty"`
	Phase     *float64 `json:"phase,omitempty" yaml:"phase,omitempty"`
	Points    *int     `json:"points,omitempty" yaml:"points,omitempty"`
}

// Parameters is the canonical, fully-defaulted parameter record
type Parameters struct {
	Amplitude float64 `json:"amplitude" yaml:"amplitude"`
	Frequency float64 `json:"frequency" yaml:"frequency"`
	Phase     float64 `json:"phase" yaml:"phase"`
	Points    int     `json:"points" yaml:"points"`
}

// ValidationResult is the outcome of a bounds check
type ValidationResult struct {
	Valid  bool   `json:"valid"`
	Reason string `json:"reason"`
}

// Statistics summarizes the generated values
type Statistics struct {
	Mean float64 `json:"mean"`
	Std  float64 `json:"std"`
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
}

// SimulationResult holds the generated time series.
// Time and Values have equal length and are positionally paired.
type SimulationResult struct {
	Time       []float64  `json:"time"`
	Values     []float64  `json:"values"`
	Statistics Statistics `json:"statistics"`
}

// Len returns the number of samples
func (r *SimulationResult) Len() int {
	if r == nil {
		return 0
	}
	return len(r.Values)
}

// RunOptions selects the optional pipeline stages
type RunOptions struct {
	Validate bool `json:"validate" yaml:"validate"`
	Optimize bool `json:"optimize" yaml:"optimize"`
}

// Run represents a simulation run kept by the daemon
type Run struct {
	ID         string            `json:"id"`
	Status     RunStatus         `json:"status"`
	Input      RawInput          `json:"input"`
	Options    RunOptions        `json:"options"`
	Compiled   *Parameters       `json:"compiled,omitempty"`
	Parameters *Parameters       `json:"parameters,omitempty"`
	Validation *ValidationResult `json:"validation,omitempty"`
	Result     *SimulationResult `json:"-"`
	CreatedAt  time.Time         `json:"created_at"`
	EndedAt    time.Time         `json:"ended_at,omitempty"`
	Duration   time.Duration     `json:"duration,omitempty"`
	Error      string            `json:"error,omitempty"`
}
