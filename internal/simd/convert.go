package simd

import (
	"time"

	"github.com/wavesim/wavesim/pkg/models"
)

// The helpers below build plain maps that both the JSON encoder and
// structpb.NewStruct accept, so HTTP and gRPC responses share one shape.

func runToMap(run *models.Run) map[string]any {
	out := map[string]any{
		"id":         run.ID,
		"status":     string(run.Status),
		"input":      run.Input.Map(),
		"options":    optionsToMap(run.Options),
		"created_at": run.CreatedAt.Format(time.RFC3339Nano),
	}
	if run.Compiled != nil {
		out["compiled"] = run.Compiled.Map()
	}
	if run.Parameters != nil {
		out["parameters"] = run.Parameters.Map()
	}
	if run.Validation != nil {
		out["validation"] = validationToMap(*run.Validation)
	}
	if !run.EndedAt.IsZero() {
		out["ended_at"] = run.EndedAt.Format(time.RFC3339Nano)
		out["duration_ms"] = float64(run.Duration.Microseconds()) / 1000
	}
	if run.Error != "" {
		out["error"] = run.Error
	}
	if run.Result != nil {
		out["points"] = run.Result.Len()
		out["statistics"] = statisticsToMap(run.Result.Statistics)
	}
	return out
}

func optionsToMap(opts models.RunOptions) map[string]any {
	return map[string]any{
		"validate": opts.Validate,
		"optimize": opts.Optimize,
	}
}

func validationToMap(v models.ValidationResult) map[string]any {
	return map[string]any{
		"valid":  v.Valid,
		"reason": v.Reason,
	}
}

func statisticsToMap(s models.Statistics) map[string]any {
	return map[string]any{
		"mean": s.Mean,
		"std":  s.Std,
		"min":  s.Min,
		"max":  s.Max,
	}
}

func resultToMap(r *models.SimulationResult) map[string]any {
	return map[string]any{
		"time":       floatsToAny(r.Time),
		"values":     floatsToAny(r.Values),
		"statistics": statisticsToMap(r.Statistics),
	}
}

func floatsToAny(values []float64) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
