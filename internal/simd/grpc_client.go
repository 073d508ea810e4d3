package simd

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/wavesim/wavesim/pkg/models"
)

// WaveClient is a typed client for wavesim.v1.WaveService.
type WaveClient struct {
	cc grpc.ClientConnInterface
}

func NewWaveClient(cc grpc.ClientConnInterface) *WaveClient {
	return &WaveClient{cc: cc}
}

func (c *WaveClient) invoke(ctx context.Context, method string, req map[string]any) (map[string]any, error) {
	in, err := structpb.NewStruct(req)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+WaveServiceName+"/"+method, in, out); err != nil {
		return nil, fromStatus(err)
	}
	return out.AsMap(), nil
}

func (c *WaveClient) Compile(ctx context.Context, input models.RawInput) (models.Parameters, error) {
	resp, err := c.invoke(ctx, "Compile", map[string]any{"input": input.Map()})
	if err != nil {
		return models.Parameters{}, err
	}
	return parametersFrom(resp["parameters"])
}

func (c *WaveClient) Validate(ctx context.Context, params models.Parameters) (models.ValidationResult, error) {
	resp, err := c.invoke(ctx, "Validate", map[string]any{"parameters": params.Map()})
	if err != nil {
		return models.ValidationResult{}, err
	}
	valid, _ := resp["valid"].(bool)
	reason, _ := resp["reason"].(string)
	return models.ValidationResult{Valid: valid, Reason: reason}, nil
}

func (c *WaveClient) Optimize(ctx context.Context, params models.Parameters) (models.Parameters, error) {
	resp, err := c.invoke(ctx, "Optimize", map[string]any{"parameters": params.Map()})
	if err != nil {
		return models.Parameters{}, err
	}
	return parametersFrom(resp["parameters"])
}

// Run executes a run remotely and returns it with its result attached.
// A declined run yields a *models.ValidationError.
func (c *WaveClient) Run(ctx context.Context, runID string, input models.RawInput, opts models.RunOptions) (*models.Run, error) {
	req := map[string]any{
		"input":          input.Map(),
		"options":        optionsToMap(opts),
		"include_result": true,
	}
	if runID != "" {
		req["run_id"] = runID
	}
	resp, err := c.invoke(ctx, "Run", req)
	if err != nil {
		return nil, err
	}
	return runFrom(resp)
}

func (c *WaveClient) GetRun(ctx context.Context, runID string, withResult bool) (*models.Run, error) {
	resp, err := c.invoke(ctx, "GetRun", map[string]any{
		"run_id":         runID,
		"include_result": withResult,
	})
	if err != nil {
		return nil, err
	}
	return runFrom(resp)
}

// fromStatus turns gRPC status errors back into domain errors.
func fromStatus(err error) error {
	st, ok := status.FromError(err)
	if !ok {
		return err
	}
	switch st.Code() {
	case codes.FailedPrecondition:
		return &models.ValidationError{Reason: st.Message()}
	case codes.InvalidArgument:
		return fmt.Errorf("%w: %s", models.ErrInvalidParameter, st.Message())
	case codes.NotFound:
		return fmt.Errorf("%w: %s", ErrRunNotFound, st.Message())
	case codes.AlreadyExists:
		return fmt.Errorf("%w: %s", ErrRunExists, st.Message())
	default:
		return err
	}
}

func parametersFrom(v any) (models.Parameters, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return models.Parameters{}, fmt.Errorf("malformed response: missing parameters")
	}
	return models.ParseParameters(m)
}

func runFrom(resp map[string]any) (*models.Run, error) {
	m, ok := resp["run"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("malformed response: missing run")
	}

	run := &models.Run{}
	run.ID, _ = m["id"].(string)
	if s, ok := m["status"].(string); ok {
		run.Status = models.RunStatus(s)
	}
	run.Error, _ = m["error"].(string)
	if in, ok := m["input"].(map[string]any); ok {
		input, err := models.ParseRawInput(in)
		if err != nil {
			return nil, err
		}
		run.Input = input
	}
	if o, ok := m["options"].(map[string]any); ok {
		run.Options.Validate, _ = o["validate"].(bool)
		run.Options.Optimize, _ = o["optimize"].(bool)
	}
	for key, dst := range map[string]**models.Parameters{"compiled": &run.Compiled, "parameters": &run.Parameters} {
		if _, present := m[key]; !present {
			continue
		}
		p, err := parametersFrom(m[key])
		if err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
		*dst = &p
	}
	if v, ok := m["validation"].(map[string]any); ok {
		valid, _ := v["valid"].(bool)
		reason, _ := v["reason"].(string)
		run.Validation = &models.ValidationResult{Valid: valid, Reason: reason}
	}
	if s, ok := m["created_at"].(string); ok {
		run.CreatedAt, _ = time.Parse(time.RFC3339Nano, s)
	}
	if s, ok := m["ended_at"].(string); ok {
		run.EndedAt, _ = time.Parse(time.RFC3339Nano, s)
	}
	if ms, ok := m["duration_ms"].(float64); ok {
		run.Duration = time.Duration(ms * float64(time.Millisecond))
	}

	if r, ok := resp["result"].(map[string]any); ok {
		run.Result = &models.SimulationResult{
			Time:   floatsFrom(r["time"]),
			Values: floatsFrom(r["values"]),
		}
		if st, ok := r["statistics"].(map[string]any); ok {
			run.Result.Statistics = statisticsFrom(st)
		}
	}
	return run, nil
}

func floatsFrom(v any) []float64 {
	items, _ := v.([]any)
	out := make([]float64, 0, len(items))
	for _, item := range items {
		f, _ := item.(float64)
		out = append(out, f)
	}
	return out
}

func statisticsFrom(m map[string]any) models.Statistics {
	var s models.Statistics
	s.Mean, _ = m["mean"].(float64)
	s.Std, _ = m["std"].(float64)
	s.Min, _ = m["min"].(float64)
	s.Max, _ = m["max"].(float64)
	return s
}
