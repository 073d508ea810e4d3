package simd

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/wavesim/wavesim/pkg/logger"
	"github.com/wavesim/wavesim/pkg/models"
)

// WaveGRPCServer implements WaveServiceServer using a RunStore backend.
type WaveGRPCServer struct {
	store    *RunStore
	Executor *RunExecutor
	defaults models.RunOptions
}

// NewWaveGRPCServer creates a WaveGRPCServer. Runs that omit options use defaults.
func NewWaveGRPCServer(store *RunStore, executor *RunExecutor, defaults models.RunOptions) *WaveGRPCServer {
	return &WaveGRPCServer{
		store:    store,
		Executor: executor,
		defaults: defaults,
	}
}

func (s *WaveGRPCServer) Compile(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	input, err := inputField(req)
	if err != nil {
		return nil, err
	}
	params := s.Executor.Pipeline().Compiler().Compile(input)
	return newStruct(map[string]any{"parameters": params.Map()})
}

func (s *WaveGRPCServer) Validate(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	params, err := parametersField(req)
	if err != nil {
		return nil, err
	}
	return newStruct(validationToMap(s.Executor.Pipeline().Compiler().Validate(params)))
}

func (s *WaveGRPCServer) Optimize(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	params, err := parametersField(req)
	if err != nil {
		return nil, err
	}
	return newStruct(map[string]any{"parameters": s.Executor.Pipeline().Compiler().Optimize(params).Map()})
}

func (s *WaveGRPCServer) Run(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	input, err := inputField(req)
	if err != nil {
		return nil, err
	}
	m := req.AsMap()
	runID, _ := m["run_id"].(string)
	opts := s.defaults
	if o, ok := m["options"].(map[string]any); ok {
		if v, ok := o["validate"].(bool); ok {
			opts.Validate = v
		}
		if v, ok := o["optimize"].(bool); ok {
			opts.Optimize = v
		}
	}

	run, err := s.Executor.Submit(ctx, runID, input, opts, nil)
	if err != nil {
		return nil, toStatus(err)
	}

	logger.Info("run created (gRPC)", "run_id", run.ID)
	return runResponse(run, includeResult(m))
}

func (s *WaveGRPCServer) GetRun(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	m := req.AsMap()
	runID, _ := m["run_id"].(string)
	if runID == "" {
		return nil, status.Error(codes.InvalidArgument, ErrRunIDMissing.Error())
	}
	run, ok := s.store.Get(runID)
	if !ok {
		return nil, status.Error(codes.NotFound, "run not found")
	}
	return runResponse(run, includeResult(m))
}

func runResponse(run *models.Run, withResult bool) (*structpb.Struct, error) {
	body := map[string]any{"run": runToMap(run)}
	if withResult && run.Result != nil {
		body["result"] = resultToMap(run.Result)
	}
	return newStruct(body)
}

func includeResult(m map[string]any) bool {
	v, _ := m["include_result"].(bool)
	return v
}

func inputField(req *structpb.Struct) (models.RawInput, error) {
	if req == nil {
		return models.RawInput{}, status.Error(codes.InvalidArgument, "input is required")
	}
	in, ok := req.AsMap()["input"].(map[string]any)
	if !ok {
		return models.RawInput{}, status.Error(codes.InvalidArgument, "input is required")
	}
	raw, err := models.ParseRawInput(in)
	if err != nil {
		return models.RawInput{}, status.Error(codes.InvalidArgument, err.Error())
	}
	return raw, nil
}

func parametersField(req *structpb.Struct) (models.Parameters, error) {
	if req == nil {
		return models.Parameters{}, status.Error(codes.InvalidArgument, "parameters are required")
	}
	in, ok := req.AsMap()["parameters"].(map[string]any)
	if !ok {
		return models.Parameters{}, status.Error(codes.InvalidArgument, "parameters are required")
	}
	params, err := models.ParseParameters(in)
	if err != nil {
		return models.Parameters{}, status.Error(codes.InvalidArgument, err.Error())
	}
	return params, nil
}

func newStruct(m map[string]any) (*structpb.Struct, error) {
	st, err := structpb.NewStruct(m)
	if err != nil {
		return nil, status.Error(codes.Internal, fmt.Sprintf("encode response: %v", err))
	}
	return st, nil
}

// toStatus maps domain errors onto gRPC status codes. Validation failures
// carry the bare reason as the status message.
func toStatus(err error) error {
	if ve, ok := models.IsValidationError(err); ok {
		return status.Error(codes.FailedPrecondition, ve.Reason)
	}
	switch {
	case errors.Is(err, models.ErrInvalidParameter),
		errors.Is(err, ErrTooManyPoints),
		errors.Is(err, ErrRunIDInvalid),
		errors.Is(err, ErrRunIDMissing):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, ErrRunNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, ErrRunExists):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, ErrRunTerminal):
		return status.Error(codes.FailedPrecondition, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
