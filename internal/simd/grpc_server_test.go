package simd

import (
	"context"
	"errors"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/wavesim/wavesim/internal/compiler"
	"github.com/wavesim/wavesim/pkg/models"
)

// startBufconn serves the wave service over an in-memory listener.
func startBufconn(t *testing.T) (*RunStore, *WaveClient) {
	t.Helper()

	store, exec := newTestExecutor()
	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer()
	RegisterWaveServiceServer(srv, NewWaveGRPCServer(store, exec, models.RunOptions{Validate: true}))
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return store, NewWaveClient(conn)
}

func TestGRPCCompileValidateOptimize(t *testing.T) {
	_, client := startBufconn(t)
	ctx := context.Background()

	params, err := client.Compile(ctx, models.RawInput{Points: models.Int(1050)})
	require.NoError(t, err)
	assert.Equal(t, models.Parameters{Amplitude: 1, Frequency: 1, Phase: 0, Points: 1050}, params)

	v, err := client.Validate(ctx, params)
	require.NoError(t, err)
	assert.Equal(t, models.ValidationResult{Valid: true, Reason: compiler.ReasonValid}, v)

	v, err = client.Validate(ctx, models.Parameters{Amplitude: 0, Frequency: 1, Points: 1000})
	require.NoError(t, err)
	assert.False(t, v.Valid)
	assert.Equal(t, compiler.ReasonAmplitude, v.Reason)

	optimized, err := client.Optimize(ctx, params)
	require.NoError(t, err)
	assert.Equal(t, 1000, optimized.Points)
}

func TestGRPCRunAndGetRun(t *testing.T) {
	store, client := startBufconn(t)
	ctx := context.Background()

	run, err := client.Run(ctx, "grpc-run", models.RawInput{Amplitude: models.Float64(2)}, models.RunOptions{Validate: true})
	require.NoError(t, err)
	assert.Equal(t, "grpc-run", run.ID)
	assert.Equal(t, models.RunStatusCompleted, run.Status)
	require.NotNil(t, run.Result)
	assert.Len(t, run.Result.Values, models.DefaultPoints)
	assert.Len(t, run.Result.Time, models.DefaultPoints)
	assert.InDelta(t, 2.0, run.Result.Statistics.Max, 1e-3)
	require.NotNil(t, run.Parameters)
	assert.Equal(t, 2.0, run.Parameters.Amplitude)
	assert.Equal(t, 2.0, *run.Input.Amplitude)

	stored, ok := store.Get("grpc-run")
	require.True(t, ok)
	assert.Equal(t, stored.Result.Statistics, run.Result.Statistics)

	got, err := client.GetRun(ctx, "grpc-run", false)
	require.NoError(t, err)
	assert.Equal(t, models.RunStatusCompleted, got.Status)
	assert.Nil(t, got.Result)
}

func TestGRPCRunErrorMapping(t *testing.T) {
	_, client := startBufconn(t)
	ctx := context.Background()

	_, err := client.Run(ctx, "", models.RawInput{Points: models.Int(50)}, models.RunOptions{Validate: true})
	var ve *models.ValidationError
	require.True(t, errors.As(err, &ve), "expected ValidationError, got %v", err)
	assert.Equal(t, compiler.ReasonPoints, ve.Reason)

	_, err = client.Run(ctx, "", models.RawInput{Points: models.Int(0)}, models.RunOptions{})
	assert.ErrorIs(t, err, models.ErrInvalidParameter)

	_, err = client.GetRun(ctx, "missing", false)
	assert.ErrorIs(t, err, ErrRunNotFound)

	_, err = client.Run(ctx, "dup", models.RawInput{}, models.RunOptions{})
	require.NoError(t, err)
	_, err = client.Run(ctx, "dup", models.RawInput{}, models.RunOptions{})
	assert.ErrorIs(t, err, ErrRunExists)
}

func TestGRPCServerStatusCodes(t *testing.T) {
	store, exec := newTestExecutor()
	srv := NewWaveGRPCServer(store, exec, models.RunOptions{Validate: true})
	ctx := context.Background()

	req, err := structpb.NewStruct(map[string]any{
		"input": map[string]any{"points": 50.0},
	})
	require.NoError(t, err)
	_, err = srv.Run(ctx, req)
	assert.Equal(t, codes.FailedPrecondition, status.Code(err))
	assert.Equal(t, compiler.ReasonPoints, status.Convert(err).Message())

	req, err = structpb.NewStruct(map[string]any{
		"input": map[string]any{"amplitude": "loud"},
	})
	require.NoError(t, err)
	_, err = srv.Compile(ctx, req)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	empty, err := structpb.NewStruct(map[string]any{})
	require.NoError(t, err)
	_, err = srv.Validate(ctx, empty)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
	_, err = srv.GetRun(ctx, empty)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	req, err = structpb.NewStruct(map[string]any{"run_id": "nope"})
	require.NoError(t, err)
	_, err = srv.GetRun(ctx, req)
	assert.Equal(t, codes.NotFound, status.Code(err))

	req, err = structpb.NewStruct(map[string]any{
		"input":   map[string]any{"points": 50.0},
		"options": map[string]any{"validate": false},
	})
	require.NoError(t, err)
	resp, err := srv.Run(ctx, req)
	require.NoError(t, err)
	run := resp.AsMap()["run"].(map[string]any)
	assert.Equal(t, "completed", run["status"])
	_, hasResult := resp.AsMap()["result"]
	assert.False(t, hasResult)
}
