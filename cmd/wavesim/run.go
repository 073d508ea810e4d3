package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/wavesim/wavesim/internal/compiler"
	"github.com/wavesim/wavesim/internal/export"
	"github.com/wavesim/wavesim/internal/generator"
	"github.com/wavesim/wavesim/internal/pipeline"
	"github.com/wavesim/wavesim/internal/simd"
	"github.com/wavesim/wavesim/pkg/logger"
	"github.com/wavesim/wavesim/pkg/models"
)

type runFlags struct {
	input      inputFlags
	validate   bool
	optimize   bool
	exportPath string
	remote     string
	timeout    time.Duration
}

func newRunCmd(a *app) *cobra.Command {
	f := &runFlags{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Compile, validate and generate a sine wave",
		Example: `  wavesim run --amplitude 5 --points 2000
  wavesim run --preset dashboard --export wave.wav
  wavesim run --input params.yaml --optimize --remote localhost:50051`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulation(cmd, a, f)
		},
	}

	f.input.register(cmd)
	fs := cmd.Flags()
	fs.BoolVar(&f.validate, "validate", true, "check parameter bounds before generating")
	fs.BoolVar(&f.optimize, "optimize", false, "round points to the nearest multiple of 100")
	fs.StringVar(&f.exportPath, "export", "", "write results to a .csv, .json or .wav file")
	fs.StringVar(&f.remote, "remote", "", "run on a wavesimd gRPC endpoint instead of locally")
	fs.DurationVar(&f.timeout, "timeout", 30*time.Second, "deadline for remote runs")
	return cmd
}

func runSimulation(cmd *cobra.Command, a *app, f *runFlags) error {
	raw, err := f.input.rawInput(cmd, a.cfg)
	if err != nil {
		return err
	}

	var format export.Format
	if f.exportPath != "" {
		if format, err = export.FormatFromPath(f.exportPath); err != nil {
			return err
		}
	}

	opts := models.RunOptions{Validate: f.validate, Optimize: f.optimize}
	if !cmd.Flags().Changed("validate") {
		opts.Validate = a.cfg.RunDefaults.Validate
	}
	if !cmd.Flags().Changed("optimize") {
		opts.Optimize = a.cfg.RunDefaults.Optimize
	}

	var (
		params models.Parameters
		result *models.SimulationResult
	)
	if f.remote != "" {
		params, result, err = runRemote(cmd.Context(), f, raw, opts)
	} else {
		params, result, err = runLocal(cmd.Context(), raw, opts)
	}

	out := cmd.OutOrStdout()
	if ve, ok := models.IsValidationError(err); ok {
		fmt.Fprintf(out, "Validation failed: %s\n", ve.Reason)
		return errValidationFailed
	}
	if err != nil {
		return err
	}

	renderSummary(out, params, result)

	if f.exportPath != "" {
		if err := writeExport(f.exportPath, format, result, a.cfg.Export.AudioSampleRate); err != nil {
			return err
		}
		fmt.Fprintf(out, "Exported %d samples to %s\n", result.Len(), f.exportPath)
	}
	return nil
}

func runLocal(ctx context.Context, raw models.RawInput, opts models.RunOptions) (models.Parameters, *models.SimulationResult, error) {
	p := pipeline.New(compiler.New(), generator.NewGenerator(), nil)
	out, err := p.Execute(ctx, raw, opts)
	if err != nil {
		return models.Parameters{}, nil, err
	}
	return out.Parameters, out.Result, nil
}

func runRemote(ctx context.Context, f *runFlags, raw models.RawInput, opts models.RunOptions) (models.Parameters, *models.SimulationResult, error) {
	conn, err := grpc.NewClient(f.remote, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return models.Parameters{}, nil, fmt.Errorf("connect to %s: %w", f.remote, err)
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	run, err := simd.NewWaveClient(conn).Run(ctx, "", raw, opts)
	if err != nil {
		return models.Parameters{}, nil, err
	}
	logger.Info("remote run finished", "run_id", run.ID, "status", run.Status)
	if run.Parameters == nil || run.Result == nil {
		return models.Parameters{}, nil, fmt.Errorf("remote run %s returned no result", run.ID)
	}
	return *run.Parameters, run.Result, nil
}

func writeExport(path string, format export.Format, result *models.SimulationResult, sampleRate int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create export file: %w", err)
	}
	if err := export.Write(f, format, result, sampleRate); err != nil {
		f.Close()
		return fmt.Errorf("write %s export: %w", format, err)
	}
	return f.Close()
}
