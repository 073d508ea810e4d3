package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wavesim/wavesim/pkg/config"
	"github.com/wavesim/wavesim/pkg/logger"
	"github.com/wavesim/wavesim/pkg/models"
)

// errValidationFailed is returned after the failure reason has been printed.
var errValidationFailed = errors.New("validation failed")

// app holds state shared by all subcommands once flags are parsed.
type app struct {
	configPath string
	logLevel   string
	cfg        *config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "wavesim",
		Short:         "Sine-wave simulation toolkit",
		Long:          "wavesim compiles loosely-typed wave parameters, validates and optimizes them, and generates sampled sine waves.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "path to wavesim.yaml")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level (debug, info, warn, error)")

	root.AddCommand(
		newRunCmd(a),
		newValidateCmd(a),
		newOptimizeCmd(a),
		newVersionCmd(),
	)
	return root
}

func (a *app) init(cmd *cobra.Command) error {
	cfg, err := config.LoadConfigOrDefault(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		if !logger.ValidLevel(a.logLevel) {
			return fmt.Errorf("invalid --log-level %q", a.logLevel)
		}
		cfg.LogLevel = a.logLevel
	}
	a.cfg = cfg
	// Results go to stdout; logs stay on stderr.
	logger.SetDefault(logger.NewText(cfg.LogLevel, cmd.ErrOrStderr()))
	return nil
}

// inputFlags collects a RawInput from a preset, an input file and flags,
// in increasing order of precedence.
type inputFlags struct {
	amplitude float64
	frequency float64
	phase     float64
	points    int
	inputPath string
	preset    string
}

func (f *inputFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.Float64Var(&f.amplitude, "amplitude", models.DefaultAmplitude, "wave amplitude")
	fs.Float64Var(&f.frequency, "frequency", models.DefaultFrequency, "wave frequency")
	fs.Float64Var(&f.phase, "phase", models.DefaultPhase, "phase offset in radians")
	fs.IntVar(&f.points, "points", models.DefaultPoints, "number of samples")
	fs.StringVar(&f.inputPath, "input", "", "YAML file with amplitude/frequency/phase/points")
	fs.StringVar(&f.preset, "preset", "", "named preset from the config file")
}

func (f *inputFlags) rawInput(cmd *cobra.Command, cfg *config.Config) (models.RawInput, error) {
	var raw models.RawInput

	if f.preset != "" {
		p, ok := cfg.Preset(f.preset)
		if !ok {
			return models.RawInput{}, fmt.Errorf("unknown preset %q", f.preset)
		}
		in, err := p.RawInput()
		if err != nil {
			return models.RawInput{}, fmt.Errorf("preset %s: %w", f.preset, err)
		}
		raw = raw.Merge(in)
	}

	if f.inputPath != "" {
		in, err := config.LoadInput(f.inputPath)
		if err != nil {
			return models.RawInput{}, err
		}
		raw = raw.Merge(in)
	}

	// Only flags the user set take part, so unset keys fall back to the
	// compiler defaults.
	fs := cmd.Flags()
	var flags models.RawInput
	if fs.Changed("amplitude") {
		flags.Amplitude = models.Float64(f.amplitude)
	}
	if fs.Changed("frequency") {
		flags.Frequency = models.Float64(f.frequency)
	}
	if fs.Changed("phase") {
		flags.Phase = models.Float64(f.phase)
	}
	if fs.Changed("points") {
		flags.Points = models.Int(f.points)
	}
	return raw.Merge(flags), nil
}
