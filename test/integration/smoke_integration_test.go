//go:build integration
// +build integration

package integration_test

import (
	"context"
	"math"
	"path/filepath"
	"testing"

	"github.com/wavesim/wavesim/internal/compiler"
	"github.com/wavesim/wavesim/internal/generator"
	"github.com/wavesim/wavesim/internal/pipeline"
	"github.com/wavesim/wavesim/pkg/config"
)

func TestIntegration_ConfigPresetsRunSmoke(t *testing.T) {
	cfgPath := filepath.Join("..", "..", "config", "wavesim.yaml")

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		t.Fatalf("LoadConfig(%s) failed: %v", cfgPath, err)
	}
	if len(cfg.Presets) == 0 {
		t.Fatalf("expected config to define at least one preset")
	}

	p := pipeline.New(compiler.New(), generator.NewGenerator(), nil)
	for _, preset := range cfg.Presets {
		t.Run(preset.Name, func(t *testing.T) {
			raw, err := preset.RawInput()
			if err != nil {
				t.Fatalf("preset input: %v", err)
			}
			out, err := p.Execute(context.Background(), raw, cfg.RunDefaults)
			if err != nil {
				t.Fatalf("Execute failed: %v", err)
			}
			res := out.Result
			if res.Len() != out.Parameters.Points {
				t.Fatalf("expected %d samples, got %d", out.Parameters.Points, res.Len())
			}
			if res.Time[0] != 0 || math.Abs(res.Time[res.Len()-1]-4*math.Pi) > 1e-9 {
				t.Fatalf("unexpected time axis [%v, %v]", res.Time[0], res.Time[res.Len()-1])
			}
			if res.Statistics.Max > out.Parameters.Amplitude+1e-9 {
				t.Fatalf("max %v exceeds amplitude %v", res.Statistics.Max, out.Parameters.Amplitude)
			}
		})
	}
}
