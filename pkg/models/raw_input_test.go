package models

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestParseRawInputNumericKinds(t *testing.T) {
	raw, err := ParseRawInput(map[string]any{
		"amplitude": 2,
		"frequency": float32(0.5),
		"phase":     json.Number("1.25"),
		"points":    1200.0,
		"color":     "blue",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if raw.Amplitude == nil || *raw.Amplitude != 2 {
		t.Errorf("expected amplitude 2, got %v", raw.Amplitude)
	}
	if raw.Frequency == nil || *raw.Frequency != 0.5 {
		t.Errorf("expected frequency 0.5, got %v", raw.Frequency)
	}
	if raw.Phase == nil || *raw.Phase != 1.25 {
		t.Errorf("expected phase 1.25, got %v", raw.Phase)
	}
	if raw.Points == nil || *raw.Points != 1200 {
		t.Errorf("expected points 1200, got %v", raw.Points)
	}
}

func TestParseRawInputAbsentKeys(t *testing.T) {
	raw, err := ParseRawInput(map[string]any{"phase": nil})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if raw.Amplitude != nil || raw.Frequency != nil || raw.Phase != nil || raw.Points != nil {
		t.Errorf("expected all fields absent, got %+v", raw)
	}
}

func TestParseRawInputRejectsNonNumeric(t *testing.T) {
	tests := []struct {
		name  string
		input map[string]any
	}{
		{"string amplitude", map[string]any{"amplitude": "loud"}},
		{"bool frequency", map[string]any{"frequency": true}},
		{"fractional points", map[string]any{"points": 100.5}},
		{"points string", map[string]any{"points": "many"}},
		{"huge points", map[string]any{"points": 1e12}},
		{"huge int points", map[string]any{"points": 1 << 40}},
		{"negative int points", map[string]any{"points": -(1 << 40)}},
		{"huge int64 points", map[string]any{"points": int64(1) << 40}},
		{"huge uint32 points", map[string]any{"points": uint32(1) << 31}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseRawInput(tt.input)
			if !errors.Is(err, ErrInvalidParameter) {
				t.Fatalf("expected ErrInvalidParameter, got %v", err)
			}
		})
	}
}

func TestParseRawInputNumericString(t *testing.T) {
	raw, err := ParseRawInput(map[string]any{"amplitude": " 3.5 ", "points": "400"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if *raw.Amplitude != 3.5 || *raw.Points != 400 {
		t.Errorf("unexpected parse: amplitude=%v points=%v", *raw.Amplitude, *raw.Points)
	}
}

func TestRawInputMapRoundTrip(t *testing.T) {
	in := RawInput{Amplitude: Float64(4), Points: Int(300)}
	m := in.Map()
	if len(m) != 2 {
		t.Fatalf("expected 2 keys, got %d: %v", len(m), m)
	}
	out, err := ParseRawInput(m)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if *out.Amplitude != 4 || *out.Points != 300 || out.Frequency != nil {
		t.Errorf("unexpected round trip result: %+v", out)
	}
}

func TestRawInputMerge(t *testing.T) {
	base := RawInput{Amplitude: Float64(1), Frequency: Float64(2)}
	merged := base.Merge(RawInput{Frequency: Float64(3), Points: Int(500)})

	if *merged.Amplitude != 1 {
		t.Errorf("expected amplitude kept, got %v", *merged.Amplitude)
	}
	if *merged.Frequency != 3 {
		t.Errorf("expected frequency overridden, got %v", *merged.Frequency)
	}
	if *merged.Points != 500 {
		t.Errorf("expected points added, got %v", *merged.Points)
	}
	if *base.Frequency != 2 {
		t.Errorf("base input must not change")
	}
}

func TestParseParametersRequiresAllKeys(t *testing.T) {
	_, err := ParseParameters(map[string]any{"amplitude": 1.0, "frequency": 1.0, "phase": 0.0})
	if !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("expected ErrInvalidParameter, got %v", err)
	}

	p, err := ParseParameters(Parameters{Amplitude: 2, Frequency: 3, Phase: 0.5, Points: 700}.Map())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p != (Parameters{Amplitude: 2, Frequency: 3, Phase: 0.5, Points: 700}) {
		t.Errorf("unexpected parameters: %+v", p)
	}
}

func TestValidationErrorAs(t *testing.T) {
	err := error(&ValidationError{Reason: "Points must be at least 100"})
	ve, ok := IsValidationError(err)
	if !ok {
		t.Fatal("expected validation error")
	}
	if ve.Reason != "Points must be at least 100" {
		t.Errorf("unexpected reason %q", ve.Reason)
	}
	if _, ok := IsValidationError(ErrInvalidParameter); ok {
		t.Error("ErrInvalidParameter is not a validation error")
	}
}

func TestRunStatusTerminal(t *testing.T) {
	if RunStatusPending.IsTerminal() {
		t.Error("pending must not be terminal")
	}
	for _, s := range []RunStatus{RunStatusCompleted, RunStatusDeclined, RunStatusFailed} {
		if !s.IsTerminal() {
			t.Errorf("%s should be terminal", s)
		}
	}
}
