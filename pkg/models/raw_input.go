package models

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Keys recognised in the mapping form of a RawInput.
const (
	KeyAmplitude = "amplitude"
	KeyFrequency = "frequency"
	KeyPhase     = "phase"
	KeyPoints    = "points"
)

// Float64 returns a pointer to v
func Float64(v float64) *float64 { return &v }

// Int returns a pointer to v
func Int(v int) *int { return &v }

// ParseRawInput converts the mapping form of user input into a RawInput.
// Unknown keys are ignored and nil values count as absent. A present value
// that is not numeric, or a points value that is not integral, yields
// ErrInvalidParameter.
func ParseRawInput(m map[string]any) (RawInput, error) {
	var raw RawInput
	for _, key := range []string{KeyAmplitude, KeyFrequency, KeyPhase} {
		v, ok := m[key]
		if !ok || v == nil {
			continue
		}
		f, err := toFloat(v)
		if err != nil {
			return RawInput{}, fmt.Errorf("%w: %s: %v", ErrInvalidParameter, key, err)
		}
		switch key {
		case KeyAmplitude:
			raw.Amplitude = &f
		case KeyFrequency:
			raw.Frequency = &f
		case KeyPhase:
			raw.Phase = &f
		}
	}

	if v, ok := m[KeyPoints]; ok && v != nil {
		n, err := toInt(v)
		if err != nil {
			return RawInput{}, fmt.Errorf("%w: %s: %v", ErrInvalidParameter, KeyPoints, err)
		}
		raw.Points = &n
	}
	return raw, nil
}

// Map returns the mapping form of the input, containing only present keys.
func (r RawInput) Map() map[string]any {
	m := make(map[string]any, 4)
	if r.Amplitude != nil {
		m[KeyAmplitude] = *r.Amplitude
	}
	if r.Frequency != nil {
		m[KeyFrequency] = *r.Frequency
	}
	if r.Phase != nil {
		m[KeyPhase] = *r.Phase
	}
	if r.Points != nil {
		m[KeyPoints] = *r.Points
	}
	return m
}

// Merge returns a copy of r with every key present in override replacing r's.
func (r RawInput) Merge(override RawInput) RawInput {
	out := r
	if override.Amplitude != nil {
		out.Amplitude = override.Amplitude
	}
	if override.Frequency != nil {
		out.Frequency = override.Frequency
	}
	if override.Phase != nil {
		out.Phase = override.Phase
	}
	if override.Points != nil {
		out.Points = override.Points
	}
	return out
}

// Map returns the mapping form of the parameters.
func (p Parameters) Map() map[string]any {
	return map[string]any{
		KeyAmplitude: p.Amplitude,
		KeyFrequency: p.Frequency,
		KeyPhase:     p.Phase,
		KeyPoints:    p.Points,
	}
}

// ParseParameters reads a canonical record from its mapping form.
// All four keys are required.
func ParseParameters(m map[string]any) (Parameters, error) {
	for _, key := range []string{KeyAmplitude, KeyFrequency, KeyPhase, KeyPoints} {
		if v, ok := m[key]; !ok || v == nil {
			return Parameters{}, fmt.Errorf("%w: %s is required", ErrInvalidParameter, key)
		}
	}
	raw, err := ParseRawInput(m)
	if err != nil {
		return Parameters{}, err
	}
	return Parameters{
		Amplitude: *raw.Amplitude,
		Frequency: *raw.Frequency,
		Phase:     *raw.Phase,
		Points:    *raw.Points,
	}, nil
}

func toFloat(v any) (float64, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	case int:
		return float64(x), nil
	case int8:
		return float64(x), nil
	case int16:
		return float64(x), nil
	case int32:
		return float64(x), nil
	case int64:
		return float64(x), nil
	case uint:
		return float64(x), nil
	case uint8:
		return float64(x), nil
	case uint16:
		return float64(x), nil
	case uint32:
		return float64(x), nil
	case uint64:
		return float64(x), nil
	case json.Number:
		return x.Float64()
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, fmt.Errorf("not a number: %q", x)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("not a number: %T", v)
	}
}

// intInRange keeps points within int32 on every platform.
func intInRange(x int64) (int, error) {
	if x > math.MaxInt32 || x < math.MinInt32 {
		return 0, fmt.Errorf("out of range: %d", x)
	}
	return int(x), nil
}

func toInt(v any) (int, error) {
	switch x := v.(type) {
	case int:
		return intInRange(int64(x))
	case int8:
		return int(x), nil
	case int16:
		return int(x), nil
	case int32:
		return int(x), nil
	case int64:
		return intInRange(x)
	case uint8:
		return int(x), nil
	case uint16:
		return int(x), nil
	case uint32:
		return intInRange(int64(x))
	}

	f, err := toFloat(v)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, fmt.Errorf("not an integer: %v", v)
	}
	if f > math.MaxInt32 || f < math.MinInt32 {
		return 0, fmt.Errorf("out of range: %v", v)
	}
	return int(f), nil
}
