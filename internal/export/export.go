// Package export serializes simulation results for download and archiving.
package export

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/wavesim/wavesim/pkg/models"
)

// Format identifies an export encoding
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatWAV  Format = "wav"
)

// DefaultSampleRate is the WAV sample rate used when none is configured.
const DefaultSampleRate = 8000

// ErrUnknownFormat is returned for unsupported export formats
var ErrUnknownFormat = errors.New("unknown export format")

// ParseFormat parses csv, json or wav (case-insensitive)
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatCSV, FormatJSON, FormatWAV:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q (must be csv, json, or wav)", ErrUnknownFormat, s)
	}
}

// FormatFromPath derives the format from a file extension
func FormatFromPath(path string) (Format, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return "", fmt.Errorf("%w: %s has no extension", ErrUnknownFormat, path)
	}
	return ParseFormat(ext)
}

// ContentType returns the MIME type for the format
func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv"
	case FormatJSON:
		return "application/json"
	case FormatWAV:
		return "audio/wav"
	default:
		return "application/octet-stream"
	}
}

// FileName returns the default download name for the format
func (f Format) FileName() string {
	return "simulation_results." + string(f)
}

// Write encodes result to w. WAV output needs to seek; when w is not an
// io.WriteSeeker the file is assembled in memory first.
func Write(w io.Writer, f Format, result *models.SimulationResult, sampleRate int) error {
	if result == nil {
		return errors.New("export: nil result")
	}
	switch f {
	case FormatCSV:
		return WriteCSV(w, result)
	case FormatJSON:
		return WriteJSON(w, result)
	case FormatWAV:
		if ws, ok := w.(io.WriteSeeker); ok {
			return WriteWAV(ws, result, sampleRate)
		}
		buf := &SeekBuffer{}
		if err := WriteWAV(buf, result, sampleRate); err != nil {
			return err
		}
		_, err := w.Write(buf.Bytes())
		return err
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, string(f))
	}
}

// WriteCSV writes a time,value header followed by one row per sample.
func WriteCSV(w io.Writer, result *models.SimulationResult) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"time", "value"}); err != nil {
		return err
	}
	for i := range result.Values {
		row := []string{formatFloat(result.Time[i]), formatFloat(result.Values[i])}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteJSON writes the result as a single JSON document
func WriteJSON(w io.Writer, result *models.SimulationResult) error {
	enc := json.NewEncoder(w)
	return enc.Encode(result)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
