package export

import (
	"errors"
	"io"

	"github.com/faiface/beep"
	"github.com/faiface/beep/wav"

	"github.com/wavesim/wavesim/pkg/models"
	"github.com/wavesim/wavesim/pkg/utils"
)

// WriteWAV renders the values as mono 16-bit PCM, one frame per sample,
// normalized by the peak absolute value.
func WriteWAV(w io.WriteSeeker, result *models.SimulationResult, sampleRate int) error {
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}
	format := beep.Format{
		SampleRate:  beep.SampleRate(sampleRate),
		NumChannels: 1,
		Precision:   2,
	}
	return wav.Encode(w, newValueStreamer(result.Values), format)
}

// newValueStreamer plays values once, scaled into [-1, 1].
func newValueStreamer(values []float64) beep.Streamer {
	scale := 0.0
	if peak := utils.MaxAbs(values); peak > 0 {
		scale = 1 / peak
	}

	pos := 0
	return beep.StreamerFunc(func(samples [][2]float64) (n int, ok bool) {
		if pos >= len(values) {
			return 0, false
		}
		for n < len(samples) && pos < len(values) {
			v := utils.ClampFloat64(values[pos]*scale, -1, 1)
			samples[n][0] = v
			samples[n][1] = v
			n++
			pos++
		}
		return n, true
	})
}

// SeekBuffer is an in-memory io.WriteSeeker.
type SeekBuffer struct {
	buf []byte
	pos int
}

func (b *SeekBuffer) Write(p []byte) (int, error) {
	end := b.pos + len(p)
	if end > len(b.buf) {
		if end > cap(b.buf) {
			grown := make([]byte, end, 2*end)
			copy(grown, b.buf)
			b.buf = grown
		} else {
			b.buf = b.buf[:end]
		}
	}
	copy(b.buf[b.pos:], p)
	b.pos = end
	return len(p), nil
}

func (b *SeekBuffer) Seek(offset int64, whence int) (int64, error) {
	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = int64(b.pos) + offset
	case io.SeekEnd:
		abs = int64(len(b.buf)) + offset
	default:
		return 0, errors.New("seekbuffer: invalid whence")
	}
	if abs < 0 {
		return 0, errors.New("seekbuffer: negative position")
	}
	b.pos = int(abs)
	return abs, nil
}

// Bytes returns the written contents
func (b *SeekBuffer) Bytes() []byte {
	return b.buf
}
