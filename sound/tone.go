// Package sound synthesises the buzzer tone as an in-memory WAV file
package sound

import (
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/orcaman/writerseeker"
)

const (
	SampleRate = 44100
	BitDepth   = 16

	// DefaultFrequency of the buzzer, in Hz
	DefaultFrequency = 440.0

	// amplitude keeps the square wave at a quarter of the full scale
	amplitude = math.MaxInt16 / 4

	// wavePCM is the format tag of uncompressed samples
	wavePCM = 1
)

var ErrInvalidTone = errors.New("invalid tone")

// Tone encodes a mono 16-bit square wave of the given frequency and duration
func Tone(freq float64, duration time.Duration) ([]byte, error) {
	if freq <= 0 || duration <= 0 {
		return nil, fmt.Errorf("%w: %.1f Hz during %s", ErrInvalidTone, freq, duration)
	}

	samples := int(duration.Seconds() * SampleRate)
	period := SampleRate / freq

	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: 1,
			SampleRate:  SampleRate,
		},
		Data:           make([]int, samples),
		SourceBitDepth: BitDepth,
	}
	for i := range buf.Data {
		if math.Mod(float64(i), period) < period/2 {
			buf.Data[i] = amplitude
		} else {
			buf.Data[i] = -amplitude
		}
	}

	// the encoder seeks back to patch the chunk sizes
	out := &writerseeker.WriterSeeker{}
	enc := wav.NewEncoder(out, SampleRate, BitDepth, 1, wavePCM)
	if err := enc.Write(buf); err != nil {
		return nil, fmt.Errorf("encoding tone: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encoding tone: %w", err)
	}

	data, err := io.ReadAll(out.BytesReader())
	if err != nil {
		return nil, fmt.Errorf("reading tone: %w", err)
	}

	return data, nil
}
