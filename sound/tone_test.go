package sound

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/go-audio/wav"
	"github.com/retroenv/retrogolib/assert"
)

func TestTone(t *testing.T) {
	data, err := Tone(DefaultFrequency, 100*time.Millisecond)
	assert.NoError(t, err)

	dec := wav.NewDecoder(bytes.NewReader(data))
	assert.True(t, dec.IsValidFile())
	assert.Equal(t, uint32(SampleRate), dec.SampleRate)
	assert.Equal(t, uint16(1), dec.NumChans)
	assert.Equal(t, uint16(BitDepth), dec.BitDepth)

	buf, err := dec.FullPCMBuffer()
	assert.NoError(t, err)
	assert.Len(t, buf.Data, SampleRate/10)

	// a square wave only has two levels
	half := SampleRate / DefaultFrequency / 2
	assert.Equal(t, amplitude, buf.Data[0])
	assert.Equal(t, amplitude, buf.Data[int(half)-1])
	assert.Equal(t, -amplitude, buf.Data[int(half)+1])
}

func TestInvalidTone(t *testing.T) {
	_, err := Tone(0, time.Second)
	assert.True(t, errors.Is(err, ErrInvalidTone))

	_, err = Tone(DefaultFrequency, 0)
	assert.True(t, errors.Is(err, ErrInvalidTone))
}
