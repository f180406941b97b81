package console

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	xip8 "github.com/guslan/xip8vm"
	"github.com/retroenv/retrogolib/assert"
)

type zeroReader struct{}

func (zeroReader) Read(p []byte) (int, error) {
	clear(p)
	return len(p), nil
}

func newTestConsole(t *testing.T, program []byte, opts ...Option) (*Console, *DummyDisplay, *DummyBuzzer) {
	t.Helper()

	display := NewDummyDisplay()
	buzzer := NewDummyBuzzer()
	c := New(xip8.NewMachine(zeroReader{}), xip8.DefaultQuirks, display, buzzer, opts...)

	assert.NoError(t, c.Boot())
	assert.NoError(t, c.LoadProgram(program))

	return c, display, buzzer
}

func TestNotBooted(t *testing.T) {
	c := New(xip8.NewMachine(zeroReader{}), xip8.DefaultQuirks, NewDummyDisplay(), NewDummyBuzzer())

	assert.True(t, errors.Is(c.Step(), ErrNotBooted))
	assert.True(t, errors.Is(c.Frame(), ErrNotBooted))
	assert.True(t, errors.Is(c.Run(context.Background()), ErrNotBooted))
}

func TestStepIgnoresPause(t *testing.T) {
	c, _, _ := newTestConsole(t, []byte{0x60, 0x05, 0x61, 0x07}, Paused())
	assert.False(t, c.IsRunning())

	assert.NoError(t, c.Step())
	assert.Equal(t, byte(5), c.Snapshot().V[0])
	assert.Equal(t, uint16(0x202), c.Snapshot().Pc)
	assert.Equal(t, uint(1), c.Cycles())

	c.Start()
	assert.True(t, c.IsRunning())
}

func TestFrameDrivesTimersAndBuzzer(t *testing.T) {
	program := []byte{
		// set the sound and delay timers to 2
		0x60, 0x02,
		0xF0, 0x18,
		0xF0, 0x15,
	}
	c, _, buzzer := newTestConsole(t, program)
	for i := 0; i < 3; i++ {
		assert.NoError(t, c.Step())
	}

	assert.NoError(t, c.Frame())
	assert.Equal(t, byte(1), c.Snapshot().St)
	assert.True(t, buzzer.IsPlaying)

	assert.NoError(t, c.Frame())
	assert.Equal(t, byte(0), c.Snapshot().St)
	assert.Equal(t, byte(0), c.Snapshot().Dt)
	assert.False(t, buzzer.IsPlaying)
	assert.Equal(t, 1, buzzer.Plays)
	assert.Equal(t, uint(2), c.Frames())
}

func TestPausedFramesFreezeTimers(t *testing.T) {
	c, _, buzzer := newTestConsole(t, []byte{0x60, 0x09, 0xF0, 0x18})
	assert.NoError(t, c.Step())
	assert.NoError(t, c.Step())

	c.Stop()
	assert.NoError(t, c.Frame())
	assert.Equal(t, byte(9), c.Snapshot().St)
	assert.False(t, buzzer.IsPlaying)

	c.Start()
	assert.NoError(t, c.Frame())
	assert.Equal(t, byte(8), c.Snapshot().St)
	assert.True(t, buzzer.IsPlaying)
}

func TestRenderOnlyOnChange(t *testing.T) {
	program := []byte{
		// point I to the glyph of 0
		0xA0, 0x00,
		// draw it at (V0, V0)
		0xD0, 0x05,
		// loop
		0x12, 0x04,
	}
	c, display, _ := newTestConsole(t, program)
	assert.Equal(t, 1, display.Renders)

	assert.NoError(t, c.Step())
	assert.Equal(t, 1, display.Renders)

	assert.NoError(t, c.Step())
	assert.Equal(t, 2, display.Renders)
	assert.True(t, display.Last.Pixel(0, 0))
	assert.False(t, display.Last.Pixel(4, 0))

	assert.NoError(t, c.Step())
	assert.NoError(t, c.Frame())
	assert.Equal(t, 2, display.Renders)
	assert.True(t, c.Display().Pixel(3, 4))
}

func TestErrorHaltsConsole(t *testing.T) {
	c, _, _ := newTestConsole(t, []byte{0x00, 0xEE})

	var hooked error
	c.AddErrorHook(func(m *xip8.Machine, err error) {
		hooked = err
	})

	err := c.Step()
	assert.True(t, errors.Is(err, xip8.ErrStackUnderflow))
	assert.True(t, errors.Is(hooked, xip8.ErrStackUnderflow))
	assert.True(t, errors.Is(c.Err(), xip8.ErrStackUnderflow))

	// the console stays halted until it is reset
	assert.True(t, errors.Is(c.Step(), xip8.ErrStackUnderflow))
	assert.Equal(t, uint(0), c.Cycles())

	assert.NoError(t, c.Reset())
	assert.NoError(t, c.Err())
	assert.Equal(t, uint16(xip8.ProgramStart), c.Snapshot().Pc)
}

func TestResetKeepsProgram(t *testing.T) {
	c, _, _ := newTestConsole(t, []byte{0x60, 0x2A})

	assert.NoError(t, c.Step())
	assert.Equal(t, byte(0x2A), c.Snapshot().V[0])

	assert.NoError(t, c.Reset())
	assert.Equal(t, byte(0), c.Snapshot().V[0])

	assert.NoError(t, c.Step())
	assert.Equal(t, byte(0x2A), c.Snapshot().V[0])
}

func TestHooks(t *testing.T) {
	c, _, _ := newTestConsole(t, []byte{0x12, 0x00})

	var calls []string
	c.AddBeforeCycleHook(func(m *xip8.Machine) { calls = append(calls, "before cycle") })
	c.AddAfterCycleHook(func(m *xip8.Machine) { calls = append(calls, "after cycle") })
	c.AddBeforeFrameHook(func(m *xip8.Machine) { calls = append(calls, "before frame") })
	n := c.AddAfterFrameHook(func(m *xip8.Machine) { calls = append(calls, "after frame") })
	assert.Equal(t, 1, n)

	assert.NoError(t, c.Step())
	assert.NoError(t, c.Frame())

	assert.Equal(t, "before cycle,after cycle,before frame,after frame", strings.Join(calls, ","))
}

func TestKeys(t *testing.T) {
	// wait for a key into V2
	c, _, _ := newTestConsole(t, []byte{0xF2, 0x0A})

	assert.NoError(t, c.Step())
	assert.Equal(t, uint16(0x200), c.Snapshot().Pc)

	assert.NoError(t, c.PressKey(0x9))
	assert.NoError(t, c.Step())
	assert.Equal(t, uint16(0x202), c.Snapshot().Pc)
	assert.Equal(t, byte(0x9), c.Snapshot().V[2])

	assert.NoError(t, c.ReleaseKey(0x9))
	assert.True(t, errors.Is(c.PressKey(0x10), xip8.ErrOutOfRange))
}

func TestSpeed(t *testing.T) {
	c := New(xip8.NewMachine(zeroReader{}), xip8.DefaultQuirks, NewDummyDisplay(), NewDummyBuzzer(), WithSpeed(1))
	assert.Equal(t, MinSpeed, c.SpeedInHz())

	c.SetSpeedInHz(10_000)
	assert.Equal(t, MaxSpeed, c.SpeedInHz())

	c.SetSpeedInHz(60)
	assert.Equal(t, uint(60), c.SpeedInHz())
}

func TestSysHandler(t *testing.T) {
	var called uint16
	handler := func(addr uint16, m *xip8.Machine) error {
		called = addr
		return nil
	}
	c, _, _ := newTestConsole(t, []byte{0x01, 0x23}, WithSysHandler(handler))

	assert.NoError(t, c.Step())
	assert.Equal(t, uint16(0x123), called)
}

func TestRun(t *testing.T) {
	program := []byte{
		// 0x200: V0 += 1
		0x70, 0x01,
		// 0x202: loop
		0x12, 0x00,
	}
	c, _, buzzer := newTestConsole(t, program, WithSpeed(MaxSpeed))

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	assert.NoError(t, c.Run(ctx))
	assert.True(t, c.Cycles() > 0)
	assert.True(t, c.Frames() > 0)
	assert.True(t, c.Snapshot().V[0] > 0)
	assert.False(t, buzzer.IsPlaying)
}

func TestRunStopsOnError(t *testing.T) {
	c, _, _ := newTestConsole(t, []byte{0x00, 0xEE})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := c.Run(ctx)
	assert.True(t, errors.Is(err, xip8.ErrStackUnderflow))

	// a halted console does not run again
	assert.True(t, errors.Is(c.Run(ctx), xip8.ErrStackUnderflow))
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "ok.ch8")
	assert.NoError(t, os.WriteFile(path, []byte{0x00, 0xE0}, 0o600))
	program, err := LoadFile(path)
	assert.NoError(t, err)
	assert.Len(t, program, 2)
	assert.Equal(t, byte(0xE0), program[1])

	large := filepath.Join(dir, "large.ch8")
	assert.NoError(t, os.WriteFile(large, make([]byte, xip8.MaxProgramSize+1), 0o600))
	_, err = LoadFile(large)
	assert.True(t, errors.Is(err, xip8.ErrRomTooLarge))

	_, err = LoadFile(dir)
	assert.ErrorContains(t, err, "not a regular file")

	_, err = LoadFile(filepath.Join(dir, "missing.ch8"))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestInspect(t *testing.T) {
	c, _, _ := newTestConsole(t, []byte{0x12, 0x34})

	var opCode uint16
	c.Inspect(func(m *xip8.Machine) {
		b0, _ := m.Read(m.PC())
		b1, _ := m.Read(m.PC() + 1)
		opCode = uint16(b0)<<8 | uint16(b1)
	})
	assert.Equal(t, uint16(0x1234), opCode)
}
