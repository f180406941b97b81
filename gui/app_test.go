package gui

import (
	"testing"

	xip8 "github.com/guslan/xip8vm"
	"github.com/guslan/xip8vm/console"
	"github.com/retroenv/retrogolib/assert"
)

func TestSpeedFactor(t *testing.T) {
	assert.Equal(t, float32(0), MinSpeed)
	assert.Equal(t, console.MinSpeed, speedFactorToHz(MinSpeed))
	assert.Equal(t, console.MaxSpeed, speedFactorToHz(MaxSpeed))
	assert.Equal(t, console.DefaultSpeed, speedFactorToHz(hzToSpeedFactor(console.DefaultSpeed)))
}

func TestKeyboardLookupMap(t *testing.T) {
	m := keyboardLookupMap(xip8.DefaultKeyboardLayout)
	assert.Len(t, m, xip8.KeyCount)

	// raylib key codes are the uppercase characters
	assert.Equal(t, byte(0x1), m['1'])
	assert.Equal(t, byte(0x4), m['Q'])
	assert.Equal(t, byte(0xF), m['V'])
	_, ok := m['q']
	assert.False(t, ok)
}

func TestStatusText(t *testing.T) {
	assert.Equal(t, "Stopped", statusText(false, nil))
	assert.Equal(t, "Running", statusText(true, nil))
	assert.Equal(t, "Halted", statusText(true, xip8.ErrStackOverflow))
}

func TestRenderUnpacksScreen(t *testing.T) {
	m := xip8.NewMachine(nil)
	assert.NoError(t, m.SetPixel(3, 1, true))

	app := &App{}
	assert.NoError(t, app.Render(m.Display()))
	assert.Len(t, app.screen, xip8.DisplayWidth*xip8.DisplayHeight)
	assert.Equal(t, byte(1), app.screen[xip8.DisplayWidth+3])
	assert.Equal(t, byte(0), app.screen[3])
}
