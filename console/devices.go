package console

import xip8 "github.com/guslan/xip8vm"

// Display abstraction for a display
type Display interface {
	// Boot initializes the component
	Boot() error
	// Render draws a copy of the screen
	Render(xip8.Screen) error
}

// Buzzer abstraction for the sound device.
// Play is called when the sound timer becomes active and Stop when it runs out.
type Buzzer interface {
	// Boot initializes the component
	Boot() error
	Play()
	Stop()
}

// DummyDisplay is a display that keeps the last rendered screen
type DummyDisplay struct {
	Renders int
	Last    xip8.Screen
}

func NewDummyDisplay() *DummyDisplay {
	return &DummyDisplay{
		Renders: 0,
		Last:    nil,
	}
}

// Boot implements Display.
func (d *DummyDisplay) Boot() error {
	return nil
}

// Render implements Display.
func (d *DummyDisplay) Render(screen xip8.Screen) error {
	d.Renders++
	d.Last = screen

	return nil
}

// DummyBuzzer is a buzzer that only records its state
type DummyBuzzer struct {
	IsPlaying bool
	Plays     int
}

func NewDummyBuzzer() *DummyBuzzer {
	return &DummyBuzzer{
		IsPlaying: false,
		Plays:     0,
	}
}

// Boot implements Buzzer.
func (b *DummyBuzzer) Boot() error {
	return nil
}

// Play implements Buzzer.
func (b *DummyBuzzer) Play() {
	b.IsPlaying = true
	b.Plays++
}

// Stop implements Buzzer.
func (b *DummyBuzzer) Stop() {
	b.IsPlaying = false
}
