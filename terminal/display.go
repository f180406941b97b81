// Package terminal runs the console inside an ANSI terminal
package terminal

import (
	"io"

	xip8 "github.com/guslan/xip8vm"
)

const ESC = 0x1B

// Display draws the screen with two characters per pixel
type Display struct {
	terminal        io.Writer
	OnChar, OffChar string
}

func NewDisplay(out io.Writer) *Display {
	return &Display{
		terminal: out,
		OnChar:   "##",
		OffChar:  "  ",
	}
}

// Boot implements console.Display.
func (disp *Display) Boot() error {
	_, err := disp.terminal.Write([]byte{
		// Move cursor do start
		ESC, '[', '1', 'H',
		// clear the terminal
		ESC, '[', '0', 'J',
	})

	return err
}

// Render implements console.Display.
func (disp *Display) Render(screen xip8.Screen) error {
	buff := make([]byte, 0, xip8.DisplayWidth*xip8.DisplayHeight*len(disp.OnChar)+2*xip8.DisplayHeight+4)
	buff = append(buff, ESC, '[', '1', 'H')
	for i, b := range screen {
		for bit := 0; bit < 8; bit++ {
			if b&(0x80>>bit) > 0 {
				buff = append(buff, disp.OnChar...)
			} else {
				buff = append(buff, disp.OffChar...)
			}
		}

		// rows end with a border, raw mode needs the carriage return
		if ((i+1)*8)%xip8.DisplayWidth == 0 {
			buff = append(buff, '|', '\r', '\n')
		}
	}

	_, err := disp.terminal.Write(buff)
	return err
}

// Bell is a buzzer that rings the terminal bell
type Bell struct {
	terminal io.Writer
}

func NewBell(out io.Writer) *Bell {
	return &Bell{terminal: out}
}

// Boot implements console.Buzzer.
func (b *Bell) Boot() error {
	return nil
}

// Play implements console.Buzzer.
func (b *Bell) Play() {
	_, _ = b.terminal.Write([]byte{'\a'})
}

// Stop implements console.Buzzer. The bell stops on its own.
func (b *Bell) Stop() {
}
