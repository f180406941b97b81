package terminal

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	xip8 "github.com/guslan/xip8vm"
	"github.com/pkg/term"
	"golang.org/x/sys/unix"
)

const (
	// MinColumns fits a row of two characters per pixel followed by the border
	MinColumns = 2*xip8.DisplayWidth + 2
	// MinRows fits the screen and the cursor line below it
	MinRows = xip8.DisplayHeight + 1

	readTimeout = 20 * time.Millisecond
)

var ErrTerminalTooSmall = errors.New("the terminal is too small")

// TTY is a terminal opened in raw mode.
// Reads time out after a short delay and return no data instead of io.EOF.
type TTY struct {
	t *term.Term
}

func OpenTTY(path string) (*TTY, error) {
	t, err := term.Open(path, term.RawMode)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}

	if err := t.SetReadTimeout(readTimeout); err != nil {
		_ = t.Restore()
		_ = t.Close()
		return nil, fmt.Errorf("setting the read timeout: %w", err)
	}

	return &TTY{t: t}, nil
}

func (tty *TTY) Read(p []byte) (int, error) {
	n, err := tty.t.Read(p)
	if n == 0 && errors.Is(err, io.EOF) {
		return 0, nil
	}

	return n, err
}

func (tty *TTY) Write(p []byte) (int, error) {
	return tty.t.Write(p)
}

// Close restores the terminal to the mode it had before OpenTTY
func (tty *TTY) Close() error {
	if err := tty.t.Restore(); err != nil {
		_ = tty.t.Close()
		return err
	}

	return tty.t.Close()
}

// CheckGeometry fails when the terminal behind f can not fit the screen
func CheckGeometry(f *os.File) error {
	ws, err := unix.IoctlGetWinsize(int(f.Fd()), unix.TIOCGWINSZ)
	if err != nil {
		return fmt.Errorf("reading the terminal size: %w", err)
	}

	return checkSize(int(ws.Col), int(ws.Row))
}

func checkSize(cols, rows int) error {
	if cols < MinColumns || rows < MinRows {
		return fmt.Errorf("%w: %dx%d, at least %dx%d needed", ErrTerminalTooSmall, cols, rows, MinColumns, MinRows)
	}

	return nil
}
