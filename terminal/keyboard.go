package terminal

import (
	"context"
	"errors"
	"io"
	"time"

	xip8 "github.com/guslan/xip8vm"
)

// ErrQuit is returned by Keyboard.Run when the user ends the session
var ErrQuit = errors.New("session ended by the user")

const (
	ctrlC = 0x03

	// DefaultHold is how long a key stays down after its character arrives.
	// Terminals only report key repeats, never releases.
	DefaultHold = 150 * time.Millisecond
)

// KeySetter receives the keypad changes, console.Console implements it
type KeySetter interface {
	SetKey(k byte, pressed bool) error
}

// Keyboard turns the characters typed in a terminal into keypad presses
type Keyboard struct {
	in     io.Reader
	keys   KeySetter
	layout xip8.KeyboardLayout

	Hold time.Duration

	now     func() time.Time
	pressed map[byte]time.Time
}

func NewKeyboard(in io.Reader, keys KeySetter) *Keyboard {
	return &Keyboard{
		in:      in,
		keys:    keys,
		layout:  xip8.DefaultKeyboardLayout,
		Hold:    DefaultHold,
		now:     time.Now,
		pressed: make(map[byte]time.Time),
	}
}

// Run reads the input until the context ends, the input is exhausted or the
// user types ESC or Ctrl-C, in which case ErrQuit is returned.
// Reads are expected to time out regularly so that held keys get released.
func (kb *Keyboard) Run(ctx context.Context) error {
	defer kb.releaseAll()

	buff := make([]byte, 16)
	for {
		if ctx.Err() != nil {
			return nil
		}

		n, err := kb.in.Read(buff)
		if quit, feedErr := kb.feed(buff[:n]); quit || feedErr != nil {
			if feedErr != nil {
				return feedErr
			}
			return ErrQuit
		}

		if err := kb.releaseExpired(); err != nil {
			return err
		}

		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// feed presses the keys of the characters, reporting whether the user quit
func (kb *Keyboard) feed(input []byte) (bool, error) {
	for _, b := range input {
		if b == ESC || b == ctrlC {
			return true, nil
		}

		k, ok := kb.layout.Lookup(rune(b))
		if !ok {
			continue
		}

		if err := kb.keys.SetKey(k, true); err != nil {
			return false, err
		}
		kb.pressed[k] = kb.now().Add(kb.Hold)
	}

	return false, nil
}

func (kb *Keyboard) releaseExpired() error {
	now := kb.now()
	for k, until := range kb.pressed {
		if now.Before(until) {
			continue
		}

		if err := kb.keys.SetKey(k, false); err != nil {
			return err
		}
		delete(kb.pressed, k)
	}

	return nil
}

func (kb *Keyboard) releaseAll() {
	for k := range kb.pressed {
		_ = kb.keys.SetKey(k, false)
		delete(kb.pressed, k)
	}
}
