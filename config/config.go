// Package config handles the options shared by the frontends and their setup
package config

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"strings"

	xip8 "github.com/guslan/xip8vm"
	"github.com/guslan/xip8vm/console"
	"github.com/retroenv/retrogolib/log"
)

var ErrSpeedOutOfRange = errors.New("speed out of range")

// Options of a frontend
type Options struct {
	Quirks xip8.Quirks
	// Speed in cycles per second
	Speed uint

	// Colors of the lit pixels and of the background
	Foreground Color
	Background Color

	Debug bool
	Quiet bool
}

// Default returns the options used when no flag is given
func Default() Options {
	return Options{
		Quirks:     xip8.DefaultQuirks,
		Speed:      console.DefaultSpeed,
		Foreground: Color{R: 253, G: 249, B: 0, A: 255},
		Background: Color{R: 255, G: 203, B: 0, A: 255},
		Debug:      false,
		Quiet:      false,
	}
}

var presets = map[string]xip8.Quirks{
	"modern": xip8.ModernQuirks,
	"cosmac": xip8.CosmacQuirks,
}

// Preset returns the quirks of the named interpreter family
func Preset(name string) (xip8.Quirks, error) {
	q, ok := presets[strings.ToLower(name)]
	if !ok {
		return xip8.Quirks{}, fmt.Errorf("unknown quirks preset %q, expected modern or cosmac", name)
	}

	return q, nil
}

// Register binds the options to the flag set.
// Flags are applied in command-line order, so single quirk flags placed after
// -quirks adjust the preset.
func (o *Options) Register(flags *flag.FlagSet) {
	flags.Func("quirks", "quirks preset: modern or cosmac (default modern)", func(name string) error {
		q, err := Preset(name)
		if err != nil {
			return err
		}
		o.Quirks = q

		return nil
	})
	flags.TextVar(&o.Quirks.Shift, "shift", o.Quirks.Shift, "source of 8XY6/8XYE: modern-X, legacy-Y or shift-by-count")
	flags.TextVar(&o.Quirks.Index, "index", o.Quirks.Index, "FX55/FX65 increment I: on or off")
	flags.TextVar(&o.Quirks.Draw, "draw", o.Quirks.Draw, "sprites past the screen edge: wrap or clip")
	flags.TextVar(&o.Quirks.Unknown, "unknown", o.Quirks.Unknown, "unknown opcodes: error or ignore")
	flags.BoolVar(&o.Quirks.VFReset, "vfreset", o.Quirks.VFReset, "8XY1/8XY2/8XY3 reset VF")
	flags.BoolVar(&o.Quirks.JumpWithVX, "jumpvx", o.Quirks.JumpWithVX, "BXNN jumps to VX + XNN")

	flags.UintVar(&o.Speed, "speed", o.Speed, fmt.Sprintf("speed of the CPU in Hz, in the range [%d, %d]", console.MinSpeed, console.MaxSpeed))
	flags.TextVar(&o.Foreground, "fg", o.Foreground, "color of the lit pixels, #RRGGBB or #RRGGBBAA")
	flags.TextVar(&o.Background, "bg", o.Background, "color of the background, #RRGGBB or #RRGGBBAA")

	flags.BoolVar(&o.Debug, "debug", o.Debug, "enable debugging options for extended logging")
	flags.BoolVar(&o.Quiet, "q", o.Quiet, "perform operations quietly")
}

// Validate checks the values that flags can not restrict
func (o Options) Validate() error {
	if o.Speed < console.MinSpeed || o.Speed > console.MaxSpeed {
		return fmt.Errorf("%w: %d Hz, expected [%d, %d]", ErrSpeedOutOfRange, o.Speed, console.MinSpeed, console.MaxSpeed)
	}

	return nil
}

// Logger creates a logger with appropriate settings
func (o Options) Logger() *log.Logger {
	cfg := log.DefaultConfig()
	if o.Debug {
		cfg.Level = log.DebugLevel
	} else if o.Quiet {
		cfg.Level = log.ErrorLevel
	}

	return log.NewWithConfig(cfg)
}

// SlogLevel is the level of the log/slog handlers of the web and gui frontends
func (o Options) SlogLevel() slog.Level {
	switch {
	case o.Debug:
		return slog.LevelDebug
	case o.Quiet:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
