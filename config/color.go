package config

import (
	"encoding/hex"
	"fmt"
	"image/color"
	"strings"
)

// Color in 8-bit RGBA. Frontends convert it to their own color type.
type Color struct {
	R, G, B, A uint8
}

// ParseColor reads #RRGGBB or #RRGGBBAA. The leading # is optional.
func ParseColor(s string) (Color, error) {
	digits := strings.TrimPrefix(s, "#")
	if len(digits) != 6 && len(digits) != 8 {
		return Color{}, fmt.Errorf("invalid color %q, expected #RRGGBB or #RRGGBBAA", s)
	}

	b, err := hex.DecodeString(digits)
	if err != nil {
		return Color{}, fmt.Errorf("invalid color %q: %w", s, err)
	}

	c := Color{R: b[0], G: b[1], B: b[2], A: 255}
	if len(b) == 4 {
		c.A = b[3]
	}

	return c, nil
}

func (c Color) String() string {
	if c.A == 255 {
		return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
	}

	return fmt.Sprintf("#%02X%02X%02X%02X", c.R, c.G, c.B, c.A)
}

// ToRGBA converts the color for the image/color based APIs
func (c Color) ToRGBA() color.RGBA {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: c.A}
}

func (c Color) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *Color) UnmarshalText(text []byte) error {
	parsed, err := ParseColor(string(text))
	if err != nil {
		return err
	}
	*c = parsed

	return nil
}
