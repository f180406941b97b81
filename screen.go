package xip8

const (
	DisplayWidth  = 64
	DisplayHeight = 32

	screenSizeInBytes = DisplayWidth * DisplayHeight / 8
)

// Screen is a packed 1bpp representation of the display.
// Rows are stored top to bottom, and the most significant bit of each byte is
// the leftmost pixel.
type Screen []byte

func newScreen() Screen {
	return make(Screen, screenSizeInBytes)
}

func (s Screen) Clone() Screen {
	c := newScreen()
	copy(c, s)

	return c
}

// Pixel reports whether the pixel at x, y is on.
// Coordinates outside the display are off.
func (s Screen) Pixel(x, y int) bool {
	if x < 0 || x >= DisplayWidth || y < 0 || y >= DisplayHeight {
		return false
	}
	t := y*DisplayWidth + x

	return s[t/8]&(0x80>>(t%8)) > 0
}

func (s Screen) set(x, y int, on bool) {
	t := y*DisplayWidth + x
	if on {
		s[t/8] |= 0x80 >> (t % 8)
	} else {
		s[t/8] &^= 0x80 >> (t % 8)
	}
}

func (s Screen) clear() {
	for i := range s {
		s[i] = 0
	}
}

// Unpack returns one byte per pixel, 1 for on and 0 for off
func (s Screen) Unpack() []byte {
	px := make([]byte, DisplayWidth*DisplayHeight)
	for i, b := range s {
		for bit := 0; bit < 8; bit++ {
			px[i*8+bit] = (b >> (7 - bit)) & 0b1
		}
	}

	return px
}
