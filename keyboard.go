package xip8

const KeyCount = 16

// KeyboardState holds whether each key of the hex keypad is down
type KeyboardState [KeyCount]bool

// KeyboardLayout maps a character of a host keyboard to a keypad key
type KeyboardLayout map[rune]byte

// DefaultKeyboardLayout maps the usual 4x4 block of a QWERTY keyboard
//
//	1 2 3 C      1 2 3 4
//	4 5 6 D  ->  Q W E R
//	7 8 9 E      A S D F
//	A 0 B F      Z X C V
var DefaultKeyboardLayout = KeyboardLayout{
	'1': 0x1, '2': 0x2, '3': 0x3, '4': 0xC,
	'q': 0x4, 'w': 0x5, 'e': 0x6, 'r': 0xD,
	'a': 0x7, 's': 0x8, 'd': 0x9, 'f': 0xE,
	'z': 0xA, 'x': 0x0, 'c': 0xB, 'v': 0xF,
}

// Lookup returns the key for r, ignoring letter case
func (l KeyboardLayout) Lookup(r rune) (byte, bool) {
	if r >= 'A' && r <= 'Z' {
		r += 'a' - 'A'
	}
	k, ok := l[r]

	return k, ok
}

// FirstPressed returns the lowest key that is down
func (ks KeyboardState) FirstPressed() (byte, bool) {
	for k, down := range ks {
		if down {
			return byte(k), true
		}
	}

	return 0, false
}
