package xip8

import (
	"errors"
	"fmt"
	"strings"
)

var ErrRomTooLarge = errors.New("the program does not fit into memory")
var ErrMemoryOutOfBounds = errors.New("memory access out of bounds")

const (
	MemorySize = 4096

	// ProgramStart is where programs are loaded and where the PC starts
	ProgramStart = 0x200
	// MaxProgramSize follows the historical interpreters, which keep the top
	// of memory as headroom for the stack and display buffers
	MaxProgramSize = 3215

	FontStart    = 0x000
	FontCharSize = 5
	fontEnd      = FontStart + len(font)
)

var font = [16 * FontCharSize]byte{
	// 0
	0xF0, 0x90, 0x90, 0x90, 0xF0,
	// 1
	0x20, 0x60, 0x20, 0x20, 0x70,
	// 2
	0xF0, 0x10, 0xF0, 0x80, 0xF0,
	// 3
	0xF0, 0x10, 0xF0, 0x10, 0xF0,
	// 4
	0x90, 0x90, 0xF0, 0x10, 0x10,
	// 5
	0xF0, 0x80, 0xF0, 0x10, 0xF0,
	// 6
	0xF0, 0x80, 0xF0, 0x90, 0xF0,
	// 7
	0xF0, 0x10, 0x20, 0x40, 0x40,
	// 8
	0xF0, 0x90, 0xF0, 0x90, 0xF0,
	// 9
	0xF0, 0x90, 0xF0, 0x10, 0xF0,
	// A
	0xF0, 0x90, 0xF0, 0x90, 0x90,
	// B
	0xE0, 0x90, 0xE0, 0x90, 0xE0,
	// C
	0xF0, 0x80, 0x80, 0x80, 0xF0,
	// D
	0xE0, 0x90, 0x90, 0x90, 0xE0,
	// E
	0xF0, 0x80, 0xF0, 0x80, 0xF0,
	// F
	0xF0, 0x80, 0xF0, 0x80, 0x80,
}

// Memory is the 4KB address space of the machine
type Memory [MemorySize]byte

// NewMemory creates a zeroed memory with the font table loaded at FontStart
func NewMemory() *Memory {
	m := Memory{}
	copy(m[FontStart:], font[:])

	return &m
}

func (mem Memory) Clone() *Memory {
	m := Memory{}
	copy(m[:], mem[:])

	return &m
}

// String dumps the interpreter area and the program area on separate lines
func (mem Memory) String() string {
	sb := strings.Builder{}

	sb.WriteString("[ ")
	for _, b := range mem[:ProgramStart] {
		sb.WriteString(fmt.Sprintf("%X ", b))
	}
	sb.WriteString("]\n")
	sb.WriteString("[ ")
	for _, b := range mem[ProgramStart:] {
		sb.WriteString(fmt.Sprintf("%X ", b))
	}
	sb.WriteString("]")

	return sb.String()
}

// Read returns the byte at addr
func (mem *Memory) Read(addr uint16) (byte, error) {
	if int(addr) >= MemorySize {
		return 0, fmt.Errorf("%w: read at %#04x", ErrMemoryOutOfBounds, addr)
	}

	return mem[addr], nil
}

// Write stores b at addr. The font table is read-only.
func (mem *Memory) Write(addr uint16, b byte) error {
	if int(addr) >= MemorySize {
		return fmt.Errorf("%w: write at %#04x", ErrMemoryOutOfBounds, addr)
	}
	if int(addr) < fontEnd {
		return fmt.Errorf("%w: write at %#04x into the font table", ErrMemoryOutOfBounds, addr)
	}

	mem[addr] = b

	return nil
}

// ReadWord reads the big-endian 16-bit word starting at addr
func (mem *Memory) ReadWord(addr uint16) (uint16, error) {
	if int(addr)+1 >= MemorySize {
		return 0, fmt.Errorf("%w: word read at %#04x", ErrMemoryOutOfBounds, addr)
	}

	var w uint16
	w |= uint16(mem[addr+0]) << 8
	w |= uint16(mem[addr+1]) << 0

	return w, nil
}

// LoadProgram copies the program at ProgramStart
func (mem *Memory) LoadProgram(program []byte) error {
	if len(program) > MaxProgramSize {
		return fmt.Errorf("%w: %d bytes, at most %d allowed", ErrRomTooLarge, len(program), MaxProgramSize)
	}

	copy(mem[ProgramStart:], program)

	return nil
}
