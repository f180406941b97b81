package xip8

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
)

// ErrOutOfRange is returned when a register or key index is not a nibble
var ErrOutOfRange = errors.New("index out of range")

const RegisterCount = 16

// VF is the carry, borrow and collision flag register
const VF = 0xF

// Machine holds the complete architectural state of a CHIP-8 program.
// It has no knowledge of opcodes; the Executor drives it through its accessors.
//
// A Machine is not safe for concurrent use.
type Machine struct {
	memory *Memory
	// V 8-bit registers
	v [RegisterCount]byte
	// I 16-bit register (12-bit usable)
	i uint16
	// Program counter
	pc    uint16
	stack Stack
	// Delay timer register
	dt byte
	// Sound timer register
	st byte

	screen        Screen
	isScreenDirty bool
	keys          KeyboardState

	random io.Reader
}

// State is a copy of the registers of a Machine
type State struct {
	V     [RegisterCount]byte
	I     uint16
	Pc    uint16
	Sp    byte
	Stack [StackSize]uint16
	Dt    byte
	St    byte
}

// NewMachine creates a machine with the font loaded and the PC at ProgramStart.
// random is the source of CXNN; crypto/rand is used when it is nil.
func NewMachine(random io.Reader) *Machine {
	if random == nil {
		random = rand.Reader
	}

	m := &Machine{random: random}
	m.Reset()

	return m
}

// Reset brings the machine back to its power-on state, program memory included
func (m *Machine) Reset() {
	m.memory = NewMemory()
	m.v = [RegisterCount]byte{}
	m.i = 0
	m.pc = ProgramStart
	m.stack.reset()
	m.dt = 0
	m.st = 0
	m.screen = newScreen()
	m.isScreenDirty = true
	m.keys = KeyboardState{}
}

// LoadProgram resets the machine and loads the program at ProgramStart
func (m *Machine) LoadProgram(program []byte) error {
	if len(program) > MaxProgramSize {
		return fmt.Errorf("%w: %d bytes, at most %d allowed", ErrRomTooLarge, len(program), MaxProgramSize)
	}
	m.Reset()

	return m.memory.LoadProgram(program)
}

// Fetch reads the opcode at the PC and moves the PC to the next instruction
func (m *Machine) Fetch() (uint16, error) {
	opCode, err := m.memory.ReadWord(m.pc)
	if err != nil {
		return 0, fmt.Errorf("fetch at PC=%#04x: %w", m.pc, err)
	}
	m.pc += 2

	return opCode, nil
}

func (m *Machine) V(x byte) (byte, error) {
	if x >= RegisterCount {
		return 0, fmt.Errorf("%w: register V%d", ErrOutOfRange, x)
	}

	return m.v[x], nil
}

func (m *Machine) SetV(x, value byte) error {
	if x >= RegisterCount {
		return fmt.Errorf("%w: register V%d", ErrOutOfRange, x)
	}
	m.v[x] = value

	return nil
}

func (m *Machine) I() uint16 {
	return m.i
}

func (m *Machine) SetI(addr uint16) {
	m.i = addr
}

func (m *Machine) PC() uint16 {
	return m.pc
}

// SetPC moves the PC. Addresses past the end of memory are rejected.
func (m *Machine) SetPC(addr uint16) error {
	if int(addr) >= MemorySize {
		return fmt.Errorf("%w: PC=%#04x", ErrMemoryOutOfBounds, addr)
	}
	m.pc = addr

	return nil
}

func (m *Machine) Push(addr uint16) error {
	return m.stack.Push(addr)
}

func (m *Machine) Pop() (uint16, error) {
	return m.stack.Pop()
}

func (m *Machine) DelayTimer() byte {
	return m.dt
}

func (m *Machine) SetDelayTimer(v byte) {
	m.dt = v
}

func (m *Machine) SoundTimer() byte {
	return m.st
}

func (m *Machine) SetSoundTimer(v byte) {
	m.st = v
}

func (m *Machine) IsSoundTimerActive() bool {
	return m.st > 0
}

func (m *Machine) IsDelayTimerActive() bool {
	return m.dt > 0
}

// TickTimers decrements both timers, stopping at zero.
// The driver calls it at 60 Hz.
func (m *Machine) TickTimers() {
	if m.dt > 0 {
		m.dt--
	}
	if m.st > 0 {
		m.st--
	}
}

func (m *Machine) Read(addr uint16) (byte, error) {
	return m.memory.Read(addr)
}

func (m *Machine) Write(addr uint16, b byte) error {
	return m.memory.Write(addr, b)
}

// Memory returns a copy of the memory
func (m *Machine) Memory() *Memory {
	return m.memory.Clone()
}

func (m *Machine) Pixel(x, y int) (bool, error) {
	if x < 0 || x >= DisplayWidth || y < 0 || y >= DisplayHeight {
		return false, fmt.Errorf("%w: pixel (%d, %d)", ErrOutOfRange, x, y)
	}

	return m.screen.Pixel(x, y), nil
}

func (m *Machine) SetPixel(x, y int, on bool) error {
	if x < 0 || x >= DisplayWidth || y < 0 || y >= DisplayHeight {
		return fmt.Errorf("%w: pixel (%d, %d)", ErrOutOfRange, x, y)
	}
	m.screen.set(x, y, on)
	m.isScreenDirty = true

	return nil
}

func (m *Machine) ClearDisplay() {
	m.screen.clear()
	m.isScreenDirty = true
}

// Display returns a copy of the screen
func (m *Machine) Display() Screen {
	return m.screen.Clone()
}

// DisplayChanged reports whether the screen changed since the last call
func (m *Machine) DisplayChanged() bool {
	dirty := m.isScreenDirty
	m.isScreenDirty = false

	return dirty
}

func (m *Machine) Key(k byte) (bool, error) {
	if k >= KeyCount {
		return false, fmt.Errorf("%w: key %#x", ErrOutOfRange, k)
	}

	return m.keys[k], nil
}

func (m *Machine) SetKey(k byte, pressed bool) error {
	if k >= KeyCount {
		return fmt.Errorf("%w: key %#x", ErrOutOfRange, k)
	}
	m.keys[k] = pressed

	return nil
}

func (m *Machine) Keys() KeyboardState {
	return m.keys
}

// RandomByte reads one byte from the random source
func (m *Machine) RandomByte() (byte, error) {
	buff := [1]byte{}
	if _, err := io.ReadFull(m.random, buff[:]); err != nil {
		return 0, fmt.Errorf("reading random byte: %w", err)
	}

	return buff[0], nil
}

// State returns a copy of the registers, the stack and the timers
func (m *Machine) State() State {
	return State{
		V:     m.v,
		I:     m.i,
		Pc:    m.pc,
		Sp:    byte(m.stack.sp),
		Stack: m.stack.entries,
		Dt:    m.dt,
		St:    m.st,
	}
}
