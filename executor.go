package xip8

import (
	"errors"
	"fmt"
)

// SysHandler interpretes the machine code routines called with 0NNN.
// Modern interpreters ignore them, so the default Executor does too.
type SysHandler func(addr uint16, m *Machine) error

// Executor applies opcodes to a Machine according to the configured quirks
type Executor struct {
	Quirks     Quirks
	SysHandler SysHandler
}

func NewExecutor(quirks Quirks) *Executor {
	return &Executor{
		Quirks:     quirks,
		SysHandler: nil,
	}
}

// Execute runs a single opcode against the machine
func Execute(opCode uint16, quirks Quirks, m *Machine) error {
	return NewExecutor(quirks).Execute(opCode, m)
}

// Cycle fetches the next opcode and executes it
func Cycle(m *Machine, quirks Quirks) error {
	return NewExecutor(quirks).Cycle(m)
}

// Cycle fetches the opcode at the PC and executes it.
// Unknown opcodes report the address they were fetched from.
func (e *Executor) Cycle(m *Machine) error {
	pc := m.PC()
	opCode, err := m.Fetch()
	if err != nil {
		return err
	}

	err = e.Execute(opCode, m)

	var unknown ErrOpCodeUnknown
	if errors.As(err, &unknown) {
		unknown.Pc = pc
		return unknown
	}

	return err
}

// Execute decodes the opcode and applies it to the machine
func (e *Executor) Execute(opCode uint16, m *Machine) error {
	ins, err := Decode(opCode)
	if err != nil {
		if e.Quirks.Unknown == UnknownIgnore {
			return nil
		}
		return ErrOpCodeUnknown{
			OpCode: opCode,
			Pc:     m.PC(),
		}
	}

	return e.Apply(ins, m)
}

// execution carries the first error raised by a Machine accessor so that
// instruction bodies can be written as straight-line code
type execution struct {
	m   *Machine
	err error
}

func (ex *execution) v(x byte) byte {
	if ex.err != nil {
		return 0
	}
	b, err := ex.m.V(x)
	ex.err = err

	return b
}

func (ex *execution) setV(x, b byte) {
	if ex.err != nil {
		return
	}
	ex.err = ex.m.SetV(x, b)
}

func (ex *execution) jump(addr uint16) {
	if ex.err != nil {
		return
	}
	ex.err = ex.m.SetPC(addr)
}

func (ex *execution) skipIf(cond bool) {
	if cond {
		ex.jump(ex.m.PC() + 2)
	}
}

// at returns base+offset, failing when it is past the end of memory
func (ex *execution) at(base uint16, offset int) uint16 {
	if ex.err != nil {
		return 0
	}
	addr := int(base) + offset
	if addr >= MemorySize {
		ex.err = fmt.Errorf("%w: I=%#04x offset=%d", ErrMemoryOutOfBounds, base, offset)
		return 0
	}

	return uint16(addr)
}

func (ex *execution) read(addr uint16) byte {
	if ex.err != nil {
		return 0
	}
	b, err := ex.m.Read(addr)
	ex.err = err

	return b
}

func (ex *execution) write(addr uint16, b byte) {
	if ex.err != nil {
		return
	}
	ex.err = ex.m.Write(addr, b)
}

func (ex *execution) pixel(x, y int) bool {
	if ex.err != nil {
		return false
	}
	on, err := ex.m.Pixel(x, y)
	ex.err = err

	return on
}

func (ex *execution) setPixel(x, y int, on bool) {
	if ex.err != nil {
		return
	}
	ex.err = ex.m.SetPixel(x, y, on)
}

func (ex *execution) key(k byte) bool {
	if ex.err != nil {
		return false
	}
	down, err := ex.m.Key(k)
	ex.err = err

	return down
}

func bool2byte(b bool) byte {
	if b {
		return 1
	}

	return 0
}
