package xip8_test

import (
	"errors"
	"testing"

	xip8 "github.com/guslan/xip8vm"
	"github.com/retroenv/retrogolib/assert"
)

func TestNewMachine(t *testing.T) {
	m := newMachine()

	assert.Equal(t, uint16(xip8.ProgramStart), m.PC())
	assert.Equal(t, uint16(0), m.I())
	assert.Equal(t, byte(0), m.State().Sp)
	assert.True(t, m.DisplayChanged())
	assert.False(t, m.DisplayChanged())

	mem := m.Memory()
	assert.Equal(t, byte(0xF0), mem[xip8.FontStart])
	assert.Equal(t, byte(0x80), mem[xip8.FontStart+16*xip8.FontCharSize-1])
	assert.Equal(t, byte(0), mem[xip8.FontStart+16*xip8.FontCharSize])
}

func TestFontIsWriteProtected(t *testing.T) {
	m := newMachine()

	for _, addr := range []uint16{0x000, 0x020, 0x04F} {
		err := m.Write(addr, 0xAA)
		assert.True(t, errors.Is(err, xip8.ErrMemoryOutOfBounds))
	}

	assert.NoError(t, m.Write(0x050, 0xAA))
	b, err := m.Read(0x050)
	assert.NoError(t, err)
	assert.Equal(t, byte(0xAA), b)
}

func TestMemoryBounds(t *testing.T) {
	m := newMachine()

	_, err := m.Read(xip8.MemorySize)
	assert.True(t, errors.Is(err, xip8.ErrMemoryOutOfBounds))

	err = m.Write(xip8.MemorySize, 1)
	assert.True(t, errors.Is(err, xip8.ErrMemoryOutOfBounds))

	err = m.SetPC(xip8.MemorySize)
	assert.True(t, errors.Is(err, xip8.ErrMemoryOutOfBounds))

	assert.NoError(t, m.SetPC(xip8.MemorySize-2))
	_, err = m.Fetch()
	assert.NoError(t, err)

	assert.NoError(t, m.SetPC(xip8.MemorySize-1))
	_, err = m.Fetch()
	assert.True(t, errors.Is(err, xip8.ErrMemoryOutOfBounds))
}

func TestMemoryCopyIsDetached(t *testing.T) {
	m := newMachine()

	mem := m.Memory()
	mem[0x300] = 0x42

	b, err := m.Read(0x300)
	assert.NoError(t, err)
	assert.Equal(t, byte(0), b)
}

func TestFetch(t *testing.T) {
	m := newMachine()
	assert.NoError(t, m.LoadProgram([]byte{0xAB, 0xCD, 0x12, 0x34}))

	opCode, err := m.Fetch()
	assert.NoError(t, err)
	assert.Equal(t, uint16(0xABCD), opCode)
	assert.Equal(t, uint16(0x202), m.PC())

	opCode, err = m.Fetch()
	assert.NoError(t, err)
	assert.Equal(t, uint16(0x1234), opCode)
}

func TestLoadProgramResets(t *testing.T) {
	m := newMachine()
	assert.NoError(t, m.SetV(0x3, 9))
	m.SetI(0x123)
	m.SetDelayTimer(10)
	assert.NoError(t, m.SetPixel(1, 1, true))

	assert.NoError(t, m.LoadProgram([]byte{0x00, 0xE0}))

	state := m.State()
	assert.Equal(t, byte(0), state.V[0x3])
	assert.Equal(t, uint16(0), state.I)
	assert.Equal(t, byte(0), state.Dt)
	assert.Equal(t, uint16(xip8.ProgramStart), state.Pc)

	on, err := m.Pixel(1, 1)
	assert.NoError(t, err)
	assert.False(t, on)
}

func TestRegisterBounds(t *testing.T) {
	m := newMachine()

	_, err := m.V(xip8.RegisterCount)
	assert.True(t, errors.Is(err, xip8.ErrOutOfRange))
	assert.True(t, errors.Is(m.SetV(xip8.RegisterCount, 1), xip8.ErrOutOfRange))

	_, err = m.Key(xip8.KeyCount)
	assert.True(t, errors.Is(err, xip8.ErrOutOfRange))
	assert.True(t, errors.Is(m.SetKey(xip8.KeyCount, true), xip8.ErrOutOfRange))

	_, err = m.Pixel(xip8.DisplayWidth, 0)
	assert.True(t, errors.Is(err, xip8.ErrOutOfRange))
	assert.True(t, errors.Is(m.SetPixel(0, xip8.DisplayHeight, true), xip8.ErrOutOfRange))
	assert.True(t, errors.Is(m.SetPixel(-1, 0, true), xip8.ErrOutOfRange))
}

func TestTickTimers(t *testing.T) {
	m := newMachine()
	m.SetDelayTimer(2)
	m.SetSoundTimer(1)
	assert.True(t, m.IsDelayTimerActive())
	assert.True(t, m.IsSoundTimerActive())

	m.TickTimers()
	assert.Equal(t, byte(1), m.DelayTimer())
	assert.Equal(t, byte(0), m.SoundTimer())
	assert.False(t, m.IsSoundTimerActive())

	m.TickTimers()
	m.TickTimers()
	assert.Equal(t, byte(0), m.DelayTimer())
	assert.Equal(t, byte(0), m.SoundTimer())
	assert.False(t, m.IsDelayTimerActive())
}

func TestDisplayChanged(t *testing.T) {
	m := newMachine()
	m.DisplayChanged()

	assert.False(t, m.DisplayChanged())
	assert.NoError(t, m.SetPixel(63, 31, true))
	assert.True(t, m.DisplayChanged())
	assert.False(t, m.DisplayChanged())

	m.ClearDisplay()
	assert.True(t, m.DisplayChanged())
}

func TestScreenPacking(t *testing.T) {
	m := newMachine()
	assert.NoError(t, m.SetPixel(0, 0, true))
	assert.NoError(t, m.SetPixel(9, 0, true))
	assert.NoError(t, m.SetPixel(63, 31, true))

	screen := m.Display()
	assert.Equal(t, byte(0x80), screen[0])
	assert.Equal(t, byte(0x40), screen[1])
	assert.Equal(t, byte(0x01), screen[len(screen)-1])

	px := screen.Unpack()
	assert.Len(t, px, xip8.DisplayWidth*xip8.DisplayHeight)
	assert.Equal(t, byte(1), px[0])
	assert.Equal(t, byte(1), px[9])
	assert.Equal(t, byte(0), px[10])
	assert.Equal(t, byte(1), px[len(px)-1])

	assert.True(t, screen.Pixel(9, 0))
	assert.False(t, screen.Pixel(64, 0))
}

func TestStack(t *testing.T) {
	var s xip8.Stack

	_, err := s.Pop()
	assert.True(t, errors.Is(err, xip8.ErrStackUnderflow))

	for i := 0; i < xip8.StackSize; i++ {
		assert.NoError(t, s.Push(uint16(0x200+i*2)))
	}
	assert.Equal(t, xip8.StackSize, s.Depth())
	assert.True(t, errors.Is(s.Push(0x300), xip8.ErrStackOverflow))

	addr, err := s.Pop()
	assert.NoError(t, err)
	assert.Equal(t, uint16(0x200+(xip8.StackSize-1)*2), addr)
	assert.Equal(t, xip8.StackSize-1, s.Depth())
}

func TestKeyboard(t *testing.T) {
	k, ok := xip8.DefaultKeyboardLayout.Lookup('V')
	assert.True(t, ok)
	assert.Equal(t, byte(0xF), k)

	k, ok = xip8.DefaultKeyboardLayout.Lookup('x')
	assert.True(t, ok)
	assert.Equal(t, byte(0x0), k)

	_, ok = xip8.DefaultKeyboardLayout.Lookup('p')
	assert.False(t, ok)

	var ks xip8.KeyboardState
	_, ok = ks.FirstPressed()
	assert.False(t, ok)

	ks[0xC] = true
	ks[0x5] = true
	k, ok = ks.FirstPressed()
	assert.True(t, ok)
	assert.Equal(t, byte(0x5), k)
}

func TestRandomByte(t *testing.T) {
	m := newMachine()

	b, err := m.RandomByte()
	assert.NoError(t, err)
	assert.Equal(t, byte(0xA5), b)

	// crypto/rand is used by default
	m = xip8.NewMachine(nil)
	_, err = m.RandomByte()
	assert.NoError(t, err)
}

func TestDecode(t *testing.T) {
	tests := []struct {
		opCode uint16
		op     xip8.Op
	}{
		{0x0123, xip8.OpSys},
		{0x00E0, xip8.OpCls},
		{0x00EE, xip8.OpRet},
		{0x1234, xip8.OpJp},
		{0x2345, xip8.OpCall},
		{0x3A12, xip8.OpSeByte},
		{0x4A12, xip8.OpSneByte},
		{0x5AB0, xip8.OpSeReg},
		{0x6A12, xip8.OpLdByte},
		{0x7A12, xip8.OpAddByte},
		{0x8AB0, xip8.OpLdReg},
		{0x8AB1, xip8.OpOr},
		{0x8AB2, xip8.OpAnd},
		{0x8AB3, xip8.OpXor},
		{0x8AB4, xip8.OpAddReg},
		{0x8AB5, xip8.OpSub},
		{0x8AB6, xip8.OpShr},
		{0x8AB7, xip8.OpSubn},
		{0x8ABE, xip8.OpShl},
		{0x9AB0, xip8.OpSneReg},
		{0xA123, xip8.OpLdI},
		{0xB123, xip8.OpJpV0},
		{0xCA12, xip8.OpRnd},
		{0xDAB5, xip8.OpDrw},
		{0xEA9E, xip8.OpSkp},
		{0xEAA1, xip8.OpSknp},
		{0xFA07, xip8.OpLdVxDt},
		{0xFA0A, xip8.OpLdVxK},
		{0xFA15, xip8.OpLdDtVx},
		{0xFA18, xip8.OpLdStVx},
		{0xFA1E, xip8.OpAddI},
		{0xFA29, xip8.OpLdF},
		{0xFA33, xip8.OpLdB},
		{0xFA55, xip8.OpLdIVx},
		{0xFA65, xip8.OpLdVxI},
	}

	for _, tt := range tests {
		t.Run(tt.op.String(), func(t *testing.T) {
			ins, err := xip8.Decode(tt.opCode)
			assert.NoError(t, err)
			assert.Equal(t, tt.op, ins.Op)
			assert.Equal(t, tt.opCode, ins.OpCode)
		})
	}
}

func TestDecodeOperands(t *testing.T) {
	ins, err := xip8.Decode(0xD7A3)
	assert.NoError(t, err)
	assert.Equal(t, byte(0x7), ins.X)
	assert.Equal(t, byte(0xA), ins.Y)
	assert.Equal(t, byte(0x3), ins.N)
	assert.Equal(t, byte(0xA3), ins.NN)
	assert.Equal(t, uint16(0x7A3), ins.NNN)
	assert.Equal(t, "D7A3 DRW Vx, Vy, nibble", ins.String())
}

func TestDecodeUnknown(t *testing.T) {
	for _, opCode := range []uint16{0x5AB1, 0x8AB8, 0x8ABF, 0x9AB1, 0xEA9F, 0xFA00, 0xFAFF} {
		_, err := xip8.Decode(opCode)

		var unknown xip8.ErrOpCodeUnknown
		assert.True(t, errors.As(err, &unknown))
		assert.Equal(t, opCode, unknown.OpCode)
	}
}

func TestQuirksText(t *testing.T) {
	var shift xip8.ShiftQuirk
	assert.NoError(t, shift.UnmarshalText([]byte("legacy-Y")))
	assert.Equal(t, xip8.ShiftLegacyY, shift)
	assert.Equal(t, "legacy-Y", shift.String())
	assert.Error(t, shift.UnmarshalText([]byte("sideways")))

	var index xip8.IndexQuirk
	assert.NoError(t, index.UnmarshalText([]byte("on")))
	assert.Equal(t, xip8.IndexIncrement, index)

	var draw xip8.DrawQuirk
	assert.NoError(t, draw.UnmarshalText([]byte("clip")))
	assert.Equal(t, xip8.DrawClip, draw)
	text, err := draw.MarshalText()
	assert.NoError(t, err)
	assert.Equal(t, "clip", string(text))

	var unknown xip8.UnknownOpcodeQuirk
	assert.NoError(t, unknown.UnmarshalText([]byte("ignore")))
	assert.Equal(t, xip8.UnknownIgnore, unknown)
	assert.ErrorContains(t, unknown.UnmarshalText([]byte("panic")), "unknown opcode quirk")

	assert.Equal(t, "unknown(9)", xip8.ShiftQuirk(9).String())
}
