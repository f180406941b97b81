package xip8

// Apply runs a decoded instruction against the machine
func (e *Executor) Apply(ins Instruction, m *Machine) error {
	ex := &execution{m: m}

	switch ins.Op {
	case OpSys:
		// SYS addr :: Jump to a machine code routine at nnn.
		// This instruction is only used on the old computers on which Chip-8 was originally implemented.
		if e.SysHandler != nil {
			return e.SysHandler(ins.NNN, m)
		}

	case OpCls:
		// CLS :: Clear the display.
		m.ClearDisplay()

	case OpRet:
		// RET :: Return from a subroutine.
		addr, err := m.Pop()
		if err != nil {
			return err
		}
		ex.jump(addr)

	case OpJp:
		// JP addr :: Jump to location nnn.
		ex.jump(ins.NNN)

	case OpCall:
		// CALL addr :: Call subroutine at nnn.
		if err := m.Push(m.PC()); err != nil {
			return err
		}
		ex.jump(ins.NNN)

	case OpSeByte:
		// SE Vx, byte :: Skip next instruction if Vx = kk.
		ex.skipIf(ex.v(ins.X) == ins.NN)

	case OpSneByte:
		// SNE Vx, byte :: Skip next instruction if Vx != kk.
		ex.skipIf(ex.v(ins.X) != ins.NN)

	case OpSeReg:
		// SE Vx, Vy :: Skip next instruction if Vx = Vy.
		ex.skipIf(ex.v(ins.X) == ex.v(ins.Y))

	case OpLdByte:
		// LD Vx, byte :: Set Vx = kk.
		ex.setV(ins.X, ins.NN)

	case OpAddByte:
		// ADD Vx, byte :: Set Vx = Vx + kk.
		ex.setV(ins.X, ex.v(ins.X)+ins.NN)

	case OpLdReg:
		// LD Vx, Vy :: Set Vx = Vy.
		ex.setV(ins.X, ex.v(ins.Y))

	case OpOr:
		// OR Vx, Vy :: Set Vx = Vx OR Vy.
		ex.setV(ins.X, ex.v(ins.X)|ex.v(ins.Y))
		e.resetVF(ex)

	case OpAnd:
		// AND Vx, Vy :: Set Vx = Vx AND Vy.
		ex.setV(ins.X, ex.v(ins.X)&ex.v(ins.Y))
		e.resetVF(ex)

	case OpXor:
		// XOR Vx, Vy :: Set Vx = Vx XOR Vy.
		ex.setV(ins.X, ex.v(ins.X)^ex.v(ins.Y))
		e.resetVF(ex)

	case OpAddReg:
		// ADD Vx, Vy :: Set Vx = Vx + Vy, set VF = carry.
		r := uint16(ex.v(ins.X)) + uint16(ex.v(ins.Y))
		ex.setV(ins.X, byte(r&0x00FF))
		ex.setV(VF, byte(r>>8))

	case OpSub:
		// SUB Vx, Vy :: Set Vx = Vx - Vy, set VF = 1 if Vx > Vy.
		vx, vy := ex.v(ins.X), ex.v(ins.Y)
		ex.setV(ins.X, vx-vy)
		ex.setV(VF, bool2byte(vx > vy))

	case OpShr:
		// SHR Vx {, Vy} :: Set Vx = Vx SHR 1.
		e.shift(ex, ins, shiftRight)

	case OpSubn:
		// SUBN Vx, Vy :: Set Vx = Vy - Vx, set VF = 1 if Vy > Vx.
		vx, vy := ex.v(ins.X), ex.v(ins.Y)
		ex.setV(ins.X, vy-vx)
		ex.setV(VF, bool2byte(vy > vx))

	case OpShl:
		// SHL Vx {, Vy} :: Set Vx = Vx SHL 1.
		e.shift(ex, ins, shiftLeft)

	case OpSneReg:
		// SNE Vx, Vy :: Skip next instruction if Vx != Vy.
		ex.skipIf(ex.v(ins.X) != ex.v(ins.Y))

	case OpLdI:
		// LD I, addr :: Set I = nnn.
		m.SetI(ins.NNN)

	case OpJpV0:
		// JP V0, addr :: Jump to location nnn + V0 (or xnn + Vx).
		if e.Quirks.JumpWithVX {
			ex.jump(uint16(ex.v(ins.X)) + ins.NNN)
		} else {
			ex.jump(uint16(ex.v(0)) + ins.NNN)
		}

	case OpRnd:
		// RND Vx, byte :: Set Vx = random byte AND kk.
		r, err := m.RandomByte()
		if err != nil {
			return err
		}
		ex.setV(ins.X, r&ins.NN)

	case OpDrw:
		// DRW Vx, Vy, nibble :: Display n-byte sprite starting at memory location I at (Vx, Vy), set VF = collision.
		e.draw(ex, ins)

	case OpSkp:
		// SKP Vx :: Skip next instruction if key with the value of Vx is pressed.
		ex.skipIf(ex.key(ex.v(ins.X) & 0x0F))

	case OpSknp:
		// SKNP Vx :: Skip next instruction if key with the value of Vx is not pressed.
		ex.skipIf(!ex.key(ex.v(ins.X) & 0x0F))

	case OpLdVxDt:
		// LD Vx, DT :: Set Vx = delay timer value.
		ex.setV(ins.X, m.DelayTimer())

	case OpLdVxK:
		// LD Vx, K :: Wait for a key press, store the value of the key in Vx.
		// The instruction rewinds the PC so it runs again on the next cycle
		// until a key is down.
		ex.jump(m.PC() - 2)
		for k := byte(0); k < KeyCount; k++ {
			if ex.key(k) {
				ex.setV(ins.X, k)
				ex.jump(m.PC() + 2)
				break
			}
		}

	case OpLdDtVx:
		// LD DT, Vx :: Set delay timer = Vx.
		m.SetDelayTimer(ex.v(ins.X))

	case OpLdStVx:
		// LD ST, Vx :: Set sound timer = Vx.
		m.SetSoundTimer(ex.v(ins.X))

	case OpAddI:
		// ADD I, Vx :: Set I = I + Vx.
		// I is left unchanged when the sum points past the memory.
		if addr := ex.at(m.I(), int(ex.v(ins.X))); ex.err == nil {
			m.SetI(addr)
		}

	case OpLdF:
		// LD F, Vx :: Set I = location of sprite for digit Vx.
		m.SetI(FontStart + uint16(ex.v(ins.X)%16)*FontCharSize)

	case OpLdB:
		// LD B, Vx :: Store BCD representation of Vx in memory locations I, I+1, and I+2.
		vx := ex.v(ins.X)
		ex.write(ex.at(m.I(), 0), vx/100)
		ex.write(ex.at(m.I(), 1), (vx/10)%10)
		ex.write(ex.at(m.I(), 2), vx%10)

	case OpLdIVx:
		// LD [I], Vx :: Store registers V0 through Vx in memory starting at location I.
		for i := byte(0); i <= ins.X; i++ {
			ex.write(ex.at(m.I(), int(i)), ex.v(i))
		}
		e.moveIndex(ex, ins)

	case OpLdVxI:
		// LD Vx, [I] :: Read registers V0 through Vx from memory starting at location I.
		for i := byte(0); i <= ins.X; i++ {
			ex.setV(i, ex.read(ex.at(m.I(), int(i))))
		}
		e.moveIndex(ex, ins)

	default:
		if e.Quirks.Unknown == UnknownIgnore {
			return nil
		}
		return ErrOpCodeUnknown{
			OpCode: ins.OpCode,
			Pc:     m.PC(),
		}
	}

	return ex.err
}

func (e *Executor) resetVF(ex *execution) {
	if e.Quirks.VFReset {
		ex.setV(VF, 0)
	}
}

func (e *Executor) moveIndex(ex *execution, ins Instruction) {
	if ex.err == nil && e.Quirks.Index == IndexIncrement {
		ex.m.SetI(ex.m.I() + uint16(ins.X) + 1)
	}
}

type shiftDirection bool

const (
	shiftRight shiftDirection = false
	shiftLeft  shiftDirection = true
)

// shift implements 8XY6 and 8XYE. VF receives the last bit shifted out.
func (e *Executor) shift(ex *execution, ins Instruction, dir shiftDirection) {
	var src, count byte

	switch e.Quirks.Shift {
	case ShiftLegacyY:
		src, count = ex.v(ins.Y), 1
	case ShiftByCount:
		src, count = ex.v(ins.X), ex.v(ins.Y)
	default:
		src, count = ex.v(ins.X), 1
	}

	if count == 0 {
		ex.setV(ins.X, src)
		ex.setV(VF, 0)
		return
	}

	var result, carry byte
	if dir == shiftRight {
		result = src >> count
		carry = (src >> (count - 1)) & 0b00000001
	} else {
		result = src << count
		carry = ((src << (count - 1)) & 0b10000000) >> 7
	}

	ex.setV(ins.X, result)
	ex.setV(VF, carry)
}

// draw XORs an n-byte sprite read from I onto the screen at (Vx, Vy).
// The starting position always wraps; pixels past the edge wrap around or are
// clipped depending on the draw quirk.
func (e *Executor) draw(ex *execution, ins Instruction) {
	startX := int(ex.v(ins.X)) % DisplayWidth
	startY := int(ex.v(ins.Y)) % DisplayHeight
	ex.setV(VF, 0)

	for row := 0; row < int(ins.N); row++ {
		sprite := ex.read(ex.at(ex.m.I(), row))
		if ex.err != nil {
			return
		}

		y := startY + row
		if y >= DisplayHeight {
			if e.Quirks.Draw == DrawClip {
				return
			}
			y %= DisplayHeight
		}

		for col := 0; col < 8; col++ {
			if sprite&(0b10000000>>col) == 0 {
				continue
			}

			x := startX + col
			if x >= DisplayWidth {
				if e.Quirks.Draw == DrawClip {
					break
				}
				x %= DisplayWidth
			}

			if ex.pixel(x, y) {
				ex.setPixel(x, y, false)
				ex.setV(VF, 1)
			} else {
				ex.setPixel(x, y, true)
			}
		}
	}
}
