package xip8

import "fmt"

type ErrOpCodeUnknown struct {
	OpCode uint16
	Pc     uint16
}

func (err ErrOpCodeUnknown) Error() string {
	return fmt.Sprintf("unknown opcode=%04X at PC=%#04x", err.OpCode, err.Pc)
}

// Op identifies one of the operations of the instruction set
type Op byte

const (
	OpSys        Op = iota // 0NNN
	OpCls                  // 00E0
	OpRet                  // 00EE
	OpJp                   // 1NNN
	OpCall                 // 2NNN
	OpSeByte               // 3XNN
	OpSneByte              // 4XNN
	OpSeReg                // 5XY0
	OpLdByte               // 6XNN
	OpAddByte              // 7XNN
	OpLdReg                // 8XY0
	OpOr                   // 8XY1
	OpAnd                  // 8XY2
	OpXor                  // 8XY3
	OpAddReg               // 8XY4
	OpSub                  // 8XY5
	OpShr                  // 8XY6
	OpSubn                 // 8XY7
	OpShl                  // 8XYE
	OpSneReg               // 9XY0
	OpLdI                  // ANNN
	OpJpV0                 // BNNN
	OpRnd                  // CXNN
	OpDrw                  // DXYN
	OpSkp                  // EX9E
	OpSknp                 // EXA1
	OpLdVxDt               // FX07
	OpLdVxK                // FX0A
	OpLdDtVx               // FX15
	OpLdStVx               // FX18
	OpAddI                 // FX1E
	OpLdF                  // FX29
	OpLdB                  // FX33
	OpLdIVx                // FX55
	OpLdVxI                // FX65
)

var opNames = [...]string{
	OpSys:     "SYS addr",
	OpCls:     "CLS",
	OpRet:     "RET",
	OpJp:      "JP addr",
	OpCall:    "CALL addr",
	OpSeByte:  "SE Vx, byte",
	OpSneByte: "SNE Vx, byte",
	OpSeReg:   "SE Vx, Vy",
	OpLdByte:  "LD Vx, byte",
	OpAddByte: "ADD Vx, byte",
	OpLdReg:   "LD Vx, Vy",
	OpOr:      "OR Vx, Vy",
	OpAnd:     "AND Vx, Vy",
	OpXor:     "XOR Vx, Vy",
	OpAddReg:  "ADD Vx, Vy",
	OpSub:     "SUB Vx, Vy",
	OpShr:     "SHR Vx {, Vy}",
	OpSubn:    "SUBN Vx, Vy",
	OpShl:     "SHL Vx {, Vy}",
	OpSneReg:  "SNE Vx, Vy",
	OpLdI:     "LD I, addr",
	OpJpV0:    "JP V0, addr",
	OpRnd:     "RND Vx, byte",
	OpDrw:     "DRW Vx, Vy, nibble",
	OpSkp:     "SKP Vx",
	OpSknp:    "SKNP Vx",
	OpLdVxDt:  "LD Vx, DT",
	OpLdVxK:   "LD Vx, K",
	OpLdDtVx:  "LD DT, Vx",
	OpLdStVx:  "LD ST, Vx",
	OpAddI:    "ADD I, Vx",
	OpLdF:     "LD F, Vx",
	OpLdB:     "LD B, Vx",
	OpLdIVx:   "LD [I], Vx",
	OpLdVxI:   "LD Vx, [I]",
}

func (op Op) String() string {
	if int(op) < len(opNames) {
		return opNames[op]
	}

	return fmt.Sprintf("Op(%d)", byte(op))
}

// Instruction is a decoded opcode with its operands extracted
type Instruction struct {
	Op     Op
	OpCode uint16
	// X register, second nibble
	X byte
	// Y register, third nibble
	Y byte
	// N is the lowest nibble
	N byte
	// NN is the lowest byte
	NN byte
	// NNN is the lowest 12 bits
	NNN uint16
}

func (ins Instruction) String() string {
	return fmt.Sprintf("%04X %s", ins.OpCode, ins.Op)
}

// Decode splits the opcode into its nibbles and identifies the operation.
// Opcodes outside the instruction set return ErrOpCodeUnknown with Pc unset.
func Decode(opCode uint16) (Instruction, error) {
	ins := Instruction{
		OpCode: opCode,
		X:      byte((opCode & 0x0F00) >> 8),
		Y:      byte((opCode & 0x00F0) >> 4),
		N:      byte(opCode & 0x000F),
		NN:     byte(opCode & 0x00FF),
		NNN:    opCode & 0x0FFF,
	}

	op, ok := decodeOp(opCode, ins.N, ins.NN)
	if !ok {
		return ins, ErrOpCodeUnknown{OpCode: opCode}
	}
	ins.Op = op

	return ins, nil
}

func decodeOp(opCode uint16, n, nn byte) (Op, bool) {
	switch opCode & 0xF000 {
	case 0x0000:
		switch opCode {
		case 0x00E0:
			return OpCls, true
		case 0x00EE:
			return OpRet, true
		default:
			return OpSys, true
		}

	case 0x1000:
		return OpJp, true

	case 0x2000:
		return OpCall, true

	case 0x3000:
		return OpSeByte, true

	case 0x4000:
		return OpSneByte, true

	case 0x5000:
		if n == 0x0 {
			return OpSeReg, true
		}

	case 0x6000:
		return OpLdByte, true

	case 0x7000:
		return OpAddByte, true

	case 0x8000:
		switch n {
		case 0x0:
			return OpLdReg, true
		case 0x1:
			return OpOr, true
		case 0x2:
			return OpAnd, true
		case 0x3:
			return OpXor, true
		case 0x4:
			return OpAddReg, true
		case 0x5:
			return OpSub, true
		case 0x6:
			return OpShr, true
		case 0x7:
			return OpSubn, true
		case 0xE:
			return OpShl, true
		}

	case 0x9000:
		if n == 0x0 {
			return OpSneReg, true
		}

	case 0xA000:
		return OpLdI, true

	case 0xB000:
		return OpJpV0, true

	case 0xC000:
		return OpRnd, true

	case 0xD000:
		return OpDrw, true

	case 0xE000:
		switch nn {
		case 0x9E:
			return OpSkp, true
		case 0xA1:
			return OpSknp, true
		}

	case 0xF000:
		switch nn {
		case 0x07:
			return OpLdVxDt, true
		case 0x0A:
			return OpLdVxK, true
		case 0x15:
			return OpLdDtVx, true
		case 0x18:
			return OpLdStVx, true
		case 0x1E:
			return OpAddI, true
		case 0x29:
			return OpLdF, true
		case 0x33:
			return OpLdB, true
		case 0x55:
			return OpLdIVx, true
		case 0x65:
			return OpLdVxI, true
		}
	}

	return 0, false
}
