// Package disasm turns CHIP-8 opcodes into assembly text.
// Instruction names and classes come from the retrogolib CHIP-8 opcode table.
package disasm

import (
	"fmt"
	"io"
	"strings"

	xip8 "github.com/guslan/xip8vm"
	"github.com/retroenv/retrogolib/arch/cpu/chip8"
)

// lookup finds the instruction of the opcode in the retrogolib table
func lookup(opCode uint16) *chip8.Instruction {
	for _, op := range chip8.Opcodes[int(opCode>>12)] {
		if op.Info.Mask&opCode == op.Info.Value {
			return op.Instruction
		}
	}

	return nil
}

// Mnemonic formats a single opcode, e.g. "DRW V1, V2, $5".
// Opcodes outside the instruction set return xip8.ErrOpCodeUnknown.
func Mnemonic(opCode uint16) (string, error) {
	ins, err := xip8.Decode(opCode)
	if err != nil {
		return "", err
	}

	n := instructionName(ins)
	if params := operands(ins); params != "" {
		return n + " " + params, nil
	}

	return n, nil
}

func instructionName(ins xip8.Instruction) string {
	if i := lookup(ins.OpCode); i != nil && ins.Op != xip8.OpSys {
		return strings.ToUpper(i.Name)
	}

	n, _, _ := strings.Cut(ins.Op.String(), " ")

	return n
}

func operands(ins xip8.Instruction) string {
	switch ins.Op {
	case xip8.OpCls, xip8.OpRet:
		return ""

	case xip8.OpSys, xip8.OpJp, xip8.OpCall:
		return fmt.Sprintf("$%03X", ins.NNN)

	case xip8.OpSeByte, xip8.OpSneByte, xip8.OpLdByte, xip8.OpAddByte, xip8.OpRnd:
		return fmt.Sprintf("V%X, $%02X", ins.X, ins.NN)

	case xip8.OpSeReg, xip8.OpSneReg, xip8.OpLdReg, xip8.OpOr, xip8.OpAnd, xip8.OpXor,
		xip8.OpAddReg, xip8.OpSub, xip8.OpSubn, xip8.OpShr, xip8.OpShl:
		return fmt.Sprintf("V%X, V%X", ins.X, ins.Y)

	case xip8.OpLdI:
		return fmt.Sprintf("I, $%03X", ins.NNN)

	case xip8.OpJpV0:
		return fmt.Sprintf("V0, $%03X", ins.NNN)

	case xip8.OpDrw:
		return fmt.Sprintf("V%X, V%X, $%X", ins.X, ins.Y, ins.N)

	case xip8.OpSkp, xip8.OpSknp:
		return fmt.Sprintf("V%X", ins.X)

	case xip8.OpLdVxDt:
		return fmt.Sprintf("V%X, DT", ins.X)

	case xip8.OpLdVxK:
		return fmt.Sprintf("V%X, K", ins.X)

	case xip8.OpLdDtVx:
		return fmt.Sprintf("DT, V%X", ins.X)

	case xip8.OpLdStVx:
		return fmt.Sprintf("ST, V%X", ins.X)

	case xip8.OpAddI:
		return fmt.Sprintf("I, V%X", ins.X)

	case xip8.OpLdF:
		return fmt.Sprintf("F, V%X", ins.X)

	case xip8.OpLdB:
		return fmt.Sprintf("B, V%X", ins.X)

	case xip8.OpLdIVx:
		return fmt.Sprintf("[I], V%X", ins.X)

	case xip8.OpLdVxI:
		return fmt.Sprintf("V%X, [I]", ins.X)
	}

	return ""
}

// Listing writes one line per word of the program: address, opcode and mnemonic.
// Words outside the instruction set are written as DW data, and a trailing odd
// byte as DB.
func Listing(w io.Writer, program []byte, origin uint16) error {
	for i := 0; i < len(program); i += 2 {
		addr := int(origin) + i

		if i+1 == len(program) {
			if _, err := fmt.Fprintf(w, "%03X: %02X    DB $%02X\n", addr, program[i], program[i]); err != nil {
				return err
			}
			break
		}

		opCode := uint16(program[i])<<8 | uint16(program[i+1])
		text, err := Mnemonic(opCode)
		if err != nil {
			text = fmt.Sprintf("DW $%04X", opCode)
		}

		if _, err := fmt.Fprintf(w, "%03X: %04X  %s\n", addr, opCode, text); err != nil {
			return err
		}
	}

	return nil
}

// IsSkip reports whether the opcode conditionally skips the next instruction
func IsSkip(opCode uint16) bool {
	i := lookup(opCode)
	if i == nil {
		return false
	}

	return chip8.SkipInstructions.Contains(i.Name)
}

// IsCall reports whether the opcode calls a subroutine
func IsCall(opCode uint16) bool {
	return lookup(opCode) == chip8.CallInst
}

// IsJump reports whether the opcode is an unconditional jump
func IsJump(opCode uint16) bool {
	return lookup(opCode) == chip8.JpInst
}

// ReadsMemory reports whether the opcode reads the memory pointed by I
func ReadsMemory(opCode uint16) bool {
	i := lookup(opCode)
	if i == nil {
		return false
	}

	return chip8.MemoryReadInstructions.Contains(i.Name)
}

// WritesMemory reports whether the opcode writes the memory pointed by I
func WritesMemory(opCode uint16) bool {
	i := lookup(opCode)
	if i == nil {
		return false
	}

	return chip8.MemoryWriteInstructions.Contains(i.Name)
}
