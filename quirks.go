package xip8

import "fmt"

// ShiftQuirk selects the source of 8XY6 and 8XYE
type ShiftQuirk byte

const (
	// ShiftModernX shifts VX in place and ignores VY
	ShiftModernX ShiftQuirk = iota
	// ShiftLegacyY shifts VY and stores the result in VX
	ShiftLegacyY
	// ShiftByCount shifts VX by the number of positions held in VY
	ShiftByCount
)

// IndexQuirk selects what FX55 and FX65 do to I
type IndexQuirk byte

const (
	// IndexUnchanged leaves I untouched
	IndexUnchanged IndexQuirk = iota
	// IndexIncrement sets I to I + X + 1
	IndexIncrement
)

// DrawQuirk selects what happens to sprite pixels past the screen edge
type DrawQuirk byte

const (
	DrawWrap DrawQuirk = iota
	DrawClip
)

// UnknownOpcodeQuirk selects what happens with opcodes outside the instruction set
type UnknownOpcodeQuirk byte

const (
	// UnknownError stops with ErrOpCodeUnknown
	UnknownError UnknownOpcodeQuirk = iota
	// UnknownIgnore treats the opcode as a no-op
	UnknownIgnore
)

// Quirks selects the behaviour of the instructions that differ between interpreters
type Quirks struct {
	Shift   ShiftQuirk
	Index   IndexQuirk
	Draw    DrawQuirk
	Unknown UnknownOpcodeQuirk
	// VFReset clears VF on 8XY1, 8XY2 and 8XY3
	VFReset bool
	// JumpWithVX makes BXNN jump to VX + XNN instead of V0 + NNN
	JumpWithVX bool
}

// ModernQuirks matches the interpreters most current programs are written for
var ModernQuirks = Quirks{
	Shift:   ShiftModernX,
	Index:   IndexUnchanged,
	Draw:    DrawWrap,
	Unknown: UnknownError,
}

// CosmacQuirks matches the original COSMAC VIP interpreter
var CosmacQuirks = Quirks{
	Shift:   ShiftLegacyY,
	Index:   IndexIncrement,
	Draw:    DrawClip,
	Unknown: UnknownError,
	VFReset: true,
}

var DefaultQuirks = ModernQuirks

var shiftQuirkNames = []string{"modern-X", "legacy-Y", "shift-by-count"}
var indexQuirkNames = []string{"off", "on"}
var drawQuirkNames = []string{"wrap", "clip"}
var unknownQuirkNames = []string{"error", "ignore"}

func quirkName(names []string, v byte) string {
	if int(v) < len(names) {
		return names[v]
	}

	return fmt.Sprintf("unknown(%d)", v)
}

func parseQuirk(kind string, names []string, text []byte) (byte, error) {
	for i, n := range names {
		if n == string(text) {
			return byte(i), nil
		}
	}

	return 0, fmt.Errorf("invalid %s quirk %q, expected one of %v", kind, text, names)
}

func (q ShiftQuirk) String() string { return quirkName(shiftQuirkNames, byte(q)) }

func (q ShiftQuirk) MarshalText() ([]byte, error) { return []byte(q.String()), nil }

func (q *ShiftQuirk) UnmarshalText(text []byte) error {
	v, err := parseQuirk("shift", shiftQuirkNames, text)
	if err != nil {
		return err
	}
	*q = ShiftQuirk(v)

	return nil
}

func (q IndexQuirk) String() string { return quirkName(indexQuirkNames, byte(q)) }

func (q IndexQuirk) MarshalText() ([]byte, error) { return []byte(q.String()), nil }

func (q *IndexQuirk) UnmarshalText(text []byte) error {
	v, err := parseQuirk("index", indexQuirkNames, text)
	if err != nil {
		return err
	}
	*q = IndexQuirk(v)

	return nil
}

func (q DrawQuirk) String() string { return quirkName(drawQuirkNames, byte(q)) }

func (q DrawQuirk) MarshalText() ([]byte, error) { return []byte(q.String()), nil }

func (q *DrawQuirk) UnmarshalText(text []byte) error {
	v, err := parseQuirk("draw", drawQuirkNames, text)
	if err != nil {
		return err
	}
	*q = DrawQuirk(v)

	return nil
}

func (q UnknownOpcodeQuirk) String() string { return quirkName(unknownQuirkNames, byte(q)) }

func (q UnknownOpcodeQuirk) MarshalText() ([]byte, error) { return []byte(q.String()), nil }

func (q *UnknownOpcodeQuirk) UnmarshalText(text []byte) error {
	v, err := parseQuirk("unknown opcode", unknownQuirkNames, text)
	if err != nil {
		return err
	}
	*q = UnknownOpcodeQuirk(v)

	return nil
}
