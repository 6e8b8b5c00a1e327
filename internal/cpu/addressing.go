package cpu

// AddressingMode selects how an instruction finds its operand.
type AddressingMode uint8

const (
	Implied AddressingMode = iota
	Accumulator
	Immediate
	ZeroPage
	ZeroPageX
	ZeroPageY
	Relative
	Absolute
	AbsoluteX
	AbsoluteY
	Indirect
	IndexedIndirect // (zp,X)
	IndirectIndexed // (zp),Y
)

var modeNames = [...]string{
	Implied:         "implied",
	Accumulator:     "accumulator",
	Immediate:       "immediate",
	ZeroPage:        "zeropage",
	ZeroPageX:       "zeropage,X",
	ZeroPageY:       "zeropage,Y",
	Relative:        "relative",
	Absolute:        "absolute",
	AbsoluteX:       "absolute,X",
	AbsoluteY:       "absolute,Y",
	Indirect:        "indirect",
	IndexedIndirect: "(indirect,X)",
	IndirectIndexed: "(indirect),Y",
}

func (m AddressingMode) String() string {
	if int(m) < len(modeNames) {
		return modeNames[m]
	}
	return "unknown"
}

// operand is the resolved source or destination of an instruction. Only
// accumulator, immediate and memory operands can be loaded; only
// accumulator and memory operands can be stored.
type operand struct {
	mode    AddressingMode
	address uint16
}

// decode consumes the operand bytes following the opcode and resolves the
// operand. It reports whether indexing crossed a page boundary.
func (cpu *CPU) decode(mode AddressingMode) (operand, bool) {
	op := operand{mode: mode}
	crossed := false

	switch mode {
	case Implied, Accumulator:

	case Immediate:
		op.address = cpu.PC
		cpu.PC++

	case ZeroPage:
		op.address = uint16(cpu.fetch())

	case ZeroPageX:
		op.address = uint16(cpu.fetch() + cpu.X)

	case ZeroPageY:
		op.address = uint16(cpu.fetch() + cpu.Y)

	case Relative:
		// the offset byte is consumed whether or not a branch is taken
		offset := int8(cpu.fetch())
		op.address = cpu.PC + uint16(offset)

	case Absolute:
		op.address = cpu.fetchWord()

	case AbsoluteX:
		base := cpu.fetchWord()
		op.address = base + uint16(cpu.X)
		crossed = pageCrossed(base, op.address)

	case AbsoluteY:
		base := cpu.fetchWord()
		op.address = base + uint16(cpu.Y)
		crossed = pageCrossed(base, op.address)

	case Indirect:
		// the pointer's high byte is fetched without carrying into the
		// page, so a pointer at 0x12FF reads 0x12FF and 0x1200
		ptr := cpu.fetchWord()
		lo := cpu.bus.Read(ptr)
		hi := cpu.bus.Read(ptr&0xFF00 | uint16(uint8(ptr)+1))
		op.address = uint16(hi)<<8 | uint16(lo)

	case IndexedIndirect:
		op.address = cpu.readZeroPageWord(cpu.fetch() + cpu.X)

	case IndirectIndexed:
		base := cpu.readZeroPageWord(cpu.fetch())
		op.address = base + uint16(cpu.Y)
		crossed = pageCrossed(base, op.address)
	}

	return op, crossed
}

func (cpu *CPU) load(op operand) uint8 {
	switch op.mode {
	case Accumulator:
		return cpu.A
	case Implied, Relative:
		panic(&OperandError{Mode: op.mode, PC: cpu.instPC})
	default:
		return cpu.bus.Read(op.address)
	}
}

func (cpu *CPU) store(op operand, value uint8) {
	switch op.mode {
	case Accumulator:
		cpu.A = value
	case Immediate, Implied, Relative:
		panic(&OperandError{Mode: op.mode, PC: cpu.instPC, Store: true})
	default:
		cpu.bus.Write(op.address, value)
	}
}

func pageCrossed(a, b uint16) bool {
	return a&0xFF00 != b&0xFF00
}
