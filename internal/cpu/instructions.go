package cpu

func (cpu *CPU) execute(m Mnemonic, op operand) {
	switch m {
	// loads, stores and transfers
	case LDA:
		cpu.A = cpu.load(op)
		cpu.setZN(cpu.A)
	case LDX:
		cpu.X = cpu.load(op)
		cpu.setZN(cpu.X)
	case LDY:
		cpu.Y = cpu.load(op)
		cpu.setZN(cpu.Y)
	case STA:
		cpu.store(op, cpu.A)
	case STX:
		cpu.store(op, cpu.X)
	case STY:
		cpu.store(op, cpu.Y)
	case TAX:
		cpu.X = cpu.A
		cpu.setZN(cpu.X)
	case TAY:
		cpu.Y = cpu.A
		cpu.setZN(cpu.Y)
	case TSX:
		cpu.X = cpu.SP
		cpu.setZN(cpu.X)
	case TXA:
		cpu.A = cpu.X
		cpu.setZN(cpu.A)
	case TXS:
		cpu.SP = cpu.X
	case TYA:
		cpu.A = cpu.Y
		cpu.setZN(cpu.A)

	// stack
	case PHA:
		cpu.push(cpu.A)
	case PHP:
		cpu.push(cpu.Status() | flagBreak)
	case PLA:
		cpu.A = cpu.pop()
		cpu.setZN(cpu.A)
	case PLP:
		cpu.pullStatus()

	// arithmetic and logic
	case ADC:
		cpu.addWithCarry(cpu.load(op))
	case SBC:
		cpu.addWithCarry(^cpu.load(op))
	case AND:
		cpu.A &= cpu.load(op)
		cpu.setZN(cpu.A)
	case ORA:
		cpu.A |= cpu.load(op)
		cpu.setZN(cpu.A)
	case EOR:
		cpu.A ^= cpu.load(op)
		cpu.setZN(cpu.A)
	case BIT:
		v := cpu.load(op)
		cpu.Z = cpu.A&v == 0
		cpu.V = v&0x40 != 0
		cpu.N = v&0x80 != 0
	case CMP:
		cpu.compare(cpu.A, cpu.load(op))
	case CPX:
		cpu.compare(cpu.X, cpu.load(op))
	case CPY:
		cpu.compare(cpu.Y, cpu.load(op))

	// increments and decrements
	case INC:
		v := cpu.load(op) + 1
		cpu.store(op, v)
		cpu.setZN(v)
	case DEC:
		v := cpu.load(op) - 1
		cpu.store(op, v)
		cpu.setZN(v)
	case INX:
		cpu.X++
		cpu.setZN(cpu.X)
	case INY:
		cpu.Y++
		cpu.setZN(cpu.Y)
	case DEX:
		cpu.X--
		cpu.setZN(cpu.X)
	case DEY:
		cpu.Y--
		cpu.setZN(cpu.Y)

	// shifts
	case ASL:
		cpu.setZN(cpu.shiftLeft(op))
	case LSR:
		cpu.setZN(cpu.shiftRight(op))
	case ROL:
		cpu.setZN(cpu.rotateLeft(op))
	case ROR:
		cpu.setZN(cpu.rotateRight(op))

	// jumps and calls
	case JMP:
		cpu.PC = op.address
	case JSR:
		cpu.pushWord(cpu.PC - 1)
		cpu.PC = op.address
	case RTS:
		cpu.PC = cpu.popWord() + 1
	case BRK:
		cpu.pushWord(cpu.PC + 1)
		cpu.push(cpu.Status() | flagBreak)
		cpu.I = true
		cpu.PC = cpu.readWord(irqVector)
	case RTI:
		cpu.pullStatus()
		cpu.PC = cpu.popWord()

	// branches
	case BCC:
		cpu.branch(!cpu.C, op)
	case BCS:
		cpu.branch(cpu.C, op)
	case BEQ:
		cpu.branch(cpu.Z, op)
	case BNE:
		cpu.branch(!cpu.Z, op)
	case BMI:
		cpu.branch(cpu.N, op)
	case BPL:
		cpu.branch(!cpu.N, op)
	case BVS:
		cpu.branch(cpu.V, op)
	case BVC:
		cpu.branch(!cpu.V, op)

	// flags
	case CLC:
		cpu.C = false
	case CLD:
		cpu.D = false
	case CLI:
		cpu.I = false
	case CLV:
		cpu.V = false
	case SEC:
		cpu.C = true
	case SED:
		cpu.D = true
	case SEI:
		cpu.I = true

	case NOP:

	// undocumented
	case LAX:
		cpu.A = cpu.load(op)
		cpu.X = cpu.A
		cpu.setZN(cpu.A)
	case SAX:
		cpu.store(op, cpu.A&cpu.X)
	case DCP:
		v := cpu.load(op) - 1
		cpu.store(op, v)
		cpu.compare(cpu.A, v)
	case ISB:
		v := cpu.load(op) + 1
		cpu.store(op, v)
		cpu.addWithCarry(^v)
	case SLO:
		cpu.A |= cpu.shiftLeft(op)
		cpu.setZN(cpu.A)
	case RLA:
		cpu.A &= cpu.rotateLeft(op)
		cpu.setZN(cpu.A)
	case SRE:
		cpu.A ^= cpu.shiftRight(op)
		cpu.setZN(cpu.A)
	case RRA:
		cpu.addWithCarry(cpu.rotateRight(op))
	}
}

// addWithCarry adds value and the carry to A. Subtraction adds the
// complement.
func (cpu *CPU) addWithCarry(value uint8) {
	sum := uint16(cpu.A) + uint16(value)
	if cpu.C {
		sum++
	}
	result := uint8(sum)
	cpu.C = sum > 0xFF
	// operands of the same sign giving a result of the other sign
	cpu.V = (cpu.A^result)&(value^result)&0x80 != 0
	cpu.A = result
	cpu.setZN(result)
}

func (cpu *CPU) compare(register, value uint8) {
	cpu.C = register >= value
	cpu.setZN(register - value)
}

func (cpu *CPU) branch(taken bool, op operand) {
	if !taken {
		return
	}
	cpu.Cycles++
	if pageCrossed(cpu.PC, op.address) {
		cpu.Cycles++
	}
	cpu.PC = op.address
}

func (cpu *CPU) shiftLeft(op operand) uint8 {
	v := cpu.load(op)
	cpu.C = v&0x80 != 0
	v <<= 1
	cpu.store(op, v)
	return v
}

func (cpu *CPU) shiftRight(op operand) uint8 {
	v := cpu.load(op)
	cpu.C = v&0x01 != 0
	v >>= 1
	cpu.store(op, v)
	return v
}

func (cpu *CPU) rotateLeft(op operand) uint8 {
	v := cpu.load(op)
	carry := cpu.C
	cpu.C = v&0x80 != 0
	v <<= 1
	if carry {
		v |= 0x01
	}
	cpu.store(op, v)
	return v
}

func (cpu *CPU) rotateRight(op operand) uint8 {
	v := cpu.load(op)
	carry := cpu.C
	cpu.C = v&0x01 != 0
	v >>= 1
	if carry {
		v |= 0x80
	}
	cpu.store(op, v)
	return v
}
