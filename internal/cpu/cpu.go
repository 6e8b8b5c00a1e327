// Package cpu implements the console's 6502-derived processor.
package cpu

import (
	"fmt"
	"io"

	"sen/internal/logger"
)

const (
	stackBase = 0x0100

	nmiVector   = 0xFFFA
	resetVector = 0xFFFC
	irqVector   = 0xFFFE

	powerOnSP = 0xFD

	// cycles taken to enter an interrupt handler
	interruptCycles = 7
)

// Status register bits.
const (
	flagCarry     = 0x01
	flagZero      = 0x02
	flagInterrupt = 0x04
	flagDecimal   = 0x08
	flagBreak     = 0x10
	flagUnused    = 0x20
	flagOverflow  = 0x40
	flagNegative  = 0x80
)

// Bus is the address space the processor reads and writes.
type Bus interface {
	Read(address uint16) uint8
	Write(address uint16, value uint8)
}

// Staller is implemented by buses that can suspend the processor, such as
// for a DMA transfer. Stall is called once after every instruction with the
// cycle count at which the instruction started and returns the cycles to
// add.
type Staller interface {
	Stall(cycle uint64) uint64
}

// OpcodeError reports an opcode with no entry in the instruction table.
type OpcodeError struct {
	Opcode uint8
	PC     uint16
}

func (e *OpcodeError) Error() string {
	return fmt.Sprintf("undefined opcode %#02x at %#04x", e.Opcode, e.PC)
}

// OperandError is the panic value raised when an instruction stores through
// an operand that cannot be written, such as an immediate value, or loads
// from one that has no value.
type OperandError struct {
	Mode  AddressingMode
	PC    uint16
	Store bool
}

func (e *OperandError) Error() string {
	if e.Store {
		return fmt.Sprintf("store through %s operand at %#04x", e.Mode, e.PC)
	}
	return fmt.Sprintf("load from %s operand at %#04x", e.Mode, e.PC)
}

// CPU represents the processor state
type CPU struct {
	A  uint8
	X  uint8
	Y  uint8
	SP uint8
	PC uint16

	C bool // Carry
	Z bool // Zero
	I bool // Interrupt disable
	D bool // Decimal mode, stored but ignored by arithmetic
	B bool // Break
	V bool // Overflow
	N bool // Negative

	// Cycles is the running total of elapsed cycles
	Cycles uint64

	bus     Bus
	staller Staller

	// address of the opcode being executed
	instPC uint16

	// set once an undefined opcode has been decoded
	halted error

	trace io.Writer
}

// New creates a processor attached to bus, in the power-on state. The
// program counter is loaded by Reset.
func New(bus Bus) *CPU {
	cpu := &CPU{bus: bus}
	cpu.staller, _ = bus.(Staller)
	cpu.powerOn()
	return cpu
}

func (cpu *CPU) powerOn() {
	cpu.A = 0
	cpu.X = 0
	cpu.Y = 0
	cpu.SP = powerOnSP
	cpu.SetStatus(flagInterrupt | flagBreak)
}

// Reset loads the program counter from the reset vector and returns the
// stack pointer and flags to their power-on values.
func (cpu *CPU) Reset() {
	cpu.SP = powerOnSP
	cpu.SetStatus(flagInterrupt | flagBreak)
	cpu.PC = cpu.readWord(resetVector)
	cpu.Cycles = 0
	cpu.halted = nil
}

// SetTrace writes a line per instruction to w. A nil writer stops tracing.
func (cpu *CPU) SetTrace(w io.Writer) {
	cpu.trace = w
}

// Step executes one instruction and returns the cycles it took, including
// any stall claimed by the bus. An undefined opcode halts the processor;
// every later Step returns the same error.
func (cpu *CPU) Step() (uint64, error) {
	if cpu.halted != nil {
		return 0, cpu.halted
	}

	start := cpu.Cycles
	cpu.instPC = cpu.PC
	opcode := cpu.fetch()

	inst := &instructions[opcode]
	if !inst.defined() {
		cpu.halted = &OpcodeError{Opcode: opcode, PC: cpu.instPC}
		logger.Log(logger.TagCPU, cpu.halted.Error())
		return 0, cpu.halted
	}

	if cpu.trace != nil {
		cpu.traceInstruction(opcode, inst)
	}

	op, crossed := cpu.decode(inst.Mode)
	cpu.Cycles += uint64(inst.Cycles)
	if crossed && inst.PageCycle {
		cpu.Cycles++
	}

	cpu.execute(inst.Mnemonic, op)

	if cpu.staller != nil {
		cpu.Cycles += cpu.staller.Stall(start)
	}

	return cpu.Cycles - start, nil
}

// NMI enters the non-maskable interrupt handler.
func (cpu *CPU) NMI() {
	cpu.pushWord(cpu.PC)
	cpu.push((cpu.Status() &^ flagBreak) | flagUnused)
	cpu.I = true
	cpu.PC = cpu.readWord(nmiVector)
	cpu.Cycles += interruptCycles
	logger.Logf(logger.TagCPU, "NMI to %#04x", cpu.PC)
}

// Status packs the flags into the processor status byte.
func (cpu *CPU) Status() uint8 {
	status := uint8(flagUnused)
	if cpu.C {
		status |= flagCarry
	}
	if cpu.Z {
		status |= flagZero
	}
	if cpu.I {
		status |= flagInterrupt
	}
	if cpu.D {
		status |= flagDecimal
	}
	if cpu.B {
		status |= flagBreak
	}
	if cpu.V {
		status |= flagOverflow
	}
	if cpu.N {
		status |= flagNegative
	}
	return status
}

// SetStatus unpacks a processor status byte into the flags.
func (cpu *CPU) SetStatus(status uint8) {
	cpu.C = status&flagCarry != 0
	cpu.Z = status&flagZero != 0
	cpu.I = status&flagInterrupt != 0
	cpu.D = status&flagDecimal != 0
	cpu.B = status&flagBreak != 0
	cpu.V = status&flagOverflow != 0
	cpu.N = status&flagNegative != 0
}

// pullStatus restores the flags from the stack. B is not a latch in the
// processor and keeps its value.
func (cpu *CPU) pullStatus() {
	b := cpu.B
	cpu.SetStatus(cpu.pop())
	cpu.B = b
}

func (cpu *CPU) fetch() uint8 {
	v := cpu.bus.Read(cpu.PC)
	cpu.PC++
	return v
}

func (cpu *CPU) fetchWord() uint16 {
	lo := cpu.fetch()
	hi := cpu.fetch()
	return uint16(hi)<<8 | uint16(lo)
}

func (cpu *CPU) readWord(address uint16) uint16 {
	lo := cpu.bus.Read(address)
	hi := cpu.bus.Read(address + 1)
	return uint16(hi)<<8 | uint16(lo)
}

// readZeroPageWord reads a pointer from the zero page. The high byte wraps
// within the page.
func (cpu *CPU) readZeroPageWord(address uint8) uint16 {
	lo := cpu.bus.Read(uint16(address))
	hi := cpu.bus.Read(uint16(address + 1))
	return uint16(hi)<<8 | uint16(lo)
}

func (cpu *CPU) push(value uint8) {
	cpu.bus.Write(stackBase|uint16(cpu.SP), value)
	cpu.SP--
}

func (cpu *CPU) pop() uint8 {
	cpu.SP++
	return cpu.bus.Read(stackBase | uint16(cpu.SP))
}

// pushWord leaves the low byte at the lower stack address.
func (cpu *CPU) pushWord(value uint16) {
	cpu.push(uint8(value >> 8))
	cpu.push(uint8(value))
}

func (cpu *CPU) popWord() uint16 {
	lo := cpu.pop()
	hi := cpu.pop()
	return uint16(hi)<<8 | uint16(lo)
}

func (cpu *CPU) setZN(value uint8) {
	cpu.Z = value == 0
	cpu.N = value&0x80 != 0
}

func (cpu *CPU) traceInstruction(opcode uint8, inst *Instruction) {
	fmt.Fprintf(cpu.trace, "%04X  %02X  %-4s %-15s A:%02X X:%02X Y:%02X P:%02X SP:%02X CYC:%d\n",
		cpu.instPC, opcode, inst.Mnemonic, inst.Mode,
		cpu.A, cpu.X, cpu.Y, cpu.Status(), cpu.SP, cpu.Cycles)
}
