// Package memory implements the CPU address space: work RAM, the PPU and
// I/O registers, and the cartridge windows.
package memory

import (
	"sen/internal/logger"
)

const (
	ramSize   = 0x800
	oamDMA    = 0x4014
	apuStatus = 0x4015
	joypad1   = 0x4016
	joypad2   = 0x4017

	// cycles the CPU is suspended while OAM DMA runs, plus one for
	// alignment when the transfer starts on an odd cycle
	dmaStallCycles = 513
)

// PPU is the register interface of the picture unit.
type PPU interface {
	ReadRegister(address uint16) uint8
	WriteRegister(address uint16, value uint8)
}

// APU is the register interface of the audio unit.
type APU interface {
	WriteRegister(address uint16, value uint8)
	ReadStatus() uint8
}

// Input is the controller port pair.
type Input interface {
	Read(address uint16) uint8
	Write(address uint16, value uint8)
}

// Cartridge is the CPU side of the cartridge.
type Cartridge interface {
	ProgramBanks() int
	ReadPRG(offset uint16) uint8
	ReadRAM(offset uint16) uint8
	WriteRAM(offset uint16, value uint8)
}

// Memory represents the CPU memory map
type Memory struct {
	ram [ramSize]uint8

	ppu   PPU
	apu   APU
	input Input
	cart  Cartridge

	// set by a write to the OAM DMA port, claimed by the CPU through Stall
	dmaPending bool
}

// New creates the memory map over the given devices.
func New(ppu PPU, apu APU, input Input, cart Cartridge) *Memory {
	return &Memory{
		ppu:   ppu,
		apu:   apu,
		input: input,
		cart:  cart,
	}
}

// Reset clears work RAM and any pending DMA.
func (m *Memory) Reset() {
	m.ram = [ramSize]uint8{}
	m.dmaPending = false
}

// prgOffset folds a CPU address into the program ROM window. A single 16KB
// bank appears twice in 0x8000-0xFFFF.
func (m *Memory) prgOffset(address uint16) uint16 {
	if m.cart.ProgramBanks() > 1 {
		return address & 0x7FFF
	}
	return address & 0x3FFF
}

// Read reads a byte from the given address
func (m *Memory) Read(address uint16) uint8 {
	switch {
	case address < 0x2000:
		return m.ram[address&(ramSize-1)]

	case address < 0x4000:
		return m.ppu.ReadRegister(0x2000 + address&0x0007)

	case address == joypad1 || address == joypad2:
		return m.input.Read(address)

	case address == apuStatus:
		return m.apu.ReadStatus()

	case address < 0x6000:
		// write-only APU registers and the unused expansion area
		return 0

	case address < 0x8000:
		return m.cart.ReadRAM(address - 0x6000)

	default:
		return m.cart.ReadPRG(m.prgOffset(address))
	}
}

// Write writes a byte to the given address
func (m *Memory) Write(address uint16, value uint8) {
	switch {
	case address < 0x2000:
		m.ram[address&(ramSize-1)] = value

	case address < 0x4000:
		m.ppu.WriteRegister(0x2000+address&0x0007, value)

	case address == oamDMA:
		m.oamDMA(value)

	case address == joypad1:
		m.input.Write(address, value)

	case address < 0x4020:
		// includes 0x4017, the APU frame counter
		m.apu.WriteRegister(address, value)

	case address < 0x6000:
		logger.Logf(logger.TagMemory, "write of %#02x to unmapped address %#04x dropped", value, address)

	case address < 0x8000:
		m.cart.WriteRAM(address-0x6000, value)

	default:
		logger.Logf(logger.TagMemory, "write of %#02x to program ROM at %#04x dropped", value, address)
	}
}

// Peek reads an address without side effects. Registers read as zero.
func (m *Memory) Peek(address uint16) uint8 {
	switch {
	case address < 0x2000:
		return m.ram[address&(ramSize-1)]
	case address < 0x6000:
		return 0
	case address < 0x8000:
		return m.cart.ReadRAM(address - 0x6000)
	default:
		return m.cart.ReadPRG(m.prgOffset(address))
	}
}

// oamDMA copies a 256-byte page into sprite memory through the OAM data
// register, so the copy starts at the current OAM address and wraps.
func (m *Memory) oamDMA(page uint8) {
	base := uint16(page) << 8
	for i := uint16(0); i < 256; i++ {
		m.ppu.WriteRegister(0x2004, m.Read(base+i))
	}
	m.dmaPending = true
	logger.Logf(logger.TagMemory, "OAM DMA from page %#02x", page)
}

// Stall returns the cycles the CPU must give up for a DMA started by the
// instruction that began at cycle. It returns zero when no DMA is pending.
func (m *Memory) Stall(cycle uint64) uint64 {
	if !m.dmaPending {
		return 0
	}
	m.dmaPending = false
	return dmaStallCycles + cycle&1
}
