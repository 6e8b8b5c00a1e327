package ppu

import (
	"fmt"

	"sen/internal/cartridge"
)

// AddressError is the panic value raised for a video memory access outside
// the 14-bit address space.
type AddressError struct {
	Address uint16
}

func (e *AddressError) Error() string {
	return fmt.Sprintf("video memory address %#04x out of range", e.Address)
}

// ReadVRAM reads the picture unit's address space: pattern tables from the
// cartridge, 2KB of nametables and 32 bytes of palette.
func (p *PPU) ReadVRAM(address uint16) uint8 {
	switch {
	case address < 0x2000:
		return p.patterns.ReadCHR(address)
	case address < 0x3F00:
		return p.nametables[p.nametableIndex(address)]
	case address < 0x4000:
		return p.palette[paletteIndex(address)]
	}
	panic(&AddressError{Address: address})
}

// WriteVRAM writes the picture unit's address space.
func (p *PPU) WriteVRAM(address uint16, value uint8) {
	switch {
	case address < 0x2000:
		p.patterns.WriteCHR(address, value)
	case address < 0x3F00:
		p.nametables[p.nametableIndex(address)] = value
	case address < 0x4000:
		p.palette[paletteIndex(address)] = value
	default:
		panic(&AddressError{Address: address})
	}
}

// nametableIndex folds the four logical nametables at 0x2000-0x2FFF (and
// their mirror at 0x3000-0x3EFF) onto the 2KB of nametable memory.
func (p *PPU) nametableIndex(address uint16) uint16 {
	offset := address & 0x0FFF
	table := offset >> 10
	if p.patterns.Mirroring() == cartridge.MirrorHorizontal {
		return (table>>1)<<10 | offset&0x03FF
	}
	// vertical, and four-screen folded into the 2KB available
	return offset & 0x07FF
}

// paletteIndex maps 0x3F00-0x3FFF onto the 32 palette entries. The sprite
// backdrop entries alias the background ones.
func paletteIndex(address uint16) uint16 {
	i := address & 0x1F
	if i >= 0x10 && i&0x03 == 0 {
		i -= 0x10
	}
	return i
}
