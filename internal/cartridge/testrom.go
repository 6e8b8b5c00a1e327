package cartridge

import (
	"bytes"
	"fmt"
)

// TestROMBuilder assembles small iNES images for tests and tooling.
type TestROMBuilder struct {
	prgBanks   uint8
	chrBanks   uint8
	mapperID   uint8
	mirroring  MirrorMode
	battery    bool
	trainer    []uint8
	prg        map[uint16][]uint8
	chr        []uint8
	nmiVector  uint16
	reset      uint16
	irqVector  uint16
	truncateTo int
}

// NewTestROMBuilder returns a builder for a 16KB NROM image with 8KB of
// pattern ROM and every vector pointing at 0x8000.
func NewTestROMBuilder() *TestROMBuilder {
	return &TestROMBuilder{
		prgBanks:  1,
		chrBanks:  1,
		mirroring: MirrorHorizontal,
		prg:       make(map[uint16][]uint8),
		nmiVector: 0x8000,
		reset:     0x8000,
		irqVector: 0x8000,
	}
}

// WithPRGBanks sets the program ROM size in 16KB units.
func (b *TestROMBuilder) WithPRGBanks(n uint8) *TestROMBuilder {
	b.prgBanks = n
	return b
}

// WithCHRBanks sets the pattern ROM size in 8KB units.
func (b *TestROMBuilder) WithCHRBanks(n uint8) *TestROMBuilder {
	b.chrBanks = n
	return b
}

// WithCHRRAM configures the image to use pattern RAM.
func (b *TestROMBuilder) WithCHRRAM() *TestROMBuilder {
	b.chrBanks = 0
	return b
}

// WithMapper sets the mapper number.
func (b *TestROMBuilder) WithMapper(id uint8) *TestROMBuilder {
	b.mapperID = id
	return b
}

// WithMirroring sets the nametable mirroring.
func (b *TestROMBuilder) WithMirroring(m MirrorMode) *TestROMBuilder {
	b.mirroring = m
	return b
}

// WithBattery marks the cartridge RAM as battery backed.
func (b *TestROMBuilder) WithBattery() *TestROMBuilder {
	b.battery = true
	return b
}

// WithTrainer adds a 512-byte trainer.
func (b *TestROMBuilder) WithTrainer(data []uint8) *TestROMBuilder {
	b.trainer = make([]uint8, trainerSize)
	copy(b.trainer, data)
	return b
}

// WithCode places bytes at a CPU address in the 0x8000-0xFFFF window.
func (b *TestROMBuilder) WithCode(address uint16, code ...uint8) *TestROMBuilder {
	b.prg[address] = append([]uint8(nil), code...)
	return b
}

// WithCHR sets the leading bytes of pattern memory.
func (b *TestROMBuilder) WithCHR(data []uint8) *TestROMBuilder {
	b.chr = append([]uint8(nil), data...)
	return b
}

// WithResetVector sets the reset vector.
func (b *TestROMBuilder) WithResetVector(address uint16) *TestROMBuilder {
	b.reset = address
	return b
}

// WithNMIVector sets the NMI vector.
func (b *TestROMBuilder) WithNMIVector(address uint16) *TestROMBuilder {
	b.nmiVector = address
	return b
}

// WithIRQVector sets the IRQ/BRK vector.
func (b *TestROMBuilder) WithIRQVector(address uint16) *TestROMBuilder {
	b.irqVector = address
	return b
}

// Truncated cuts the built image down to n bytes.
func (b *TestROMBuilder) Truncated(n int) *TestROMBuilder {
	b.truncateTo = n
	return b
}

// Build returns the iNES image.
func (b *TestROMBuilder) Build() ([]byte, error) {
	var buf bytes.Buffer

	flags6 := b.mapperID << 4
	switch b.mirroring {
	case MirrorVertical:
		flags6 |= 0x01
	case MirrorFourScreen:
		flags6 |= 0x08
	}
	if b.battery {
		flags6 |= 0x02
	}
	if b.trainer != nil {
		flags6 |= 0x04
	}

	buf.Write([]byte{'N', 'E', 'S', 0x1A, b.prgBanks, b.chrBanks, flags6, b.mapperID & 0xF0})
	buf.Write(make([]byte, 8))
	buf.Write(b.trainer)

	prg := make([]uint8, int(b.prgBanks)*prgBankSize)
	if len(prg) > 0 {
		// the image is seen at 0x8000, and a 16KB image is mirrored at 0xC000
		window := uint16(len(prg) - 1)
		for address, code := range b.prg {
			for i, v := range code {
				offset := int((address + uint16(i) - 0x8000) & window)
				if offset >= len(prg) {
					return nil, fmt.Errorf("code at %#04x does not fit in %d PRG banks", address, b.prgBanks)
				}
				prg[offset] = v
			}
		}
		vectors := len(prg) - 6
		putWord(prg[vectors:], b.nmiVector)
		putWord(prg[vectors+2:], b.reset)
		putWord(prg[vectors+4:], b.irqVector)
	}
	buf.Write(prg)

	if b.chrBanks > 0 {
		chr := make([]uint8, int(b.chrBanks)*chrBankSize)
		copy(chr, b.chr)
		buf.Write(chr)
	}

	out := buf.Bytes()
	if b.truncateTo > 0 && b.truncateTo < len(out) {
		out = out[:b.truncateTo]
	}
	return out, nil
}

// BuildCartridge builds the image and loads it.
func (b *TestROMBuilder) BuildCartridge() (*Cartridge, error) {
	data, err := b.Build()
	if err != nil {
		return nil, err
	}
	return LoadBytes(data)
}

func putWord(dst []uint8, v uint16) {
	dst[0] = uint8(v)
	dst[1] = uint8(v >> 8)
}
