// Package cartridge implements iNES ROM loading for NROM cartridges.
package cartridge

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"sen/internal/logger"
)

const (
	prgBankSize = 0x4000
	chrBankSize = 0x2000
	ramSize     = 0x2000
	trainerSize = 512
)

var (
	ErrBadMagic          = errors.New("not an iNES image")
	ErrNoProgram         = errors.New("iNES image has no program ROM")
	ErrUnsupportedMapper = errors.New("unsupported mapper")
	ErrTruncated         = errors.New("iNES image is truncated")
)

// MirrorMode represents nametable mirroring mode
type MirrorMode uint8

const (
	MirrorHorizontal MirrorMode = iota
	MirrorVertical
	MirrorFourScreen
)

func (m MirrorMode) String() string {
	switch m {
	case MirrorHorizontal:
		return "horizontal"
	case MirrorVertical:
		return "vertical"
	case MirrorFourScreen:
		return "four-screen"
	}
	return fmt.Sprintf("MirrorMode(%d)", uint8(m))
}

// iNES header structure
type iNESHeader struct {
	Magic      [4]uint8
	PRGROMSize uint8 // in 16KB units
	CHRROMSize uint8 // in 8KB units
	Flags6     uint8
	Flags7     uint8
	PRGRAMSize uint8
	TVSystem1  uint8
	TVSystem2  uint8
	Padding    [5]uint8
}

// Cartridge holds the program and pattern memory of an NROM cartridge
// together with its 8KB RAM window.
type Cartridge struct {
	header iNESHeader

	prg []uint8
	chr []uint8
	ram [ramSize]uint8

	mapperID   uint8
	mirror     MirrorMode
	hasBattery bool
	hasCHRRAM  bool
}

// LoadFile loads a cartridge from an iNES file.
func LoadFile(filename string) (*Cartridge, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	cart, err := Load(file)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", filename, err)
	}
	return cart, nil
}

// LoadBytes loads a cartridge from an in-memory iNES image.
func LoadBytes(data []byte) (*Cartridge, error) {
	return Load(bytes.NewReader(data))
}

// Load parses an iNES image.
func Load(r io.Reader) (*Cartridge, error) {
	var header iNESHeader
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, truncated(err)
	}

	if string(header.Magic[:]) != "NES\x1A" {
		return nil, ErrBadMagic
	}
	if header.PRGROMSize == 0 {
		return nil, ErrNoProgram
	}

	cart := &Cartridge{
		header:     header,
		mapperID:   (header.Flags6 >> 4) | (header.Flags7 & 0xF0),
		hasBattery: header.Flags6&0x02 != 0,
	}
	if cart.mapperID != 0 {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedMapper, cart.mapperID)
	}

	switch {
	case header.Flags6&0x08 != 0:
		cart.mirror = MirrorFourScreen
	case header.Flags6&0x01 != 0:
		cart.mirror = MirrorVertical
	default:
		cart.mirror = MirrorHorizontal
	}

	if header.Flags6&0x04 != 0 {
		if _, err := io.CopyN(io.Discard, r, trainerSize); err != nil {
			return nil, truncated(err)
		}
	}

	cart.prg = make([]uint8, int(header.PRGROMSize)*prgBankSize)
	if _, err := io.ReadFull(r, cart.prg); err != nil {
		return nil, truncated(err)
	}

	if header.CHRROMSize == 0 {
		cart.chr = make([]uint8, chrBankSize)
		cart.hasCHRRAM = true
	} else {
		cart.chr = make([]uint8, int(header.CHRROMSize)*chrBankSize)
		if _, err := io.ReadFull(r, cart.chr); err != nil {
			return nil, truncated(err)
		}
	}

	return cart, nil
}

func truncated(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return ErrTruncated
	}
	return err
}

// ProgramBanks is the number of 16KB program ROM banks.
func (c *Cartridge) ProgramBanks() int {
	return int(c.header.PRGROMSize)
}

// PatternBanks is the number of 8KB pattern ROM banks. Zero means the
// cartridge carries pattern RAM.
func (c *Cartridge) PatternBanks() int {
	return int(c.header.CHRROMSize)
}

// Mirroring returns the nametable arrangement wired on the board.
func (c *Cartridge) Mirroring() MirrorMode {
	return c.mirror
}

// HasBattery reports whether the cartridge RAM is battery backed.
func (c *Cartridge) HasBattery() bool {
	return c.hasBattery
}

// ReadPRG reads program ROM. The offset is relative to the start of the
// ROM and has already been folded into the ROM window by the bus.
func (c *Cartridge) ReadPRG(offset uint16) uint8 {
	return c.prg[int(offset)%len(c.prg)]
}

// ReadRAM reads the cartridge RAM window. The address is relative to 0x6000.
func (c *Cartridge) ReadRAM(offset uint16) uint8 {
	return c.ram[offset&(ramSize-1)]
}

// WriteRAM writes the cartridge RAM window. The address is relative to 0x6000.
func (c *Cartridge) WriteRAM(offset uint16, value uint8) {
	c.ram[offset&(ramSize-1)] = value
}

// ReadCHR reads pattern memory.
func (c *Cartridge) ReadCHR(address uint16) uint8 {
	return c.chr[int(address)%len(c.chr)]
}

// WriteCHR writes pattern memory. Writes to pattern ROM are dropped.
func (c *Cartridge) WriteCHR(address uint16, value uint8) {
	if !c.hasCHRRAM {
		logger.Logf(logger.TagCartridge, "write of %#02x to pattern ROM at %#04x dropped", value, address)
		return
	}
	c.chr[int(address)%len(c.chr)] = value
}

// LoadRAM fills the cartridge RAM from a save file. A short save leaves the
// remainder untouched.
func (c *Cartridge) LoadRAM(r io.Reader) error {
	n, err := io.ReadFull(r, c.ram[:])
	if err == io.ErrUnexpectedEOF || err == io.EOF {
		logger.Logf(logger.TagCartridge, "short save file: %d of %d bytes", n, ramSize)
		return nil
	}
	return err
}

// SaveRAM writes the cartridge RAM to w.
func (c *Cartridge) SaveRAM(w io.Writer) error {
	_, err := w.Write(c.ram[:])
	return err
}

func (c *Cartridge) String() string {
	chr := fmt.Sprintf("%dKB CHR ROM", c.PatternBanks()*8)
	if c.hasCHRRAM {
		chr = "8KB CHR RAM"
	}
	s := fmt.Sprintf("mapper %d, %dKB PRG ROM, %s, %s mirroring",
		c.mapperID, c.ProgramBanks()*16, chr, c.mirror)
	if c.hasBattery {
		s += ", battery"
	}
	return s
}
