// Package ppu implements the picture unit: its CPU-visible registers, video
// memory and a scanline renderer producing an RGB frame.
package ppu

import (
	"sen/internal/cartridge"
	"sen/internal/logger"
)

// Frame dimensions in pixels.
const (
	Width  = 256
	Height = 240
)

const (
	dotsPerScanline   = 341
	visibleScanlines  = 240
	vblankScanline    = 241
	preRenderScanline = 261
	scanlinesPerFrame = 262
)

// PPUCTRL bits
const (
	ctrlNametable       = 0x03
	ctrlIncrement32     = 0x04
	ctrlSpriteTable     = 0x08
	ctrlBackgroundTable = 0x10
	ctrlSpriteSize16    = 0x20
	ctrlNMI             = 0x80
)

// PPUMASK bits
const (
	maskBackgroundLeft = 0x02
	maskSpritesLeft    = 0x04
	maskBackground     = 0x08
	maskSprites        = 0x10
)

// PPUSTATUS bits
const (
	statusOverflow = 0x20
	statusSprite0  = 0x40
	statusVBlank   = 0x80
)

// PatternMemory is the cartridge side of the picture unit's address space.
type PatternMemory interface {
	ReadCHR(address uint16) uint8
	WriteCHR(address uint16, value uint8)
	Mirroring() cartridge.MirrorMode
}

// StepResult reports what happened while the picture unit caught up.
type StepResult struct {
	// a frame was completed
	NewFrame bool

	// the CPU should take a non-maskable interrupt
	Interrupt bool
}

// PPU represents the 2C02 picture unit
type PPU struct {
	ctrl    uint8
	mask    uint8
	status  uint8
	oamAddr uint8

	// loopy registers: current and temporary VRAM address, fine X scroll
	// and the write toggle shared by PPUSCROLL and PPUADDR
	v uint16
	t uint16
	x uint8
	w bool

	readBuffer uint8

	oam        [256]uint8
	nametables [0x800]uint8
	palette    [32]uint8
	patterns   PatternMemory

	scanline int
	frame    uint64

	// dots elapsed since reset, compared against 3 dots per CPU cycle
	dots uint64

	// vertical scroll latched at the start of the frame
	frameScrollY int

	// NMI enabled while vblank was already set
	nmiPending bool

	lineSprites [8]lineSprite
	frameBuffer []uint8
}

// New creates a picture unit reading pattern data from patterns.
func New(patterns PatternMemory) *PPU {
	p := &PPU{
		patterns:    patterns,
		frameBuffer: make([]uint8, Width*Height*3),
	}
	p.Reset()
	return p
}

// Reset returns the registers and timing to their power-on state and clears
// the frame.
func (p *PPU) Reset() {
	p.ctrl = 0
	p.mask = 0
	p.status = 0
	p.oamAddr = 0
	p.v = 0
	p.t = 0
	p.x = 0
	p.w = false
	p.readBuffer = 0
	p.scanline = 0
	p.frame = 0
	p.dots = 0
	p.frameScrollY = 0
	p.nmiPending = false
	p.oam = [256]uint8{}
	p.palette = [32]uint8{}
	for i := range p.frameBuffer {
		p.frameBuffer[i] = 0
	}
}

// Step advances the picture unit one scanline at a time until it has caught
// up with cpuCycles. It never runs ahead of the CPU.
func (p *PPU) Step(cpuCycles uint64) StepResult {
	var result StepResult

	if p.nmiPending {
		p.nmiPending = false
		result.Interrupt = true
	}

	target := cpuCycles * 3
	for p.dots+dotsPerScanline <= target {
		p.dots += dotsPerScanline

		switch {
		case p.scanline < visibleScanlines:
			p.renderScanline(p.scanline)

		case p.scanline == preRenderScanline:
			p.status &^= statusVBlank | statusSprite0 | statusOverflow
			p.latchVerticalScroll()
			p.frame++
			result.NewFrame = true
		}

		p.scanline++
		switch p.scanline {
		case vblankScanline:
			// vblank starts on entering the line
			p.status |= statusVBlank
			if p.ctrl&ctrlNMI != 0 {
				result.Interrupt = true
			}
		case scanlinesPerFrame:
			p.scanline = 0
		}
	}

	return result
}

// ReadRegister reads a CPU-visible register, 0x2000-0x2007.
func (p *PPU) ReadRegister(address uint16) uint8 {
	switch address {
	case 0x2002:
		status := p.status
		p.status &^= statusVBlank
		p.w = false
		return status

	case 0x2004:
		return p.oam[p.oamAddr]

	case 0x2007:
		return p.readData()
	}

	// write-only register
	return 0
}

// WriteRegister writes a CPU-visible register, 0x2000-0x2007.
func (p *PPU) WriteRegister(address uint16, value uint8) {
	switch address {
	case 0x2000:
		if p.ctrl&ctrlNMI == 0 && value&ctrlNMI != 0 && p.status&statusVBlank != 0 {
			p.nmiPending = true
		}
		p.ctrl = value
		p.t = p.t&0xF3FF | uint16(value&ctrlNametable)<<10

	case 0x2001:
		p.mask = value

	case 0x2002:
		logger.Logf(logger.TagPPU, "write of %#02x to read-only status register dropped", value)

	case 0x2003:
		p.oamAddr = value

	case 0x2004:
		p.oam[p.oamAddr] = value
		p.oamAddr++

	case 0x2005:
		p.writeScroll(value)

	case 0x2006:
		p.writeAddress(value)

	case 0x2007:
		p.writeData(value)
	}
}

// writeScroll takes X on the first write and Y on the second.
func (p *PPU) writeScroll(value uint8) {
	if !p.w {
		p.t = p.t&0xFFE0 | uint16(value)>>3
		p.x = value & 0x07
	} else {
		p.t = p.t&0x0C1F | uint16(value&0x07)<<12 | uint16(value&0xF8)<<2
	}
	p.w = !p.w
}

// writeAddress takes the high byte on the first write and the low byte on
// the second, which also moves the VRAM address.
func (p *PPU) writeAddress(value uint8) {
	if !p.w {
		p.t = p.t&0x00FF | uint16(value&0x3F)<<8
	} else {
		p.t = p.t&0xFF00 | uint16(value)
		p.v = p.t
	}
	p.w = !p.w
}

// readData returns the read buffer and refills it, except for palette
// reads which are returned directly. The buffer is then loaded from the
// nametable underneath the palette.
func (p *PPU) readData() uint8 {
	address := p.v & 0x3FFF
	var value uint8
	if address < 0x3F00 {
		value = p.readBuffer
		p.readBuffer = p.ReadVRAM(address)
	} else {
		value = p.ReadVRAM(address)
		p.readBuffer = p.ReadVRAM(address - 0x1000)
	}
	p.incrementAddress()
	return value
}

func (p *PPU) writeData(value uint8) {
	p.WriteVRAM(p.v&0x3FFF, value)
	p.incrementAddress()
}

func (p *PPU) incrementAddress() {
	if p.ctrl&ctrlIncrement32 != 0 {
		p.v += 32
	} else {
		p.v++
	}
	p.v &= 0x7FFF
}

// latchVerticalScroll copies the vertical scroll from the temporary address
// as the pre-render line does.
func (p *PPU) latchVerticalScroll() {
	coarseY := int(p.t>>5) & 0x1F
	fineY := int(p.t>>12) & 0x07
	p.frameScrollY = coarseY*8 + fineY
	if p.t&0x0800 != 0 {
		p.frameScrollY += Height
	}
}

// FrameBuffer returns the current frame as 256x240 RGB triples, row-major.
// The slice is reused across frames.
func (p *PPU) FrameBuffer() []uint8 {
	return p.frameBuffer
}

// Frame is the number of completed frames.
func (p *PPU) Frame() uint64 {
	return p.frame
}

// Scanline is the next scanline to be processed.
func (p *PPU) Scanline() int {
	return p.scanline
}
