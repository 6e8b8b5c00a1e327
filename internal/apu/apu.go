// Package apu holds the audio unit's register file. Sound generation is not
// emulated: register writes are latched so software that reads back its own
// configuration keeps working, and the status register reads as silent.
package apu

import (
	"sen/internal/logger"
)

const (
	registerBase  = 0x4000
	registerCount = 0x18
	statusAddress = 0x4015
	frameCounter  = 0x4017
)

var registerNames = [registerCount]string{
	"SQ1_VOL", "SQ1_SWEEP", "SQ1_LO", "SQ1_HI",
	"SQ2_VOL", "SQ2_SWEEP", "SQ2_LO", "SQ2_HI",
	"TRI_LINEAR", "", "TRI_LO", "TRI_HI",
	"NOISE_VOL", "", "NOISE_LO", "NOISE_HI",
	"DMC_FREQ", "DMC_RAW", "DMC_START", "DMC_LEN",
	"OAM_DMA", "SND_CHN", "JOY1", "FRAME_COUNTER",
}

// APU represents the audio unit's register file.
type APU struct {
	registers [registerCount]uint8
}

// New creates a new APU instance
func New() *APU {
	return &APU{}
}

// Reset clears every register.
func (apu *APU) Reset() {
	apu.registers = [registerCount]uint8{}
}

// WriteRegister latches a register write.
func (apu *APU) WriteRegister(address uint16, value uint8) {
	i := address - registerBase
	if i >= registerCount {
		logger.Logf(logger.TagAPU, "write of %#02x to %#04x outside the register file", value, address)
		return
	}
	apu.registers[i] = value
	logger.Logf(logger.TagAPU, "%s <- %#02x", registerNames[i], value)
}

// ReadRegister returns the value last written to a register. Nothing here
// drives the pins, so this is for inspection only.
func (apu *APU) ReadRegister(address uint16) uint8 {
	i := address - registerBase
	if i >= registerCount {
		return 0
	}
	return apu.registers[i]
}

// ReadStatus reads $4015. No channel is ever active.
func (apu *APU) ReadStatus() uint8 {
	return 0
}
