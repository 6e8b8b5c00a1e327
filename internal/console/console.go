// Package console wires the processor, picture unit, memory map and
// controllers together and drives them in lockstep.
package console

import (
	"context"
	"fmt"
	"io"

	"sen/internal/apu"
	"sen/internal/cartridge"
	"sen/internal/cpu"
	"sen/internal/input"
	"sen/internal/logger"
	"sen/internal/memory"
	"sen/internal/ppu"
)

// Console connects all NES components together
type Console struct {
	CPU    *cpu.CPU
	PPU    *ppu.PPU
	APU    *apu.APU
	Memory *memory.Memory
	Input  *input.InputState

	cart *cartridge.Cartridge

	// Execution logging for testing
	executionLog   []ExecutionEvent
	loggingEnabled bool
}

// ExecutionEvent records one call to Step.
type ExecutionEvent struct {
	PC        uint16
	Opcode    uint8
	CPUCycles uint64
	Frame     uint64
	Scanline  int
	NMI       bool
}

// New builds a console around cart and resets it.
func New(cart *cartridge.Cartridge) *Console {
	c := &Console{
		PPU:   ppu.New(cart),
		APU:   apu.New(),
		Input: input.NewInputState(),
		cart:  cart,
	}
	c.Memory = memory.New(c.PPU, c.APU, c.Input, cart)
	c.CPU = cpu.New(c.Memory)

	logger.Logf(logger.TagConsole, "inserted %s", cart)
	c.Reset()
	return c
}

// Reset resets all components to their initial state. Work RAM is cleared.
func (c *Console) Reset() {
	c.Memory.Reset()
	c.PPU.Reset()
	c.APU.Reset()
	c.Input.Reset()
	c.CPU.Reset()
	c.executionLog = c.executionLog[:0]
}

// SetTrace writes a line per executed instruction to w. A nil writer stops
// tracing.
func (c *Console) SetTrace(w io.Writer) {
	c.CPU.SetTrace(w)
}

// Step executes one CPU instruction, lets the picture unit catch up and
// delivers a non-maskable interrupt if the picture unit raised one.
func (c *Console) Step() (ppu.StepResult, error) {
	pc := c.CPU.PC

	if _, err := c.CPU.Step(); err != nil {
		return ppu.StepResult{}, err
	}

	result := c.PPU.Step(c.CPU.Cycles)
	if result.Interrupt {
		c.CPU.NMI()
	}

	if c.loggingEnabled {
		c.executionLog = append(c.executionLog, ExecutionEvent{
			PC:        pc,
			Opcode:    c.Memory.Peek(pc),
			CPUCycles: c.CPU.Cycles,
			Frame:     c.PPU.Frame(),
			Scanline:  c.PPU.Scanline(),
			NMI:       result.Interrupt,
		})
	}

	return result, nil
}

// StepFrame steps until the picture unit completes a frame.
func (c *Console) StepFrame() error {
	for {
		result, err := c.Step()
		if err != nil {
			return err
		}
		if result.NewFrame {
			return nil
		}
	}
}

// Run emulates frame after frame, handing each finished frame to onFrame,
// until ctx is done or an error occurs. Cancellation is not an error.
func (c *Console) Run(ctx context.Context, onFrame func(frame []byte) error) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		if err := c.StepFrame(); err != nil {
			return fmt.Errorf("frame %d: %w", c.PPU.Frame(), err)
		}
		if onFrame != nil {
			if err := onFrame(c.Frame()); err != nil {
				return err
			}
		}
	}
}

// Frame returns the picture unit's frame buffer, 256x240 RGB triples.
func (c *Console) Frame() []byte {
	return c.PPU.FrameBuffer()
}

// Controller returns controller 1 or 2, or nil for any other port number.
func (c *Console) Controller(n int) *input.Controller {
	switch n {
	case 1:
		return c.Input.Controller1
	case 2:
		return c.Input.Controller2
	}
	return nil
}

// Cartridge returns the inserted cartridge.
func (c *Console) Cartridge() *cartridge.Cartridge {
	return c.cart
}

// State is a snapshot of the processor and picture unit counters.
type State struct {
	PC       uint16
	A, X, Y  uint8
	SP       uint8
	P        uint8
	Cycles   uint64
	Frame    uint64
	Scanline int
}

// State returns a snapshot of the current machine state.
func (c *Console) State() State {
	return State{
		PC:       c.CPU.PC,
		A:        c.CPU.A,
		X:        c.CPU.X,
		Y:        c.CPU.Y,
		SP:       c.CPU.SP,
		P:        c.CPU.Status(),
		Cycles:   c.CPU.Cycles,
		Frame:    c.PPU.Frame(),
		Scanline: c.PPU.Scanline(),
	}
}

func (s State) String() string {
	return fmt.Sprintf("PC:%04X A:%02X X:%02X Y:%02X P:%02X SP:%02X CYC:%d frame:%d line:%d",
		s.PC, s.A, s.X, s.Y, s.P, s.SP, s.Cycles, s.Frame, s.Scanline)
}

// ExecutionLog returns the events recorded since logging was enabled.
func (c *Console) ExecutionLog() []ExecutionEvent {
	return c.executionLog
}

// EnableExecutionLogging starts recording an event per Step.
func (c *Console) EnableExecutionLogging() {
	c.loggingEnabled = true
}

// DisableExecutionLogging stops recording.
func (c *Console) DisableExecutionLogging() {
	c.loggingEnabled = false
}
