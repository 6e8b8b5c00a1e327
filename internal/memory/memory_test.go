package memory

import (
	"testing"
)

// MockPPU implements PPU for testing
type MockPPU struct {
	registers  [8]uint8
	readCalls  []uint16
	writeCalls []RegisterWrite
	oam        []uint8
}

type RegisterWrite struct {
	Address uint16
	Value   uint8
}

func (m *MockPPU) ReadRegister(address uint16) uint8 {
	m.readCalls = append(m.readCalls, address)
	return m.registers[address&0x7]
}

func (m *MockPPU) WriteRegister(address uint16, value uint8) {
	m.writeCalls = append(m.writeCalls, RegisterWrite{Address: address, Value: value})
	m.registers[address&0x7] = value
	if address == 0x2004 {
		m.oam = append(m.oam, value)
	}
}

// MockAPU implements APU for testing
type MockAPU struct {
	writeCalls []RegisterWrite
}

func (m *MockAPU) WriteRegister(address uint16, value uint8) {
	m.writeCalls = append(m.writeCalls, RegisterWrite{Address: address, Value: value})
}

func (m *MockAPU) ReadStatus() uint8 {
	return 0
}

// MockInput implements Input for testing
type MockInput struct {
	value      uint8
	readCalls  []uint16
	writeCalls []RegisterWrite
}

func (m *MockInput) Read(address uint16) uint8 {
	m.readCalls = append(m.readCalls, address)
	return m.value
}

func (m *MockInput) Write(address uint16, value uint8) {
	m.writeCalls = append(m.writeCalls, RegisterWrite{Address: address, Value: value})
}

// MockCartridge implements Cartridge for testing
type MockCartridge struct {
	banks int
	prg   [0x8000]uint8
	ram   [0x2000]uint8
}

func (m *MockCartridge) ProgramBanks() int { return m.banks }

func (m *MockCartridge) ReadPRG(offset uint16) uint8 {
	return m.prg[offset]
}

func (m *MockCartridge) ReadRAM(offset uint16) uint8 {
	return m.ram[offset]
}

func (m *MockCartridge) WriteRAM(offset uint16, value uint8) {
	m.ram[offset] = value
}

type testMemory struct {
	*Memory
	ppu   *MockPPU
	apu   *MockAPU
	input *MockInput
	cart  *MockCartridge
}

func newTestMemory(banks int) testMemory {
	tm := testMemory{
		ppu:   &MockPPU{},
		apu:   &MockAPU{},
		input: &MockInput{},
		cart:  &MockCartridge{banks: banks},
	}
	tm.Memory = New(tm.ppu, tm.apu, tm.input, tm.cart)
	return tm
}

func TestRAM_MirroredEvery2KB(t *testing.T) {
	mem := newTestMemory(1)

	mem.Write(0x0123, 0x42)
	for _, mirror := range []uint16{0x0123, 0x0923, 0x1123, 0x1923} {
		if got := mem.Read(mirror); got != 0x42 {
			t.Errorf("Read(%#04x) = %#02x, want 0x42", mirror, got)
		}
	}

	mem.Write(0x1FFF, 0x99)
	if got := mem.Read(0x07FF); got != 0x99 {
		t.Errorf("Read(0x07FF) = %#02x, want 0x99", got)
	}
}

func TestStoreThenLoad_RoundTrips(t *testing.T) {
	mem := newTestMemory(1)
	mem.Write(0x1234, 0xF9)
	if got := mem.Read(0x1234); got != 0xF9 {
		t.Errorf("Read(0x1234) = %#02x, want 0xF9", got)
	}
}

func TestPPURegisters_MirroredEvery8Bytes(t *testing.T) {
	tests := []struct {
		address uint16
		want    uint16
	}{
		{0x2000, 0x2000},
		{0x2007, 0x2007},
		{0x2008, 0x2000},
		{0x200A, 0x2002},
		{0x3456, 0x2006},
		{0x3FFF, 0x2007},
	}

	for _, tt := range tests {
		mem := newTestMemory(1)
		mem.Write(tt.address, 0x11)
		mem.Read(tt.address)

		if len(mem.ppu.writeCalls) != 1 || mem.ppu.writeCalls[0].Address != tt.want {
			t.Errorf("Write(%#04x) reached %v, want register %#04x", tt.address, mem.ppu.writeCalls, tt.want)
		}
		if len(mem.ppu.readCalls) != 1 || mem.ppu.readCalls[0] != tt.want {
			t.Errorf("Read(%#04x) reached %v, want register %#04x", tt.address, mem.ppu.readCalls, tt.want)
		}
	}
}

func TestControllerPorts(t *testing.T) {
	mem := newTestMemory(1)
	mem.input.value = 1

	mem.Write(0x4016, 1)
	if len(mem.input.writeCalls) != 1 || mem.input.writeCalls[0] != (RegisterWrite{0x4016, 1}) {
		t.Errorf("strobe write not routed to input: %v", mem.input.writeCalls)
	}
	if got := mem.Read(0x4016); got != 1 {
		t.Errorf("Read(0x4016) = %d, want 1", got)
	}
	if got := mem.Read(0x4017); got != 1 {
		t.Errorf("Read(0x4017) = %d, want 1", got)
	}

	// 0x4017 writes belong to the APU frame counter
	mem.Write(0x4017, 0x40)
	if len(mem.input.writeCalls) != 1 {
		t.Errorf("0x4017 write reached input")
	}
	if n := len(mem.apu.writeCalls); n != 1 || mem.apu.writeCalls[0].Address != 0x4017 {
		t.Errorf("0x4017 write not routed to APU: %v", mem.apu.writeCalls)
	}
}

func TestUnmappedRegion_ReadsZeroDropsWrites(t *testing.T) {
	mem := newTestMemory(1)

	for _, address := range []uint16{0x4000, 0x4013, 0x4018, 0x4020, 0x5000, 0x5FFF} {
		mem.Write(address, 0xFF)
		if got := mem.Read(address); got != 0 {
			t.Errorf("Read(%#04x) = %#02x, want 0", address, got)
		}
	}
	if len(mem.ppu.writeCalls) != 0 || len(mem.input.writeCalls) != 0 {
		t.Error("unmapped writes reached a device")
	}
}

func TestCartridgeRAM(t *testing.T) {
	mem := newTestMemory(1)
	mem.Write(0x6000, 0x12)
	mem.Write(0x7FFF, 0x34)

	if mem.cart.ram[0] != 0x12 || mem.cart.ram[0x1FFF] != 0x34 {
		t.Errorf("cartridge RAM not written: %#02x %#02x", mem.cart.ram[0], mem.cart.ram[0x1FFF])
	}
	if got := mem.Read(0x7FFF); got != 0x34 {
		t.Errorf("Read(0x7FFF) = %#02x, want 0x34", got)
	}
}

func TestProgramROM_BankMasking(t *testing.T) {
	t.Run("16KB mirrored", func(t *testing.T) {
		mem := newTestMemory(1)
		mem.cart.prg[0x0000] = 0xAA
		mem.cart.prg[0x3FFC] = 0xBB

		if got := mem.Read(0x8000); got != 0xAA {
			t.Errorf("Read(0x8000) = %#02x, want 0xAA", got)
		}
		if got := mem.Read(0xC000); got != 0xAA {
			t.Errorf("Read(0xC000) = %#02x, want 0xAA", got)
		}
		if got := mem.Read(0xFFFC); got != 0xBB {
			t.Errorf("Read(0xFFFC) = %#02x, want 0xBB", got)
		}
	})

	t.Run("32KB linear", func(t *testing.T) {
		mem := newTestMemory(2)
		mem.cart.prg[0x0000] = 0xAA
		mem.cart.prg[0x4000] = 0xCC

		if got := mem.Read(0x8000); got != 0xAA {
			t.Errorf("Read(0x8000) = %#02x, want 0xAA", got)
		}
		if got := mem.Read(0xC000); got != 0xCC {
			t.Errorf("Read(0xC000) = %#02x, want 0xCC", got)
		}
	})

	t.Run("writes dropped", func(t *testing.T) {
		mem := newTestMemory(2)
		mem.Write(0x8000, 0x55)
		if got := mem.Read(0x8000); got != 0 {
			t.Errorf("ROM changed by write: %#02x", got)
		}
	})
}

func TestPeek_HasNoSideEffects(t *testing.T) {
	mem := newTestMemory(1)
	mem.Write(0x0010, 0x77)
	mem.cart.prg[0x0001] = 0x88

	if got := mem.Peek(0x0810); got != 0x77 {
		t.Errorf("Peek(0x0810) = %#02x, want 0x77", got)
	}
	if got := mem.Peek(0xC001); got != 0x88 {
		t.Errorf("Peek(0xC001) = %#02x, want 0x88", got)
	}
	mem.Peek(0x2002)
	mem.Peek(0x4016)
	if len(mem.ppu.readCalls) != 0 || len(mem.input.readCalls) != 0 {
		t.Error("Peek touched a device register")
	}
}

func TestReset_ClearsRAM(t *testing.T) {
	mem := newTestMemory(1)
	mem.Write(0x0000, 0x01)
	mem.Reset()
	if got := mem.Read(0x0000); got != 0 {
		t.Errorf("Read(0) after Reset = %#02x, want 0", got)
	}
}
