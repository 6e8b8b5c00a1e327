package memory

import "testing"

func TestOAMDMA_Copies256BytesFromPage(t *testing.T) {
	mem := newTestMemory(1)
	for i := 0; i < 256; i++ {
		mem.Write(0x0200+uint16(i), uint8(i)^0x5A)
	}

	mem.Write(0x4014, 0x02)

	if len(mem.ppu.oam) != 256 {
		t.Fatalf("Expected 256 OAM writes, got %d", len(mem.ppu.oam))
	}
	for i, v := range mem.ppu.oam {
		if v != uint8(i)^0x5A {
			t.Errorf("OAM[%d] = %#02x, want %#02x", i, v, uint8(i)^0x5A)
		}
	}
}

func TestOAMDMA_SourceUsesBusMirroring(t *testing.T) {
	mem := newTestMemory(1)
	mem.Write(0x0300, 0xAB)

	// page 0x0B is a mirror of page 0x03
	mem.Write(0x4014, 0x0B)
	if mem.ppu.oam[0] != 0xAB {
		t.Errorf("OAM[0] = %#02x, want 0xAB", mem.ppu.oam[0])
	}
}

func TestStall(t *testing.T) {
	tests := []struct {
		name  string
		cycle uint64
		want  uint64
	}{
		{"even cycle", 1000, 513},
		{"odd cycle", 1001, 514},
		{"zero", 0, 513},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mem := newTestMemory(1)
			if got := mem.Stall(tt.cycle); got != 0 {
				t.Fatalf("Stall() without DMA = %d, want 0", got)
			}

			mem.Write(0x4014, 0x00)
			if got := mem.Stall(tt.cycle); got != tt.want {
				t.Errorf("Stall(%d) = %d, want %d", tt.cycle, got, tt.want)
			}
			if got := mem.Stall(tt.cycle); got != 0 {
				t.Errorf("Stall() must be claimed once, got %d", got)
			}
		})
	}
}
