package apu

import "testing"

func TestWriteRegister_LatchesValue(t *testing.T) {
	a := New()
	a.WriteRegister(0x4000, 0xBF)
	a.WriteRegister(0x4017, 0x40)

	if got := a.ReadRegister(0x4000); got != 0xBF {
		t.Errorf("ReadRegister(0x4000) = %#02x, want 0xBF", got)
	}
	if got := a.ReadRegister(0x4017); got != 0x40 {
		t.Errorf("ReadRegister(0x4017) = %#02x, want 0x40", got)
	}

	a.Reset()
	if got := a.ReadRegister(0x4000); got != 0 {
		t.Errorf("Reset should clear registers, got %#02x", got)
	}
}

func TestOutOfRangeAccessIsIgnored(t *testing.T) {
	a := New()
	a.WriteRegister(0x4018, 0xFF)
	if got := a.ReadRegister(0x4018); got != 0 {
		t.Errorf("ReadRegister(0x4018) = %#02x, want 0", got)
	}
	if got := a.ReadStatus(); got != 0 {
		t.Errorf("ReadStatus() = %#02x, want 0", got)
	}
}
