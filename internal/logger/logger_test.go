package logger

import (
	"strings"
	"testing"
)

func TestLogger_WriteAndTail(t *testing.T) {
	Clear()
	defer Clear()

	var sb strings.Builder
	Write(&sb)
	if sb.String() != "" {
		t.Fatalf("Expected empty log, got %q", sb.String())
	}

	Log("test", "this is a test")
	Log("test2", "this is another test")

	sb.Reset()
	Write(&sb)
	want := "[test] this is a test\n[test2] this is another test\n"
	if sb.String() != want {
		t.Errorf("Write() = %q, want %q", sb.String(), want)
	}

	tests := []struct {
		number int
		want   string
	}{
		{100, want},
		{2, want},
		{1, "[test2] this is another test\n"},
		{0, ""},
	}
	for _, tt := range tests {
		sb.Reset()
		Tail(&sb, tt.number)
		if sb.String() != tt.want {
			t.Errorf("Tail(%d) = %q, want %q", tt.number, sb.String(), tt.want)
		}
	}
}

func TestLogger_CollapsesRepeats(t *testing.T) {
	Clear()
	defer Clear()

	Log("memory", "write to 0x5000")
	Log("memory", "write to 0x5000")
	Log("memory", "write to 0x5000")

	entries := Entries()
	if len(entries) != 1 {
		t.Fatalf("Expected 1 entry, got %d", len(entries))
	}
	if got := entries[0].String(); got != "[memory] write to 0x5000 (repeat x3)" {
		t.Errorf("Unexpected entry text %q", got)
	}
}

func TestLogger_DisabledTagsAreDropped(t *testing.T) {
	Clear()
	defer Clear()
	defer Enable("quiet")

	Disable("quiet")
	if Enabled("quiet") {
		t.Fatal("Expected tag to be disabled")
	}
	Logf("quiet", "value %d", 1)
	if len(Entries()) != 0 {
		t.Errorf("Expected disabled tag to be dropped")
	}

	Enable("quiet")
	Logf("quiet", "value %d", 2)
	if len(Entries()) != 1 {
		t.Errorf("Expected enabled tag to be recorded")
	}
}

func TestLogger_RingIsBounded(t *testing.T) {
	Clear()
	defer Clear()

	for i := 0; i < maxCentral+10; i++ {
		Logf("ring", "entry %d", i)
	}
	entries := Entries()
	if len(entries) != maxCentral {
		t.Fatalf("Expected %d entries, got %d", maxCentral, len(entries))
	}
	if entries[0].Detail != "entry 10" {
		t.Errorf("Expected oldest entries to be discarded, first is %q", entries[0].Detail)
	}
}

func TestLogger_Echo(t *testing.T) {
	Clear()
	defer Clear()

	var sb strings.Builder
	SetEcho(&sb)
	defer SetEcho(nil)

	Log("ppu", "vblank")
	if !strings.Contains(sb.String(), "[ppu] vblank") {
		t.Errorf("Expected echoed entry, got %q", sb.String())
	}
}
