package main

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"sen/internal/cpu"
	"sen/internal/logger"
)

func TestFailureReport_DumpsRecentLog(t *testing.T) {
	logger.Clear()
	defer logger.Clear()
	for i := 0; i < failureTail+5; i++ {
		logger.Logf(logger.TagMemory, "write %d dropped", i)
	}

	var sb strings.Builder
	err := fmt.Errorf("emulation stopped: %w", &cpu.OpcodeError{Opcode: 0x02, PC: 0x8001})
	msg := failureReport(&sb, err)

	out := sb.String()
	if !strings.Contains(out, fmt.Sprintf("write %d dropped", failureTail+4)) {
		t.Errorf("latest entry missing from report:\n%s", out)
	}
	if strings.Contains(out, "write 4 dropped\n") {
		t.Errorf("report should hold only the last %d entries:\n%s", failureTail, out)
	}
	if !strings.Contains(msg, "0x02") || !strings.Contains(msg, "0x8001") {
		t.Errorf("message should name opcode and PC: %q", msg)
	}
}

func TestFailureReport_OtherErrors(t *testing.T) {
	msg := failureReport(&strings.Builder{}, errors.New("render failed"))
	if msg != "Emulation failed: render failed" {
		t.Errorf("failureReport() = %q", msg)
	}
}
