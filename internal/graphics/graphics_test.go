package graphics

import (
	"bytes"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"sen/internal/input"
)

// testFrame is black with a red pixel at (0,0) and a green one at (255,239).
func testFrame() []uint8 {
	frame := make([]uint8, FrameWidth*FrameHeight*3)
	frame[0] = 0xFF
	last := len(frame) - 3
	frame[last+1] = 0xFF
	return frame
}

func TestCreateBackend(t *testing.T) {
	for _, bt := range []BackendType{BackendHeadless, BackendTerminal, BackendEbitengine} {
		b, err := CreateBackend(bt)
		if err != nil || b == nil {
			t.Errorf("CreateBackend(%q) = %v, %v", bt, b, err)
		}
	}
	if _, err := CreateBackend("sdl2"); err == nil {
		t.Error("Expected error for unknown backend")
	}
}

func TestControllerButton(t *testing.T) {
	tests := []struct {
		key    Key
		player int
		button input.Button
	}{
		{KeyJ, 1, input.ButtonA},
		{KeyZ, 1, input.ButtonA},
		{KeyX, 1, input.ButtonB},
		{KeyEnter, 1, input.ButtonStart},
		{KeySpace, 1, input.ButtonSelect},
		{KeyW, 1, input.ButtonUp},
		{KeyRight, 1, input.ButtonRight},
		{Key5, 2, input.ButtonA},
		{Key8, 2, input.ButtonSelect},
	}
	for _, tt := range tests {
		player, button, ok := ControllerButton(tt.key)
		if !ok || player != tt.player || button != tt.button {
			t.Errorf("ControllerButton(%d) = %d, %v, %v; want %d, %v", tt.key, player, button, ok, tt.player, tt.button)
		}
	}

	if _, _, ok := ControllerButton(KeyF12); ok {
		t.Error("F12 should not map to a controller")
	}
	if ev := keyEvent(KeyF12, true); ev.Type != InputEventTypeKey || ev.Key != KeyF12 {
		t.Errorf("keyEvent(F12) = %+v", ev)
	}
	if ev := keyEvent(KeyK, false); ev.Type != InputEventTypeButton || ev.Button != input.ButtonB || ev.Pressed {
		t.Errorf("keyEvent(K) = %+v", ev)
	}
}

func TestHeadlessWindow(t *testing.T) {
	backend := NewHeadlessBackend()
	if _, err := backend.CreateWindow("x", 1, 1); err == nil {
		t.Error("CreateWindow before Initialize should fail")
	}
	if err := backend.Initialize(Config{Headless: true}); err != nil {
		t.Fatal(err)
	}
	if err := backend.Initialize(Config{}); err == nil {
		t.Error("Second Initialize should fail")
	}
	if !backend.IsHeadless() {
		t.Error("Expected headless")
	}

	window, err := backend.CreateWindow("test", 256, 240)
	if err != nil {
		t.Fatal(err)
	}
	hw := window.(*HeadlessWindow)
	dir := t.TempDir()
	hw.SetOutputPath(dir)
	hw.DumpFrames(2)

	if hw.LastFrame() != nil {
		t.Error("Expected no frame before rendering")
	}

	frame := testFrame()
	for i := 0; i < 3; i++ {
		if err := hw.RenderFrame(frame); err != nil {
			t.Fatalf("RenderFrame() failed: %v", err)
		}
	}
	if hw.GetFrameCount() != 3 {
		t.Errorf("Expected 3 frames, got %d", hw.GetFrameCount())
	}
	if last := hw.LastFrame(); !bytes.Equal(last, frame) {
		t.Error("LastFrame() does not match the rendered frame")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "frame_002.png" {
		t.Errorf("Unexpected dump files %v", entries)
	}

	if err := hw.Cleanup(); err != nil || !hw.ShouldClose() {
		t.Error("Cleanup should close the window")
	}
}

func TestSaveScreenshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shots", "frame.png")
	if err := SaveScreenshot(path, testFrame(), 2); err != nil {
		t.Fatalf("SaveScreenshot() failed: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}

	if b := img.Bounds(); b.Dx() != 512 || b.Dy() != 480 {
		t.Fatalf("Image size %v, want 512x480", b)
	}
	for _, p := range [][2]int{{0, 0}, {1, 1}} {
		r, g, b, a := img.At(p[0], p[1]).RGBA()
		if r>>8 != 0xFF || g != 0 || b != 0 || a>>8 != 0xFF {
			t.Errorf("pixel %v = %d %d %d %d, want red", p, r>>8, g>>8, b>>8, a>>8)
		}
	}
	if _, g, _, _ := img.At(511, 479).RGBA(); g>>8 != 0xFF {
		t.Error("Expected green in the bottom-right corner")
	}
}

func TestVideoProcessor(t *testing.T) {
	frame := []uint8{100, 150, 200}

	img := FrameToImage(frame)
	if got := img.Pix[:4]; !bytes.Equal(got, []uint8{100, 150, 200, 255}) {
		t.Errorf("identity conversion = %v", got)
	}

	dst := NewFrameImage()
	NewVideoProcessor(2.0, 1.0, 1.0).ProcessFrame(frame, dst)
	if got := dst.Pix[:4]; got[0] < 199 || got[0] > 200 || got[1] != 255 || got[2] != 255 || got[3] != 255 {
		t.Errorf("brightness 2.0 = %v", got)
	}

	NewVideoProcessor(1.0, 1.0, 0.0).ProcessFrame(frame, dst)
	if dst.Pix[0] != dst.Pix[1] || dst.Pix[1] != dst.Pix[2] {
		t.Errorf("saturation 0 should be grey, got %v", dst.Pix[:3])
	}
}

func TestTerminalWindow(t *testing.T) {
	var buf bytes.Buffer
	w := newTerminalWindow(&buf, 4, 3)
	if cols, rows := w.GetSize(); cols != 4 || rows != 2 {
		t.Errorf("GetSize() = %d, %d; want 4, 2", cols, rows)
	}

	if err := w.RenderFrame(testFrame()); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if n := strings.Count(out, "▀"); n != 8 {
		t.Errorf("Expected 8 cells, got %d", n)
	}
	if !strings.HasPrefix(out, "\033[H\033[38;2;255;0;0m") {
		t.Errorf("First cell should be red, got %q", out[:min(len(out), 40)])
	}
}
