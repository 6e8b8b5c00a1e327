package graphics

import (
	"fmt"
	"path/filepath"

	"sen/internal/logger"
)

// HeadlessBackend implements the Backend interface for headless operation
type HeadlessBackend struct {
	initialized bool
	config      Config
}

// HeadlessWindow keeps the latest frame in memory and optionally writes
// chosen frames to disk as PNG files.
type HeadlessWindow struct {
	title      string
	width      int
	height     int
	running    bool
	frameCount int
	lastFrame  []uint8
	outputPath string
	dumpFrames map[int]bool
}

// NewHeadlessBackend creates a new headless graphics backend
func NewHeadlessBackend() Backend {
	return &HeadlessBackend{}
}

// Initialize initializes the headless backend
func (b *HeadlessBackend) Initialize(config Config) error {
	if b.initialized {
		return fmt.Errorf("headless backend already initialized")
	}
	b.config = config
	b.initialized = true
	return nil
}

// CreateWindow creates a headless "window" (no actual window)
func (b *HeadlessBackend) CreateWindow(title string, width, height int) (Window, error) {
	if !b.initialized {
		return nil, fmt.Errorf("backend not initialized")
	}

	return &HeadlessWindow{
		title:      title,
		width:      width,
		height:     height,
		running:    true,
		outputPath: "frames",
		dumpFrames: make(map[int]bool),
	}, nil
}

// Cleanup releases all headless resources
func (b *HeadlessBackend) Cleanup() error {
	b.initialized = false
	return nil
}

// IsHeadless returns true (this is a headless backend)
func (b *HeadlessBackend) IsHeadless() bool {
	return true
}

// GetName returns the backend name
func (b *HeadlessBackend) GetName() string {
	return "Headless"
}

// SetTitle sets the window title (for logging purposes)
func (w *HeadlessWindow) SetTitle(title string) {
	w.title = title
}

// GetSize returns window dimensions
func (w *HeadlessWindow) GetSize() (width, height int) {
	return w.width, w.height
}

// ShouldClose returns true if window should close
func (w *HeadlessWindow) ShouldClose() bool {
	return !w.running
}

// PollEvents returns empty events list (no input in headless mode)
func (w *HeadlessWindow) PollEvents() []InputEvent {
	return nil
}

// RenderFrame keeps a copy of the frame and writes it out if its number
// was requested with DumpFrames.
func (w *HeadlessWindow) RenderFrame(frame []uint8) error {
	w.frameCount++
	w.lastFrame = append(w.lastFrame[:0], frame...)

	if w.dumpFrames[w.frameCount] {
		path := filepath.Join(w.outputPath, fmt.Sprintf("frame_%03d.png", w.frameCount))
		if err := SaveScreenshot(path, frame, 1); err != nil {
			return err
		}
		logger.Logf(logger.TagGraphics, "frame %d written to %s", w.frameCount, path)
	}
	return nil
}

// Cleanup releases window resources
func (w *HeadlessWindow) Cleanup() error {
	w.running = false
	return nil
}

// SetOutputPath sets the directory for frame dumps
func (w *HeadlessWindow) SetOutputPath(path string) {
	w.outputPath = path
}

// DumpFrames requests that the given frame numbers, counted from 1, be
// written to the output path.
func (w *HeadlessWindow) DumpFrames(frames ...int) {
	for _, f := range frames {
		w.dumpFrames[f] = true
	}
}

// GetFrameCount returns the number of frames rendered
func (w *HeadlessWindow) GetFrameCount() int {
	return w.frameCount
}

// LastFrame returns a copy of the most recent frame, or nil.
func (w *HeadlessWindow) LastFrame() []uint8 {
	if w.lastFrame == nil {
		return nil
	}
	return append([]uint8(nil), w.lastFrame...)
}
