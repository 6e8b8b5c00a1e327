package graphics

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

// TerminalBackend renders frames as coloured half-block characters
type TerminalBackend struct {
	initialized bool
	config      Config
}

// TerminalWindow draws into a terminal, two picture rows per text row
type TerminalWindow struct {
	title   string
	cols    int
	rows    int
	running bool
	out     io.Writer
}

// NewTerminalBackend creates a new terminal graphics backend
func NewTerminalBackend() Backend {
	return &TerminalBackend{}
}

// Initialize fails when standard output is not a terminal
func (b *TerminalBackend) Initialize(config Config) error {
	if b.initialized {
		return fmt.Errorf("terminal backend already initialized")
	}
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("terminal backend: standard output is not a terminal")
	}
	b.config = config
	b.initialized = true
	return nil
}

// CreateWindow sizes the output to the terminal. The width and height
// arguments are ignored.
func (b *TerminalBackend) CreateWindow(title string, width, height int) (Window, error) {
	if !b.initialized {
		return nil, fmt.Errorf("backend not initialized")
	}

	cols, rows, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return nil, fmt.Errorf("terminal backend: %w", err)
	}
	w := newTerminalWindow(os.Stdout, cols, rows)
	w.SetTitle(title)
	return w, nil
}

// Cleanup releases all terminal resources
func (b *TerminalBackend) Cleanup() error {
	b.initialized = false
	return nil
}

// IsHeadless returns false (terminal has basic output)
func (b *TerminalBackend) IsHeadless() bool {
	return false
}

// GetName returns the backend name
func (b *TerminalBackend) GetName() string {
	return "Terminal"
}

// newTerminalWindow fits the picture into cols x rows character cells,
// reserving the last row.
func newTerminalWindow(out io.Writer, cols, rows int) *TerminalWindow {
	if cols < 1 {
		cols = 80
	}
	if rows < 2 {
		rows = 25
	}
	return &TerminalWindow{
		cols:    min(cols, FrameWidth),
		rows:    min(rows-1, FrameHeight/2),
		running: true,
		out:     out,
	}
}

// SetTitle sets the terminal title
func (w *TerminalWindow) SetTitle(title string) {
	w.title = title
	fmt.Fprintf(w.out, "\033]0;%s\007", title)
}

// GetSize returns the drawing area in character cells
func (w *TerminalWindow) GetSize() (width, height int) {
	return w.cols, w.rows
}

// ShouldClose returns true if window should close
func (w *TerminalWindow) ShouldClose() bool {
	return !w.running
}

// PollEvents returns no events; the terminal is output only
func (w *TerminalWindow) PollEvents() []InputEvent {
	return nil
}

// RenderFrame samples the frame down to the window and draws each cell as
// an upper half block with 24-bit foreground and background colours.
func (w *TerminalWindow) RenderFrame(frame []uint8) error {
	bw := bufio.NewWriter(w.out)
	bw.WriteString("\033[H")

	pixel := func(x, y int) (uint8, uint8, uint8) {
		i := (y*FrameWidth + x) * 3
		return frame[i], frame[i+1], frame[i+2]
	}

	for row := 0; row < w.rows; row++ {
		top := row * 2 * FrameHeight / (w.rows * 2)
		bottom := (row*2 + 1) * FrameHeight / (w.rows * 2)
		for col := 0; col < w.cols; col++ {
			x := col * FrameWidth / w.cols
			tr, tg, tb := pixel(x, top)
			br, bg, bb := pixel(x, bottom)
			fmt.Fprintf(bw, "\033[38;2;%d;%d;%dm\033[48;2;%d;%d;%dm▀", tr, tg, tb, br, bg, bb)
		}
		bw.WriteString("\033[0m\n")
	}

	return bw.Flush()
}

// Cleanup resets the terminal colours
func (w *TerminalWindow) Cleanup() error {
	w.running = false
	_, err := io.WriteString(w.out, "\033[0m")
	return err
}
