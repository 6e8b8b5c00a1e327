// Package graphics provides an abstraction layer for different rendering backends
package graphics

import (
	"errors"
	"fmt"

	"sen/internal/input"
)

// ErrQuit is returned from an update function to end a backend's loop.
var ErrQuit = errors.New("quit requested")

// Backend represents a graphics rendering backend
type Backend interface {
	// Initialize initializes the graphics backend
	Initialize(config Config) error

	// CreateWindow creates a window for rendering
	CreateWindow(title string, width, height int) (Window, error)

	// Cleanup releases all resources
	Cleanup() error

	// IsHeadless returns true if nothing is shown to the user
	IsHeadless() bool

	// GetName returns the backend name for identification
	GetName() string
}

// Window represents a rendering window
type Window interface {
	// SetTitle sets the window title
	SetTitle(title string)

	// GetSize returns window dimensions
	GetSize() (width, height int)

	// ShouldClose returns true if window should close
	ShouldClose() bool

	// PollEvents returns the input events since the last call
	PollEvents() []InputEvent

	// RenderFrame presents a 256x240 RGB frame
	RenderFrame(frame []uint8) error

	// Cleanup releases window resources
	Cleanup() error
}

// LoopWindow is a window that owns the main loop and calls update once per
// displayed frame. Returning ErrQuit from update ends the loop cleanly.
type LoopWindow interface {
	Window
	Run(update func() error) error
}

// Config contains configuration for graphics backends
type Config struct {
	WindowTitle  string
	WindowWidth  int
	WindowHeight int
	Fullscreen   bool
	VSync        bool

	// "nearest" or "linear"
	Filter string

	// colour adjustment applied before presenting
	Brightness float32
	Contrast   float32
	Saturation float32

	Headless bool
	Debug    bool
}

// InputEvent represents an input event from the window
type InputEvent struct {
	Type    InputEventType
	Key     Key
	Player  int
	Button  input.Button
	Pressed bool
}

// InputEventType represents the type of input event
type InputEventType int

const (
	InputEventTypeKey InputEventType = iota
	InputEventTypeButton
	InputEventTypeQuit
)

// Key represents keyboard keys
type Key int

const (
	KeyUnknown Key = iota
	KeyEscape
	KeyEnter
	KeySpace
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyW
	KeyA
	KeyS
	KeyD
	KeyJ
	KeyK
	KeyX
	KeyZ
	KeyP
	Key1
	Key2
	Key3
	Key4
	Key5
	Key6
	Key7
	Key8
	KeyF1
	KeyF12
)

type playerButton struct {
	player int
	button input.Button
}

var buttonMappings = map[Key]playerButton{
	// Player 1
	KeyUp:    {1, input.ButtonUp},
	KeyDown:  {1, input.ButtonDown},
	KeyLeft:  {1, input.ButtonLeft},
	KeyRight: {1, input.ButtonRight},
	KeyW:     {1, input.ButtonUp},
	KeyS:     {1, input.ButtonDown},
	KeyA:     {1, input.ButtonLeft},
	KeyD:     {1, input.ButtonRight},
	KeyJ:     {1, input.ButtonA},
	KeyZ:     {1, input.ButtonA},
	KeyK:     {1, input.ButtonB},
	KeyX:     {1, input.ButtonB},
	KeyEnter: {1, input.ButtonStart},
	KeySpace: {1, input.ButtonSelect},
	// Player 2 on the number row
	Key1: {2, input.ButtonUp},
	Key2: {2, input.ButtonDown},
	Key3: {2, input.ButtonLeft},
	Key4: {2, input.ButtonRight},
	Key5: {2, input.ButtonA},
	Key6: {2, input.ButtonB},
	Key7: {2, input.ButtonStart},
	Key8: {2, input.ButtonSelect},
}

// ControllerButton maps a key to a controller port and button.
func ControllerButton(key Key) (player int, button input.Button, ok bool) {
	pb, ok := buttonMappings[key]
	return pb.player, pb.button, ok
}

// keyEvent turns a key transition into a button event when the key is
// mapped to a controller, and a key event otherwise.
func keyEvent(key Key, pressed bool) InputEvent {
	if player, button, ok := ControllerButton(key); ok {
		return InputEvent{Type: InputEventTypeButton, Key: key, Player: player, Button: button, Pressed: pressed}
	}
	return InputEvent{Type: InputEventTypeKey, Key: key, Pressed: pressed}
}

// BackendType represents different graphics backend types
type BackendType string

const (
	BackendEbitengine BackendType = "ebitengine"
	BackendHeadless   BackendType = "headless"
	BackendTerminal   BackendType = "terminal"
)

// CreateBackend creates a graphics backend of the specified type
func CreateBackend(backendType BackendType) (Backend, error) {
	switch backendType {
	case BackendEbitengine:
		return NewEbitengineBackend(), nil
	case BackendHeadless:
		return NewHeadlessBackend(), nil
	case BackendTerminal:
		return NewTerminalBackend(), nil
	}
	return nil, fmt.Errorf("unknown graphics backend %q", backendType)
}
