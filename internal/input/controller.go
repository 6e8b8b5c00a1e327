// Package input implements the console's serial game controllers.
package input

import (
	"sen/internal/logger"
)

// Button represents controller buttons. The bit position is the order in
// which the controller reports them.
type Button uint8

const (
	ButtonA Button = 1 << iota
	ButtonB
	ButtonSelect
	ButtonStart
	ButtonUp
	ButtonDown
	ButtonLeft
	ButtonRight
)

var buttonNames = [8]string{"A", "B", "Select", "Start", "Up", "Down", "Left", "Right"}

func (b Button) String() string {
	for i, name := range buttonNames {
		if b == 1<<i {
			return name
		}
	}
	return "Button(?)"
}

// Controller is a standard pad read one button per load.
type Controller struct {
	buttons uint8
	index   uint8
	strobe  bool
}

// New creates a new Controller instance
func New() *Controller {
	return &Controller{}
}

// SetButton sets the state of a button
func (c *Controller) SetButton(button Button, pressed bool) {
	if pressed {
		c.buttons |= uint8(button)
	} else {
		c.buttons &^= uint8(button)
	}
}

// SetButtons sets every button at once, in reporting order.
func (c *Controller) SetButtons(buttons [8]bool) {
	c.buttons = 0
	for i, pressed := range buttons {
		if pressed {
			c.buttons |= 1 << i
		}
	}
}

// IsPressed returns true if the button is currently pressed
func (c *Controller) IsPressed(button Button) bool {
	return c.buttons&uint8(button) != 0
}

// Read returns the state of the next button in reporting order. After the
// eighth button every read returns 0 until the strobe restarts polling.
// While the strobe is held every read reports button A.
func (c *Controller) Read() uint8 {
	if c.strobe {
		c.index = 0
	}
	if c.index >= 8 {
		return 0
	}
	v := (c.buttons >> c.index) & 1
	c.index++
	return v
}

// Write latches the strobe bit. A set strobe restarts polling.
func (c *Controller) Write(value uint8) {
	c.strobe = value&1 == 1
	if c.strobe {
		c.index = 0
	}
}

// Reset releases every button and clears the polling state.
func (c *Controller) Reset() {
	*c = Controller{}
}

// InputState holds both controller ports.
type InputState struct {
	Controller1 *Controller
	Controller2 *Controller
}

// NewInputState creates a new input state with two controllers
func NewInputState() *InputState {
	return &InputState{
		Controller1: New(),
		Controller2: New(),
	}
}

// Reset resets all input devices
func (is *InputState) Reset() {
	is.Controller1.Reset()
	is.Controller2.Reset()
}

// Read reads a controller port.
func (is *InputState) Read(address uint16) uint8 {
	switch address {
	case 0x4016:
		return is.Controller1.Read()
	case 0x4017:
		return is.Controller2.Read()
	}
	logger.Logf(logger.TagInput, "read from non-controller address %#04x", address)
	return 0
}

// Write strobes both controllers. Only 0x4016 is wired to the strobe line.
func (is *InputState) Write(address uint16, value uint8) {
	if address != 0x4016 {
		logger.Logf(logger.TagInput, "write of %#02x to non-controller address %#04x dropped", value, address)
		return
	}
	is.Controller1.Write(value)
	is.Controller2.Write(value)
}
