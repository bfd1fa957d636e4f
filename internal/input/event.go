// Package input translates device events into the shared PlayerInput flags.
package input

import "fmt"

// Key is a keyboard key the game reacts to. Capture backends map their own
// key codes onto these.
type Key int

const (
	KeyUnknown Key = iota
	KeyLeft
	KeyRight
	KeyArrowUp
	KeyArrowDown
	KeyJump
	KeyAttack
	KeySlide
)

var keyNames = [...]string{"unknown", "left", "right", "up", "down", "jump", "attack", "slide"}

func (k Key) String() string {
	if k < 0 || int(k) >= len(keyNames) {
		return fmt.Sprintf("key(%d)", int(k))
	}
	return keyNames[k]
}

// Button is a controller button.
type Button int

const (
	ButtonA Button = iota
	ButtonB
	ButtonX
	ButtonY
	ButtonLeftShoulder
	ButtonRightShoulder
)

// Axis is a controller stick axis.
type Axis int

const (
	AxisLeftX Axis = iota
	AxisLeftY
	AxisRightX
	AxisRightY
)

// AxisThreshold is the dead zone of a stick axis. Values beyond it in
// either direction count as pressed.
const AxisThreshold = 7500

// Event is a raw device event. The set of events is closed.
type Event interface {
	inputEvent()
}

// KeyDown is a key press. Repeat is set for auto-repeat presses of a key
// that is already held.
type KeyDown struct {
	Key    Key
	Repeat bool
}

type KeyUp struct {
	Key    Key
	Repeat bool
}

type ButtonDown struct {
	Button Button
}

type ButtonUp struct {
	Button Button
}

// AxisMotion reports a stick position in [-32768, 32767].
type AxisMotion struct {
	Axis  Axis
	Value int16
}

func (KeyDown) inputEvent()    {}
func (KeyUp) inputEvent()      {}
func (ButtonDown) inputEvent() {}
func (ButtonUp) inputEvent()   {}
func (AxisMotion) inputEvent() {}
