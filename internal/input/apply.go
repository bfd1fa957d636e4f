package input

import "github.com/graveyard/engine/internal/resource"

// Apply folds one device event into the input flags.
//
// Repeated key presses are ignored, so a held key sets its flag once and a
// consumer that clears jump, attack or slide is not retriggered until the
// key is pressed again. Releasing a key clears its flag. Controller buttons
// only set flags; the stick drives the direction flags directly.
func Apply(in *resource.PlayerInput, ev Event) {
	switch ev := ev.(type) {
	case KeyDown:
		if ev.Repeat {
			return
		}
		if f := keyFlag(in, ev.Key); f != nil {
			*f = true
		}
	case KeyUp:
		if ev.Repeat {
			return
		}
		if f := keyFlag(in, ev.Key); f != nil {
			*f = false
		}
	case ButtonDown:
		switch ev.Button {
		case ButtonA:
			in.Jump = true
		case ButtonX:
			in.Attack = true
		case ButtonB:
			in.Slide = true
		}
	case ButtonUp:
	case AxisMotion:
		switch ev.Axis {
		case AxisLeftX:
			in.Right = ev.Value > AxisThreshold
			in.Left = ev.Value < -AxisThreshold
		case AxisLeftY:
			in.Down = ev.Value > AxisThreshold
		}
	}
}

func keyFlag(in *resource.PlayerInput, k Key) *bool {
	switch k {
	case KeyLeft:
		return &in.Left
	case KeyRight:
		return &in.Right
	case KeyArrowUp:
		return &in.Up
	case KeyArrowDown:
		return &in.Down
	case KeyJump:
		return &in.Jump
	case KeyAttack:
		return &in.Attack
	case KeySlide:
		return &in.Slide
	}
	return nil
}
