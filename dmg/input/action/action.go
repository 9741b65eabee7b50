package action

import "github.com/valerio/go-dmg/dmg/memory"

// Action represents input actions that can be performed in the emulator
type Action int

const (
	// Game Boy hardware controls
	GBButtonA Action = iota
	GBButtonB
	GBButtonStart
	GBButtonSelect
	GBDPadUp
	GBDPadDown
	GBDPadLeft
	GBDPadRight

	// Emulator features
	EmulatorPauseToggle
	EmulatorStepFrame
	EmulatorSnapshot
	EmulatorQuit
)

var names = map[Action]string{
	GBButtonA:           "A",
	GBButtonB:           "B",
	GBButtonStart:       "Start",
	GBButtonSelect:      "Select",
	GBDPadUp:            "Up",
	GBDPadDown:          "Down",
	GBDPadLeft:          "Left",
	GBDPadRight:         "Right",
	EmulatorPauseToggle: "PauseToggle",
	EmulatorStepFrame:   "StepFrame",
	EmulatorSnapshot:    "Snapshot",
	EmulatorQuit:        "Quit",
}

func (a Action) String() string {
	if name, ok := names[a]; ok {
		return name
	}
	return "Unknown"
}

// IsGameBoy reports whether the action is one of the eight hardware buttons.
func (a Action) IsGameBoy() bool {
	return a >= GBButtonA && a <= GBDPadRight
}

// JoypadKey maps a hardware button to its slot in the joypad input vector.
func (a Action) JoypadKey() (memory.JoypadKey, bool) {
	switch a {
	case GBButtonA:
		return memory.JoypadA, true
	case GBButtonB:
		return memory.JoypadB, true
	case GBButtonStart:
		return memory.JoypadStart, true
	case GBButtonSelect:
		return memory.JoypadSelect, true
	case GBDPadUp:
		return memory.JoypadUp, true
	case GBDPadDown:
		return memory.JoypadDown, true
	case GBDPadLeft:
		return memory.JoypadLeft, true
	case GBDPadRight:
		return memory.JoypadRight, true
	default:
		return 0, false
	}
}
