package memory

import "github.com/valerio/go-dmg/dmg/bit"

// JoypadKey represents a key on the Gameboy joypad. The order matches the
// host input vector: Right, Left, Up, Down, A, B, Select, Start.
type JoypadKey uint8

const (
	JoypadRight JoypadKey = iota
	JoypadLeft
	JoypadUp
	JoypadDown
	JoypadA
	JoypadB
	JoypadSelect
	JoypadStart
)

// JoypadKeyCount is the length of the input vector.
const JoypadKeyCount = 8

const (
	selectDpadBit    = 4
	selectButtonsBit = 5
)

// Joypad is the P1 input latch. Key state is active low: a 0 bit means the
// key is held.
type Joypad struct {
	buttons   uint8 // A, B, Select, Start in bits 0-3
	dpad      uint8 // Right, Left, Up, Down in bits 0-3
	selection uint8 // bits 4-5 as last written
}

// NewJoypad creates a new Joypad with every key released and no group selected.
func NewJoypad() *Joypad {
	return &Joypad{
		buttons:   0x0F,
		dpad:      0x0F,
		selection: 0x30,
	}
}

// Read returns P1. Bits 6-7 always read as 1.
//
// A group is selected when its bit is 0:
//   - bit 4 low maps the d-pad onto bits 0-3
//   - bit 5 low maps A, B, Select, Start onto bits 0-3
//   - both low ANDs the two groups
//   - neither returns 0x0F
func (j *Joypad) Read() uint8 {
	result := uint8(0xC0) | j.selection
	low := uint8(0x0F)
	if !bit.IsSet(selectDpadBit, j.selection) {
		low &= j.dpad
	}
	if !bit.IsSet(selectButtonsBit, j.selection) {
		low &= j.buttons
	}
	return result | low
}

// Write latches the selection bits, the only writable part of P1.
func (j *Joypad) Write(value uint8) {
	j.selection = value & 0x30
}

// Press marks key as held. Returns true if the key was previously released.
func (j *Joypad) Press(key JoypadKey) bool {
	group, index := j.group(key)
	wasReleased := bit.IsSet(index, *group)
	*group = bit.Reset(index, *group)
	return wasReleased
}

// Release marks key as released.
func (j *Joypad) Release(key JoypadKey) {
	group, index := j.group(key)
	*group = bit.Set(index, *group)
}

// SetState applies a full input vector. Returns true if a key in a
// currently selected group went from released to held, which is the
// condition for the Joypad interrupt.
func (j *Joypad) SetState(state [JoypadKeyCount]bool) bool {
	pressed := false
	for i, held := range state {
		key := JoypadKey(i)
		if held {
			if j.Press(key) && j.selected(key) {
				pressed = true
			}
		} else {
			j.Release(key)
		}
	}
	return pressed
}

// selected reports whether P1 currently routes key's group to bits 0-3.
func (j *Joypad) selected(key JoypadKey) bool {
	if key >= JoypadA {
		return !bit.IsSet(selectButtonsBit, j.selection)
	}
	return !bit.IsSet(selectDpadBit, j.selection)
}

func (j *Joypad) group(key JoypadKey) (*uint8, uint8) {
	if key >= JoypadA {
		return &j.buttons, uint8(key - JoypadA)
	}
	return &j.dpad, uint8(key)
}
