// Package timer implements the DIV/TIMA/TMA/TAC timer block.
package timer

import (
	"github.com/valerio/go-dmg/dmg/addr"
	"github.com/valerio/go-dmg/dmg/bit"
	"github.com/valerio/go-dmg/dmg/interrupt"
)

const (
	// CPUFrequency is the DMG master clock in Hz.
	CPUFrequency = 4194304
	// dividerFrequency is the rate DIV counts at.
	dividerFrequency = 16384
	// DividerPeriod is the number of cycles between DIV increments.
	DividerPeriod = CPUFrequency / dividerFrequency

	enableBit = 2
)

// counterPeriods maps TAC clock select (bits 1-0) to cycles per TIMA increment.
//
//	00 -> 4096 Hz
//	01 -> 262144 Hz
//	10 -> 65536 Hz
//	11 -> 16384 Hz
var counterPeriods = [4]int{
	CPUFrequency / 4096,
	CPUFrequency / 262144,
	CPUFrequency / 65536,
	CPUFrequency / 16384,
}

// Timer encapsulates the divider and the programmable counter.
type Timer struct {
	div          uint8
	dividerClock int

	tima         uint8
	tma          uint8
	tac          uint8
	counterClock int
}

// New returns a timer in its power-on state.
func New() *Timer {
	return &Timer{}
}

// Step advances the timer by the given number of cycles, raising the Timer
// interrupt on ic whenever TIMA overflows.
func (t *Timer) Step(cycles int, ic *interrupt.Controller) {
	t.dividerClock += cycles
	for t.dividerClock >= DividerPeriod {
		t.dividerClock -= DividerPeriod
		t.div++
	}

	if !t.Enabled() {
		return
	}

	period := t.Period()
	t.counterClock += cycles
	for t.counterClock >= period {
		t.counterClock -= period
		t.tima++
		if t.tima == 0 {
			t.tima = t.tma
			ic.Raise(addr.Timer)
		}
	}
}

// Enabled reports whether TIMA is counting.
func (t *Timer) Enabled() bool {
	return bit.IsSet(enableBit, t.tac)
}

// Period returns the number of cycles per TIMA increment for the current TAC.
func (t *Timer) Period() int {
	return counterPeriods[t.tac&0x03]
}

func (t *Timer) Read(address uint16) byte {
	switch address {
	case addr.DIV:
		return t.div
	case addr.TIMA:
		return t.tima
	case addr.TMA:
		return t.tma
	case addr.TAC:
		return t.tac | 0xF8
	default:
		return 0xFF
	}
}

func (t *Timer) Write(address uint16, value byte) {
	switch address {
	case addr.DIV:
		// any write resets the divider, the value is discarded
		t.div = 0
		t.dividerClock = 0
	case addr.TIMA:
		t.tima = value
	case addr.TMA:
		t.tma = value
	case addr.TAC:
		t.tac = value & 0x07
	}
}
