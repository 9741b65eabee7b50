// Package interrupt implements the DMG interrupt controller: the IE and IF
// registers, the master enable flip-flop with its delayed toggles, and the
// halted flag that interrupts wake the CPU from.
package interrupt

import (
	"fmt"

	"github.com/valerio/go-dmg/dmg/addr"
	"github.com/valerio/go-dmg/dmg/bit"
)

const (
	// requestDelay is the number of ticks before EI/DI take effect.
	requestDelay = 2

	validMask uint8 = 0x1F
	// unusedBits always read as 1 in IF.
	unusedBits uint8 = 0xE0
)

// Controller holds interrupt enable/request state.
type Controller struct {
	enable  uint8 // IE
	request uint8 // IF

	masterEnable bool
	halted       bool

	// countdowns in CPU steps, 0 means disarmed
	enableDelay  int
	disableDelay int
}

// New returns a controller with the master enable set, as left by the boot ROM.
func New() *Controller {
	return &Controller{masterEnable: true}
}

// RequestEnable arms the master enable to turn on two ticks from now.
func (c *Controller) RequestEnable() {
	c.EnableAfter(requestDelay)
}

// EnableAfter arms the master enable to turn on after the given number of ticks.
func (c *Controller) EnableAfter(steps int) {
	c.enableDelay = steps
}

// RequestDisable arms the master enable to turn off two ticks from now.
func (c *Controller) RequestDisable() {
	c.disableDelay = requestDelay
}

// Tick advances the delay counters by one CPU step.
func (c *Controller) Tick() {
	switch c.disableDelay {
	case 0:
	case 1:
		c.masterEnable = false
		c.disableDelay = 0
	default:
		c.disableDelay--
	}

	switch c.enableDelay {
	case 0:
	case 1:
		c.masterEnable = true
		c.enableDelay = 0
	default:
		c.enableDelay--
	}
}

// TryInterrupt picks the highest priority interrupt that is both enabled and
// requested, acknowledges it and wakes the CPU.
// Nothing is returned when the master enable is off and the CPU is running.
func (c *Controller) TryInterrupt() (addr.Interrupt, bool) {
	if !c.masterEnable && !c.halted {
		return 0, false
	}

	active := c.enable & c.request
	if active == 0 {
		return 0, false
	}

	c.halted = false

	// IF and IE never hold bits above 4, anything else is a bug in here.
	if c.request > validMask {
		panic(fmt.Sprintf("interrupt: request mask out of range: 0x%02X", c.request))
	}

	index := bit.LowestSet(active)
	if index >= addr.InterruptCount {
		panic(fmt.Sprintf("interrupt: invalid interrupt index %d", index))
	}

	c.request = bit.Reset(index, c.request)
	return addr.Interrupt(index), true
}

// Raise sets the request bit for i.
func (c *Controller) Raise(i addr.Interrupt) {
	c.request |= i.Mask() & validMask
}

// Pending returns the interrupts that are both enabled and requested.
func (c *Controller) Pending() uint8 {
	return c.enable & c.request & validMask
}

// MasterEnabled reports the state of IME.
func (c *Controller) MasterEnabled() bool {
	return c.masterEnable
}

// SetMasterEnabled changes IME immediately and cancels any armed toggle.
func (c *Controller) SetMasterEnabled(on bool) {
	c.masterEnable = on
	c.enableDelay = 0
	c.disableDelay = 0
}

// Halt stops the CPU until an interrupt is pending.
func (c *Controller) Halt() {
	c.halted = true
}

// Halted reports whether the CPU is halted.
func (c *Controller) Halted() bool {
	return c.halted
}

// ReadIF returns IF, the unused upper bits read as 1.
func (c *Controller) ReadIF() uint8 {
	return c.request | unusedBits
}

// WriteIF replaces the request mask.
func (c *Controller) WriteIF(value uint8) {
	c.request = value & validMask
}

// ReadIE returns IE.
func (c *Controller) ReadIE() uint8 {
	return c.enable
}

// WriteIE replaces the enable mask. Only the five interrupt bits are kept.
func (c *Controller) WriteIE(value uint8) {
	c.enable = value & validMask
}
