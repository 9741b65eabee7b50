package memory

import (
	"github.com/valerio/go-dmg/dmg/addr"
	"github.com/valerio/go-dmg/dmg/bit"
)

// LCDRegisters is the register file of the display controller, 0xFF40-0xFF4B.
// The CPU reaches it through the MMU; the display controller reads and
// updates it directly while it steps.
type LCDRegisters struct {
	Control     uint8 // LCDC
	Status      uint8 // STAT, bits 0-2 are owned by the display controller
	ScrollY     uint8
	ScrollX     uint8
	LY          uint8 // read-only for the CPU
	LYC         uint8
	DMA         uint8
	BGPalette   uint8
	OBJPalette0 uint8
	OBJPalette1 uint8
	WindowY     uint8
	WindowX     uint8
}

const (
	statWritableMask uint8 = 0x78
	coincidenceBit         = 2
)

// SetMode stores the display mode in STAT bits 0-1.
func (r *LCDRegisters) SetMode(mode uint8) {
	r.Status = (r.Status &^ 0x03) | (mode & 0x03)
}

// Mode returns the display mode from STAT.
func (r *LCDRegisters) Mode() uint8 {
	return r.Status & 0x03
}

// SetCoincidence updates the LY == LYC flag in STAT.
func (r *LCDRegisters) SetCoincidence(on bool) {
	r.Status = bit.SetTo(coincidenceBit, r.Status, on)
}

func (r *LCDRegisters) read(address uint16) uint8 {
	switch address {
	case addr.LCDC:
		return r.Control
	case addr.STAT:
		return r.Status | 0x80
	case addr.SCY:
		return r.ScrollY
	case addr.SCX:
		return r.ScrollX
	case addr.LY:
		return r.LY
	case addr.LYC:
		return r.LYC
	case addr.DMA:
		return r.DMA
	case addr.BGP:
		return r.BGPalette
	case addr.OBP0:
		return r.OBJPalette0
	case addr.OBP1:
		return r.OBJPalette1
	case addr.WY:
		return r.WindowY
	case addr.WX:
		return r.WindowX
	}
	return 0xFF
}

func (r *LCDRegisters) write(address uint16, value uint8) {
	switch address {
	case addr.LCDC:
		r.Control = value
	case addr.STAT:
		r.Status = (r.Status &^ statWritableMask) | (value & statWritableMask)
	case addr.SCY:
		r.ScrollY = value
	case addr.SCX:
		r.ScrollX = value
	case addr.LY:
		// read-only
	case addr.LYC:
		r.LYC = value
	case addr.DMA:
		r.DMA = value
	case addr.BGP:
		r.BGPalette = value
	case addr.OBP0:
		r.OBJPalette0 = value
	case addr.OBP1:
		r.OBJPalette1 = value
	case addr.WY:
		r.WindowY = value
	case addr.WX:
		r.WindowX = value
	}
}
