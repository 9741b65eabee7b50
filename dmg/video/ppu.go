package video

import (
	"log/slog"

	"github.com/valerio/go-dmg/dmg/addr"
	"github.com/valerio/go-dmg/dmg/bit"
	"github.com/valerio/go-dmg/dmg/memory"
)

// Mode is the display controller state, as reported in STAT bits 0-1.
type Mode uint8

const (
	ModeHBlank Mode = iota
	ModeVBlank
	ModeOAMScan
	ModeTransfer
)

func (m Mode) String() string {
	switch m {
	case ModeHBlank:
		return "hblank"
	case ModeVBlank:
		return "vblank"
	case ModeOAMScan:
		return "oam-scan"
	default:
		return "transfer"
	}
}

const (
	oamScanCycles  = 80
	transferCycles = 172
	hblankCycles   = 204
	// LineCycles is the length of every scanline, visible or not.
	LineCycles = oamScanCycles + transferCycles + hblankCycles
	// FrameCycles is the length of one full 154 line refresh.
	FrameCycles = LineCycles * (lastLine + 1)

	lastLine = 153
)

// LCDC bits
// Bit 7 - LCD Display Enable (0=Off, 1=On)
// Bit 6 - Window Tile Map Display Select (0=9800-9BFF, 1=9C00-9FFF)
// Bit 5 - Window Display Enable (0=Off, 1=On)
// Bit 4 - BG & Window Tile Data Select (0=8800-97FF, 1=8000-8FFF)
// Bit 3 - BG Tile Map Display Select (0=9800-9BFF, 1=9C00-9FFF)
// Bit 2 - OBJ (Sprite) Size (0=8x8, 1=8x16)
// Bit 1 - OBJ (Sprite) Display Enable (0=Off, 1=On)
// Bit 0 - BG Display (0=Off, 1=On)
const (
	lcdEnableBit     = 7
	windowMapBit     = 6
	windowEnableBit  = 5
	tileDataBit      = 4
	bgMapBit         = 3
	spriteSizeBit    = 2
	spriteEnableBit  = 1
	bgEnableBit      = 0
	statHBlankIRQBit = 3
	statVBlankIRQBit = 4
	statOAMIRQBit    = 5
	statLYCIRQBit    = 6
)

// PPU is the display controller. It owns the frame buffer and its own
// timing state; registers live in the address space handed to Step.
type PPU struct {
	fb *FrameBuffer

	mode       Mode
	clock      int
	powered    bool
	windowLine int
	frameReady bool
	// last LY == LYC result; STAT fires on its rising edge
	lycMatch bool

	// raw background color indices of the current line, for sprite priority
	bgLine [Width]uint8
	// sprites selected for the current line
	lineSprites [maxSpritesPerLine]Sprite
}

func NewPPU() *PPU {
	return &PPU{
		fb:   NewFrameBuffer(),
		mode: ModeOAMScan,
	}
}

func (p *PPU) FrameBuffer() *FrameBuffer {
	return p.fb
}

func (p *PPU) Mode() Mode {
	return p.mode
}

// FrameReady reports whether V-blank was entered since the last call.
func (p *PPU) FrameReady() bool {
	ready := p.frameReady
	p.frameReady = false
	return ready
}

// Step advances the display by cycles clock cycles.
func (p *PPU) Step(m *memory.MMU, cycles int) {
	lcd := &m.LCD
	if !bit.IsSet(lcdEnableBit, lcd.Control) {
		if p.powered {
			p.powerOff(lcd)
		}
		return
	}
	if !p.powered {
		p.powerOn(m)
	}
	// LYC may have been written since the last step
	p.compareLine(m)

	p.clock += cycles
	for {
		switch p.mode {
		case ModeOAMScan:
			if p.clock < oamScanCycles {
				return
			}
			p.clock -= oamScanCycles
			p.setMode(m, ModeTransfer)
		case ModeTransfer:
			if p.clock < transferCycles {
				return
			}
			p.clock -= transferCycles
			p.renderLine(m)
			p.setMode(m, ModeHBlank)
		case ModeHBlank:
			if p.clock < hblankCycles {
				return
			}
			p.clock -= hblankCycles
			p.setLine(m, lcd.LY+1)
			if lcd.LY == Height {
				m.RequestInterrupt(addr.VBlank)
				p.frameReady = true
				p.windowLine = 0
				p.setMode(m, ModeVBlank)
			} else {
				p.setMode(m, ModeOAMScan)
			}
		case ModeVBlank:
			if p.clock < LineCycles {
				return
			}
			p.clock -= LineCycles
			if lcd.LY == lastLine {
				p.setLine(m, 0)
				p.setMode(m, ModeOAMScan)
			} else {
				p.setLine(m, lcd.LY+1)
			}
		}
	}
}

func (p *PPU) powerOff(lcd *memory.LCDRegisters) {
	p.powered = false
	p.clock = 0
	p.mode = ModeHBlank
	p.windowLine = 0
	lcd.LY = 0
	lcd.SetMode(uint8(ModeHBlank))
	p.lycMatch = lcd.LY == lcd.LYC
	lcd.SetCoincidence(p.lycMatch)
	p.fb.Clear()
	slog.Debug("LCD off")
}

func (p *PPU) powerOn(m *memory.MMU) {
	p.powered = true
	p.clock = 0
	p.mode = ModeOAMScan
	m.LCD.SetMode(uint8(ModeOAMScan))
	p.lycMatch = m.LCD.LY == m.LCD.LYC
	m.LCD.SetCoincidence(p.lycMatch)
	slog.Debug("LCD on")
}

// setMode switches mode and raises LCD STAT when the mode's source is enabled.
func (p *PPU) setMode(m *memory.MMU, mode Mode) {
	p.mode = mode
	m.LCD.SetMode(uint8(mode))

	source := -1
	switch mode {
	case ModeHBlank:
		source = statHBlankIRQBit
	case ModeVBlank:
		source = statVBlankIRQBit
	case ModeOAMScan:
		source = statOAMIRQBit
	}
	if source >= 0 && bit.IsSet(uint8(source), m.LCD.Status) {
		m.RequestInterrupt(addr.LCDStat)
	}
}

// setLine updates LY and runs the LYC comparator.
func (p *PPU) setLine(m *memory.MMU, line uint8) {
	m.LCD.LY = line
	p.compareLine(m)
}

// compareLine updates the coincidence flag and raises LCD STAT when LY
// starts matching LYC with the LYC source enabled.
func (p *PPU) compareLine(m *memory.MMU) {
	lcd := &m.LCD
	match := lcd.LY == lcd.LYC
	lcd.SetCoincidence(match)
	if match && !p.lycMatch && bit.IsSet(statLYCIRQBit, lcd.Status) {
		m.RequestInterrupt(addr.LCDStat)
	}
	p.lycMatch = match
}
