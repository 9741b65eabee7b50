package video

import (
	"github.com/valerio/go-dmg/dmg/addr"
	"github.com/valerio/go-dmg/dmg/memory"
)

const identityPalette = 0xE4

func newTestPPU(lcdc uint8) (*memory.MMU, *PPU) {
	m := memory.New()
	m.Write(addr.LCDC, lcdc)
	m.Write(addr.BGP, identityPalette)
	m.Write(addr.OBP0, identityPalette)
	m.Write(addr.OBP1, identityPalette)
	return m, NewPPU()
}

// fillTile writes the same bit planes into all 8 rows of a tile.
func fillTile(m *memory.MMU, tileAddress uint16, low, high uint8) {
	for row := range uint16(8) {
		m.Write(tileAddress+row*2, low)
		m.Write(tileAddress+row*2+1, high)
	}
}

func setTileRow(m *memory.MMU, tileAddress uint16, row int, low, high uint8) {
	m.Write(tileAddress+uint16(row*2), low)
	m.Write(tileAddress+uint16(row*2)+1, high)
}

// setSprite writes an OAM entry using screen coordinates.
func setSprite(m *memory.MMU, index, x, y int, tile, flags uint8) {
	base := addr.OAMStart + uint16(index*4)
	m.Write(base, uint8(y+spriteYOffset))
	m.Write(base+1, uint8(x+spriteXOffset))
	m.Write(base+2, tile)
	m.Write(base+3, flags)
}

// runToLineRendered steps a freshly powered PPU until line has been drawn.
func runToLineRendered(m *memory.MMU, p *PPU, line int) {
	p.Step(m, line*LineCycles+oamScanCycles+transferCycles)
}

func shadeRow(p *PPU, line, from, to int) []uint8 {
	row := make([]uint8, 0, to-from)
	for x := from; x < to; x++ {
		row = append(row, p.FrameBuffer().Shade(x, line))
	}
	return row
}
