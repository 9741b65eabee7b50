package video

import (
	"github.com/valerio/go-dmg/dmg/addr"
	"github.com/valerio/go-dmg/dmg/bit"
	"github.com/valerio/go-dmg/dmg/memory"
)

const (
	tileMapWidth = 32
	// WX is offset by 7 pixels
	windowXOffset = 7
)

func (p *PPU) renderLine(m *memory.MMU) {
	line := int(m.LCD.LY)
	if line >= Height {
		return
	}
	vram := m.VRAM()
	p.renderBackground(&m.LCD, vram, line)
	p.renderWindow(&m.LCD, vram, line)
	p.renderSprites(&m.LCD, vram, m.OAM(), line)
}

func (p *PPU) renderBackground(lcd *memory.LCDRegisters, vram []uint8, line int) {
	if !bit.IsSet(bgEnableBit, lcd.Control) {
		for x := range Width {
			p.bgLine[x] = 0
			p.fb.set(x, line, 0)
		}
		return
	}

	tileMap := addr.TileMap0
	if bit.IsSet(bgMapBit, lcd.Control) {
		tileMap = addr.TileMap1
	}
	unsigned := bit.IsSet(tileDataBit, lcd.Control)

	y := (line + int(lcd.ScrollY)) & 0xFF
	for x := range Width {
		bgX := (x + int(lcd.ScrollX)) & 0xFF
		colorIndex := tilePixel(vram, tileMap, unsigned, bgX, y)
		p.bgLine[x] = colorIndex
		p.fb.set(x, line, mapShade(lcd.BGPalette, colorIndex))
	}
}

func (p *PPU) renderWindow(lcd *memory.LCDRegisters, vram []uint8, line int) {
	if !bit.IsSet(windowEnableBit, lcd.Control) || !bit.IsSet(bgEnableBit, lcd.Control) {
		return
	}
	if line < int(lcd.WindowY) {
		return
	}
	left := int(lcd.WindowX) - windowXOffset
	if left >= Width {
		return
	}

	tileMap := addr.TileMap0
	if bit.IsSet(windowMapBit, lcd.Control) {
		tileMap = addr.TileMap1
	}
	unsigned := bit.IsSet(tileDataBit, lcd.Control)

	for x := max(left, 0); x < Width; x++ {
		colorIndex := tilePixel(vram, tileMap, unsigned, x-left, p.windowLine)
		p.bgLine[x] = colorIndex
		p.fb.set(x, line, mapShade(lcd.BGPalette, colorIndex))
	}
	p.windowLine++
}

// tilePixel looks up the color index at (x, y) of a 256x256 tile map.
func tilePixel(vram []uint8, tileMap uint16, unsigned bool, x, y int) uint8 {
	mapOffset := tileMap + uint16((y/8)*tileMapWidth+x/8)
	tileNumber := vram[mapOffset-addr.VRAMStart]
	row := fetchRow(vram, bgTileAddress(unsigned, tileNumber), y%8)
	return row.Pixel(x%8, false)
}
