package video

import (
	"github.com/valerio/go-dmg/dmg/addr"
	"github.com/valerio/go-dmg/dmg/bit"
	"github.com/valerio/go-dmg/dmg/memory"
)

const (
	spriteCount       = 40
	maxSpritesPerLine = 10
	spriteYOffset     = 16
	spriteXOffset     = 8

	attrPaletteBit  = 4
	attrFlipXBit    = 5
	attrFlipYBit    = 6
	attrBehindBGBit = 7
)

// Sprite is one decoded OAM entry, with positions already adjusted to
// screen coordinates.
type Sprite struct {
	Y     int
	X     int
	Tile  uint8
	Flags uint8
	Index int
}

func (s Sprite) UsesOBP1() bool { return bit.IsSet(attrPaletteBit, s.Flags) }
func (s Sprite) FlipX() bool    { return bit.IsSet(attrFlipXBit, s.Flags) }
func (s Sprite) FlipY() bool    { return bit.IsSet(attrFlipYBit, s.Flags) }
func (s Sprite) BehindBG() bool { return bit.IsSet(attrBehindBGBit, s.Flags) }

func decodeSprite(oam []uint8, index int) Sprite {
	base := index * 4
	return Sprite{
		Y:     int(oam[base]) - spriteYOffset,
		X:     int(oam[base+1]) - spriteXOffset,
		Tile:  oam[base+2],
		Flags: oam[base+3],
		Index: index,
	}
}

// DecodeOAM returns all 40 entries of the sprite attribute table.
func DecodeOAM(oam []uint8) []Sprite {
	sprites := make([]Sprite, 0, spriteCount)
	for i := range spriteCount {
		sprites = append(sprites, decodeSprite(oam, i))
	}
	return sprites
}

// spritesOnLine selects, in OAM order, the first 10 sprites overlapping line.
func (p *PPU) spritesOnLine(oam []uint8, line, height int) []Sprite {
	selected := p.lineSprites[:0]
	for i := range spriteCount {
		s := decodeSprite(oam, i)
		if line < s.Y || line >= s.Y+height {
			continue
		}
		selected = append(selected, s)
		if len(selected) == maxSpritesPerLine {
			break
		}
	}
	return selected
}

// renderSprites draws the line's sprites back to front so that earlier
// OAM entries end up on top.
func (p *PPU) renderSprites(lcd *memory.LCDRegisters, vram, oam []uint8, line int) {
	if !bit.IsSet(spriteEnableBit, lcd.Control) {
		return
	}
	height := 8
	if bit.IsSet(spriteSizeBit, lcd.Control) {
		height = 16
	}

	sprites := p.spritesOnLine(oam, line, height)
	for i := len(sprites) - 1; i >= 0; i-- {
		s := sprites[i]

		row := line - s.Y
		if s.FlipY() {
			row = height - 1 - row
		}
		tile := s.Tile
		if height == 16 {
			tile &= 0xFE
		}
		pixels := fetchRow(vram, addr.TileData0+uint16(tile)*tileBytes, row)

		palette := lcd.OBJPalette0
		if s.UsesOBP1() {
			palette = lcd.OBJPalette1
		}

		for px := range 8 {
			x := s.X + px
			if x < 0 || x >= Width {
				continue
			}
			colorIndex := pixels.Pixel(px, s.FlipX())
			if colorIndex == 0 {
				continue
			}
			if s.BehindBG() && p.bgLine[x] != 0 {
				continue
			}
			p.fb.set(x, line, mapShade(palette, colorIndex))
		}
	}
}
