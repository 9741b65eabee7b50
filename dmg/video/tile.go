package video

import (
	"github.com/valerio/go-dmg/dmg/addr"
	"github.com/valerio/go-dmg/dmg/bit"
)

const tileBytes = 16

// TileRow is one 8 pixel row of a tile, stored as two bit planes.
// Bit 7 is the leftmost pixel; the low plane gives bit 0 of each color
// index and the high plane bit 1.
//
//	Low  (0x3C): 0 0 1 1 1 1 0 0
//	High (0x7E): 0 1 1 1 1 1 1 0
//	Colors:      0 2 3 3 3 3 2 0
//
// Reference: https://gbdev.io/pandocs/Tile_Data.html
type TileRow struct {
	Low  uint8
	High uint8
}

// Pixel returns the color index (0-3) of pixel x, 0 being the leftmost.
// With flipX the row is read right to left.
func (t TileRow) Pixel(x int, flipX bool) uint8 {
	index := uint8(7 - x)
	if flipX {
		index = uint8(x)
	}
	return bit.Value(index, t.High)<<1 | bit.Value(index, t.Low)
}

// fetchRow reads row of the tile starting at tileAddress out of VRAM.
func fetchRow(vram []uint8, tileAddress uint16, row int) TileRow {
	offset := int(tileAddress-addr.VRAMStart) + row*2
	return TileRow{Low: vram[offset], High: vram[offset+1]}
}

// bgTileAddress resolves a background/window tile number. With unsigned
// addressing tiles start at 0x8000; otherwise the number is signed and
// relative to 0x9000.
func bgTileAddress(unsigned bool, tileNumber uint8) uint16 {
	if unsigned {
		return addr.TileData0 + uint16(tileNumber)*tileBytes
	}
	return uint16(int(addr.TileData2) + int(int8(tileNumber))*tileBytes)
}

// mapShade applies a palette register to a color index.
func mapShade(palette, colorIndex uint8) uint8 {
	return (palette >> (colorIndex * 2)) & 0x03
}
