package debug

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/valerio/go-dmg/dmg/addr"
	"github.com/valerio/go-dmg/dmg/cpu"
	"github.com/valerio/go-dmg/dmg/memory"
	"github.com/valerio/go-dmg/dmg/video"
)

const (
	bytesPerLine = 16
	tileMapSize  = 0x400
)

// Machine is the state a dump is taken from.
type Machine interface {
	Registers() cpu.Registers
	MMU() *memory.MMU
}

// WriteDump writes the CPU registers, I/O state, VRAM, WRAM, both tile
// maps and OAM of m as text. cause is printed first when not nil.
func WriteDump(w io.Writer, m Machine, cause error) error {
	bw := bufio.NewWriter(w)
	mem := m.MMU()

	if cause != nil {
		fmt.Fprintf(bw, "# error: %v\n", cause)
	}

	fmt.Fprintf(bw, "# registers\n%s\n", m.Registers())
	fmt.Fprintf(bw, "IME=%t HALT=%t IE=%02X IF=%02X\n",
		mem.Interrupts.MasterEnabled(), mem.Interrupts.Halted(), mem.Read(addr.IE), mem.Read(addr.IF))
	fmt.Fprintf(bw, "LCDC=%02X STAT=%02X LY=%02X LYC=%02X SCY=%02X SCX=%02X WY=%02X WX=%02X\n",
		mem.Read(addr.LCDC), mem.Read(addr.STAT), mem.Read(addr.LY), mem.Read(addr.LYC),
		mem.Read(addr.SCY), mem.Read(addr.SCX), mem.Read(addr.WY), mem.Read(addr.WX))
	fmt.Fprintf(bw, "DIV=%02X TIMA=%02X TMA=%02X TAC=%02X\n",
		mem.Read(addr.DIV), mem.Read(addr.TIMA), mem.Read(addr.TMA), mem.Read(addr.TAC))

	vram := mem.VRAM()
	sections := []struct {
		title string
		base  uint16
		data  []byte
	}{
		{"vram", addr.VRAMStart, vram},
		{"wram", addr.WRAMStart, mem.WRAM()},
		{"tile map 0", addr.TileMap0, vram[addr.TileMap0-addr.VRAMStart:][:tileMapSize]},
		{"tile map 1", addr.TileMap1, vram[addr.TileMap1-addr.VRAMStart:][:tileMapSize]},
		{"oam", addr.OAMStart, mem.OAM()},
	}
	for _, s := range sections {
		fmt.Fprintf(bw, "\n# %s\n", s.title)
		writeHex(bw, s.base, s.data)
	}

	fmt.Fprintf(bw, "\n# sprites\n")
	for _, s := range video.DecodeOAM(mem.OAM()) {
		fmt.Fprintf(bw, "%2d: y=%4d x=%4d tile=%02X flags=%02X\n", s.Index, s.Y, s.X, s.Tile, s.Flags)
	}

	return bw.Flush()
}

// WriteDumpFile writes the dump of m to path.
func WriteDumpFile(path string, m Machine, cause error) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating dump: %w", err)
	}

	if err := WriteDump(file, m, cause); err != nil {
		file.Close()
		return fmt.Errorf("writing dump: %w", err)
	}
	return file.Close()
}

// writeHex prints data as rows of 16 bytes prefixed by their address.
func writeHex(w io.Writer, base uint16, data []byte) {
	for offset := 0; offset < len(data); offset += bytesPerLine {
		end := min(offset+bytesPerLine, len(data))
		fmt.Fprintf(w, "%04X: % X\n", int(base)+offset, data[offset:end])
	}
}
