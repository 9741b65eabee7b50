// Package disasm is the static opcode metadata table, plus a small decoder
// used for tracing and diagnostics.
package disasm

import (
	"fmt"
	"strings"

	"github.com/valerio/go-dmg/dmg/bit"
)

// Info describes one opcode. Cycles are clock cycles; conditional control
// flow lists the taken cost first and the not-taken cost second.
type Info struct {
	Mnemonic string
	Length   int
	Cycles   []int
}

// Lookup returns the metadata for an opcode. ok is false for the unassigned
// opcodes of the unprefixed table.
func Lookup(opcode uint8, isPrefixed bool) (info Info, ok bool) {
	if isPrefixed {
		info = prefixed[opcode]
	} else {
		info = unprefixed[opcode]
	}
	return info, info.Length > 0
}

// Mnemonic returns the mnemonic for an opcode, or a placeholder for
// unassigned ones.
func Mnemonic(opcode uint8, isPrefixed bool) string {
	info, ok := Lookup(opcode, isPrefixed)
	if !ok {
		return fmt.Sprintf("DB $%02X", opcode)
	}
	return info.Mnemonic
}

// Reader is the memory view the decoder needs.
type Reader interface {
	Read(address uint16) uint8
}

// Line is one decoded instruction.
type Line struct {
	Address uint16
	Bytes   []uint8
	Text    string
}

func (l Line) Length() int {
	return len(l.Bytes)
}

func (l Line) String() string {
	raw := make([]string, len(l.Bytes))
	for i, b := range l.Bytes {
		raw[i] = fmt.Sprintf("%02X", b)
	}
	return fmt.Sprintf("%04X: %-8s  %s", l.Address, strings.Join(raw, " "), l.Text)
}

// Decode reads the instruction at pc and substitutes its operands.
func Decode(mem Reader, pc uint16) Line {
	opcode := mem.Read(pc)
	if opcode == 0xCB {
		cb := mem.Read(pc + 1)
		return Line{Address: pc, Bytes: []uint8{opcode, cb}, Text: prefixed[cb].Mnemonic}
	}

	info, ok := Lookup(opcode, false)
	if !ok {
		return Line{Address: pc, Bytes: []uint8{opcode}, Text: Mnemonic(opcode, false)}
	}

	raw := make([]uint8, info.Length)
	for i := range raw {
		raw[i] = mem.Read(pc + uint16(i))
	}

	text := info.Mnemonic
	switch info.Length {
	case 2:
		n := raw[1]
		switch {
		case strings.Contains(text, "r8") && strings.HasPrefix(text, "JR"):
			target := pc + 2 + uint16(int8(n))
			text = strings.Replace(text, "r8", fmt.Sprintf("$%04X", target), 1)
		case strings.Contains(text, "r8"):
			text = strings.Replace(text, "r8", fmt.Sprintf("%d", int8(n)), 1)
		case strings.Contains(text, "a8"):
			text = strings.Replace(text, "a8", fmt.Sprintf("$FF%02X", n), 1)
		default:
			text = strings.Replace(text, "d8", fmt.Sprintf("$%02X", n), 1)
		}
	case 3:
		nn := bit.Combine(raw[2], raw[1])
		text = strings.Replace(text, "d16", fmt.Sprintf("$%04X", nn), 1)
		text = strings.Replace(text, "a16", fmt.Sprintf("$%04X", nn), 1)
	}

	return Line{Address: pc, Bytes: raw, Text: text}
}

// DecodeRange decodes count consecutive instructions starting at pc.
func DecodeRange(mem Reader, pc uint16, count int) []Line {
	lines := make([]Line, 0, count)
	for range count {
		line := Decode(mem, pc)
		lines = append(lines, line)
		pc += uint16(line.Length())
	}
	return lines
}
