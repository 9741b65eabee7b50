package dmg

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/valerio/go-dmg/dmg/memory"
)

const programStart = 0x150

// testROM builds a 32KB ROM-only image that jumps from the entry point to
// program, placed right after the header.
func testROM(program ...byte) []byte {
	data := make([]byte, 0x8000)
	copy(data[0x100:], []byte{0x00, 0xC3, 0x50, 0x01}) // NOP; JP 0x0150
	copy(data[0x134:], "TEST")
	copy(data[programStart:], program)

	var x uint8
	for _, b := range data[0x134:0x14D] {
		x = x - b - 1
	}
	data[0x14D] = x
	return data
}

func newTestDMG(t *testing.T, program ...byte) *DMG {
	t.Helper()
	cart, err := memory.LoadCartridge(testROM(program...))
	require.NoError(t, err)
	return NewWithCartridge(cart)
}

// spin is a program that jumps to itself forever.
var spin = []byte{0x18, 0xFE} // JR -2
