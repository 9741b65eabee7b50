package integration

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valerio/go-dmg/dmg"
	"github.com/valerio/go-dmg/dmg/backend"
	"github.com/valerio/go-dmg/dmg/input/action"
	"github.com/valerio/go-dmg/dmg/input/event"
	"github.com/valerio/go-dmg/dmg/memory"
	"github.com/valerio/go-dmg/dmg/serial"
	"github.com/valerio/go-dmg/dmg/video"
)

// rom is a 32KB ROM-only image under construction. The entry point jumps to
// 0x150, where the main program goes.
type rom []byte

func newROM() rom {
	r := make(rom, 0x8000)
	r.at(0x100, 0x00, 0xC3, 0x50, 0x01)
	copy(r[0x134:], "INTEGRATION")
	return r
}

func (r rom) at(address int, code ...byte) rom {
	copy(r[address:], code)
	return r
}

func (r rom) load(t *testing.T, opts ...dmg.Option) *dmg.DMG {
	t.Helper()
	cart, err := memory.LoadCartridge(r)
	require.NoError(t, err)
	return dmg.NewWithCartridge(cart, opts...)
}

// counterHandler increments the WRAM byte at 0xC000+offset and returns.
func counterHandler(offset byte) []byte {
	return []byte{
		0x21, offset, 0xC0, // LD HL, 0xC0xx
		0x34, // INC (HL)
		0xD9, // RETI
	}
}

// haltLoop clears pending requests, enables ie and waits for interrupts forever.
func haltLoop(ie byte) []byte {
	return []byte{
		0x3E, ie, 0xE0, 0xFF, // LD A, ie; LDH (IE), A
		0xAF, 0xE0, 0x0F, // XOR A; LDH (IF), A
		0xFB,       // EI
		0x76,       // HALT
		0x18, 0xFD, // JR -3
	}
}

func TestSerialOutput(t *testing.T) {
	var out bytes.Buffer
	program := []byte{}
	for _, c := range []byte("Hi\n") {
		program = append(program,
			0x3E, c, 0xE0, 0x01, // LD A, c; LDH (SB), A
			0x3E, 0x81, 0xE0, 0x02, // LD A, 0x81; LDH (SC), A
		)
	}
	program = append(program, 0x18, 0xFE)

	emu := newROM().at(0x150, program...).load(t,
		dmg.WithMemoryOptions(memory.WithSerialOptions(serial.WithOutput(&out))))
	require.NoError(t, emu.RunUntilFrame())

	assert.Equal(t, "Hi\n", out.String())
}

func TestVBlankInterruptOncePerFrame(t *testing.T) {
	emu := newROM().
		at(0x40, counterHandler(0x00)...).
		at(0x150, haltLoop(0x01)...).
		load(t)

	for i := 0; i < 10; i++ {
		require.NoError(t, emu.RunUntilFrame())
	}

	assert.InDelta(t, 10, int(emu.MMU().Read(0xC000)), 1)
}

func TestTimerInterrupt(t *testing.T) {
	program := []byte{
		0xAF,       // XOR A
		0xE0, 0x06, // LDH (TMA), A
		0xE0, 0x05, // LDH (TIMA), A
		0x3E, 0x05, 0xE0, 0x07, // LD A, 0x05; LDH (TAC), A
	}
	program = append(program, haltLoop(0x04)...)

	emu := newROM().
		at(0x50, counterHandler(0x01)...).
		at(0x150, program...).
		load(t)
	require.NoError(t, emu.RunUntilFrame())

	// 256 increments of 16 cycles per overflow
	want := dmg.CyclesPerFrame / (256 * 16)
	assert.InDelta(t, want, int(emu.MMU().Read(0xC001)), 1)
}

func TestBackgroundTileRendered(t *testing.T) {
	program := []byte{
		0x21, 0x00, 0x80, // LD HL, 0x8000
		0x3E, 0xFF, // LD A, 0xFF
		0x06, 0x10, // LD B, 16
		0x22,       // LD (HL+), A
		0x05,       // DEC B
		0x20, 0xFC, // JR NZ, -4
		0x18, 0xFE, // JR -2
	}
	emu := newROM().at(0x150, program...).load(t)

	for i := 0; i < 3; i++ {
		require.NoError(t, emu.RunUntilFrame())
	}

	// tile 0 is solid color 3, which the post-boot palette maps to black
	frame := emu.Frame()
	for _, p := range [][2]int{{0, 0}, {80, 72}, {159, 143}} {
		assert.Equal(t, uint8(3), frame.Shade(p[0], p[1]), "pixel %v", p)
	}
}

func TestJoypadRead(t *testing.T) {
	program := []byte{
		0x3E, 0x10, 0xE0, 0x00, // LD A, 0x10; LDH (P1), A
		0xF0, 0x00, // LDH A, (P1)
		0xEA, 0x02, 0xC0, // LD (0xC002), A
		0x18, 0xF9, // JR -7
	}
	emu := newROM().at(0x150, program...).load(t)

	require.NoError(t, emu.RunUntilFrame())
	assert.Equal(t, uint8(0x0F), emu.MMU().Read(0xC002)&0x0F)

	emu.HandleAction(action.GBButtonA, true)
	emu.HandleAction(action.GBButtonStart, true)
	require.NoError(t, emu.RunUntilFrame())
	assert.Equal(t, uint8(0x06), emu.MMU().Read(0xC002)&0x0F)
}

// scriptedBackend returns one slice of events per frame, then quits.
type scriptedBackend struct {
	script [][]backend.InputEvent
	frames int
}

func (s *scriptedBackend) Init(backend.BackendConfig) error { return nil }
func (s *scriptedBackend) Cleanup() error                   { return nil }

func (s *scriptedBackend) Update(*video.FrameBuffer) ([]backend.InputEvent, error) {
	s.frames++
	if s.frames > len(s.script) {
		return []backend.InputEvent{{Action: action.EmulatorQuit, Type: event.Press}}, nil
	}
	return s.script[s.frames-1], nil
}

func TestJoypadInterruptWakesHalt(t *testing.T) {
	program := []byte{0x3E, 0x10, 0xE0, 0x00} // select buttons
	program = append(program, haltLoop(0x10)...)

	emu := newROM().
		at(0x60, counterHandler(0x03)...).
		at(0x150, program...).
		load(t)

	b := &scriptedBackend{script: [][]backend.InputEvent{
		nil,
		{{Action: action.GBButtonA, Type: event.Press}},
		nil,
	}}
	require.NoError(t, dmg.NewRunner(emu, b, dmg.RunnerConfig{}).Run(context.Background()))

	assert.Equal(t, uint64(4), emu.Frames())
	assert.Equal(t, uint8(1), emu.MMU().Read(0xC003))
}

func TestFatalErrorThroughRunner(t *testing.T) {
	emu := newROM().at(0x150, 0x00, 0x00, 0xE4).load(t)
	b := &scriptedBackend{}

	err := dmg.NewRunner(emu, b, dmg.RunnerConfig{}).Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "0xE4")
	assert.Equal(t, 0, b.frames)
}
