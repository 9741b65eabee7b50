package video

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/valerio/go-dmg/dmg/addr"
)

func TestPPU_OneScanline(t *testing.T) {
	t.Run("single step", func(t *testing.T) {
		m, p := newTestPPU(0x91)
		p.Step(m, 456)
		assert.Equal(t, uint8(1), m.LCD.LY)
		assert.Equal(t, ModeOAMScan, p.Mode())
		assert.Equal(t, uint8(ModeOAMScan), m.LCD.Mode())
	})

	t.Run("instruction sized steps", func(t *testing.T) {
		m, p := newTestPPU(0x91)
		for range 456 / 4 {
			p.Step(m, 4)
		}
		assert.Equal(t, uint8(1), m.LCD.LY)
		assert.Equal(t, ModeOAMScan, p.Mode())
	})
}

func TestPPU_ModeDurations(t *testing.T) {
	m, p := newTestPPU(0x91)

	steps := []struct {
		cycles int
		mode   Mode
		ly     uint8
	}{
		{79, ModeOAMScan, 0},
		{1, ModeTransfer, 0},
		{171, ModeTransfer, 0},
		{1, ModeHBlank, 0},
		{203, ModeHBlank, 0},
		{1, ModeOAMScan, 1},
	}

	for _, s := range steps {
		p.Step(m, s.cycles)
		assert.Equal(t, s.mode, p.Mode())
		assert.Equal(t, s.ly, m.LCD.LY)
	}
}

func TestPPU_VBlank(t *testing.T) {
	m, p := newTestPPU(0x91)

	p.Step(m, Height*LineCycles-1)
	assert.Equal(t, uint8(Height-1), m.LCD.LY)
	assert.False(t, p.FrameReady())
	assert.Zero(t, m.Interrupts.ReadIF()&addr.VBlank.Mask())

	p.Step(m, 1)
	assert.Equal(t, uint8(Height), m.LCD.LY)
	assert.Equal(t, ModeVBlank, p.Mode())
	assert.NotZero(t, m.Interrupts.ReadIF()&addr.VBlank.Mask())
	assert.True(t, p.FrameReady())
	assert.False(t, p.FrameReady(), "frame ready is consumed")

	p.Step(m, 9*LineCycles)
	assert.Equal(t, uint8(lastLine), m.LCD.LY)
	assert.Equal(t, ModeVBlank, p.Mode())

	p.Step(m, LineCycles)
	assert.Equal(t, uint8(0), m.LCD.LY)
	assert.Equal(t, ModeOAMScan, p.Mode())
}

func TestPPU_FullFrame(t *testing.T) {
	m, p := newTestPPU(0x91)
	p.Step(m, FrameCycles)
	assert.Equal(t, uint8(0), m.LCD.LY)
	assert.Equal(t, ModeOAMScan, p.Mode())
	assert.Equal(t, 70224, FrameCycles)
}

func TestPPU_StatInterrupts(t *testing.T) {
	tests := []struct {
		name   string
		stat   uint8
		cycles int
	}{
		{"hblank", 0x08, oamScanCycles + transferCycles},
		{"oam scan", 0x20, LineCycles},
		{"vblank", 0x10, Height * LineCycles},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, p := newTestPPU(0x91)
			m.Write(addr.STAT, tt.stat)

			p.Step(m, tt.cycles-1)
			assert.Zero(t, m.Interrupts.ReadIF()&addr.LCDStat.Mask())

			p.Step(m, 1)
			assert.NotZero(t, m.Interrupts.ReadIF()&addr.LCDStat.Mask())
		})
	}
}

func TestPPU_LYCComparator(t *testing.T) {
	m, p := newTestPPU(0x91)
	m.Write(addr.LYC, 5)
	m.Write(addr.STAT, 0x40)

	p.Step(m, 4*LineCycles)
	assert.False(t, m.ReadBit(2, addr.STAT))
	assert.Zero(t, m.Interrupts.ReadIF()&addr.LCDStat.Mask())

	p.Step(m, LineCycles)
	assert.Equal(t, uint8(5), m.LCD.LY)
	assert.True(t, m.ReadBit(2, addr.STAT))
	assert.NotZero(t, m.Interrupts.ReadIF()&addr.LCDStat.Mask())

	p.Step(m, LineCycles)
	assert.False(t, m.ReadBit(2, addr.STAT))
}

func TestPPU_LYCWrittenMidLine(t *testing.T) {
	m, p := newTestPPU(0x91)
	p.Step(m, 3*LineCycles+100)
	assert.Equal(t, uint8(3), m.LCD.LY)
	assert.False(t, m.ReadBit(2, addr.STAT))

	m.Write(addr.STAT, 0x40)
	m.Write(addr.LYC, 3)
	m.Write(addr.IF, 0)

	p.Step(m, 4)
	assert.True(t, m.ReadBit(2, addr.STAT))
	assert.NotZero(t, m.Interrupts.ReadIF()&addr.LCDStat.Mask())

	// a match that holds does not fire again
	m.Write(addr.IF, 0)
	p.Step(m, 4)
	assert.Zero(t, m.Interrupts.ReadIF()&addr.LCDStat.Mask())

	// moving LYC away clears the flag
	m.Write(addr.LYC, 9)
	p.Step(m, 4)
	assert.False(t, m.ReadBit(2, addr.STAT))
}

func TestPPU_PowerOffUpdatesCoincidence(t *testing.T) {
	tests := []struct {
		name string
		lyc  uint8
		want bool
	}{
		{"LYC 0 matches reset LY", 0, true},
		{"LYC 3 no longer matches", 3, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, p := newTestPPU(0x91)
			m.Write(addr.LYC, tt.lyc)
			p.Step(m, 3*LineCycles+10)
			assert.Equal(t, tt.lyc == 3, m.ReadBit(2, addr.STAT))

			m.Write(addr.LCDC, 0x11)
			p.Step(m, 4)
			assert.Equal(t, uint8(0), m.LCD.LY)
			assert.Equal(t, tt.want, m.ReadBit(2, addr.STAT))
		})
	}
}

func TestPPU_PowerOffAndOn(t *testing.T) {
	m, p := newTestPPU(0x91)
	fillTile(m, addr.TileData0, 0xFF, 0xFF)

	runToLineRendered(m, p, 3)
	assert.Equal(t, uint8(3), p.FrameBuffer().Shade(0, 0))

	m.Write(addr.LCDC, 0x11)
	p.Step(m, 4)
	assert.Equal(t, uint8(0), m.LCD.LY)
	assert.Equal(t, uint8(ModeHBlank), m.LCD.Mode())
	assert.Equal(t, uint8(0), p.FrameBuffer().Shade(0, 0))

	// time does not pass while off
	p.Step(m, 10*LineCycles)
	assert.Equal(t, uint8(0), m.LCD.LY)
	assert.Equal(t, ModeHBlank, p.Mode())

	m.Write(addr.LCDC, 0x91)
	p.Step(m, 0)
	assert.Equal(t, ModeOAMScan, p.Mode())
	p.Step(m, LineCycles)
	assert.Equal(t, uint8(1), m.LCD.LY)
	assert.Equal(t, ModeOAMScan, p.Mode())
}

func TestMode_String(t *testing.T) {
	assert.Equal(t, "hblank", ModeHBlank.String())
	assert.Equal(t, "vblank", ModeVBlank.String())
	assert.Equal(t, "oam-scan", ModeOAMScan.String())
	assert.Equal(t, "transfer", ModeTransfer.String())
}
