package audio

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/valerio/go-dmg/dmg/addr"
)

const cyclesPerFrame = cpuFrequency / 60

func TestAPU_PostBootRegisters(t *testing.T) {
	a := New()

	tests := []struct {
		name     string
		address  uint16
		expected uint8
	}{
		{"NR10", addr.NR10, 0x80},
		{"NR11", addr.NR11, 0xBF},
		{"NR12", addr.NR12, 0xF3},
		{"NR50", addr.NR50, 0x77},
		{"NR51", addr.NR51, 0xF3},
		{"NR52", addr.NR52, 0xF1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, a.ReadRegister(tt.address))
		})
	}
}

func TestAPU_StepProducesSampleRateFrames(t *testing.T) {
	a := New()
	a.SetQueue(NewQueue(SampleRate))

	a.Step(cpuFrequency)

	assert.Equal(t, SampleRate, a.Queue().Len())
}

func TestAPU_FractionalSampleClockCarries(t *testing.T) {
	a := New()
	a.SetQueue(NewQueue(SampleRate))

	for range 60 {
		a.Step(cyclesPerFrame)
	}
	// 60 frames of 69905 cycles is 4194300 cycles, just short of one second
	assert.InDelta(t, SampleRate, a.Queue().Len(), 1)
}

func TestAPU_TriggerChannel2(t *testing.T) {
	a := New()
	a.SetQueue(NewQueue(1024))

	a.WriteRegister(addr.NR21, 0x80) // 50% duty
	a.WriteRegister(addr.NR22, 0xF0) // volume 15, no envelope
	a.WriteRegister(addr.NR23, 0x00)
	a.WriteRegister(addr.NR24, 0x87) // trigger, freq 0x700

	assert.True(t, a.ChannelStatus()[1])
	assert.Equal(t, uint8(0xF2), a.ReadRegister(addr.NR52)&0xF2)

	a.Step(cpuFrequency / 100)
	frames := make([]Frame, 1024)
	n := a.Queue().Pull(frames)
	assert.Positive(t, n)

	nonZero := false
	for _, f := range frames[:n] {
		assert.LessOrEqual(t, f[0], float32(1))
		assert.GreaterOrEqual(t, f[0], float32(-1))
		if f[0] != 0 {
			nonZero = true
		}
	}
	assert.True(t, nonZero, "expected an audible square wave")
}

func TestAPU_TriggerWithDACOffIsIgnored(t *testing.T) {
	a := New()
	a.WriteRegister(addr.NR22, 0x00)
	a.WriteRegister(addr.NR24, 0x80)

	assert.False(t, a.ChannelStatus()[1])
}

func TestAPU_LengthCounterDisablesChannel(t *testing.T) {
	a := New()
	a.WriteRegister(addr.NR21, 0x3F) // length 1
	a.WriteRegister(addr.NR22, 0xF0)
	a.WriteRegister(addr.NR24, 0xC0) // trigger with length enabled

	assert.True(t, a.ChannelStatus()[1])

	a.Step(sequencerPeriod)

	assert.False(t, a.ChannelStatus()[1])
}

// pullAll steps the APU and returns every frame it produced.
func pullAll(t *testing.T, a *APU, cycles int) []Frame {
	t.Helper()
	a.SetQueue(NewQueue(4096))
	a.Step(cycles)
	frames := make([]Frame, 4096)
	n := a.Queue().Pull(frames)
	assert.Positive(t, n)
	return frames[:n]
}

func TestAPU_WaveChannel(t *testing.T) {
	tests := []struct {
		name       string
		nr30       uint8
		nr32       uint8
		wantOn     bool
		wantSilent bool
	}{
		{"full volume", 0x80, 0x20, true, false},
		{"quarter volume", 0x80, 0x60, true, false},
		{"output muted", 0x80, 0x00, true, true},
		{"DAC off never starts", 0x00, 0x20, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := New()
			// a ramp 0x0..0xF, so the output swings both ways
			for i := range uint16(16) {
				a.WriteRegister(addr.WaveRAMStart+i, uint8(i)<<4|uint8(i))
			}
			a.WriteRegister(addr.NR51, 0xFF)
			a.WriteRegister(addr.NR30, tt.nr30)
			a.WriteRegister(addr.NR32, tt.nr32)
			a.WriteRegister(addr.NR33, 0x00)
			a.WriteRegister(addr.NR34, 0x87)

			assert.Equal(t, tt.wantOn, a.ChannelStatus()[2])
			assert.Equal(t, tt.wantOn, a.ReadRegister(addr.NR52)&0x04 != 0)

			var low, high bool
			for _, f := range pullAll(t, a, cpuFrequency/100) {
				assert.LessOrEqual(t, f[0], float32(1))
				assert.GreaterOrEqual(t, f[0], float32(-1))
				low = low || f[0] < 0
				high = high || f[0] > 0
			}
			assert.Equal(t, !tt.wantSilent, low && high)
		})
	}
}

func TestAPU_WaveLengthCounter(t *testing.T) {
	a := New()
	a.WriteRegister(addr.NR30, 0x80)
	a.WriteRegister(addr.NR31, 0xFE) // length 2
	a.WriteRegister(addr.NR34, 0xC0)
	assert.True(t, a.ChannelStatus()[2])

	a.Step(sequencerPeriod)
	assert.True(t, a.ChannelStatus()[2])
	// the sequencer only clocks length on even steps
	a.Step(2 * sequencerPeriod)
	assert.False(t, a.ChannelStatus()[2])

	a.WriteRegister(addr.NR30, 0x80)
	a.WriteRegister(addr.NR34, 0x80)
	assert.Equal(t, 256, a.ch3.length, "expired length reloads to 256")
}

func TestNoise_LFSR(t *testing.T) {
	tests := []struct {
		name   string
		narrow bool
		start  uint16
		want   uint16
	}{
		{"15 bit feedback 0", false, 0x7FFF, 0x3FFF},
		{"15 bit feedback 1", false, 0x0001, 0x4000},
		{"7 bit copies into bit 6", true, 0x0001, 0x4040},
		{"7 bit clears bit 6", true, 0x7FFF, 0x3FBF},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := noise{lfsr: tt.start, narrow: tt.narrow}
			n.stepLFSR()
			assert.Equal(t, tt.want, n.lfsr)
		})
	}
}

func TestAPU_NoiseChannel(t *testing.T) {
	a := New()
	a.WriteRegister(addr.NR51, 0xFF)
	a.WriteRegister(addr.NR42, 0xF0)
	a.WriteRegister(addr.NR43, 0x11) // shift 1, divisor 16
	a.WriteRegister(addr.NR44, 0x80)

	assert.True(t, a.ChannelStatus()[3])
	assert.Equal(t, uint8(0x08), a.ReadRegister(addr.NR52)&0x08)

	var low, high bool
	for _, f := range pullAll(t, a, cpuFrequency/100) {
		low = low || f[0] < 0
		high = high || f[0] > 0
	}
	assert.True(t, low && high, "expected the LFSR to toggle the output")
	assert.NotEqual(t, uint16(lfsrSeed), a.ch4.lfsr)

	t.Run("shift 14 stops the clock", func(t *testing.T) {
		a.WriteRegister(addr.NR43, 0xE0)
		a.WriteRegister(addr.NR44, 0x80)
		pullAll(t, a, cpuFrequency/100)
		assert.Equal(t, uint16(lfsrSeed), a.ch4.lfsr)
	})

	t.Run("envelope runs down", func(t *testing.T) {
		a.WriteRegister(addr.NR42, 0x11) // volume 1, down, pace 1
		a.WriteRegister(addr.NR44, 0x80)
		a.Step(8 * sequencerPeriod)
		assert.Equal(t, uint8(0), a.ch4.volume)
	})
}

func TestAPU_PowerOff(t *testing.T) {
	a := New()
	a.WriteRegister(addr.NR52, 0x00)

	assert.Equal(t, uint8(0x70), a.ReadRegister(addr.NR52))
	assert.Equal(t, uint8(0x00), a.ReadRegister(addr.NR50))

	// registers ignore writes while off, wave RAM does not
	a.WriteRegister(addr.NR50, 0x77)
	assert.Equal(t, uint8(0x00), a.ReadRegister(addr.NR50))
	a.WriteRegister(addr.WaveRAMStart, 0xAB)
	assert.Equal(t, uint8(0xAB), a.ReadRegister(addr.WaveRAMStart))

	a.SetQueue(NewQueue(100))
	a.Step(cpuFrequency / 1000)
	frames := make([]Frame, 100)
	n := a.Queue().Pull(frames)
	assert.Positive(t, n)
	for _, f := range frames[:n] {
		assert.Equal(t, Frame{}, f)
	}

	a.WriteRegister(addr.NR52, 0x80)
	assert.Equal(t, uint8(0xF0), a.ReadRegister(addr.NR52))
}

func TestAPU_OutOfRangeAccess(t *testing.T) {
	a := New()
	assert.Equal(t, uint8(0xFF), a.ReadRegister(0xFF40))
	a.WriteRegister(0xFF40, 0x12)
}
