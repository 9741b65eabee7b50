package audio

import (
	"github.com/valerio/go-dmg/dmg/addr"
	"github.com/valerio/go-dmg/dmg/bit"
)

const (
	// SampleRate is the output rate of the mixed stereo frames.
	SampleRate = 44100

	cpuFrequency = 4194304

	// the frame sequencer runs at 512 Hz
	sequencerPeriod = cpuFrequency / 512

	triggerBit       = 7
	lengthEnableBit  = 6
	envelopeUpBit    = 3
	sweepNegateBit   = 3
	powerBit         = 7
	channelVolumeMax = 15
)

// duty waveforms, one bit per eighth of the period
var dutyPatterns = [4]uint8{
	0b00000001, // 12.5%
	0b10000001, // 25%
	0b10000111, // 50%
	0b01111110, // 75%
}

// voice is the state every channel shares: the DAC gate and the length
// counter that silences the channel when it runs out.
type voice struct {
	enabled bool
	dac     bool

	length        int
	lengthEnabled bool
}

// trigger restarts the channel, reloading an expired length counter with
// maxLength. A channel whose DAC is off stays silent.
func (v *voice) trigger(maxLength int) bool {
	if !v.dac {
		return false
	}
	v.enabled = true
	if v.length == 0 {
		v.length = maxLength
	}
	return true
}

func (v *voice) setDAC(on bool) {
	v.dac = on
	if !on {
		v.enabled = false
	}
}

func (v *voice) clockLength() {
	if !v.lengthEnabled || v.length == 0 {
		return
	}
	v.length--
	if v.length == 0 {
		v.enabled = false
	}
}

// envelope is the volume ramp of channels 1, 2 and 4.
type envelope struct {
	volume   uint8
	envUp    bool
	envPace  uint8
	envTimer uint8
}

func (e *envelope) load(value uint8) {
	e.volume = value >> 4
	e.envUp = bit.IsSet(envelopeUpBit, value)
	e.envPace = value & 0x07
}

func (e *envelope) restart(value uint8) {
	e.volume = value >> 4
	e.envTimer = 0
}

func (e *envelope) clockEnvelope() {
	if e.envPace == 0 {
		return
	}
	e.envTimer++
	if e.envTimer < e.envPace {
		return
	}
	e.envTimer = 0
	switch {
	case e.envUp && e.volume < channelVolumeMax:
		e.volume++
	case !e.envUp && e.volume > 0:
		e.volume--
	}
}

func (e *envelope) level() float32 {
	return float32(e.volume) / channelVolumeMax
}

// square is one pulse channel.
type square struct {
	voice
	envelope

	duty  uint8
	freq  uint16
	phase float64

	// sweep, channel 1 only
	sweepPace   uint8
	sweepNegate bool
	sweepStep   uint8
	sweepTimer  uint8
	shadowFreq  uint16
}

func (s *square) trigger(envelopeReg uint8) {
	if !s.voice.trigger(64) {
		return
	}
	s.phase = 0
	s.restart(envelopeReg)
	s.shadowFreq = s.freq
	s.sweepTimer = 0
}

func (s *square) clockSweep() {
	if s.sweepPace == 0 || !s.enabled {
		return
	}
	s.sweepTimer++
	if s.sweepTimer < s.sweepPace {
		return
	}
	s.sweepTimer = 0
	delta := s.shadowFreq >> s.sweepStep
	next := s.shadowFreq + delta
	if s.sweepNegate {
		next = s.shadowFreq - delta
	}
	if next > 0x7FF {
		s.enabled = false
		return
	}
	if s.sweepStep > 0 {
		s.shadowFreq = next
		s.freq = next
	}
}

// sample advances the oscillator by one output sample and returns the
// amplitude in [-1, 1].
func (s *square) sample() float32 {
	if !s.enabled || !s.dac {
		return 0
	}
	hz := 131072.0 / float64(2048-int(s.freq))
	s.phase += hz / SampleRate
	s.phase -= float64(int(s.phase))

	step := uint8(s.phase * 8)
	if dutyPatterns[s.duty]>>(7-step)&1 == 1 {
		return s.level()
	}
	return -s.level()
}

// NR32 output level: mute, 100%, 50%, 25%
var waveVolumes = [4]float32{0, 1, 0.5, 0.25}

const waveSamples = 32

// wave is channel 3, which plays the 32 4-bit samples in wave RAM.
type wave struct {
	voice

	freq       uint16
	phase      float64
	outputCode uint8
}

func (w *wave) trigger() {
	if w.voice.trigger(256) {
		w.phase = 0
	}
}

// sample reads the wave RAM position the oscillator is at. High nibbles play
// first.
func (w *wave) sample(ram []uint8) float32 {
	if !w.enabled || !w.dac {
		return 0
	}
	hz := 65536.0 / float64(2048-int(w.freq))
	w.phase += hz / SampleRate
	w.phase -= float64(int(w.phase))

	index := int(w.phase * waveSamples)
	nibble := ram[index/2]
	if index%2 == 0 {
		nibble >>= 4
	}
	nibble &= 0x0F
	return (float32(nibble)/7.5 - 1) * waveVolumes[w.outputCode]
}

// NR43 divisor codes in CPU cycles; code 0 runs at half the period of code 1.
var noiseDivisors = [8]float64{8, 16, 32, 48, 64, 80, 96, 112}

const (
	noiseNarrowBit = 3
	lfsrSeed       = 0x7FFF
)

// noise is channel 4, a linear feedback shift register clocked at
// divisor << shift CPU cycles.
type noise struct {
	voice
	envelope

	lfsr    uint16
	narrow  bool
	shift   uint8
	divisor uint8
	timer   float64
}

func (n *noise) trigger(envelopeReg uint8) {
	if !n.voice.trigger(64) {
		return
	}
	n.restart(envelopeReg)
	n.lfsr = lfsrSeed
	n.timer = 0
}

// stepLFSR shifts once, feeding bit0 XOR bit1 into bit 14, and also into
// bit 6 in 7-bit mode.
func (n *noise) stepLFSR() {
	feedback := (n.lfsr ^ n.lfsr>>1) & 1
	n.lfsr = n.lfsr>>1 | feedback<<14
	if n.narrow {
		n.lfsr = n.lfsr&^(1<<6) | feedback<<6
	}
}

func (n *noise) sample() float32 {
	if !n.enabled || !n.dac {
		return 0
	}
	// shifts 14 and 15 leave the register unclocked
	if n.shift < 14 {
		period := noiseDivisors[n.divisor] * float64(uint(1)<<n.shift)
		n.timer += float64(cpuFrequency) / SampleRate
		for n.timer >= period {
			n.timer -= period
			n.stepLFSR()
		}
	}
	if n.lfsr&1 == 0 {
		return n.level()
	}
	return -n.level()
}

// APU is the audio register file and the four DMG channels: two square
// waves, the wave RAM player and the noise generator.
type APU struct {
	registers [0x30]uint8
	powered   bool

	ch1, ch2 square
	ch3      wave
	ch4      noise

	sequencerClock int
	sequencerStep  int
	sampleClock    int

	out *Queue
}

// New creates an APU with the post-boot register values and a queue of
// DefaultQueueCapacity frames.
func New() *APU {
	a := &APU{out: NewQueue(DefaultQueueCapacity)}
	a.Reset()
	return a
}

// Reset restores the register values left by the boot ROM.
func (a *APU) Reset() {
	a.registers = [0x30]uint8{}
	a.resetChannels()
	a.sequencerClock, a.sequencerStep, a.sampleClock = 0, 0, 0
	a.powered = true

	boot := []struct {
		address uint16
		value   uint8
	}{
		{addr.NR10, 0x80}, {addr.NR11, 0xBF}, {addr.NR12, 0xF3}, {addr.NR14, 0xBF},
		{addr.NR21, 0x3F}, {addr.NR22, 0x00}, {addr.NR24, 0xBF},
		{addr.NR30, 0x7F}, {addr.NR31, 0xFF}, {addr.NR32, 0x9F}, {addr.NR34, 0xBF},
		{addr.NR41, 0xFF}, {addr.NR42, 0x00}, {addr.NR43, 0x00}, {addr.NR44, 0xBF},
		{addr.NR50, 0x77}, {addr.NR51, 0xF3},
	}
	for _, r := range boot {
		a.registers[r.address-addr.AudioStart] = r.value
		a.apply(r.address, r.value)
	}
	// the boot chime leaves channel 1 on with its envelope run down
	a.ch1.volume = 0
}

func (a *APU) resetChannels() {
	a.ch1, a.ch2 = square{}, square{}
	a.ch3 = wave{}
	a.ch4 = noise{lfsr: lfsrSeed}
}

// Queue returns the queue mixed frames are pushed into.
func (a *APU) Queue() *Queue {
	return a.out
}

// SetQueue redirects output to q.
func (a *APU) SetQueue(q *Queue) {
	a.out = q
}

// Step consumes elapsed CPU cycles, clocking the frame sequencer and
// emitting one stereo frame per 1/SampleRate seconds.
func (a *APU) Step(cycles int) {
	if !a.powered {
		a.emitSilence(cycles)
		return
	}

	a.sequencerClock += cycles
	for a.sequencerClock >= sequencerPeriod {
		a.sequencerClock -= sequencerPeriod
		a.clockSequencer()
	}

	a.sampleClock += cycles * SampleRate
	for a.sampleClock >= cpuFrequency {
		a.sampleClock -= cpuFrequency
		a.out.Push(a.mix())
	}
}

func (a *APU) emitSilence(cycles int) {
	a.sampleClock += cycles * SampleRate
	for a.sampleClock >= cpuFrequency {
		a.sampleClock -= cpuFrequency
		a.out.Push(Frame{})
	}
}

//	Step   Length  Sweep  Envelope
//	0      Clock   -      -
//	2      Clock   Clock  -
//	4      Clock   -      -
//	6      Clock   Clock  -
//	7      -       -      Clock
func (a *APU) clockSequencer() {
	switch a.sequencerStep {
	case 0, 2, 4, 6:
		a.ch1.clockLength()
		a.ch2.clockLength()
		a.ch3.clockLength()
		a.ch4.clockLength()
		if a.sequencerStep == 2 || a.sequencerStep == 6 {
			a.ch1.clockSweep()
		}
	case 7:
		a.ch1.clockEnvelope()
		a.ch2.clockEnvelope()
		a.ch4.clockEnvelope()
	}
	a.sequencerStep = (a.sequencerStep + 1) & 7
}

// mix pans the channels through NR51 and scales by the NR50 master volume.
func (a *APU) mix() Frame {
	samples := [4]float32{
		a.ch1.sample(),
		a.ch2.sample(),
		a.ch3.sample(a.registers[addr.WaveRAMStart-addr.AudioStart:]),
		a.ch4.sample(),
	}
	panning := a.registers[addr.NR51-addr.AudioStart]
	master := a.registers[addr.NR50-addr.AudioStart]

	var left, right float32
	for ch, s := range samples {
		if bit.IsSet(uint8(ch+4), panning) {
			left += s
		}
		if bit.IsSet(uint8(ch), panning) {
			right += s
		}
	}

	leftVol := float32((master>>4)&0x07+1) / 8
	rightVol := float32(master&0x07+1) / 8
	return Frame{left * leftVol / 4, right * rightVol / 4}
}

// ReadRegister returns the value of an audio register. Write-only bits
// are not masked; NR52 reports power and the channel status bits.
func (a *APU) ReadRegister(address uint16) uint8 {
	if address < addr.AudioStart || address > addr.AudioEnd {
		return 0xFF
	}
	if address == addr.NR52 {
		status := uint8(0x70)
		if a.powered {
			status |= 0x80
		}
		for ch, on := range a.ChannelStatus() {
			if on {
				status |= 1 << ch
			}
		}
		return status
	}
	return a.registers[address-addr.AudioStart]
}

// WriteRegister stores an audio register. While powered off only NR52 and
// wave RAM accept writes.
func (a *APU) WriteRegister(address uint16, value uint8) {
	if address < addr.AudioStart || address > addr.AudioEnd {
		return
	}

	if address == addr.NR52 {
		on := bit.IsSet(powerBit, value)
		if a.powered && !on {
			for i := addr.AudioStart; i < addr.WaveRAMStart; i++ {
				a.registers[i-addr.AudioStart] = 0
			}
			a.resetChannels()
		}
		if !a.powered && on {
			a.sequencerStep = 0
		}
		a.powered = on
		return
	}

	if !a.powered && address < addr.WaveRAMStart {
		return
	}

	a.registers[address-addr.AudioStart] = value
	a.apply(address, value)
}

func (a *APU) apply(address uint16, value uint8) {
	reg := func(r uint16) uint8 { return a.registers[r-addr.AudioStart] }

	switch address {
	case addr.NR10:
		a.ch1.sweepPace = (value >> 4) & 0x07
		a.ch1.sweepNegate = bit.IsSet(sweepNegateBit, value)
		a.ch1.sweepStep = value & 0x07
	case addr.NR11:
		a.ch1.duty = value >> 6
		a.ch1.length = 64 - int(value&0x3F)
	case addr.NR12:
		a.ch1.load(value)
		a.ch1.setDAC(value&0xF8 != 0)
	case addr.NR13:
		a.ch1.freq = a.ch1.freq&0x700 | uint16(value)
	case addr.NR14:
		a.ch1.freq = a.ch1.freq&0xFF | uint16(value&0x07)<<8
		a.ch1.lengthEnabled = bit.IsSet(lengthEnableBit, value)
		if bit.IsSet(triggerBit, value) {
			a.ch1.trigger(reg(addr.NR12))
		}
	case addr.NR21:
		a.ch2.duty = value >> 6
		a.ch2.length = 64 - int(value&0x3F)
	case addr.NR22:
		a.ch2.load(value)
		a.ch2.setDAC(value&0xF8 != 0)
	case addr.NR23:
		a.ch2.freq = a.ch2.freq&0x700 | uint16(value)
	case addr.NR24:
		a.ch2.freq = a.ch2.freq&0xFF | uint16(value&0x07)<<8
		a.ch2.lengthEnabled = bit.IsSet(lengthEnableBit, value)
		if bit.IsSet(triggerBit, value) {
			a.ch2.trigger(reg(addr.NR22))
		}
	case addr.NR30:
		a.ch3.setDAC(bit.IsSet(powerBit, value))
	case addr.NR31:
		a.ch3.length = 256 - int(value)
	case addr.NR32:
		a.ch3.outputCode = (value >> 5) & 0x03
	case addr.NR33:
		a.ch3.freq = a.ch3.freq&0x700 | uint16(value)
	case addr.NR34:
		a.ch3.freq = a.ch3.freq&0xFF | uint16(value&0x07)<<8
		a.ch3.lengthEnabled = bit.IsSet(lengthEnableBit, value)
		if bit.IsSet(triggerBit, value) {
			a.ch3.trigger()
		}
	case addr.NR41:
		a.ch4.length = 64 - int(value&0x3F)
	case addr.NR42:
		a.ch4.load(value)
		a.ch4.setDAC(value&0xF8 != 0)
	case addr.NR43:
		a.ch4.shift = value >> 4
		a.ch4.narrow = bit.IsSet(noiseNarrowBit, value)
		a.ch4.divisor = value & 0x07
	case addr.NR44:
		a.ch4.lengthEnabled = bit.IsSet(lengthEnableBit, value)
		if bit.IsSet(triggerBit, value) {
			a.ch4.trigger(reg(addr.NR42))
		}
	}
}

// ChannelStatus reports which of channels 1-4 are currently sounding.
func (a *APU) ChannelStatus() [4]bool {
	return [4]bool{a.ch1.enabled, a.ch2.enabled, a.ch3.enabled, a.ch4.enabled}
}
