package memory

import "time"

// Clock provides wall time to the MBC3 real time clock.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

// SystemClock reads the host's wall clock.
var SystemClock Clock = ClockFunc(time.Now)

// RTCRegister indexes the five MBC3 clock registers, selected by writing
// 0x08-0x0C to 0x4000-0x5FFF.
type RTCRegister uint8

const (
	RTCSeconds RTCRegister = iota
	RTCMinutes
	RTCHours
	RTCDaysLow
	RTCDaysHigh // bit 0: day bit 8, bit 6: halt, bit 7: day carry
)

const (
	rtcDayHighBit = 0x01
	rtcHaltBit    = 0x40
	rtcCarryBit   = 0x80

	rtcDayLimit = 512
)

// RTC is the MBC3 clock. It counts seconds from a base time and exposes the
// count as latched day/hour/minute/second registers; reads never see the
// running counter directly.
type RTC struct {
	clock   Clock
	base    time.Time
	halted  bool
	frozen  int64 // elapsed seconds while halted
	carry   bool
	latched [5]uint8
}

// NewRTC starts a clock at zero elapsed time.
func NewRTC(clock Clock) *RTC {
	r := &RTC{clock: clock, base: clock.Now()}
	r.Latch()
	return r
}

// Latch copies the running counter into the readable registers.
func (r *RTC) Latch() {
	r.latched = r.registers()
}

// Read returns a latched register value.
func (r *RTC) Read(reg RTCRegister) uint8 {
	if int(reg) >= len(r.latched) {
		return 0xFF
	}
	return r.latched[reg]
}

// Write sets one register of the running counter. The latched copy is
// updated too so the write reads back immediately.
func (r *RTC) Write(reg RTCRegister, value uint8) {
	if int(reg) >= len(r.latched) {
		return
	}
	regs := r.registers()
	regs[reg] = value

	days := int64(regs[RTCDaysLow]) | int64(regs[RTCDaysHigh]&rtcDayHighBit)<<8
	total := int64(regs[RTCSeconds]%60) +
		int64(regs[RTCMinutes]%60)*60 +
		int64(regs[RTCHours]%24)*3600 +
		days*86400

	r.carry = regs[RTCDaysHigh]&rtcCarryBit != 0
	r.halted = regs[RTCDaysHigh]&rtcHaltBit != 0
	r.frozen = total
	r.base = r.clock.Now().Add(-time.Duration(total) * time.Second)
	r.latched = r.registers()
}

func (r *RTC) elapsed() int64 {
	if r.halted {
		return r.frozen
	}
	return int64(r.clock.Now().Sub(r.base) / time.Second)
}

// registers renders the counter. Passing 512 days sets the sticky carry bit
// and wraps the day count.
func (r *RTC) registers() [5]uint8 {
	total := r.elapsed()
	days := total / 86400
	if days >= rtcDayLimit {
		r.carry = true
		days %= rtcDayLimit
		total = days*86400 + total%86400
		if r.halted {
			r.frozen = total
		} else {
			r.base = r.clock.Now().Add(-time.Duration(total) * time.Second)
		}
	}

	var regs [5]uint8
	regs[RTCSeconds] = uint8(total % 60)
	regs[RTCMinutes] = uint8(total / 60 % 60)
	regs[RTCHours] = uint8(total / 3600 % 24)
	regs[RTCDaysLow] = uint8(days)
	regs[RTCDaysHigh] = uint8(days>>8) & rtcDayHighBit
	if r.halted {
		regs[RTCDaysHigh] |= rtcHaltBit
	}
	if r.carry {
		regs[RTCDaysHigh] |= rtcCarryBit
	}
	return regs
}
