package serial

import (
	"io"
	"log/slog"

	"github.com/valerio/go-dmg/dmg/addr"
	"github.com/valerio/go-dmg/dmg/bit"
)

const (
	startBit = 7
	clockBit = 0

	// internal clock shifts one byte every 4096 cycles
	byteCycles = 4096

	// SC bits 1-6 are unused and read high
	controlUnused = 0x7E
)

// LogSink is a serial device with nothing plugged in on the other end.
// Outgoing bytes are collected into lines and logged, and optionally
// mirrored raw to a writer. Test ROMs report their results this way.
type LogSink struct {
	onComplete func()
	data       byte
	control    byte

	busy      bool
	remaining int

	instant bool
	logger  *slog.Logger
	out     io.Writer
	line    []byte
}

type Option func(*LogSink)

// WithFixedTiming completes transfers after 4096 cycles instead of instantly.
func WithFixedTiming() Option { return func(s *LogSink) { s.instant = false } }

// WithOutput mirrors every transmitted byte to w.
func WithOutput(w io.Writer) Option { return func(s *LogSink) { s.out = w } }

// WithLogger replaces slog.Default as the line logger.
func WithLogger(l *slog.Logger) Option { return func(s *LogSink) { s.logger = l } }

// NewLogSink creates the sink. onComplete runs after each finished
// transfer and should request the Serial interrupt.
func NewLogSink(onComplete func(), opts ...Option) *LogSink {
	s := &LogSink{
		onComplete: onComplete,
		instant:    true,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Reset()
	return s
}

func (s *LogSink) Write(address uint16, value byte) {
	switch address {
	case addr.SB:
		s.data = value
	case addr.SC:
		s.control = value & 0x81
		s.start()
	default:
		panic("serial: write outside SB/SC")
	}
}

func (s *LogSink) Read(address uint16) byte {
	switch address {
	case addr.SB:
		return s.data
	case addr.SC:
		return s.control | controlUnused
	default:
		panic("serial: read outside SB/SC")
	}
}

func (s *LogSink) Tick(cycles int) {
	if s.instant || !s.busy {
		return
	}
	s.remaining -= cycles
	if s.remaining <= 0 {
		s.finish()
	}
}

func (s *LogSink) Reset() {
	s.data = 0
	s.control = 0
	s.busy = false
	s.remaining = 0
	s.line = s.line[:0]
}

// Flush logs any partial line.
func (s *LogSink) Flush() {
	if len(s.line) == 0 {
		return
	}
	s.logger.Info("serial", "line", string(s.line))
	s.line = s.line[:0]
}

func (s *LogSink) start() {
	if s.busy || !bit.IsSet(startBit, s.control) || !bit.IsSet(clockBit, s.control) {
		return
	}

	b := s.data
	if s.out != nil {
		if _, err := s.out.Write([]byte{b}); err != nil {
			s.logger.Warn("serial output failed", "err", err)
		}
	}
	switch b {
	case 0, '\n', '\r':
		s.Flush()
	default:
		s.line = append(s.line, b)
	}

	if s.instant {
		s.finish()
		return
	}
	s.busy = true
	s.remaining = byteCycles
}

func (s *LogSink) finish() {
	// no partner: the shifted-in byte is all ones
	s.data = 0xFF
	s.control = bit.Reset(startBit, s.control)
	s.busy = false
	s.remaining = 0
	if s.onComplete != nil {
		s.onComplete()
	}
}
