// Package dmg wires the DMG-01 components into a runnable machine and drives
// them frame by frame.
package dmg

import (
	"fmt"
	"log/slog"

	"github.com/valerio/go-dmg/dmg/audio"
	"github.com/valerio/go-dmg/dmg/cpu"
	"github.com/valerio/go-dmg/dmg/input/action"
	"github.com/valerio/go-dmg/dmg/memory"
	"github.com/valerio/go-dmg/dmg/timer"
	"github.com/valerio/go-dmg/dmg/video"
)

const (
	// FramesPerSecond is the host refresh rate the driver slices emulation into.
	FramesPerSecond = 60
	// CyclesPerFrame is the cycle budget of one RunUntilFrame call.
	CyclesPerFrame = timer.CPUFrequency / FramesPerSecond
)

// Option configures a DMG at construction.
type Option func(*options)

type options struct {
	trace       bool
	memoryOps   []memory.Option
	audioFrames int
}

// WithTrace logs every executed instruction at debug level.
func WithTrace(on bool) Option {
	return func(o *options) { o.trace = on }
}

// WithMemoryOptions forwards options to the address space.
func WithMemoryOptions(opts ...memory.Option) Option {
	return func(o *options) { o.memoryOps = append(o.memoryOps, opts...) }
}

// WithAudioBuffer sizes the audio queue to frames stereo frames.
func WithAudioBuffer(frames int) Option {
	return func(o *options) { o.audioFrames = frames }
}

// DMG is a complete machine: CPU, address space with its devices, and display.
type DMG struct {
	cpu *cpu.CPU
	mem *memory.MMU
	ppu *video.PPU

	// cycles run past the previous frame budget
	carry  int
	frames uint64
	// V-blanks entered; drifts from frames since the LCD runs 70224 cycles
	displayFrames uint64
	input         [memory.JoypadKeyCount]bool
	fatal         error
}

// New returns a machine with an empty cartridge slot.
func New(opts ...Option) *DMG {
	return build(nil, opts)
}

// NewWithCartridge returns a machine with cart inserted.
func NewWithCartridge(cart *memory.Cartridge, opts ...Option) *DMG {
	return build(cart, opts)
}

// NewWithFile loads the ROM at path and returns a machine running it.
func NewWithFile(path string, opts ...Option) (*DMG, error) {
	cart, err := memory.LoadCartridgeFile(path)
	if err != nil {
		return nil, err
	}

	slog.Info("Loaded cartridge", "path", path, "title", cart.Title, "type", cart.TypeName(),
		"rom_size", cart.ROMSize, "ram_size", cart.RAMSize, "checksum_ok", cart.ValidHeaderChecksum())

	return NewWithCartridge(cart, opts...), nil
}

func build(cart *memory.Cartridge, opts []Option) *DMG {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	var mem *memory.MMU
	if cart != nil {
		mem = memory.NewWithCartridge(cart, o.memoryOps...)
	} else {
		mem = memory.New(o.memoryOps...)
	}

	if o.audioFrames > 0 {
		mem.APU.SetQueue(audio.NewQueue(o.audioFrames))
	}

	c := cpu.New(mem, mem.Interrupts)
	c.SetTrace(o.trace)

	return &DMG{
		cpu: c,
		mem: mem,
		ppu: video.NewPPU(),
	}
}

// Step runs one CPU step and lets every other component catch up on the
// cycles it took. It returns that cycle count.
func (e *DMG) Step() int {
	cycles := e.cpu.Step()
	e.mem.Timer.Step(cycles, e.mem.Interrupts)
	e.ppu.Step(e.mem, cycles)
	if e.ppu.FrameReady() {
		e.displayFrames++
	}
	e.mem.Tick(cycles)
	return cycles
}

// RunUntilFrame runs CyclesPerFrame worth of steps. Cycles spent beyond the
// budget are taken off the next frame.
//
// A fatal emulation error stops the machine: it is logged and returned, and
// every later call returns it again.
func (e *DMG) RunUntilFrame() (err error) {
	if e.fatal != nil {
		return e.fatal
	}

	defer func() {
		if r := recover(); r != nil {
			e.fatal = asError(r)
			err = e.fatal
			slog.Error("Emulation stopped", "error", err, "frame", e.frames, "registers", e.cpu.Registers().String())
		}
	}()

	budget := CyclesPerFrame - e.carry
	elapsed := 0
	for elapsed < budget {
		elapsed += e.Step()
	}
	e.carry = elapsed - budget
	e.frames++

	return nil
}

func asError(r any) error {
	if err, ok := r.(error); ok {
		return err
	}
	return fmt.Errorf("emulation panic: %v", r)
}

// Frame returns the display's frame buffer.
func (e *DMG) Frame() *video.FrameBuffer {
	return e.ppu.FrameBuffer()
}

// SetInput applies the joypad vector, ordered Right, Left, Up, Down, A, B, Select, Start.
func (e *DMG) SetInput(state [memory.JoypadKeyCount]bool) {
	e.input = state
	e.mem.SetInput(state)
}

// HandleAction presses or releases a single Game Boy button. Other actions are ignored.
func (e *DMG) HandleAction(act action.Action, pressed bool) {
	key, ok := act.JoypadKey()
	if !ok {
		return
	}
	state := e.input
	state[key] = pressed
	e.SetInput(state)
}

// AudioQueue returns the queue the audio unit pushes samples into.
func (e *DMG) AudioQueue() *audio.Queue {
	return e.mem.APU.Queue()
}

// Err returns the fatal error that stopped the machine, if any.
func (e *DMG) Err() error {
	return e.fatal
}

// Frames returns the number of completed RunUntilFrame calls.
func (e *DMG) Frames() uint64 {
	return e.frames
}

// DisplayFrames returns the number of frames the LCD has completed.
func (e *DMG) DisplayFrames() uint64 {
	return e.displayFrames
}

// Stopped reports whether the CPU is in STOP mode.
func (e *DMG) Stopped() bool {
	return e.cpu.Stopped()
}

// Cycles returns the total clock cycles executed.
func (e *DMG) Cycles() uint64 {
	return e.cpu.Cycles()
}

// Registers returns a snapshot of the CPU registers.
func (e *DMG) Registers() cpu.Registers {
	return e.cpu.Registers()
}

// MMU exposes the address space for debugging tools.
func (e *DMG) MMU() *memory.MMU {
	return e.mem
}

// DisplayMode returns the current display controller mode.
func (e *DMG) DisplayMode() video.Mode {
	return e.ppu.Mode()
}
