package memory

import (
	"log/slog"

	"github.com/valerio/go-dmg/dmg/addr"
	"github.com/valerio/go-dmg/dmg/audio"
	"github.com/valerio/go-dmg/dmg/bit"
	"github.com/valerio/go-dmg/dmg/interrupt"
	"github.com/valerio/go-dmg/dmg/serial"
	"github.com/valerio/go-dmg/dmg/timer"
)

type memRegion uint8

const (
	regionUnmapped memRegion = iota
	regionROM
	regionVRAM
	regionExtRAM
	regionWRAM
	regionEcho
	regionOAM
	regionHigh
)

const (
	oamSize  = 0xA0
	hramSize = 0x7F
	ioSize   = 0x80

	// DMATransferLength is the number of bytes a DMA transfer copies into OAM.
	DMATransferLength = oamSize
)

// SerialPort is the minimal interface for a serial device connected to SB/SC.
// Implementations MUST only accept reads/writes to addr.SB and addr.SC.
type SerialPort interface {
	Write(address uint16, value byte)
	Read(address uint16) byte
	Tick(cycles int)
	Reset()
}

// Option configures an MMU at construction.
type Option func(*MMU)

// WithSerial replaces the default logging serial device.
func WithSerial(port SerialPort) Option {
	return func(m *MMU) { m.serial = port }
}

// WithSerialOptions configures the default logging serial device.
func WithSerialOptions(opts ...serial.Option) Option {
	return func(m *MMU) { m.serialOpts = append(m.serialOpts, opts...) }
}

// MMU is the DMG address space. It owns every addressable store and
// dispatches byte accesses by address range to the right store or device.
type MMU struct {
	cart *Cartridge
	mbc  BankController

	vram [0x2000]byte
	wram [0x2000]byte
	oam  [oamSize]byte
	hram [hramSize]byte
	io   [ioSize]byte // registers without a dedicated device

	LCD        LCDRegisters
	Interrupts *interrupt.Controller
	Timer      *timer.Timer
	APU        *audio.APU
	Joypad     *Joypad
	serial     SerialPort
	serialOpts []serial.Option

	regionMap [256]memRegion
}

// New creates a new memory unit with nothing in the cartridge slot.
// Equivalent to turning on a Gameboy without a cartridge in.
func New(opts ...Option) *MMU {
	m := &MMU{
		mbc:        NoCartridge{},
		Interrupts: interrupt.New(),
		Timer:      timer.New(),
		APU:        audio.New(),
		Joypad:     NewJoypad(),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.serial == nil {
		m.serial = serial.NewLogSink(func() { m.Interrupts.Raise(addr.Serial) }, m.serialOpts...)
	}

	initRegionMap(m)
	m.initRegisters()
	return m
}

// NewWithCartridge creates a new memory unit with the provided cartridge loaded.
func NewWithCartridge(cart *Cartridge, opts ...Option) *MMU {
	m := New(opts...)
	m.cart = cart
	m.mbc = cart.BankController()
	return m
}

func initRegionMap(m *MMU) {
	for i := 0x00; i <= 0x7F; i++ {
		m.regionMap[i] = regionROM
	}
	for i := 0x80; i <= 0x9F; i++ {
		m.regionMap[i] = regionVRAM
	}
	for i := 0xA0; i <= 0xBF; i++ {
		m.regionMap[i] = regionExtRAM
	}
	for i := 0xC0; i <= 0xDF; i++ {
		m.regionMap[i] = regionWRAM
	}
	for i := 0xE0; i <= 0xFD; i++ {
		m.regionMap[i] = regionEcho
	}
	// OAM and the unusable band share this page
	m.regionMap[0xFE] = regionOAM
	// IO, HRAM and IE
	m.regionMap[0xFF] = regionHigh
}

// initRegisters applies the register values the boot ROM leaves behind.
func (m *MMU) initRegisters() {
	m.Write(addr.P1, 0xCF)
	m.Write(addr.TIMA, 0x00)
	m.Write(addr.TMA, 0x00)
	m.Write(addr.TAC, 0x00)
	m.Write(addr.LCDC, 0x91)
	m.Write(addr.SCY, 0x00)
	m.Write(addr.SCX, 0x00)
	m.Write(addr.LYC, 0x00)
	m.Write(addr.BGP, 0xFC)
	m.Write(addr.OBP0, 0xFF)
	m.Write(addr.OBP1, 0xFF)
	m.Write(addr.WY, 0x00)
	m.Write(addr.WX, 0x00)
	m.Write(addr.IE, 0x00)
	// line 0 in sprite-scan with LY == LYC
	m.LCD.SetMode(2)
	m.LCD.SetCoincidence(true)
}

// Cartridge returns the loaded cartridge, nil when the slot is empty.
func (m *MMU) Cartridge() *Cartridge {
	return m.cart
}

// Tick advances the devices that only consume elapsed time: serial and audio.
func (m *MMU) Tick(cycles int) {
	m.serial.Tick(cycles)
	m.APU.Step(cycles)
}

// RequestInterrupt sets the request bit of the chosen interrupt.
func (m *MMU) RequestInterrupt(i addr.Interrupt) {
	m.Interrupts.Raise(i)
}

// SetInput applies the host input vector (Right, Left, Up, Down, A, B,
// Select, Start) and raises the Joypad interrupt on new presses.
func (m *MMU) SetInput(state [JoypadKeyCount]bool) {
	if m.Joypad.SetState(state) {
		m.Interrupts.Raise(addr.Joypad)
	}
}

func (m *MMU) ReadBit(index uint8, address uint16) bool {
	return bit.IsSet(index, m.Read(address))
}

// ReadWord reads a little endian 16 bit value.
func (m *MMU) ReadWord(address uint16) uint16 {
	low := m.Read(address)
	high := m.Read(address + 1)
	return bit.Combine(high, low)
}

// WriteWord writes a little endian 16 bit value, low byte first.
func (m *MMU) WriteWord(address uint16, value uint16) {
	m.Write(address, bit.Low(value))
	m.Write(address+1, bit.High(value))
}

func (m *MMU) Read(address uint16) byte {
	switch m.regionMap[address>>8] {
	case regionROM, regionExtRAM:
		return m.mbc.Read(address)
	case regionVRAM:
		return m.vram[address-addr.VRAMStart]
	case regionWRAM:
		return m.wram[address-addr.WRAMStart]
	case regionEcho:
		return m.wram[address-addr.EchoStart]
	case regionOAM:
		if address <= addr.OAMEnd {
			return m.oam[address-addr.OAMStart]
		}
		return 0xFF
	case regionHigh:
		return m.readHigh(address)
	default:
		panic(&UnmappedAccessError{Address: address, Access: AccessRead})
	}
}

func (m *MMU) Write(address uint16, value byte) {
	switch m.regionMap[address>>8] {
	case regionROM, regionExtRAM:
		m.mbc.Write(address, value)
	case regionVRAM:
		m.vram[address-addr.VRAMStart] = value
	case regionWRAM:
		m.wram[address-addr.WRAMStart] = value
	case regionEcho:
		m.wram[address-addr.EchoStart] = value
	case regionOAM:
		if address <= addr.OAMEnd {
			m.oam[address-addr.OAMStart] = value
		}
	case regionHigh:
		m.writeHigh(address, value)
	default:
		panic(&UnmappedAccessError{Address: address, Access: AccessWrite})
	}
}

func (m *MMU) readHigh(address uint16) byte {
	switch {
	case address == addr.P1:
		return m.Joypad.Read()
	case address == addr.SB || address == addr.SC:
		return m.serial.Read(address)
	case address >= addr.DIV && address <= addr.TAC:
		return m.Timer.Read(address)
	case address == addr.IF:
		return m.Interrupts.ReadIF()
	case address >= addr.AudioStart && address <= addr.AudioEnd:
		return m.APU.ReadRegister(address)
	case address >= addr.LCDC && address <= addr.WX:
		return m.LCD.read(address)
	case address >= addr.HRAMStart && address <= addr.HRAMEnd:
		return m.hram[address-addr.HRAMStart]
	case address == addr.IE:
		return m.Interrupts.ReadIE()
	default:
		return m.io[address-addr.IOStart]
	}
}

func (m *MMU) writeHigh(address uint16, value byte) {
	switch {
	case address == addr.P1:
		m.Joypad.Write(value)
	case address == addr.SB || address == addr.SC:
		m.serial.Write(address, value)
	case address >= addr.DIV && address <= addr.TAC:
		m.Timer.Write(address, value)
	case address == addr.IF:
		m.Interrupts.WriteIF(value)
	case address >= addr.AudioStart && address <= addr.AudioEnd:
		m.APU.WriteRegister(address, value)
	case address == addr.DMA:
		m.LCD.write(address, value)
		m.dmaTransfer(value)
	case address >= addr.LCDC && address <= addr.WX:
		m.LCD.write(address, value)
	case address >= addr.HRAMStart && address <= addr.HRAMEnd:
		m.hram[address-addr.HRAMStart] = value
	case address == addr.IE:
		m.Interrupts.WriteIE(value)
	case address == addr.IOEnd:
		// 0xFF7F is written by some games clearing IO, ignore it
	default:
		m.io[address-addr.IOStart] = value
	}
}

// dmaTransfer copies 160 bytes from value*0x100 into OAM. The copy completes
// instantly; the CPU is not stalled.
func (m *MMU) dmaTransfer(value byte) {
	source := uint16(value) << 8
	for i := range uint16(DMATransferLength) {
		m.oam[i] = m.Read(source + i)
	}
	slog.Debug("DMA transfer", "source", source)
}

// VRAM returns the video memory backing store, for debug views.
func (m *MMU) VRAM() []byte { return m.vram[:] }

// WRAM returns the work memory backing store, for debug views.
func (m *MMU) WRAM() []byte { return m.wram[:] }

// OAM returns the sprite attribute table, for debug views.
func (m *MMU) OAM() []byte { return m.oam[:] }
