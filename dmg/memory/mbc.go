package memory

// BankController answers cartridge reads (0x0000-0x7FFF, 0xA000-0xBFFF) and
// handles writes to the same ranges, which select banks or hit external RAM.
type BankController interface {
	Read(address uint16) uint8
	Write(address uint16, value uint8)
}

const (
	romBankSize = 0x4000
	ramBankSize = 0x2000
)

// NoCartridge is the controller used when the slot is empty: the data bus
// floats high, so every read is 0xFF.
type NoCartridge struct{}

func (NoCartridge) Read(address uint16) uint8         { return 0xFF }
func (NoCartridge) Write(address uint16, value uint8) {}

// NoMBC represents cartridges with no memory banking capabilities.
// The ROM (32KB or less) is directly mapped to 0x0000-0x7FFF and cannot be
// switched. Writes are ignored and there is no external RAM.
type NoMBC struct {
	rom []uint8
}

// NewNoMBC creates a new NoMBC controller
func NewNoMBC(rom []uint8) *NoMBC {
	return &NoMBC{rom: rom}
}

func (m *NoMBC) Read(address uint16) uint8 {
	if address > 0x7FFF || int(address) >= len(m.rom) {
		return 0xFF
	}
	return m.rom[address]
}

func (m *NoMBC) Write(address uint16, value uint8) {}

// MBC1 is the first and most common MBC chip. Features include:
//   - Up to 2MB ROM (125 16KB banks), bank 0 fixed at 0x0000-0x3FFF
//   - Switchable ROM bank at 0x4000-0x7FFF, selected by a 5 bit register
//     where bank 0 is remapped to bank 1
//   - Up to 32KB RAM (4 8KB banks) at 0xA000-0xBFFF, off until enabled
//   - Two banking modes: mode 0 routes the 2 bit register to the upper ROM
//     bank bits, mode 1 routes it to the RAM bank
type MBC1 struct {
	rom         []uint8
	ram         []uint8
	romBank     uint8 // low 5 bits, never 0
	upperBits   uint8 // 2 bit secondary register
	ramEnabled  bool
	bankingMode uint8
}

// NewMBC1 creates a new MBC1 controller with ramSize bytes of external RAM.
func NewMBC1(rom []uint8, ramSize int) *MBC1 {
	return &MBC1{
		rom:     rom,
		ram:     make([]uint8, ramSize),
		romBank: 1,
	}
}

// ROMBank returns the bank currently mapped at 0x4000-0x7FFF.
func (m *MBC1) ROMBank() int {
	bank := int(m.romBank)
	if m.bankingMode == 0 {
		bank |= int(m.upperBits) << 5
	}
	return bank
}

func (m *MBC1) ramBank() int {
	if m.bankingMode == 1 {
		return int(m.upperBits)
	}
	return 0
}

func (m *MBC1) Read(address uint16) uint8 {
	switch {
	case address <= 0x3FFF:
		return m.romAt(int(address))
	case address <= 0x7FFF:
		return m.romAt(m.ROMBank()*romBankSize + int(address-0x4000))
	case address >= 0xA000 && address <= 0xBFFF:
		if !m.ramEnabled || len(m.ram) == 0 {
			return 0xFF
		}
		return m.ram[m.ramOffset(address)]
	default:
		return 0xFF
	}
}

func (m *MBC1) Write(address uint16, value uint8) {
	switch {
	case address <= 0x1FFF:
		m.ramEnabled = value&0x0F == 0x0A
	case address <= 0x3FFF:
		bank := value & 0x1F
		if bank == 0 {
			bank = 1
		}
		m.romBank = bank
	case address <= 0x5FFF:
		m.upperBits = value & 0x03
	case address <= 0x7FFF:
		m.bankingMode = value & 0x01
	case address >= 0xA000 && address <= 0xBFFF:
		if !m.ramEnabled || len(m.ram) == 0 {
			return
		}
		m.ram[m.ramOffset(address)] = value
	}
}

func (m *MBC1) romAt(offset int) uint8 {
	return wrapROM(m.rom, offset)
}

func (m *MBC1) ramOffset(address uint16) int {
	return (m.ramBank()*ramBankSize + int(address-0xA000)) % len(m.ram)
}

// wrapROM reads the image, wrapping banks past the end of the ROM the way the
// unconnected upper bank lines do on carts smaller than the register range.
func wrapROM(rom []uint8, offset int) uint8 {
	if len(rom) == 0 {
		return 0xFF
	}
	return rom[offset%len(rom)]
}

// wrapRAM maps a banked RAM offset into ram, or returns -1 when there is none.
func wrapRAM(ram []uint8, bank int, address uint16) int {
	if len(ram) == 0 {
		return -1
	}
	return (bank*ramBankSize + int(address-0xA000)) % len(ram)
}

const mbc2RAMSize = 512

// MBC2 is a small controller with RAM built into the chip. Features include:
//   - Up to 256KB ROM (16 banks), bank 0 fixed at 0x0000-0x3FFF
//   - 512 x 4 bit RAM, mirrored across 0xA000-0xBFFF; the upper nibble
//     reads back as 1s
//   - A single register range at 0x0000-0x3FFF: address bit 8 clear enables
//     RAM, bit 8 set selects the ROM bank
type MBC2 struct {
	rom        []uint8
	ram        [mbc2RAMSize]uint8
	romBank    uint8
	ramEnabled bool
}

// NewMBC2 creates a new MBC2 controller
func NewMBC2(rom []uint8) *MBC2 {
	return &MBC2{rom: rom, romBank: 1}
}

// ROMBank returns the bank currently mapped at 0x4000-0x7FFF.
func (m *MBC2) ROMBank() int {
	return int(m.romBank)
}

func (m *MBC2) Read(address uint16) uint8 {
	switch {
	case address <= 0x3FFF:
		return wrapROM(m.rom, int(address))
	case address <= 0x7FFF:
		return wrapROM(m.rom, int(m.romBank)*romBankSize+int(address-0x4000))
	case address >= 0xA000 && address <= 0xBFFF:
		if !m.ramEnabled {
			return 0xFF
		}
		return m.ram[address&(mbc2RAMSize-1)] | 0xF0
	default:
		return 0xFF
	}
}

func (m *MBC2) Write(address uint16, value uint8) {
	switch {
	case address <= 0x3FFF:
		if address&0x0100 == 0 {
			m.ramEnabled = value&0x0F == 0x0A
			return
		}
		bank := value & 0x0F
		if bank == 0 {
			bank = 1
		}
		m.romBank = bank
	case address >= 0xA000 && address <= 0xBFFF:
		if m.ramEnabled {
			m.ram[address&(mbc2RAMSize-1)] = value & 0x0F
		}
	}
}

// MBC3 adds a 7 bit ROM bank register and an optional real time clock.
// Features include:
//   - Up to 2MB ROM (128 banks), bank 0 remapped to bank 1
//   - Up to 32KB RAM (4 banks); writing 0x08-0x0C to 0x4000-0x5FFF maps an
//     RTC register into 0xA000-0xBFFF instead
//   - Writing 0x00 then 0x01 to 0x6000-0x7FFF latches the running clock
//     into the readable RTC registers
type MBC3 struct {
	rom        []uint8
	ram        []uint8
	romBank    uint8
	ramBank    uint8 // 0x00-0x03 RAM bank, 0x08-0x0C RTC register
	ramEnabled bool

	rtc        *RTC // nil on carts without a clock
	latchArmed bool
}

// NewMBC3 creates a new MBC3 controller. A nil clock means the cartridge has
// no RTC.
func NewMBC3(rom []uint8, ramSize int, clock Clock) *MBC3 {
	m := &MBC3{
		rom:     rom,
		ram:     make([]uint8, ramSize),
		romBank: 1,
	}
	if clock != nil {
		m.rtc = NewRTC(clock)
	}
	return m
}

// ROMBank returns the bank currently mapped at 0x4000-0x7FFF.
func (m *MBC3) ROMBank() int {
	return int(m.romBank)
}

func (m *MBC3) Read(address uint16) uint8 {
	switch {
	case address <= 0x3FFF:
		return wrapROM(m.rom, int(address))
	case address <= 0x7FFF:
		return wrapROM(m.rom, int(m.romBank)*romBankSize+int(address-0x4000))
	case address >= 0xA000 && address <= 0xBFFF:
		if !m.ramEnabled {
			return 0xFF
		}
		if reg, ok := m.rtcRegister(); ok {
			return m.rtc.Read(reg)
		}
		if m.ramBank > 0x03 {
			return 0xFF
		}
		off := wrapRAM(m.ram, int(m.ramBank), address)
		if off < 0 {
			return 0xFF
		}
		return m.ram[off]
	default:
		return 0xFF
	}
}

func (m *MBC3) Write(address uint16, value uint8) {
	switch {
	case address <= 0x1FFF:
		m.ramEnabled = value&0x0F == 0x0A
	case address <= 0x3FFF:
		bank := value & 0x7F
		if bank == 0 {
			bank = 1
		}
		m.romBank = bank
	case address <= 0x5FFF:
		m.ramBank = value
	case address <= 0x7FFF:
		if m.latchArmed && value == 0x01 && m.rtc != nil {
			m.rtc.Latch()
		}
		m.latchArmed = value == 0x00
	case address >= 0xA000 && address <= 0xBFFF:
		if !m.ramEnabled {
			return
		}
		if reg, ok := m.rtcRegister(); ok {
			m.rtc.Write(reg, value)
			return
		}
		if m.ramBank > 0x03 {
			return
		}
		if off := wrapRAM(m.ram, int(m.ramBank), address); off >= 0 {
			m.ram[off] = value
		}
	}
}

func (m *MBC3) rtcRegister() (RTCRegister, bool) {
	if m.rtc == nil || m.ramBank < 0x08 || m.ramBank > 0x0C {
		return 0, false
	}
	return RTCRegister(m.ramBank - 0x08), true
}

// MBC5 has plain 9 bit ROM banking with none of MBC1's quirks. Features
// include:
//   - Up to 8MB ROM (512 banks); bank 0 can be mapped at 0x4000-0x7FFF
//   - 0x2000-0x2FFF writes the low 8 bank bits, 0x3000-0x3FFF writes bit 8
//   - Up to 128KB RAM (16 banks); on rumble carts bit 3 of the RAM bank
//     register drives the motor instead
type MBC5 struct {
	rom        []uint8
	ram        []uint8
	romBank    uint16
	ramBank    uint8
	ramEnabled bool
	hasRumble  bool
	rumble     bool
}

// NewMBC5 creates a new MBC5 controller
func NewMBC5(rom []uint8, ramSize int, hasRumble bool) *MBC5 {
	return &MBC5{
		rom:       rom,
		ram:       make([]uint8, ramSize),
		romBank:   1,
		hasRumble: hasRumble,
	}
}

// ROMBank returns the bank currently mapped at 0x4000-0x7FFF.
func (m *MBC5) ROMBank() int {
	return int(m.romBank)
}

// Rumble reports whether the game is driving the rumble motor.
func (m *MBC5) Rumble() bool {
	return m.rumble
}

func (m *MBC5) Read(address uint16) uint8 {
	switch {
	case address <= 0x3FFF:
		return wrapROM(m.rom, int(address))
	case address <= 0x7FFF:
		return wrapROM(m.rom, int(m.romBank)*romBankSize+int(address-0x4000))
	case address >= 0xA000 && address <= 0xBFFF:
		off := wrapRAM(m.ram, int(m.ramBank), address)
		if !m.ramEnabled || off < 0 {
			return 0xFF
		}
		return m.ram[off]
	default:
		return 0xFF
	}
}

func (m *MBC5) Write(address uint16, value uint8) {
	switch {
	case address <= 0x1FFF:
		m.ramEnabled = value&0x0F == 0x0A
	case address <= 0x2FFF:
		m.romBank = m.romBank&0x100 | uint16(value)
	case address <= 0x3FFF:
		m.romBank = m.romBank&0xFF | uint16(value&0x01)<<8
	case address <= 0x5FFF:
		if m.hasRumble {
			m.rumble = value&0x08 != 0
			m.ramBank = value & 0x07
			return
		}
		m.ramBank = value & 0x0F
	case address >= 0xA000 && address <= 0xBFFF:
		if !m.ramEnabled {
			return
		}
		if off := wrapRAM(m.ram, int(m.ramBank), address); off >= 0 {
			m.ram[off] = value
		}
	}
}
