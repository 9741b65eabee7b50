package memory

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode"
)

const (
	titleAddress          = 0x134
	titleEndAddress       = 0x142
	cartridgeTypeAddress  = 0x147
	romSizeAddress        = 0x148
	ramSizeAddress        = 0x149
	versionNumberAddress  = 0x14C
	headerChecksumAddress = 0x14D

	headerEnd = 0x150
)

// Cartridge type header values this emulator knows how to drive.
const (
	TypeROMOnly        uint8 = 0x00
	TypeMBC1           uint8 = 0x01
	TypeMBC1RAM        uint8 = 0x02
	TypeMBC1RAMBattery uint8 = 0x03

	TypeMBC2        uint8 = 0x05
	TypeMBC2Battery uint8 = 0x06

	TypeMBC3TimerBattery    uint8 = 0x0F
	TypeMBC3TimerRAMBattery uint8 = 0x10
	TypeMBC3                uint8 = 0x11
	TypeMBC3RAM             uint8 = 0x12
	TypeMBC3RAMBattery      uint8 = 0x13

	TypeMBC5                 uint8 = 0x19
	TypeMBC5RAM              uint8 = 0x1A
	TypeMBC5RAMBattery       uint8 = 0x1B
	TypeMBC5Rumble           uint8 = 0x1C
	TypeMBC5RumbleRAM        uint8 = 0x1D
	TypeMBC5RumbleRAMBattery uint8 = 0x1E
)

var typeNames = map[uint8]string{
	TypeROMOnly:              "ROM ONLY",
	TypeMBC1:                 "MBC1",
	TypeMBC1RAM:              "MBC1+RAM",
	TypeMBC1RAMBattery:       "MBC1+RAM+BATTERY",
	TypeMBC2:                 "MBC2",
	TypeMBC2Battery:          "MBC2+BATTERY",
	TypeMBC3TimerBattery:     "MBC3+TIMER+BATTERY",
	TypeMBC3TimerRAMBattery:  "MBC3+TIMER+RAM+BATTERY",
	TypeMBC3:                 "MBC3",
	TypeMBC3RAM:              "MBC3+RAM",
	TypeMBC3RAMBattery:       "MBC3+RAM+BATTERY",
	TypeMBC5:                 "MBC5",
	TypeMBC5RAM:              "MBC5+RAM",
	TypeMBC5RAMBattery:       "MBC5+RAM+BATTERY",
	TypeMBC5Rumble:           "MBC5+RUMBLE",
	TypeMBC5RumbleRAM:        "MBC5+RUMBLE+RAM",
	TypeMBC5RumbleRAMBattery: "MBC5+RUMBLE+RAM+BATTERY",
}

var ramSizes = map[uint8]int{
	0x00: 0,
	0x01: 2 * 1024,
	0x02: 8 * 1024,
	0x03: 32 * 1024,
	0x04: 128 * 1024,
	0x05: 64 * 1024,
}

// ErrShortImage is returned for files too small to hold a cartridge header.
var ErrShortImage = errors.New("cartridge image is smaller than its header")

// Cartridge is a loaded ROM image plus the metadata parsed from its header.
type Cartridge struct {
	data           []byte
	Title          string
	Type           uint8
	ROMSize        int
	RAMSize        int
	Version        uint8
	HeaderChecksum uint8
}

// LoadCartridge parses the header of a ROM image. Unknown controller types are
// rejected here, so no instruction ever runs against an unsupported cartridge.
func LoadCartridge(data []byte) (*Cartridge, error) {
	if len(data) < headerEnd {
		return nil, ErrShortImage
	}

	cart := &Cartridge{
		data:           make([]byte, len(data)),
		Title:          cleanGameboyTitle(data[titleAddress : titleEndAddress+1]),
		Type:           data[cartridgeTypeAddress],
		ROMSize:        (32 * 1024) << data[romSizeAddress],
		RAMSize:        ramSizes[data[ramSizeAddress]],
		Version:        data[versionNumberAddress],
		HeaderChecksum: data[headerChecksumAddress],
	}
	copy(cart.data, data)

	if _, ok := typeNames[cart.Type]; !ok {
		return nil, &UnsupportedCartridgeError{Type: cart.Type}
	}

	return cart, nil
}

// LoadCartridgeFile reads and parses a ROM file.
func LoadCartridgeFile(path string) (*Cartridge, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading ROM: %w", err)
	}
	return LoadCartridge(data)
}

// BankController builds the controller matching the header type. MBC3 clocks
// run off the host's wall clock.
func (c *Cartridge) BankController() BankController {
	return c.BankControllerWithClock(SystemClock)
}

// BankControllerWithClock is BankController with the clock an MBC3 RTC reads.
func (c *Cartridge) BankControllerWithClock(clock Clock) BankController {
	switch c.Type {
	case TypeMBC1:
		return NewMBC1(c.data, 0)
	case TypeMBC1RAM, TypeMBC1RAMBattery:
		return NewMBC1(c.data, c.externalRAMSize())
	case TypeMBC2, TypeMBC2Battery:
		return NewMBC2(c.data)
	case TypeMBC3:
		return NewMBC3(c.data, 0, nil)
	case TypeMBC3RAM, TypeMBC3RAMBattery:
		return NewMBC3(c.data, c.externalRAMSize(), nil)
	case TypeMBC3TimerBattery:
		return NewMBC3(c.data, 0, clock)
	case TypeMBC3TimerRAMBattery:
		return NewMBC3(c.data, c.externalRAMSize(), clock)
	case TypeMBC5, TypeMBC5Rumble:
		return NewMBC5(c.data, 0, c.Type == TypeMBC5Rumble)
	case TypeMBC5RAM, TypeMBC5RAMBattery:
		return NewMBC5(c.data, c.externalRAMSize(), false)
	case TypeMBC5RumbleRAM, TypeMBC5RumbleRAMBattery:
		return NewMBC5(c.data, c.externalRAMSize(), true)
	default:
		return NewNoMBC(c.data)
	}
}

// externalRAMSize is the header RAM size, with at least one bank for types
// that declare RAM but leave the size byte at 0.
func (c *Cartridge) externalRAMSize() int {
	return max(c.RAMSize, ramBankSize)
}

// ValidHeaderChecksum verifies the checksum over 0x134-0x14C the boot ROM checks.
func (c *Cartridge) ValidHeaderChecksum() bool {
	var x uint8
	for _, b := range c.data[titleAddress:headerChecksumAddress] {
		x = x - b - 1
	}
	return x == c.HeaderChecksum
}

// TypeName returns a readable name for the controller type.
func (c *Cartridge) TypeName() string {
	if name, ok := typeNames[c.Type]; ok {
		return name
	}
	return fmt.Sprintf("UNKNOWN(0x%02X)", c.Type)
}

// String is the human readable header report.
func (c *Cartridge) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Title:    %s\n", c.Title)
	fmt.Fprintf(&sb, "Type:     %s\n", c.TypeName())
	fmt.Fprintf(&sb, "ROM size: %d KB\n", c.ROMSize/1024)
	fmt.Fprintf(&sb, "RAM size: %d KB\n", c.RAMSize/1024)
	fmt.Fprintf(&sb, "Version:  %d\n", c.Version)
	checksum := "ok"
	if !c.ValidHeaderChecksum() {
		checksum = "mismatch"
	}
	fmt.Fprintf(&sb, "Checksum: 0x%02X (%s)", c.HeaderChecksum, checksum)
	return sb.String()
}

// cleanGameboyTitle turns the raw title bytes into a printable string:
// NULs become spaces, non-printable bytes become '?', and the result is trimmed.
func cleanGameboyTitle(titleBytes []byte) string {
	runes := make([]rune, 0, len(titleBytes))
	for _, b := range titleBytes {
		r := rune(b)
		if r == 0 {
			r = ' '
		} else if r > unicode.MaxASCII || !unicode.IsPrint(r) {
			r = '?'
		}
		runes = append(runes, r)
	}

	title := strings.TrimSpace(string(runes))
	if title == "" {
		return "(Untitled)"
	}
	return title
}
