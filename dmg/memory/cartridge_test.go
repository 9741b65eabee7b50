package memory

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testImage builds a ROM image of size bytes with a valid header for cartType.
func testImage(size int, cartType uint8, title string) []byte {
	data := make([]byte, size)
	for i := range data {
		data[i] = uint8(i / romBankSize)
	}
	for i := titleAddress; i <= titleEndAddress; i++ {
		data[i] = 0
	}
	copy(data[titleAddress:], title)
	data[cartridgeTypeAddress] = cartType
	data[romSizeAddress] = 0
	data[ramSizeAddress] = 0
	data[versionNumberAddress] = 0

	var x uint8
	for _, b := range data[titleAddress:headerChecksumAddress] {
		x = x - b - 1
	}
	data[headerChecksumAddress] = x
	return data
}

func TestLoadCartridge_Header(t *testing.T) {
	data := testImage(0x8000, TypeROMOnly, "TETRIS")
	data[ramSizeAddress] = 0x02
	data[versionNumberAddress] = 1
	var x uint8
	for _, b := range data[titleAddress:headerChecksumAddress] {
		x = x - b - 1
	}
	data[headerChecksumAddress] = x

	cart, err := LoadCartridge(data)
	require.NoError(t, err)

	assert.Equal(t, "TETRIS", cart.Title)
	assert.Equal(t, TypeROMOnly, cart.Type)
	assert.Equal(t, 32*1024, cart.ROMSize)
	assert.Equal(t, 8*1024, cart.RAMSize)
	assert.Equal(t, uint8(1), cart.Version)
	assert.True(t, cart.ValidHeaderChecksum())
	assert.Contains(t, cart.String(), "Title:    TETRIS")
	assert.Contains(t, cart.String(), "(ok)")
}

func TestLoadCartridge_CopiesImage(t *testing.T) {
	data := testImage(0x8000, TypeROMOnly, "COPY")
	cart, err := LoadCartridge(data)
	require.NoError(t, err)

	data[0x0200] = 0x99
	assert.Equal(t, uint8(0), cart.BankController().Read(0x0200))
}

func TestLoadCartridge_Errors(t *testing.T) {
	t.Run("short image", func(t *testing.T) {
		_, err := LoadCartridge(make([]byte, 0x100))
		assert.ErrorIs(t, err, ErrShortImage)
	})

	t.Run("unsupported type", func(t *testing.T) {
		_, err := LoadCartridge(testImage(0x8000, 0xFC, "CAMERA"))
		var unsupported *UnsupportedCartridgeError
		require.True(t, errors.As(err, &unsupported))
		assert.Equal(t, uint8(0xFC), unsupported.Type)
		assert.Equal(t, "unsupported cartridge type 0xFC", err.Error())
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadCartridgeFile(filepath.Join(t.TempDir(), "missing.gb"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}

func TestLoadCartridgeFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "game.gb")
	require.NoError(t, os.WriteFile(path, testImage(0x8000, TypeMBC1, "FILE"), 0o644))

	cart, err := LoadCartridgeFile(path)
	require.NoError(t, err)
	assert.Equal(t, "FILE", cart.Title)
	assert.Equal(t, "MBC1", cart.TypeName())
}

func TestCartridge_BankControllerSelection(t *testing.T) {
	tests := []struct {
		name     string
		cartType uint8
		check    func(t *testing.T, bc BankController)
	}{
		{"rom only", TypeROMOnly, func(t *testing.T, bc BankController) {
			assert.IsType(t, &NoMBC{}, bc)
		}},
		{"mbc1", TypeMBC1, func(t *testing.T, bc BankController) {
			require.IsType(t, &MBC1{}, bc)
			assert.Empty(t, bc.(*MBC1).ram)
		}},
		{"mbc1 ram", TypeMBC1RAM, func(t *testing.T, bc BankController) {
			require.IsType(t, &MBC1{}, bc)
			assert.Len(t, bc.(*MBC1).ram, ramBankSize)
		}},
		{"mbc1 ram battery", TypeMBC1RAMBattery, func(t *testing.T, bc BankController) {
			require.IsType(t, &MBC1{}, bc)
		}},
		{"mbc2", TypeMBC2, func(t *testing.T, bc BankController) {
			assert.IsType(t, &MBC2{}, bc)
		}},
		{"mbc2 battery", TypeMBC2Battery, func(t *testing.T, bc BankController) {
			assert.IsType(t, &MBC2{}, bc)
		}},
		{"mbc3", TypeMBC3, func(t *testing.T, bc BankController) {
			require.IsType(t, &MBC3{}, bc)
			assert.Empty(t, bc.(*MBC3).ram)
			assert.Nil(t, bc.(*MBC3).rtc)
		}},
		{"mbc3 ram battery", TypeMBC3RAMBattery, func(t *testing.T, bc BankController) {
			require.IsType(t, &MBC3{}, bc)
			assert.Len(t, bc.(*MBC3).ram, ramBankSize)
			assert.Nil(t, bc.(*MBC3).rtc)
		}},
		{"mbc3 timer battery", TypeMBC3TimerBattery, func(t *testing.T, bc BankController) {
			require.IsType(t, &MBC3{}, bc)
			assert.Empty(t, bc.(*MBC3).ram)
			assert.NotNil(t, bc.(*MBC3).rtc)
		}},
		{"mbc3 timer ram battery", TypeMBC3TimerRAMBattery, func(t *testing.T, bc BankController) {
			require.IsType(t, &MBC3{}, bc)
			assert.Len(t, bc.(*MBC3).ram, ramBankSize)
			assert.NotNil(t, bc.(*MBC3).rtc)
		}},
		{"mbc5", TypeMBC5, func(t *testing.T, bc BankController) {
			require.IsType(t, &MBC5{}, bc)
			assert.Empty(t, bc.(*MBC5).ram)
			assert.False(t, bc.(*MBC5).hasRumble)
		}},
		{"mbc5 ram", TypeMBC5RAM, func(t *testing.T, bc BankController) {
			require.IsType(t, &MBC5{}, bc)
			assert.Len(t, bc.(*MBC5).ram, ramBankSize)
		}},
		{"mbc5 rumble", TypeMBC5Rumble, func(t *testing.T, bc BankController) {
			require.IsType(t, &MBC5{}, bc)
			assert.True(t, bc.(*MBC5).hasRumble)
		}},
		{"mbc5 rumble ram battery", TypeMBC5RumbleRAMBattery, func(t *testing.T, bc BankController) {
			require.IsType(t, &MBC5{}, bc)
			assert.True(t, bc.(*MBC5).hasRumble)
			assert.Len(t, bc.(*MBC5).ram, ramBankSize)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cart, err := LoadCartridge(testImage(0x8000, tt.cartType, "SEL"))
			require.NoError(t, err)
			tt.check(t, cart.BankController())
		})
	}
}

func TestCartridge_TypeName(t *testing.T) {
	tests := []struct {
		cartType uint8
		want     string
	}{
		{TypeROMOnly, "ROM ONLY"},
		{TypeMBC1RAMBattery, "MBC1+RAM+BATTERY"},
		{TypeMBC2Battery, "MBC2+BATTERY"},
		{TypeMBC3TimerRAMBattery, "MBC3+TIMER+RAM+BATTERY"},
		{TypeMBC5RumbleRAM, "MBC5+RUMBLE+RAM"},
		{0xFC, "UNKNOWN(0xFC)"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			c := &Cartridge{Type: tt.cartType}
			assert.Equal(t, tt.want, c.TypeName())
		})
	}
}

func TestCartridge_ChecksumMismatch(t *testing.T) {
	data := testImage(0x8000, TypeROMOnly, "BAD")
	data[headerChecksumAddress]++
	cart, err := LoadCartridge(data)
	require.NoError(t, err)
	assert.False(t, cart.ValidHeaderChecksum())
	assert.Contains(t, cart.String(), "mismatch")
}

func TestCleanGameboyTitle(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
		want  string
	}{
		{"padded with NULs", []byte("ZELDA\x00\x00\x00"), "ZELDA"},
		{"non printable", []byte{'A', 0x01, 'B'}, "A?B"},
		{"high bytes", []byte{'A', 0xC8}, "A?"},
		{"empty", []byte{0, 0, 0}, "(Untitled)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cleanGameboyTitle(tt.input))
		})
	}
}
