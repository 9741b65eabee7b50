package bit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCombineSplitRoundTrip(t *testing.T) {
	for hi := 0; hi <= 0xFF; hi++ {
		for lo := 0; lo <= 0xFF; lo++ {
			w := Combine(uint8(hi), uint8(lo))
			if High(w) != uint8(hi) || Low(w) != uint8(lo) {
				t.Fatalf("round trip failed for %02X%02X", hi, lo)
			}
		}
	}
}

func TestSetResetIsSet(t *testing.T) {
	tests := []struct {
		name  string
		index uint8
		value uint8
	}{
		{"bit 0 of zero", 0, 0x00},
		{"bit 7 of zero", 7, 0x00},
		{"bit 3 of all ones", 3, 0xFF},
		{"bit 5 mixed", 5, 0b10101010},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, IsSet(tt.index, Set(tt.index, tt.value)))
			assert.False(t, IsSet(tt.index, Reset(tt.index, tt.value)))
			assert.Equal(t, Set(tt.index, tt.value), SetTo(tt.index, tt.value, true))
			assert.Equal(t, Reset(tt.index, tt.value), SetTo(tt.index, tt.value, false))
		})
	}
}

func TestValue(t *testing.T) {
	assert.Equal(t, uint8(1), Value(7, 0x80))
	assert.Equal(t, uint8(0), Value(6, 0x80))
}

func TestExtractBits(t *testing.T) {
	assert.Equal(t, uint8(0b101), ExtractBits(0b11010110, 6, 4))
	assert.Equal(t, uint8(0b11), ExtractBits(0b00000011, 1, 0))
	assert.Equal(t, uint8(0b1101), ExtractBits(0b11010000, 7, 4))
}

func TestHalfCarry(t *testing.T) {
	tests := []struct {
		name        string
		a, b, carry uint8
		add, sub    bool
	}{
		{"no carry", 0x01, 0x01, 0, false, false},
		{"carry out of bit 3", 0x0F, 0x01, 0, true, false},
		{"carry from carry-in", 0x0F, 0x00, 1, true, false},
		{"borrow into bit 4", 0x10, 0x01, 0, false, true},
		{"borrow from carry-in", 0x10, 0x00, 1, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.add, HalfCarryAdd(tt.a, tt.b, tt.carry))
			assert.Equal(t, tt.sub, HalfBorrowSub(tt.a, tt.b, tt.carry))
		})
	}
}

func TestLowestSet(t *testing.T) {
	assert.Equal(t, uint8(0), LowestSet(0b10101))
	assert.Equal(t, uint8(2), LowestSet(0b10100))
	assert.Equal(t, uint8(4), LowestSet(0b10000))
	assert.Equal(t, uint8(8), LowestSet(0))
}
