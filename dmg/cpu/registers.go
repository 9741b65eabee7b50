package cpu

import (
	"fmt"

	"github.com/valerio/go-dmg/dmg/bit"
)

// operand encoding shared by the regular opcode blocks
const (
	regB uint8 = iota
	regC
	regD
	regE
	regH
	regL
	regHL // memory at HL
	regA
)

func (cpu *CPU) getAF() uint16 { return bit.Combine(cpu.a, cpu.f) }
func (cpu *CPU) getBC() uint16 { return bit.Combine(cpu.b, cpu.c) }
func (cpu *CPU) getDE() uint16 { return bit.Combine(cpu.d, cpu.e) }
func (cpu *CPU) getHL() uint16 { return bit.Combine(cpu.h, cpu.l) }

// setAF drops the low nibble of F, which has no flags behind it.
func (cpu *CPU) setAF(value uint16) {
	cpu.a = bit.High(value)
	cpu.f = bit.Low(value) & 0xF0
}

func (cpu *CPU) setBC(value uint16) {
	cpu.b, cpu.c = bit.High(value), bit.Low(value)
}

func (cpu *CPU) setDE(value uint16) {
	cpu.d, cpu.e = bit.High(value), bit.Low(value)
}

func (cpu *CPU) setHL(value uint16) {
	cpu.h, cpu.l = bit.High(value), bit.Low(value)
}

// reg reads an operand by its 3 bit encoding.
func (cpu *CPU) reg(index uint8) uint8 {
	switch index {
	case regB:
		return cpu.b
	case regC:
		return cpu.c
	case regD:
		return cpu.d
	case regE:
		return cpu.e
	case regH:
		return cpu.h
	case regL:
		return cpu.l
	case regHL:
		return cpu.bus.Read(cpu.getHL())
	default:
		return cpu.a
	}
}

// setReg writes an operand by its 3 bit encoding.
func (cpu *CPU) setReg(index, value uint8) {
	switch index {
	case regB:
		cpu.b = value
	case regC:
		cpu.c = value
	case regD:
		cpu.d = value
	case regE:
		cpu.e = value
	case regH:
		cpu.h = value
	case regL:
		cpu.l = value
	case regHL:
		cpu.bus.Write(cpu.getHL(), value)
	default:
		cpu.a = value
	}
}

// Registers is a snapshot of the register file.
type Registers struct {
	AF, BC, DE, HL uint16
	SP, PC         uint16
}

func (r Registers) String() string {
	return fmt.Sprintf("AF=%04X BC=%04X DE=%04X HL=%04X SP=%04X PC=%04X", r.AF, r.BC, r.DE, r.HL, r.SP, r.PC)
}

func (cpu *CPU) Registers() Registers {
	return Registers{
		AF: cpu.getAF(),
		BC: cpu.getBC(),
		DE: cpu.getDE(),
		HL: cpu.getHL(),
		SP: cpu.sp,
		PC: cpu.pc,
	}
}

// SetPC moves execution, for test harnesses that load code at arbitrary addresses.
func (cpu *CPU) SetPC(pc uint16) {
	cpu.pc = pc
}
