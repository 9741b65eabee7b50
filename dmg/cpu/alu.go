package cpu

import "github.com/valerio/go-dmg/dmg/bit"

func (cpu *CPU) inc(value uint8) uint8 {
	result := value + 1

	cpu.setFlagTo(zeroFlag, result == 0)
	cpu.setFlagTo(halfCarryFlag, value&0xF == 0xF)
	cpu.resetFlag(subFlag)
	return result
}

func (cpu *CPU) dec(value uint8) uint8 {
	result := value - 1

	cpu.setFlagTo(zeroFlag, result == 0)
	cpu.setFlagTo(halfCarryFlag, value&0xF == 0)
	cpu.setFlag(subFlag)
	return result
}

func (cpu *CPU) addWithCarry(value, carry uint8) {
	sum := uint16(cpu.a) + uint16(value) + uint16(carry)

	cpu.setFlags(uint8(sum) == 0, false, bit.HalfCarryAdd(cpu.a, value, carry), sum > 0xFF)
	cpu.a = uint8(sum)
}

// add: A = A + value
func (cpu *CPU) add(value uint8) {
	cpu.addWithCarry(value, 0)
}

// adc: A = A + value + carry
func (cpu *CPU) adc(value uint8) {
	cpu.addWithCarry(value, cpu.flagToBit(carryFlag))
}

// subWithCarry computes A - value - carry and sets flags, without storing.
func (cpu *CPU) subWithCarry(value, carry uint8) uint8 {
	diff := int(cpu.a) - int(value) - int(carry)

	cpu.setFlags(uint8(diff) == 0, true, bit.HalfBorrowSub(cpu.a, value, carry), diff < 0)
	return uint8(diff)
}

func (cpu *CPU) sub(value uint8) {
	cpu.a = cpu.subWithCarry(value, 0)
}

func (cpu *CPU) sbc(value uint8) {
	cpu.a = cpu.subWithCarry(value, cpu.flagToBit(carryFlag))
}

// cp compares A with value, A is left untouched.
func (cpu *CPU) cp(value uint8) {
	cpu.subWithCarry(value, 0)
}

func (cpu *CPU) and(value uint8) {
	cpu.a &= value
	cpu.setFlags(cpu.a == 0, false, true, false)
}

func (cpu *CPU) or(value uint8) {
	cpu.a |= value
	cpu.setFlags(cpu.a == 0, false, false, false)
}

func (cpu *CPU) xor(value uint8) {
	cpu.a ^= value
	cpu.setFlags(cpu.a == 0, false, false, false)
}

// addHL: HL = HL + value. Z is preserved, H and C come from bits 11 and 15.
func (cpu *CPU) addHL(value uint16) {
	hl := cpu.getHL()
	sum := uint32(hl) + uint32(value)

	cpu.resetFlag(subFlag)
	cpu.setFlagTo(halfCarryFlag, (hl&0x0FFF)+(value&0x0FFF) > 0x0FFF)
	cpu.setFlagTo(carryFlag, sum > 0xFFFF)
	cpu.setHL(uint16(sum))
}

// addSP returns SP + the signed offset. H and C come from the unsigned low byte sum.
func (cpu *CPU) addSP(offset uint8) uint16 {
	sp := cpu.sp
	result := uint16(int32(sp) + int32(int8(offset)))

	cpu.setFlags(false, false,
		(sp&0x0F)+uint16(offset&0x0F) > 0x0F,
		(sp&0xFF)+uint16(offset) > 0xFF)
	return result
}

// daa adjusts A into packed BCD after an addition or subtraction.
func (cpu *CPU) daa() {
	a := cpu.a
	carry := cpu.isSetFlag(carryFlag)

	if !cpu.isSetFlag(subFlag) {
		if carry || a > 0x99 {
			a += 0x60
			carry = true
		}
		if cpu.isSetFlag(halfCarryFlag) || a&0x0F > 0x09 {
			a += 0x06
		}
	} else {
		if carry {
			a -= 0x60
		}
		if cpu.isSetFlag(halfCarryFlag) {
			a -= 0x06
		}
	}

	cpu.a = a
	cpu.setFlagTo(zeroFlag, a == 0)
	cpu.resetFlag(halfCarryFlag)
	cpu.setFlagTo(carryFlag, carry)
}

func (cpu *CPU) cpl() {
	cpu.a = ^cpu.a
	cpu.setFlag(subFlag)
	cpu.setFlag(halfCarryFlag)
}

func (cpu *CPU) scf() {
	cpu.resetFlag(subFlag)
	cpu.resetFlag(halfCarryFlag)
	cpu.setFlag(carryFlag)
}

func (cpu *CPU) ccf() {
	cpu.resetFlag(subFlag)
	cpu.resetFlag(halfCarryFlag)
	cpu.setFlagTo(carryFlag, !cpu.isSetFlag(carryFlag))
}

// rotates and shifts, CB variants set Z from the result

func (cpu *CPU) rlc(value uint8) uint8 {
	result := value<<1 | value>>7
	cpu.setFlags(result == 0, false, false, value&0x80 != 0)
	return result
}

func (cpu *CPU) rrc(value uint8) uint8 {
	result := value>>1 | value<<7
	cpu.setFlags(result == 0, false, false, value&0x01 != 0)
	return result
}

func (cpu *CPU) rl(value uint8) uint8 {
	result := value<<1 | cpu.flagToBit(carryFlag)
	cpu.setFlags(result == 0, false, false, value&0x80 != 0)
	return result
}

func (cpu *CPU) rr(value uint8) uint8 {
	result := value>>1 | cpu.flagToBit(carryFlag)<<7
	cpu.setFlags(result == 0, false, false, value&0x01 != 0)
	return result
}

func (cpu *CPU) sla(value uint8) uint8 {
	result := value << 1
	cpu.setFlags(result == 0, false, false, value&0x80 != 0)
	return result
}

// sra keeps bit 7.
func (cpu *CPU) sra(value uint8) uint8 {
	result := value>>1 | value&0x80
	cpu.setFlags(result == 0, false, false, value&0x01 != 0)
	return result
}

func (cpu *CPU) srl(value uint8) uint8 {
	result := value >> 1
	cpu.setFlags(result == 0, false, false, value&0x01 != 0)
	return result
}

func (cpu *CPU) swap(value uint8) uint8 {
	result := value<<4 | value>>4
	cpu.setFlags(result == 0, false, false, false)
	return result
}

// The accumulator rotates always clear Z.

func (cpu *CPU) rlca() {
	cpu.a = cpu.rlc(cpu.a)
	cpu.resetFlag(zeroFlag)
}

func (cpu *CPU) rrca() {
	cpu.a = cpu.rrc(cpu.a)
	cpu.resetFlag(zeroFlag)
}

func (cpu *CPU) rla() {
	cpu.a = cpu.rl(cpu.a)
	cpu.resetFlag(zeroFlag)
}

func (cpu *CPU) rra() {
	cpu.a = cpu.rr(cpu.a)
	cpu.resetFlag(zeroFlag)
}

// bit tests bit n of value, C is preserved.
func (cpu *CPU) bit(n, value uint8) {
	cpu.setFlagTo(zeroFlag, !bit.IsSet(n, value))
	cpu.resetFlag(subFlag)
	cpu.setFlag(halfCarryFlag)
}
