package cpu

import "github.com/valerio/go-dmg/dmg/bit"

// NOP
// 0x00:
func opcode0x00(_ *CPU) int {
	return 4
}

// LD BC, nn
// 0x01:
func opcode0x01(cpu *CPU) int {
	cpu.setBC(cpu.readImmediateWord())
	return 12
}

// LD (BC), A
// 0x02:
func opcode0x02(cpu *CPU) int {
	cpu.bus.Write(cpu.getBC(), cpu.a)
	return 8
}

// INC BC
// 0x03:
func opcode0x03(cpu *CPU) int {
	cpu.setBC(cpu.getBC() + 1)
	return 8
}

// INC B
// 0x04:
func opcode0x04(cpu *CPU) int {
	cpu.b = cpu.inc(cpu.b)
	return 4
}

// DEC B
// 0x05:
func opcode0x05(cpu *CPU) int {
	cpu.b = cpu.dec(cpu.b)
	return 4
}

// LD B, n
// 0x06:
func opcode0x06(cpu *CPU) int {
	cpu.b = cpu.readImmediate()
	return 8
}

// RLCA
// 0x07:
func opcode0x07(cpu *CPU) int {
	cpu.rlca()
	return 4
}

// LD (nn), SP
// 0x08:
func opcode0x08(cpu *CPU) int {
	address := cpu.readImmediateWord()
	cpu.bus.Write(address, bit.Low(cpu.sp))
	cpu.bus.Write(address+1, bit.High(cpu.sp))
	return 20
}

// ADD HL, BC
// 0x09:
func opcode0x09(cpu *CPU) int {
	cpu.addHL(cpu.getBC())
	return 8
}

// LD A, (BC)
// 0x0A:
func opcode0x0A(cpu *CPU) int {
	cpu.a = cpu.bus.Read(cpu.getBC())
	return 8
}

// DEC BC
// 0x0B:
func opcode0x0B(cpu *CPU) int {
	cpu.setBC(cpu.getBC() - 1)
	return 8
}

// INC C
// 0x0C:
func opcode0x0C(cpu *CPU) int {
	cpu.c = cpu.inc(cpu.c)
	return 4
}

// DEC C
// 0x0D:
func opcode0x0D(cpu *CPU) int {
	cpu.c = cpu.dec(cpu.c)
	return 4
}

// LD C, n
// 0x0E:
func opcode0x0E(cpu *CPU) int {
	cpu.c = cpu.readImmediate()
	return 8
}

// RRCA
// 0x0F:
func opcode0x0F(cpu *CPU) int {
	cpu.rrca()
	return 4
}

// STOP
// 0x10:
func opcode0x10(cpu *CPU) int {
	// the second byte of STOP is padding
	cpu.readImmediate()
	cpu.stopped = true
	return 4
}

// LD DE, nn
// 0x11:
func opcode0x11(cpu *CPU) int {
	cpu.setDE(cpu.readImmediateWord())
	return 12
}

// LD (DE), A
// 0x12:
func opcode0x12(cpu *CPU) int {
	cpu.bus.Write(cpu.getDE(), cpu.a)
	return 8
}

// INC DE
// 0x13:
func opcode0x13(cpu *CPU) int {
	cpu.setDE(cpu.getDE() + 1)
	return 8
}

// INC D
// 0x14:
func opcode0x14(cpu *CPU) int {
	cpu.d = cpu.inc(cpu.d)
	return 4
}

// DEC D
// 0x15:
func opcode0x15(cpu *CPU) int {
	cpu.d = cpu.dec(cpu.d)
	return 4
}

// LD D, n
// 0x16:
func opcode0x16(cpu *CPU) int {
	cpu.d = cpu.readImmediate()
	return 8
}

// RLA
// 0x17:
func opcode0x17(cpu *CPU) int {
	cpu.rla()
	return 4
}

// JR n
// 0x18:
func opcode0x18(cpu *CPU) int {
	return cpu.jr(true)
}

// ADD HL, DE
// 0x19:
func opcode0x19(cpu *CPU) int {
	cpu.addHL(cpu.getDE())
	return 8
}

// LD A, (DE)
// 0x1A:
func opcode0x1A(cpu *CPU) int {
	cpu.a = cpu.bus.Read(cpu.getDE())
	return 8
}

// DEC DE
// 0x1B:
func opcode0x1B(cpu *CPU) int {
	cpu.setDE(cpu.getDE() - 1)
	return 8
}

// INC E
// 0x1C:
func opcode0x1C(cpu *CPU) int {
	cpu.e = cpu.inc(cpu.e)
	return 4
}

// DEC E
// 0x1D:
func opcode0x1D(cpu *CPU) int {
	cpu.e = cpu.dec(cpu.e)
	return 4
}

// LD E, n
// 0x1E:
func opcode0x1E(cpu *CPU) int {
	cpu.e = cpu.readImmediate()
	return 8
}

// RRA
// 0x1F:
func opcode0x1F(cpu *CPU) int {
	cpu.rra()
	return 4
}

// JR NZ, n
// 0x20:
func opcode0x20(cpu *CPU) int {
	return cpu.jr(!cpu.isSetFlag(zeroFlag))
}

// LD HL, nn
// 0x21:
func opcode0x21(cpu *CPU) int {
	cpu.setHL(cpu.readImmediateWord())
	return 12
}

// LDI (HL), A
// 0x22:
func opcode0x22(cpu *CPU) int {
	hl := cpu.getHL()
	cpu.bus.Write(hl, cpu.a)
	cpu.setHL(hl + 1)
	return 8
}

// INC HL
// 0x23:
func opcode0x23(cpu *CPU) int {
	cpu.setHL(cpu.getHL() + 1)
	return 8
}

// INC H
// 0x24:
func opcode0x24(cpu *CPU) int {
	cpu.h = cpu.inc(cpu.h)
	return 4
}

// DEC H
// 0x25:
func opcode0x25(cpu *CPU) int {
	cpu.h = cpu.dec(cpu.h)
	return 4
}

// LD H, n
// 0x26:
func opcode0x26(cpu *CPU) int {
	cpu.h = cpu.readImmediate()
	return 8
}

// DAA
// 0x27:
func opcode0x27(cpu *CPU) int {
	cpu.daa()
	return 4
}

// JR Z, n
// 0x28:
func opcode0x28(cpu *CPU) int {
	return cpu.jr(cpu.isSetFlag(zeroFlag))
}

// ADD HL, HL
// 0x29:
func opcode0x29(cpu *CPU) int {
	cpu.addHL(cpu.getHL())
	return 8
}

// LDI A, (HL)
// 0x2A:
func opcode0x2A(cpu *CPU) int {
	hl := cpu.getHL()
	cpu.a = cpu.bus.Read(hl)
	cpu.setHL(hl + 1)
	return 8
}

// DEC HL
// 0x2B:
func opcode0x2B(cpu *CPU) int {
	cpu.setHL(cpu.getHL() - 1)
	return 8
}

// INC L
// 0x2C:
func opcode0x2C(cpu *CPU) int {
	cpu.l = cpu.inc(cpu.l)
	return 4
}

// DEC L
// 0x2D:
func opcode0x2D(cpu *CPU) int {
	cpu.l = cpu.dec(cpu.l)
	return 4
}

// LD L, n
// 0x2E:
func opcode0x2E(cpu *CPU) int {
	cpu.l = cpu.readImmediate()
	return 8
}

// CPL
// 0x2F:
func opcode0x2F(cpu *CPU) int {
	cpu.cpl()
	return 4
}

// JR NC, n
// 0x30:
func opcode0x30(cpu *CPU) int {
	return cpu.jr(!cpu.isSetFlag(carryFlag))
}

// LD SP, nn
// 0x31:
func opcode0x31(cpu *CPU) int {
	cpu.sp = cpu.readImmediateWord()
	return 12
}

// LDD (HL), A
// 0x32:
func opcode0x32(cpu *CPU) int {
	hl := cpu.getHL()
	cpu.bus.Write(hl, cpu.a)
	cpu.setHL(hl - 1)
	return 8
}

// INC SP
// 0x33:
func opcode0x33(cpu *CPU) int {
	cpu.sp = cpu.sp + 1
	return 8
}

// INC (HL)
// 0x34:
func opcode0x34(cpu *CPU) int {
	hl := cpu.getHL()
	cpu.bus.Write(hl, cpu.inc(cpu.bus.Read(hl)))
	return 12
}

// DEC (HL)
// 0x35:
func opcode0x35(cpu *CPU) int {
	hl := cpu.getHL()
	cpu.bus.Write(hl, cpu.dec(cpu.bus.Read(hl)))
	return 12
}

// LD (HL), n
// 0x36:
func opcode0x36(cpu *CPU) int {
	cpu.bus.Write(cpu.getHL(), cpu.readImmediate())
	return 12
}

// SCF
// 0x37:
func opcode0x37(cpu *CPU) int {
	cpu.scf()
	return 4
}

// JR C, n
// 0x38:
func opcode0x38(cpu *CPU) int {
	return cpu.jr(cpu.isSetFlag(carryFlag))
}

// ADD HL, SP
// 0x39:
func opcode0x39(cpu *CPU) int {
	cpu.addHL(cpu.sp)
	return 8
}

// LDD A, (HL)
// 0x3A:
func opcode0x3A(cpu *CPU) int {
	hl := cpu.getHL()
	cpu.a = cpu.bus.Read(hl)
	cpu.setHL(hl - 1)
	return 8
}

// DEC SP
// 0x3B:
func opcode0x3B(cpu *CPU) int {
	cpu.sp = cpu.sp - 1
	return 8
}

// INC A
// 0x3C:
func opcode0x3C(cpu *CPU) int {
	cpu.a = cpu.inc(cpu.a)
	return 4
}

// DEC A
// 0x3D:
func opcode0x3D(cpu *CPU) int {
	cpu.a = cpu.dec(cpu.a)
	return 4
}

// LD A, n
// 0x3E:
func opcode0x3E(cpu *CPU) int {
	cpu.a = cpu.readImmediate()
	return 8
}

// CCF
// 0x3F:
func opcode0x3F(cpu *CPU) int {
	cpu.ccf()
	return 4
}

// RET NZ
// 0xC0:
func opcode0xC0(cpu *CPU) int {
	return cpu.ret(!cpu.isSetFlag(zeroFlag))
}

// POP BC
// 0xC1:
func opcode0xC1(cpu *CPU) int {
	cpu.setBC(cpu.popStack())
	return 12
}

// JP NZ, nn
// 0xC2:
func opcode0xC2(cpu *CPU) int {
	return cpu.jp(!cpu.isSetFlag(zeroFlag))
}

// JP nn
// 0xC3:
func opcode0xC3(cpu *CPU) int {
	return cpu.jp(true)
}

// CALL NZ, nn
// 0xC4:
func opcode0xC4(cpu *CPU) int {
	return cpu.call(!cpu.isSetFlag(zeroFlag))
}

// PUSH BC
// 0xC5:
func opcode0xC5(cpu *CPU) int {
	cpu.pushStack(cpu.getBC())
	return 16
}

// ADD A, n
// 0xC6:
func opcode0xC6(cpu *CPU) int {
	cpu.add(cpu.readImmediate())
	return 8
}

// RST 00H
// 0xC7:
func opcode0xC7(cpu *CPU) int {
	return cpu.rst(0x00)
}

// RET Z
// 0xC8:
func opcode0xC8(cpu *CPU) int {
	return cpu.ret(cpu.isSetFlag(zeroFlag))
}

// RET
// 0xC9:
func opcode0xC9(cpu *CPU) int {
	cpu.pc = cpu.popStack()
	return 16
}

// JP Z, nn
// 0xCA:
func opcode0xCA(cpu *CPU) int {
	return cpu.jp(cpu.isSetFlag(zeroFlag))
}

// CALL Z, nn
// 0xCC:
func opcode0xCC(cpu *CPU) int {
	return cpu.call(cpu.isSetFlag(zeroFlag))
}

// CALL nn
// 0xCD:
func opcode0xCD(cpu *CPU) int {
	return cpu.call(true)
}

// ADC A, n
// 0xCE:
func opcode0xCE(cpu *CPU) int {
	cpu.adc(cpu.readImmediate())
	return 8
}

// RST 08H
// 0xCF:
func opcode0xCF(cpu *CPU) int {
	return cpu.rst(0x08)
}

// RET NC
// 0xD0:
func opcode0xD0(cpu *CPU) int {
	return cpu.ret(!cpu.isSetFlag(carryFlag))
}

// POP DE
// 0xD1:
func opcode0xD1(cpu *CPU) int {
	cpu.setDE(cpu.popStack())
	return 12
}

// JP NC, nn
// 0xD2:
func opcode0xD2(cpu *CPU) int {
	return cpu.jp(!cpu.isSetFlag(carryFlag))
}

// CALL NC, nn
// 0xD4:
func opcode0xD4(cpu *CPU) int {
	return cpu.call(!cpu.isSetFlag(carryFlag))
}

// PUSH DE
// 0xD5:
func opcode0xD5(cpu *CPU) int {
	cpu.pushStack(cpu.getDE())
	return 16
}

// SUB n
// 0xD6:
func opcode0xD6(cpu *CPU) int {
	cpu.sub(cpu.readImmediate())
	return 8
}

// RST 10H
// 0xD7:
func opcode0xD7(cpu *CPU) int {
	return cpu.rst(0x10)
}

// RET C
// 0xD8:
func opcode0xD8(cpu *CPU) int {
	return cpu.ret(cpu.isSetFlag(carryFlag))
}

// RETI
// 0xD9:
func opcode0xD9(cpu *CPU) int {
	cpu.pc = cpu.popStack()
	cpu.ic.EnableAfter(1)
	return 16
}

// JP C, nn
// 0xDA:
func opcode0xDA(cpu *CPU) int {
	return cpu.jp(cpu.isSetFlag(carryFlag))
}

// CALL C, nn
// 0xDC:
func opcode0xDC(cpu *CPU) int {
	return cpu.call(cpu.isSetFlag(carryFlag))
}

// SBC A, n
// 0xDE:
func opcode0xDE(cpu *CPU) int {
	cpu.sbc(cpu.readImmediate())
	return 8
}

// RST 18H
// 0xDF:
func opcode0xDF(cpu *CPU) int {
	return cpu.rst(0x18)
}

// LDH (n), A
// 0xE0:
func opcode0xE0(cpu *CPU) int {
	cpu.bus.Write(0xFF00+uint16(cpu.readImmediate()), cpu.a)
	return 12
}

// POP HL
// 0xE1:
func opcode0xE1(cpu *CPU) int {
	cpu.setHL(cpu.popStack())
	return 12
}

// LD (C), A
// 0xE2:
func opcode0xE2(cpu *CPU) int {
	cpu.bus.Write(0xFF00+uint16(cpu.c), cpu.a)
	return 8
}

// PUSH HL
// 0xE5:
func opcode0xE5(cpu *CPU) int {
	cpu.pushStack(cpu.getHL())
	return 16
}

// AND n
// 0xE6:
func opcode0xE6(cpu *CPU) int {
	cpu.and(cpu.readImmediate())
	return 8
}

// RST 20H
// 0xE7:
func opcode0xE7(cpu *CPU) int {
	return cpu.rst(0x20)
}

// ADD SP, n
// 0xE8:
func opcode0xE8(cpu *CPU) int {
	cpu.sp = cpu.addSP(cpu.readImmediate())
	return 16
}

// JP (HL)
// 0xE9:
func opcode0xE9(cpu *CPU) int {
	cpu.pc = cpu.getHL()
	return 4
}

// LD (nn), A
// 0xEA:
func opcode0xEA(cpu *CPU) int {
	cpu.bus.Write(cpu.readImmediateWord(), cpu.a)
	return 16
}

// XOR n
// 0xEE:
func opcode0xEE(cpu *CPU) int {
	cpu.xor(cpu.readImmediate())
	return 8
}

// RST 28H
// 0xEF:
func opcode0xEF(cpu *CPU) int {
	return cpu.rst(0x28)
}

// LDH A, (n)
// 0xF0:
func opcode0xF0(cpu *CPU) int {
	cpu.a = cpu.bus.Read(0xFF00 + uint16(cpu.readImmediate()))
	return 12
}

// POP AF
// 0xF1:
func opcode0xF1(cpu *CPU) int {
	// the low nibble of F always reads back as zero
	cpu.setAF(cpu.popStack())
	return 12
}

// LD A, (C)
// 0xF2:
func opcode0xF2(cpu *CPU) int {
	cpu.a = cpu.bus.Read(0xFF00 + uint16(cpu.c))
	return 8
}

// DI
// 0xF3:
func opcode0xF3(cpu *CPU) int {
	cpu.ic.RequestDisable()
	return 4
}

// PUSH AF
// 0xF5:
func opcode0xF5(cpu *CPU) int {
	cpu.pushStack(cpu.getAF())
	return 16
}

// OR n
// 0xF6:
func opcode0xF6(cpu *CPU) int {
	cpu.or(cpu.readImmediate())
	return 8
}

// RST 30H
// 0xF7:
func opcode0xF7(cpu *CPU) int {
	return cpu.rst(0x30)
}

// LD HL, SP+n
// 0xF8:
func opcode0xF8(cpu *CPU) int {
	cpu.setHL(cpu.addSP(cpu.readImmediate()))
	return 12
}

// LD SP, HL
// 0xF9:
func opcode0xF9(cpu *CPU) int {
	cpu.sp = cpu.getHL()
	return 8
}

// LD A, (nn)
// 0xFA:
func opcode0xFA(cpu *CPU) int {
	cpu.a = cpu.bus.Read(cpu.readImmediateWord())
	return 16
}

// EI
// 0xFB:
func opcode0xFB(cpu *CPU) int {
	cpu.ic.RequestEnable()
	return 4
}

// CP n
// 0xFE:
func opcode0xFE(cpu *CPU) int {
	cpu.cp(cpu.readImmediate())
	return 8
}

// RST 38H
// 0xFF:
func opcode0xFF(cpu *CPU) int {
	return cpu.rst(0x38)
}
