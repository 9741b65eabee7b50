package cpu

// Opcode executes one decoded instruction and returns its cost in clock cycles.
type Opcode func(*CPU) int

// opcodes has no entry for the 11 unassigned opcodes or for 0xCB, which Step handles.
var opcodes = [256]Opcode{
	0x00: opcode0x00, 0x01: opcode0x01, 0x02: opcode0x02, 0x03: opcode0x03,
	0x04: opcode0x04, 0x05: opcode0x05, 0x06: opcode0x06, 0x07: opcode0x07,
	0x08: opcode0x08, 0x09: opcode0x09, 0x0A: opcode0x0A, 0x0B: opcode0x0B,
	0x0C: opcode0x0C, 0x0D: opcode0x0D, 0x0E: opcode0x0E, 0x0F: opcode0x0F,
	0x10: opcode0x10, 0x11: opcode0x11, 0x12: opcode0x12, 0x13: opcode0x13,
	0x14: opcode0x14, 0x15: opcode0x15, 0x16: opcode0x16, 0x17: opcode0x17,
	0x18: opcode0x18, 0x19: opcode0x19, 0x1A: opcode0x1A, 0x1B: opcode0x1B,
	0x1C: opcode0x1C, 0x1D: opcode0x1D, 0x1E: opcode0x1E, 0x1F: opcode0x1F,
	0x20: opcode0x20, 0x21: opcode0x21, 0x22: opcode0x22, 0x23: opcode0x23,
	0x24: opcode0x24, 0x25: opcode0x25, 0x26: opcode0x26, 0x27: opcode0x27,
	0x28: opcode0x28, 0x29: opcode0x29, 0x2A: opcode0x2A, 0x2B: opcode0x2B,
	0x2C: opcode0x2C, 0x2D: opcode0x2D, 0x2E: opcode0x2E, 0x2F: opcode0x2F,
	0x30: opcode0x30, 0x31: opcode0x31, 0x32: opcode0x32, 0x33: opcode0x33,
	0x34: opcode0x34, 0x35: opcode0x35, 0x36: opcode0x36, 0x37: opcode0x37,
	0x38: opcode0x38, 0x39: opcode0x39, 0x3A: opcode0x3A, 0x3B: opcode0x3B,
	0x3C: opcode0x3C, 0x3D: opcode0x3D, 0x3E: opcode0x3E, 0x3F: opcode0x3F,

	0xC0: opcode0xC0, 0xC1: opcode0xC1, 0xC2: opcode0xC2, 0xC3: opcode0xC3,
	0xC4: opcode0xC4, 0xC5: opcode0xC5, 0xC6: opcode0xC6, 0xC7: opcode0xC7,
	0xC8: opcode0xC8, 0xC9: opcode0xC9, 0xCA: opcode0xCA,
	0xCC: opcode0xCC, 0xCD: opcode0xCD, 0xCE: opcode0xCE, 0xCF: opcode0xCF,
	0xD0: opcode0xD0, 0xD1: opcode0xD1, 0xD2: opcode0xD2,
	0xD4: opcode0xD4, 0xD5: opcode0xD5, 0xD6: opcode0xD6, 0xD7: opcode0xD7,
	0xD8: opcode0xD8, 0xD9: opcode0xD9, 0xDA: opcode0xDA,
	0xDC: opcode0xDC, 0xDE: opcode0xDE, 0xDF: opcode0xDF,
	0xE0: opcode0xE0, 0xE1: opcode0xE1, 0xE2: opcode0xE2,
	0xE5: opcode0xE5, 0xE6: opcode0xE6, 0xE7: opcode0xE7,
	0xE8: opcode0xE8, 0xE9: opcode0xE9, 0xEA: opcode0xEA,
	0xEE: opcode0xEE, 0xEF: opcode0xEF,
	0xF0: opcode0xF0, 0xF1: opcode0xF1, 0xF2: opcode0xF2, 0xF3: opcode0xF3,
	0xF5: opcode0xF5, 0xF6: opcode0xF6, 0xF7: opcode0xF7,
	0xF8: opcode0xF8, 0xF9: opcode0xF9, 0xFA: opcode0xFA, 0xFB: opcode0xFB,
	0xFE: opcode0xFE, 0xFF: opcode0xFF,
}

var opcodesCB [256]Opcode

// The 0x40-0xBF block and the whole CB table are regular enough to be built
// from the operand encoding: bits 0-2 pick the register, bits 3-5 the
// operation or bit index.
func init() {
	for op := 0x40; op <= 0xBF; op++ {
		opcodes[op] = regularOpcode(uint8(op))
	}
	for op := 0; op < 256; op++ {
		opcodesCB[op] = prefixedOpcode(uint8(op))
	}
}

func regularOpcode(op uint8) Opcode {
	src := op & 0x07
	dst := (op >> 3) & 0x07

	cost := 4
	if src == regHL {
		cost = 8
	}

	if op < 0x80 {
		switch {
		// HALT
		case op == 0x76:
			return func(cpu *CPU) int {
				cpu.ic.Halt()
				return 4
			}
		// LD (HL), r
		case dst == regHL:
			return func(cpu *CPU) int {
				cpu.setReg(regHL, cpu.reg(src))
				return 8
			}
		// LD r, r'
		default:
			return func(cpu *CPU) int {
				cpu.setReg(dst, cpu.reg(src))
				return cost
			}
		}
	}

	alu := [8]func(*CPU, uint8){
		(*CPU).add, (*CPU).adc, (*CPU).sub, (*CPU).sbc,
		(*CPU).and, (*CPU).xor, (*CPU).or, (*CPU).cp,
	}[dst]

	return func(cpu *CPU) int {
		alu(cpu, cpu.reg(src))
		return cost
	}
}

func prefixedOpcode(op uint8) Opcode {
	target := op & 0x07
	n := (op >> 3) & 0x07

	cost := 8
	if target == regHL {
		cost = 16
	}

	switch op >> 6 {
	// rotates, shifts and swap
	case 0:
		shift := [8]func(*CPU, uint8) uint8{
			(*CPU).rlc, (*CPU).rrc, (*CPU).rl, (*CPU).rr,
			(*CPU).sla, (*CPU).sra, (*CPU).swap, (*CPU).srl,
		}[n]
		return func(cpu *CPU) int {
			cpu.setReg(target, shift(cpu, cpu.reg(target)))
			return cost
		}
	// BIT n, r
	case 1:
		if target == regHL {
			cost = 12
		}
		return func(cpu *CPU) int {
			cpu.bit(n, cpu.reg(target))
			return cost
		}
	// RES n, r
	case 2:
		return func(cpu *CPU) int {
			cpu.setReg(target, cpu.reg(target)&^(1<<n))
			return cost
		}
	// SET n, r
	default:
		return func(cpu *CPU) int {
			cpu.setReg(target, cpu.reg(target)|1<<n)
			return cost
		}
	}
}
