package disasm

// Operand placeholders in mnemonics: d8 immediate byte, d16 immediate word,
// a8 high page offset, a16 absolute address, r8 signed offset.

// irregular rows of the unprefixed table; 0x40-0xBF are filled in by init
var unprefixed = [256]Info{
	0x00: {"NOP", 1, []int{4}},
	0x01: {"LD BC,d16", 3, []int{12}},
	0x02: {"LD (BC),A", 1, []int{8}},
	0x03: {"INC BC", 1, []int{8}},
	0x04: {"INC B", 1, []int{4}},
	0x05: {"DEC B", 1, []int{4}},
	0x06: {"LD B,d8", 2, []int{8}},
	0x07: {"RLCA", 1, []int{4}},
	0x08: {"LD (a16),SP", 3, []int{20}},
	0x09: {"ADD HL,BC", 1, []int{8}},
	0x0A: {"LD A,(BC)", 1, []int{8}},
	0x0B: {"DEC BC", 1, []int{8}},
	0x0C: {"INC C", 1, []int{4}},
	0x0D: {"DEC C", 1, []int{4}},
	0x0E: {"LD C,d8", 2, []int{8}},
	0x0F: {"RRCA", 1, []int{4}},

	0x10: {"STOP 0", 2, []int{4}},
	0x11: {"LD DE,d16", 3, []int{12}},
	0x12: {"LD (DE),A", 1, []int{8}},
	0x13: {"INC DE", 1, []int{8}},
	0x14: {"INC D", 1, []int{4}},
	0x15: {"DEC D", 1, []int{4}},
	0x16: {"LD D,d8", 2, []int{8}},
	0x17: {"RLA", 1, []int{4}},
	0x18: {"JR r8", 2, []int{12}},
	0x19: {"ADD HL,DE", 1, []int{8}},
	0x1A: {"LD A,(DE)", 1, []int{8}},
	0x1B: {"DEC DE", 1, []int{8}},
	0x1C: {"INC E", 1, []int{4}},
	0x1D: {"DEC E", 1, []int{4}},
	0x1E: {"LD E,d8", 2, []int{8}},
	0x1F: {"RRA", 1, []int{4}},

	0x20: {"JR NZ,r8", 2, []int{12, 8}},
	0x21: {"LD HL,d16", 3, []int{12}},
	0x22: {"LD (HL+),A", 1, []int{8}},
	0x23: {"INC HL", 1, []int{8}},
	0x24: {"INC H", 1, []int{4}},
	0x25: {"DEC H", 1, []int{4}},
	0x26: {"LD H,d8", 2, []int{8}},
	0x27: {"DAA", 1, []int{4}},
	0x28: {"JR Z,r8", 2, []int{12, 8}},
	0x29: {"ADD HL,HL", 1, []int{8}},
	0x2A: {"LD A,(HL+)", 1, []int{8}},
	0x2B: {"DEC HL", 1, []int{8}},
	0x2C: {"INC L", 1, []int{4}},
	0x2D: {"DEC L", 1, []int{4}},
	0x2E: {"LD L,d8", 2, []int{8}},
	0x2F: {"CPL", 1, []int{4}},

	0x30: {"JR NC,r8", 2, []int{12, 8}},
	0x31: {"LD SP,d16", 3, []int{12}},
	0x32: {"LD (HL-),A", 1, []int{8}},
	0x33: {"INC SP", 1, []int{8}},
	0x34: {"INC (HL)", 1, []int{12}},
	0x35: {"DEC (HL)", 1, []int{12}},
	0x36: {"LD (HL),d8", 2, []int{12}},
	0x37: {"SCF", 1, []int{4}},
	0x38: {"JR C,r8", 2, []int{12, 8}},
	0x39: {"ADD HL,SP", 1, []int{8}},
	0x3A: {"LD A,(HL-)", 1, []int{8}},
	0x3B: {"DEC SP", 1, []int{8}},
	0x3C: {"INC A", 1, []int{4}},
	0x3D: {"DEC A", 1, []int{4}},
	0x3E: {"LD A,d8", 2, []int{8}},
	0x3F: {"CCF", 1, []int{4}},

	0xC0: {"RET NZ", 1, []int{20, 8}},
	0xC1: {"POP BC", 1, []int{12}},
	0xC2: {"JP NZ,a16", 3, []int{16, 12}},
	0xC3: {"JP a16", 3, []int{16}},
	0xC4: {"CALL NZ,a16", 3, []int{24, 12}},
	0xC5: {"PUSH BC", 1, []int{16}},
	0xC6: {"ADD A,d8", 2, []int{8}},
	0xC7: {"RST 00H", 1, []int{16}},
	0xC8: {"RET Z", 1, []int{20, 8}},
	0xC9: {"RET", 1, []int{16}},
	0xCA: {"JP Z,a16", 3, []int{16, 12}},
	0xCB: {"PREFIX CB", 1, []int{4}},
	0xCC: {"CALL Z,a16", 3, []int{24, 12}},
	0xCD: {"CALL a16", 3, []int{24}},
	0xCE: {"ADC A,d8", 2, []int{8}},
	0xCF: {"RST 08H", 1, []int{16}},

	0xD0: {"RET NC", 1, []int{20, 8}},
	0xD1: {"POP DE", 1, []int{12}},
	0xD2: {"JP NC,a16", 3, []int{16, 12}},
	0xD4: {"CALL NC,a16", 3, []int{24, 12}},
	0xD5: {"PUSH DE", 1, []int{16}},
	0xD6: {"SUB d8", 2, []int{8}},
	0xD7: {"RST 10H", 1, []int{16}},
	0xD8: {"RET C", 1, []int{20, 8}},
	0xD9: {"RETI", 1, []int{16}},
	0xDA: {"JP C,a16", 3, []int{16, 12}},
	0xDC: {"CALL C,a16", 3, []int{24, 12}},
	0xDE: {"SBC A,d8", 2, []int{8}},
	0xDF: {"RST 18H", 1, []int{16}},

	0xE0: {"LDH (a8),A", 2, []int{12}},
	0xE1: {"POP HL", 1, []int{12}},
	0xE2: {"LD (C),A", 1, []int{8}},
	0xE5: {"PUSH HL", 1, []int{16}},
	0xE6: {"AND d8", 2, []int{8}},
	0xE7: {"RST 20H", 1, []int{16}},
	0xE8: {"ADD SP,r8", 2, []int{16}},
	0xE9: {"JP (HL)", 1, []int{4}},
	0xEA: {"LD (a16),A", 3, []int{16}},
	0xEE: {"XOR d8", 2, []int{8}},
	0xEF: {"RST 28H", 1, []int{16}},

	0xF0: {"LDH A,(a8)", 2, []int{12}},
	0xF1: {"POP AF", 1, []int{12}},
	0xF2: {"LD A,(C)", 1, []int{8}},
	0xF3: {"DI", 1, []int{4}},
	0xF5: {"PUSH AF", 1, []int{16}},
	0xF6: {"OR d8", 2, []int{8}},
	0xF7: {"RST 30H", 1, []int{16}},
	0xF8: {"LD HL,SP+r8", 2, []int{12}},
	0xF9: {"LD SP,HL", 1, []int{8}},
	0xFA: {"LD A,(a16)", 3, []int{16}},
	0xFB: {"EI", 1, []int{4}},
	0xFE: {"CP d8", 2, []int{8}},
	0xFF: {"RST 38H", 1, []int{16}},
}

var prefixed [256]Info

// operand names in encoding order
var registerNames = [8]string{"B", "C", "D", "E", "H", "L", "(HL)", "A"}

const hlOperand = 6

func init() {
	for op := 0x40; op <= 0x7F; op++ {
		dst, src := (op>>3)&7, op&7
		if op == 0x76 {
			unprefixed[op] = Info{"HALT", 1, []int{4}}
			continue
		}
		cycles := 4
		if dst == hlOperand || src == hlOperand {
			cycles = 8
		}
		unprefixed[op] = Info{"LD " + registerNames[dst] + "," + registerNames[src], 1, []int{cycles}}
	}

	alu := [8]string{"ADD A,", "ADC A,", "SUB ", "SBC A,", "AND ", "XOR ", "OR ", "CP "}
	for op := 0x80; op <= 0xBF; op++ {
		src := op & 7
		cycles := 4
		if src == hlOperand {
			cycles = 8
		}
		unprefixed[op] = Info{alu[(op>>3)&7] + registerNames[src], 1, []int{cycles}}
	}

	shifts := [8]string{"RLC", "RRC", "RL", "RR", "SLA", "SRA", "SWAP", "SRL"}
	for op := range 256 {
		reg := op & 7
		n := (op >> 3) & 7
		cycles := 8
		if reg == hlOperand {
			cycles = 16
		}

		var mnemonic string
		switch op >> 6 {
		case 0:
			mnemonic = shifts[n] + " " + registerNames[reg]
		case 1:
			mnemonic = "BIT " + string(rune('0'+n)) + "," + registerNames[reg]
			if reg == hlOperand {
				cycles = 12
			}
		case 2:
			mnemonic = "RES " + string(rune('0'+n)) + "," + registerNames[reg]
		case 3:
			mnemonic = "SET " + string(rune('0'+n)) + "," + registerNames[reg]
		}
		prefixed[op] = Info{mnemonic, 2, []int{cycles}}
	}
}
