package cpu

// jr adds a signed offset to PC when cond holds.
func (cpu *CPU) jr(cond bool) int {
	offset := int8(cpu.readImmediate())
	if !cond {
		return 8
	}
	cpu.pc = uint16(int32(cpu.pc) + int32(offset))
	return 12
}

func (cpu *CPU) jp(cond bool) int {
	target := cpu.readImmediateWord()
	if !cond {
		return 12
	}
	cpu.pc = target
	return 16
}

func (cpu *CPU) call(cond bool) int {
	target := cpu.readImmediateWord()
	if !cond {
		return 12
	}
	cpu.pushStack(cpu.pc)
	cpu.pc = target
	return 24
}

// ret is the conditional return, the unconditional one costs 16.
func (cpu *CPU) ret(cond bool) int {
	if !cond {
		return 8
	}
	cpu.pc = cpu.popStack()
	return 20
}

func (cpu *CPU) rst(vector uint16) int {
	cpu.pushStack(cpu.pc)
	cpu.pc = vector
	return 16
}
