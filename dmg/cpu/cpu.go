package cpu

import (
	"log/slog"

	"github.com/valerio/go-dmg/dmg/addr"
	"github.com/valerio/go-dmg/dmg/bit"
	"github.com/valerio/go-dmg/dmg/disasm"
	"github.com/valerio/go-dmg/dmg/interrupt"
)

// Bus is the CPU's view of the address space.
type Bus interface {
	Read(address uint16) byte
	Write(address uint16, value byte)
}

// Flag is one of the 4 possible flags used in the flag register (high part of AF)
type Flag uint8

const (
	zeroFlag      Flag = 0x80
	subFlag       Flag = 0x40
	halfCarryFlag Flag = 0x20
	carryFlag     Flag = 0x10
)

const (
	prefixCB = 0xCB

	interruptDispatchCycles = 20
	haltedCycles            = 4
)

// CPU is the LR35902 core.
type CPU struct {
	a, f uint8
	b, c uint8
	d, e uint8
	h, l uint8
	sp   uint16
	pc   uint16

	bus Bus
	ic  *interrupt.Controller

	// decode state of the instruction being executed
	instructionAddr uint16
	currentOpcode   uint8
	prefixed        bool

	stopped bool
	cycles  uint64
	trace   bool
}

// New returns a CPU with the register values the boot ROM leaves behind.
func New(bus Bus, ic *interrupt.Controller) *CPU {
	cpu := &CPU{
		bus: bus,
		ic:  ic,
	}

	cpu.setAF(0x01B0)
	cpu.setBC(0x0013)
	cpu.setDE(0x00D8)
	cpu.setHL(0x014D)
	cpu.sp = 0xFFFE
	cpu.pc = 0x0100

	return cpu
}

// SetTrace toggles logging of every executed instruction at debug level.
func (cpu *CPU) SetTrace(on bool) {
	cpu.trace = on
}

// Cycles returns the total clock cycles consumed so far.
func (cpu *CPU) Cycles() uint64 {
	return cpu.cycles
}

// Stopped reports whether STOP was executed and no interrupt has been serviced since.
func (cpu *CPU) Stopped() bool {
	return cpu.stopped
}

// Step runs one unit of CPU work and returns the clock cycles it took:
// an interrupt dispatch, an idle halted slot, or one instruction.
// An opcode with no implementation panics with *UnimplementedOpcodeError.
func (cpu *CPU) Step() int {
	cpu.ic.Tick()

	if i, ok := cpu.ic.TryInterrupt(); ok {
		return cpu.account(cpu.serviceInterrupt(i))
	}

	if cpu.ic.Halted() {
		return cpu.account(haltedCycles)
	}

	cpu.instructionAddr = cpu.pc
	if cpu.trace {
		slog.Debug("exec", "pc", cpu.pc, "instr", disasm.Decode(cpu.bus, cpu.pc).Text,
			"af", cpu.getAF(), "bc", cpu.getBC(), "de", cpu.getDE(), "hl", cpu.getHL(), "sp", cpu.sp)
	}

	op := cpu.readImmediate()
	table := &opcodes
	cpu.prefixed = false
	if op == prefixCB {
		op = cpu.readImmediate()
		table = &opcodesCB
		cpu.prefixed = true
	}
	cpu.currentOpcode = op

	instruction := table[op]
	if instruction == nil {
		panic(&UnimplementedOpcodeError{
			Opcode:   op,
			Prefixed: cpu.prefixed,
			Address:  cpu.instructionAddr,
		})
	}

	return cpu.account(instruction(cpu))
}

func (cpu *CPU) account(cycles int) int {
	cpu.cycles += uint64(cycles)
	return cycles
}

// serviceInterrupt pushes PC and jumps to the vector of interrupt i.
func (cpu *CPU) serviceInterrupt(i addr.Interrupt) int {
	cpu.ic.SetMasterEnabled(false)
	cpu.stopped = false
	cpu.pushStack(cpu.pc)
	cpu.pc = i.Vector()
	return interruptDispatchCycles
}

// readImmediate reads the byte at PC and advances PC.
func (cpu *CPU) readImmediate() uint8 {
	n := cpu.bus.Read(cpu.pc)
	cpu.pc++
	return n
}

// readImmediateWord reads a little endian word at PC and advances PC by 2.
func (cpu *CPU) readImmediateWord() uint16 {
	low := cpu.readImmediate()
	high := cpu.readImmediate()
	return bit.Combine(high, low)
}

func (cpu *CPU) pushStack(value uint16) {
	cpu.sp--
	cpu.bus.Write(cpu.sp, bit.High(value))
	cpu.sp--
	cpu.bus.Write(cpu.sp, bit.Low(value))
}

func (cpu *CPU) popStack() uint16 {
	low := cpu.bus.Read(cpu.sp)
	cpu.sp++
	high := cpu.bus.Read(cpu.sp)
	cpu.sp++
	return bit.Combine(high, low)
}

func (cpu *CPU) setFlag(flag Flag) {
	cpu.f |= uint8(flag)
}

func (cpu *CPU) resetFlag(flag Flag) {
	cpu.f &^= uint8(flag)
}

func (cpu *CPU) setFlagTo(flag Flag, on bool) {
	if on {
		cpu.setFlag(flag)
	} else {
		cpu.resetFlag(flag)
	}
}

func (cpu *CPU) isSetFlag(flag Flag) bool {
	return cpu.f&uint8(flag) != 0
}

// flagToBit returns 1 if the flag is set, 0 otherwise.
func (cpu *CPU) flagToBit(flag Flag) uint8 {
	if cpu.isSetFlag(flag) {
		return 1
	}
	return 0
}

// setFlags overwrites all four flags at once.
func (cpu *CPU) setFlags(zero, sub, halfCarry, carry bool) {
	cpu.f = 0
	cpu.setFlagTo(zeroFlag, zero)
	cpu.setFlagTo(subFlag, sub)
	cpu.setFlagTo(halfCarryFlag, halfCarry)
	cpu.setFlagTo(carryFlag, carry)
}
