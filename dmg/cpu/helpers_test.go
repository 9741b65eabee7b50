package cpu

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/valerio/go-dmg/dmg/interrupt"
)

// flatBus is 64KiB of plain RAM.
type flatBus struct {
	mem [0x10000]byte
}

func (b *flatBus) Read(address uint16) byte {
	return b.mem[address]
}

func (b *flatBus) Write(address uint16, value byte) {
	b.mem[address] = value
}

// newTestCPU loads program at 0x0100 and returns a CPU about to run it.
func newTestCPU(program ...byte) (*CPU, *flatBus) {
	bus := &flatBus{}
	copy(bus.mem[0x0100:], program)
	return New(bus, interrupt.New()), bus
}

// stepPanic runs one step and returns the value it panicked with, if any.
func stepPanic(cpu *CPU) (recovered any) {
	defer func() {
		recovered = recover()
	}()
	cpu.Step()
	return nil
}

func requireUnimplemented(t *testing.T, recovered any) *UnimplementedOpcodeError {
	t.Helper()
	err, ok := recovered.(error)
	require.True(t, ok, "expected an error panic, got %v", recovered)

	var opErr *UnimplementedOpcodeError
	require.True(t, errors.As(err, &opErr))
	return opErr
}
