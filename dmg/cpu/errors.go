package cpu

import (
	"fmt"

	"github.com/valerio/go-dmg/dmg/disasm"
)

// UnimplementedOpcodeError reports a fetched opcode with no dispatch entry.
type UnimplementedOpcodeError struct {
	Opcode   uint8
	Prefixed bool
	Address  uint16
}

func (e *UnimplementedOpcodeError) Error() string {
	op := fmt.Sprintf("0x%02X", e.Opcode)
	if e.Prefixed {
		op = fmt.Sprintf("0xCB%02X", e.Opcode)
	}
	return fmt.Sprintf("unimplemented opcode %s (%s) at 0x%04X",
		op, disasm.Mnemonic(e.Opcode, e.Prefixed), e.Address)
}
