package memory

import "fmt"

// Access is the direction of a memory access.
type Access uint8

const (
	AccessRead Access = iota
	AccessWrite
)

func (a Access) String() string {
	if a == AccessWrite {
		return "write"
	}
	return "read"
}

// UnmappedAccessError is raised when an address escapes every known region.
// It always points at a defect in the emulator, never at guest behavior.
type UnmappedAccessError struct {
	Address uint16
	Access  Access
}

func (e *UnmappedAccessError) Error() string {
	return fmt.Sprintf("unmapped %s at address 0x%04X", e.Access, e.Address)
}

// UnsupportedCartridgeError is returned at load time for an unknown
// cartridge type header byte.
type UnsupportedCartridgeError struct {
	Type uint8
}

func (e *UnsupportedCartridgeError) Error() string {
	return fmt.Sprintf("unsupported cartridge type 0x%02X", e.Type)
}
