// Package gate implements construction of the interrupt descriptor table:
// encoding of individual gate descriptors and the 256-slot memory-resident
// table the CPU consults on every interrupt, exception and IRQ.
package gate

import (
	"github.com/sureSundar/STEPPPS-sub015/kernel/cpu"
)

// Attribute byte bits for a gate descriptor.
const (
	// AttrPresent marks the slot as populated. The CPU raises a general
	// protection fault when transferring through a slot without it.
	AttrPresent = uint8(0x80)

	// AttrRing0/AttrRing3 select the privilege level required to invoke
	// the gate through a software INT instruction.
	AttrRing0 = uint8(0x00)
	AttrRing3 = uint8(0x60)

	// TypeInterrupt selects a 32-bit interrupt gate. Interrupt gates
	// clear EFLAGS.IF on entry which is what guarantees the trampoline
	// save sequence can never be re-entered.
	TypeInterrupt = uint8(0x0E)

	// TypeTrap selects a 32-bit trap gate which leaves EFLAGS.IF alone.
	// The kernel installs none of these; the constant exists so the
	// distinction is spelled out where the attribute bytes are built.
	TypeTrap = uint8(0x0F)
)

// descriptorBytes is the encoded size of one gate descriptor.
const descriptorBytes = 8

// Entries is the architectural size of the IDT.
const Entries = 256

// Descriptor describes one IDT slot: the handler entry address split
// across two half-words, the code segment selector used to invoke it and
// the present/privilege/type attribute byte. The fifth byte is reserved
// and must stay zero.
type Descriptor struct {
	OffsetLow  uint16
	Selector   uint16
	Zero       uint8
	Attr       uint8
	OffsetHigh uint16
}

// HandlerAddress reassembles the 32-bit handler entry address.
func (d Descriptor) HandlerAddress() uint32 {
	return uint32(d.OffsetLow) | uint32(d.OffsetHigh)<<16
}

// Present returns true when the slot is populated.
func (d Descriptor) Present() bool {
	return d.Attr&AttrPresent != 0
}

// Ring returns the privilege level encoded in the attribute byte.
func (d Descriptor) Ring() uint8 {
	return (d.Attr >> 5) & 0x3
}

// NewDescriptor encodes a gate for the given handler address.
func NewDescriptor(handler uint32, selector uint16, attr uint8) Descriptor {
	return Descriptor{
		OffsetLow:  uint16(handler),
		Selector:   selector,
		Attr:       attr,
		OffsetHigh: uint16(handler >> 16),
	}
}

// writeTo stores the encoded descriptor at addr in the CPU's memory.
func (d Descriptor) writeTo(c *cpu.CPU, addr uint32) {
	c.Write16(addr, d.OffsetLow)
	c.Write16(addr+2, d.Selector)
	c.Mem[addr+4] = d.Zero
	c.Mem[addr+5] = d.Attr
	c.Write16(addr+6, d.OffsetHigh)
}

// readDescriptor decodes the descriptor stored at addr.
func readDescriptor(c *cpu.CPU, addr uint32) Descriptor {
	return Descriptor{
		OffsetLow:  c.Read16(addr),
		Selector:   c.Read16(addr + 2),
		Zero:       c.Mem[addr+4],
		Attr:       c.Mem[addr+5],
		OffsetHigh: c.Read16(addr + 6),
	}
}
