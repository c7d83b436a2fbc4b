// Package rt0 implements the boot handoff: the code that runs between the
// bootloader dropping us in 32-bit protected mode and the kernel entry
// point taking over. It establishes the flat segmentation model, an
// aligned stack and zeroed kernel BSS, and guarantees the entry point runs
// with interrupts masked.
package rt0

import (
	"github.com/sureSundar/STEPPPS-sub015/kernel"
	"github.com/sureSundar/STEPPPS-sub015/kernel/cpu"
	"github.com/sureSundar/STEPPPS-sub015/kernel/mem"
)

var (
	errGDTOutOfRange   = &kernel.Error{Module: "rt0", Message: "GDT region lies outside physical memory"}
	errStackOutOfRange = &kernel.Error{Module: "rt0", Message: "stack top lies outside physical memory"}
	errBadBSSRegion    = &kernel.Error{Module: "rt0", Message: "BSS region is inverted or outside physical memory"}
)

// gdtEntries is the size of the flat GDT: the mandatory null descriptor
// plus one code and one data segment covering all of memory.
const gdtEntries = 3

// Segment descriptor access bytes for ring-0 flat segments.
const (
	accessCode = uint8(0x9A) // present, ring 0, executable, readable
	accessData = uint8(0x92) // present, ring 0, writable

	// flags4K32 selects 4KiB limit granularity and 32-bit operand size.
	flags4K32 = uint8(0xC)
)

// Layout fixes where the handoff places what it builds.
type Layout struct {
	// GDTBase is where the flat GDT is written.
	GDTBase uint32

	// StackTop is the initial stack pointer handed to the kernel. It is
	// rounded down to 16-byte alignment before use.
	StackTop uint32

	// BSSStart/BSSEnd delimit the region zeroed before the kernel
	// entry point runs. An empty region (start == end) is allowed.
	BSSStart uint32
	BSSEnd   uint32
}

// Boot performs the handoff and transfers control to entry. In order it
// zeroes the BSS, builds and loads the flat GDT, reloads every segment
// register, establishes the aligned stack and calls entry with interrupts
// masked. Entry points are not expected to return; if one does, the
// processor is halted.
func Boot(c *cpu.CPU, layout Layout, entry func(*cpu.CPU)) *kernel.Error {
	memSize := uint32(len(c.Mem))

	// uint64 arithmetic: the sum must not wrap for bases near 2^32.
	if uint64(layout.GDTBase)+gdtEntries*8 > uint64(memSize) {
		return errGDTOutOfRange
	}
	if layout.StackTop > memSize || layout.StackTop == 0 {
		return errStackOutOfRange
	}
	if layout.BSSStart > layout.BSSEnd || layout.BSSEnd > memSize {
		return errBadBSSRegion
	}

	mem.Memset(c.Mem[layout.BSSStart:layout.BSSEnd], 0)

	writeSegmentDescriptor(c, layout.GDTBase+0, 0, 0, 0, 0)
	writeSegmentDescriptor(c, layout.GDTBase+8, 0, 0xFFFFF, accessCode, flags4K32)
	writeSegmentDescriptor(c, layout.GDTBase+16, 0, 0xFFFFF, accessData, flags4K32)
	c.LoadGDT(layout.GDTBase, gdtEntries*8-1)

	c.Regs.CS = cpu.KernelCodeSelector
	c.Regs.DS = cpu.KernelDataSelector
	c.Regs.ES = cpu.KernelDataSelector
	c.Regs.FS = cpu.KernelDataSelector
	c.Regs.GS = cpu.KernelDataSelector
	c.Regs.SS = cpu.KernelDataSelector

	c.Regs.ESP = layout.StackTop &^ 0xF

	c.DisableInterrupts()

	entry(c)

	// There is nothing to return to.
	c.DisableInterrupts()
	c.Halt()

	return nil
}

// writeSegmentDescriptor encodes one 8-byte GDT descriptor at addr. The
// limit is expressed in granularity units (4KiB pages when flags4K32 is
// set).
func writeSegmentDescriptor(c *cpu.CPU, addr uint32, base uint32, limit uint32, access, flags uint8) {
	c.Mem[addr+0] = uint8(limit)
	c.Mem[addr+1] = uint8(limit >> 8)
	c.Mem[addr+2] = uint8(base)
	c.Mem[addr+3] = uint8(base >> 8)
	c.Mem[addr+4] = uint8(base >> 16)
	c.Mem[addr+5] = access
	c.Mem[addr+6] = flags<<4 | uint8(limit>>16)&0xF
	c.Mem[addr+7] = uint8(base >> 24)
}
