package irq

import (
	"github.com/sureSundar/STEPPPS-sub015/kernel/cpu"
)

const (
	// stubRegionBase is the linked base address of the trampoline stub
	// region; stub entry points are laid out at fixed strides from it.
	stubRegionBase = 0x00110000

	// stubBytes is the stride between consecutive stub entry points.
	stubBytes = 0x20
)

// StubAddress returns the entry-point address the trampoline for vector is
// linked at. The IDT slot for vector and the routine attachment for its
// stub must both use this address or delivery lands in unlinked code.
func StubAddress(vector Vector) uint32 {
	return stubRegionBase + uint32(vector)*stubBytes
}

// stubFor builds the trampoline routine for a single vector. On entry the
// CPU has already pushed EFLAGS, CS and EIP, plus an error code for the
// exception vectors that carry one. The stub normalizes the frame so every
// vector presents the identical 17-word layout to the dispatcher:
//
//	push a zero error code when the CPU did not supply one
//	push the vector number
//	save the general-purpose registers in PUSHA order
//	save the data segment registers and reload them with the kernel
//	data selector
//
// After the dispatcher returns the stub undoes each step in reverse and
// executes the interrupt return. A halted CPU skips the restore: there is
// no context left to resume.
func (r *Router) stubFor(vector Vector) cpu.Routine {
	return func(c *cpu.CPU) {
		if uint8(vector) >= ExceptionVectors || !cpu.PushesErrorCode(uint8(vector)) {
			c.Push32(0)
		}
		c.Push32(uint32(vector))

		// PUSHA records ESP as it was before the save sequence itself.
		orig := c.Regs.ESP
		c.Push32(c.Regs.EAX)
		c.Push32(c.Regs.ECX)
		c.Push32(c.Regs.EDX)
		c.Push32(c.Regs.EBX)
		c.Push32(orig)
		c.Push32(c.Regs.EBP)
		c.Push32(c.Regs.ESI)
		c.Push32(c.Regs.EDI)

		c.Push32(uint32(c.Regs.DS))
		c.Push32(uint32(c.Regs.ES))
		c.Push32(uint32(c.Regs.FS))
		c.Push32(uint32(c.Regs.GS))

		c.Regs.DS = cpu.KernelDataSelector
		c.Regs.ES = cpu.KernelDataSelector
		c.Regs.FS = cpu.KernelDataSelector
		c.Regs.GS = cpu.KernelDataSelector

		r.dispatch(c, c.Regs.ESP)

		if c.Halted() {
			return
		}

		c.Regs.GS = uint16(c.Pop32())
		c.Regs.FS = uint16(c.Pop32())
		c.Regs.ES = uint16(c.Pop32())
		c.Regs.DS = uint16(c.Pop32())

		c.Regs.EDI = c.Pop32()
		c.Regs.ESI = c.Pop32()
		c.Regs.EBP = c.Pop32()
		// POPA discards the saved ESP slot.
		c.Pop32()
		c.Regs.EBX = c.Pop32()
		c.Regs.EDX = c.Pop32()
		c.Regs.ECX = c.Pop32()
		c.Regs.EAX = c.Pop32()

		// Drop the vector and error code words.
		c.Regs.ESP += 8

		c.InterruptReturn()
	}
}
