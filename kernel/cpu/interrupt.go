package cpu

// Gate descriptor attribute bits as stored in byte 5 of an IDT entry.
const (
	gateAttrPresent = 0x80
	gateTypeMask    = 0x0F

	// gateTypeInterrupt identifies a 32-bit interrupt gate. Unlike a
	// trap gate, transferring through it clears EFLAGS.IF so the handler
	// cannot be re-entered.
	gateTypeInterrupt = 0x0E
)

// gpFaultVector is raised when control is transferred through an
// unpopulated IDT slot.
const gpFaultVector = 13

// PushesErrorCode reports whether the CPU itself supplies an error code
// when raising the given exception vector. The trampoline stubs use this
// to decide whether a synthetic zero error code must be pushed instead.
func PushesErrorCode(vector uint8) bool {
	switch vector {
	case 8, 10, 11, 12, 13, 14, 17:
		return true
	}
	return false
}

// DeliverInterrupt transfers control through IDT slot vector exactly the
// way the processor does: it pushes EFLAGS, CS and EIP, pushes errCode for
// the exception vectors that carry one, masks interrupts when the slot
// holds an interrupt gate and jumps to the gate's handler address. The
// call returns once the handler has executed its interrupt-return.
//
// Transferring through a non-present slot raises a general protection
// fault carrying the standard IDT-sourced selector error code; if that
// fault cannot be delivered either, the processor halts.
func (c *CPU) DeliverInterrupt(vector uint8, errCode uint32) {
	if c.halted {
		return
	}

	c.deliveryDepth++
	defer func() { c.deliveryDepth-- }()

	handler, selector, attr, ok := c.gateFor(vector)
	if !ok || attr&gateAttrPresent == 0 {
		if c.deliveryDepth > 1 || vector == gpFaultVector {
			// Nothing left that can run; this is where a real
			// machine shuts down in a triple fault.
			c.halted = true
			return
		}

		c.DeliverInterrupt(gpFaultVector, uint32(vector)<<3|0x2)
		return
	}

	c.Push32(c.Regs.EFlags)
	c.Push32(uint32(c.Regs.CS))
	c.Push32(c.Regs.EIP)

	if attr&gateTypeMask == gateTypeInterrupt {
		c.DisableInterrupts()
	}

	if vector < 32 && PushesErrorCode(vector) {
		c.Push32(errCode)
	}

	c.Regs.CS = selector
	c.Regs.EIP = handler

	fn := c.routines[handler]
	if fn == nil {
		// The gate points at code that was never linked in.
		c.halted = true
		return
	}

	fn(c)
}

// InterruptReturn undoes the CPU-pushed part of an interrupt transfer:
// it pops EIP, CS and EFLAGS, which also restores the caller's
// interrupt-enable state.
func (c *CPU) InterruptReturn() {
	c.Regs.EIP = c.Pop32()
	c.Regs.CS = uint16(c.Pop32())
	c.Regs.EFlags = c.Pop32()
}

// gateFor decodes IDT slot vector from memory. ok is false when the slot
// lies beyond the loaded table limit.
func (c *CPU) gateFor(vector uint8) (handler uint32, selector uint16, attr uint8, ok bool) {
	off := uint32(vector) * 8
	if off+7 > uint32(c.IDTR.Limit) {
		return 0, 0, 0, false
	}

	base := c.IDTR.Base + off
	handler = uint32(c.Read16(base)) | uint32(c.Read16(base+6))<<16
	selector = c.Read16(base + 2)
	attr = c.Mem[base+5]

	return handler, selector, attr, true
}
