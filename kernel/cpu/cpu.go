// Package cpu models the single 32-bit processor the kernel runs on: its
// register file, physical memory, descriptor-table registers and port I/O
// bus. The model is the explicitly-owned hardware context every other
// component receives at boot; nothing in this package is a package-level
// singleton.
package cpu

import "encoding/binary"

// Selectors into the flat GDT installed by the boot handoff code.
const (
	NullSelector       = 0x00
	KernelCodeSelector = 0x08
	KernelDataSelector = 0x10
)

// EFLAGS bits used by the kernel core.
const (
	// FlagReserved is hard-wired to 1 on every x86 since the 8086.
	FlagReserved = uint32(1 << 1)

	// FlagIF gates maskable interrupt delivery.
	FlagIF = uint32(1 << 9)
)

// Regs is the processor register file.
type Regs struct {
	EAX, EBX, ECX, EDX uint32
	ESI, EDI, EBP, ESP uint32

	EIP    uint32
	EFlags uint32

	CS, DS, ES, FS, GS, SS uint16
}

// DescriptorTableReg mirrors the IDTR/GDTR registers: a linear base address
// plus the table size minus one.
type DescriptorTableReg struct {
	Base  uint32
	Limit uint16
}

// Routine is kernel code reachable through an entry-point address that the
// processor can transfer control to.
type Routine func(*CPU)

// CPU models the processor together with the physical memory and port bus
// attached to it.
type CPU struct {
	Regs Regs

	// Mem is the machine's physical memory.
	Mem []byte

	// IDTR/GDTR hold the descriptor table registers loaded via LoadIDT
	// and LoadGDT.
	IDTR DescriptorTableReg
	GDTR DescriptorTableReg

	bus *Bus

	// routines resolves code addresses to the kernel routines linked at
	// them (the build/link contract for trampoline entry points).
	routines map[uint32]Routine

	// deliveryDepth guards the fault-on-unpopulated-vector path against
	// unbounded recursion.
	deliveryDepth int

	halted bool
}

// New returns a CPU attached to the given physical memory and port bus.
// The processor starts with interrupts masked.
func New(memory []byte, bus *Bus) *CPU {
	if bus == nil {
		bus = NewBus()
	}

	c := &CPU{
		Mem:      memory,
		bus:      bus,
		routines: make(map[uint32]Routine),
	}
	c.Regs.EFlags = FlagReserved

	return c
}

// Bus returns the port I/O bus attached to this CPU.
func (c *CPU) Bus() *Bus {
	return c.bus
}

// In8 reads a byte from the requested I/O port.
func (c *CPU) In8(port uint16) uint8 {
	return c.bus.In8(port)
}

// Out8 writes a byte to the requested I/O port.
func (c *CPU) Out8(port uint16, val uint8) {
	c.bus.Out8(port, val)
}

// Read16 reads a little-endian 16-bit value from physical memory.
func (c *CPU) Read16(addr uint32) uint16 {
	return binary.LittleEndian.Uint16(c.Mem[addr:])
}

// Read32 reads a little-endian 32-bit value from physical memory.
func (c *CPU) Read32(addr uint32) uint32 {
	return binary.LittleEndian.Uint32(c.Mem[addr:])
}

// Write16 stores a little-endian 16-bit value to physical memory.
func (c *CPU) Write16(addr uint32, val uint16) {
	binary.LittleEndian.PutUint16(c.Mem[addr:], val)
}

// Write32 stores a little-endian 32-bit value to physical memory.
func (c *CPU) Write32(addr uint32, val uint32) {
	binary.LittleEndian.PutUint32(c.Mem[addr:], val)
}

// Push32 pushes a 32-bit value onto the stack.
func (c *CPU) Push32(val uint32) {
	c.Regs.ESP -= 4
	c.Write32(c.Regs.ESP, val)
}

// Pop32 pops a 32-bit value off the stack.
func (c *CPU) Pop32() uint32 {
	val := c.Read32(c.Regs.ESP)
	c.Regs.ESP += 4
	return val
}

// EnableInterrupts sets the interrupt-enable flag.
func (c *CPU) EnableInterrupts() {
	c.Regs.EFlags |= FlagIF
}

// DisableInterrupts clears the interrupt-enable flag.
func (c *CPU) DisableInterrupts() {
	c.Regs.EFlags &^= FlagIF
}

// InterruptsEnabled returns true when the interrupt-enable flag is set.
func (c *CPU) InterruptsEnabled() bool {
	return c.Regs.EFlags&FlagIF != 0
}

// Halt stops instruction execution permanently.
func (c *CPU) Halt() {
	c.halted = true
}

// Halted returns true once the processor has been halted.
func (c *CPU) Halted() bool {
	return c.halted
}

// LoadIDT loads the interrupt descriptor table register.
func (c *CPU) LoadIDT(base uint32, limit uint16) {
	c.IDTR = DescriptorTableReg{Base: base, Limit: limit}
}

// LoadGDT loads the global descriptor table register.
func (c *CPU) LoadGDT(base uint32, limit uint16) {
	c.GDTR = DescriptorTableReg{Base: base, Limit: limit}
}

// AttachRoutine links a kernel routine at the given code address so that
// interrupt delivery can transfer control to it.
func (c *CPU) AttachRoutine(addr uint32, fn Routine) {
	c.routines[addr] = fn
}
