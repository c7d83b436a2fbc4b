// Package kmain implements the kernel entry point: the initialization
// sequence that takes the machine from the boot handoff to a running
// system with interrupts enabled.
package kmain

import (
	"github.com/sureSundar/STEPPPS-sub015/device/kbd"
	"github.com/sureSundar/STEPPPS-sub015/device/pic"
	"github.com/sureSundar/STEPPPS-sub015/kernel"
	"github.com/sureSundar/STEPPPS-sub015/kernel/hal"
	"github.com/sureSundar/STEPPPS-sub015/kernel/irq"
	"github.com/sureSundar/STEPPPS-sub015/kernel/kfmt"
	"github.com/sureSundar/STEPPPS-sub015/kernel/mem"
	"github.com/sureSundar/STEPPPS-sub015/kernel/mem/pmm/allocator"
	"github.com/sureSundar/STEPPPS-sub015/kernel/rt0"
)

// Fixed kernel memory layout.
const (
	// GDTBase/IDTBase are where the descriptor tables are built; both
	// fit below the kernel image.
	GDTBase = 0x500
	IDTBase = 0x1000

	// StackTop is the initial kernel stack, just below the EBDA.
	StackTop = 0x9F000

	// KernelStart/KernelEnd delimit the region the physical allocator
	// must never hand out: the kernel image plus everything below it.
	KernelStart = 0x0
	KernelEnd   = 0x200000

	// bssStart/bssEnd delimit the zero-initialized tail of the kernel
	// image.
	bssStart = 0x180000
	bssEnd   = KernelEnd
)

// BootLayout returns the handoff layout matching the fixed kernel memory
// map above.
func BootLayout() rt0.Layout {
	return rt0.Layout{
		GDTBase:  GDTBase,
		StackTop: StackTop,
		BSSStart: bssStart,
		BSSEnd:   bssEnd,
	}
}

// System holds the long-lived kernel state assembled by Kmain.
type System struct {
	Router   *irq.Router
	PIC      *pic.Driver
	Keyboard *kbd.Driver
	Alloc    *allocator.BitmapAllocator
}

// Kmain initializes the kernel on the given machine: it points the log
// sink at the terminal, builds and loads the IDT, remaps the interrupt
// controllers, wires the keyboard, initializes the physical page
// allocator and finally enables interrupts. Initialization failures are
// fatal; Kmain panics and the machine halts.
func Kmain(m *hal.Machine) *System {
	kfmt.SetOutputSink(m.Terminal)
	m.Terminal.Clear()
	kfmt.Printf("[kmain] kernel starting\n")

	router, err := irq.NewRouter(m.CPU, IDTBase)
	if err != nil {
		kernel.Panic(err)
		return nil
	}
	kfmt.Printf("[kmain] interrupt routing installed\n")

	picDriver := pic.NewDriver(m.CPU)
	picDriver.Remap(irq.IRQBaseVector, irq.IRQBaseVector+8)
	router.SetEOISender(picDriver)

	keyboard := kbd.NewDriver(m.CPU)
	if err := router.HandleIRQ(kbd.IRQLine, keyboard.HandleIRQ); err != nil {
		kernel.Panic(err)
		return nil
	}
	if err := picDriver.SetMask(kbd.IRQLine, false); err != nil {
		kernel.Panic(err)
		return nil
	}
	kfmt.Printf("[kmain] keyboard online\n")

	alloc := &allocator.BitmapAllocator{}
	if err := alloc.Init(0, mem.Size(len(m.CPU.Mem)), KernelStart, KernelEnd); err != nil {
		kernel.Panic(err)
		return nil
	}
	kfmt.Printf("[kmain] page allocator ready: %d of %d pages free\n",
		alloc.FreePages(), alloc.TotalPages())

	m.CPU.EnableInterrupts()
	kfmt.Printf("[kmain] init complete; interrupts enabled\n")

	return &System{
		Router:   router,
		PIC:      picDriver,
		Keyboard: keyboard,
		Alloc:    alloc,
	}
}
