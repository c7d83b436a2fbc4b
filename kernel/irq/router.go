package irq

import (
	"github.com/sureSundar/STEPPPS-sub015/kernel"
	"github.com/sureSundar/STEPPPS-sub015/kernel/cpu"
	"github.com/sureSundar/STEPPPS-sub015/kernel/gate"
	"github.com/sureSundar/STEPPPS-sub015/kernel/kfmt"
)

// Handler processes one interrupt. It receives the typed register frame of
// the interrupted context and may modify it; changes take effect when the
// trampoline restores state on return.
type Handler func(*Registers)

// EOISender acknowledges a serviced interrupt line back to the interrupt
// controller so the line can fire again.
type EOISender interface {
	EOI(line uint8)
}

// Router owns the IDT and the dispatch policy behind every trampoline:
// exception vectors produce a terminal diagnostic, remapped IRQ vectors
// run their registered handler and are always acknowledged. Vectors above
// the IRQ window have no gate at all; delivery through one faults at the
// CPU and lands on the general protection trampoline.
type Router struct {
	c     *cpu.CPU
	table *gate.Table

	eoi         EOISender
	irqHandlers [IRQLines]Handler
}

// installedVectors is the number of IDT slots the router populates: the
// exception range plus the remapped IRQ window. Slots 48-255 stay
// all-zero so that transferring through one raises a general protection
// fault instead of silently running an unrouted vector.
const installedVectors = IRQBaseVector + IRQLines

// NewRouter builds the IDT at idtBase, populates the exception and IRQ
// slots with interrupt gates pointing at the per-vector trampoline stubs,
// attaches the stub routines at their linked addresses and loads the
// table into the CPU. Every gate uses the kernel code selector; using
// interrupt gates throughout means the save sequence always runs with
// interrupts masked.
func NewRouter(c *cpu.CPU, idtBase uint32) (*Router, *kernel.Error) {
	table, err := gate.NewTable(c, idtBase)
	if err != nil {
		return nil, err
	}

	r := &Router{c: c, table: table}

	for v := 0; v < installedVectors; v++ {
		vector := Vector(v)
		addr := StubAddress(vector)
		c.AttachRoutine(addr, r.stubFor(vector))
		table.Install(uint8(v), addr, cpu.KernelCodeSelector, gate.AttrPresent|gate.AttrRing0|gate.TypeInterrupt)
	}

	table.Load()

	return r, nil
}

// SetEOISender registers the interrupt controller driver that IRQ
// acknowledgments are sent through.
func (r *Router) SetEOISender(s EOISender) {
	r.eoi = s
}

// HandleIRQ registers handler for the given interrupt line. Passing nil
// removes the registration; the line is still acknowledged when it fires.
func (r *Router) HandleIRQ(line uint8, handler Handler) *kernel.Error {
	if line >= IRQLines {
		return errBadIRQLine
	}
	r.irqHandlers[line] = handler
	return nil
}

var errBadIRQLine = &kernel.Error{Module: "irq", Message: "interrupt line out of range"}

// dispatch is the common entry behind every trampoline stub. sp is the
// stack address of the saved 17-word frame.
func (r *Router) dispatch(c *cpu.CPU, sp uint32) {
	frame := decodeFrame(c, sp)

	switch vector := Vector(frame.Vector); {
	case vector < ExceptionVectors:
		r.fault(frame)
	case vector < installedVectors:
		line := uint8(vector - IRQBaseVector)
		if handler := r.irqHandlers[line]; handler != nil {
			handler(frame)
		}
		// The controller is acknowledged whether or not a handler was
		// registered; a line that is never acknowledged blocks all
		// lower-priority lines forever.
		if r.eoi != nil {
			r.eoi.EOI(line)
		}
		frame.encodeTo(c, sp)
	}
}

// fault reports an exception and halts the machine. None of the exception
// vectors are recoverable in this kernel.
func (r *Router) fault(frame *Registers) {
	w := kfmt.GetOutputSink()

	kfmt.Fprintf(w, "\nEXCEPTION: %s\n", ExceptionName(Vector(frame.Vector)))
	kfmt.Fprintf(w, "vector=0x%8X error=0x%8X\n", frame.Vector, frame.ErrCode)
	frame.DumpTo(w)

	r.c.Halt()
}
