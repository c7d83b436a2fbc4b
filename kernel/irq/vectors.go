// Package irq implements the interrupt entry trampolines and the shared
// dispatcher behind them: per-vector stubs that normalize the CPU-supplied
// stack frame, save and restore the full register state, route faults to
// their terminal diagnostics and hardware interrupts to their handlers.
package irq

// ExceptionVectors is the number of vectors the architecture reserves for
// CPU exceptions.
const ExceptionVectors = 32

// IRQBaseVector is the vector the legacy interrupt controllers are
// remapped to; lines 0-15 occupy vectors 32-47.
const IRQBaseVector = 32

// IRQLines is the number of lines serviced by the cascaded controller pair.
const IRQLines = 16

// KeyboardLine is the interrupt line the keyboard controller is wired to.
const KeyboardLine = 1

// Vector identifies an interrupt/exception slot in the IDT.
type Vector uint8

const (
	// DivideError occurs when dividing any number by 0 using the DIV or
	// IDIV instruction.
	DivideError = Vector(0)

	// NMI is a hardware interrupt that indicates issues with RAM or
	// unrecoverable hardware problems.
	NMI = Vector(2)

	// Breakpoint occurs when the CPU executes an INT3 instruction.
	Breakpoint = Vector(3)

	// InvalidOpcode occurs when the CPU attempts to execute an invalid
	// or undefined instruction opcode.
	InvalidOpcode = Vector(6)

	// DoubleFault occurs when an exception is unhandled or when an
	// exception occurs while the CPU is invoking an exception handler.
	DoubleFault = Vector(8)

	// GPFault occurs when a general protection check fails; transferring
	// through an unpopulated IDT slot lands here.
	GPFault = Vector(13)

	// PageFault occurs when a page lookup or a privilege/RW protection
	// check fails.
	PageFault = Vector(14)
)

// exceptionNames maps exception vectors to the human-readable names used
// by the fault diagnostics. Reserved vectors deliberately read "Unknown".
var exceptionNames = [ExceptionVectors]string{
	"Division By Zero",
	"Debug",
	"Non Maskable Interrupt",
	"Breakpoint",
	"Into Detected Overflow",
	"Out of Bounds",
	"Invalid Opcode",
	"No Coprocessor",
	"Double Fault",
	"Coprocessor Segment Overrun",
	"Bad TSS",
	"Segment Not Present",
	"Stack Fault",
	"General Protection Fault",
	"Page Fault",
	"Unknown Interrupt",
	"Coprocessor Fault",
	"Alignment Check",
	"Machine Check",
	"Unknown", "Unknown", "Unknown", "Unknown", "Unknown",
	"Unknown", "Unknown", "Unknown", "Unknown", "Unknown",
	"Unknown", "Unknown", "Unknown",
}

// ExceptionName returns the diagnostic name for an exception vector.
// Out-of-range or reserved vectors read "Unknown".
func ExceptionName(v Vector) string {
	if v >= ExceptionVectors {
		return "Unknown"
	}
	return exceptionNames[v]
}
