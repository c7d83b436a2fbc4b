// Package hal assembles the machine the kernel runs on: the CPU and its
// physical memory, the port I/O bus and the board devices hanging off it.
// Everything is owned by the Machine value handed to the kernel entry
// point; no piece of hardware state lives in a package-level variable.
package hal

import (
	"io"

	"github.com/sureSundar/STEPPPS-sub015/device/kbd"
	"github.com/sureSundar/STEPPPS-sub015/device/pic"
	"github.com/sureSundar/STEPPPS-sub015/device/tty"
	"github.com/sureSundar/STEPPPS-sub015/device/uart"
	"github.com/sureSundar/STEPPPS-sub015/device/video/console"
	"github.com/sureSundar/STEPPPS-sub015/kernel"
	"github.com/sureSundar/STEPPPS-sub015/kernel/cpu"
	"github.com/sureSundar/STEPPPS-sub015/kernel/mem"
)

var errMemTooSmall = &kernel.Error{Module: "hal", Message: "physical memory does not cover the video frame buffer"}

// minMemSize is the smallest memory the board supports: the frame buffer
// must be addressable.
const minMemSize = console.FrameBufferBase + console.DefaultWidth*console.DefaultHeight*2

// Config selects the variable parts of the machine.
type Config struct {
	// MemSize is the amount of physical memory installed.
	MemSize mem.Size

	// SerialOut receives everything the kernel transmits on COM1. Nil
	// discards serial output.
	SerialOut io.Writer
}

// Machine is the assembled board: one CPU, its bus and the devices the
// kernel drives.
type Machine struct {
	CPU *cpu.CPU

	PIC      *pic.Pair
	Keyboard *kbd.Model
	Serial   *uart.Device

	// Console is the VGA text console over the frame buffer region of
	// the CPU's physical memory; Terminal renders into it.
	Console  *console.Vga
	Terminal *tty.Vt
}

// NewMachine wires up the board: interrupt controller pair, keyboard
// controller and serial port on the bus, the text console over the frame
// buffer, and the panic halt hook pointing at the CPU.
func NewMachine(cfg Config) (*Machine, *kernel.Error) {
	if cfg.MemSize < minMemSize {
		return nil, errMemTooSmall
	}

	bus := cpu.NewBus()

	pair := pic.NewPair()
	bus.Attach(pair, pair.Ports()...)

	keyboard := kbd.NewModel()
	bus.Attach(keyboard, keyboard.Ports()...)

	serial := uart.NewDevice(uart.COM1Base, cfg.SerialOut)
	bus.Attach(serial, serial.Ports()...)

	c := cpu.New(make([]byte, cfg.MemSize), bus)

	vga := console.NewVga(
		c.Mem[console.FrameBufferBase:],
		console.DefaultWidth,
		console.DefaultHeight,
	)

	m := &Machine{
		CPU:      c,
		PIC:      pair,
		Keyboard: keyboard,
		Serial:   serial,
		Console:  vga,
		Terminal: tty.NewVt(vga),
	}

	kernel.OnPanicHalt(c.Halt)

	return m, nil
}

// Step pumps one interrupt-delivery cycle: when the CPU accepts maskable
// interrupts and the controller pair has an unmasked pending line, the
// corresponding vector is delivered. It returns false once the machine
// has halted.
func (m *Machine) Step() bool {
	if m.CPU.Halted() {
		return false
	}

	if m.CPU.InterruptsEnabled() {
		if vector, ok := m.PIC.PendingVector(); ok {
			m.CPU.DeliverInterrupt(vector, 0)
		}
	}

	return !m.CPU.Halted()
}

// PressKey queues a scancode on the keyboard controller and asserts its
// interrupt line. The interrupt is delivered on a following Step.
func (m *Machine) PressKey(code uint8) {
	m.Keyboard.Press(code)
	m.PIC.Raise(kbd.IRQLine)
}
