// Package kbd drives the 8042-style keyboard controller: an interrupt
// handler that drains the controller's output buffer, decodes set-1 make
// codes and queues the resulting characters for the kernel to consume.
// The controller itself is modeled as a bus device so the driver can be
// exercised end to end through interrupt delivery.
package kbd

import (
	"github.com/sureSundar/STEPPPS-sub015/kernel/cpu"
	"github.com/sureSundar/STEPPPS-sub015/kernel/irq"
)

// IRQLine is the interrupt controller line the keyboard is wired to.
const IRQLine = uint8(1)

// Controller port assignments.
const (
	DataPort   = uint16(0x60)
	StatusPort = uint16(0x64)

	// statusOutputFull is set while the output buffer holds a scancode.
	statusOutputFull = uint8(0x01)
)

// queueSize bounds the decoded-character queue. When the kernel falls
// behind, the oldest characters are dropped; keystrokes are a lossy input
// and blocking inside an interrupt handler is never an option.
const queueSize = 64

// keymap translates set-1 make codes to characters. Break codes (bit 7
// set) and codes without a printable mapping decode to zero and are
// discarded.
var keymap = [128]byte{
	0x02: '1', 0x03: '2', 0x04: '3', 0x05: '4', 0x06: '5',
	0x07: '6', 0x08: '7', 0x09: '8', 0x0A: '9', 0x0B: '0',
	0x0C: '-', 0x0D: '=', 0x0E: '\b', 0x0F: '\t',
	0x10: 'q', 0x11: 'w', 0x12: 'e', 0x13: 'r', 0x14: 't',
	0x15: 'y', 0x16: 'u', 0x17: 'i', 0x18: 'o', 0x19: 'p',
	0x1A: '[', 0x1B: ']', 0x1C: '\n',
	0x1E: 'a', 0x1F: 's', 0x20: 'd', 0x21: 'f', 0x22: 'g',
	0x23: 'h', 0x24: 'j', 0x25: 'k', 0x26: 'l', 0x27: ';',
	0x28: '\'', 0x29: '`',
	0x2B: '\\',
	0x2C: 'z', 0x2D: 'x', 0x2E: 'c', 0x2F: 'v', 0x30: 'b',
	0x31: 'n', 0x32: 'm', 0x33: ',', 0x34: '.', 0x35: '/',
	0x39: ' ',
}

// ScancodeFor returns the set-1 make code that decodes to ch. It is the
// inverse of the driver's keymap and exists for hosts that synthesize
// keystrokes from character input.
func ScancodeFor(ch byte) (uint8, bool) {
	for code, mapped := range keymap {
		if mapped == ch && mapped != 0 {
			return uint8(code), true
		}
	}
	return 0, false
}

// Driver services keyboard interrupts and queues decoded characters.
type Driver struct {
	io cpu.PortIO

	queue      [queueSize]byte
	head, tail uint32
}

// NewDriver returns a keyboard driver that reads the controller through
// io.
func NewDriver(io cpu.PortIO) *Driver {
	return &Driver{io: io}
}

// HandleIRQ drains every scancode the controller has buffered. It is
// registered as the interrupt handler for the keyboard line.
func (d *Driver) HandleIRQ(_ *irq.Registers) {
	for d.io.In8(StatusPort)&statusOutputFull != 0 {
		code := d.io.In8(DataPort)
		if code&0x80 != 0 {
			continue
		}
		if ch := keymap[code]; ch != 0 {
			d.push(ch)
		}
	}
}

// ReadKey pops the oldest decoded character. ok is false when the queue
// is empty.
func (d *Driver) ReadKey() (byte, bool) {
	if d.head == d.tail {
		return 0, false
	}
	ch := d.queue[d.head%queueSize]
	d.head++
	return ch, true
}

func (d *Driver) push(ch byte) {
	if d.tail-d.head == queueSize {
		d.head++
	}
	d.queue[d.tail%queueSize] = ch
	d.tail++
}

// Model is the bus-side 8042: a scancode FIFO exposed through the data
// and status ports.
type Model struct {
	pending []uint8
}

// NewModel returns an empty keyboard controller model.
func NewModel() *Model {
	return &Model{}
}

// Ports lists the I/O ports the model claims on the bus.
func (m *Model) Ports() []uint16 {
	return []uint16{DataPort, StatusPort}
}

// Press queues a scancode as if the key had been struck.
func (m *Model) Press(code uint8) {
	m.pending = append(m.pending, code)
}

// HasPending returns true while scancodes wait in the output buffer.
func (m *Model) HasPending() bool {
	return len(m.pending) > 0
}

// In8 implements the port read side. Reading the data port consumes one
// scancode.
func (m *Model) In8(port uint16) uint8 {
	switch port {
	case StatusPort:
		if len(m.pending) > 0 {
			return statusOutputFull
		}
		return 0
	case DataPort:
		if len(m.pending) == 0 {
			return 0
		}
		code := m.pending[0]
		m.pending = m.pending[1:]
		return code
	}
	return 0
}

// Out8 implements the port write side. Controller commands are not
// modeled; writes are dropped.
func (m *Model) Out8(uint16, uint8) {}
