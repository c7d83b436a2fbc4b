// Package pic drives the two cascaded 8259 programmable interrupt
// controllers: remapping their vector bases away from the CPU exception
// range, masking and unmasking individual lines and acknowledging serviced
// interrupts. The package also models the controller pair itself as a port
// bus device so the driver can be exercised against real chip behavior.
package pic

import (
	"github.com/sureSundar/STEPPPS-sub015/kernel"
	"github.com/sureSundar/STEPPPS-sub015/kernel/cpu"
)

// Controller port assignments on the PC/AT.
const (
	MasterCmdPort  = uint16(0x20)
	MasterDataPort = uint16(0x21)
	SlaveCmdPort   = uint16(0xA0)
	SlaveDataPort  = uint16(0xA1)
)

// Initialization and operation command bytes.
const (
	// icw1Init starts the four-byte initialization sequence; the low bit
	// announces that ICW4 will follow.
	icw1Init      = uint8(0x10)
	icw1NeedsICW4 = uint8(0x01)

	// icw3MasterCascade tells the master which line its slave hangs off
	// (a bit mask); icw3SlaveIdentity tells the slave which line that is
	// (a plain number).
	icw3MasterCascade = uint8(1 << cascadeLine)
	icw3SlaveIdentity = uint8(cascadeLine)

	// icw48086 selects 8086/88 operation.
	icw48086 = uint8(0x01)

	// cmdEOI is the non-specific end-of-interrupt command.
	cmdEOI = uint8(0x20)
)

// cascadeLine is the master line the slave controller is wired to.
const cascadeLine = 2

// lineCount is the number of lines across the pair.
const lineCount = 16

var errBadLine = &kernel.Error{Module: "pic", Message: "interrupt line out of range"}

// Driver programs the controller pair through port I/O.
type Driver struct {
	io cpu.PortIO
}

// NewDriver returns a driver that talks to the controllers through io.
func NewDriver(io cpu.PortIO) *Driver {
	return &Driver{io: io}
}

// Remap reprograms the vector bases of the two controllers so hardware
// interrupts no longer collide with the CPU exception vectors, then masks
// every line. Lines are unmasked individually once a handler exists for
// them.
//
// The full initialization sequence is replayed: ICW1 to both command
// ports, then vector bases, cascade wiring and 8086 mode through the data
// ports.
func (d *Driver) Remap(masterBase, slaveBase uint8) {
	d.io.Out8(MasterCmdPort, icw1Init|icw1NeedsICW4)
	d.io.Out8(SlaveCmdPort, icw1Init|icw1NeedsICW4)

	d.io.Out8(MasterDataPort, masterBase)
	d.io.Out8(SlaveDataPort, slaveBase)

	d.io.Out8(MasterDataPort, icw3MasterCascade)
	d.io.Out8(SlaveDataPort, icw3SlaveIdentity)

	d.io.Out8(MasterDataPort, icw48086)
	d.io.Out8(SlaveDataPort, icw48086)

	d.io.Out8(MasterDataPort, 0xFF)
	d.io.Out8(SlaveDataPort, 0xFF)
}

// SetMask masks or unmasks a single line, leaving all other mask bits
// untouched. Lines 8-15 live in the slave's mask register; note that the
// master's cascade line must also be unmasked for slave lines to be
// delivered.
func (d *Driver) SetMask(line uint8, masked bool) *kernel.Error {
	if line >= lineCount {
		return errBadLine
	}

	port, bit := MasterDataPort, line
	if line >= 8 {
		port, bit = SlaveDataPort, line-8
	}

	imr := d.io.In8(port)
	if masked {
		imr |= 1 << bit
	} else {
		imr &^= 1 << bit
	}
	d.io.Out8(port, imr)

	return nil
}

// EOI acknowledges a serviced interrupt line. Lines 8-15 were forwarded
// through the slave, so the slave is acknowledged first and then the
// master for the cascade line it saw.
func (d *Driver) EOI(line uint8) {
	if line >= 8 {
		d.io.Out8(SlaveCmdPort, cmdEOI)
	}
	d.io.Out8(MasterCmdPort, cmdEOI)
}
