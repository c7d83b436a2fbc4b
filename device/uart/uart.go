// Package uart drives the 16550-style serial port the kernel uses as its
// secondary console, together with a bus-side model of the port that
// forwards transmitted bytes to the host.
package uart

import (
	"io"

	"github.com/sureSundar/STEPPPS-sub015/kernel/cpu"
)

// COM1Base is the port base of the first serial port.
const COM1Base = uint16(0x3F8)

// Register offsets from the port base.
const (
	dataReg = 0 // transmit holding register on write
	lsrReg  = 5 // line status register

	// lsrTxReady is set in the LSR when the transmit holding register
	// can accept another byte.
	lsrTxReady = uint8(0x20)
)

// Driver transmits bytes through a serial port. It implements io.Writer so
// it can serve directly as a console sink.
type Driver struct {
	io   cpu.PortIO
	base uint16
}

// NewDriver returns a driver for the serial port at the given base.
func NewDriver(io cpu.PortIO, base uint16) *Driver {
	return &Driver{io: io, base: base}
}

// Write transmits data one byte at a time, spinning on the line status
// register until the transmitter can accept each byte.
func (d *Driver) Write(data []byte) (int, error) {
	for _, b := range data {
		for d.io.In8(d.base+lsrReg)&lsrTxReady == 0 {
		}
		d.io.Out8(d.base+dataReg, b)
	}
	return len(data), nil
}

// Device models the serial port as a bus device: bytes written to the data
// register are forwarded to the host writer and the transmitter always
// reports ready.
type Device struct {
	base uint16
	out  io.Writer
}

// NewDevice returns a serial port model at base that forwards transmitted
// bytes to out. A nil out discards them.
func NewDevice(base uint16, out io.Writer) *Device {
	return &Device{base: base, out: out}
}

// Ports lists the I/O ports the device claims on the bus.
func (d *Device) Ports() []uint16 {
	ports := make([]uint16, 8)
	for i := range ports {
		ports[i] = d.base + uint16(i)
	}
	return ports
}

// In8 implements the port read side.
func (d *Device) In8(port uint16) uint8 {
	if port == d.base+lsrReg {
		return lsrTxReady
	}
	return 0
}

// Out8 implements the port write side.
func (d *Device) Out8(port uint16, val uint8) {
	if port == d.base+dataReg && d.out != nil {
		d.out.Write([]byte{val})
	}
}
