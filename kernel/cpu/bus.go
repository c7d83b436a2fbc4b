package cpu

// PortIO is the byte-wide port input/output capability. The CPU implements
// it for driver code issuing IN/OUT; bus peripherals implement it to
// receive those accesses.
type PortIO interface {
	In8(port uint16) uint8
	Out8(port uint16, val uint8)
}

// Bus multiplexes port accesses onto the peripherals claiming each port.
type Bus struct {
	devices map[uint16]PortIO
}

// NewBus returns an empty port I/O bus.
func NewBus() *Bus {
	return &Bus{devices: make(map[uint16]PortIO)}
}

// Attach claims the listed ports for the given peripheral. Claiming an
// already-claimed port replaces the previous owner.
func (b *Bus) Attach(dev PortIO, ports ...uint16) {
	for _, port := range ports {
		b.devices[port] = dev
	}
}

// In8 reads a byte from the peripheral claiming the port. Reads from
// unclaimed ports float high, like a real ISA bus.
func (b *Bus) In8(port uint16) uint8 {
	if dev, ok := b.devices[port]; ok {
		return dev.In8(port)
	}
	return 0xFF
}

// Out8 writes a byte to the peripheral claiming the port. Writes to
// unclaimed ports are dropped.
func (b *Bus) Out8(port uint16, val uint8) {
	if dev, ok := b.devices[port]; ok {
		dev.Out8(port, val)
	}
}
