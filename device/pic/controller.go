package pic

import "math/bits"

// chip models one 8259: its request, in-service and mask registers plus
// the four-byte initialization state machine driven through the command
// and data ports.
type chip struct {
	vectorBase uint8

	imr uint8
	irr uint8
	isr uint8

	// initStage walks ICW2 through ICW4 after an ICW1 arrives on the
	// command port; zero means initialized and accepting OCW1 mask
	// writes on the data port.
	initStage int
}

func (p *chip) writeCmd(v uint8) {
	switch {
	case v&icw1Init != 0:
		p.initStage = 1
		p.imr = 0
		p.irr = 0
		p.isr = 0
	case v == cmdEOI:
		// Non-specific EOI retires the highest-priority in-service
		// line.
		if p.isr != 0 {
			p.isr &^= 1 << uint(bits.TrailingZeros8(p.isr))
		}
	}
}

func (p *chip) writeData(v uint8) {
	switch p.initStage {
	case 1:
		p.vectorBase = v
		p.initStage = 2
	case 2:
		// ICW3; the cascade wiring is fixed in this machine.
		p.initStage = 3
	case 3:
		// ICW4; 8086 mode is the only mode modeled.
		p.initStage = 0
	default:
		p.imr = v
	}
}

func (p *chip) readData() uint8 {
	return p.imr
}

// pending returns the highest-priority line that is both requested and
// unmasked.
func (p *chip) pending() (uint8, bool) {
	ready := p.irr &^ p.imr
	if ready == 0 {
		return 0, false
	}
	return uint8(bits.TrailingZeros8(ready)), true
}

// ack moves a line from requested to in-service, as the interrupt
// acknowledge cycle does.
func (p *chip) ack(line uint8) {
	p.irr &^= 1 << line
	p.isr |= 1 << line
}

// Pair models the cascaded master/slave controller pair as a single bus
// device claiming all four controller ports.
type Pair struct {
	master chip
	slave  chip
}

// NewPair returns a controller pair in its power-on state: uninitialized,
// no lines requested.
func NewPair() *Pair {
	return &Pair{}
}

// Ports lists the I/O ports the pair claims on the bus.
func (p *Pair) Ports() []uint16 {
	return []uint16{MasterCmdPort, MasterDataPort, SlaveCmdPort, SlaveDataPort}
}

// In8 implements the port read side. Reading a data port returns the mask
// register, which is what the driver's read-modify-write masking relies
// on.
func (p *Pair) In8(port uint16) uint8 {
	switch port {
	case MasterDataPort:
		return p.master.readData()
	case SlaveDataPort:
		return p.slave.readData()
	}
	return 0
}

// Out8 implements the port write side.
func (p *Pair) Out8(port uint16, v uint8) {
	switch port {
	case MasterCmdPort:
		p.master.writeCmd(v)
	case MasterDataPort:
		p.master.writeData(v)
	case SlaveCmdPort:
		p.slave.writeCmd(v)
	case SlaveDataPort:
		p.slave.writeData(v)
	}
}

// Raise asserts an interrupt line. Lines 8-15 request on the slave, which
// in turn requests the master's cascade line.
func (p *Pair) Raise(line uint8) {
	if line >= lineCount {
		return
	}
	if line < 8 {
		p.master.irr |= 1 << line
		return
	}
	p.slave.irr |= 1 << (line - 8)
	p.master.irr |= 1 << cascadeLine
}

// PendingVector runs the interrupt acknowledge cycle: it picks the
// highest-priority unmasked requested line, moves it in-service and
// returns the vector the controllers were programmed to present for it.
// A masked cascade line hides every slave line, exactly as on hardware.
func (p *Pair) PendingVector() (uint8, bool) {
	line, ok := p.master.pending()
	if !ok {
		return 0, false
	}

	if line != cascadeLine {
		p.master.ack(line)
		return p.master.vectorBase + line, true
	}

	slaveLine, ok := p.slave.pending()
	if !ok {
		// The slave's request was masked off after it propagated;
		// drop the stale cascade request.
		p.master.irr &^= 1 << cascadeLine
		return 0, false
	}

	p.master.ack(cascadeLine)
	p.slave.ack(slaveLine)
	return p.slave.vectorBase + slaveLine, true
}
