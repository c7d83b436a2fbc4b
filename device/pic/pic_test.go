package pic

import (
	"testing"
)

type portWrite struct {
	port uint16
	val  uint8
}

// recordingIO records every port write and serves reads from a fixed map.
type recordingIO struct {
	writes []portWrite
	reads  map[uint16]uint8
}

func (r *recordingIO) In8(port uint16) uint8 {
	return r.reads[port]
}

func (r *recordingIO) Out8(port uint16, val uint8) {
	r.writes = append(r.writes, portWrite{port, val})
}

func TestRemapWriteSequence(t *testing.T) {
	io := &recordingIO{}
	NewDriver(io).Remap(32, 40)

	exp := []portWrite{
		{MasterCmdPort, 0x11},
		{SlaveCmdPort, 0x11},
		{MasterDataPort, 32},
		{SlaveDataPort, 40},
		{MasterDataPort, 0x04},
		{SlaveDataPort, 0x02},
		{MasterDataPort, 0x01},
		{SlaveDataPort, 0x01},
		{MasterDataPort, 0xFF},
		{SlaveDataPort, 0xFF},
	}

	if len(io.writes) != len(exp) {
		t.Fatalf("expected %d port writes; got %d: %v", len(exp), len(io.writes), io.writes)
	}

	for i, w := range exp {
		if io.writes[i] != w {
			t.Errorf("write %d: expected {port 0x%x, val 0x%x}; got {port 0x%x, val 0x%x}",
				i, w.port, w.val, io.writes[i].port, io.writes[i].val)
		}
	}
}

func TestSetMaskReadModifyWrite(t *testing.T) {
	pair := NewPair()
	d := NewDriver(pair)
	d.Remap(32, 40)

	if err := d.SetMask(1, false); err != nil {
		t.Fatal(err)
	}

	if exp, got := uint8(0xFD), pair.In8(MasterDataPort); got != exp {
		t.Errorf("expected master mask register 0x%x; got 0x%x", exp, got)
	}

	if exp, got := uint8(0xFF), pair.In8(SlaveDataPort); got != exp {
		t.Errorf("expected slave mask register 0x%x; got 0x%x", exp, got)
	}

	if err := d.SetMask(8, false); err != nil {
		t.Fatal(err)
	}

	if exp, got := uint8(0xFE), pair.In8(SlaveDataPort); got != exp {
		t.Errorf("expected slave mask register 0x%x; got 0x%x", exp, got)
	}

	// Re-masking line 1 leaves the other bits alone.
	if err := d.SetMask(1, true); err != nil {
		t.Fatal(err)
	}

	if exp, got := uint8(0xFF), pair.In8(MasterDataPort); got != exp {
		t.Errorf("expected master mask register 0x%x; got 0x%x", exp, got)
	}

	if err := d.SetMask(lineCount, false); err != errBadLine {
		t.Fatalf("expected errBadLine; got %v", err)
	}
}

func TestEOIOrdering(t *testing.T) {
	io := &recordingIO{}
	d := NewDriver(io)

	d.EOI(1)

	if len(io.writes) != 1 || io.writes[0] != (portWrite{MasterCmdPort, cmdEOI}) {
		t.Fatalf("expected a single master EOI for line 1; got %v", io.writes)
	}

	io.writes = nil
	d.EOI(9)

	exp := []portWrite{
		{SlaveCmdPort, cmdEOI},
		{MasterCmdPort, cmdEOI},
	}

	if len(io.writes) != 2 || io.writes[0] != exp[0] || io.writes[1] != exp[1] {
		t.Fatalf("expected slave-first EOI for line 9; got %v", io.writes)
	}
}

func TestPendingVectorDelivery(t *testing.T) {
	pair := NewPair()
	d := NewDriver(pair)
	d.Remap(32, 40)

	// Everything masked: a raised line stays pending but undeliverable.
	pair.Raise(1)
	if _, ok := pair.PendingVector(); ok {
		t.Fatal("expected no deliverable vector while every line is masked")
	}

	if err := d.SetMask(1, false); err != nil {
		t.Fatal(err)
	}

	vector, ok := pair.PendingVector()
	if !ok || vector != 33 {
		t.Fatalf("expected vector 33 for line 1; got %d (deliverable=%t)", vector, ok)
	}

	// Acknowledged: nothing further pending until raised again.
	if _, ok := pair.PendingVector(); ok {
		t.Fatal("expected no pending vector after the acknowledge cycle")
	}

	d.EOI(1)
	pair.Raise(1)
	if vector, ok := pair.PendingVector(); !ok || vector != 33 {
		t.Fatalf("expected line 1 to fire again after EOI; got %d (deliverable=%t)", vector, ok)
	}
}

func TestPendingVectorPriority(t *testing.T) {
	pair := NewPair()
	d := NewDriver(pair)
	d.Remap(32, 40)

	for _, line := range []uint8{0, 1, 5} {
		if err := d.SetMask(line, false); err != nil {
			t.Fatal(err)
		}
	}

	pair.Raise(5)
	pair.Raise(0)

	if vector, ok := pair.PendingVector(); !ok || vector != 32 {
		t.Fatalf("expected the lower line to win arbitration; got vector %d (deliverable=%t)", vector, ok)
	}
	d.EOI(0)

	if vector, ok := pair.PendingVector(); !ok || vector != 37 {
		t.Fatalf("expected line 5 next; got vector %d (deliverable=%t)", vector, ok)
	}
}

func TestSlaveCascadeDelivery(t *testing.T) {
	pair := NewPair()
	d := NewDriver(pair)
	d.Remap(32, 40)

	if err := d.SetMask(9, false); err != nil {
		t.Fatal(err)
	}

	// The cascade line is still masked on the master, so the slave's
	// request cannot propagate.
	pair.Raise(9)
	if _, ok := pair.PendingVector(); ok {
		t.Fatal("expected a masked cascade line to hide every slave line")
	}

	if err := d.SetMask(cascadeLine, false); err != nil {
		t.Fatal(err)
	}

	pair.Raise(9)
	if vector, ok := pair.PendingVector(); !ok || vector != 41 {
		t.Fatalf("expected vector 41 for slave line 9; got %d (deliverable=%t)", vector, ok)
	}

	d.EOI(9)
	pair.Raise(9)
	if vector, ok := pair.PendingVector(); !ok || vector != 41 {
		t.Fatalf("expected slave line 9 to fire again after EOI; got %d (deliverable=%t)", vector, ok)
	}
}
