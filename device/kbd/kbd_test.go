package kbd

import (
	"testing"

	"github.com/sureSundar/STEPPPS-sub015/kernel/cpu"
)

func newTestDriver() (*Model, *Driver) {
	bus := cpu.NewBus()
	model := NewModel()
	bus.Attach(model, model.Ports()...)
	return model, NewDriver(bus)
}

func TestHandleIRQDrainsAndDecodes(t *testing.T) {
	model, d := newTestDriver()

	// "hi" followed by enter; the handler should drain all three codes
	// in a single invocation.
	model.Press(0x23)
	model.Press(0x17)
	model.Press(0x1C)

	d.HandleIRQ(nil)

	if model.HasPending() {
		t.Fatal("expected the handler to drain the controller buffer")
	}

	for _, exp := range []byte{'h', 'i', '\n'} {
		ch, ok := d.ReadKey()
		if !ok {
			t.Fatalf("expected a queued character %q", exp)
		}
		if ch != exp {
			t.Errorf("expected %q; got %q", exp, ch)
		}
	}

	if _, ok := d.ReadKey(); ok {
		t.Error("expected the queue to be empty")
	}
}

func TestBreakAndUnmappedCodesAreDiscarded(t *testing.T) {
	model, d := newTestDriver()

	model.Press(0x23)        // make 'h'
	model.Press(0x23 | 0x80) // break 'h'
	model.Press(0x01)        // escape: no printable mapping
	d.HandleIRQ(nil)

	if ch, ok := d.ReadKey(); !ok || ch != 'h' {
		t.Fatalf("expected a single 'h'; got %q (ok=%t)", ch, ok)
	}

	if _, ok := d.ReadKey(); ok {
		t.Error("expected break and unmapped codes to decode to nothing")
	}
}

func TestScancodeForInvertsKeymap(t *testing.T) {
	for _, ch := range []byte{'a', 'z', '0', ' ', '\n'} {
		code, ok := ScancodeFor(ch)
		if !ok {
			t.Fatalf("expected a scancode for %q", ch)
		}
		if keymap[code] != ch {
			t.Errorf("scancode 0x%x decodes to %q, not %q", code, keymap[code], ch)
		}
	}

	if _, ok := ScancodeFor('@'); ok {
		t.Error("expected no scancode for a character outside the keymap")
	}
}

func TestQueueDropsOldestWhenFull(t *testing.T) {
	model, d := newTestDriver()

	// Overfill by one: 'q' repeated queueSize times, then a final 'w'.
	for i := 0; i < queueSize; i++ {
		model.Press(0x10)
	}
	model.Press(0x11)
	d.HandleIRQ(nil)

	var last byte
	count := 0
	for {
		ch, ok := d.ReadKey()
		if !ok {
			break
		}
		last = ch
		count++
	}

	if count != queueSize {
		t.Fatalf("expected the queue to cap at %d entries; got %d", queueSize, count)
	}

	if last != 'w' {
		t.Fatalf("expected the newest character to survive the overflow; got %q", last)
	}
}
