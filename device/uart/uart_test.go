package uart

import (
	"bytes"
	"testing"

	"github.com/sureSundar/STEPPPS-sub015/kernel/cpu"
)

func TestDriverTransmitsThroughModel(t *testing.T) {
	var captured bytes.Buffer

	bus := cpu.NewBus()
	dev := NewDevice(COM1Base, &captured)
	bus.Attach(dev, dev.Ports()...)

	d := NewDriver(bus, COM1Base)

	msg := "hello from the serial console\n"
	n, err := d.Write([]byte(msg))
	if err != nil {
		t.Fatal(err)
	}

	if n != len(msg) {
		t.Fatalf("expected %d bytes written; got %d", len(msg), n)
	}

	if got := captured.String(); got != msg {
		t.Fatalf("expected the host side to capture %q; got %q", msg, got)
	}
}

func TestDeviceStatusAndDiscard(t *testing.T) {
	dev := NewDevice(COM1Base, nil)

	if dev.In8(COM1Base+lsrReg)&lsrTxReady == 0 {
		t.Error("expected the transmitter to report ready")
	}

	// A device without a host writer silently discards output.
	dev.Out8(COM1Base+dataReg, 'x')

	if got := dev.In8(COM1Base + dataReg); got != 0 {
		t.Errorf("expected reads of the data register to return 0; got 0x%x", got)
	}

	if exp, got := 8, len(dev.Ports()); got != exp {
		t.Errorf("expected the device to claim %d ports; got %d", exp, got)
	}
}
