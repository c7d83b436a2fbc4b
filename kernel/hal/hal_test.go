package hal

import (
	"bytes"
	"testing"

	"github.com/sureSundar/STEPPPS-sub015/device/uart"
	"github.com/sureSundar/STEPPPS-sub015/device/video/console"
	"github.com/sureSundar/STEPPPS-sub015/kernel/mem"
)

func TestNewMachineWiring(t *testing.T) {
	var serial bytes.Buffer

	m, err := NewMachine(Config{MemSize: 16 * mem.Mb, SerialOut: &serial})
	if err != nil {
		t.Fatal(err)
	}

	if got := len(m.CPU.Mem); got != int(16*mem.Mb) {
		t.Fatalf("expected 16MiB of physical memory; got %d bytes", got)
	}

	if m.CPU.InterruptsEnabled() {
		t.Error("expected the machine to come up with interrupts masked")
	}

	// Terminal output lands in the frame buffer region of physical
	// memory.
	m.Terminal.Write([]byte("ok"))

	if ch := m.CPU.Mem[console.FrameBufferBase]; ch != 'o' {
		t.Errorf("expected the first frame buffer cell to hold 'o'; got 0x%x", ch)
	}

	// The serial port forwards to the host writer.
	d := uart.NewDriver(m.CPU, uart.COM1Base)
	d.Write([]byte("serial"))

	if got := serial.String(); got != "serial" {
		t.Errorf("expected the host to capture %q; got %q", "serial", got)
	}
}

func TestNewMachineRejectsTinyMemory(t *testing.T) {
	if _, err := NewMachine(Config{MemSize: 4 * mem.Kb}); err != errMemTooSmall {
		t.Fatalf("expected errMemTooSmall; got %v", err)
	}
}

func TestStepHonorsInterruptMask(t *testing.T) {
	m, err := NewMachine(Config{MemSize: 16 * mem.Mb})
	if err != nil {
		t.Fatal(err)
	}

	// A pending line with interrupts masked must not be delivered.
	m.PressKey(0x10)

	if !m.Step() {
		t.Fatal("expected the machine to keep running")
	}

	// Delivering through the still-empty IDT would have halted the
	// machine; a masked CPU must not be handed the pending vector.
	if m.CPU.Halted() {
		t.Fatal("expected no delivery attempt while interrupts are masked")
	}
}

func TestStepStopsAfterHalt(t *testing.T) {
	m, err := NewMachine(Config{MemSize: 16 * mem.Mb})
	if err != nil {
		t.Fatal(err)
	}

	m.CPU.Halt()

	if m.Step() {
		t.Fatal("expected Step to report a halted machine")
	}
}
