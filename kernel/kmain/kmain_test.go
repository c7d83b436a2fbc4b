package kmain

import (
	"testing"

	"github.com/sureSundar/STEPPPS-sub015/kernel/cpu"
	"github.com/sureSundar/STEPPPS-sub015/kernel/hal"
	"github.com/sureSundar/STEPPPS-sub015/kernel/kfmt"
	"github.com/sureSundar/STEPPPS-sub015/kernel/mem"
	"github.com/sureSundar/STEPPPS-sub015/kernel/rt0"
)

func newTestMachine(t *testing.T) *hal.Machine {
	t.Helper()

	prevSink := kfmt.GetOutputSink()
	t.Cleanup(func() { kfmt.SetOutputSink(prevSink) })

	m, err := hal.NewMachine(hal.Config{MemSize: 16 * mem.Mb})
	if err != nil {
		t.Fatal(err)
	}

	// Tests that skip the boot handoff still need a usable stack.
	m.CPU.Regs.ESP = StackTop

	return m
}

func TestKmainBringsUpTheSystem(t *testing.T) {
	m := newTestMachine(t)

	sys := Kmain(m)
	if sys == nil {
		t.Fatal("expected Kmain to return the assembled system")
	}

	if m.CPU.Halted() {
		t.Fatal("expected the machine to be running after init")
	}

	if !m.CPU.InterruptsEnabled() {
		t.Error("expected interrupts to be enabled after init")
	}

	if m.CPU.IDTR.Base != IDTBase {
		t.Errorf("expected the IDT loaded at 0x%x; got 0x%x", IDTBase, m.CPU.IDTR.Base)
	}

	// 16MiB of memory minus the reserved kernel region.
	if exp, got := uint32(3584), sys.Alloc.FreePages(); got != exp {
		t.Errorf("expected %d free pages; got %d", exp, got)
	}

	addr, err := sys.Alloc.AllocPage()
	if err != nil {
		t.Fatal(err)
	}
	if addr != KernelEnd {
		t.Errorf("expected the first allocated page right after the kernel image at 0x%x; got 0x%x", uintptr(KernelEnd), addr)
	}
}

func TestKeyboardEndToEnd(t *testing.T) {
	m := newTestMachine(t)
	sys := Kmain(m)

	m.PressKey(0x10) // 'q'
	if !m.Step() {
		t.Fatal("expected the machine to keep running")
	}

	if ch, ok := sys.Keyboard.ReadKey(); !ok || ch != 'q' {
		t.Fatalf("expected the keyboard driver to decode 'q'; got %q (ok=%t)", ch, ok)
	}

	// The line was acknowledged, so a second keystroke delivers too.
	m.PressKey(0x11) // 'w'
	m.Step()

	if ch, ok := sys.Keyboard.ReadKey(); !ok || ch != 'w' {
		t.Fatalf("expected a second keystroke after EOI; got %q (ok=%t)", ch, ok)
	}

	if !m.CPU.InterruptsEnabled() {
		t.Error("expected the interrupt-enable flag restored after delivery")
	}
}

func TestBootHandoffIntoKmain(t *testing.T) {
	m := newTestMachine(t)

	var sys *System
	err := rt0.Boot(m.CPU, BootLayout(), func(*cpu.CPU) {
		sys = Kmain(m)
	})
	if err != nil {
		t.Fatal(err)
	}

	if sys == nil {
		t.Fatal("expected the entry point to assemble the system")
	}

	// The entry closure returned, so the handoff halted the machine.
	if !m.CPU.Halted() {
		t.Error("expected the machine to halt once the entry point returns")
	}
}
