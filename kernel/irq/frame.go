package irq

import (
	"io"

	"github.com/sureSundar/STEPPPS-sub015/kernel/cpu"
	"github.com/sureSundar/STEPPPS-sub015/kernel/kfmt"
)

// Registers is the typed view of a trampoline stack frame: everything the
// stub saved (segment and general-purpose registers plus the normalized
// {vector, error code} pair) followed by the frame the CPU itself pushed.
// The frame is exclusively owned by the single in-flight interrupt; if the
// handler returns, any modifications are propagated back to the location
// where the interrupt occurred.
type Registers struct {
	GS, FS, ES, DS uint32

	// General-purpose registers in the order PUSHA leaves them. ESP
	// holds the pre-save stack pointer and is discarded on restore.
	EDI, ESI, EBP, ESP uint32
	EBX, EDX, ECX, EAX uint32

	// Vector and the (possibly synthesized) error code.
	Vector  uint32
	ErrCode uint32

	// The return frame pushed by the CPU and consumed by IRET.
	EIP, CS, EFlags uint32
}

// frameWords is the size of the encoded frame in 32-bit stack slots.
const frameWords = 17

// decodeFrame builds the typed view of the raw trampoline frame that
// starts at stack address sp.
func decodeFrame(c *cpu.CPU, sp uint32) *Registers {
	var r Registers
	for i, field := range frameFields(&r) {
		*field = c.Read32(sp + uint32(i)*4)
	}
	return &r
}

// encodeTo writes the typed frame back over the raw frame at stack
// address sp so that handler modifications take effect on return.
func (r *Registers) encodeTo(c *cpu.CPU, sp uint32) {
	for i, field := range frameFields(r) {
		c.Write32(sp+uint32(i)*4, *field)
	}
}

// frameFields lists the frame fields in ascending stack-address order.
// This single table is what keeps the decode and encode sides of the
// boundary from ever disagreeing on layout.
func frameFields(r *Registers) [frameWords]*uint32 {
	return [frameWords]*uint32{
		&r.GS, &r.FS, &r.ES, &r.DS,
		&r.EDI, &r.ESI, &r.EBP, &r.ESP,
		&r.EBX, &r.EDX, &r.ECX, &r.EAX,
		&r.Vector, &r.ErrCode,
		&r.EIP, &r.CS, &r.EFlags,
	}
}

// DumpTo outputs the register contents to w.
func (r *Registers) DumpTo(w io.Writer) {
	kfmt.Fprintf(w, "EAX = %8x EBX = %8x\n", r.EAX, r.EBX)
	kfmt.Fprintf(w, "ECX = %8x EDX = %8x\n", r.ECX, r.EDX)
	kfmt.Fprintf(w, "ESI = %8x EDI = %8x\n", r.ESI, r.EDI)
	kfmt.Fprintf(w, "EBP = %8x ESP = %8x\n", r.EBP, r.ESP)
	kfmt.Fprintf(w, "EIP = %8x CS  = %8x\n", r.EIP, r.CS)
	kfmt.Fprintf(w, "FLG = %8x\n", r.EFlags)
}
