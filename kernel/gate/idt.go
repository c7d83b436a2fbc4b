package gate

import (
	"github.com/sureSundar/STEPPPS-sub015/kernel"
	"github.com/sureSundar/STEPPPS-sub015/kernel/cpu"
	"github.com/sureSundar/STEPPPS-sub015/kernel/mem"
)

var errTableOverflow = &kernel.Error{Module: "gate", Message: "IDT does not fit in its reserved region"}

// Table is a 256-entry IDT under construction at a fixed location in
// physical memory. Slots that are never installed stay all-zero on
// purpose: transferring through one faults instead of silently running
// whatever the memory happened to contain.
type Table struct {
	c    *cpu.CPU
	base uint32
}

// NewTable zero-fills all 256 slots at base and returns the table ready
// for gate installation. The region [base, base+256*8) must lie inside
// physical memory.
func NewTable(c *cpu.CPU, base uint32) (*Table, *kernel.Error) {
	size := uint32(Entries * descriptorBytes)
	if uint64(base)+uint64(size) > uint64(len(c.Mem)) {
		return nil, errTableOverflow
	}

	mem.Memset(c.Mem[base:base+size], 0)

	return &Table{c: c, base: base}, nil
}

// Install writes the gate descriptor for the given vector.
func (t *Table) Install(vector uint8, handler uint32, selector uint16, attr uint8) {
	NewDescriptor(handler, selector, attr).writeTo(t.c, t.slotAddr(vector))
}

// Gate reads back the descriptor currently stored for the given vector.
func (t *Table) Gate(vector uint8) Descriptor {
	return readDescriptor(t.c, t.slotAddr(vector))
}

// Load points the CPU's interrupt-table register at this table. The limit
// is the table size minus one, as the architecture demands.
func (t *Table) Load() {
	t.c.LoadIDT(t.base, uint16(Entries*descriptorBytes-1))
}

func (t *Table) slotAddr(vector uint8) uint32 {
	return t.base + uint32(vector)*descriptorBytes
}
