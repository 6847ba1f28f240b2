package intvec

import (
	"encoding/binary"

	"github.com/nanokern/intcore/log"
)

// IdtEntrySize is the width of one interrupt descriptor table slot.
const IdtEntrySize = 8

// GateEncoder writes the architecture-defined bit pattern of an
// interrupt-gate descriptor into an 8-byte slot: the routine address
// split across the offset fields, the privilege level, and the gate
// type. The core selects the slot; the encoder owns the layout.
type GateEncoder func(slot []byte, routine uint32, dpl int)

// IDTConfig carries the descriptor table layout fixed by the boot/link
// environment.
type IDTConfig struct {
	// BaseAddress is where the table resides; it is supplied by the
	// linker script of the target image, not discovered at runtime.
	BaseAddress uint32

	// NumVectors is the table length in entries.
	NumVectors int
}

// IDT is the interrupt descriptor table. The table memory is injected
// at construction so the installer can run against a fake table.
type IDT struct {
	cfg    IDTConfig
	table  []byte
	encode GateEncoder
}

// NewIDT returns a descriptor table of cfg.NumVectors entries backed by
// fresh memory. A nil encoder selects the reference IA-32
// interrupt-gate encoder.
func NewIDT(cfg IDTConfig, encode GateEncoder) *IDT {
	if cfg.NumVectors == 0 {
		cfg.NumVectors = DefaultNumVectors
	}
	if encode == nil {
		encode = EncodeInterruptGate
	}
	return &IDT{
		cfg:    cfg,
		table:  make([]byte, cfg.NumVectors*IdtEntrySize),
		encode: encode,
	}
}

// Install connects routine to vector: it fills in the descriptor table
// entry for vector so that routine is invoked when the vector is
// asserted, with the interrupt gate set to privilege level dpl.
// Hardware interrupts and exceptions should use level 0, handlers for
// user-mode software interrupts level 3.
//
// The vector must be below the configured table length; no validation
// is performed in this primitive. No instruction/data cache
// synchronization is required on IA-32.
func (t *IDT) Install(vector int, routine uint32, dpl int) {
	slot := t.table[vector*IdtEntrySize : (vector+1)*IdtEntrySize]
	t.encode(slot, routine, dpl)
	log.Trace(log.IdtMonitoring, "descriptor installed", "vector", vector, "routine", routine, "dpl", dpl)
}

// Entry returns the raw descriptor bytes for vector.
func (t *IDT) Entry(vector int) []byte {
	return t.table[vector*IdtEntrySize : (vector+1)*IdtEntrySize]
}

// SlotAddress returns the target-side address of the slot for vector.
func (t *IDT) SlotAddress(vector int) uint32 {
	return t.cfg.BaseAddress + uint32(vector)*IdtEntrySize
}

// BaseAddress returns the table base fixed by the boot environment.
func (t *IDT) BaseAddress() uint32 {
	return t.cfg.BaseAddress
}

// NumVectors returns the table length in entries.
func (t *IDT) NumVectors() int {
	return t.cfg.NumVectors
}

// EncodeInterruptGate is the reference encoder for a 32-bit IA-32
// interrupt gate: offset 15:0, code segment selector, a zero byte,
// P/DPL/type, offset 31:16.
func EncodeInterruptGate(slot []byte, routine uint32, dpl int) {
	binary.LittleEndian.PutUint16(slot[0:], uint16(routine))
	binary.LittleEndian.PutUint16(slot[2:], KernelCodeSelector)
	slot[4] = 0
	slot[5] = byte(GatePresent | (dpl&3)<<5 | GateTypeInterrupt)
	binary.LittleEndian.PutUint16(slot[6:], uint16(routine>>16))
}
