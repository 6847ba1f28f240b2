package intvec

import (
	"github.com/nanokern/intcore/log"
)

// IRQAssignment is what a board allocator hands back for a connected
// IRQ: the allocated vector plus the begin/end-of-interrupt callouts
// the synthesized stub must invoke around the handler. Vector is
// VectorNone when no vector satisfies the requested priority. A zero
// routine address means the callout is absent.
type IRQAssignment struct {
	Vector int

	BOIRoutine           uint32
	BOIParameter         uint32
	BOIParameterRequired bool

	EOIRoutine           uint32
	EOIParameter         uint32
	EOIParameterRequired bool
}

// BoardAllocator is the board-level interrupt controller interface. An
// implementation allocates a vector satisfying the requested priority,
// programs the underlying interrupt controller so irq raises that
// vector, and reports the callout information stub synthesis needs.
// The irq is virtualized: the board presents IRQs 0 to N across all its
// controller devices.
type BoardAllocator interface {
	AllocateForIRQ(irq int, priority int) IRQAssignment
}

// CalloutConfig programs the per-IRQ begin/end-of-interrupt callouts of
// a board's interrupt controller.
type CalloutConfig struct {
	BOIRoutine           uint32
	BOIParameter         uint32
	BOIParameterRequired bool

	EOIRoutine           uint32
	EOIParameter         uint32
	EOIParameterRequired bool
}

// ReferenceBoard models a board whose interrupt controller can program
// the vector on a per-IRQ basis, the way a local APIC manages requests
// per vector. It allocates from a VectorSet and reports whatever
// callouts were programmed for the IRQ.
type ReferenceBoard struct {
	vectors  *VectorSet
	callouts map[int]CalloutConfig
}

// NewReferenceBoard returns a board allocating from vs with no callouts
// programmed.
func NewReferenceBoard(vs *VectorSet) *ReferenceBoard {
	return &ReferenceBoard{
		vectors:  vs,
		callouts: make(map[int]CalloutConfig),
	}
}

// ProgramIRQ records the callouts the controller needs around handlers
// connected to irq.
func (b *ReferenceBoard) ProgramIRQ(irq int, cfg CalloutConfig) {
	b.callouts[irq] = cfg
}

// AllocateForIRQ allocates a vector for irq at the requested priority
// and returns it together with the programmed callouts. On exhaustion
// or an invalid priority the assignment carries the VectorNone
// sentinel (debug configurations).
func (b *ReferenceBoard) AllocateForIRQ(irq int, priority int) IRQAssignment {
	vector, err := b.vectors.Allocate(priority)
	if err != nil {
		log.Error(log.BoardMonitoring, "vector allocation failed", "irq", irq, "priority", priority, "err", err)
		return IRQAssignment{Vector: VectorNone}
	}

	asn := IRQAssignment{Vector: vector}
	if cfg, ok := b.callouts[irq]; ok {
		asn.BOIRoutine = cfg.BOIRoutine
		asn.BOIParameter = cfg.BOIParameter
		asn.BOIParameterRequired = cfg.BOIParameterRequired
		asn.EOIRoutine = cfg.EOIRoutine
		asn.EOIParameter = cfg.EOIParameter
		asn.EOIParameterRequired = cfg.EOIParameterRequired
	}
	return asn
}

// InstallSpurious installs handler on every vector still free in the
// board's vector set, so unpopulated table entries dispatch somewhere
// harmless instead of through stale memory.
func (b *ReferenceBoard) InstallSpurious(idt *IDT, handler uint32) {
	for v := 0; v < b.vectors.NumVectors(); v++ {
		if b.vectors.IsFree(v) {
			idt.Install(v, handler, 0)
		}
	}
}
