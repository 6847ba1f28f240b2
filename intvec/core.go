package intvec

import (
	"github.com/nanokern/intcore/kernerrors"
	"github.com/nanokern/intcore/log"
)

// Connector synthesizes interrupt stubs and installs them into the
// descriptor table. It performs no locking of its own beyond what the
// allocator and installer already provide.
type Connector struct {
	board BoardAllocator
	idt   *IDT

	// addresses of the fixed context save/restore trampolines every
	// stub brackets the handler with
	enter uint32
	exit  uint32

	debug bool
}

// NewConnector returns a connector emitting stubs that call enter on
// the way in and jump to exit on the way out.
func NewConnector(board BoardAllocator, idt *IDT, enter, exit uint32, debug bool) *Connector {
	return &Connector{
		board: board,
		idt:   idt,
		enter: enter,
		exit:  exit,
		debug: debug,
	}
}

// Connect connects a C-callable handler to the virtualized irq at the
// requested priority. The board allocates a vector and programs its
// controller; Connect then synthesizes the dispatch stub into stub and
// installs the stub address into the vector at privilege level 0.
//
// The synthesized sequence is, in order: a call to the interrupt-enter
// trampoline, the optional begin-of-interrupt callout (with its
// parameter pushed first when required), the handler with its parameter
// pushed, the optional end-of-interrupt callout, a stack cleanup
// dropping every pushed parameter, and a jump (not a call) to the
// interrupt-exit trampoline, which itself returns to the interrupted
// context.
//
// In debug mode a failed allocation propagates as VectorNone with
// ErrVNoVectorAvailable. Without debug the sentinel is not checked,
// matching the release configuration of the target environment.
func (c *Connector) Connect(irq int, priority int, routine uint32, parameter uint32, stub *Stub) (int, error) {
	asn := c.board.AllocateForIRQ(irq, priority)

	if c.debug && asn.Vector == VectorNone {
		return VectorNone, kernerrors.ErrVNoVectorAvailable
	}

	// the stub always pushes the handler parameter
	numParameters := 1

	stub.AppendCall(c.enter)

	if asn.BOIRoutine != 0 {
		if asn.BOIParameterRequired {
			stub.AppendPush(asn.BOIParameter)
			stub.AppendCall(asn.BOIRoutine)
			numParameters++
		} else {
			stub.AppendCall(asn.BOIRoutine)
		}
	}

	stub.AppendPush(parameter)
	stub.AppendCall(routine)

	if asn.EOIRoutine != 0 {
		if asn.EOIParameterRequired {
			stub.AppendPush(asn.EOIParameter)
			stub.AppendCall(asn.EOIRoutine)
			numParameters++
		} else {
			stub.AppendCall(asn.EOIRoutine)
		}
	}

	stub.AppendStackPop(numParameters)
	stub.AppendJump(c.exit)

	// Only now that the stub is complete does the vector start
	// dispatching through it.
	c.idt.Install(asn.Vector, stub.Addr(), 0)

	log.Debug(log.StubMonitoring, "interrupt stub installed",
		"irq", irq, "priority", priority, "vector", asn.Vector,
		"stub", stub.Addr(), "size", stub.Len(), "params", numParameters)

	return asn.Vector, nil
}

// CoreConfig carries everything the interrupt management core needs
// from the boot environment.
type CoreConfig struct {
	// NumVectors is the descriptor table length; zero selects
	// DefaultNumVectors.
	NumVectors int

	// Debug enables the allocation validity checks that release
	// images of the target compile out.
	Debug bool

	// IDTBase is the linker-provided descriptor table base address.
	IDTBase uint32

	// EnterRoutine and ExitRoutine are the addresses of the fixed
	// context save/restore trampolines.
	EnterRoutine uint32
	ExitRoutine  uint32

	// Encoder packs descriptor entries; nil selects the reference
	// IA-32 interrupt-gate encoder.
	Encoder GateEncoder
}

// Core bundles the vector allocator, the descriptor table and the stub
// connector into the public interrupt management surface. It must be
// fully constructed before any interrupt can fire.
type Core struct {
	Vectors *VectorSet
	Table   *IDT
	Board   *ReferenceBoard

	conn *Connector
}

// NewCore builds a core with a ReferenceBoard allocating from its own
// vector set. The architecture-reserved range [0,32) is marked
// allocated up front.
func NewCore(cfg CoreConfig) *Core {
	if cfg.NumVectors == 0 {
		cfg.NumVectors = DefaultNumVectors
	}
	vs := NewVectorSet(cfg.NumVectors, cfg.Debug)
	vs.ReserveArchRange()
	idt := NewIDT(IDTConfig{BaseAddress: cfg.IDTBase, NumVectors: cfg.NumVectors}, cfg.Encoder)
	board := NewReferenceBoard(vs)
	return &Core{
		Vectors: vs,
		Table:   idt,
		Board:   board,
		conn:    NewConnector(board, idt, cfg.EnterRoutine, cfg.ExitRoutine, cfg.Debug),
	}
}

// SetBoard replaces the board allocator used by ConnectInterrupt, for
// boards whose controller cannot be modeled by ReferenceBoard.
func (c *Core) SetBoard(board BoardAllocator) {
	c.conn.board = board
}

// ConnectInterrupt connects routine to the virtualized irq at the
// requested priority, synthesizing the dispatch stub into stub. It
// returns the allocated vector, or VectorNone with an error in debug
// mode when no vector satisfies the request.
func (c *Core) ConnectInterrupt(irq int, priority int, routine uint32, parameter uint32, stub *Stub) (int, error) {
	return c.conn.Connect(irq, priority, routine, parameter, stub)
}

// InstallDescriptor fills in the descriptor table entry for vector so
// routine is invoked at privilege level dpl when the vector is
// asserted.
func (c *Core) InstallDescriptor(vector int, routine uint32, dpl int) {
	c.Table.Install(vector, routine, dpl)
}

// AllocateVector allocates a free vector satisfying priority.
func (c *Core) AllocateVector(priority int) (int, error) {
	return c.Vectors.Allocate(priority)
}

// ReserveVector marks vector allocated so AllocateVector never returns
// it.
func (c *Core) ReserveVector(vector int) {
	c.Vectors.MarkAllocated(vector)
}

// ReleaseVector marks vector free again.
func (c *Core) ReleaseVector(vector int) {
	c.Vectors.MarkFree(vector)
}
