package intvec

// StubSize is the worst-case interrupt stub: call enter, push+call for
// the begin-of-interrupt callout, push+call for the handler, push+call
// for the end-of-interrupt callout, the stack cleanup, and the jump to
// the exit routine.
const StubSize = X86_LEN_CALL_REL32 + // call interrupt-enter
	X86_LEN_PUSH_IMM32 + X86_LEN_CALL_REL32 + // push+call BOI
	X86_LEN_PUSH_IMM32 + X86_LEN_CALL_REL32 + // push+call handler
	X86_LEN_PUSH_IMM32 + X86_LEN_CALL_REL32 + // push+call EOI
	X86_LEN_ADD_ESP_IMM8 + // pop parameters
	X86_LEN_JMP_REL32 // jmp interrupt-exit

// Stub is the caller-owned memory an interrupt stub is synthesized
// into. It must be persistent: the descriptor table entry for the
// allocated vector points straight at it, so it cannot live on a
// transient stack. Base is the target-side address the stub executes
// at; every relative displacement is computed against it.
//
// A single stub must not be connected concurrently from two contexts;
// distinct stubs are independent.
type Stub struct {
	Base uint32
	code [StubSize]byte
	n    int
}

// NewStub returns an empty stub that will execute at base.
func NewStub(base uint32) *Stub {
	return &Stub{Base: base}
}

// Reset discards any synthesized code and rebases the stub.
func (s *Stub) Reset(base uint32) {
	s.Base = base
	s.n = 0
}

// Len returns the number of synthesized bytes.
func (s *Stub) Len() int {
	return s.n
}

// Bytes returns the synthesized machine code.
func (s *Stub) Bytes() []byte {
	return s.code[:s.n]
}

// Addr returns the execution address of the stub.
func (s *Stub) Addr() uint32 {
	return s.Base
}

// putU32 writes v little-endian one byte at a time; the destination
// offset may have any alignment.
func (s *Stub) putU32(off int, v uint32) {
	s.code[off] = byte(v)
	s.code[off+1] = byte(v >> 8)
	s.code[off+2] = byte(v >> 16)
	s.code[off+3] = byte(v >> 24)
}

// AppendCall emits CALL rel32 to target. The displacement is relative
// to the end of the instruction; the uint32 arithmetic wraps for
// backward targets.
func (s *Stub) AppendCall(target uint32) {
	s.code[s.n] = X86_OP_CALL_REL32
	s.putU32(s.n+1, target-(s.Base+uint32(s.n)+X86_LEN_CALL_REL32))
	s.n += X86_LEN_CALL_REL32
}

// AppendPush emits PUSH imm32 with the absolute operand imm.
func (s *Stub) AppendPush(imm uint32) {
	s.code[s.n] = X86_OP_PUSH_IMM32
	s.putU32(s.n+1, imm)
	s.n += X86_LEN_PUSH_IMM32
}

// AppendJump emits JMP rel32 to target.
func (s *Stub) AppendJump(target uint32) {
	s.code[s.n] = X86_OP_JMP_REL32
	s.putU32(s.n+1, target-(s.Base+uint32(s.n)+X86_LEN_JMP_REL32))
	s.n += X86_LEN_JMP_REL32
}

// AppendStackPop emits ADD ESP, 4*numParameters to drop the parameters
// pushed ahead of the calls.
func (s *Stub) AppendStackPop(numParameters int) {
	s.code[s.n] = X86_OP_ADD_ESP_IMM8 & 0xFF
	s.code[s.n+1] = X86_OP_ADD_ESP_IMM8 >> 8
	s.code[s.n+2] = byte(4 * numParameters)
	s.n += X86_LEN_ADD_ESP_IMM8
}
