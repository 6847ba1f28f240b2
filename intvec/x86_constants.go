// Package intvec manages interrupt vectors for the IA-32 architecture:
// allocation of vectors by priority class, synthesis of per-interrupt
// dispatch stubs, and installation of stubs into the interrupt
// descriptor table.
package intvec

// ================================================================================================
// X86 Instruction Constants
// ================================================================================================

// Primary Opcodes
const (
	X86_OP_PUSH_IMM32 = 0x68 // PUSH imm32
	X86_OP_CALL_REL32 = 0xE8 // CALL rel32
	X86_OP_JMP_REL32  = 0xE9 // JMP rel32

	// ADD ESP, imm8 is a two byte opcode: 0x83 /0 with ModRM 0xC4
	// selecting ESP. Stored low byte first so it can be poked into the
	// stub one byte at a time.
	X86_OP_ADD_ESP_IMM8 = 0xC483
)

// Instruction lengths as emitted into a stub
const (
	X86_LEN_CALL_REL32   = 5 // opcode + rel32
	X86_LEN_PUSH_IMM32   = 5 // opcode + imm32
	X86_LEN_JMP_REL32    = 5 // opcode + rel32
	X86_LEN_ADD_ESP_IMM8 = 3 // two opcode bytes + imm8
)

// Interrupt gate descriptor fields
const (
	KernelCodeSelector = 0x08 // flat kernel code segment
	GateTypeInterrupt  = 0x0E // 32-bit interrupt gate
	GatePresent        = 0x80 // segment present flag
)
