package intvec

import (
	"fmt"
	"strings"

	"golang.org/x/arch/x86/x86asm"
)

// Disassemble decodes code as 32-bit IA-32 instructions and renders one
// line per instruction: address, raw bytes, mnemonic. base is the
// address of code[0] so call/jump targets resolve to their absolute
// values.
func Disassemble(code []byte, base uint32) string {
	var sb strings.Builder
	offset := 0

	for offset < len(code) {
		inst, err := x86asm.Decode(code[offset:], 32)
		length := inst.Len
		if err != nil {
			sb.WriteString(fmt.Sprintf("0x%08x: db 0x%02x\n", base+uint32(offset), code[offset]))
			offset++
			continue
		}

		var hexBytes []string
		for i := 0; i < length; i++ {
			hexBytes = append(hexBytes, fmt.Sprintf("%02x", code[offset+i]))
		}
		sb.WriteString(fmt.Sprintf(
			"0x%08x: %-16s %s\n",
			base+uint32(offset),
			strings.Join(hexBytes, " "),
			inst.String(),
		))

		offset += length
	}

	return sb.String()
}

// DecodeStub decodes every instruction of a synthesized stub. It is a
// convenience for tests and tooling that verify stub structure.
func DecodeStub(s *Stub) ([]x86asm.Inst, error) {
	var insts []x86asm.Inst
	code := s.Bytes()
	offset := 0
	for offset < len(code) {
		inst, err := x86asm.Decode(code[offset:], 32)
		if err != nil {
			return nil, fmt.Errorf("undecodable byte 0x%02x at stub offset %d: %w", code[offset], offset, err)
		}
		insts = append(insts, inst)
		offset += inst.Len
	}
	return insts, nil
}
