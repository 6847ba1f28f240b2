package intvec

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDisassembleStub(t *testing.T) {
	board := fixedBoard{asn: IRQAssignment{Vector: 64}}
	idt := NewIDT(IDTConfig{NumVectors: 256}, nil)
	conn := NewConnector(board, idt, testEnter, testExit, true)

	stub := NewStub(0x00300000)
	_, err := conn.Connect(0, 4, testHandler, testParam, stub)
	require.NoError(t, err)

	out := Disassemble(stub.Bytes(), stub.Addr())
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 5)
	require.Contains(t, lines[0], "CALL")
	require.Contains(t, lines[1], "PUSH")
	require.Contains(t, lines[3], "ADD")
	require.Contains(t, lines[4], "JMP")
	require.True(t, strings.HasPrefix(lines[0], "0x00300000:"))
}

func TestDisassembleUndecodableByte(t *testing.T) {
	out := Disassemble([]byte{0x0F, 0x0B, 0xFF}, 0)
	require.Contains(t, out, "UD2")
	require.Contains(t, out, "db 0xff")
}
