package intvec

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/arch/x86/x86asm"
)

func newTestCore() *Core {
	return NewCore(CoreConfig{
		Debug:        true,
		IDTBase:      0x00103000,
		EnterRoutine: testEnter,
		ExitRoutine:  testExit,
	})
}

func TestCoreReservesArchRange(t *testing.T) {
	core := newTestCore()
	for v := 0; v < NumReservedVectors; v++ {
		require.False(t, core.Vectors.IsFree(v), "vector %d", v)
	}
	require.True(t, core.Vectors.IsFree(NumReservedVectors))
}

func TestCoreVectorEntryPoints(t *testing.T) {
	core := newTestCore()

	v, err := core.AllocateVector(2)
	require.NoError(t, err)
	require.Equal(t, 32, v)

	core.ReserveVector(33)
	v, err = core.AllocateVector(2)
	require.NoError(t, err)
	require.Equal(t, 34, v)

	core.ReleaseVector(33)
	v, err = core.AllocateVector(2)
	require.NoError(t, err)
	require.Equal(t, 33, v)
}

func TestCoreInstallDescriptor(t *testing.T) {
	core := newTestCore()
	core.InstallDescriptor(0x80, 0x00404000, 3)

	entry := core.Table.Entry(0x80)
	require.Equal(t, byte(0xEE), entry[5]) // user-mode software interrupt gate
}

func TestCoreConnectInterruptEndToEnd(t *testing.T) {
	core := newTestCore()
	core.Board.ProgramIRQ(4, CalloutConfig{
		EOIRoutine: testEOI,
	})

	stub := NewStub(0x00300000)
	vector, err := core.ConnectInterrupt(4, 6, testHandler, testParam, stub)
	require.NoError(t, err)
	require.Equal(t, 96, vector)

	// enter, push+call handler, call EOI, pop one parameter, exit
	require.Equal(t,
		[]x86asm.Op{x86asm.CALL, x86asm.PUSH, x86asm.CALL, x86asm.CALL, x86asm.ADD, x86asm.JMP},
		ops(t, stub))
	require.Equal(t, byte(4), stub.Bytes()[stub.Len()-X86_LEN_JMP_REL32-1])

	// the descriptor for the vector points at the stub with DPL 0
	entry := core.Table.Entry(vector)
	require.Equal(t, byte(0x8E), entry[5])
	offset := uint32(entry[0]) | uint32(entry[1])<<8 |
		uint32(entry[6])<<16 | uint32(entry[7])<<24
	require.Equal(t, stub.Addr(), offset)

	// the vector is gone from the allocator
	require.False(t, core.Vectors.IsFree(vector))
}

func TestCoreConnectExhaustion(t *testing.T) {
	core := newTestCore()

	for i := 0; i < VectorsPerPriority; i++ {
		stub := NewStub(uint32(0x00300000 + i*StubSize))
		_, err := core.ConnectInterrupt(i, 8, testHandler, testParam, stub)
		require.NoError(t, err)
	}

	stub := NewStub(0x00310000)
	v, err := core.ConnectInterrupt(99, 8, testHandler, testParam, stub)
	require.Error(t, err)
	require.Equal(t, VectorNone, v)
}
