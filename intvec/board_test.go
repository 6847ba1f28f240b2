package intvec

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBoardAllocatesAndReportsCallouts(t *testing.T) {
	vs := NewVectorSet(DefaultNumVectors, true)
	board := NewReferenceBoard(vs)
	board.ProgramIRQ(7, CalloutConfig{
		BOIRoutine:           testBOI,
		BOIParameter:         testBOIParm,
		BOIParameterRequired: true,
		EOIRoutine:           testEOI,
	})

	asn := board.AllocateForIRQ(7, 6)
	require.Equal(t, 96, asn.Vector)
	require.Equal(t, testBOI, asn.BOIRoutine)
	require.Equal(t, testBOIParm, asn.BOIParameter)
	require.True(t, asn.BOIParameterRequired)
	require.Equal(t, testEOI, asn.EOIRoutine)
	require.False(t, asn.EOIParameterRequired)

	// an unprogrammed IRQ carries no callouts
	asn = board.AllocateForIRQ(3, 6)
	require.Equal(t, 97, asn.Vector)
	require.Zero(t, asn.BOIRoutine)
	require.Zero(t, asn.EOIRoutine)
}

func TestBoardExhaustionSentinel(t *testing.T) {
	vs := NewVectorSet(DefaultNumVectors, true)
	board := NewReferenceBoard(vs)

	for i := 0; i < VectorsPerPriority; i++ {
		asn := board.AllocateForIRQ(0, 2)
		require.NotEqual(t, VectorNone, asn.Vector)
	}
	asn := board.AllocateForIRQ(0, 2)
	require.Equal(t, VectorNone, asn.Vector)
}

func TestInstallSpurious(t *testing.T) {
	const spurious = uint32(0x00105000)

	vs := NewVectorSet(64, true)
	vs.ReserveArchRange()
	board := NewReferenceBoard(vs)
	idt := NewIDT(IDTConfig{NumVectors: 64}, nil)

	v, err := vs.Allocate(2)
	require.NoError(t, err)
	require.Equal(t, 32, v)

	board.InstallSpurious(idt, spurious)

	// reserved and allocated vectors keep their entries untouched
	require.Equal(t, make([]byte, IdtEntrySize), idt.Entry(0))
	require.Equal(t, make([]byte, IdtEntrySize), idt.Entry(32))

	// free vectors dispatch to the spurious handler
	for _, free := range []int{33, 40, 63} {
		entry := idt.Entry(free)
		require.Equal(t, byte(0x8E), entry[5], "vector %d", free)
		offset := uint32(entry[0]) | uint32(entry[1])<<8 |
			uint32(entry[6])<<16 | uint32(entry[7])<<24
		require.Equal(t, spurious, offset, "vector %d", free)
	}
}
