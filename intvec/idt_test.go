package intvec

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInstallSelectsSlot(t *testing.T) {
	var gotRoutine uint32
	var gotDPL int
	encoder := func(slot []byte, routine uint32, dpl int) {
		slot[0] = 0xAA
		gotRoutine = routine
		gotDPL = dpl
	}

	idt := NewIDT(IDTConfig{BaseAddress: 0x1000, NumVectors: 256}, encoder)
	idt.Install(40, 0x00401234, 3)

	require.Equal(t, uint32(0x00401234), gotRoutine)
	require.Equal(t, 3, gotDPL)
	require.Equal(t, byte(0xAA), idt.Entry(40)[0])

	// neighbouring slots are untouched
	require.Equal(t, make([]byte, IdtEntrySize), idt.Entry(39))
	require.Equal(t, make([]byte, IdtEntrySize), idt.Entry(41))
}

func TestSlotAddress(t *testing.T) {
	idt := NewIDT(IDTConfig{BaseAddress: 0x00103000, NumVectors: 256}, nil)
	require.Equal(t, uint32(0x00103000), idt.SlotAddress(0))
	require.Equal(t, uint32(0x00103000+40*8), idt.SlotAddress(40))
	require.Equal(t, uint32(0x00103000), idt.BaseAddress())
	require.Equal(t, 256, idt.NumVectors())
}

func TestInterruptGateEncoding(t *testing.T) {
	slot := make([]byte, IdtEntrySize)
	EncodeInterruptGate(slot, 0xDEAD1234, 0)

	require.Equal(t, uint16(0x1234), binary.LittleEndian.Uint16(slot[0:]))
	require.Equal(t, uint16(KernelCodeSelector), binary.LittleEndian.Uint16(slot[2:]))
	require.Equal(t, byte(0), slot[4])
	require.Equal(t, byte(0x8E), slot[5]) // present, DPL 0, interrupt gate
	require.Equal(t, uint16(0xDEAD), binary.LittleEndian.Uint16(slot[6:]))

	EncodeInterruptGate(slot, 0xDEAD1234, 3)
	require.Equal(t, byte(0xEE), slot[5]) // present, DPL 3, interrupt gate
}

func TestNewIDTDefaults(t *testing.T) {
	idt := NewIDT(IDTConfig{}, nil)
	require.Equal(t, DefaultNumVectors, idt.NumVectors())

	// the reference encoder is selected when none is given
	idt.Install(50, 0x00400000, 0)
	require.Equal(t, byte(0x8E), idt.Entry(50)[5])
}
