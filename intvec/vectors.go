package intvec

import (
	"math/bits"

	"github.com/nanokern/intcore/kernerrors"
	"github.com/nanokern/intcore/log"
)

const (
	// DefaultNumVectors is the IA-32 interrupt descriptor table size.
	DefaultNumVectors = 256

	// NumReservedVectors counts the vectors reserved by the
	// architecture for exceptions; they are never handed out by the
	// allocator once reserved.
	NumReservedVectors = 32

	// VectorsPerPriority is the width of one priority level. A 32-bit
	// bitmap word covers two adjacent priority levels: the even
	// priority occupies the low half, the odd priority the high half.
	VectorsPerPriority = 16

	// VectorNone is the allocation-failed sentinel returned by debug
	// configurations.
	VectorNone = -1
)

// VectorSet tracks which interrupt vectors are available for
// allocation. One bit per vector, 1 = free, 0 = allocated; the bitmap
// starts fully free and callers are expected to reserve the
// architecture range before the first allocation. The set lives for
// the process lifetime; every mutation runs inside an interrupt-masking
// critical section limited to a single read-modify-write.
type VectorSet struct {
	lock       IRQLock
	allocated  []uint32
	numVectors int
	debug      bool
}

// NewVectorSet returns a fully free vector set covering numVectors
// vectors rounded up to a whole number of bitmap words. With debug set,
// Allocate validates the requested priority and detects exhausted
// priority levels; without it those checks are skipped entirely,
// matching the release configuration of the target environment.
func NewVectorSet(numVectors int, debug bool) *VectorSet {
	words := ((numVectors + 31) &^ 31) / 32
	allocated := make([]uint32, words)
	for i := range allocated {
		allocated[i] = 0xffffffff
	}
	return &VectorSet{
		allocated:  allocated,
		numVectors: numVectors,
		debug:      debug,
	}
}

// findFirstSet returns the 1-based position of the least significant
// set bit, or 0 when no bit is set.
func findFirstSet(x uint32) int {
	if x == 0 {
		return 0
	}
	return bits.TrailingZeros32(x) + 1
}

// findLastSet returns the 1-based position of the most significant set
// bit, or 0 when no bit is set.
func findLastSet(x uint32) int {
	return 32 - bits.LeadingZeros32(x)
}

// Allocate scans for a free vector satisfying priority and marks it
// allocated. Priorities map to vector ranges of 16; within one level a
// higher vector number is a higher priority, so even priorities scan
// their half-word from the least significant end and odd priorities
// from the most significant end.
//
// In debug mode a priority whose range lies past the configured table
// size fails with ErrVPriorityOutOfRange and an exhausted level fails
// with ErrVNoVectorAvailable, both returning VectorNone. Without debug
// both checks are skipped and scanning an exhausted level yields an
// undefined vector; this weak contract is inherited from the target
// environment and deliberately not strengthened here.
func (vs *VectorSet) Allocate(priority int) (int, error) {
	if vs.debug {
		if (priority<<4)+15 > vs.numVectors {
			return VectorNone, kernerrors.ErrVPriorityOutOfRange
		}
	}

	// entry covers the vectors of a pair of priority levels
	entry := priority >> 1

	key := vs.lock.Lock()

	var fsb int
	if priority%2 == 0 {
		fsb = findFirstSet(vs.allocated[entry])
		if vs.debug && (fsb == 0 || fsb > 16) {
			// no free bit in the lower 16, the level is exhausted
			vs.lock.Unlock(key)
			return VectorNone, kernerrors.ErrVNoVectorAvailable
		}
	} else {
		fsb = findLastSet(vs.allocated[entry])
		if vs.debug && (fsb == 0 || fsb < 17) {
			// no free bit in the upper 16, the level is exhausted
			vs.lock.Unlock(key)
			return VectorNone, kernerrors.ErrVNoVectorAvailable
		}
	}

	// findFirstSet/findLastSet return positions 1 to 32
	fsb--

	// Without debug checks an exhausted level leaves fsb at -1 here;
	// the masked shift and the returned vector are then garbage. See
	// DESIGN.md for why this is preserved rather than fixed.
	vs.allocated[entry] &^= 1 << (uint(fsb) & 31)

	vs.lock.Unlock(key)

	vector := entry<<5 + fsb
	log.Trace(log.VecMonitoring, "vector allocated", "priority", priority, "vector", vector)
	return vector, nil
}

// MarkAllocated reserves a vector that was allocated or assigned by any
// means other than Allocate, so future allocations never return it.
// Idempotent.
func (vs *VectorSet) MarkAllocated(vector int) {
	entry := vector / 32
	bit := uint(vector % 32)

	key := vs.lock.Lock()
	vs.allocated[entry] &^= 1 << bit
	vs.lock.Unlock(key)
}

// MarkFree releases a vector so future allocations can return it.
// Idempotent.
func (vs *VectorSet) MarkFree(vector int) {
	entry := vector / 32
	bit := uint(vector % 32)

	key := vs.lock.Lock()
	vs.allocated[entry] |= 1 << bit
	vs.lock.Unlock(key)
}

// IsFree reports whether vector is currently available for allocation.
func (vs *VectorSet) IsFree(vector int) bool {
	entry := vector / 32
	bit := uint(vector % 32)

	key := vs.lock.Lock()
	free := vs.allocated[entry]&(1<<bit) != 0
	vs.lock.Unlock(key)
	return free
}

// NumVectors returns the configured table size.
func (vs *VectorSet) NumVectors() int {
	return vs.numVectors
}

// ReserveArchRange marks the architecture-reserved vectors [0,32) as
// allocated. It must run before the first Allocate.
func (vs *VectorSet) ReserveArchRange() {
	for v := 0; v < NumReservedVectors; v++ {
		vs.MarkAllocated(v)
	}
}
