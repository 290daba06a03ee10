package stm

import (
	"sync/atomic"
	"unsafe"
)

// wordLog2 is log2(sizeof(word)) on the 64-bit targets this runtime is
// built for; it is the base component of the address-to-lock shift.
const wordLog2 = 3

// lockTable is a flat array of 2^K lock words. Adjacent words collide
// onto the same lock (a "stripe"), deliberately trading false
// conflicts for table compactness and cache locality.
type lockTable struct {
	slots []atomic.Uint64
	mask  uint64
	shift uint
}

func newLockTable(logSize, shiftExtra int) *lockTable {
	size := 1 << uint(logSize)
	return &lockTable{
		slots: make([]atomic.Uint64, size),
		mask:  uint64(size - 1),
		shift: uint(wordLog2 + shiftExtra),
	}
}

func (lt *lockTable) indexFor(addr *Var) uint64 {
	return (uint64(uintptr(unsafe.Pointer(addr))) >> lt.shift) & lt.mask
}

// lockFor returns the lock word covering addr. Multiple *Var handles
// may alias the same lock word (see findAliasingPair in the test suite, which
// exercises this deliberately for scenario S5).
func (lt *lockTable) lockFor(addr *Var) *atomic.Uint64 {
	return &lt.slots[lt.indexFor(addr)]
}

// resetVersions zeroes every lock word's version field. Only safe to
// call during a quiescence barrier, when no transaction is active.
func (lt *lockTable) resetVersions() {
	for i := range lt.slots {
		lt.slots[i].Store(0)
	}
}
