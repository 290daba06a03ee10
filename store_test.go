package stm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreFullWordVisibleAfterCommit(t *testing.T) {
	e := newTestEngine()
	x := NewVar(0)

	Atomically(e, Attr{}, func(tx *Txn) {
		tx.Store(x, 99)
	})
	Atomically(e, Attr{}, func(tx *Txn) {
		assert.EqualValues(t, 99, tx.Load(x))
	})
}

func TestStoreMaskedMergesPartialBits(t *testing.T) {
	e := newTestEngine()
	x := NewVar(0xFFFFFFFF00000000)

	Atomically(e, Attr{}, func(tx *Txn) {
		tx.StoreMasked(x, 0x00000000ABCD0000, 0x00000000FFFF0000)
	})
	Atomically(e, Attr{}, func(tx *Txn) {
		got := tx.Load(x)
		assert.EqualValues(t, 0xFFFFFFFFABCD0000, got)
	})
}

func TestStoreSameAddrTwiceMergesIntoOneEntry(t *testing.T) {
	e := newTestEngine()
	x := NewVar(0)

	tx := e.ThreadInit()
	defer e.ThreadExit(tx)
	tx.Begin(Attr{})
	tx.Store(x, 1)
	tx.Store(x, 2)
	require.Equal(t, 1, tx.writeSet.nbEntries, "a second store to the same address must merge, not append")
	assert.True(t, tx.Commit())

	Atomically(e, Attr{}, func(tx *Txn) {
		assert.EqualValues(t, 2, tx.Load(x))
	})
}

func TestStoreMaskZeroReservesWithoutWriting(t *testing.T) {
	e := newTestEngine()
	x := NewVar(7)

	Atomically(e, Attr{}, func(tx *Txn) {
		tx.StoreMasked(x, 0, 0)
	})
	Atomically(e, Attr{}, func(tx *Txn) {
		assert.EqualValues(t, 7, tx.Load(x))
	})
}

func TestStoreSharedBucketAppendsToTail(t *testing.T) {
	e := smallLockTableEngine()
	x, y := findAliasingPair(e)

	tx := e.ThreadInit()
	defer e.ThreadExit(tx)
	tx.Begin(Attr{})
	w1 := tx.storeMasked(x, 1, ^uint64(0))
	w2 := tx.storeMasked(y, 2, ^uint64(0))
	assert.Same(t, w2, w1.next, "second write to a shared lock stripe must chain off the first")
	assert.Nil(t, w2.next)
	assert.Equal(t, 2, tx.writeSet.nbEntries)
	assert.True(t, tx.Commit())

	Atomically(e, Attr{}, func(tx *Txn) {
		assert.EqualValues(t, 1, tx.Load(x))
		assert.EqualValues(t, 2, tx.Load(y))
	})
}

// findAliasingPair returns two distinct Vars that hash to the same lock
// stripe under e's (deliberately tiny) lock table.
func findAliasingPair(e *Engine) (*Var, *Var) {
	vars := make([]*Var, 0, 64)
	for len(vars) < 64 {
		vars = append(vars, NewVar(0))
	}
	for i := 0; i < len(vars); i++ {
		for j := i + 1; j < len(vars); j++ {
			if e.locks.indexFor(vars[i]) == e.locks.indexFor(vars[j]) {
				return vars[i], vars[j]
			}
		}
	}
	panic("no aliasing pair found")
}
