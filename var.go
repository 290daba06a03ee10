package stm

import "sync/atomic"

// Var is one word-sized memory location under transactional control.
// All transacted state is held in Vars; a Var's own heap address is
// what gets hashed into the shared lock table (see lockTable.indexFor),
// so two Vars can legitimately alias the same lock word.
type Var struct {
	value atomic.Uint64
}

// NewVar creates a transacted word initialized to v. It must only be
// written afterwards through a transaction (Txn.Load/Store); direct
// access races with concurrent transactions.
func NewVar(v uint64) *Var {
	tv := &Var{}
	tv.value.Store(v)
	return tv
}
