package stm

// MaxSpecific bounds the number of per-transaction key/value slots.
const MaxSpecific = 7

// RetryContinuation is the abstract resumption point that rollback
// invokes "without returning": this runtime models that non-local
// control transfer with a panic carrying rollbackSignal, caught by the
// driving loop in Atomically/Run. A RetryContinuation is only ever
// meaningful for the outermost transaction (nesting == 0); GetEnv
// returns nil for a nested Begin.
type RetryContinuation func(reason AbortReason)

// Attr are the caller-supplied attributes of a transaction.
// VisibleReads is accepted for interface parity but ignored: this
// runtime never makes reads visible to other transactions.
type Attr struct {
	ReadOnly     bool
	NoRetry      bool
	VisibleReads bool
	ID           int
	OnRetry      RetryContinuation
}

// Txn is a per-thread transaction descriptor. It is owned
// exclusively by the goroutine that obtained it from Engine.ThreadInit
// or Atomically; driving one Txn from multiple goroutines concurrently
// is not safe and is not guarded against.
type Txn struct {
	engine *Engine

	status  Status
	attr    Attr
	start   uint64
	end     uint64
	nesting int

	readSet  readSet
	writeSet *writeSet
	specific [MaxSpecific]any

	cont RetryContinuation

	next *Txn // descriptor list linkage, guarded by engine.mu
}

func newTxn(e *Engine) *Txn {
	return &Txn{
		engine:   e,
		status:   StatusIdle,
		readSet:  readSet{entries: make([]readEntry, 0, e.cfg.RWSetSize)},
		writeSet: newWriteSet(e.cfg.RWSetSize),
	}
}

// Active reports whether the transaction is currently in flight.
func (tx *Txn) Active() bool {
	return tx.status.active()
}

// Aborted reports whether the transaction's last attempt rolled back
// and is not going to be retried (no_retry was set).
func (tx *Txn) Aborted() bool {
	return tx.status == StatusAborted
}

// Killed reports whether the engine forcibly terminated the
// transaction. Reserved for future contention-management policies;
// never set by this runtime today.
func (tx *Txn) Killed() bool {
	return tx.status == StatusKilled
}

// GetEnv returns the retry continuation handle, but only for an
// outermost transaction: a nested Begin (flat nesting) returns nil,
// since only the outer begin/commit pair is effective.
func (tx *Txn) GetEnv() *RetryContinuation {
	if tx.nesting != 1 {
		return nil
	}
	return &tx.cont
}

// SetSpecific stores v in this transaction's key-value slot key.
func (tx *Txn) SetSpecific(key int, v any) {
	if key < 0 || key >= MaxSpecific {
		fatal("specific slot %d out of range [0,%d)", key, MaxSpecific)
	}
	tx.specific[key] = v
}

// GetSpecific reads this transaction's key-value slot key.
func (tx *Txn) GetSpecific(key int) any {
	if key < 0 || key >= MaxSpecific {
		fatal("specific slot %d out of range [0,%d)", key, MaxSpecific)
	}
	return tx.specific[key]
}
