package stm

import "github.com/stmrt/tinystm/internal/elog"

// validate re-checks every entry in the read set; reused by both
// snapshot extension and pre-commit validation. A lock found owned by
// this transaction itself is fine (it is about to publish that write);
// owned by anyone else, or free with a changed version, both
// invalidate the snapshot.
func (tx *Txn) validate() bool {
	for i := range tx.readSet.entries {
		r := tx.readSet.entries[i]
		l := r.lock.Load()
		if lockOwned(l) {
			if !tx.writeSet.contains(lockEntry(l)) {
				return false
			}
			continue
		}
		if lockTimestamp(l) != r.version {
			return false
		}
	}
	return true
}

// extend raises end to the current clock value, provided every prior
// read still validates against it.
func (tx *Txn) extend() bool {
	now := tx.engine.clock.load()
	if !tx.validate() {
		return false
	}
	tx.end = now
	return true
}

// Commit validates the read set if necessary, publishes every pending
// write and releases the locks that guarded them. It returns false if
// validation fails; rollback has already run by the
// time it returns (via the retry-continuation panic, caught by the
// Atomically/Run driving loop), so a plain "false" return only happens
// for a no-retry transaction's caller to observe.
func (tx *Txn) Commit() (committed bool) {
	tx.nesting--
	if tx.nesting > 0 {
		// Inner commit of a flat-nested transaction: no-op.
		return true
	}

	if !tx.writeSet.hasWrites {
		tx.status = StatusCommitted
		tx.engine.callbacks.fireCommit(tx)
		tx.engine.onEnd()
		return true
	}

	tx.engine.callbacks.firePrecommit(tx)

	t := tx.engine.clock.fetchAdd(1) + 1
	if tx.start != t-1 {
		if !tx.validate() {
			tx.rollback(AbortValidate)
		}
	}

	for i := 0; i < tx.writeSet.nbEntries; i++ {
		w := tx.writeSet.entryAt(i)
		if w.mask != 0 {
			w.addr.value.Store(w.value)
		}
		if w.next == nil {
			// Only the bucket's tail releases the lock: an owner
			// pointer may still reference an earlier entry in the
			// same bucket, and readers discovering an owned lock walk
			// the bucket from that pointer.
			w.lock.Store(lockSetTimestamp(t))
		}
	}

	tx.status = StatusCommitted
	tx.engine.callbacks.fireCommit(tx)
	tx.engine.onEnd()
	return true
}

// rollback tears down every lock this transaction holds, transitions
// to Aborted, and either returns control (no_retry) or re-prepares the
// descriptor and resumes the transaction body via the retry
// continuation. In both cases it panics with rollbackSignal: this
// never returns to its caller, with the panic/recover in Atomically/Run
// playing the role of a longjmp target.
func (tx *Txn) rollback(reason AbortReason) {
	for i := 0; i < tx.writeSet.nbEntries; i++ {
		w := tx.writeSet.entryAt(i)
		if w.next == nil {
			w.lock.Store(lockSetTimestamp(w.version))
		}
	}

	tx.status = StatusAborted
	if reason&AbortExtendWS != 0 {
		tx.writeSet.double()
	}
	tx.nesting = 1
	tx.engine.callbacks.fireAbort(tx, reason)
	tx.engine.Logger.Event("txn.rollback", elog.Fields{
		"txn_id": tx.attr.ID,
		"reason": reason.String(),
	})
	tx.engine.onEnd()

	if tx.cont != nil {
		tx.cont(reason)
	}

	if tx.attr.NoRetry || reason&AbortNoRetry != 0 {
		tx.nesting = 0
		panic(rollbackSignal{reason: reason})
	}

	tx.prepare(tx.attr)
	panic(rollbackSignal{reason: reason})
}

// rollbackSignal is the payload of the internal panic rollback uses to
// transfer control back to Atomically/Run without returning.
type rollbackSignal struct {
	reason AbortReason
}
