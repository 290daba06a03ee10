package stm

// Begin starts (or, for a flat-nested call, no-ops into) a
// transaction. It returns the retry-continuation handle, non-nil only
// for the outermost Begin.
func (tx *Txn) Begin(attr Attr) *RetryContinuation {
	tx.nesting++
	if tx.nesting > 1 {
		return nil
	}
	tx.prepare(attr)
	return &tx.cont
}

// prepare resets a transaction to a fresh snapshot, rolling the global
// clock over first if the next commit timestamp would reach VersionMax.
func (tx *Txn) prepare(attr Attr) {
	e := tx.engine
	tx.attr = attr
	tx.cont = attr.OnRetry
	tx.readSet.reset()
	tx.writeSet.reset()

	tx.start = e.clock.load()
	tx.end = tx.start

	e.onBegin()
	if tx.start+1 >= e.versionMax() {
		e.quiesceBarrier(tx, func() {
			e.clock.reset()
			e.locks.resetVersions()
		})
		tx.start = e.clock.load()
		tx.end = tx.start
	}

	tx.status = StatusActive
	e.checkQuiesce(tx)
	e.callbacks.fireStart(tx)
}

// Abort forces a rollback with reason ORed with AbortExplicit. Like
// every rollback, this does not return.
func (tx *Txn) Abort(reason AbortReason) {
	tx.rollback(reason | AbortExplicit)
}

// Atomically runs body to completion under a fresh transaction
// descriptor, retrying on conflict until it commits (or, if
// attr.NoRetry is set, until it aborts once). The retry continuation
// is implemented as an internal panic/recover around each attempt's
// body and commit, since rollback itself never returns.
func Atomically(e *Engine, attr Attr, body func(tx *Txn)) bool {
	tx := e.ThreadInit()
	defer e.ThreadExit(tx)
	return e.Run(tx, attr, body)
}

// Run drives body to completion on a possibly-reused descriptor tx —
// useful in hot loops that want to avoid allocating a fresh Txn per
// attempt.
func (e *Engine) Run(tx *Txn, attr Attr, body func(tx *Txn)) (committed bool) {
	tx.Begin(attr)
	for {
		aborted, committed := runAttempt(tx, body)
		if aborted {
			if tx.nesting == 0 {
				return false
			}
			continue
		}
		return committed
	}
}

// runAttempt executes one attempt of body followed by its commit,
// recovering the rollbackSignal panic that rollback uses to signal
// "retry from here" (or "give up", for a no-retry transaction) without
// returning. Commit-time validation can roll back just as readily as
// the body can, so both must run under the same recover: a rollback
// raised from Commit has to drive the same retry loop as one raised
// from body, not escape to the caller.
func runAttempt(tx *Txn, body func(tx *Txn)) (aborted, committed bool) {
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(rollbackSignal); ok {
				aborted = true
				return
			}
			panic(r)
		}
	}()
	body(tx)
	committed = tx.Commit()
	return false, committed
}
