package stm

import "github.com/stmrt/tinystm/internal/elog"

// checkQuiesce cooperatively parks tx whenever a stop-the-world
// quiescence is in progress. It is called every time a transaction
// becomes active, so a rollover requested by another thread can always
// find a quiet point to run in.
func (e *Engine) checkQuiesce(tx *Txn) {
	e.mu.Lock()
	if e.quiesceFlag != 2 {
		e.mu.Unlock()
		return
	}
	prev := tx.status
	tx.status = StatusIdle
	e.activeCount--
	e.cond.Broadcast()
	for e.quiesceFlag == 2 {
		e.cond.Wait()
	}
	tx.status = prev
	e.activeCount++
	e.mu.Unlock()
}

// quiesceBarrier is the stop-the-world coordinator. The calling
// transaction goes idle and waits, along with
// every other active transaction (drained out via checkQuiesce), until
// none remain active; then it alone runs action (e.g. clock rollover)
// before waking everyone back up.
func (e *Engine) quiesceBarrier(tx *Txn, action func()) {
	e.mu.Lock()
	prev := tx.status
	tx.status = StatusIdle
	e.activeCount--
	e.quiesceFlag = 2
	e.cond.Broadcast()
	for e.activeCount > 0 {
		e.cond.Wait()
	}
	action()
	e.quiesceFlag = 0
	e.activeCount++
	tx.status = prev
	e.cond.Broadcast()
	e.mu.Unlock()
	e.Logger.Event("quiesce.rollover", elog.Fields{"txn_id": tx.attr.ID})
}

// onBegin registers tx as active for the purposes of the quiescence
// barrier's active-thread count; prepare calls it before any rollover,
// and quiesceBarrier takes the caller back out of the count while it
// waits.
func (e *Engine) onBegin() {
	e.mu.Lock()
	e.activeCount++
	e.mu.Unlock()
}

// onEnd unregisters tx as active; called on every outermost commit and
// every rollback. A rollback that retries registers the transaction
// again through prepare.
func (e *Engine) onEnd() {
	e.mu.Lock()
	e.activeCount--
	if e.activeCount == 0 {
		e.cond.Broadcast()
	}
	e.mu.Unlock()
}
