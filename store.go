package stm

import "sync/atomic"

// Store performs a full-word transactional write of addr.
func (tx *Txn) Store(addr *Var, value uint64) {
	tx.storeMasked(addr, value, ^uint64(0))
}

// StoreMasked writes only the bits selected by mask. mask == 0
// reserves the lock as a "read for write" without altering memory.
func (tx *Txn) StoreMasked(addr *Var, value, mask uint64) {
	tx.storeMasked(addr, value, mask)
}

func (tx *Txn) storeMasked(addr *Var, value, mask uint64) *writeEntry {
	lock := tx.engine.locks.lockFor(addr)
	l := lock.Load()

	for {
		if lockOwned(l) {
			w := lockEntry(l)
			if tx.writeSet.contains(w) {
				return tx.mergeIntoBucket(w, addr, value, mask, lock)
			}
			tx.rollback(AbortWWConflict)
		}

		version := lockTimestamp(l)
		if version > tx.end && tx.readSet.hasRead(lock) {
			// We may have read an older version of this location
			// previously; we cannot prove it is the version we are
			// about to overwrite.
			tx.rollback(AbortValWrite)
		}

		if tx.writeSet.full() {
			tx.rollback(AbortExtendWS)
		}
		w := tx.writeSet.reserve()
		if !lock.CompareAndSwap(l, lockSetOwned(w)) {
			tx.writeSet.unreserve()
			l = lock.Load()
			continue
		}
		populateWriteEntry(w, addr, value, mask, version, lock)
		return w
	}
}

// mergeIntoBucket handles a write to an address whose lock this
// transaction already owns: either there is an existing entry for the
// exact address (merge the new bits in by mask) or a new entry must be
// appended to the bucket's tail.
func (tx *Txn) mergeIntoBucket(w *writeEntry, addr *Var, value, mask uint64, lock *atomic.Uint64) *writeEntry {
	if mask == 0 {
		return w
	}
	prev := w
	for {
		if prev.addr == addr {
			if mask != ^uint64(0) {
				if prev.mask == 0 {
					prev.value = addr.value.Load()
				}
				value = (prev.value &^ mask) | (value & mask)
			}
			prev.value = value
			prev.mask |= mask
			return prev
		}
		if prev.next == nil {
			break
		}
		prev = prev.next
	}

	version := prev.version
	if tx.writeSet.full() {
		tx.rollback(AbortExtendWS)
	}
	w2 := tx.writeSet.reserve()
	populateWriteEntry(w2, addr, value, mask, version, lock)
	prev.next = w2
	return w2
}

// populateWriteEntry fills a freshly reserved (or CAS-acquired) entry.
// mask == 0 means "reserve only" (read-for-write): no value is
// computed or stored. Otherwise, a partial mask is resolved against
// the current memory value so the entry always holds a full word ready
// to publish at commit.
func populateWriteEntry(w *writeEntry, addr *Var, value, mask, version uint64, lock *atomic.Uint64) {
	w.addr = addr
	w.lock = lock
	w.version = version
	w.next = nil
	if mask == 0 {
		w.value = 0
		w.mask = 0
		return
	}
	if mask != ^uint64(0) {
		value = (addr.value.Load() &^ mask) | (value & mask)
	}
	w.value = value
	w.mask = mask
}
