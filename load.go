package stm

// Load performs a transactional read of addr. Reads of a
// location this transaction has already written are served straight
// from the write-set bucket and never enter the read set; anything
// else is validated against the current snapshot, extending the
// snapshot on a stale-but-uncontended version rather than aborting
// outright.
func (tx *Txn) Load(addr *Var) uint64 {
	lock := tx.engine.locks.lockFor(addr)
	l := lock.Load()

	for {
		if lockOwned(l) {
			w := lockEntry(l)
			if !tx.writeSet.contains(w) {
				tx.rollback(AbortRWConflict)
			}
			for {
				if w.addr == addr {
					if w.mask != 0 {
						return w.value
					}
					return addr.value.Load()
				}
				if w.next == nil {
					return addr.value.Load()
				}
				w = w.next
			}
		}

		value := addr.value.Load()
		l2 := lock.Load()
		if l2 != l {
			l = l2
			continue
		}

		version := lockTimestamp(l)
		if version > tx.end {
			if tx.attr.ReadOnly || !tx.extend() {
				tx.rollback(AbortValRead)
			}
			l2 = lock.Load()
			if l2 != l {
				l = l2
				continue
			}
		}

		if !tx.attr.ReadOnly {
			tx.readSet.append(lock, version)
		}
		return value
	}
}
