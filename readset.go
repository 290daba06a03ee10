package stm

import "sync/atomic"

// readEntry records the lock word observed at the moment a location
// was read, and the free version it carried then.
type readEntry struct {
	lock    *atomic.Uint64
	version uint64
}

// readSet is an append-only log of versioned reads. Unlike the write
// set (writeset.go), nothing outside the owning transaction ever holds
// a pointer into it, so a plain growable slice is sufficient — Go's
// own append already grows it by doubling in the common case.
type readSet struct {
	entries []readEntry
}

func (rs *readSet) reset() {
	rs.entries = rs.entries[:0]
}

func (rs *readSet) append(lock *atomic.Uint64, version uint64) {
	rs.entries = append(rs.entries, readEntry{lock: lock, version: version})
}

// hasRead reports whether lock was already observed by an earlier read
// in this transaction. Linear scan is intentional: read sets are small
// in the common case, and this path is cold (only consulted by store,
// and only when a write's version looks stale).
func (rs *readSet) hasRead(lock *atomic.Uint64) bool {
	for i := range rs.entries {
		if rs.entries[i].lock == lock {
			return true
		}
	}
	return false
}
