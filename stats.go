package stm

// Stat answers a named get_stats query for this transaction.
func (tx *Txn) Stat(name string) (uint64, bool) {
	switch name {
	case "read_set_size":
		return uint64(cap(tx.readSet.entries)), true
	case "write_set_size":
		return uint64(tx.writeSet.capacity), true
	case "read_set_nb_entries":
		return uint64(len(tx.readSet.entries)), true
	case "write_set_nb_entries":
		return uint64(tx.writeSet.nbEntries), true
	case "read_only":
		if tx.attr.ReadOnly {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}
