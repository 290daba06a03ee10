package stm

// Config holds the tunables that shape an Engine's lock table and
// per-transaction storage. The zero value is not valid; use
// DefaultConfig and override individual fields as needed.
type Config struct {
	// RWSetSize is the initial capacity of a transaction's read set and
	// write set, in entries.
	RWSetSize int
	// LockArrayLogSize is K in a lock table of 2^K words.
	LockArrayLogSize int
	// LockShiftExtra is the extra shift applied on top of the word size
	// when hashing an address to a lock slot, trading stripe width for
	// table compactness.
	LockShiftExtra int
	// MaxThreads bounds the safety margin subtracted from VersionMax.
	MaxThreads int
	// MaxSpecific bounds the number of per-transaction key/value slots.
	MaxSpecific int
	// MaxCallbacks records the module hook registration bound. Register
	// enforces the package constant MaxCallbacks and does not read this
	// field.
	MaxCallbacks int
}

// DefaultConfig returns the reference TinySTM defaults.
func DefaultConfig() Config {
	return Config{
		RWSetSize:        4096,
		LockArrayLogSize: 20,
		LockShiftExtra:   2,
		MaxThreads:       8192,
		MaxSpecific:      MaxSpecific,
		MaxCallbacks:     MaxCallbacks,
	}
}
