package stm

func newTestEngine() *Engine {
	cfg := DefaultConfig()
	cfg.RWSetSize = 8
	cfg.LockArrayLogSize = 10
	e := New(cfg)
	e.Init()
	return e
}

// smallLockTableEngine builds an engine whose lock table is tiny
// enough that two distinct *Var handles are virtually guaranteed to
// alias the same stripe, for tests that need deliberate lock aliasing.
func smallLockTableEngine() *Engine {
	cfg := DefaultConfig()
	cfg.RWSetSize = 8
	cfg.LockArrayLogSize = 1 // 2 slots
	e := New(cfg)
	e.Init()
	return e
}
