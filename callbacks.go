package stm

import "sync"

// MaxCallbacks bounds the number of module hook registrations per hook
// kind.
const MaxCallbacks = 7

// Callbacks is one module's set of lifecycle hooks. Any field may be
// left nil. Arg is an opaque value passed back to every hook unchanged.
type Callbacks struct {
	OnInit      func(arg any)
	OnExit      func(arg any)
	OnStart     func(tx *Txn, arg any)
	OnPrecommit func(tx *Txn, arg any)
	OnCommit    func(tx *Txn, arg any)
	OnAbort     func(tx *Txn, reason AbortReason, arg any)
	Arg         any
}

// callbackRegistry holds every module's hooks. Registration must
// precede the first transaction, so reads of hooks afterward require
// no locking; mu only guards concurrent Register calls against each
// other and against the one-time initialization sequence.
type callbackRegistry struct {
	mu    sync.Mutex
	hooks []Callbacks
}

// register appends cb, firing OnInit immediately since the engine is
// already initialized by the time modules register. Returns false
// once MaxCallbacks slots are in use.
func (r *callbackRegistry) register(cb Callbacks) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.hooks) >= MaxCallbacks {
		return false
	}
	r.hooks = append(r.hooks, cb)
	if cb.OnInit != nil {
		cb.OnInit(cb.Arg)
	}
	return true
}

func (r *callbackRegistry) fireExit() {
	for _, cb := range r.hooks {
		if cb.OnExit != nil {
			cb.OnExit(cb.Arg)
		}
	}
}

func (r *callbackRegistry) fireStart(tx *Txn) {
	for _, cb := range r.hooks {
		if cb.OnStart != nil {
			cb.OnStart(tx, cb.Arg)
		}
	}
}

func (r *callbackRegistry) firePrecommit(tx *Txn) {
	for _, cb := range r.hooks {
		if cb.OnPrecommit != nil {
			cb.OnPrecommit(tx, cb.Arg)
		}
	}
}

func (r *callbackRegistry) fireCommit(tx *Txn) {
	for _, cb := range r.hooks {
		if cb.OnCommit != nil {
			cb.OnCommit(tx, cb.Arg)
		}
	}
}

func (r *callbackRegistry) fireAbort(tx *Txn, reason AbortReason) {
	for _, cb := range r.hooks {
		if cb.OnAbort != nil {
			cb.OnAbort(tx, reason, cb.Arg)
		}
	}
}
