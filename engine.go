package stm

import (
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/stmrt/tinystm/internal/elog"
)

// Engine is the global state shared by every transaction: the lock
// table, the version clock, the descriptor list and the quiescence
// coordination around it. Tests and applications that want independent
// STM universes should each build their own Engine rather than share a
// package singleton.
type Engine struct {
	cfg   Config
	clock versionClock
	locks *lockTable

	mu          sync.Mutex
	cond        *sync.Cond
	descHead    *Txn
	activeCount int
	quiesceFlag int32 // 0 idle, 1 in progress, 2 stop-the-world requested

	callbacks     callbackRegistry
	specificCount int32

	initialized atomic.Bool

	// Logger receives structured engine events (rollback reasons,
	// quiescence, clock rollover). Defaults to elog.Discard.
	Logger elog.Logger
}

// New builds an Engine with the given configuration.
func New(cfg Config) *Engine {
	e := &Engine{
		cfg:    cfg,
		locks:  newLockTable(cfg.LockArrayLogSize, cfg.LockShiftExtra),
		Logger: elog.Discard,
	}
	e.cond = sync.NewCond(&e.mu)
	return e
}

// versionMax is the highest representable clock version before a
// quiescent rollover is required.
func (e *Engine) versionMax() uint64 {
	return (^uint64(0) >> lockBits) - uint64(e.cfg.MaxThreads)
}

// Init idempotently marks the engine ready for use.
func (e *Engine) Init() {
	e.initialized.Store(true)
}

// Exit idempotently tears the engine down, firing every module's
// OnExit hook exactly once.
func (e *Engine) Exit() {
	if e.initialized.CompareAndSwap(true, false) {
		e.callbacks.fireExit()
	}
}

func (e *Engine) requireInitialized() {
	if !e.initialized.Load() {
		fatal("engine used before Init")
	}
}

// ThreadInit creates a fresh transaction descriptor and links it into
// the engine's descriptor list. The returned Txn is owned by the
// calling goroutine until ThreadExit.
func (e *Engine) ThreadInit() *Txn {
	e.requireInitialized()
	tx := newTxn(e)
	e.mu.Lock()
	tx.next = e.descHead
	e.descHead = tx
	e.mu.Unlock()
	return tx
}

// ThreadExit unlinks tx from the descriptor list. tx must not be
// active.
func (e *Engine) ThreadExit(tx *Txn) {
	if tx.Active() {
		fatal("ThreadExit called on an active transaction")
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.descHead == tx {
		e.descHead = tx.next
		return
	}
	for p := e.descHead; p != nil; p = p.next {
		if p.next == tx {
			p.next = tx.next
			return
		}
	}
}

// CreateSpecific allocates a new per-transaction specific slot id.
func (e *Engine) CreateSpecific() int {
	idx := atomic.AddInt32(&e.specificCount, 1) - 1
	if int(idx) >= e.cfg.MaxSpecific {
		fatal("too many specific slots (max %d)", e.cfg.MaxSpecific)
	}
	return int(idx)
}

// Register adds a module's lifecycle hooks. Returns false once
// MaxCallbacks registrations are in use.
func (e *Engine) Register(cb Callbacks) bool {
	return e.callbacks.register(cb)
}

// Parameter answers the fixed design-identifying queries of
// get_parameter.
func (e *Engine) Parameter(name string) (string, bool) {
	switch name {
	case "design":
		return "WRITE-BACK (ETL)", true
	case "contention_manager":
		return "suicide", true
	case "initial_rw_set_size":
		return strconv.Itoa(e.cfg.RWSetSize), true
	case "compile_flags":
		return "", true
	default:
		return "", false
	}
}
