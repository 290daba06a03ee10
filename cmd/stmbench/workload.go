package main

import (
	"math/rand"
	"sync"
	"sync/atomic"

	"github.com/stmrt/tinystm"
)

// bankTransferWorkload drives goroutines concurrent count transactions
// each, every one picking two distinct accounts at random and moving 1
// unit between them: random from/to, skip self-transfers, load both,
// conditionally store both, generalized to a configurable account
// count and engine rather than a fixed array.
type bankTransferWorkload struct {
	engine     *stm.Engine
	accounts   []*stm.Var
	goroutines int
	transfers  int

	committed atomic.Uint64
}

func newBankTransferWorkload(e *stm.Engine, accounts, goroutines, transfers int, startingBalance uint64) *bankTransferWorkload {
	w := &bankTransferWorkload{
		engine:     e,
		accounts:   make([]*stm.Var, accounts),
		goroutines: goroutines,
		transfers:  transfers,
	}
	for i := range w.accounts {
		w.accounts[i] = stm.NewVar(startingBalance)
	}
	return w
}

// run drives the workload to completion and returns the final balance
// of every account.
func (w *bankTransferWorkload) run() []uint64 {
	var wg sync.WaitGroup
	wg.Add(w.goroutines)
	for g := 0; g < w.goroutines; g++ {
		go func(seed int64) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed))
			for x := 0; x < w.transfers; x++ {
				from := rng.Intn(len(w.accounts))
				to := rng.Intn(len(w.accounts))
				if from == to {
					continue
				}
				committed := stm.Atomically(w.engine, stm.Attr{}, func(tx *stm.Txn) {
					vf := tx.Load(w.accounts[from])
					if vf == 0 {
						return
					}
					vt := tx.Load(w.accounts[to])
					tx.Store(w.accounts[from], vf-1)
					tx.Store(w.accounts[to], vt+1)
				})
				if committed {
					w.committed.Add(1)
				}
			}
		}(int64(g) + 1)
	}
	wg.Wait()

	balances := make([]uint64, len(w.accounts))
	stm.Atomically(w.engine, stm.Attr{}, func(tx *stm.Txn) {
		for i, a := range w.accounts {
			balances[i] = tx.Load(a)
		}
	})
	return balances
}
