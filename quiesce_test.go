package stm

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClockRolloverQuiesceBarrier(t *testing.T) {
	e := newTestEngine()
	e.clock.value.Store(e.versionMax() - 1)

	tx := e.ThreadInit()
	defer e.ThreadExit(tx)
	tx.Begin(Attr{})
	assert.EqualValues(t, 0, tx.start, "a begin that would cross VersionMax must trigger a rollover to 0")
	assert.EqualValues(t, 0, tx.end)
	assert.True(t, tx.Commit())
}

func TestQuiesceBarrierDrainsOtherActiveTransactions(t *testing.T) {
	e := newTestEngine()
	x := NewVar(0)

	inside := make(chan struct{})
	release := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		Atomically(e, Attr{}, func(tx *Txn) {
			_ = tx.Load(x)
			close(inside)
			<-release
		})
	}()
	<-inside

	rolled := make(chan struct{})
	go func() {
		defer close(rolled)
		driver := e.ThreadInit()
		defer e.ThreadExit(driver)
		e.onBegin() // this goroutine counts itself active, mirroring prepare() before the barrier call
		e.quiesceBarrier(driver, func() {
			e.clock.reset()
			e.locks.resetVersions()
		})
	}()

	select {
	case <-rolled:
		t.Fatal("quiesceBarrier must not complete while another transaction is still active")
	case <-time.After(20 * time.Millisecond):
	}

	close(release)
	wg.Wait()
	<-rolled
}
