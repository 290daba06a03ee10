package stm

import (
	"sync/atomic"

	"golang.org/x/sys/cpu"
)

// versionClock is the single, monotonically-increasing commit
// timestamp shared by every transaction on an Engine. It is padded
// into its own cache line so readers sampling it do not thrash on a
// line shared with unrelated hot data.
type versionClock struct {
	_     cpu.CacheLinePad
	value atomic.Uint64
	_     cpu.CacheLinePad
}

func (c *versionClock) load() uint64 {
	return c.value.Load()
}

// fetchAdd adds delta and returns the new value (the commit timestamp).
func (c *versionClock) fetchAdd(delta uint64) uint64 {
	return c.value.Add(delta)
}

func (c *versionClock) reset() {
	c.value.Store(0)
}
