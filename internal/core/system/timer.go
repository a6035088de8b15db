package system

import (
	"sync/atomic"
	"time"
)

var epoch = time.Now()

// SysTimer records how long the last run of a system took. Start and End
// must be paired.
type SysTimer struct {
	started atomic.Int64 // monotonic nanos since epoch + 1, 0 = idle
	nanos   atomic.Int64
}

func (t *SysTimer) Start() {
	if !t.started.CompareAndSwap(0, int64(time.Since(epoch))+1) {
		panic("system: SysTimer started twice")
	}
}

func (t *SysTimer) End() {
	s := t.started.Swap(0)
	if s == 0 {
		panic("system: SysTimer ended without start")
	}
	t.nanos.Store(int64(time.Since(epoch)) + 1 - s)
}

// Nanos returns the duration of the last completed run.
func (t *SysTimer) Nanos() int64 { return t.nanos.Load() }

// Running reports whether Start was called without a matching End.
func (t *SysTimer) Running() bool { return t.started.Load() != 0 }
