package pool

import (
	"fmt"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
)

// SyncMode selects the guard around pool operations.
type SyncMode uint8

const (
	// SyncSpin guards operations with a SpinLock.
	SyncSpin SyncMode = iota
	// SyncMutex guards operations with a sync.Mutex.
	SyncMutex
	// SyncNone performs no locking.
	SyncNone
)

func (m SyncMode) String() string {
	switch m {
	case SyncSpin:
		return "spin"
	case SyncMutex:
		return "mutex"
	case SyncNone:
		return "none"
	default:
		return fmt.Sprintf("SyncMode(%d)", uint8(m))
	}
}

// ParseSyncMode parses "spin", "mutex" or "none".
func ParseSyncMode(s string) (SyncMode, error) {
	switch strings.ToLower(s) {
	case "", "spin":
		return SyncSpin, nil
	case "mutex":
		return SyncMutex, nil
	case "none":
		return SyncNone, nil
	}
	return 0, fmt.Errorf("pool: unknown sync mode %q", s)
}

// spinYieldAfter is the number of failed acquisitions before yielding the processor.
const spinYieldAfter = 64

// SpinLock is a busy-waiting mutual-exclusion lock. It never parks the
// goroutine in the scheduler's wait queues, only yields the processor while
// contended. It is not reentrant. The zero value is unlocked.
type SpinLock struct {
	state atomic.Bool
}

// Lock acquires the lock, spinning until it is free.
func (l *SpinLock) Lock() {
	for spins := 0; !l.TryLock(); spins++ {
		if spins >= spinYieldAfter {
			runtime.Gosched()
		}
	}
}

// TryLock acquires the lock if it is free and reports whether it did.
func (l *SpinLock) TryLock() bool {
	return !l.state.Load() && l.state.CompareAndSwap(false, true)
}

// Unlock releases the lock.
func (l *SpinLock) Unlock() {
	l.state.Store(false)
}

// noLock is the guard for SyncNone.
type noLock struct{}

func (noLock) Lock()   {}
func (noLock) Unlock() {}

func newLocker(mode SyncMode) (sync.Locker, error) {
	switch mode {
	case SyncSpin:
		return new(SpinLock), nil
	case SyncMutex:
		return new(sync.Mutex), nil
	case SyncNone:
		return noLock{}, nil
	}
	return nil, fmt.Errorf("pool: unknown sync mode %v", mode)
}

var (
	_ sync.Locker = (*SpinLock)(nil)
	_ sync.Locker = noLock{}
)
