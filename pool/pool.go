package pool

import (
	"sync"

	"github.com/joshuapare/segpool/slab"
)

// Pool is a guarded slab pool for values of type T.
type Pool[T any] struct {
	mu   sync.Locker
	eng  *slab.Engine[T]
	mode SyncMode
}

// New creates a pool for T. No memory is reserved until the first Allocate.
func New[T any](opts Options) (*Pool[T], error) {
	mu := opts.Locker
	if mu == nil {
		var err error
		if mu, err = newLocker(opts.Sync); err != nil {
			return nil, err
		}
	}
	eng, err := slab.New[T](opts.Config)
	if err != nil {
		return nil, err
	}
	return &Pool[T]{mu: mu, eng: eng, mode: opts.Sync}, nil
}

// Allocate returns a value initialized by init, which receives a zeroed slot.
// A nil init yields the zero value. If init fails the pool is left exactly as
// before the call and the error wraps ErrConstruct.
func (p *Pool[T]) Allocate(init func(*T) error) (*T, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.eng.Allocate(init)
}

// Deallocate zeroes v and returns its slot for reuse. A nil v is ignored.
// v must have been returned by Allocate on this pool and still be live.
func (p *Pool[T]) Deallocate(v *T) {
	if v == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.eng.Deallocate(v)
}

// DeallocateChecked is Deallocate that reports ErrForeignPointer and
// ErrDoubleFree instead of corrupting the pool.
func (p *Pool[T]) DeallocateChecked(v *T) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.eng.DeallocateChecked(v)
}

// Clear releases all segment memory and resets the pool. Outstanding values
// are not finalized.
func (p *Pool[T]) Clear() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.eng.Clear()
}

// Close clears the pool and rejects further allocations.
func (p *Pool[T]) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.eng.Close()
}

// Live returns the number of values currently allocated.
func (p *Pool[T]) Live() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.eng.Live()
}

// Segments returns the number of segments.
func (p *Pool[T]) Segments() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.eng.Segments()
}

// CapacityTotal returns the number of slots across all segments.
func (p *Pool[T]) CapacityTotal() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.eng.CapacityTotal()
}

// SegmentInfos returns a snapshot of every segment.
func (p *Pool[T]) SegmentInfos() []slab.SegmentInfo {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.eng.SegmentInfos()
}

// Stats returns occupancy and cumulative counters.
func (p *Pool[T]) Stats() slab.Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.eng.Stats()
}

// Contains reports whether v is a live value of this pool.
func (p *Pool[T]) Contains(v *T) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.eng.Contains(v)
}

// Range calls fn for every live value while holding the guard.
// fn must not call back into the pool.
func (p *Pool[T]) Range(fn func(*T) bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.eng.Range(fn)
}

// Layout returns the slot and segment geometry. It never changes.
func (p *Pool[T]) Layout() slab.Layout { return p.eng.Layout() }

// SyncMode returns the configured guard mode.
func (p *Pool[T]) SyncMode() SyncMode { return p.mode }

// Unsafe returns the unguarded engine. Callers must provide their own
// synchronization and must not mix it with guarded calls from other goroutines.
func (p *Pool[T]) Unsafe() *slab.Engine[T] { return p.eng }

func (p *Pool[T]) deallocateFunc(v *T, fn func(*T)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.eng.DeallocateFunc(v, fn)
}
