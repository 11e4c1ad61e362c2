package slab

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"unsafe"

	"github.com/joshuapare/segpool/internal/pagemem"
)

// Engine is an unsynchronized segmented slab allocator for values of type T.
type Engine[T any] struct {
	cfg    Config
	layout Layout
	alloc  reserver
	log    *slog.Logger

	table   segmentTable
	tracker Tracker

	lastPages int // page count of the newest segment, 0 when empty
	live      int
	capacity  int
	reserved  int
	closed    bool

	stats Stats
}

// New creates an engine for T. No memory is reserved until the first Allocate.
func New[T any](cfg Config) (*Engine[T], error) {
	pageSize := cfg.PageSize
	if pageSize == 0 {
		pageSize = pagemem.Size()
	}
	layout, err := LayoutOf[T](pageSize, cfg.MinPagesPerSegment)
	if err != nil {
		return nil, err
	}
	alloc, err := newReserver[T](cfg.Backing, layout)
	if err != nil {
		return nil, err
	}
	if cfg.GrowthFactor < 1 || math.IsNaN(cfg.GrowthFactor) {
		cfg.GrowthFactor = 1
	}
	if cfg.MaxBytes < 0 {
		return nil, fmt.Errorf("%w: negative byte limit %d", ErrInvalidLayout, cfg.MaxBytes)
	}
	log := cfg.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	e := &Engine[T]{
		cfg:    cfg,
		layout: layout,
		alloc:  alloc,
		log:    log,
	}
	e.tracker, err = newTracker(cfg.Tracker, &e.table)
	if err != nil {
		return nil, err
	}
	return e, nil
}

// Allocate returns a pointer to a zeroed slot after running init on it.
// A nil init leaves the zero value.
//
// The slot comes from the free-slot tracker, then from the uninitialized tail
// of the newest segment, then from a newly reserved segment. The slot is
// reserved before init runs, so init may itself allocate from or deallocate to
// this engine; it must not call Clear or Close. If init returns an error or
// panics, the slot is zeroed and returned to where it was taken from, and the
// error is wrapped in ErrConstruct (a panic is re-raised).
func (e *Engine[T]) Allocate(init func(*T) error) (*T, error) {
	if e.closed {
		return nil, ErrClosed
	}
	ref, reused, err := e.acquire()
	if err != nil {
		return nil, err
	}
	e.reserve(ref)
	p := e.at(ref)
	if reused {
		var zero T
		*p = zero
	}
	if init != nil {
		if err := e.construct(ref, reused, p, init); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrConstruct, err)
		}
	}
	e.commit(ref, reused)
	return p, nil
}

// Deallocate returns p to the engine. A nil p is ignored. p must be a live
// pointer returned by Allocate on this engine; anything else is unchecked
// unless Config.Checked is set, in which case misuse panics.
func (e *Engine[T]) Deallocate(p *T) {
	if p == nil {
		return
	}
	if e.cfg.Checked {
		if err := e.DeallocateChecked(p); err != nil {
			panic(err)
		}
		return
	}
	ref, ok := e.lookup(p)
	if !ok {
		return
	}
	e.release(ref, p, nil)
}

// DeallocateChecked is Deallocate with validation. It returns
// ErrForeignPointer for pointers that do not address a handed-out slot of this
// engine and ErrDoubleFree for slots that are not live.
func (e *Engine[T]) DeallocateChecked(p *T) error {
	if p == nil {
		return nil
	}
	ref, err := e.check(p)
	if err != nil {
		return err
	}
	e.release(ref, p, nil)
	return nil
}

// DeallocateFunc is Deallocate that calls fn on the zeroed slot before it is
// made available for reuse. fn must not retain p. Like Deallocate, it panics
// on misuse when Config.Checked is set.
func (e *Engine[T]) DeallocateFunc(p *T, fn func(*T)) {
	if p == nil {
		return
	}
	if e.cfg.Checked {
		ref, err := e.check(p)
		if err != nil {
			panic(err)
		}
		e.release(ref, p, fn)
		return
	}
	ref, ok := e.lookup(p)
	if !ok {
		return
	}
	e.release(ref, p, fn)
}

// Clear releases every segment and resets counters and growth to their
// initial state. Values still held by callers are not finalized; pointers
// into page-backed segments become invalid.
func (e *Engine[T]) Clear() error {
	var errs []error
	for i, s := range e.table.segs {
		if s.release != nil {
			if err := s.release(); err != nil {
				errs = append(errs, fmt.Errorf("segment %d: %w", i, err))
			}
		}
		s.keep = nil
		s.slots = nil
	}
	if n := len(e.table.segs); n > 0 {
		e.log.Debug("slab: cleared", "segments", n, "bytes", e.reserved, "live", e.live)
	}
	e.table.reset()
	e.tracker.Reset()
	e.lastPages = 0
	e.live = 0
	e.capacity = 0
	e.reserved = 0
	return errors.Join(errs...)
}

// Close clears the engine and rejects further allocations.
func (e *Engine[T]) Close() error {
	err := e.Clear()
	e.closed = true
	return err
}

// Live returns the number of values currently allocated.
func (e *Engine[T]) Live() int { return e.live }

// Segments returns the number of segments.
func (e *Engine[T]) Segments() int { return len(e.table.segs) }

// CapacityTotal returns the number of slots across all segments.
func (e *Engine[T]) CapacityTotal() int { return e.capacity }

// BytesReserved returns the number of bytes across all segments.
func (e *Engine[T]) BytesReserved() int { return e.reserved }

// Layout returns the slot and segment geometry.
func (e *Engine[T]) Layout() Layout { return e.layout }

// Config returns the effective configuration.
func (e *Engine[T]) Config() Config { return e.cfg }

// Tracker returns the free-slot tracker.
func (e *Engine[T]) Tracker() Tracker { return e.tracker }

// SegmentInfos returns a snapshot of every segment in creation order.
func (e *Engine[T]) SegmentInfos() []SegmentInfo {
	out := make([]SegmentInfo, len(e.table.segs))
	for i, s := range e.table.segs {
		out[i] = s.info(i)
	}
	return out
}

// Stats returns occupancy and cumulative counters.
func (e *Engine[T]) Stats() Stats {
	st := e.stats
	st.Live = e.live
	st.Free = e.tracker.Len()
	st.Segments = len(e.table.segs)
	st.CapacityTotal = e.capacity
	st.BytesReserved = e.reserved
	st.Tracker = e.tracker.Kind()
	st.Order = e.tracker.Order()
	st.Backing = e.cfg.Backing
	return st
}

// Range calls fn for every live value in segment order, stopping early when
// fn returns false. fn must not allocate or deallocate.
func (e *Engine[T]) Range(fn func(*T) bool) {
	for si, s := range e.table.segs {
		for i := range s.nextUninit {
			if s.slots[i].state != SlotLive {
				continue
			}
			if !fn(e.at(MakeRef(si, i))) {
				return
			}
		}
	}
}

// Contains reports whether p addresses a live slot of this engine.
func (e *Engine[T]) Contains(p *T) bool {
	if p == nil {
		return false
	}
	_, err := e.check(p)
	return err == nil
}

// RefOf returns the slot reference of p without validating its state.
func (e *Engine[T]) RefOf(p *T) (Ref, bool) {
	if p == nil {
		return NoRef, false
	}
	return e.lookup(p)
}

// State returns the lifecycle tag of r.
func (e *Engine[T]) State(r Ref) SlotState {
	if r == NoRef || r.Segment() >= len(e.table.segs) {
		return SlotUninit
	}
	s := e.table.segs[r.Segment()]
	if r.Slot() >= s.capacity {
		return SlotUninit
	}
	return s.slots[r.Slot()].state
}

func (e *Engine[T]) acquire() (Ref, bool, error) {
	if r, ok := e.tracker.Take(); ok {
		return r, true, nil
	}
	if n := len(e.table.segs); n > 0 {
		if s := e.table.segs[n-1]; s.nextUninit < s.capacity {
			return MakeRef(n-1, s.nextUninit), false, nil
		}
	}
	if err := e.grow(); err != nil {
		return NoRef, false, err
	}
	return MakeRef(len(e.table.segs)-1, 0), false, nil
}

func (e *Engine[T]) construct(ref Ref, reused bool, p *T, init func(*T) error) error {
	done := false
	defer func() {
		if !done {
			e.rollback(ref, reused, p)
		}
	}()
	err := init(p)
	done = err == nil
	return err
}

// reserve takes ref out of circulation while init runs. Tail slots advance
// nextUninit so that nested allocations cannot hand them out again.
func (e *Engine[T]) reserve(ref Ref) {
	s := e.table.segs[ref.Segment()]
	m := &s.slots[ref.Slot()]
	if m.state == SlotUninit {
		s.nextUninit++
	}
	m.state = SlotPending
	m.next = NoRef
}

func (e *Engine[T]) commit(ref Ref, reused bool) {
	s := e.table.segs[ref.Segment()]
	s.slots[ref.Slot()].state = SlotLive
	if reused {
		e.stats.Reused++
	} else {
		e.stats.TailHits++
	}
	s.live++
	e.live++
	e.stats.Allocs++
}

// rollback undoes a failed construction. A tail slot that is still the last
// one handed out of the newest segment goes back to the uninitialized tail;
// any other slot goes to the tracker.
func (e *Engine[T]) rollback(ref Ref, reused bool, p *T) {
	var zero T
	*p = zero
	si, i := ref.Segment(), ref.Slot()
	s := e.table.segs[si]
	if !reused && si == len(e.table.segs)-1 && s.nextUninit == i+1 {
		s.nextUninit--
		s.slots[i].state = SlotUninit
	} else {
		s.slots[i].state = SlotFree
		e.tracker.Give(ref)
	}
	e.stats.FailedInits++
}

func (e *Engine[T]) release(ref Ref, p *T, fn func(*T)) {
	var zero T
	*p = zero
	if fn != nil {
		fn(p)
	}
	s := e.table.segs[ref.Segment()]
	s.slots[ref.Slot()].state = SlotFree
	s.live--
	e.tracker.Give(ref)
	e.live--
	e.stats.Deallocs++
}

func (e *Engine[T]) grow() error {
	pages := nextPages(e.lastPages, e.layout.BasePages, e.cfg.GrowthFactor)
	if pages > math.MaxInt/e.layout.PageSize {
		return fmt.Errorf("%w: %d pages overflows", ErrExhausted, pages)
	}
	n := e.layout.Bytes(pages)
	if e.cfg.MaxBytes > 0 && n > e.cfg.MaxBytes-e.reserved {
		return fmt.Errorf("%w: segment of %d bytes exceeds limit (%d of %d bytes reserved)",
			ErrExhausted, n, e.reserved, e.cfg.MaxBytes)
	}
	capacity := e.layout.Capacity(pages)
	if err := checkRefLimits(len(e.table.segs)+1, capacity); err != nil {
		return err
	}
	r, err := e.alloc(n)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrExhausted, err)
	}

	idx := e.table.add(newSegment(r, pages, n, capacity))
	e.tracker.Grow(capacity)
	e.lastPages = pages
	e.capacity += capacity
	e.reserved += n
	e.stats.Growths++

	e.log.Debug("slab: segment added",
		"segment", idx,
		"pages", pages,
		"bytes", n,
		"capacity", capacity,
		"backing", e.cfg.Backing.String())
	return nil
}

func (e *Engine[T]) at(r Ref) *T {
	s := e.table.segs[r.Segment()]
	return (*T)(unsafe.Add(s.base, r.Slot()*e.layout.SlotSize))
}

func (e *Engine[T]) lookup(p *T) (Ref, bool) {
	addr := uintptr(unsafe.Pointer(p))
	si := e.table.find(addr)
	if si < 0 {
		return NoRef, false
	}
	s := e.table.segs[si]
	return MakeRef(si, int(addr-s.addr)/e.layout.SlotSize), true
}

func (e *Engine[T]) check(p *T) (Ref, error) {
	addr := uintptr(unsafe.Pointer(p))
	si := e.table.find(addr)
	if si < 0 {
		return NoRef, fmt.Errorf("%w: %#x", ErrForeignPointer, addr)
	}
	s := e.table.segs[si]
	off := int(addr - s.addr)
	if off%e.layout.SlotSize != 0 {
		return NoRef, fmt.Errorf("%w: %#x is not on a slot boundary", ErrForeignPointer, addr)
	}
	idx := off / e.layout.SlotSize
	if idx >= s.capacity || idx >= s.nextUninit {
		return NoRef, fmt.Errorf("%w: %#x was never allocated", ErrForeignPointer, addr)
	}
	ref := MakeRef(si, idx)
	if st := s.slots[idx].state; st != SlotLive {
		return NoRef, fmt.Errorf("%w: %v is %v", ErrDoubleFree, ref, st)
	}
	return ref, nil
}
