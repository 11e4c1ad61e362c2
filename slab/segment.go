package slab

import (
	"sort"
	"unsafe"
)

// slotMeta is the tagged state of one slot. next links free slots when the
// engine uses the free-list tracker.
type slotMeta struct {
	next  Ref
	state SlotState
}

// Segment is one contiguous block of slots.
type Segment struct {
	base       unsafe.Pointer
	addr       uintptr
	pages      int
	bytes      int
	capacity   int
	nextUninit int // slots at or past this index have never been handed out
	live       int
	slots      []slotMeta
	keep       any
	release    func() error
}

func newSegment(r region, pages, bytes, capacity int) *Segment {
	return &Segment{
		base:     r.base,
		addr:     uintptr(r.base),
		pages:    pages,
		bytes:    bytes,
		capacity: capacity,
		slots:    make([]slotMeta, capacity),
		keep:     r.keep,
		release:  r.release,
	}
}

// SegmentInfo is a read-only snapshot of one segment.
type SegmentInfo struct {
	Index       int     // creation order
	Base        uintptr // address of slot 0
	Pages       int
	Bytes       int
	Capacity    int // Bytes / SlotSize
	Initialized int // slots handed out at least once
	Live        int
}

func (s *Segment) info(i int) SegmentInfo {
	return SegmentInfo{
		Index:       i,
		Base:        s.addr,
		Pages:       s.pages,
		Bytes:       s.bytes,
		Capacity:    s.capacity,
		Initialized: s.nextUninit,
		Live:        s.live,
	}
}

// span is an address range used to map pointers back to segments.
type span struct {
	start uintptr
	end   uintptr // exclusive
	seg   int
}

// segmentTable owns the segment list in creation order plus an address index
// sorted by start for O(log S) pointer lookup.
type segmentTable struct {
	segs  []*Segment
	spans []span
	hint  int // segment of the most recent lookup hit
}

func (t *segmentTable) add(s *Segment) int {
	idx := len(t.segs)
	t.segs = append(t.segs, s)

	sp := span{start: s.addr, end: s.addr + uintptr(s.bytes), seg: idx}
	i := sort.Search(len(t.spans), func(i int) bool { return t.spans[i].start > sp.start })
	t.spans = append(t.spans, span{})
	copy(t.spans[i+1:], t.spans[i:])
	t.spans[i] = sp
	return idx
}

// find returns the index of the segment containing addr, or -1.
func (t *segmentTable) find(addr uintptr) int {
	if t.hint < len(t.segs) {
		s := t.segs[t.hint]
		if addr >= s.addr && addr < s.addr+uintptr(s.bytes) {
			return t.hint
		}
	}
	i := sort.Search(len(t.spans), func(i int) bool { return t.spans[i].end > addr })
	if i < len(t.spans) && t.spans[i].start <= addr {
		t.hint = t.spans[i].seg
		return t.hint
	}
	return -1
}

func (t *segmentTable) reset() {
	clear(t.segs)
	t.segs = t.segs[:0]
	t.spans = t.spans[:0]
	t.hint = 0
}

func (t *segmentTable) meta(r Ref) *slotMeta {
	return &t.segs[r.Segment()].slots[r.Slot()]
}

// Link returns the free-chain successor of r.
func (t *segmentTable) Link(r Ref) Ref { return t.meta(r).next }

// SetLink sets the free-chain successor of r.
func (t *segmentTable) SetLink(r, next Ref) { t.meta(r).next = next }
