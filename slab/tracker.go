package slab

import (
	"fmt"
	"strings"
)

// TrackerKind selects the free-slot reclamation strategy.
type TrackerKind uint8

const (
	// TrackerFreeList chains free slots through the slot tables. LIFO, no auxiliary memory.
	TrackerFreeList TrackerKind = iota
	// TrackerStack keeps free slot references on an auxiliary stack. LIFO.
	TrackerStack
	// TrackerBitmap keeps one bit per slot and a per-segment scan cursor. Next-fit.
	TrackerBitmap
)

func (k TrackerKind) String() string {
	switch k {
	case TrackerFreeList:
		return "freelist"
	case TrackerStack:
		return "stack"
	case TrackerBitmap:
		return "bitmap"
	default:
		return fmt.Sprintf("TrackerKind(%d)", uint8(k))
	}
}

// ParseTrackerKind parses "freelist", "stack" or "bitmap".
func ParseTrackerKind(s string) (TrackerKind, error) {
	switch strings.ToLower(s) {
	case "", "freelist", "list":
		return TrackerFreeList, nil
	case "stack":
		return TrackerStack, nil
	case "bitmap":
		return TrackerBitmap, nil
	}
	return 0, fmt.Errorf("slab: unknown tracker %q", s)
}

// ReuseOrder documents which free slot a tracker hands back first.
type ReuseOrder uint8

const (
	// ReuseLIFO returns the most recently freed slot first.
	ReuseLIFO ReuseOrder = iota
	// ReuseNextFit returns the first free slot at or after the segment's scan
	// cursor, visiting segments in creation order and wrapping within a segment.
	ReuseNextFit
)

func (o ReuseOrder) String() string {
	switch o {
	case ReuseLIFO:
		return "lifo"
	case ReuseNextFit:
		return "next-fit"
	default:
		return fmt.Sprintf("ReuseOrder(%d)", uint8(o))
	}
}

// Tracker remembers which previously used slots are available for reuse.
//
// Implementations:
//   - FreeList: intrusive chain, O(1)
//   - FreeStack: auxiliary stack, O(1)
//   - Bitmap: per-segment bitmap, O(1) amortized, O(capacity) worst case
type Tracker interface {
	// Take removes and returns a free slot, or false when none is tracked.
	Take() (Ref, bool)

	// Give records r as free. r must not already be tracked.
	Give(r Ref)

	// Grow is called after a segment of the given capacity was appended.
	Grow(capacity int)

	// Reset forgets every tracked slot and segment.
	Reset()

	// Len returns the number of tracked free slots.
	Len() int

	// Order returns the reuse-order guarantee.
	Order() ReuseOrder

	// Kind returns the strategy identifier.
	Kind() TrackerKind
}

// Linker stores free-chain links for the FreeList tracker.
type Linker interface {
	Link(r Ref) Ref
	SetLink(r, next Ref)
}

func newTracker(k TrackerKind, links Linker) (Tracker, error) {
	switch k {
	case TrackerFreeList:
		return NewFreeList(links), nil
	case TrackerStack:
		return NewFreeStack(), nil
	case TrackerBitmap:
		return NewBitmap(), nil
	}
	return nil, fmt.Errorf("slab: unknown tracker %v", k)
}
