package slab

import (
	"fmt"
	"math"
)

// Ref identifies one slot: a segment index and a slot index within it.
type Ref uint64

// NoRef is the empty slot reference.
const NoRef Ref = math.MaxUint64

// Ref limits. Both indexes must fit in 32 bits without colliding with NoRef.
const (
	MaxSegments        = math.MaxUint32 - 1
	MaxSlotsPerSegment = math.MaxUint32 - 1
)

// MakeRef packs a segment and slot index into a Ref. Indexes beyond
// MaxSegments or MaxSlotsPerSegment are truncated; the engine never creates them.
func MakeRef(segment, slot int) Ref {
	return Ref(uint64(uint32(segment))<<32 | uint64(uint32(slot)))
}

// Segment returns the segment index of r.
func (r Ref) Segment() int { return int(r >> 32) }

// Slot returns the slot index of r within its segment.
func (r Ref) Slot() int { return int(uint32(r)) }

func (r Ref) String() string {
	if r == NoRef {
		return "ref(none)"
	}
	return fmt.Sprintf("ref(%d:%d)", r.Segment(), r.Slot())
}

// SlotState is the lifecycle tag of a slot.
type SlotState uint8

const (
	// SlotUninit marks a slot that has never held a value.
	SlotUninit SlotState = iota
	// SlotLive marks a slot holding a value owned by a caller.
	SlotLive
	// SlotFree marks a slot that was released and is tracked for reuse.
	SlotFree
	// SlotPending marks a slot reserved by an Allocate whose init is running.
	SlotPending
)

func (s SlotState) String() string {
	switch s {
	case SlotUninit:
		return "uninit"
	case SlotLive:
		return "live"
	case SlotFree:
		return "free"
	case SlotPending:
		return "pending"
	default:
		return fmt.Sprintf("SlotState(%d)", uint8(s))
	}
}

// checkRefLimits returns ErrExhausted when a table of the given number of
// segments, the newest holding capacity slots, could not be indexed by Ref.
func checkRefLimits(segments, capacity int) error {
	if uint64(segments) > MaxSegments {
		return fmt.Errorf("%w: %d segments exceed the reference limit", ErrExhausted, segments)
	}
	if uint64(capacity) > MaxSlotsPerSegment {
		return fmt.Errorf("%w: segment of %d slots exceeds the reference limit of %d",
			ErrExhausted, capacity, MaxSlotsPerSegment)
	}
	return nil
}
