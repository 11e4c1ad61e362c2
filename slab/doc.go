// Package slab implements a segmented, fixed-type slab allocator engine.
//
// # Overview
//
// An Engine hands out and reclaims values of a single type T. Memory is
// reserved in large page-multiple segments which are subdivided into
// fixed-size slots, so allocation is O(1) amortized and consecutive
// allocations are contiguous in memory.
//
// # Slot Sizing
//
// The slot size is sizeof(T) raised to at least one pointer width and rounded
// up to alignof(T). The base segment length is the smallest page count whose
// byte length divides evenly into slots:
//
//	SlotSize  = Up(max(sizeof(T), PointerWidth), alignof(T))
//	BasePages = lcm(PageSize, SlotSize) / PageSize
//
// For a 24-byte, 8-aligned type and 4KB pages this gives 3 pages (12288
// bytes) holding exactly 512 slots.
//
// # Segment Growth
//
// The first segment uses BasePages. Every later segment uses
//
//	max(prev + BasePages, ceil(prev * GrowthFactor))
//
// rounded up to a multiple of BasePages. A GrowthFactor of 1 gives linear
// growth; larger values give geometric growth. Segments are never removed
// individually; Clear releases all of them at once.
//
// # Free-Slot Trackers
//
// Freed slots are remembered by one of three strategies:
//
//   - TrackerFreeList: a chain threaded through the segment slot tables (LIFO)
//   - TrackerStack: an auxiliary stack of slot references (LIFO)
//   - TrackerBitmap: a per-segment bitmap with a scan cursor (next-fit)
//
// # Slot States
//
// Every slot is tagged Uninit, Live or Free. A slot only becomes Live after
// the caller's init function returns successfully; on error or panic the slot
// goes back to exactly where it was taken from.
//
// # Backings
//
// BackingHeap reserves segments on the Go heap, typed as []T whenever the slot
// size equals sizeof(T). BackingPages reserves anonymous page-aligned mappings
// outside the Go heap and is only accepted for pointer-free types.
//
// # Thread Safety
//
// Engine instances are not thread-safe. Callers must synchronize access
// externally or use the pool package, which wraps an Engine in a guard.
package slab
