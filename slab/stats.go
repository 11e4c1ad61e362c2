package slab

// Stats is a snapshot of engine occupancy and cumulative counters.
type Stats struct {
	Live          int // slots holding a value
	Free          int // slots tracked for reuse
	Segments      int
	CapacityTotal int // slots across all segments
	BytesReserved int // bytes across all segments

	Allocs      uint64 // successful Allocate calls
	Deallocs    uint64 // Deallocate calls that released a slot
	Reused      uint64 // allocations served by the tracker
	TailHits    uint64 // allocations served from an uninitialized tail
	Growths     uint64 // segments added
	FailedInits uint64 // allocations rolled back after init failed

	Tracker TrackerKind
	Order   ReuseOrder
	Backing Backing
}

// Uninitialized returns the number of slots never handed out.
func (s Stats) Uninitialized() int {
	return s.CapacityTotal - s.Live - s.Free
}

// Utilization returns Live / CapacityTotal, or 0 for an empty engine.
func (s Stats) Utilization() float64 {
	if s.CapacityTotal == 0 {
		return 0
	}
	return float64(s.Live) / float64(s.CapacityTotal)
}
