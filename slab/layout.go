package slab

import (
	"fmt"
	"math"
	"unsafe"

	"github.com/joshuapare/segpool/internal/align"
)

// Layout describes slot and segment geometry for one element type.
type Layout struct {
	Size         int // sizeof(T)
	Align        int // alignof(T)
	SlotSize     int // bytes per slot
	PageSize     int // bytes per page
	BasePages    int // pages in the first segment; all segments are multiples of it
	SlotsPerBase int // slots in a BasePages segment
}

// ComputeLayout derives slot and segment geometry from a type's size and
// alignment and the page size. minPages raises BasePages to the smallest
// multiple of the fragmentation-free page count that is at least minPages.
// A minPages of zero keeps the minimum.
func ComputeLayout(size, alignment, pageSize, minPages int) (Layout, error) {
	switch {
	case size < 0:
		return Layout{}, fmt.Errorf("%w: negative size %d", ErrInvalidLayout, size)
	case !align.IsPow2(alignment):
		return Layout{}, fmt.Errorf("%w: alignment %d is not a power of two", ErrInvalidLayout, alignment)
	case !align.IsPow2(pageSize):
		return Layout{}, fmt.Errorf("%w: page size %d is not a power of two", ErrInvalidLayout, pageSize)
	case minPages < 0:
		return Layout{}, fmt.Errorf("%w: negative minimum page count %d", ErrInvalidLayout, minPages)
	}

	slot := align.Up(max(size, align.PointerWidth), alignment)
	l, ok := align.LCM(pageSize, slot)
	if !ok {
		return Layout{}, fmt.Errorf("%w: lcm(%d, %d) overflows", ErrInvalidLayout, pageSize, slot)
	}
	base := l / pageSize
	if minPages > 0 {
		k := align.CeilDiv(minPages, base)
		if base > math.MaxInt/k {
			return Layout{}, fmt.Errorf("%w: %d minimum pages overflows", ErrInvalidLayout, minPages)
		}
		base *= k
	}
	if base > math.MaxInt/pageSize {
		return Layout{}, fmt.Errorf("%w: %d pages of %d bytes overflows", ErrInvalidLayout, base, pageSize)
	}

	return Layout{
		Size:         size,
		Align:        alignment,
		SlotSize:     slot,
		PageSize:     pageSize,
		BasePages:    base,
		SlotsPerBase: base * pageSize / slot,
	}, nil
}

// LayoutOf computes the Layout for T.
func LayoutOf[T any](pageSize, minPages int) (Layout, error) {
	var zero T
	return ComputeLayout(int(unsafe.Sizeof(zero)), int(unsafe.Alignof(zero)), pageSize, minPages)
}

// Bytes returns the byte length of a segment of the given page count.
func (l Layout) Bytes(pages int) int {
	return pages * l.PageSize
}

// Capacity returns the number of slots in a segment of the given page count.
func (l Layout) Capacity(pages int) int {
	return pages * l.PageSize / l.SlotSize
}

// Plan returns the page counts of the first n segments under the given growth factor.
func (l Layout) Plan(n int, factor float64) []int {
	plan := make([]int, 0, n)
	prev := 0
	for range n {
		prev = nextPages(prev, l.BasePages, factor)
		plan = append(plan, prev)
	}
	return plan
}

// String returns a compact description of the layout.
func (l Layout) String() string {
	return fmt.Sprintf("slot=%dB page=%dB base=%dpages (%d slots)",
		l.SlotSize, l.PageSize, l.BasePages, l.SlotsPerBase)
}
