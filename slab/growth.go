package slab

import (
	"math"

	"github.com/joshuapare/segpool/internal/align"
)

// nextPages returns the page count of the segment following one of prev
// pages. A prev of zero means no segment exists yet and yields base.
// Factors at or below 1 give linear growth of one base unit per segment.
func nextPages(prev, base int, factor float64) int {
	if prev == 0 {
		return base
	}
	pages := prev + base
	if factor > 1 {
		g := math.Ceil(float64(prev) * factor)
		if g >= float64(math.MaxInt-base) {
			return math.MaxInt - math.MaxInt%base
		}
		pages = max(pages, int(g))
	}
	return align.Up(pages, base)
}
