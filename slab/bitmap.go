package slab

import (
	"math/bits"

	"github.com/joshuapare/segpool/internal/align"
)

// bitmapSegment tracks the free slots of one segment.
type bitmapSegment struct {
	words    []uint64
	capacity int
	free     int
	cursor   int // index of the last slot handed out
}

// Bitmap marks free slots with one bit each. Take scans segments in creation
// order, each from its cursor forward and then wrapping to the start. Give
// never moves the cursor back, so frees behind the cursor are found only after
// the scan wraps.
type Bitmap struct {
	segs []bitmapSegment
	free int
}

// NewBitmap returns an empty bitmap tracker.
func NewBitmap() *Bitmap {
	return &Bitmap{}
}

func (b *Bitmap) Take() (Ref, bool) {
	if b.free == 0 {
		return NoRef, false
	}
	for si := range b.segs {
		s := &b.segs[si]
		if s.free == 0 {
			continue
		}
		i, ok := s.scan()
		if !ok {
			continue
		}
		s.words[i>>6] &^= 1 << (i & 63)
		s.free--
		s.cursor = i
		b.free--
		return MakeRef(si, i), true
	}
	return NoRef, false
}

func (b *Bitmap) Give(r Ref) {
	s := &b.segs[r.Segment()]
	i := r.Slot()
	s.words[i>>6] |= 1 << (i & 63)
	s.free++
	b.free++
}

func (b *Bitmap) Grow(capacity int) {
	b.segs = append(b.segs, bitmapSegment{
		words:    make([]uint64, align.CeilDiv(capacity, 64)),
		capacity: capacity,
	})
}

func (b *Bitmap) Reset() {
	b.segs = nil
	b.free = 0
}

func (b *Bitmap) Len() int          { return b.free }
func (b *Bitmap) Order() ReuseOrder { return ReuseNextFit }
func (b *Bitmap) Kind() TrackerKind { return TrackerBitmap }

// IsFree reports whether r is currently tracked as free.
func (b *Bitmap) IsFree(r Ref) bool {
	if r.Segment() >= len(b.segs) {
		return false
	}
	s := &b.segs[r.Segment()]
	i := r.Slot()
	return i < s.capacity && s.words[i>>6]&(1<<(i&63)) != 0
}

func (s *bitmapSegment) scan() (int, bool) {
	if i, ok := s.scanRange(s.cursor, s.capacity); ok {
		return i, true
	}
	return s.scanRange(0, s.cursor)
}

// scanRange returns the first set bit in [from, to).
func (s *bitmapSegment) scanRange(from, to int) (int, bool) {
	for from < to {
		w := from >> 6
		word := s.words[w] >> (from & 63)
		if word != 0 {
			i := from + bits.TrailingZeros64(word)
			if i < to {
				return i, true
			}
			return 0, false
		}
		from = (w + 1) << 6
	}
	return 0, false
}

var _ Tracker = (*Bitmap)(nil)
