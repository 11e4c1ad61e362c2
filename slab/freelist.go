package slab

// FreeList is an intrusive LIFO free list. Each free slot's link field points
// at the previously freed slot; the tracker itself holds only the head.
type FreeList struct {
	links Linker
	head  Ref
	n     int
}

// NewFreeList returns an empty free list storing its links in links.
func NewFreeList(links Linker) *FreeList {
	return &FreeList{links: links, head: NoRef}
}

func (f *FreeList) Take() (Ref, bool) {
	r := f.head
	if r == NoRef {
		return NoRef, false
	}
	f.head = f.links.Link(r)
	f.links.SetLink(r, NoRef)
	f.n--
	return r, true
}

func (f *FreeList) Give(r Ref) {
	f.links.SetLink(r, f.head)
	f.head = r
	f.n++
}

func (f *FreeList) Grow(int) {}

func (f *FreeList) Reset() {
	f.head = NoRef
	f.n = 0
}

func (f *FreeList) Len() int          { return f.n }
func (f *FreeList) Order() ReuseOrder { return ReuseLIFO }
func (f *FreeList) Kind() TrackerKind { return TrackerFreeList }

var _ Tracker = (*FreeList)(nil)
