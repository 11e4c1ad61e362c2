package slab

// FreeStack keeps free slot references on an auxiliary stack, leaving slot
// memory and link fields untouched after release.
type FreeStack struct {
	refs []Ref
}

// NewFreeStack returns an empty stack tracker.
func NewFreeStack() *FreeStack {
	return &FreeStack{}
}

func (s *FreeStack) Take() (Ref, bool) {
	n := len(s.refs)
	if n == 0 {
		return NoRef, false
	}
	r := s.refs[n-1]
	s.refs = s.refs[:n-1]
	return r, true
}

func (s *FreeStack) Give(r Ref) {
	s.refs = append(s.refs, r)
}

func (s *FreeStack) Grow(int) {}

// Reset empties the stack and drops its backing array.
func (s *FreeStack) Reset() {
	s.refs = nil
}

func (s *FreeStack) Len() int          { return len(s.refs) }
func (s *FreeStack) Order() ReuseOrder { return ReuseLIFO }
func (s *FreeStack) Kind() TrackerKind { return TrackerStack }

var _ Tracker = (*FreeStack)(nil)
