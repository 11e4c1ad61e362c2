package pool

// Resetter is implemented by pooled types that release state before their
// slot is returned. Recycle calls Reset while the value is still intact.
type Resetter interface {
	Reset()
}

// Recyclable is embedded in pooled types to track whether a value was handed
// back. The flag is informational: Recycle does not refuse a second call
// unless the pool runs with Config.Checked, in which case it panics. Callers
// that may recycle twice check IsRecycled first.
type Recyclable struct {
	recycled bool
}

// IsRecycled reports whether the value was returned with Recycle and not
// handed out again.
func (r *Recyclable) IsRecycled() bool { return r.recycled }

func (r *Recyclable) setRecycled(v bool) { r.recycled = v }

type recycler interface {
	setRecycled(bool)
}

// Create allocates a value from p and marks it in use.
func Create[T any](p *Pool[T], init func(*T) error) (*T, error) {
	v, err := p.Allocate(init)
	if err != nil {
		return nil, err
	}
	if rc, ok := any(v).(recycler); ok {
		rc.setRecycled(false)
	}
	return v, nil
}

// Recycle runs v's Reset hook, returns v to p and marks it recycled.
// A nil v is ignored.
func Recycle[T any](p *Pool[T], v *T) {
	if v == nil {
		return
	}
	if rs, ok := any(v).(Resetter); ok {
		rs.Reset()
	}
	p.deallocateFunc(v, func(v *T) {
		if rc, ok := any(v).(recycler); ok {
			rc.setRecycled(true)
		}
	})
}
