package slab

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"
)

const testPageSize = 4096

// record24 is 24 bytes with 8-byte alignment.
type record24 struct {
	ID    uint64
	Price int64
	Qty   uint32
	Side  uint8
}

// small is pointer-free and narrower than a pointer.
type small struct {
	V int32
}

// named holds pointers and must stay on the Go heap.
type named struct {
	Name string
	Tags []string
	N    int
}

type empty struct{}

// newTestEngine creates an engine with a fixed 4KB page size.
func newTestEngine[T any](t testing.TB, cfg Config) *Engine[T] {
	t.Helper()
	if cfg.PageSize == 0 {
		cfg.PageSize = testPageSize
	}
	e, err := New[T](cfg)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = e.Clear()
	})
	return e
}

// allocN allocates n values and returns them in allocation order.
func allocN[T any](t testing.TB, e *Engine[T], n int) []*T {
	t.Helper()
	out := make([]*T, 0, n)
	for range n {
		p, err := e.Allocate(nil)
		require.NoError(t, err)
		out = append(out, p)
	}
	return out
}

func addr[T any](p *T) uintptr {
	return uintptr(unsafe.Pointer(p))
}

// refOf returns the slot reference of p, failing the test if p is foreign.
func refOf[T any](t testing.TB, e *Engine[T], p *T) Ref {
	t.Helper()
	r, ok := e.RefOf(p)
	require.True(t, ok, "pointer %#x not owned by engine", addr(p))
	return r
}
