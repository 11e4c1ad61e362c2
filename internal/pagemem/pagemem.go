// Package pagemem discovers the OS page size and reserves page-aligned
// anonymous memory outside the Go heap.
//
// Memory returned by Map is invisible to the garbage collector: it must only
// hold pointer-free data and must be released exactly once through the
// returned release function.
package pagemem

import (
	"errors"
	"fmt"
)

// DefaultPageSize is reported when the platform query fails.
const DefaultPageSize = 4096

// ErrSize indicates a mapping request that is not a positive multiple of the page size.
var ErrSize = errors.New("pagemem: size must be a positive multiple of the page size")

// Map reserves n bytes of zeroed, page-aligned, read-write memory.
// n must be a positive multiple of Size(). The release function is idempotent.
func Map(n int) ([]byte, func() error, error) {
	ps := Size()
	if n <= 0 || n%ps != 0 {
		return nil, nil, fmt.Errorf("%w (n=%d, page=%d)", ErrSize, n, ps)
	}
	return mapAnon(n)
}
