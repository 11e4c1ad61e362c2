//go:build !unix && !windows

package pagemem

import (
	"os"
	"unsafe"
)

// Size returns the OS page size in bytes.
func Size() int {
	if ps := os.Getpagesize(); ps > 0 {
		return ps
	}
	return DefaultPageSize
}

// mapAnon falls back to an over-allocated heap buffer trimmed to a page boundary.
func mapAnon(n int) ([]byte, func() error, error) {
	ps := Size()
	buf := make([]byte, n+ps)
	off := 0
	if r := int(uintptr(unsafe.Pointer(&buf[0])) % uintptr(ps)); r != 0 {
		off = ps - r
	}
	return buf[off : off+n : off+n], func() error { return nil }, nil
}
