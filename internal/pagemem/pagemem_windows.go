//go:build windows

package pagemem

import (
	"fmt"
	"sync"
	"unsafe"

	"golang.org/x/sys/windows"
)

var pageSize = sync.OnceValue(func() int {
	if ps := windows.Getpagesize(); ps > 0 {
		return ps
	}
	return DefaultPageSize
})

// Size returns the OS page size in bytes.
func Size() int { return pageSize() }

func mapAnon(n int) ([]byte, func() error, error) {
	addr, err := windows.VirtualAlloc(0, uintptr(n), windows.MEM_COMMIT|windows.MEM_RESERVE, windows.PAGE_READWRITE)
	if err != nil {
		return nil, nil, fmt.Errorf("pagemem: VirtualAlloc %d bytes: %w", n, err)
	}
	data := unsafe.Slice((*byte)(unsafe.Pointer(addr)), n) //nolint:govet // address owned by VirtualAlloc
	var once sync.Once
	var rerr error
	release := func() error {
		once.Do(func() {
			rerr = windows.VirtualFree(addr, 0, windows.MEM_RELEASE)
		})
		return rerr
	}
	return data, release, nil
}
