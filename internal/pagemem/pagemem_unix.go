//go:build unix

package pagemem

import (
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sys/unix"
)

var pageSize = sync.OnceValue(func() int {
	if ps := unix.Getpagesize(); ps > 0 {
		return ps
	}
	return DefaultPageSize
})

// Size returns the OS page size in bytes.
func Size() int { return pageSize() }

func mapAnon(n int) ([]byte, func() error, error) {
	data, err := unix.Mmap(-1, 0, n, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, nil, fmt.Errorf("pagemem: mmap %d bytes: %w", n, err)
	}
	var once sync.Once
	var rerr error
	release := func() error {
		once.Do(func() {
			rerr = unix.Munmap(data)
			if errors.Is(rerr, unix.EINVAL) {
				// Treat double-unmap as no-op for callers.
				rerr = nil
			}
		})
		return rerr
	}
	return data, release, nil
}
