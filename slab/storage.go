package slab

import (
	"fmt"
	"reflect"
	"strings"
	"unsafe"

	"github.com/joshuapare/segpool/internal/align"
	"github.com/joshuapare/segpool/internal/pagemem"
)

// Backing selects where segment memory comes from.
type Backing uint8

const (
	// BackingHeap reserves segments on the Go heap.
	BackingHeap Backing = iota
	// BackingPages reserves anonymous page-aligned OS mappings. Pointer-free types only.
	BackingPages
)

func (b Backing) String() string {
	switch b {
	case BackingHeap:
		return "heap"
	case BackingPages:
		return "pages"
	default:
		return fmt.Sprintf("Backing(%d)", uint8(b))
	}
}

// ParseBacking parses "heap" or "pages".
func ParseBacking(s string) (Backing, error) {
	switch strings.ToLower(s) {
	case "", "heap":
		return BackingHeap, nil
	case "pages", "mmap":
		return BackingPages, nil
	}
	return 0, fmt.Errorf("slab: unknown backing %q", s)
}

// region is one reserved block of segment memory.
type region struct {
	base    unsafe.Pointer
	keep    any          // Go value holding the memory alive, nil for OS mappings
	release func() error // nil for heap memory
}

// reserver reserves a block of exactly n bytes.
type reserver func(n int) (region, error)

// typedHeap backs segments with []T. Only valid when sizeof(T) equals the slot size.
func typedHeap[T any](slotSize int) reserver {
	return func(n int) (region, error) {
		s := make([]T, n/slotSize)
		return region{base: unsafe.Pointer(unsafe.SliceData(s)), keep: s}, nil
	}
}

// rawHeap backs segments with a byte buffer aligned to alignment.
// Only valid for pointer-free element types.
func rawHeap(alignment int) reserver {
	return func(n int) (region, error) {
		buf := make([]byte, n+alignment-1)
		p := unsafe.Pointer(unsafe.SliceData(buf))
		off := align.Up(int(uintptr(p)), alignment) - int(uintptr(p))
		return region{base: unsafe.Add(p, off), keep: buf}, nil
	}
}

// osPages backs segments with anonymous mappings rounded up to the OS page size.
func osPages() reserver {
	return func(n int) (region, error) {
		data, release, err := pagemem.Map(align.UpPow2(n, pagemem.Size()))
		if err != nil {
			return region{}, err
		}
		return region{base: unsafe.Pointer(unsafe.SliceData(data)), release: release}, nil
	}
}

// newReserver picks the reservation strategy for T.
func newReserver[T any](b Backing, l Layout) (reserver, error) {
	ptrs := hasPointers(reflect.TypeFor[T]())
	switch b {
	case BackingHeap:
		if l.SlotSize == l.Size {
			return typedHeap[T](l.SlotSize), nil
		}
		if ptrs {
			return nil, fmt.Errorf("%w: slot size %d differs from size %d", ErrInvalidLayout, l.SlotSize, l.Size)
		}
		return rawHeap(l.Align), nil
	case BackingPages:
		if ptrs {
			return nil, fmt.Errorf("%w: %s", ErrPointerType, reflect.TypeFor[T]())
		}
		return osPages(), nil
	}
	return nil, fmt.Errorf("slab: unknown backing %v", b)
}

// hasPointers reports whether values of t contain anything the garbage
// collector must trace.
func hasPointers(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Pointer, reflect.UnsafePointer, reflect.Map, reflect.Slice,
		reflect.String, reflect.Chan, reflect.Func, reflect.Interface:
		return true
	case reflect.Array:
		return t.Len() > 0 && hasPointers(t.Elem())
	case reflect.Struct:
		for i := range t.NumField() {
			if hasPointers(t.Field(i).Type) {
				return true
			}
		}
		return false
	default:
		return false
	}
}
