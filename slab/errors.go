package slab

import "errors"

var (
	// ErrInvalidLayout indicates slot or segment geometry that cannot be satisfied.
	ErrInvalidLayout = errors.New("slab: invalid layout")

	// ErrPointerType indicates a page-backed engine was requested for a type containing pointers.
	ErrPointerType = errors.New("slab: type contains pointers and cannot live outside the Go heap")

	// ErrExhausted indicates that a new segment could not be reserved.
	ErrExhausted = errors.New("slab: segment reservation failed")

	// ErrConstruct wraps an error returned by an init function during Allocate.
	ErrConstruct = errors.New("slab: init failed")

	// ErrForeignPointer indicates a pointer that does not address a slot of this engine.
	ErrForeignPointer = errors.New("slab: pointer not owned by this pool")

	// ErrDoubleFree indicates a deallocation of a slot that is not live.
	ErrDoubleFree = errors.New("slab: slot is not live")

	// ErrClosed indicates use of an engine after Close.
	ErrClosed = errors.New("slab: pool closed")
)
