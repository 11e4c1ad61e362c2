package pool

import (
	"errors"

	"github.com/joshuapare/segpool/slab"
)

var (
	// ErrAlreadyRegistered indicates a second Register for the same element type.
	ErrAlreadyRegistered = errors.New("pool: type already registered")

	// ErrInvalidLayout indicates an unusable size, alignment or page configuration.
	ErrInvalidLayout = slab.ErrInvalidLayout

	// ErrPointerType indicates a type with pointers on a backing that cannot hold them.
	ErrPointerType = slab.ErrPointerType

	// ErrExhausted indicates that a new segment could not be reserved.
	ErrExhausted = slab.ErrExhausted

	// ErrConstruct wraps an error returned by an init function.
	ErrConstruct = slab.ErrConstruct

	// ErrForeignPointer indicates a pointer not owned by the pool.
	ErrForeignPointer = slab.ErrForeignPointer

	// ErrDoubleFree indicates a deallocation of a slot that is not live.
	ErrDoubleFree = slab.ErrDoubleFree

	// ErrClosed indicates use of a pool after Close.
	ErrClosed = slab.ErrClosed
)
