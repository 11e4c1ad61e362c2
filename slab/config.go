package slab

import "log/slog"

// Config controls engine construction. The zero value is valid: OS page size,
// minimum fragmentation-free segments, linear growth, free-list tracker, Go
// heap backing, no size limit.
type Config struct {
	// MinPagesPerSegment raises the base segment to at least this many pages.
	// The result stays a multiple of the fragmentation-free page count.
	MinPagesPerSegment int

	// GrowthFactor scales each new segment relative to the previous one.
	// Values at or below 1 give linear growth (one base unit per segment).
	GrowthFactor float64

	// Tracker selects the free-slot reclamation strategy.
	Tracker TrackerKind

	// Backing selects where segment memory comes from.
	Backing Backing

	// PageSize overrides the OS page size. Must be a power of two.
	// If 0, the OS page size is used.
	PageSize int

	// MaxBytes bounds the total bytes reserved across all segments.
	// If 0, growth is unbounded.
	MaxBytes int

	// Checked makes Deallocate validate its argument and panic on foreign
	// pointers and double frees.
	Checked bool

	// Logger receives segment growth and teardown events at debug level.
	// If nil, logging is discarded.
	Logger *slog.Logger
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{GrowthFactor: 1.0}
}
