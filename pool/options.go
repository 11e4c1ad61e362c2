package pool

import (
	"sync"

	"github.com/joshuapare/segpool/slab"
)

// Options controls pool construction.
type Options struct {
	// Config is the engine configuration: segment sizing, growth, tracker,
	// backing, limits and logging.
	slab.Config

	// Sync selects the guard. Default: SyncSpin.
	Sync SyncMode

	// Locker replaces the guard selected by Sync. The pool owns it and it must
	// not be shared with other pools.
	Locker sync.Locker
}

// DefaultOptions returns spin-guarded pools with the default engine configuration.
func DefaultOptions() Options {
	return Options{Config: slab.DefaultConfig(), Sync: SyncSpin}
}
