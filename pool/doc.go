// Package pool provides a guarded, per-type object pool on top of the slab
// engine.
//
// # Overview
//
// A Pool[T] reserves page-multiple segments, carves them into fixed-size
// slots and recycles freed slots, so steady-state allocation never reaches the
// Go allocator. See package slab for the sizing and growth rules.
//
// # Usage Example
//
//	reg := pool.NewRegistry(pool.DefaultOptions())
//	orders, err := pool.Get[Order](reg)
//	if err != nil {
//	    return err
//	}
//
//	o, err := orders.Allocate(func(o *Order) error {
//	    o.ID = id
//	    return nil
//	})
//	if err != nil {
//	    return err
//	}
//	defer orders.Deallocate(o)
//
// # Concurrency
//
// Every Pool method runs under the pool's guard, chosen by Options.Sync:
//
//   - SyncSpin (default): busy-wait spin lock, for short critical sections
//   - SyncMutex: sync.Mutex, fair under heavy contention
//   - SyncNone: no locking, single goroutine only
//
// Options.Locker plugs in any other sync.Locker. The guard is not reentrant:
// calling back into the same guarded pool from an init function or a Range
// callback deadlocks. Unguarded pools (SyncNone) accept nested Allocate calls
// from init.
//
// Callers that already synchronize externally can use Unsafe to reach the
// unguarded engine directly.
//
// # Registry
//
// A Registry owns at most one Pool per element type and creates it lazily on
// first use. Applications construct one registry at startup and pass it to the
// components that allocate.
//
// # Recyclable Objects
//
// Types embedding Recyclable get an IsRecycled flag, and types implementing
// Resetter get their Reset hook run by Recycle before the slot is released.
package pool
