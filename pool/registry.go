package pool

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"sync"

	"github.com/joshuapare/segpool/slab"
)

// managed is the type-erased view of a Pool held by a Registry.
type managed interface {
	Stats() slab.Stats
	Clear() error
	Close() error
}

type entry struct {
	name string
	pool managed
}

// Registry owns at most one Pool per element type. Pools are created lazily
// with the registry's default options unless registered explicitly first.
type Registry struct {
	mu       sync.Mutex
	defaults Options
	pools    map[reflect.Type]entry
}

// NewRegistry returns an empty registry whose lazily created pools use defaults.
// defaults.Locker is ignored; every pool gets its own guard.
func NewRegistry(defaults Options) *Registry {
	defaults.Locker = nil
	return &Registry{
		defaults: defaults,
		pools:    make(map[reflect.Type]entry),
	}
}

// Get returns the pool for T, creating it with the registry defaults on first use.
func Get[T any](r *Registry) (*Pool[T], error) {
	key := reflect.TypeFor[T]()

	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.pools[key]; ok {
		return e.pool.(*Pool[T]), nil
	}
	p, err := New[T](r.defaults)
	if err != nil {
		return nil, fmt.Errorf("pool: create %s: %w", key, err)
	}
	r.pools[key] = entry{name: key.String(), pool: p}
	return p, nil
}

// MustGet is Get that panics on error.
func MustGet[T any](r *Registry) *Pool[T] {
	p, err := Get[T](r)
	if err != nil {
		panic(err)
	}
	return p
}

// Register creates the pool for T with custom options. It fails with
// ErrAlreadyRegistered if a pool for T exists.
func Register[T any](r *Registry, opts Options) (*Pool[T], error) {
	key := reflect.TypeFor[T]()

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.pools[key]; ok {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyRegistered, key)
	}
	p, err := New[T](opts)
	if err != nil {
		return nil, fmt.Errorf("pool: create %s: %w", key, err)
	}
	r.pools[key] = entry{name: key.String(), pool: p}
	return p, nil
}

// Len returns the number of pools.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pools)
}

// Names returns the element type names of all pools, sorted.
func (r *Registry) Names() []string {
	entries := r.entries()
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.name
	}
	return names
}

// Snapshot returns the statistics of every pool keyed by element type name.
func (r *Registry) Snapshot() map[string]slab.Stats {
	entries := r.entries()
	out := make(map[string]slab.Stats, len(entries))
	for _, e := range entries {
		out[e.name] = e.pool.Stats()
	}
	return out
}

// Clear clears every pool. Pools stay registered.
func (r *Registry) Clear() error {
	var errs []error
	for _, e := range r.entries() {
		if err := e.pool.Clear(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", e.name, err))
		}
	}
	return errors.Join(errs...)
}

// Close closes every pool and empties the registry.
func (r *Registry) Close() error {
	r.mu.Lock()
	pools := r.pools
	r.pools = make(map[reflect.Type]entry)
	r.mu.Unlock()

	var errs []error
	for _, e := range pools {
		if err := e.pool.Close(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", e.name, err))
		}
	}
	return errors.Join(errs...)
}

// entries copies the pool list so pool guards are never taken under r.mu.
func (r *Registry) entries() []entry {
	r.mu.Lock()
	out := make([]entry, 0, len(r.pools))
	for _, e := range r.pools {
		out = append(out, e)
	}
	r.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].name < out[j].name })
	return out
}
