package pool

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/segpool/slab"
)

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	r := NewRegistry(testOptions(SyncSpin))
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func TestRegistryGetIsLazyAndStable(t *testing.T) {
	r := newTestRegistry(t)
	require.Zero(t, r.Len())

	a, err := Get[order](r)
	require.NoError(t, err)
	b, err := Get[order](r)
	require.NoError(t, err)
	require.Same(t, a, b)

	m := MustGet[message](r)
	require.NotNil(t, m)
	require.Equal(t, 2, r.Len())
	require.Equal(t, []string{"pool.message", "pool.order"}, r.Names())
}

func TestRegistryConcurrentGet(t *testing.T) {
	r := newTestRegistry(t)

	const workers = 16
	got := make([]*Pool[order], workers)
	var wg sync.WaitGroup
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got[i] = MustGet[order](r)
		}()
	}
	wg.Wait()

	for _, p := range got[1:] {
		require.Same(t, got[0], p)
	}
	require.Equal(t, 1, r.Len())
}

func TestRegistryRegister(t *testing.T) {
	r := newTestRegistry(t)

	opts := testOptions(SyncMutex)
	opts.Tracker = slab.TrackerBitmap
	p, err := Register[order](r, opts)
	require.NoError(t, err)
	require.Equal(t, SyncMutex, p.SyncMode())

	same, err := Get[order](r)
	require.NoError(t, err)
	require.Same(t, p, same)
	require.Equal(t, slab.TrackerBitmap, same.Stats().Tracker)

	_, err = Register[order](r, opts)
	require.ErrorIs(t, err, ErrAlreadyRegistered)
}

func TestRegistryRegisterInvalid(t *testing.T) {
	r := newTestRegistry(t)
	opts := testOptions(SyncSpin)
	opts.Backing = slab.BackingPages

	_, err := Register[message](r, opts)
	require.ErrorIs(t, err, ErrPointerType)
	require.Zero(t, r.Len(), "failed registration leaves no entry")
}

func TestRegistryGetUsesDefaults(t *testing.T) {
	defaults := testOptions(SyncNone)
	defaults.Locker = new(sync.Mutex)
	r := NewRegistry(defaults)
	t.Cleanup(func() { _ = r.Close() })

	a := MustGet[order](r)
	b := MustGet[message](r)
	assert.Equal(t, SyncNone, a.SyncMode())
	assert.IsType(t, noLock{}, a.mu)
	assert.IsType(t, noLock{}, b.mu)
}

func TestRegistrySnapshotAndClear(t *testing.T) {
	r := newTestRegistry(t)
	orders := MustGet[order](r)
	msgs := MustGet[message](r)

	for range 3 {
		_, err := orders.Allocate(nil)
		require.NoError(t, err)
	}
	_, err := msgs.Allocate(nil)
	require.NoError(t, err)

	snap := r.Snapshot()
	require.Len(t, snap, 2)
	assert.Equal(t, 3, snap["pool.order"].Live)
	assert.Equal(t, 1, snap["pool.message"].Live)

	require.NoError(t, r.Clear())
	assert.Equal(t, 2, r.Len())
	assert.Zero(t, orders.Live())
	assert.Zero(t, msgs.Segments())
}

func TestRegistryClose(t *testing.T) {
	r := NewRegistry(testOptions(SyncSpin))
	p := MustGet[order](r)

	require.NoError(t, r.Close())
	require.Zero(t, r.Len())

	_, err := p.Allocate(nil)
	require.ErrorIs(t, err, ErrClosed)

	fresh := MustGet[order](r)
	require.NotSame(t, p, fresh)
	require.NoError(t, r.Close())
}
