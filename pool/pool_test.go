package pool

import (
	"errors"
	"sync"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/segpool/slab"
)

type order struct {
	ID    uint64
	Price int64
	Qty   uint32
	Side  uint8
}

type message struct {
	Topic string
	Body  []byte
	Seq   uint64
}

func testOptions(mode SyncMode) Options {
	opts := DefaultOptions()
	opts.PageSize = 4096
	opts.Sync = mode
	return opts
}

func newTestPool[T any](t testing.TB, opts Options) *Pool[T] {
	t.Helper()
	p, err := New[T](opts)
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close() })
	return p
}

func TestPoolBasics(t *testing.T) {
	for _, mode := range []SyncMode{SyncSpin, SyncMutex, SyncNone} {
		t.Run(mode.String(), func(t *testing.T) {
			p := newTestPool[order](t, testOptions(mode))
			require.Equal(t, mode, p.SyncMode())
			require.Zero(t, p.Segments(), "no memory before first allocate")

			o, err := p.Allocate(func(o *order) error {
				o.ID = 7
				return nil
			})
			require.NoError(t, err)
			require.Equal(t, uint64(7), o.ID)
			require.Equal(t, 1, p.Live())
			require.Equal(t, 1, p.Segments())
			require.Equal(t, 512, p.CapacityTotal())
			require.True(t, p.Contains(o))

			p.Deallocate(o)
			p.Deallocate(nil)
			require.Zero(t, p.Live())
			require.False(t, p.Contains(o))
		})
	}
}

func TestPoolScenario(t *testing.T) {
	p := newTestPool[order](t, testOptions(SyncSpin))
	for range 513 {
		_, err := p.Allocate(nil)
		require.NoError(t, err)
	}
	require.Equal(t, 2, p.Segments())
	require.Equal(t, 512+p.SegmentInfos()[1].Capacity, p.CapacityTotal())

	st := p.Stats()
	require.Equal(t, 513, st.Live)
	require.Equal(t, uint64(2), st.Growths)
	require.Equal(t, slab.TrackerFreeList, st.Tracker)
}

func TestPoolLIFOReuse(t *testing.T) {
	p := newTestPool[order](t, testOptions(SyncMutex))
	a, _ := p.Allocate(nil)
	b, _ := p.Allocate(nil)

	p.Deallocate(a)
	p.Deallocate(b)

	got, err := p.Allocate(nil)
	require.NoError(t, err)
	require.Same(t, b, got)
}

func TestPoolConstructFailure(t *testing.T) {
	p := newTestPool[order](t, testOptions(SyncSpin))
	errInit := errors.New("rejected")

	_, err := p.Allocate(func(*order) error { return errInit })
	require.ErrorIs(t, err, ErrConstruct)
	require.ErrorIs(t, err, errInit)
	require.Zero(t, p.Live())

	// The guard was released.
	_, err = p.Allocate(nil)
	require.NoError(t, err)
}

func TestPoolPanicReleasesGuard(t *testing.T) {
	p := newTestPool[order](t, testOptions(SyncSpin))
	require.Panics(t, func() {
		_, _ = p.Allocate(func(*order) error { panic("init") })
	})
	_, err := p.Allocate(nil)
	require.NoError(t, err)
	require.Equal(t, 1, p.Live())
}

func TestPoolUnguardedNestedAllocate(t *testing.T) {
	p := newTestPool[order](t, testOptions(SyncNone))

	var inner *order
	outer, err := p.Allocate(func(o *order) error {
		o.ID = 1
		var err error
		inner, err = p.Allocate(func(o *order) error {
			o.ID = 2
			return nil
		})
		return err
	})
	require.NoError(t, err)
	require.NotSame(t, outer, inner)
	require.Equal(t, uint64(1), outer.ID)
	require.Equal(t, uint64(2), inner.ID)
	require.Equal(t, 2, p.Live())
}

func TestPoolDeallocateChecked(t *testing.T) {
	p := newTestPool[order](t, testOptions(SyncSpin))
	o, _ := p.Allocate(nil)
	require.NoError(t, p.DeallocateChecked(o))
	require.ErrorIs(t, p.DeallocateChecked(o), ErrDoubleFree)
	require.ErrorIs(t, p.DeallocateChecked(&order{}), ErrForeignPointer)
}

func TestPoolClear(t *testing.T) {
	p := newTestPool[order](t, testOptions(SyncSpin))
	for range 2000 {
		_, err := p.Allocate(nil)
		require.NoError(t, err)
	}
	require.NoError(t, p.Clear())
	require.Zero(t, p.Live())
	require.Zero(t, p.Segments())

	_, err := p.Allocate(nil)
	require.NoError(t, err)
	require.Equal(t, p.Layout().BasePages, p.SegmentInfos()[0].Pages)
}

func TestPoolClose(t *testing.T) {
	p := newTestPool[order](t, testOptions(SyncSpin))
	require.NoError(t, p.Close())
	_, err := p.Allocate(nil)
	require.ErrorIs(t, err, ErrClosed)
}

func TestPoolExhausted(t *testing.T) {
	opts := testOptions(SyncSpin)
	opts.MaxBytes = 4096 * 3
	p := newTestPool[order](t, opts)
	for range 512 {
		_, err := p.Allocate(nil)
		require.NoError(t, err)
	}
	_, err := p.Allocate(nil)
	require.ErrorIs(t, err, ErrExhausted)
	require.Equal(t, 512, p.Live())
}

func TestPoolCustomLocker(t *testing.T) {
	opts := testOptions(SyncNone)
	opts.Locker = new(sync.Mutex)
	p := newTestPool[order](t, opts)
	_, err := p.Allocate(nil)
	require.NoError(t, err)
	require.IsType(t, &sync.Mutex{}, p.mu)
}

func TestPoolRejectsUnknownSyncMode(t *testing.T) {
	opts := testOptions(SyncMode(9))
	_, err := New[order](opts)
	require.Error(t, err)
}

func TestPoolUnsafeSharesState(t *testing.T) {
	p := newTestPool[order](t, testOptions(SyncNone))
	eng := p.Unsafe()
	o, err := eng.Allocate(nil)
	require.NoError(t, err)
	require.Equal(t, 1, p.Live())
	p.Deallocate(o)
	require.Zero(t, eng.Live())
}

func TestPoolRange(t *testing.T) {
	p := newTestPool[message](t, testOptions(SyncSpin))
	for i := range 10 {
		_, err := p.Allocate(func(m *message) error {
			m.Seq = uint64(i)
			m.Topic = "t"
			return nil
		})
		require.NoError(t, err)
	}
	var seqs []uint64
	p.Range(func(m *message) bool {
		seqs = append(seqs, m.Seq)
		return true
	})
	require.Equal(t, []uint64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, seqs)
}

// TestPoolConcurrentNoDuplicates hammers a guarded pool from many goroutines
// and checks that no two live values ever share an address and that every
// value survives untouched until its owner frees it.
func TestPoolConcurrentNoDuplicates(t *testing.T) {
	for _, mode := range []SyncMode{SyncSpin, SyncMutex} {
		for _, tracker := range []slab.TrackerKind{slab.TrackerFreeList, slab.TrackerStack, slab.TrackerBitmap} {
			t.Run(mode.String()+"/"+tracker.String(), func(t *testing.T) {
				opts := testOptions(mode)
				opts.Tracker = tracker
				p := newTestPool[message](t, opts)

				const workers, rounds, batch = 8, 200, 16
				var (
					live sync.Map
					wg   sync.WaitGroup
					seen sync.Map
				)
				errs := make(chan error, workers)

				for w := range workers {
					wg.Add(1)
					go func() {
						defer wg.Done()
						held := make([]*message, 0, batch)
						for r := range rounds {
							for i := range batch {
								seq := uint64(w)<<32 | uint64(r*batch+i)
								m, err := p.Allocate(func(m *message) error {
									m.Seq = seq
									return nil
								})
								if err != nil {
									errs <- err
									return
								}
								addr := uintptr(unsafe.Pointer(m))
								if _, dup := live.LoadOrStore(addr, seq); dup {
									errs <- errors.New("address handed out twice")
									return
								}
								seen.Store(addr, struct{}{})
								held = append(held, m)
							}
							for _, m := range held {
								want, _ := live.Load(uintptr(unsafe.Pointer(m)))
								if m.Seq != want.(uint64) {
									errs <- errors.New("live value overwritten")
									return
								}
								live.Delete(uintptr(unsafe.Pointer(m)))
								p.Deallocate(m)
							}
							held = held[:0]
						}
					}()
				}
				wg.Wait()
				close(errs)
				for err := range errs {
					require.NoError(t, err)
				}

				require.Zero(t, p.Live())
				st := p.Stats()
				require.Equal(t, uint64(workers*rounds*batch), st.Allocs)
				require.Equal(t, st.Allocs, st.Deallocs)

				distinct := 0
				seen.Range(func(_, _ any) bool {
					distinct++
					return true
				})
				require.LessOrEqual(t, distinct, workers*batch, "freed slots are reused")
				require.LessOrEqual(t, distinct, p.CapacityTotal())
			})
		}
	}
}

func BenchmarkPool_AllocFree(b *testing.B) {
	for _, mode := range []SyncMode{SyncNone, SyncSpin, SyncMutex} {
		b.Run(mode.String(), func(b *testing.B) {
			p := newTestPool[order](b, testOptions(mode))
			b.ReportAllocs()
			b.ResetTimer()
			for range b.N {
				o, err := p.Allocate(nil)
				if err != nil {
					b.Fatal(err)
				}
				p.Deallocate(o)
			}
		})
	}
}

func BenchmarkPool_Parallel(b *testing.B) {
	for _, mode := range []SyncMode{SyncSpin, SyncMutex} {
		b.Run(mode.String(), func(b *testing.B) {
			p := newTestPool[order](b, testOptions(mode))
			b.RunParallel(func(pb *testing.PB) {
				for pb.Next() {
					o, err := p.Allocate(nil)
					if err != nil {
						b.Fatal(err)
					}
					p.Deallocate(o)
				}
			})
		})
	}
}
