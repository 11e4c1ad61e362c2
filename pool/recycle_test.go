package pool

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type session struct {
	Recyclable
	ID     uint64
	Peer   string
	closed *int
}

func (s *session) Reset() {
	if s.closed != nil {
		*s.closed++
	}
}

type plain struct {
	N int
}

func TestCreateRecycle(t *testing.T) {
	p := newTestPool[session](t, testOptions(SyncSpin))
	closed := 0

	s, err := Create(p, func(s *session) error {
		s.ID = 1
		s.Peer = "10.0.0.1"
		s.closed = &closed
		return nil
	})
	require.NoError(t, err)
	require.False(t, s.IsRecycled())
	require.Equal(t, 1, p.Live())

	Recycle(p, s)
	require.Equal(t, 1, closed, "Reset runs before the slot is zeroed")
	require.True(t, s.IsRecycled())
	require.Empty(t, s.Peer)
	require.Zero(t, p.Live())

	again, err := Create(p, nil)
	require.NoError(t, err)
	require.Same(t, s, again, "LIFO reuse hands the slot back")
	require.False(t, again.IsRecycled())
	require.Zero(t, again.ID)
}

func TestRecycleGuardedByIsRecycled(t *testing.T) {
	p := newTestPool[session](t, testOptions(SyncSpin))
	s, err := Create(p, nil)
	require.NoError(t, err)

	release := func(s *session) {
		if !s.IsRecycled() {
			Recycle(p, s)
		}
	}
	release(s)
	release(s)

	st := p.Stats()
	require.Equal(t, uint64(1), st.Deallocs)
	require.Zero(t, st.Live)
}

func TestCreateFailure(t *testing.T) {
	p := newTestPool[session](t, testOptions(SyncSpin))
	s, err := Create(p, func(*session) error { return errors.New("handshake") })
	require.ErrorIs(t, err, ErrConstruct)
	require.Nil(t, s)
	require.Zero(t, p.Live())
}

func TestRecycleWithoutHooks(t *testing.T) {
	p := newTestPool[plain](t, testOptions(SyncSpin))
	v, err := Create(p, func(v *plain) error {
		v.N = 5
		return nil
	})
	require.NoError(t, err)

	Recycle(p, v)
	Recycle[plain](p, nil)
	require.Zero(t, v.N)
	require.Zero(t, p.Live())
}

func TestRecycleTwiceChecked(t *testing.T) {
	opts := testOptions(SyncSpin)
	opts.Checked = true
	p := newTestPool[session](t, opts)

	s, err := Create(p, nil)
	require.NoError(t, err)
	Recycle(p, s)
	require.True(t, s.IsRecycled())

	require.Panics(t, func() { Recycle(p, s) })
	require.Panics(t, func() { Recycle(p, &session{}) })
	require.Equal(t, uint64(1), p.Stats().Deallocs)
	require.Zero(t, p.Live())

	// The guard is released after the panic.
	s, err = Create(p, nil)
	require.NoError(t, err)
	require.False(t, s.IsRecycled())
}
