package coiled_test

import (
	"errors"
	"testing"

	"github.com/delaneyj/coiled"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAtomSnapshotAfterUpdate(t *testing.T) {
	a := coiled.NewAtom("name", "alice")
	assert.Equal(t, "alice", a.Snapshot())

	require.NoError(t, a.Update("bob"))
	assert.Equal(t, "bob", a.Snapshot())

	type point struct{ x, y int }
	p := &point{1, 2}
	b := coiled.NewAtom[*point]("point", nil)
	require.NoError(t, b.Update(p))
	assert.Same(t, p, b.Snapshot())
}

func TestAtomNotifiesOncePerUpdate(t *testing.T) {
	a := coiled.NewAtom("count", 1)

	var seen []int
	coiled.Subscribe[int](a, func(v int) error {
		seen = append(seen, v)
		return nil
	})

	require.NoError(t, a.Update(2))
	assert.Equal(t, []int{2}, seen)

	// no equality short-circuit
	require.NoError(t, a.Update(2))
	assert.Equal(t, []int{2, 2}, seen)
}

func TestAtomNotifiesEveryListener(t *testing.T) {
	a := coiled.NewAtom("count", 0)

	calls := map[string]int{}
	for _, name := range []string{"a", "b", "c"} {
		name := name
		coiled.Subscribe[int](a, func(int) error {
			calls[name]++
			return nil
		})
	}

	require.NoError(t, a.Update(1))
	assert.Equal(t, map[string]int{"a": 1, "b": 1, "c": 1}, calls)
}

func TestAtomsWithSameKeyAreIndependent(t *testing.T) {
	a := coiled.NewAtom("dup", 1)
	b := coiled.NewAtom("dup", 1)

	calls := 0
	coiled.Subscribe[int](b, func(int) error {
		calls++
		return nil
	})

	require.NoError(t, a.Update(5))
	assert.Equal(t, 1, b.Snapshot())
	assert.Equal(t, 0, calls)
	assert.NotEqual(t, a.ID(), b.ID())
	assert.Equal(t, a.Key(), b.Key())
	assert.Equal(t, coiled.KindAtom, a.Kind())
	assert.Empty(t, a.Dependencies())
	assert.Equal(t, "atom(dup)", a.String())
}

func TestDisconnect(t *testing.T) {
	a := coiled.NewAtom("count", 0)

	calls := 0
	d := coiled.Subscribe[int](a, func(int) error {
		calls++
		return nil
	})

	require.NoError(t, a.Update(1))
	assert.Equal(t, 1, calls)

	d.Disconnect()
	require.NoError(t, a.Update(2))
	assert.Equal(t, 1, calls)

	assert.NotPanics(t, d.Disconnect)
	require.NoError(t, a.Update(3))
	assert.Equal(t, 1, calls)
}

func TestSubscribeSameListenerTwice(t *testing.T) {
	a := coiled.NewAtom("count", 0)

	calls := 0
	l := coiled.ListenerFunc(func(int) {
		calls++
	})
	d1 := a.Subscribe(l)
	a.Subscribe(l)

	require.NoError(t, a.Update(1))
	assert.Equal(t, 1, calls)

	// one logical entry, so one disconnect removes it
	d1.Disconnect()
	require.NoError(t, a.Update(2))
	assert.Equal(t, 1, calls)
}

func TestSubscribeNilListener(t *testing.T) {
	a := coiled.NewAtom("count", 0)
	d := a.Subscribe(nil)
	require.NotNil(t, d)
	assert.NotPanics(t, d.Disconnect)
	require.NoError(t, a.Update(1))

	var nilDisconnector *coiled.Disconnector
	assert.NotPanics(t, nilDisconnector.Disconnect)
}

func TestListenerErrorAbortsFanOut(t *testing.T) {
	a := coiled.NewAtom("count", 0)
	boom := errors.New("boom")

	calls := 0
	for i := 0; i < 3; i++ {
		coiled.Subscribe[int](a, func(int) error {
			calls++
			return boom
		})
	}

	err := a.Update(1)
	require.ErrorIs(t, err, boom)
	// the first listener to run fails, the others are not reached
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, a.Snapshot())
}

func TestListenerDisconnectsItselfDuringEmit(t *testing.T) {
	a := coiled.NewAtom("count", 0)

	selfCalls, otherCalls := 0, 0
	var self *coiled.Disconnector
	self = coiled.Subscribe[int](a, func(int) error {
		selfCalls++
		self.Disconnect()
		return nil
	})
	for i := 0; i < 3; i++ {
		coiled.Subscribe[int](a, func(int) error {
			otherCalls++
			return nil
		})
	}

	require.NotPanics(t, func() {
		require.NoError(t, a.Update(1))
	})
	assert.Equal(t, 1, selfCalls)
	assert.Equal(t, 3, otherCalls)

	require.NoError(t, a.Update(2))
	assert.Equal(t, 1, selfCalls)
	assert.Equal(t, 6, otherCalls)
}

func TestListenerRemovedDuringEmitIsSkipped(t *testing.T) {
	a := coiled.NewAtom("count", 0)

	calls := 0
	var ds []*coiled.Disconnector
	for i := 0; i < 4; i++ {
		ds = append(ds, coiled.Subscribe[int](a, func(int) error {
			calls++
			// whoever runs first removes everyone else
			for _, d := range ds {
				d.Disconnect()
			}
			return nil
		}))
	}

	require.NoError(t, a.Update(1))
	assert.Equal(t, 1, calls)
}

func TestListenerAddedDuringEmitRunsNextTime(t *testing.T) {
	a := coiled.NewAtom("count", 0)

	lateCalls := 0
	added := false
	coiled.Subscribe[int](a, func(int) error {
		if !added {
			added = true
			coiled.Subscribe[int](a, func(int) error {
				lateCalls++
				return nil
			})
		}
		return nil
	})

	require.NoError(t, a.Update(1))
	assert.Equal(t, 0, lateCalls)
	require.NoError(t, a.Update(2))
	assert.Equal(t, 1, lateCalls)
}

func TestNestedUpdateFromListener(t *testing.T) {
	a := coiled.NewAtom("count", 0)

	var seen []int
	coiled.Subscribe[int](a, func(v int) error {
		seen = append(seen, v)
		if v < 3 {
			return a.Update(v + 1)
		}
		return nil
	})

	require.NoError(t, a.Update(1))
	assert.Equal(t, []int{1, 2, 3}, seen)
	assert.Equal(t, 3, a.Snapshot())
}
