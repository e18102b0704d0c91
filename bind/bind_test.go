package bind_test

import (
	"reflect"
	"testing"

	"github.com/delaneyj/coiled"
	"github.com/delaneyj/coiled/bind"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type renderCounter struct {
	renders int
}

func (r *renderCounter) Invalidate() {
	r.renders++
}

func TestUseValueSubscribesOnce(t *testing.T) {
	a := coiled.NewAtom("a", 1)
	host := &renderCounter{}
	scope := bind.NewScope(host)

	assert.Equal(t, 1, bind.UseValue[int](scope, a))
	assert.Equal(t, 1, bind.UseValue[int](scope, a))
	assert.Equal(t, 1, scope.Subscribed())

	require.NoError(t, a.Update(2))
	assert.Equal(t, 1, host.renders)
	assert.Equal(t, 2, bind.UseValue[int](scope, a))
}

func TestUseValueReadsFreshSnapshot(t *testing.T) {
	a := coiled.NewAtom("a", 1)
	s := coiled.MustSelector("double", func(ctx *coiled.Context) (int, error) {
		return coiled.Get[int](ctx, a) * 2, nil
	})

	var rendered []int
	var scope *bind.Scope
	scope = bind.NewScope(bind.HostFunc(func() {
		rendered = append(rendered, bind.UseValue[int](scope, s))
	}))
	rendered = append(rendered, bind.UseValue[int](scope, s))

	require.NoError(t, a.Update(3))
	require.NoError(t, a.Update(4))
	assert.Equal(t, []int{2, 6, 8}, rendered)
}

func TestTeardownDisconnectsOnce(t *testing.T) {
	a := coiled.NewAtom("a", 1)
	b := coiled.NewAtom("b", "x")
	host := &renderCounter{}
	scope := bind.NewScope(host)

	bind.UseValue[int](scope, a)
	bind.UseValue[string](scope, b)
	assert.Equal(t, 2, scope.Subscribed())

	scope.Teardown()
	assert.True(t, scope.Closed())
	assert.Equal(t, 0, scope.Subscribed())
	assert.NotPanics(t, scope.Teardown)

	require.NoError(t, a.Update(2))
	require.NoError(t, b.Update("y"))
	assert.Equal(t, 0, host.renders)

	// reads after teardown still work but do not subscribe again
	assert.Equal(t, 2, bind.UseValue[int](scope, a))
	assert.Equal(t, 0, scope.Subscribed())
}

func TestScopesAreIndependent(t *testing.T) {
	a := coiled.NewAtom("a", 1)
	first, second := &renderCounter{}, &renderCounter{}
	s1, s2 := bind.NewScope(first), bind.NewScope(second)

	bind.UseValue[int](s1, a)
	bind.UseValue[int](s2, a)
	s1.Teardown()

	require.NoError(t, a.Update(2))
	assert.Equal(t, 0, first.renders)
	assert.Equal(t, 1, second.renders)
}

func TestUseState(t *testing.T) {
	a := coiled.NewAtom("a", 1)
	host := &renderCounter{}
	scope := bind.NewScope(host)

	v, set := bind.UseState(scope, a)
	assert.Equal(t, 1, v)

	require.NoError(t, set(5))
	assert.Equal(t, 1, host.renders)
	assert.Equal(t, 5, a.Snapshot())

	v, again := bind.UseState(scope, a)
	assert.Equal(t, 5, v)
	assert.Equal(t, reflect.ValueOf(set).Pointer(), reflect.ValueOf(again).Pointer())
	assert.Equal(t, 1, scope.Subscribed())
}

func TestUseStateWithoutScope(t *testing.T) {
	a := coiled.NewAtom("a", "x")
	v, set := bind.UseState[string](nil, a)
	assert.Equal(t, "x", v)
	require.NoError(t, set("y"))
	assert.Equal(t, "y", a.Snapshot())
}

func TestUseStateAfterTeardown(t *testing.T) {
	a := coiled.NewAtom("a", 1)
	host := &renderCounter{}
	scope := bind.NewScope(host)
	_, live := bind.UseState(scope, a)
	scope.Teardown()

	v, set := bind.UseState(scope, a)
	assert.Equal(t, 1, v)
	assert.Equal(t, 0, scope.Subscribed())
	require.NoError(t, set(7))
	require.NoError(t, live(8))
	assert.Equal(t, 8, a.Snapshot())
	assert.Equal(t, 0, host.renders)
}

func TestNilHost(t *testing.T) {
	a := coiled.NewAtom("a", 1)
	scope := bind.NewScope(nil)
	bind.UseValue[int](scope, a)
	assert.NotPanics(t, func() {
		require.NoError(t, a.Update(2))
	})
}
