package resolver

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"jobmonitor/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingResolver records how often it was asked.
type countingResolver struct {
	target string
	calls  int
}

func (c *countingResolver) Resolve(string) (string, bool) {
	c.calls++
	return c.target, c.target != ""
}

type sliceResolver []string

func (s sliceResolver) Resolve(string) (string, bool) { return "", false }

func TestRegistryEmptyResolvesNothing(t *testing.T) {
	reg, err := NewRegistry()
	require.NoError(t, err)

	target, ok := reg.Resolve("add")
	assert.False(t, ok)
	assert.Empty(t, target)
	assert.Empty(t, reg.List())
}

func TestRegistryFirstMatchWins(t *testing.T) {
	miss := &countingResolver{}
	first := &countingResolver{target: "first.add"}
	second := &countingResolver{target: "second.add"}

	reg, err := NewRegistry(miss, first, second)
	require.NoError(t, err)

	target, ok := reg.Resolve("add")
	require.True(t, ok)
	assert.Equal(t, "first.add", target)
	assert.Equal(t, 1, miss.calls)
	assert.Equal(t, 1, first.calls)
	assert.Equal(t, 0, second.calls, "resolvers after the first match must not run")
}

func TestRegistryOrderIsInsertionOrder(t *testing.T) {
	a, b, c := Prefix("a."), Prefix("b."), Prefix("c.")
	reg, err := NewRegistry(a, b, c)
	require.NoError(t, err)

	assert.Equal(t, []Resolver{a, b, c}, reg.List())

	reg.Remove(a)
	target, ok := reg.Resolve("x")
	require.True(t, ok)
	assert.Equal(t, "b.x", target)
	assert.Equal(t, []Resolver{b, c}, reg.List())
}

func TestRegistryDuplicateAdd(t *testing.T) {
	r := Prefix("math.")
	reg, err := NewRegistry(r)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		err = reg.Add(r)
		assert.ErrorIs(t, err, domain.ErrDuplicateResolver)
		assert.Len(t, reg.List(), 1)
	}

	// Same behaviour, different identity.
	require.NoError(t, reg.Add(Prefix("math.")))
	assert.Len(t, reg.List(), 2)
}

func TestRegistryFuncIdentity(t *testing.T) {
	fn := func(name string) (string, bool) { return "math." + name, true }
	r1, r2 := Func(fn), Func(fn)

	reg, err := NewRegistry(r1)
	require.NoError(t, err)
	assert.ErrorIs(t, reg.Add(r1), domain.ErrDuplicateResolver)
	assert.NoError(t, reg.Add(r2))
}

func TestRegistryIncomparable(t *testing.T) {
	reg, err := NewRegistry()
	require.NoError(t, err)

	assert.ErrorIs(t, reg.Add(sliceResolver{"x"}), domain.ErrIncomparableResolver)
	assert.ErrorIs(t, reg.Add(nil), domain.ErrIncomparableResolver)
	reg.Remove(sliceResolver{"x"})
	assert.Empty(t, reg.List())

	_, err = NewRegistry(Prefix("a."), sliceResolver{})
	assert.ErrorIs(t, err, domain.ErrIncomparableResolver)
}

func TestRegistryRemoveAbsentIsNoop(t *testing.T) {
	a := Prefix("a.")
	reg, err := NewRegistry(a)
	require.NoError(t, err)

	reg.Remove(Prefix("a."))
	reg.Remove(Func(func(string) (string, bool) { return "", false }))
	assert.Equal(t, []Resolver{a}, reg.List())
}

func TestRegistryListIsACopy(t *testing.T) {
	a, b := Prefix("a."), Prefix("b.")
	reg, err := NewRegistry(a, b)
	require.NoError(t, err)

	snapshot := reg.List()
	reg.Remove(a)
	assert.Equal(t, []Resolver{a, b}, snapshot)
}

func TestRegistryFirstMatchProperty(t *testing.T) {
	// resolver i accepts names whose length is a multiple of i+1
	var rs []Resolver
	for i := 0; i < 5; i++ {
		n := i + 1
		rs = append(rs, Func(func(name string) (string, bool) {
			if len(name)%n != 0 {
				return "", false
			}
			return fmt.Sprintf("r%d.%s", n, name), true
		}))
	}
	reg, err := NewRegistry(rs...)
	require.NoError(t, err)

	for _, name := range []string{"", "a", "ab", "abc", "abcd", "abcde"} {
		var want string
		var wantOK bool
		for _, r := range rs {
			if got, ok := r.Resolve(name); ok {
				want, wantOK = got, true
				break
			}
		}
		got, ok := reg.Resolve(name)
		assert.Equal(t, wantOK, ok, name)
		assert.Equal(t, want, got, name)
	}
}

func TestRegistryConcurrentUse(t *testing.T) {
	reg, err := NewRegistry(Prefix("base."))
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			r := Prefix("tmp.")
			assert.NoError(t, reg.Add(r))
			reg.Remove(r)
		}()
		go func() {
			defer wg.Done()
			target, ok := reg.Resolve("add")
			assert.True(t, ok)
			assert.Equal(t, "base.add", target)
		}()
	}
	wg.Wait()
	assert.Len(t, reg.List(), 1)
}

func TestBuiltinResolvers(t *testing.T) {
	target, ok := Prefix("tasks.").Resolve("add")
	assert.True(t, ok)
	assert.Equal(t, "tasks.add", target)

	_, ok = Prefix("tasks.").Resolve("")
	assert.False(t, ok)

	allow := Allow("tasks.", "sleep", "add", "add")
	target, ok = allow.Resolve("add")
	assert.True(t, ok)
	assert.Equal(t, "tasks.add", target)
	_, ok = allow.Resolve("rm")
	assert.False(t, ok)

	assert.Equal(t, `allow("tasks.", add,sleep)`, Describe(allow))
	assert.Equal(t, `prefix("x.")`, Describe(Prefix("x.")))
	assert.Equal(t, "*resolver.countingResolver", Describe(&countingResolver{}))
}

// boxResolver is comparable by type but may hold an incomparable value.
type boxResolver struct {
	v any
}

func (b boxResolver) Resolve(string) (string, bool) { return "", false }

func TestRegistryIncomparableInterfaceField(t *testing.T) {
	reg, err := NewRegistry()
	require.NoError(t, err)

	assert.ErrorIs(t, reg.Add(boxResolver{v: []string{"a"}}), domain.ErrIncomparableResolver)
	assert.ErrorIs(t, reg.Add(boxResolver{v: []string{"b"}}), domain.ErrIncomparableResolver)
	assert.NotPanics(t, func() { reg.Remove(boxResolver{v: []string{"a"}}) })
	assert.Empty(t, reg.List())

	require.NoError(t, reg.Add(boxResolver{v: "a"}))
	assert.ErrorIs(t, reg.Add(boxResolver{v: "a"}), domain.ErrDuplicateResolver)
	assert.NotPanics(t, func() { _ = reg.Add(boxResolver{v: []string{"c"}}) })
	assert.Len(t, reg.List(), 1)
}

func TestRegistryResolverMayMutateRegistry(t *testing.T) {
	reg, err := NewRegistry()
	require.NoError(t, err)

	late := Prefix("late.")
	require.NoError(t, reg.Add(Func(func(string) (string, bool) {
		_ = reg.Add(late)
		return "", false
	})))

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, ok := reg.Resolve("add")
		assert.False(t, ok, "resolution runs against the registry as it was when called")
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Resolve deadlocked")
	}

	target, ok := reg.Resolve("add")
	assert.True(t, ok)
	assert.Equal(t, "late.add", target)
}
