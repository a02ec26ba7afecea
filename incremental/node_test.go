package incremental_test

import (
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/delaneyj/kinetix/incremental"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func double(v int) int { return v * 2 }
func triple(v int) int { return v * 3 }
func add(a, b int) int { return a + b }

func TestBasicUsage(t *testing.T) {
	sys := incremental.NewSystem()
	x := incremental.NewNode(sys, 5)
	doubleX := incremental.Map(x, double)
	assert.Equal(t, 10, doubleX.Get())

	x.Set(10)
	assert.Equal(t, 20, doubleX.Get())
}

func TestIncrementalComputation(t *testing.T) {
	sys := incremental.NewSystem()
	x := incremental.NewNode(sys, 5)
	doubleX := incremental.Map(x, double)
	assert.Equal(t, 10, doubleX.Get())

	x.Set(10)
	assert.Equal(t, 20, doubleX.Get())

	tripleX := incremental.Map(x, triple)
	assert.Equal(t, 30, tripleX.Get())

	x.Set(7)
	assert.Equal(t, 14, doubleX.Get())
	assert.Equal(t, 21, tripleX.Get())

	sum := incremental.Map2(add, doubleX, tripleX)
	assert.Equal(t, 35, sum.Get())

	x.Set(8)
	assert.Equal(t, 16, doubleX.Get())
	assert.Equal(t, 24, tripleX.Get())
	assert.Equal(t, 40, sum.Get())

	x.Set(9)
	assert.Equal(t, 18, doubleX.Get())
	assert.Equal(t, 27, tripleX.Get())
	assert.Equal(t, 45, sum.Get())
}

func TestChainedMaps(t *testing.T) {
	sys := incremental.NewSystem()
	inc1 := incremental.NewNode(sys, 10)
	inc2 := incremental.Map(inc1, double)
	inc3 := incremental.Map(inc2, strconv.Itoa)

	inc1.Set(20)
	assert.Equal(t, "40", inc3.Get())
}

func TestMapFollowsLastSet(t *testing.T) {
	sys := incremental.NewSystem()
	for _, x := range []int{-3, 0, 1, 42} {
		n := incremental.NewNode(sys, x)
		m := incremental.Map(n, func(v int) int { return v*v - 1 })
		assert.Equal(t, x*x-1, m.Get())

		for _, v := range []int{7, -2, 11} {
			n.Set(v)
		}
		assert.Equal(t, 11*11-1, m.Get())
	}
}

func TestApEitherOperand(t *testing.T) {
	sys := incremental.NewSystem()
	value := incremental.NewNode(sys, 3)
	fn := incremental.NewNode(sys, func(v int) string { return strconv.Itoa(v) })
	result := incremental.Ap(value, fn)
	assert.Equal(t, "3", result.Get())

	value.Set(4)
	assert.Equal(t, "4", result.Get())

	fn.Set(func(v int) string { return strconv.Itoa(v * 10) })
	assert.Equal(t, "40", result.Get())

	value.Set(5)
	assert.Equal(t, "50", result.Get())
}

func TestFlatMapLeftFoldSum(t *testing.T) {
	sys := incremental.NewSystem()
	data := []int{1, 2, 3, 4, 5}
	nodes := make([]*incremental.Node[int], len(data))
	for i, v := range data {
		nodes[i] = incremental.NewNode(sys, v)
	}

	sum := nodes[0]
	for _, b := range nodes[1:] {
		a, b := sum, b
		sum = incremental.FlatMap(a, func(av int) *incremental.Node[int] {
			return incremental.Map(b, func(bv int) int { return av + bv })
		})
	}
	assert.Equal(t, 15, sum.Get())

	nodes[4].Set(10)
	assert.Equal(t, 20, sum.Get())

	nodes[0].Set(11)
	assert.Equal(t, 30, sum.Get())

	// rebinding releases the mapped node built for the previous value
	for _, n := range nodes[1:] {
		assert.Equal(t, 1, n.Subscribers())
	}
}

func TestFlatMapRebinding(t *testing.T) {
	sys := incremental.NewSystem()
	useA := incremental.NewNode(sys, true)
	a := incremental.NewNode(sys, 1)
	b := incremental.NewNode(sys, 100)

	selected := incremental.FlatMap(useA, func(u bool) *incremental.Node[int] {
		if u {
			return a
		}
		return b
	})
	plusOne := incremental.Map(selected, func(v int) int { return v + 1 })
	assert.Equal(t, 1, selected.Get())
	assert.Equal(t, 2, plusOne.Get())

	// a change on the bound inner node reaches everything downstream
	a.Set(2)
	assert.Equal(t, 2, selected.Get())
	assert.Equal(t, 3, plusOne.Get())

	useA.Set(false)
	assert.Equal(t, 100, selected.Get())
	assert.Equal(t, 101, plusOne.Get())
	assert.Equal(t, 0, a.Subscribers())

	// the previous inner node is detached
	a.Set(5)
	assert.Equal(t, 100, selected.Get())

	b.Set(7)
	assert.Equal(t, 7, selected.Get())
	assert.Equal(t, 8, plusOne.Get())

	// selecting the bound node again keeps a single subscription
	useA.Set(false)
	assert.Equal(t, 1, b.Subscribers())
}

func TestFlatMapNotifiesOncePerChange(t *testing.T) {
	sys := incremental.NewSystem()
	outer := incremental.NewNode(sys, 1)
	inner := incremental.NewNode(sys, 10)
	result := incremental.FlatMap(outer, func(int) *incremental.Node[int] { return inner })

	var seen []int
	result.Observe(func(v int) { seen = append(seen, v) })

	inner.Set(11)
	outer.Set(2)
	assert.Equal(t, []int{11, 11}, seen)
}

func TestObserveIdentity(t *testing.T) {
	sys := incremental.NewSystem()
	n := incremental.NewNode(sys, 0)

	var calls []string
	record := func(v int) { calls = append(calls, "first:"+strconv.Itoa(v)) }
	n.Observe(record)
	sub := n.Observe(record)
	n.Observe(func(v int) { calls = append(calls, "last:"+strconv.Itoa(v)) })
	assert.Equal(t, 3, n.Subscribers())

	n.Set(1)
	assert.Equal(t, []string{"first:1", "first:1", "last:1"}, calls)

	sub.Stop()
	sub.Stop()
	assert.True(t, sub.Stopped())
	calls = nil
	n.Set(2)
	assert.Equal(t, []string{"first:2", "last:2"}, calls)
}

func TestDispose(t *testing.T) {
	sys := incremental.NewSystem()
	x := incremental.NewNode(sys, 1)
	d := incremental.Map(x, double)
	assert.Equal(t, 1, x.Subscribers())

	d.Dispose()
	d.Dispose()
	assert.True(t, d.Disposed())
	assert.Equal(t, 0, x.Subscribers())

	x.Set(5)
	assert.Equal(t, 2, d.Get())
}

func TestScopeDisposesMembers(t *testing.T) {
	sys := incremental.NewSystem()
	x := incremental.NewNode(sys, 1)

	var d, tr *incremental.Node[int]
	var inner *incremental.Scope
	outer := sys.Scope(func() {
		d = incremental.Map(x, double)
		inner = sys.Scope(func() {
			tr = incremental.Map(x, triple)
		})
	})
	assert.Equal(t, 2, outer.Len())
	assert.Equal(t, 1, inner.Len())
	assert.Equal(t, 2, x.Subscribers())

	outer.Dispose()
	assert.Equal(t, 0, x.Subscribers())
	assert.True(t, d.Disposed())
	assert.True(t, tr.Disposed())

	x.Set(10)
	assert.Equal(t, 2, d.Get())
	assert.Equal(t, 3, tr.Get())
}

func TestCycleDetection(t *testing.T) {
	var got error
	sys := incremental.NewSystem(incremental.WithErrorHandler(func(err error) {
		got = err
	}))
	a := incremental.NewNode(sys, 0).Named("a")
	b := incremental.Map(a, func(v int) int { return v + 1 }).Named("b")
	b.Observe(func(v int) { a.Set(v) })

	a.Set(1)
	require.Error(t, got)
	assert.ErrorIs(t, got, incremental.ErrCycle)

	var cycle *incremental.CycleError
	require.True(t, errors.As(got, &cycle))
	assert.Equal(t, "a", cycle.Node)
	assert.Equal(t, []string{"a"}, cycle.Lineage)
	assert.Equal(t, 1, a.Get())
	assert.Equal(t, 2, b.Get())
	assert.False(t, sys.Propagating())
	assert.EqualValues(t, 1, sys.Stats().Errors)
}

func TestCycleDefaultHandlerPanics(t *testing.T) {
	sys := incremental.NewSystem()
	a := incremental.NewNode(sys, 0)
	a.Observe(func(v int) { a.Set(v + 1) })
	assert.Panics(t, func() { a.Set(1) })
	assert.False(t, sys.Propagating())
}

func TestFlatMapSelectingItsOwnDependentIsACycle(t *testing.T) {
	var got error
	sys := incremental.NewSystem(incremental.WithErrorHandler(func(err error) {
		got = err
	}))
	outer := incremental.NewNode(sys, 0).Named("outer")
	base := incremental.NewNode(sys, 1).Named("base")

	var r *incremental.Node[int]
	r = incremental.FlatMap(outer, func(v int) *incremental.Node[int] {
		if v == 0 {
			return base
		}
		return incremental.Map(r, func(x int) int { return x + 1 }).Named("next")
	}).Named("r")

	outer.Set(1)
	require.Error(t, got)
	assert.ErrorIs(t, got, incremental.ErrCycle)

	var cycle *incremental.CycleError
	require.True(t, errors.As(got, &cycle))
	assert.Equal(t, "r", cycle.Node)
	assert.Equal(t, []string{"r", "next"}, cycle.Lineage)
	assert.False(t, sys.Propagating())
	assert.Equal(t, 0, r.Subscribers())

	// the previous binding survives the rejected one
	assert.Equal(t, 1, r.Get())
	base.Set(2)
	assert.Equal(t, 2, r.Get())
}

func TestFlatMapSelectingItselfIsACycle(t *testing.T) {
	var got error
	sys := incremental.NewSystem(incremental.WithErrorHandler(func(err error) {
		got = err
	}))
	outer := incremental.NewNode(sys, false)
	base := incremental.NewNode(sys, 1)

	var r *incremental.Node[int]
	r = incremental.FlatMap(outer, func(self bool) *incremental.Node[int] {
		if self {
			return r
		}
		return base
	}).Named("r")

	outer.Set(true)
	assert.ErrorIs(t, got, incremental.ErrCycle)
	assert.Equal(t, 1, base.Subscribers())
}

func TestPanickingSubscriberLeavesSystemUsable(t *testing.T) {
	m := &recordingMetrics{}
	sys := incremental.NewSystem(incremental.WithMetrics(m))
	a := incremental.NewNode(sys, 1)
	inverse := incremental.Map(a, func(v int) int { return 10 / v })
	assert.Equal(t, 10, inverse.Get())

	assert.Panics(t, func() { a.Set(0) })
	assert.False(t, sys.Propagating())
	assert.EqualValues(t, 1, sys.Stats().Errors)
	require.Len(t, m.failed, 1)
	assert.ErrorIs(t, m.failed[0], incremental.ErrPanic)

	a.Set(2)
	assert.Equal(t, 5, inverse.Get())

	x := incremental.NewNode(sys, 1)
	y := incremental.Map(x, double)
	x.Set(5)
	assert.Equal(t, 10, y.Get())
}

func TestFlatMapNilNodePanicLeavesSystemUsable(t *testing.T) {
	sys := incremental.NewSystem()
	outer := incremental.NewNode(sys, 1)
	inner := incremental.NewNode(sys, 10)
	r := incremental.FlatMap(outer, func(v int) *incremental.Node[int] {
		if v == 0 {
			return nil
		}
		return inner
	})

	assert.Panics(t, func() { outer.Set(0) })
	assert.False(t, sys.Propagating())

	inner.Set(11)
	assert.Equal(t, 11, r.Get())
}

func TestNestedSetIsNotACycle(t *testing.T) {
	sys := incremental.NewSystem()
	a := incremental.NewNode(sys, 0)
	b := incremental.NewNode(sys, 0)
	c := incremental.NewNode(sys, 0)
	total := incremental.Map2(add, b, c)

	// two observers feeding the same node within one pass
	a.Observe(func(v int) { c.Set(v) })
	a.Observe(func(v int) { c.Set(v * 2) })
	a.Observe(func(v int) { b.Set(v) })

	a.Set(3)
	assert.Equal(t, 6, c.Get())
	assert.Equal(t, 9, total.Get())
}

func TestMaxSteps(t *testing.T) {
	var got error
	sys := incremental.NewSystem(
		incremental.WithMaxSteps(5),
		incremental.WithErrorHandler(func(err error) { got = err }),
	)
	src := incremental.NewNode(sys, 0)
	last := src
	for i := 0; i < 10; i++ {
		last = incremental.Map(last, func(v int) int { return v + 1 })
	}

	src.Set(1)
	assert.ErrorIs(t, got, incremental.ErrStepLimit)
	assert.NotEqual(t, 11, last.Get())
}

func TestDeepChainDoesNotRecurse(t *testing.T) {
	sys := incremental.NewSystem()
	src := incremental.NewNode(sys, 0)
	last := src
	const depth = 50_000
	for i := 0; i < depth; i++ {
		last = incremental.Map(last, func(v int) int { return v + 1 })
	}
	assert.Equal(t, depth, last.Get())

	src.Set(1)
	assert.Equal(t, depth+1, last.Get())
}

func TestMixedSystemsPanic(t *testing.T) {
	a := incremental.NewNode(incremental.NewSystem(), 1)
	b := incremental.NewNode(incremental.NewSystem(), 2)
	assert.Panics(t, func() { incremental.Map2(add, a, b) })
}

type recordingMetrics struct {
	completed []int
	failed    []error
}

func (m *recordingMetrics) PassCompleted(steps int, _ time.Duration) {
	m.completed = append(m.completed, steps)
}

func (m *recordingMetrics) PassFailed(err error) {
	m.failed = append(m.failed, err)
}

func TestMetricsAndStats(t *testing.T) {
	m := &recordingMetrics{}
	sys := incremental.NewSystem(incremental.WithMetrics(m))
	x := incremental.NewNode(sys, 1)
	incremental.Map(incremental.Map(x, double), double)

	x.Set(2)
	x.Set(3)
	assert.Equal(t, []int{2, 2}, m.completed)
	assert.Empty(t, m.failed)

	stats := sys.Stats()
	assert.EqualValues(t, 2, stats.Passes)
	assert.EqualValues(t, 4, stats.Steps)
	assert.EqualValues(t, 2, stats.Sets)
}
