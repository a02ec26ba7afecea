package incremental

import "fmt"

// Vertex is the type-erased view of a Node used by scopes and graph export.
// It is implemented by *Node[T] only.
type Vertex interface {
	nodeID() uint64
	nodeLabel() string
	nodeSources() []Vertex
	Dispose()
}

// Node is an incremental value: a cell holding a current value plus an
// ordered list of subscribers notified whenever the value is set.
//
// Source nodes are created with NewNode and updated with Set. Derived nodes
// come from Map, Ap, FlatMap, Map2 and the Merge family and are kept
// consistent with their sources by the owning System.
type Node[T any] struct {
	sys   *System
	id    uint64
	label string
	value T

	subs    []*Subscription
	sources []Vertex
	owned   []*Subscription
	cleanup []func()

	disposed bool
}

// NewNode creates a source node holding v.
func NewNode[T any](sys *System, v T) *Node[T] {
	if sys == nil {
		panic("nil system")
	}
	n := &Node[T]{sys: sys, id: sys.newID(), value: v}
	n.label = fmt.Sprintf("n%d", n.id)
	if sys.scope != nil {
		sys.scope.add(n)
	}
	return n
}

// Named sets a diagnostic label and returns n.
func (n *Node[T]) Named(label string) *Node[T] {
	n.label = label
	return n
}

// Label returns the diagnostic label, "n<id>" unless Named was called.
func (n *Node[T]) Label() string { return n.label }

// System returns the System that owns n.
func (n *Node[T]) System() *System { return n.sys }

// Get returns the current value.
func (n *Node[T]) Get() T {
	return n.value
}

// Set overwrites the value and notifies every subscriber in registration
// order. Called from outside a propagation pass it returns only after all
// transitively dependent nodes have been updated; called from inside one it
// queues the notifications on the running pass.
func (n *Node[T]) Set(v T) {
	l, err := n.sys.write(n.id, n.label)
	if err != nil {
		n.sys.fail(err)
		return
	}
	n.value = v
	n.notify(v, l)
	n.sys.flush()
}

// assign updates a derived node from inside a subscriber. It reuses the
// lineage of the job being run.
func (n *Node[T]) assign(v T) {
	n.value = v
	n.notify(v, n.sys.lineage)
}

func (n *Node[T]) notify(v T, l *lineage) {
	for _, sub := range n.subs {
		if sub.stopped {
			continue
		}
		fn := sub.fn.(func(T))
		n.sys.enqueue(sub, func() { fn(v) }, l)
	}
}

// Observe registers fn to run with the new value after every change.
// Registering the same function twice yields two independent subscriptions.
func (n *Node[T]) Observe(fn func(T)) *Subscription {
	if fn == nil {
		panic("nil subscriber")
	}
	sub := &Subscription{fn: fn}
	sub.release = func() { n.unsubscribe(sub) }
	n.subs = append(n.subs, sub)
	return sub
}

// Subscribers returns the number of live subscriptions on n.
func (n *Node[T]) Subscribers() int {
	return len(n.subs)
}

func (n *Node[T]) unsubscribe(sub *Subscription) {
	for i, s := range n.subs {
		if s == sub {
			n.subs = append(n.subs[:i], n.subs[i+1:]...)
			return
		}
	}
}

// Dispose detaches n from its sources: every subscription n holds upstream
// is stopped, so n keeps its last value and is no longer recomputed.
// Subscribers of n are left alone. Dispose is idempotent.
func (n *Node[T]) Dispose() {
	if n.disposed {
		return
	}
	n.disposed = true
	for _, sub := range n.owned {
		sub.Stop()
	}
	n.owned = nil
	for _, fn := range n.cleanup {
		fn()
	}
	n.cleanup = nil
}

// Disposed reports whether Dispose has been called.
func (n *Node[T]) Disposed() bool {
	return n.disposed
}

func (n *Node[T]) nodeID() uint64        { return n.id }
func (n *Node[T]) nodeLabel() string     { return n.label }
func (n *Node[T]) nodeSources() []Vertex { return n.sources }

// derive creates a node depending on sources, registered with the active
// scope if there is one.
func derive[R any](sys *System, v R, sources ...Vertex) *Node[R] {
	r := NewNode(sys, v)
	r.sources = sources
	return r
}

// track subscribes r to src with fn and records the subscription as owned
// by r.
func track[T, R any](r *Node[R], src *Node[T], fn func(T)) {
	r.owned = append(r.owned, src.Observe(fn))
}

func sameSystem(a, b *System) {
	if a != b {
		panic("nodes belong to different systems")
	}
}
