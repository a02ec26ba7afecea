package incremental

import (
	mapset "github.com/deckarep/golang-set/v2"
)

// binding is the rebinding slot behind FlatMap: it holds the inner node the
// target currently mirrors together with the subscription on it.
type binding[R any] struct {
	sys    *System
	outer  Vertex
	target *Node[R]

	inner *Node[R]
	sub   *Subscription
	scope *Scope
}

// choose runs pick inside a fresh scope so nodes it creates can be
// released once the binding moves on.
func (b *binding[R]) choose(pick func() *Node[R]) (*Node[R], *Scope) {
	sc := &Scope{sys: b.sys, members: newMemberSet()}
	var inner *Node[R]
	b.sys.within(sc, func() {
		inner = pick()
	})
	if inner == nil {
		panic("flatMap function returned a nil node")
	}
	sameSystem(b.sys, inner.sys)
	return inner, sc
}

// bind points the slot at inner. Rebinding to the node already bound keeps
// the existing subscription and throws away the unused scope. A node that
// depends on the target is rejected with a *CycleError.
func (b *binding[R]) bind(inner *Node[R], sc *Scope) error {
	if inner == b.inner {
		sc.Dispose()
		return nil
	}
	if path := dependencyPath(inner, b.target); path != nil {
		sc.Dispose()
		labels := make([]string, len(path))
		for i, v := range path {
			labels[i] = v.nodeLabel()
		}
		return &CycleError{Node: b.target.label, Lineage: labels}
	}
	b.attach(inner, sc)
	return nil
}

func (b *binding[R]) attach(inner *Node[R], sc *Scope) {
	b.release()
	b.inner = inner
	b.scope = sc
	target := b.target
	b.sub = inner.Observe(func(v R) {
		target.assign(v)
	})
	target.sources = []Vertex{b.outer, inner}
}

// dependencyPath returns the nodes a change on to passes through on its way
// to from, beginning with to and ending with from. It is nil when from does
// not depend on to.
func dependencyPath(from, to Vertex) []Vertex {
	parent := map[uint64]Vertex{}
	seen := mapset.NewThreadUnsafeSet(from.nodeID())
	stack := []Vertex{from}
	for len(stack) > 0 {
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if v.nodeID() == to.nodeID() {
			path := []Vertex{v}
			for p, ok := parent[v.nodeID()]; ok; p, ok = parent[p.nodeID()] {
				path = append(path, p)
			}
			return path
		}
		for _, src := range v.nodeSources() {
			if seen.Add(src.nodeID()) {
				parent[src.nodeID()] = v
				stack = append(stack, src)
			}
		}
	}
	return nil
}

func (b *binding[R]) release() {
	b.sub.Stop()
	b.sub = nil
	if b.scope != nil {
		b.scope.Dispose()
		b.scope = nil
	}
	b.inner = nil
}
