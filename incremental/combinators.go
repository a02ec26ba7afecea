package incremental

// Map derives a node whose value is always fn applied to n's value.
func Map[T, R any](n *Node[T], fn func(T) R) *Node[R] {
	if fn == nil {
		panic("nil map function")
	}
	r := derive(n.sys, fn(n.value), Vertex(n))
	track(r, n, func(v T) {
		r.assign(fn(v))
	})
	return r
}

// Ap applies the function held by fns to the value held by n. The result
// follows changes to either operand.
func Ap[T, R any](n *Node[T], fns *Node[func(T) R]) *Node[R] {
	sameSystem(n.sys, fns.sys)
	r := derive(n.sys, fns.value(n.value), Vertex(n), Vertex(fns))
	track(r, n, func(v T) {
		r.assign(fns.value(v))
	})
	track(r, fns, func(fn func(T) R) {
		r.assign(fn(n.value))
	})
	return r
}

// FlatMap derives a node that mirrors whichever node fn selects for n's
// current value. When n changes the result rebinds to the newly selected
// node; while bound, changes to that node flow through the result as well.
//
// Nodes created inside fn belong to the binding and are disposed when the
// result rebinds or is itself disposed. Selecting a node that depends on the
// result aborts the pass with a *CycleError and keeps the previous binding.
func FlatMap[T, R any](n *Node[T], fn func(T) *Node[R]) *Node[R] {
	if fn == nil {
		panic("nil flatMap function")
	}
	b := &binding[R]{sys: n.sys, outer: n}
	inner, sc := b.choose(func() *Node[R] { return fn(n.value) })

	r := derive(n.sys, inner.value, Vertex(n), Vertex(inner))
	b.target = r
	b.attach(inner, sc)

	track(r, n, func(v T) {
		inner, sc := b.choose(func() *Node[R] { return fn(v) })
		if err := b.bind(inner, sc); err != nil {
			r.sys.fail(err)
			return
		}
		r.assign(inner.value)
	})
	r.cleanup = append(r.cleanup, b.release)
	return r
}

// Map2 combines two nodes with a binary function.
func Map2[A, B, C any](f func(A, B) C, fa *Node[A], fb *Node[B]) *Node[C] {
	return Ap(fb, Map(fa, Curry(f)))
}

// Curry turns a binary function into a function returning a partial
// application.
func Curry[A, B, C any](f func(A, B) C) func(A) func(B) C {
	return func(a A) func(B) C {
		return func(b B) C {
			return f(a, b)
		}
	}
}
