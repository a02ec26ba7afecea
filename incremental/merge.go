package incremental

import (
	"container/list"
	"fmt"
)

// Merge folds nodes with f using a balanced reduction tree built by
// repeatedly pairing adjacent nodes, so that updating a single leaf only
// recomputes O(log n) combiner nodes.
//
// Pairs are combined in positional order and an odd trailing node is
// carried to the end of the next round, so the result is the left-to-right
// fold of the leaves for any associative f.
func Merge[A any](nodes []*Node[A], f func(A, A) A) (*Node[A], error) {
	if err := checkMergeInput(nodes, f); err != nil {
		return nil, err
	}

	ar := append([]*Node[A](nil), nodes...)
	for len(ar) > 1 {
		next := make([]*Node[A], (len(ar)+1)/2)
		for i := range next {
			if 2*i+1 >= len(ar) {
				next[i] = ar[2*i]
				continue
			}
			next[i] = Ap(ar[2*i], Map(ar[2*i+1], func(b A) func(A) A {
				return func(a A) A {
					return f(a, b)
				}
			}))
		}
		ar = next
	}
	return ar[0], nil
}

// MergeSplit folds nodes with f by splitting the sequence at its midpoint,
// merging both halves recursively and joining them with Map2.
func MergeSplit[A any](nodes []*Node[A], f func(A, A) A) (*Node[A], error) {
	if err := checkMergeInput(nodes, f); err != nil {
		return nil, err
	}
	return mergeSplit(nodes, f), nil
}

func mergeSplit[A any](nodes []*Node[A], f func(A, A) A) *Node[A] {
	if len(nodes) == 1 {
		return nodes[0]
	}
	mid := len(nodes) / 2
	left := mergeSplit(nodes[:mid], f)
	right := mergeSplit(nodes[mid:], f)
	return Map2(f, left, right)
}

// MergeList is MergeSplit over an ordered list whose elements are *Node[A].
func MergeList[A any](l *list.List, f func(A, A) A) (*Node[A], error) {
	if l == nil || l.Len() == 0 {
		return nil, ErrEmptyMerge
	}
	nodes := make([]*Node[A], 0, l.Len())
	i := 0
	for e := l.Front(); e != nil; e = e.Next() {
		n, ok := e.Value.(*Node[A])
		if !ok {
			return nil, fmt.Errorf("element %d is %T: %w", i, e.Value, ErrNotANode)
		}
		nodes = append(nodes, n)
		i++
	}
	return MergeSplit(nodes, f)
}

func checkMergeInput[A any](nodes []*Node[A], f func(A, A) A) error {
	if f == nil {
		panic("nil merge function")
	}
	if len(nodes) == 0 {
		return ErrEmptyMerge
	}
	var sys *System
	for i, n := range nodes {
		if n == nil {
			return fmt.Errorf("element %d is nil: %w", i, ErrNotANode)
		}
		if sys == nil {
			sys = n.sys
		}
		sameSystem(sys, n.sys)
	}
	return nil
}
