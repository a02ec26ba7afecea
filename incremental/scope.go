package incremental

import (
	mapset "github.com/deckarep/golang-set/v2"
)

type disposer interface {
	Dispose()
}

// Scope owns every node created while it is active and releases all of
// their upstream subscriptions together.
type Scope struct {
	sys      *System
	parent   *Scope
	members  mapset.Set[disposer]
	disposed bool
}

// Scope runs fn with a new scope active and returns it. Nodes created by fn,
// including nodes created by nested scopes, are disposed by Scope.Dispose.
func (s *System) Scope(fn func()) *Scope {
	sc := &Scope{
		sys:     s,
		parent:  s.scope,
		members: newMemberSet(),
	}
	if sc.parent != nil {
		sc.parent.add(sc)
	}
	s.within(sc, fn)
	return sc
}

func newMemberSet() mapset.Set[disposer] {
	return mapset.NewThreadUnsafeSet[disposer]()
}

func (s *System) within(sc *Scope, fn func()) {
	prev := s.scope
	s.scope = sc
	defer func() {
		s.scope = prev
	}()
	fn()
}

func (sc *Scope) add(d disposer) {
	if sc.disposed {
		d.Dispose()
		return
	}
	sc.members.Add(d)
}

// Len returns the number of members owned by the scope.
func (sc *Scope) Len() int {
	return sc.members.Cardinality()
}

// Dispose disposes every member. Disposing twice is a no-op.
func (sc *Scope) Dispose() {
	if sc.disposed {
		return
	}
	sc.disposed = true
	members := sc.members.ToSlice()
	sc.members.Clear()
	for _, m := range members {
		m.Dispose()
	}
}
