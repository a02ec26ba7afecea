// Package incremental implements push-based incremental values.
//
// A Node holds a value and an ordered list of subscribers. Derived nodes
// built with Map, Ap, FlatMap, Map2, Merge and MergeSplit subscribe to the
// nodes they are built from, so a Set on a source synchronously brings
// every dependent node up to date:
//
//	sys := incremental.NewSystem()
//	x := incremental.NewNode(sys, 5)
//	double := incremental.Map(x, func(v int) int { return v * 2 })
//	x.Set(10) // double.Get() == 20
//
// Notifications are delivered through a FIFO queue owned by the System and
// drained by the outermost Set, so propagation depth does not grow the call
// stack and a Set that feeds back into one of its own ancestors is reported
// as a *CycleError instead of recursing forever.
//
// Subscriptions are never garbage collected implicitly. Use Dispose,
// Subscription.Stop or System.Scope to release them.
package incremental
