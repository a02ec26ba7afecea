package incremental

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrEmptyMerge is returned when merging an empty collection of nodes.
	ErrEmptyMerge = errors.New("merge of empty node collection")
	// ErrNotANode is returned when a merge input holds something other than
	// a non-nil node of the expected type.
	ErrNotANode = errors.New("merge input is not a node")
	// ErrStepLimit aborts a pass that exceeded WithMaxSteps.
	ErrStepLimit = errors.New("propagation step limit exceeded")
	// ErrCycle matches every *CycleError.
	ErrCycle = errors.New("cyclic propagation")
	// ErrPanic is reported to Metrics when a subscriber panics mid-pass.
	ErrPanic = errors.New("subscriber panicked")
)

// CycleError reports a Set on a node that is already an ancestor of the
// notification being delivered, or a FlatMap selecting a node that depends
// on the FlatMap's own result. Lineage lists the nodes the value would pass
// through before reaching Node again.
type CycleError struct {
	Node    string
	Lineage []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("%s: %s reached again via %s", ErrCycle, e.Node, strings.Join(e.Lineage, " -> "))
}

func (e *CycleError) Is(target error) bool {
	return target == ErrCycle
}
