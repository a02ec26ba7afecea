package incremental

import (
	"fmt"
	"io"
	"sort"

	mapset "github.com/deckarep/golang-set/v2"
)

// WriteDOT writes the graph of every node the roots depend on, in Graphviz
// DOT syntax. Nodes are emitted in creation order.
func WriteDOT(w io.Writer, roots ...Vertex) error {
	seen := mapset.NewThreadUnsafeSet[uint64]()
	var all []Vertex
	stack := append([]Vertex(nil), roots...)
	for len(stack) > 0 {
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !seen.Add(v.nodeID()) {
			continue
		}
		all = append(all, v)
		stack = append(stack, v.nodeSources()...)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].nodeID() < all[j].nodeID()
	})

	ew := &errWriter{w: w}
	ew.printf("digraph incremental {\n")
	ew.printf("\trankdir=LR;\n")
	for _, v := range all {
		ew.printf("\tn%d [label=%q];\n", v.nodeID(), v.nodeLabel())
	}
	for _, v := range all {
		for _, src := range v.nodeSources() {
			ew.printf("\tn%d -> n%d;\n", src.nodeID(), v.nodeID())
		}
	}
	ew.printf("}\n")
	return ew.err
}

type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...any) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}
