package route

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/delaneyj/kinetix/incremental"
	"github.com/oklog/ulid/v2"
)

// epoch pins generated ids so the same rng seed yields the same route.
var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// Random builds a route with 1..maxLegs legs of 1..maxEdges edges each.
// Distances and elevations are drawn from [0, 100). Both limits must be
// positive.
func Random(sys *incremental.System, rng *rand.Rand, maxLegs, maxEdges int) (*Route, error) {
	if maxLegs < 1 {
		return nil, fmt.Errorf("max legs %d: %w", maxLegs, ErrNoLegs)
	}
	if maxEdges < 1 {
		return nil, fmt.Errorf("max edges %d: %w", maxEdges, ErrNoEdges)
	}
	ms := ulid.Timestamp(epoch)
	legs := make([][]*Edge, 1+rng.Intn(maxLegs))
	for i := range legs {
		edges := make([]*Edge, 1+rng.Intn(maxEdges))
		for j := range edges {
			id := ulid.MustNew(ms, rng).String()
			edges[j] = NewEdge(sys, id, rng.Float64()*100, rng.Float64()*100)
		}
		legs[i] = edges
	}
	return New(sys, legs)
}
