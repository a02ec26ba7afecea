// Package route models a route made of legs and edges whose aggregate
// distance and elevation figures are incremental values: changing one
// edge updates every aggregate in O(log n) steps.
package route

import (
	"errors"
	"fmt"

	"github.com/delaneyj/kinetix/incremental"
)

var (
	ErrNoLegs      = errors.New("route has no legs")
	ErrNoEdges     = errors.New("leg has no edges")
	ErrDuplicateID = errors.New("duplicate edge id")
)

func sum(a, b float64) float64 { return a + b }

// Edge is a single segment with independently mutable attributes.
type Edge struct {
	ID        string
	Distance  *incremental.Node[float64]
	Elevation *incremental.Node[float64]
}

// NewEdge creates the distance and elevation source nodes of an edge.
func NewEdge(sys *incremental.System, id string, distance, elevation float64) *Edge {
	return &Edge{
		ID:        id,
		Distance:  incremental.NewNode(sys, distance).Named(id + ".distance"),
		Elevation: incremental.NewNode(sys, elevation).Named(id + ".elevation"),
	}
}

// Leg is an ordered run of edges.
type Leg struct {
	Edges            []*Edge
	Distance         *incremental.Node[float64]
	AverageElevation *incremental.Node[float64]
}

// NewLeg builds the leg aggregates over edges, which must not be empty.
func NewLeg(edges []*Edge) (*Leg, error) {
	if len(edges) == 0 {
		return nil, ErrNoEdges
	}
	distance, err := incremental.MergeSplit(distances(edges), sum)
	if err != nil {
		return nil, fmt.Errorf("leg distance: %w", err)
	}
	elevation, err := incremental.MergeSplit(elevations(edges), sum)
	if err != nil {
		return nil, fmt.Errorf("leg elevation: %w", err)
	}
	count := float64(len(edges))
	return &Leg{
		Edges:    edges,
		Distance: distance,
		AverageElevation: incremental.Map(elevation, func(total float64) float64 {
			return total / count
		}),
	}, nil
}

// Route is an ordered run of legs.
type Route struct {
	Legs []*Leg

	// LegDistance[i] is the distance covered from the start of the route to
	// the end of leg i.
	LegDistance        []*incremental.Node[float64]
	CumulativeDistance *incremental.Node[float64]
	AverageElevation   *incremental.Node[float64]

	edges map[string]*Edge
	scope *incremental.Scope
}

// New builds a route from the edges of each leg. Every derived node is owned
// by the route and released by Dispose.
func New(sys *incremental.System, legs [][]*Edge) (*Route, error) {
	if len(legs) == 0 {
		return nil, ErrNoLegs
	}
	r := &Route{edges: map[string]*Edge{}}
	for i, edges := range legs {
		for _, e := range edges {
			if _, ok := r.edges[e.ID]; ok {
				return nil, fmt.Errorf("leg %d edge %q: %w", i, e.ID, ErrDuplicateID)
			}
			r.edges[e.ID] = e
		}
	}

	var err error
	r.scope = sys.Scope(func() {
		err = r.build(legs)
	})
	if err != nil {
		r.scope.Dispose()
		return nil, err
	}
	return r, nil
}

func (r *Route) build(legs [][]*Edge) error {
	legDistances := make([]*incremental.Node[float64], 0, len(legs))
	for i, edges := range legs {
		leg, err := NewLeg(edges)
		if err != nil {
			return fmt.Errorf("leg %d: %w", i, err)
		}
		r.Legs = append(r.Legs, leg)
		legDistances = append(legDistances, leg.Distance)

		upTo, err := incremental.MergeSplit(legDistances, sum)
		if err != nil {
			return fmt.Errorf("distance through leg %d: %w", i, err)
		}
		r.LegDistance = append(r.LegDistance, upTo)
	}
	r.CumulativeDistance = r.LegDistance[len(r.LegDistance)-1]

	all := r.Edges()
	total, err := incremental.Merge(elevations(all), sum)
	if err != nil {
		return fmt.Errorf("route elevation: %w", err)
	}
	count := float64(len(all))
	r.AverageElevation = incremental.Map(total, func(v float64) float64 {
		return v / count
	}).Named("route.elevation")
	return nil
}

// Edges returns every edge in route order.
func (r *Route) Edges() []*Edge {
	var out []*Edge
	for _, leg := range r.Legs {
		out = append(out, leg.Edges...)
	}
	return out
}

// Edge looks an edge up by id.
func (r *Route) Edge(id string) (*Edge, bool) {
	e, ok := r.edges[id]
	return e, ok
}

// Dispose detaches every aggregate from the edges.
func (r *Route) Dispose() {
	r.scope.Dispose()
}

func distances(edges []*Edge) []*incremental.Node[float64] {
	out := make([]*incremental.Node[float64], len(edges))
	for i, e := range edges {
		out[i] = e.Distance
	}
	return out
}

func elevations(edges []*Edge) []*incremental.Node[float64] {
	out := make([]*incremental.Node[float64], len(edges))
	for i, e := range edges {
		out[i] = e.Elevation
	}
	return out
}
