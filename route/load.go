package route

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/delaneyj/kinetix/incremental"
	"gopkg.in/yaml.v3"
)

var ErrMissingID = errors.New("edge id is required")

// File is the on-disk description of a route.
type File struct {
	Name string    `yaml:"name,omitempty"`
	Legs []LegFile `yaml:"legs"`
}

type LegFile struct {
	Edges []EdgeFile `yaml:"edges"`
}

type EdgeFile struct {
	ID        string  `yaml:"id"`
	Distance  float64 `yaml:"distance"`
	Elevation float64 `yaml:"elevation"`
}

// Load reads a YAML route file and builds it on sys.
func Load(sys *incremental.System, path string) (*Route, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read route file: %w", err)
	}
	return Decode(sys, bytes.NewReader(data))
}

// Decode parses a YAML route description. Unknown fields are rejected.
func Decode(sys *incremental.System, r io.Reader) (*Route, error) {
	var f File
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&f); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return f.Build(sys)
}

// Build creates the edges described by f and assembles the route.
func (f *File) Build(sys *incremental.System) (*Route, error) {
	legs := make([][]*Edge, len(f.Legs))
	for i, leg := range f.Legs {
		for j, e := range leg.Edges {
			if e.ID == "" {
				return nil, fmt.Errorf("leg %d edge %d: %w", i, j, ErrMissingID)
			}
			legs[i] = append(legs[i], NewEdge(sys, e.ID, e.Distance, e.Elevation))
		}
	}
	r, err := New(sys, legs)
	if err != nil {
		return nil, fmt.Errorf("invalid route: %w", err)
	}
	return r, nil
}

// Snapshot captures the current edge values of r.
func (r *Route) Snapshot() *File {
	f := &File{Legs: make([]LegFile, len(r.Legs))}
	for i, leg := range r.Legs {
		for _, e := range leg.Edges {
			f.Legs[i].Edges = append(f.Legs[i].Edges, EdgeFile{
				ID:        e.ID,
				Distance:  e.Distance.Get(),
				Elevation: e.Elevation.Get(),
			})
		}
	}
	return f
}
