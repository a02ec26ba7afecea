package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"os"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/delaneyj/kinetix/incremental"
	"github.com/delaneyj/kinetix/route"
	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v3"
)

const (
	fileKey  = "file"
	seedKey  = "seed"
	legsKey  = "legs"
	edgesKey = "edges"
	bumpKey  = "bump"
)

var errBadBump = errors.New("bump must look like <edge-id>=<delta>")

func routeFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    fileKey,
			Aliases: []string{"f"},
			Usage:   "YAML route file; a random route is generated when empty",
		},
		&cli.StringFlag{
			Name:  seedKey,
			Usage: "Seed for the random route",
			Value: "kinetix",
		},
		&cli.UintFlag{
			Name:  legsKey,
			Usage: "Maximum legs in a random route",
			Value: 5,
		},
		&cli.UintFlag{
			Name:  edgesKey,
			Usage: "Maximum edges per leg in a random route",
			Value: 8,
		},
	}
}

func routeCommand() *cli.Command {
	return &cli.Command{
		Name:  "route",
		Usage: "Print route aggregates, optionally after bumping edge distances",
		Flags: append(routeFlags(), &cli.StringSliceFlag{
			Name:  bumpKey,
			Usage: "Add a delta to an edge distance, as <edge-id>=<delta>; repeatable",
		}),
		Action: showRoute,
	}
}

func loadRoute(cmd *cli.Command) (*route.Route, error) {
	sys := incremental.NewSystem()
	if path := cmd.String(fileKey); path != "" {
		log.Printf("Loading route from %s", path)
		return route.Load(sys, path)
	}
	legs, edges := int(cmd.Uint(legsKey)), int(cmd.Uint(edgesKey))
	if legs == 0 || edges == 0 {
		return nil, fmt.Errorf("--%s and --%s must be positive", legsKey, edgesKey)
	}
	seed := cmd.String(seedKey)
	log.Printf("Generating random route from seed %q", seed)
	rng := rand.New(rand.NewSource(int64(xxhash.Sum64String(seed))))
	return route.Random(sys, rng, legs, edges)
}

func showRoute(ctx context.Context, cmd *cli.Command) error {
	r, err := loadRoute(cmd)
	if err != nil {
		return err
	}
	renderRoute(r)

	bumps := cmd.StringSlice(bumpKey)
	if len(bumps) == 0 {
		return nil
	}
	before := r.CumulativeDistance.Get()
	for _, b := range bumps {
		id, delta, err := parseBump(b)
		if err != nil {
			return err
		}
		e, ok := r.Edge(id)
		if !ok {
			return fmt.Errorf("unknown edge %q", id)
		}
		e.Distance.Set(e.Distance.Get() + delta)
	}
	log.Printf("Distance changed by %s", humanize.CommafWithDigits(r.CumulativeDistance.Get()-before, 3))
	renderRoute(r)
	return nil
}

func parseBump(s string) (string, float64, error) {
	id, raw, ok := strings.Cut(s, "=")
	if !ok || id == "" {
		return "", 0, fmt.Errorf("%q: %w", s, errBadBump)
	}
	delta, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return "", 0, fmt.Errorf("%q: %w", s, errors.Join(errBadBump, err))
	}
	return id, delta, nil
}

func renderRoute(r *route.Route) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"leg", "edges", "distance", "cumulative", "avg elevation"})
	for i, leg := range r.Legs {
		table.Append([]string{
			strconv.Itoa(i + 1),
			strconv.Itoa(len(leg.Edges)),
			humanize.CommafWithDigits(leg.Distance.Get(), 2),
			humanize.CommafWithDigits(r.LegDistance[i].Get(), 2),
			humanize.CommafWithDigits(leg.AverageElevation.Get(), 2),
		})
	}
	table.SetFooter([]string{
		"total",
		strconv.Itoa(len(r.Edges())),
		"",
		humanize.CommafWithDigits(r.CumulativeDistance.Get(), 2),
		humanize.CommafWithDigits(r.AverageElevation.Get(), 2),
	})
	table.Render()
}
