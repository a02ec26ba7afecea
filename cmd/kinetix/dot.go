package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/delaneyj/kinetix/incremental"
	"github.com/urfave/cli/v3"
)

const outKey = "out"

func dotCommand() *cli.Command {
	return &cli.Command{
		Name:  "dot",
		Usage: "Write the route's dependency graph in Graphviz DOT syntax",
		Flags: append(routeFlags(), &cli.StringFlag{
			Name:    outKey,
			Aliases: []string{"o"},
			Usage:   "Output file, stdout when empty",
		}),
		Action: writeDOT,
	}
}

func writeDOT(ctx context.Context, cmd *cli.Command) error {
	r, err := loadRoute(cmd)
	if err != nil {
		return err
	}

	var w io.Writer = os.Stdout
	if path := cmd.String(outKey); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create %s: %w", path, err)
		}
		defer f.Close()
		w = f
	}
	return incremental.WriteDOT(w, r.CumulativeDistance, r.AverageElevation)
}
