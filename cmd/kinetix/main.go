package main

import (
	"context"
	"log"
	"os"

	"github.com/urfave/cli/v3"
)

func main() {
	cmd := &cli.Command{
		Name:  "kinetix",
		Usage: "Incremental value benchmarks and route playground",
		Commands: []*cli.Command{
			benchCommand(),
			routeCommand(),
			dotCommand(),
		},
	}
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
