package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"runtime/pprof"
	"time"

	"github.com/delaneyj/kinetix/cmd/kinetix/templates"
	"github.com/delaneyj/kinetix/incremental"
	"github.com/delaneyj/kinetix/incremental/promstats"
	"github.com/dustin/go-humanize"
	"github.com/jamiealquiza/tachymeter"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v3"
)

const (
	itersKey   = "iters"
	formatKey  = "format"
	pprofKey   = "pprof"
	quickKey   = "quick"
	metricsKey = "metrics"
)

func benchCommand() *cli.Command {
	return &cli.Command{
		Name:  "bench",
		Usage: "Measure Set latency for map chains and merge trees",
		Flags: []cli.Flag{
			&cli.UintFlag{
				Name:  itersKey,
				Usage: "Set calls measured per benchmark",
				Value: 100,
			},
			&cli.StringFlag{
				Name:  formatKey,
				Usage: "Output format: table or markdown",
				Value: "table",
			},
			&cli.StringFlag{
				Name:  pprofKey,
				Usage: "Write a CPU profile to this file",
			},
			&cli.BoolFlag{
				Name:  quickKey,
				Usage: "Skip the largest graphs",
			},
			&cli.BoolFlag{
				Name:  metricsKey,
				Usage: "Print the collected propagation metrics",
			},
		},
		Action: bench,
	}
}

var (
	ww = []int{1, 10, 100, 1_000}
	hh = []int{1, 10, 100, 1_000}
	nn = []int{16, 256, 4_096, 65_536}
)

type benchResult struct {
	name  string
	calc  *tachymeter.Metrics
	steps float64
}

func addOne(v int) int {
	return v + 1
}

func pass(int) {}

func bench(ctx context.Context, cmd *cli.Command) error {
	start := time.Now()
	log.Printf("Benchmark started")
	defer func() {
		log.Printf("Benchmark finished in %v", time.Since(start))
	}()

	if path := cmd.String(pprofKey); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create profile: %w", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			return fmt.Errorf("start profile: %w", err)
		}
		defer pprof.StopCPUProfile()
	}

	iters := int(cmd.Uint(itersKey))
	if iters == 0 {
		return fmt.Errorf("--%s must be positive", itersKey)
	}
	widths, heights, sizes := ww, hh, nn
	if cmd.Bool(quickKey) {
		widths, heights, sizes = ww[:3], hh[:3], nn[:3]
	}

	reg := prometheus.NewRegistry()
	opts := []incremental.Option{
		incremental.WithMetrics(promstats.New(promstats.WithRegistry(reg))),
	}

	var propagate, merge []benchResult
	for _, w := range widths {
		for _, h := range heights {
			propagate = append(propagate, benchPropagate(w, h, iters, opts...))
		}
	}
	for _, n := range sizes {
		for _, strategy := range mergeStrategies {
			res, err := benchMerge(strategy, n, iters, opts...)
			if err != nil {
				return err
			}
			merge = append(merge, res)
		}
	}

	switch cmd.String(formatKey) {
	case "table":
		renderTable("Map chains", propagate)
		renderTable("Merge trees", merge)
	case "markdown":
		fmt.Print(templates.BenchReport("Map chains", reportRows(propagate)))
		fmt.Print(templates.BenchReport("Merge trees", reportRows(merge)))
	default:
		return fmt.Errorf("unknown format %q", cmd.String(formatKey))
	}

	if cmd.Bool(metricsKey) {
		if err := renderMetrics(reg); err != nil {
			return err
		}
	}
	return nil
}

func benchPropagate(w, h, iters int, opts ...incremental.Option) benchResult {
	sys := incremental.NewSystem(opts...)
	src := incremental.NewNode(sys, 1)
	for i := 0; i < w; i++ {
		last := src
		for j := 0; j < h; j++ {
			last = incremental.Map(last, addOne)
		}
		last.Observe(pass)
	}
	return measure(fmt.Sprintf("propagate: %d * %d", w, h), sys, iters, func(int) {
		src.Set(src.Get() + 1)
	})
}

type mergeStrategy struct {
	name  string
	build func([]*incremental.Node[int]) (*incremental.Node[int], error)
}

func sum(a, b int) int {
	return a + b
}

var mergeStrategies = []mergeStrategy{
	{"array", func(nodes []*incremental.Node[int]) (*incremental.Node[int], error) {
		return incremental.Merge(nodes, sum)
	}},
	{"split", func(nodes []*incremental.Node[int]) (*incremental.Node[int], error) {
		return incremental.MergeSplit(nodes, sum)
	}},
	{"fold", func(nodes []*incremental.Node[int]) (*incremental.Node[int], error) {
		acc := nodes[0]
		for _, n := range nodes[1:] {
			acc = incremental.Map2(sum, acc, n)
		}
		return acc, nil
	}},
}

func benchMerge(strategy mergeStrategy, n, iters int, opts ...incremental.Option) (benchResult, error) {
	sys := incremental.NewSystem(opts...)
	leaves := make([]*incremental.Node[int], n)
	for i := range leaves {
		leaves[i] = incremental.NewNode(sys, i)
	}
	root, err := strategy.build(leaves)
	if err != nil {
		return benchResult{}, fmt.Errorf("%s merge of %d leaves: %w", strategy.name, n, err)
	}
	root.Observe(pass)

	return measure(fmt.Sprintf("merge %s: %s leaves", strategy.name, humanize.Comma(int64(n))), sys, iters, func(i int) {
		// the first leaf sits at the bottom of a left fold
		leaf := leaves[(i*7919)%n]
		if strategy.name == "fold" {
			leaf = leaves[0]
		}
		leaf.Set(leaf.Get() + 1)
	}), nil
}

func measure(name string, sys *incremental.System, iters int, op func(i int)) benchResult {
	tach := tachymeter.New(&tachymeter.Config{Size: iters})
	before := sys.Stats().Steps
	for i := 0; i < iters; i++ {
		start := time.Now()
		op(i)
		tach.AddTime(time.Since(start))
	}
	return benchResult{
		name:  name,
		calc:  tach.Calc(),
		steps: float64(sys.Stats().Steps-before) / float64(iters),
	}
}

func renderTable(title string, results []benchResult) {
	tbl := table.NewWriter()
	tbl.SetTitle(title)
	tbl.SetOutputMirror(os.Stdout)
	tbl.AppendHeader(table.Row{"benchmark", "avg", "min", "p75", "p99", "max", "steps/op"})
	for _, r := range results {
		tbl.AppendRow(table.Row{
			r.name,
			r.calc.Time.Avg,
			r.calc.Time.Min,
			r.calc.Time.P75,
			r.calc.Time.P99,
			r.calc.Time.Max,
			humanize.CommafWithDigits(r.steps, 1),
		})
	}
	tbl.Render()
}

func reportRows(results []benchResult) []templates.BenchRow {
	rows := make([]templates.BenchRow, len(results))
	for i, r := range results {
		rows[i] = templates.BenchRow{
			Name:  r.name,
			Avg:   r.calc.Time.Avg,
			Min:   r.calc.Time.Min,
			P75:   r.calc.Time.P75,
			P99:   r.calc.Time.P99,
			Max:   r.calc.Time.Max,
			Steps: r.steps,
		}
	}
	return rows
}

func renderMetrics(reg *prometheus.Registry) error {
	families, err := reg.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	tbl := table.NewWriter()
	tbl.SetTitle("Propagation metrics")
	tbl.SetOutputMirror(os.Stdout)
	tbl.AppendHeader(table.Row{"metric", "labels", "value"})
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			labels := ""
			for _, lp := range m.GetLabel() {
				labels += lp.GetName() + "=" + lp.GetValue() + " "
			}
			var value string
			switch {
			case m.GetCounter() != nil:
				value = humanize.Commaf(m.GetCounter().GetValue())
			case m.GetHistogram() != nil:
				h := m.GetHistogram()
				value = fmt.Sprintf("count=%s sum=%g", humanize.Comma(int64(h.GetSampleCount())), h.GetSampleSum())
			}
			tbl.AppendRow(table.Row{mf.GetName(), labels, value})
		}
	}
	tbl.Render()
	return nil
}
