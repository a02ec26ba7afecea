package templates

import (
	"strconv"
	"time"
)

// BenchRow is one line of a bench report.
type BenchRow struct {
	Name                    string
	Avg, Min, P75, P99, Max time.Duration
	Steps                   float64
}

func steps(perOp float64) string {
	return strconv.FormatFloat(perOp, 'f', 1, 64)
}
