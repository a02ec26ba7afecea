package incremental

import (
	"fmt"
	"log/slog"
	"time"
)

// ErrorHandler receives errors that abort a propagation pass.
type ErrorHandler func(err error)

// Metrics is notified about every propagation pass the System runs.
type Metrics interface {
	PassCompleted(steps int, elapsed time.Duration)
	PassFailed(err error)
}

// Option configures a System.
type Option func(*System)

// WithErrorHandler replaces the default handler, which panics.
func WithErrorHandler(fn ErrorHandler) Option {
	return func(s *System) {
		s.onError = fn
	}
}

// WithMaxSteps caps the number of subscriber invocations in a single pass.
// Zero means unlimited.
func WithMaxSteps(n int) Option {
	return func(s *System) {
		s.maxSteps = n
	}
}

// WithMetrics installs a pass observer.
func WithMetrics(m Metrics) Option {
	return func(s *System) {
		s.metrics = m
	}
}

// WithLogger sets the logger used for pass diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(s *System) {
		s.logger = l
	}
}

// Stats are running totals kept by a System.
type Stats struct {
	Passes int64
	Steps  int64
	Sets   int64
	Errors int64
}

// System owns the propagation queue shared by every Node created from it.
// It is not safe for concurrent use.
type System struct {
	onError  ErrorHandler
	maxSteps int
	metrics  Metrics
	logger   *slog.Logger

	nextID uint64
	scope  *Scope

	queue    []job
	head     int
	draining bool
	lineage  *lineage
	steps    int
	failed   error

	stats Stats
}

// job is one pending subscriber invocation.
type job struct {
	sub     *Subscription
	run     func()
	lineage *lineage
}

// lineage is the chain of explicitly set nodes that caused a job.
type lineage struct {
	node   uint64
	label  string
	parent *lineage
}

func (l *lineage) contains(id uint64) bool {
	for ; l != nil; l = l.parent {
		if l.node == id {
			return true
		}
	}
	return false
}

func (l *lineage) labels() []string {
	var out []string
	for ; l != nil; l = l.parent {
		out = append(out, l.label)
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// NewSystem creates a System configured by opts.
func NewSystem(opts ...Option) *System {
	s := &System{}
	for _, opt := range opts {
		opt(s)
	}
	if s.onError == nil {
		s.onError = func(err error) {
			panic(err)
		}
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// Stats returns a snapshot of the running totals.
func (s *System) Stats() Stats {
	return s.stats
}

// Propagating reports whether a pass is currently being drained.
func (s *System) Propagating() bool {
	return s.draining
}

func (s *System) newID() uint64 {
	s.nextID++
	return s.nextID
}

// write records an explicit Set on node id and returns the lineage the
// resulting jobs should carry, or an error if the write closes a cycle.
func (s *System) write(id uint64, label string) (*lineage, error) {
	s.stats.Sets++
	if s.lineage.contains(id) {
		return nil, &CycleError{
			Node:    label,
			Lineage: s.lineage.labels(),
		}
	}
	return &lineage{node: id, label: label, parent: s.lineage}, nil
}

func (s *System) enqueue(sub *Subscription, run func(), l *lineage) {
	s.queue = append(s.queue, job{sub: sub, run: run, lineage: l})
}

// flush drains the queue unless a pass is already running further up the
// stack, in which case the caller's jobs are picked up by that pass.
func (s *System) flush() {
	if s.draining {
		return
	}
	s.draining = true
	s.steps = 0
	start := time.Now()

	s.drain()

	err := s.failed
	steps := s.steps
	s.reset()
	s.stats.Passes++
	if err != nil {
		s.stats.Errors++
		s.logger.Error("propagation pass abandoned", "steps", steps, "err", err)
		if s.metrics != nil {
			s.metrics.PassFailed(err)
		}
		s.onError(err)
		return
	}
	elapsed := time.Since(start)
	s.logger.Debug("propagation pass completed", "steps", steps, "elapsed", elapsed)
	if s.metrics != nil {
		s.metrics.PassCompleted(steps, elapsed)
	}
}

// drain runs queued jobs until the queue is empty or the pass fails. A
// panicking job still closes the pass before the panic continues.
func (s *System) drain() {
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("%w: %v", ErrPanic, r)
			steps := s.steps
			s.reset()
			s.stats.Passes++
			s.stats.Errors++
			s.logger.Error("propagation pass panicked", "steps", steps, "err", err)
			if s.metrics != nil {
				s.metrics.PassFailed(err)
			}
			panic(r)
		}
	}()

	for s.head < len(s.queue) {
		j := s.queue[s.head]
		s.queue[s.head] = job{}
		s.head++
		if j.sub.stopped {
			continue
		}
		s.steps++
		s.stats.Steps++
		if s.maxSteps > 0 && s.steps > s.maxSteps {
			s.fail(ErrStepLimit)
			break
		}
		s.lineage = j.lineage
		j.run()
		if s.failed != nil {
			break
		}
	}
}

// fail abandons the running pass. Only the first error is kept.
func (s *System) fail(err error) {
	if s.failed == nil {
		s.failed = err
	}
}

func (s *System) reset() {
	s.queue = s.queue[:0]
	s.head = 0
	s.draining = false
	s.lineage = nil
	s.steps = 0
	s.failed = nil
}
