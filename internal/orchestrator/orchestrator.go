package orchestrator

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"writing_coach/internal/issue"
	"writing_coach/internal/metrics"
	"writing_coach/internal/paragraph"
	"writing_coach/internal/pipeline"
	"writing_coach/internal/segment"
)

type State int

const (
	Idle State = iota
	Scheduled
	Running
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Scheduled:
		return "scheduled"
	case Running:
		return "running"
	default:
		return "unknown"
	}
}

const DefaultDebounce = 800 * time.Millisecond

// Runner analyzes one snapshot. *pipeline.Pipeline satisfies it.
type Runner interface {
	Run(ctx context.Context, snap issue.Snapshot) pipeline.Result
}

type Option func(*Orchestrator)

func WithDebounce(d time.Duration) Option      { return func(o *Orchestrator) { o.debounce = d } }
func WithParagraphMinChars(n int) Option       { return func(o *Orchestrator) { o.minChars = n } }
func WithLogger(l *slog.Logger) Option         { return func(o *Orchestrator) { o.logger = l } }
func WithMetrics(m *metrics.Metrics) Option    { return func(o *Orchestrator) { o.metrics = m } }
func OnCommit(fn func(pipeline.Result)) Option { return func(o *Orchestrator) { o.onCommit = fn } }

// OnParagraphs is called once for each batch of newly complete paragraphs.
func OnParagraphs(fn func(issue.Snapshot, []segment.Span)) Option {
	return func(o *Orchestrator) { o.onParagraphs = fn }
}

// Orchestrator debounces edits and runs at most one analysis at a time. A run
// whose snapshot is no longer current when it finishes is discarded whole.
type Orchestrator struct {
	runner   Runner
	debounce time.Duration
	minChars int
	logger   *slog.Logger
	metrics  *metrics.Metrics

	onCommit     func(pipeline.Result)
	onParagraphs func(issue.Snapshot, []segment.Span)

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	// taken before mu and held across onCommit so callbacks see commits in order
	commitMu sync.Mutex

	mu        sync.Mutex
	snap      issue.Snapshot
	state     State
	timer     *time.Timer
	gen       uint64
	due       bool
	committed *pipeline.Result
	closed    bool
}

func New(runner Runner, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		runner:   runner,
		debounce: DefaultDebounce,
		minChars: paragraph.DefaultMinChars,
		snap:     issue.NewSnapshot("", 0),
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.debounce < 0 {
		o.debounce = 0
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	o.ctx, o.cancel = context.WithCancel(context.Background())
	return o
}

// Update records an edit and restarts the debounce timer.
func (o *Orchestrator) Update(text string) issue.Snapshot {
	return o.edit(text, false)
}

// Replace records an edit and drops the committed result at once, so nothing
// computed for the old text is shown until the next run commits.
func (o *Orchestrator) Replace(text string) issue.Snapshot {
	return o.edit(text, true)
}

func (o *Orchestrator) edit(text string, clear bool) issue.Snapshot {
	o.mu.Lock()
	if o.closed {
		snap := o.snap
		o.mu.Unlock()
		return snap
	}
	prev := o.snap.Text()
	o.snap = o.snap.Next(text)
	snap := o.snap
	if clear {
		o.committed = nil
	}
	if o.state != Running {
		o.state = Scheduled
	}
	o.armLocked()
	o.mu.Unlock()

	done := paragraph.DetectCompleted(prev, text, o.minChars)
	if len(done) > 0 {
		o.metrics.ParagraphsCompleted(len(done))
		if o.onParagraphs != nil {
			o.onParagraphs(snap, done)
		}
	}
	return snap
}

// Flush skips the remaining debounce delay.
func (o *Orchestrator) Flush() {
	o.mu.Lock()
	gen := o.gen
	o.mu.Unlock()
	o.fire(gen)
}

func (o *Orchestrator) armLocked() {
	if o.timer != nil {
		o.timer.Stop()
	}
	o.gen++
	o.due = false
	gen := o.gen
	o.timer = time.AfterFunc(o.debounce, func() { o.fire(gen) })
}

func (o *Orchestrator) fire(gen uint64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed || gen != o.gen {
		return
	}
	switch o.state {
	case Running:
		o.due = true
	case Scheduled:
		o.startLocked()
	}
}

func (o *Orchestrator) startLocked() {
	o.state = Running
	o.due = false
	snap := o.snap
	o.wg.Add(1)
	go o.run(snap)
}

func (o *Orchestrator) run(snap issue.Snapshot) {
	defer o.wg.Done()
	res := o.runner.Run(o.ctx, snap)

	o.commitMu.Lock()
	defer o.commitMu.Unlock()
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return
	}
	if snap.Version() != o.snap.Version() {
		o.metrics.RunDiscarded(res.Duration)
		o.logger.Debug("discarded stale analysis", "stage", "orchestrator",
			"version", snap.Version(), "current", o.snap.Version())
		if o.due {
			o.startLocked()
		} else {
			o.state = Scheduled
		}
		o.mu.Unlock()
		return
	}
	o.committed = &res
	o.state = Idle
	o.mu.Unlock()

	o.metrics.RunCommitted(res.Duration)
	o.logger.Debug("committed analysis", "stage", "orchestrator",
		"version", res.Version, "issues", len(res.Issues), "duration", res.Duration)
	if o.onCommit != nil {
		o.onCommit(res)
	}
}

func (o *Orchestrator) Snapshot() issue.Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.snap
}

func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Committed returns the last committed result. Its Version may be older than
// the current snapshot while a new run is pending.
func (o *Orchestrator) Committed() (pipeline.Result, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.committed == nil {
		return pipeline.Result{}, false
	}
	return *o.committed, true
}

// Close stops the timer, cancels any in-flight run and waits for it to return.
func (o *Orchestrator) Close() {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return
	}
	o.closed = true
	if o.timer != nil {
		o.timer.Stop()
	}
	o.mu.Unlock()
	o.cancel()
	o.wg.Wait()
}
