package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"writing_coach/internal/issue"
	"writing_coach/internal/metrics"
	"writing_coach/internal/rubric"
	"writing_coach/internal/segment"
	"writing_coach/internal/style"
)

// Analyzer produces issues for one snapshot. A returned error marks the
// source as unavailable for that run; any issues returned alongside it are kept.
type Analyzer interface {
	Source() issue.Source
	Analyze(ctx context.Context, text string, seg segment.Segmentation) ([]issue.Issue, error)
}

type localAnalyzer struct {
	source issue.Source
	fn     func(text string, seg segment.Segmentation) []issue.Issue
}

// Local adapts a pure analyzer function.
func Local(source issue.Source, fn func(text string, seg segment.Segmentation) []issue.Issue) Analyzer {
	return localAnalyzer{source: source, fn: fn}
}

func (l localAnalyzer) Source() issue.Source { return l.source }

func (l localAnalyzer) Analyze(ctx context.Context, text string, seg segment.Segmentation) ([]issue.Issue, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return l.fn(text, seg), nil
}

// Result is the merged output of one run. It is replaced wholesale, never patched.
type Result struct {
	Version     int64          `json:"version"`
	Text        string         `json:"-"`
	Issues      []issue.Issue  `json:"issues"`
	Score       rubric.Score   `json:"score"`
	Stats       style.Stats    `json:"stats"`
	Unavailable []issue.Source `json:"unavailable"`
	Duration    time.Duration  `json:"duration_ns"`
}

type Option func(*Pipeline)

func WithWorkers(n int) Option              { return func(p *Pipeline) { p.workers = n } }
func WithLogger(l *slog.Logger) Option      { return func(p *Pipeline) { p.logger = l } }
func WithMetrics(m *metrics.Metrics) Option { return func(p *Pipeline) { p.metrics = m } }

type Pipeline struct {
	analyzers []Analyzer
	scorer    *rubric.Scorer
	workers   int
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

func New(analyzers []Analyzer, scorer *rubric.Scorer, opts ...Option) *Pipeline {
	p := &Pipeline{analyzers: analyzers, scorer: scorer}
	for _, opt := range opts {
		opt(p)
	}
	if p.workers <= 0 {
		p.workers = runtime.NumCPU()
		if p.workers < 1 {
			p.workers = 1
		}
	}
	if p.scorer == nil {
		p.scorer = rubric.New(rubric.DefaultConfig(), nil)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

// Run segments the snapshot once, invokes every analyzer against it and
// awaits them jointly before merging and scoring.
func (p *Pipeline) Run(ctx context.Context, snap issue.Snapshot) Result {
	started := time.Now()
	text := snap.Text()
	seg := segment.Segment(text)

	batches := make([][]issue.Issue, len(p.analyzers))
	failed := make([]bool, len(p.analyzers))
	var mu sync.Mutex

	var g errgroup.Group
	g.SetLimit(p.workers)
	for i, a := range p.analyzers {
		g.Go(func() error {
			found, err := a.Analyze(ctx, text, seg)
			mu.Lock()
			batches[i] = found
			failed[i] = err != nil
			mu.Unlock()
			if err != nil {
				p.metrics.AnalyzerFailed(string(a.Source()))
				p.logger.WarnContext(ctx, "analyzer failed", "stage", "pipeline", "source", a.Source(), "version", snap.Version(), "error", err)
			}
			return nil
		})
	}
	_ = g.Wait()

	var all []issue.Issue
	unavailable := []issue.Source{}
	for i, b := range batches {
		all = append(all, b...)
		if failed[i] {
			unavailable = append(unavailable, p.analyzers[i].Source())
		}
	}
	merged, dropped := Merge(all, len(text), snap.Version())
	if dropped > 0 {
		p.logger.DebugContext(ctx, "dropped out-of-range issues", "stage", "pipeline", "count", dropped, "version", snap.Version())
	}

	stats := style.Measure(text, seg)
	res := Result{
		Version:     snap.Version(),
		Text:        text,
		Issues:      merged,
		Score:       p.scorer.Score(rubric.Input{Text: text, Seg: seg, Issues: merged, Stats: stats}),
		Stats:       stats,
		Unavailable: unavailable,
		Duration:    time.Since(started),
	}
	p.logger.DebugContext(ctx, "analysis run finished", "stage", "pipeline",
		"version", res.Version, "issues", len(res.Issues), "unavailable", len(unavailable), "duration", res.Duration)
	return res
}

// Merge drops issues that do not fit a text of n bytes, removes duplicate ids,
// sorts, and stamps version. It returns the number of issues dropped for range.
func Merge(in []issue.Issue, n int, version int64) ([]issue.Issue, int) {
	out := make([]issue.Issue, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	dropped := 0
	for _, is := range in {
		if !is.ValidFor(n) {
			dropped++
			continue
		}
		if is.ID == "" {
			is.ID = issue.MakeID(is.Source, is.Rule, is.Start, is.End)
		}
		if _, dup := seen[is.ID]; dup {
			continue
		}
		seen[is.ID] = struct{}{}
		is.Version = version
		out = append(out, is)
	}
	issue.Sort(out)
	return out, dropped
}

// Each runs fn over items with a fixed number of workers and collects errors.
func Each[T any](items []T, workers int, fn func(T) error) []error {
	if len(items) == 0 || fn == nil {
		return nil
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
		if workers < 1 {
			workers = 1
		}
	}

	jobs := make(chan T)
	errs := make(chan error, len(items))
	var wg sync.WaitGroup

	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for item := range jobs {
				if err := fn(item); err != nil {
					errs <- err
				}
			}
		}()
	}

	for _, item := range items {
		jobs <- item
	}
	close(jobs)
	wg.Wait()
	close(errs)

	out := make([]error, 0, len(errs))
	for err := range errs {
		out = append(out, err)
	}
	return out
}

func (r Result) String() string {
	return fmt.Sprintf("v%d: %d issues, overall %d", r.Version, len(r.Issues), r.Score.Overall)
}
