package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"writing_coach/internal/coach"
	"writing_coach/internal/db"
	"writing_coach/internal/highlight"
	"writing_coach/internal/issue"
	"writing_coach/internal/metrics"
	"writing_coach/internal/orchestrator"
	"writing_coach/internal/pipeline"
	"writing_coach/internal/rubric"
	"writing_coach/internal/segment"
)

// ErrUnknownIssue and ErrStale are returned by ApplySuggestion.
var (
	ErrUnknownIssue = highlight.ErrUnknownIssue
	ErrStale        = highlight.ErrStale
)

// Store persists committed results. *db.Store satisfies it.
type Store interface {
	Save(rec db.Record) error
}

type settings struct {
	coach    *coach.Coach
	store    Store
	logger   *slog.Logger
	metrics  *metrics.Metrics
	debounce time.Duration
	minChars int
}

type Option func(*settings)

func WithCoach(c *coach.Coach) Option       { return func(s *settings) { s.coach = c } }
func WithStore(st Store) Option             { return func(s *settings) { s.store = st } }
func WithLogger(l *slog.Logger) Option      { return func(s *settings) { s.logger = l } }
func WithMetrics(m *metrics.Metrics) Option { return func(s *settings) { s.metrics = m } }
func WithDebounce(d time.Duration) Option   { return func(s *settings) { s.debounce = d } }
func WithParagraphMinChars(n int) Option    { return func(s *settings) { s.minChars = n } }

func buildSettings(opts []Option) settings {
	s := settings{debounce: orchestrator.DefaultDebounce}
	for _, opt := range opts {
		opt(&s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// Info summarises a session for listings.
type Info struct {
	ID        string    `json:"id"`
	Version   int64     `json:"version"`
	Committed int64     `json:"committed_version"`
	State     string    `json:"state"`
	Tips      int       `json:"tip_count"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Session is the editor-facing facade over one document: edits go in through
// Update, and highlights, the score and tips come out.
type Session struct {
	id     string
	orch   *orchestrator.Orchestrator
	cfg    settings
	logger *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	// serialises edits so ApplySuggestion sees the text it projects against
	editMu sync.Mutex

	mu      sync.Mutex
	tips    []coach.Tip
	created time.Time
	updated time.Time
}

func New(id string, runner orchestrator.Runner, opts ...Option) *Session {
	cfg := buildSettings(opts)
	s := &Session{
		id:      id,
		cfg:     cfg,
		logger:  cfg.logger.With("session", id),
		created: time.Now(),
	}
	s.updated = s.created
	s.ctx, s.cancel = context.WithCancel(context.Background())

	orchOpts := []orchestrator.Option{
		orchestrator.WithDebounce(cfg.debounce),
		orchestrator.WithLogger(s.logger),
		orchestrator.WithMetrics(cfg.metrics),
		orchestrator.OnCommit(s.committed),
		orchestrator.OnParagraphs(s.paragraphsCompleted),
	}
	if cfg.minChars > 0 {
		orchOpts = append(orchOpts, orchestrator.WithParagraphMinChars(cfg.minChars))
	}
	s.orch = orchestrator.New(runner, orchOpts...)
	return s
}

func (s *Session) ID() string { return s.id }

// Update records the full current text of the document.
func (s *Session) Update(text string) issue.Snapshot {
	s.editMu.Lock()
	defer s.editMu.Unlock()
	s.touch()
	return s.orch.Update(text)
}

// Flush starts analysis now instead of waiting out the debounce delay.
func (s *Session) Flush() { s.orch.Flush() }

func (s *Session) Snapshot() issue.Snapshot { return s.orch.Snapshot() }

func (s *Session) State() orchestrator.State { return s.orch.State() }

// Result returns the last committed analysis, which may trail the current text.
func (s *Session) Result() (pipeline.Result, bool) { return s.orch.Committed() }

// Score returns the committed rubric score. Before the first commit it is the
// empty-text score.
func (s *Session) Score() (rubric.Score, bool) {
	res, ok := s.orch.Committed()
	if !ok {
		return rubric.Evaluate("", nil), false
	}
	return res.Score, true
}

// Highlights projects the committed issues onto the current text.
func (s *Session) Highlights() highlight.View {
	current := s.orch.Snapshot()
	res, ok := s.orch.Committed()
	if !ok {
		return highlight.Project(current, nil, current)
	}
	return highlight.Project(issue.NewSnapshot(res.Text, res.Version), res.Issues, current)
}

// ApplySuggestion replaces the text covered by issueID and returns the new
// text with the cursor after the replacement. Highlights from the previous
// text are dropped at once.
func (s *Session) ApplySuggestion(issueID, replacement string) (string, int, error) {
	s.editMu.Lock()
	defer s.editMu.Unlock()

	next, cursor, err := s.Highlights().Apply(issueID, replacement)
	if err != nil {
		return s.orch.Snapshot().Text(), 0, err
	}
	s.touch()
	snap := s.orch.Replace(next.Text())
	s.logger.Debug("applied suggestion", "stage", "session", "issue", issueID, "version", snap.Version())
	return snap.Text(), cursor, nil
}

// Tips returns coaching tips in the order they were produced.
func (s *Session) Tips() []coach.Tip {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]coach.Tip(nil), s.tips...)
}

func (s *Session) Info() Info {
	snap := s.orch.Snapshot()
	committed := int64(-1)
	if res, ok := s.orch.Committed(); ok {
		committed = res.Version
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return Info{
		ID:        s.id,
		Version:   snap.Version(),
		Committed: committed,
		State:     s.orch.State().String(),
		Tips:      len(s.tips),
		CreatedAt: s.created,
		UpdatedAt: s.updated,
	}
}

// Close stops analysis and waits for pending coaching requests.
func (s *Session) Close() {
	s.orch.Close()
	s.cancel()
	s.wg.Wait()
}

func (s *Session) touch() {
	s.mu.Lock()
	s.updated = time.Now()
	s.mu.Unlock()
}

func (s *Session) committed(res pipeline.Result) {
	if s.cfg.store == nil {
		return
	}
	err := s.cfg.store.Save(db.Record{
		SessionID: s.id,
		Version:   res.Version,
		Text:      res.Text,
		Issues:    res.Issues,
		Score:     res.Score,
	})
	if err != nil {
		s.logger.Error("persist result failed", "stage", "session", "version", res.Version, "error", err)
	}
}

func (s *Session) paragraphsCompleted(snap issue.Snapshot, spans []segment.Span) {
	if s.cfg.coach == nil {
		return
	}
	text := snap.Text()
	all := segment.Paragraphs(text)
	for _, p := range spans {
		index := paragraphIndex(all, p)
		body := p.Text(text)
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			score, ok := s.Score()
			if !ok {
				score = rubric.Evaluate(body, nil)
			}
			tip := s.cfg.coach.TipFor(s.ctx, body, score)
			if s.ctx.Err() != nil {
				return
			}
			tip.Paragraph, tip.Start, tip.End, tip.Version = index, p.Start, p.End, snap.Version()
			s.mu.Lock()
			s.tips = append(s.tips, tip)
			s.mu.Unlock()
		}()
	}
}

func paragraphIndex(all []segment.Span, p segment.Span) int {
	for i, q := range all {
		if q.Start == p.Start {
			return i
		}
	}
	return -1
}
