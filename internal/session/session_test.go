package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"writing_coach/internal/coach"
	"writing_coach/internal/db"
	"writing_coach/internal/issue"
	"writing_coach/internal/pipeline"
)

func localRunner() *pipeline.Pipeline {
	return pipeline.New(pipeline.LocalAnalyzers(pipeline.DefaultSettings()), nil)
}

func waitCommitted(t *testing.T, s *Session, version int64) pipeline.Result {
	t.Helper()
	var res pipeline.Result
	require.Eventually(t, func() bool {
		r, ok := s.Result()
		res = r
		return ok && r.Version == version
	}, 2*time.Second, 5*time.Millisecond)
	return res
}

func spellingIssue(t *testing.T, issues []issue.Issue) issue.Issue {
	t.Helper()
	for _, is := range issues {
		if is.Source == issue.SourceSpelling {
			return is
		}
	}
	t.Fatalf("no spelling issue in %+v", issues)
	return issue.Issue{}
}

func TestApplySuggestionRoundTrip(t *testing.T) {
	s := New("s1", localRunner(), WithDebounce(10*time.Millisecond))
	t.Cleanup(s.Close)

	snap := s.Update("teh cat sat.")
	res := waitCommitted(t, s, snap.Version())
	target := spellingIssue(t, res.Issues)
	require.NotEmpty(t, s.Highlights().Spans())

	text, cursor, err := s.ApplySuggestion(target.ID, "the")
	require.NoError(t, err)
	assert.Equal(t, "the cat sat.", text)
	assert.Equal(t, 3, cursor)
	assert.Empty(t, s.Highlights().Spans(), "old highlights are dropped at once")

	res = waitCommitted(t, s, s.Snapshot().Version())
	for _, is := range res.Issues {
		assert.NotEqual(t, issue.SourceSpelling, is.Source)
	}
}

func TestApplySuggestionErrors(t *testing.T) {
	s := New("s1", localRunner(), WithDebounce(time.Hour))
	t.Cleanup(s.Close)

	_, _, err := s.ApplySuggestion("spelling:teh:0-3", "the")
	assert.ErrorIs(t, err, ErrUnknownIssue)

	snap := s.Update("teh cat sat.")
	s.Flush()
	target := spellingIssue(t, waitCommitted(t, s, snap.Version()).Issues)

	s.Update("The teh cat sat.")
	text, _, err := s.ApplySuggestion(target.ID, "the")
	assert.ErrorIs(t, err, ErrStale)
	assert.Equal(t, "The teh cat sat.", text)
}

func TestHighlightsFollowTyping(t *testing.T) {
	s := New("s1", localRunner(), WithDebounce(time.Hour))
	t.Cleanup(s.Close)

	snap := s.Update("teh cat sat.")
	s.Flush()
	waitCommitted(t, s, snap.Version())

	s.Update("teh cat sat. More words")
	spans := s.Highlights().Spans()
	require.NotEmpty(t, spans)
	assert.Equal(t, 0, spans[0].Start)
	assert.Equal(t, 3, spans[0].End)
}

type fakeGen struct{}

func (fakeGen) Complete(context.Context, string) (string, error) {
	return `{"tip":"Tell us how the fox felt.","example_rewrite":"Once there was a lonely fox."}`, nil
}

func TestTipForCompletedParagraph(t *testing.T) {
	s := New("s1", localRunner(), WithDebounce(time.Hour), WithCoach(coach.New(fakeGen{})))
	t.Cleanup(s.Close)

	s.Update("Once there was a fox")
	s.Update("Once there was a fox.")
	require.Eventually(t, func() bool { return len(s.Tips()) == 1 }, 2*time.Second, 5*time.Millisecond)

	tip := s.Tips()[0]
	assert.Equal(t, 0, tip.Paragraph)
	assert.Equal(t, 0, tip.Start)
	assert.Equal(t, 21, tip.End)
	assert.Equal(t, "Tell us how the fox felt.", tip.Tip)
	assert.False(t, tip.Fallback)

	s.Update("Once there was a fox. It")
	time.Sleep(20 * time.Millisecond)
	assert.Len(t, s.Tips(), 1)
}

type memStore struct {
	mu   sync.Mutex
	recs []db.Record
}

func (m *memStore) Save(rec db.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recs = append(m.recs, rec)
	return nil
}

func (m *memStore) last() (db.Record, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.recs) == 0 {
		return db.Record{}, false
	}
	return m.recs[len(m.recs)-1], true
}

func TestCommitIsPersisted(t *testing.T) {
	store := &memStore{}
	s := New("s1", localRunner(), WithDebounce(5*time.Millisecond), WithStore(store))
	t.Cleanup(s.Close)

	snap := s.Update("teh cat sat.")
	waitCommitted(t, s, snap.Version())
	require.Eventually(t, func() bool {
		rec, ok := store.last()
		return ok && rec.Version == snap.Version()
	}, time.Second, 5*time.Millisecond)

	rec, _ := store.last()
	assert.Equal(t, "s1", rec.SessionID)
	assert.Equal(t, "teh cat sat.", rec.Text)
	assert.NotEmpty(t, rec.Issues)
}

func TestScoreBeforeCommit(t *testing.T) {
	s := New("s1", localRunner(), WithDebounce(time.Hour))
	t.Cleanup(s.Close)
	score, ok := s.Score()
	assert.False(t, ok)
	assert.True(t, score.NeedsText)
}

func TestManager(t *testing.T) {
	m := NewManager(localRunner(), WithDebounce(time.Hour))
	t.Cleanup(m.Close)

	a := m.Create()
	b := m.Create()
	assert.NotEqual(t, a.ID(), b.ID())
	assert.Equal(t, 2, m.Len())

	got, err := m.Get(a.ID())
	require.NoError(t, err)
	assert.Same(t, a, got)
	assert.Len(t, m.List(), 2)

	require.NoError(t, m.Delete(a.ID()))
	_, err = m.Get(a.ID())
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, m.Delete(a.ID()), ErrNotFound)
}
