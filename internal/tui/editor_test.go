package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"writing_coach/internal/coach"
	"writing_coach/internal/highlight"
	"writing_coach/internal/issue"
	"writing_coach/internal/pipeline"
	"writing_coach/internal/rubric"
	"writing_coach/internal/session"
)

func newSession(t *testing.T) *session.Session {
	t.Helper()
	s := session.New("tui", pipeline.New(pipeline.LocalAnalyzers(pipeline.DefaultSettings()), nil), session.WithDebounce(time.Hour))
	t.Cleanup(s.Close)
	return s
}

func sized(m Model) Model {
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return next.(Model)
}

func TestTypingUpdatesSession(t *testing.T) {
	s := newSession(t)
	m := sized(New(s, "essay", "", nil))

	for _, r := range "Hi" {
		next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
		m = next.(Model)
	}
	assert.Equal(t, "Hi", s.Snapshot().Text())
	assert.Equal(t, int64(2), s.Snapshot().Version())
	assert.Contains(t, m.View(), "essay")
}

func TestApplySelectedSuggestion(t *testing.T) {
	s := newSession(t)
	m := sized(New(s, "essay", "teh cat sat.", nil))
	s.Flush()
	require.Eventually(t, func() bool {
		res, ok := s.Result()
		return ok && res.Version == s.Snapshot().Version()
	}, 2*time.Second, 5*time.Millisecond)

	next, _ := m.Update(tickMsg(time.Now()))
	m = next.(Model)
	for i, is := range m.issues {
		if is.Source == issue.SourceSpelling {
			m.selected = i
		}
	}
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlA})
	m = next.(Model)
	assert.Equal(t, "the cat sat.", m.Value())
	assert.Equal(t, "the cat sat.", s.Snapshot().Text())
}

func TestSaveKey(t *testing.T) {
	s := newSession(t)
	var saved string
	m := sized(New(s, "essay", "A story.", func(text string) error { saved = text; return nil }))
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	assert.Equal(t, "A story.", saved)
	assert.Equal(t, "saved", next.(Model).status)
}

func TestRenderHighlights(t *testing.T) {
	text := "teh cat"
	out := RenderHighlights(text, []highlight.Span{{Start: 0, End: 3, Style: highlight.StyleFor(issue.KindSpelling, issue.SeverityError)}})
	assert.Contains(t, out, "teh")
	assert.True(t, strings.HasSuffix(out, " cat"))
}

func TestRenderFeedback(t *testing.T) {
	is := issue.New(issue.SourceSpelling, "teh", 0, 3, issue.KindSpelling, issue.SeverityError, "Possible spelling mistake.", "the")
	out := RenderFeedback(rubric.Evaluate("teh cat sat.", nil), true, []issue.Issue{is}, 0, []coach.Tip{{Tip: "Add detail.", Example: "The grey cat sat."}})
	assert.Contains(t, out, "Possible spelling mistake.")
	assert.Contains(t, out, "the")
	assert.Contains(t, out, "Add detail.")
	assert.Contains(t, out, "e.g. The grey cat sat.")

	empty := RenderFeedback(rubric.Evaluate("", nil), false, nil, 0, nil)
	assert.Contains(t, empty, rubric.EmptyMessage)
}
