package highlight

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"writing_coach/internal/issue"
	"writing_coach/internal/segment"
	"writing_coach/internal/spelling"
)

func mk(start, end int, sev issue.Severity, rule string) issue.Issue {
	return issue.New(issue.SourceStyle, rule, start, end, issue.KindStyle, sev, rule)
}

func spanRanges(spans []Span) [][2]int {
	out := make([][2]int, 0, len(spans))
	for _, s := range spans {
		out = append(out, [2]int{s.Start, s.End})
	}
	return out
}

func TestSameVersionIsIdentity(t *testing.T) {
	snap := issue.NewSnapshot("teh cat sat on teh mat.", 3)
	issues := []issue.Issue{mk(0, 3, issue.SeverityError, "a"), mk(15, 18, issue.SeverityError, "b")}
	v := Project(snap, issues, snap)
	assert.Equal(t, [][2]int{{0, 3}, {15, 18}}, spanRanges(v.Spans()))
	assert.Equal(t, issues[0].ID, v.Spans()[0].IssueID)
}

func TestTypingAfterHighlightsKeepsThem(t *testing.T) {
	base := issue.NewSnapshot("teh cat sat.", 1)
	v := Project(base, []issue.Issue{mk(0, 3, issue.SeverityError, "a")}, base.Next("teh cat sat. More"))
	assert.Equal(t, [][2]int{{0, 3}}, spanRanges(v.Spans()))
}

func TestEditBeforeOrInsideDropsHighlight(t *testing.T) {
	base := issue.NewSnapshot("teh cat sat.", 1)
	a := mk(0, 3, issue.SeverityError, "a")
	b := mk(4, 7, issue.SeverityWarning, "b")

	v := Project(base, []issue.Issue{a, b}, base.Next("The teh cat sat."))
	assert.Empty(t, v.Spans())
	_, err := v.Lookup(a.ID)
	assert.True(t, errors.Is(err, ErrStale))

	v = Project(base, []issue.Issue{a, b}, base.Next("teh caat sat."))
	assert.Equal(t, [][2]int{{0, 3}}, spanRanges(v.Spans()))
}

func TestEditTouchingHighlightEndDropsIt(t *testing.T) {
	base := issue.NewSnapshot("teh cat", 1)
	v := Project(base, []issue.Issue{mk(0, 3, issue.SeverityError, "a")}, base.Next("tehx cat"))
	assert.Empty(t, v.Spans())
}

func TestUnchangedTextAtNewVersionIsIdentity(t *testing.T) {
	base := issue.NewSnapshot("teh cat", 1)
	v := Project(base, []issue.Issue{mk(4, 7, issue.SeverityError, "a")}, base.Next("teh cat"))
	assert.Len(t, v.Spans(), 1)
}

func TestOverlapResolution(t *testing.T) {
	snap := issue.NewSnapshot("abcdefghijklmnop", 1)
	errIssue := mk(0, 5, issue.SeverityError, "err")
	sugg := mk(2, 8, issue.SeveritySuggestion, "sugg")
	warnLate := mk(8, 14, issue.SeverityWarning, "late")
	warnEarly := mk(6, 10, issue.SeverityWarning, "early")

	v := Project(snap, []issue.Issue{sugg, warnLate, warnEarly, errIssue}, snap)
	assert.Equal(t, [][2]int{{0, 5}, {6, 10}}, spanRanges(v.Spans()))
	assert.Equal(t, "hl-style hl-error", v.Spans()[0].Style.Class)
	assert.Len(t, v.Issues(), 4, "hidden issues stay applicable")
}

func TestApplySuggestionRoundTrip(t *testing.T) {
	text := "teh cat sat."
	snap := issue.NewSnapshot(text, 1)
	m := spelling.Default()
	issues := m.Analyze(text, segment.Segment(text))
	require.Len(t, issues, 1)

	v := Project(snap, issues, snap)
	next, cursor, err := v.Apply(issues[0].ID, "the")
	require.NoError(t, err)
	assert.Equal(t, "the cat sat.", next.Text())
	assert.Equal(t, int64(2), next.Version())
	assert.Equal(t, 3, cursor)

	again := m.Analyze(next.Text(), segment.Segment(next.Text()))
	assert.Empty(t, again)
}

func TestApplyErrors(t *testing.T) {
	snap := issue.NewSnapshot("abc", 1)
	v := Project(snap, nil, snap)
	_, _, err := v.Apply("nope", "x")
	assert.True(t, errors.Is(err, ErrUnknownIssue))

	_, _, err = Apply(snap, mk(1, 9, issue.SeverityError, "a"), "x")
	assert.True(t, errors.Is(err, ErrOutOfRange))
}

func TestSplice(t *testing.T) {
	got, cursor, err := Splice("I has a dog.", 2, 5, "have")
	require.NoError(t, err)
	assert.Equal(t, "I have a dog.", got)
	assert.Equal(t, 6, cursor)
}

func TestProjectionNeverEmitsInvalidSpans(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	alphabet := "ab .\n"
	for iter := 0; iter < 300; iter++ {
		base := make([]byte, 5+rng.Intn(30))
		for i := range base {
			base[i] = alphabet[rng.Intn(len(alphabet))]
		}
		var issues []issue.Issue
		for k := 0; k < 6; k++ {
			s := rng.Intn(len(base))
			e := s + 1 + rng.Intn(len(base)-s)
			issues = append(issues, mk(s, e, issue.Severity(1+rng.Intn(3)), string(rune('a'+k))))
		}
		cut := rng.Intn(len(base))
		curr := string(base[:cut]) + string(base[cut+rng.Intn(len(base)-cut):])
		b := issue.NewSnapshot(string(base), 1)
		v := Project(b, issues, b.Next(curr))

		prevEnd := -1
		for _, s := range v.Spans() {
			require.True(t, s.Start >= 0 && s.Start < s.End && s.End <= len(curr), "span %+v over %q", s, curr)
			require.GreaterOrEqual(t, s.Start, prevEnd, "overlap in %+v", v.Spans())
			require.Equal(t, string(base)[s.Start:s.End], curr[s.Start:s.End])
			prevEnd = s.End
		}
	}
}

func TestStyleFor(t *testing.T) {
	st := StyleFor(issue.KindSpelling, issue.SeverityError)
	assert.Equal(t, "wavy", st.Underline)
	assert.Equal(t, "hl-spelling hl-error", st.Class)
	assert.Equal(t, "dotted", StyleFor(issue.KindVocabulary, issue.SeveritySuggestion).Underline)
	assert.Equal(t, "#616161", StyleFor(issue.Kind("other"), issue.SeverityWarning).Color)
}
