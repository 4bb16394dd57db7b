package issue

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeverityOrdering(t *testing.T) {
	assert.Greater(t, SeverityError, SeverityWarning)
	assert.Greater(t, SeverityWarning, SeveritySuggestion)
}

func TestSeverityJSON(t *testing.T) {
	raw, err := json.Marshal(New(SourceSpelling, "teh", 0, 3, KindSpelling, SeverityError, "typo", "the"))
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"severity":"error"`)

	var got Issue
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, SeverityError, got.Severity)
	assert.Equal(t, []string{"the"}, got.Suggestions)
}

func TestValidFor(t *testing.T) {
	cases := []struct {
		name       string
		start, end int
		want       bool
	}{
		{"inside", 0, 3, true},
		{"whole text", 0, 5, true},
		{"empty range", 2, 2, false},
		{"negative", -1, 2, false},
		{"past end", 3, 6, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			is := Issue{Start: tc.start, End: tc.end}
			assert.Equal(t, tc.want, is.ValidFor(5))
		})
	}
}

func TestSortIsDeterministic(t *testing.T) {
	issues := []Issue{
		New(SourceStyle, "b", 4, 8, KindStyle, SeveritySuggestion, ""),
		New(SourceSpelling, "a", 0, 3, KindSpelling, SeverityError, ""),
		New(SourceCohesion, "c", 4, 8, KindCohesion, SeveritySuggestion, ""),
	}
	Sort(issues)
	assert.Equal(t, SourceSpelling, issues[0].Source)
	assert.Equal(t, SourceCohesion, issues[1].Source)
	assert.Equal(t, SourceStyle, issues[2].Source)
}

func TestSnapshotNext(t *testing.T) {
	s := NewSnapshot("a", 4)
	n := s.Next("ab")
	assert.Equal(t, int64(5), n.Version())
	assert.Equal(t, "a", s.Text())
	assert.Equal(t, "ab", n.Text())
}
