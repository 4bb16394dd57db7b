package highlight

import (
	"errors"
	"fmt"
	"sort"

	"writing_coach/internal/issue"
)

var (
	ErrUnknownIssue = errors.New("unknown issue")

	// ErrStale means the issue can no longer be proven to cover the same text.
	ErrStale      = errors.New("issue is stale for the current text")
	ErrOutOfRange = errors.New("issue range outside text")
)

// Span is a highlight over the current snapshot.
type Span struct {
	Start   int    `json:"start"`
	End     int    `json:"end"`
	IssueID string `json:"issue_id"`
	Style   Style  `json:"style"`
}

// View reconciles one committed batch of issues with the current snapshot.
type View struct {
	current issue.Snapshot
	valid   map[string]issue.Issue
	known   map[string]struct{}
	spans   []Span
}

// Project builds the view of issues computed against base as seen from
// current. When the versions differ, only issues ending strictly before the
// first changed byte are kept.
func Project(base issue.Snapshot, issues []issue.Issue, current issue.Snapshot) View {
	v := View{
		current: current,
		valid:   make(map[string]issue.Issue, len(issues)),
		known:   make(map[string]struct{}, len(issues)),
	}
	limit := current.Len() + 1
	if base.Version() != current.Version() && base.Text() != current.Text() {
		limit = commonPrefix(base.Text(), current.Text())
	}

	kept := make([]issue.Issue, 0, len(issues))
	for _, is := range issues {
		v.known[is.ID] = struct{}{}
		if !is.ValidFor(current.Len()) || is.End >= limit {
			continue
		}
		v.valid[is.ID] = is
		kept = append(kept, is)
	}
	v.spans = resolve(kept)
	return v
}

// resolve picks non-overlapping issues, higher severity first and earlier
// start on ties, and returns their spans in offset order.
func resolve(issues []issue.Issue) []Span {
	sort.SliceStable(issues, func(a, b int) bool {
		x, y := issues[a], issues[b]
		if x.Severity != y.Severity {
			return x.Severity > y.Severity
		}
		if x.Start != y.Start {
			return x.Start < y.Start
		}
		if x.End != y.End {
			return x.End < y.End
		}
		return x.ID < y.ID
	})
	var chosen []issue.Issue
	for _, is := range issues {
		clash := false
		for _, c := range chosen {
			if is.Overlaps(c) {
				clash = true
				break
			}
		}
		if !clash {
			chosen = append(chosen, is)
		}
	}
	sort.Slice(chosen, func(a, b int) bool { return chosen[a].Start < chosen[b].Start })

	out := make([]Span, 0, len(chosen))
	for _, c := range chosen {
		out = append(out, Span{Start: c.Start, End: c.End, IssueID: c.ID, Style: StyleFor(c.Kind, c.Severity)})
	}
	return out
}

func commonPrefix(a, b string) int {
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return i
		}
	}
	return n
}

func (v View) Spans() []Span { return v.spans }

func (v View) Current() issue.Snapshot { return v.current }

// Issues returns every issue still valid for the current text, including
// those hidden by a higher-priority overlap, in offset order.
func (v View) Issues() []issue.Issue {
	out := make([]issue.Issue, 0, len(v.valid))
	for _, is := range v.valid {
		out = append(out, is)
	}
	issue.Sort(out)
	return out
}

func (v View) Lookup(id string) (issue.Issue, error) {
	if is, ok := v.valid[id]; ok {
		return is, nil
	}
	if _, ok := v.known[id]; ok {
		return issue.Issue{}, fmt.Errorf("%w: %s", ErrStale, id)
	}
	return issue.Issue{}, fmt.Errorf("%w: %s", ErrUnknownIssue, id)
}

// Apply replaces the issue's range with replacement and returns the new
// snapshot with the cursor placed after the inserted text.
func (v View) Apply(id, replacement string) (issue.Snapshot, int, error) {
	is, err := v.Lookup(id)
	if err != nil {
		return v.current, 0, err
	}
	return Apply(v.current, is, replacement)
}

// Apply splices replacement over is in snap. The caller is responsible for
// is being valid for snap's text.
func Apply(snap issue.Snapshot, is issue.Issue, replacement string) (issue.Snapshot, int, error) {
	text, cursor, err := Splice(snap.Text(), is.Start, is.End, replacement)
	if err != nil {
		return snap, 0, err
	}
	return snap.Next(text), cursor, nil
}

func Splice(text string, start, end int, replacement string) (string, int, error) {
	if start < 0 || start > end || end > len(text) {
		return text, 0, fmt.Errorf("%w: [%d,%d) of %d", ErrOutOfRange, start, end, len(text))
	}
	return text[:start] + replacement + text[end:], start + len(replacement), nil
}
