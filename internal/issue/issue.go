package issue

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

type Kind string

const (
	KindSpelling    Kind = "spelling"
	KindGrammar     Kind = "grammar"
	KindPunctuation Kind = "punctuation"
	KindStyle       Kind = "style"
	KindVocabulary  Kind = "vocabulary"
	KindStructure   Kind = "structure"
	KindCohesion    Kind = "cohesion"
)

// Severity orders rendering priority. Higher values win overlaps.
type Severity int

const (
	SeveritySuggestion Severity = iota + 1
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeveritySuggestion:
		return "suggestion"
	default:
		return "unknown"
	}
}

func ParseSeverity(s string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "error":
		return SeverityError, nil
	case "warning":
		return SeverityWarning, nil
	case "suggestion":
		return SeveritySuggestion, nil
	default:
		return 0, fmt.Errorf("unknown severity %q", s)
	}
}

func (s Severity) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *Severity) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("decode severity: %w", err)
	}
	parsed, err := ParseSeverity(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Source names the analyzer or adapter that produced an Issue.
type Source string

const (
	SourceSpelling     Source = "spelling"
	SourceVocabulary   Source = "vocabulary"
	SourceStructure    Source = "structure"
	SourceCohesion     Source = "cohesion"
	SourceStyle        Source = "style"
	SourceLanguageTool Source = "languagetool"
)

// Issue is a positional finding. Start and End are half-open byte offsets
// into the text of the snapshot whose version the Issue carries.
type Issue struct {
	ID          string   `json:"id"`
	Start       int      `json:"start"`
	End         int      `json:"end"`
	Kind        Kind     `json:"kind"`
	Severity    Severity `json:"severity"`
	Message     string   `json:"message"`
	Suggestions []string `json:"suggestions"`
	Source      Source   `json:"source"`
	Rule        string   `json:"rule,omitempty"`
	Version     int64    `json:"version"`
}

func New(source Source, rule string, start, end int, kind Kind, severity Severity, message string, suggestions ...string) Issue {
	if suggestions == nil {
		suggestions = []string{}
	}
	return Issue{
		ID:          MakeID(source, rule, start, end),
		Start:       start,
		End:         end,
		Kind:        kind,
		Severity:    severity,
		Message:     message,
		Suggestions: suggestions,
		Source:      source,
		Rule:        rule,
	}
}

// MakeID derives a stable id so re-analysis of identical text yields identical ids.
func MakeID(source Source, rule string, start, end int) string {
	return fmt.Sprintf("%s:%s:%d-%d", source, rule, start, end)
}

func (i Issue) Len() int { return i.End - i.Start }

// ValidFor reports whether the range is well formed for a text of n bytes.
func (i Issue) ValidFor(n int) bool {
	return i.Start >= 0 && i.Start < i.End && i.End <= n
}

func (i Issue) Overlaps(o Issue) bool {
	return i.Start < o.End && o.Start < i.End
}

// Sort orders issues by start, end, source and id so merged batches are deterministic.
func Sort(issues []Issue) {
	sort.SliceStable(issues, func(a, b int) bool {
		x, y := issues[a], issues[b]
		if x.Start != y.Start {
			return x.Start < y.Start
		}
		if x.End != y.End {
			return x.End < y.End
		}
		if x.Source != y.Source {
			return x.Source < y.Source
		}
		return x.ID < y.ID
	})
}

func CountSeverity(issues []Issue, sev Severity) int {
	n := 0
	for _, is := range issues {
		if is.Severity == sev {
			n++
		}
	}
	return n
}

func CountKind(issues []Issue, kind Kind) int {
	n := 0
	for _, is := range issues {
		if is.Kind == kind {
			n++
		}
	}
	return n
}
