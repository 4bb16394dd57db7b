package languagetool

import (
	"fmt"
	"strings"

	"writing_coach/internal/chunk"
	"writing_coach/internal/issue"
)

type response struct {
	Matches []Match `json:"matches"`
}

// Match is one finding as the service reports it. Offset and Length count
// UTF-16 code units.
type Match struct {
	Message      string        `json:"message"`
	ShortMessage string        `json:"shortMessage,omitempty"`
	Offset       int           `json:"offset"`
	Length       int           `json:"length"`
	Replacements []Replacement `json:"replacements"`
	Rule         Rule          `json:"rule"`
}

type Replacement struct {
	Value string `json:"value"`
}

type Rule struct {
	ID          string   `json:"id"`
	Description string   `json:"description,omitempty"`
	IssueType   string   `json:"issueType,omitempty"`
	Category    Category `json:"category"`
}

type Category struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// toIssues maps matches for one window onto issues over the full text.
// Matches whose range does not land on the window text are dropped.
func toIssues(w chunk.Window, matches []Match) []issue.Issue {
	out := make([]issue.Issue, 0, len(matches))
	for _, m := range matches {
		start, end, ok := byteRange(w.Text, m.Offset, m.Length)
		if !ok {
			continue
		}
		kind, sev := Classify(m.Rule.ID, m.Rule.Category.ID, m.Rule.IssueType)
		msg := strings.TrimSpace(m.Message)
		if msg == "" {
			msg = strings.TrimSpace(m.ShortMessage)
		}
		if msg == "" {
			msg = fmt.Sprintf("Possible problem with \"%s\".", w.Text[start:end])
		}
		suggestions := make([]string, 0, maxSuggestions)
		for _, r := range m.Replacements {
			if len(suggestions) == maxSuggestions {
				break
			}
			suggestions = append(suggestions, r.Value)
		}
		rule := m.Rule.ID
		if rule == "" {
			rule = "unknown"
		}
		out = append(out, issue.New(issue.SourceLanguageTool, rule, w.Start+start, w.Start+end, kind, sev, msg, suggestions...))
	}
	return out
}
