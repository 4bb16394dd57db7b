package languagetool

import (
	"strings"

	"writing_coach/internal/issue"
)

type categoryRule struct {
	contains string
	kind     issue.Kind
}

// Checked in order against the upper-cased category id.
var categoryKinds = []categoryRule{
	{"TYPO", issue.KindSpelling},
	{"SPELL", issue.KindSpelling},
	{"GRAMMAR", issue.KindGrammar},
	{"CONFUSED", issue.KindGrammar},
	{"PUNCT", issue.KindPunctuation},
	{"TYPOGRAPHY", issue.KindPunctuation},
	{"STYLE", issue.KindStyle},
	{"REDUNDANCY", issue.KindStyle},
	{"PLAIN_ENGLISH", issue.KindStyle},
	{"REPETITIONS", issue.KindStyle},
}

var issueTypeSeverity = map[string]issue.Severity{
	"misspelling":      issue.SeverityError,
	"typo":             issue.SeverityError,
	"grammar":          issue.SeverityError,
	"style":            issue.SeveritySuggestion,
	"register":         issue.SeveritySuggestion,
	"locale-violation": issue.SeverityWarning,
	"typographical":    issue.SeverityWarning,
	"whitespace":       issue.SeverityWarning,
}

// Classify maps a service rule onto a kind and severity. Anything it does not
// recognise is a grammar warning.
func Classify(ruleID, categoryID, issueType string) (issue.Kind, issue.Severity) {
	kind := issue.KindGrammar
	cat := strings.ToUpper(categoryID)
	rule := strings.ToUpper(ruleID)
	switch {
	case strings.Contains(rule, "MORFOLOGIK") || strings.Contains(rule, "SPELL") || strings.EqualFold(issueType, "misspelling"):
		kind = issue.KindSpelling
	default:
		for _, c := range categoryKinds {
			if strings.Contains(cat, c.contains) {
				kind = c.kind
				break
			}
		}
	}

	if sev, ok := issueTypeSeverity[strings.ToLower(issueType)]; ok {
		return kind, sev
	}
	switch kind {
	case issue.KindSpelling:
		return kind, issue.SeverityError
	case issue.KindStyle:
		return kind, issue.SeveritySuggestion
	default:
		return kind, issue.SeverityWarning
	}
}
