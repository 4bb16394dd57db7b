package spelling

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"writing_coach/internal/issue"
	"writing_coach/internal/segment"
)

//go:embed misspellings.json
var misspellingsJSON []byte

// Matcher runs the misspelling table, the pattern rules and the repeated-word
// scan over one text.
type Matcher struct {
	misspellings map[string]string
	rules        []Rule
}

func New(rules []Rule, misspellings map[string]string) *Matcher {
	table := make(map[string]string, len(misspellings))
	for wrong, right := range misspellings {
		table[strings.ToLower(strings.TrimSpace(wrong))] = right
	}
	return &Matcher{misspellings: table, rules: rules}
}

func Default() *Matcher {
	return New(DefaultRules(), DefaultMisspellings())
}

func DefaultMisspellings() map[string]string {
	var raw map[string]string
	if err := json.Unmarshal(misspellingsJSON, &raw); err != nil {
		panic(fmt.Sprintf("decode embedded misspellings: %v", err))
	}
	return raw
}

func (m *Matcher) Analyze(text string, seg segment.Segmentation) []issue.Issue {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	out := make([]issue.Issue, 0, 8)
	seen := map[string]struct{}{}
	add := func(is issue.Issue) {
		if !is.ValidFor(len(text)) {
			return
		}
		if _, dup := seen[is.ID]; dup {
			return
		}
		seen[is.ID] = struct{}{}
		out = append(out, is)
	}

	for _, w := range seg.Words {
		word := w.Text(text)
		right, ok := m.misspellings[strings.ToLower(word)]
		if !ok {
			continue
		}
		add(issue.New(issue.SourceSpelling, "misspelling", w.Start, w.End, issue.KindSpelling, issue.SeverityError,
			fmt.Sprintf("\"%s\" looks misspelled.", word), segment.MatchCase(word, right)))
	}

	for _, r := range m.rules {
		for _, loc := range r.Pattern.FindAllStringSubmatchIndex(text, -1) {
			start, end := loc[2*r.Group], loc[2*r.Group+1]
			if start < 0 || start >= end {
				continue
			}
			var suggestions []string
			if r.Suggest != nil {
				s, ok := r.Suggest(text, loc)
				if !ok {
					continue
				}
				suggestions = s
			} else {
				for _, tmpl := range r.Replace {
					suggestions = append(suggestions, string(r.Pattern.ExpandString(nil, tmpl, text, loc)))
				}
			}
			add(issue.New(issue.SourceSpelling, r.ID, start, end, r.Kind, r.Severity, r.Message, suggestions...))
		}
	}

	for _, is := range repeatedWords(text, seg) {
		add(is)
	}

	issue.Sort(out)
	return out
}

func repeatedWords(text string, seg segment.Segmentation) []issue.Issue {
	var out []issue.Issue
	for i := 1; i < len(seg.Words); i++ {
		prev, cur := seg.Words[i-1], seg.Words[i]
		if strings.TrimSpace(text[prev.End:cur.Start]) != "" {
			continue
		}
		if !strings.EqualFold(prev.Text(text), cur.Text(text)) {
			continue
		}
		// "had had" and "that that" are grammatical.
		switch strings.ToLower(cur.Text(text)) {
		case "had", "that":
			continue
		}
		out = append(out, issue.New(issue.SourceSpelling, "repeated-word", prev.Start, cur.End, issue.KindGrammar, issue.SeverityError,
			fmt.Sprintf("\"%s\" is repeated.", cur.Text(text)), prev.Text(text)))
	}
	return out
}
