package cohesion

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"writing_coach/internal/issue"
	"writing_coach/internal/segment"
)

const maxSuggestions = 3

// Words that can be lowercased when a transition is put in front of them.
var lowerable = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "he": {}, "she": {}, "it": {}, "they": {}, "we": {}, "you": {},
	"there": {}, "this": {}, "that": {}, "these": {}, "those": {}, "my": {}, "his": {}, "her": {},
	"our": {}, "their": {}, "its": {}, "in": {}, "on": {}, "at": {}, "everyone": {}, "nobody": {},
	"some": {}, "many": {}, "every": {}, "people": {}, "one": {}, "all": {}, "most": {},
}

func Analyze(text string, seg segment.Segmentation) []issue.Issue {
	var out []issue.Issue
	for i := 1; i < len(seg.Paragraphs); i++ {
		p := seg.Paragraphs[i]
		sentences := seg.SentencesIn(p)
		if len(sentences) == 0 {
			continue
		}
		first := sentences[0]
		body := first.Text(text)
		if IsTransitionStart(body) {
			continue
		}
		category := Route(seg.Paragraphs[i-1].Text(text), p.Text(text))
		options := transitions[category]
		if len(options) > maxSuggestions {
			options = options[:maxSuggestions]
		}
		suggestions := make([]string, 0, len(options))
		for _, t := range options {
			suggestions = append(suggestions, Prefix(t, body))
		}
		out = append(out, issue.New(issue.SourceCohesion, "missing-transition", first.Start, first.End,
			issue.KindCohesion, issue.SeveritySuggestion,
			fmt.Sprintf("Link this paragraph to the one before with a transition such as \"%s\".", options[0]),
			suggestions...))
	}
	return out
}

// Route picks a transition category from markers in the previous and current paragraph.
func Route(previous, current string) Category {
	words := map[string]struct{}{}
	for _, w := range strings.FieldsFunc(strings.ToLower(previous+" "+current), notLetter) {
		words[w] = struct{}{}
	}
	for _, route := range markerRoutes {
		for _, m := range route.markers {
			if _, ok := words[m]; ok {
				return route.category
			}
		}
	}
	return Addition
}

// Prefix rewrites sentence to open with transition.
func Prefix(transition, sentence string) string {
	fields := strings.Fields(sentence)
	if len(fields) == 0 {
		return transition
	}
	first := strings.ToLower(strings.TrimFunc(fields[0], func(r rune) bool { return !unicode.IsLetter(r) }))
	if _, ok := lowerable[first]; ok {
		r, size := utf8.DecodeRuneInString(sentence)
		sentence = string(unicode.ToLower(r)) + sentence[size:]
	}
	return transition + ", " + sentence
}
