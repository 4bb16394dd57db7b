package vocabulary

import (
	"fmt"
	"sort"
	"strings"

	"writing_coach/internal/issue"
	"writing_coach/internal/segment"
)

const DefaultLimit = 5

type Scanner struct {
	entries       map[string]Entry
	tier          Tier
	limit         int
	sophisticated map[string]struct{}
}

func NewScanner(table []Entry, tier Tier, limit int) *Scanner {
	if limit <= 0 {
		limit = DefaultLimit
	}
	s := &Scanner{
		entries:       make(map[string]Entry, len(table)),
		tier:          tier,
		limit:         limit,
		sophisticated: map[string]struct{}{},
	}
	for _, e := range table {
		s.entries[strings.ToLower(e.Word)] = e
		for _, w := range append(append([]string{}, e.Medium...), e.Low...) {
			s.sophisticated[strings.ToLower(w)] = struct{}{}
		}
	}
	for _, w := range extraSophisticated {
		s.sophisticated[w] = struct{}{}
	}
	return s
}

func Default(tier Tier) *Scanner {
	return NewScanner(DefaultTable(), tier, DefaultLimit)
}

func (s *Scanner) Tier() Tier { return s.tier }

type candidate struct {
	span   segment.Span
	weight int
	entry  Entry
}

// Analyze returns at most limit upgrade suggestions, the heaviest basic words
// first and earliest offset on ties, reported in offset order.
func (s *Scanner) Analyze(text string, seg segment.Segmentation) []issue.Issue {
	var cands []candidate
	for _, w := range seg.Words {
		e, ok := s.entries[strings.ToLower(w.Text(text))]
		if !ok || len(e.For(s.tier)) == 0 {
			continue
		}
		cands = append(cands, candidate{span: w, weight: e.Weight, entry: e})
	}
	if len(cands) == 0 {
		return nil
	}
	sort.SliceStable(cands, func(i, j int) bool {
		if cands[i].weight != cands[j].weight {
			return cands[i].weight > cands[j].weight
		}
		return cands[i].span.Start < cands[j].span.Start
	})
	if len(cands) > s.limit {
		cands = cands[:s.limit]
	}
	sort.Slice(cands, func(i, j int) bool { return cands[i].span.Start < cands[j].span.Start })

	out := make([]issue.Issue, 0, len(cands))
	for _, c := range cands {
		word := c.span.Text(text)
		alts := c.entry.For(s.tier)
		suggestions := make([]string, 0, len(alts))
		for _, a := range alts {
			suggestions = append(suggestions, segment.MatchCase(word, a))
		}
		out = append(out, issue.New(issue.SourceVocabulary, "upgrade-"+c.entry.Word, c.span.Start, c.span.End,
			issue.KindVocabulary, issue.SeveritySuggestion,
			fmt.Sprintf("Try a more precise word than \"%s\".", word), suggestions...))
	}
	return out
}

// IsSophisticated reports whether word is one of the advanced alternatives.
func (s *Scanner) IsSophisticated(word string) bool {
	_, ok := s.sophisticated[strings.ToLower(word)]
	return ok
}

// CountSophisticated counts the sophisticated words used in text.
func (s *Scanner) CountSophisticated(text string, seg segment.Segmentation) int {
	n := 0
	for _, w := range seg.Words {
		if s.IsSophisticated(w.Text(text)) {
			n++
		}
	}
	return n
}
