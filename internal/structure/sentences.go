package structure

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"writing_coach/internal/issue"
	"writing_coach/internal/segment"
)

type Config struct {
	// Sentences with more words than this are too long.
	LongSentenceWords int `yaml:"long_sentence_words" validate:"gt=0"`
	// Sentences with fewer words than this are too short.
	ShortSentenceWords int `yaml:"short_sentence_words" validate:"gte=0"`
}

func DefaultConfig() Config {
	return Config{LongSentenceWords: 40, ShortSentenceWords: 5}
}

var interjections = map[string]struct{}{
	"oh": {}, "ah": {}, "wow": {}, "no": {}, "yes": {}, "help": {}, "stop": {}, "ouch": {},
	"hey": {}, "run": {}, "look": {}, "quick": {}, "boom": {}, "crash": {}, "bang": {},
	"suddenly": {}, "silence": {}, "nothing": {}, "never": {}, "wait": {}, "whoa": {}, "yikes": {},
}

type Analyzer struct {
	cfg Config
}

func New(cfg Config) *Analyzer {
	if cfg.LongSentenceWords <= 0 {
		cfg.LongSentenceWords = DefaultConfig().LongSentenceWords
	}
	return &Analyzer{cfg: cfg}
}

func (a *Analyzer) Analyze(text string, seg segment.Segmentation) []issue.Issue {
	var out []issue.Issue
	var prevStarter string
	for _, s := range seg.Sentences {
		words := seg.WordsIn(s)
		n := len(words)
		switch {
		case n > a.cfg.LongSentenceWords:
			out = append(out, issue.New(issue.SourceStructure, "too-long", s.Start, s.End, issue.KindStructure, issue.SeverityWarning,
				fmt.Sprintf("This sentence has %d words. Try splitting it into two.", n)))
		case n > 0 && n < a.cfg.ShortSentenceWords && !isShortForm(text, s, words):
			out = append(out, issue.New(issue.SourceStructure, "too-short", s.Start, s.End, issue.KindStructure, issue.SeveritySuggestion,
				"This sentence is very short. Try joining it with the next one or adding detail."))
		}

		if n == 0 {
			prevStarter = ""
			continue
		}
		starter := strings.ToLower(words[0].Text(text))
		if starter == prevStarter {
			first := words[0]
			out = append(out, issue.New(issue.SourceStructure, "repetitive-starter", first.Start, first.End, issue.KindStructure, issue.SeveritySuggestion,
				fmt.Sprintf("Two sentences in a row start with \"%s\". Vary how your sentences begin.", first.Text(text))))
		}
		prevStarter = starter
	}
	return out
}

// isShortForm recognises deliberate short sentences: exclamations, dialogue
// and one-word interjections such as "Silence." or "Run!".
func isShortForm(text string, s segment.Span, words []segment.Span) bool {
	body := s.Text(text)
	last, _ := utf8.DecodeLastRuneInString(strings.TrimRight(body, "\"'’”)"))
	if last == '!' {
		return true
	}
	if strings.ContainsAny(body, "\"“”") {
		return true
	}
	_, ok := interjections[strings.ToLower(words[0].Text(text))]
	return ok && len(words) <= 2
}
