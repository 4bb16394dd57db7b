package paragraph

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"writing_coach/internal/segment"
)

// DefaultMinChars is the trimmed length a paragraph must exceed to count as complete.
const DefaultMinChars = 20

var blankLine = regexp.MustCompile(`^[ \t\r]*\n\s*\n`)

// IsComplete reports whether paragraph p of text is longer than minChars runes, ends with
// terminal punctuation, and is followed by a paragraph break or the end of text.
func IsComplete(text string, p segment.Span, minChars int) bool {
	body := strings.TrimSpace(p.Text(text))
	if utf8.RuneCountInString(body) <= minChars {
		return false
	}
	if !endsTerminal(body) {
		return false
	}
	rest := text[p.End:]
	return strings.TrimSpace(rest) == "" || blankLine.MatchString(rest)
}

func endsTerminal(s string) bool {
	s = strings.TrimRightFunc(s, func(r rune) bool {
		return strings.ContainsRune("\"'”’)]»", r)
	})
	r, _ := utf8.DecodeLastRuneInString(s)
	return r == '.' || r == '!' || r == '?'
}

// DetectCompleted returns the paragraphs of curr that became complete since
// prev. Paragraphs are paired by index. A shorter curr is a deletion and never
// completes anything.
func DetectCompleted(prev, curr string, minChars int) []segment.Span {
	if minChars <= 0 {
		minChars = DefaultMinChars
	}
	if len(curr) < len(prev) {
		return nil
	}
	before := segment.Paragraphs(prev)
	var out []segment.Span
	for _, p := range segment.Paragraphs(curr) {
		if !IsComplete(curr, p, minChars) {
			continue
		}
		if p.Index < len(before) && IsComplete(prev, before[p.Index], minChars) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Detector remembers the previous text so callers can feed it successive edits.
type Detector struct {
	minChars int
	prev     string
}

func NewDetector(minChars int) *Detector {
	if minChars <= 0 {
		minChars = DefaultMinChars
	}
	return &Detector{minChars: minChars}
}

// Observe records curr as the latest text and returns newly-complete paragraphs.
func (d *Detector) Observe(curr string) []segment.Span {
	done := DetectCompleted(d.prev, curr, d.minChars)
	d.prev = curr
	return done
}

// Reset replaces the remembered text without reporting anything, for example
// after loading a document or applying a suggestion.
func (d *Detector) Reset(text string) {
	d.prev = text
}
