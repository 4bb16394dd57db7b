package chunk

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"writing_coach/internal/segment"
)

// Window is a byte range of the source text sent as one request.
type Window struct {
	Index int
	Start int
	End   int
	Text  string
}

// Windows packs whole paragraphs into windows of at most maxBytes. Oversized
// paragraphs fall back to sentences and then to whitespace or rune boundaries.
func Windows(text string, maxBytes int) []Window {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	if maxBytes <= 0 || len(text) <= maxBytes {
		return []Window{{Index: 0, Start: 0, End: len(text), Text: text}}
	}

	seg := segment.Segment(text)
	var units []segment.Span
	for _, p := range seg.Paragraphs {
		if p.Len() <= maxBytes {
			units = append(units, p)
			continue
		}
		for _, s := range seg.SentencesIn(p) {
			if s.Len() <= maxBytes {
				units = append(units, s)
				continue
			}
			units = append(units, hardSplit(text, s, maxBytes)...)
		}
	}

	windows := make([]Window, 0, len(units))
	start, end := -1, -1
	flush := func() {
		if start < 0 {
			return
		}
		windows = append(windows, Window{Index: len(windows), Start: start, End: end, Text: text[start:end]})
		start, end = -1, -1
	}
	for _, u := range units {
		if start >= 0 && u.End-start > maxBytes {
			flush()
		}
		if start < 0 {
			start = u.Start
		}
		end = u.End
	}
	flush()
	return windows
}

func hardSplit(text string, s segment.Span, maxBytes int) []segment.Span {
	var out []segment.Span
	pos := s.Start
	for pos < s.End {
		limit := pos + maxBytes
		if limit >= s.End {
			out = append(out, segment.Span{Start: pos, End: s.End})
			break
		}
		cut := limit
		for cut > pos && !utf8.RuneStart(text[cut]) {
			cut--
		}
		if ws := strings.LastIndexFunc(text[pos:cut], unicode.IsSpace); ws > 0 {
			cut = pos + ws
		}
		if cut == pos {
			// maxBytes is smaller than the rune at pos.
			cut = limit
			for cut < s.End && !utf8.RuneStart(text[cut]) {
				cut++
			}
		}
		out = append(out, segment.Span{Start: pos, End: cut})
		pos = cut
		for pos < s.End {
			r, size := utf8.DecodeRuneInString(text[pos:s.End])
			if !unicode.IsSpace(r) {
				break
			}
			pos += size
		}
	}
	return out
}
