package segment

import (
	"regexp"
	"sort"
	"unicode"
	"unicode/utf8"
)

var (
	paragraphBreak = regexp.MustCompile(`\n\s*\n`)
	wordPattern    = regexp.MustCompile(`[\p{L}\p{N}]+(?:['’-][\p{L}\p{N}]+)*`)
)

// Span is a half-open byte range with its ordinal among spans of the same kind.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
	Index int `json:"index"`
}

func (s Span) Text(text string) string {
	if s.Start < 0 || s.End > len(text) || s.Start > s.End {
		return ""
	}
	return text[s.Start:s.End]
}

func (s Span) Len() int { return s.End - s.Start }

func (s Span) Contains(offset int) bool { return offset >= s.Start && offset < s.End }

type Segmentation struct {
	Words      []Span `json:"words"`
	Sentences  []Span `json:"sentences"`
	Paragraphs []Span `json:"paragraphs"`
}

// Segment splits text into words, sentences and paragraphs. Sentences never
// cross a paragraph boundary. Abbreviations such as "Mr." end a sentence.
func Segment(text string) Segmentation {
	paragraphs := Paragraphs(text)
	sentences := make([]Span, 0, len(paragraphs)*4)
	for _, p := range paragraphs {
		for _, s := range sentencesIn(text, p.Start, p.End) {
			s.Index = len(sentences)
			sentences = append(sentences, s)
		}
	}
	return Segmentation{
		Words:      Words(text),
		Sentences:  sentences,
		Paragraphs: paragraphs,
	}
}

func Words(text string) []Span {
	locs := wordPattern.FindAllStringIndex(text, -1)
	out := make([]Span, 0, len(locs))
	for i, loc := range locs {
		out = append(out, Span{Start: loc[0], End: loc[1], Index: i})
	}
	return out
}

// Paragraphs splits on one or more blank lines. Each span is trimmed of
// surrounding whitespace and empty parts are skipped.
func Paragraphs(text string) []Span {
	var out []Span
	from := 0
	add := func(start, end int) {
		start, end = trim(text, start, end)
		if start < end {
			out = append(out, Span{Start: start, End: end, Index: len(out)})
		}
	}
	for _, loc := range paragraphBreak.FindAllStringIndex(text, -1) {
		add(from, loc[0])
		from = loc[1]
	}
	add(from, len(text))
	return out
}

func Sentences(text string) []Span {
	return Segment(text).Sentences
}

func sentencesIn(text string, start, end int) []Span {
	var out []Span
	from := start
	i := start
	for i < end {
		c := text[i]
		if c != '.' && c != '!' && c != '?' {
			i++
			continue
		}
		j := i
		for j < end && (text[j] == '.' || text[j] == '!' || text[j] == '?') {
			j++
		}
		for j < end {
			r, size := utf8.DecodeRuneInString(text[j:end])
			if !isClosing(r) {
				break
			}
			j += size
		}
		if j == end {
			break
		}
		if r, _ := utf8.DecodeRuneInString(text[j:end]); unicode.IsSpace(r) {
			if s, e := trim(text, from, j); s < e {
				out = append(out, Span{Start: s, End: e})
			}
			from = j
		}
		i = j
	}
	if s, e := trim(text, from, end); s < e {
		out = append(out, Span{Start: s, End: e})
	}
	return out
}

func isClosing(r rune) bool {
	switch r {
	case '"', '\'', ')', ']', '’', '”':
		return true
	}
	return false
}

func trim(text string, start, end int) (int, int) {
	for start < end {
		r, size := utf8.DecodeRuneInString(text[start:end])
		if !unicode.IsSpace(r) {
			break
		}
		start += size
	}
	for end > start {
		r, size := utf8.DecodeLastRuneInString(text[start:end])
		if !unicode.IsSpace(r) {
			break
		}
		end -= size
	}
	return start, end
}

// WordsIn returns the words that start inside span.
func (s Segmentation) WordsIn(span Span) []Span {
	lo := sort.Search(len(s.Words), func(i int) bool { return s.Words[i].Start >= span.Start })
	hi := lo
	for hi < len(s.Words) && s.Words[hi].Start < span.End {
		hi++
	}
	return s.Words[lo:hi]
}

// FirstWord returns the first word of span, if any.
func (s Segmentation) FirstWord(span Span) (Span, bool) {
	words := s.WordsIn(span)
	if len(words) == 0 {
		return Span{}, false
	}
	return words[0], true
}

// SentencesIn returns the sentences inside paragraph.
func (s Segmentation) SentencesIn(paragraph Span) []Span {
	lo := sort.Search(len(s.Sentences), func(i int) bool { return s.Sentences[i].Start >= paragraph.Start })
	hi := lo
	for hi < len(s.Sentences) && s.Sentences[hi].End <= paragraph.End {
		hi++
	}
	return s.Sentences[lo:hi]
}
