package style

import (
	"math"
	"strings"

	"writing_coach/internal/segment"
)

// A compact subset of common trigrams used as a proxy for formulaic language.
var commonTrigrams = map[string]struct{}{
	"one of the":       {},
	"as well as":       {},
	"out of the":       {},
	"it was a":         {},
	"to be a":          {},
	"in the same":      {},
	"at the same":      {},
	"was one of":       {},
	"this is a":        {},
	"there was a":      {},
	"in order to":      {},
	"the end of":       {},
	"a lot of":         {},
	"the rest of":      {},
	"it is a":          {},
	"for the first":    {},
	"the beginning of": {},
	"all of a":         {},
	"once upon a":      {},
	"upon a time":      {},
}

type Stats struct {
	Words              int      `json:"words"`
	Sentences          int      `json:"sentences"`
	Paragraphs         int      `json:"paragraphs"`
	MeanSentenceLength float64  `json:"mean_sentence_length"`
	SentenceLengthSD   float64  `json:"sentence_length_sd"`
	Monotone           bool     `json:"monotone"`
	TypeTokenRatio     float64  `json:"type_token_ratio"`
	CommonTrigramRatio float64  `json:"common_trigram_ratio"`
	LongWords          int      `json:"long_words"`
	Flags              []string `json:"flags"`
}

// Measure computes raw text metrics over a segmentation. Monotone needs at
// least three sentences to be meaningful.
func Measure(text string, seg segment.Segmentation) Stats {
	words := tokenize(text, seg)
	sd, mean := sentenceLengthStats(seg)
	st := Stats{
		Words:              len(words),
		Sentences:          len(seg.Sentences),
		Paragraphs:         len(seg.Paragraphs),
		MeanSentenceLength: mean,
		SentenceLengthSD:   sd,
		Monotone:           len(seg.Sentences) >= 3 && sd < 2.0,
		TypeTokenRatio:     typeTokenRatio(words),
		CommonTrigramRatio: trigramCommonness(words),
		LongWords:          longWords(words),
		Flags:              []string{},
	}
	if st.Monotone {
		st.Flags = append(st.Flags, "Sentence lengths barely vary; mix short and long sentences")
	}
	if st.CommonTrigramRatio >= 0.10 {
		st.Flags = append(st.Flags, "Many stock phrases; try fresher wording")
	}
	if st.Words >= 50 && st.TypeTokenRatio < 0.4 {
		st.Flags = append(st.Flags, "The same words come up often; vary your vocabulary")
	}
	return st
}

func sentenceLengthStats(seg segment.Segmentation) (sd float64, mean float64) {
	lengths := make([]float64, 0, len(seg.Sentences))
	for _, s := range seg.Sentences {
		if n := len(seg.WordsIn(s)); n > 0 {
			lengths = append(lengths, float64(n))
		}
	}
	if len(lengths) == 0 {
		return 0, 0
	}

	total := 0.0
	for _, l := range lengths {
		total += l
	}
	mean = total / float64(len(lengths))
	if len(lengths) == 1 {
		return 0, mean
	}

	var variance float64
	for _, l := range lengths {
		d := l - mean
		variance += d * d
	}
	variance /= float64(len(lengths))
	return math.Sqrt(variance), mean
}

func typeTokenRatio(words []string) float64 {
	if len(words) == 0 {
		return 0
	}
	seen := make(map[string]struct{}, len(words))
	for _, w := range words {
		seen[w] = struct{}{}
	}
	return float64(len(seen)) / float64(len(words))
}

func trigramCommonness(words []string) float64 {
	if len(words) < 3 {
		return 0
	}
	total := 0
	common := 0
	for i := 0; i+2 < len(words); i++ {
		total++
		tri := words[i] + " " + words[i+1] + " " + words[i+2]
		if _, ok := commonTrigrams[tri]; ok {
			common++
		}
	}
	return float64(common) / float64(total)
}

func longWords(words []string) int {
	n := 0
	for _, w := range words {
		if len([]rune(w)) >= 8 {
			n++
		}
	}
	return n
}

func tokenize(text string, seg segment.Segmentation) []string {
	out := make([]string, 0, len(seg.Words))
	for _, w := range seg.Words {
		out = append(out, strings.ToLower(w.Text(text)))
	}
	return out
}
