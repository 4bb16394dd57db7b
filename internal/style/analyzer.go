package style

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"writing_coach/internal/issue"
	"writing_coach/internal/segment"
)

//go:embed weak_words.json
var weakWordsJSON []byte

const DefaultLimit = 8

var emotions = []string{
	"scared", "happy", "sad", "angry", "nervous", "excited", "afraid", "worried", "tired", "lonely",
	"upset", "frightened", "bored", "surprised", "jealous", "proud", "terrified", "anxious", "embarrassed",
}

var (
	showTellPattern = regexp.MustCompile(`(?i)\b(?:was|were|felt|feel|feels|am|is|are|became)\s+(?:very\s+|so\s+|really\s+)?(` + strings.Join(emotions, "|") + `)\b`)
	passivePattern  = regexp.MustCompile(`(?i)\b(?:am|is|are|was|were|be|been|being)\s+([a-z]{3,}ed|known|seen|taken|given|made|done|written|broken|stolen|eaten|chosen|driven|found|told|held|caught|thrown|built|sent|left)\b(\s+by\b)?`)
)

var notParticiples = map[string]struct{}{
	"need": {}, "indeed": {}, "speed": {}, "proceed": {}, "succeed": {}, "exceed": {}, "bleed": {},
	"feed": {}, "seed": {}, "breed": {}, "hundred": {}, "naked": {}, "wicked": {}, "sacred": {},
	"rugged": {}, "crooked": {}, "beloved": {},
}

type Analyzer struct {
	weak  *regexp.Regexp
	alts  map[string][]string
	emo   map[string]struct{}
	limit int
}

func New(limit int) *Analyzer {
	if limit <= 0 {
		limit = DefaultLimit
	}
	var table map[string][]string
	if err := json.Unmarshal(weakWordsJSON, &table); err != nil {
		panic(fmt.Sprintf("decode embedded weak words: %v", err))
	}
	phrases := make([]string, 0, len(table))
	for p := range table {
		phrases = append(phrases, regexp.QuoteMeta(p))
	}
	// Longer phrases first so "a lot of" wins over "a lot".
	sort.Slice(phrases, func(i, j int) bool {
		if len(phrases[i]) != len(phrases[j]) {
			return len(phrases[i]) > len(phrases[j])
		}
		return phrases[i] < phrases[j]
	})
	emo := make(map[string]struct{}, len(emotions))
	for _, e := range emotions {
		emo[e] = struct{}{}
	}
	return &Analyzer{
		weak:  regexp.MustCompile(`(?i)\b(?:` + strings.Join(phrases, "|") + `)\b`),
		alts:  table,
		emo:   emo,
		limit: limit,
	}
}

// Analyze flags filler words, telling instead of showing, and passive voice.
// Output is capped at the configured limit, earliest first.
func (a *Analyzer) Analyze(text string, _ segment.Segmentation) []issue.Issue {
	var out []issue.Issue

	for _, loc := range a.weak.FindAllStringIndex(text, -1) {
		phrase := text[loc[0]:loc[1]]
		var suggestions []string
		for _, alt := range a.alts[strings.ToLower(phrase)] {
			suggestions = append(suggestions, segment.MatchCase(phrase, alt))
		}
		msg := fmt.Sprintf("\"%s\" adds little. Cut it or choose a stronger word.", phrase)
		out = append(out, issue.New(issue.SourceStyle, "weak-word", loc[0], loc[1], issue.KindStyle, issue.SeveritySuggestion, msg, suggestions...))
	}

	for _, m := range showTellPattern.FindAllStringSubmatchIndex(text, -1) {
		emotion := strings.ToLower(text[m[2]:m[3]])
		out = append(out, issue.New(issue.SourceStyle, "show-dont-tell", m[0], m[1], issue.KindStyle, issue.SeveritySuggestion,
			fmt.Sprintf("Show that the character is %s through actions, body language or dialogue.", emotion)))
	}

	for _, m := range passivePattern.FindAllStringSubmatchIndex(text, -1) {
		verb := strings.ToLower(text[m[2]:m[3]])
		if _, skip := notParticiples[verb]; skip {
			continue
		}
		if _, skip := a.emo[verb]; skip {
			continue
		}
		rule := "passive-voice"
		if m[4] >= 0 {
			rule = "passive-voice-by"
		}
		out = append(out, issue.New(issue.SourceStyle, rule, m[0], m[3], issue.KindStyle, issue.SeveritySuggestion,
			"This may be passive voice. Say who does the action."))
	}

	out = dropOverlaps(out)
	if len(out) > a.limit {
		out = out[:a.limit]
	}
	return out
}

func dropOverlaps(in []issue.Issue) []issue.Issue {
	issue.Sort(in)
	out := in[:0]
	lastEnd := -1
	for _, is := range in {
		if is.Start < lastEnd {
			continue
		}
		out = append(out, is)
		lastEnd = is.End
	}
	return out
}
