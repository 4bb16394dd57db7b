package spelling

import (
	"regexp"
	"strings"

	"writing_coach/internal/issue"
	"writing_coach/internal/segment"
)

// Rule is one pattern-table entry. Issues anchor on submatch Group (0 is the
// whole match). Replacement templates are expanded against the match the way
// regexp.Expand does. Suggest, when set, replaces template expansion and may
// reject the match.
type Rule struct {
	ID       string
	Pattern  *regexp.Regexp
	Group    int
	Replace  []string
	Suggest  func(text string, m []int) ([]string, bool)
	Message  string
	Kind     issue.Kind
	Severity issue.Severity
}

var apostrophes = map[string]string{
	"dont":     "don't",
	"cant":     "can't",
	"wont":     "won't",
	"didnt":    "didn't",
	"doesnt":   "doesn't",
	"isnt":     "isn't",
	"wasnt":    "wasn't",
	"werent":   "weren't",
	"shouldnt": "shouldn't",
	"couldnt":  "couldn't",
	"wouldnt":  "wouldn't",
	"havent":   "haven't",
	"hasnt":    "hasn't",
	"im":       "I'm",
	"ive":      "I've",
	"youre":    "you're",
	"theyre":   "they're",
	"thats":    "that's",
	"whats":    "what's",
}

var negativeObjects = map[string]string{
	"nothing": "anything",
	"nobody":  "anybody",
	"nowhere": "anywhere",
	"none":    "any",
	"no one":  "anyone",
}

// Words that start with a vowel letter but a consonant sound.
var consonantSoundPrefixes = []string{"uni", "use", "usu", "uti", "eu", "one", "once", "ur"}

func DefaultRules() []Rule {
	return []Rule{
		{
			ID:       "modal-of",
			Pattern:  regexp.MustCompile(`(?i)\b(could|would|should|might|must) of\b`),
			Replace:  []string{"${1} have"},
			Message:  "Use \"have\" after could, would or should, not \"of\".",
			Kind:     issue.KindGrammar,
			Severity: issue.SeverityError,
		},
		{
			ID:       "third-person-dont",
			Pattern:  regexp.MustCompile(`(?i)\b(he|she|it) don't\b`),
			Replace:  []string{"${1} doesn't"},
			Message:  "Use \"doesn't\" with he, she or it.",
			Kind:     issue.KindGrammar,
			Severity: issue.SeverityError,
		},
		{
			ID:       "singular-are",
			Pattern:  regexp.MustCompile(`(?i)\b(he|she|it) are\b`),
			Replace:  []string{"${1} is"},
			Message:  "Use \"is\" with he, she or it.",
			Kind:     issue.KindGrammar,
			Severity: issue.SeverityError,
		},
		{
			ID:       "singular-were",
			Pattern:  regexp.MustCompile(`(?i)\b(he|she|it) were\b`),
			Replace:  []string{"${1} was"},
			Message:  "Use \"was\" with he, she or it unless you mean an imagined situation.",
			Kind:     issue.KindGrammar,
			Severity: issue.SeverityWarning,
		},
		{
			ID:       "plural-is",
			Pattern:  regexp.MustCompile(`(?i)\b(they|we|you) is\b`),
			Replace:  []string{"${1} are"},
			Message:  "Use \"are\" with they, we or you.",
			Kind:     issue.KindGrammar,
			Severity: issue.SeverityError,
		},
		{
			ID:       "plural-was",
			Pattern:  regexp.MustCompile(`(?i)\b(they|we|you) was\b`),
			Replace:  []string{"${1} were"},
			Message:  "Use \"were\" with they, we or you.",
			Kind:     issue.KindGrammar,
			Severity: issue.SeverityError,
		},
		{
			ID:       "their-going",
			Pattern:  regexp.MustCompile(`(?i)\b(their|there) going\b`),
			Replace:  []string{"they're going"},
			Message:  "\"They're\" is short for \"they are\".",
			Kind:     issue.KindGrammar,
			Severity: issue.SeverityError,
		},
		{
			ID:       "your-going",
			Pattern:  regexp.MustCompile(`(?i)\b(your) (going|welcome|right)\b`),
			Replace:  []string{"you're ${2}"},
			Message:  "\"You're\" is short for \"you are\".",
			Kind:     issue.KindGrammar,
			Severity: issue.SeverityError,
		},
		{
			ID:       "its-going",
			Pattern:  regexp.MustCompile(`(?i)\b(its) (going|been|a|time)\b`),
			Replace:  []string{"it's ${2}"},
			Message:  "\"It's\" is short for \"it is\" or \"it has\".",
			Kind:     issue.KindGrammar,
			Severity: issue.SeverityWarning,
		},
		{
			ID:       "comparative-then",
			Pattern:  regexp.MustCompile(`(?i)\b(more|less|better|worse|bigger|smaller|faster|slower|rather|other) then\b`),
			Replace:  []string{"${1} than"},
			Message:  "Use \"than\" for comparisons and \"then\" for time.",
			Kind:     issue.KindGrammar,
			Severity: issue.SeverityError,
		},
		{
			ID:      "double-negative",
			Pattern: regexp.MustCompile(`(?i)\b(don't|doesn't|didn't|can't|won't|isn't|wasn't|never)((?: [a-z]+)?) (nothing|nobody|nowhere|none|no one)\b`),
			Suggest: func(text string, m []int) ([]string, bool) {
				obj := strings.ToLower(text[m[6]:m[7]])
				return []string{text[m[2]:m[5]] + " " + negativeObjects[obj]}, true
			},
			Message:  "Two negatives cancel each other out.",
			Kind:     issue.KindGrammar,
			Severity: issue.SeverityWarning,
		},
		{
			ID:      "article-an",
			Pattern: regexp.MustCompile(`(?i)\b(a) ([aeiou][a-z]*)\b`),
			Suggest: func(text string, m []int) ([]string, bool) {
				next := strings.ToLower(text[m[4]:m[5]])
				for _, p := range consonantSoundPrefixes {
					if strings.HasPrefix(next, p) {
						return nil, false
					}
				}
				article := "an"
				if text[m[2]] == 'A' {
					article = "An"
				}
				return []string{article + " " + text[m[4]:m[5]]}, true
			},
			Message:  "Use \"an\" before a vowel sound.",
			Kind:     issue.KindGrammar,
			Severity: issue.SeverityWarning,
		},
		{
			ID:      "lowercase-i",
			Pattern: regexp.MustCompile(`\bi\b`),
			Suggest: func(text string, m []int) ([]string, bool) {
				if m[1] < len(text) && text[m[1]] == '.' {
					return nil, false
				}
				if m[0] > 0 && text[m[0]-1] == '.' {
					return nil, false
				}
				return []string{"I"}, true
			},
			Message:  "Always capitalise \"I\".",
			Kind:     issue.KindGrammar,
			Severity: issue.SeverityError,
		},
		{
			ID:      "missing-apostrophe",
			Pattern: regexp.MustCompile(`(?i)\b(dont|cant|wont|didnt|doesnt|isnt|wasnt|werent|shouldnt|couldnt|wouldnt|havent|hasnt|im|ive|youre|theyre|thats|whats)\b`),
			Suggest: func(text string, m []int) ([]string, bool) {
				word := text[m[0]:m[1]]
				fixed, ok := apostrophes[strings.ToLower(word)]
				if !ok {
					return nil, false
				}
				if fixed == "I'm" || fixed == "I've" {
					return []string{fixed}, true
				}
				return []string{segment.MatchCase(word, fixed)}, true
			},
			Message:  "This contraction needs an apostrophe.",
			Kind:     issue.KindPunctuation,
			Severity: issue.SeverityError,
		},
		{
			ID:       "space-before-punctuation",
			Pattern:  regexp.MustCompile(`[ \t]+([,.;:!?])`),
			Replace:  []string{"${1}"},
			Message:  "Remove the space before punctuation.",
			Kind:     issue.KindPunctuation,
			Severity: issue.SeverityWarning,
		},
		{
			ID:       "missing-space-after-punctuation",
			Pattern:  regexp.MustCompile(`[a-z](([.!?,;])([A-Z]))`),
			Group:    1,
			Replace:  []string{"${2} ${3}"},
			Message:  "Add a space after punctuation.",
			Kind:     issue.KindPunctuation,
			Severity: issue.SeverityWarning,
		},
		{
			ID:       "lowercase-sentence-start",
			Pattern:  regexp.MustCompile(`[a-z]{2,}[.!?] +([a-z])`),
			Group:    1,
			Suggest:  upperGroup(1),
			Message:  "Start a new sentence with a capital letter.",
			Kind:     issue.KindGrammar,
			Severity: issue.SeverityWarning,
		},
		{
			ID:      "double-space",
			Pattern: regexp.MustCompile(` {2,}`),
			Suggest: func(text string, m []int) ([]string, bool) {
				if m[0] == 0 || m[1] == len(text) {
					return nil, false
				}
				if text[m[0]-1] == '\n' || text[m[1]] == '\n' {
					return nil, false
				}
				return []string{" "}, true
			},
			Message:  "Use a single space between words.",
			Kind:     issue.KindPunctuation,
			Severity: issue.SeveritySuggestion,
		},
	}
}

func upperGroup(g int) func(string, []int) ([]string, bool) {
	return func(text string, m []int) ([]string, bool) {
		return []string{strings.ToUpper(text[m[2*g]:m[2*g+1]])}, true
	}
}
