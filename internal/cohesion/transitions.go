package cohesion

import "strings"

type Category string

const (
	Addition    Category = "addition"
	Contrast    Category = "contrast"
	CauseEffect Category = "cause_effect"
	Sequence    Category = "sequence"
	Emphasis    Category = "emphasis"
	Conclusion  Category = "conclusion"
)

var transitions = map[Category][]string{
	Addition:    {"Furthermore", "Moreover", "Additionally", "In addition", "Also", "Besides"},
	Contrast:    {"However", "Nevertheless", "On the other hand", "In contrast", "Instead", "Yet", "Still"},
	CauseEffect: {"Therefore", "As a result", "Consequently", "Because of this", "Thus"},
	Sequence:    {"First", "Then", "Next", "After that", "Later", "Meanwhile", "Eventually", "Finally"},
	Emphasis:    {"Indeed", "In fact", "Above all", "Certainly", "Especially"},
	Conclusion:  {"In conclusion", "In the end", "Ultimately", "To sum up", "Overall"},
}

// Openers that link a paragraph to the previous one in narrative writing.
var narrativeOpeners = []string{
	"suddenly", "one day", "the next day", "the next morning", "that night", "that morning",
	"once", "at last", "all of a sudden", "without warning", "soon", "soon after", "afterwards",
	"when", "as", "while", "before", "after", "since", "although", "but", "and", "because", "so",
	"unfortunately", "fortunately", "luckily", "sadly", "for example", "for instance", "similarly",
	"likewise", "as well", "to begin with", "firstly", "secondly", "thirdly", "lastly", "hours later",
	"days later", "moments later", "the following", "by the time", "at first", "in the morning",
}

// Markers looked for in the surrounding text, checked in this order.
var markerRoutes = []struct {
	category Category
	markers  []string
}{
	{Contrast, []string{"however", "but", "although", "though", "yet", "instead", "despite", "unlike"}},
	{CauseEffect, []string{"because", "therefore", "since", "consequently", "caused", "result"}},
	{Addition, []string{"also", "and", "too", "another", "addition"}},
	{Sequence, []string{"first", "then", "next", "after", "later", "before"}},
}

func Transitions(c Category) []string {
	return append([]string(nil), transitions[c]...)
}

func Categories() []Category {
	return []Category{Addition, Contrast, CauseEffect, Sequence, Emphasis, Conclusion}
}

// IsTransitionStart reports whether sentence opens with a known linking word or phrase.
func IsTransitionStart(sentence string) bool {
	lower := strings.ToLower(strings.TrimLeft(sentence, " \t\"'“‘("))
	for _, c := range Categories() {
		for _, t := range transitions[c] {
			if hasPhrasePrefix(lower, strings.ToLower(t)) {
				return true
			}
		}
	}
	for _, t := range narrativeOpeners {
		if hasPhrasePrefix(lower, t) {
			return true
		}
	}
	return false
}

// CountMarkers counts linking words anywhere in text, used as a logical-flow signal.
func CountMarkers(text string) int {
	n := 0
	for _, w := range strings.FieldsFunc(strings.ToLower(text), notLetter) {
		switch w {
		case "however", "therefore", "furthermore", "moreover", "additionally", "consequently",
			"meanwhile", "finally", "eventually", "afterwards", "nevertheless", "suddenly", "then",
			"next", "later", "because", "although", "instead", "ultimately", "overall", "first":
			n++
		}
	}
	return n
}

func hasPhrasePrefix(s, phrase string) bool {
	if !strings.HasPrefix(s, phrase) {
		return false
	}
	if len(s) == len(phrase) {
		return true
	}
	return notLetter(rune(s[len(phrase)]))
}

func notLetter(r rune) bool {
	return !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r == '\'' || r >= 0x80)
}
