package vocabulary

import (
	"fmt"
	"strings"
)

// Tier is the support level of the writer. High support suggests the most
// accessible alternatives; low support suggests the most advanced.
type Tier string

const (
	TierHigh   Tier = "high"
	TierMedium Tier = "medium"
	TierLow    Tier = "low"
)

func ParseTier(s string) (Tier, error) {
	switch Tier(strings.ToLower(strings.TrimSpace(s))) {
	case TierHigh, "high support":
		return TierHigh, nil
	case TierMedium, "medium support", "":
		return TierMedium, nil
	case TierLow, "low support":
		return TierLow, nil
	default:
		return "", fmt.Errorf("unknown support tier %q", s)
	}
}

type Entry struct {
	Word   string
	Weight int
	High   []string
	Medium []string
	Low    []string
}

func (e Entry) For(t Tier) []string {
	switch t {
	case TierHigh:
		return e.High
	case TierLow:
		return e.Low
	default:
		return e.Medium
	}
}

var defaultTable = []Entry{
	{"said", 10, []string{"asked", "shouted", "whispered", "replied"}, []string{"exclaimed", "muttered", "declared", "murmured"}, []string{"articulated", "proclaimed", "remarked", "interjected"}},
	{"very", 9, []string{"really", "super", "so"}, []string{"extremely", "incredibly", "remarkably"}, []string{"exceedingly", "profoundly", "immensely"}},
	{"good", 9, []string{"great", "nice", "fine"}, []string{"excellent", "wonderful", "splendid"}, []string{"exemplary", "exceptional", "commendable"}},
	{"nice", 8, []string{"kind", "friendly", "pleasant"}, []string{"delightful", "charming", "agreeable"}, []string{"gracious", "amiable", "congenial"}},
	{"bad", 8, []string{"awful", "terrible", "poor"}, []string{"dreadful", "horrible", "appalling"}, []string{"atrocious", "abysmal", "deplorable"}},
	{"big", 8, []string{"huge", "giant", "large"}, []string{"colossal", "enormous", "massive"}, []string{"immense", "monumental", "gargantuan"}},
	{"went", 7, []string{"walked", "ran", "hurried"}, []string{"ventured", "wandered", "journeyed"}, []string{"embarked", "proceeded", "traversed"}},
	{"got", 7, []string{"found", "took", "won"}, []string{"received", "obtained", "earned"}, []string{"acquired", "procured", "attained"}},
	{"thing", 6, []string{"object", "item"}, []string{"element", "aspect", "detail"}, []string{"component", "phenomenon", "facet"}},
	{"things", 6, []string{"objects", "items"}, []string{"elements", "aspects", "details"}, []string{"components", "phenomena", "facets"}},
	{"happy", 6, []string{"glad", "cheerful", "joyful"}, []string{"delighted", "thrilled", "elated"}, []string{"euphoric", "jubilant", "exuberant"}},
	{"sad", 6, []string{"upset", "unhappy", "gloomy"}, []string{"miserable", "heartbroken", "sorrowful"}, []string{"despondent", "melancholy", "disconsolate"}},
	{"small", 5, []string{"tiny", "little"}, []string{"miniature", "petite", "compact"}, []string{"minuscule", "diminutive", "infinitesimal"}},
	{"looked", 5, []string{"stared", "watched", "peeked"}, []string{"gazed", "glanced", "peered"}, []string{"scrutinised", "surveyed", "contemplated"}},
	{"scared", 5, []string{"afraid", "frightened"}, []string{"terrified", "petrified", "alarmed"}, []string{"apprehensive", "panic-stricken", "trepidatious"}},
	{"angry", 5, []string{"mad", "cross"}, []string{"furious", "irate", "livid"}, []string{"indignant", "incensed", "enraged"}},
	{"fun", 4, []string{"exciting", "enjoyable"}, []string{"thrilling", "entertaining"}, []string{"exhilarating", "captivating", "riveting"}},
	{"walked", 4, []string{"strolled", "marched", "stepped"}, []string{"trudged", "ambled", "sauntered"}, []string{"meandered", "promenaded", "traipsed"}},
	{"ran", 4, []string{"raced", "dashed", "sprinted"}, []string{"bolted", "hurtled", "scampered"}, []string{"careered", "scurried", "galloped"}},
	{"showed", 4, []string{"pointed out", "revealed"}, []string{"displayed", "demonstrated"}, []string{"exhibited", "illustrated", "manifested"}},
	{"made", 4, []string{"built", "created"}, []string{"constructed", "crafted"}, []string{"fabricated", "devised", "formulated"}},
	{"pretty", 4, []string{"lovely", "cute"}, []string{"beautiful", "attractive"}, []string{"exquisite", "radiant", "resplendent"}},
	{"scary", 4, []string{"frightening", "spooky"}, []string{"terrifying", "eerie"}, []string{"harrowing", "sinister", "macabre"}},
	{"cold", 3, []string{"chilly", "icy"}, []string{"frosty", "freezing", "bitter"}, []string{"glacial", "frigid", "arctic"}},
	{"hot", 3, []string{"warm", "boiling"}, []string{"scorching", "sweltering"}, []string{"blistering", "searing", "sultry"}},
	{"interesting", 3, []string{"exciting", "cool"}, []string{"fascinating", "intriguing"}, []string{"compelling", "captivating", "engrossing"}},
	{"important", 3, []string{"main", "big"}, []string{"significant", "essential"}, []string{"crucial", "paramount", "indispensable"}},
	{"quickly", 3, []string{"fast", "swiftly"}, []string{"rapidly", "hastily"}, []string{"briskly", "expeditiously", "promptly"}},
	{"slowly", 3, []string{"gently", "carefully"}, []string{"gradually", "leisurely"}, []string{"sluggishly", "languidly", "unhurriedly"}},
}

// Words that count as sophisticated on top of the advanced alternatives in the table.
var extraSophisticated = []string{
	"magnificent", "extraordinary", "meticulous", "luminous", "serene", "tranquil", "ominous",
	"resilient", "vibrant", "exhilarated", "desolate", "ethereal", "formidable", "peculiar",
	"reluctant", "treacherous", "vivid", "wistful", "anticipation", "bewildered", "cascading",
	"determination", "exquisite", "glimmering", "hesitantly", "inevitable", "mesmerising",
	"mesmerizing", "perplexed", "shimmering", "silhouette", "solitary", "spectacular", "unwavering",
}

func DefaultTable() []Entry {
	out := make([]Entry, len(defaultTable))
	copy(out, defaultTable)
	return out
}
