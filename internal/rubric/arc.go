package rubric

import (
	"regexp"

	"writing_coach/internal/segment"
)

type Beat string

const (
	BeatOpening    Beat = "opening"
	BeatConflict   Beat = "conflict"
	BeatClimax     Beat = "climax"
	BeatResolution Beat = "resolution"
)

// ArcWindow is the share of the paragraphs in which a beat is looked for.
type ArcWindow struct {
	Beat       Beat
	StartRatio float64
	EndRatio   float64
	markers    *regexp.Regexp
}

var StoryArcWindows = []ArcWindow{
	{Beat: BeatOpening, StartRatio: 0, EndRatio: 0.25, markers: regexp.MustCompile(`(?i)\b(?:once|suddenly|one day|it was|long ago)\b`)},
	{Beat: BeatConflict, StartRatio: 0, EndRatio: 1, markers: regexp.MustCompile(`(?i)\b(?:but|however|suddenly|problem|worried|scared|discovered)\b`)},
	{Beat: BeatClimax, StartRatio: 0.25, EndRatio: 1, markers: regexp.MustCompile(`(?i)\b(?:finally|at last|suddenly|realized|realised|decided)\b`)},
	{Beat: BeatResolution, StartRatio: 0.75, EndRatio: 1, markers: regexp.MustCompile(`(?i)\b(?:finally|eventually|in the end|now|today)\b`)},
}

var beatFeedback = map[Beat][2]string{
	BeatOpening:    {"Strong opening that sets the scene", "Story needs a clearer opening or hook"},
	BeatConflict:   {"Introduces tension or conflict", "Story needs a problem or conflict for the character"},
	BeatClimax:     {"Contains a turning point or important moment", "Story needs a climax or key decision point"},
	BeatResolution: {"Provides closure or resolution", "Story needs a clearer ending or resolution"},
}

// ParagraphsInWindow returns the 1-based inclusive paragraph range covered by
// a ratio window.
func ParagraphsInWindow(total int, startRatio, endRatio float64) (start, end int) {
	if total <= 0 {
		return 0, 0
	}
	start = int(float64(total)*startRatio) + 1
	end = int(float64(total)*endRatio) + 1
	if start < 1 {
		start = 1
	}
	if end > total {
		end = total
	}
	if start > end {
		start = end
	}
	return start, end
}

type Arc struct {
	Stage        string   `json:"stage"`
	Completeness float64  `json:"completeness"`
	Found        []Beat   `json:"found"`
	Strengths    []string `json:"strengths"`
	Gaps         []string `json:"gaps"`
	NextSteps    []string `json:"next_steps"`
}

func (a Arc) Has(b Beat) bool {
	for _, f := range a.Found {
		if f == b {
			return true
		}
	}
	return false
}

// AnalyzeArc looks for each story beat inside its paragraph window.
func AnalyzeArc(text string, seg segment.Segmentation) Arc {
	words := len(seg.Words)
	arc := Arc{
		Stage:     stageFor(words),
		Found:     []Beat{},
		Strengths: []string{},
		Gaps:      []string{},
		NextSteps: []string{},
	}
	total := len(seg.Paragraphs)
	if total == 0 {
		return arc
	}
	for _, w := range StoryArcWindows {
		first, last := ParagraphsInWindow(total, w.StartRatio, w.EndRatio)
		window := text[seg.Paragraphs[first-1].Start:seg.Paragraphs[last-1].End]
		fb := beatFeedback[w.Beat]
		if w.markers.MatchString(window) {
			arc.Found = append(arc.Found, w.Beat)
			arc.Strengths = append(arc.Strengths, fb[0])
		} else {
			arc.Gaps = append(arc.Gaps, fb[1])
		}
	}
	arc.Completeness = float64(len(arc.Found)) / float64(len(StoryArcWindows)) * 100

	switch {
	case !arc.Has(BeatConflict) && words < 100:
		arc.NextSteps = append(arc.NextSteps, "Introduce a problem or challenge for your character")
	case arc.Has(BeatConflict) && !arc.Has(BeatClimax) && words > 100:
		arc.NextSteps = append(arc.NextSteps, "Build toward a climax, the most exciting or important moment")
	}
	if arc.Has(BeatClimax) && !arc.Has(BeatResolution) {
		arc.NextSteps = append(arc.NextSteps, "Wrap up your story with a satisfying resolution")
	}
	return arc
}

func stageFor(words int) string {
	switch {
	case words < 50:
		return "exposition"
	case words < 150:
		return "rising-action"
	case words < 200:
		return "climax"
	default:
		return "resolution"
	}
}

type Pacing struct {
	Label              string  `json:"label"`
	MeanSentenceLength float64 `json:"mean_sentence_length"`
}

func pacingFor(mean float64) Pacing {
	label := "balanced"
	switch {
	case mean == 0:
		label = ""
	case mean < 8:
		label = "fast"
	case mean > 20:
		label = "slow"
	}
	return Pacing{Label: label, MeanSentenceLength: mean}
}
