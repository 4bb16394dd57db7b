package rubric

import (
	"math"
	"regexp"
	"strings"

	"writing_coach/internal/cohesion"
	"writing_coach/internal/issue"
	"writing_coach/internal/segment"
	"writing_coach/internal/style"
	"writing_coach/internal/vocabulary"
)

type Criterion string

const (
	Ideas     Criterion = "ideas"
	Structure Criterion = "structure"
	Language  Criterion = "language"
	Mechanics Criterion = "mechanics"
)

func Criteria() []Criterion { return []Criterion{Ideas, Structure, Language, Mechanics} }

const EmptyMessage = "Start writing to receive a score."

var creativeMarkers = regexp.MustCompile(`(?i)\b(?:suddenly|wondered|imagined|realized|realised|mysterious|unexpected|unexpectedly|whispered|ancient|glimmered|peculiar)\b`)

// Config holds the rubric thresholds. Word counts above each threshold add a
// point; MechanicsStep is the fraction of a point lost per error.
type Config struct {
	MechanicsStep     float64 `yaml:"mechanics_step" validate:"gt=0"`
	IdeasWords        int     `yaml:"ideas_words" validate:"gte=0"`
	FlowWords         int     `yaml:"flow_words" validate:"gte=0"`
	DevelopedWords    int     `yaml:"developed_words" validate:"gte=0"`
	LanguageWords     int     `yaml:"language_words" validate:"gte=0"`
	MinDiversity      float64 `yaml:"min_diversity" validate:"gte=0,lte=1"`
	HighDiversity     float64 `yaml:"high_diversity" validate:"gte=0,lte=1"`
	DiversityMinWords int     `yaml:"diversity_min_words" validate:"gte=0"`
}

func DefaultConfig() Config {
	return Config{
		MechanicsStep:     0.5,
		IdeasWords:        150,
		FlowWords:         100,
		DevelopedWords:    200,
		LanguageWords:     180,
		MinDiversity:      0.5,
		HighDiversity:     0.7,
		DiversityMinWords: 10,
	}
}

type CriterionScore struct {
	Score        int      `json:"score"`
	Level        string   `json:"level"`
	Strengths    []string `json:"strengths"`
	Improvements []string `json:"improvements"`
}

// Score is recomputed wholesale per analysis pass.
type Score struct {
	Ideas     CriterionScore `json:"ideas"`
	Structure CriterionScore `json:"structure"`
	Language  CriterionScore `json:"language"`
	Mechanics CriterionScore `json:"mechanics"`
	Overall   int            `json:"overall"`
	NeedsText bool           `json:"needs_text"`
	Message   string         `json:"message,omitempty"`
	Arc       Arc            `json:"arc"`
	Pacing    Pacing         `json:"pacing"`
}

func (s Score) For(c Criterion) CriterionScore {
	switch c {
	case Ideas:
		return s.Ideas
	case Structure:
		return s.Structure
	case Language:
		return s.Language
	default:
		return s.Mechanics
	}
}

// Weakest returns the lowest scoring criterion, earliest in Criteria order on ties.
func (s Score) Weakest() Criterion {
	weakest := Ideas
	for _, c := range Criteria()[1:] {
		if s.For(c).Score < s.For(weakest).Score {
			weakest = c
		}
	}
	return weakest
}

// Input is one snapshot's merged analysis.
type Input struct {
	Text   string
	Seg    segment.Segmentation
	Issues []issue.Issue
	Stats  style.Stats
}

type Scorer struct {
	cfg    Config
	vocab  *vocabulary.Scanner
	levels Levels
}

func New(cfg Config, vocab *vocabulary.Scanner) *Scorer {
	if cfg.MechanicsStep <= 0 {
		cfg.MechanicsStep = DefaultConfig().MechanicsStep
	}
	if vocab == nil {
		vocab = vocabulary.Default(vocabulary.TierMedium)
	}
	return &Scorer{cfg: cfg, vocab: vocab, levels: DefaultLevels()}
}

// Evaluate scores text with default settings, segmenting and measuring it first.
func Evaluate(text string, issues []issue.Issue) Score {
	seg := segment.Segment(text)
	return New(DefaultConfig(), nil).Score(Input{Text: text, Seg: seg, Issues: issues, Stats: style.Measure(text, seg)})
}

func (s *Scorer) Score(in Input) Score {
	if strings.TrimSpace(in.Text) == "" {
		return s.empty()
	}
	words := len(in.Seg.Words)

	ideas := 0
	creative := creativeMarkers.MatchString(in.Text)
	detailed := false
	for _, sent := range in.Seg.Sentences {
		if strings.Count(sent.Text(in.Text), ",") >= 2 {
			detailed = true
			break
		}
	}
	if creative {
		ideas += 2
	}
	if detailed {
		ideas += 2
	}
	if words > s.cfg.IdeasWords {
		ideas++
	}

	structure := 0
	markers := cohesion.CountMarkers(in.Text)
	if len(in.Seg.Paragraphs) > 1 {
		structure += 2
	}
	if markers > 0 {
		structure++
	}
	if words > s.cfg.FlowWords {
		structure++
	}
	if words > s.cfg.DevelopedWords {
		structure++
	}

	language := 0
	if words >= s.cfg.DiversityMinWords {
		switch {
		case in.Stats.TypeTokenRatio >= s.cfg.HighDiversity:
			language += 2
		case in.Stats.TypeTokenRatio >= s.cfg.MinDiversity:
			language++
		}
	}
	advanced := in.Stats.LongWords + s.vocab.CountSophisticated(in.Text, in.Seg)
	switch {
	case advanced > 5:
		language += 2
	case advanced > 2:
		language++
	}
	if words > s.cfg.LanguageWords {
		language++
	}

	errs := issue.CountSeverity(in.Issues, issue.SeverityError)
	mechanics := 5 - int(math.Floor(float64(errs)*s.cfg.MechanicsStep))

	out := Score{
		Ideas:     s.criterion(Ideas, ideas),
		Structure: s.criterion(Structure, structure),
		Language:  s.criterion(Language, language),
		Mechanics: s.criterion(Mechanics, mechanics),
		Arc:       AnalyzeArc(in.Text, in.Seg),
		Pacing:    pacingFor(in.Stats.MeanSentenceLength),
	}
	out.Overall = int(math.Round(float64(out.Ideas.Score+out.Structure.Score+out.Language.Score+out.Mechanics.Score) / 4))

	s.feedback(&out, in, creative, detailed, markers, errs)
	return out
}

func (s *Scorer) empty() Score {
	out := Score{NeedsText: true, Message: EmptyMessage, Arc: Arc{Found: []Beat{}, Strengths: []string{}, Gaps: []string{}, NextSteps: []string{}}}
	for _, c := range Criteria() {
		cs := CriterionScore{Level: s.levels.Describe(c, 0), Strengths: []string{}, Improvements: []string{}}
		s.set(&out, c, cs)
	}
	return out
}

func (s *Scorer) criterion(c Criterion, raw int) CriterionScore {
	score := clamp(raw, 1, 5)
	return CriterionScore{
		Score:        score,
		Level:        s.levels.Describe(c, score),
		Strengths:    []string{},
		Improvements: []string{},
	}
}

func (s *Scorer) set(out *Score, c Criterion, cs CriterionScore) {
	switch c {
	case Ideas:
		out.Ideas = cs
	case Structure:
		out.Structure = cs
	case Language:
		out.Language = cs
	case Mechanics:
		out.Mechanics = cs
	}
}

func (s *Scorer) feedback(out *Score, in Input, creative, detailed bool, markers, errs int) {
	add := func(cs *CriterionScore, ok bool, strength, improvement string) {
		if ok {
			cs.Strengths = append(cs.Strengths, strength)
		} else {
			cs.Improvements = append(cs.Improvements, improvement)
		}
	}

	add(&out.Ideas, creative, "Shows creativity and imagination", "Add more creative or unexpected elements")
	add(&out.Ideas, detailed, "Develops ideas with details", "Develop ideas with more detail, such as sensory description")

	add(&out.Structure, len(in.Seg.Paragraphs) > 1, "Uses paragraphs effectively", "Organise your writing into clear paragraphs")
	add(&out.Structure, markers > 0, "Links ideas with transition words", "Use transition words to connect your ideas")
	if !out.Arc.Has(BeatResolution) && len(in.Seg.Words) > s.cfg.FlowWords {
		out.Structure.Improvements = append(out.Structure.Improvements, "Create a stronger ending")
	}

	add(&out.Language, out.Language.Score >= 3, "Uses descriptive vocabulary", "Replace simple words with stronger alternatives")
	add(&out.Language, in.Stats.TypeTokenRatio >= s.cfg.MinDiversity, "Varies word choice", "Avoid repeating the same words")
	if in.Stats.Monotone {
		out.Language.Improvements = append(out.Language.Improvements, "Mix short and long sentences")
	}

	spelling := issue.CountKind(in.Issues, issue.KindSpelling)
	punct := issue.CountKind(in.Issues, issue.KindPunctuation)
	add(&out.Mechanics, errs == 0, "Strong control of grammar and spelling", "Review the errors highlighted in your text")
	if spelling > 0 {
		out.Mechanics.Improvements = append(out.Mechanics.Improvements, "Check for spelling errors")
	}
	if punct > 0 {
		out.Mechanics.Improvements = append(out.Mechanics.Improvements, "Check your punctuation")
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
