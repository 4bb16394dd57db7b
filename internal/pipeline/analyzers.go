package pipeline

import (
	"writing_coach/internal/cohesion"
	"writing_coach/internal/issue"
	"writing_coach/internal/spelling"
	"writing_coach/internal/structure"
	"writing_coach/internal/style"
	"writing_coach/internal/vocabulary"
)

type Settings struct {
	Tier            vocabulary.Tier
	VocabularyLimit int
	Structure       structure.Config
	StyleLimit      int
	Style           bool
}

func DefaultSettings() Settings {
	return Settings{
		Tier:            vocabulary.TierMedium,
		VocabularyLimit: vocabulary.DefaultLimit,
		Structure:       structure.DefaultConfig(),
		StyleLimit:      style.DefaultLimit,
		Style:           true,
	}
}

// LocalAnalyzers returns the rule-based analyzers. Remote adapters are appended
// by the caller.
func LocalAnalyzers(s Settings) []Analyzer {
	out := []Analyzer{
		Local(issue.SourceSpelling, spelling.Default().Analyze),
		Local(issue.SourceVocabulary, vocabulary.NewScanner(vocabulary.DefaultTable(), s.Tier, s.VocabularyLimit).Analyze),
		Local(issue.SourceStructure, structure.New(s.Structure).Analyze),
		Local(issue.SourceCohesion, cohesion.Analyze),
	}
	if s.Style {
		out = append(out, Local(issue.SourceStyle, style.New(s.StyleLimit).Analyze))
	}
	return out
}
