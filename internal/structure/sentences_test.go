package structure

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"writing_coach/internal/issue"
	"writing_coach/internal/segment"
)

func analyze(text string) []issue.Issue {
	return New(DefaultConfig()).Analyze(text, segment.Segment(text))
}

func byRule(issues []issue.Issue, rule string) []issue.Issue {
	var out []issue.Issue
	for _, is := range issues {
		if is.Rule == rule {
			out = append(out, is)
		}
	}
	return out
}

func TestRepetitiveStarterScenario(t *testing.T) {
	text := "He ran fast. He jumped high."
	got := byRule(analyze(text), "repetitive-starter")
	require.Len(t, got, 1)
	assert.Equal(t, 13, got[0].Start)
	assert.Equal(t, 15, got[0].End)
	assert.Equal(t, "He", text[got[0].Start:got[0].End])
	assert.Equal(t, issue.KindStructure, got[0].Kind)
}

func TestRepetitiveStarterChainsAndIgnoresCase(t *testing.T) {
	text := "The dog barked at night. the cat hissed back loudly. The owl watched them all. A fox ran past the gate."
	got := byRule(analyze(text), "repetitive-starter")
	require.Len(t, got, 2)
	assert.Equal(t, "the", text[got[0].Start:got[0].End])
	assert.Equal(t, "The", text[got[1].Start:got[1].End])
}

func TestTooLong(t *testing.T) {
	text := strings.Repeat("word ", 45) + "end."
	got := byRule(analyze(text), "too-long")
	require.Len(t, got, 1)
	assert.Equal(t, 0, got[0].Start)
	assert.Equal(t, len(text), got[0].End)
	assert.Equal(t, issue.SeverityWarning, got[0].Severity)
}

func TestTooShortSkipsShortForms(t *testing.T) {
	text := "It was late. Run! \"Go now.\" Silence. The house stood empty on the hill."
	got := byRule(analyze(text), "too-short")
	require.Len(t, got, 1)
	assert.Equal(t, "It was late.", text[got[0].Start:got[0].End])
}

func TestThresholdsAreConfigurable(t *testing.T) {
	text := "One two three four five six."
	a := New(Config{LongSentenceWords: 5, ShortSentenceWords: 2})
	got := a.Analyze(text, segment.Segment(text))
	require.Len(t, got, 1)
	assert.Equal(t, "too-long", got[0].Rule)
}

func TestEmpty(t *testing.T) {
	assert.Empty(t, analyze(""))
}
