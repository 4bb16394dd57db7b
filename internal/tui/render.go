package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"writing_coach/internal/coach"
	"writing_coach/internal/highlight"
	"writing_coach/internal/issue"
	"writing_coach/internal/rubric"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39"))

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	selectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212"))

	tipStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Italic(true)

	paneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("238")).
			Padding(0, 1)
)

// RenderHighlights draws text with each span underlined in its style colour.
// Spans must be sorted and non-overlapping.
func RenderHighlights(text string, spans []highlight.Span) string {
	var b strings.Builder
	pos := 0
	for _, s := range spans {
		if s.Start < pos || s.End > len(text) {
			continue
		}
		b.WriteString(text[pos:s.Start])
		st := lipgloss.NewStyle().Underline(true).Foreground(lipgloss.Color(s.Style.Color))
		if s.Style.Underline == "wavy" {
			st = st.Bold(true)
		}
		b.WriteString(st.Render(text[s.Start:s.End]))
		pos = s.End
	}
	b.WriteString(text[pos:])
	return b.String()
}

// RenderFeedback lays out the score, the issue list with the selected issue
// marked, and the coaching tips.
func RenderFeedback(score rubric.Score, scored bool, issues []issue.Issue, selected int, tips []coach.Tip) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Score"))
	b.WriteString("\n")
	switch {
	case score.NeedsText:
		b.WriteString(mutedStyle.Render(score.Message))
	default:
		fmt.Fprintf(&b, "overall %d/5  ideas %d  structure %d  language %d  mechanics %d",
			score.Overall, score.Ideas.Score, score.Structure.Score, score.Language.Score, score.Mechanics.Score)
		if score.Pacing.Label != "" {
			fmt.Fprintf(&b, "\npacing %s  story %s", score.Pacing.Label, score.Arc.Stage)
		}
		if !scored {
			b.WriteString(mutedStyle.Render("  (analyzing)"))
		}
	}
	b.WriteString("\n\n")

	fmt.Fprintf(&b, "%s %s\n", titleStyle.Render("Issues"), mutedStyle.Render(fmt.Sprintf("(%d)", len(issues))))
	for i, is := range issues {
		line := fmt.Sprintf("[%s] %s", is.Severity, is.Message)
		if len(is.Suggestions) > 0 {
			line += " → " + strings.Join(is.Suggestions, ", ")
		}
		if i == selected {
			b.WriteString(selectedStyle.Render("> " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}

	if len(tips) > 0 {
		b.WriteString("\n")
		b.WriteString(titleStyle.Render("Tips"))
		b.WriteString("\n")
		for _, t := range tips {
			fmt.Fprintf(&b, "¶%d %s\n", t.Paragraph+1, tipStyle.Render(t.Tip))
			if t.Example != "" {
				b.WriteString(mutedStyle.Render("   e.g. "+t.Example) + "\n")
			}
		}
	}
	return b.String()
}
