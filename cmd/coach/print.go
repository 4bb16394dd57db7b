package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"

	"writing_coach/internal/coach"
	"writing_coach/internal/issue"
	"writing_coach/internal/pipeline"
	"writing_coach/internal/rubric"
)

var (
	headColor    = color.New(color.Bold)
	errorColor   = color.New(color.FgRed, color.Bold)
	warnColor    = color.New(color.FgYellow, color.Bold)
	suggestColor = color.New(color.FgCyan)
	mutedColor   = color.New(color.Faint)
	tipColor     = color.New(color.FgGreen)
)

func severityColor(s issue.Severity) *color.Color {
	switch s {
	case issue.SeverityError:
		return errorColor
	case issue.SeverityWarning:
		return warnColor
	default:
		return suggestColor
	}
}

// lineCol converts a byte offset to a 1-based line and rune column.
func lineCol(text string, off int) (int, int) {
	if off > len(text) {
		off = len(text)
	}
	line := strings.Count(text[:off], "\n") + 1
	start := strings.LastIndexByte(text[:off], '\n') + 1
	return line, len([]rune(text[start:off])) + 1
}

func printIssues(w io.Writer, name, text string, issues []issue.Issue) {
	for _, is := range issues {
		line, col := lineCol(text, is.Start)
		fmt.Fprintf(w, "%s:%d:%d: %s %s %s",
			name, line, col,
			severityColor(is.Severity).Sprintf("%s", is.Severity),
			mutedColor.Sprintf("[%s]", is.Kind),
			is.Message)
		fmt.Fprintf(w, " %s", mutedColor.Sprintf("%q", text[is.Start:is.End]))
		if len(is.Suggestions) > 0 {
			fmt.Fprintf(w, " → %s", strings.Join(is.Suggestions, ", "))
		}
		fmt.Fprintln(w)
	}
}

func printScore(w io.Writer, s rubric.Score) {
	if s.NeedsText {
		fmt.Fprintln(w, mutedColor.Sprint(s.Message))
		return
	}
	headColor.Fprintf(w, "Score %d/5\n", s.Overall)
	for _, c := range rubric.Criteria() {
		cs := s.For(c)
		fmt.Fprintf(w, "  %-10s %d  %s\n", c, cs.Score, mutedColor.Sprint(cs.Level))
		for _, imp := range cs.Improvements {
			fmt.Fprintf(w, "             - %s\n", imp)
		}
	}
	if s.Pacing.Label != "" {
		fmt.Fprintf(w, "  pacing     %s (%.1f words per sentence)\n", s.Pacing.Label, s.Pacing.MeanSentenceLength)
	}
	if s.Arc.Stage != "" {
		fmt.Fprintf(w, "  story      %s", s.Arc.Stage)
		if len(s.Arc.NextSteps) > 0 {
			fmt.Fprintf(w, ": %s", s.Arc.NextSteps[0])
		}
		fmt.Fprintln(w)
	}
}

func printResult(w io.Writer, name, text string, res pipeline.Result) {
	headColor.Fprintf(w, "%s", name)
	fmt.Fprintf(w, " %s\n", mutedColor.Sprintf("(%d issues, %s)", len(res.Issues), res.Duration.Round(time.Millisecond)))
	printIssues(w, name, text, res.Issues)
	if len(res.Unavailable) > 0 {
		warnColor.Fprintf(w, "unavailable: %v\n", res.Unavailable)
	}
	printScore(w, res.Score)
}

func printTip(w io.Writer, t coach.Tip) {
	fmt.Fprintf(w, "%s %s\n", headColor.Sprintf("¶%d tip:", t.Paragraph+1), tipColor.Sprint(t.Tip))
	if t.Example != "" {
		fmt.Fprintf(w, "   %s\n", mutedColor.Sprint("e.g. "+t.Example))
	}
}
