package chunk

import (
	"strings"
	"testing"
	"unicode"
	"unicode/utf8"
)

func TestWindowsShortTextIsSingleWindow(t *testing.T) {
	text := "One paragraph.\n\nTwo paragraphs."
	windows := Windows(text, 1000)
	if len(windows) != 1 {
		t.Fatalf("expected 1 window, got %d", len(windows))
	}
	if windows[0].Start != 0 || windows[0].End != len(text) {
		t.Fatalf("unexpected bounds: %+v", windows[0])
	}
}

func TestWindowsEmpty(t *testing.T) {
	if got := Windows("  \n ", 10); got != nil {
		t.Fatalf("expected no windows, got %+v", got)
	}
}

func TestHardSplitKeepsRunesWhole(t *testing.T) {
	text := strings.Repeat("ü", 10)
	windows := Windows(text, 1)
	if len(windows) != 10 {
		t.Fatalf("expected one window per rune, got %d", len(windows))
	}
	for _, w := range windows {
		if !utf8.ValidString(w.Text) {
			t.Fatalf("window %d splits a rune: %q", w.Index, w.Text)
		}
	}
}

func TestChunkingAlgorithm(t *testing.T) {
	paragraphs := make([]string, 0, 120)
	for i := 0; i < 120; i++ {
		paragraphs = append(paragraphs, strings.Repeat("The fox ran over the hill. ", 1+i%7))
	}
	paragraphs = append(paragraphs, strings.Repeat("word", 400))
	text := strings.Join(paragraphs, "\n\n")

	const max = 500
	windows := Windows(text, max)
	if len(windows) < 2 {
		t.Fatal("expected text to be split")
	}

	covered := make([]bool, len(text))
	prevEnd := 0
	for i, w := range windows {
		if w.Index != i {
			t.Fatalf("window %d has index %d", i, w.Index)
		}
		if w.Start < prevEnd || w.Start >= w.End || w.End > len(text) {
			t.Fatalf("invalid window bounds: start=%d end=%d prev=%d", w.Start, w.End, prevEnd)
		}
		if w.End-w.Start > max {
			t.Fatalf("window %d exceeds %d bytes: %d", i, max, w.End-w.Start)
		}
		if w.Text != text[w.Start:w.End] {
			t.Fatalf("window %d text does not match its range", i)
		}
		for j := w.Start; j < w.End; j++ {
			covered[j] = true
		}
		prevEnd = w.End
	}

	for i, r := range text {
		if !unicode.IsSpace(r) && !covered[i] {
			t.Fatalf("data loss at byte %d", i)
		}
	}
}
