package offline

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"writing_coach/internal/app"
	"writing_coach/internal/chunk"
	"writing_coach/internal/config"
	"writing_coach/internal/issue"
	"writing_coach/internal/logging"
)

type failTransport struct{}

func (f failTransport) RoundTrip(*http.Request) (*http.Response, error) {
	return nil, errors.New("network disabled for offline test")
}

func TestOfflineMode(t *testing.T) {
	original := http.DefaultTransport
	http.DefaultTransport = failTransport{}
	t.Cleanup(func() { http.DefaultTransport = original })

	text := strings.Repeat("I recieved a letter becuase it was my birthday. ", 300)
	windows := chunk.Windows(text, 1500)
	if len(windows) < 2 {
		t.Fatalf("expected chunking to work offline, got %d windows", len(windows))
	}

	cfg := config.Default()
	cfg.LanguageTool.Enabled = true
	cfg.Coach.Provider = "ollama"
	a, err := app.Build(cfg, logging.Discard(), app.Offline())
	if err != nil {
		t.Fatalf("build offline app: %v", err)
	}
	defer a.Close()
	if a.Grammar != nil {
		t.Fatal("expected the grammar service to be left out offline")
	}

	res := a.Pipeline.Run(context.Background(), issue.NewSnapshot(text, 1))
	if len(res.Unavailable) != 0 {
		t.Fatalf("expected every offline analyzer to succeed, unavailable: %v", res.Unavailable)
	}
	if len(res.Issues) == 0 {
		t.Fatal("expected local analyzers to find the misspellings offline")
	}
	if res.Score.NeedsText {
		t.Fatal("expected a rubric score offline")
	}

	tip := a.Coach.TipFor(context.Background(), text[:windows[0].End], res.Score)
	if !tip.Fallback || tip.Tip == "" {
		t.Fatalf("expected a fallback coaching tip offline, got %+v", tip)
	}
}
