package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"writing_coach/internal/ingest"
	"writing_coach/internal/issue"
	"writing_coach/internal/orchestrator"
	"writing_coach/internal/pipeline"
	"writing_coach/internal/rubric"
	"writing_coach/internal/segment"
)

var watchCmd = &cobra.Command{
	Use:   "watch <file>",
	Short: "Re-analyze a file every time it is saved",
	Long: `Watch a file and print fresh feedback after each save. Saves in quick
succession are coalesced, and feedback for text that changed again before the
analysis finished is never printed. A coaching tip is printed for each newly
finished paragraph.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	path, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}
	if !ingest.Supported(path) {
		return fmt.Errorf("%w: %s", ingest.ErrUnsupported, filepath.Ext(path))
	}
	e, err := setup(cmd)
	if err != nil {
		return err
	}
	defer e.app.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := cmd.OutOrStdout()
	var outMu sync.Mutex
	var tips sync.WaitGroup
	defer tips.Wait()

	var orch *orchestrator.Orchestrator
	orch = orchestrator.New(e.app.Pipeline,
		orchestrator.WithDebounce(e.cfg.Debounce),
		orchestrator.WithParagraphMinChars(e.cfg.ParagraphMinChars),
		orchestrator.WithLogger(e.app.Logger),
		orchestrator.WithMetrics(e.app.Metrics),
		orchestrator.OnCommit(func(res pipeline.Result) {
			outMu.Lock()
			defer outMu.Unlock()
			printResult(out, filepath.Base(path)+fmt.Sprintf(" v%d", res.Version), res.Text, res)
		}),
		orchestrator.OnParagraphs(func(snap issue.Snapshot, spans []segment.Span) {
			all := segment.Paragraphs(snap.Text())
			for _, p := range spans {
				index := 0
				for i, q := range all {
					if q.Start == p.Start {
						index = i
					}
				}
				body := p.Text(snap.Text())
				score := rubric.Evaluate(body, nil)
				if res, ok := orch.Committed(); ok {
					score = res.Score
				}
				tips.Add(1)
				go func() {
					defer tips.Done()
					tip := e.app.Coach.TipFor(ctx, body, score)
					tip.Paragraph, tip.Start, tip.End, tip.Version = index, p.Start, p.End, snap.Version()
					outMu.Lock()
					defer outMu.Unlock()
					printTip(out, tip)
				}()
			}
		}),
	)
	defer orch.Close()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()
	// Editors often replace the file on save, so the directory is watched.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(path), err)
	}

	load := func() {
		parsed, err := ingest.ParseFile(path)
		if err != nil {
			e.app.Logger.Warn("read watched file failed", "stage", "watch", "path", path, "error", err)
			return
		}
		if parsed.Text != orch.Snapshot().Text() {
			orch.Update(parsed.Text)
		}
	}
	load()
	orch.Flush()
	e.app.Logger.Info("watching", "stage", "watch", "path", path)

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != path || !ev.Has(fsnotify.Write|fsnotify.Create) {
				continue
			}
			load()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			e.app.Logger.Warn("watcher error", "stage", "watch", "error", err)
		}
	}
}
