package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"writing_coach/internal/ingest"
	"writing_coach/internal/session"
	"writing_coach/internal/tui"
)

var editCmd = &cobra.Command{
	Use:   "edit <file>",
	Short: "Write with live feedback in the terminal",
	Long: `Open a two-pane editor with highlights and scores that follow your typing.
ctrl+s saves, tab cycles through issues, ctrl+a applies the first suggestion
for the selected issue, and esc quits. Files that do not exist yet start empty.
Only plain text and markdown can be saved back; other formats are opened
read-only and saved next to the original as .txt.`,
	Args: cobra.ExactArgs(1),
	RunE: runEdit,
}

func runEdit(cmd *cobra.Command, args []string) error {
	path := args[0]
	text, title, err := readDraft(path)
	if err != nil {
		return err
	}
	e, err := setup(cmd)
	if err != nil {
		return err
	}
	defer e.app.Close()

	target := savePath(path)
	sess := session.New(uuid.NewString(), e.app.Pipeline, e.app.SessionOptions()...)
	defer sess.Close()

	save := func(body string) error {
		if err := os.WriteFile(target, []byte(body), 0o644); err != nil {
			return fmt.Errorf("save %s: %w", target, err)
		}
		e.app.Logger.Info("saved draft", "stage", "edit", "path", target, "bytes", len(body))
		return nil
	}
	if _, err := tui.Run(sess, title, text, save); err != nil {
		return err
	}
	return nil
}

func readDraft(path string) (text, title string, err error) {
	title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if _, statErr := os.Stat(path); errors.Is(statErr, fs.ErrNotExist) {
		return "", title, nil
	}
	parsed, err := ingest.ParseFile(path)
	if err != nil {
		return "", "", err
	}
	return parsed.Text, parsed.Title, nil
}

func savePath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case "", ".txt", ".text", ".md", ".markdown":
		return path
	}
	return strings.TrimSuffix(path, filepath.Ext(path)) + ".txt"
}
