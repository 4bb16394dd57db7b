package workspace

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Report is the exported result of one offline check.
type Report struct {
	Title       string   `json:"title"`
	WordCount   int      `json:"word_count"`
	Overall     int      `json:"overall"`
	Issues      int      `json:"issues"`
	Unavailable []string `json:"unavailable"`
	Analysis    any      `json:"analysis,omitempty"`
}

type ReportInfo struct {
	ID         string
	Dir        string
	TextPath   string
	ReportPath string
}

// SaveReport writes the essay text and its report under reports/<id>, where
// id is derived from the title so re-checking a file overwrites its report.
func SaveReport(l Layout, text string, report Report) (*ReportInfo, error) {
	id := titleHash(report.Title)
	dir := filepath.Join(l.Reports, id)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create report dir: %w", err)
	}

	info := &ReportInfo{
		ID:         id,
		Dir:        dir,
		TextPath:   filepath.Join(dir, "essay.txt"),
		ReportPath: filepath.Join(dir, "report.json"),
	}
	if err := os.WriteFile(info.TextPath, []byte(text), 0o644); err != nil {
		return nil, fmt.Errorf("write essay: %w", err)
	}
	if report.Unavailable == nil {
		report.Unavailable = []string{}
	}
	raw, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal report: %w", err)
	}
	if err := os.WriteFile(info.ReportPath, raw, 0o644); err != nil {
		return nil, fmt.Errorf("write report: %w", err)
	}
	return info, nil
}

func titleHash(title string) string {
	trimmed := strings.TrimSpace(strings.ToLower(title))
	sum := sha256.Sum256([]byte(trimmed))
	return hex.EncodeToString(sum[:])[:12]
}
