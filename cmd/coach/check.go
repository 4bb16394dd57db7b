package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"writing_coach/internal/ingest"
	"writing_coach/internal/issue"
	"writing_coach/internal/pipeline"
	"writing_coach/internal/segment"
	"writing_coach/internal/workspace"
)

var checkCmd = &cobra.Command{
	Use:   "check [flags] <file>...",
	Short: "Analyze essays once and print issues and rubric scores",
	Long:  `Analyze .txt, .md, .docx or .pdf files. Files are checked in parallel and reported in argument order.`,
	Args:  cobra.MinimumNArgs(1),
	RunE:  runCheck,
}

func init() {
	checkCmd.Flags().String("format", "pretty", "output format (pretty|json)")
	checkCmd.Flags().Int("jobs", 0, "max parallel files (0=auto)")
	checkCmd.Flags().Bool("save", false, "write a report for each file into the workspace")
	checkCmd.Flags().String("fail-on", "", "exit non-zero when an issue of this severity or worse is found (error|warning|suggestion)")
}

type checked struct {
	path   string
	text   string
	result pipeline.Result
	err    error
}

func runCheck(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	if format != "pretty" && format != "json" {
		return fmt.Errorf("unknown format %q", format)
	}
	jobs, _ := cmd.Flags().GetInt("jobs")
	save, _ := cmd.Flags().GetBool("save")
	failOn, _ := cmd.Flags().GetString("fail-on")
	var threshold issue.Severity
	if failOn != "" {
		if threshold, err = issue.ParseSeverity(failOn); err != nil {
			return err
		}
	}

	e, err := setup(cmd)
	if err != nil {
		return err
	}
	defer e.app.Close()

	results := make([]*checked, len(args))
	for i, path := range args {
		results[i] = &checked{path: path}
	}
	ctx := cmd.Context()
	pipeline.Each(results, jobs, func(c *checked) error {
		parsed, err := ingest.ParseFile(c.path)
		if err != nil {
			c.err = err
			return err
		}
		c.text = parsed.Text
		c.result = e.app.Pipeline.Run(ctx, issue.NewSnapshot(parsed.Text, 1))
		return nil
	})

	out := cmd.OutOrStdout()
	var failed []error
	worst := issue.Severity(0)
	for _, c := range results {
		if c.err != nil {
			failed = append(failed, fmt.Errorf("%s: %w", c.path, c.err))
			continue
		}
		for _, is := range c.result.Issues {
			worst = max(worst, is.Severity)
		}
		if save {
			if err := saveReport(e.layout, c); err != nil {
				failed = append(failed, err)
			}
		}
		if format == "pretty" {
			printResult(out, c.path, c.text, c.result)
			fmt.Fprintln(out)
		}
	}
	if format == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		payload := make([]map[string]any, 0, len(results))
		for _, c := range results {
			if c.err == nil {
				payload = append(payload, map[string]any{"file": c.path, "result": c.result})
			}
		}
		if err := enc.Encode(payload); err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
	}

	if len(failed) > 0 {
		return errors.Join(failed...)
	}
	if threshold > 0 && worst >= threshold {
		return fmt.Errorf("found %s issues", worst)
	}
	return nil
}

func saveReport(l workspace.Layout, c *checked) error {
	if _, err := workspace.EnsureAt(l.Root, nil); err != nil {
		return err
	}
	unavailable := make([]string, 0, len(c.result.Unavailable))
	for _, s := range c.result.Unavailable {
		unavailable = append(unavailable, string(s))
	}
	title := strings.TrimSuffix(filepath.Base(c.path), filepath.Ext(c.path))
	_, err := workspace.SaveReport(l, c.text, workspace.Report{
		Title:       title,
		WordCount:   len(segment.Words(c.text)),
		Overall:     c.result.Score.Overall,
		Issues:      len(c.result.Issues),
		Unavailable: unavailable,
		Analysis:    c.result,
	})
	if err != nil {
		return fmt.Errorf("%s: %w", c.path, err)
	}
	return nil
}
