package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"writing_coach/internal/config"
	"writing_coach/internal/workspace"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the workspace and a default config file",
	Long: `Create the workspace directories and write configs/config.yaml with the default
settings. An existing config file is left untouched. Settings can be overridden
with COACH_* environment variables or a configs/.env file.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		l, err := workspaceLayout(cmd)
		if err != nil {
			return err
		}
		l, err = workspace.EnsureAt(l.Root, config.DefaultYAML)
		if err != nil {
			return fmt.Errorf("workspace initialization failed: %w", err)
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Writing coach workspace ready at: %s\n", filepath.Clean(l.Root))
		fmt.Fprintf(out, "Config: %s\n", l.ConfigPath)
		fmt.Fprintf(out, "Sessions database: %s\n", l.Database)
		return nil
	},
}
