package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"writing_coach/internal/workspace"
)

var rootCmd = &cobra.Command{
	Use:           "coach",
	Short:         "Live writing feedback for young writers",
	Long:          `coach checks essays for spelling, vocabulary, sentence structure and cohesion, scores them against a four-criterion rubric, and offers coaching tips as paragraphs are finished.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().String("workspace", "", "workspace directory (default ~/"+workspace.BaseDirName+")")
	rootCmd.PersistentFlags().String("config", "", "config file (default <workspace>/configs/config.yaml)")
	rootCmd.PersistentFlags().Bool("offline", false, "skip the grammar service and the coaching model")
	rootCmd.PersistentFlags().String("log-level", "", "override log level (debug|info|warn|error)")
	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
}

var registered bool

func registerCommands() {
	if registered {
		return
	}
	registered = true
	rootCmd.AddCommand(initCmd, checkCmd, watchCmd, editCmd, serveCmd)
}

func main() {
	registerCommands()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "coach:", err)
		os.Exit(1)
	}
}
