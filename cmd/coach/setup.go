package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"writing_coach/internal/app"
	"writing_coach/internal/config"
	"writing_coach/internal/logging"
	"writing_coach/internal/workspace"
)

type env struct {
	layout workspace.Layout
	cfg    config.Config
	app    *app.App
}

func workspaceLayout(cmd *cobra.Command) (workspace.Layout, error) {
	root, err := cmd.Root().PersistentFlags().GetString("workspace")
	if err != nil {
		return workspace.Layout{}, fmt.Errorf("failed to get workspace flag: %w", err)
	}
	if root == "" {
		if root, err = workspace.DefaultRoot(); err != nil {
			return workspace.Layout{}, err
		}
	}
	return workspace.At(root), nil
}

// setup loads configuration and builds the application for a command.
func setup(cmd *cobra.Command) (*env, error) {
	flags := cmd.Root().PersistentFlags()
	if err := applyColor(flags.Lookup("color").Value.String()); err != nil {
		return nil, err
	}

	layout, err := workspaceLayout(cmd)
	if err != nil {
		return nil, err
	}
	cfgPath, _ := flags.GetString("config")
	if cfgPath == "" {
		cfgPath = layout.ConfigPath
	}
	cfg, err := config.Load(cfgPath, layout.EnvPath)
	if err != nil {
		return nil, err
	}
	if level, _ := flags.GetString("log-level"); level != "" {
		cfg.Log.Level = level
	}
	logger, err := logging.Setup(cfg.Log, os.Stderr)
	if err != nil {
		return nil, err
	}

	e := &env{layout: layout, cfg: cfg}
	if e.app, err = buildApp(cmd, cfg, logger); err != nil {
		return nil, err
	}
	return e, nil
}

// rebuild replaces the application after e.cfg was changed. The old App must
// already be closed.
func rebuild(cmd *cobra.Command, e *env) (*env, error) {
	a, err := buildApp(cmd, e.cfg, e.app.Logger)
	if err != nil {
		return nil, err
	}
	return &env{layout: e.layout, cfg: e.cfg, app: a}, nil
}

func buildApp(cmd *cobra.Command, cfg config.Config, logger *slog.Logger) (*app.App, error) {
	var opts []app.Option
	if offline, _ := cmd.Root().PersistentFlags().GetBool("offline"); offline {
		opts = append(opts, app.Offline())
	}
	return app.Build(cfg, logger, opts...)
}

func applyColor(mode string) error {
	switch mode {
	case "auto":
		color.NoColor = !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd())
	case "on":
		color.NoColor = false
	case "off":
		color.NoColor = true
	default:
		return fmt.Errorf("unknown color mode %q (auto|on|off)", mode)
	}
	return nil
}
