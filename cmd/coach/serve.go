package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"writing_coach/internal/config"
	"writing_coach/internal/server"
	"writing_coach/internal/session"
	"writing_coach/internal/workspace"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the feedback engine over HTTP",
	Long: `Start the JSON API used by editor front ends. Sessions receive the full
text after every edit and return highlights, scores and tips. Committed results
are stored in the workspace database unless the config names another one.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (overrides server.addr)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	layout, err := workspaceLayout(cmd)
	if err != nil {
		return err
	}
	if _, err := workspace.EnsureAt(layout.Root, config.DefaultYAML); err != nil {
		return err
	}
	e, err := setup(cmd)
	if err != nil {
		return err
	}
	if e.cfg.Database == "" {
		// Sessions are persisted by default when serving.
		_ = e.app.Close()
		e.cfg.Database = layout.Database
		if e, err = rebuild(cmd, e); err != nil {
			return err
		}
	}
	defer e.app.Close()

	addr := e.cfg.Server.Addr
	if flagAddr, _ := cmd.Flags().GetString("addr"); flagAddr != "" {
		addr = flagAddr
	}

	mgr := session.NewManager(e.app.Pipeline, e.app.SessionOptions()...)
	defer mgr.Close()
	srv := server.New(e.app.Pipeline, mgr,
		server.WithLogger(e.app.Logger),
		server.WithGatherer(e.app.Registry),
		server.WithMaxTextBytes(e.cfg.Server.MaxTextBytes),
	)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return srv.Run(ctx, addr, e.cfg.Server.ShutdownTimeout)
}
