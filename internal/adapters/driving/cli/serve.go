package cli

import (
	"context"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/pilah-labs/pilah/internal/adapters/driving/watch"
	"github.com/pilah-labs/pilah/internal/adapters/driving/web"
	"github.com/pilah-labs/pilah/internal/logger"
)

var (
	serveAddr  string
	serveWatch bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the waste chatbot web UI",
	Long: `Serve the chatbot over HTTP.

Routes:
  GET  /           question form
  POST /ask        answer page
  POST /api/ask    JSON answer {question, answer, status, sources}
  GET  /api/items  seeded waste items
  GET  /healthz    health check

With --watch, changes to the sqlite waste item database bring the index up to
date without a restart.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVarP(&serveAddr, "addr", "a", "", "listen address (default server.addr)")
	serveCmd.Flags().BoolVarP(&serveWatch, "watch", "w", false, "re-index when the waste item database changes")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	b, err := backend()
	if err != nil {
		return err
	}
	settings, err := b.Settings()
	if err != nil {
		return err
	}

	chat, err := b.Chat(cmd.Context())
	if err != nil {
		return err
	}
	seed, err := b.Seed(cmd.Context())
	if err != nil {
		return err
	}

	server, err := web.NewServer(&web.Ports{Chat: chat, Seed: seed})
	if err != nil {
		return err
	}

	addr := serveAddr
	if addr == "" {
		addr = settings.Server.Addr
	}

	g, ctx := errgroup.WithContext(cmd.Context())

	if serveWatch || settings.Server.Watch {
		if err := startWatcher(ctx, g, b); err != nil {
			return err
		}
	}

	cmd.Printf("Serving chatbot on http://localhost%s\n", addr)
	g.Go(func() error {
		return server.Run(ctx, addr)
	})

	return g.Wait()
}

func startWatcher(ctx context.Context, g *errgroup.Group, b Backend) error {
	path, err := b.SeedDatabasePath(ctx)
	if err != nil {
		return err
	}
	if path == "" {
		logger.Warn("watch: only the sqlite store can be watched")
		return nil
	}

	index, err := b.Index(ctx)
	if err != nil {
		return err
	}
	w, err := watch.New(path, index, watch.DefaultDebounce)
	if err != nil {
		return err
	}

	g.Go(func() error {
		defer w.Close()
		return w.Run(ctx)
	})
	return nil
}
