package cmd

import (
	"log/slog"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/KaramelBytes/datadash-cli/internal/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the dashboard API and monitor the backend",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c := currentConfig()
		addr := c.ListenAddr
		if serveAddr != "" {
			addr = serveAddr
		}
		client := newBackendClient(c)
		mon := newMonitor(client, c)
		sess := newSession(client, mon, c)
		srv := server.New(sess, mon,
			server.WithLogger(slog.Default()),
			server.WithMaxUploadBytes(c.MaxUploadBytes()))

		g, ctx := errgroup.WithContext(cmd.Context())
		mon.Start(ctx)
		g.Go(func() error {
			return srv.Run(ctx, addr)
		})
		g.Go(func() error {
			mon.Wait()
			return nil
		})
		slog.Info("dashboard started", "session", sess.ID(), "backend", client.BaseURL())
		return g.Wait()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides config)")
}
