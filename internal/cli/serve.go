package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/epitools/tracetab/internal/api"
)

// serveCommand creates the serve command exposing the flatten pipeline
// over HTTP.
func (c *CLI) serveCommand() *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the tracetab HTTP API",
		Long: `Run an HTTP server exposing the flatten pipeline and the result store.

Endpoints:
  POST /v1/flatten       flatten a trace document
  GET  /v1/results       list saved results
  GET  /v1/results/{id}  fetch a saved result
  GET  /healthz          liveness check`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.config()
			if err != nil {
				return err
			}
			if listen != "" {
				cfg.Listen = listen
			}

			runner, err := c.newRunner(cmd.Context(), cfg, false)
			if err != nil {
				return err
			}
			defer runner.Close()

			handler := api.New(runner, runner.Store, c.Logger)
			srv := &http.Server{
				Addr:              cfg.Listen,
				Handler:           handler,
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				c.Logger.Info("listening", "addr", cfg.Listen)
				errCh <- srv.ListenAndServe()
			}()

			select {
			case <-cmd.Context().Done():
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				if err := srv.Shutdown(shutdownCtx); err != nil {
					return err
				}
				return cmd.Context().Err()
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			}
		},
	}

	cmd.Flags().StringVar(&listen, "listen", "", "listen address (overrides config, default :8080)")

	return cmd
}
