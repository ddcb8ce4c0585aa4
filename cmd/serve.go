package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/schizo-studios/pubsite/internal/config"
	"github.com/schizo-studios/pubsite/internal/handlers"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the publications web server",
		Long: `Starts the publications browser and its JSON APIs.

The catalog is fetched from the configured candidate URLs at startup and
on demand via the reload endpoint; a failed fetch degrades the page to a
status banner instead of taking the server down.`,
		Example: `  # Start with settings from the environment / .env
  pubsite serve

  # Start on a custom address
  pubsite serve --addr :3000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			if addr != "" {
				cfg.HTTPAddr = addr
			}

			handler := handlers.New(cfg)

			// Initial load is best-effort; the page reports failures.
			loadCtx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			if err := handler.LoadCatalog(loadCtx); err != nil {
				slog.Warn("Initial catalog load failed", "err", err)
			}
			cancel()

			// Set up routes
			mux := http.NewServeMux()
			mux.HandleFunc("/api/books", handler.HandleBooks)
			mux.HandleFunc("/api/catalog.json", handler.HandleCatalogDownload)
			mux.HandleFunc("/api/reload", handler.HandleReload)
			mux.HandleFunc("/api/discography", handler.HandleDiscography)
			mux.HandleFunc("/reload", handler.HandleReloadPage)
			mux.HandleFunc("/static/", handler.HandleStatic)
			mux.HandleFunc("/", handler.HandlePublications)
			mux.HandleFunc("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
				if _, err := w.Write([]byte("OK")); err != nil {
					slog.Error("Unable to write healthcheck", "err", err)
				}
			})

			server := &http.Server{
				Addr:    cfg.HTTPAddr,
				Handler: mux,
			}

			// Start server in goroutine
			serverErr := make(chan error, 1)
			go func() {
				slog.Info("Publications site available", "addr", cfg.HTTPAddr)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serverErr <- err
				}
			}()

			// Wait for context cancellation (Ctrl+C) or server error
			select {
			case <-cmd.Context().Done():
				slog.Info("Shutting down server...")
				// Give server 5 seconds to shut down gracefully
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := server.Shutdown(shutdownCtx); err != nil {
					slog.Error("Server shutdown failed", "err", err)
					return err
				}
				slog.Info("Server stopped")
				return nil
			case err := <-serverErr:
				return err
			}
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Address to listen on (overrides PUBSITE_ADDR)")

	return cmd
}
