package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/philvuai/bnk/internal/analyze"
	"github.com/philvuai/bnk/internal/config"
	"github.com/philvuai/bnk/internal/llm"
	"github.com/philvuai/bnk/internal/server"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		Long: `Start the HTTP API: document upload, analysis retrieval, category
reassignment and CSV export.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.LoadServerConfig()

			store, err := openStorage()
			if err != nil {
				return fmt.Errorf("failed to open storage: %w", err)
			}
			defer func() { _ = store.Close() }()

			if err := store.Migrate(cmd.Context()); err != nil {
				return fmt.Errorf("failed to migrate database: %w", err)
			}

			var client llm.Client
			client, err = createLLMClient()
			if err != nil {
				slog.Warn("no model client available, analyses will use pattern extraction", "error", err)
				client = nil
			}

			analyzer, err := analyze.New(client, slog.Default())
			if err != nil {
				return err
			}

			srv := &http.Server{
				Addr:              server.Addr(cfg.Port),
				Handler:           server.New(store, analyzer, slog.Default()).Router(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			errChan := make(chan error, 1)
			go func() {
				slog.Info("HTTP server listening", "addr", srv.Addr, "db", cfg.DBPath)
				if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
					errChan <- err
				}
			}()

			select {
			case err := <-errChan:
				return fmt.Errorf("server failed: %w", err)
			case <-cmd.Context().Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("shutdown failed: %w", err)
			}
			slog.Info("server stopped")
			return nil
		},
	}

	cmd.Flags().String("port", "", "listen port (default 8080)")
	_ = viper.BindPFlag("server.port", cmd.Flags().Lookup("port"))

	return cmd
}
