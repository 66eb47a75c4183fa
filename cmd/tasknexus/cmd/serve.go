package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/tasknexus/tasknexus-api/internal/api"
	"github.com/tasknexus/tasknexus-api/internal/core/service"
	"github.com/tasknexus/tasknexus-api/internal/infrastructure/queue"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the TaskNexus API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		tokens, err := service.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
		if err != nil {
			return fmt.Errorf("token service: %w", err)
		}

		st, err := openStores(ctx, cfg)
		if err != nil {
			return err
		}
		defer st.Close(context.Background())

		dispatcher := queue.NewDispatcher(cfg.Notify.Workers, cfg.Notify.Buffer, st.sink, log)
		dispatcher.Start(ctx)

		hasher := service.NewBcryptHasher(cfg.Auth.BcryptCost)
		e := api.NewRouter(api.Dependencies{
			Auth:       service.NewAuthService(st.users, hasher, tokens, st.limiter, dispatcher, log),
			Users:      service.NewUserService(st.users, hasher, log),
			Tasks:      service.NewTaskService(st.tasks, st.users, dispatcher, log),
			Analytics:  service.NewAnalyticsService(st.tasks),
			Tokens:     tokens,
			Readiness:  st.checks,
			Registerer: prometheus.DefaultRegisterer,
			Errors:     api.ErrorOptions{OwnershipStatus: cfg.Auth.OwnershipMismatchStatus},
			Logger:     log,
		})

		srv := &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           e,
			ReadHeaderTimeout: 5 * time.Second,
		}
		serverErrors := make(chan error, 1)
		go func() {
			log.Info().Str("addr", srv.Addr).Str("store", cfg.Store).Msg("server listening")
			serverErrors <- srv.ListenAndServe()
		}()

		select {
		case err := <-serverErrors:
			if !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server: %w", err)
			}
			return nil
		case <-ctx.Done():
			log.Info().Msg("shutting down")
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			_ = srv.Close()
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		return nil
	},
}
