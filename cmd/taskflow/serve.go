package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Joseda-hg/taskflow/internal/auth"
	"github.com/Joseda-hg/taskflow/internal/db"
	"github.com/Joseda-hg/taskflow/internal/gateway"
	"github.com/Joseda-hg/taskflow/internal/web"
)

func serveCmd(flags *rootFlags) *cobra.Command {
	var listen string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the web board and JSON API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := loadConfig(flags)
			if err != nil {
				return err
			}
			if listen != "" {
				cfg.ListenAddr = listen
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			logger := log.StandardLogger()
			store, err := db.Open(ctx, cfg.BackendURL, db.WithLogger(logger))
			if err != nil {
				return err
			}
			defer store.Close()

			gw, err := gateway.New(store, gateway.WithLogger(logger))
			if err != nil {
				return err
			}
			defer gw.Close()

			provider := auth.New(store, sessionSecret(cfg),
				auth.WithBaseURL(cfg.PublicBaseURL),
				auth.WithSessionTTL(cfg.SessionTTL),
				auth.WithProfiles(gw),
				auth.WithLogger(logger),
			)

			sessions, err := web.NewSessions(gw, cfg.SessionCacheSize)
			if err != nil {
				return err
			}
			defer sessions.Close()

			server := web.NewServer(gw, provider, sessions, web.Options{
				AnonKey:       cfg.AnonKey,
				PublicBaseURL: cfg.PublicBaseURL,
				CookieName:    cfg.CookieName,
				SecureCookies: strings.HasPrefix(cfg.PublicBaseURL, "https://"),
			}, logger)

			httpServer := &http.Server{
				Addr:              cfg.ListenAddr,
				Handler:           server.Handler(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				logger.WithFields(log.Fields{
					"addr":    cfg.ListenAddr,
					"backend": store.Dialect(),
				}).Info("web server listening")
				errCh <- httpServer.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			case <-ctx.Done():
			}

			logger.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return httpServer.Shutdown(shutdownCtx)
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "", "listen address, overrides listen_addr")
	return cmd
}
