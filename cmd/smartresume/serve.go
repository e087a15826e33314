package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/amishk599/smartresume/internal/janitor"
	"github.com/amishk599/smartresume/internal/session"
	"github.com/amishk599/smartresume/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the resume form over HTTP",
	Long:  "Start the web form; blocks until SIGINT/SIGTERM.",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Info("config loaded",
		"addr", cfg.Server.Addr,
		"store", cfg.Session.Store,
		"session_ttl", cfg.Session.TTL.String(),
		"provider", cfg.Inference.Provider,
		"model", cfg.Inference.Model,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ctrl, closeProvider, err := setupController(ctx, &cfg.Inference, logger)
	if err != nil {
		logger.Error("failed to set up inference", "error", err)
		os.Exit(1)
	}
	defer closeProvider()

	sessionStore, err := openStore(ctx, &cfg.Session)
	if err != nil {
		logger.Error("failed to open session store", "store", cfg.Session.Store, "error", err)
		os.Exit(1)
	}
	defer sessionStore.Close()

	sessions := session.NewManager(sessionStore, logger)
	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           web.NewServer(sessions, ctrl, logger).Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return janitor.New(sessions, cfg.Session.TTL, cfg.Session.CleanupInterval, logger).Run(gCtx)
	})
	g.Go(func() error {
		logger.Info("smartresume listening", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}

	logger.Info("goodbye")
	return nil
}
