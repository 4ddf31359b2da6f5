package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/celerix-dev/painel-store/internal/api"
	"github.com/celerix-dev/painel-store/internal/config"
	"github.com/celerix-dev/painel-store/internal/logging"
	"github.com/celerix-dev/painel-store/pkg/medium"
	"github.com/celerix-dev/painel-store/pkg/schema"
	"github.com/celerix-dev/painel-store/pkg/session"
	"github.com/celerix-dev/painel-store/pkg/syncbus"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "painel-stored: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Configuration and logging
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	// 2. Open the shared medium
	m, err := medium.Open(medium.Options{
		Backend:      cfg.Backend,
		DataDir:      cfg.DataDir,
		PollInterval: cfg.PollInterval,
		VaultKey:     []byte(cfg.VaultKey),
		Logger:       logger.Named("medium"),
	})
	if err != nil {
		return fmt.Errorf("open medium: %w", err)
	}
	defer m.Close()
	logger.Info("medium opened", zap.String("backend", cfg.Backend), zap.String("dir", cfg.DataDir))

	// 3. Services, and a background client that keeps the period and reset state current
	svc := session.NewServices(m, session.ServiceOptions{
		Keyspace: schema.Keyspace{Prefix: cfg.KeyPrefix},
		Reloader: syncbus.ReloaderFunc(func() { logger.Warn("medium wiped by global reset") }),
		Logger:   logger,
	})
	sess := session.New(svc, m, session.Options{Heartbeat: cfg.Heartbeat, Logger: logger.Named("session")})

	// 4. HTTP API
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), api.CORS())
	h := &api.Handler{Services: svc}
	h.Register(r.Group("/api"))
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "route not found"})
	})
	srv := &http.Server{Addr: ":" + cfg.HTTPPort, Handler: r}

	// 5. Run until a shutdown signal arrives
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return sess.Run(gctx)
	})
	g.Go(func() error {
		logger.Info("HTTP API listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
