// @title           Kanso Stats Gateway API
// @version         1.0
// @description     Aggregated habit statistics and badge unlocks over the Kanso backend.
// @BasePath        /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
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

	adapterHTTP "github.com/comitanigiacomo/kanso-stats-gateway/internal/adapters/handler/http"
	"github.com/comitanigiacomo/kanso-stats-gateway/internal/app"
	"github.com/comitanigiacomo/kanso-stats-gateway/internal/config"
	"github.com/comitanigiacomo/kanso-stats-gateway/internal/core/workers"
	"github.com/comitanigiacomo/kanso-stats-gateway/internal/logging"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "kanso-stats-gateway: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	startTime := time.Now()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	worker := workers.NewRefreshWorker(a.Sync, cfg.RefreshEvery, logger)
	worker.Start(ctx)

	srv := &http.Server{
		Addr:         a.Addr(),
		Handler:      newRouter(a, worker, startTime),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.HTTPTimeout + 10*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("Kanso Stats Gateway running", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("critical server error: %w", err)
		}
	case <-ctx.Done():
		logger.Info("Stop signal received. Shutting down...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("forced shutdown: %w", err)
	}

	stop()
	<-worker.Done()

	logger.Info("Server stopped gracefully.")
	return nil
}

func newRouter(a *app.App, warmer adapterHTTP.Warmer, startTime time.Time) *gin.Engine {
	return adapterHTTP.NewRouter(adapterHTTP.RouterDependencies{
		SessionHandler:  adapterHTTP.NewSessionHandler(a.Sessions, a.Access, warmer),
		OverviewHandler: adapterHTTP.NewOverviewHandler(a.Sync),
		BadgeHandler:    adapterHTTP.NewBadgeHandler(a.Sync),
		Sessions:        a.Sessions,
		AccessTokens:    a.Access,
		CORSOrigins:     a.Config.CORSOrigins,
		DB:              a.DB,
		Redis:           a.Redis,
		RateLimit:       a.Config.RateLimit,
		Logger:          a.Logger,
		StartTime:       startTime,
	})
}
