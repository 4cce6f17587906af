package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/andresuchdata/devicehub/internal/analytics"
	"github.com/andresuchdata/devicehub/internal/api"
	"github.com/andresuchdata/devicehub/internal/cache"
	"github.com/andresuchdata/devicehub/internal/config"
	"github.com/andresuchdata/devicehub/internal/dashboard"
	"github.com/andresuchdata/devicehub/internal/metrics"
	"github.com/andresuchdata/devicehub/internal/repository/postgres"
	"github.com/andresuchdata/devicehub/internal/service"
	"github.com/andresuchdata/devicehub/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "server",
		Usage: "Serve the devicehub API",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "migrate",
				Usage: "Apply pending database migrations before serving",
			},
			&cli.BoolFlag{
				Name:  "migrate-only",
				Usage: "Apply pending database migrations and exit",
			},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		logger.Log.Fatal().Err(err).Msg("Server exited with error")
	}
}

func run(c *cli.Context) error {
	cfg := config.Load()

	logger.Setup(cfg.Log.Level, cfg.Log.Format)
	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := postgres.NewDB(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if cfg.Server.AutoMigrate || c.Bool("migrate") || c.Bool("migrate-only") {
		if err := postgres.Migrate(db.DB.DB); err != nil {
			return err
		}
	}
	if c.Bool("migrate-only") {
		return nil
	}

	rec := metrics.NewRecorder()

	dashboardCache, err := cache.NewDashboardCache(cfg.Cache, map[string]string{
		"timezone": cfg.Dashboard.Timezone,
		"window":   strconv.Itoa(cfg.Dashboard.SalesWindowDays),
	})
	if err != nil {
		logger.Log.Warn().Err(err).Msg("Dashboard cache unavailable, continuing without it")
		dashboardCache = cache.NewNoopDashboardCache()
	}

	store := postgres.NewStore(db)
	agg := analytics.NewAggregator(analytics.Config{
		Location:         cfg.Dashboard.Location(),
		DailySeriesLimit: cfg.Dashboard.DailySeriesLimit,
		TopBrands:        cfg.Dashboard.TopBrands,
	})

	refresher := dashboard.NewRefresher(
		dashboard.NewLoader(store, cfg.Dashboard.SalesWindowDays, cfg.Dashboard.LowStockThreshold),
		dashboard.NewComposer(agg),
		dashboardCache,
		cfg.Dashboard.RefreshInterval,
		dashboard.WithMetrics(rec),
	)

	opts := []service.Option{
		service.WithMetrics(rec),
		service.WithDashboardCache(dashboardCache),
		service.WithDashboardRefresher(refresher),
	}
	router := api.NewRouter(&api.Services{
		Inventory:  service.NewInventoryService(store, opts...),
		Sales:      service.NewSalesService(store, agg, cfg.Dashboard.SalesListDays, opts...),
		Loans:      service.NewLoanService(store, opts...),
		Warranties: service.NewWarrantyService(store, opts...),
		Dashboard:  service.NewDashboardService(refresher, dashboardCache, rec),
		Metrics:    rec,
		Database:   store,
	}, cfg.Server.AllowedOrigins)

	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	refresherDone := make(chan struct{})
	go func() {
		defer close(refresherDone)
		_ = refresher.Run(ctx)
	}()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Log.Info().Str("port", cfg.Server.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
		logger.Log.Info().Msg("Shutting down server...")
	case err := <-serveErr:
		stop()
		<-refresherDone
		return fmt.Errorf("failed to start server: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	<-refresherDone

	logger.Log.Info().Msg("Server exiting")
	return nil
}
