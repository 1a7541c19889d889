package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"gorm.io/gorm"

	"hostel-dashboard-backend/config"
	"hostel-dashboard-backend/internal/api"
	"hostel-dashboard-backend/internal/datasource"
	"hostel-dashboard-backend/internal/db"
	"hostel-dashboard-backend/internal/notification"
	"hostel-dashboard-backend/internal/refresh"
	"hostel-dashboard-backend/internal/session"
	"hostel-dashboard-backend/internal/store"
)

func main() {
	logger := log.New(os.Stdout, "hostel-backend ", log.LstdFlags)

	config.LoadEnv()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml" // Default path for local development
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatalf("failed to load configuration from %s: %v", configPath, err)
	}
	logger.Printf("configuration loaded successfully from %s", configPath)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// The database backs push subscriptions for every data source kind, and
	// notifications too when the kind is gorm.
	var gormDB *gorm.DB
	if cfg.DataSource.Kind == "gorm" || cfg.Database.DSN != "" {
		gormDB, err = db.Init(&cfg.Database)
		if err != nil {
			logger.Fatalf("failed to initialize database: %v", err)
		}
		logger.Println("database initialized successfully")
	}

	ds, users, err := newDataSource(ctx, cfg, gormDB)
	if err != nil {
		logger.Fatalf("failed to initialize data source: %v", err)
	}
	logger.Printf("%s data source initialized", cfg.DataSource.Kind)

	var webpushOptions *webpush.Options
	var sessionOpts []session.Option
	if cfg.Push.Enabled() && gormDB != nil {
		webpushOptions = &webpush.Options{
			VAPIDPublicKey:  cfg.Push.PublicKey,
			VAPIDPrivateKey: cfg.Push.PrivateKey,
			Subscriber:      cfg.Push.Subject,
			TTL:             cfg.Push.TTL,
		}
		workerPool := notification.NewWorkerPool(cfg.WorkerPool.Size, gormDB, webpushOptions)
		workerPool.Start(ctx)
		sessionOpts = append(sessionOpts, session.WithNotificationOptions(store.WithDispatcher(workerPool)))
		logger.Printf("push worker pool started with %d workers", cfg.WorkerPool.Size)
	} else {
		logger.Println("VAPID keys or database not configured; push notifications are disabled")
	}

	sessions := session.NewManager(users, ds, cfg.Session.TTL, sessionOpts...)

	refresher := refresh.NewService(&cfg.Refresh, sessions)
	go refresher.Run(ctx)

	router := api.NewRouter(&cfg.Server, sessions, gormDB, webpushOptions)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logger.Printf("HTTP server starting on port %d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("HTTP server ListenAndServe: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop
	logger.Println("Shutdown signal received, stopping services...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatalf("HTTP server Shutdown: %v", err)
	}

	logger.Println("Server gracefully stopped")
}

// newDataSource builds the configured data source. Users always come from
// the local database when there is one, otherwise from the demo fixtures.
func newDataSource(ctx context.Context, cfg *config.Config, gormDB *gorm.DB) (datasource.DataSource, datasource.UserDirectory, error) {
	switch cfg.DataSource.Kind {
	case "gorm":
		src := datasource.NewGormSource(gormDB)
		if cfg.Database.Seed {
			if err := src.Seed(ctx, datasource.DemoFixtures(time.Now())); err != nil {
				return nil, nil, err
			}
		}
		return src, src, nil
	case "memory":
		src := datasource.NewMemorySource(datasource.DemoFixtures(time.Now()))
		return src, src, nil
	case "http":
		remote := datasource.NewHTTPSource(datasource.HTTPOptions{
			BaseURL:   cfg.DataSource.Request.BaseURL,
			Headers:   cfg.DataSource.Request.Headers,
			HTTPProxy: cfg.DataSource.Request.HTTPProxy,
			PageSize:  cfg.DataSource.Request.PageSize,
			Timeout:   cfg.DataSource.Request.Timeout,
		})
		if gormDB != nil {
			return remote, datasource.NewGormSource(gormDB), nil
		}
		return remote, datasource.NewMemorySource(datasource.Fixtures{Users: datasource.DemoFixtures(time.Now()).Users}), nil
	default:
		return nil, nil, fmt.Errorf("unknown data source kind %q", cfg.DataSource.Kind)
	}
}
