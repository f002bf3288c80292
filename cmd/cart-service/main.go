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

	"go.uber.org/zap"

	"github.com/coldfrontcalls/cart-service-go/internal/cart"
	"github.com/coldfrontcalls/cart-service-go/internal/catalog"
	"github.com/coldfrontcalls/cart-service-go/internal/checkout"
	"github.com/coldfrontcalls/cart-service-go/internal/config"
	"github.com/coldfrontcalls/cart-service-go/internal/db"
	"github.com/coldfrontcalls/cart-service-go/internal/events"
	"github.com/coldfrontcalls/cart-service-go/internal/forms"
	httpserver "github.com/coldfrontcalls/cart-service-go/internal/http"
	"github.com/coldfrontcalls/cart-service-go/internal/logging"
	"github.com/coldfrontcalls/cart-service-go/internal/middleware"
	"github.com/coldfrontcalls/cart-service-go/internal/session"
)

func main() {
	if err := config.LoadDotEnv(os.Getenv("ENV_FILE")); err != nil {
		fmt.Fprintf(os.Stderr, "cart-service: %v\n", err)
		os.Exit(1)
	}
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "cart-service: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "cart-service: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		slots     cart.SlotStore
		sequences events.SequenceRepository
	)
	switch cfg.Storage {
	case config.StoragePostgres:
		if cfg.RunMigrations {
			if err := db.RunMigrations(cfg.DatabaseDSN, logger); err != nil {
				logger.Fatal("run migrations", zap.Error(err))
			}
		}

		pool, err := db.NewPool(ctx, cfg.DatabaseDSN)
		if err != nil {
			logger.Fatal("open pgx pool", zap.Error(err))
		}
		defer pool.Close()
		slots = cart.NewPostgresSlots(pool)

		database, err := db.Open(ctx, cfg.DatabaseDSN)
		if err != nil {
			logger.Fatal("open database", zap.Error(err))
		}
		defer database.Close()
		sequences = events.NewSequenceRepository(database)
	default:
		logger.Warn("using in-memory cart storage, carts are lost on restart")
		slots = cart.NewMemorySlots()
		sequences = events.NewMemorySequences()
	}

	products, err := catalog.Load(cfg.UpsellCatalogFile)
	if err != nil {
		logger.Fatal("load upsell catalog", zap.String("file", cfg.UpsellCatalogFile), zap.Error(err))
	}

	fanout := checkout.NewFanoutSubmitter()
	if cfg.OrderFormURL != "" {
		client, err := forms.NewClient(cfg.OrderFormURL, cfg.OrderFormName, &http.Client{Timeout: cfg.UpstreamTimeout})
		if err != nil {
			logger.Fatal("order form client", zap.Error(err))
		}
		fanout.Add("form", client)
	}
	if cfg.RabbitMQURL != "" {
		rabbitConn := events.MustDialRabbit(cfg.RabbitMQURL)
		defer rabbitConn.Close()

		publisher, err := events.NewOrderPublisher(rabbitConn, sequences, events.PublisherOptions{})
		if err != nil {
			logger.Fatal("failed to create order publisher", zap.Error(err))
		}
		defer func() {
			if err := publisher.Close(); err != nil {
				logger.Warn("publisher close error", zap.Error(err))
			}
		}()
		fanout.Add("events", publisher)
	}
	if fanout.Len() == 0 {
		logger.Warn("no order hand-off configured, orders are only logged")
		fanout.Add("log", checkout.NewLogSubmitter(logger))
	}

	registry := session.NewRegistry(session.Config{
		Slots:      slots,
		StorageKey: cfg.CartStorageKey,
		Products:   products,
		Submitter:  fanout,
		Policy:     cfg.ClearPolicy,
		IdleTTL:    cfg.SessionIdleTTL,
		Logger:     logger,
	})
	go registry.Run(ctx)

	handler := httpserver.NewHandler(registry, logger, cfg.UpstreamTimeout)
	router := httpserver.NewRouter(handler, httpserver.RouterOptions{
		Logger:           logger,
		CORSAllowOrigins: cfg.CORSAllowOrigins,
		Cookie: middleware.CartCookieOptions{
			Name:   cfg.CartCookieName,
			Secure: cfg.CookieSecure,
		},
	})

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: cfg.UpstreamTimeout + 5*time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("cart-service listening",
			zap.String("addr", cfg.HTTPAddr),
			zap.String("storage", string(cfg.Storage)),
			zap.Stringer("clearPolicy", cfg.ClearPolicy),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		logger.Error("server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("graceful shutdown error", zap.Error(err))
	}
}
