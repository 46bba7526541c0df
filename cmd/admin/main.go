package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/dwikikusuma/fulfillment/internal/fulfillment/app"
	"github.com/dwikikusuma/fulfillment/internal/fulfillment/httpapi"
	fulfillmentpg "github.com/dwikikusuma/fulfillment/internal/fulfillment/infra/postgres"
	inventoryapp "github.com/dwikikusuma/fulfillment/internal/inventory/app"
	inventorypg "github.com/dwikikusuma/fulfillment/internal/inventory/infra/postgres"
	loyaltyapp "github.com/dwikikusuma/fulfillment/internal/loyalty/app"
	loyaltypg "github.com/dwikikusuma/fulfillment/internal/loyalty/infra/postgres"
	"github.com/dwikikusuma/fulfillment/internal/notify/redisq"
	"github.com/dwikikusuma/fulfillment/internal/settings"
	"github.com/dwikikusuma/fulfillment/pkg/config"
	"github.com/dwikikusuma/fulfillment/pkg/logger"
	"github.com/dwikikusuma/fulfillment/pkg/postgres"
	"github.com/dwikikusuma/fulfillment/pkg/shutdown"
)

func main() {
	cfg := config.Load()
	log := logger.New(logger.Options{
		Service:   "fulfillment-admin",
		Env:       cfg.AppEnv,
		Level:     cfg.LogLevel,
		AddSource: true,
	})

	ctx, cancel := shutdown.WithSignals(context.Background())
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("database unavailable", slog.Any("err", err))
		os.Exit(1)
	}
	defer pool.Close()

	orderStore := fulfillmentpg.NewOrderStore(pool)
	productStore := inventorypg.NewProductStore(pool)
	accountStore := loyaltypg.NewAccountStore(pool)
	settingsStore := settings.NewPostgresStore(pool)

	for name, ensure := range map[string]func() error{
		"orders":   func() error { return orderStore.EnsureSchema(ctx) },
		"products": func() error { return productStore.EnsureSchema(ctx) },
		"accounts": func() error { return accountStore.EnsureSchema(ctx) },
		"settings": func() error { return settingsStore.EnsureSchema(ctx) },
	} {
		if err := ensure(); err != nil {
			log.Error("schema migration failed", slog.String("schema", name), slog.Any("err", err))
			os.Exit(1)
		}
	}

	notifier, err := redisq.New(cfg.RedisURL)
	if err != nil {
		log.Error("redis unavailable", slog.Any("err", err))
		os.Exit(1)
	}
	defer notifier.Close()

	ledger := inventoryapp.NewLedger(productStore)
	accountant := loyaltyapp.NewAccountant(accountStore)
	engine := app.NewEngine(orderStore, ledger, accountant, settingsStore, notifier, log, cfg.BulkWorkers)

	handler := httpapi.New(engine, settingsStore, log)

	addr := fmt.Sprintf(":%d", cfg.HTTPPort)
	server := &http.Server{
		Addr:              addr,
		Handler:           handler.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Info("http server starting", slog.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("http server error", slog.Any("err", err))
			cancel()
		}
	}()

	<-ctx.Done()
	log.Info("shutdown requested")

	shutdownCtx, shutdownCancel := shutdown.Grace(10 * time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown error", slog.Any("err", err))
	}

	wg.Wait()
	log.Info("bye")
}
