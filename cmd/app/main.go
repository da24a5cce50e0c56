// File: cmd/app/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"creator-payments/internal/config"
	"creator-payments/internal/domain/ports/adapter"
	"creator-payments/internal/infra/api"
	pg "creator-payments/internal/infra/db/postgres"
	"creator-payments/internal/infra/gateway"
	"creator-payments/internal/infra/logging"
	"creator-payments/internal/infra/metrics"
	red "creator-payments/internal/infra/redis"
	"creator-payments/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Info().Msg("dev mode enabled")
	}

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 10)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}
	defer redisClient.Close()
	locker := red.NewLocker(redisClient)
	rateLimiter := red.NewRateLimiter(redisClient)

	// ---- Repositories ----
	payRepo := pg.NewPaymentRepo(pool)
	bundleRepo := pg.NewBundleRepo(pool)
	methodRepo := pg.NewMethodRepo(pool)
	catalogRepo := pg.NewCatalogRepo(pool)
	userRepo := pg.NewUserRepo(pool)
	tm := pg.NewTxManager(pool)

	// ---- Gateway drivers ----
	var drivers []adapter.GatewayDriver
	for _, id := range cfg.Payment.Enabled {
		switch id {
		case "paywall":
			drivers = append(drivers, gateway.NewPaywallDriver(cfg.Payment.Paywall, payRepo))
		case "cardlink":
			drivers = append(drivers, gateway.NewCardlinkDriver(cfg.Payment.Cardlink, payRepo))
		case "noop":
			if !cfg.Runtime.Dev {
				log.Fatalf("gateway %q is only available in dev mode", id)
			}
			drivers = append(drivers, gateway.NewNoopDriver(payRepo))
		default:
			log.Fatalf("unknown gateway driver %q in payment.enabled", id)
		}
	}
	registry := gateway.NewRegistry(drivers...)

	// ---- Use cases ----
	pricingUC := usecase.NewPricingUseCase(catalogRepo, userRepo, bundleRepo, logger)
	paymentUC := usecase.NewPaymentUseCase(payRepo, registry, tm, logger)
	methodUC := usecase.NewMethodUseCase(methodRepo, userRepo, registry, tm, locker, cfg.Redis.LockTTL, logger)
	bundleUC := usecase.NewBundleUseCase(bundleRepo, cfg.Payment.Pricing.DiscountCap, logger)
	userUC := usecase.NewUserUseCase(userRepo, cfg.Payment.Pricing.SubscriptionCap, logger)

	// ---- HTTP ----
	metrics.MustRegister()
	guard := api.NewGuard(cfg.API.SessionSecret)
	srv := api.NewServer(pricingUC, paymentUC, methodUC, bundleUC, userUC, registry, rateLimiter, cfg.API.RateLimit, cfg.API.RateWindow, logger)

	r := chi.NewRouter()
	srv.RegisterRoutes(r, guard)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	httpSrv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.API.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info().Int("port", cfg.API.Port).Msg("http server listening")
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("http server stopped")
			cancel()
		}
	}()

	// ---- Shutdown ----
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sig:
	case <-ctx.Done():
	}
	logger.Info().Msg("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	_ = httpSrv.Shutdown(shutdownCtx)
}
