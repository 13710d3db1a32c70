package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rodzerz/customs-crm/internal/caseevent"
	"github.com/rodzerz/customs-crm/internal/cases"
	casemetrics "github.com/rodzerz/customs-crm/internal/cases/metrics"
	"github.com/rodzerz/customs-crm/internal/inspection"
	inspmetrics "github.com/rodzerz/customs-crm/internal/inspection/metrics"
	"github.com/rodzerz/customs-crm/internal/notify"
	notifymetrics "github.com/rodzerz/customs-crm/internal/notify/metrics"
	"github.com/rodzerz/customs-crm/internal/platform/config"
	"github.com/rodzerz/customs-crm/internal/platform/httpserver"
	"github.com/rodzerz/customs-crm/internal/platform/logger"
	platformmetrics "github.com/rodzerz/customs-crm/internal/platform/metrics"
	"github.com/rodzerz/customs-crm/internal/platform/postgres"
	platformredis "github.com/rodzerz/customs-crm/internal/platform/redis"
	"github.com/rodzerz/customs-crm/internal/risk"
	riskmetrics "github.com/rodzerz/customs-crm/internal/risk/metrics"
	"github.com/rodzerz/customs-crm/internal/storage"
	pgstore "github.com/rodzerz/customs-crm/internal/storage/postgres"
	"github.com/rodzerz/customs-crm/internal/storage/redisstore"
	httptransport "github.com/rodzerz/customs-crm/internal/transport/http"
)

// main wires dependencies and keeps the server lifecycle small. Business
// logic lives in the internal services packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()
	ctx := context.Background()

	db, err := postgres.Open(ctx, cfg.Postgres)
	if err != nil {
		log.Error("postgres connection failed", "error", err)
		os.Exit(1)
	}
	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Error("redis connection failed", "error", err)
		os.Exit(1)
	}

	// Store selection: Postgres when configured, in-memory otherwise. The
	// webhook stores prefer Redis so retry counters survive restarts even in
	// deployments without Postgres.
	var (
		caseStore       storage.CaseStore       = storage.NewInMemoryCaseStore()
		cargoStore      storage.CargoStore      = storage.NewInMemoryCargoStore()
		inspectionStore storage.InspectionStore = storage.NewInMemoryInspectionStore()
		eventStore      storage.EventStore      = storage.NewInMemoryEventStore()
		webhookStore    storage.WebhookStore    = storage.NewInMemoryWebhookStore()
		deliveryStore   storage.DeliveryStore   = storage.NewInMemoryDeliveryStore()
	)
	checks := map[string]httptransport.HealthChecker{}
	if db != nil {
		if err := pgstore.Migrate(ctx, db); err != nil {
			log.Error("schema migration failed", "error", err)
			os.Exit(1)
		}
		caseStore = pgstore.NewCaseStore(db)
		cargoStore = pgstore.NewCargoStore(db)
		inspectionStore = pgstore.NewInspectionStore(db)
		eventStore = pgstore.NewEventStore(db)
		webhookStore = pgstore.NewWebhookStore(db)
		deliveryStore = pgstore.NewDeliveryStore(db)
		checks["postgres"] = db.PingContext
		defer db.Close()
	}
	if redisClient != nil {
		webhookStore = redisstore.NewWebhookStore(redisClient.Client)
		deliveryStore = redisstore.NewDeliveryStore(redisClient.Client)
		checks["redis"] = redisClient.Health
		defer redisClient.Close()
	}

	dispatcher := notify.NewDispatcher(webhookStore, deliveryStore,
		notify.NewHTTPSender(cfg.Server.WebhookTimeout), log,
		notify.WithTimeout(cfg.Server.WebhookTimeout),
		notify.WithMetrics(notifymetrics.New()))
	webhookAdmin := notify.NewAdmin(webhookStore, deliveryStore)

	events := caseevent.NewService(eventStore)
	caseSvc := cases.NewService(caseStore, cargoStore, events, dispatcher, risk.NewEngine(), log,
		cases.WithMetrics(casemetrics.New()),
		cases.WithRiskMetrics(riskmetrics.New()))
	inspSvc := inspection.NewService(inspectionStore, caseSvc, log,
		inspection.WithMetrics(inspmetrics.New()))

	router := httptransport.NewRouter(checks, platformmetrics.NewHTTP(),
		httptransport.NewCaseHandler(caseSvc, inspSvc, log),
		httptransport.NewInspectionHandler(inspSvc, log),
		httptransport.NewWebhookHandler(webhookAdmin, log),
	)
	srv := httpserver.New(cfg.Server.Addr, router)

	go func() {
		log.Info("server listening", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}
