package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rodzerz/customs-crm/internal/caseevent"
	"github.com/rodzerz/customs-crm/internal/cases"
	"github.com/rodzerz/customs-crm/internal/importer"
	"github.com/rodzerz/customs-crm/internal/notify"
	"github.com/rodzerz/customs-crm/internal/platform/config"
	"github.com/rodzerz/customs-crm/internal/platform/logger"
	"github.com/rodzerz/customs-crm/internal/platform/postgres"
	platformredis "github.com/rodzerz/customs-crm/internal/platform/redis"
	"github.com/rodzerz/customs-crm/internal/risk"
	"github.com/rodzerz/customs-crm/internal/storage"
	pgstore "github.com/rodzerz/customs-crm/internal/storage/postgres"
	"github.com/rodzerz/customs-crm/internal/storage/redisstore"
)

// main runs one import pass against the configured feed and exits. Scheduling
// repeated runs belongs to cron or the deployment platform.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	if cfg.Importer.FeedURL == "" {
		log.Error("CUSTOMS_FEED_URL is required")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

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

	var (
		caseStore       storage.CaseStore       = storage.NewInMemoryCaseStore()
		cargoStore      storage.CargoStore      = storage.NewInMemoryCargoStore()
		inspectionStore storage.InspectionStore = storage.NewInMemoryInspectionStore()
		eventStore      storage.EventStore      = storage.NewInMemoryEventStore()
		vehicleStore    storage.VehicleStore    = storage.NewInMemoryVehicleStore()
		partyStore      storage.PartyStore      = storage.NewInMemoryPartyStore()
		documentStore   storage.DocumentStore   = storage.NewInMemoryDocumentStore()
		webhookStore    storage.WebhookStore    = storage.NewInMemoryWebhookStore()
		deliveryStore   storage.DeliveryStore   = storage.NewInMemoryDeliveryStore()
	)
	if db != nil {
		if err := pgstore.Migrate(ctx, db); err != nil {
			log.Error("schema migration failed", "error", err)
			os.Exit(1)
		}
		caseStore = pgstore.NewCaseStore(db)
		cargoStore = pgstore.NewCargoStore(db)
		inspectionStore = pgstore.NewInspectionStore(db)
		eventStore = pgstore.NewEventStore(db)
		vehicleStore = pgstore.NewVehicleStore(db)
		partyStore = pgstore.NewPartyStore(db)
		documentStore = pgstore.NewDocumentStore(db)
		webhookStore = pgstore.NewWebhookStore(db)
		deliveryStore = pgstore.NewDeliveryStore(db)
		defer db.Close()
	}
	if redisClient != nil {
		webhookStore = redisstore.NewWebhookStore(redisClient.Client)
		deliveryStore = redisstore.NewDeliveryStore(redisClient.Client)
		defer redisClient.Close()
	}

	// Imports dispatch notifications like any other mutation, so subscribers
	// observe feed-driven changes too.
	dispatcher := notify.NewDispatcher(webhookStore, deliveryStore,
		notify.NewHTTPSender(cfg.Server.WebhookTimeout), log,
		notify.WithTimeout(cfg.Server.WebhookTimeout))
	caseSvc := cases.NewService(caseStore, cargoStore, caseevent.NewService(eventStore), dispatcher, risk.NewEngine(), log)

	feed := importer.NewClient(cfg.Importer.FeedURL, cfg.Importer.FeedTimeout)
	run := importer.New(feed, caseSvc, inspectionStore, vehicleStore, partyStore, documentStore, log)

	stats, err := run.Run(ctx)
	if err != nil {
		log.Error("import run failed", "error", err)
		os.Exit(1)
	}
	if stats.Failed > 0 {
		os.Exit(2)
	}
}
