package storage

import (
	"context"
	"time"

	"github.com/rodzerz/customs-crm/internal/domain"
)

// Stores are interface-driven to keep the domain logic testable and to allow
// swapping in-memory, PostgreSQL, or Redis persistence without rewiring
// business code. Implementations must provide per-record serialization for
// the counters they own (webhook retry bookkeeping in particular).
type CaseStore interface {
	Save(ctx context.Context, c domain.Case) error
	FindByID(ctx context.Context, id string) (domain.Case, error)
	List(ctx context.Context) ([]domain.Case, error)
}

type CargoStore interface {
	Save(ctx context.Context, item domain.CargoItem) error
	ListByCase(ctx context.Context, caseID string) ([]domain.CargoItem, error)
}

type InspectionStore interface {
	Save(ctx context.Context, insp domain.Inspection) error
	FindByID(ctx context.Context, id string) (domain.Inspection, error)
	ListByCase(ctx context.Context, caseID string) ([]domain.Inspection, error)
}

// EventStore is append-only. Append assigns the per-case sequence number used
// to break creation-time ties; ListByCase returns newest first.
type EventStore interface {
	Append(ctx context.Context, event domain.CaseEvent) (domain.CaseEvent, error)
	ListByCase(ctx context.Context, caseID string) ([]domain.CaseEvent, error)
}

// WebhookStore owns subscription records and their retry bookkeeping.
// MarkSuccess and IncrementRetry must be serialized per subscription so
// parallel deliveries cannot lose counter updates.
type WebhookStore interface {
	Save(ctx context.Context, wh domain.Webhook) error
	FindByID(ctx context.Context, id string) (domain.Webhook, error)
	List(ctx context.Context) ([]domain.Webhook, error)
	ListActiveByEvent(ctx context.Context, event string) ([]domain.Webhook, error)
	MarkSuccess(ctx context.Context, id string, at time.Time) error
	IncrementRetry(ctx context.Context, id string) error
}

// DeliveryStore records dispatch attempts. Append-only.
type DeliveryStore interface {
	Append(ctx context.Context, rec domain.WebhookDelivery) error
	ListByWebhook(ctx context.Context, webhookID string) ([]domain.WebhookDelivery, error)
}

type VehicleStore interface {
	Save(ctx context.Context, v domain.Vehicle) error
	FindByID(ctx context.Context, id string) (domain.Vehicle, error)
}

type PartyStore interface {
	Save(ctx context.Context, p domain.Party) error
	FindByID(ctx context.Context, id string) (domain.Party, error)
	AttachToCase(ctx context.Context, link domain.CaseParty) error
	ListByCase(ctx context.Context, caseID string) ([]domain.CaseParty, error)
}

type DocumentStore interface {
	Save(ctx context.Context, d domain.Document) error
	ListByCase(ctx context.Context, caseID string) ([]domain.Document, error)
}
