package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rodzerz/customs-crm/internal/domain"
)

// In-memory stores keep unit tests and local development lightweight. They
// intentionally favor clarity over performance.
type InMemoryCaseStore struct {
	mu    sync.RWMutex
	cases map[string]domain.Case
}

func NewInMemoryCaseStore() *InMemoryCaseStore {
	return &InMemoryCaseStore{cases: make(map[string]domain.Case)}
}

func (s *InMemoryCaseStore) Save(_ context.Context, c domain.Case) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cases[c.ID] = c
	return nil
}

func (s *InMemoryCaseStore) FindByID(_ context.Context, id string) (domain.Case, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if c, ok := s.cases[id]; ok {
		return c, nil
	}
	return domain.Case{}, ErrNotFound
}

func (s *InMemoryCaseStore) List(_ context.Context) ([]domain.Case, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Case, 0, len(s.cases))
	for _, c := range s.cases {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type InMemoryCargoStore struct {
	mu    sync.RWMutex
	items map[string]domain.CargoItem
}

func NewInMemoryCargoStore() *InMemoryCargoStore {
	return &InMemoryCargoStore{items: make(map[string]domain.CargoItem)}
}

func (s *InMemoryCargoStore) Save(_ context.Context, item domain.CargoItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[item.ID] = item
	return nil
}

func (s *InMemoryCargoStore) ListByCase(_ context.Context, caseID string) ([]domain.CargoItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.CargoItem
	for _, item := range s.items {
		if item.CaseID == caseID {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type InMemoryInspectionStore struct {
	mu          sync.RWMutex
	inspections map[string]domain.Inspection
}

func NewInMemoryInspectionStore() *InMemoryInspectionStore {
	return &InMemoryInspectionStore{inspections: make(map[string]domain.Inspection)}
}

func (s *InMemoryInspectionStore) Save(_ context.Context, insp domain.Inspection) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inspections[insp.ID] = insp
	return nil
}

func (s *InMemoryInspectionStore) FindByID(_ context.Context, id string) (domain.Inspection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if insp, ok := s.inspections[id]; ok {
		return insp, nil
	}
	return domain.Inspection{}, ErrNotFound
}

func (s *InMemoryInspectionStore) ListByCase(_ context.Context, caseID string) ([]domain.Inspection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Inspection
	for _, insp := range s.inspections {
		if insp.CaseID == caseID {
			out = append(out, insp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// InMemoryEventStore keeps per-case slices in insertion order and assigns the
// per-case sequence number on append.
type InMemoryEventStore struct {
	mu     sync.RWMutex
	events map[string][]domain.CaseEvent
}

func NewInMemoryEventStore() *InMemoryEventStore {
	return &InMemoryEventStore{events: make(map[string][]domain.CaseEvent)}
}

func (s *InMemoryEventStore) Append(_ context.Context, event domain.CaseEvent) (domain.CaseEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	event.Seq = int64(len(s.events[event.CaseID]) + 1)
	s.events[event.CaseID] = append(s.events[event.CaseID], event)
	return event, nil
}

func (s *InMemoryEventStore) ListByCase(_ context.Context, caseID string) ([]domain.CaseEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	events := s.events[caseID]
	out := make([]domain.CaseEvent, len(events))
	copy(out, events)
	// Newest first: creation time, ties broken by insertion order.
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].Seq > out[j].Seq
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

type InMemoryWebhookStore struct {
	mu       sync.RWMutex
	webhooks map[string]domain.Webhook
}

func NewInMemoryWebhookStore() *InMemoryWebhookStore {
	return &InMemoryWebhookStore{webhooks: make(map[string]domain.Webhook)}
}

func (s *InMemoryWebhookStore) Save(_ context.Context, wh domain.Webhook) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.webhooks[wh.ID] = wh
	return nil
}

func (s *InMemoryWebhookStore) FindByID(_ context.Context, id string) (domain.Webhook, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if wh, ok := s.webhooks[id]; ok {
		return wh, nil
	}
	return domain.Webhook{}, ErrNotFound
}

func (s *InMemoryWebhookStore) List(_ context.Context) ([]domain.Webhook, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Webhook, 0, len(s.webhooks))
	for _, wh := range s.webhooks {
		out = append(out, wh)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *InMemoryWebhookStore) ListActiveByEvent(_ context.Context, event string) ([]domain.Webhook, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Webhook
	for _, wh := range s.webhooks {
		if wh.Active && wh.Event == event {
			out = append(out, wh)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// MarkSuccess resets the retry counter and stamps the last successful
// delivery. Serialized by the store lock so parallel deliveries cannot lose
// counter updates.
func (s *InMemoryWebhookStore) MarkSuccess(_ context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	wh, ok := s.webhooks[id]
	if !ok {
		return ErrNotFound
	}
	wh.RetryCount = 0
	wh.LastTriggeredAt = &at
	s.webhooks[id] = wh
	return nil
}

func (s *InMemoryWebhookStore) IncrementRetry(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	wh, ok := s.webhooks[id]
	if !ok {
		return ErrNotFound
	}
	wh.RetryCount++
	s.webhooks[id] = wh
	return nil
}

type InMemoryDeliveryStore struct {
	mu         sync.RWMutex
	deliveries map[string][]domain.WebhookDelivery
}

func NewInMemoryDeliveryStore() *InMemoryDeliveryStore {
	return &InMemoryDeliveryStore{deliveries: make(map[string][]domain.WebhookDelivery)}
}

func (s *InMemoryDeliveryStore) Append(_ context.Context, rec domain.WebhookDelivery) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deliveries[rec.WebhookID] = append(s.deliveries[rec.WebhookID], rec)
	return nil
}

// ListByWebhook returns delivery attempts newest first, matching the
// persistent stores.
func (s *InMemoryDeliveryStore) ListByWebhook(_ context.Context, webhookID string) ([]domain.WebhookDelivery, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	recs := s.deliveries[webhookID]
	out := make([]domain.WebhookDelivery, len(recs))
	for i, rec := range recs {
		out[len(recs)-1-i] = rec
	}
	return out, nil
}

type InMemoryVehicleStore struct {
	mu       sync.RWMutex
	vehicles map[string]domain.Vehicle
}

func NewInMemoryVehicleStore() *InMemoryVehicleStore {
	return &InMemoryVehicleStore{vehicles: make(map[string]domain.Vehicle)}
}

func (s *InMemoryVehicleStore) Save(_ context.Context, v domain.Vehicle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vehicles[v.ID] = v
	return nil
}

func (s *InMemoryVehicleStore) FindByID(_ context.Context, id string) (domain.Vehicle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if v, ok := s.vehicles[id]; ok {
		return v, nil
	}
	return domain.Vehicle{}, ErrNotFound
}

type InMemoryPartyStore struct {
	mu      sync.RWMutex
	parties map[string]domain.Party
	links   map[string][]domain.CaseParty
}

func NewInMemoryPartyStore() *InMemoryPartyStore {
	return &InMemoryPartyStore{
		parties: make(map[string]domain.Party),
		links:   make(map[string][]domain.CaseParty),
	}
}

func (s *InMemoryPartyStore) Save(_ context.Context, p domain.Party) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.parties[p.ID] = p
	return nil
}

func (s *InMemoryPartyStore) FindByID(_ context.Context, id string) (domain.Party, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if p, ok := s.parties[id]; ok {
		return p, nil
	}
	return domain.Party{}, ErrNotFound
}

func (s *InMemoryPartyStore) AttachToCase(_ context.Context, link domain.CaseParty) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.links[link.CaseID] {
		if existing.PartyID == link.PartyID {
			return nil
		}
	}
	s.links[link.CaseID] = append(s.links[link.CaseID], link)
	return nil
}

func (s *InMemoryPartyStore) ListByCase(_ context.Context, caseID string) ([]domain.CaseParty, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.CaseParty{}, s.links[caseID]...), nil
}

type InMemoryDocumentStore struct {
	mu        sync.RWMutex
	documents map[string]domain.Document
}

func NewInMemoryDocumentStore() *InMemoryDocumentStore {
	return &InMemoryDocumentStore{documents: make(map[string]domain.Document)}
}

func (s *InMemoryDocumentStore) Save(_ context.Context, d domain.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.documents[d.ID] = d
	return nil
}

func (s *InMemoryDocumentStore) ListByCase(_ context.Context, caseID string) ([]domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Document
	for _, d := range s.documents {
		if d.CaseID == caseID {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
