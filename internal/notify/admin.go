package notify

import (
	"context"
	"errors"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/rodzerz/customs-crm/internal/domain"
	"github.com/rodzerz/customs-crm/internal/storage"
	dErrors "github.com/rodzerz/customs-crm/pkg/domain-errors"
	"github.com/rodzerz/customs-crm/pkg/platform/sentinel"
)

// Admin manages webhook subscriptions on behalf of the external admin
// surface. The dispatcher itself only ever reads subscriptions.
type Admin struct {
	webhooks   storage.WebhookStore
	deliveries storage.DeliveryStore
}

func NewAdmin(webhooks storage.WebhookStore, deliveries storage.DeliveryStore) *Admin {
	return &Admin{webhooks: webhooks, deliveries: deliveries}
}

// Create registers a subscription and returns it with a freshly generated
// signing secret. The secret is only shown in full on creation.
func (a *Admin) Create(ctx context.Context, endpoint, event string) (domain.Webhook, error) {
	if event == "" {
		return domain.Webhook{}, dErrors.New(dErrors.CodeBadRequest, "event filter is required")
	}
	parsed, err := url.Parse(endpoint)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return domain.Webhook{}, dErrors.New(dErrors.CodeBadRequest, "endpoint must be an absolute URL")
	}

	secret, err := generateSecret()
	if err != nil {
		return domain.Webhook{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to generate signing secret")
	}

	wh := domain.Webhook{
		ID:        uuid.New().String(),
		URL:       endpoint,
		Event:     event,
		Secret:    secret,
		Active:    true,
		CreatedAt: time.Now(),
	}
	if err := a.webhooks.Save(ctx, wh); err != nil {
		return domain.Webhook{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save subscription")
	}
	return wh, nil
}

// SetActive toggles a subscription without touching its other fields.
func (a *Admin) SetActive(ctx context.Context, id string, active bool) (domain.Webhook, error) {
	wh, err := a.webhooks.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return domain.Webhook{}, dErrors.New(dErrors.CodeNotFound, "subscription not found")
		}
		return domain.Webhook{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load subscription")
	}
	wh.Active = active
	if err := a.webhooks.Save(ctx, wh); err != nil {
		return domain.Webhook{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save subscription")
	}
	return wh, nil
}

// List returns all subscriptions, active or not.
func (a *Admin) List(ctx context.Context) ([]domain.Webhook, error) {
	return a.webhooks.List(ctx)
}

// Deliveries returns the attempt log for one subscription.
func (a *Admin) Deliveries(ctx context.Context, webhookID string) ([]domain.WebhookDelivery, error) {
	if _, err := a.webhooks.FindByID(ctx, webhookID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "subscription not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load subscription")
	}
	return a.deliveries.ListByWebhook(ctx, webhookID)
}
