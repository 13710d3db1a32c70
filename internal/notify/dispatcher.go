// Package notify fans case lifecycle events out to registered webhook
// subscribers. Dispatch is synchronous fan-out with per-endpoint retry
// bookkeeping, not a message bus: failures are recorded, never re-queued.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/rodzerz/customs-crm/internal/domain"
	notifymetrics "github.com/rodzerz/customs-crm/internal/notify/metrics"
	"github.com/rodzerz/customs-crm/internal/notify/signature"
	"github.com/rodzerz/customs-crm/internal/storage"
	"github.com/rodzerz/customs-crm/pkg/requestcontext"
)

// DefaultTimeout bounds a single delivery attempt.
const DefaultTimeout = 30 * time.Second

// maxParallelDeliveries bounds the fan-out for one event.
const maxParallelDeliveries = 8

// Dispatcher delivers one event to every active subscription whose filter
// matches, each independently: one subscriber's failure never blocks or
// aborts delivery to the others.
type Dispatcher struct {
	webhooks   storage.WebhookStore
	deliveries storage.DeliveryStore
	sender     Sender
	logger     *slog.Logger
	metrics    *notifymetrics.Metrics
	timeout    time.Duration
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

func WithTimeout(d time.Duration) Option {
	return func(disp *Dispatcher) { disp.timeout = d }
}

func WithMetrics(m *notifymetrics.Metrics) Option {
	return func(disp *Dispatcher) { disp.metrics = m }
}

func NewDispatcher(webhooks storage.WebhookStore, deliveries storage.DeliveryStore, sender Sender, logger *slog.Logger, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		webhooks:   webhooks,
		deliveries: deliveries,
		sender:     sender,
		logger:     logger,
		timeout:    DefaultTimeout,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch sends payload to every active subscription filtered on event.
// It returns once all attempts have completed. Delivery outcomes are recorded
// per subscription; the returned error only covers the subscription lookup.
// Individual delivery failures are contained and never propagate to the caller.
func (d *Dispatcher) Dispatch(ctx context.Context, event string, payload map[string]any) error {
	subs, err := d.webhooks.ListActiveByEvent(ctx, event)
	if err != nil {
		return fmt.Errorf("list subscriptions for %s: %w", event, err)
	}
	if len(subs) == 0 {
		return nil
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload for %s: %w", event, err)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelDeliveries)
	for _, sub := range subs {
		g.Go(func() error {
			d.deliver(ctx, sub, event, body)
			return nil
		})
	}
	// Goroutines never return errors; Wait only synchronizes completion.
	_ = g.Wait()
	return nil
}

// deliver performs one attempt and records its outcome. On success the
// subscription's retry counter resets and its last-success timestamp updates;
// on any failure (non-2xx, timeout, transport error) the counter increments.
// Retry counting is advisory bookkeeping for operators, not a retry loop.
func (d *Dispatcher) deliver(ctx context.Context, sub domain.Webhook, event string, body []byte) {
	sendCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	start := time.Now()
	resp, sendErr := d.sender.Send(sendCtx, sub.URL, event, signature.Sign(sub.Secret, body), body)
	elapsed := time.Since(start)

	rec := domain.WebhookDelivery{
		ID:        uuid.New().String(),
		WebhookID: sub.ID,
		Event:     event,
		Payload:   body,
		CreatedAt: requestcontext.Now(ctx),
	}

	switch {
	case sendErr != nil:
		rec.Error = sendErr.Error()
	case resp.Success():
		rec.StatusCode = &resp.StatusCode
		rec.Response = resp.Body
		rec.Success = true
	default:
		rec.StatusCode = &resp.StatusCode
		rec.Response = resp.Body
	}

	if err := d.deliveries.Append(ctx, rec); err != nil {
		d.logger.Error("record webhook delivery", "webhook_id", sub.ID, "event", event, "error", err)
	}

	if rec.Success {
		if err := d.webhooks.MarkSuccess(ctx, sub.ID, requestcontext.Now(ctx)); err != nil {
			d.logger.Error("reset webhook retry counter", "webhook_id", sub.ID, "error", err)
		}
	} else {
		if err := d.webhooks.IncrementRetry(ctx, sub.ID); err != nil {
			d.logger.Error("increment webhook retry counter", "webhook_id", sub.ID, "error", err)
		}
		d.logger.Warn("webhook delivery failed",
			"webhook_id", sub.ID, "event", event, "url", sub.URL, "error", rec.Error, "status", resp.StatusCode)
	}

	d.metrics.ObserveDelivery(rec.Success, elapsed)
}
