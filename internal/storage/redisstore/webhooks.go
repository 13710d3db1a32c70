// Package redisstore backs the webhook subscription and delivery-log stores
// with Redis. Subscriptions live in hashes with a per-event index set; retry
// bookkeeping uses single-key hash commands, which Redis serializes, so
// parallel deliveries cannot lose counter updates.
package redisstore

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rodzerz/customs-crm/internal/domain"
	"github.com/rodzerz/customs-crm/internal/storage"
)

const (
	webhookKeyPrefix   = "webhook:"        // webhook:{id} -> hash
	webhookIndexKey    = "webhooks:ids"    // set of all subscription ids
	webhookEventPrefix = "webhooks:event:" // webhooks:event:{event} -> set of ids
)

// WebhookStore persists subscriptions in Redis.
type WebhookStore struct {
	client *redis.Client
}

func NewWebhookStore(client *redis.Client) *WebhookStore {
	return &WebhookStore{client: client}
}

func webhookKey(id string) string { return webhookKeyPrefix + id }

func eventKey(event string) string { return webhookEventPrefix + event }

func (s *WebhookStore) Save(ctx context.Context, wh domain.Webhook) error {
	// Drop a stale event index entry when the filter changes.
	if prev, err := s.FindByID(ctx, wh.ID); err == nil && prev.Event != wh.Event {
		if err := s.client.SRem(ctx, eventKey(prev.Event), wh.ID).Err(); err != nil {
			return fmt.Errorf("reindex webhook: %w", err)
		}
	}

	fields := map[string]any{
		"id":          wh.ID,
		"url":         wh.URL,
		"event":       wh.Event,
		"secret":      wh.Secret,
		"active":      strconv.FormatBool(wh.Active),
		"retry_count": wh.RetryCount,
		"created_at":  wh.CreatedAt.Format(time.RFC3339Nano),
	}
	if wh.LastTriggeredAt != nil {
		fields["last_triggered_at"] = wh.LastTriggeredAt.Format(time.RFC3339Nano)
	}

	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, webhookKey(wh.ID), fields)
	pipe.SAdd(ctx, webhookIndexKey, wh.ID)
	pipe.SAdd(ctx, eventKey(wh.Event), wh.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("save webhook: %w", err)
	}
	return nil
}

func (s *WebhookStore) FindByID(ctx context.Context, id string) (domain.Webhook, error) {
	data, err := s.client.HGetAll(ctx, webhookKey(id)).Result()
	if err != nil {
		return domain.Webhook{}, fmt.Errorf("find webhook: %w", err)
	}
	if len(data) == 0 {
		return domain.Webhook{}, storage.ErrNotFound
	}
	return parseWebhook(data)
}

func (s *WebhookStore) List(ctx context.Context) ([]domain.Webhook, error) {
	ids, err := s.client.SMembers(ctx, webhookIndexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("list webhooks: %w", err)
	}
	return s.load(ctx, ids, nil)
}

func (s *WebhookStore) ListActiveByEvent(ctx context.Context, event string) ([]domain.Webhook, error) {
	ids, err := s.client.SMembers(ctx, eventKey(event)).Result()
	if err != nil {
		return nil, fmt.Errorf("list webhooks by event: %w", err)
	}
	return s.load(ctx, ids, func(wh domain.Webhook) bool { return wh.Active })
}

func (s *WebhookStore) MarkSuccess(ctx context.Context, id string, at time.Time) error {
	if err := s.require(ctx, id); err != nil {
		return err
	}
	err := s.client.HSet(ctx, webhookKey(id), map[string]any{
		"retry_count":       0,
		"last_triggered_at": at.Format(time.RFC3339Nano),
	}).Err()
	if err != nil {
		return fmt.Errorf("mark webhook success: %w", err)
	}
	return nil
}

func (s *WebhookStore) IncrementRetry(ctx context.Context, id string) error {
	if err := s.require(ctx, id); err != nil {
		return err
	}
	if err := s.client.HIncrBy(ctx, webhookKey(id), "retry_count", 1).Err(); err != nil {
		return fmt.Errorf("increment webhook retry: %w", err)
	}
	return nil
}

func (s *WebhookStore) require(ctx context.Context, id string) error {
	exists, err := s.client.Exists(ctx, webhookKey(id)).Result()
	if err != nil {
		return fmt.Errorf("check webhook: %w", err)
	}
	if exists == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *WebhookStore) load(ctx context.Context, ids []string, keep func(domain.Webhook) bool) ([]domain.Webhook, error) {
	out := make([]domain.Webhook, 0, len(ids))
	for _, id := range ids {
		wh, err := s.FindByID(ctx, id)
		if err != nil {
			// Index entries can outlive their hash briefly; skip orphans.
			if err == storage.ErrNotFound {
				continue
			}
			return nil, err
		}
		if keep == nil || keep(wh) {
			out = append(out, wh)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func parseWebhook(data map[string]string) (domain.Webhook, error) {
	retries, _ := strconv.Atoi(data["retry_count"])
	createdAt, err := time.Parse(time.RFC3339Nano, data["created_at"])
	if err != nil {
		return domain.Webhook{}, fmt.Errorf("parse webhook created_at: %w", err)
	}

	wh := domain.Webhook{
		ID:         data["id"],
		URL:        data["url"],
		Event:      data["event"],
		Secret:     data["secret"],
		Active:     data["active"] == "true",
		RetryCount: retries,
		CreatedAt:  createdAt,
	}
	if raw, ok := data["last_triggered_at"]; ok && raw != "" {
		t, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return domain.Webhook{}, fmt.Errorf("parse webhook last_triggered_at: %w", err)
		}
		wh.LastTriggeredAt = &t
	}
	return wh, nil
}
