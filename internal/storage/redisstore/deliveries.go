package redisstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rodzerz/customs-crm/internal/domain"
)

const (
	deliveryListPrefix = "webhook:deliveries:" // webhook:deliveries:{webhook_id} -> list, newest first
	maxDeliveriesKept  = 1000
)

// DeliveryStore keeps the delivery attempt log in capped Redis lists, newest
// first. The log is operational evidence, not an archive; old attempts roll
// off past maxDeliveriesKept.
type DeliveryStore struct {
	client *redis.Client
}

func NewDeliveryStore(client *redis.Client) *DeliveryStore {
	return &DeliveryStore{client: client}
}

type deliveryRecord struct {
	ID         string    `json:"id"`
	WebhookID  string    `json:"webhook_id"`
	Event      string    `json:"event"`
	StatusCode *int      `json:"status_code,omitempty"`
	Payload    []byte    `json:"payload,omitempty"`
	Response   string    `json:"response,omitempty"`
	Error      string    `json:"error,omitempty"`
	Success    bool      `json:"success"`
	CreatedAt  time.Time `json:"created_at"`
}

func (s *DeliveryStore) Append(ctx context.Context, rec domain.WebhookDelivery) error {
	raw, err := json.Marshal(deliveryRecord(rec))
	if err != nil {
		return fmt.Errorf("marshal delivery record: %w", err)
	}

	key := deliveryListPrefix + rec.WebhookID
	pipe := s.client.TxPipeline()
	pipe.LPush(ctx, key, raw)
	pipe.LTrim(ctx, key, 0, maxDeliveriesKept-1)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("append delivery record: %w", err)
	}
	return nil
}

func (s *DeliveryStore) ListByWebhook(ctx context.Context, webhookID string) ([]domain.WebhookDelivery, error) {
	raws, err := s.client.LRange(ctx, deliveryListPrefix+webhookID, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list delivery records: %w", err)
	}

	out := make([]domain.WebhookDelivery, 0, len(raws))
	for _, raw := range raws {
		var rec deliveryRecord
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			return nil, fmt.Errorf("unmarshal delivery record: %w", err)
		}
		out = append(out, domain.WebhookDelivery(rec))
	}
	return out, nil
}
