package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rodzerz/customs-crm/internal/domain"
	"github.com/rodzerz/customs-crm/internal/storage"
)

// WebhookStore persists subscriptions in PostgreSQL. Retry bookkeeping uses
// atomic UPDATEs so parallel deliveries cannot lose counter updates.
type WebhookStore struct {
	db *sql.DB
}

func NewWebhookStore(db *sql.DB) *WebhookStore {
	return &WebhookStore{db: db}
}

func (s *WebhookStore) Save(ctx context.Context, wh domain.Webhook) error {
	query := `
		INSERT INTO webhooks (id, url, event, secret, active, retry_count, last_triggered_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			url = EXCLUDED.url,
			event = EXCLUDED.event,
			active = EXCLUDED.active
	`
	_, err := s.db.ExecContext(ctx, query,
		wh.ID, wh.URL, wh.Event, wh.Secret, wh.Active, wh.RetryCount, wh.LastTriggeredAt, wh.CreatedAt)
	if err != nil {
		return fmt.Errorf("save webhook: %w", err)
	}
	return nil
}

func (s *WebhookStore) FindByID(ctx context.Context, id string) (domain.Webhook, error) {
	query := `
		SELECT id, url, event, secret, active, retry_count, last_triggered_at, created_at
		FROM webhooks
		WHERE id = $1
	`
	wh, err := scanWebhook(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Webhook{}, storage.ErrNotFound
		}
		return domain.Webhook{}, fmt.Errorf("find webhook: %w", err)
	}
	return wh, nil
}

func (s *WebhookStore) List(ctx context.Context) ([]domain.Webhook, error) {
	return s.query(ctx, `
		SELECT id, url, event, secret, active, retry_count, last_triggered_at, created_at
		FROM webhooks
		ORDER BY id
	`)
}

func (s *WebhookStore) ListActiveByEvent(ctx context.Context, event string) ([]domain.Webhook, error) {
	return s.query(ctx, `
		SELECT id, url, event, secret, active, retry_count, last_triggered_at, created_at
		FROM webhooks
		WHERE active AND event = $1
		ORDER BY id
	`, event)
}

func (s *WebhookStore) MarkSuccess(ctx context.Context, id string, at time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE webhooks SET retry_count = 0, last_triggered_at = $2 WHERE id = $1`, id, at)
	if err != nil {
		return fmt.Errorf("mark webhook success: %w", err)
	}
	return requireRow(res)
}

func (s *WebhookStore) IncrementRetry(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE webhooks SET retry_count = retry_count + 1 WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("increment webhook retry: %w", err)
	}
	return requireRow(res)
}

func (s *WebhookStore) query(ctx context.Context, query string, args ...any) ([]domain.Webhook, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list webhooks: %w", err)
	}
	defer rows.Close()

	var out []domain.Webhook
	for rows.Next() {
		wh, err := scanWebhook(rows)
		if err != nil {
			return nil, fmt.Errorf("list webhooks: %w", err)
		}
		out = append(out, wh)
	}
	return out, rows.Err()
}

func scanWebhook(row rowScanner) (domain.Webhook, error) {
	var wh domain.Webhook
	err := row.Scan(&wh.ID, &wh.URL, &wh.Event, &wh.Secret, &wh.Active,
		&wh.RetryCount, &wh.LastTriggeredAt, &wh.CreatedAt)
	return wh, err
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// DeliveryStore persists the delivery attempt log in PostgreSQL. Append-only.
type DeliveryStore struct {
	db *sql.DB
}

func NewDeliveryStore(db *sql.DB) *DeliveryStore {
	return &DeliveryStore{db: db}
}

func (s *DeliveryStore) Append(ctx context.Context, rec domain.WebhookDelivery) error {
	query := `
		INSERT INTO webhook_deliveries (id, webhook_id, event, status_code, payload, response, error, success, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := s.db.ExecContext(ctx, query,
		rec.ID, rec.WebhookID, rec.Event, rec.StatusCode, rec.Payload, rec.Response, rec.Error, rec.Success, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("append webhook delivery: %w", err)
	}
	return nil
}

func (s *DeliveryStore) ListByWebhook(ctx context.Context, webhookID string) ([]domain.WebhookDelivery, error) {
	query := `
		SELECT id, webhook_id, event, status_code, payload, response, error, success, created_at
		FROM webhook_deliveries
		WHERE webhook_id = $1
		ORDER BY created_at DESC, id
	`
	rows, err := s.db.QueryContext(ctx, query, webhookID)
	if err != nil {
		return nil, fmt.Errorf("list webhook deliveries: %w", err)
	}
	defer rows.Close()

	var out []domain.WebhookDelivery
	for rows.Next() {
		var rec domain.WebhookDelivery
		if err := rows.Scan(&rec.ID, &rec.WebhookID, &rec.Event, &rec.StatusCode,
			&rec.Payload, &rec.Response, &rec.Error, &rec.Success, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("list webhook deliveries: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
